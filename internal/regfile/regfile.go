// Package regfile models the MIPS register file as it is abstractly
// interpreted while translating one function: which expression each
// register currently holds and which registers get clobbered across a
// call.
package regfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/stackframe"
)

// ArgumentRegs are the registers the o32 ABI passes the first few
// arguments in.
var ArgumentRegs = []string{"a0", "a1", "a2", "a3", "f12", "f14"}

// CallerSaveRegs are clobbered by any "jal" and must not be trusted to
// survive a call; this also includes this module's pseudo-registers for
// HI/LO, the float condition bit, and the unified return-value register.
var CallerSaveRegs = append(append([]string{}, ArgumentRegs...),
	"at", "t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9",
	"hi", "lo", "condition_bit", "return_reg")

// CalleeSaveRegs survive a call: ClearCallerSaveRegs leaves them in place.
// Where a prologue spills them is recorded separately by the stackframe
// package.
var CalleeSaveRegs = []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"}

// SpecialRegs are never treated as ordinary scratch registers.
var SpecialRegs = []string{"ra", "31", "fp"}

// Info is the register file's live state: what each register currently
// holds.
type Info struct {
	Contents  map[string]ast.Expression
	StackInfo *stackframe.Info
}

// New creates a register file seeded with initial contents.
func New(initial map[string]ast.Expression, stackInfo *stackframe.Info) *Info {
	contents := make(map[string]ast.Expression, len(initial))
	for k, v := range initial {
		contents[k] = v
	}
	return &Info{Contents: contents, StackInfo: stackInfo}
}

// Get reads reg, synthesizing the hardwired zero register and
// re-snapshotting an uncopied incoming argument (to distinguish "the
// argument we were called with" from "whatever a later read of the same
// register sees") the way the original RegInfo.__getitem__ does.
func (info *Info) Get(reg string) ast.Expression {
	if reg == "zero" {
		return ast.NewLiteral(0)
	}
	ret, ok := info.Contents[reg]
	if !ok {
		panic(fmt.Sprintf("regfile: read from unset register %s", reg))
	}
	if arg, ok := ret.(*ast.PassedInArg); ok && !arg.Copied {
		fresh := info.StackInfo.GetArgument(arg.Value)
		info.StackInfo.AddArgument(fresh)
		fresh.Typ.Unify(arg.Typ)
		return fresh
	}
	return ret
}

// GetRaw reads reg without the PassedInArg re-snapshotting logic,
// returning nil if the register has never been set.
func (info *Info) GetRaw(reg string) ast.Expression {
	return info.Contents[reg]
}

// Has reports whether reg currently holds a value.
func (info *Info) Has(reg string) bool {
	_, ok := info.Contents[reg]
	return ok
}

// Set writes expr into reg (or clears it, if expr is nil), also updating
// the unified "return_reg" alias whenever $v0 or $f0 changes, matching
// the ABI convention that either register may end up holding a function's
// return value.
func (info *Info) Set(reg string, expr ast.Expression) {
	if reg == "zero" {
		panic("regfile: attempted write to $zero")
	}
	if expr != nil {
		info.Contents[reg] = expr
	} else {
		delete(info.Contents, reg)
	}
	if reg == "f0" || reg == "v0" {
		info.Set("return_reg", expr)
	}
}

// Delete removes reg's contents outright.
func (info *Info) Delete(reg string) {
	if reg == "zero" {
		panic("regfile: attempted delete of $zero")
	}
	delete(info.Contents, reg)
}

// ClearCallerSaveRegs drops every register a "jal" is assumed to clobber.
func (info *Info) ClearCallerSaveRegs() {
	for _, reg := range CallerSaveRegs {
		delete(info.Contents, reg)
	}
}

// Copy returns a shallow copy of the register contents, suitable for
// seeding a dominated block's register file before phi placement.
func (info *Info) Copy() map[string]ast.Expression {
	out := make(map[string]ast.Expression, len(info.Contents))
	for k, v := range info.Contents {
		out[k] = v
	}
	return out
}

func (info *Info) String() string {
	keys := make([]string, 0, len(info.Contents))
	for k := range info.Contents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, info.Contents[k])
	}
	return strings.Join(parts, ", ")
}
