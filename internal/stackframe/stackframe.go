// Package stackframe reverse-engineers a MIPS function's stack frame
// layout purely from its prologue instructions: how much space it
// allocates, whether it saves a return address (making it a non-leaf),
// which callee-save registers it spills and where, and therefore where
// the boundary between local variables, the outgoing-argument area, and
// incoming arguments sits.
package stackframe

import (
	"fmt"
	"sort"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/cfg"
	"github.com/mewbak/mips-to-c/internal/types"
)

// Info holds everything recovered about a function's stack frame, plus
// the bookkeeping the translator accumulates while walking the function:
// the discovered local variables, temporaries, phis, and arguments.
type Info struct {
	FunctionName          string
	AllocatedStackSize    int
	IsLeaf                bool
	LocalVarsRegionBottom int
	ReturnAddrLocation    int
	CalleeSaveRegLocations map[string]int

	uniqueTypes map[uniqueKey]*types.Type
	structTypes []structTypeEntry

	LocalVars []*ast.LocalVar
	TempVars  []*ast.EvalOnceStmt
	PhiVars   []*ast.PhiExpr
	Arguments []*ast.PassedInArg

	tempNameCounter map[string]int
}

type uniqueKey struct {
	category string
	key      interface{}
}

// structTypeEntry is one (base expression, offset) -> Type mapping kept
// outside the native Go map, since ast.Expression must be compared the
// way ExprEqual does (by value for locals/arguments/globals/literals, by
// identity for everything else) rather than by Go's own pointer/struct
// equality.
type structTypeEntry struct {
	base   ast.Expression
	offset int
	typ    *types.Type
}

// New creates an empty Info for fn, to be populated by Build.
func New(functionName string) *Info {
	return &Info{
		FunctionName:           functionName,
		IsLeaf:                 true,
		CalleeSaveRegLocations: map[string]int{},
		uniqueTypes:            map[uniqueKey]*types.Type{},
		tempNameCounter:        map[string]int{},
	}
}

// TempVarGenerator returns a closure that mints successive names under
// prefix ("temp_a0", "temp_a0_2", ...), matching the numbering scheme used
// for every other kind of generated name in this package.
func (info *Info) TempVarGenerator(prefix string) func() string {
	return func() string {
		counter := info.tempNameCounter[prefix] + 1
		info.tempNameCounter[prefix] = counter
		if counter > 1 {
			return fmt.Sprintf("temp_%s_%d", prefix, counter)
		}
		return fmt.Sprintf("temp_%s", prefix)
	}
}

// InSubroutineArgRegion reports whether location falls in the region used
// to pass arguments to callees (only meaningful for non-leaf functions).
func (info *Info) InSubroutineArgRegion(location int) bool {
	if info.IsLeaf {
		panic("stackframe: InSubroutineArgRegion called on a leaf function")
	}
	subroutineArgTop := info.ReturnAddrLocation
	if len(info.CalleeSaveRegLocations) > 0 {
		min := info.ReturnAddrLocation
		first := true
		for _, v := range info.CalleeSaveRegLocations {
			if first || v < min {
				min = v
				first = false
			}
		}
		subroutineArgTop = min
	}
	return location < subroutineArgTop
}

// InLocalVarRegion reports whether location falls within this frame's own
// local-variable area.
func (info *Info) InLocalVarRegion(location int) bool {
	return location >= info.LocalVarsRegionBottom && location < info.AllocatedStackSize
}

// LocationAboveStack reports whether location is above the allocated
// frame entirely, i.e. refers to the caller's incoming-argument area.
func (info *Info) LocationAboveStack(location int) bool {
	return location >= info.AllocatedStackSize
}

// AddLocalVar records var as a known local, keeping LocalVars sorted by
// stack offset; re-adding the same offset is a no-op.
func (info *Info) AddLocalVar(v *ast.LocalVar) {
	for _, existing := range info.LocalVars {
		if existing.Value == v.Value {
			return
		}
	}
	info.LocalVars = append(info.LocalVars, v)
	sort.Slice(info.LocalVars, func(i, j int) bool { return info.LocalVars[i].Value < info.LocalVars[j].Value })
}

// AddArgument records arg as a known incoming argument, keeping Arguments
// sorted by offset; re-adding the same offset is a no-op.
func (info *Info) AddArgument(arg *ast.PassedInArg) {
	for _, existing := range info.Arguments {
		if existing.Value == arg.Value {
			return
		}
	}
	info.Arguments = append(info.Arguments, arg)
	sort.Slice(info.Arguments, func(i, j int) bool { return info.Arguments[i].Value < info.Arguments[j].Value })
}

// GetArgument returns a (freshly created, Copied=true) reference to the
// incoming argument at location.
func (info *Info) GetArgument(location int) *ast.PassedInArg {
	return &ast.PassedInArg{Value: location, Copied: true, Typ: info.UniqueTypeFor("arg", location)}
}

// UniqueTypeFor returns the single Type instance associated with
// (category, key), creating an unconstrained one the first time it's
// asked for. This is what lets, say, every read of the same stack slot
// unify against a single shared type rather than each getting its own.
func (info *Info) UniqueTypeFor(category string, key interface{}) *types.Type {
	k := uniqueKey{category, key}
	if t, ok := info.uniqueTypes[k]; ok {
		return t
	}
	t := types.Any()
	info.uniqueTypes[k] = t
	return t
}

// UniqueStructTypeFor is UniqueTypeFor's counterpart for struct-access
// base expressions: base is compared with ast.ExprEqual rather than Go
// map equality, so e.g. two freshly re-minted PassedInArg pointers for
// the same uncopied argument register (regfile.Info.Get mints a new one
// on every read) still share a single refinable type, the way the Python
// original's attrs-level value equality did.
func (info *Info) UniqueStructTypeFor(base ast.Expression, offset int) *types.Type {
	for _, entry := range info.structTypes {
		if entry.offset == offset && ast.ExprEqual(entry.base, base) {
			return entry.typ
		}
	}
	t := types.Any()
	info.structTypes = append(info.structTypes, structTypeEntry{base: base, offset: offset, typ: t})
	return t
}

// GlobalSymbol returns a GlobalSymbol expression for sym, sharing a single
// Type instance across every reference to the same symbol name.
func (info *Info) GlobalSymbol(name string) *ast.GlobalSymbol {
	return &ast.GlobalSymbol{SymbolName: name, Typ: info.UniqueTypeFor("symbol", name)}
}

// GetStackVar classifies location and returns the appropriate expression:
// a LocalVar within this frame, a PassedInArg above it, a SubroutineArg in
// the outgoing-call area, or (for odd bookkeeping addresses that don't fit
// any region) a best-effort LocalVar.
func (info *Info) GetStackVar(location int, store bool) ast.Expression {
	switch {
	case info.InLocalVarRegion(location):
		return &ast.LocalVar{Value: location, Typ: info.UniqueTypeFor("stack", location)}
	case info.LocationAboveStack(location):
		ret := info.GetArgument(location - info.AllocatedStackSize)
		if !store {
			info.AddArgument(ret)
		}
		return ret
	case !info.IsLeaf && info.InSubroutineArgRegion(location):
		return &ast.SubroutineArg{Value: location, Typ: types.Any()}
	default:
		return &ast.LocalVar{Value: location, Typ: info.UniqueTypeFor("stack", location)}
	}
}

func (info *Info) String() string {
	return fmt.Sprintf(
		"Stack info for function %s:\nAllocated stack size: %d\nLeaf? %v\nBottom of local vars region: %d\nLocation of return addr: %d\nLocations of callee save registers: %v",
		info.FunctionName, info.AllocatedStackSize, info.IsLeaf,
		info.LocalVarsRegionBottom, info.ReturnAddrLocation, info.CalleeSaveRegLocations)
}

// Build scans startNode's instructions -- the function's prologue -- for
// the handful of patterns that reveal frame layout: "addiu $sp, $sp, -N"
// for the allocation size, "sw $ra, N($sp)" for a return-address save
// (making the function non-leaf), and "sw $sN, N($sp)" for each
// callee-save register spilled.
func Build(functionName string, startNode *cfg.Node) *Info {
	info := New(functionName)

	for _, inst := range startNode.Block.Instructions {
		if len(inst.Args) == 0 {
			continue
		}
		dest, ok := inst.Args[0].(asmast.Register)
		if !ok {
			continue
		}

		switch {
		case inst.Mnemonic == "addiu" && dest.Name == "sp":
			if lit, ok := literalArg(inst.Args, 2); ok {
				v := lit
				if v < 0 {
					v = -v
				}
				info.AllocatedStackSize = int(v)
			}
		case inst.Mnemonic == "sw" && dest.Name == "ra":
			if am, ok := addrArg(inst.Args, 1); ok && am.Base.Name == "sp" {
				info.IsLeaf = false
				info.ReturnAddrLocation = offsetValue(am.Offset)
			}
		case inst.Mnemonic == "sw" && dest.IsCalleeSave():
			if am, ok := addrArg(inst.Args, 1); ok && am.Base.Name == "sp" {
				info.CalleeSaveRegLocations[dest.Name] = offsetValue(am.Offset)
			}
		}
	}

	switch {
	case info.IsLeaf && len(info.CalleeSaveRegLocations) > 0:
		max := 0
		first := true
		for _, v := range info.CalleeSaveRegLocations {
			if first || v > max {
				max = v
				first = false
			}
		}
		info.LocalVarsRegionBottom = max + 4
	case info.IsLeaf:
		info.LocalVarsRegionBottom = 0
	default:
		info.LocalVarsRegionBottom = info.ReturnAddrLocation + 4
	}

	return info
}

func literalArg(args []asmast.Argument, idx int) (int64, bool) {
	if idx >= len(args) {
		return 0, false
	}
	lit, ok := args[idx].(asmast.Literal)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

func addrArg(args []asmast.Argument, idx int) (asmast.AddressMode, bool) {
	if idx >= len(args) {
		return asmast.AddressMode{}, false
	}
	am, ok := args[idx].(asmast.AddressMode)
	return am, ok
}

// offsetValue reads a prologue address mode's constant offset. Prologue
// instructions never carry a %lo(...) macro offset in practice, so a
// missing offset is simply treated as zero.
func offsetValue(offset asmast.Argument) int {
	if offset == nil {
		return 0
	}
	lit, ok := offset.(asmast.Literal)
	if !ok {
		return 0
	}
	return int(lit.Value)
}
