// Package translate is the translation core: it walks a function's
// dominator tree, abstractly interprets MIPS instructions against a
// register file, and produces typed, named expression/statement IR.
package translate

import (
	"fmt"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
	"github.com/mewbak/mips-to-c/internal/types"
)

// InstrArgs wraps one instruction's raw operands with enough context
// (the live register file, the stack frame) to resolve them into
// Expressions on demand.
type InstrArgs struct {
	RawArgs   []asmast.Argument
	Regs      *regfile.Info
	StackInfo *stackframe.Info
}

// DuplicateDestReg handles the two-operand forms of instructions like
// "ori $reg, imm" that are shorthand for "ori $reg, $reg, imm": it
// inserts the destination register as an explicit second operand.
func (a *InstrArgs) DuplicateDestReg() {
	out := make([]asmast.Argument, 0, len(a.RawArgs)+1)
	out = append(out, a.RawArgs[0], a.RawArgs[0])
	out = append(out, a.RawArgs[1:]...)
	a.RawArgs = out
}

// RegRef returns the register named at operand index, panicking if that
// operand isn't a register (a programmer error in a dispatch table entry,
// not a recoverable translation failure).
func (a *InstrArgs) RegRef(index int) asmast.Register {
	reg, ok := a.RawArgs[index].(asmast.Register)
	if !ok {
		panic(fmt.Sprintf("translate: operand %d is not a register", index))
	}
	return reg
}

// Reg reads the current value of the register named at operand index.
func (a *InstrArgs) Reg(index int) ast.Expression {
	return a.Regs.Get(a.RegRef(index).Name)
}

// DReg reads a double-precision value out of a float register pair: if
// the register already holds something other than a raw 32-bit literal
// half, it's returned as-is; otherwise the two halves (this register and
// the next odd/even partner) are stitched into a single 64-bit literal.
func (a *InstrArgs) DReg(index int) ast.Expression {
	reg := a.RegRef(index)
	if !reg.IsFloat() {
		panic("translate: DReg called on a non-float register")
	}
	ret := a.Regs.Get(reg.Name)
	lit, ok := ret.(*ast.Literal)
	if !ok || lit.Type().Size() == 64 {
		return ret
	}
	regNum := 0
	fmt.Sscanf(reg.Name[1:], "%d", &regNum)
	if regNum%2 != 0 {
		panic("translate: DReg requires an even-numbered float register")
	}
	otherName := fmt.Sprintf("f%d", regNum+1)
	other, ok := a.Regs.Get(otherName).(*ast.Literal)
	if !ok || other.Type().Size() == 64 {
		panic("translate: DReg partner register is not a raw literal half")
	}
	value := (lit.Value & 0xffffffff) | (other.Value << 32)
	return &ast.Literal{Value: value, Typ: types.F64()}
}

// Imm resolves operand index as a literal/global-symbol immediate.
func (a *InstrArgs) Imm(index int) ast.Expression {
	arg := StripMacros(a.RawArgs[index])
	ret := LiteralExpr(arg, a.StackInfo)
	if sym, ok := ret.(*ast.GlobalSymbol); ok {
		return ast.NewAddressOf(sym)
	}
	return ret
}

// HiImm resolves operand index as a "%hi(...)" macro's argument.
func (a *InstrArgs) HiImm(index int) ast.Expression {
	macro, ok := a.RawArgs[index].(asmast.Macro)
	if !ok || macro.Name != "hi" {
		panic("translate: HiImm called on a non-%hi operand")
	}
	ret := LiteralExpr(macro.Argument, a.StackInfo)
	if sym, ok := ret.(*ast.GlobalSymbol); ok {
		return ast.NewAddressOf(sym)
	}
	return ret
}

// MemRef is either a stack/register-relative address mode or a bare
// global symbol -- the two shapes make_store/handle_load dereference.
type MemRef interface{ isMemRef() }

// AddressModeRef is the "offset(reg)" memory operand shape.
type AddressModeRef struct{ asmast.AddressMode }

func (AddressModeRef) isMemRef() {}

// GlobalSymbolRef is a bare "sym" memory operand.
type GlobalSymbolRef struct{ *ast.GlobalSymbol }

func (GlobalSymbolRef) isMemRef() {}

// MemoryRef resolves operand index as a dereferenceable location: either
// an address-mode operand (offset(reg)) or a bare global symbol.
func (a *InstrArgs) MemoryRef(index int) MemRef {
	arg := StripMacros(a.RawArgs[index])
	switch v := arg.(type) {
	case asmast.AddressMode:
		return AddressModeRef{v}
	case asmast.GlobalSymbol:
		return GlobalSymbolRef{a.StackInfo.GlobalSymbol(v.Name)}
	default:
		panic("translate: operand is neither an address mode nor a global symbol")
	}
}

// Count returns the number of raw operands this instruction was given.
func (a *InstrArgs) Count() int { return len(a.RawArgs) }
