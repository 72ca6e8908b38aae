package translate

import (
	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/types"
)

// LoadUpper handles "lui", which either loads the high 16 bits of a
// relocation (via %hi(sym)) or shifts a plain immediate left by 16.
func LoadUpper(a *InstrArgs) ast.Expression {
	if _, ok := a.RawArgs[1].(asmast.Macro); ok {
		return a.HiImm(1)
	}
	expr := a.Imm(1)
	if b, ok := expr.(*ast.BinaryOp); ok && b.Op == ">>" {
		// "lui REG (lhs >> 16)" -- just take lhs; the shift cancels out
		// against lui's implicit << 16.
		lit, ok := b.Right.(*ast.Literal)
		if !ok || lit.Value != 16 {
			panic("translate: lui right-shift operand must be 16")
		}
		return b.Left
	}
	lit, ok := expr.(*ast.Literal)
	if !ok {
		panic("translate: lui operand must resolve to a literal")
	}
	return ast.NewLiteral(lit.Value << 16)
}

// HandleOri implements "ori", including its two-argument pseudo form and
// the "ori REG (lhs & 0xffff)" pattern a preceding lui already handled.
func HandleOri(a *InstrArgs) ast.Expression {
	if a.Count() == 2 {
		a.DuplicateDestReg()
	}
	imm := a.Imm(2)
	if b, ok := imm.(*ast.BinaryOp); ok && b.Op == "&" {
		lit, ok := b.Right.(*ast.Literal)
		if !ok || lit.Value != 0xFFFF {
			panic("translate: ori & mask must be 0xFFFF")
		}
		return b.Left
	}
	return ast.BinaryOpInt(a.Reg(1), "|", imm)
}

// HandleAddi implements "addi"/"addiu", which MIPS compilers use for four
// quite different purposes: loading an immediate, a register move, taking
// the address of a stack local, and ordinary pointer/integer addition.
func HandleAddi(a *InstrArgs) ast.Expression {
	if a.Count() == 2 {
		a.DuplicateDestReg()
	}
	sourceReg := a.RegRef(1)
	source := a.Reg(1)
	imm := a.Imm(2)

	switch {
	case sourceReg.Name == "zero":
		return imm
	case isZeroLiteral(imm):
		return source
	case sourceReg.Name == "sp" || sourceReg.Name == "fp":
		lit, ok := imm.(*ast.Literal)
		if !ok {
			panic("translate: addiu on sp/fp requires a literal immediate")
		}
		if destName := a.RegRef(0).Name; destName == "sp" || destName == "fp" {
			return source
		}
		v := a.StackInfo.GetStackVar(int(lit.Value), false)
		if local, ok := v.(*ast.LocalVar); ok {
			a.StackInfo.AddLocalVar(local)
		}
		return ast.NewAddressOf(v)
	default:
		return ast.BinaryOpIntptr(source, "+", imm)
	}
}

func isZeroLiteral(expr ast.Expression) bool {
	lit, ok := expr.(*ast.Literal)
	return ok && lit.Value == 0
}

// HandleLoad implements the plain (non-floating-point) load family by
// dereferencing the instruction's memory operand.
func HandleLoad(a *InstrArgs) ast.Expression {
	return Deref(a.MemoryRef(1), a.Regs, a.StackInfo, false)
}

// MakeStore implements the store family. A store into a stack slot whose
// source register is a callee-save, argument, or special register is
// elided outright (it is treated as register-preservation bookkeeping,
// not meaningful program state); everything else becomes a real StoreStmt.
func MakeStore(a *InstrArgs, t *types.Type) *ast.StoreStmt {
	sourceReg := a.RegRef(0)
	sourceVal := a.Reg(0)
	target := a.MemoryRef(1)

	if amRef, ok := target.(AddressModeRef); ok &&
		(amRef.Base.Name == "sp" || amRef.Base.Name == "fp") &&
		isPreservedReg(sourceReg.Name) {
		return nil
	}

	dest := Deref(target, a.Regs, a.StackInfo, true)
	dest.Type().Unify(t)
	return &ast.StoreStmt{Source: ast.AsType(sourceVal, t, false), Dest: dest}
}

func isPreservedReg(name string) bool {
	for _, list := range [][]string{regfile.CalleeSaveRegs, regfile.ArgumentRegs, regfile.SpecialRegs} {
		for _, r := range list {
			if r == name {
				return true
			}
		}
	}
	return false
}
