package translate

import (
	"fmt"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/types"
)

// The eight dispatch-table families below cover every MIPS mnemonic this
// translator understands, split by the shape of their result: a store
// statement, a plain value written to an explicitly-reversed source
// register, an integer branch condition, a floating-point branch on the
// condition bit, an unconditional jump/call, a floating-point comparison
// result, a pair of HI/LO results, or (the common case) a single value
// written to the first operand register.

type storeCase func(*InstrArgs) *ast.StoreStmt
type exprCase func(*InstrArgs) ast.Expression
type cmpCase func(*InstrArgs) *ast.BinaryOp
type jumpCase func(*InstrArgs) ast.Expression // nil result means "no value" (jr)
type hiLoCase func(*InstrArgs) (hi, lo ast.Expression)

// CasesSourceFirstExpression covers the plain/float store mnemonics.
var CasesSourceFirstExpression = map[string]storeCase{
	"sb":   func(a *InstrArgs) *ast.StoreStmt { return MakeStore(a, types.OfSize(8)) },
	"sh":   func(a *InstrArgs) *ast.StoreStmt { return MakeStore(a, types.OfSize(16)) },
	"sw":   func(a *InstrArgs) *ast.StoreStmt { return MakeStore(a, types.OfSize(32)) },
	"swc1": func(a *InstrArgs) *ast.StoreStmt { return MakeStore(a, types.F32()) },
	"sdc1": func(a *InstrArgs) *ast.StoreStmt { return MakeStore(a, types.F64()) },
}

// CasesSourceFirstRegister covers the two float-move mnemonics whose
// first operand is the source rather than the destination.
var CasesSourceFirstRegister = map[string]exprCase{
	"mtc1": func(a *InstrArgs) ast.Expression { return a.Reg(0) },
	"ctc1": func(a *InstrArgs) ast.Expression { return a.Reg(0) },
}

// CasesBranches covers the integer conditional-branch family.
var CasesBranches = map[string]cmpCase{
	"b":    func(a *InstrArgs) *ast.BinaryOp { return nil },
	"beq":  func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "==", a.Reg(1)) },
	"bne":  func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "!=", a.Reg(1)) },
	"beqz": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "==", ast.NewLiteral(0)) },
	"bnez": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "!=", ast.NewLiteral(0)) },
	"blez": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "<=", ast.NewLiteral(0)) },
	"bgtz": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), ">", ast.NewLiteral(0)) },
	"bltz": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), "<", ast.NewLiteral(0)) },
	"bgez": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpIcmp(a.Reg(0), ">=", ast.NewLiteral(0)) },
}

// CasesFloatBranches covers the floating-point conditional branches; no
// work happens here since the condition bit was already computed by a
// preceding c.xx.s/c.xx.d instruction.
var CasesFloatBranches = map[string]bool{"bc1t": true, "bc1f": true}

// CasesJumps covers the two unconditional-control-transfer mnemonics.
var CasesJumps = map[string]jumpCase{
	"jal": func(a *InstrArgs) ast.Expression { return a.Imm(0) },
	"jr":  func(a *InstrArgs) ast.Expression { return nil },
}

// CasesFloatComp covers the floating-point comparison family, all of
// which write the shared pseudo-register "condition_bit".
var CasesFloatComp = map[string]cmpCase{
	"c.eq.s": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpFcmp(a.Reg(0), "==", a.Reg(1)) },
	"c.le.s": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpFcmp(a.Reg(0), "<=", a.Reg(1)) },
	"c.lt.s": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpFcmp(a.Reg(0), "<", a.Reg(1)) },
	"c.eq.d": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpDcmp(a.Reg(0), "==", a.Reg(1)) },
	"c.le.d": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpDcmp(a.Reg(0), "<=", a.Reg(1)) },
	"c.lt.d": func(a *InstrArgs) *ast.BinaryOp { return ast.BinaryOpDcmp(a.Reg(0), "<", a.Reg(1)) },
}

// CasesHiLo covers div/mult family instructions, which produce two
// results at once (written to the HI and LO pseudo-registers).
var CasesHiLo = map[string]hiLoCase{
	"div": func(a *InstrArgs) (ast.Expression, ast.Expression) {
		return ast.BinaryOpS32(a.Reg(1), "%", a.Reg(2)), ast.BinaryOpS32(a.Reg(1), "/", a.Reg(2))
	},
	"divu": func(a *InstrArgs) (ast.Expression, ast.Expression) {
		return ast.BinaryOpU32(a.Reg(1), "%", a.Reg(2)), ast.BinaryOpU32(a.Reg(1), "/", a.Reg(2))
	},
	"multu": func(a *InstrArgs) (ast.Expression, ast.Expression) {
		// The high word of a multiplication has no direct C representation.
		return nil, ast.BinaryOpInt(a.Reg(0), "*", a.Reg(1))
	},
}

// CasesDestinationFirst is the common case: a single result written to
// the first operand register.
var CasesDestinationFirst = map[string]exprCase{
	"slt":   func(a *InstrArgs) ast.Expression { return ast.BinaryOpIcmp(a.Reg(1), "<", a.Reg(2)) },
	"slti":  func(a *InstrArgs) ast.Expression { return ast.BinaryOpIcmp(a.Reg(1), "<", a.Imm(2)) },
	"sltu":  func(a *InstrArgs) ast.Expression { return ast.BinaryOpUcmp(a.Reg(1), "<", a.Reg(2)) },
	"sltiu": func(a *InstrArgs) ast.Expression { return ast.BinaryOpUcmp(a.Reg(1), "<", a.Imm(2)) },

	"addi":  func(a *InstrArgs) ast.Expression { return HandleAddi(a) },
	"addiu": func(a *InstrArgs) ast.Expression { return HandleAddi(a) },
	"addu": func(a *InstrArgs) ast.Expression {
		return FoldMulChains(ast.BinaryOpIntptr(a.Reg(1), "+", a.Reg(2)))
	},
	"subu": func(a *InstrArgs) ast.Expression {
		return FoldMulChains(ast.BinaryOpIntptr(a.Reg(1), "-", a.Reg(2)))
	},
	"negu": func(a *InstrArgs) ast.Expression {
		return FoldMulChains(&ast.UnaryOp{Op: "-", Expr: ast.AsS32(a.Reg(1)), Typ: types.S32()})
	},

	"mfhi": func(a *InstrArgs) ast.Expression { return a.Regs.Get("hi") },
	"mflo": func(a *InstrArgs) ast.Expression { return a.Regs.Get("lo") },

	"add.s": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF32(a.Reg(1), "+", a.Reg(2)) },
	"sub.s": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF32(a.Reg(1), "-", a.Reg(2)) },
	"neg.s": func(a *InstrArgs) ast.Expression {
		return &ast.UnaryOp{Op: "-", Expr: ast.AsF32(a.Reg(1)), Typ: types.F32()}
	},
	"div.s": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF32(a.Reg(1), "/", a.Reg(2)) },
	"mul.s": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF32(a.Reg(1), "*", a.Reg(2)) },

	"add.d": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF64(a.DReg(1), "+", a.DReg(2)) },
	"sub.d": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF64(a.DReg(1), "-", a.DReg(2)) },
	"neg.d": func(a *InstrArgs) ast.Expression {
		return &ast.UnaryOp{Op: "-", Expr: ast.AsF64(a.DReg(1)), Typ: types.F64()}
	},
	"div.d": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF64(a.DReg(1), "/", a.DReg(2)) },
	"mul.d": func(a *InstrArgs) ast.Expression { return ast.BinaryOpF64(a.DReg(1), "*", a.DReg(2)) },

	"cvt.d.s": func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF32(a.Reg(1)), Typ: types.F64()} },
	"cvt.d.w": func(a *InstrArgs) ast.Expression {
		return &ast.Cast{Expr: ast.AsIntish(a.Reg(1)), Typ: types.F64()}
	},
	"cvt.s.d": func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF64(a.DReg(1)), Typ: types.F32()} },
	"cvt.s.u": func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsU32(a.Reg(1)), Typ: types.F32()} },
	"cvt.s.w": func(a *InstrArgs) ast.Expression {
		return &ast.Cast{Expr: ast.AsIntish(a.Reg(1)), Typ: types.F32()}
	},
	"cvt.w.d":   func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF64(a.DReg(1)), Typ: types.S32()} },
	"cvt.w.s":   func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF32(a.Reg(1)), Typ: types.S32()} },
	"trunc.w.s": func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF32(a.Reg(1)), Typ: types.S32()} },
	"trunc.w.d": func(a *InstrArgs) ast.Expression { return &ast.Cast{Expr: ast.AsF64(a.DReg(1)), Typ: types.S32()} },

	"ori": func(a *InstrArgs) ast.Expression { return HandleOri(a) },
	"and": func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "&", a.Reg(2)) },
	"or":  func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "|", a.Reg(2)) },
	"xor": func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "^", a.Reg(2)) },
	"andi": func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "&", a.Imm(2)) },
	"xori": func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "^", a.Imm(2)) },
	"sll": func(a *InstrArgs) ast.Expression {
		return FoldMulChains(ast.BinaryOpInt(a.Reg(1), "<<", a.Imm(2)))
	},
	"sllv": func(a *InstrArgs) ast.Expression { return ast.BinaryOpInt(a.Reg(1), "<<", a.Reg(2)) },
	"srl": func(a *InstrArgs) ast.Expression {
		return &ast.BinaryOp{Left: ast.AsU32(a.Reg(1)), Op: ">>", Right: ast.AsIntish(a.Imm(2)), Typ: types.U32()}
	},
	"srlv": func(a *InstrArgs) ast.Expression {
		return &ast.BinaryOp{Left: ast.AsU32(a.Reg(1)), Op: ">>", Right: ast.AsIntish(a.Reg(2)), Typ: types.U32()}
	},
	"sra": func(a *InstrArgs) ast.Expression {
		return &ast.BinaryOp{Left: ast.AsS32(a.Reg(1)), Op: ">>", Right: ast.AsIntish(a.Imm(2)), Typ: types.S32()}
	},
	"srav": func(a *InstrArgs) ast.Expression {
		return &ast.BinaryOp{Left: ast.AsS32(a.Reg(1)), Op: ">>", Right: ast.AsIntish(a.Reg(2)), Typ: types.S32()}
	},

	"move": func(a *InstrArgs) ast.Expression { return a.Reg(1) },
	"mfc1": func(a *InstrArgs) ast.Expression { return a.Reg(1) },
	"cfc1": func(a *InstrArgs) ast.Expression { return a.Reg(1) },
	"mov.s": func(a *InstrArgs) ast.Expression { return a.Reg(1) },
	"mov.d": func(a *InstrArgs) ast.Expression { return ast.AsF64(a.DReg(1)) },

	"li":  func(a *InstrArgs) ast.Expression { return a.Imm(1) },
	"lui": func(a *InstrArgs) ast.Expression { return LoadUpper(a) },
	"lb":  func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"lh":  func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"lw":  func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"lbu": func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"lhu": func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"lwu": func(a *InstrArgs) ast.Expression { return HandleLoad(a) },

	"lwc1": func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
	"ldc1": func(a *InstrArgs) ast.Expression { return HandleLoad(a) },
}

// OutputRegsForInstr returns the registers instr writes, used to compute
// which registers a block of code may clobber without the translator
// having to run the instruction's full semantics.
func OutputRegsForInstr(instr asmast.Instruction) ([]string, error) {
	mnemonic := instr.Mnemonic
	regAt := func(index int) string {
		reg, ok := instr.Args[index].(asmast.Register)
		if !ok {
			panic(fmt.Sprintf("translate: operand %d of %q is not a register", index, mnemonic))
		}
		return reg.Name
	}

	switch {
	case mnemonic == "nop" || mnemonic == "jr":
		return nil, nil
	case has(CasesSourceFirstExpression, mnemonic), has(CasesBranches, mnemonic), CasesFloatBranches[mnemonic]:
		return nil, nil
	case mnemonic == "jal":
		return []string{"return_reg", "f0", "v0", "v1"}, nil
	case has(CasesSourceFirstRegister, mnemonic):
		return []string{regAt(1)}, nil
	case has(CasesDestinationFirst, mnemonic):
		return []string{regAt(0)}, nil
	case has(CasesFloatComp, mnemonic):
		return []string{"condition_bit"}, nil
	case has(CasesHiLo, mnemonic):
		return []string{"hi", "lo"}, nil
	}
	return nil, fmt.Errorf("translate: don't know how to handle mnemonic %q", mnemonic)
}

func has[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}
