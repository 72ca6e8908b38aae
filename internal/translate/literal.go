package translate

import (
	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/stackframe"
)

// LiteralExpr turns a compile-time-constant assembly argument (a global
// symbol, a bare literal, or a literal binary expression like
// "(var_x & 0xffff)") into the corresponding Expression.
func LiteralExpr(arg asmast.Argument, stackInfo *stackframe.Info) ast.Expression {
	switch v := arg.(type) {
	case asmast.GlobalSymbol:
		return stackInfo.GlobalSymbol(v.Name)
	case asmast.Literal:
		return ast.NewLiteral(v.Value)
	case asmast.BinOp:
		return ast.BinaryOpInt(LiteralExpr(v.Left, stackInfo), v.Op, LiteralExpr(v.Right, stackInfo))
	default:
		panic("translate: argument must be a compile-time literal")
	}
}

// StripMacros replaces a "%lo(...)" operand with a literal zero (its
// relocated value is assumed already folded into the matching "%hi" by
// LoadUpper) and strips a "%lo(...)" appearing as an address-mode offset
// the same way. A "%hi(...)" reaching here rather than through HiImm would
// indicate an instruction this translator doesn't expect to see it on.
func StripMacros(arg asmast.Argument) asmast.Argument {
	switch v := arg.(type) {
	case asmast.Macro:
		if v.Name != "lo" {
			panic("translate: unexpected %" + v.Name + "() outside of lui/hi_imm")
		}
		return asmast.Literal{Value: 0}
	case asmast.AddressMode:
		if macro, ok := v.Offset.(asmast.Macro); ok {
			if macro.Name != "lo" {
				panic("translate: unexpected %" + macro.Name + "() in address mode")
			}
			return asmast.AddressMode{Offset: nil, Base: v.Base}
		}
		return v
	default:
		return arg
	}
}
