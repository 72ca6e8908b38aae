package ast

import "github.com/mewbak/mips-to-c/internal/types"

// AsType unifies expr's type with t. If the unification genuinely changes
// nothing observable (silent) and succeeds, expr is returned unchanged;
// otherwise a reinterpret Cast is introduced so the resulting expression's
// declared type is exactly t. A failed unification (a real type conflict)
// still produces a Cast, marking the spot where the lattice gave up.
func AsType(expr Expression, t *types.Type, silent bool) Expression {
	if expr.Type().Unify(t) {
		if silent {
			return expr
		}
		return &Cast{Expr: expr, Typ: t, Reinterpret: true, Silent: false}
	}
	return &Cast{Expr: expr, Typ: t, Reinterpret: true, Silent: false}
}

func AsF32(expr Expression) Expression    { return AsType(expr, types.F32(), true) }
func AsF64(expr Expression) Expression    { return AsType(expr, types.F64(), true) }
func AsS32(expr Expression) Expression    { return AsType(expr, types.S32(), false) }
func AsU32(expr Expression) Expression    { return AsType(expr, types.U32(), false) }
func AsIntish(expr Expression) Expression { return AsType(expr, types.Intish(), true) }
func AsIntptr(expr Expression) Expression { return AsType(expr, types.IntPtr(), true) }
