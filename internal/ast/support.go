package ast

import "math"

// IsRepeatableExpression reports whether expr is cheap and side-effect
// free enough to be evaluated again at each use site rather than bound to
// a temporary. This is a deliberately naive, structural guess: it doesn't
// account for intervening stores or calls that might invalidate it, only
// for the shape of the expression itself.
func IsRepeatableExpression(expr Expression) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *EvalOnceExpr, *Literal, *GlobalSymbol, *LocalVar, *PassedInArg, *SubroutineArg:
		return true
	case *AddressOf:
		return IsRepeatableExpression(e.Expr)
	case *StructAccess:
		return IsRepeatableExpression(e.StructVar)
	default:
		return false
	}
}

// IsTypeObvious reports whether a reader could tell expr's type just by
// looking at it, without needing an explicit cast. This only gives exact
// answers once code generation has settled down (an EvalOnceExpr that
// later becomes multiply-used changes its own answer).
func IsTypeObvious(expr Expression) bool {
	switch e := expr.(type) {
	case *Cast, *Literal, *AddressOf, *LocalVar, *PassedInArg:
		return true
	case *EvalOnceExpr:
		if e.NumUsages > 1 {
			return true
		}
		return IsTypeObvious(e.WrappedExpr)
	default:
		return false
	}
}

// SimplifyCondition rewrites a boolean expression into a more readable
// equivalent, in particular collapsing "(a == b) == 0" into "a != b" and
// "(a == b) != 0" into plain "a == b". It may give different answers
// before and after code generation settles, for the same reason as
// IsTypeObvious.
func SimplifyCondition(expr Expression) Expression {
	if e, ok := expr.(*EvalOnceExpr); ok && e.NumUsages <= 1 {
		return SimplifyCondition(e.WrappedExpr)
	}
	if b, ok := expr.(*BinaryOp); ok {
		left := SimplifyCondition(b.Left)
		right := SimplifyCondition(b.Right)
		if lb, ok := left.(*BinaryOp); ok && lb.IsBoolean() {
			if lit, ok := right.(*Literal); ok && lit.Equal(&Literal{Value: 0}) {
				switch b.Op {
				case "==":
					return SimplifyCondition(lb.Negated())
				case "!=":
					return left
				}
			}
		}
		return &BinaryOp{Left: left, Op: b.Op, Right: right, Typ: b.Typ}
	}
	return expr
}

// MarkUsed propagates a "this value is read" signal down to whichever
// EvalOnceExprs/PhiExprs ultimately produced expr, so their use counts
// (and therefore whether they need a declared temporary at all) stay
// accurate.
func MarkUsed(expr Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *PhiExpr:
		e.Use(nil)
	case *EvalOnceExpr:
		e.Use()
	default:
		for _, dep := range e.Dependencies() {
			MarkUsed(dep)
		}
	}
}

// ParseF32Imm reinterprets the bit pattern of a 32-bit MIPS immediate as
// an IEEE-754 single-precision float, the way a "li $f.., imm" / "lui"
// pair's raw bits need to be read back as a float literal.
func ParseF32Imm(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// ParseF64Imm reinterprets the bit pattern of a 64-bit MIPS immediate pair
// as an IEEE-754 double-precision float.
func ParseF64Imm(bits uint64) float64 {
	return math.Float64frombits(bits)
}
