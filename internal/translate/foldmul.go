package translate

import "github.com/mewbak/mips-to-c/internal/ast"

// FoldMulChains rewrites a chain of shifts/adds/subtracts that compute a
// multiplication by a compile-time constant -- the shape a compiler emits
// for e.g. "x * 12" -- back into a single "base * coefficient"
// expression, which is what a human reading the decompiled C would
// actually write.
func FoldMulChains(expr ast.Expression) ast.Expression {
	base, num := fold(expr, true)
	if num == 1 {
		return expr
	}
	return ast.BinaryOpInt(base, "*", ast.NewLiteral(int64(num)))
}

func fold(expr ast.Expression, toplevel bool) (ast.Expression, int64) {
	switch e := expr.(type) {
	case *ast.BinaryOp:
		lbase, lnum := fold(e.Left, false)
		rbase, rnum := fold(e.Right, false)
		if e.Op == "<<" {
			if lit, ok := e.Right.(*ast.Literal); ok {
				if toplevel && lnum == 1 && !(1 <= lit.Value && lit.Value <= 4) {
					return e, 1
				}
				return lbase, lnum << uint(lit.Value)
			}
		}
		if e.Op == "*" {
			if lit, ok := e.Right.(*ast.Literal); ok {
				return lbase, lnum * lit.Value
			}
		}
		if e.Op == "+" && ast.ExprEqual(lbase, rbase) {
			return lbase, lnum + rnum
		}
		if e.Op == "-" && ast.ExprEqual(lbase, rbase) {
			return lbase, lnum - rnum
		}
	case *ast.UnaryOp:
		if !toplevel {
			base, num := fold(e.Expr, false)
			return base, -num
		}
	case *ast.EvalOnceExpr:
		base, num := fold(e.WrappedExpr, false)
		if num != 1 && ast.IsRepeatableExpression(base) {
			return base, num
		}
	}
	return expr, 1
}
