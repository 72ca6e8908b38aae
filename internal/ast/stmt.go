package ast

import "fmt"

// Statement is one line of the translated function body.
type Statement interface {
	fmt.Stringer
	ShouldWrite() bool
}

// EvalOnceStmt declares (or, for always-emit expressions with no reads,
// just evaluates) a temporary.
type EvalOnceStmt struct {
	Expr *EvalOnceExpr
}

// NeedDecl reports whether Expr needs an actual named variable declared
// for it, as opposed to being inlined at its single use site.
func (s *EvalOnceStmt) NeedDecl() bool { return s.Expr.NumUsages > 1 }

func (s *EvalOnceStmt) ShouldWrite() bool {
	if s.Expr.AlwaysEmit {
		return s.Expr.NumUsages != 1
	}
	return s.Expr.NumUsages > 1
}

func (s *EvalOnceStmt) String() string {
	if s.Expr.AlwaysEmit && s.Expr.NumUsages == 0 {
		return s.Expr.WrappedExpr.String() + ";"
	}
	return fmt.Sprintf("%s = %s;", s.Expr.VarName(), s.Expr.WrappedExpr)
}

// SetPhiStmt assigns expr into a predecessor-block-specific phi slot.
type SetPhiStmt struct {
	Phi  *PhiExpr
	Expr Expression
}

// ShouldWrite suppresses the assignment when Expr is itself a phi that
// propagates into the same final name as Phi, which would otherwise emit
// a pointless "x = x;".
func (s *SetPhiStmt) ShouldWrite() bool {
	if p, ok := s.Expr.(*PhiExpr); ok && p.PropagatesTo() != p {
		return false
	}
	return true
}

func (s *SetPhiStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.Phi.PropagatesTo().VarName(), s.Expr)
}

// StoreStmt writes source into a permanent location (a stack slot, a
// struct field, a global).
type StoreStmt struct {
	Source Expression
	Dest   Expression
}

func (s *StoreStmt) ShouldWrite() bool { return true }
func (s *StoreStmt) String() string    { return fmt.Sprintf("%s = %s;", s.Dest, s.Source) }

// CommentStmt is an informational line emitted in place of a statement
// the translator could not produce (e.g. after a recovered per-block
// error).
type CommentStmt struct {
	Contents string
}

func (s *CommentStmt) ShouldWrite() bool { return true }
func (s *CommentStmt) String() string    { return "// " + s.Contents }
