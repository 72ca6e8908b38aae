package ast

import (
	"fmt"

	"github.com/mewbak/mips-to-c/internal/cfg"
	"github.com/mewbak/mips-to-c/internal/types"
)

// EvalOnceExpr wraps an expression that was computed once (a register
// write, a function call result) so that later uses can either repeat it
// inline or, once it's clear it's used more than once, refer to it by a
// generated temporary name. always_emit forces a statement to be written
// even if the value is never read again (function calls, for instance,
// have to run for their side effects regardless of use count).
type EvalOnceExpr struct {
	WrappedExpr Expression
	varName     string
	varFn       func() string
	AlwaysEmit  bool
	Typ         *types.Type
	NumUsages   int
}

func (e *EvalOnceExpr) Dependencies() []Expression { return []Expression{e.WrappedExpr} }
func (e *EvalOnceExpr) Type() *types.Type          { return e.Typ }

// VarName returns (and, on first call, lazily generates) this temp's name.
func (e *EvalOnceExpr) VarName() string {
	if e.varName == "" {
		e.varName = e.varFn()
	}
	return e.varName
}

// Use records one more read of this value, propagating usage to whatever
// it wraps the first time the count crosses from zero to one (mirroring
// the original's "only mark dependencies used once we know we're not
// about to immediately discard this value" logic).
func (e *EvalOnceExpr) Use() {
	e.NumUsages++
	if e.NumUsages == 1 && !e.AlwaysEmit {
		MarkUsed(e.WrappedExpr)
	}
}

func (e *EvalOnceExpr) String() string {
	if e.NumUsages <= 1 {
		return e.WrappedExpr.String()
	}
	return e.VarName()
}

// NewEvalOnceExpr wraps expr for deferred naming, using nameFn to generate
// a name only if and when this temp ends up being referenced more than
// once.
func NewEvalOnceExpr(expr Expression, alwaysEmit bool, nameFn func() string) *EvalOnceExpr {
	return &EvalOnceExpr{WrappedExpr: expr, varFn: nameFn, AlwaysEmit: alwaysEmit, Typ: expr.Type()}
}

// PhiExpr is a placeholder standing in for "whatever value reg holds,
// depending on which predecessor of node we arrived from". It is created
// speculatively for every register that might differ across predecessors,
// and either resolved into a real name (if actually read) or discarded (if
// it turns out every predecessor agreed on the same value after all).
type PhiExpr struct {
	Reg             string
	Node            *cfg.Node
	Typ             *types.Type
	usedPhis        *[]*PhiExpr
	Name            string
	NumUsages       int
	ReplacementExpr Expression
	UsedBy          *PhiExpr
}

// NewPhiExpr creates a phi candidate for reg at node, registering itself
// into usedPhis (a worklist shared across the whole function) the first
// time it is actually used.
func NewPhiExpr(reg string, node *cfg.Node, usedPhis *[]*PhiExpr) *PhiExpr {
	return &PhiExpr{Reg: reg, Node: node, Typ: types.Any(), usedPhis: usedPhis}
}

func (p *PhiExpr) Dependencies() []Expression { return nil }
func (p *PhiExpr) Type() *types.Type          { return p.Typ }

// VarName returns this phi's assigned name, or a diagnostic placeholder if
// it was never assigned one (which should not happen for a used phi once
// AssignPhis has run).
func (p *PhiExpr) VarName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("unnamed-phi(%s)", p.Reg)
}

// Use records a read of this phi, optionally attributing it to another
// phi that reads through it (fromPhi), which lets PropagatesTo collapse
// chains of phis that all resolve to the same name.
func (p *PhiExpr) Use(fromPhi *PhiExpr) {
	if p.NumUsages == 0 && p.usedPhis != nil {
		*p.usedPhis = append(*p.usedPhis, p)
	}
	p.NumUsages++
	p.UsedBy = fromPhi
}

// PropagatesTo follows a chain of single-use phi-to-phi reads to the phi
// that actually needs a name, letting single-use phi temporaries be
// eliminated in favor of the phi that consumes them.
func (p *PhiExpr) PropagatesTo() *PhiExpr {
	if p.NumUsages != 1 || p.UsedBy == nil {
		return p
	}
	return p.UsedBy.PropagatesTo()
}

func (p *PhiExpr) String() string {
	if p.ReplacementExpr != nil {
		return p.ReplacementExpr.String()
	}
	return p.VarName()
}
