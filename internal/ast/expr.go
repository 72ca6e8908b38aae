// Package ast holds the typed expression and statement nodes the
// translator builds while walking a function's control-flow graph: the
// same small algebra of BinaryOp/Cast/FuncCall/local-variable/phi nodes
// that the original Python implementation calls Expression and Statement.
// The full AST-to-C emitter (declarations, braces, indentation) is a
// downstream collaborator; String() here only renders the minimal C-like
// projection the translation core's own tests and diagnostics need.
package ast

import (
	"fmt"
	"strings"

	"github.com/mewbak/mips-to-c/internal/types"
)

// Expression is any node that can appear in an output C expression.
type Expression interface {
	fmt.Stringer
	Dependencies() []Expression
	Type() *types.Type
}

// BinaryOp is a two-operand C operator application, e.g. "(a + b)".
type BinaryOp struct {
	Left  Expression
	Op    string
	Right Expression
	Typ   *types.Type
}

func (b *BinaryOp) Dependencies() []Expression { return []Expression{b.Left, b.Right} }
func (b *BinaryOp) Type() *types.Type          { return b.Typ }
func (b *BinaryOp) String() string             { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

var negatedOp = map[string]string{
	"==": "!=", "!=": "==",
	">": "<=", "<": ">=",
	">=": "<", "<=": ">",
}

// IsBoolean reports whether b's operator produces a boolean result.
func (b *BinaryOp) IsBoolean() bool {
	switch b.Op {
	case "==", "!=", ">", "<", ">=", "<=":
		return true
	}
	return false
}

// Negated returns the logical negation of a boolean BinaryOp by flipping
// its comparison operator, e.g. "a == b" becomes "a != b".
func (b *BinaryOp) Negated() *BinaryOp {
	op, ok := negatedOp[b.Op]
	if !ok {
		panic(fmt.Sprintf("ast: Negated called on non-boolean op %q", b.Op))
	}
	return &BinaryOp{Left: b.Left, Op: op, Right: b.Right, Typ: types.Bool()}
}

// UnaryOp is a single-operand prefix operator, e.g. "-x".
type UnaryOp struct {
	Op   string
	Expr Expression
	Typ  *types.Type
}

func (u *UnaryOp) Dependencies() []Expression { return []Expression{u.Expr} }
func (u *UnaryOp) Type() *types.Type          { return u.Typ }
func (u *UnaryOp) String() string             { return u.Op + u.Expr.String() }

// Cast reinterprets or converts expr to a new type. Reinterpret casts that
// are silent, or whose source type is already obvious to a reader, are
// not printed at all; this keeps the output from being littered with
// casts the type lattice inserted purely for internal bookkeeping.
type Cast struct {
	Expr        Expression
	Typ         *types.Type
	Reinterpret bool
	Silent      bool
}

func (c *Cast) Dependencies() []Expression { return []Expression{c.Expr} }
func (c *Cast) Type() *types.Type          { return c.Typ }
func (c *Cast) String() string {
	if c.Reinterpret && (c.Silent || IsTypeObvious(c.Expr)) {
		return c.Expr.String()
	}
	if c.Reinterpret && c.Expr.Type().IsFloat() != c.Typ.IsFloat() {
		return fmt.Sprintf("(bitwise %s) %s", c.Typ, c.Expr)
	}
	return fmt.Sprintf("(%s) %s", c.Typ, c.Expr)
}

// FuncCall is a call to a named subroutine with already-translated
// argument expressions.
type FuncCall struct {
	FuncName string
	Args     []Expression
	Typ      *types.Type
}

func (f *FuncCall) Dependencies() []Expression { return f.Args }
func (f *FuncCall) Type() *types.Type          { return f.Typ }
func (f *FuncCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.FuncName, strings.Join(parts, ", "))
}

// LocalVar names a stack slot in the function's own frame by its offset.
type LocalVar struct {
	Value int
	Typ   *types.Type
}

func (l *LocalVar) Dependencies() []Expression { return nil }
func (l *LocalVar) Type() *types.Type          { return l.Typ }
func (l *LocalVar) String() string             { return "sp" + formatHex(l.Value) }

// Equal compares LocalVars by stack offset only, ignoring type, matching
// the original's identity semantics for recognizing restores of the same
// slot.
func (l *LocalVar) Equal(other *LocalVar) bool { return other != nil && l.Value == other.Value }

// PassedInArg names an incoming argument by its offset from the start of
// the argument area. Copied distinguishes an argument register snapshot
// taken at entry (Copied == false) from one re-synthesized on a later read
// (Copied == true), matching the original's "copied" bookkeeping.
type PassedInArg struct {
	Value  int
	Copied bool
	Typ    *types.Type
}

func (p *PassedInArg) Dependencies() []Expression { return nil }
func (p *PassedInArg) Type() *types.Type          { return p.Typ }
func (p *PassedInArg) String() string {
	if p.Value%4 == 0 {
		return "arg" + formatHex(p.Value/4)
	}
	return "arg_unaligned" + formatHex(p.Value)
}

// SubroutineArg names an outgoing argument written into the caller's
// stack-passed-argument region, for calls with more than four arguments.
type SubroutineArg struct {
	Value int
	Typ   *types.Type
}

func (s *SubroutineArg) Dependencies() []Expression { return nil }
func (s *SubroutineArg) Type() *types.Type          { return s.Typ }
func (s *SubroutineArg) String() string             { return "subroutine_arg" + formatHex(s.Value/4) }

// StructAccess is a dereference of a pointer-typed expression at a fixed
// byte offset, rendered as "*p" / "p->unkNN" or, when the base is an
// AddressOf, folded back into "v" / "v.unkNN".
type StructAccess struct {
	StructVar Expression
	Offset    int
	Typ       *types.Type
}

func (s *StructAccess) Dependencies() []Expression { return []Expression{s.StructVar} }
func (s *StructAccess) Type() *types.Type          { return s.Typ }
func (s *StructAccess) String() string {
	if addr, ok := s.StructVar.(*AddressOf); ok {
		if s.Offset == 0 {
			return addr.Expr.String()
		}
		return fmt.Sprintf("%s.unk%s", addr.Expr, formatHex(s.Offset))
	}
	if s.Offset == 0 {
		return "*" + s.StructVar.String()
	}
	return fmt.Sprintf("%s->unk%s", s.StructVar, formatHex(s.Offset))
}

// GlobalSymbol references a named external symbol.
type GlobalSymbol struct {
	SymbolName string
	Typ        *types.Type
}

func (g *GlobalSymbol) Dependencies() []Expression { return nil }
func (g *GlobalSymbol) Type() *types.Type          { return g.Typ }
func (g *GlobalSymbol) String() string             { return g.SymbolName }

// Literal is a constant value, rendered according to its inferred type:
// floats get an 'f' or no suffix, pointers render as NULL or a cast,
// sub-word integers get a size cast, and unsigned values get a 'U' suffix.
type Literal struct {
	Value int64
	Typ   *types.Type
}

func NewLiteral(value int64) *Literal { return &Literal{Value: value, Typ: types.Any()} }

func (l *Literal) Dependencies() []Expression { return nil }
func (l *Literal) Type() *types.Type {
	if l.Typ == nil {
		return types.Any()
	}
	return l.Typ
}

// Equal compares Literals by value only, used to detect e.g. "compare
// against zero" patterns regardless of the literal's inferred type.
func (l *Literal) Equal(other *Literal) bool { return other != nil && l.Value == other.Value }

func (l *Literal) String() string {
	t := l.Type()
	if t.IsFloat() {
		if t.Size() == 32 {
			return fmt.Sprintf("%gf", ParseF32Imm(uint32(l.Value)))
		}
		return fmt.Sprintf("%g", ParseF64Imm(uint64(l.Value)))
	}
	prefix := ""
	if t.IsPointer() {
		if l.Value == 0 {
			return "NULL"
		}
		prefix = "(void *)"
	} else if t.Size() == 8 {
		prefix = "(u8)"
	} else if t.Size() == 16 {
		prefix = "(u16)"
	}
	suffix := ""
	if t.IsUnsigned() {
		suffix = "U"
	}
	var mid string
	abs := l.Value
	if abs < 0 {
		abs = -abs
	}
	if abs < 10 {
		mid = fmt.Sprintf("%d", l.Value)
	} else if l.Value < 0 {
		mid = fmt.Sprintf("-0x%x", abs)
	} else {
		mid = fmt.Sprintf("0x%x", abs)
	}
	return prefix + mid + suffix
}

// AddressOf is "&expr".
type AddressOf struct {
	Expr Expression
	Typ  *types.Type
}

func NewAddressOf(expr Expression) *AddressOf { return &AddressOf{Expr: expr, Typ: types.Ptr()} }

func (a *AddressOf) Dependencies() []Expression { return []Expression{a.Expr} }
func (a *AddressOf) Type() *types.Type          { return a.Typ }
func (a *AddressOf) String() string             { return "&" + a.Expr.String() }

func formatHex(val int) string {
	if val < 0 {
		return fmt.Sprintf("-%X", -val)
	}
	return fmt.Sprintf("%X", val)
}
