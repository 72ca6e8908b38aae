package ast

// ExprEqual compares two expressions the way the translation core needs
// to: by value for the small set of node kinds that represent a fixed
// storage location or constant (locals, arguments, globals, literals,
// address-of, struct accesses), and by identity for everything else
// (computed values, temporaries, phis), since two separately-computed
// BinaryOps are never "the same value" just because they look alike.
func ExprEqual(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *LocalVar:
		bv, ok := b.(*LocalVar)
		return ok && av.Equal(bv)
	case *PassedInArg:
		bv, ok := b.(*PassedInArg)
		return ok && av.Value == bv.Value
	case *SubroutineArg:
		bv, ok := b.(*SubroutineArg)
		return ok && av.Value == bv.Value
	case *GlobalSymbol:
		bv, ok := b.(*GlobalSymbol)
		return ok && av.SymbolName == bv.SymbolName
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && av.Equal(bv)
	case *AddressOf:
		bv, ok := b.(*AddressOf)
		return ok && ExprEqual(av.Expr, bv.Expr)
	case *StructAccess:
		bv, ok := b.(*StructAccess)
		return ok && av.Offset == bv.Offset && ExprEqual(av.StructVar, bv.StructVar)
	default:
		return a == b
	}
}
