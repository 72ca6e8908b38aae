package translate

import (
	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
	"github.com/mewbak/mips-to-c/internal/types"
)

// Deref resolves a memory operand into the expression it reads from (or,
// when store is true, writes to): a stack variable when the base register
// is $sp/$fp, or a StructAccess -- unifying the base's type with pointer
// -- for any other base register, since that means some other register
// is being used as a struct/array pointer.
func Deref(ref MemRef, regs *regfile.Info, stackInfo *stackframe.Info, store bool) ast.Expression {
	switch v := ref.(type) {
	case AddressModeRef:
		location := addressModeOffset(v.AddressMode)
		if v.Base.Name == "sp" || v.Base.Name == "fp" {
			return stackInfo.GetStackVar(location, store)
		}
		varExpr := regs.Get(v.Base.Name)
		varExpr.Type().Unify(types.Ptr())
		return &ast.StructAccess{
			StructVar: varExpr,
			Offset:    location,
			Typ:       stackInfo.UniqueStructTypeFor(varExpr, location),
		}
	case GlobalSymbolRef:
		return v.GlobalSymbol
	default:
		panic("translate: unreachable memory reference kind")
	}
}

// addressModeOffset reads an address mode's constant byte offset. By the
// time this runs, StripMacros has already replaced any "%lo(...)" offset
// with a nil offset (read here as zero), so a non-literal offset here
// would indicate an instruction whose operand StripMacros was never
// applied to.
func addressModeOffset(am asmast.AddressMode) int {
	if am.Offset == nil {
		return 0
	}
	lit, ok := am.Offset.(asmast.Literal)
	if !ok {
		panic("translate: address mode offset is not a resolved literal")
	}
	return int(lit.Value)
}
