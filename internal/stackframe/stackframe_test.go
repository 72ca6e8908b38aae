package stackframe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/cfg"
	"github.com/mewbak/mips-to-c/internal/stackframe"
)

func reg(name string) asmast.Register { return asmast.NewRegister(name) }

func addr(offset int64, base string) asmast.AddressMode {
	return asmast.AddressMode{Offset: asmast.Literal{Value: offset}, Base: reg(base)}
}

func node(instrs ...asmast.Instruction) *cfg.Node {
	return &cfg.Node{Block: &cfg.Block{Instructions: instrs}}
}

func TestBuildLeafFunctionWithNoSpills(t *testing.T) {
	n := node(
		asmast.Instruction{Mnemonic: "addiu", Args: []asmast.Argument{reg("sp"), reg("sp"), asmast.Literal{Value: -8}}},
		asmast.Instruction{Mnemonic: "addu", Args: []asmast.Argument{reg("v0"), reg("a0"), reg("a1")}},
	)
	info := stackframe.Build("leaf_fn", n)

	assert.True(t, info.IsLeaf)
	assert.Equal(t, 8, info.AllocatedStackSize)
	assert.Equal(t, 0, info.LocalVarsRegionBottom)
}

func TestBuildNonLeafRecordsReturnAddrAndCalleeSaves(t *testing.T) {
	n := node(
		asmast.Instruction{Mnemonic: "addiu", Args: []asmast.Argument{reg("sp"), reg("sp"), asmast.Literal{Value: -32}}},
		asmast.Instruction{Mnemonic: "sw", Args: []asmast.Argument{reg("ra"), addr(28, "sp")}},
		asmast.Instruction{Mnemonic: "sw", Args: []asmast.Argument{reg("s0"), addr(24, "sp")}},
	)
	info := stackframe.Build("with_spills", n)

	require.False(t, info.IsLeaf)
	assert.Equal(t, 32, info.AllocatedStackSize)
	assert.Equal(t, 28, info.ReturnAddrLocation)
	assert.Equal(t, 24, info.CalleeSaveRegLocations["s0"])
	assert.Equal(t, 32, info.LocalVarsRegionBottom, "local vars start right after the saved return address")
}

func TestInSubroutineArgRegionUsesLowestCalleeSaveWhenPresent(t *testing.T) {
	n := node(
		asmast.Instruction{Mnemonic: "addiu", Args: []asmast.Argument{reg("sp"), reg("sp"), asmast.Literal{Value: -32}}},
		asmast.Instruction{Mnemonic: "sw", Args: []asmast.Argument{reg("ra"), addr(28, "sp")}},
		asmast.Instruction{Mnemonic: "sw", Args: []asmast.Argument{reg("s0"), addr(24, "sp")}},
	)
	info := stackframe.Build("f", n)

	assert.True(t, info.InSubroutineArgRegion(16), "below the lowest callee-save slot is outgoing-arg space")
	assert.False(t, info.InSubroutineArgRegion(24), "the callee-save slot itself is not outgoing-arg space")
}

func TestGetStackVarClassifiesEachRegion(t *testing.T) {
	n := node(
		asmast.Instruction{Mnemonic: "addiu", Args: []asmast.Argument{reg("sp"), reg("sp"), asmast.Literal{Value: -40}}},
		asmast.Instruction{Mnemonic: "sw", Args: []asmast.Argument{reg("ra"), addr(20, "sp")}},
	)
	info := stackframe.Build("f", n)
	// AllocatedStackSize=40, ReturnAddrLocation=20, LocalVarsRegionBottom=24.

	above := info.GetStackVar(40, false)
	if _, ok := above.(*ast.PassedInArg); !ok {
		t.Fatalf("expected a PassedInArg for a location above the allocated frame, got %T", above)
	}

	local := info.GetStackVar(30, false)
	if _, ok := local.(*ast.LocalVar); !ok {
		t.Fatalf("expected a LocalVar for a location inside the local-var region, got %T", local)
	}

	subArg := info.GetStackVar(10, false)
	if _, ok := subArg.(*ast.SubroutineArg); !ok {
		t.Fatalf("expected a SubroutineArg for a location below the saved return address, got %T", subArg)
	}
}

func TestGlobalSymbolSharesTypeAcrossCalls(t *testing.T) {
	info := stackframe.New("f")
	a := info.GlobalSymbol("some_table")
	b := info.GlobalSymbol("some_table")
	assert.Same(t, a.Typ, b.Typ, "repeated references to the same symbol should share one type")
}

func TestAddLocalVarKeepsSortedAndDeduplicates(t *testing.T) {
	info := stackframe.New("f")
	info.AddLocalVar(&ast.LocalVar{Value: 16, Typ: info.UniqueTypeFor("stack", 16)})
	info.AddLocalVar(&ast.LocalVar{Value: 8, Typ: info.UniqueTypeFor("stack", 8)})
	info.AddLocalVar(&ast.LocalVar{Value: 8, Typ: info.UniqueTypeFor("stack", 8)})

	require.Len(t, info.LocalVars, 2)
	assert.Equal(t, 8, info.LocalVars[0].Value)
	assert.Equal(t, 16, info.LocalVars[1].Value)
}

func TestUniqueStructTypeForSharesTypeAcrossEquivalentBases(t *testing.T) {
	info := stackframe.New("f")
	// Two separately-minted PassedInArg pointers for the same uncopied
	// argument register -- exactly what regfile.Info.Get produces on
	// repeated reads of an uncopied incoming argument -- should still
	// share one type, the way two equal-by-value Python attrs instances
	// would share a dict entry.
	a := &ast.PassedInArg{Value: 0, Copied: true, Typ: info.UniqueTypeFor("arg", 0)}
	b := &ast.PassedInArg{Value: 0, Copied: true, Typ: info.UniqueTypeFor("arg", 0)}
	require.False(t, a == b, "the two bases must be distinct pointers for this test to mean anything")

	t1 := info.UniqueStructTypeFor(a, 4)
	t2 := info.UniqueStructTypeFor(b, 4)
	assert.Same(t, t1, t2, "dereferencing the same uncopied argument at the same offset should share one type")
}

func TestUniqueStructTypeForDistinguishesByOffsetAndBase(t *testing.T) {
	info := stackframe.New("f")
	a := &ast.PassedInArg{Value: 0, Copied: true}
	other := &ast.PassedInArg{Value: 4, Copied: true}

	t1 := info.UniqueStructTypeFor(a, 4)
	t2 := info.UniqueStructTypeFor(a, 8)
	assert.NotSame(t, t1, t2, "different offsets through the same base are different fields")

	t3 := info.UniqueStructTypeFor(other, 4)
	assert.NotSame(t, t1, t3, "different bases are never the same struct")
}
