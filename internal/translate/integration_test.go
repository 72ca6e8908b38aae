package translate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/asmtext"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
	"github.com/mewbak/mips-to-c/internal/translate"
)

func translateSource(t *testing.T, src string) *translate.FunctionInfo {
	t.Helper()
	parsed, err := asmtext.Parse(strings.NewReader(src), "test.s")
	require.NoError(t, err)
	require.Len(t, parsed.Functions, 1)
	info, err := translate.TranslateToAST(parsed.Functions[0], translate.Options{})
	require.NoError(t, err)
	return info
}

func TestTranslateMinimalLeafReturnsFirstArgument(t *testing.T) {
	src := `
glabel identity
move $v0, $a0
jr $ra
`
	info := translateSource(t, src)
	require.Len(t, info.Graph.Nodes, 1)
	bi := info.Graph.Nodes[0].BlockInfo.(*translate.BlockInfo)
	require.NotNil(t, bi.ReturnValue)
	assert.Equal(t, "arg0", bi.ReturnValue.String(), "the first incoming argument renders as arg0")
}

func TestTranslateImmediateLoad(t *testing.T) {
	src := `
glabel get_five
li $v0, 5
jr $ra
`
	info := translateSource(t, src)
	bi := info.Graph.Nodes[0].BlockInfo.(*translate.BlockInfo)
	require.NotNil(t, bi.ReturnValue)
	assert.Equal(t, "5", bi.ReturnValue.String())
}

func TestTranslateLuiOriPair(t *testing.T) {
	// lui shifts its immediate left by 16; ori then ORs in the low half.
	// Nothing in this translator constant-folds the pair back into one
	// literal (matching the original implementation), so the result is
	// the bitwise-OR expression, not a single combined constant.
	src := `
glabel big_const
lui $v0, 0x1234
ori $v0, $v0, 0x5678
jr $ra
`
	info := translateSource(t, src)
	bi := info.Graph.Nodes[0].BlockInfo.(*translate.BlockInfo)
	require.NotNil(t, bi.ReturnValue)
	assert.Equal(t, "(0x12340000 | 0x5678)", bi.ReturnValue.String())
}

func TestTranslateDivisionProducesHiLoSplit(t *testing.T) {
	src := `
glabel quotient
div $zero, $a0, $a1
mflo $v0
jr $ra
`
	info := translateSource(t, src)
	bi := info.Graph.Nodes[0].BlockInfo.(*translate.BlockInfo)
	require.NotNil(t, bi.ReturnValue)
	once, ok := bi.ReturnValue.(*ast.EvalOnceExpr)
	require.True(t, ok, "mflo's result comes back as a register write, eval-once wrapped, got %T", bi.ReturnValue)
	bin, ok := once.WrappedExpr.(*ast.BinaryOp)
	require.True(t, ok, "expected the wrapped expression to be a division BinaryOp, got %T", once.WrappedExpr)
	assert.Equal(t, "/", bin.Op)
}

func TestTranslateStackAddressAndCallRecordsNonLeafFrame(t *testing.T) {
	src := `
glabel with_local
addiu $sp, $sp, -24
sw $ra, 20($sp)
addiu $a0, $sp, 8
jal helper
nop
lw $ra, 20($sp)
addiu $sp, $sp, 24
jr $ra
`
	info := translateSource(t, src)
	require.Equal(t, "with_local", info.StackInfo.FunctionName)
	assert.False(t, info.StackInfo.IsLeaf)
	assert.Equal(t, 24, info.StackInfo.AllocatedStackSize)
}

func TestTranslatePhiAtDiamondJoin(t *testing.T) {
	// Two paths set $t0 to different constants, converge, and only then
	// move the result into $v0: a real diamond join on a scratch
	// register where each predecessor disagrees, so the phi can't
	// collapse and must get a name with a SetPhiStmt written into both
	// predecessor blocks.
	src := `
glabel pick
beqz $a0, .Lelse
li $t0, 1
b .Lend
.Lelse:
li $t0, 2
.Lend:
move $v0, $t0
jr $ra
`
	info := translateSource(t, src)

	var returningNodes int
	var phiAssignments int
	for _, node := range info.Graph.Nodes {
		bi, ok := node.BlockInfo.(*translate.BlockInfo)
		if !ok {
			continue
		}
		if bi.ReturnValue != nil {
			returningNodes++
		}
		for _, stmt := range bi.ToWrite {
			if _, ok := stmt.(*ast.SetPhiStmt); ok {
				phiAssignments++
			}
		}
	}
	assert.Equal(t, 1, returningNodes, "exactly the merge block should carry the resolved return value")
	assert.Equal(t, 2, phiAssignments, "each of the two predecessors should receive its own phi assignment")
	require.NotEmpty(t, info.StackInfo.PhiVars, "the unresolved t0 phi should be given a stable name")
}

func TestRepeatedDerefThroughUncopiedArgumentSharesOneStructType(t *testing.T) {
	// regfile.Info.Get mints a brand-new *ast.PassedInArg pointer on every
	// read of an uncopied incoming argument register without writing the
	// fresh copy back, so "lw $v0, 4($a0)" followed later by
	// "lw $v1, 4($a0)" (with $a0 never copied to a temp in between) is the
	// single most common struct-pointer-parameter access pattern and must
	// still unify both loads against one refinable field type.
	stackInfo := stackframe.New("f")
	regs := regfile.New(map[string]ast.Expression{
		"a0": &ast.PassedInArg{Value: 0, Copied: false, Typ: stackInfo.UniqueTypeFor("arg", 0)},
	}, stackInfo)

	ref := translate.AddressModeRef{AddressMode: asmast.AddressMode{
		Offset: asmast.Literal{Value: 4},
		Base:   asmast.NewRegister("a0"),
	}}

	first := translate.Deref(ref, regs, stackInfo, false)
	second := translate.Deref(ref, regs, stackInfo, false)

	sa1, ok := first.(*ast.StructAccess)
	require.True(t, ok)
	sa2, ok := second.(*ast.StructAccess)
	require.True(t, ok)

	require.False(t, sa1.StructVar == sa2.StructVar, "each read re-mints a distinct PassedInArg pointer")
	assert.Same(t, sa1.Typ, sa2.Typ, "both dereferences of the same uncopied argument at the same offset must share one type")
}
