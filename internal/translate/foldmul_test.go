package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/translate"
	"github.com/mewbak/mips-to-c/internal/types"
)

func TestFoldMulChainsRecoversShiftAsMultiply(t *testing.T) {
	x := &ast.LocalVar{Value: 16, Typ: types.Intish()}
	shifted := ast.BinaryOpInt(x, "<<", ast.NewLiteral(2))

	folded, ok := translate.FoldMulChains(shifted).(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", folded.Op)
	lit, ok := folded.Right.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(4), lit.Value)
}

func TestFoldMulChainsIsNeutralAtCoefficientOne(t *testing.T) {
	x := &ast.LocalVar{Value: 16, Typ: types.Intish()}
	timesOne := ast.BinaryOpInt(x, "*", ast.NewLiteral(1))

	folded := translate.FoldMulChains(timesOne)
	assert.Same(t, timesOne, folded, "a coefficient of 1 should leave the expression untouched")
}

func TestFoldMulChainsCombinesAddOfSameBase(t *testing.T) {
	x := &ast.LocalVar{Value: 16, Typ: types.Intish()}
	doubled := ast.BinaryOpInt(x, "<<", ast.NewLiteral(1))
	sum := ast.BinaryOpInt(doubled, "+", x)

	folded, ok := translate.FoldMulChains(sum).(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", folded.Op)
	lit, ok := folded.Right.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(3), lit.Value, "x*2 + x should fold to x*3")
}
