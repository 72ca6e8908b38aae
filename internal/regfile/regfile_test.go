package regfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
)

func TestGetSynthesizesZeroRegister(t *testing.T) {
	info := regfile.New(nil, stackframe.New("f"))
	zero := info.Get("zero")
	lit, ok := zero.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(0), lit.Value)
}

func TestGetPanicsOnUnsetRegister(t *testing.T) {
	info := regfile.New(nil, stackframe.New("f"))
	assert.Panics(t, func() { info.Get("v0") })
}

func TestSetAliasesV0ToReturnReg(t *testing.T) {
	info := regfile.New(nil, stackframe.New("f"))
	val := ast.NewLiteral(5)
	info.Set("v0", val)

	assert.Same(t, val, info.GetRaw("v0"))
	assert.Same(t, val, info.GetRaw("return_reg"), "writing $v0 should mirror into return_reg")
}

func TestSetAliasesF0ToReturnReg(t *testing.T) {
	info := regfile.New(nil, stackframe.New("f"))
	val := ast.NewLiteral(5)
	info.Set("f0", val)

	assert.Same(t, val, info.GetRaw("return_reg"), "writing $f0 should mirror into return_reg too")
}

func TestGetResnapshotsUncopiedPassedInArg(t *testing.T) {
	stackInfo := stackframe.New("f")
	info := regfile.New(map[string]ast.Expression{
		"a0": &ast.PassedInArg{Value: 0, Copied: false, Typ: stackInfo.UniqueTypeFor("arg", 0)},
	}, stackInfo)

	first := info.Get("a0")
	arg, ok := first.(*ast.PassedInArg)
	require.True(t, ok)
	assert.True(t, arg.Copied, "a read through Get should return a Copied snapshot")
	require.Len(t, stackInfo.Arguments, 1, "the snapshot should be recorded as a known incoming argument")
}

func TestClearCallerSaveRegsDropsArgumentsButKeepsCalleeSave(t *testing.T) {
	info := regfile.New(map[string]ast.Expression{
		"a0": ast.NewLiteral(1),
		"s0": ast.NewLiteral(2),
	}, stackframe.New("f"))

	info.ClearCallerSaveRegs()

	assert.False(t, info.Has("a0"))
	assert.True(t, info.Has("s0"), "callee-save registers are not clobbered by a call")
}

func TestCopyIsIndependentOfOriginal(t *testing.T) {
	info := regfile.New(map[string]ast.Expression{"a0": ast.NewLiteral(1)}, stackframe.New("f"))
	snapshot := info.Copy()

	info.Set("a0", ast.NewLiteral(2))
	lit := snapshot["a0"].(*ast.Literal)
	assert.Equal(t, int64(1), lit.Value, "mutating the live register file should not affect a prior Copy")
}
