package asmtext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/asmtext"
	"github.com/mewbak/mips-to-c/internal/cfg"
)

func parseOne(t *testing.T, src string) *cfg.Function {
	t.Helper()
	file, err := asmtext.Parse(strings.NewReader(src), "test.s")
	require.NoError(t, err)
	require.Len(t, file.Functions, 1)
	return file.Functions[0]
}

func instrAt(t *testing.T, fn *cfg.Function, i int) asmast.Instruction {
	t.Helper()
	item, ok := fn.Body[i].(cfg.InstructionItem)
	require.True(t, ok, "body item %d is not an instruction", i)
	return item.Instruction
}

func TestParseStripsCommentsAndDirectives(t *testing.T) {
	fn := parseOne(t, `
glabel f
.set noreorder # a trailing comment
/* a block comment */ move $v0, $a0
jr $ra
`)
	require.Len(t, fn.Body, 2, "the directive line should be dropped entirely")
	instr := instrAt(t, fn, 0)
	assert.Equal(t, "move", instr.Mnemonic)
}

func TestParseLabelDefinitionStripsLeadingDot(t *testing.T) {
	fn := parseOne(t, `
glabel f
beqz $a0, .Lend
nop
.Lend:
jr $ra
`)
	var label asmast.Label
	found := false
	for _, item := range fn.Body {
		if li, ok := item.(cfg.LabelItem); ok {
			label = li.Label
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, "Lend", label.Name, "the leading dot should be stripped from a label definition")
}

func TestParseRecognizesJumpTableLabelInsideFunction(t *testing.T) {
	fn := parseOne(t, `
glabel f
lw $t0, 0($a0)
glabel L80012345
.word f
jr $ra
`)
	var label asmast.Label
	found := false
	for _, item := range fn.Body {
		if li, ok := item.(cfg.LabelItem); ok && li.Label.Name == "L80012345" {
			label = li.Label
			found = true
		}
	}
	require.True(t, found)
	assert.True(t, label.IsJumpTable)
}

func TestParseAddressModeOperand(t *testing.T) {
	fn := parseOne(t, `
glabel f
lw $t0, 20($sp)
jr $ra
`)
	instr := instrAt(t, fn, 0)
	require.Len(t, instr.Args, 2)
	am, ok := instr.Args[1].(asmast.AddressMode)
	require.True(t, ok)
	assert.Equal(t, "sp", am.Base.Name)
	lit, ok := am.Offset.(asmast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(20), lit.Value)
}

func TestParseHiLoMacroOperand(t *testing.T) {
	fn := parseOne(t, `
glabel f
lui $at, %hi(some_sym)
lw $t0, %lo(some_sym)($at)
jr $ra
`)
	hi := instrAt(t, fn, 0)
	require.Len(t, hi.Args, 2)
	macro, ok := hi.Args[1].(asmast.Macro)
	require.True(t, ok)
	assert.Equal(t, "hi", macro.Name)
	sym, ok := macro.Argument.(asmast.GlobalSymbol)
	require.True(t, ok)
	assert.Equal(t, "some_sym", sym.Name)

	lw := instrAt(t, fn, 1)
	am, ok := lw.Args[1].(asmast.AddressMode)
	require.True(t, ok)
	loMacro, ok := am.Offset.(asmast.Macro)
	require.True(t, ok)
	assert.Equal(t, "lo", loMacro.Name)
}

func TestParseLiteralBinOpOperand(t *testing.T) {
	fn := parseOne(t, `
glabel f
andi $t0, $t1, (var_x & 0xffff)
jr $ra
`)
	instr := instrAt(t, fn, 0)
	require.Len(t, instr.Args, 3)
	bin, ok := instr.Args[2].(asmast.BinOp)
	require.True(t, ok)
	assert.Equal(t, "&", bin.Op)
	sym, ok := bin.Left.(asmast.GlobalSymbol)
	require.True(t, ok)
	assert.Equal(t, "var_x", sym.Name)
}

func TestParseRejectsInstructionOutsideFunction(t *testing.T) {
	_, err := asmtext.Parse(strings.NewReader("jr $ra\n"), "test.s")
	assert.Error(t, err)
}

func TestParseTwoOperandFormKeepsRawArgCountAtTwo(t *testing.T) {
	// ori's two-operand shorthand is expanded later by the translator's
	// DuplicateDestReg, not by the parser -- the parser should hand back
	// exactly the operands that were written.
	fn := parseOne(t, `
glabel f
ori $v0, 0x5678
jr $ra
`)
	instr := instrAt(t, fn, 0)
	assert.Len(t, instr.Args, 2)
}
