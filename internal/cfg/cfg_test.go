package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mewbak/mips-to-c/internal/asmast"
	"github.com/mewbak/mips-to-c/internal/cfg"
)

func instr(mnemonic string, args ...asmast.Argument) asmast.Instruction {
	return asmast.Instruction{Mnemonic: mnemonic, Args: args}
}

func reg(name string) asmast.Register { return asmast.NewRegister(name) }

// buildDiamond constructs: entry -(beqz)-> else, entry falls through to
// then; then and else both fall through/jump to merge; merge returns.
func buildDiamond(t *testing.T) *cfg.Graph {
	t.Helper()
	fn := &cfg.Function{
		Name: "diamond",
		Body: []cfg.BodyItem{
			cfg.InstructionItem{Instruction: instr("beqz", reg("a0"), asmast.GlobalSymbol{Name: ".Lelse"})},
			cfg.InstructionItem{Instruction: instr("li", reg("t0"), asmast.Literal{Value: 1})},
			cfg.InstructionItem{Instruction: instr("b", asmast.GlobalSymbol{Name: ".Lend"})},
			cfg.LabelItem{Label: asmast.Label{Name: "Lelse"}},
			cfg.InstructionItem{Instruction: instr("li", reg("t0"), asmast.Literal{Value: 2})},
			cfg.LabelItem{Label: asmast.Label{Name: "Lend"}},
			cfg.InstructionItem{Instruction: instr("move", reg("v0"), reg("t0"))},
			cfg.InstructionItem{Instruction: instr("jr", reg("ra"))},
		},
	}
	graph, err := cfg.Build(fn)
	require.NoError(t, err)
	return graph
}

func TestBuildWiresBranchEdgesDespiteLabelDotAsymmetry(t *testing.T) {
	graph := buildDiamond(t)
	require.Len(t, graph.Nodes, 4, "entry, then-branch, else-branch, merge")

	entry := graph.Nodes[0]
	require.Len(t, entry.Children, 2, "entry should fall through AND branch to .Lelse")
}

func TestMergeNodeIsDominatedByEntryNotByEitherBranch(t *testing.T) {
	graph := buildDiamond(t)
	merge := graph.Nodes[len(graph.Nodes)-1]
	entry := graph.Nodes[0]

	require.NotNil(t, merge.ImmediateDominator)
	assert.Same(t, entry, merge.ImmediateDominator, "neither diamond arm alone dominates the merge block")
}

func TestEntryImmediatelyDominatesBothBranchArms(t *testing.T) {
	graph := buildDiamond(t)
	entry := graph.Nodes[0]

	assert.Len(t, entry.ImmediatelyDominates, 3, "entry dominates the then-arm, else-arm, and merge block")
}

func TestLinearFunctionHasTrivialDominatorChain(t *testing.T) {
	fn := &cfg.Function{
		Name: "linear",
		Body: []cfg.BodyItem{
			cfg.InstructionItem{Instruction: instr("move", reg("v0"), reg("a0"))},
			cfg.InstructionItem{Instruction: instr("jr", reg("ra"))},
		},
	}
	graph, err := cfg.Build(fn)
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	assert.True(t, graph.Nodes[0].IsReturn)
}

func TestBuildRejectsEmptyFunction(t *testing.T) {
	_, err := cfg.Build(&cfg.Function{Name: "empty"})
	assert.Error(t, err)
}
