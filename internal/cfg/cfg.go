// Package cfg is a minimal stand-in for the control-flow-graph and
// dominator-tree builder that a real decompiler front end would own. The
// translation core only needs a CFG with correct immediate-dominator and
// dominance-frontier-adjacent ("immediately dominates") information; this
// package builds exactly that from a flat instruction stream, branch
// mnemonics, and labels, the way flow_graph.py does upstream.
package cfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mewbak/mips-to-c/internal/asmast"
)

// branchMnemonics lists every conditional-branch family the translator
// knows about; anything else that isn't an unconditional jump falls
// through to the next instruction only.
var branchMnemonics = map[string]bool{
	"b": true, "beq": true, "bne": true, "beqz": true, "bnez": true,
	"blez": true, "bgtz": true, "bltz": true, "bgez": true,
	"bc1t": true, "bc1f": true,
}

// Block is a maximal straight-line run of instructions: it ends at a
// branch/jump/return and begins right after one (or at a label).
type Block struct {
	Label        string
	Instructions []asmast.Instruction
}

// Node is one vertex of the control-flow graph plus its place in the
// dominator tree, filled in by Build.
type Node struct {
	Block    *Block
	IsReturn bool

	Parents  []*Node
	Children []*Node

	ImmediateDominator   *Node
	ImmediatelyDominates []*Node

	// BlockInfo is opaque storage for whatever the translator attaches to
	// this node once it has been translated (a *translate.BlockInfo).
	BlockInfo interface{}
}

// Graph is a translated function's control-flow graph, dominator tree
// included. Nodes[0] is always the entry node.
type Graph struct {
	Nodes []*Node
}

// BodyItem is either an asmast.Instruction or an asmast.Label, mirroring
// the interleaved instruction/label stream a parser produces.
type BodyItem interface {
	isBodyItem()
}

type InstructionItem struct{ Instruction asmast.Instruction }

func (InstructionItem) isBodyItem() {}

type LabelItem struct{ Label asmast.Label }

func (LabelItem) isBodyItem() {}

// Function is one decompiled MIPS function: a name and its raw body, prior
// to being split into basic blocks.
type Function struct {
	Name string
	Body []BodyItem
}

// Build partitions fn's body into basic blocks, wires up successor edges
// from branches/jumps/fallthrough, and computes the dominator tree with the
// standard iterative (Cooper-Harvey-Kennedy) fixpoint algorithm.
func Build(fn *Function) (*Graph, error) {
	blocks, labelIndex := splitBlocks(fn)
	if len(blocks) == 0 {
		return nil, fmt.Errorf("cfg: function %q has no instructions", fn.Name)
	}

	nodes := make([]*Node, len(blocks))
	for i, b := range blocks {
		nodes[i] = &Node{Block: b}
	}

	for i, b := range blocks {
		last := lastInstruction(b)
		node := nodes[i]
		fallsThrough := true
		if last != nil {
			switch {
			case last.Mnemonic == "jr":
				node.IsReturn = true
				fallsThrough = false
			case last.Mnemonic == "jal":
				// Calls fall through to the next instruction after return.
			case last.Mnemonic == "b":
				target := branchTargetLabel(*last)
				linkEdge(node, nodes, labelIndex, target)
				fallsThrough = false
			case branchMnemonics[last.Mnemonic]:
				target := branchTargetLabel(*last)
				linkEdge(node, nodes, labelIndex, target)
				// Conditional branches also fall through to the next block.
			}
		}
		if fallsThrough && i+1 < len(nodes) {
			addEdge(node, nodes[i+1])
		}
	}

	if err := computeDominators(nodes); err != nil {
		return nil, fmt.Errorf("cfg: computing dominators for %q: %w", fn.Name, err)
	}
	return &Graph{Nodes: nodes}, nil
}

func addEdge(from, to *Node) {
	for _, c := range from.Children {
		if c == to {
			return
		}
	}
	from.Children = append(from.Children, to)
	to.Parents = append(to.Parents, from)
}

func linkEdge(from *Node, nodes []*Node, labelIndex map[string]int, target string) {
	if target == "" {
		return
	}
	idx, ok := labelIndex[target]
	if !ok {
		return
	}
	addEdge(from, nodes[idx])
}

func lastInstruction(b *Block) *asmast.Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return &b.Instructions[len(b.Instructions)-1]
}

func branchTargetLabel(instr asmast.Instruction) string {
	for _, a := range instr.Args {
		if sym, ok := a.(asmast.GlobalSymbol); ok {
			// Label definitions are stored with their leading "." stripped
			// (matching original_source/src/parse_file.py's
			// line.strip('.:')), but a branch operand referencing one
			// still spells it with the dot, e.g. "beqz $a0, .L80012345".
			return strings.TrimPrefix(sym.Name, ".")
		}
	}
	return ""
}

// splitBlocks turns the raw label/instruction stream into basic blocks,
// starting a new block at every label and after every branch/jump.
func splitBlocks(fn *Function) ([]*Block, map[string]int) {
	var blocks []*Block
	labelIndex := map[string]int{}
	cur := &Block{}
	flushed := false

	flush := func() {
		if len(cur.Instructions) > 0 || !flushed {
			blocks = append(blocks, cur)
			flushed = true
		}
	}

	for _, item := range fn.Body {
		switch v := item.(type) {
		case LabelItem:
			if len(cur.Instructions) > 0 {
				flush()
				cur = &Block{}
			}
			cur.Label = v.Label.Name
			labelIndex[v.Label.Name] = len(blocks)
		case InstructionItem:
			cur.Instructions = append(cur.Instructions, v.Instruction)
			if endsBlock(v.Instruction) {
				flush()
				cur = &Block{}
			}
		}
	}
	if len(cur.Instructions) > 0 {
		flush()
	}
	return blocks, labelIndex
}

func endsBlock(instr asmast.Instruction) bool {
	if instr.Mnemonic == "jr" || instr.Mnemonic == "b" {
		return true
	}
	return branchMnemonics[instr.Mnemonic]
}

// computeDominators implements the classic iterative dominator algorithm
// over a reverse-postorder traversal, then derives ImmediatelyDominates
// from each node's ImmediateDominator.
func computeDominators(nodes []*Node) error {
	if len(nodes) == 0 {
		return nil
	}
	order := reversePostorder(nodes[0])
	indexOf := make(map[*Node]int, len(order))
	for i, n := range order {
		indexOf[n] = i
	}

	idom := make([]*Node, len(order))
	idom[0] = order[0]
	changed := true
	for changed {
		changed = false
		for i := 1; i < len(order); i++ {
			n := order[i]
			var newIdom *Node
			for _, p := range n.Parents {
				pi, ok := indexOf[p]
				if !ok || idom[pi] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, indexOf, newIdom, p)
			}
			if newIdom != nil && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}

	for i, n := range order {
		if i == 0 {
			n.ImmediateDominator = nil
			continue
		}
		n.ImmediateDominator = idom[i]
	}
	for i, n := range order {
		if i == 0 {
			continue
		}
		d := idom[i]
		d.ImmediatelyDominates = append(d.ImmediatelyDominates, n)
	}
	return nil
}

func intersect(idom []*Node, indexOf map[*Node]int, a, b *Node) *Node {
	ai, bi := indexOf[a], indexOf[b]
	for ai != bi {
		for ai > bi {
			a = idom[ai]
			ai = indexOf[a]
		}
		for bi > ai {
			b = idom[bi]
			bi = indexOf[b]
		}
	}
	return a
}

func reversePostorder(start *Node) []*Node {
	visited := map[*Node]bool{}
	var postorder []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, c := range n.Children {
			visit(c)
		}
		postorder = append(postorder, n)
	}
	visit(start)

	result := make([]*Node, len(postorder))
	for i, n := range postorder {
		result[len(postorder)-1-i] = n
	}
	// The entry node must lead; reversePostorder over a connected graph
	// reachable from start already guarantees this, but sort defensively
	// in case of disconnected return blocks reached only by fallthrough.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i] == start {
			return true
		}
		if result[j] == start {
			return false
		}
		return false
	})
	return result
}
