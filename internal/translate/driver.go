package translate

import (
	"fmt"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/cfg"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
)

// BlockInfo is the translated form of one basic block: the statements it
// writes out, its branch condition (if any), the value it returns (if
// it's a return block), and the register file state as of the end of the
// block -- which becomes the starting point for everything it dominates.
type BlockInfo struct {
	ToWrite             []ast.Statement
	ReturnValue         ast.Expression
	BranchCondition     *ast.BinaryOp
	FinalRegisterStates *regfile.Info
}

func (b *BlockInfo) String() string {
	s := "Statements:"
	for _, w := range b.ToWrite {
		if w.ShouldWrite() {
			s += "\n\t" + w.String()
		}
	}
	return fmt.Sprintf("%s\nBranch condition: %v\nFinal register states: %s", s, b.BranchCondition, b.FinalRegisterStates)
}

// BlockError is the error TranslateGraphFromBlock returns for a per-block
// translation failure when Options.StopOnError is set, aborting the whole
// function. Without StopOnError the failure is recovered into a
// CommentStmt instead and no BlockError is produced.
type BlockError struct {
	Node *cfg.Node
	Err  error
}

func (e *BlockError) Error() string { return fmt.Sprintf("translating block: %v", e.Err) }
func (e *BlockError) Unwrap() error { return e.Err }

// RegsClobberedUntilDominator returns every register written to by any
// block strictly between node and its immediate dominator (not including
// the dominator's own writes), which is the set of registers whose value
// might legitimately differ depending on which path reached node.
func RegsClobberedUntilDominator(node *cfg.Node) (map[string]bool, error) {
	clobbered := map[string]bool{}
	if node.ImmediateDominator == nil {
		return clobbered, nil
	}
	seen := map[*cfg.Node]bool{node.ImmediateDominator: true}
	stack := append([]*cfg.Node{}, node.Parents...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, instr := range n.Block.Instructions {
			regs, err := OutputRegsForInstr(instr)
			if err != nil {
				return nil, err
			}
			for _, r := range regs {
				clobbered[r] = true
			}
			if instr.Mnemonic == "jal" {
				for _, r := range regfile.CallerSaveRegs {
					clobbered[r] = true
				}
			}
		}
		stack = append(stack, n.Parents...)
	}
	return clobbered, nil
}

// RegAlwaysSet reports whether reg is guaranteed to hold a value by the
// time every path into node has run, so a phi for it is meaningful rather
// than spurious. domSet tells it whether the dominator itself already has
// reg set at the point domination begins.
func RegAlwaysSet(node *cfg.Node, reg string, domSet bool) (bool, error) {
	if node.ImmediateDominator == nil {
		return false, nil
	}
	seen := map[*cfg.Node]bool{node.ImmediateDominator: true}
	stack := append([]*cfg.Node{}, node.Parents...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == node.ImmediateDominator && !domSet {
			return false, nil
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		// nil = untouched, true = clobbered-without-reset, false = freshly set
		var clobbered *bool
		for _, instr := range n.Block.Instructions {
			if instr.Mnemonic == "jal" && isCallerSave(reg) {
				v := true
				clobbered = &v
			}
			outs, err := OutputRegsForInstr(instr)
			if err != nil {
				return false, err
			}
			for _, r := range outs {
				if r == reg {
					v := false
					clobbered = &v
				}
			}
		}
		if clobbered != nil && *clobbered {
			return false, nil
		}
		if clobbered == nil {
			stack = append(stack, n.Parents...)
		}
	}
	return true, nil
}

func isCallerSave(reg string) bool {
	for _, r := range regfile.CallerSaveRegs {
		if r == reg {
			return true
		}
	}
	return false
}

// AssignPhis resolves every phi that ended up actually being used: if all
// of its predecessors turn out to agree on the same value after all, the
// phi collapses into that value directly; otherwise each predecessor
// block gets a SetPhiStmt and the phi is given a stable, deduplicated
// name. New phis may get added to usedPhis while this runs (a
// predecessor's own final value might itself be an unresolved phi), so
// this is a worklist, not a single pass.
func AssignPhis(usedPhis *[]*ast.PhiExpr, stackInfo *stackframe.Info) {
	i := 0
	for i < len(*usedPhis) {
		phi := (*usedPhis)[i]
		exprs := make([]ast.Expression, 0, len(phi.Node.Parents))
		for _, parent := range phi.Node.Parents {
			bi := parent.BlockInfo.(*BlockInfo)
			exprs = append(exprs, bi.FinalRegisterStates.Get(phi.Reg))
		}

		allSame := true
		for _, e := range exprs[1:] {
			if !ast.ExprEqual(e, exprs[0]) {
				allSame = false
				break
			}
		}

		if allSame {
			phi.ReplacementExpr = exprs[0]
			for n := 0; n < phi.NumUsages; n++ {
				ast.MarkUsed(exprs[0])
			}
		} else {
			for _, parent := range phi.Node.Parents {
				bi := parent.BlockInfo.(*BlockInfo)
				expr := bi.FinalRegisterStates.Get(phi.Reg)
				if p, ok := expr.(*ast.PhiExpr); ok {
					p.Use(phi)
				} else {
					ast.MarkUsed(expr)
				}
				bi.ToWrite = append(bi.ToWrite, &ast.SetPhiStmt{Phi: phi, Expr: expr})
			}
		}
		i++
	}

	nameCounter := map[string]int{}
	for _, phi := range *usedPhis {
		if phi.ReplacementExpr == nil && phi.PropagatesTo() == phi {
			counter := nameCounter[phi.Reg] + 1
			nameCounter[phi.Reg] = counter
			prefix := "phi_" + phi.Reg
			if counter > 1 {
				phi.Name = fmt.Sprintf("%s_%d", prefix, counter)
			} else {
				phi.Name = prefix
			}
			stackInfo.PhiVars = append(stackInfo.PhiVars, phi)
		}
	}
}
