package translate

import (
	"fmt"
	"os"
	"sort"

	"github.com/mewbak/mips-to-c/internal/ast"
	"github.com/mewbak/mips-to-c/internal/cfg"
	"github.com/mewbak/mips-to-c/internal/regfile"
	"github.com/mewbak/mips-to-c/internal/stackframe"
	"github.com/mewbak/mips-to-c/internal/types"
)

type pendingSubroutineArg struct {
	Expr ast.Expression
	Dest *ast.SubroutineArg
}

type localVarWrite struct {
	reg  string
	expr ast.Expression
}

// TranslateNodeBody abstractly interprets one basic block's instructions
// against regs, producing the statements it writes, its branch condition
// or return value (whichever applies), and the register file state to
// hand off to whatever this block dominates.
func TranslateNodeBody(node *cfg.Node, regs *regfile.Info, stackInfo *stackframe.Info) (*BlockInfo, error) {
	var toWrite []ast.Statement
	var subroutineArgs []pendingSubroutineArg
	localVarWrites := map[int]localVarWrite{}
	var branchCondition *ast.BinaryOp
	var returnValue ast.Expression

	evalOnce := func(expr ast.Expression, alwaysEmit bool, prefix string) *ast.EvalOnceExpr {
		if alwaysEmit {
			ast.MarkUsed(expr)
		}
		wrapped := ast.NewEvalOnceExpr(expr, alwaysEmit, stackInfo.TempVarGenerator(prefix))
		stmt := &ast.EvalOnceStmt{Expr: wrapped}
		toWrite = append(toWrite, stmt)
		stackInfo.TempVars = append(stackInfo.TempVars, stmt)
		return wrapped
	}

	setReg := func(reg string, expr ast.Expression) {
		if lv, ok := expr.(*ast.LocalVar); ok {
			if w, ok := localVarWrites[lv.Value]; ok && w.reg == reg {
				expr = w.expr
			}
		}
		if expr != nil && !ast.IsRepeatableExpression(expr) {
			expr = evalOnce(expr, false, reg)
		}
		regs.Set(reg, expr)
	}

instrLoop:
	for _, instr := range node.Block.Instructions {
		mnemonic := instr.Mnemonic
		if mnemonic == "nop" {
			continue
		}

		a := &InstrArgs{RawArgs: instr.Args, Regs: regs, StackInfo: stackInfo}

		switch {
		case has(CasesSourceFirstExpression, mnemonic):
			toStore := CasesSourceFirstExpression[mnemonic](a)
			if toStore == nil {
				break
			}
			if subArg, ok := toStore.Dest.(*ast.SubroutineArg); ok {
				subroutineArgs = append(subroutineArgs, pendingSubroutineArg{Expr: toStore.Source, Dest: subArg})
				break
			}
			if lv, ok := toStore.Dest.(*ast.LocalVar); ok {
				stackInfo.AddLocalVar(lv)
				cast, ok := toStore.Source.(*ast.Cast)
				if !ok || !cast.Reinterpret {
					return nil, fmt.Errorf("translate: store to local var %v has non-reinterpret source", lv)
				}
				localVarWrites[lv.Value] = localVarWrite{reg: a.RegRef(0).Name, expr: cast.Expr}
			}
			toWrite = append(toWrite, toStore)
			ast.MarkUsed(toStore.Source)
			ast.MarkUsed(toStore.Dest)

		case has(CasesSourceFirstRegister, mnemonic):
			setReg(a.RegRef(1).Name, CasesSourceFirstRegister[mnemonic](a))

		case has(CasesBranches, mnemonic):
			if branchCondition != nil {
				return nil, fmt.Errorf("translate: two branch instructions in one block")
			}
			branchCondition = CasesBranches[mnemonic](a)

		case CasesFloatBranches[mnemonic]:
			if branchCondition != nil {
				return nil, fmt.Errorf("translate: two branch instructions in one block")
			}
			condBit, ok := regs.Get("condition_bit").(*ast.BinaryOp)
			if !ok {
				return nil, fmt.Errorf("translate: condition_bit is not a comparison at %q", mnemonic)
			}
			if mnemonic == "bc1t" {
				branchCondition = condBit
			} else {
				branchCondition = condBit.Negated()
			}

		case has(CasesJumps, mnemonic):
			result := CasesJumps[mnemonic](a)
			if result == nil {
				if a.RegRef(0).Name != "ra" {
					return nil, fmt.Errorf("translate: jr to non-$ra target is not supported (jump tables)")
				}
				returnValue = regs.GetRaw("return_reg")
				break instrLoop
			}

			addr, ok := result.(*ast.AddressOf)
			if !ok {
				return nil, fmt.Errorf("translate: jal target did not resolve to an address")
			}
			target, ok := addr.Expr.(*ast.GlobalSymbol)
			if !ok {
				return nil, fmt.Errorf("translate: jal target is not a global symbol")
			}

			var funcArgs []ast.Expression
			for _, reg := range []string{"f12", "f14", "a0", "a1", "a2", "a3"} {
				expr := regs.GetRaw(reg)
				if expr == nil {
					continue
				}
				if p, ok := expr.(*ast.PassedInArg); ok && !p.Copied {
					continue
				}
				funcArgs = append(funcArgs, expr)
			}
			sort.SliceStable(subroutineArgs, func(i, j int) bool {
				return subroutineArgs[i].Dest.Value < subroutineArgs[j].Dest.Value
			})
			for _, sa := range subroutineArgs {
				funcArgs = append(funcArgs, sa.Expr)
			}
			subroutineArgs = nil

			call := evalOnce(&ast.FuncCall{FuncName: target.SymbolName, Args: funcArgs, Typ: types.Any()}, true, "ret")
			regs.ClearCallerSaveRegs()
			regs.Set("f0", &ast.Cast{Expr: call, Typ: types.F32(), Reinterpret: true, Silent: true})
			regs.Set("v0", &ast.Cast{Expr: call, Typ: types.Intish(), Reinterpret: true, Silent: true})
			regs.Set("v1", ast.AsU32(&ast.Cast{Expr: call, Typ: types.U64(), Reinterpret: true, Silent: false}))
			regs.Set("return_reg", call)

		case has(CasesFloatComp, mnemonic):
			regs.Set("condition_bit", CasesFloatComp[mnemonic](a))

		case has(CasesHiLo, mnemonic):
			hi, lo := CasesHiLo[mnemonic](a)
			setReg("hi", hi)
			setReg("lo", lo)

		case has(CasesDestinationFirst, mnemonic):
			setReg(a.RegRef(0).Name, CasesDestinationFirst[mnemonic](a))

		default:
			return nil, fmt.Errorf("translate: don't know how to handle mnemonic %q", mnemonic)
		}
	}

	if returnValue != nil {
		ast.MarkUsed(returnValue)
	} else if branchCondition != nil {
		ast.MarkUsed(branchCondition)
	}

	return &BlockInfo{
		ToWrite:             toWrite,
		ReturnValue:         returnValue,
		BranchCondition:     branchCondition,
		FinalRegisterStates: regs,
	}, nil
}

// Options controls how translation reacts to recoverable failures and how
// much diagnostic detail it prints while running.
type Options struct {
	Debug       bool
	StopOnError bool
}

// TranslateGraphFromBlock translates node, recovering a per-block failure
// into a CommentStmt unless options.StopOnError is set, then recurses into
// every node this one immediately dominates, seeding each child's register
// file with phis for whatever this path might have left ambiguous.
func TranslateGraphFromBlock(node *cfg.Node, regs *regfile.Info, stackInfo *stackframe.Info, usedPhis *[]*ast.PhiExpr, options Options) error {
	if options.Debug {
		fmt.Fprintf(os.Stderr, "\nnode in question: %s\n", node.Block.Label)
	}

	blockInfo, err := TranslateNodeBody(node, regs, stackInfo)
	if err != nil {
		if options.StopOnError {
			return &BlockError{Node: node, Err: err}
		}
		blockInfo = &BlockInfo{
			ToWrite:             []ast.Statement{&ast.CommentStmt{Contents: "Error: " + err.Error()}},
			FinalRegisterStates: regs,
		}
	}
	if options.Debug {
		fmt.Fprintln(os.Stderr, blockInfo.String())
	}
	node.BlockInfo = blockInfo

	for _, child := range node.ImmediatelyDominates {
		newContents := regs.Copy()
		phiRegs, err := RegsClobberedUntilDominator(child)
		if err != nil {
			return err
		}
		for reg := range phiRegs {
			dominatorHasReg := regs.Has(reg)
			always, err := RegAlwaysSet(child, reg, dominatorHasReg)
			if err != nil {
				return err
			}
			if always {
				newContents[reg] = ast.NewPhiExpr(reg, child, usedPhis)
			} else {
				delete(newContents, reg)
			}
		}
		newRegs := regfile.New(newContents, stackInfo)
		if err := TranslateGraphFromBlock(child, newRegs, stackInfo, usedPhis, options); err != nil {
			return err
		}
	}
	return nil
}

// FunctionInfo is the fully translated form of one function: its
// recovered stack frame plus its translated control-flow graph, every
// node of which now carries a *BlockInfo.
type FunctionInfo struct {
	StackInfo *stackframe.Info
	Graph     *cfg.Graph
}

// TranslateToAST builds the control-flow graph for fn, recovers its stack
// frame, seeds the o32 ABI's initial register contents, and translates
// every block, resolving phis once the whole function has been walked.
func TranslateToAST(fn *cfg.Function, options Options) (*FunctionInfo, error) {
	graph, err := cfg.Build(fn)
	if err != nil {
		return nil, err
	}
	stackInfo := stackframe.Build(fn.Name, graph.Nodes[0])

	initial := map[string]ast.Expression{
		"a0":  &ast.PassedInArg{Value: 0, Copied: false, Typ: types.IntPtr()},
		"a1":  &ast.PassedInArg{Value: 4, Copied: false, Typ: types.IntPtr()},
		"a2":  &ast.PassedInArg{Value: 8, Copied: false, Typ: types.Any()},
		"a3":  &ast.PassedInArg{Value: 12, Copied: false, Typ: types.Any()},
		"f12": &ast.PassedInArg{Value: 0, Copied: false, Typ: types.F32()},
		"f14": &ast.PassedInArg{Value: 4, Copied: false, Typ: types.F32()},
	}
	for _, reg := range append(append(append([]string{}, regfile.CalleeSaveRegs...), regfile.SpecialRegs...), "sp") {
		initial[reg] = stackInfo.GlobalSymbol(reg)
	}

	if options.Debug {
		fmt.Fprintln(os.Stderr, stackInfo.String())
		fmt.Fprintln(os.Stderr, "\nnow, we attempt to translate:")
	}

	startRegs := regfile.New(initial, stackInfo)

	var usedPhis []*ast.PhiExpr
	if err := TranslateGraphFromBlock(graph.Nodes[0], startRegs, stackInfo, &usedPhis, options); err != nil {
		return nil, err
	}
	AssignPhis(&usedPhis, stackInfo)

	return &FunctionInfo{StackInfo: stackInfo, Graph: graph}, nil
}
