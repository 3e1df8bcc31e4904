package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ident"
	"snakec/internal/ssa"
	"snakec/internal/types"
)

// lowerIf lowers a two-armed conditional (spec.md §4.1 "If"). In tail
// position both branches inherit Return directly, avoiding the join block
// entirely; otherwise a join block with one parameter carries the chosen
// arm's result back to the continuation. The join block is what keeps the
// continuation's remaining code from being copied once per arm —
// exponential in nested ifs (spec.md §4.1, grounded on
// original_source/src/middle_end.rs's If arm).
func (l *Lowerer) lowerIf(n *ast.If, k Cont, env Env) Tail {
	condVar := l.vars.Fresh("cond")
	flagVar := l.vars.Fresh("flag")
	thenName := l.blocks.Fresh("thn")
	elseName := l.blocks.Fresh("els")

	condBranch := l.lowerExpr(n.Cond, BlockCont(condVar, func() Tail {
		branchTail := l.untagging(types.Bool, ssa.VarRef{Name: condVar}, flagVar, Tail{
			Term: ssa.CondBranch{Cond: ssa.VarRef{Name: flagVar}, Then: thenName, Else: elseName},
		})
		return assertType(types.Bool, ssa.VarRef{Name: condVar}, branchTail)
	}), env)

	if k.isReturn {
		thenTail := l.lowerExpr(n.Then, Return(), env)
		thenBlock := &ssa.BasicBlock{Label: thenName, Body: thenTail.Nodes, Terminator: thenTail.Term}

		elseTail := l.lowerExpr(n.Else, Return(), env)
		elseBlock := &ssa.BasicBlock{Label: elseName, Body: elseTail.Nodes, Terminator: elseTail.Term}

		l.prog.AddBlock(thenBlock)
		l.prog.AddBlock(elseBlock)
		return condBranch.prepend(ssa.SubBlocks{Blocks: []*ssa.BasicBlock{thenBlock, elseBlock}})
	}

	thenVar := l.vars.Fresh("thn_res")
	elseVar := l.vars.Fresh("els_res")
	joinName := l.blocks.Fresh("jn")

	armTail := func(e ast.Expr, resultVar ident.VarName) Tail {
		return l.lowerExpr(e, BlockCont(resultVar, func() Tail {
			return Tail{Term: ssa.Jump{Target: joinName, Args: []ssa.Immediate{ssa.VarRef{Name: resultVar}}}}
		}), env)
	}

	thenTail := armTail(n.Then, thenVar)
	thenBlock := &ssa.BasicBlock{Label: thenName, Body: thenTail.Nodes, Terminator: thenTail.Term}

	elseTail := armTail(n.Else, elseVar)
	elseBlock := &ssa.BasicBlock{Label: elseName, Body: elseTail.Nodes, Terminator: elseTail.Term}

	joinTail := k.rest()
	joinBlock := &ssa.BasicBlock{Label: joinName, Params: []ident.VarName{k.dest}, Body: joinTail.Nodes, Terminator: joinTail.Term}

	l.prog.AddBlock(thenBlock)
	l.prog.AddBlock(elseBlock)
	l.prog.AddBlock(joinBlock)
	return condBranch.prepend(ssa.SubBlocks{Blocks: []*ssa.BasicBlock{thenBlock, elseBlock, joinBlock}})
}
