// Package liveness implements spec.md §4.4: backward, fixed-point liveness
// over an SSA program with block parameters standing in for φ-nodes. A
// variable is live-out of a block if it is live-in to some successor it
// feeds — with a successor's own parameters substituted for the
// corresponding branch arguments, and only when that parameter is itself
// live-in (the same "gate the argument by whether the destination actually
// reads it" treatment classic φ-operand liveness uses, generalized to
// Jump/CondBranch argument lists instead of φ operands).
//
// Grounded on original_source/src/middle_end.rs's liveness pass (the same
// flow_branch-style "substitute and gate" treatment of branch arguments
// is used there) and restyled as a fixed-point walker in the shape of the
// teacher's internal/semantic/flow_analyzer.go *Analyzer.
package liveness

import (
	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// varSet is a small specialized set, matching the map[ident.VarName]bool
// shape ssa.BasicBlock.LiveIn/LiveOut already use.
type varSet map[ident.VarName]bool

func (s varSet) clone() varSet {
	out := make(varSet, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s varSet) equal(o varSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o[k] {
			return false
		}
	}
	return true
}

func addVar(s varSet, imm ssa.Immediate) {
	if vr, ok := imm.(ssa.VarRef); ok {
		s[vr.Name] = true
	}
}

func addVars(s varSet, imms []ssa.Immediate) {
	for _, imm := range imms {
		addVar(s, imm)
	}
}

// Run computes liveness to a fixed point over every block reachable from
// every function in prog, writing LiveIn/LiveOut directly onto each
// ssa.BasicBlock.
func Run(prog *ssa.Program) {
	var blocks []*ssa.BasicBlock
	seen := make(map[ident.BlockName]bool)
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			if !seen[b.Label] {
				seen[b.Label] = true
				blocks = append(blocks, b)
			}
		}
	}

	liveIn := make(map[ident.BlockName]varSet, len(blocks))
	for _, b := range blocks {
		liveIn[b.Label] = varSet{}
	}

	for {
		changed := false
		for _, b := range blocks {
			out := liveOut(prog, liveIn, b.Terminator)
			in := out.clone()
			for i := len(b.Body) - 1; i >= 0; i-- {
				applyNode(in, b.Body[i])
			}
			if !in.equal(liveIn[b.Label]) {
				liveIn[b.Label] = in
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, b := range blocks {
		in := liveIn[b.Label]
		out := liveOut(prog, liveIn, b.Terminator)
		b.LiveIn = map[ident.VarName]bool(in)
		b.LiveOut = map[ident.VarName]bool(out)
	}
}

// liveOut computes the live-out set of a block from its terminator alone,
// given the current (possibly not-yet-converged) live-in estimates for
// every block.
func liveOut(prog *ssa.Program, liveIn map[ident.BlockName]varSet, t ssa.Terminator) varSet {
	out := varSet{}
	switch tm := t.(type) {
	case ssa.Return:
		addVar(out, tm.Value)
	case ssa.Jump:
		contribution(prog, liveIn, tm.Target, tm.Args, out)
	case ssa.CondBranch:
		addVar(out, tm.Cond)
		contribution(prog, liveIn, tm.Then, tm.ThenArgs, out)
		contribution(prog, liveIn, tm.Else, tm.ElseArgs, out)
	default:
		panic("liveness: unhandled terminator kind")
	}
	return out
}

// contribution folds target's live-in requirement through a branch into
// out: target's free (non-parameter) live-in variables pass through
// unchanged, and each argument is counted as used only if the parameter it
// feeds is itself live-in to target.
func contribution(prog *ssa.Program, liveIn map[ident.BlockName]varSet, target ident.BlockName, args []ssa.Immediate, out varSet) {
	targetBlock := prog.Block(target)
	params := targetBlock.Params
	isParam := make(map[ident.VarName]bool, len(params))
	for _, p := range params {
		isParam[p] = true
	}
	for v := range liveIn[target] {
		if !isParam[v] {
			out[v] = true
		}
	}
	for i, p := range params {
		if liveIn[target][p] {
			addVar(out, args[i])
		}
	}
}

func applyNode(live varSet, n ssa.Node) {
	switch nd := n.(type) {
	case ssa.OpNode:
		delete(live, nd.Dest)
		addVars(live, nd.Op.Operands())
	case ssa.AssertType:
		addVars(live, nd.Operands())
	case ssa.AssertLength:
		addVars(live, nd.Operands())
	case ssa.AssertInBounds:
		addVars(live, nd.Operands())
	case ssa.Store:
		addVars(live, nd.Operands())
	case ssa.SubBlocks:
		// Nested blocks carry no liveness contribution to their enclosing
		// block; they are only reachable via an actual branch elsewhere,
		// captured by that branch's own terminator.
	default:
		panic("liveness: unhandled node kind")
	}
}
