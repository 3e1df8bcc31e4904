// Package dce implements spec.md §4.5: iterative dead-code and
// dead-block-parameter elimination, interleaved with a fresh liveness run
// every round until neither pass finds anything left to remove. Call,
// AllocateArray, AssertType, AssertLength, AssertInBounds, and Store are
// always kept — they are effectful (or, for the asserts, a user-visible
// runtime check) — every other node is kept only while its destination is
// live.
//
// Grounded on original_source/src/middle_end.rs's dead-code elimination
// pass, restyled as a Name/Apply/Description pass in the teacher's
// internal/ir/optimizations.go OptimizationPass shape and driving package liveness exactly
// the way that pass's own fixed point re-derives liveness each round.
package dce

import (
	"snakec/internal/ident"
	"snakec/internal/liveness"
	"snakec/internal/ssa"
)

// Pass is the dead-code elimination pass (Name/Apply/Description).
type Pass struct{}

// New creates a Pass.
func New() *Pass { return &Pass{} }

func (*Pass) Name() string { return "Dead Code Elimination" }

func (*Pass) Description() string {
	return "Removes unused definitions and unused block parameters to a fixed point"
}

// Apply iterates liveness + trimming rounds until a round changes nothing,
// and reports whether any round did.
func (p *Pass) Apply(prog *ssa.Program) bool {
	changed := false
	for {
		liveness.Run(prog)
		if !p.round(prog) {
			break
		}
		changed = true
	}
	return changed
}

// round runs one liveness-driven trimming pass and reports whether it
// changed anything.
func (p *Pass) round(prog *ssa.Program) bool {
	roundChanged := false

	entry := make(map[ident.BlockName]bool)
	for _, fn := range prog.Functions {
		entry[fn.Entry] = true
	}

	// Dead block parameters: only trimmed for blocks reached solely via
	// Jump/CondBranch (if/then/else joins, tail-only local functions) —
	// a Function's entry block shares its parameter list with every Call
	// site targeting it, so trimming it would require rewriting Call
	// argument lists too, not just branch argument lists; left untrimmed.
	kept := make(map[ident.BlockName][]int)
	var allBlocks []*ssa.BasicBlock
	seen := make(map[ident.BlockName]bool)
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			if seen[b.Label] {
				continue
			}
			seen[b.Label] = true
			allBlocks = append(allBlocks, b)
			if entry[b.Label] {
				idx := make([]int, len(b.Params))
				for i := range idx {
					idx[i] = i
				}
				kept[b.Label] = idx
				continue
			}
			var idx []int
			for i, param := range b.Params {
				if b.LiveIn[param] {
					idx = append(idx, i)
				}
			}
			kept[b.Label] = idx
		}
	}

	for _, b := range allBlocks {
		idx := kept[b.Label]
		if len(idx) != len(b.Params) {
			newParams := make([]ident.VarName, len(idx))
			for j, i := range idx {
				newParams[j] = b.Params[i]
			}
			b.Params = newParams
			roundChanged = true
		}
	}
	if roundChanged {
		for _, b := range allBlocks {
			b.Terminator = filterTerminatorArgs(b.Terminator, kept)
		}
	}

	// Dead nodes.
	for _, b := range allBlocks {
		newBody, bodyChanged := dceBody(b.Body, b.LiveOut)
		if bodyChanged {
			b.Body = newBody
			roundChanged = true
		}
	}

	return roundChanged
}

func filterTerminatorArgs(t ssa.Terminator, kept map[ident.BlockName][]int) ssa.Terminator {
	switch tm := t.(type) {
	case ssa.Return:
		return tm
	case ssa.Jump:
		return ssa.Jump{Target: tm.Target, Args: selectIdx(tm.Args, kept[tm.Target])}
	case ssa.CondBranch:
		return ssa.CondBranch{
			Cond: tm.Cond, Then: tm.Then, Else: tm.Else,
			ThenArgs: selectIdx(tm.ThenArgs, kept[tm.Then]),
			ElseArgs: selectIdx(tm.ElseArgs, kept[tm.Else]),
		}
	default:
		panic("dce: unhandled terminator kind")
	}
}

func selectIdx(args []ssa.Immediate, idx []int) []ssa.Immediate {
	out := make([]ssa.Immediate, len(idx))
	for j, i := range idx {
		out[j] = args[i]
	}
	return out
}

func addVars(live map[ident.VarName]bool, imms []ssa.Immediate) {
	for _, imm := range imms {
		if vr, ok := imm.(ssa.VarRef); ok {
			live[vr.Name] = true
		}
	}
}

// dceBody replays the backward liveness scan over nodes, dropping any
// OpNode whose destination is never subsequently read and whose operation
// is neither a Call nor an AllocateArray.
func dceBody(nodes []ssa.Node, liveOut map[ident.VarName]bool) ([]ssa.Node, bool) {
	live := make(map[ident.VarName]bool, len(liveOut))
	for k, v := range liveOut {
		live[k] = v
	}

	keep := make([]bool, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		switch nd := nodes[i].(type) {
		case ssa.OpNode:
			_, isCall := nd.Op.(ssa.Call)
			_, isAllocate := nd.Op.(ssa.AllocateArray)
			if live[nd.Dest] || isCall || isAllocate {
				keep[i] = true
				delete(live, nd.Dest)
				addVars(live, nd.Op.Operands())
			}
		case ssa.AssertType:
			keep[i] = true
			addVars(live, nd.Operands())
		case ssa.AssertLength:
			keep[i] = true
			addVars(live, nd.Operands())
		case ssa.AssertInBounds:
			keep[i] = true
			addVars(live, nd.Operands())
		case ssa.Store:
			keep[i] = true
			addVars(live, nd.Operands())
		case ssa.SubBlocks:
			keep[i] = true
		default:
			panic("dce: unhandled node kind")
		}
	}

	changed := false
	out := make([]ssa.Node, 0, len(nodes))
	for i, n := range nodes {
		if keep[i] {
			out = append(out, n)
		} else {
			changed = true
		}
	}
	return out, changed
}
