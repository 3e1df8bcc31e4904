// Package copyprop implements spec.md §4.2: copy propagation over an SSA
// program. For each `dest := Immediate(VarRef y)` assignment encountered,
// the node is deleted and every later use of dest (anywhere in the
// program — block boundaries included, since SSA uniqueness prevents name
// collisions) is replaced by the transitive representative of y. Constant
// assignments (`dest := Immediate(Const c)`) are preserved.
//
// Grounded on original_source/src/middle_end.rs's CopyPropagator, restyled
// as a Name/Apply/Description pass (the teacher's
// internal/ir/optimizations.go OptimizationPass shape).
package copyprop

import (
	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// Pass is the copy-propagation pass (Name/Apply/Description).
type Pass struct {
	subst map[ident.VarName]ident.VarName
}

// New creates a Pass with an empty substitution map.
func New() *Pass { return &Pass{subst: make(map[ident.VarName]ident.VarName)} }

func (*Pass) Name() string { return "Copy Propagation" }

func (*Pass) Description() string {
	return "Eliminates `x = y` assignments by union-find-style substitution"
}

// Apply rewrites prog in place and reports whether anything changed.
func (p *Pass) Apply(prog *ssa.Program) bool {
	changed := false
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			newBody, bodyChanged := p.runBody(b.Body)
			b.Body = newBody
			newTerm, termChanged := p.runTerminator(b.Terminator)
			b.Terminator = newTerm
			changed = changed || bodyChanged || termChanged
		}
	}
	return changed
}

// resolve follows the substitution chain to its end, with path compression
// skipped (chains are short and SSA is acyclic, so this is already linear
// overall — see spec.md §4.2 "Complexity").
func (p *Pass) resolve(v ident.VarName) ident.VarName {
	for {
		next, ok := p.subst[v]
		if !ok {
			return v
		}
		v = next
	}
}

func (p *Pass) runImmediate(imm ssa.Immediate) (ssa.Immediate, bool) {
	vr, ok := imm.(ssa.VarRef)
	if !ok {
		return imm, false
	}
	resolved := p.resolve(vr.Name)
	return ssa.VarRef{Name: resolved}, resolved != vr.Name
}

func (p *Pass) runImmediates(args []ssa.Immediate) ([]ssa.Immediate, bool) {
	out := make([]ssa.Immediate, len(args))
	changed := false
	for i, a := range args {
		na, c := p.runImmediate(a)
		out[i] = na
		changed = changed || c
	}
	return out, changed
}

func (p *Pass) runBody(nodes []ssa.Node) ([]ssa.Node, bool) {
	var out []ssa.Node
	changed := false
	for _, n := range nodes {
		switch nd := n.(type) {
		case ssa.OpNode:
			if imm, ok := nd.Op.(ssa.Imm); ok {
				if vr, ok := imm.Value.(ssa.VarRef); ok {
					p.subst[nd.Dest] = p.resolve(vr.Name)
					changed = true
					continue
				}
			}
			newOp, opChanged := p.runOperation(nd.Op)
			changed = changed || opChanged
			out = append(out, ssa.OpNode{Dest: nd.Dest, Op: newOp})
		case ssa.SubBlocks:
			// Nested blocks are visited independently by Apply's own
			// FunctionBlocks walk; this marker node carries no
			// immediates of its own.
			out = append(out, nd)
		case ssa.AssertType:
			newArg, c := p.runImmediate(nd.Arg)
			changed = changed || c
			out = append(out, ssa.AssertType{Arg: newArg, Target: nd.Target})
		case ssa.AssertLength:
			newArg, c := p.runImmediate(nd.Arg)
			changed = changed || c
			out = append(out, ssa.AssertLength{Arg: newArg})
		case ssa.AssertInBounds:
			newIdx, c1 := p.runImmediate(nd.Index)
			newLen, c2 := p.runImmediate(nd.Length)
			changed = changed || c1 || c2
			out = append(out, ssa.AssertInBounds{Index: newIdx, Length: newLen})
		case ssa.Store:
			newAddr, c1 := p.runImmediate(nd.Addr)
			newOffset, c2 := p.runImmediate(nd.Offset)
			newValue, c3 := p.runImmediate(nd.Value)
			changed = changed || c1 || c2 || c3
			out = append(out, ssa.Store{Addr: newAddr, Offset: newOffset, Value: newValue})
		default:
			panic("copyprop: unhandled node kind")
		}
	}
	return out, changed
}

func (p *Pass) runOperation(op ssa.Operation) (ssa.Operation, bool) {
	switch o := op.(type) {
	case ssa.Imm:
		newVal, c := p.runImmediate(o.Value)
		return ssa.Imm{Value: newVal}, c
	case ssa.Unary:
		newArg, c := p.runImmediate(o.Arg)
		return ssa.Unary{Op: o.Op, Arg: newArg, Amount: o.Amount}, c
	case ssa.Binary:
		newLeft, c1 := p.runImmediate(o.Left)
		newRight, c2 := p.runImmediate(o.Right)
		return ssa.Binary{Op: o.Op, Left: newLeft, Right: newRight}, c1 || c2
	case ssa.Call:
		newArgs, c := p.runImmediates(o.Args)
		return ssa.Call{Fun: o.Fun, Args: newArgs}, c
	case ssa.AllocateArray:
		newLen, c := p.runImmediate(o.Len)
		return ssa.AllocateArray{Len: newLen}, c
	case ssa.Load:
		newAddr, c1 := p.runImmediate(o.Addr)
		newOffset, c2 := p.runImmediate(o.Offset)
		return ssa.Load{Addr: newAddr, Offset: newOffset}, c1 || c2
	default:
		panic("copyprop: unhandled operation kind")
	}
}

func (p *Pass) runTerminator(t ssa.Terminator) (ssa.Terminator, bool) {
	switch tm := t.(type) {
	case ssa.Return:
		newVal, c := p.runImmediate(tm.Value)
		return ssa.Return{Value: newVal}, c
	case ssa.Jump:
		newArgs, c := p.runImmediates(tm.Args)
		return ssa.Jump{Target: tm.Target, Args: newArgs}, c
	case ssa.CondBranch:
		newCond, c0 := p.runImmediate(tm.Cond)
		newThenArgs, c1 := p.runImmediates(tm.ThenArgs)
		newElseArgs, c2 := p.runImmediates(tm.ElseArgs)
		return ssa.CondBranch{
			Cond: newCond, Then: tm.Then, Else: tm.Else,
			ThenArgs: newThenArgs, ElseArgs: newElseArgs,
		}, c0 || c1 || c2
	default:
		panic("copyprop: unhandled terminator kind")
	}
}
