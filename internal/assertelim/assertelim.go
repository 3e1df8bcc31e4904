// Package assertelim implements spec.md §4.3: an optional forward
// may-analysis over the three-element lattice {None ⊑ Even ⊑ Any} that
// removes AssertType(Int, x) nodes provably redundant — every reachable
// definition of x already carries the Int tag (an even 64-bit word).
//
// Grounded on original_source/src/middle_end.rs's AssertionRemover
// scaffolding (PossibleValues/PossibleValuesEnv/PVRoundSummary, the
// analyze/analyze_prog/analyze_fun/analyze_basic_block/flow_branch/
// flow_terminator driver, all given in full in the Rust source); the
// lattice's join and the per-operation transfer functions themselves were
// left todo!()-stubbed there and are supplied here directly from spec.md
// §4.3's contract.
package assertelim

import (
	"snakec/internal/ident"
	"snakec/internal/ssa"
	"snakec/internal/types"
)

// value is one element of {None, Even, Any}. The zero value is None, so a
// pvEnv that omits a key denotes that variable's possible-values set being
// empty (bottom) — exactly spec.md §4.3's "missing keys denote None".
type value int

const (
	pvNone value = iota
	pvEven
	pvAny
)

func lub(a, b value) value {
	if a == b {
		return a
	}
	if a == pvNone {
		return b
	}
	if b == pvNone {
		return a
	}
	return pvAny
}

// pvEnv maps in-scope variables to their possible-values set.
type pvEnv map[ident.VarName]value

func (e pvEnv) clone() pvEnv {
	out := make(pvEnv, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e pvEnv) lub(o pvEnv) pvEnv {
	out := e.clone()
	for k, v := range o {
		out[k] = lub(out[k], v)
	}
	return out
}

func (e pvEnv) equal(o pvEnv) bool {
	if len(e) != len(o) {
		return false
	}
	for k, v := range e {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func possibleValues(e pvEnv, imm ssa.Immediate) value {
	switch v := imm.(type) {
	case ssa.Const:
		if int64(v)&1 == 0 {
			return pvEven
		}
		return pvAny
	case ssa.VarRef:
		return e[v.Name]
	default:
		return pvAny
	}
}

// Pass is the assertion-removal pass (Name/Apply/Description).
type Pass struct {
	blockParams map[ident.BlockName][]ident.VarName
	order       []ident.BlockName
}

// New creates an empty Pass.
func New() *Pass { return &Pass{} }

func (*Pass) Name() string { return "Assertion Removal" }

func (*Pass) Description() string {
	return "Removes AssertType(Int, x) nodes provably redundant via possible-values analysis"
}

// Apply analyzes prog to a fixed point and removes every AssertType(Int,
// x) node whose pre-environment maps x to Even. Reports whether any
// assertion was removed.
func (p *Pass) Apply(prog *ssa.Program) bool {
	p.collectBlockParams(prog)

	previous := p.bottomEnvs()
	for {
		current := p.bottomEnvs()
		for _, fn := range prog.Functions {
			args := make([]value, len(fn.Params))
			for i := range args {
				args[i] = pvAny
			}
			p.flowBranch(current, fn.Entry, args, pvEnv{})
		}
		for _, fn := range prog.Functions {
			for _, b := range prog.FunctionBlocks(fn) {
				pre := previous[b.Label]
				post := p.analyzeBody(b.Body, pre)
				p.flowTerminator(current, b.Terminator, post)
			}
		}
		if p.envsEqual(previous, current) {
			previous = current
			break
		}
		previous = current
	}

	changed := false
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			pre := previous[b.Label]
			newBody, removed := p.removeFromBody(b.Body, pre)
			b.Body = newBody
			changed = changed || removed
		}
	}
	return changed
}

func (p *Pass) collectBlockParams(prog *ssa.Program) {
	p.blockParams = make(map[ident.BlockName][]ident.VarName)
	p.order = nil
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			if _, ok := p.blockParams[b.Label]; !ok {
				p.order = append(p.order, b.Label)
			}
			p.blockParams[b.Label] = b.Params
		}
	}
}

func (p *Pass) bottomEnvs() map[ident.BlockName]pvEnv {
	m := make(map[ident.BlockName]pvEnv, len(p.order))
	for _, l := range p.order {
		m[l] = pvEnv{}
	}
	return m
}

func (p *Pass) envsEqual(a, b map[ident.BlockName]pvEnv) bool {
	for _, l := range p.order {
		if !a[l].equal(b[l]) {
			return false
		}
	}
	return true
}

func (p *Pass) flowBranch(current map[ident.BlockName]pvEnv, target ident.BlockName, args []value, pre pvEnv) {
	params := p.blockParams[target]
	post := pre.clone()
	for i, param := range params {
		post[param] = args[i]
	}
	current[target] = current[target].lub(post)
}

func (p *Pass) flowTerminator(current map[ident.BlockName]pvEnv, t ssa.Terminator, post pvEnv) {
	switch tm := t.(type) {
	case ssa.Return:
		// No successor to flow into.
	case ssa.Jump:
		args := make([]value, len(tm.Args))
		for i, a := range tm.Args {
			args[i] = possibleValues(post, a)
		}
		p.flowBranch(current, tm.Target, args, post)
	case ssa.CondBranch:
		if possibleValues(post, tm.Cond) == pvNone {
			return
		}
		thenArgs := make([]value, len(tm.ThenArgs))
		for i, a := range tm.ThenArgs {
			thenArgs[i] = possibleValues(post, a)
		}
		elseArgs := make([]value, len(tm.ElseArgs))
		for i, a := range tm.ElseArgs {
			elseArgs[i] = possibleValues(post, a)
		}
		p.flowBranch(current, tm.Then, thenArgs, post)
		p.flowBranch(current, tm.Else, elseArgs, post)
	default:
		panic("assertelim: unhandled terminator kind")
	}
}

// analyzeBody walks nodes sequentially from pre, threading the refined
// environment through AssertType(Int, _) refinements and operation
// destinations, and returns the environment after the last node.
func (p *Pass) analyzeBody(nodes []ssa.Node, pre pvEnv) pvEnv {
	env := pre.clone()
	for _, n := range nodes {
		switch nd := n.(type) {
		case ssa.OpNode:
			env[nd.Dest] = flowOperation(env, nd.Op)
		case ssa.AssertType:
			if nd.Target == types.Int {
				if vr, ok := nd.Arg.(ssa.VarRef); ok {
					env[vr.Name] = pvEven
				}
			}
		case ssa.SubBlocks, ssa.AssertLength, ssa.AssertInBounds, ssa.Store:
			// No destination refined by these; nested sub-blocks are
			// analyzed independently via the outer FunctionBlocks walk.
		default:
			panic("assertelim: unhandled node kind")
		}
	}
	return env
}

// flowOperation is the per-operation transfer function (spec.md §4.3
// "Transfer functions"): constants with LSB 0 are Even, a left-shift by at
// least one bit is Even, arithmetic (add/sub) on two Even operands stays
// Even, and every other operation defaults its destination to Any.
func flowOperation(env pvEnv, op ssa.Operation) value {
	switch o := op.(type) {
	case ssa.Imm:
		return possibleValues(env, o.Value)
	case ssa.Unary:
		if o.Op == ssa.Sal && o.Amount >= 1 {
			return pvEven
		}
		return pvAny
	case ssa.Binary:
		if (o.Op == ssa.Add || o.Op == ssa.Sub) &&
			possibleValues(env, o.Left) == pvEven && possibleValues(env, o.Right) == pvEven {
			return pvEven
		}
		return pvAny
	default:
		return pvAny
	}
}

// removeFromBody walks nodes sequentially (mirroring analyzeBody) and
// drops every AssertType(Int, x) whose pre-environment maps x to Even.
func (p *Pass) removeFromBody(nodes []ssa.Node, pre pvEnv) ([]ssa.Node, bool) {
	env := pre.clone()
	var out []ssa.Node
	removed := false
	for _, n := range nodes {
		switch nd := n.(type) {
		case ssa.OpNode:
			env[nd.Dest] = flowOperation(env, nd.Op)
			out = append(out, nd)
		case ssa.AssertType:
			if nd.Target == types.Int {
				if vr, ok := nd.Arg.(ssa.VarRef); ok {
					if env[vr.Name] == pvEven {
						removed = true
						continue
					}
					env[vr.Name] = pvEven
				}
			}
			out = append(out, nd)
		default:
			out = append(out, n)
		}
	}
	return out, removed
}
