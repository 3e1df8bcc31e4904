package lower

import (
	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// Tail is the residual block content produced by invoking a Continuation:
// the nodes still to be appended, and the terminator that finally closes
// the block.
type Tail struct {
	Nodes []ssa.Node
	Term  ssa.Terminator
}

func (t Tail) prepend(nodes ...ssa.Node) Tail {
	return Tail{Nodes: append(append([]ssa.Node{}, nodes...), t.Nodes...), Term: t.Term}
}

// Cont is the two-variant lowering continuation described in spec.md §4.1
// and §9 ("Continuations without closures"): either Return, or Block(dest,
// rest). It is represented as a tagged struct and applied by direct
// matching in Invoke, never treated as a user-level closure — Rest is a
// Go-level callback internal to this package's recursion, not a value the
// compiled language can manipulate (closures as compiled-language values
// remain a Non-goal).
type Cont struct {
	isReturn bool
	dest     ident.VarName
	rest     func() Tail
}

// Return is the continuation used in tail position: the value terminates
// the current block.
func Return() Cont { return Cont{isReturn: true} }

// BlockCont binds the produced value to dest, then continues with rest.
func BlockCont(dest ident.VarName, rest func() Tail) Cont {
	return Cont{dest: dest, rest: rest}
}

// Invoke applies the continuation to an already-computed immediate value.
func (c Cont) Invoke(v ssa.Immediate) Tail {
	if c.isReturn {
		return Tail{Term: ssa.Return{Value: v}}
	}
	rest := c.rest()
	return rest.prepend(ssa.OpNode{Dest: c.dest, Op: ssa.Imm{Value: v}})
}

// destTail pulls a concrete (destination variable, residual tail) pair out
// of a continuation, materializing a fresh "result" variable for Return —
// the Go analogue of original_source's Lowerer::kont_to_block. Every
// compound form that needs to bind an intermediate value before handing it
// to the continuation (arithmetic, array ops, ...) goes through this
// instead of invoking the continuation directly.
func (l *Lowerer) destTail(k Cont) (ident.VarName, Tail) {
	if k.isReturn {
		r := l.vars.Fresh("result")
		return r, Tail{Term: ssa.Return{Value: ssa.VarRef{Name: r}}}
	}
	return k.dest, k.rest()
}
