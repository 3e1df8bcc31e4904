package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ident"
)

// lift decides which local FunDecls must become top-level lifted FunBlocks
// rather than tail-only sub-blocks (spec.md §4.1 "Lambda lifting"). The
// decision is a global property of the whole call graph and must be
// computed before any function body is lowered (spec.md §9, "Lifter vs.
// sub-block emission").
//
// A function is lifted iff (1) it is called in non-tail position anywhere
// in the program, or (2) it is called (tail or not) by a function that is
// itself lifted — the transitive closure of the call graph restricted to
// lifted callers' targets. Rule 2 exists because a lifted function's body
// is compiled into a standalone top-level block with its own call frame;
// anything it calls, even in tail position, must be reachable as a real
// branch target from that independent frame rather than assumed to share
// the enclosing function's block namespace the way ordinary sub-blocks do.
type lifter struct {
	// callGraph[caller] lists every function called from directly within
	// caller's own body (not within a nested FunDefs, which has its own
	// caller identity).
	callGraph map[ident.FunName][]ident.FunName
	nonTail   map[ident.FunName]bool
}

func computeLiftSet(prog *ast.Prog) map[ident.FunName]bool {
	l := &lifter{
		callGraph: make(map[ident.FunName][]ident.FunName),
		nonTail:   make(map[ident.FunName]bool),
	}
	l.walk(prog.Body, true, prog.Entry)

	liftSet := make(map[ident.FunName]bool)
	var worklist []ident.FunName
	for f := range l.nonTail {
		if !liftSet[f] {
			liftSet[f] = true
			worklist = append(worklist, f)
		}
	}
	for len(worklist) > 0 {
		f := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, callee := range l.callGraph[f] {
			if !liftSet[callee] {
				liftSet[callee] = true
				worklist = append(worklist, callee)
			}
		}
	}
	return liftSet
}

func (l *lifter) walk(e ast.Expr, tail bool, caller ident.FunName) {
	switch n := e.(type) {
	case *ast.Num, *ast.Bool, *ast.Var:
		// no calls
	case *ast.Prim:
		for _, a := range n.Args {
			l.walk(a, false, caller)
		}
	case *ast.Let:
		for _, b := range n.Bindings {
			l.walk(b.Expr, false, caller)
		}
		l.walk(n.Body, tail, caller)
	case *ast.If:
		l.walk(n.Cond, false, caller)
		l.walk(n.Then, tail, caller)
		l.walk(n.Else, tail, caller)
	case *ast.FunDefs:
		for _, d := range n.Decls {
			l.walk(d.Body, true, d.Name)
		}
		l.walk(n.Body, tail, caller)
	case *ast.Call:
		l.callGraph[caller] = append(l.callGraph[caller], n.Fun)
		if !tail {
			l.nonTail[n.Fun] = true
		}
		for _, a := range n.Args {
			l.walk(a, false, caller)
		}
	default:
		panic("lower: unhandled expr in lifter")
	}
}
