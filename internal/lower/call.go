package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ssa"
)

// lowerCall lowers a call to an extern, a lifted local function, or a
// tail-only local function (spec.md §4.1 "FunDefs" / "Lambda lifting").
// Arguments are lowered left-to-right first (lowerArgs), exactly as for
// primitives, then the call itself is built depending on which of the
// three call shapes applies — grounded on
// original_source/src/middle_end.rs's Call arm.
func (l *Lowerer) lowerCall(n *ast.Call, k Cont, env Env) Tail {
	if l.externs[n.Fun] {
		return l.lowerArgs(n.Args, env, func(vals []ssa.Immediate) Tail {
			dest, next := l.destTail(k)
			return next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Call{Fun: n.Fun, Args: vals}})
		})
	}

	info := l.info[n.Fun]
	if info.kind == kindLifted {
		ambient := make([]ssa.Immediate, len(info.ambient))
		for i, v := range info.ambient {
			ambient[i] = ssa.VarRef{Name: env.Resolve(v)}
		}
		return l.lowerArgs(n.Args, env, func(vals []ssa.Immediate) Tail {
			args := append(append([]ssa.Immediate{}, ambient...), vals...)
			if k.isReturn {
				// A tail call to a lifted function is a true tail
				// call: no new frame is needed since the current
				// one is being replaced, so this compiles to a
				// direct branch into the lifted function's entry
				// block rather than a Call operation.
				return Tail{Term: ssa.Jump{Target: info.label, Args: args}}
			}
			dest, next := l.destTail(k)
			return next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Call{Fun: n.Fun, Args: args}})
		})
	}

	// Tail-only local function: always called in tail position (the
	// lifter guarantees this — any non-tail call forces lifting).
	return l.lowerArgs(n.Args, env, func(vals []ssa.Immediate) Tail {
		return Tail{Term: ssa.Jump{Target: info.label, Args: vals}}
	})
}
