package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ident"
	"snakec/internal/ssa"
	"snakec/internal/types"
)

// lowerPrim lowers a primitive application (spec.md §4.1, "Primitive
// ops"). Arguments are lowered left-to-right first (via lowerArgs, which
// binds each to a fresh per-arg variable so the emitted SSA evaluates them
// in source order), then the primitive's "core" block is built bottom-up
// from the continuation backwards — grounded on
// original_source/src/middle_end.rs's lower_expr_kont Prim arm.
func (l *Lowerer) lowerPrim(n *ast.Prim, k Cont, env Env) Tail {
	return l.lowerArgs(n.Args, env, func(vals []ssa.Immediate) Tail {
		dest, next := l.destTail(k)
		switch n.Op {
		case ast.Add1:
			return assertType(types.Int, vals[0], next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.Add, Left: vals[0], Right: ssa.Const(1 << 1)}}))

		case ast.Sub1:
			return assertType(types.Int, vals[0], next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.Sub, Left: vals[0], Right: ssa.Const(1 << 1)}}))

		case ast.Not:
			// 0 XOR anything is itself (preserves the tag); 1 XOR
			// anything negates itself. 0b100 only ever touches the
			// payload bit, never the 0b01 tag.
			return assertType(types.Bool, vals[0], next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitXor, Left: vals[0], Right: ssa.Const(0b100)}}))

		case ast.Add:
			return assertTypeMulti(types.Int, vals, next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.Add, Left: vals[0], Right: vals[1]}}))

		case ast.Sub:
			return assertTypeMulti(types.Int, vals, next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.Sub, Left: vals[0], Right: vals[1]}}))

		case ast.Mul:
			half := l.vars.Fresh("half")
			return assertTypeMulti(types.Int, vals, next.prepend(
				ssa.OpNode{Dest: half, Op: ssa.Unary{Op: ssa.Sar, Arg: vals[0], Amount: 1}},
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.Mul, Left: ssa.VarRef{Name: half}, Right: vals[1]}},
			))

		case ast.And:
			return assertTypeMulti(types.Bool, vals, next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitAnd, Left: vals[0], Right: vals[1]}}))

		case ast.Or:
			return assertTypeMulti(types.Bool, vals, next.prepend(
				ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitOr, Left: vals[0], Right: vals[1]}}))

		case ast.Lt, ast.Le, ast.Gt, ast.Ge:
			return assertTypeMulti(types.Int, vals, l.lowerCompare(primCompareOp(n.Op), vals, dest, next))

		case ast.Eq, ast.Neq:
			// Structural/value equality is untyped: any two tagged
			// values may be compared, not only Int (spec.md §4.1 does
			// not require an AssertType here, unlike the ordered
			// comparisons).
			return l.lowerCompare(primCompareOp(n.Op), vals, dest, next)

		case ast.IsType:
			tag := l.vars.Fresh("tag")
			isTag := l.vars.Fresh("is_tag")
			tail := l.tagging(ssa.VarRef{Name: isTag}, types.Bool, dest, next)
			tail = tail.prepend(ssa.OpNode{Dest: isTag, Op: ssa.Binary{Op: ssa.Eq, Left: ssa.VarRef{Name: tag}, Right: ssa.Const(int64(n.IsTypeTarget.Tag()))}})
			tail = tail.prepend(ssa.OpNode{Dest: tag, Op: ssa.Binary{Op: ssa.BitAnd, Left: vals[0], Right: ssa.Const(int64(n.IsTypeTarget.Mask()))}})
			return tail

		case ast.NewArray:
			return l.lowerNewArray(vals[0], dest, next)

		case ast.MakeArray:
			return l.lowerMakeArray(vals, dest, next)

		case ast.ArrayGet:
			return l.lowerArrayGet(vals[0], vals[1], dest, next)

		case ast.ArraySet:
			return l.lowerArraySet(vals[0], vals[1], vals[2], dest, next)

		case ast.Length:
			return l.lowerLength(vals[0], dest, next)

		default:
			panic("lower: unhandled primitive op")
		}
	})
}

func primCompareOp(op ast.PrimOp) ssa.Prim2 {
	switch op {
	case ast.Lt:
		return ssa.Lt
	case ast.Le:
		return ssa.Le
	case ast.Gt:
		return ssa.Gt
	case ast.Ge:
		return ssa.Ge
	case ast.Eq:
		return ssa.Eq
	case ast.Neq:
		return ssa.Neq
	default:
		panic("lower: not a comparison op")
	}
}

// lowerCompare computes `tagged := left <op> right` (an untagged 0/1) then
// retags it as Bool into dest.
func (l *Lowerer) lowerCompare(op ssa.Prim2, vals []ssa.Immediate, dest ident.VarName, next Tail) Tail {
	tagged := l.vars.Fresh("tagged")
	tail := l.tagging(ssa.VarRef{Name: tagged}, types.Bool, dest, next)
	return tail.prepend(ssa.OpNode{Dest: tagged, Op: ssa.Binary{Op: op, Left: vals[0], Right: vals[1]}})
}

// lowerNewArray lowers `NewArray(n)`: assert Int, untag to a raw length,
// assert non-negative, bump-allocate, retag the pointer.
func (l *Lowerer) lowerNewArray(lenImm ssa.Immediate, dest ident.VarName, next Tail) Tail {
	arr := l.vars.Fresh("arr")
	length := l.vars.Fresh("len")

	tail := l.tagging(ssa.VarRef{Name: arr}, types.Array, dest, next)
	tail = tail.prepend(ssa.OpNode{Dest: arr, Op: ssa.AllocateArray{Len: ssa.VarRef{Name: length}}})
	tail = tail.prepend(ssa.AssertLength{Arg: ssa.VarRef{Name: length}})
	tail = l.untagging(types.Int, lenImm, length, tail)
	return assertType(types.Int, lenImm, tail)
}

// lowerMakeArray lowers `MakeArray(e1..en)`: allocate a constant-length
// buffer, then store each element at offsets 1..n, then retag the pointer.
func (l *Lowerer) lowerMakeArray(vals []ssa.Immediate, dest ident.VarName, next Tail) Tail {
	arr := l.vars.Fresh("arr")
	tail := l.tagging(ssa.VarRef{Name: arr}, types.Array, dest, next)
	for i := len(vals) - 1; i >= 0; i-- {
		tail = tail.prepend(ssa.Store{Addr: ssa.VarRef{Name: arr}, Offset: ssa.Const(int64(i + 1)), Value: vals[i]})
	}
	return tail.prepend(ssa.OpNode{Dest: arr, Op: ssa.AllocateArray{Len: ssa.Const(int64(len(vals)))}})
}

// lowerArrayGet lowers `ArrayGet(a, i)`: assert Array/Int, untag the
// pointer, load the length at offset 0, assert the index in bounds,
// compute offset = index + 1, then load.
func (l *Lowerer) lowerArrayGet(arrImm, idxImm ssa.Immediate, dest ident.VarName, next Tail) Tail {
	arr := l.vars.Fresh("arr")
	length := l.vars.Fresh("len")
	idx := l.vars.Fresh("idx")
	off := l.vars.Fresh("off")

	tail := next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Load{Addr: ssa.VarRef{Name: arr}, Offset: ssa.VarRef{Name: off}}})
	tail = tail.prepend(ssa.OpNode{Dest: off, Op: ssa.Binary{Op: ssa.Add, Left: ssa.VarRef{Name: idx}, Right: ssa.Const(1)}})
	tail = tail.prepend(ssa.AssertInBounds{Index: ssa.VarRef{Name: idx}, Length: ssa.VarRef{Name: length}})
	tail = l.untagging(types.Int, idxImm, idx, tail)
	tail = tail.prepend(ssa.OpNode{Dest: length, Op: ssa.Load{Addr: ssa.VarRef{Name: arr}, Offset: ssa.Const(0)}})
	tail = l.untagging(types.Array, arrImm, arr, tail)
	tail = assertType(types.Int, idxImm, tail)
	return assertType(types.Array, arrImm, tail)
}

// lowerArraySet lowers `ArraySet(a, i, v)` symmetrically to lowerArrayGet,
// storing v and yielding v as the expression's own value.
func (l *Lowerer) lowerArraySet(arrImm, idxImm, valImm ssa.Immediate, dest ident.VarName, next Tail) Tail {
	arr := l.vars.Fresh("arr")
	length := l.vars.Fresh("len")
	idx := l.vars.Fresh("idx")
	off := l.vars.Fresh("off")

	tail := next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Imm{Value: valImm}})
	tail = tail.prepend(ssa.Store{Addr: ssa.VarRef{Name: arr}, Offset: ssa.VarRef{Name: off}, Value: valImm})
	tail = tail.prepend(ssa.OpNode{Dest: off, Op: ssa.Binary{Op: ssa.Add, Left: ssa.VarRef{Name: idx}, Right: ssa.Const(1)}})
	tail = tail.prepend(ssa.AssertInBounds{Index: ssa.VarRef{Name: idx}, Length: ssa.VarRef{Name: length}})
	tail = l.untagging(types.Int, idxImm, idx, tail)
	tail = tail.prepend(ssa.OpNode{Dest: length, Op: ssa.Load{Addr: ssa.VarRef{Name: arr}, Offset: ssa.Const(0)}})
	tail = l.untagging(types.Array, arrImm, arr, tail)
	tail = assertType(types.Int, idxImm, tail)
	return assertType(types.Array, arrImm, tail)
}

// lowerLength lowers `Length(a)`: assert Array, untag, load offset 0,
// retag as Int.
func (l *Lowerer) lowerLength(arrImm ssa.Immediate, dest ident.VarName, next Tail) Tail {
	arr := l.vars.Fresh("arr")
	length := l.vars.Fresh("len")

	tail := l.tagging(ssa.VarRef{Name: length}, types.Int, dest, next)
	tail = tail.prepend(ssa.OpNode{Dest: length, Op: ssa.Load{Addr: ssa.VarRef{Name: arr}, Offset: ssa.Const(0)}})
	tail = l.untagging(types.Array, arrImm, arr, tail)
	return assertType(types.Array, arrImm, tail)
}
