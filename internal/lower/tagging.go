package lower

import (
	"snakec/internal/ident"
	"snakec/internal/ssa"
	"snakec/internal/types"
)

// tagging builds `dest := <imm retagged as ty>`, prepended onto next
// (spec.md §4.1 tag discipline; grounded on original_source's
// Lowerer::tagging). Int and Bool tag by shifting left by the type's mask
// length and OR-ing in the tag bits; Array tagging is a bare OR since an
// array's untagged form is already a full-width pointer.
func (l *Lowerer) tagging(imm ssa.Immediate, ty types.Type, dest ident.VarName, next Tail) Tail {
	switch ty {
	case types.Int, types.Bool:
		shifted := l.vars.Fresh("shifted")
		return next.prepend(
			ssa.OpNode{Dest: shifted, Op: ssa.Unary{Op: ssa.Sal, Arg: imm, Amount: ty.MaskLength()}},
			ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitOr, Left: ssa.VarRef{Name: shifted}, Right: ssa.Const(int64(ty.Tag()))}},
		)
	default: // types.Array
		return next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitOr, Left: imm, Right: ssa.Const(int64(ty.Tag()))}})
	}
}

// untagging builds `dest := <imm stripped of its ty tag>`, prepended onto
// next. Int and Bool untag with an arithmetic shift right; Array untags
// with an XOR against its tag bits (cheaper than masking since the tag is
// known to already be present after an AssertType).
func (l *Lowerer) untagging(ty types.Type, imm ssa.Immediate, dest ident.VarName, next Tail) Tail {
	switch ty {
	case types.Int, types.Bool:
		return next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Unary{Op: ssa.Sar, Arg: imm, Amount: ty.MaskLength()}})
	default: // types.Array
		return next.prepend(ssa.OpNode{Dest: dest, Op: ssa.Binary{Op: ssa.BitXor, Left: imm, Right: ssa.Const(int64(ty.Tag()))}})
	}
}

// assertType prepends a single AssertType(ty, arg) node onto next.
func assertType(ty types.Type, arg ssa.Immediate, next Tail) Tail {
	return next.prepend(ssa.AssertType{Arg: arg, Target: ty})
}

// assertTypeMulti prepends one AssertType(ty, _) node per element of args,
// in left-to-right order (spec.md §4.1, "every Int/Bool-typed argument is
// preceded by an AssertType node").
func assertTypeMulti(ty types.Type, args []ssa.Immediate, next Tail) Tail {
	t := next
	for i := len(args) - 1; i >= 0; i-- {
		t = assertType(ty, args[i], t)
	}
	return t
}
