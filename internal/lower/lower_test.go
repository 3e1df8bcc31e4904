package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ast"
	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// fun main(x) = x
func TestLowerOfABareParameterReturnsItDirectly(t *testing.T) {
	var fg ident.FunGen
	var vg ident.VarGen
	x := vg.Fresh("x")
	entry := fg.Unmangled("main")

	prog := &ast.Prog{Entry: entry, Param: x, Body: &ast.Var{Name: x}}

	out := Lower(prog)
	assert.Len(t, out.Functions, 1)
	assert.Equal(t, entry, out.Functions[0].Name)

	block := out.Block(out.Functions[0].Entry)
	ret, ok := block.Terminator.(ssa.Return)
	assert.True(t, ok)
	assert.Equal(t, ssa.VarRef{Name: x}, ret.Value)
}

// fun main(x) = let y = x in y
func TestLowerOfALetBindingEmitsACopyNodeBeforeReturning(t *testing.T) {
	var fg ident.FunGen
	var vg ident.VarGen
	x := vg.Fresh("x")
	y := vg.Fresh("y")
	entry := fg.Unmangled("main")

	prog := &ast.Prog{
		Entry: entry, Param: x,
		Body: &ast.Let{
			Bindings: []ast.Binding{{Var: y, Expr: &ast.Var{Name: x}}},
			Body:     &ast.Var{Name: y},
		},
	}

	out := Lower(prog)
	block := out.Block(out.Functions[0].Entry)
	assert.Len(t, block.Body, 1)
	op, ok := block.Body[0].(ssa.OpNode)
	assert.True(t, ok)
	assert.Equal(t, y, op.Dest)

	ret, ok := block.Terminator.(ssa.Return)
	assert.True(t, ok)
	assert.Equal(t, ssa.VarRef{Name: y}, ret.Value)
}

// fun main(x) = if x then 1 else 2 — lowers to a CondBranch into two
// blocks that each return directly, with no join block.
func TestLowerOfAnIfInTailPositionBranchesToTwoReturns(t *testing.T) {
	var fg ident.FunGen
	var vg ident.VarGen
	x := vg.Fresh("x")
	entry := fg.Unmangled("main")

	prog := &ast.Prog{
		Entry: entry, Param: x,
		Body: &ast.If{
			Cond: &ast.Var{Name: x},
			Then: &ast.Num{Value: 1},
			Else: &ast.Num{Value: 2},
		},
	}

	out := Lower(prog)
	block := out.Block(out.Functions[0].Entry)
	_, ok := block.Terminator.(ssa.CondBranch)
	assert.True(t, ok, "an if in tail position still lowers through a CondBranch, not an inlined select")

	// Every reachable block from the entry must terminate validly — no
	// block should be left without a terminator.
	for _, b := range out.AllBlocksReachableFrom([]ident.BlockName{out.Functions[0].Entry}) {
		assert.NotNil(t, b.Terminator)
	}
}

// fun main(x) = x + 1, lowered through the tagged-integer Add primitive.
func TestLowerOfAnArithmeticPrimEmitsABinaryOp(t *testing.T) {
	var fg ident.FunGen
	var vg ident.VarGen
	x := vg.Fresh("x")
	entry := fg.Unmangled("main")

	prog := &ast.Prog{
		Entry: entry, Param: x,
		Body: &ast.Prim{Op: ast.Add, Args: []ast.Expr{&ast.Var{Name: x}, &ast.Num{Value: 1}}},
	}

	out := Lower(prog)
	block := out.Block(out.Functions[0].Entry)
	assert.NotEmpty(t, block.Body)

	var sawBinary bool
	for _, n := range block.Body {
		if op, ok := n.(ssa.OpNode); ok {
			if _, ok := op.Op.(ssa.Binary); ok {
				sawBinary = true
			}
		}
	}
	assert.True(t, sawBinary, "x + 1 must lower to an ssa.Binary operation somewhere in the block")
}

func TestLowerRegistersTheBuiltinExterns(t *testing.T) {
	var fg ident.FunGen
	var vg ident.VarGen
	x := vg.Fresh("x")
	entry := fg.Unmangled("main")

	prog := &ast.Prog{Entry: entry, Param: x, Body: &ast.Var{Name: x}}
	out := Lower(prog)

	var names []string
	for _, e := range out.Externs {
		names = append(names, e.Name.Hint())
	}
	assert.Contains(t, names, SnakeErrorName)
	assert.Contains(t, names, SnakeNewArrayName)
}
