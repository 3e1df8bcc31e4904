package copyprop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// buildProgram returns a single-block, single-function program:
//
//	entry():
//	  x := 2
//	  y := x        ; copy, should be eliminated
//	  z := y + 4
//	  return z
func buildProgram() (*ssa.Program, ident.VarName, ident.VarName, ident.VarName) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	x := vg.Fresh("x")
	y := vg.Fresh("y")
	z := vg.Fresh("z")
	entry := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	block := &ssa.BasicBlock{
		Label: entry,
		Body: []ssa.Node{
			ssa.OpNode{Dest: x, Op: ssa.Imm{Value: ssa.Const(2)}},
			ssa.OpNode{Dest: y, Op: ssa.Imm{Value: ssa.VarRef{Name: x}}},
			ssa.OpNode{Dest: z, Op: ssa.Binary{Op: ssa.Add, Left: ssa.VarRef{Name: y}, Right: ssa.Const(4)}},
		},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: z}},
	}

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entry}}}
	prog.AddBlock(block)
	return prog, x, y, z
}

func TestCopyPropagationEliminatesCopyAndRewritesUses(t *testing.T) {
	prog, x, y, _ := buildProgram()

	pass := New()
	changed := pass.Apply(prog)
	assert.True(t, changed)

	block := prog.Block(prog.Functions[0].Entry)
	assert.Len(t, block.Body, 2, "the copy node should have been dropped")

	binOp, ok := block.Body[1].(ssa.OpNode)
	assert.True(t, ok)
	bin, ok := binOp.Op.(ssa.Binary)
	assert.True(t, ok)
	assert.Equal(t, ssa.VarRef{Name: x}, bin.Left, "use of y should now read x directly")
	assert.Equal(t, ssa.Const(4), bin.Right)

	_ = y
}

func TestCopyPropagationConvergesToNoChange(t *testing.T) {
	prog, _, _, _ := buildProgram()
	pass := New()
	assert.True(t, pass.Apply(prog))
	assert.False(t, pass.Apply(prog), "a second pass over an already-propagated program changes nothing")
}

func TestCopyPropagationPreservesConstantMoves(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	x := vg.Fresh("x")
	entry := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	block := &ssa.BasicBlock{
		Label:      entry,
		Body:       []ssa.Node{ssa.OpNode{Dest: x, Op: ssa.Imm{Value: ssa.Const(10)}}},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: x}},
	}
	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entry}}}
	prog.AddBlock(block)

	changed := New().Apply(prog)
	assert.False(t, changed, "a constant move is not a copy and must survive")
	assert.Len(t, prog.Block(entry).Body, 1)
}
