package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ident"
	"snakec/internal/liveness"
	"snakec/internal/ssa"
)

// entry(): a := 1; b := 2; c := a + b; return c
// a and b interfere (both live across the "c := a + b" def); c interferes
// with neither (nothing is live when it is defined).
func TestBuildConnectsSimultaneouslyLiveVariables(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	a := vg.Fresh("a")
	b := vg.Fresh("b")
	c := vg.Fresh("c")
	entryLabel := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entryLabel}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label: entryLabel,
		Body: []ssa.Node{
			ssa.OpNode{Dest: a, Op: ssa.Imm{Value: ssa.Const(1)}},
			ssa.OpNode{Dest: b, Op: ssa.Imm{Value: ssa.Const(2)}},
			ssa.OpNode{Dest: c, Op: ssa.Binary{Op: ssa.Add, Left: ssa.VarRef{Name: a}, Right: ssa.VarRef{Name: b}}},
		},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: c}},
	})

	liveness.Run(prog)
	g := Build(prog)

	assert.True(t, g.Neighbors(a)[b])
	assert.True(t, g.Neighbors(b)[a])
	assert.False(t, g.Neighbors(c)[a])
	assert.False(t, g.Neighbors(c)[b])
}

func TestGraphIsSymmetricAndLoopFree(t *testing.T) {
	var vg ident.VarGen
	g := newGraph()
	x := vg.Fresh("x")
	y := vg.Fresh("y")
	z := vg.Fresh("z")
	g.AddEdge(x, y)
	g.AddEdge(y, z)
	g.AddEdge(x, x) // no-op: a variable never interferes with itself

	for _, u := range g.Nodes {
		assert.False(t, g.Neighbors(u)[u], "%s must not be its own neighbor", u)
		for v := range g.Neighbors(u) {
			assert.True(t, g.Neighbors(v)[u], "edge %s-%s must be symmetric", u, v)
		}
	}
}

func TestMaximumCardinalitySearchReturnsAPermutationOfAllNodes(t *testing.T) {
	var vg ident.VarGen
	g := newGraph()
	x := vg.Fresh("x")
	y := vg.Fresh("y")
	z := vg.Fresh("z")
	g.AddEdge(x, y)
	g.AddEdge(y, z)
	g.AddEdge(x, z)

	order := g.MaximumCardinalitySearch()
	assert.Len(t, order, 3)

	seen := make(map[ident.VarName]bool)
	for _, v := range order {
		assert.False(t, seen[v], "each node should appear exactly once")
		seen[v] = true
	}
}
