package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/conflict"
	"snakec/internal/ident"
	"snakec/internal/regalloc"
	"snakec/internal/ssa"
)

func TestProgramRendersExternsAndFunctionBody(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	readExtern := fg.Unmangled("read")
	argV := vg.Fresh("arg")
	x := vg.Fresh("x")
	entryLabel := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{
		Externs:   []ssa.Extern{{Name: readExtern, Params: []ident.VarName{argV}}},
		Functions: []*ssa.Function{{Name: fn, Entry: entryLabel}},
	}
	prog.AddBlock(&ssa.BasicBlock{
		Label:      entryLabel,
		Body:       []ssa.Node{ssa.OpNode{Dest: x, Op: ssa.Imm{Value: ssa.Const(2)}}},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: x}},
	})

	out := Program(prog)
	assert.Contains(t, out, "extern "+readExtern.String())
	assert.Contains(t, out, "fun "+fn.String())
	assert.Contains(t, out, x.String()+" := 2")
	assert.Contains(t, out, "return "+x.String())
}

func TestGraphRendersValidDOT(t *testing.T) {
	var vg ident.VarGen
	x := vg.Fresh("x")
	y := vg.Fresh("y")
	g := &conflict.Graph{Adjacency: make(map[ident.VarName]map[ident.VarName]bool)}
	g.AddEdge(x, y)

	out := Graph(g)
	assert.True(t, strings.HasPrefix(out, "graph interference {"))
	assert.Contains(t, out, x.String()+"\" -- \""+y.String())
}

func TestAllocationRendersEveryVariable(t *testing.T) {
	var vg ident.VarGen
	x := vg.Fresh("x")
	alloc := &regalloc.Allocation{Locations: map[ident.VarName]regalloc.Location{
		x: regalloc.InRegister{Reg: "rax"},
	}}

	out := Allocation(alloc)
	assert.Contains(t, out, x.String()+" -> rax")
}

func TestPerfectEliminationOrderIsIndexed(t *testing.T) {
	var vg ident.VarGen
	x := vg.Fresh("x")
	y := vg.Fresh("y")
	out := PerfectEliminationOrder([]ident.VarName{x, y})
	assert.Contains(t, out, "0: "+x.String())
	assert.Contains(t, out, "1: "+y.String())
}
