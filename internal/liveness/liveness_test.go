package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// Builds:
//
//	entry(): c := 1; d := 2 (dead); br c ? then() : else()
//	then():  t := 10; jump join(t)
//	else():  e := 20; jump join(e)
//	join(p): return p
func buildCFG() (*ssa.Program, map[string]ident.VarName, map[string]ident.BlockName) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	vars := map[string]ident.VarName{
		"c": vg.Fresh("c"), "d": vg.Fresh("d"),
		"t": vg.Fresh("t"), "e": vg.Fresh("e"), "p": vg.Fresh("p"),
	}
	blocks := map[string]ident.BlockName{
		"entry": bg.Fresh("entry"), "then": bg.Fresh("then"),
		"else": bg.Fresh("else"), "join": bg.Fresh("join"),
	}
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: blocks["entry"]}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label: blocks["entry"],
		Body: []ssa.Node{
			ssa.OpNode{Dest: vars["c"], Op: ssa.Imm{Value: ssa.Const(1)}},
			ssa.OpNode{Dest: vars["d"], Op: ssa.Imm{Value: ssa.Const(2)}},
		},
		Terminator: ssa.CondBranch{Cond: ssa.VarRef{Name: vars["c"]}, Then: blocks["then"], Else: blocks["else"]},
	})
	prog.AddBlock(&ssa.BasicBlock{
		Label:      blocks["then"],
		Body:       []ssa.Node{ssa.OpNode{Dest: vars["t"], Op: ssa.Imm{Value: ssa.Const(10)}}},
		Terminator: ssa.Jump{Target: blocks["join"], Args: []ssa.Immediate{ssa.VarRef{Name: vars["t"]}}},
	})
	prog.AddBlock(&ssa.BasicBlock{
		Label:      blocks["else"],
		Body:       []ssa.Node{ssa.OpNode{Dest: vars["e"], Op: ssa.Imm{Value: ssa.Const(20)}}},
		Terminator: ssa.Jump{Target: blocks["join"], Args: []ssa.Immediate{ssa.VarRef{Name: vars["e"]}}},
	})
	prog.AddBlock(&ssa.BasicBlock{
		Label:      blocks["join"],
		Params:     []ident.VarName{vars["p"]},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: vars["p"]}},
	})

	return prog, vars, blocks
}

func TestLivenessPropagatesAcrossBranchesAndJoins(t *testing.T) {
	prog, vars, blocks := buildCFG()
	Run(prog)

	entry := prog.Block(blocks["entry"])
	then := prog.Block(blocks["then"])
	elseB := prog.Block(blocks["else"])
	join := prog.Block(blocks["join"])

	assert.False(t, entry.LiveIn[vars["c"]], "c is defined, not read, at entry's head")
	assert.True(t, entry.LiveOut[vars["c"]], "c feeds the branch condition")
	assert.False(t, entry.LiveIn[vars["d"]])
	assert.False(t, entry.LiveOut[vars["d"]], "d is never used anywhere")

	assert.True(t, then.LiveOut[vars["t"]], "t is the jump argument feeding join's live parameter")
	assert.False(t, then.LiveIn[vars["t"]], "t is defined inside then, not live on entry to it")

	assert.True(t, elseB.LiveOut[vars["e"]])

	assert.True(t, join.LiveIn[vars["p"]], "join's own parameter is read by its return")
}
