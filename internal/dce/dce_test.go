package dce

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// entry(): a := 1; unused := 99; jump join(a, unused)
// join(p, q): return p
//
// q is never read, so both join's q parameter and entry's jump argument
// for it (and, transitively, the dead "unused" definition that fed it)
// should disappear.
func TestDeadCodeEliminationTrimsUnusedParamsAndDefinitions(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	a := vg.Fresh("a")
	unused := vg.Fresh("unused")
	p := vg.Fresh("p")
	q := vg.Fresh("q")
	entryLabel := bg.Fresh("entry")
	joinLabel := bg.Fresh("join")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entryLabel}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label: entryLabel,
		Body: []ssa.Node{
			ssa.OpNode{Dest: a, Op: ssa.Imm{Value: ssa.Const(1)}},
			ssa.OpNode{Dest: unused, Op: ssa.Imm{Value: ssa.Const(99)}},
		},
		Terminator: ssa.Jump{Target: joinLabel, Args: []ssa.Immediate{ssa.VarRef{Name: a}, ssa.VarRef{Name: unused}}},
	})
	prog.AddBlock(&ssa.BasicBlock{
		Label:      joinLabel,
		Params:     []ident.VarName{p, q},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: p}},
	})

	changed := New().Apply(prog)
	assert.True(t, changed)

	join := prog.Block(joinLabel)
	assert.Equal(t, []ident.VarName{p}, join.Params)

	entry := prog.Block(entryLabel)
	jump, ok := entry.Terminator.(ssa.Jump)
	assert.True(t, ok)
	assert.Equal(t, []ssa.Immediate{ssa.VarRef{Name: a}}, jump.Args)
	assert.Len(t, entry.Body, 1, "the dead `unused` definition should be gone")
}

func TestDeadCodeEliminationNeverTrimsFunctionEntryParams(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	used := vg.Fresh("used")
	unusedParam := vg.Fresh("unusedParam")
	entryLabel := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Params: []ident.VarName{used, unusedParam}, Entry: entryLabel}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label:      entryLabel,
		Params:     []ident.VarName{used, unusedParam},
		Terminator: ssa.Return{Value: ssa.VarRef{Name: used}},
	})

	New().Apply(prog)

	entry := prog.Block(entryLabel)
	assert.Len(t, entry.Params, 2, "a function's entry parameters are shared with every Call site and must not be trimmed")
}

func TestDeadCodeEliminationKeepsEffectfulNodes(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	addr := vg.Fresh("addr")
	result := vg.Fresh("result")
	entryLabel := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entryLabel}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label: entryLabel,
		Body: []ssa.Node{
			ssa.OpNode{Dest: addr, Op: ssa.Imm{Value: ssa.Const(0)}},
			ssa.Store{Addr: ssa.VarRef{Name: addr}, Offset: ssa.Const(0), Value: ssa.Const(7)},
			ssa.OpNode{Dest: result, Op: ssa.Call{Fun: fn, Args: nil}},
		},
		Terminator: ssa.Return{Value: ssa.Const(0)},
	})

	changed := New().Apply(prog)
	assert.False(t, changed, "Store and Call are always kept")
	assert.Len(t, prog.Block(entryLabel).Body, 3)
}

// TestDeadCodeEliminationKeepsUnusedArrayAllocations mirrors spec.md §4.5's
// "calls, allocations, and stores are preserved regardless of liveness": a
// NewArray-style allocation whose destination is never read must not be
// deleted, since the allocation itself is the observable heap-pointer bump.
func TestDeadCodeEliminationKeepsUnusedArrayAllocations(t *testing.T) {
	var vg ident.VarGen
	var bg ident.BlockGen
	var fg ident.FunGen

	arr := vg.Fresh("arr")
	entryLabel := bg.Fresh("entry")
	fn := fg.Unmangled("main")

	prog := &ssa.Program{Functions: []*ssa.Function{{Name: fn, Entry: entryLabel}}}
	prog.AddBlock(&ssa.BasicBlock{
		Label: entryLabel,
		Body: []ssa.Node{
			ssa.OpNode{Dest: arr, Op: ssa.AllocateArray{Len: ssa.Const(5)}},
		},
		Terminator: ssa.Return{Value: ssa.Const(0)},
	})

	changed := New().Apply(prog)
	assert.False(t, changed, "AllocateArray is always kept even when its destination is dead")
	assert.Len(t, prog.Block(entryLabel).Body, 1)
}
