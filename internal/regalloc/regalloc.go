// Package regalloc implements spec.md §4.7: Chaitin-style greedy graph
// coloring driven by package conflict's perfect elimination order, with
// spill-to-stack-slot fallback once a variable's neighbors have exhausted
// every available register.
//
// Grounded on original_source/src/middle_end.rs's allocator (same
// greedy-along-a-simplicial-order coloring, same "out of colors ⇒ spill"
// fallback) and on the teacher's general preference for small, explicit
// value types over magic constants (internal/ir's instruction shapes).
package regalloc

import (
	"fmt"

	"snakec/internal/conflict"
	"snakec/internal/ident"
	"snakec/internal/liveness"
	"snakec/internal/ssa"
)

// DefaultRegisters is the System V integer register set minus rsp/rbp
// (the frame), r11 (reserved scratch space for materializing immediates
// that don't fit a single instruction encoding), and r15 (the heap
// pointer) — 12 usable registers, per DESIGN.md's Open Question decision.
var DefaultRegisters = []string{
	"rax", "rbx", "rcx", "rdx", "rsi", "rdi",
	"r8", "r9", "r10", "r12", "r13", "r14",
}

// Location is where a variable lives after allocation: either a register
// or a stack slot (a non-negative offset index, scaled to bytes by
// whatever emits final assembly — out of this compiler's scope).
type Location interface {
	fmt.Stringer
	isLocation()
}

// InRegister places a variable directly in a machine register.
type InRegister struct{ Reg string }

func (InRegister) isLocation()       {}
func (l InRegister) String() string { return l.Reg }

// OnStack spills a variable to stack slot Slot. Slot s denotes the stack
// offset -8*s from the frame pointer (spec.md §3, "Allocation"), so slots
// are numbered from 1 up — slot 0 would collide with the frame pointer
// itself (spec.md §4.7/§6: "use the lowest-indexed slot s >= 1").
type OnStack struct{ Slot int }

func (OnStack) isLocation()       {}
func (l OnStack) String() string { return fmt.Sprintf("[stack:%d]", l.Slot) }

// Allocation is the final variable -> Location mapping.
type Allocation struct {
	Locations map[ident.VarName]Location
}

// SpillCount reports how many distinct stack slots were used.
func (a *Allocation) SpillCount() int {
	slots := make(map[int]bool)
	for _, loc := range a.Locations {
		if s, ok := loc.(OnStack); ok {
			slots[s.Slot] = true
		}
	}
	return len(slots)
}

// Run recomputes liveness, builds the interference graph, and colors it
// against registers (DefaultRegisters if nil/empty).
func Run(prog *ssa.Program, registers []string) *Allocation {
	if len(registers) == 0 {
		registers = DefaultRegisters
	}
	liveness.Run(prog)
	g := conflict.Build(prog)
	return Allocate(g, registers)
}

// Allocate colors g's vertices in reverse perfect-elimination order (the
// last entry of MaximumCardinalitySearch's result first): each variable
// takes the lowest-indexed register not already used by one of
// its already-colored neighbors. If every register is taken, it spills to
// the lowest-indexed slot s >= 1 not already used by a neighbor currently
// holding a spill (spec.md §4.7/§6) — ties broken by register/slot index,
// so two non-interfering spilled variables may legitimately share a slot.
func Allocate(g *conflict.Graph, registers []string) *Allocation {
	peo := g.MaximumCardinalitySearch()
	colorOf := make(map[ident.VarName]int, len(peo))
	locations := make(map[ident.VarName]Location, len(peo))

	for i := len(peo) - 1; i >= 0; i-- {
		v := peo[i]
		usedRegs := make(map[int]bool)
		usedSlots := make(map[int]bool)
		for neighbor := range g.Neighbors(v) {
			if c, ok := colorOf[neighbor]; ok {
				usedRegs[c] = true
			}
			if loc, ok := locations[neighbor]; ok {
				if s, ok := loc.(OnStack); ok {
					usedSlots[s.Slot] = true
				}
			}
		}
		chosen := -1
		for i := range registers {
			if !usedRegs[i] {
				chosen = i
				break
			}
		}
		if chosen >= 0 {
			colorOf[v] = chosen
			locations[v] = InRegister{Reg: registers[chosen]}
			continue
		}
		slot := 1
		for usedSlots[slot] {
			slot++
		}
		locations[v] = OnStack{Slot: slot}
	}

	return &Allocation{Locations: locations}
}
