// Package conflict builds the interference graph spec.md §4.6 describes
// (two variables interfere when one is defined while the other is live)
// and computes a perfect elimination order over it via maximum-cardinality
// search, the input package regalloc's greedy coloring needs.
//
// Grounded on original_source/src/middle_end.rs's interference-graph
// construction (the same "walk each block backward threading the live
// set, connect every def to everything currently live" shape) and on the
// textbook Tarjan–Yannakakis MCS algorithm, since original_source renders
// its graph with an external SVG layout crate rather than computing an
// elimination order directly.
package conflict

import (
	"sort"

	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// Graph is an undirected interference graph over SSA variables.
type Graph struct {
	Nodes     []ident.VarName
	Adjacency map[ident.VarName]map[ident.VarName]bool
}

func newGraph() *Graph {
	return &Graph{Adjacency: make(map[ident.VarName]map[ident.VarName]bool)}
}

func (g *Graph) addNode(v ident.VarName) {
	if _, ok := g.Adjacency[v]; !ok {
		g.Adjacency[v] = make(map[ident.VarName]bool)
		g.Nodes = append(g.Nodes, v)
	}
}

// AddEdge records that a and b interfere (a reflexive edge is a no-op).
func (g *Graph) AddEdge(a, b ident.VarName) {
	g.addNode(a)
	g.addNode(b)
	if a == b {
		return
	}
	g.Adjacency[a][b] = true
	g.Adjacency[b][a] = true
}

// Neighbors returns every variable adjacent to v.
func (g *Graph) Neighbors(v ident.VarName) map[ident.VarName]bool { return g.Adjacency[v] }

// Build walks every block of every function, backward (mirroring package
// liveness's own scan), threading the live set and connecting each def to
// every variable simultaneously live, then connects each block's own
// parameters pairwise (they all become live together at a single entry
// point). prog must already carry fresh LiveIn/LiveOut — call
// liveness.Run first.
func Build(prog *ssa.Program) *Graph {
	g := newGraph()
	seen := make(map[ident.BlockName]bool)
	for _, fn := range prog.Functions {
		for _, b := range prog.FunctionBlocks(fn) {
			if seen[b.Label] {
				continue
			}
			seen[b.Label] = true
			buildBlock(g, b)
		}
	}
	return g
}

func buildBlock(g *Graph, b *ssa.BasicBlock) {
	live := make(map[ident.VarName]bool, len(b.LiveOut))
	for k, v := range b.LiveOut {
		live[k] = v
	}

	for i := len(b.Body) - 1; i >= 0; i-- {
		switch nd := b.Body[i].(type) {
		case ssa.OpNode:
			g.addNode(nd.Dest)
			for other := range live {
				if other != nd.Dest {
					g.AddEdge(nd.Dest, other)
				}
			}
			delete(live, nd.Dest)
			addUses(live, nd.Op.Operands())
		case ssa.AssertType:
			addUses(live, nd.Operands())
		case ssa.AssertLength:
			addUses(live, nd.Operands())
		case ssa.AssertInBounds:
			addUses(live, nd.Operands())
		case ssa.Store:
			addUses(live, nd.Operands())
		case ssa.SubBlocks:
			// No direct contribution; nested blocks are walked as their
			// own entries in Build's outer loop.
		default:
			panic("conflict: unhandled node kind")
		}
	}

	for i, p1 := range b.Params {
		g.addNode(p1)
		for j, p2 := range b.Params {
			if i != j {
				g.AddEdge(p1, p2)
			}
		}
	}
}

func addUses(live map[ident.VarName]bool, imms []ssa.Immediate) {
	for _, imm := range imms {
		if vr, ok := imm.(ssa.VarRef); ok {
			live[vr.Name] = true
		}
	}
}

// MaximumCardinalitySearch computes a perfect elimination order: for every
// position i, the neighbors occurring later in the order (index > i) form
// a clique. regalloc colors the order from the last index back to 0, so
// the already-colored neighbors of each variable are exactly those later
// neighbors.
//
// Ties (equal weight) break on the lowest VarName index, matching
// DESIGN.md's Open Question decision for determinism across runs.
func (g *Graph) MaximumCardinalitySearch() []ident.VarName {
	n := len(g.Nodes)
	weight := make(map[ident.VarName]int, n)
	visited := make(map[ident.VarName]bool, n)

	nodesByIndex := append([]ident.VarName{}, g.Nodes...)
	sort.Slice(nodesByIndex, func(i, j int) bool { return nodesByIndex[i].Index() < nodesByIndex[j].Index() })

	visits := make([]ident.VarName, 0, n)
	for len(visits) < n {
		best := ident.VarName{}
		bestWeight := -1
		found := false
		for _, v := range nodesByIndex {
			if visited[v] {
				continue
			}
			w := weight[v]
			if !found || w > bestWeight {
				best, bestWeight, found = v, w, true
			}
		}
		visited[best] = true
		visits = append(visits, best)
		for neighbor := range g.Adjacency[best] {
			if !visited[neighbor] {
				weight[neighbor]++
			}
		}
	}

	peo := make([]ident.VarName, n)
	for i, v := range visits {
		peo[n-1-i] = v
	}
	return peo
}
