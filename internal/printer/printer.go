// Package printer renders every `-target` dump cmd/snakec supports: the
// SSA program itself, the interference graph (as DOT instead of
// original_source's SVG layout-crate rendering — see DESIGN.md), the
// perfect elimination order, and the final register/stack allocation.
//
// Grounded on the teacher's internal/ir/printer.go: an indent-tracking
// Printer wrapping a strings.Builder with writeLine/write helpers, rather
// than ad hoc fmt.Sprintf concatenation.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"snakec/internal/conflict"
	"snakec/internal/ident"
	"snakec/internal/regalloc"
	"snakec/internal/ssa"
)

// Printer accumulates indented output.
type Printer struct {
	indent int
	output strings.Builder
}

func newPrinter() *Printer { return &Printer{} }

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

// Program renders prog's externs and functions, one block per line group,
// each block's body indented under its `label(params):` header.
func Program(prog *ssa.Program) string {
	p := newPrinter()

	for _, e := range prog.Externs {
		params := make([]string, len(e.Params))
		for i, pr := range e.Params {
			params[i] = pr.String()
		}
		p.writeLine("extern %s(%s)", e.Name, strings.Join(params, ", "))
	}
	if len(prog.Externs) > 0 {
		p.writeLine("")
	}

	for _, fn := range prog.Functions {
		params := make([]string, len(fn.Params))
		for i, pr := range fn.Params {
			params[i] = pr.String()
		}
		p.writeLine("fun %s(%s) -> %s", fn.Name, strings.Join(params, ", "), fn.Entry)
		p.indent++
		seen := make(map[ident.BlockName]bool)
		for _, b := range prog.FunctionBlocks(fn) {
			if !seen[b.Label] {
				seen[b.Label] = true
				p.block(b)
			}
		}
		p.indent--
		p.writeLine("")
	}

	return p.output.String()
}

func (p *Printer) block(b *ssa.BasicBlock) {
	params := make([]string, len(b.Params))
	for i, pr := range b.Params {
		params[i] = pr.String()
	}
	p.writeLine("%s(%s):", b.Label, strings.Join(params, ", "))
	p.indent++
	for _, n := range b.Body {
		if sb, ok := n.(ssa.SubBlocks); ok {
			for _, inner := range sb.Blocks {
				p.block(inner)
			}
			continue
		}
		p.writeLine("%s", n)
	}
	if b.Terminator != nil {
		p.writeLine("%s", b.Terminator)
	}
	if b.LiveIn != nil {
		p.writeLine("; live_in = {%s}", varSetString(b.LiveIn))
	}
	if b.LiveOut != nil {
		p.writeLine("; live_out = {%s}", varSetString(b.LiveOut))
	}
	p.indent--
}

func varSetString(s map[ident.VarName]bool) string {
	names := make([]string, 0, len(s))
	for v := range s {
		names = append(names, v.String())
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Graph renders g as a DOT undirected graph (`dot -Tsvg` can render it
// directly, replacing original_source's in-process SVG layout call).
func Graph(g *conflict.Graph) string {
	p := newPrinter()
	p.writeLine("graph interference {")
	p.indent++
	nodes := append([]ident.VarName{}, g.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Index() < nodes[j].Index() })
	for _, v := range nodes {
		p.writeLine("%q;", v.String())
	}
	printed := make(map[[2]ident.VarName]bool)
	for _, a := range nodes {
		for b := range g.Neighbors(a) {
			key := edgeKey(a, b)
			if printed[key] {
				continue
			}
			printed[key] = true
			p.writeLine("%q -- %q;", a.String(), b.String())
		}
	}
	p.indent--
	p.writeLine("}")
	return p.output.String()
}

func edgeKey(a, b ident.VarName) [2]ident.VarName {
	if a.Index() <= b.Index() {
		return [2]ident.VarName{a, b}
	}
	return [2]ident.VarName{b, a}
}

// PerfectEliminationOrder renders a computed order one variable per line,
// in elimination order (regalloc colors from the last position back to 0).
func PerfectEliminationOrder(order []ident.VarName) string {
	p := newPrinter()
	for i, v := range order {
		p.writeLine("%d: %s", i, v)
	}
	return p.output.String()
}

// Allocation renders the final variable -> location mapping, one line per
// variable, sorted by variable index.
func Allocation(a *regalloc.Allocation) string {
	p := newPrinter()
	names := make([]ident.VarName, 0, len(a.Locations))
	for v := range a.Locations {
		names = append(names, v)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Index() < names[j].Index() })
	for _, v := range names {
		p.writeLine("%s -> %s", v, a.Locations[v])
	}
	return p.output.String()
}
