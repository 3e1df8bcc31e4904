// Package ident provides the three disjoint, monotonically increasing
// identifier namespaces used throughout the compiler: variables, functions,
// and basic blocks. Every identifier pairs a human-readable hint with a
// unique index; equality and hashing are by index only, so two identifiers
// with the same hint (e.g. two variables both hinted "x") are always
// distinct names.
package ident

import "fmt"

// VarName is a unique SSA variable name.
type VarName struct {
	hint  string
	index int
}

// Hint returns the human-readable name this variable was minted from.
func (v VarName) Hint() string { return v.hint }

// Index returns the globally unique index identifying this variable.
func (v VarName) Index() int { return v.index }

func (v VarName) String() string { return fmt.Sprintf("%s_%d", v.hint, v.index) }

// BlockName is a unique basic-block label.
type BlockName struct {
	hint  string
	index int
}

func (b BlockName) Hint() string  { return b.hint }
func (b BlockName) Index() int    { return b.index }
func (b BlockName) String() string { return fmt.Sprintf("%s_%d", b.hint, b.index) }

// FunName is a unique function name. Unmangled names (externs, and the
// program entry point) print as their hint alone; mangled names (every
// other function, always freshly generated) print with their index.
type FunName struct {
	hint      string
	index     int
	unmangled bool
}

func (f FunName) Hint() string     { return f.hint }
func (f FunName) Index() int       { return f.index }
func (f FunName) Unmangled() bool  { return f.unmangled }

func (f FunName) String() string {
	if f.unmangled {
		return f.hint
	}
	return fmt.Sprintf("%s_%d", f.hint, f.index)
}

// Gen is a monotonic generator for one identifier namespace. The zero value
// is ready to use. Gen is not safe for concurrent use — the compiler is
// single-threaded end to end (see the concurrency model in SPEC_FULL.md).
type Gen struct {
	next int
}

// VarGen mints fresh VarNames.
type VarGen struct{ g Gen }

func (g *VarGen) Fresh(hint string) VarName {
	v := VarName{hint: hint, index: g.g.next}
	g.g.next++
	return v
}

// BlockGen mints fresh BlockNames.
type BlockGen struct{ g Gen }

func (g *BlockGen) Fresh(hint string) BlockName {
	b := BlockName{hint: hint, index: g.g.next}
	g.g.next++
	return b
}

// FunGen mints fresh FunNames, mangled by default.
type FunGen struct{ g Gen }

func (g *FunGen) Fresh(hint string) FunName {
	f := FunName{hint: hint, index: g.g.next}
	g.g.next++
	return f
}

// Unmangled mints a FunName that always prints as hint alone — used for
// externs and the program entry point, which must keep a stable linker
// symbol across compilations.
func (g *FunGen) Unmangled(hint string) FunName {
	f := FunName{hint: hint, index: g.g.next, unmangled: true}
	g.g.next++
	return f
}
