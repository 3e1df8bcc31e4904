// Package ast defines the resolved-AST interface consumed by lowering
// (SPEC_FULL.md §6 / spec.md §6). Every name here has already been through
// name resolution: variable and function references carry a unique
// ident.VarName/ident.FunName, never a raw string, and arities have already
// been checked. This package does not itself resolve names — it is the
// shape lowering expects to receive.
package ast

import (
	"snakec/internal/ident"
	"snakec/internal/types"
)

// Position is a source location, kept for diagnostics even though the
// surface parser and resolver that originally computed it are out of
// scope for this compiler's core.
type Position struct {
	Line   int
	Column int
}

// PrimOp names one of the language's primitive operations.
type PrimOp int

const (
	Add1 PrimOp = iota
	Sub1
	Add
	Sub
	Mul
	Not
	And
	Or
	Lt
	Le
	Gt
	Ge
	Eq
	Neq
	IsType
	NewArray
	MakeArray
	ArrayGet
	ArraySet
	Length
)

func (p PrimOp) String() string {
	switch p {
	case Add1:
		return "add1"
	case Sub1:
		return "sub1"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Not:
		return "!"
	case And:
		return "&&"
	case Or:
		return "||"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Eq:
		return "=="
	case Neq:
		return "!="
	case IsType:
		return "isType"
	case NewArray:
		return "newArray"
	case MakeArray:
		return "makeArray"
	case ArrayGet:
		return "arrayGet"
	case ArraySet:
		return "arraySet"
	case Length:
		return "length"
	default:
		return "?prim"
	}
}

// Expr is one node of a resolved-AST expression tree.
type Expr interface {
	Pos() Position
	exprNode()
}

// Num is an integer literal, already checked to be within +/- 2^62.
type Num struct {
	Value    int64
	Position Position
}

func (n *Num) Pos() Position { return n.Position }
func (*Num) exprNode()       {}

// Bool is a boolean literal.
type Bool struct {
	Value    bool
	Position Position
}

func (b *Bool) Pos() Position { return b.Position }
func (*Bool) exprNode()       {}

// Var is a reference to an already-resolved variable.
type Var struct {
	Name     ident.VarName
	Position Position
}

func (v *Var) Pos() Position { return v.Position }
func (*Var) exprNode()       {}

// Prim applies a primitive operation to its arguments. IsTypeTarget is only
// meaningful when Op == IsType.
type Prim struct {
	Op           PrimOp
	Args         []Expr
	IsTypeTarget types.Type
	Position     Position
}

func (p *Prim) Pos() Position { return p.Position }
func (*Prim) exprNode()       {}

// Binding is one `let` clause: bind Var to the value of Expr.
type Binding struct {
	Var  ident.VarName
	Expr Expr
}

// Let evaluates its Bindings in order, each seeing the ones before it, then
// evaluates Body in the extended scope.
type Let struct {
	Bindings []Binding
	Body     Expr
	Position Position
}

func (l *Let) Pos() Position { return l.Position }
func (*Let) exprNode()       {}

// If is a two-armed conditional.
type If struct {
	Cond     Expr
	Then     Expr
	Else     Expr
	Position Position
}

func (i *If) Pos() Position { return i.Position }
func (*If) exprNode()       {}

// FunDecl is one declaration inside a FunDefs group. Declarations within a
// single FunDefs group may call each other and themselves, regardless of
// textual order (mutual recursion).
type FunDecl struct {
	Name     ident.FunName
	Params   []ident.VarName
	Body     Expr
	Position Position
}

// FunDefs introduces a group of mutually recursive local function
// declarations in scope for Body.
type FunDefs struct {
	Decls    []FunDecl
	Body     Expr
	Position Position
}

func (f *FunDefs) Pos() Position { return f.Position }
func (*FunDefs) exprNode()       {}

// Call invokes a resolved function (either a local FunDecl or an ExtDecl)
// with fully-evaluated argument expressions.
type Call struct {
	Fun      ident.FunName
	Args     []Expr
	Position Position
}

func (c *Call) Pos() Position { return c.Position }
func (*Call) exprNode()       {}

// ExtDecl declares a procedure implemented outside the compiled program and
// linked in at runtime.
type ExtDecl struct {
	Name   ident.FunName
	Params []ident.VarName
}

// Prog is a whole resolved program: some externs, and a single entry
// function taking one array-of-arguments parameter.
type Prog struct {
	Externs []ExtDecl
	Entry   ident.FunName
	Param   ident.VarName
	Body    Expr
}
