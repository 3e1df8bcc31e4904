package surface

import "github.com/alecthomas/participle/v2/lexer"

// Program is `(externs (extern name arity)*) (entry name param body)`;
// the externs group may be omitted.
type Program struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Externs []*ExternDecl `( "(" "externs" @@* ")" )?`
	Entry   *EntryDecl    `@@`
}

// ExternDecl is `(extern name arity)`.
type ExternDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string `"(" "extern" @Ident`
	Arity  int    `@Int ")"`
}

// EntryDecl is `(entry name param body)` — the program's single entry
// function, taking one parameter.
type EntryDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string `"(" "entry" @Ident`
	Param  string `@Ident`
	Body   *Expr  `@@ ")"`
}

// Expr is one of the language's expression shapes, disambiguated by the
// keyword immediately following its opening paren. Pos is participle's
// auto-populated start-of-match position (set before any alternative's
// own tokens are consumed) and is what resolveExpr threads into every
// ast.Expr's own Position field.
type Expr struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Num     *NumLit      `  @@`
	Bool    *BoolLit     `| @@`
	Var     *VarRef      `| @@`
	Prim    *PrimExpr    `| @@`
	Let     *LetExpr     `| @@`
	If      *IfExpr      `| @@`
	FunDefs *FunDefsExpr `| @@`
	Call    *CallExpr    `| @@`
}

// NumLit is `(num 42)`.
type NumLit struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  int64 `"(" "num" @Int ")"`
}

// BoolLit is `(bool true)` or `(bool false)`.
type BoolLit struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `"(" "bool" @("true" | "false") ")"`
}

// VarRef is `(var x)`.
type VarRef struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string `"(" "var" @Ident ")"`
}

// PrimExpr is `(prim op arg*)`, or `(prim istype : Type arg)` for the one
// primitive that carries an extra static argument.
type PrimExpr struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Op      string  `"(" "prim" @(Ident | Op)`
	TypeArg *string `[ ":" @Ident ]`
	Args    []*Expr `@@* ")"`
}

// LetExpr is `(let ((x e) (y e)) body)`.
type LetExpr struct {
	Pos      lexer.Position
	EndPos   lexer.Position
	Bindings []*Binding `"(" "let" "(" @@* ")"`
	Body     *Expr      `@@ ")"`
}

// Binding is one `(name expr)` clause of a let.
type Binding struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string `"(" @Ident`
	Expr   *Expr  `@@ ")"`
}

// IfExpr is `(if cond then else)`.
type IfExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Cond   *Expr `"(" "if" @@`
	Then   *Expr `@@`
	Else   *Expr `@@ ")"`
}

// FunDefsExpr is `(fundefs ((name (p1 p2) body) ...) body)`.
type FunDefsExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Decls  []*FunDecl `"(" "fundefs" "(" @@* ")"`
	Body   *Expr      `@@ ")"`
}

// FunDecl is one `(name (p1 p2 ...) body)` clause of a fundefs group.
type FunDecl struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Name   string   `"(" @Ident "("`
	Params []string `@Ident* ")"`
	Body   *Expr    `@@ ")"`
}

// CallExpr is `(call name arg*)`.
type CallExpr struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Fun    string  `"(" "call" @Ident`
	Args   []*Expr `@@* ")"`
}
