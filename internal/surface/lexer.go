// Package surface provides a minimal S-expression-like textual notation
// for already-resolved programs (spec.md SPEC_FULL.md §3.4) — it exists
// so cmd/snakec and its tests have something to read from disk, and is
// deliberately NOT the language's real surface syntax (which spec.md
// leaves unspecified; only the resolved ast.Prog shape is given).
//
// Grounded on the teacher's grammar package: a participle stateful lexer
// (grammar/lexer.go) feeding a struct-tag grammar (grammar/grammar.go)
// built and driven the way grammar/parser.go does, caret error reporting
// included.
package surface

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes the s-expression notation: parens and the colon used by
// `(prim istype:Int x)`, a fixed operator-symbol alphabet, integers,
// identifiers (including keywords, resolved structurally by the grammar
// rather than by a reserved-word list), and whitespace (elided).
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Punct", Pattern: `[()":]`},
	{Name: "Op", Pattern: `&&|\|\||==|!=|<=|>=|<|>|[+\-*!]`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
