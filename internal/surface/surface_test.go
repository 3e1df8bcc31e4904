package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ast"
	"snakec/internal/cerr"
)

func TestParseRoundTripsAValidProgram(t *testing.T) {
	src := `(externs (extern read 1))
(entry main x (prim + (var x) (num 1)))`

	prog, errs := Parse("test.snake", src)
	assert.Empty(t, errs)
	assert.NotNil(t, prog)
	assert.Equal(t, 1, len(prog.Externs))
	assert.Equal(t, "read", prog.Externs[0].Name.String())

	body, ok := prog.Body.(*ast.Prim)
	assert.True(t, ok)
	assert.Equal(t, ast.Add, body.Op)
}

func TestParseResolvesLetFunDefsAndCallTogether(t *testing.T) {
	src := `(entry main n
  (fundefs ((double (x) (prim + (var x) (var x))))
    (let ((y (call double (var n)))) (var y))))`

	prog, errs := Parse("test.snake", src)
	assert.Empty(t, errs)
	assert.NotNil(t, prog)

	defs, ok := prog.Body.(*ast.FunDefs)
	assert.True(t, ok)
	let, ok := defs.Body.(*ast.Let)
	assert.True(t, ok)
	assert.Len(t, let.Bindings, 1)
	_, ok = let.Bindings[0].Expr.(*ast.Call)
	assert.True(t, ok)
}

func codeOf(t *testing.T, errs []cerr.CompilerError) cerr.Code {
	t.Helper()
	assert.NotEmpty(t, errs)
	return errs[0].Code
}

func TestResolveReportsUnboundVariable(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x (var y))`)
	assert.Equal(t, cerr.UnboundVariable, codeOf(t, errs))
}

func TestResolveReportsDuplicateVariable(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x (let ((y (num 1)) (y (num 2))) (var y)))`)
	assert.Equal(t, cerr.DuplicateVariable, codeOf(t, errs))
}

func TestResolveReportsUnboundFunction(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x (call nope (var x)))`)
	assert.Equal(t, cerr.UnboundFunction, codeOf(t, errs))
}

func TestResolveReportsDuplicateFunction(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x
  (fundefs ((f (a) (var a)) (f (b) (var b))) (num 0)))`)
	assert.Equal(t, cerr.DuplicateFunction, codeOf(t, errs))
}

func TestResolveReportsDuplicateParameter(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x
  (fundefs ((f (a a) (var a))) (num 0)))`)
	assert.Equal(t, cerr.DuplicateParameter, codeOf(t, errs))
}

func TestResolveReportsArityMismatchOnCall(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x
  (fundefs ((f (a b) (var a))) (call f (var x))))`)
	assert.Equal(t, cerr.ArityMismatch, codeOf(t, errs))
}

func TestResolveReportsArityMismatchOnPrim(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x (prim add1 (var x) (var x)))`)
	assert.Equal(t, cerr.ArityMismatch, codeOf(t, errs))
}

func TestResolveReportsIntegerOverflow(t *testing.T) {
	_, errs := Parse("t.snake", `(entry main x (num 9223372036854775807))`)
	assert.Equal(t, cerr.IntegerOverflow, codeOf(t, errs))
}

func TestResolveDuplicateExternNameIsAFunctionDuplicate(t *testing.T) {
	_, errs := Parse("t.snake", `(externs (extern f 1) (extern f 2))
(entry main x (var x))`)
	assert.Equal(t, cerr.DuplicateFunction, codeOf(t, errs))
}
