package cerr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ast"
)

func TestCodeStringsAreStableErrorNumbers(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{UnboundVariable, "E0001"},
		{DuplicateVariable, "E0002"},
		{UnboundFunction, "E0003"},
		{DuplicateFunction, "E0004"},
		{DuplicateParameter, "E0005"},
		{ArityMismatch, "E0006"},
		{IntegerOverflow, "E0007"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.code.String())
	}
}

func TestArityBuildsAMessageNamingBothCounts(t *testing.T) {
	err := Arity("f", 2, 3, ast.Position{Line: 1, Column: 1})
	assert.Equal(t, ArityMismatch, err.Code)
	assert.Contains(t, err.Message, "expected 2 argument(s), found 3")
}

func TestOverflowMessageNamesTheLiteral(t *testing.T) {
	err := Overflow("99999999999999999999", ast.Position{Line: 2, Column: 5})
	assert.Equal(t, IntegerOverflow, err.Code)
	assert.Contains(t, err.Message, "99999999999999999999")
}

func TestErrorReporterFormatsACaretUnderOffendingColumn(t *testing.T) {
	source := "let x = y\nlet z = 1"
	reporter := NewErrorReporter("test.snake", source)
	err := Unbound(UnboundVariable, "variable", "y", ast.Position{Line: 1, Column: 9})

	out := reporter.Format(err)
	assert.Contains(t, out, "E0001")
	assert.Contains(t, out, "test.snake:1:9")
	assert.Contains(t, out, "let x = y")
	assert.Contains(t, out, "^")
}

func TestRuntimeMessageMatchesTheFixedSubstringsScenariosCheckFor(t *testing.T) {
	assert.Contains(t, RuntimeMessage(RuntimeIndexOutOfBounds, 4), "index 4 out of bounds")
	assert.Contains(t, RuntimeMessage(RuntimeArithmeticOverflow, 0), "arithmetic operation overflowed")
}

func TestPanicfRaisesABugNotACompilerError(t *testing.T) {
	defer func() {
		r := recover()
		bug, ok := r.(Bug)
		assert.True(t, ok, "Panicf must panic with a Bug, not a CompilerError")
		assert.Contains(t, bug.Error(), "internal compiler error")
	}()
	Panicf("unreachable: %d", 42)
}
