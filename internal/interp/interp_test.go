package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snakec/internal/ast"
	"snakec/internal/cerr"
	"snakec/internal/ident"
	"snakec/internal/surface"
)

func parseOrFail(t *testing.T, src string) *ast.Prog {
	t.Helper()
	prog, errs := surface.Parse("t.snake", src)
	assert.Empty(t, errs)
	return prog
}

func TestAdd1OfFortyTwoIsFortyThree(t *testing.T) {
	prog := parseOrFail(t, `(entry main x (prim add1 (var x)))`)
	result, err := New(prog, nil).Run(Int(42))
	assert.NoError(t, err)
	assert.Equal(t, Int(43), result)
}

// Non-tail-recursive factorial: fact(n) = if n == 0 then 1 else n * fact(n-1).
func TestNonTailRecursiveFactorialOfFive(t *testing.T) {
	src := `(entry main n
  (fundefs ((fact (k)
    (if (prim == (var k) (num 0))
        (num 1)
        (prim * (var k) (call fact (prim sub1 (var k)))))))
    (call fact (var n))))`
	prog := parseOrFail(t, src)
	result, err := New(prog, nil).Run(Int(5))
	assert.NoError(t, err)
	assert.Equal(t, Int(120), result)
}

// Direct self recursion of a function bound by fundefs:
// pow2(n) = if n == 0 then 1 else 2 * pow2(n-1); pow2(8) == 256.
func TestBindingRecursionComputesPowerOfTwo(t *testing.T) {
	src := `(entry main n
  (fundefs ((pow2 (k)
    (if (prim == (var k) (num 0))
        (num 1)
        (prim * (num 2) (call pow2 (prim sub1 (var k)))))))
    (call pow2 (var n))))`
	prog := parseOrFail(t, src)
	result, err := New(prog, nil).Run(Int(8))
	assert.NoError(t, err)
	assert.Equal(t, Int(256), result)
}

// A cyclic array (arraySet storing the array back into one of its own
// slots) must print "[<loop>]" (the marker where the array revisits
// itself) instead of recursing forever.
func TestCyclicArraySelfReferencePrintsLoopMarker(t *testing.T) {
	src := `(entry main n
  (let ((a (prim newArray (num 1))))
    (prim arraySet (var a) (num 0) (var a))))`
	prog := parseOrFail(t, src)
	result, err := New(prog, nil).Run(Int(0))
	assert.NoError(t, err)
	assert.Equal(t, "[<loop>]", result.String())
}

func TestArrayGetOutOfBoundsRaisesARuntimeError(t *testing.T) {
	src := `(entry main n
  (let ((a (prim makeArray (num 10) (num 20))))
    (prim arrayGet (var a) (num 4))))`
	prog := parseOrFail(t, src)
	_, err := New(prog, nil).Run(Int(0))
	re, ok := err.(RuntimeError)
	assert.True(t, ok)
	assert.Equal(t, cerr.RuntimeIndexOutOfBounds, re.Code)
	assert.Contains(t, err.Error(), "index 4 out of bounds")
}

func TestNewArrayWithNegativeLengthRaisesARuntimeError(t *testing.T) {
	src := `(entry main n (prim newArray (prim - (num 0) (num 3))))`
	prog := parseOrFail(t, src)
	_, err := New(prog, nil).Run(Int(0))
	re, ok := err.(RuntimeError)
	assert.True(t, ok)
	assert.Equal(t, cerr.RuntimeNegativeLength, re.Code)
}

// An extern call hands its evaluated arguments to the host implementation
// and returns whatever the host returns; this host records the arguments
// and returns the last one.
func TestExternCallInvokesTheHostImplementationWithEvaluatedArguments(t *testing.T) {
	src := `(externs (extern print 2))
(entry main n (call print (var n) (num 9)))`
	prog := parseOrFail(t, src)

	var seen []Value
	extFun := prog.Externs[0].Name
	externs := map[ident.FunName]Extern{
		extFun: func(args []Value) Value {
			seen = args
			return args[len(args)-1]
		},
	}
	result, err := New(prog, externs).Run(Int(7))
	assert.NoError(t, err)
	assert.Equal(t, Int(9), result)
	assert.Equal(t, []Value{Int(7), Int(9)}, seen)
}
