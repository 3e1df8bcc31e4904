// Package cerr implements spec.md §7's error handling design: the seven
// CompileErr variants reported before lowering, the runtime error code
// table `snake_error` calls reference, and the Bug panic type internal
// invariant violations use instead of the user-facing CompilerError path.
//
// Grounded on the teacher's internal/errors/reporter.go: the same
// Rust-like caret-diagnostic ErrorReporter, restyled around this
// compiler's own ast.Position and a fixed, closed set of error codes
// instead of the teacher's open-ended semantic-analysis Suggestion
// machinery (this language has no suggestions to offer — every error
// here is a flat "here's what's wrong and where").
package cerr

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"snakec/internal/ast"
)

// Code identifies one of the seven compile-time error shapes spec.md §7
// names.
type Code int

const (
	UnboundVariable Code = iota
	DuplicateVariable
	UnboundFunction
	DuplicateFunction
	DuplicateParameter
	ArityMismatch
	IntegerOverflow
)

func (c Code) String() string {
	switch c {
	case UnboundVariable:
		return "E0001"
	case DuplicateVariable:
		return "E0002"
	case UnboundFunction:
		return "E0003"
	case DuplicateFunction:
		return "E0004"
	case DuplicateParameter:
		return "E0005"
	case ArityMismatch:
		return "E0006"
	case IntegerOverflow:
		return "E0007"
	default:
		return "E????"
	}
}

// CompilerError is a single compile-time diagnostic: a code, the offending
// name (when the variant has one), and a source location.
type CompilerError struct {
	Code     Code
	Name     string // offending identifier, empty for IntegerOverflow
	Message  string
	Position ast.Position
	Length   int // width of the underline; 1 if zero
}

func (e CompilerError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s[%s]: %s %q (%d:%d)", "error", e.Code, e.Message, e.Name, e.Position.Line, e.Position.Column)
	}
	return fmt.Sprintf("%s[%s]: %s (%d:%d)", "error", e.Code, e.Message, e.Position.Line, e.Position.Column)
}

// Unbound builds an UnboundVariable/UnboundFunction error.
func Unbound(code Code, kind, name string, pos ast.Position) CompilerError {
	return CompilerError{Code: code, Name: name, Position: pos, Length: len(name),
		Message: fmt.Sprintf("unbound %s", kind)}
}

// Duplicate builds a DuplicateVariable/DuplicateFunction/DuplicateParameter error.
func Duplicate(code Code, kind, name string, pos ast.Position) CompilerError {
	return CompilerError{Code: code, Name: name, Position: pos, Length: len(name),
		Message: fmt.Sprintf("duplicate %s", kind)}
}

// Arity builds an ArityMismatch error for a call to name expecting want
// arguments but supplying got.
func Arity(name string, want, got int, pos ast.Position) CompilerError {
	return CompilerError{Code: ArityMismatch, Name: name, Position: pos, Length: len(name),
		Message: fmt.Sprintf("expected %d argument(s), found %d", want, got)}
}

// Overflow builds an IntegerOverflow error for a literal too large to
// tag-encode (|n| > 2^62).
func Overflow(literal string, pos ast.Position) CompilerError {
	return CompilerError{Code: IntegerOverflow, Position: pos, Length: len(literal),
		Message: fmt.Sprintf("integer literal %s overflows the tagged representation", literal)}
}

// ErrorReporter renders CompilerErrors against a known source file, with
// the offending source line and a caret underline, colored via
// fatih/color.
type ErrorReporter struct {
	filename string
	lines    []string
}

// NewErrorReporter creates a reporter for filename's source text.
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders err in the style `error[E0001]: message --> file:L:C`.
func (er *ErrorReporter) Format(err CompilerError) string {
	var out strings.Builder

	bold := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	out.WriteString(fmt.Sprintf("%s: %s\n", bold(fmt.Sprintf("error[%s]", err.Code)), err.Message))

	width := lineNumberWidth(err.Position.Line)
	indent := strings.Repeat(" ", width)
	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if err.Position.Line >= 1 && err.Position.Line <= len(er.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), er.lines[err.Position.Line-1]))

		length := err.Length
		if length <= 0 {
			length = 1
		}
		spaces := strings.Repeat(" ", maxInt(0, err.Position.Column-1))
		marker := bold(strings.Repeat("^", length))
		out.WriteString(fmt.Sprintf("%s %s %s%s\n", indent, dim("│"), spaces, marker))
	}

	return out.String()
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		return 3
	}
	return w
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Runtime error codes snake_error is called with (spec.md §7 "Runtime
// errors"), numbered like package lower's Err* constants. Codes 1, 2 and
// 3 are the expected-Int, expected-Bool and expected-Array failures;
// RuntimeTypeAssertion names code 1, and RuntimeMessage renders all three
// as a type assertion failure.
const (
	RuntimeArithmeticOverflow = 0
	RuntimeTypeAssertion      = 1
	RuntimeNegativeLength     = 4
	RuntimeIndexOutOfBounds   = 5
)

// RuntimeMessage returns the fixed stderr text for a snake_error code,
// matching the exact substrings §8's end-to-end scenarios check for
// ("index 4 out of bounds", "arithmetic operation overflowed").
func RuntimeMessage(code int, value int64) string {
	switch code {
	case RuntimeTypeAssertion, RuntimeTypeAssertion + 1, RuntimeTypeAssertion + 2:
		return fmt.Sprintf("type assertion failed on value %d", value)
	case RuntimeNegativeLength:
		return fmt.Sprintf("array length %d is negative", value)
	case RuntimeIndexOutOfBounds:
		return fmt.Sprintf("index %d out of bounds", value)
	case RuntimeArithmeticOverflow:
		return "arithmetic operation overflowed"
	default:
		return fmt.Sprintf("unknown runtime error code %d", code)
	}
}

// Bug is panicked for internal invariant violations (spec.md §7
// "Internal invariants") — never wrapped into a user-facing
// CompilerError, since it indicates a compiler defect, not a source
// error.
type Bug struct{ Msg string }

func (b Bug) Error() string { return "internal compiler error: " + b.Msg }

// Panicf panics with a Bug built from a formatted message.
func Panicf(format string, args ...interface{}) {
	panic(Bug{Msg: fmt.Sprintf(format, args...)})
}
