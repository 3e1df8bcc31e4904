// Command snakec is the compiler's demonstration front end: it parses a
// surface-syntax source file, resolves it, and either runs it through the
// interp.Interp oracle (-x) or drives it through internal/compile's
// pipeline, printing whatever stage -target asks for.
//
// Grounded on the teacher's cmd/kanso-cli (read file, parse, print,
// caret-diagnostic on failure) generalized to the many stopping points
// this pipeline has, and to the tagged-value oracle path the teacher's
// single-pass CLI doesn't need.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"snakec/internal/ast"
	"snakec/internal/cerr"
	"snakec/internal/compile"
	"snakec/internal/ident"
	"snakec/internal/interp"
	"snakec/internal/printer"
	"snakec/internal/surface"
)

func main() {
	var (
		target   = flag.String("target", "coloring", "pipeline stage to print: ast|ssa|cp|ar|live|graph|order|coloring")
		noCP     = flag.Bool("no-cp", false, "disable copy propagation")
		noAR     = flag.Bool("no-ar", false, "disable assertion removal")
		noDCE    = flag.Bool("no-dce", false, "disable dead code elimination")
		regSpec  = flag.String("R", "all", "register selection: all|volatile|non-volatile|none, +reg/-reg modifiers")
		verbose  = flag.Int("v", 0, "verbosity: 0=minimalistic 1=moderate 2=mouthful")
		runInterp = flag.Bool("x", false, "run via the AST interpreter oracle instead of compiling")
		arg      = flag.Int64("arg", 0, "integer argument passed to the entry function with -x")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: snakec [flags] <source-file>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snakec: %s\n", err)
		os.Exit(1)
	}

	prog, errs := surface.Parse(path, string(source))
	if len(errs) > 0 {
		reportCompileErrors(path, string(source), errs)
		os.Exit(1)
	}

	if *runInterp {
		runOracle(prog, *arg)
		return
	}

	cfg := compile.Config{
		CopyPropagation:     !*noCP,
		AssertionRemoval:    !*noAR,
		DeadCodeElimination: !*noDCE,
		Verbosity:           compile.Verbosity(*verbose),
		Log:                 os.Stderr,
	}

	registers, err := compile.ParseRegisterSpec(*regSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snakec: %s\n", err)
		os.Exit(1)
	}
	cfg.Registers = registers

	stage := compile.Stage(*target)
	if stage == "ast" {
		fmt.Println(dumpProg(prog))
		return
	}

	result := compile.Compile(prog, cfg, stage)
	printResult(stage, result)
}

func reportCompileErrors(path, source string, errs []cerr.CompilerError) {
	reporter := cerr.NewErrorReporter(path, source)
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, reporter.Format(e))
	}
}

func printResult(stage compile.Stage, result *compile.Result) {
	switch stage {
	case compile.StageGraph:
		fmt.Println(printer.Graph(result.Graph))
	case compile.StageOrder:
		fmt.Println(printer.PerfectEliminationOrder(result.Order))
	case compile.StageColoring:
		fmt.Println(printer.Allocation(result.Allocation))
	default:
		fmt.Println(printer.Program(result.Program))
	}
}

// runOracle evaluates prog with interp.Interp, linking every declared
// extern to a generic print builtin: it writes its arguments (one per
// line) and echoes the last one back, a convention common enough among
// tagged toy languages that a nested `(call print ...)` can still be used
// for its value.
func runOracle(prog *ast.Prog, arg int64) {
	externs := make(map[ident.FunName]interp.Extern, len(prog.Externs))
	for _, e := range prog.Externs {
		externs[e.Name] = printExtern
	}

	it := interp.New(prog, externs)
	result, err := it.Run(interp.Int(arg))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(result.String())
}

func printExtern(args []interp.Value) interp.Value {
	var last interp.Value = interp.Int(0)
	for _, a := range args {
		fmt.Println(a.String())
		last = a
	}
	return last
}

func dumpProg(prog *ast.Prog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "externs:\n")
	for _, e := range prog.Externs {
		fmt.Fprintf(&b, "  %s/%d\n", e.Name, len(e.Params))
	}
	fmt.Fprintf(&b, "entry %s(%s):\n", prog.Entry, prog.Param)
	dumpExpr(&b, prog.Body, 1)
	return b.String()
}

func dumpExpr(b *strings.Builder, e ast.Expr, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := e.(type) {
	case *ast.Num:
		fmt.Fprintf(b, "%s%d\n", pad, n.Value)
	case *ast.Bool:
		fmt.Fprintf(b, "%s%t\n", pad, n.Value)
	case *ast.Var:
		fmt.Fprintf(b, "%s%s\n", pad, n.Name)
	case *ast.Prim:
		fmt.Fprintf(b, "%s(%s\n", pad, n.Op)
		for _, a := range n.Args {
			dumpExpr(b, a, indent+1)
		}
		fmt.Fprintf(b, "%s)\n", pad)
	case *ast.Let:
		fmt.Fprintf(b, "%slet\n", pad)
		for _, bind := range n.Bindings {
			fmt.Fprintf(b, "%s  %s =\n", pad, bind.Var)
			dumpExpr(b, bind.Expr, indent+2)
		}
		fmt.Fprintf(b, "%sin\n", pad)
		dumpExpr(b, n.Body, indent+1)
	case *ast.If:
		fmt.Fprintf(b, "%sif\n", pad)
		dumpExpr(b, n.Cond, indent+1)
		fmt.Fprintf(b, "%sthen\n", pad)
		dumpExpr(b, n.Then, indent+1)
		fmt.Fprintf(b, "%selse\n", pad)
		dumpExpr(b, n.Else, indent+1)
	case *ast.FunDefs:
		for _, d := range n.Decls {
			fmt.Fprintf(b, "%sfun %s(%s):\n", pad, d.Name, joinVars(d.Params))
			dumpExpr(b, d.Body, indent+1)
		}
		dumpExpr(b, n.Body, indent)
	case *ast.Call:
		fmt.Fprintf(b, "%scall %s\n", pad, n.Fun)
		for _, a := range n.Args {
			dumpExpr(b, a, indent+1)
		}
	default:
		color.Red("snakec: unhandled ast node %T in dump", e)
	}
}

func joinVars(vs []ident.VarName) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
