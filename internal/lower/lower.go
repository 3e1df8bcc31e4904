// Package lower implements spec.md §4.1: continuation-passing lowering of
// a resolved AST (package ast) to an SSA program (package ssa), including
// lambda lifting and tag-discipline insertion.
package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ident"
	"snakec/internal/ssa"
	"snakec/internal/types"
)

// Built-in extern names injected by lowering (spec.md §6, "Built-in
// externs introduced by lowering").
const (
	SnakeErrorName    = "snake_error"
	SnakeNewArrayName = "snake_new_array"
)

// Runtime error codes passed to snake_error (spec.md §6/§7).
const (
	ErrArithOverflow = iota
	ErrExpectedNum
	ErrExpectedBool
	ErrExpectedArray
	ErrNegativeLength
	ErrIndexOutOfBounds
)

type funKind int

const (
	kindLifted funKind = iota
	kindLocal
)

type funInfo struct {
	kind    funKind
	label   ident.BlockName
	ambient []ident.VarName // original (unsubstituted) ambient vars, lifted only
}

// Lowerer holds the identifier generators and per-function bookkeeping
// that must be threaded from lowering into every subsequent pass so that
// fresh names never collide (spec.md §5, "shared mutable state").
type Lowerer struct {
	vars   ident.VarGen
	blocks ident.BlockGen
	funs   ident.FunGen

	prog    *ssa.Program
	lift    map[ident.FunName]bool
	externs map[ident.FunName]bool
	info    map[ident.FunName]*funInfo

	snakeError    ident.FunName
	snakeNewArray ident.FunName
}

// New creates a Lowerer with fresh identifier generators.
func New() *Lowerer {
	return &Lowerer{
		prog:    &ssa.Program{Blocks: make(map[ident.BlockName]*ssa.BasicBlock)},
		lift:    make(map[ident.FunName]bool),
		externs: make(map[ident.FunName]bool),
		info:    make(map[ident.FunName]*funInfo),
	}
}

// Lower compiles a whole resolved program into an SSA program.
func Lower(prog *ast.Prog) *ssa.Program {
	l := New()
	return l.LowerProg(prog)
}

// LowerProg is the entry point mirroring original_source's Lowerer::lower_prog:
// it registers the two built-in externs, computes the lift set over the
// whole call graph, builds the entry function's shell, and lowers its body.
func (l *Lowerer) LowerProg(prog *ast.Prog) *ssa.Program {
	errCode := l.vars.Fresh("code")
	errVal := l.vars.Fresh("value")
	snakeError := l.funs.Unmangled(SnakeErrorName)
	l.prog.Externs = append(l.prog.Externs, ssa.Extern{Name: snakeError, Params: []ident.VarName{errCode, errVal}})
	l.externs[snakeError] = true
	l.snakeError = snakeError

	arrLen := l.vars.Fresh("len")
	snakeNewArray := l.funs.Unmangled(SnakeNewArrayName)
	l.prog.Externs = append(l.prog.Externs, ssa.Extern{Name: snakeNewArray, Params: []ident.VarName{arrLen}})
	l.externs[snakeNewArray] = true
	l.snakeNewArray = snakeNewArray

	for _, ext := range prog.Externs {
		l.externs[ext.Name] = true
		l.prog.Externs = append(l.prog.Externs, ssa.Extern{Name: ext.Name, Params: ext.Params})
	}

	l.lift = computeLiftSet(prog)

	entryLabel := l.blocks.Fresh("entry")
	env := newEnv().Bind(prog.Param)
	tail := l.lowerExpr(prog.Body, Return(), env)
	l.prog.AddBlock(&ssa.BasicBlock{Label: entryLabel, Params: []ident.VarName{prog.Param}, Body: tail.Nodes, Terminator: tail.Term})
	l.prog.Functions = append(l.prog.Functions, &ssa.Function{Name: prog.Entry, Params: []ident.VarName{prog.Param}, Entry: entryLabel})

	return l.prog
}

// lowerExpr is the CPS lowering judgment: translate e under continuation k
// and lexical environment env, producing the residual block tail.
func (l *Lowerer) lowerExpr(e ast.Expr, k Cont, env Env) Tail {
	switch n := e.(type) {
	case *ast.Num:
		return k.Invoke(ssa.Const(n.Value << 1))

	case *ast.Bool:
		if n.Value {
			return k.Invoke(ssa.Const(0b101))
		}
		return k.Invoke(ssa.Const(0b001))

	case *ast.Var:
		return k.Invoke(ssa.VarRef{Name: env.Resolve(n.Name)})

	case *ast.Prim:
		return l.lowerPrim(n, k, env)

	case *ast.Let:
		return l.lowerLet(n.Bindings, n.Body, k, env)

	case *ast.If:
		return l.lowerIf(n, k, env)

	case *ast.FunDefs:
		return l.lowerFunDefs(n, k, env)

	case *ast.Call:
		return l.lowerCall(n, k, env)

	default:
		panic("lower: unhandled expr kind")
	}
}

// lowerArgs lowers args left-to-right, each binding a fresh variable, and
// hands the bound Immediates to build once every argument has a value —
// this is how the emitted SSA ends up evaluating arguments in source
// order (spec.md §4.1).
func (l *Lowerer) lowerArgs(args []ast.Expr, env Env, build func(vals []ssa.Immediate) Tail) Tail {
	vals := make([]ssa.Immediate, len(args))
	var step func(i int) Tail
	step = func(i int) Tail {
		if i == len(args) {
			return build(vals)
		}
		v := l.vars.Fresh("arg")
		return l.lowerExpr(args[i], BlockCont(v, func() Tail {
			vals[i] = ssa.VarRef{Name: v}
			return step(i + 1)
		}), env)
	}
	return step(0)
}

func (l *Lowerer) lowerLet(bindings []ast.Binding, body ast.Expr, k Cont, env Env) Tail {
	if len(bindings) == 0 {
		return l.lowerExpr(body, k, env)
	}
	first := bindings[0]
	return l.lowerExpr(first.Expr, BlockCont(first.Var, func() Tail {
		return l.lowerLet(bindings[1:], body, k, env.Bind(first.Var))
	}), env)
}
