// Package interp is the AST-level tree-walking interpreter spec.md's
// round-trip oracle needs (`interp_ast(P, args)` in §8's testable
// properties): a reference evaluator over the resolved ast.Prog, used to
// check scenarios 1, 3, 5, and 6. It evaluates the AST only, so it does
// not by itself check the SSA that copy propagation, assertion removal,
// and DCE produce.
//
// Grounded on original_source's own AST interpreter (the reference
// semantics lowering is checked against) and restyled in the teacher's
// plain recursive-eval idiom (internal/semantic's own tree-walking
// analyzer passes) rather than anything SSA-specific — this package never
// touches package ssa.
package interp

import (
	"fmt"

	"snakec/internal/ast"
	"snakec/internal/cerr"
	"snakec/internal/ident"
)

// Value is a runtime value: an Int, a Bool, or an Array. Unlike the
// compiled representation, values here are native Go values, not
// tag-encoded words — this interpreter is the specification of meaning,
// not of representation.
type Value interface {
	isValue()
	String() string
}

// Int is a 64-bit signed integer, bound to spec.md §7's |n| <= 2^62.
type Int int64

func (Int) isValue()        {}
func (v Int) String() string { return fmt.Sprintf("%d", int64(v)) }

// Bool is a boolean.
type Bool bool

func (Bool) isValue() {}
func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Array is a heap-allocated, mutable, fixed-length sequence of values —
// represented as a Go pointer so that ArraySet mutations (including a
// self-reference, scenario 6) are visible through every other reference.
type Array struct{ Elems []Value }

func (*Array) isValue() {}
func (a *Array) String() string {
	return arrayString(a, make(map[*Array]bool))
}

func arrayString(a *Array, seen map[*Array]bool) string {
	if seen[a] {
		return "<loop>"
	}
	seen[a] = true
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		if inner, ok := e.(*Array); ok {
			parts[i] = arrayString(inner, seen)
		} else {
			parts[i] = e.String()
		}
	}
	delete(seen, a)
	out := "["
	for i, s := range parts {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out + "]"
}

const maxTagged = int64(1) << 62

// RuntimeError mirrors a snake_error call: a fixed code plus the
// offending value, matching cerr's runtime error code table.
type RuntimeError struct {
	Code  int
	Value int64
}

func (e RuntimeError) Error() string { return cerr.RuntimeMessage(e.Code, e.Value) }

// Extern is a host implementation of an extern procedure.
type Extern func(args []Value) Value

// Interp evaluates a single resolved program against a fixed extern
// table.
type Interp struct {
	prog    *ast.Prog
	externs map[ident.FunName]Extern
}

// New creates an Interp for prog, with host implementations for its
// externs (by name — missing entries panic with cerr.Bug, an internal
// invariant violation: every extern the program declares must be
// supplied).
func New(prog *ast.Prog, externs map[ident.FunName]Extern) *Interp {
	return &Interp{prog: prog, externs: externs}
}

type scope struct {
	vars   map[ident.VarName]Value
	funcs  map[ident.FunName]*ast.FunDecl
	parent *scope
}

func (s *scope) lookupVar(name ident.VarName) Value {
	for e := s; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v
		}
	}
	cerr.Panicf("interp: unbound variable %s reached evaluation", name)
	return nil
}

func (s *scope) lookupFunc(name ident.FunName) *ast.FunDecl {
	for e := s; e != nil; e = e.parent {
		if d, ok := e.funcs[name]; ok {
			return d
		}
	}
	cerr.Panicf("interp: unbound function %s reached evaluation", name)
	return nil
}

func (s *scope) withVar(name ident.VarName, v Value) *scope {
	return &scope{vars: map[ident.VarName]Value{name: v}, parent: s}
}

func (s *scope) withFuncs(decls []ast.FunDecl) *scope {
	fns := make(map[ident.FunName]*ast.FunDecl, len(decls))
	for i := range decls {
		fns[decls[i].Name] = &decls[i]
	}
	return &scope{funcs: fns, parent: s}
}

// Run evaluates the program's entry function applied to arg, recovering
// any RuntimeError raised by an assertion-equivalent check.
func (it *Interp) Run(arg Value) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(RuntimeError); ok {
				err = re
				return
			}
			panic(r)
		}
	}()
	env := (&scope{}).withVar(it.prog.Param, arg)
	return it.eval(it.prog.Body, env), nil
}

func (it *Interp) eval(e ast.Expr, env *scope) Value {
	switch n := e.(type) {
	case *ast.Num:
		return Int(n.Value)
	case *ast.Bool:
		return Bool(n.Value)
	case *ast.Var:
		return env.lookupVar(n.Name)
	case *ast.Prim:
		return it.evalPrim(n, env)
	case *ast.Let:
		cur := env
		for _, b := range n.Bindings {
			cur = cur.withVar(b.Var, it.eval(b.Expr, cur))
		}
		return it.eval(n.Body, cur)
	case *ast.If:
		if bool(it.asBool(it.eval(n.Cond, env))) {
			return it.eval(n.Then, env)
		}
		return it.eval(n.Else, env)
	case *ast.FunDefs:
		return it.eval(n.Body, env.withFuncs(n.Decls))
	case *ast.Call:
		return it.evalCall(n, env)
	default:
		cerr.Panicf("interp: unhandled expr kind %T", e)
		return nil
	}
}

func (it *Interp) evalCall(n *ast.Call, env *scope) Value {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = it.eval(a, env)
	}
	if ext, ok := it.externs[n.Fun]; ok {
		return ext(args)
	}
	decl := env.lookupFunc(n.Fun)
	callEnv := env
	for i, p := range decl.Params {
		callEnv = callEnv.withVar(p, args[i])
	}
	return it.eval(decl.Body, callEnv)
}

func (it *Interp) asInt(v Value) Int {
	i, ok := v.(Int)
	if !ok {
		panic(RuntimeError{Code: cerr.RuntimeTypeAssertion})
	}
	return i
}

func (it *Interp) asBool(v Value) Bool {
	b, ok := v.(Bool)
	if !ok {
		panic(RuntimeError{Code: cerr.RuntimeTypeAssertion})
	}
	return b
}

func (it *Interp) asArray(v Value) *Array {
	a, ok := v.(*Array)
	if !ok {
		panic(RuntimeError{Code: cerr.RuntimeTypeAssertion})
	}
	return a
}

func (it *Interp) checkOverflow(n int64) Int {
	if n > maxTagged || n < -maxTagged {
		panic(RuntimeError{Code: cerr.RuntimeArithmeticOverflow})
	}
	return Int(n)
}

func (it *Interp) evalPrim(n *ast.Prim, env *scope) Value {
	vals := make([]Value, len(n.Args))
	for i, a := range n.Args {
		vals[i] = it.eval(a, env)
	}
	switch n.Op {
	case ast.Add1:
		return it.checkOverflow(int64(it.asInt(vals[0])) + 1)
	case ast.Sub1:
		return it.checkOverflow(int64(it.asInt(vals[0])) - 1)
	case ast.Add:
		return it.checkOverflow(int64(it.asInt(vals[0])) + int64(it.asInt(vals[1])))
	case ast.Sub:
		return it.checkOverflow(int64(it.asInt(vals[0])) - int64(it.asInt(vals[1])))
	case ast.Mul:
		return it.checkOverflow(int64(it.asInt(vals[0])) * int64(it.asInt(vals[1])))
	case ast.Not:
		return Bool(!it.asBool(vals[0]))
	case ast.And:
		return Bool(bool(it.asBool(vals[0])) && bool(it.asBool(vals[1])))
	case ast.Or:
		return Bool(bool(it.asBool(vals[0])) || bool(it.asBool(vals[1])))
	case ast.Lt:
		return Bool(it.asInt(vals[0]) < it.asInt(vals[1]))
	case ast.Le:
		return Bool(it.asInt(vals[0]) <= it.asInt(vals[1]))
	case ast.Gt:
		return Bool(it.asInt(vals[0]) > it.asInt(vals[1]))
	case ast.Ge:
		return Bool(it.asInt(vals[0]) >= it.asInt(vals[1]))
	case ast.Eq:
		return Bool(valueEqual(vals[0], vals[1]))
	case ast.Neq:
		return Bool(!valueEqual(vals[0], vals[1]))
	case ast.IsType:
		return Bool(hasType(vals[0], n.IsTypeTarget))
	case ast.NewArray:
		length := int64(it.asInt(vals[0]))
		if length < 0 {
			panic(RuntimeError{Code: cerr.RuntimeNegativeLength, Value: length})
		}
		elems := make([]Value, length)
		for i := range elems {
			elems[i] = Int(0)
		}
		return &Array{Elems: elems}
	case ast.MakeArray:
		elems := make([]Value, len(vals))
		copy(elems, vals)
		return &Array{Elems: elems}
	case ast.ArrayGet:
		arr := it.asArray(vals[0])
		idx := int64(it.asInt(vals[1]))
		if idx < 0 || idx >= int64(len(arr.Elems)) {
			panic(RuntimeError{Code: cerr.RuntimeIndexOutOfBounds, Value: idx})
		}
		return arr.Elems[idx]
	case ast.ArraySet:
		arr := it.asArray(vals[0])
		idx := int64(it.asInt(vals[1]))
		if idx < 0 || idx >= int64(len(arr.Elems)) {
			panic(RuntimeError{Code: cerr.RuntimeIndexOutOfBounds, Value: idx})
		}
		arr.Elems[idx] = vals[2]
		return vals[2]
	case ast.Length:
		return Int(len(it.asArray(vals[0]).Elems))
	default:
		cerr.Panicf("interp: unhandled primitive op %s", n.Op)
		return nil
	}
}

func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case *Array:
		bv, ok := b.(*Array)
		return ok && av == bv
	default:
		return false
	}
}

func hasType(v Value, target interface{ String() string }) bool {
	switch v.(type) {
	case Int:
		return target.String() == "Int"
	case Bool:
		return target.String() == "Bool"
	case *Array:
		return target.String() == "Array"
	default:
		return false
	}
}
