package surface

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"snakec/internal/ast"
	"snakec/internal/cerr"
	"snakec/internal/ident"
	"snakec/internal/types"
)

// pos converts participle's lexer.Position (auto-populated on every
// grammar.go struct's Pos field) into this compiler's own ast.Position,
// the shape internal/cerr and internal/ast agree on.
func pos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column}
}

// maxTagged is spec.md §7's integer literal bound: |n| > 2^62 overflows
// the tagged representation (one bit for the value, one or two for the
// tag, inside a 64-bit word).
const maxTagged = int64(1) << 62

// funcInfo is what the resolver needs to resolve a call: the callee's
// unique name and its declared arity.
type funcInfo struct {
	name  ident.FunName
	arity int
}

// resolver turns parsed Program into a resolved ast.Prog, collecting
// every compile-time error spec.md §7 names rather than stopping at the
// first one.
type resolver struct {
	varGen ident.VarGen
	funGen ident.FunGen

	funcs []map[string]funcInfo // innermost last
	vars  []map[string]ident.VarName

	errs []cerr.CompilerError
}

// Parse parses source and resolves it into an ast.Prog. A non-empty error
// slice means prog is nil or incomplete and must not be lowered.
func Parse(filename, source string) (*ast.Prog, []cerr.CompilerError) {
	raw, err := ParseString(filename, source)
	if err != nil {
		return nil, []cerr.CompilerError{{Message: err.Error()}}
	}
	return Resolve(raw)
}

// Resolve name-resolves an already-parsed Program.
func Resolve(p *Program) (*ast.Prog, []cerr.CompilerError) {
	r := &resolver{
		funcs: []map[string]funcInfo{{}},
		vars:  []map[string]ident.VarName{{}},
	}

	var externs []ast.ExtDecl
	for _, e := range p.Externs {
		if _, dup := r.funcs[0][e.Name]; dup {
			r.errs = append(r.errs, cerr.Duplicate(cerr.DuplicateFunction, "function", e.Name, pos(e.Pos)))
			continue
		}
		name := r.funGen.Unmangled(e.Name)
		r.funcs[0][e.Name] = funcInfo{name: name, arity: e.Arity}
		params := make([]ident.VarName, e.Arity)
		for i := range params {
			params[i] = r.varGen.Fresh(fmt.Sprintf("%s_arg%d", e.Name, i))
		}
		externs = append(externs, ast.ExtDecl{Name: name, Params: params})
	}

	entryName := r.funGen.Unmangled(p.Entry.Name)
	param := r.varGen.Fresh(p.Entry.Param)
	r.vars[0][p.Entry.Param] = param

	body := r.resolveExpr(p.Entry.Body)

	if len(r.errs) > 0 {
		return nil, r.errs
	}
	return &ast.Prog{Externs: externs, Entry: entryName, Param: param, Body: body}, nil
}

func (r *resolver) pushVarScope()  { r.vars = append(r.vars, map[string]ident.VarName{}) }
func (r *resolver) popVarScope()   { r.vars = r.vars[:len(r.vars)-1] }
func (r *resolver) pushFuncScope() { r.funcs = append(r.funcs, map[string]funcInfo{}) }
func (r *resolver) popFuncScope()  { r.funcs = r.funcs[:len(r.funcs)-1] }

func (r *resolver) bindVar(name string) ident.VarName {
	v := r.varGen.Fresh(name)
	r.vars[len(r.vars)-1][name] = v
	return v
}

func (r *resolver) lookupVar(name string) (ident.VarName, bool) {
	for i := len(r.vars) - 1; i >= 0; i-- {
		if v, ok := r.vars[i][name]; ok {
			return v, true
		}
	}
	return ident.VarName{}, false
}

func (r *resolver) lookupFunc(name string) (funcInfo, bool) {
	for i := len(r.funcs) - 1; i >= 0; i-- {
		if f, ok := r.funcs[i][name]; ok {
			return f, true
		}
	}
	return funcInfo{}, false
}

// resolveExpr never returns nil; on error it returns a placeholder Num(0)
// so the rest of the tree can still be walked and every error in the
// source gets reported in one pass, matching the teacher's
// accumulate-then-report error-handling style.
func (r *resolver) resolveExpr(e *Expr) ast.Expr {
	switch {
	case e.Num != nil:
		if e.Num.Value > maxTagged || e.Num.Value < -maxTagged {
			r.errs = append(r.errs, cerr.Overflow(fmt.Sprintf("%d", e.Num.Value), pos(e.Num.Pos)))
		}
		return &ast.Num{Value: e.Num.Value, Position: pos(e.Num.Pos)}
	case e.Bool != nil:
		return &ast.Bool{Value: e.Bool.Value == "true", Position: pos(e.Bool.Pos)}
	case e.Var != nil:
		v, ok := r.lookupVar(e.Var.Name)
		if !ok {
			r.errs = append(r.errs, cerr.Unbound(cerr.UnboundVariable, "variable", e.Var.Name, pos(e.Var.Pos)))
			return &ast.Num{Value: 0, Position: pos(e.Var.Pos)}
		}
		return &ast.Var{Name: v, Position: pos(e.Var.Pos)}
	case e.Prim != nil:
		return r.resolvePrim(e.Prim)
	case e.Let != nil:
		return r.resolveLet(e.Let)
	case e.If != nil:
		return &ast.If{
			Cond:     r.resolveExpr(e.If.Cond),
			Then:     r.resolveExpr(e.If.Then),
			Else:     r.resolveExpr(e.If.Else),
			Position: pos(e.If.Pos),
		}
	case e.FunDefs != nil:
		return r.resolveFunDefs(e.FunDefs)
	case e.Call != nil:
		return r.resolveCall(e.Call)
	default:
		cerr.Panicf("surface: empty Expr alternative reached resolver")
		return nil
	}
}

var primTable = map[string]struct {
	op    ast.PrimOp
	arity int
}{
	"add1":      {ast.Add1, 1},
	"sub1":      {ast.Sub1, 1},
	"+":         {ast.Add, 2},
	"-":         {ast.Sub, 2},
	"*":         {ast.Mul, 2},
	"!":         {ast.Not, 1},
	"&&":        {ast.And, 2},
	"||":        {ast.Or, 2},
	"<":         {ast.Lt, 2},
	"<=":        {ast.Le, 2},
	">":         {ast.Gt, 2},
	">=":        {ast.Ge, 2},
	"==":        {ast.Eq, 2},
	"!=":        {ast.Neq, 2},
	"istype":    {ast.IsType, 1},
	"newArray":  {ast.NewArray, 1},
	"makeArray": {ast.MakeArray, -1}, // variable arity
	"arrayGet":  {ast.ArrayGet, 2},
	"arraySet":  {ast.ArraySet, 3},
	"length":    {ast.Length, 1},
}

func (r *resolver) resolvePrim(p *PrimExpr) ast.Expr {
	entry, ok := primTable[p.Op]
	if !ok {
		r.errs = append(r.errs, cerr.Unbound(cerr.UnboundFunction, "primitive operator", p.Op, pos(p.Pos)))
		return &ast.Num{Value: 0, Position: pos(p.Pos)}
	}
	if entry.arity >= 0 && len(p.Args) != entry.arity {
		r.errs = append(r.errs, cerr.Arity(p.Op, entry.arity, len(p.Args), pos(p.Pos)))
	}
	args := make([]ast.Expr, len(p.Args))
	for i, a := range p.Args {
		args[i] = r.resolveExpr(a)
	}
	target := types.Int
	if p.TypeArg != nil {
		target = parseType(*p.TypeArg)
	}
	return &ast.Prim{Op: entry.op, Args: args, IsTypeTarget: target, Position: pos(p.Pos)}
}

func parseType(s string) types.Type {
	switch s {
	case "Bool":
		return types.Bool
	case "Array":
		return types.Array
	default:
		return types.Int
	}
}

func (r *resolver) resolveLet(l *LetExpr) ast.Expr {
	r.pushVarScope()
	defer r.popVarScope()

	seen := make(map[string]bool, len(l.Bindings))
	bindings := make([]ast.Binding, len(l.Bindings))
	for i, b := range l.Bindings {
		if seen[b.Name] {
			r.errs = append(r.errs, cerr.Duplicate(cerr.DuplicateVariable, "variable", b.Name, pos(b.Pos)))
		}
		seen[b.Name] = true
		val := r.resolveExpr(b.Expr)
		v := r.bindVar(b.Name)
		bindings[i] = ast.Binding{Var: v, Expr: val}
	}
	return &ast.Let{Bindings: bindings, Body: r.resolveExpr(l.Body), Position: pos(l.Pos)}
}

func (r *resolver) resolveFunDefs(f *FunDefsExpr) ast.Expr {
	r.pushFuncScope()
	defer r.popFuncScope()

	seen := make(map[string]bool, len(f.Decls))
	names := make([]ident.FunName, len(f.Decls))
	for i, d := range f.Decls {
		if seen[d.Name] {
			r.errs = append(r.errs, cerr.Duplicate(cerr.DuplicateFunction, "function", d.Name, pos(d.Pos)))
		}
		seen[d.Name] = true
		name := r.funGen.Fresh(d.Name)
		names[i] = name
		r.funcs[len(r.funcs)-1][d.Name] = funcInfo{name: name, arity: len(d.Params)}
	}

	decls := make([]ast.FunDecl, len(f.Decls))
	for i, d := range f.Decls {
		r.pushVarScope()
		seenParam := make(map[string]bool, len(d.Params))
		params := make([]ident.VarName, len(d.Params))
		for j, pname := range d.Params {
			if seenParam[pname] {
				r.errs = append(r.errs, cerr.Duplicate(cerr.DuplicateParameter, "parameter", pname, pos(d.Pos)))
			}
			seenParam[pname] = true
			params[j] = r.bindVar(pname)
		}
		body := r.resolveExpr(d.Body)
		r.popVarScope()
		decls[i] = ast.FunDecl{Name: names[i], Params: params, Body: body, Position: pos(d.Pos)}
	}

	return &ast.FunDefs{Decls: decls, Body: r.resolveExpr(f.Body), Position: pos(f.Pos)}
}

func (r *resolver) resolveCall(c *CallExpr) ast.Expr {
	fn, ok := r.lookupFunc(c.Fun)
	if !ok {
		r.errs = append(r.errs, cerr.Unbound(cerr.UnboundFunction, "function", c.Fun, pos(c.Pos)))
		return &ast.Num{Value: 0, Position: pos(c.Pos)}
	}
	if len(c.Args) != fn.arity {
		r.errs = append(r.errs, cerr.Arity(c.Fun, fn.arity, len(c.Args), pos(c.Pos)))
	}
	args := make([]ast.Expr, len(c.Args))
	for i, a := range c.Args {
		args[i] = r.resolveExpr(a)
	}
	return &ast.Call{Fun: fn.name, Args: args, Position: pos(c.Pos)}
}
