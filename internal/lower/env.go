package lower

import "snakec/internal/ident"

// Env is the lowerer's lexical context at one point in the resolved-AST
// walk: the ordered set of variables currently in scope (used to compute a
// nested FunDefs's ambient-live set) and the substitution applied to every
// Var leaf before it is emitted (used so that a lifted function's body
// refers to its own freshly-minted ambient parameters instead of the
// original outer variables it closed over).
type Env struct {
	scope  []ident.VarName
	subst  map[ident.VarName]ident.VarName
}

func newEnv() Env { return Env{} }

// Resolve maps v through the current substitution, or returns v unchanged
// if it is not captured.
func (e Env) Resolve(v ident.VarName) ident.VarName {
	if r, ok := e.subst[v]; ok {
		return r
	}
	return v
}

// Bind extends scope with a newly-bound variable (a let-binding, a
// function parameter, ...).
func (e Env) Bind(v ident.VarName) Env {
	scope := make([]ident.VarName, len(e.scope), len(e.scope)+1)
	copy(scope, e.scope)
	scope = append(scope, v)
	return Env{scope: scope, subst: e.subst}
}

// BindAll extends scope with several variables at once, in order.
func (e Env) BindAll(vs []ident.VarName) Env {
	out := e
	for _, v := range vs {
		out = out.Bind(v)
	}
	return out
}

// Scope returns the variables currently in lexical scope, in binding order.
// This is what a nested FunDefs captures as its ambient-live set.
func (e Env) Scope() []ident.VarName {
	return append([]ident.VarName{}, e.scope...)
}

// EnterLifted starts a lifted function's body: a fresh scope consisting
// only of the fresh ambient parameters and the function's own formal
// parameters, with a substitution so that every reference to an original
// ambient variable in the body resolves to its fresh ambient parameter.
func (e Env) EnterLifted(renames map[ident.VarName]ident.VarName, freshAmbient, params []ident.VarName) Env {
	merged := make(map[ident.VarName]ident.VarName, len(e.subst)+len(renames))
	for k, v := range e.subst {
		merged[k] = v
	}
	for k, v := range renames {
		merged[k] = v
	}
	scope := append(append([]ident.VarName{}, freshAmbient...), params...)
	return Env{scope: scope, subst: merged}
}
