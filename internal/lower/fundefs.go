package lower

import (
	"snakec/internal/ast"
	"snakec/internal/ident"
	"snakec/internal/ssa"
)

// lowerFunDefs lowers a group of mutually recursive local function
// declarations (spec.md §4.1 "FunDefs"). Every declared function is given
// a fresh block label and has its ambient (lexically-in-scope) variable
// set recorded up front, before any body is lowered — lambda lifting is a
// whole-call-graph decision and must already be known (computeLiftSet in
// lifter.go);
// here we only act on it per declaration.
func (l *Lowerer) lowerFunDefs(n *ast.FunDefs, k Cont, env Env) Tail {
	ambientScope := env.Scope()
	for _, d := range n.Decls {
		label := l.blocks.Fresh(d.Name.Hint())
		kind := kindLocal
		if l.lift[d.Name] {
			kind = kindLifted
		}
		l.info[d.Name] = &funInfo{kind: kind, label: label, ambient: ambientScope}
	}

	bodyTail := l.lowerExpr(n.Body, k, env)

	var localBlocks []*ssa.BasicBlock
	for _, d := range n.Decls {
		info := l.info[d.Name]
		if info.kind == kindLifted {
			l.lowerLiftedFun(d, info, env)
			continue
		}
		localEnv := env.BindAll(d.Params)
		tail := l.lowerExpr(d.Body, Return(), localEnv)
		block := &ssa.BasicBlock{Label: info.label, Params: d.Params, Body: tail.Nodes, Terminator: tail.Term}
		l.prog.AddBlock(block)
		localBlocks = append(localBlocks, block)
	}

	if len(localBlocks) == 0 {
		return bodyTail
	}
	return bodyTail.prepend(ssa.SubBlocks{Blocks: localBlocks})
}

// lowerLiftedFun compiles a lifted local function into a standalone
// top-level FunBlock (an ssa.Function shell) plus its entry block, whose
// parameter list is the fresh ambient parameters followed by the
// function's own formal parameters (spec.md §4.1 "Lambda lifting").
func (l *Lowerer) lowerLiftedFun(d ast.FunDecl, info *funInfo, env Env) {
	renames := make(map[ident.VarName]ident.VarName, len(info.ambient))
	freshAmbient := make([]ident.VarName, len(info.ambient))
	for i, v := range info.ambient {
		fresh := l.vars.Fresh("@" + v.Hint())
		renames[v] = fresh
		freshAmbient[i] = fresh
	}

	bodyEnv := env.EnterLifted(renames, freshAmbient, d.Params)
	tail := l.lowerExpr(d.Body, Return(), bodyEnv)

	params := append(append([]ident.VarName{}, freshAmbient...), d.Params...)
	block := &ssa.BasicBlock{Label: info.label, Params: params, Body: tail.Nodes, Terminator: tail.Term}
	l.prog.AddBlock(block)
	l.prog.Functions = append(l.prog.Functions, &ssa.Function{Name: d.Name, Params: params, Entry: info.label})
}
