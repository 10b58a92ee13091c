// Package simplify turns a resolved ast.Chunk into a lang/typedast.Program:
// it type-checks the program (lang/typecheck supplies the unification
// machinery) and, since the surface grammar only ever admits shallow,
// one-level patterns (spec.md §1 takes deeper pattern-match compilation as
// an external, out-of-scope concern), compiles each value declaration's
// clauses directly into the shallow case trees lang/stg's input requires —
// no nested-pattern matrix compiler is needed.
package simplify

import (
	"fmt"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/typecheck"
	"github.com/mna/thistle/lang/typedast"
)

// localVar is one entry of the elaborator's lexical scope stack: its type
// (for unification) and the value-level name later Name nodes should
// reference. Ref differs from the source name only when a clause
// parameter pattern is a bare variable aliasing a synthetic "$argN" name
// (see matchParams), which needs no indirection at the typedast level.
type localVar struct {
	Typ typecheck.Type
	Ref string
}

type ctorInfo struct {
	tag        int
	dataName   string
	fieldTypes []typecheck.Type
	funcType   typecheck.Type // field1 -> field2 -> ... -> TData{dataName}, or TData{dataName} if arity 0
}

type elaborator struct {
	info *resolver.Info

	fresh       int
	constraints []typecheck.Constraint

	ctors map[string]ctorInfo

	globalTypes map[string]typecheck.Type
	scopes      []map[string]localVar
}

func (el *elaborator) newVar() *typecheck.TVar {
	el.fresh++
	return &typecheck.TVar{Name: fmt.Sprintf("s%d", el.fresh)}
}

func (el *elaborator) newArgName() string {
	el.fresh++
	return fmt.Sprintf("$arg%d", el.fresh)
}

func (el *elaborator) equate(a, b typecheck.Type) {
	el.constraints = append(el.constraints, typecheck.Constraint{Kind: typecheck.CEqual, A: a, B: b})
}

func (el *elaborator) push(scope map[string]localVar) { el.scopes = append(el.scopes, scope) }
func (el *elaborator) pop()                           { el.scopes = el.scopes[:len(el.scopes)-1] }

func (el *elaborator) lookupLocal(name string) (localVar, bool) {
	for i := len(el.scopes) - 1; i >= 0; i-- {
		if lv, ok := el.scopes[i][name]; ok {
			return lv, true
		}
	}
	return localVar{}, false
}

// Simplify type-checks chunk (already name-resolved by lang/resolver) and
// elaborates it into the simplified AST lang/stg consumes.
func Simplify(chunk *ast.Chunk, info *resolver.Info) (*typedast.Program, error) {
	el := &elaborator{
		info:        info,
		ctors:       make(map[string]ctorInfo),
		globalTypes: make(map[string]typecheck.Type),
	}

	for _, d := range chunk.Decls {
		if dd, ok := d.(*ast.DataDecl); ok {
			el.declareData(dd)
		}
	}

	var valueDecls []*ast.ValueDecl
	for _, d := range chunk.Decls {
		if vd, ok := d.(*ast.ValueDecl); ok {
			valueDecls = append(valueDecls, vd)
			el.globalTypes[vd.Name] = el.stubType(vd.Arity())
		}
	}

	defs := make([]*typedast.Def, len(valueDecls))
	for i, vd := range valueDecls {
		defs[i] = el.globalDef(vd)
	}

	subst, err := typecheck.Solve(el.constraints, typecheck.NewSubst())
	if err != nil {
		return nil, fmt.Errorf("type error: %w", err)
	}

	prog := &typedast.Program{Ctors: make(map[string]typedast.CtorInfo, len(el.ctors))}
	for name, ci := range el.ctors {
		prog.Ctors[name] = typedast.CtorInfo{
			Tag:    ci.tag,
			Arity:  len(ci.fieldTypes),
			Scheme: &typecheck.Scheme{Type: subst.Apply(ci.funcType)},
		}
	}
	for _, d := range defs {
		zonkDef(d, subst)
		prog.Defs = append(prog.Defs, d)
	}
	return prog, nil
}

// stubType returns a fresh, fully unapplied function type of the given
// arity, used as a global's placeholder type while its own body (which may
// reference the global itself, or a sibling that references it back) is
// still being elaborated.
func (el *elaborator) stubType(arity int) typecheck.Type {
	if arity == 0 {
		return el.newVar()
	}
	params := make([]typecheck.Type, arity)
	for i := range params {
		params[i] = el.newVar()
	}
	return chainFun(params, el.newVar())
}

func chainFun(params []typecheck.Type, result typecheck.Type) typecheck.Type {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = &typecheck.TFun{Param: params[i], Result: t}
	}
	return t
}

// uncurry splits a chain of TFun into its parameter types and final result,
// assuming stubType's construction (never partially applied at this
// layer).
func uncurry(t typecheck.Type, arity int) (params []typecheck.Type, result typecheck.Type) {
	for i := 0; i < arity; i++ {
		fn, ok := t.(*typecheck.TFun)
		if !ok {
			panic("uncurry: arity exceeds stub's function chain")
		}
		params = append(params, fn.Param)
		t = fn.Result
	}
	return params, t
}

func (el *elaborator) declareData(dd *ast.DataDecl) {
	for tag, c := range dd.Ctors {
		fieldTypes := make([]typecheck.Type, len(c.Fields))
		for i, f := range c.Fields {
			fieldTypes[i] = el.resolveTypeName(f)
		}
		dataType := &typecheck.TData{Name: dd.Name}
		el.ctors[c.Name] = ctorInfo{
			tag:        tag,
			dataName:   dd.Name,
			fieldTypes: fieldTypes,
			funcType:   chainFun(fieldTypes, dataType),
		}
	}
}

func (el *elaborator) resolveTypeName(name string) typecheck.Type {
	switch name {
	case "Int":
		return typecheck.TInt
	case "String":
		return typecheck.TString
	case "Bool":
		return typecheck.TBool
	default:
		return &typecheck.TData{Name: name}
	}
}

// globalDef elaborates one top-level value declaration into a Def.
func (el *elaborator) globalDef(vd *ast.ValueDecl) *typedast.Def {
	return el.defFromClauses(vd, el.globalTypes[vd.Name])
}

// defFromClauses elaborates a (top-level or let-bound) value declaration's
// clauses into a Def, given the fresh stub type already registered for its
// name (by the caller, before elaborating any of the group it belongs to,
// so mutual and self-recursive references resolve correctly). Its Params
// are freshly named (never the user's own clause-parameter names, since
// those differ per clause) and its Body is the compiled shallow case tree
// over those names.
func (el *elaborator) defFromClauses(vd *ast.ValueDecl, stub typecheck.Type) *typedast.Def {
	arity := vd.Arity()
	if arity == 0 {
		// A zero-arity value declaration (e.g. "ones = C 1 ones") has exactly
		// one clause and no parameters to match; its body is elaborated
		// directly in the current scope.
		body := el.expr(vd.Clauses[0].Body)
		el.equate(stub, body.Type())
		return &typedast.Def{Name: vd.Name, Type: stub, Body: body}
	}

	params, result := uncurry(stub, arity)
	argNames := make([]string, arity)
	for i := range argNames {
		argNames[i] = el.newArgName()
	}
	body := el.compileClauses(argNames, params, vd.Clauses, 0, result)
	return &typedast.Def{Name: vd.Name, Type: stub, Params: argNames, Body: body}
}
