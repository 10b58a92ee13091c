package simplify

import (
	"fmt"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/typecheck"
	"github.com/mna/thistle/lang/typedast"
)

func (el *elaborator) expr(e ast.Expr) typedast.Expr {
	switch e := e.(type) {
	case *ast.IntLit:
		return &typedast.IntLit{Value: e.Value}

	case *ast.StringLit:
		return &typedast.StringLit{Value: e.Value}

	case *ast.BoolLit:
		return &typedast.BoolLit{Value: e.Value}

	case *ast.Ident:
		return el.ident(e)

	case *ast.CtorRef:
		return el.ctorApp(e.Name, nil)

	case *ast.App:
		return el.app(e)

	case *ast.BinOp:
		x, y := el.expr(e.X), el.expr(e.Y)
		name := opName(e.Op)
		args, result := builtinSig(name)
		el.equate(args[0], x.Type())
		el.equate(args[1], y.Type())
		return &typedast.Builtin{Op: name, Args: []typedast.Expr{x, y}, Typ: result}

	case *ast.UnOp:
		x := el.expr(e.X)
		args, result := builtinSig("Negate")
		el.equate(args[0], x.Type())
		return &typedast.Builtin{Op: "Negate", Args: []typedast.Expr{x}, Typ: result}

	case *ast.Lambda:
		return el.lambda(e)

	case *ast.Let:
		return el.let(e)

	case *ast.CaseExpr:
		return el.caseExpr(e)

	default:
		panic(fmt.Sprintf("simplify: unexpected expr %T", e))
	}
}

func (el *elaborator) ident(e *ast.Ident) typedast.Expr {
	if lv, ok := el.lookupLocal(e.Name); ok {
		return &typedast.Name{Ident: lv.Ref, Typ: lv.Typ}
	}

	bdg := el.info.Idents[e]
	switch bdg.Scope {
	case resolver.Global:
		return &typedast.Name{Ident: e.Name, Typ: el.globalTypes[e.Name]}
	case resolver.Constructor:
		return el.ctorApp(e.Name, nil)
	case resolver.Builtin:
		name := surfaceBuiltinName(e.Name)
		_, result := builtinSig(name)
		// A bare reference to a builtin (not yet applied) is given the
		// builtin's result type directly; el.app rewrites the common
		// "builtin applied to its arguments" case before this ever matters.
		return &typedast.Name{Ident: e.Name, Typ: result}
	default:
		return &typedast.Name{Ident: e.Name, Typ: el.newVar()}
	}
}

// ctorApp builds a saturated CtorApp node, unifying each argument against
// the constructor's declared field types.
func (el *elaborator) ctorApp(name string, args []ast.Expr) typedast.Expr {
	ci, ok := el.ctors[name]
	if !ok {
		ci = ctorInfo{dataName: name}
	}
	typedArgs := make([]typedast.Expr, len(args))
	for i, a := range args {
		typedArgs[i] = el.expr(a)
		if i < len(ci.fieldTypes) {
			el.equate(ci.fieldTypes[i], typedArgs[i].Type())
		}
	}
	return &typedast.CtorApp{Ctor: name, Tag: ci.tag, Args: typedArgs, Typ: &typecheck.TData{Name: ci.dataName}}
}

// app elaborates App{Fn, Args}. A constructor or builtin in function
// position is recognized here so it lowers directly to CtorApp/Builtin
// rather than a chain of single-argument App nodes (lang/stg's own
// GatherApplications does the equivalent flattening for the general case,
// but these two callees are never partially applied in well-typed source,
// so simplify resolves them eagerly).
func (el *elaborator) app(e *ast.App) typedast.Expr {
	if ctorRef, ok := e.Fn.(*ast.CtorRef); ok {
		return el.ctorApp(ctorRef.Name, e.Args)
	}
	if ident, ok := e.Fn.(*ast.Ident); ok {
		if _, isLocal := el.lookupLocal(ident.Name); !isLocal {
			if bdg := el.info.Idents[ident]; bdg.Scope == resolver.Constructor {
				return el.ctorApp(ident.Name, e.Args)
			} else if bdg.Scope == resolver.Builtin {
				name := surfaceBuiltinName(ident.Name)
				args, result := builtinSig(name)
				typedArgs := make([]typedast.Expr, len(e.Args))
				for i, a := range e.Args {
					typedArgs[i] = el.expr(a)
					if i < len(args) {
						el.equate(args[i], typedArgs[i].Type())
					}
				}
				return &typedast.Builtin{Op: name, Args: typedArgs, Typ: result}
			}
		}
	}

	fn := el.expr(e.Fn)
	args := make([]typedast.Expr, len(e.Args))
	resT := el.newVar()
	fnT := resT
	for i := len(e.Args) - 1; i >= 0; i-- {
		args[i] = el.expr(e.Args[i])
		fnT = &typecheck.TFun{Param: args[i].Type(), Result: fnT}
	}
	el.equate(fn.Type(), fnT)
	return &typedast.App{Fn: fn, Args: args, Typ: resT}
}

func (el *elaborator) lambda(e *ast.Lambda) typedast.Expr {
	params := make([]typecheck.Type, len(e.Params))
	scope := make(map[string]localVar, len(e.Params))
	for i, p := range e.Params {
		params[i] = el.newVar()
		scope[p] = localVar{Typ: params[i], Ref: p}
	}
	el.push(scope)
	body := el.expr(e.Body)
	el.pop()
	return &typedast.Lambda{Params: e.Params, Body: body, Typ: chainFun(params, body.Type())}
}

func (el *elaborator) let(e *ast.Let) typedast.Expr {
	scope := make(map[string]localVar, len(e.Binds))
	for _, vd := range e.Binds {
		scope[vd.Name] = localVar{Typ: el.stubType(vd.Arity()), Ref: vd.Name}
	}
	el.push(scope)

	defs := make([]*typedast.Def, len(e.Binds))
	for i, vd := range e.Binds {
		defs[i] = el.defFromClauses(vd, scope[vd.Name].Typ)
	}
	body := el.expr(e.Body)
	el.pop()

	return &typedast.Let{Binds: defs, Body: body}
}

func (el *elaborator) caseExpr(e *ast.CaseExpr) typedast.Expr {
	scrut := el.expr(e.Scrut)
	resT := el.newVar()

	c := &typedast.Case{Scrut: scrut, Typ: resT}
	for _, a := range e.Alts {
		alt, isDefault := el.caseAlt(a, scrut.Type(), resT)
		if isDefault {
			c.Default = alt
		} else {
			c.Alts = append(c.Alts, alt)
		}
	}
	if c.Default == nil {
		// Every alternative set needs exactly one default (spec.md §3.1); a
		// case expression that only lists constructor/literal alternatives
		// falls through to a pattern-match failure at runtime.
		c.Default = &typedast.Alt{Kind: typedast.AltDefault, Body: &typedast.MatchFail{Message: "Pattern Match Failure", Typ: resT}}
	}
	return c
}

func (el *elaborator) caseAlt(a *ast.CaseAlt, scrutTyp typecheck.Type, resT typecheck.Type) (alt *typedast.Alt, isDefault bool) {
	switch pat := a.Pattern.(type) {
	case *ast.WildcardPattern:
		body := el.expr(a.Body)
		el.equate(resT, body.Type())
		return &typedast.Alt{Kind: typedast.AltDefault, Body: body}, true

	case *ast.VarPattern:
		// Bind.Name refers to the scrutinee's value directly; lang/stg's own
		// Atomize step gives it a concrete runtime location, so simplify only
		// needs every use of pat.Name inside Body to read back pat.Name
		// itself (see typedast.Alt.Bind).
		scope := map[string]localVar{pat.Name: {Typ: scrutTyp, Ref: pat.Name}}
		el.push(scope)
		body := el.expr(a.Body)
		el.pop()
		el.equate(resT, body.Type())
		return &typedast.Alt{Kind: typedast.AltDefault, Bind: pat.Name, Body: body}, true

	case *ast.LitPattern:
		body := el.expr(a.Body)
		el.equate(resT, body.Type())
		alt := &typedast.Alt{Body: body}
		switch lit := pat.Lit.(type) {
		case *ast.IntLit:
			alt.Kind, alt.IntVal = typedast.AltInt, lit.Value
			el.equate(scrutTyp, typecheck.TInt)
		case *ast.StringLit:
			alt.Kind, alt.StringVal = typedast.AltString, lit.Value
			el.equate(scrutTyp, typecheck.TString)
		}
		return alt, false

	case *ast.CtorPattern:
		ci, ok := el.ctors[pat.Name]
		if !ok {
			ci = ctorInfo{dataName: pat.Name}
		}
		el.equate(scrutTyp, &typecheck.TData{Name: ci.dataName})

		scope := make(map[string]localVar, len(pat.Args))
		for i, argName := range pat.Args {
			ft := typecheck.Type(el.newVar())
			if i < len(ci.fieldTypes) {
				ft = ci.fieldTypes[i]
			}
			scope[argName] = localVar{Typ: ft, Ref: argName}
		}
		el.push(scope)
		body := el.expr(a.Body)
		el.pop()
		el.equate(resT, body.Type())

		return &typedast.Alt{Kind: typedast.AltCtor, Ctor: pat.Name, Tag: ci.tag, Fields: pat.Args, Body: body}, false

	default:
		panic("caseAlt: unexpected pattern")
	}
}
