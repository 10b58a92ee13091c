package simplify

import (
	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/typecheck"
	"github.com/mna/thistle/lang/typedast"
)

// compileClauses tries clauses[idx:] against the named, already-typed
// arguments in order, falling through to the next clause (and ultimately
// to a MatchFail) on the first pattern mismatch, and constraining every
// clause's body type against result.
func (el *elaborator) compileClauses(argNames []string, argTypes []typecheck.Type, clauses []*ast.Clause, idx int, result typecheck.Type) typedast.Expr {
	if idx == len(clauses) {
		return &typedast.MatchFail{Message: "Pattern Match Failure", Typ: result}
	}
	fallthroughExpr := func() typedast.Expr {
		return el.compileClauses(argNames, argTypes, clauses, idx+1, result)
	}
	return el.matchParams(argNames, argTypes, clauses[idx].Params, 0, clauses[idx].Body, fallthroughExpr, result)
}

// matchParams matches pats[pidx:] against argNames[pidx:] in order. Once
// every parameter of the current clause has matched, body is elaborated in
// the accumulated scope and constrained to equal result; any mismatch
// along the way defers to fallback, called lazily so it is only elaborated
// on the path(s) that actually need it.
func (el *elaborator) matchParams(argNames []string, argTypes []typecheck.Type, pats []ast.Pattern, pidx int, body ast.Expr, fallback func() typedast.Expr, result typecheck.Type) typedast.Expr {
	if pidx == len(pats) {
		e := el.expr(body)
		el.equate(result, e.Type())
		return e
	}

	name, typ := argNames[pidx], argTypes[pidx]
	rest := func() typedast.Expr {
		return el.matchParams(argNames, argTypes, pats, pidx+1, body, fallback, result)
	}

	switch pat := pats[pidx].(type) {
	case *ast.WildcardPattern:
		return rest()

	case *ast.VarPattern:
		el.push(map[string]localVar{pat.Name: {Typ: typ, Ref: name}})
		e := rest()
		el.pop()
		return e

	case *ast.LitPattern:
		matched := rest()
		fell := fallback()
		resT := el.newVar()
		el.equate(resT, matched.Type())
		el.equate(resT, fell.Type())

		alt := &typedast.Alt{Body: matched}
		switch lit := pat.Lit.(type) {
		case *ast.IntLit:
			alt.Kind, alt.IntVal = typedast.AltInt, lit.Value
			el.equate(typ, typecheck.TInt)
		case *ast.StringLit:
			alt.Kind, alt.StringVal = typedast.AltString, lit.Value
			el.equate(typ, typecheck.TString)
		}
		return &typedast.Case{
			Scrut:   &typedast.Name{Ident: name, Typ: typ},
			Alts:    []*typedast.Alt{alt},
			Default: &typedast.Alt{Kind: typedast.AltDefault, Body: fell},
			Typ:     resT,
		}

	case *ast.CtorPattern:
		ci, ok := el.ctors[pat.Name]
		if !ok {
			// already reported by lang/resolver; keep elaborating with a fresh
			// data type so downstream inference does not cascade spurious
			// errors.
			ci = ctorInfo{dataName: pat.Name}
		}
		el.equate(typ, &typecheck.TData{Name: ci.dataName})

		scope := make(map[string]localVar, len(pat.Args))
		for i, argName := range pat.Args {
			ft := typecheck.Type(el.newVar())
			if i < len(ci.fieldTypes) {
				ft = ci.fieldTypes[i]
			}
			scope[argName] = localVar{Typ: ft, Ref: argName}
		}
		el.push(scope)
		matched := rest()
		el.pop()

		fell := fallback()
		resT := el.newVar()
		el.equate(resT, matched.Type())
		el.equate(resT, fell.Type())

		return &typedast.Case{
			Scrut: &typedast.Name{Ident: name, Typ: typ},
			Alts: []*typedast.Alt{{
				Kind:   typedast.AltCtor,
				Ctor:   pat.Name,
				Tag:    ci.tag,
				Fields: pat.Args,
				Body:   matched,
			}},
			Default: &typedast.Alt{Kind: typedast.AltDefault, Body: fell},
			Typ:     resT,
		}

	default:
		panic("matchParams: unexpected pattern")
	}
}
