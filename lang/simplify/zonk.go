package simplify

import (
	"fmt"

	"github.com/mna/thistle/lang/typecheck"
	"github.com/mna/thistle/lang/typedast"
)

// zonkDef rewrites every type variable reachable from d with its final
// binding in subst, mutating d's tree in place. This is the ordinary
// two-phase HM implementation technique: infer with mutable placeholders
// (fresh TVars), solve once, then walk the already-built tree substituting
// final types, rather than threading a substitution through every
// constructor call during elaboration itself.
func zonkDef(d *typedast.Def, subst typecheck.Subst) {
	d.Type = subst.Apply(d.Type)
	if d.Body != nil {
		zonkExpr(d.Body, subst)
	}
}

func zonkExpr(e typedast.Expr, subst typecheck.Subst) {
	switch e := e.(type) {
	case *typedast.IntLit, *typedast.StringLit, *typedast.BoolLit:
		// fixed base types, nothing to substitute

	case *typedast.Name:
		e.Typ = subst.Apply(e.Typ)

	case *typedast.App:
		e.Typ = subst.Apply(e.Typ)
		zonkExpr(e.Fn, subst)
		for _, a := range e.Args {
			zonkExpr(a, subst)
		}

	case *typedast.CtorApp:
		e.Typ = subst.Apply(e.Typ)
		for _, a := range e.Args {
			zonkExpr(a, subst)
		}

	case *typedast.Builtin:
		e.Typ = subst.Apply(e.Typ)
		for _, a := range e.Args {
			zonkExpr(a, subst)
		}

	case *typedast.Lambda:
		e.Typ = subst.Apply(e.Typ)
		zonkExpr(e.Body, subst)

	case *typedast.Let:
		for _, b := range e.Binds {
			zonkDef(b, subst)
		}
		zonkExpr(e.Body, subst)

	case *typedast.Case:
		e.Typ = subst.Apply(e.Typ)
		zonkExpr(e.Scrut, subst)
		for _, a := range e.Alts {
			zonkExpr(a.Body, subst)
		}
		if e.Default != nil {
			zonkExpr(e.Default.Body, subst)
		}

	case *typedast.MatchFail:
		e.Typ = subst.Apply(e.Typ)

	default:
		panic(fmt.Sprintf("zonk: unexpected expr %T", e))
	}
}
