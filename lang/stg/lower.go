package stg

import (
	"fmt"

	"github.com/mna/thistle/lang/typecheck"
	"github.com/mna/thistle/lang/typedast"
)

// lowering holds the fresh-name counter shared across a whole program
// lowering. Fresh names are rendered "$" followed by the decimal count, a
// character the source grammar forbids in identifiers so generated names
// can never collide with one the programmer wrote.
type lowering struct {
	fresh int
}

func (l *lowering) freshName() string {
	l.fresh++
	return fmt.Sprintf("$%d", l.fresh)
}

// Lower converts a type-checked, shallow-pattern-compiled program into STG:
// every top-level definition becomes a Binding, and main (by convention the
// program's sole nullary or saturated entry point) becomes the entry
// LambdaForm.
func Lower(prog *typedast.Program) (*Program, error) {
	l := &lowering{}

	defBinds := make([]Binding, 0, len(prog.Defs))
	var entryDef *typedast.Def
	for _, d := range prog.Defs {
		if d.Name == "main" {
			entryDef = d
			continue
		}
		defBinds = append(defBinds, Binding{Name: d.Name, Form: l.exprToLambda(d.Params, d.Body)})
	}
	if entryDef == nil {
		return nil, fmt.Errorf("stg: no definition named %q", "main")
	}

	prog2 := &Program{
		Binds:       defBinds,
		Entry:       l.exprToLambda(entryDef.Params, entryDef.Body),
		GlobalIndex: make(map[string]int, len(defBinds)+1),
		CtorFields:  ctorFieldStorage(prog.Ctors),
	}
	prog2.GlobalIndex[EntryName] = 0
	idx := 1
	for _, b := range prog2.Binds {
		prog2.GlobalIndex[b.Name] = idx
		idx++
	}
	return prog2, nil
}

// LowerAndAnalyze runs Lower followed by Analyze, the sequence every
// caller outside this package's own tests actually wants.
func LowerAndAnalyze(prog *typedast.Program) (*Program, error) {
	out, err := Lower(prog)
	if err != nil {
		return nil, err
	}
	Analyze(out, out.CtorFields)
	return out, nil
}

// ctorFieldStorage derives each constructor's per-field Storage from its
// scheme's argument types (a chain of Arity TFuns ending in the data
// type), so Analyze and lang/cmm can classify and lay out constructor
// fields without re-deriving types themselves.
func ctorFieldStorage(ctors map[string]typedast.CtorInfo) map[string][]StorageKind {
	out := make(map[string][]StorageKind, len(ctors))
	for name, ci := range ctors {
		kinds := make([]StorageKind, ci.Arity)
		t := ci.Scheme.Type
		for i := 0; i < ci.Arity; i++ {
			fn, ok := t.(*typecheck.TFun)
			if !ok {
				break
			}
			kinds[i] = storageForType(fn.Param)
			t = fn.Result
		}
		out[name] = kinds
	}
	return out
}

func storageForType(t typecheck.Type) StorageKind {
	switch t {
	case typecheck.TInt:
		return IntStorage
	case typecheck.TString:
		return StringStorage
	default:
		return PointerStorage
	}
}

// ExprToLambda strips a definition's own parameter list (already uncurried
// by lang/simplify) and compiles its body to an Expr, producing
// LambdaForm{[], U, params, body}. Free variables are filled in by a
// subsequent Analyze pass.
func (l *lowering) exprToLambda(params []string, body typedast.Expr) *LambdaForm {
	return &LambdaForm{Update: Updateable, Params: append([]string(nil), params...), Body: l.convertExpr(body)}
}

// atomize returns a pair (extra-bindings, atom). If e is already atomic (a
// literal or a name), no bindings are produced; otherwise e is compiled to
// a zero-parameter LambdaForm under a fresh name and that name is returned
// as the atom.
func (l *lowering) atomize(e typedast.Expr) ([]Binding, Atom) {
	switch e := e.(type) {
	case *typedast.IntLit:
		return nil, IntAtom{Value: e.Value}
	case *typedast.StringLit:
		return nil, StringAtom{Value: e.Value}
	case *typedast.BoolLit:
		return nil, BoolAtom{Value: e.Value}
	case *typedast.Name:
		return nil, NameAtom{Name: e.Ident}
	default:
		f := l.freshName()
		form := &LambdaForm{Update: Updateable, Body: l.convertExpr(e)}
		return []Binding{{Name: f, Form: form}}, NameAtom{Name: f}
	}
}

func (l *lowering) atomizeAll(es []typedast.Expr) ([]Binding, []Atom) {
	var binds []Binding
	atoms := make([]Atom, len(es))
	for i, e := range es {
		bs, a := l.atomize(e)
		binds = append(binds, bs...)
		atoms[i] = a
	}
	return binds, atoms
}

// gatherApplications flattens left-associated App nodes — which arise from
// a parenthesized sub-application in function position, e.g. "(f x) y" —
// into (head, args) with args in left-to-right source order.
func gatherApplications(e *typedast.App) (typedast.Expr, []typedast.Expr) {
	head := typedast.Expr(e)
	var args []typedast.Expr
	for {
		app, ok := head.(*typedast.App)
		if !ok {
			break
		}
		args = append(append([]typedast.Expr(nil), app.Args...), args...)
		head = app.Fn
	}
	return head, args
}

// convertExpr dispatches on the typedast node, lowering it to an STG Expr.
func (l *lowering) convertExpr(e typedast.Expr) Expr {
	switch e := e.(type) {
	case *typedast.IntLit:
		return Literal{Value: IntAtom{Value: e.Value}}
	case *typedast.StringLit:
		return Literal{Value: StringAtom{Value: e.Value}}
	case *typedast.BoolLit:
		return Literal{Value: BoolAtom{Value: e.Value}}

	case *typedast.Name:
		return Apply{Fn: e.Ident}

	case *typedast.CtorApp:
		binds, atoms := l.atomizeAll(e.Args)
		return makeLet(binds, ConstrApp{Ctor: e.Ctor, Tag: e.Tag, Args: atoms})

	case *typedast.Builtin:
		binds, atoms := l.atomizeAll(e.Args)
		return makeLet(binds, Builtin{Op: e.Op, Args: atoms})

	case *typedast.App:
		head, args := gatherApplications(e)
		return l.convertApp(head, args)

	case *typedast.Lambda:
		// A lambda that appears as a plain subexpression (never the direct
		// RHS of a Let/Def, which instead calls exprToLambda directly) is
		// atomized: it becomes a fresh binding whose LambdaForm keeps the
		// lambda's own parameters (see atomizeLambda), so the surrounding
		// expression sees only a name.
		binds, atom := l.atomizeLambda(e)
		return makeLet(binds, Apply{Fn: atom.Name})

	case *typedast.Let:
		var binds []Binding
		for _, d := range e.Binds {
			binds = append(binds, Binding{Name: d.Name, Form: l.exprToLambda(d.Params, d.Body)})
		}
		return Let{Binds: binds, Body: l.convertExpr(e.Body)}

	case *typedast.Case:
		return l.convertCase(e)

	case *typedast.MatchFail:
		return Error{Message: e.Message}

	default:
		panic(fmt.Sprintf("stg: unexpected typedast node %T", e))
	}
}

// atomizeLambda gives a bare lambda expression a fresh top-level-style
// binding (its LambdaForm keeps the lambda's own parameters, rather than
// atomize's generic zero-parameter wrapping) and returns that binding plus
// the NameAtom referring to it.
func (l *lowering) atomizeLambda(e *typedast.Lambda) ([]Binding, NameAtom) {
	f := l.freshName()
	form := l.exprToLambda(e.Params, e.Body)
	return []Binding{{Name: f, Form: form}}, NameAtom{Name: f}
}

// convertApp lowers a (possibly multi-argument) application headed by head.
// A literal in function position is an earlier-stage bug, not a condition
// this pass recovers from — it aborts with an internal-error panic.
func (l *lowering) convertApp(head typedast.Expr, args []typedast.Expr) Expr {
	binds, atoms := l.atomizeAll(args)

	switch h := head.(type) {
	case *typedast.Name:
		return makeLet(binds, Apply{Fn: h.Ident, Args: atoms})

	case *typedast.CtorApp:
		// Only reachable for a saturating extra application on top of an
		// already-saturated CtorApp, which earlier stages never produce;
		// guard it the same way an unsaturated builtin is guarded.
		panic("stg: application applied on top of a saturated constructor")

	case *typedast.Lambda:
		lb, atom := l.atomizeLambda(h)
		return makeLet(append(binds, lb...), Apply{Fn: atom.Name, Args: atoms})

	case *typedast.IntLit, *typedast.StringLit, *typedast.BoolLit:
		panic("stg: literal in function position")

	default:
		hb, hatom := l.atomize(head)
		return makeLet(append(hb, binds...), Apply{Fn: hatom.(NameAtom).Name, Args: atoms})
	}
}

func (l *lowering) convertCase(e *typedast.Case) Expr {
	scrut := l.convertExpr(e.Scrut)
	alts := &Alts{}

	if len(e.Alts) > 0 {
		switch e.Alts[0].Kind {
		case typedast.AltInt:
			alts.Kind = AltInt
		case typedast.AltString:
			alts.Kind = AltString
		case typedast.AltCtor:
			alts.Kind = AltCtor
		}
	} else {
		// A case with no non-default alternatives at all (e.g. "case n of
		// (_ -> e)") still needs a Kind; default to AltCtor, the only kind
		// whose alt list being empty is unremarkable (Bool/Int/String
		// scrutinees with no alternatives are equally valid but rarer).
		alts.Kind = AltCtor
	}

	for _, a := range e.Alts {
		body := l.convertExpr(a.Body)
		switch a.Kind {
		case typedast.AltInt:
			alts.Ints = append(alts.Ints, IntAlt{Value: a.IntVal, Body: body})
		case typedast.AltString:
			alts.Strings = append(alts.Strings, StringAlt{Value: a.StringVal, Body: body})
		case typedast.AltCtor:
			alts.Ctors = append(alts.Ctors, CtorAlt{Ctor: a.Ctor, Tag: a.Tag, Fields: a.Fields, Body: body})
		}
	}

	if e.Default != nil {
		alts.Default = Default{Bind: e.Default.Bind, Body: l.convertExpr(e.Default.Body)}
	} else {
		alts.Default = Default{Body: Error{Message: "Pattern Match Failure"}}
	}

	return Case{Scrut: scrut, Alts: alts}
}

// makeLet applies the let-introduction rule: makeLet([], e) == e; otherwise
// a Let wrapping the given bindings is produced, preserving binding order
// so later bindings may reference earlier ones.
func makeLet(binds []Binding, body Expr) Expr {
	if len(binds) == 0 {
		return body
	}
	return Let{Binds: binds, Body: body}
}
