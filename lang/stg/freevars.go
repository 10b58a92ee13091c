package stg

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// Analyze performs free-variable and storage analysis (spec.md §4.2) on
// every LambdaForm reachable from prog, in place: each form's FreeVars is
// filled with the variables it captures, pointer-kinded first, then
// int-kinded, then string-kinded, each tagged with the Storage its binder
// implies. ctorFields gives, for every constructor name, the Storage each
// of its fields occupies (derived from the field's declared type), used to
// classify names bound by a Case's constructor alternatives.
func Analyze(prog *Program, ctorFields map[string][]StorageKind) {
	globals := swissSet()
	for name := range prog.GlobalIndex {
		if name != EntryName {
			globals.Put(name, GlobalStorage)
		}
	}

	for _, b := range prog.Binds {
		analyzeTopForm(b.Form, globals, ctorFields)
	}
	analyzeTopForm(prog.Entry, globals, ctorFields)
}

func swissSet() *swiss.Map[string, StorageKind] {
	return swiss.NewMap[string, StorageKind](8)
}

func cloneSet(m *swiss.Map[string, StorageKind]) *swiss.Map[string, StorageKind] {
	out := swiss.NewMap[string, StorageKind](uint32(m.Count()))
	m.Iter(func(k string, v StorageKind) bool {
		out.Put(k, v)
		return true
	})
	return out
}

// analyzeTopForm analyzes one top-level (or program-entry) LambdaForm: it
// has no enclosing lexical scope besides globals, so declKind only needs
// to cover declarations nested within its own body.
func analyzeTopForm(f *LambdaForm, globals *swiss.Map[string, StorageKind], ctorFields map[string][]StorageKind) {
	decl := swissSet()
	for _, p := range f.Params {
		decl.Put(p, PointerStorage)
	}
	collectDecls(f.Body, decl, ctorFields)

	bound := cloneSet(globals)
	for _, p := range f.Params {
		bound.Put(p, PointerStorage)
	}

	free := swissSet()
	markFree(f.Body, bound, decl, free, ctorFields)
	f.FreeVars = orderFreeVars(free)
}

// collectDecls walks e once, recording the Storage of every name it
// declares (Let bindings, Case constructor fields, Case default binds) into
// decl. This flat, whole-top-level-form table is the fallback used to
// classify a name's Storage when it is discovered to be free relative to
// some more deeply nested LambdaForm than the one that originally bound
// it — see markFree.
func collectDecls(e Expr, decl *swiss.Map[string, StorageKind], ctorFields map[string][]StorageKind) {
	switch e := e.(type) {
	case Literal, Error:
		// no declarations

	case Apply, ConstrApp, Builtin:
		// no declarations; atoms carry no binders

	case Let:
		for _, b := range e.Binds {
			decl.Put(b.Name, letStorage(b.Form))
			for _, p := range b.Form.Params {
				decl.Put(p, PointerStorage)
			}
			collectDecls(b.Form.Body, decl, ctorFields)
		}
		collectDecls(e.Body, decl, ctorFields)

	case Case:
		collectDecls(e.Scrut, decl, ctorFields)
		for _, a := range e.Alts.Ints {
			collectDecls(a.Body, decl, ctorFields)
		}
		for _, a := range e.Alts.Bools {
			collectDecls(a.Body, decl, ctorFields)
		}
		for _, a := range e.Alts.Strings {
			collectDecls(a.Body, decl, ctorFields)
		}
		for _, a := range e.Alts.Ctors {
			fields := ctorFields[a.Ctor]
			for i, name := range a.Fields {
				kind := PointerStorage
				if i < len(fields) {
					kind = fields[i]
				}
				decl.Put(name, kind)
			}
			collectDecls(a.Body, decl, ctorFields)
		}
		if e.Alts.Default.Bind != "" {
			decl.Put(e.Alts.Default.Bind, scrutineeStorage(e.Alts.Kind))
		}
		collectDecls(e.Alts.Default.Body, decl, ctorFields)

	default:
		panic("stg: unexpected expr in collectDecls")
	}
}

// markFree walks e, recording into free every name referenced that is not
// present in bound. bound is extended locally (with proper shadowing) as
// Let and Case constructs are entered. Each nested Let-bound LambdaForm is
// itself analyzed independently (its free variables may include siblings
// bound in the same group, since it becomes its own heap closure, entered
// independently of this function's stack frame); any such inner free name
// that bound here does not already resolve is this call's free variable
// too, using decl to recover its Storage.
func markFree(e Expr, bound *swiss.Map[string, StorageKind], decl *swiss.Map[string, StorageKind], free *swiss.Map[string, StorageKind], ctorFields map[string][]StorageKind) {
	use := func(name string) {
		if _, ok := bound.Get(name); ok {
			return
		}
		kind, ok := decl.Get(name)
		if !ok {
			kind = PointerStorage
		}
		free.Put(name, kind)
	}
	useAtom := func(a Atom) {
		if na, ok := a.(NameAtom); ok {
			use(na.Name)
		}
	}

	switch e := e.(type) {
	case Literal:
		// no references

	case Error:
		// no references

	case Apply:
		use(e.Fn)
		for _, a := range e.Args {
			useAtom(a)
		}

	case ConstrApp:
		for _, a := range e.Args {
			useAtom(a)
		}

	case Builtin:
		for _, a := range e.Args {
			useAtom(a)
		}

	case Let:
		letBound := cloneSet(bound)
		for _, b := range e.Binds {
			letBound.Put(b.Name, letStorage(b.Form))
		}
		for _, b := range e.Binds {
			innerBound := cloneSet(letBound)
			for _, p := range b.Form.Params {
				innerBound.Put(p, PointerStorage)
			}
			innerFree := swissSet()
			markFree(b.Form.Body, innerBound, decl, innerFree, ctorFields)
			b.Form.FreeVars = orderFreeVars(innerFree)
			innerFree.Iter(func(name string, kind StorageKind) bool {
				if _, ok := letBound.Get(name); !ok {
					use(name)
				}
				return true
			})
		}
		markFree(e.Body, letBound, decl, free, ctorFields)

	case Case:
		markFree(e.Scrut, bound, decl, free, ctorFields)
		for _, a := range e.Alts.Ints {
			markFree(a.Body, bound, decl, free, ctorFields)
		}
		for _, a := range e.Alts.Bools {
			markFree(a.Body, bound, decl, free, ctorFields)
		}
		for _, a := range e.Alts.Strings {
			markFree(a.Body, bound, decl, free, ctorFields)
		}
		for _, a := range e.Alts.Ctors {
			ctorBound := cloneSet(bound)
			fields := ctorFields[a.Ctor]
			for i, name := range a.Fields {
				kind := PointerStorage
				if i < len(fields) {
					kind = fields[i]
				}
				ctorBound.Put(name, kind)
			}
			markFree(a.Body, ctorBound, decl, free, ctorFields)
		}
		defBound := bound
		if e.Alts.Default.Bind != "" {
			defBound = cloneSet(bound)
			defBound.Put(e.Alts.Default.Bind, scrutineeStorage(e.Alts.Kind))
		}
		markFree(e.Alts.Default.Body, defBound, decl, free, ctorFields)

	default:
		panic("stg: unexpected expr in markFree")
	}
}

func scrutineeStorage(kind AltKind) StorageKind {
	switch kind {
	case AltInt:
		return IntStorage
	case AltString:
		return StringStorage
	default:
		return PointerStorage
	}
}

// letStorage classifies a thunk's own Storage from a shallow look at its
// LambdaForm: a binding with parameters is always a closure (a function
// value is boxed), and the conservative default for a parameterless
// binding is PointerStorage (spec.md §4.2's own fallback) unless its body
// is immediately an int- or string-producing literal or builtin, in which
// case it is known unboxed without forcing anything.
func letStorage(f *LambdaForm) StorageKind {
	if len(f.Params) > 0 {
		return PointerStorage
	}
	switch b := f.Body.(type) {
	case Literal:
		switch b.Value.(type) {
		case IntAtom:
			return IntStorage
		case StringAtom:
			return StringStorage
		}
	case Builtin:
		switch b.Op {
		case "Add", "Sub", "Mul", "Div", "Negate":
			return IntStorage
		case "Concat":
			return StringStorage
		}
	}
	return PointerStorage
}

// orderFreeVars renders a free-name set into the stable, kind-partitioned
// order spec.md §4.2 requires: pointer-kinded first, then int, then
// string, each partition sorted by name for determinism (map iteration
// order is not stable), with Index assigned by position within its own
// kind partition.
func orderFreeVars(free *swiss.Map[string, StorageKind]) []FreeVar {
	var ptrs, ints, strs []string
	free.Iter(func(name string, kind StorageKind) bool {
		switch kind {
		case IntStorage:
			ints = append(ints, name)
		case StringStorage:
			strs = append(strs, name)
		default:
			ptrs = append(ptrs, name)
		}
		return true
	})
	slices.SortFunc(ptrs, func(a, b string) int { return compareNames(a, b) })
	slices.SortFunc(ints, func(a, b string) int { return compareNames(a, b) })
	slices.SortFunc(strs, func(a, b string) int { return compareNames(a, b) })

	out := make([]FreeVar, 0, len(ptrs)+len(ints)+len(strs))
	for i, n := range ptrs {
		out = append(out, FreeVar{Name: n, Storage: PointerStorage, Index: i})
	}
	for i, n := range ints {
		out = append(out, FreeVar{Name: n, Storage: IntStorage, Index: i})
	}
	for i, n := range strs {
		out = append(out, FreeVar{Name: n, Storage: StringStorage, Index: i})
	}
	return out
}

func compareNames(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
