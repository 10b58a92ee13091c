package typecheck

import "fmt"

// ConstraintKind discriminates the Constraint tagged union.
type ConstraintKind int

const (
	// CEqual demands A and B unify.
	CEqual ConstraintKind = iota
	// CInst demands A unify with a fresh instantiation of Scheme, so each
	// use site gets its own copy of the quantified variables. lang/simplify
	// emits only CEqual constraints.
	CInst
)

// Constraint is one item of the solver's worklist.
type Constraint struct {
	Kind   ConstraintKind
	A, B   Type
	Scheme *Scheme // only set when Kind == CInst
	Pos    string  // human-readable source location, for error messages
}

// Fresh is a monotonically increasing counter for fresh type variable
// names, mirroring spec.md §4.1's Atomize fresh-name counter but scoped to
// type inference instead of STG lowering.
type Fresh struct{ n int }

// NewVar returns a new, never-before-seen type variable.
func (f *Fresh) NewVar() *TVar {
	f.n++
	return &TVar{Name: fmt.Sprintf("t%d", f.n)}
}

// Instantiate replaces a scheme's quantified variables with fresh ones.
func (f *Fresh) Instantiate(s *Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Type
	}
	sub := NewSubst()
	for _, v := range s.Vars {
		sub = sub.Extend(v, f.NewVar())
	}
	return sub.Apply(s.Type)
}

// Generalize quantifies every free variable of t that is not free in env
// into a Scheme, the let-polymorphism generalization step.
func Generalize(envFree map[string]bool, t Type) *Scheme {
	free := FreeVars(t)
	var vars []string
	for v := range free {
		if !envFree[v] {
			vars = append(vars, v)
		}
	}
	return &Scheme{Vars: vars, Type: t}
}

// Solve is the pure solver spec.md §9 calls for: it consumes a worklist of
// constraints against a starting substitution and returns the composed
// result, or the first unification failure. CInst constraints are expanded
// into a CEqual against a fresh instantiation before unifying, so the
// worklist can grow as it is processed; Solve still terminates because
// instantiation only ever introduces fresh variables, never new CInst
// constraints.
func Solve(constraints []Constraint, subst Subst) (Subst, error) {
	var fresh Fresh
	work := append([]Constraint(nil), constraints...)

	for len(work) > 0 {
		c := work[0]
		work = work[1:]

		switch c.Kind {
		case CInst:
			inst := fresh.Instantiate(c.Scheme)
			work = append([]Constraint{{Kind: CEqual, A: c.A, B: inst, Pos: c.Pos}}, work...)
			continue

		case CEqual:
			next, err := unify(subst.Apply(c.A), subst.Apply(c.B), subst)
			if err != nil {
				if c.Pos != "" {
					return subst, fmt.Errorf("%s: %w", c.Pos, err)
				}
				return subst, err
			}
			subst = next

		default:
			panic(fmt.Sprintf("unexpected constraint kind %d", c.Kind))
		}
	}
	return subst, nil
}

// unify computes the most general substitution that equates a and b,
// composed onto subst.
func unify(a, b Type, subst Subst) (Subst, error) {
	switch a := a.(type) {
	case *TVar:
		if bv, ok := b.(*TVar); ok && a.Name == bv.Name {
			return subst, nil
		}
		return bindVar(a, b, subst)

	case TCon:
		if b, ok := b.(TCon); ok && a == b {
			return subst, nil
		}
		if bv, ok := b.(*TVar); ok {
			return bindVar(bv, a, subst)
		}
		return subst, fmt.Errorf("type mismatch: %s vs %s", a, b)

	case *TData:
		if b, ok := b.(*TData); ok && a.Name == b.Name {
			return subst, nil
		}
		if bv, ok := b.(*TVar); ok {
			return bindVar(bv, a, subst)
		}
		return subst, fmt.Errorf("type mismatch: %s vs %s", a, b)

	case *TFun:
		bf, ok := b.(*TFun)
		if !ok {
			if bv, ok := b.(*TVar); ok {
				return bindVar(bv, a, subst)
			}
			return subst, fmt.Errorf("type mismatch: %s vs %s", a, b)
		}
		s1, err := unify(subst.Apply(a.Param), subst.Apply(bf.Param), subst)
		if err != nil {
			return subst, err
		}
		return unify(s1.Apply(a.Result), s1.Apply(bf.Result), s1)

	default:
		panic(fmt.Sprintf("unexpected type %T", a))
	}
}

func bindVar(v *TVar, t Type, subst Subst) (Subst, error) {
	if tv, ok := t.(*TVar); ok && tv.Name == v.Name {
		return subst, nil
	}
	if occurs(v.Name, t) {
		return subst, fmt.Errorf("occurs check failed: %s in %s", v.Name, t)
	}
	return subst.Extend(v.Name, t), nil
}

func occurs(name string, t Type) bool {
	switch t := t.(type) {
	case *TVar:
		return t.Name == name
	case *TFun:
		return occurs(name, t.Param) || occurs(name, t.Result)
	default:
		return false
	}
}
