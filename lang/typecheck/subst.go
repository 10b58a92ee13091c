package typecheck

// Subst is an immutable substitution from type-variable name to Type.
// Every mutating-looking operation returns a new Subst and leaves its
// receiver untouched, the systems-friendly replacement spec.md §9
// prescribes for "mutable substitution threading": callers compose and
// thread return values explicitly instead of relying on aliasing.
type Subst struct {
	m map[string]Type
}

// NewSubst returns the empty substitution.
func NewSubst() Subst { return Subst{} }

// Lookup returns the type bound to name, if any.
func (s Subst) Lookup(name string) (Type, bool) {
	if s.m == nil {
		return nil, false
	}
	t, ok := s.m[name]
	return t, ok
}

// Extend returns a new Subst with name bound to t, leaving s unmodified.
func (s Subst) Extend(name string, t Type) Subst {
	m := make(map[string]Type, len(s.m)+1)
	for k, v := range s.m {
		m[k] = v
	}
	m[name] = t
	return Subst{m: m}
}

// Apply recursively resolves every type variable in t through s.
func (s Subst) Apply(t Type) Type {
	switch t := t.(type) {
	case *TVar:
		if bound, ok := s.Lookup(t.Name); ok {
			// re-apply in case the substitution chains (x -> y, y -> Int)
			return s.Apply(bound)
		}
		return t
	case *TFun:
		return &TFun{Param: s.Apply(t.Param), Result: s.Apply(t.Result)}
	default:
		return t
	}
}

// ApplyScheme applies s to a scheme's body, leaving the quantified
// variables untouched (they are locally bound, so a substitution targeting
// an outer variable of the same name must not reach inside).
func (s Subst) ApplyScheme(sc *Scheme) *Scheme {
	filtered := make(map[string]Type, len(s.m))
	quantified := make(map[string]bool, len(sc.Vars))
	for _, v := range sc.Vars {
		quantified[v] = true
	}
	for k, v := range s.m {
		if !quantified[k] {
			filtered[k] = v
		}
	}
	return &Scheme{Vars: sc.Vars, Type: Subst{m: filtered}.Apply(sc.Type)}
}

// Compose returns the substitution equivalent to applying s1 first, then
// s2: Compose(s2, s1).Apply(t) == s2.Apply(s1.Apply(t)).
func Compose(s2, s1 Subst) Subst {
	m := make(map[string]Type, len(s1.m)+len(s2.m))
	for k, v := range s1.m {
		m[k] = s2.Apply(v)
	}
	for k, v := range s2.m {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	return Subst{m: m}
}
