// Package typecheck implements a minimal Hindley-Milner-flavored checker
// over the resolved AST, following spec.md §9's prescription for replacing
// the source's "constraint-based type inference with mutable substitution
// threading" pattern: an immutable substitution, a constraint queue, and a
// solver that is a pure function over (constraints, substitution).
package typecheck

import "fmt"

// Type is implemented by every type. There is no subtyping; equality of
// two Types after substitution is the only relation the solver needs.
type Type interface {
	typ()
	String() string
}

// TCon is a nullary type constant: Int, String or Bool.
type TCon string

func (TCon) typ()            {}
func (t TCon) String() string { return string(t) }

// Built-in base types. Comparisons against these use Go's ordinary value
// equality, since TCon is a plain string type.
var (
	TInt    Type = TCon("Int")
	TString Type = TCon("String")
	TBool   Type = TCon("Bool")
)

// TData names a user-declared data type, e.g. "List".
type TData struct{ Name string }

func (*TData) typ()            {}
func (t *TData) String() string { return t.Name }

// TVar is an unresolved type variable, introduced fresh during inference
// and eliminated by the solver's substitution.
type TVar struct{ Name string }

func (*TVar) typ()            {}
func (t *TVar) String() string { return t.Name }

// TFun is a function type. The source language only has saturated,
// single-clause-arity functions, but currying still needs a TFun per
// argument the way the parser's Lambda/ValueDecl nest (spec.md's STG layer
// itself only ever sees fully-applied terms; TFun exists for type
// inference, not for STG).
type TFun struct {
	Param  Type
	Result Type
}

func (*TFun) typ() {}
func (t *TFun) String() string {
	return fmt.Sprintf("(%s -> %s)", t.Param.String(), t.Result.String())
}

// Scheme is a type generalized over a set of quantified variables, i.e. a
// let-polymorphic type: "forall Vars. Type".
type Scheme struct {
	Vars []string
	Type Type
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	out := "forall"
	for _, v := range s.Vars {
		out += " " + v
	}
	return out + ". " + s.Type.String()
}

// freeVars collects the free type variables of t into the set.
func freeVars(t Type, set map[string]bool) {
	switch t := t.(type) {
	case *TVar:
		set[t.Name] = true
	case *TFun:
		freeVars(t.Param, set)
		freeVars(t.Result, set)
	case TCon, *TData:
		// no variables
	}
}

// FreeVars returns the free type variables of t.
func FreeVars(t Type) map[string]bool {
	set := make(map[string]bool)
	freeVars(t, set)
	return set
}

// FreeVarsScheme returns the free type variables of a scheme: those of its
// body minus the quantified Vars.
func FreeVarsScheme(s *Scheme) map[string]bool {
	set := FreeVars(s.Type)
	for _, v := range s.Vars {
		delete(set, v)
	}
	return set
}
