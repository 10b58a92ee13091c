package resolver

import "fmt"

// Scope classifies what an identifier refers to.
type Scope uint8

const (
	Undefined   Scope = iota // name has no declaration anywhere in scope
	Local                    // a lambda parameter, let-binding or pattern variable
	Global                   // a top-level value declaration
	Constructor              // a data constructor
	Builtin                  // a name supplied by the runtime (see Builtins)
)

var scopeNames = [...]string{
	Undefined:   "undefined",
	Local:       "local",
	Global:      "global",
	Constructor: "constructor",
	Builtin:     "builtin",
}

func (s Scope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid Scope %d>", s)
	}
	return scopeNames[s]
}

// Binding records what an identifier, constructor reference or constructor
// pattern resolves to.
type Binding struct {
	Scope Scope
	Name  string

	// Index is the constructor's tag (its position among its data type's
	// Ctors) when Scope==Constructor; it is meaningless otherwise. Tags are
	// what lang/stg's Builtin ConstrApp and lang/cmm's case dispatch switch
	// on.
	Index int

	// Arity is the number of arguments the binding takes: a Global value's
	// clause parameter count, a Constructor's field count, or a Builtin's
	// fixed arity. It is unused for Local and Undefined.
	Arity int
}
