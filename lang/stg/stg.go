// Package stg defines the Spineless Tagless G-machine intermediate
// representation and the lowering pass from lang/typedast into it.
//
// An STG program is a flat list of top-level bindings plus a single entry
// expression; every application and constructor use is fully saturated with
// respect to its declared arity, and every argument position holds an Atom
// (a literal or a bare name) rather than an arbitrary subexpression.
package stg

import "fmt"

// Atom is the only kind of value permitted as an argument to an
// application, constructor, or builtin.
type Atom interface {
	atomNode()
	String() string
}

type IntAtom struct{ Value int64 }
type StringAtom struct{ Value string }
type BoolAtom struct{ Value bool }
type NameAtom struct{ Name string }

func (IntAtom) atomNode()    {}
func (StringAtom) atomNode() {}
func (BoolAtom) atomNode()   {}
func (NameAtom) atomNode()   {}

func (a IntAtom) String() string    { return fmt.Sprintf("%d", a.Value) }
func (a StringAtom) String() string { return fmt.Sprintf("%q", a.Value) }
func (a BoolAtom) String() string   { return fmt.Sprintf("%t", a.Value) }
func (a NameAtom) String() string   { return a.Name }

// Expr is one of the handful of STG expression forms: literal, saturated
// application, saturated constructor application, saturated builtin, case,
// let, or a pattern-match-failure error.
type Expr interface {
	exprNode()
}

type Literal struct{ Value Atom }

// Apply is a saturated application of a name to atoms. The name may refer
// to a top-level binding, a let-bound local, a lambda parameter, or a
// constructor-field/case binding; it is never itself an atom requiring
// further evaluation (the name is entered directly).
type Apply struct {
	Fn   string
	Args []Atom
}

// ConstrApp is a saturated constructor application.
type ConstrApp struct {
	Ctor string
	Tag  int
	Args []Atom
}

// Builtin is a saturated application of a builtin operator.
type Builtin struct {
	Op   string
	Args []Atom
}

type Case struct {
	Scrut Expr
	Alts  *Alts
}

// Let binds a list of mutually-recursive LambdaForms in an expression;
// later bindings may reference earlier ones and vice versa.
type Let struct {
	Binds []Binding
	Body  Expr
}

// Error is a pattern-match-failure node; it never returns.
type Error struct{ Message string }

func (Literal) exprNode()   {}
func (Apply) exprNode()     {}
func (ConstrApp) exprNode() {}
func (Builtin) exprNode()   {}
func (Case) exprNode()      {}
func (Let) exprNode()       {}
func (Error) exprNode()     {}

// AltKind is the scrutinee kind an Alts set is partitioned by.
type AltKind int

const (
	AltInt AltKind = iota
	AltBool
	AltString
	AltCtor
)

func (k AltKind) String() string {
	switch k {
	case AltInt:
		return "int"
	case AltBool:
		return "bool"
	case AltString:
		return "string"
	case AltCtor:
		return "ctor"
	default:
		return "unknown"
	}
}

type IntAlt struct {
	Value int64
	Body  Expr
}

type BoolAlt struct {
	Value bool
	Body  Expr
}

type StringAlt struct {
	Value string
	Body  Expr
}

// CtorAlt carries the names to which the matched constructor's fields are
// bound within Body.
type CtorAlt struct {
	Ctor   string
	Tag    int
	Fields []string
	Body   Expr
}

// Default is the mandatory fallback alternative: Bind is empty for a
// wildcard, or the name the scrutinee itself is bound to otherwise.
type Default struct {
	Bind string
	Body Expr
}

// Alts is a scrutinee-kind-partitioned alternative set. Only the slice
// matching Kind is populated; every set carries exactly one Default.
type Alts struct {
	Kind    AltKind
	Ints    []IntAlt
	Bools   []BoolAlt
	Strings []StringAlt
	Ctors   []CtorAlt
	Default Default
}

// UpdateFlag says whether entering a thunk must allocate an update frame.
type UpdateFlag int

const (
	// U: allocate an updateable thunk; on entry, compute the value and
	// overwrite self with an indirection.
	Updateable UpdateFlag = iota
	// N: no update frame needed — already in head-normal form, or known
	// to be entered at most once.
	NoUpdate
)

func (f UpdateFlag) String() string {
	if f == Updateable {
		return "U"
	}
	return "N"
}

// StorageKind classifies where a free variable's value lives when a
// LambdaForm's closure is built.
type StorageKind int

const (
	GlobalStorage StorageKind = iota
	PointerStorage
	IntStorage
	StringStorage
)

func (k StorageKind) String() string {
	switch k {
	case GlobalStorage:
		return "global"
	case PointerStorage:
		return "pointer"
	case IntStorage:
		return "int"
	case StringStorage:
		return "string"
	default:
		return "unknown"
	}
}

// FreeVar is one entry of a LambdaForm's free-variable list: the name as it
// appears in Body, and the Storage assigned to it by the free-variable and
// storage analysis pass (see Analyze).
type FreeVar struct {
	Name    string
	Storage StorageKind
	// Index is the free variable's position within its own pointer, int
	// or string partition of FreeVars (see orderFreeVars); lang/cmm uses
	// it as the bound-field index inside the closure.
	Index int
}

// LambdaForm is (free-variable list, updateable flag, parameter list,
// body). FreeVars is empty until Analyze runs; Params is empty for a
// LambdaForm with no arguments (a thunk).
type LambdaForm struct {
	FreeVars []FreeVar
	Update   UpdateFlag
	Params   []string
	Body     Expr
}

// Binding is (name, LambdaForm).
type Binding struct {
	Name string
	Form *LambdaForm
}

// Program is a list of top-level bindings plus a single entry expression.
// GlobalIndex assigns every top-level binding (and the entry form, under
// the reserved name below) a stable index, used by Analyze to resolve
// GlobalStorage references and later by lang/cmm to address the global
// function table.
type Program struct {
	Binds       []Binding
	Entry       *LambdaForm
	GlobalIndex map[string]int
	// CtorFields gives, for every constructor name, the Storage kind of
	// each declared field (Int/String for unboxed primitive fields,
	// Pointer for anything else — another data type, a type variable, or
	// Bool, which has no register of its own and rides the tag path).
	// Analyze uses it to classify names a Case's constructor alternative
	// binds; lang/cmm reuses it to lay out closure fields.
	CtorFields map[string][]StorageKind
}

// EntryName is the reserved name under which the program's entry point is
// recorded in Program.GlobalIndex; it cannot collide with a source
// identifier because it contains a character ("$") the source grammar
// reserves for compiler-generated names.
const EntryName = "$entry"
