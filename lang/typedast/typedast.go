// Package typedast is the "simplified AST" named in spec.md §6: the
// external interface STG lowering consumes. By the time a program reaches
// this shape, every nested pattern has been compiled into a shallow case
// tree (lang/simplify), every name and constructor has a resolved
// binding (lang/resolver), and every expression carries its inferred type
// (lang/typecheck). lang/stg never looks at lang/ast or the surface grammar
// again.
package typedast

import "github.com/mna/thistle/lang/typecheck"

// Program is a value-definition list plus the constructor map that STG
// lowering assumes is already known and complete.
type Program struct {
	Defs  []*Def
	Ctors map[string]CtorInfo
}

// CtorInfo is spec.md §6's "name -> (arity, scheme, tag)" constructor map
// entry.
type CtorInfo struct {
	Tag    int
	Arity  int
	Scheme *typecheck.Scheme
}

// Def is one value definition: a name, an optional generalized scheme
// (lang/simplify leaves it nil for every definition, top-level and
// let-bound alike), its instantiated type, and its defining expression. A Def's Params are the names bound by the def's own lambda
// prefix, already stripped off by lang/simplify (STG's ExprToLambda expects
// exactly this shape: a flat parameter list plus a body with no leading
// lambdas).
type Def struct {
	Name   string
	Scheme *typecheck.Scheme // nil as produced by lang/simplify
	Type   typecheck.Type
	Params []string
	Body   Expr
}

// Expr is implemented by every simplified-AST expression variant named in
// spec.md §6: let, shallow case, literal, builtin, name, application,
// lambda, and pattern-match failure.
type Expr interface {
	exprNode()
	Type() typecheck.Type
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

func (e *IntLit) exprNode()            {}
func (e *IntLit) Type() typecheck.Type { return typecheck.TInt }

// StringLit is a string literal.
type StringLit struct {
	Value string
}

func (e *StringLit) exprNode()            {}
func (e *StringLit) Type() typecheck.Type { return typecheck.TString }

// BoolLit is a boolean literal. lang/stg keeps it as a BoolAtom literal,
// and lang/cmm returns it as a tag (0 = False, 1 = True), since the
// runtime has no boolean register of its own — booleans ride the same
// TagRegister path as user data constructors.
type BoolLit struct {
	Value bool
}

func (e *BoolLit) exprNode()            {}
func (e *BoolLit) Type() typecheck.Type { return typecheck.TBool }

// Name references a value binding: a top-level definition, a local
// parameter or let-binding, or a builtin function.
type Name struct {
	Ident string
	Typ   typecheck.Type
}

func (e *Name) exprNode()            {}
func (e *Name) Type() typecheck.Type { return e.Typ }

// App is a saturated application of Fn to Args (spec.md §4.1's
// GatherApplications has already flattened and, for STG, will re-atomize
// this; at the typedast level App may still nest non-atomic arguments).
type App struct {
	Fn   Expr
	Args []Expr
	Typ  typecheck.Type
}

func (e *App) exprNode()            {}
func (e *App) Type() typecheck.Type { return e.Typ }

// CtorApp is a saturated constructor application, tag already resolved.
type CtorApp struct {
	Ctor string
	Tag  int
	Args []Expr
	Typ  typecheck.Type
}

func (e *CtorApp) exprNode()            {}
func (e *CtorApp) Type() typecheck.Type { return e.Typ }

// Builtin is a saturated application of a builtin operator (spec.md §4.5)
// to its arguments.
type Builtin struct {
	Op   string
	Args []Expr
	Typ  typecheck.Type
}

func (e *Builtin) exprNode()            {}
func (e *Builtin) Type() typecheck.Type { return e.Typ }

// Lambda is an anonymous function. lang/simplify emits it wherever the
// source has one, including as a bare subexpression; lang/stg then gives
// each such occurrence its own fresh binding (see atomizeLambda there).
type Lambda struct {
	Params []string
	Body   Expr
	Typ    typecheck.Type
}

func (e *Lambda) exprNode()            {}
func (e *Lambda) Type() typecheck.Type { return e.Typ }

// Let introduces one or more mutually recursive local bindings.
type Let struct {
	Binds []*Def
	Body  Expr
}

func (e *Let) exprNode()            {}
func (e *Let) Type() typecheck.Type { return e.Body.Type() }

// Case is a shallow case expression: Scrut is matched against Alts, which
// must cover every constructor of Scrut's type or end in a Default.
type Case struct {
	Scrut   Expr
	Alts    []*Alt
	Default *Alt // nil if Alts is exhaustive
	Typ     typecheck.Type
}

func (e *Case) exprNode()            {}
func (e *Case) Type() typecheck.Type { return e.Typ }

// AltKind distinguishes what an Alt's pattern matches.
type AltKind int

const (
	AltInt AltKind = iota
	AltString
	AltCtor
	AltDefault // wildcard, or binds the scrutinee to a name
)

// Alt is one alternative of a Case.
type Alt struct {
	Kind AltKind

	IntVal    int64    // AltInt
	StringVal string   // AltString
	Ctor      string   // AltCtor
	Tag       int      // AltCtor
	Fields    []string // AltCtor: names bound to each constructor field
	Bind      string   // AltDefault: "" for a bare wildcard

	Body Expr
}

// MatchFail is the "Pattern Match Failure" sentinel of spec.md §7 and
// §3.1's "pattern-match-failure error with a message string".
type MatchFail struct {
	Message string
	Typ     typecheck.Type
}

func (e *MatchFail) exprNode()            {}
func (e *MatchFail) Type() typecheck.Type { return e.Typ }
