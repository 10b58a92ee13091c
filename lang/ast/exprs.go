package ast

import "github.com/mna/thistle/lang/token"

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Pos   token.Pos
}

func (e *IntLit) exprNode()                      {}
func (e *IntLit) Span() (start, end token.Pos)   { return e.Pos, e.Pos }

// StringLit is a string literal.
type StringLit struct {
	Value string
	Pos   token.Pos
}

func (e *StringLit) exprNode()                    {}
func (e *StringLit) Span() (start, end token.Pos) { return e.Pos, e.Pos }

// BoolLit is the "True" or "False" literal.
type BoolLit struct {
	Value bool
	Pos   token.Pos
}

func (e *BoolLit) exprNode()                    {}
func (e *BoolLit) Span() (start, end token.Pos) { return e.Pos, e.Pos }

// Ident refers to a value binding (a local, a top-level value, or a
// builtin function name like "printInt").
type Ident struct {
	Name string
	Pos  token.Pos
}

func (e *Ident) exprNode()                    {}
func (e *Ident) Span() (start, end token.Pos) { return e.Pos, e.Pos }

// CtorRef refers to a constructor by name, in value (not pattern) position,
// e.g. the "C" in "C 1 (C 2 N)".
type CtorRef struct {
	Name string
	Pos  token.Pos
}

func (e *CtorRef) exprNode()                    {}
func (e *CtorRef) Span() (start, end token.Pos) { return e.Pos, e.Pos }

// App is a left-associated application of Fn to Args: "f x y z" parses as
// App{Fn: App{Fn: App{Fn: f, Args: [x]}, Args: [y]}, Args: [z]}, flattened
// by lang/stg's GatherApplications during lowering.
type App struct {
	Fn   Expr
	Args []Expr
}

func (e *App) exprNode() {}
func (e *App) Span() (start, end token.Pos) {
	start, _ = e.Fn.Span()
	_, end = e.Args[len(e.Args)-1].Span()
	return start, end
}

// BinOp is a binary operator expression; the parser desugars operator
// precedence into this node, and lang/stg lowers it to a Builtin.
type BinOp struct {
	Op   token.Token
	X, Y Expr
}

func (e *BinOp) exprNode() {}
func (e *BinOp) Span() (start, end token.Pos) {
	start, _ = e.X.Span()
	_, end = e.Y.Span()
	return start, end
}

// UnOp is a unary operator expression (only unary minus is defined).
type UnOp struct {
	Op  token.Token
	X   Expr
	Pos token.Pos
}

func (e *UnOp) exprNode() {}
func (e *UnOp) Span() (start, end token.Pos) {
	_, end = e.X.Span()
	return e.Pos, end
}

// Lambda is an anonymous function "\x y -> body".
type Lambda struct {
	Params []string
	Body   Expr
	Pos    token.Pos
}

func (e *Lambda) exprNode() {}
func (e *Lambda) Span() (start, end token.Pos) {
	_, end = e.Body.Span()
	return e.Pos, end
}

// Let introduces one or more (possibly mutually recursive) local value
// declarations in scope for Body.
type Let struct {
	Binds []*ValueDecl
	Body  Expr
	Pos   token.Pos
}

func (e *Let) exprNode() {}
func (e *Let) Span() (start, end token.Pos) {
	_, end = e.Body.Span()
	return e.Pos, end
}

// CaseExpr is a "case Scrut of { Alts }" expression. Each CaseAlt's pattern
// is shallow (one constructor level, a literal, a variable or a wildcard),
// matching spec.md §3.1's alternative kinds.
type CaseExpr struct {
	Scrut Expr
	Alts  []*CaseAlt
	Pos   token.Pos
	End   token.Pos
}

func (e *CaseExpr) exprNode()                    {}
func (e *CaseExpr) Span() (start, end token.Pos) { return e.Pos, e.End }

// CaseAlt is one alternative of a CaseExpr.
type CaseAlt struct {
	Pattern Pattern
	Body    Expr
}

func (a *CaseAlt) Span() (start, end token.Pos) {
	start, _ = a.Pattern.Span()
	_, end = a.Body.Span()
	return start, end
}
