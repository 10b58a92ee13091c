// Package ast defines the surface abstract syntax tree produced by the
// parser: value declarations (possibly with several pattern-matching
// clauses), data declarations, and expressions. It is the input to the
// resolver (lang/resolver).
package ast

import "github.com/mna/thistle/lang/token"

// Node is implemented by every AST node.
type Node interface {
	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Decl is implemented by every top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Chunk is the root of a parsed source file: a list of data and value
// declarations, in source order.
type Chunk struct {
	Name  string
	Decls []Decl
	EOF   token.Pos
}

func (c *Chunk) Span() (start, end token.Pos) {
	if len(c.Decls) == 0 {
		return c.EOF, c.EOF
	}
	start, _ = c.Decls[0].Span()
	return start, c.EOF
}

// DataDecl declares a data type and its constructors, e.g.
// "data List = Nil | Cons Int List".
type DataDecl struct {
	Name  string
	Ctors []*CtorDecl
	Pos   token.Pos
	End   token.Pos
}

func (d *DataDecl) declNode()                    {}
func (d *DataDecl) Span() (start, end token.Pos) { return d.Pos, d.End }

// CtorDecl is one constructor alternative of a DataDecl. Fields names each
// field's type, by the token text seen ("Int", "String", or a data type's
// name, possibly its own enclosing type for recursive data); Arity is
// len(Fields). The tag assigned to the constructor is its index within the
// enclosing DataDecl.Ctors (spec.md §4.1's "declaration order").
type CtorDecl struct {
	Name   string
	Fields []string
	Arity  int
	Pos    token.Pos
}

func (c *CtorDecl) Span() (start, end token.Pos) { return c.Pos, c.Pos }

// ValueDecl declares a value by one or more pattern-matching clauses, all
// sharing the same name and number of parameters, e.g.
// "sum N = 0" and "sum (C x xs) = x + sum xs" are the two Clauses of one
// ValueDecl named "sum".
type ValueDecl struct {
	Name    string
	Clauses []*Clause
}

func (v *ValueDecl) declNode() {}
func (v *ValueDecl) Span() (start, end token.Pos) {
	start, _ = v.Clauses[0].Span()
	_, end = v.Clauses[len(v.Clauses)-1].Span()
	return start, end
}

// Arity returns the number of parameters shared by every clause.
func (v *ValueDecl) Arity() int { return len(v.Clauses[0].Params) }

// Clause is a single equation of a ValueDecl: a list of parameter patterns
// and the expression to evaluate when they all match.
type Clause struct {
	Params []Pattern
	Body   Expr
	Pos    token.Pos
}

func (c *Clause) Span() (start, end token.Pos) {
	_, end = c.Body.Span()
	return c.Pos, end
}
