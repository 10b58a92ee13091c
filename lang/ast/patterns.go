package ast

import "github.com/mna/thistle/lang/token"

// Pattern is implemented by the single-level (shallow) patterns the surface
// grammar allows as a clause parameter: a bare variable, a wildcard, or a
// constructor applied to variable names (no nesting — spec.md §1 takes
// nested-pattern compilation as an external, out-of-scope concern, so the
// grammar simply never admits it).
type Pattern interface {
	Node
	patternNode()
}

// VarPattern binds the scrutinee to Name.
type VarPattern struct {
	Name string
	Pos  token.Pos
}

func (p *VarPattern) patternNode()                {}
func (p *VarPattern) Span() (start, end token.Pos) { return p.Pos, p.Pos }

// WildcardPattern matches anything and binds nothing ("_").
type WildcardPattern struct {
	Pos token.Pos
}

func (p *WildcardPattern) patternNode()                {}
func (p *WildcardPattern) Span() (start, end token.Pos) { return p.Pos, p.Pos }

// CtorPattern matches a value built by constructor Name, binding each field
// to the corresponding name in Args.
type CtorPattern struct {
	Name string
	Args []string
	Pos  token.Pos
	End  token.Pos
}

func (p *CtorPattern) patternNode()                {}
func (p *CtorPattern) Span() (start, end token.Pos) { return p.Pos, p.End }

// LitPattern matches a literal int or string, used for the "take 0 _ = N"
// style of clause.
type LitPattern struct {
	Lit Expr // *IntLit or *StringLit
}

func (p *LitPattern) patternNode()                {}
func (p *LitPattern) Span() (start, end token.Pos) { return p.Lit.Span() }
