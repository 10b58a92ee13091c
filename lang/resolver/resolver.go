// Package resolver binds every identifier, constructor reference and
// constructor pattern of a parsed chunk to a Binding, and reports undefined
// names and constructor arity mismatches before lang/typecheck runs.
package resolver

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/token"
)

// Info is the result of resolving a chunk: lookup tables from AST node to
// the Binding it resolved to, keyed by node identity in the style of
// go/types.Info rather than by mutating the AST in place.
type Info struct {
	// Globals is the constructor/top-level-value table: every data
	// constructor and every top-level value declaration, keyed by name.
	// Backed by swiss.Map rather than a built-in map for the same reason
	// lang/stg uses it for its free-variable sets (lang/stg/freevars.go):
	// a fast open-addressing table keyed by a value that only needs
	// ==/hash, never ordering.
	Globals  *swiss.Map[string, *Binding]
	Idents   map[*ast.Ident]*Binding
	CtorRefs map[*ast.CtorRef]*Binding
	Patterns map[*ast.CtorPattern]*Binding
}

// ResolveChunk resolves every identifier in chunk. The returned error, if
// non-nil, is a *scanner.ErrorList.
func ResolveChunk(fset *token.FileSet, chunk *ast.Chunk) (*Info, error) {
	r := &resolver{
		file: fset.File(chunk.EOF),
		info: &Info{
			Globals:  swiss.NewMap[string, *Binding](8),
			Idents:   make(map[*ast.Ident]*Binding),
			CtorRefs: make(map[*ast.CtorRef]*Binding),
			Patterns: make(map[*ast.CtorPattern]*Binding),
		},
	}
	r.declareGlobals(chunk)
	for _, d := range chunk.Decls {
		if vd, ok := d.(*ast.ValueDecl); ok {
			r.valueDecl(vd)
		}
	}
	r.errs.Sort()
	return r.info, r.errs.Err()
}

type resolver struct {
	file *token.File
	errs scanner.ErrorList
	info *Info

	// scopes is a stack of lexical scopes, innermost last: lambda parameter
	// lists, let-binding groups and case-alternative pattern variables. Local
	// lookup walks it back to front before falling back to globals/builtins.
	scopes []map[string]*Binding
}

func (r *resolver) errorf(pos token.Pos, format string, args ...any) {
	r.errs.Add(r.file.Position(pos), fmt.Sprintf(format, args...))
}

// declareGlobals registers every top-level value name and constructor name
// before resolving any body, so declaration order never matters at the top
// level (spec.md's sample programs define helpers after their first use).
func (r *resolver) declareGlobals(chunk *ast.Chunk) {
	for _, d := range chunk.Decls {
		switch d := d.(type) {
		case *ast.DataDecl:
			for i, c := range d.Ctors {
				if prev, ok := r.info.Globals.Get(c.Name); ok {
					r.errorf(c.Pos, "constructor %s already declared (%s)", c.Name, prev.Scope)
					continue
				}
				r.info.Globals.Put(c.Name, &Binding{Scope: Constructor, Name: c.Name, Index: i, Arity: c.Arity})
			}

		case *ast.ValueDecl:
			if prev, ok := r.info.Globals.Get(d.Name); ok {
				pos, _ := d.Span()
				r.errorf(pos, "%s already declared (%s)", d.Name, prev.Scope)
				continue
			}
			r.info.Globals.Put(d.Name, &Binding{Scope: Global, Name: d.Name, Arity: d.Arity()})
		}
	}
}

func (r *resolver) push(scope map[string]*Binding) { r.scopes = append(r.scopes, scope) }
func (r *resolver) pop()                           { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) declareLocal(scope map[string]*Binding, pos token.Pos, name string) {
	if name == "_" {
		return
	}
	if _, ok := scope[name]; ok {
		r.errorf(pos, "%s already bound in this scope", name)
		return
	}
	scope[name] = &Binding{Scope: Local, Name: name}
}

func (r *resolver) valueDecl(vd *ast.ValueDecl) {
	arity := vd.Arity()
	for _, cl := range vd.Clauses {
		if len(cl.Params) != arity {
			pos, _ := cl.Span()
			r.errorf(pos, "%s: all clauses must take %d parameter(s), got %d", vd.Name, arity, len(cl.Params))
		}
		scope := make(map[string]*Binding, len(cl.Params))
		for _, p := range cl.Params {
			r.pattern(scope, p)
		}
		r.push(scope)
		r.expr(cl.Body)
		r.pop()
	}
}

// pattern declares the variables bound by a clause or case-alternative
// pattern into scope, and resolves the constructor it names, if any.
func (r *resolver) pattern(scope map[string]*Binding, pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.VarPattern:
		r.declareLocal(scope, p.Pos, p.Name)

	case *ast.WildcardPattern:
		// binds nothing

	case *ast.LitPattern:
		// no variables to bind

	case *ast.CtorPattern:
		bdg, ok := r.info.Globals.Get(p.Name)
		if !ok || bdg.Scope != Constructor {
			r.errorf(p.Pos, "undefined constructor: %s", p.Name)
		} else {
			if bdg.Arity != len(p.Args) {
				r.errorf(p.Pos, "constructor %s takes %d argument(s), got %d", p.Name, bdg.Arity, len(p.Args))
			}
			r.info.Patterns[p] = bdg
		}
		for _, name := range p.Args {
			r.declareLocal(scope, p.Pos, name)
		}

	default:
		panic(fmt.Sprintf("unexpected pattern %T", pat))
	}
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.IntLit, *ast.StringLit, *ast.BoolLit:
		// no identifiers to resolve

	case *ast.Ident:
		r.info.Idents[e] = r.use(e.Pos, e.Name)

	case *ast.CtorRef:
		bdg, ok := r.info.Globals.Get(e.Name)
		if !ok || bdg.Scope != Constructor {
			r.errorf(e.Pos, "undefined constructor: %s", e.Name)
			bdg = &Binding{Scope: Undefined, Name: e.Name}
		}
		r.info.CtorRefs[e] = bdg

	case *ast.App:
		r.expr(e.Fn)
		for _, a := range e.Args {
			r.expr(a)
		}

	case *ast.BinOp:
		r.expr(e.X)
		r.expr(e.Y)

	case *ast.UnOp:
		r.expr(e.X)

	case *ast.Lambda:
		scope := make(map[string]*Binding, len(e.Params))
		for _, name := range e.Params {
			r.declareLocal(scope, e.Pos, name)
		}
		r.push(scope)
		r.expr(e.Body)
		r.pop()

	case *ast.Let:
		scope := make(map[string]*Binding, len(e.Binds))
		for _, vd := range e.Binds {
			if _, ok := scope[vd.Name]; ok {
				pos, _ := vd.Span()
				r.errorf(pos, "%s already bound in this let", vd.Name)
				continue
			}
			scope[vd.Name] = &Binding{Scope: Local, Name: vd.Name, Arity: vd.Arity()}
		}
		r.push(scope)
		for _, vd := range e.Binds {
			r.valueDeclLocal(vd)
		}
		r.expr(e.Body)
		r.pop()

	case *ast.CaseExpr:
		r.expr(e.Scrut)
		for _, alt := range e.Alts {
			scope := make(map[string]*Binding)
			r.pattern(scope, alt.Pattern)
			r.push(scope)
			r.expr(alt.Body)
			r.pop()
		}

	default:
		panic(fmt.Sprintf("unexpected expr %T", e))
	}
}

// valueDeclLocal resolves a let-bound value's clauses in the enclosing
// scope stack, which already contains the let group's own names (letrec
// scoping: bindings in a let may refer to one another and to themselves).
func (r *resolver) valueDeclLocal(vd *ast.ValueDecl) {
	arity := vd.Arity()
	for _, cl := range vd.Clauses {
		if len(cl.Params) != arity {
			pos, _ := cl.Span()
			r.errorf(pos, "%s: all clauses must take %d parameter(s), got %d", vd.Name, arity, len(cl.Params))
		}
		scope := make(map[string]*Binding, len(cl.Params))
		for _, p := range cl.Params {
			r.pattern(scope, p)
		}
		r.push(scope)
		r.expr(cl.Body)
		r.pop()
	}
}

// use resolves name in the innermost scope containing it, falling back to
// the constructor/global table and then the builtin table.
func (r *resolver) use(pos token.Pos, name string) *Binding {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if bdg, ok := r.scopes[i][name]; ok {
			return bdg
		}
	}
	if bdg, ok := r.info.Globals.Get(name); ok {
		return bdg
	}
	if arity, ok := Builtins[name]; ok {
		return &Binding{Scope: Builtin, Name: name, Arity: arity}
	}
	r.errorf(pos, "undefined: %s", name)
	return &Binding{Scope: Undefined, Name: name}
}
