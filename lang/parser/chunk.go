package parser

import (
	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/token"
)

// parseChunk parses "(decl ';')* decl? EOF", i.e. semicolon-separated
// declarations with an optional trailing separator, matching every source
// example in spec.md §8 (S1's single declaration has no semicolon at all;
// S4/S5 chain several declarations with one).
func (p *parser) parseChunk(name string) *ast.Chunk {
	ch := &ast.Chunk{Name: name}
	for !p.at(token.EOF) {
		d := p.parseDecl()
		if d != nil {
			ch.Decls = append(ch.Decls, d)
		}
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		break
	}
	ch.EOF = p.expect(token.EOF).Value.Pos
	ch.Decls = mergeClauses(ch.Decls)
	return ch
}

func (p *parser) parseDecl() ast.Decl {
	if p.at(token.DATA) {
		return p.parseDataDecl()
	}
	return p.parseValueClause()
}

func (p *parser) parseDataDecl() *ast.DataDecl {
	start := p.expect(token.DATA).Value.Pos
	name := p.expect(token.CTOR).Value.Raw
	p.expect(token.EQ)

	d := &ast.DataDecl{Name: name, Pos: start}
	for {
		d.Ctors = append(d.Ctors, p.parseCtorDecl())
		if p.at(token.PIPE) {
			p.advance()
			continue
		}
		break
	}
	_, end := d.Ctors[len(d.Ctors)-1].Span()
	d.End = end
	return d
}

func (p *parser) parseCtorDecl() *ast.CtorDecl {
	tv := p.expect(token.CTOR)
	c := &ast.CtorDecl{Name: tv.Value.Raw, Pos: tv.Value.Pos}
	for p.at(token.CTOR) {
		c.Fields = append(c.Fields, p.advance().Value.Raw)
	}
	c.Arity = len(c.Fields)
	return c
}

// parseValueClause parses one equation "name pat* = expr" and returns it
// wrapped in a ValueDecl so mergeClauses can fold consecutive equations for
// the same name without re-parsing.
func (p *parser) parseValueClause() *ast.ValueDecl {
	tv := p.expect(token.IDENT)
	clause := &ast.Clause{Pos: tv.Value.Pos}
	for !p.at(token.EQ) && !p.at(token.EOF) {
		clause.Params = append(clause.Params, p.parsePatternAtom())
	}
	p.expect(token.EQ)
	clause.Body = p.parseExpr()
	return &ast.ValueDecl{Name: tv.Value.Raw, Clauses: []*ast.Clause{clause}}
}

// mergeClauses groups consecutive ValueDecls with the same name into one
// ValueDecl with several Clauses, the representation lang/simplify expects
// (spec.md §4.1's pattern-match compilation consumes one name's equations
// together). DataDecls pass through untouched.
func mergeClauses(decls []ast.Decl) []ast.Decl {
	var out []ast.Decl
	for _, d := range decls {
		vd, ok := d.(*ast.ValueDecl)
		if !ok {
			out = append(out, d)
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(*ast.ValueDecl); ok && prev.Name == vd.Name {
				prev.Clauses = append(prev.Clauses, vd.Clauses...)
				continue
			}
		}
		out = append(out, vd)
	}
	return out
}
