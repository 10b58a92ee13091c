package parser

import (
	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/token"
)

// parsePatternAtom parses one clause-parameter or case-alternative pattern.
// The grammar only admits shallow patterns (spec.md §1 leaves nested-pattern
// compilation out of scope): a literal, a variable, a wildcard, or a
// constructor applied to bare variable names, the last two requiring
// parentheses as soon as the constructor takes at least one argument.
func (p *parser) parsePatternAtom() ast.Pattern {
	tv := p.cur()
	switch tv.Token {
	case token.INT:
		p.advance()
		return &ast.LitPattern{Lit: &ast.IntLit{Value: tv.Value.Int, Pos: tv.Value.Pos}}

	case token.STRING:
		p.advance()
		return &ast.LitPattern{Lit: &ast.StringLit{Value: tv.Value.String, Pos: tv.Value.Pos}}

	case token.IDENT:
		p.advance()
		if tv.Value.Raw == "_" {
			return &ast.WildcardPattern{Pos: tv.Value.Pos}
		}
		return &ast.VarPattern{Name: tv.Value.Raw, Pos: tv.Value.Pos}

	case token.CTOR:
		p.advance()
		return &ast.CtorPattern{Name: tv.Value.Raw, Pos: tv.Value.Pos, End: tv.Value.Pos}

	case token.LPAREN:
		p.advance()
		ctor := p.expect(token.CTOR)
		cp := &ast.CtorPattern{Name: ctor.Value.Raw, Pos: ctor.Value.Pos}
		for p.at(token.IDENT) {
			cp.Args = append(cp.Args, p.advance().Value.Raw)
		}
		cp.End = p.expect(token.RPAREN).Value.Pos
		return cp

	default:
		p.errorf(tv.Value.Pos, "expected pattern, got %s %q", tv.Token, tv.Value.Raw)
		p.advance()
		return &ast.WildcardPattern{Pos: tv.Value.Pos}
	}
}

// binopPrec assigns each binary operator token a precedence level; a higher
// number binds tighter. Application binds tighter than every operator here,
// so it is handled separately by parseApp before precedence climbing begins.
func binopPrec(tok token.Token) int {
	switch tok {
	case token.STAR, token.SLASH:
		return 5
	case token.PLUS, token.MINUS, token.PLUSPLUS:
		return 4
	case token.LT, token.LE, token.GT, token.GE, token.EQEQ, token.NEQ:
		return 3
	}
	return -1
}

// parseExpr parses a full expression.
func (p *parser) parseExpr() ast.Expr {
	return p.parseBinExpr(0)
}

// parseBinExpr implements precedence climbing over the left-associative
// binary operators; everything tighter than an operator (application, unary
// minus, atoms) is handled by parseUnary/parseApp/parseAtom.
func (p *parser) parseBinExpr(minPrec int) ast.Expr {
	x := p.parseUnary()
	for {
		tok := p.cur().Token
		prec := binopPrec(tok)
		if prec < minPrec {
			return x
		}
		p.advance()
		y := p.parseBinExpr(prec + 1)
		x = &ast.BinOp{Op: tok, X: x, Y: y}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if p.at(token.MINUS) {
		tv := p.advance()
		x := p.parseUnary()
		return &ast.UnOp{Op: token.MINUS, X: x, Pos: tv.Value.Pos}
	}
	return p.parseApp()
}

// parseApp parses a chain of juxtaposed atoms: "f x y" parses as a single
// App{Fn: f, Args: [x, y]}. Parenthesizing a sub-application, as in
// "(f x) y", nests one App inside another's Fn; lang/stg's
// GatherApplications flattens that case back down before lowering.
func (p *parser) parseApp() ast.Expr {
	fn := p.parseAtom()
	var args []ast.Expr
	for p.startsAtom() {
		args = append(args, p.parseAtom())
	}
	if len(args) == 0 {
		return fn
	}
	return &ast.App{Fn: fn, Args: args}
}

// startsAtom reports whether the current token can begin an atom, so
// parseApp knows when the application chain has ended.
func (p *parser) startsAtom() bool {
	switch p.cur().Token {
	case token.INT, token.STRING, token.IDENT, token.CTOR, token.LPAREN,
		token.BACKSLASH, token.LET, token.CASE, token.TRUE, token.FALSE:
		return true
	}
	return false
}

func (p *parser) parseAtom() ast.Expr {
	tv := p.cur()
	switch tv.Token {
	case token.INT:
		p.advance()
		return &ast.IntLit{Value: tv.Value.Int, Pos: tv.Value.Pos}

	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tv.Value.String, Pos: tv.Value.Pos}

	case token.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Pos: tv.Value.Pos}

	case token.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Pos: tv.Value.Pos}

	case token.IDENT:
		p.advance()
		return &ast.Ident{Name: tv.Value.Raw, Pos: tv.Value.Pos}

	case token.CTOR:
		p.advance()
		return &ast.CtorRef{Name: tv.Value.Raw, Pos: tv.Value.Pos}

	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e

	case token.BACKSLASH:
		return p.parseLambda()

	case token.LET:
		return p.parseLet()

	case token.CASE:
		return p.parseCase()

	default:
		p.errorf(tv.Value.Pos, "expected expression, got %s %q", tv.Token, tv.Value.Raw)
		p.advance()
		return &ast.Ident{Name: "", Pos: tv.Value.Pos}
	}
}

// parseLambda parses "\x y -> body".
func (p *parser) parseLambda() ast.Expr {
	start := p.expect(token.BACKSLASH).Value.Pos
	l := &ast.Lambda{Pos: start}
	for p.at(token.IDENT) {
		l.Params = append(l.Params, p.advance().Value.Raw)
	}
	p.expect(token.ARROW)
	l.Body = p.parseExpr()
	return l
}

// parseLet parses "let decl (';' decl)* in body".
func (p *parser) parseLet() ast.Expr {
	start := p.expect(token.LET).Value.Pos
	l := &ast.Let{Pos: start}
	var decls []ast.Decl
	for {
		decls = append(decls, p.parseValueClause())
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		break
	}
	merged := mergeClauses(decls)
	for _, d := range merged {
		l.Binds = append(l.Binds, d.(*ast.ValueDecl))
	}
	p.expect(token.IN)
	l.Body = p.parseExpr()
	return l
}

// parseCase parses "case scrut of ( pat '->' expr (';' pat '->' expr)* )".
func (p *parser) parseCase() ast.Expr {
	start := p.expect(token.CASE).Value.Pos
	scrut := p.parseExpr()
	p.expect(token.OF)
	p.expect(token.LPAREN)

	c := &ast.CaseExpr{Scrut: scrut, Pos: start}
	for {
		pat := p.parsePatternAtom()
		p.expect(token.ARROW)
		body := p.parseExpr()
		c.Alts = append(c.Alts, &ast.CaseAlt{Pattern: pat, Body: body})
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		break
	}
	c.End = p.expect(token.RPAREN).Value.Pos
	return c
}
