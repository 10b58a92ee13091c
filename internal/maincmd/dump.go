package maincmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/token"
)

// dumper prints a Chunk's tree one node per line, indented by nesting
// depth and annotated with its source position, in the style the parser
// and resolver debug commands share.
type dumper struct {
	w     io.Writer
	fs    *token.FileSet
	pos   token.PosMode
	info  *resolver.Info // nil unless invoked from the resolve command
	depth int
}

func (d *dumper) line(p token.Pos, format string, args ...interface{}) {
	pad := strings.Repeat("  ", d.depth)
	loc := token.FormatPos(d.pos, d.fs.File(p), p, false)
	fmt.Fprintf(d.w, "%s%s: %s\n", pad, loc, fmt.Sprintf(format, args...))
}

func (d *dumper) chunk(c *ast.Chunk) {
	for _, decl := range c.Decls {
		d.decl(decl)
	}
}

func (d *dumper) decl(decl ast.Decl) {
	switch dd := decl.(type) {
	case *ast.DataDecl:
		d.line(dd.Pos, "data %s", dd.Name)
		d.depth++
		for _, ct := range dd.Ctors {
			d.line(ct.Pos, "ctor %s/%d", ct.Name, ct.Arity)
		}
		d.depth--
	case *ast.ValueDecl:
		for _, cl := range dd.Clauses {
			start, _ := cl.Span()
			d.line(start, "value %s/%d", dd.Name, len(cl.Params))
			d.depth++
			d.expr(cl.Body)
			d.depth--
		}
	}
}

func (d *dumper) pattern(p ast.Pattern) {
	switch pp := p.(type) {
	case *ast.VarPattern:
		d.line(pp.Pos, "pattern var %s", pp.Name)
	case *ast.WildcardPattern:
		d.line(pp.Pos, "pattern _")
	case *ast.CtorPattern:
		d.line(pp.Pos, "pattern %s %s", pp.Name, strings.Join(pp.Args, " "))
	case *ast.LitPattern:
		start, _ := pp.Lit.Span()
		d.line(start, "pattern literal")
		d.depth++
		d.expr(pp.Lit)
		d.depth--
	}
}

func (d *dumper) expr(e ast.Expr) {
	switch ee := e.(type) {
	case *ast.IntLit:
		d.line(ee.Pos, "int %d", ee.Value)
	case *ast.StringLit:
		d.line(ee.Pos, "string %q", ee.Value)
	case *ast.BoolLit:
		d.line(ee.Pos, "bool %v", ee.Value)
	case *ast.Ident:
		kind := "ident"
		if d.info != nil {
			if b, ok := d.info.Idents[ee]; ok {
				kind = fmt.Sprintf("ident -> %s", b.Scope)
			}
		}
		d.line(ee.Pos, "%s %s", kind, ee.Name)
	case *ast.CtorRef:
		kind := "ctor-ref"
		if d.info != nil {
			if b, ok := d.info.CtorRefs[ee]; ok {
				kind = fmt.Sprintf("ctor-ref -> %s", b.Scope)
			}
		}
		d.line(ee.Pos, "%s %s", kind, ee.Name)
	case *ast.App:
		start, _ := ee.Span()
		d.line(start, "app")
		d.depth++
		d.expr(ee.Fn)
		for _, a := range ee.Args {
			d.expr(a)
		}
		d.depth--
	case *ast.BinOp:
		start, _ := ee.Span()
		d.line(start, "binop %s", ee.Op)
		d.depth++
		d.expr(ee.X)
		d.expr(ee.Y)
		d.depth--
	case *ast.UnOp:
		d.line(ee.Pos, "unop %s", ee.Op)
		d.depth++
		d.expr(ee.X)
		d.depth--
	case *ast.Lambda:
		d.line(ee.Pos, "lambda %s", strings.Join(ee.Params, " "))
		d.depth++
		d.expr(ee.Body)
		d.depth--
	case *ast.Let:
		d.line(ee.Pos, "let")
		d.depth++
		for _, b := range ee.Binds {
			d.decl(b)
		}
		d.expr(ee.Body)
		d.depth--
	case *ast.CaseExpr:
		d.line(ee.Pos, "case")
		d.depth++
		d.expr(ee.Scrut)
		for _, alt := range ee.Alts {
			start, _ := alt.Span()
			d.line(start, "alt")
			d.depth++
			d.pattern(alt.Pattern)
			d.expr(alt.Body)
			d.depth--
		}
		d.depth--
	}
}
