// Package parser implements a recursive-descent parser producing
// lang/ast trees from a thistle source file.
package parser

import (
	"fmt"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// ParseFile parses the single source file at path. A syntax error is
// returned as an *ErrorList-compatible error; a best-effort Chunk is still
// returned alongside it so the "parse" CLI command can print whatever was
// recovered.
func ParseFile(path string) (*token.FileSet, *ast.Chunk, error) {
	fs, toks, err := scanner.ScanFile(path)
	if err != nil {
		return fs, nil, err
	}

	p := &parser{file: fs.File(toks[0].Value.Pos), toks: toks}
	chunk := p.parseChunk(path)
	p.errs.Sort()
	return fs, chunk, p.errs.Err()
}

// parser holds the token stream and one token of lookahead, in the same
// shape as the teacher's parser: a flat slice of pre-scanned tokens walked
// by index rather than pulled lazily from the scanner.
type parser struct {
	file *token.File
	toks []scanner.TokenAndValue
	pos  int
	errs ErrorList
}

func (p *parser) cur() scanner.TokenAndValue { return p.toks[p.pos] }

func (p *parser) at(tok token.Token) bool { return p.cur().Token == tok }

func (p *parser) advance() scanner.TokenAndValue {
	tv := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tv
}

func (p *parser) expect(tok token.Token) scanner.TokenAndValue {
	tv := p.cur()
	if tv.Token != tok {
		p.errorf(tv.Value.Pos, "expected %s, got %s %q", tok, tv.Token, tv.Value.Raw)
		return tv
	}
	return p.advance()
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.errs.Add(p.file.Position(pos), fmt.Sprintf(format, args...))
}
