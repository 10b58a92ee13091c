package scanner

import (
	"testing"

	"github.com/mna/thistle/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []TokenAndValue {
	t.Helper()
	fs := token.NewFileSet()
	f := fs.AddFile("test.thst", -1, len(src))
	var s Scanner
	var el ErrorList
	s.Init(f, []byte(src), el.Add)

	var toks []TokenAndValue
	var v token.Value
	for {
		tok := s.Scan(&v)
		toks = append(toks, TokenAndValue{Token: tok, Value: v})
		if tok == token.EOF {
			break
		}
	}
	require.NoError(t, el.Err())
	return toks
}

func TestScanBasics(t *testing.T) {
	toks := scanAll(t, `main = printInt (1 + 2 * 3)`)
	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Token)
	}
	require.Equal(t, []token.Token{
		token.IDENT, token.EQ, token.IDENT, token.LPAREN,
		token.INT, token.PLUS, token.INT, token.STAR, token.INT,
		token.RPAREN, token.EOF,
	}, kinds)
}

func TestScanCtorAndString(t *testing.T) {
	toks := scanAll(t, `data L = N | C Int L
main = printString ("hello" ++ " world")`)
	require.Equal(t, token.DATA, toks[0].Token)
	require.Equal(t, token.CTOR, toks[3].Token) // N

	var sawString int
	for _, tv := range toks {
		if tv.Token == token.STRING {
			sawString++
		}
	}
	require.Equal(t, 2, sawString)
}

func TestScanComment(t *testing.T) {
	toks := scanAll(t, "-- a comment\nmain = printInt 1")
	require.Equal(t, token.IDENT, toks[0].Token)
	require.Equal(t, "main", toks[0].Value.Raw)
}
