package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/parser"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, chunk, err := parser.ParseFile(path)
	require.NoError(t, err)
	return chunk
}

func TestParseDataDecl(t *testing.T) {
	chunk := parseString(t, `data List = Nil | Cons Int List`)
	require.Len(t, chunk.Decls, 1)
	dd, ok := chunk.Decls[0].(*ast.DataDecl)
	require.True(t, ok)
	require.Equal(t, "List", dd.Name)
	require.Len(t, dd.Ctors, 2)
	require.Equal(t, "Nil", dd.Ctors[0].Name)
	require.Equal(t, 0, dd.Ctors[0].Arity)
	require.Equal(t, "Cons", dd.Ctors[1].Name)
	require.Equal(t, 2, dd.Ctors[1].Arity)
}

func TestParseValueClausesMerge(t *testing.T) {
	chunk := parseString(t, `sum Nil = 0; sum (Cons x xs) = x + sum xs`)
	require.Len(t, chunk.Decls, 1)
	vd, ok := chunk.Decls[0].(*ast.ValueDecl)
	require.True(t, ok)
	require.Equal(t, "sum", vd.Name)
	require.Len(t, vd.Clauses, 2)
	require.Equal(t, 1, vd.Arity())
}

func TestParseLambdaAndApp(t *testing.T) {
	chunk := parseString(t, `main = (\x y -> x + y) 1 2`)
	vd := chunk.Decls[0].(*ast.ValueDecl)
	app, ok := vd.Clauses[0].Body.(*ast.App)
	require.True(t, ok)
	require.Len(t, app.Args, 2)
	_, ok = app.Fn.(*ast.Lambda)
	require.True(t, ok)
}

func TestParseCase(t *testing.T) {
	chunk := parseString(t, `len Nil = 0; len (Cons x xs) = 1 + len xs`)
	vd := chunk.Decls[0].(*ast.ValueDecl)
	require.Len(t, vd.Clauses, 2)
}

func TestParseCaseExpr(t *testing.T) {
	chunk := parseString(t, `f n = case n of ( 0 -> True; _ -> False )`)
	vd := chunk.Decls[0].(*ast.ValueDecl)
	ce, ok := vd.Clauses[0].Body.(*ast.CaseExpr)
	require.True(t, ok)
	require.Len(t, ce.Alts, 2)
}

func TestParseLet(t *testing.T) {
	chunk := parseString(t, `main = let x = 1; y = 2 in x + y`)
	vd := chunk.Decls[0].(*ast.ValueDecl)
	lt, ok := vd.Clauses[0].Body.(*ast.Let)
	require.True(t, ok)
	require.Len(t, lt.Binds, 2)
}
