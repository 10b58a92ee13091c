package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/ast"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/stretchr/testify/require"
)

func resolveString(t *testing.T, src string) (*ast.Chunk, *resolver.Info, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	fset, chunk, err := parser.ParseFile(path)
	require.NoError(t, err)
	info, err := resolver.ResolveChunk(fset, chunk)
	return chunk, info, err
}

func TestResolveConstructorsAndGlobals(t *testing.T) {
	chunk, info, err := resolveString(t, `data List = Nil | Cons Int List;
sum Nil = 0;
sum (Cons x xs) = x + sum xs`)
	require.NoError(t, err)

	nilB, ok := info.Globals.Get("Nil")
	require.True(t, ok)
	require.Equal(t, resolver.Constructor, nilB.Scope)
	require.Equal(t, 0, nilB.Index)
	require.Equal(t, 0, nilB.Arity)

	consB, ok := info.Globals.Get("Cons")
	require.True(t, ok)
	require.Equal(t, resolver.Constructor, consB.Scope)
	require.Equal(t, 1, consB.Index)
	require.Equal(t, 2, consB.Arity)

	sumB, ok := info.Globals.Get("sum")
	require.True(t, ok)
	require.Equal(t, resolver.Global, sumB.Scope)
	require.Equal(t, 1, sumB.Arity)

	vd := chunk.Decls[1].(*ast.ValueDecl)
	cp := vd.Clauses[1].Params[0].(*ast.CtorPattern)
	bdg, ok := info.Patterns[cp]
	require.True(t, ok)
	require.Equal(t, "Cons", bdg.Name)
}

func TestResolveUndefined(t *testing.T) {
	_, _, err := resolveString(t, `main = unknownName`)
	require.Error(t, err)
}

func TestResolveConstructorArityMismatch(t *testing.T) {
	_, _, err := resolveString(t, `data List = Nil | Cons Int List;
bad = Cons 1`)
	require.Error(t, err)
}

func TestResolveLetAndLambda(t *testing.T) {
	_, _, err := resolveString(t, `main = let double = \x -> x + x in double 21`)
	require.NoError(t, err)
}

func TestResolveBuiltin(t *testing.T) {
	chunk, info, err := resolveString(t, `main = printInt 42`)
	require.NoError(t, err)

	vd := chunk.Decls[0].(*ast.ValueDecl)
	app := vd.Clauses[0].Body.(*ast.App)
	ident := app.Fn.(*ast.Ident)

	bdg, ok := info.Idents[ident]
	require.True(t, ok)
	require.Equal(t, resolver.Builtin, bdg.Scope)
	require.Equal(t, 1, bdg.Arity)
}
