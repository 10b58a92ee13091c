package simplify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/typedast"
	"github.com/stretchr/testify/require"
)

func simplifySource(t *testing.T, src string) *typedast.Program {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	fset, chunk, err := parser.ParseFile(path)
	require.NoError(t, err)
	info, err := resolver.ResolveChunk(fset, chunk)
	require.NoError(t, err)
	prog, err := simplify.Simplify(chunk, info)
	require.NoError(t, err)
	return prog
}

// TestSimplifyS1 covers spec scenario S1: main = printInt 42.
func TestSimplifyS1(t *testing.T) {
	prog := simplifySource(t, `main = printInt 42`)
	require.Len(t, prog.Defs, 1)
	def := prog.Defs[0]
	require.Equal(t, "main", def.Name)
	b, ok := def.Body.(*typedast.Builtin)
	require.True(t, ok)
	require.Equal(t, "PrintInt", b.Op)
}

// TestSimplifyS2 covers spec scenario S2: operator precedence.
func TestSimplifyS2(t *testing.T) {
	prog := simplifySource(t, `main = printInt (1 + 2 * 3)`)
	def := prog.Defs[0]
	call := def.Body.(*typedast.Builtin)
	require.Equal(t, "PrintInt", call.Op)
	add := call.Args[0].(*typedast.Builtin)
	require.Equal(t, "Add", add.Op)
	mul := add.Args[1].(*typedast.Builtin)
	require.Equal(t, "Mul", mul.Op)
}

// TestSimplifyS4 covers spec scenario S4: data declaration, recursive sum.
func TestSimplifyS4(t *testing.T) {
	prog := simplifySource(t, `data L = N | C Int L;
sum N = 0;
sum (C x xs) = x + sum xs;
main = printInt (sum (C 1 (C 2 (C 3 N))))`)

	require.Contains(t, prog.Ctors, "N")
	require.Contains(t, prog.Ctors, "C")
	require.Equal(t, 0, prog.Ctors["N"].Tag)
	require.Equal(t, 1, prog.Ctors["C"].Tag)
	require.Equal(t, 2, prog.Ctors["C"].Arity)

	var sumDef *typedast.Def
	for _, d := range prog.Defs {
		if d.Name == "sum" {
			sumDef = d
		}
	}
	require.NotNil(t, sumDef)
	require.Len(t, sumDef.Params, 1)

	c, ok := sumDef.Body.(*typedast.Case)
	require.True(t, ok)
	require.Len(t, c.Alts, 1)
	require.Equal(t, typedast.AltCtor, c.Alts[0].Kind)
	require.Equal(t, "N", c.Alts[0].Ctor)
	require.NotNil(t, c.Default)
}

// TestSimplifyS5 covers spec scenario S5: laziness via a self-referential
// zero-arity definition and a take-style recursive function with a literal
// pattern clause.
func TestSimplifyS5(t *testing.T) {
	prog := simplifySource(t, `data L = N | C Int L;
ones = C 1 ones;
take 0 _ = N;
take n (C x xs) = C x (take (n-1) xs);
sumL N = 0;
sumL (C x xs) = x + sumL xs;
main = printInt (sumL (take 5 ones))`)

	var onesDef *typedast.Def
	for _, d := range prog.Defs {
		if d.Name == "ones" {
			onesDef = d
		}
	}
	require.NotNil(t, onesDef)
	require.Empty(t, onesDef.Params)
	ctorApp, ok := onesDef.Body.(*typedast.CtorApp)
	require.True(t, ok)
	require.Equal(t, "C", ctorApp.Ctor)
}

func TestSimplifyCaseExpr(t *testing.T) {
	prog := simplifySource(t, `f n = case n of ( 0 -> True; _ -> False )`)
	def := prog.Defs[0]
	c, ok := def.Body.(*typedast.Case)
	require.True(t, ok)
	require.Len(t, c.Alts, 1)
	require.Equal(t, typedast.AltInt, c.Alts[0].Kind)
	require.NotNil(t, c.Default)
}

func TestSimplifyTypeMismatchErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(`main = printInt ("a" + 1)`), 0o644))

	fset, chunk, err := parser.ParseFile(path)
	require.NoError(t, err)
	info, err := resolver.ResolveChunk(fset, chunk)
	require.NoError(t, err)
	_, err = simplify.Simplify(chunk, info)
	require.Error(t, err)
}
