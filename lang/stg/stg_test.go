package stg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/stg"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) *stg.Program {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	fset, chunk, err := parser.ParseFile(path)
	require.NoError(t, err)
	info, err := resolver.ResolveChunk(fset, chunk)
	require.NoError(t, err)
	typed, err := simplify.Simplify(chunk, info)
	require.NoError(t, err)
	prog, err := stg.LowerAndAnalyze(typed)
	require.NoError(t, err)
	return prog
}

func TestLowerS1(t *testing.T) {
	prog := lowerSource(t, `main = printInt 42`)
	require.Empty(t, prog.Entry.Params)
	b, ok := prog.Entry.Body.(stg.Builtin)
	require.True(t, ok)
	require.Equal(t, "PrintInt", b.Op)
	require.Equal(t, stg.IntAtom{Value: 42}, b.Args[0])
}

func TestLowerS3SharesGlobalAcrossApplications(t *testing.T) {
	prog := lowerSource(t, `f x = x + 1;
main = printInt (f (f 10))`)
	require.Len(t, prog.Binds, 1)
	require.Equal(t, "f", prog.Binds[0].Name)
	// lang/simplify draws type variables and argument names from one
	// counter: f's stub type takes 1-2, main's takes 3, so f's argument
	// is the fourth fresh name.
	require.Equal(t, []string{"$arg4"}, prog.Binds[0].Form.Params)

	idx, ok := prog.GlobalIndex["f"]
	require.True(t, ok)
	require.NotEqual(t, 0, idx)
	require.Equal(t, 0, prog.GlobalIndex[stg.EntryName])
}

func TestLowerS4ConstructorsAndCase(t *testing.T) {
	prog := lowerSource(t, `data L = N | C Int L
sum N = 0
sum (C x xs) = x + sum xs
main = printInt (sum (C 1 (C 2 (C 3 N))))`)

	require.Contains(t, prog.CtorFields, "C")
	require.Equal(t, []stg.StorageKind{stg.IntStorage, stg.PointerStorage}, prog.CtorFields["C"])
	require.Empty(t, prog.CtorFields["N"])

	var sumBind *stg.Binding
	for i := range prog.Binds {
		if prog.Binds[i].Name == "sum" {
			sumBind = &prog.Binds[i]
		}
	}
	require.NotNil(t, sumBind)

	c, ok := sumBind.Form.Body.(stg.Case)
	require.True(t, ok)
	require.Equal(t, stg.AltCtor, c.Alts.Kind)
	require.Len(t, c.Alts.Ctors, 1)
	require.Equal(t, "N", c.Alts.Ctors[0].Ctor)
	require.NotNil(t, c.Alts.Default.Body)
}

func TestLowerS5LazinessProducesThunkBinding(t *testing.T) {
	prog := lowerSource(t, `data L = N | C Int L;
ones = C 1 ones;
take 0 _ = N;
take n (C x xs) = C x (take (n-1) xs);
sumL N = 0;
sumL (C x xs) = x + sumL xs;
main = printInt (sumL (take 5 ones))`)

	var onesBind *stg.Binding
	for i := range prog.Binds {
		if prog.Binds[i].Name == "ones" {
			onesBind = &prog.Binds[i]
		}
	}
	require.NotNil(t, onesBind)
	require.Empty(t, onesBind.Form.Params)
	require.Equal(t, stg.Updateable, onesBind.Form.Update)

	ctorApp, ok := onesBind.Form.Body.(stg.ConstrApp)
	require.True(t, ok)
	require.Equal(t, "C", ctorApp.Ctor)
	// ones references itself recursively; since it is a global it resolves
	// via GlobalStorage and carries no closure field.
	require.Empty(t, onesBind.Form.FreeVars)
}

func TestAtomizeLetBindsNonAtomicArgument(t *testing.T) {
	prog := lowerSource(t, `main = printInt (1 + 2 * 3)`)
	// The argument (1 + 2*3) is not itself an atom, so it must be let-bound
	// before being passed to PrintInt.
	let, ok := prog.Entry.Body.(stg.Let)
	require.True(t, ok)
	require.Len(t, let.Binds, 1)

	// 2 * 3 is not an atom either, so the Add binding's own body is a Let
	// binding the Mul before applying Add.
	inner, ok := let.Binds[0].Form.Body.(stg.Let)
	require.True(t, ok)
	require.Len(t, inner.Binds, 1)
	add, ok := inner.Body.(stg.Builtin)
	require.True(t, ok)
	require.Equal(t, "Add", add.Op)

	call, ok := let.Body.(stg.Builtin)
	require.True(t, ok)
	require.Equal(t, "PrintInt", call.Op)
	require.Equal(t, stg.NameAtom{Name: let.Binds[0].Name}, call.Args[0])
}
