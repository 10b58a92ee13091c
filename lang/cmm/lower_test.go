package cmm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/cmm"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/stg"
	"github.com/stretchr/testify/require"
)

func lowerSource(t *testing.T, src string) *cmm.Program {
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
	stgProg, err := stg.LowerAndAnalyze(typed)
	require.NoError(t, err)
	prog, err := cmm.Lower(stgProg)
	require.NoError(t, err)
	return prog
}

func TestLowerS1EntryEndsInCaseContinuation(t *testing.T) {
	prog := lowerSource(t, `main = printInt 42`)
	require.NotNil(t, prog.Entry)
	require.Equal(t, cmm.BodyNormal, prog.Entry.Body.Kind)
	instrs := prog.Entry.Body.Instrs
	require.NotEmpty(t, instrs)
	require.Equal(t, cmm.OpEnterCaseContinuation, instrs[len(instrs)-1].Op)

	var sawBuiltin bool
	for _, ins := range instrs {
		if ins.Op == cmm.OpBuiltin1 && ins.BuiltinOp == "PrintInt" {
			sawBuiltin = true
		}
	}
	require.True(t, sawBuiltin)
}

func TestLowerS3FunctionHasArgCount(t *testing.T) {
	prog := lowerSource(t, `f x = x + 1;
main = printInt (f (f 10))`)

	var f *cmm.Function
	for _, fn := range prog.Functions {
		if fn.Name.String() == "f" {
			f = fn
		}
	}
	require.NotNil(t, f)
	require.Equal(t, 1, f.ArgCount)
	require.Equal(t, cmm.BodyNormal, f.Body.Kind)
}

func TestLowerS4CaseProducesAltsSubFunction(t *testing.T) {
	prog := lowerSource(t, `data L = N | C Int L;
sum N = 0;
sum (C x xs) = x + sum xs;
main = printInt (sum (C 1 (C 2 (C 3 N))))`)

	var sum *cmm.Function
	for _, fn := range prog.Functions {
		if fn.Name.String() == "sum" {
			sum = fn
		}
	}
	require.NotNil(t, sum)
	require.Equal(t, cmm.BodyNormal, sum.Body.Kind)

	require.Len(t, sum.SubFunctions, 1)
	alts := sum.SubFunctions[0]
	require.Equal(t, cmm.FuncAlts, alts.Name.Kind)
	require.Equal(t, cmm.BodyCase, alts.Body.Kind)

	var sawDefault bool
	for _, sel := range alts.Body.Selectors {
		if sel.IsDefault {
			sawDefault = true
		}
	}
	require.True(t, sawDefault)

	require.NotEmpty(t, prog.Ctors)
	var cTable *cmm.CtorTable
	for i := range prog.Ctors {
		if prog.Ctors[i].Ctor == "C" {
			cTable = &prog.Ctors[i]
		}
	}
	require.NotNil(t, cTable)
	require.Equal(t, 1, cTable.Pointers) // the tail field
	require.Equal(t, 1, cTable.Ints)     // the Int head field
}

func TestLowerS6ConcatIsBuiltin2(t *testing.T) {
	prog := lowerSource(t, `main = printString ("hello" ++ " " ++ "world")`)
	var sawConcat bool
	for _, ins := range prog.Entry.Body.Instrs {
		if ins.Op == cmm.OpBuiltin2 && ins.BuiltinOp == "Concat" {
			sawConcat = true
		}
	}
	require.True(t, sawConcat)
}
