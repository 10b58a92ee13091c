package cemit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/thistle/lang/cemit"
	"github.com/mna/thistle/lang/cmm"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/stg"
	"github.com/stretchr/testify/require"
)

func emitSource(t *testing.T, src string, opts ...cemit.Options) string {
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
	cmmProg, err := cmm.Lower(stgProg)
	require.NoError(t, err)
	out, err := cemit.Emit(cmmProg, opts...)
	require.NoError(t, err)
	return out
}

func TestEmitPreludeAndMain(t *testing.T) {
	out := emitSource(t, `main = printInt 42`)
	require.Contains(t, out, `#include "runtime.h"`)
	require.Contains(t, out, "int main(void) {")
	require.Contains(t, out, "setup(128, 1024);")
	require.Contains(t, out, "push_continuation(runtime_exit);")
	require.Contains(t, out, "while (l) { l = (Label)l(); }")
}

func TestEmitOptionsOverrideHeapAndStackSize(t *testing.T) {
	out := emitSource(t, `main = printInt 1`, cemit.Options{HeapSize: 4096, StackSize: 65536})
	require.Contains(t, out, "setup(4096, 65536);")
}

func TestEmitZeroOptionsFallBackToDefaults(t *testing.T) {
	out := emitSource(t, `main = printInt 1`, cemit.Options{})
	require.Contains(t, out, "setup(128, 1024);")
}

func TestEmitBuiltinCallsMapToRuntimeFuncs(t *testing.T) {
	out := emitSource(t, `main = printInt (1 + 2)`)
	require.Contains(t, out, "builtin_add(")
	require.Contains(t, out, "builtin_print_int(")
}

func TestEmitConcatUsesBuiltinConcat(t *testing.T) {
	out := emitSource(t, `main = printString ("hello" ++ " world")`)
	require.Contains(t, out, "builtin_concat(")
}

func TestEmitCaseProducesSwitchAndCtorInfoTable(t *testing.T) {
	out := emitSource(t, `data L = N | C Int L;
sum N = 0;
sum (C x xs) = x + sum xs;
main = printInt (sum (C 1 (C 2 N)))`)

	require.Contains(t, out, "switch (TagRegister) {")
	require.Contains(t, out, `const InfoTable ctor_C_info = {"C", ctor_C_entry, ctor_C_evac};`)
	require.Contains(t, out, `const InfoTable ctor_N_info = {"N", ctor_N_entry, ctor_N_evac};`)
}

func TestEmitTopLevelFunctionGetsClosureInfoTableAndGlobalSlot(t *testing.T) {
	out := emitSource(t, `f x = x + 1;
main = printInt (f 10)`)

	require.Contains(t, out, "static void *fn_f(void);")
	require.Contains(t, out, "const InfoTable fn_f_info = {\"f\", fn_f, fn_f_evac};")
	require.Contains(t, out, "Globals[")
}

func TestEmitStringLiteralInternedOnce(t *testing.T) {
	out := emitSource(t, `main = printString ("hi" ++ "hi")`)
	require.Contains(t, out, `lit_0_storage = { &static_string_info_table, "hi" };`)
	// the second occurrence of "hi" reuses lit_0 rather than allocating lit_1
	require.NotContains(t, out, "lit_1_storage")
}
