package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"
	"github.com/mna/thistle/lang/cemit"
	"github.com/mna/thistle/lang/cmm"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/stg"
)

// Compile is spec.md §6's CLI contract: a single command taking a source
// file path and an output path, exit code 0 on success and a diagnostic on
// any compile-time error. It runs the full pipeline (parse, resolve,
// simplify, lower to STG, lower to Cmm, emit C) and writes the resulting
// translation unit to the output path, alongside a copy of the runtime it
// links against.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 2 {
		err := fmt.Errorf("compile: expected <source-file> <output-file>, got %d argument(s)", len(args))
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return CompileFile(ctx, stdio, args[0], args[1], cemit.Options{HeapSize: c.HeapSize, StackSize: c.StackSize})
}

// CompileFile drives the pipeline for a single source file, writing the
// emitted translation unit to outFile and "runtime.c"/"runtime.h" into its
// directory (created if it does not exist).
func CompileFile(ctx context.Context, stdio mainer.Stdio, srcFile, outFile string, opts cemit.Options) error {
	fs, chunk, perr := parser.ParseFile(srcFile)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	info, rerr := resolver.ResolveChunk(fs, chunk)
	if rerr != nil {
		scanner.PrintError(stdio.Stderr, rerr)
		return rerr
	}

	typed, serr := simplify.Simplify(chunk, info)
	if serr != nil {
		fmt.Fprintln(stdio.Stderr, serr)
		return serr
	}

	stgProg, lerr := stg.LowerAndAnalyze(typed)
	if lerr != nil {
		fmt.Fprintln(stdio.Stderr, lerr)
		return lerr
	}

	cmmProg, cerr := cmm.Lower(stgProg)
	if cerr != nil {
		fmt.Fprintln(stdio.Stderr, cerr)
		return cerr
	}

	src, eerr := cemit.Emit(cmmProg, opts)
	if eerr != nil {
		fmt.Fprintln(stdio.Stderr, eerr)
		return eerr
	}

	outDir := filepath.Dir(outFile)
	if outDir != "" && outDir != "." {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if err := os.WriteFile(outFile, []byte(src), 0o644); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	rc, rh, rerr2 := cemit.EmbeddedRuntime()
	if rerr2 != nil {
		fmt.Fprintln(stdio.Stderr, rerr2)
		return rerr2
	}
	if err := os.WriteFile(filepath.Join(outDir, "runtime.c"), []byte(rc), 0o644); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "runtime.h"), []byte(rh), 0o644); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fmt.Fprintf(stdio.Stdout, "wrote %s, runtime.c, runtime.h\n", outFile)
	return nil
}
