package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/thistle/lang/cmm"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/runtime"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/simplify"
	"github.com/mna/thistle/lang/stg"
)

// Run drives the pipeline through Cmm and then executes the result
// directly on lang/runtime's abstract machine, bypassing cemit and a C
// toolchain entirely. It is the reference-semantics counterpart to
// Compile: the same Cmm program, interpreted rather than translated.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		err := fmt.Errorf("run: expected <source-file>, got %d argument(s)", len(args))
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	code, err := RunFile(ctx, stdio, args[0])
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("run: exited with code %d", code)
	}
	return nil
}

// RunFile compiles srcFile down to a Cmm program and executes it on a
// fresh Machine wired to stdio, returning the machine's exit code.
func RunFile(ctx context.Context, stdio mainer.Stdio, srcFile string) (int, error) {
	fs, chunk, perr := parser.ParseFile(srcFile)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return 0, perr
	}

	info, rerr := resolver.ResolveChunk(fs, chunk)
	if rerr != nil {
		scanner.PrintError(stdio.Stderr, rerr)
		return 0, rerr
	}

	typed, serr := simplify.Simplify(chunk, info)
	if serr != nil {
		fmt.Fprintln(stdio.Stderr, serr)
		return 0, serr
	}

	stgProg, lerr := stg.LowerAndAnalyze(typed)
	if lerr != nil {
		fmt.Fprintln(stdio.Stderr, lerr)
		return 0, lerr
	}

	cmmProg, cerr := cmm.Lower(stgProg)
	if cerr != nil {
		fmt.Fprintln(stdio.Stderr, cerr)
		return 0, cerr
	}

	prog := runtime.Load(cmmProg)
	m := runtime.NewMachine(stdio.Stdout, stdio.Stderr)
	m.Globals = prog.Globals
	code := m.Run(prog.Entry)
	return code, nil
}
