package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, token.PosLong, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	for _, file := range files {
		fs, toks, err := scanner.ScanFile(file)
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			return err
		}
		for _, tv := range toks {
			f := fs.File(tv.Value.Pos)
			fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(posMode, f, tv.Value.Pos, true), tv.Token)
			if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tv.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	return nil
}
