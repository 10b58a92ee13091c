package maincmd

import (
	"context"

	"github.com/mna/mainer"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, token.PosLong, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	for _, file := range files {
		fs, chunk, err := parser.ParseFile(file)
		if err != nil {
			scanner.PrintError(stdio.Stderr, err)
			return err
		}
		d := &dumper{w: stdio.Stdout, fs: fs, pos: posMode}
		d.chunk(chunk)
	}
	return nil
}
