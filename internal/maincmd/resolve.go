package maincmd

import (
	"context"

	"github.com/mna/mainer"
	"github.com/mna/thistle/lang/parser"
	"github.com/mna/thistle/lang/resolver"
	"github.com/mna/thistle/lang/scanner"
	"github.com/mna/thistle/lang/token"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(ctx, stdio, token.PosLong, args...)
}

func ResolveFiles(ctx context.Context, stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	for _, file := range files {
		fs, chunk, perr := parser.ParseFile(file)
		if perr != nil {
			// cannot resolve AST if parsing has errors
			scanner.PrintError(stdio.Stderr, perr)
			return perr
		}
		info, rerr := resolver.ResolveChunk(fs, chunk)
		if rerr != nil {
			scanner.PrintError(stdio.Stderr, rerr)
			return rerr
		}
		d := &dumper{w: stdio.Stdout, fs: fs, pos: posMode, info: info}
		d.chunk(chunk)
	}
	return nil
}
