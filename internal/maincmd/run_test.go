package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/thistle/internal/maincmd"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, src string) (stdout, stderr string, code int) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.thi")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	var out, errBuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errBuf}
	c, err := maincmd.RunFile(context.Background(), stdio, path)
	require.NoError(t, err)
	return out.String(), errBuf.String(), c
}

func TestRunFilePrintsIntResult(t *testing.T) {
	stdout, _, code := runSource(t, `main = printInt (1 + 2)`)
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "3")
}

func TestRunFilePrintsConcatenatedString(t *testing.T) {
	stdout, _, code := runSource(t, `main = printString ("hello" ++ " " ++ "world")`)
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "hello world")
}

func TestRunFileEvaluatesDataConstructorsAndCase(t *testing.T) {
	stdout, _, code := runSource(t, `data L = N | C Int L;
sum N = 0;
sum (C x xs) = x + sum xs;
main = printInt (sum (C 1 (C 2 (C 3 N))))`)
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "6")
}

func TestRunFileReportsParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.thi")
	require.NoError(t, os.WriteFile(path, []byte(`main = (`), 0o644))

	var out, errBuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errBuf}
	_, err := maincmd.RunFile(context.Background(), stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, errBuf.String())
}
