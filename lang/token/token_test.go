package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok <= maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok <= maxToken; tok++ {
		want := tok > kwStart && tok < kwEnd
		got := LookupKw(tok.GoString()) == tok && want
		if want != got && want {
			t.Errorf("token %s: expected keyword lookup to round-trip", tok)
		}
	}
	if LookupKw("notakeyword") != IDENT {
		t.Errorf("expected IDENT for unknown word")
	}
}

func TestLookupPunct(t *testing.T) {
	if LookupPunct("+") != PLUS {
		t.Errorf("expected PLUS")
	}
	if LookupPunct("nope") != ILLEGAL {
		t.Errorf("expected ILLEGAL")
	}
}

func TestFileSetPosition(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("test.thst", -1, 20)
	f.AddLine(5)
	f.AddLine(10)

	pos := f.Pos(7)
	got := f.Position(pos)
	want := Position{Filename: "test.thst", Line: 2, Col: 3}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if fset.File(pos) != f {
		t.Errorf("FileSet.File did not resolve back to the owning file")
	}
}

func TestFormatPos(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("test.thst", -1, 10)

	if got := FormatPos(PosLong, f, NoPos, true); got != "test.thst:-:-" {
		t.Errorf("got %q", got)
	}
	if got := FormatPos(PosLong, f, f.Pos(0), true); got != "test.thst:1:1" {
		t.Errorf("got %q", got)
	}
	if got := FormatPos(PosRaw, f, f.Pos(0), true); got != "1" {
		t.Errorf("got %q", got)
	}
	if got := FormatPos(PosNone, f, f.Pos(0), true); got != "" {
		t.Errorf("got %q", got)
	}
}
