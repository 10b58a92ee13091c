package token

import (
	"fmt"
	"sort"
)

// Pos is a compact encoding of a byte offset into the concatenation of all
// files registered with a FileSet, analogous to go/token.Pos. NoPos is the
// zero value and denotes "unknown position".
type Pos int

// NoPos means "no position known"; it is never a valid result of Position.
const NoPos Pos = 0

// Spanner is implemented by any value that has a source span, used by
// PosInside/PosAdjacent.
type Spanner interface {
	Span() (start, end Pos)
}

// PosInside reports whether test's span is entirely inside ref's span.
func PosInside(ref, test Spanner) bool {
	rs, re := ref.Span()
	ts, te := test.Span()
	return rs <= ts && te <= re
}

// PosAdjacent reports whether the span of test starts on the same line as
// the span of ref ends (or vice-versa), used to decide whether a trailing
// comment belongs to a node.
func PosAdjacent(ref, test Spanner, f *File) bool {
	rs, re := ref.Span()
	ts, te := test.Span()
	if re <= ts {
		return f.Position(re).Line == f.Position(ts).Line
	}
	return f.Position(rs).Line == f.Position(te).Line
}

// A File records the name, base offset and line-start offsets of a single
// source file registered in a FileSet.
type File struct {
	name  string
	base  int
	size  int
	lines []int // byte offset (absolute, including base) of each line start
}

// AddFile registers a new file with the set. If base is -1, the next
// available base is used. size is the length in bytes of the file content.
func (fset *FileSet) AddFile(name string, base, size int) *File {
	if base < 0 {
		base = fset.nextBase
	}
	f := &File{name: name, base: base, size: size, lines: []int{base}}
	fset.files = append(fset.files, f)
	fset.nextBase = base + size + 1
	return f
}

// Name returns the file's name as given to AddFile.
func (f *File) Name() string { return f.name }

// Base returns the Pos of the first byte of the file.
func (f *File) Base() int { return f.base }

// Size returns the byte length of the file's content, as given to AddFile.
func (f *File) Size() int { return f.size }

// AddLine records that a new line begins at the given byte offset (relative
// to the start of this file's content, i.e. the offset of the byte right
// after a newline).
func (f *File) AddLine(offset int) {
	abs := f.base + offset
	if n := len(f.lines); n == 0 || f.lines[n-1] < abs {
		f.lines = append(f.lines, abs)
	}
}

// Pos converts a byte offset relative to this file into a Pos.
func (f *File) Pos(offset int) Pos { return Pos(f.base + offset) }

// Offset converts a Pos belonging to this file back to a byte offset
// relative to the start of the file.
func (f *File) Offset(p Pos) int { return int(p) - f.base }

// Position returns the human-readable line/column for p, which must belong
// to this file.
func (f *File) Position(p Pos) Position {
	abs := int(p)
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > abs }) - 1
	if i < 0 {
		i = 0
	}
	return Position{
		Filename: f.name,
		Line:     i + 1,
		Col:      abs - f.lines[i] + 1,
	}
}

// A FileSet tracks the set of source files registered for a compilation,
// assigning each a disjoint range of Pos values so a bare Pos can be mapped
// back to the File (and line/column) it belongs to.
type FileSet struct {
	files    []*File
	nextBase int
}

// NewFileSet returns an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{nextBase: 1} }

// File returns the File that owns p, or nil if p belongs to no registered
// file.
func (fset *FileSet) File(p Pos) *File {
	for i := len(fset.files) - 1; i >= 0; i-- {
		if f := fset.files[i]; Pos(f.base) <= p {
			return f
		}
	}
	return nil
}

// Position is the human-readable counterpart of a Pos: a filename plus a
// 1-based line and column.
type Position struct {
	Filename string
	Line, Col int
}

func (p Position) String() string {
	if p.Line == 0 {
		return fmt.Sprintf("%s:-:-", p.Filename)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// PosMode controls how FormatPos renders a Pos.
type PosMode int

const (
	PosLong    PosMode = iota // file:line:col
	PosOffsets                // 0-based byte offset
	PosRaw                    // raw Pos value
	PosNone                   // empty string
)

// FormatPos renders p according to mode. If withFilename is false, the
// filename is omitted from PosLong output.
func FormatPos(mode PosMode, f *File, p Pos, withFilename bool) string {
	switch mode {
	case PosNone:
		return ""
	case PosRaw:
		return fmt.Sprintf("%d", int(p))
	case PosOffsets:
		if p == NoPos || f == nil {
			return "-"
		}
		return fmt.Sprintf("%d", f.Offset(p))
	default: // PosLong
		if p == NoPos || f == nil {
			name := ""
			if withFilename && f != nil {
				name = f.Name()
			}
			return fmt.Sprintf("%s:-:-", name)
		}
		pos := f.Position(p)
		if !withFilename {
			pos.Filename = ""
		}
		return pos.String()
	}
}
