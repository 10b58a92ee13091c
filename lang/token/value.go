package token

// Value carries the literal payload of a scanned token alongside its
// position: the raw source text, and the decoded value when the token is
// an INT or STRING literal.
type Value struct {
	Raw string
	Pos Pos

	Int    int64
	String string
}

// Span implements Spanner for a single-point token (start == end).
func (v Value) Span() (start, end Pos) { return v.Pos, v.Pos }
