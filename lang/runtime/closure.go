package runtime

// InfoTable is a pair (entry code, evacuation code): spec.md §3.3's
// "every heap object begins with a pointer to an info table; the table
// determines both how to execute the object and how the collector copies
// it." Name is purely diagnostic.
type InfoTable struct {
	Name  string
	Entry Label
	Evac  func(m *Machine, c *Closure) *Closure
}

// Closure is a heap object: an info table plus its fields, partitioned by
// kind exactly as spec.md §3.3 lays out a real closure's bytes
// ("[InfoTable* | pointer-field* | int-field* | string-pointer-field*]").
// Str and SavedA are populated only for the closure shapes that need them
// (a string closure's payload; a partial-application closure's saved
// A-stack segment); every other shape leaves them nil.
type Closure struct {
	Info *InfoTable

	Ptrs []*Closure
	Ints []int64
	Strs []string

	// Str is the payload of a string closure (spec.md §3.3's "NUL-
	// terminated bytes", modeled here as a plain Go string — this
	// package never mutates a string closure's bytes in place, so the
	// NUL-termination and relocation padding spec.md describes for the C
	// translation are the C emitter's concern, not this reference
	// model's).
	Str string

	// SavedA holds a partial-application closure's saved A-stack segment
	// (spec.md §4.4's check_application_update); Orig is the under-applied
	// function closure the PAP resumes once fully applied.
	SavedA []*Closure
	Orig   *Closure

	forwarded *Closure // set by the collector once this object has been evacuated
}

// sizeWords is this closure's contribution to Allocation accounting: one
// word for the info table pointer plus one word per field, matching
// spec.md §4.3's "sum of sizeof(InfoTable*) per table plus per-field
// sizes". String payload bytes are accounted separately by the caller
// (spec.md's LiteralStrings tally) since they are not fixed-width fields.
func (c *Closure) sizeWords() int {
	return 1 + len(c.Ptrs) + len(c.Ints) + len(c.Strs)
}

// NewClosure allocates (without reserving heap accounting — callers use
// Machine.Alloc, below) a closure of the given info table and field
// counts, ready to have its fields filled in.
func NewClosure(info *InfoTable, ptrs, ints, strs int) *Closure {
	c := &Closure{Info: info}
	if ptrs > 0 {
		c.Ptrs = make([]*Closure, ptrs)
	}
	if ints > 0 {
		c.Ints = make([]int64, ints)
	}
	if strs > 0 {
		c.Strs = make([]string, strs)
	}
	return c
}

// Alloc materializes a new closure and accounts its words against the
// heap's reservation (spec.md §4.3's Allocation tally is supposed to be
// an upper bound already established by a prior HeapReserve call at the
// function's prolog — Alloc itself just consumes from that budget).
func (m *Machine) Alloc(info *InfoTable, ptrs, ints, strs int) *Closure {
	c := NewClosure(info, ptrs, ints, strs)
	m.Heap.used += c.sizeWords() * WordSize
	return c
}

// AllocString allocates a dynamic string closure (spec.md §3.3: same
// layout as any closure, but its Evac must actually copy the payload
// during GC, unlike a string-literal closure's identity evac).
func (m *Machine) AllocString(s string) *Closure {
	c := &Closure{Info: stringInfoTable, Str: s}
	m.Heap.used += (1+1)*WordSize + len(s) + 1 // header + forwarding slot + bytes + NUL
	return c
}

// stringInfoTable is the shared info table for every dynamically
// allocated string closure (produced by Concat or by boxing a literal
// used as a pointer-kinded value); its evac copies Str to a fresh
// Closure, as spec.md's string_evac must.
var stringInfoTable = &InfoTable{
	Name: "$string",
	Entry: func(m *Machine) Label {
		m.StringRegister = m.NodeRegister
		return enterCaseContinuationLabel(m)
	},
	Evac: func(m *Machine, c *Closure) *Closure {
		return m.Alloc2(stringInfoTable, func(n *Closure) { n.Str = c.Str })
	},
}

// Alloc2 is a small helper for evac functions, which need to build the
// new closure and populate it in one step without a separate accounting
// call (GC accounting is tracked globally via the to-space heap, filled
// in by gc.go's scavenge loop instead of per-Alloc calls during
// collection).
func (m *Machine) Alloc2(info *InfoTable, fill func(*Closure)) *Closure {
	c := &Closure{Info: info}
	fill(c)
	return c
}

// newStaticStringInfoTable builds a string-literal closure's info table: its
// Evac is the identity (spec.md: "a static object; never copied").
func newStaticStringInfoTable() *InfoTable {
	var table *InfoTable
	table = &InfoTable{
		Name: "$string_literal",
		Entry: func(m *Machine) Label {
			m.StringRegister = m.NodeRegister
			return enterCaseContinuationLabel(m)
		},
		Evac: func(m *Machine, c *Closure) *Closure { return c },
	}
	return table
}

// staticStringInfoTable is shared by every string-literal closure in a
// program; literal interning (spec.md §9's open question, resolved in
// favor of dedup — see DESIGN.md) keys off this table plus byte content.
var staticStringInfoTable = newStaticStringInfoTable()

// NewStringLiteral allocates a static string closure: never garbage
// collected, always identity-evacuated.
func NewStringLiteral(s string) *Closure {
	return &Closure{Info: staticStringInfoTable, Str: s}
}

// constructorInfoTable returns the (memoized, per-shape) info table for a
// constructor closure carrying the given tag and field-kind counts. Every
// user-declared constructor that happens to share a tag+shape — which
// only ever coincides for genuinely identical declarations since tags are
// assigned per declaration — reuses the same InfoTable, since a
// constructor closure's entry code does nothing but announce its own tag
// and arity; the table carries no constructor name because nothing at
// runtime needs it (lang/cemit's static tables are per-constructor purely
// for readability of the emitted C, not a semantic requirement here).
func (m *Machine) constructorInfoTable(tag, ptrs, ints, strs int) *InfoTable {
	key := ctorShape{tag: tag, ptrs: ptrs, ints: ints, strs: strs}
	if t, ok := m.ctorTables.Get(key); ok {
		return t
	}
	argCount := ptrs + ints + strs
	t := &InfoTable{
		Name: "$ctor",
		Entry: func(m *Machine) Label {
			m.TagRegister = tag
			m.ConstructorArgCountRegister = argCount
			return enterCaseContinuationLabel(m)
		},
		Evac: genericEvac,
	}
	m.ctorTables.Put(key, t)
	return t
}

// AllocConstructor allocates a fully-formed constructor closure: spec.md
// §4.3's ConstrApp lowering materializes one of these for every
// constructor application, whether or not it ends up captured by an
// update frame, so that a case Alts function can always read a matched
// constructor's fields the same way any closure reads its own bound
// fields.
func (m *Machine) AllocConstructor(tag int, ptrs []*Closure, ints []int64, strs []string) *Closure {
	c := m.Alloc(m.constructorInfoTable(tag, len(ptrs), len(ints), len(strs)), len(ptrs), len(ints), len(strs))
	copy(c.Ptrs, ptrs)
	copy(c.Ints, ints)
	copy(c.Strs, strs)
	return c
}

// genericEvac is the evac function shared by every ordinary closure shape
// (user functions, thunks, and constructor closures alike): copy the
// header and fields verbatim into a fresh closure, then let the
// scavenging walk (gc.go) evacuate the copied pointer fields in place —
// spec.md §4.4 step 6's "copy the closure bytes, overwrite source, then
// evacuate each pointer field".
func genericEvac(m *Machine, c *Closure) *Closure {
	n := &Closure{Info: c.Info}
	if len(c.Ptrs) > 0 {
		n.Ptrs = append([]*Closure(nil), c.Ptrs...)
	}
	if len(c.Ints) > 0 {
		n.Ints = append([]int64(nil), c.Ints...)
	}
	if len(c.Strs) > 0 {
		n.Strs = append([]string(nil), c.Strs...)
	}
	return n
}
