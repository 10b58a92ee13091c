package runtime

// Enter is spec.md §4.4's "entering a closure": set NodeRegister to c and
// read its info table's entry pointer. Any caller tail-positioned on
// Enter should return its result directly rather than looping itself, so
// that the trampoline in Machine.Run — not the Go call stack — absorbs
// however many closures get entered in sequence.
func Enter(m *Machine, c *Closure) Label {
	m.NodeRegister = c
	return c.Info.Entry(m)
}

// enterCaseContinuationLabel is OpEnterCaseContinuation's effect:
// "return to the case continuation on the B-stack" — pop the top code
// cell and return it as the next label, without invoking it.
func enterCaseContinuationLabel(m *Machine) Label {
	return m.B.Pop().Code
}

// EnterCaseContinuation is the exported Label value for the instruction of
// the same name.
var EnterCaseContinuation Label = enterCaseContinuationLabel

// updateFrame is the bookkeeping PushUpdateFrame records for one active
// update: which closure is being forced (for GC rooting, see gc.go) and
// the A-stack base to restore once the thunk finishes reducing. The
// B-stack carries only the single code cell that resumes updateContinuation
// — every other byte spec.md's literal frame layout describes (saved
// B-base, saved A-base, self-pointer) lives here instead, since this
// package models the machine's semantics rather than its exact memory
// layout (see heap.go's similar note about Heap).
type updateFrame struct {
	self       *Closure
	savedABase int
}

// EnterUpdateable wraps body (the code that reduces self to a value) with
// the update protocol of spec.md §4.4: a fresh update frame is pushed
// before body runs, so that whichever path body takes to signal its
// result — a constructor left in NodeRegister, or a bare value left in
// IntRegister/StringRegister — gets spliced into self in place once body
// reaches EnterCaseContinuation.
func EnterUpdateable(self *Closure, body Label) Label {
	return func(m *Machine) Label {
		m.PushUpdateFrame(self)
		return body(m)
	}
}

// PushUpdateFrame records self as the closure being forced and pushes the
// B-stack code cell that resumes the update protocol once body finishes
// (spec.md §4.4's update frame, minus the bytes this package doesn't need
// to lay out literally — see updateFrame).
func (m *Machine) PushUpdateFrame(self *Closure) {
	m.updateFrames = append(m.updateFrames, &updateFrame{self: self, savedABase: m.A.base})
	m.B.PushCode(m.updateContinuation(self))
}

// updateContinuation builds the Label that fires when an updateable
// thunk's computation reaches EnterCaseContinuation with this frame still
// active: it splices the just-computed result into self, generalizing
// spec.md's update_constructor to whichever register shape the reduction
// produced, restores the A-stack base to what it was when the thunk was
// entered, pops this frame, and resumes the real continuation underneath
// it.
func (m *Machine) updateContinuation(self *Closure) Label {
	return func(m *Machine) Label {
		frame := m.updateFrames[len(m.updateFrames)-1]
		m.updateFrames = m.updateFrames[:len(m.updateFrames)-1]

		m.updateInPlace(self)
		m.A.RestoreBase(frame.savedABase)
		return enterCaseContinuationLabel(m)
	}
}

// updateInPlace copies whichever register currently holds the thunk's
// reduced value into self, turning self into an indirection-free
// in-place answer (spec.md §9's recommendation — a separate,
// uniformly-sized PAP-style indirection closure — applies to partial
// application, not this ordinary value update, where overwriting the
// original closure's fields is always safe: the thunk had no declared
// arity to preserve, only whatever free variables it no longer needs now
// that it holds an answer).
func (m *Machine) updateInPlace(self *Closure) {
	if m.NodeRegister != nil && m.NodeRegister != self {
		// A constructor (or a PAP, or any other closure) was just produced
		// and left in NodeRegister; self becomes an indirection to it so
		// every existing reference to self sees the same object without
		// being individually patched.
		self.Info = indirectionInfoTable
		self.Ptrs = []*Closure{m.NodeRegister}
		return
	}
	if m.StringRegister != nil {
		self.Info = stringInfoTable
		self.Str = m.StringRegister.Str
		return
	}
	self.Info = intValueInfoTable
	self.Ints = []int64{m.IntRegister}
}

// indirectionInfoTable is the shared info table for an updated thunk that
// now merely forwards to its real value (Ptrs[0]): entering it re-enters
// the target, exactly as reading through a GC forwarding pointer does.
var indirectionInfoTable = &InfoTable{
	Name: "$indirection",
	Entry: func(m *Machine) Label {
		target := m.NodeRegister.Ptrs[0]
		return Enter(m, target)
	},
	Evac: genericEvac,
}

// intValueInfoTable is the shared info table for a thunk updated with a
// bare unboxed int result (e.g. "let x = 1+2 in ..." once forced): its
// entry simply restores IntRegister and returns to the case continuation.
var intValueInfoTable = &InfoTable{
	Name: "$int_value",
	Entry: func(m *Machine) Label {
		m.IntRegister = m.NodeRegister.Ints[0]
		return enterCaseContinuationLabel(m)
	},
	Evac: genericEvac,
}

// CheckApplicationUpdate is spec.md §4.4's check_application_update: run
// at the entry of every multi-argument function, before the function's
// own body. If fewer than argCount pointer args are available above the
// current A-stack base, the caller under-applied the function; a
// partial-application closure capturing what was supplied is built and
// left in NodeRegister, and control returns directly to whichever
// continuation is next — a case continuation if the function was entered
// as an ordinary case scrutinee, or an active update frame's
// updateContinuation if the function closure was itself a thunk's forced
// value, which needs no special-casing here since that frame's code cell
// is already what EnterCaseContinuation will find.
//
// It returns (nil, true) if enough arguments were supplied and the
// function body should proceed normally, or (label, false) if a PAP was
// built and the caller should return label directly.
func (m *Machine) CheckApplicationUpdate(self *Closure, argCount int) (Label, bool) {
	if m.A.Depth() >= argCount {
		return nil, true
	}

	pap := &Closure{
		Info:   papInfoTable,
		Orig:   self,
		SavedA: append([]*Closure(nil), m.A.data[m.A.base:m.A.top]...),
	}
	m.A.top = m.A.base
	m.NodeRegister = pap
	return enterCaseContinuationLabel(m), false
}

// papInfoTable is shared by every partial-application closure (spec.md
// §3.3's "[InfoTable*_for_pap | saved A-stack segment]", represented here
// by Orig/SavedA rather than raw bytes). Entering it with additional
// arguments already pushed above the current base re-pushes the saved
// segment below them and resumes Orig, satisfying P4 (the
// partial-application round-trip).
var papInfoTable = &InfoTable{
	Name: "$pap",
	Entry: func(m *Machine) Label {
		pap := m.NodeRegister
		newArgs := append([]*Closure(nil), m.A.data[m.A.base:m.A.top]...)
		m.A.top = m.A.base
		for _, c := range pap.SavedA {
			m.A.Push(c)
		}
		for _, c := range newArgs {
			m.A.Push(c)
		}
		return Enter(m, pap.Orig)
	},
	Evac: func(m *Machine, c *Closure) *Closure {
		n := &Closure{Info: papInfoTable, Orig: c.Orig}
		n.SavedA = append([]*Closure(nil), c.SavedA...)
		return n
	},
}
