// Package runtime is a reference implementation of the abstract machine
// spec.md §3.3/§4.4/§4.5 describes: a heap with a Cheney-style copying
// collector, two stacks ("A" for pointer arguments, "B" for unboxed
// values/continuations/update frames), a fixed register file, and the
// info-table protocol (entry code + evacuation code per closure shape).
//
// The emitted C translation unit (lang/cemit) links against a textual
// transcription of this same design (c/runtime.c, embedded by
// lang/cemit) rather than against this package directly; this package
// exists so the machine's semantics — update idempotence, partial
// application, GC preservation of closure identity — can be driven and
// tested from Go without round-tripping through a C compiler.
package runtime

import (
	"fmt"
	"io"

	"github.com/dolthub/swiss"
)

// Label is a code label: a function taking the machine and returning the
// next label to jump to, or nil to halt. The trampoline in Run
// dereferences and tail-jumps through labels without ever growing the Go
// call stack, the idiomatic-Go rendering of spec.md §4.4's "every code
// label is a function taking no arguments and returning the next code
// label".
type Label func(m *Machine) Label

// Machine is the abstract machine's entire mutable state: the heap, both
// stacks, and the fixed register file. It is the single owner the
// trampoline loop holds a mutable borrow of, per spec.md §9's prescribed
// replacement for "global mutable runtime registers".
type Machine struct {
	Heap *Heap
	A    *AStack
	B    *BStack

	IntRegister                 int64
	StringRegister              *Closure
	TagRegister                 int
	ConstructorArgCountRegister int
	NodeRegister                *Closure
	ConstrUpdateRegister        *Closure

	Globals []*Closure // the program's top-level bindings, indexed as lang/stg assigned them

	Stdout io.Writer
	Stderr io.Writer

	ctorTables   *swiss.Map[ctorShape, *InfoTable]
	updateFrames []*updateFrame
	exitCode     int
	halted       bool
}

// ctorShape is the memoization key for constructorInfoTable: a
// constructor closure's entry/evac code depends only on its tag and field
// counts by kind, never on which user-declared constructor produced it.
// Keyed this way rather than by name, the table is shared across every
// constructor of identical shape, swiss.Map picked for the same
// open-addressing, hash-only-key reason lang/stg uses it for its
// free-variable sets (lang/stg/freevars.go).
type ctorShape struct {
	tag              int
	ptrs, ints, strs int
}

// NewMachine allocates a machine with the heap and stack sizes spec.md
// §4.4 mandates: BASE_HEAP_SIZE = 128 bytes and STACK_SIZE = 1024 slots
// each, deliberately small so garbage collection is exercised early.
func NewMachine(stdout, stderr io.Writer) *Machine {
	return &Machine{
		Heap:       NewHeap(),
		A:          newAStack(StackSize),
		B:          newBStack(StackSize),
		Stdout:     stdout,
		Stderr:     stderr,
		ctorTables: swiss.NewMap[ctorShape, *InfoTable](8),
	}
}

// StackSize is spec.md §4.4's initial per-stack slot count.
const StackSize = 1024

// Run drives the trampoline from the given entry label until it returns
// nil (normal exit) or a runtime error is raised via panic (caught here
// and turned into the documented diagnostic-and-nonzero-exit behavior of
// spec.md §7). It returns the process exit code.
//
// A fresh Exit sentinel is pushed onto the B-stack before the trampoline
// starts: the outermost entered value's EnterCaseContinuation pops it once
// it reduces to a final answer, ending the program (or, in tests that
// drive Run repeatedly on the same Machine for individual sub-expressions,
// ending that one Run call).
func (m *Machine) Run(entry Label) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(m.Stderr, "runtime error: %v\n", r)
			code = 1
		}
	}()

	m.halted = false
	m.B.PushCode(Exit)
	label := entry
	for label != nil && !m.halted {
		label = label(m)
	}
	return m.exitCode
}

// Exit is the OpExit instruction's effect: halt normally.
func Exit(m *Machine) Label {
	m.halted = true
	return nil
}
