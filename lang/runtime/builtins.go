package runtime

import "fmt"

// Builtins are spec.md §4.5's fixed primitive set, named exactly as
// lang/simplify/types.go's opName/surfaceBuiltinName produce them so
// lang/cmm's OpBuiltin1/OpBuiltin2 instructions resolve directly against this
// table. Each takes its arguments already read out of registers/stack by
// the caller and returns via the matching register, then itself performs
// the equivalent of OpEnterCaseContinuation — callers invoke it as the
// last step of a Cmm Builtin tail and return its result directly.

// Add, Sub, Mul are the integer arithmetic builtins; all read two
// IntRegister-shaped operands and leave their result in IntRegister.
func Add(m *Machine, a, b int64) Label { m.IntRegister = a + b; return enterCaseContinuationLabel(m) }
func Sub(m *Machine, a, b int64) Label { m.IntRegister = a - b; return enterCaseContinuationLabel(m) }
func Mul(m *Machine, a, b int64) Label { m.IntRegister = a * b; return enterCaseContinuationLabel(m) }

// Div is integer division; spec.md names division-by-zero a runtime
// error, reported the same way any other panic recovered by Machine.Run
// is (a diagnostic on Stderr and exit code 1).
func Div(m *Machine, a, b int64) Label {
	if b == 0 {
		panic("division by zero")
	}
	m.IntRegister = a / b
	return enterCaseContinuationLabel(m)
}

// Negate is integer negation.
func Negate(m *Machine, a int64) Label { m.IntRegister = -a; return enterCaseContinuationLabel(m) }

// boolClosure returns the shared static True/False closure (LocBoolConst
// at the Cmm layer) for a comparison builtin's result.
func boolClosure(m *Machine, v bool) *Closure {
	if v {
		return trueClosure
	}
	return falseClosure
}

// boolInfoTable backs both the True and False closures below; its entry
// reads its own tag field rather than hardcoding one, matching how a
// real case expression scrutinizing a comparison's result would dispatch
// on TagRegister the same way as any other two-nullary-constructor type.
var boolInfoTable = &InfoTable{
	Name: "$bool",
	Entry: func(m *Machine) Label {
		m.TagRegister = int(m.NodeRegister.Ints[0])
		m.ConstructorArgCountRegister = 0
		return enterCaseContinuationLabel(m)
	},
	Evac: func(m *Machine, c *Closure) *Closure { return c },
}

var (
	falseClosure = &Closure{Info: boolInfoTable, Ints: []int64{0}}
	trueClosure  = &Closure{Info: boolInfoTable, Ints: []int64{1}}
)

// Less, LessEqual, Greater, GreaterEqual, EqualTo, NotEqualTo are the
// comparison builtins over ints; each sets NodeRegister to the matching
// static boolean closure (spec.md's two nullary constructors True/False,
// shared rather than reallocated per comparison).
func Less(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a < b)
	return enterCaseContinuationLabel(m)
}

func LessEqual(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a <= b)
	return enterCaseContinuationLabel(m)
}

func Greater(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a > b)
	return enterCaseContinuationLabel(m)
}

func GreaterEqual(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a >= b)
	return enterCaseContinuationLabel(m)
}

func EqualTo(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a == b)
	return enterCaseContinuationLabel(m)
}

func NotEqualTo(m *Machine, a, b int64) Label {
	m.NodeRegister = boolClosure(m, a != b)
	return enterCaseContinuationLabel(m)
}

// Concat is the string builtin, spec.md §4.5: it must root both operands
// on the A-stack before calling HeapReserve (the only GC safe point),
// since the collector only scans registers, stack slots, and update-frame
// self-closures as roots — a string held purely in a local Go variable
// across a reserve call would be invisible to it.
func Concat(m *Machine, a, b *Closure) Label {
	m.A.Push(a)
	m.A.Push(b)
	n := len(a.Str) + len(b.Str)
	m.HeapReserve((1+1)*WordSize + n + 1)
	b = m.A.data[m.A.top-1]
	a = m.A.data[m.A.top-2]
	m.A.top -= 2

	m.StringRegister = m.AllocString(a.Str + b.Str)
	return enterCaseContinuationLabel(m)
}

// PrintInt and PrintString are the effectful builtins; both write to
// Stdout and leave a trivial unit value (a zero-arity, zero-tag
// constructor) in NodeRegister to satisfy the usual "builtins always
// produce a value" discipline, per spec.md's use of printInt/printString
// as ordinary expressions of unit type.
func PrintInt(m *Machine, a int64) Label {
	fmt.Fprintf(m.Stdout, "%d\n", a)
	m.NodeRegister = unitClosure
	return enterCaseContinuationLabel(m)
}

func PrintString(m *Machine, a *Closure) Label {
	fmt.Fprintf(m.Stdout, "%s\n", a.Str)
	m.NodeRegister = unitClosure
	return enterCaseContinuationLabel(m)
}

var unitInfoTable = &InfoTable{
	Name:  "$unit",
	Entry: func(m *Machine) Label { return enterCaseContinuationLabel(m) },
	Evac:  func(m *Machine, c *Closure) *Closure { return c },
}

var unitClosure = &Closure{Info: unitInfoTable}
