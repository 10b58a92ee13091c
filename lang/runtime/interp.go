package runtime

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/thistle/lang/cmm"
)

// Program is a Cmm program loaded onto this package's abstract machine:
// each Cmm Function becomes a Label a Machine can Run directly, the
// Go-closure counterpart to what lang/cemit renders as C text. It exists
// so the reference runtime's semantics — update idempotence, partial
// application, GC preservation of closure identity — can be exercised
// against a whole compiled program, not just the hand-built Closures
// lang/runtime's own tests drive directly.
type Program struct {
	Entry   Label
	Globals []*Closure
}

// Load builds a Program from a Cmm program. Addressing follows
// lang/cemit/emit.go's rules (same package doc on buried-variable depth
// and the NodeRegister-names-the-matched-constructor invariant) but reads
// Closure fields directly by slice index instead of computing byte
// offsets into a flat layout, since this package's Closure already
// partitions fields by kind (see closure.go).
func Load(prog *cmm.Program) *Program {
	l := &loader{
		funcs:      map[string]Label{},
		funcInfo:   map[string]*InfoTable{},
		infoTables: map[string]*InfoTable{},
		literals:   swiss.NewMap[string, *Closure](8),
	}

	for _, c := range prog.Ctors {
		l.infoTables["$ctor."+c.Ctor] = l.ctorTable(c)
	}

	var all []*cmm.Function
	var walk func(*cmm.Function)
	walk = func(f *cmm.Function) {
		all = append(all, f)
		for _, s := range f.SubFunctions {
			walk(s)
		}
	}
	for _, f := range prog.Functions {
		walk(f)
	}
	walk(prog.Entry)

	for _, f := range all {
		l.funcs[f.Name.String()] = l.buildFunction(f)
	}
	for _, f := range all {
		name := f.Name.String()
		info := &InfoTable{Name: name, Entry: l.funcs[name], Evac: genericEvac}
		l.funcInfo[name] = info
		l.infoTables[name] = info
	}

	maxGlobal := 0
	for _, f := range prog.Functions {
		if f.GlobalIndex != nil && *f.GlobalIndex+1 > maxGlobal {
			maxGlobal = *f.GlobalIndex + 1
		}
	}
	globals := make([]*Closure, maxGlobal)
	for _, f := range prog.Functions {
		if f.GlobalIndex == nil {
			continue
		}
		globals[*f.GlobalIndex] = &Closure{Info: l.funcInfo[f.Name.String()]}
	}

	return &Program{Entry: l.funcs[prog.Entry.Name.String()], Globals: globals}
}

type loader struct {
	funcs      map[string]Label
	funcInfo   map[string]*InfoTable
	infoTables map[string]*InfoTable // funcInfo plus "$ctor.<Name>" entries, keyed by FunctionName.String()

	// literals interns one static string closure per distinct literal
	// text, same role as lang/cemit's lit_N table; swiss.Map for the same
	// reason lang/stg uses it for its free-variable sets
	// (lang/stg/freevars.go).
	literals *swiss.Map[string, *Closure]
}

// ctorTable builds the shared info table for one user data constructor,
// named per-constructor (rather than memoized purely by shape, as
// Machine.constructorInfoTable does) for the same reason lang/cemit emits
// one static table per declared constructor: readability, here of panic
// messages and Name fields rather than of generated C.
func (l *loader) ctorTable(c cmm.CtorTable) *InfoTable {
	argCount := c.Pointers + c.Ints + c.Strings
	info := &InfoTable{Name: c.Ctor}
	info.Entry = func(m *Machine) Label {
		m.TagRegister = c.Tag
		m.ConstructorArgCountRegister = argCount
		return enterCaseContinuationLabel(m)
	}
	info.Evac = genericEvac
	return info
}

func (l *loader) literal(s string) *Closure {
	if c, ok := l.literals.Get(s); ok {
		return c
	}
	c := NewStringLiteral(s)
	l.literals.Put(s, c)
	return c
}

// buildFunction wraps a Cmm Function's body with the same prolog
// lang/cemit/emit.go's writeFunction emits: a top-level nullary binding
// becomes an updateable thunk, a top-level function of one or more
// pointer arguments runs check_application_update first. Neither applies
// to a case Alts sub-function, matched by Name.Kind != FuncGlobal.
func (l *loader) buildFunction(f *cmm.Function) Label {
	return func(m *Machine) Label {
		if f.Name.Kind == cmm.FuncGlobal && f.ArgCount == 0 {
			self := m.NodeRegister
			return EnterUpdateable(self, func(m *Machine) Label {
				return l.runBody(f.Body, m, [3]int{})
			})(m)
		}
		if f.Name.Kind == cmm.FuncGlobal && f.ArgCount >= 1 {
			self := m.NodeRegister
			if label, ok := m.CheckApplicationUpdate(self, f.ArgCount); !ok {
				return label
			}
		}
		return l.runBody(f.Body, m, [3]int{})
	}
}

// runBody runs one Body: heap_reserve its Allocation tally, then either
// its straight-line instructions or its case dispatch. buried is the
// enclosing case's own buried-field counts, meaningful only while running
// a case alternative's instructions (see buriedDepth).
func (l *loader) runBody(b *cmm.Body, m *Machine, buried [3]int) Label {
	m.HeapReserve(allocBytes(b.Alloc))

	if b.Kind == cmm.BodyCase {
		return l.runSelectors(b, m, buried)
	}

	alloc := map[int]*Closure{}
	for i, in := range b.Instrs {
		if i == len(b.Instrs)-1 {
			return l.runTerminal(in, m, buried, alloc)
		}
		l.runStmt(in, m, buried, alloc)
	}
	panic("runtime: body has no terminal instruction")
}

// runSelectors dispatches on whichever register this case's scrutinee
// left its result in, exactly as lang/cemit/emit.go's writeSelectors
// does, restoring each alternative's buried live variables by running it
// with ownBuried instead of the caller's buried context.
func (l *loader) runSelectors(b *cmm.Body, m *Machine, buried [3]int) Label {
	ownBuried := [3]int{b.BuriedPointers, b.BuriedInts, b.BuriedStrings}
	kind := selectorKind(b.Selectors)

	var def *cmm.Body
	for _, sel := range b.Selectors {
		if sel.IsDefault {
			def = sel.Body
			continue
		}
		switch kind {
		case "string":
			if sel.StringVal == m.StringRegister.Str {
				return l.runBody(sel.Body, m, ownBuried)
			}
		case "int":
			if sel.IntVal == m.IntRegister {
				return l.runBody(sel.Body, m, ownBuried)
			}
		default:
			if sel.Tag == m.TagRegister {
				return l.runBody(sel.Body, m, ownBuried)
			}
		}
	}
	if def == nil {
		panic("runtime: case dispatch with no matching or default alternative")
	}
	return l.runBody(def, m, ownBuried)
}

func selectorKind(sels []cmm.Selector) string {
	for _, s := range sels {
		if s.IsDefault {
			continue
		}
		if s.Ctor != "" {
			return "ctor"
		}
		if s.StringVal != "" {
			return "string"
		}
		return "int"
	}
	return "ctor"
}

func buriedDepth(counts [3]int, kind cmm.LocationKind, idx int) int {
	ptrs, ints, strs := counts[0], counts[1], counts[2]
	switch kind {
	case cmm.LocBuriedString:
		return strs - 1 - idx
	case cmm.LocBuriedInt:
		return strs + (ints - 1 - idx)
	case cmm.LocBuriedPointer:
		return strs + ints + (ptrs - 1 - idx)
	}
	panic("runtime: buriedDepth of non-buried kind")
}

func allocBytes(a cmm.Allocation) int {
	return a.Tables*WordSize + a.Pointers*WordSize + a.Ints*WordSize + a.Strings*WordSize + a.LiteralStrings
}

// closureLoc resolves a pointer- or string-kinded Location. A bound
// string field is read as a raw Go string (see Closure.Strs's doc
// comment) and wrapped in a throwaway string closure so it can be passed
// anywhere a *Closure is expected, the same way lang/cemit's C model
// treats every bound string field as a pointer to a string closure.
func (l *loader) closureLoc(loc cmm.Location, m *Machine, buried [3]int, alloc map[int]*Closure) *Closure {
	switch loc.Kind {
	case cmm.LocArg:
		return m.A.Arg(loc.Index)
	case cmm.LocBoundPointer:
		return m.NodeRegister.Ptrs[loc.Index]
	case cmm.LocBoundString:
		return &Closure{Info: stringInfoTable, Str: m.NodeRegister.Strs[loc.Index]}
	case cmm.LocGlobal:
		return m.Globals[loc.Index]
	case cmm.LocAllocated:
		return alloc[loc.Index]
	case cmm.LocBuriedPointer, cmm.LocBuriedString:
		return m.B.Buried(buriedDepth(buried, loc.Kind, loc.Index)).Closure
	case cmm.LocStringRegister:
		return m.StringRegister
	case cmm.LocBoolConst:
		if loc.Index == 1 {
			return trueClosure
		}
		return falseClosure
	}
	panic(fmt.Sprintf("runtime: unexpected pointer/string location kind %v", loc.Kind))
}

// stringValueLoc resolves a Location to its raw string content, for
// filling a constructor's Strs field (see Closure's doc comment: string
// fields are stored inline here rather than as closure pointers).
func (l *loader) stringValueLoc(loc cmm.Location, m *Machine, buried [3]int, alloc map[int]*Closure) string {
	switch loc.Kind {
	case cmm.LocBoundString:
		return m.NodeRegister.Strs[loc.Index]
	case cmm.LocStringRegister:
		return m.StringRegister.Str
	default:
		return l.closureLoc(loc, m, buried, alloc).Str
	}
}

func (l *loader) intLoc(loc cmm.Location, m *Machine, buried [3]int, alloc map[int]*Closure) int64 {
	switch loc.Kind {
	case cmm.LocBoundInt:
		return m.NodeRegister.Ints[loc.Index]
	case cmm.LocBuriedInt:
		return m.B.Buried(buriedDepth(buried, loc.Kind, loc.Index)).Int
	case cmm.LocIntRegister:
		return m.IntRegister
	case cmm.LocAllocated:
		return alloc[loc.Index].Ints[0]
	}
	panic(fmt.Sprintf("runtime: unexpected int location kind %v", loc.Kind))
}

// runStmt runs one non-terminal instruction: it has no effect on control
// flow, only on registers, stacks, or the body-local alloc map.
func (l *loader) runStmt(in cmm.Instruction, m *Machine, buried [3]int, alloc map[int]*Closure) {
	switch in.Op {
	case cmm.OpStoreInt:
		m.IntRegister = in.IntVal
	case cmm.OpStoreString:
		m.StringRegister = l.literal(in.StringVal)
	case cmm.OpStoreTag:
		m.TagRegister = int(in.IntVal)
		m.ConstructorArgCountRegister = in.ArgCount
	case cmm.OpAPush:
		m.A.Push(l.closureLoc(in.Loc, m, buried, alloc))
	case cmm.OpBuryPointer:
		m.B.PushClosure(l.closureLoc(in.Loc, m, buried, alloc))
	case cmm.OpBuryInt:
		m.B.PushInt(l.intLoc(in.Loc, m, buried, alloc))
	case cmm.OpBuryString:
		m.B.PushString(l.closureLoc(in.Loc, m, buried, alloc))
	case cmm.OpAllocTable:
		l.runAllocTable(in, m, buried, alloc)
	case cmm.OpAllocInt:
		c := m.Alloc(intValueInfoTable, 0, 1, 0)
		c.Ints[0] = l.intLoc(in.Loc, m, buried, alloc)
		alloc[in.AllocIndex] = c
	case cmm.OpAllocString:
		alloc[in.AllocIndex] = l.literal(in.StringVal)
	case cmm.OpPushContinuation:
		subName := in.SubFunc.String()
		m.B.PushCode(l.funcs[subName])
	default:
		panic(fmt.Sprintf("runtime: unexpected statement op %v", in.Op))
	}
}

// runAllocTable allocates a closure of SubFunc's shape, copying each
// captured field from its original (pre-bury) Location, mirroring
// lang/cemit/emit.go's writeAllocTable.
func (l *loader) runAllocTable(in cmm.Instruction, m *Machine, buried [3]int, alloc map[int]*Closure) {
	info := l.infoTables[in.SubFunc.String()]
	c := &Closure{Info: info}
	if n := len(in.CapturedPointers); n > 0 {
		c.Ptrs = make([]*Closure, n)
		for i, loc := range in.CapturedPointers {
			c.Ptrs[i] = l.closureLoc(loc, m, buried, alloc)
		}
	}
	if n := len(in.CapturedInts); n > 0 {
		c.Ints = make([]int64, n)
		for i, loc := range in.CapturedInts {
			c.Ints[i] = l.intLoc(loc, m, buried, alloc)
		}
	}
	if n := len(in.CapturedStrings); n > 0 {
		c.Strs = make([]string, n)
		for i, loc := range in.CapturedStrings {
			c.Strs[i] = l.stringValueLoc(loc, m, buried, alloc)
		}
	}
	m.Heap.used += c.sizeWords() * WordSize
	alloc[in.AllocIndex] = c
}

// runTerminal runs a Body's final instruction, the one that yields the
// next Label: only the six ops handled here transfer control.
func (l *loader) runTerminal(in cmm.Instruction, m *Machine, buried [3]int, alloc map[int]*Closure) Label {
	switch in.Op {
	case cmm.OpEnterCaseContinuation:
		return enterCaseContinuationLabel(m)
	case cmm.OpEnter:
		return Enter(m, l.closureLoc(in.Loc, m, buried, alloc))
	case cmm.OpPrintError:
		fmt.Fprintln(m.Stderr, in.StringVal)
		m.halted = true
		return nil
	case cmm.OpBuiltin1:
		return l.runBuiltin1(in, m, buried, alloc)
	case cmm.OpBuiltin2:
		return l.runBuiltin2(in, m, buried, alloc)
	case cmm.OpExit:
		return Exit(m)
	}
	panic(fmt.Sprintf("runtime: unexpected terminal op %v", in.Op))
}

// builtinOpKind used by runBuiltin1/2 is implicit in which function below
// handles a given name: lang/cemit/emit.go's builtinCFunc table, restated
// here against this package's typed Go builtins (builtins.go) instead of
// C function names.
func (l *loader) runBuiltin1(in cmm.Instruction, m *Machine, buried [3]int, alloc map[int]*Closure) Label {
	switch in.BuiltinOp {
	case "Negate":
		return Negate(m, l.intLoc(in.Loc, m, buried, alloc))
	case "PrintInt":
		return PrintInt(m, l.intLoc(in.Loc, m, buried, alloc))
	case "PrintString":
		return PrintString(m, l.closureLoc(in.Loc, m, buried, alloc))
	}
	panic("runtime: unknown 1-arg builtin " + in.BuiltinOp)
}

func (l *loader) runBuiltin2(in cmm.Instruction, m *Machine, buried [3]int, alloc map[int]*Closure) Label {
	a := func() int64 { return l.intLoc(in.Loc, m, buried, alloc) }
	b := func() int64 { return l.intLoc(in.Loc2, m, buried, alloc) }
	switch in.BuiltinOp {
	case "Add":
		return Add(m, a(), b())
	case "Sub":
		return Sub(m, a(), b())
	case "Mul":
		return Mul(m, a(), b())
	case "Div":
		return Div(m, a(), b())
	case "Less":
		return Less(m, a(), b())
	case "LessEqual":
		return LessEqual(m, a(), b())
	case "Greater":
		return Greater(m, a(), b())
	case "GreaterEqual":
		return GreaterEqual(m, a(), b())
	case "EqualTo":
		return EqualTo(m, a(), b())
	case "NotEqualTo":
		return NotEqualTo(m, a(), b())
	case "Concat":
		return Concat(m, l.closureLoc(in.Loc, m, buried, alloc), l.closureLoc(in.Loc2, m, buried, alloc))
	}
	panic("runtime: unknown 2-arg builtin " + in.BuiltinOp)
}
