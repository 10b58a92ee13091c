package cmm

import (
	"fmt"

	"github.com/mna/thistle/lang/stg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Lower translates an analyzed STG program (spec.md §3.1, after stg.Analyze
// has run) into a Cmm program (spec.md §3.2) per the lowering rules of
// spec.md §4.3: one Cmm Function per STG LambdaForm, Let-bindings becoming
// AllocTable sub-functions, and each Case splitting into an outer
// bury-and-enter-scrutinee body plus an "Alts" continuation sub-function.
func Lower(prog *stg.Program) (*Program, error) {
	l := &lowering{prog: prog}

	out := &Program{}
	for _, b := range prog.Binds {
		idx := prog.GlobalIndex[b.Name]
		out.Functions = append(out.Functions, l.lowerTopForm(FunctionName{Kind: FuncGlobal, Name: b.Name}, &idx, b.Form))
	}
	entryIdx := prog.GlobalIndex[stg.EntryName]
	out.Entry = l.lowerTopForm(FunctionName{Kind: FuncEntry}, &entryIdx, prog.Entry)
	out.Ctors = ctorTables(prog)
	return out, nil
}

// ctorTables derives every user constructor's closure shape from
// prog.CtorFields (field storage kinds) and a scan of every ConstrApp/
// CtorAlt occurrence in the program (for the tag assigned at declaration,
// which stg.Program's CtorFields does not itself carry).
func ctorTables(prog *stg.Program) []CtorTable {
	tags := map[string]int{}
	var noteTag func(e stg.Expr)
	noteAlts := func(a *stg.Alts) {
		for _, c := range a.Ctors {
			tags[c.Ctor] = c.Tag
			noteTag(c.Body)
		}
		for _, a := range a.Ints {
			noteTag(a.Body)
		}
		for _, a := range a.Bools {
			noteTag(a.Body)
		}
		for _, a := range a.Strings {
			noteTag(a.Body)
		}
		noteTag(a.Default.Body)
	}
	noteTag = func(e stg.Expr) {
		switch e := e.(type) {
		case stg.ConstrApp:
			tags[e.Ctor] = e.Tag
		case stg.Let:
			for _, b := range e.Binds {
				noteTag(b.Form.Body)
			}
			noteTag(e.Body)
		case stg.Case:
			noteTag(e.Scrut)
			noteAlts(e.Alts)
		}
	}
	for _, b := range prog.Binds {
		noteTag(b.Form.Body)
	}
	noteTag(prog.Entry.Body)

	names := maps.Keys(prog.CtorFields)
	slices.Sort(names)

	out := make([]CtorTable, 0, len(names))
	for _, name := range names {
		var ptrs, ints, strs int
		for _, k := range prog.CtorFields[name] {
			switch k {
			case stg.IntStorage:
				ints++
			case stg.StringStorage:
				strs++
			default:
				ptrs++
			}
		}
		out = append(out, CtorTable{Ctor: name, Tag: tags[name], Pointers: ptrs, Ints: ints, Strings: strs})
	}
	return out
}

// lowering carries the whole-program tables that every Function lowering
// needs to consult: the global index and each constructor's declared field
// storage kinds (for both allocation and case-alternative field binding).
type lowering struct {
	prog *stg.Program
}

// lowerTopForm lowers one STG LambdaForm — a top-level binding, the program
// entry, or (via funcBuilder.lowerLet) a Let-introduced local closure — into
// a standalone Cmm Function.
func (l *lowering) lowerTopForm(name FunctionName, globalIdx *int, form *stg.LambdaForm) *Function {
	fb := newFuncBuilder(l, name)
	for i, p := range form.Params {
		fb.env[p] = Location{Kind: LocArg, Index: i}
	}
	for _, fv := range form.FreeVars {
		switch fv.Storage {
		case stg.PointerStorage:
			fb.env[fv.Name] = Location{Kind: LocBoundPointer, Index: fv.Index}
			fb.boundPtr++
		case stg.IntStorage:
			fb.env[fv.Name] = Location{Kind: LocBoundInt, Index: fv.Index}
			fb.boundInt++
		case stg.StringStorage:
			fb.env[fv.Name] = Location{Kind: LocBoundString, Index: fv.Index}
			fb.boundStr++
		}
	}

	body := fb.lowerTail(form.Body)
	return &Function{
		Name:          name,
		GlobalIndex:   globalIdx,
		ArgCount:      len(form.Params),
		BoundPointers: fb.boundPtr,
		BoundInts:     fb.boundInt,
		BoundStrings:  fb.boundStr,
		Body:          body,
		SubFunctions:  fb.subFuncs,
	}
}

// funcBuilder accumulates one Function's body while walking its STG Expr.
type funcBuilder struct {
	l    *lowering
	name FunctionName

	env       map[string]Location // fixed: Params (LocArg) + FreeVars (LocBound*)
	allocated map[string]Location // grows: names bound by a Let within this body (LocAllocated)
	nextAlloc int

	boundPtr, boundInt, boundStr int // only meaningful on the top-level lowerTopForm result

	instrs     []Instruction
	alloc      Allocation
	subFuncs   []*Function
	altCounter int
}

func newFuncBuilder(l *lowering, name FunctionName) *funcBuilder {
	return &funcBuilder{l: l, name: name, env: map[string]Location{}, allocated: map[string]Location{}}
}

func (fb *funcBuilder) emit(i Instruction) { fb.instrs = append(fb.instrs, i) }

// resolve finds name's current Location: a local Let-allocation, a
// parameter/free-variable of the enclosing LambdaForm, or — the fallback
// for every other reachable name — a top-level global.
func (fb *funcBuilder) resolve(name string) Location {
	if loc, ok := fb.allocated[name]; ok {
		return loc
	}
	if loc, ok := fb.env[name]; ok {
		return loc
	}
	if idx, ok := fb.l.prog.GlobalIndex[name]; ok {
		return Location{Kind: LocGlobal, Index: idx}
	}
	panic(fmt.Sprintf("cmm: unresolved name %q while lowering %s", name, fb.name))
}

// atomLoc resolves an Atom to a Location usable as an instruction operand.
// A NameAtom resolves through the environment; a literal atom is first
// materialized into its return register (IntRegister/StringRegister) or,
// for a boolean, addressed via the shared static True/False closure, since
// every instruction operand in this IR is a Location, never an immediate.
func (fb *funcBuilder) atomLoc(a stg.Atom) Location {
	switch a := a.(type) {
	case stg.NameAtom:
		return fb.resolve(a.Name)
	case stg.IntAtom:
		fb.emit(Instruction{Op: OpStoreInt, IntVal: a.Value})
		return Location{Kind: LocIntRegister}
	case stg.StringAtom:
		fb.emit(Instruction{Op: OpStoreString, StringVal: a.Value})
		return Location{Kind: LocStringRegister}
	case stg.BoolAtom:
		idx := 0
		if a.Value {
			idx = 1
		}
		return Location{Kind: LocBoolConst, Index: idx}
	default:
		panic(fmt.Sprintf("cmm: unexpected atom %T", a))
	}
}

// lowerTail lowers e as the tail of the current function body, mutating fb
// in place (Let prepends AllocTable instructions and recurses into the
// body; Case buries live variables, pushes a continuation, and recurses
// into the scrutinee) and returns the finished *Body once a genuine tail
// form (Literal/Apply/ConstrApp/Builtin/Error) is reached.
func (fb *funcBuilder) lowerTail(e stg.Expr) *Body {
	switch e := e.(type) {
	case stg.Literal:
		fb.lowerLiteral(e.Value)
		fb.emit(Instruction{Op: OpEnterCaseContinuation})
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	case stg.Apply:
		for _, a := range e.Args {
			fb.emit(Instruction{Op: OpAPush, Loc: fb.atomLoc(a)})
		}
		fb.emit(Instruction{Op: OpEnter, Loc: fb.resolve(e.Fn)})
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	case stg.ConstrApp:
		fb.lowerConstrApp(e)
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	case stg.Builtin:
		fb.lowerBuiltin(e)
		fb.emit(Instruction{Op: OpEnterCaseContinuation})
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	case stg.Error:
		fb.emit(Instruction{Op: OpPrintError, StringVal: e.Message})
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	case stg.Let:
		for _, b := range e.Binds {
			fb.lowerLetBind(b)
		}
		return fb.lowerTail(e.Body)

	case stg.Case:
		fb.lowerCase(e)
		return &Body{Kind: BodyNormal, Instrs: fb.instrs, Alloc: fb.alloc}

	default:
		panic(fmt.Sprintf("cmm: unexpected stg.Expr %T", e))
	}
}

func (fb *funcBuilder) lowerLiteral(a stg.Atom) {
	switch a := a.(type) {
	case stg.IntAtom:
		fb.emit(Instruction{Op: OpStoreInt, IntVal: a.Value})
	case stg.StringAtom:
		fb.emit(Instruction{Op: OpStoreString, StringVal: a.Value})
	case stg.BoolAtom:
		tag := int64(0)
		if a.Value {
			tag = 1
		}
		fb.emit(Instruction{Op: OpStoreTag, IntVal: tag, ArgCount: 0})
	case stg.NameAtom:
		fb.emit(Instruction{Op: OpEnter, Loc: fb.resolve(a.Name)})
	default:
		panic(fmt.Sprintf("cmm: unexpected literal atom %T", a))
	}
}

// lowerLetBind lowers one Let-introduced LambdaForm into its own Function
// (named by qualifying the binding's name with the enclosing function's
// name, so that unrelated bindings sharing a source-level name in two
// different functions never collide), records its allocation slot, and
// emits the AllocTable instruction that materializes it.
func (fb *funcBuilder) lowerLetBind(b stg.Binding) {
	subName := FunctionName{Kind: FuncGlobal, Name: fmt.Sprintf("%s.%s", fb.name, b.Name)}
	subFn := fb.l.lowerTopForm(subName, nil, b.Form)
	fb.subFuncs = append(fb.subFuncs, subFn)

	idx := fb.nextAlloc
	fb.nextAlloc++
	fb.allocated[b.Name] = Location{Kind: LocAllocated, Index: idx}

	var capPtr, capInt, capStr []Location
	for _, fv := range b.Form.FreeVars {
		switch fv.Storage {
		case stg.PointerStorage:
			capPtr = append(capPtr, fb.resolve(fv.Name))
		case stg.IntStorage:
			capInt = append(capInt, fb.resolve(fv.Name))
		case stg.StringStorage:
			capStr = append(capStr, fb.resolve(fv.Name))
		}
	}
	fb.emit(Instruction{
		Op: OpAllocTable, SubFunc: subName, AllocIndex: idx,
		CapturedPointers: capPtr, CapturedInts: capInt, CapturedStrings: capStr,
	})
	fb.alloc.Tables++
	fb.alloc.Pointers += len(capPtr)
	fb.alloc.Ints += len(capInt)
	fb.alloc.Strings += len(capStr)
}

// lowerConstrApp stages a constructor's arguments (pushing pointer-kinded
// fields onto the A-stack, burying int/string-kinded fields onto the
// B-stack, in declaration order within each kind) and allocates the
// constructor's own closure, then returns it via the tag registers.
// Materializing the closure uniformly — whether this ConstrApp is the body
// of an updateable thunk (where update_constructor will later splice the
// result into the thunk being forced) or a case scrutinee evaluated
// in-line — means a case Alts function can always read a matched
// constructor's fields the same way any closure reads its own bound
// fields: from NodeRegister, by kind-partitioned position.
func (fb *funcBuilder) lowerConstrApp(e stg.ConstrApp) {
	fields := fb.l.prog.CtorFields[e.Ctor]
	var capPtr, capInt, capStr []Location
	for i, a := range e.Args {
		kind := stg.PointerStorage
		if i < len(fields) {
			kind = fields[i]
		}
		loc := fb.atomLoc(a)
		switch kind {
		case stg.IntStorage:
			fb.emit(Instruction{Op: OpBuryInt, Loc: loc})
			capInt = append(capInt, loc)
		case stg.StringStorage:
			fb.emit(Instruction{Op: OpBuryString, Loc: loc})
			capStr = append(capStr, loc)
		default:
			fb.emit(Instruction{Op: OpAPush, Loc: loc})
			capPtr = append(capPtr, loc)
		}
	}
	idx := fb.nextAlloc
	fb.nextAlloc++
	fb.emit(Instruction{
		Op: OpAllocTable, AllocIndex: idx,
		SubFunc:          FunctionName{Kind: FuncGlobal, Name: "$ctor." + e.Ctor},
		CapturedPointers: capPtr, CapturedInts: capInt, CapturedStrings: capStr,
	})
	fb.alloc.Tables++
	fb.alloc.Pointers += len(capPtr)
	fb.alloc.Ints += len(capInt)
	fb.alloc.Strings += len(capStr)
	fb.emit(Instruction{Op: OpStoreTag, IntVal: int64(e.Tag), ArgCount: len(e.Args)})
	fb.emit(Instruction{Op: OpEnter, Loc: Location{Kind: LocAllocated, Index: idx}})
}

func (fb *funcBuilder) lowerBuiltin(e stg.Builtin) {
	switch len(e.Args) {
	case 1:
		fb.emit(Instruction{Op: OpBuiltin1, BuiltinOp: e.Op, Loc: fb.atomLoc(e.Args[0])})
	case 2:
		loc1 := fb.atomLoc(e.Args[0])
		loc2 := fb.atomLoc(e.Args[1])
		fb.emit(Instruction{Op: OpBuiltin2, BuiltinOp: e.Op, Loc: loc1, Loc2: loc2})
	default:
		panic(fmt.Sprintf("cmm: builtin %s with unsupported arity %d", e.Op, len(e.Args)))
	}
}

// lowerCase implements spec.md §4.3's Case split: bury every variable that
// the alternatives need but that scrut's own evaluation does not (i.e.
// every non-global name in fb's current scope referenced by an alt body),
// push a continuation referencing the new Alts sub-function, then lower
// scrut as this same function's new tail.
func (fb *funcBuilder) lowerCase(e stg.Case) {
	live := caseLiveNames(e.Alts, fb.l.prog.CtorFields)

	type buried struct {
		name string
		loc  Location
	}
	var ptrs, ints, strs []buried
	for _, name := range live {
		loc := fb.resolve(name)
		switch loc.Kind {
		case LocGlobal:
			// the global table is its own GC root; no burial needed
		case LocBoundInt, LocBuriedInt:
			ints = append(ints, buried{name, loc})
		case LocBoundString, LocBuriedString:
			strs = append(strs, buried{name, loc})
		default:
			ptrs = append(ptrs, buried{name, loc})
		}
	}
	for _, b := range ptrs {
		fb.emit(Instruction{Op: OpBuryPointer, Loc: b.loc})
	}
	for _, b := range ints {
		fb.emit(Instruction{Op: OpBuryInt, Loc: b.loc})
	}
	for _, b := range strs {
		fb.emit(Instruction{Op: OpBuryString, Loc: b.loc})
	}

	fb.altCounter++
	altsName := FunctionName{Kind: FuncAlts, Parent: fb.name.String(), Index: fb.altCounter - 1}
	fb.emit(Instruction{Op: OpPushContinuation, SubFunc: altsName})

	restore := map[string]Location{}
	for i, b := range ptrs {
		restore[b.name] = Location{Kind: LocBuriedPointer, Index: i}
	}
	for i, b := range ints {
		restore[b.name] = Location{Kind: LocBuriedInt, Index: i}
	}
	for i, b := range strs {
		restore[b.name] = Location{Kind: LocBuriedString, Index: i}
	}

	altsFn := fb.l.lowerAlts(altsName, e.Alts, restore, len(ptrs), len(ints), len(strs))
	fb.subFuncs = append(fb.subFuncs, altsFn)

	fb.lowerTail(e.Scrut) // continues appending to fb's own instruction stream
}

// lowerAlts builds the Alts sub-function: restore the buried variables
// (already given by restore, a name->Location map the selector builders
// seed their environment from) and dispatch on the scrutinee via one
// Selector per alternative, binding constructor fields (read off
// NodeRegister, partitioned pointer/int/string, exactly like any other
// closure's own bound fields) for AltCtor selectors.
func (l *lowering) lowerAlts(name FunctionName, alts *stg.Alts, restore map[string]Location, buriedPtr, buriedInt, buriedStr int) *Function {
	body := &Body{Kind: BodyCase, BuriedPointers: buriedPtr, BuriedInts: buriedInt, BuriedStrings: buriedStr}
	var subFuncs []*Function

	newSelFB := func(extra map[string]Location) *funcBuilder {
		fb := newFuncBuilder(l, name)
		for k, v := range restore {
			fb.env[k] = v
		}
		for k, v := range extra {
			fb.env[k] = v
		}
		return fb
	}

	switch alts.Kind {
	case stg.AltInt:
		for _, a := range alts.Ints {
			fb := newSelFB(nil)
			b := fb.lowerTail(a.Body)
			subFuncs = append(subFuncs, fb.subFuncs...)
			body.Selectors = append(body.Selectors, Selector{IntVal: a.Value, Body: b})
		}
	case stg.AltBool:
		for _, a := range alts.Bools {
			fb := newSelFB(nil)
			b := fb.lowerTail(a.Body)
			subFuncs = append(subFuncs, fb.subFuncs...)
			tag := int64(0)
			if a.Value {
				tag = 1
			}
			body.Selectors = append(body.Selectors, Selector{IntVal: tag, Body: b})
		}
	case stg.AltString:
		for _, a := range alts.Strings {
			fb := newSelFB(nil)
			b := fb.lowerTail(a.Body)
			subFuncs = append(subFuncs, fb.subFuncs...)
			body.Selectors = append(body.Selectors, Selector{StringVal: a.Value, Body: b})
		}
	case stg.AltCtor:
		for _, a := range alts.Ctors {
			fields := l.prog.CtorFields[a.Ctor]
			ptrNames, intNames, strNames := partitionFields(a.Fields, fields)
			extra := map[string]Location{}
			for i, n := range ptrNames {
				extra[n] = Location{Kind: LocBoundPointer, Index: i}
			}
			for i, n := range intNames {
				extra[n] = Location{Kind: LocBoundInt, Index: i}
			}
			for i, n := range strNames {
				extra[n] = Location{Kind: LocBoundString, Index: i}
			}
			fb := newSelFB(extra)
			b := fb.lowerTail(a.Body)
			subFuncs = append(subFuncs, fb.subFuncs...)
			body.Selectors = append(body.Selectors, Selector{Ctor: a.Ctor, Tag: a.Tag, Body: b})
		}
	}

	defFB := newSelFB(nil)
	if alts.Default.Bind != "" {
		defFB.env[alts.Default.Bind] = defaultScrutLocation(alts.Kind)
	}
	defBody := defFB.lowerTail(alts.Default.Body)
	subFuncs = append(subFuncs, defFB.subFuncs...)
	body.Selectors = append(body.Selectors, Selector{IsDefault: true, Body: defBody})

	return &Function{Name: name, Body: body, SubFunctions: subFuncs}
}

// defaultScrutLocation addresses the scrutinee's own value when a case
// default binds it to a name rather than discarding it with a wildcard.
// Booleans and constructors alike surface through the tag registers, so
// both read back via the same boolean-constant addressing used elsewhere
// for a tag-carrying value with no further fields of interest to the
// default arm; Int/String scrutinees read back from their own register.
func defaultScrutLocation(kind stg.AltKind) Location {
	switch kind {
	case stg.AltInt:
		return Location{Kind: LocIntRegister}
	case stg.AltString:
		return Location{Kind: LocStringRegister}
	default:
		return Location{Kind: LocBoundPointer, Index: 0}
	}
}

// partitionFields splits a CtorAlt's bound field names into
// pointer/int/string sub-lists, in declaration order within each
// partition, matching the physical field layout every closure (including
// a materialized constructor) is allocated with.
func partitionFields(names []string, kinds []stg.StorageKind) (ptrs, ints, strs []string) {
	for i, n := range names {
		kind := stg.PointerStorage
		if i < len(kinds) {
			kind = kinds[i]
		}
		switch kind {
		case stg.IntStorage:
			ints = append(ints, n)
		case stg.StringStorage:
			strs = append(strs, n)
		default:
			ptrs = append(ptrs, n)
		}
	}
	return ptrs, ints, strs
}

// caseLiveNames collects every name referenced by alts' bodies that is not
// bound within the alternative referencing it (a constructor field, a
// default bind, or a nested Let/lambda parameter), in a stable order. The
// caller still filters out plain global references, which need no
// burying.
func caseLiveNames(alts *stg.Alts, ctorFields map[string][]stg.StorageKind) []string {
	seen := map[string]bool{}
	var order []string
	note := func(n string) {
		if !seen[n] {
			seen[n] = true
			order = append(order, n)
		}
	}

	walkBody := func(bound map[string]bool, body stg.Expr) {
		collectFreeRefs(body, bound, note)
	}
	for _, a := range alts.Ints {
		walkBody(nil, a.Body)
	}
	for _, a := range alts.Bools {
		walkBody(nil, a.Body)
	}
	for _, a := range alts.Strings {
		walkBody(nil, a.Body)
	}
	for _, a := range alts.Ctors {
		bound := map[string]bool{}
		for _, n := range a.Fields {
			bound[n] = true
		}
		walkBody(bound, a.Body)
	}
	bound := map[string]bool{}
	if alts.Default.Bind != "" {
		bound[alts.Default.Bind] = true
	}
	walkBody(bound, alts.Default.Body)

	slices.Sort(order)
	return order
}

// collectFreeRefs walks e, reporting (via note) every name referenced that
// is not in bound; Let/Case introduce further bound names exactly as
// lang/stg's own free-variable walk does, just without needing storage
// classification (the caller only wants live names, not their kind).
func collectFreeRefs(e stg.Expr, bound map[string]bool, note func(string)) {
	use := func(name string) {
		if !bound[name] {
			note(name)
		}
	}
	useAtom := func(a stg.Atom) {
		if na, ok := a.(stg.NameAtom); ok {
			use(na.Name)
		}
	}
	extend := func(names ...string) map[string]bool {
		out := make(map[string]bool, len(bound)+len(names))
		for k := range bound {
			out[k] = true
		}
		for _, n := range names {
			out[n] = true
		}
		return out
	}

	switch e := e.(type) {
	case stg.Literal:
		useAtom(e.Value)
	case stg.Error:
	case stg.Apply:
		use(e.Fn)
		for _, a := range e.Args {
			useAtom(a)
		}
	case stg.ConstrApp:
		for _, a := range e.Args {
			useAtom(a)
		}
	case stg.Builtin:
		for _, a := range e.Args {
			useAtom(a)
		}
	case stg.Let:
		names := make([]string, len(e.Binds))
		for i, b := range e.Binds {
			names[i] = b.Name
		}
		inner := extend(names...)
		for _, b := range e.Binds {
			collectFreeRefs(b.Form.Body, extend2(inner, b.Form.Params), note)
		}
		collectFreeRefs(e.Body, inner, note)
	case stg.Case:
		collectFreeRefs(e.Scrut, bound, note)
		for _, a := range e.Alts.Ints {
			collectFreeRefs(a.Body, bound, note)
		}
		for _, a := range e.Alts.Bools {
			collectFreeRefs(a.Body, bound, note)
		}
		for _, a := range e.Alts.Strings {
			collectFreeRefs(a.Body, bound, note)
		}
		for _, a := range e.Alts.Ctors {
			collectFreeRefs(a.Body, extend(a.Fields...), note)
		}
		defBound := bound
		if e.Alts.Default.Bind != "" {
			defBound = extend(e.Alts.Default.Bind)
		}
		collectFreeRefs(e.Alts.Default.Body, defBound, note)
	default:
		panic(fmt.Sprintf("cmm: unexpected stg.Expr %T in collectFreeRefs", e))
	}
}

func extend2(bound map[string]bool, names []string) map[string]bool {
	if len(names) == 0 {
		return bound
	}
	out := make(map[string]bool, len(bound)+len(names))
	for k := range bound {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}
