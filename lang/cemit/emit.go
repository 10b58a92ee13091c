// Package cemit translates a lang/cmm Program into a single C translation
// unit, following spec.md §6's emitted-C contract: one C function per Cmm
// function returning void* (the next code label), a static info-table
// struct per closure shape, and calls into the embedded runtime (c/runtime.c,
// c/runtime.h) for check_application_update, heap_reserve, and the rest of
// the ABI §6 lists.
//
// Addressing follows directly from how lang/cmm/lower.go builds a
// function's Locations: a function's own BoundPointer/Int/String fields
// are read off NodeRegister using that function's own field-count shape,
// except inside a constructor-kind case alternative, where NodeRegister
// instead names the just-matched constructor closure and the same
// LocBoundPointer/Int/String kinds address its fields using the matched
// constructor's shape — the two never overlap within one function because
// lowerCase buries every enclosing-scope variable an alternative needs
// before reducing the scrutinee (see lang/cmm/lower.go's lowerCase).
package cemit

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/mna/thistle/lang/cmm"
)

//go:embed c/runtime.c c/runtime.h
var runtimeSrc embed.FS

// BaseHeapSize and StackSize mirror lang/runtime's defaults; the emitted
// program's main() passes them to setup() unless Options overrides them.
const (
	BaseHeapSize = 128
	StackSize    = 1024
)

// Options configures Emit's output. The zero value selects
// BaseHeapSize/StackSize, matching lang/runtime's own defaults; the CLI's
// compile command overrides HeapSize from the THISTLEC_HEAP_SIZE
// environment variable (spec.md §9's BASE_HEAP_SIZE).
type Options struct {
	HeapSize  int
	StackSize int
}

func (o Options) withDefaults() Options {
	if o.HeapSize <= 0 {
		o.HeapSize = BaseHeapSize
	}
	if o.StackSize <= 0 {
		o.StackSize = StackSize
	}
	return o
}

type shape struct{ ptrs, ints, strs int }

func (s shape) fieldOffset(kind cmm.LocationKind, idx int) int {
	const header = 8
	switch kind {
	case cmm.LocBoundPointer:
		return header + idx*8
	case cmm.LocBoundInt:
		return header + s.ptrs*8 + idx*8
	case cmm.LocBoundString:
		return header + s.ptrs*8 + s.ints*8 + idx*8
	}
	panic("cemit: fieldOffset of non-bound kind")
}

// buriedDepth computes EnterCaseContinuation's "depth from top" for a
// buried variable, given the case's own buried-field counts: strings were
// pushed last (shallowest), then ints, then pointers (deepest) — see
// lang/cmm/lower.go's lowerCase, which buries in that order.
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
	panic("cemit: buriedDepth of non-buried kind")
}

// Emit renders prog as a complete, compilable C translation unit.
func Emit(prog *cmm.Program, opts ...Options) (string, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	opt = opt.withDefaults()
	e := &emitter{prog: prog, out: newOutputWriter("    "), ctorShape: map[string]shape{}, literals: swiss.NewMap[string, int](8), opts: opt}
	for _, c := range prog.Ctors {
		e.ctorShape[c.Ctor] = shape{ptrs: c.Pointers, ints: c.Ints, strs: c.Strings}
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

	e.writePrelude()
	e.collectLiterals(all)
	e.writeLiterals()
	e.writeCtorTables()

	for _, f := range all {
		e.out.writeil(fmt.Sprintf("static void *%s(void);", cname(f.Name)))
	}
	e.out.writel("")

	for _, f := range all {
		if f.Name.Kind == cmm.FuncGlobal {
			e.writeClosureInfoTable(f)
		}
	}
	e.out.writel("")

	for _, f := range all {
		e.writeFunction(f)
	}

	e.writeMain(prog)

	return e.out.String(), nil
}

type emitter struct {
	out       *outputWriter
	prog      *cmm.Program
	ctorShape map[string]shape
	// literals maps each distinct literal text to its stable lit_N index,
	// assigned by collectLiterals. swiss.Map for the same reason lang/stg's
	// free-variable sets use it (lang/stg/freevars.go): a fast table keyed
	// on a value that only needs ==/hash, never ordering — the index, not
	// map iteration, carries this table's one ordering requirement.
	literals *swiss.Map[string, int]
	opts     Options
}

// collectLiterals walks every function's body (recursing into case
// selectors) gathering the distinct string literal texts OpStoreString and
// OpAllocString reference, so each gets exactly one static interned closure
// regardless of how many call sites produce it.
func (e *emitter) collectLiterals(all []*cmm.Function) {
	var walkBody func(*cmm.Body)
	walkInstrs := func(instrs []cmm.Instruction) {
		for _, in := range instrs {
			if in.Op == cmm.OpStoreString || in.Op == cmm.OpAllocString {
				if _, ok := e.literals.Get(in.StringVal); !ok {
					e.literals.Put(in.StringVal, e.literals.Count())
				}
			}
		}
	}
	walkBody = func(b *cmm.Body) {
		if b.Kind == cmm.BodyNormal {
			walkInstrs(b.Instrs)
			return
		}
		for _, sel := range b.Selectors {
			walkBody(sel.Body)
		}
	}
	for _, f := range all {
		walkBody(f.Body)
	}
}

func (e *emitter) literalFuncName(s string) string {
	i, _ := e.literals.Get(s)
	return fmt.Sprintf("lit_%d", i)
}

// writeLiterals emits one static, identity-evac'd string closure and
// accessor per distinct literal, following lang/cemit/c/runtime.c's
// static_string_info_table (spec.md section 9's interning decision).
func (e *emitter) writeLiterals() {
	ordered := make([]string, e.literals.Count())
	e.literals.Iter(func(s string, i int) bool {
		ordered[i] = s
		return true
	})
	for i, s := range ordered {
		e.out.writeil(fmt.Sprintf("static const struct { const InfoTable *info; char chars[%d]; } lit_%d_storage = { &static_string_info_table, %q };", len(s)+1, i, s))
		e.out.writeil(fmt.Sprintf("static void *lit_%d(void) { return (void *)&lit_%d_storage; }", i, i))
	}
	e.out.writel("")
}

func cname(n cmm.FunctionName) string {
	return "fn_" + sanitize(n.String())
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (e *emitter) writePrelude() {
	e.out.writel("/* Generated by thistlec. Do not edit. */")
	e.out.writel(`#include "runtime.h"`)
	e.out.writel("#include <string.h>")
	e.out.writel("")
}

// writeCtorTables emits one static InfoTable plus matching evac function
// per user data constructor, so that the "$ctor.<Name>" pseudo sub-function
// lang/cmm's ConstrApp lowering references resolves to something concrete.
func (e *emitter) writeCtorTables() {
	for _, c := range e.prog.Ctors {
		name := "ctor_" + sanitize(c.Ctor)
		total := c.Pointers + c.Ints + c.Strings
		e.out.writeil(fmt.Sprintf("static Label %s_entry(void) {", name))
		e.out.push()
		e.out.writeil(fmt.Sprintf("TagRegister = %d;", c.Tag))
		e.out.writeil(fmt.Sprintf("ConstructorArgCountRegister = %d;", total))
		e.out.writeil("return enter_case_continuation();")
		e.out.pop()
		e.out.writeil("}")

		e.writeGenericEvac(name, shape{ptrs: c.Pointers, ints: c.Ints, strs: c.Strings})

		e.out.writeil(fmt.Sprintf("const InfoTable %s_info = {\"%s\", %s_entry, %s_evac};", name, c.Ctor, name, name))
		e.out.writel("")
	}
}

// writeGenericEvac emits the shared shape of evac every ordinary closure
// (constructor or function) uses: copy header and fields verbatim into
// to-space, forward the old object, then evacuate the copied pointer
// fields in place — lang/runtime/closure.go's genericEvac, transcribed.
func (e *emitter) writeGenericEvac(name string, s shape) {
	total := 8 + s.ptrs*8 + s.ints*8 + s.strs*8
	e.out.writeil(fmt.Sprintf("static void *%s_evac(void *closure) {", name))
	e.out.push()
	e.out.writeil("void *forwarded;")
	e.out.writeil("if (already_evac(closure, &forwarded)) { return forwarded; }")
	e.out.writeil(fmt.Sprintf("void *n = tospace_copy(closure, %d);", total))
	e.out.writeil("mark_forwarded(closure, n);")
	e.out.writeil(fmt.Sprintf("for (int i = 0; i < %d; i++) {", s.ptrs))
	e.out.push()
	e.out.writeil("void *p = read_ptr(n, 8 + i*8);")
	e.out.writeil("void *moved = evac_any(p);")
	e.out.writeil("*(void **)((uint8_t *)n + 8 + i*8) = moved;")
	e.out.pop()
	e.out.writeil("}")
	e.out.writeil(fmt.Sprintf("for (int i = 0; i < %d; i++) {", s.strs))
	e.out.push()
	e.out.writeil(fmt.Sprintf("void *p = read_ptr(n, 8 + %d + i*8);", s.ptrs*8+s.ints*8))
	e.out.writeil("void *moved = evac_any(p);")
	e.out.writeil(fmt.Sprintf("*(void **)((uint8_t *)n + 8 + %d + i*8) = moved;", s.ptrs*8+s.ints*8))
	e.out.pop()
	e.out.writeil("}")
	e.out.writeil("return n;")
	e.out.pop()
	e.out.writeil("}")
}

// writeClosureInfoTable emits the static InfoTable for one FuncGlobal
// binding's closure shape, whether it is a top-level binding (which always
// has zero bound fields, being closed by construction) or a Let-introduced
// closure nested within another function's body (which captures whatever
// free variables lang/stg's analysis found for it).
func (e *emitter) writeClosureInfoTable(f *cmm.Function) {
	name := cname(f.Name)
	e.writeGenericEvac(name, shape{ptrs: f.BoundPointers, ints: f.BoundInts, strs: f.BoundStrings})
	e.out.writeil(fmt.Sprintf("const InfoTable %s_info = {\"%s\", %s, %s_evac};", name, f.Name.String(), name, name))
}

func (e *emitter) writeFunction(f *cmm.Function) {
	name := cname(f.Name)
	e.out.writeil(fmt.Sprintf("static void *%s(void) {", name))
	e.out.push()

	if f.Name.Kind == cmm.FuncGlobal && f.ArgCount == 0 {
		e.out.writeil("void *self = NodeRegister;")
		e.out.writeil("push_update_frame(self);")
	} else if f.Name.Kind == cmm.FuncGlobal && f.ArgCount >= 1 {
		e.out.writeil("{ Label l = check_application_update(NodeRegister, " + fmt.Sprintf("%d", f.ArgCount) + "); if (l) return l; }")
	}

	fnShape := shape{ptrs: f.BoundPointers, ints: f.BoundInts, strs: f.BoundStrings}
	e.writeBody(f.Body, fnShape, [3]int{})

	e.out.pop()
	e.out.writeil("}")
	e.out.writel("")
}

// writeBody emits one Body's code. buried names the enclosing case's own
// buried-variable counts — meaningful only when b.Instrs (BodyNormal) is a
// case alternative's straight-line code, since a Body never accumulates
// buried context across more than one case: a nested case buries and reads
// back relative to its own fresh Body.BuriedPointers/Ints/Strings, per this
// package's doc comment.
func (e *emitter) writeBody(b *cmm.Body, bound shape, buried [3]int) {
	e.out.writeil(fmt.Sprintf("heap_reserve(%d);", allocBytes(b.Alloc)))

	if b.Kind == cmm.BodyNormal {
		for _, instr := range b.Instrs {
			e.writeInstr(instr, bound, buried)
		}
		return
	}

	e.writeSelectors(b, bound)
}

// writeSelectors dispatches on whichever register this case's scrutinee
// left its result in. Selectors are homogeneous within one Body (all
// constructor-tag, all int, all string) plus exactly one default, per
// lang/cmm/lower.go's lowerCase; string selectors compare by content since
// C has no switch over pointers-to-chars, so they get an if/else-if chain
// instead of the switch the other two kinds use.
func (e *emitter) writeSelectors(b *cmm.Body, bound shape) {
	sels := b.Selectors
	ownBuried := [3]int{b.BuriedPointers, b.BuriedInts, b.BuriedStrings}
	kind := selectorKind(sels)
	if kind == "string" {
		for _, sel := range sels {
			if sel.IsDefault {
				continue
			}
			e.out.writeil(fmt.Sprintf("if (strcmp(string_chars(StringRegister), %q) == 0) {", sel.StringVal))
			e.out.push()
			e.writeBody(sel.Body, bound, ownBuried)
			e.out.pop()
			e.out.writeil("} else")
		}
		e.out.writeil("{")
		e.out.push()
		for _, sel := range sels {
			if sel.IsDefault {
				e.writeBody(sel.Body, bound, ownBuried)
			}
		}
		e.out.pop()
		e.out.writeil("}")
		return
	}

	reg := "TagRegister"
	if kind == "int" {
		reg = "IntRegister"
	}
	e.out.writeil(fmt.Sprintf("switch (%s) {", reg))
	e.out.push()
	for _, sel := range sels {
		if sel.IsDefault {
			continue
		}
		e.out.writeil(fmt.Sprintf("case %s: {", selectorCase(sel)))
		e.out.push()
		selShape := bound
		if sel.Ctor != "" {
			selShape = e.ctorShape[sel.Ctor]
		}
		e.writeBody(sel.Body, selShape, ownBuried)
		e.out.pop()
		e.out.writeil("}")
	}
	e.out.writeil("default: {")
	e.out.push()
	for _, sel := range sels {
		if sel.IsDefault {
			e.writeBody(sel.Body, bound, ownBuried)
		}
	}
	e.out.pop()
	e.out.writeil("}")
	e.out.pop()
	e.out.writeil("}")
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

func selectorCase(s cmm.Selector) string {
	if s.Ctor != "" {
		return fmt.Sprintf("%d", s.Tag)
	}
	return fmt.Sprintf("%d", s.IntVal)
}

// builtinCFunc maps a Cmm BuiltinOp name (as lang/simplify/types.go's
// opName/surfaceBuiltinName produce them) to the matching C function in
// lang/cemit/c/runtime.c.
func builtinCFunc(op string) string {
	switch op {
	case "Add":
		return "builtin_add"
	case "Sub":
		return "builtin_sub"
	case "Mul":
		return "builtin_mul"
	case "Div":
		return "builtin_div"
	case "Negate":
		return "builtin_negate"
	case "Less":
		return "builtin_less"
	case "LessEqual":
		return "builtin_less_equal"
	case "Greater":
		return "builtin_greater"
	case "GreaterEqual":
		return "builtin_greater_equal"
	case "EqualTo":
		return "builtin_equal_to"
	case "NotEqualTo":
		return "builtin_not_equal_to"
	case "Concat":
		return "builtin_concat"
	case "PrintInt":
		return "builtin_print_int"
	case "PrintString":
		return "builtin_print_string"
	}
	panic("cemit: unknown builtin " + op)
}

func allocBytes(a cmm.Allocation) int {
	return a.Tables*8 + a.Pointers*8 + a.Ints*8 + a.Strings*8 + a.LiteralStrings
}

func (e *emitter) locExpr(loc cmm.Location, bound shape, buried [3]int) string {
	switch loc.Kind {
	case cmm.LocArg:
		return fmt.Sprintf("a_arg(%d)", loc.Index)
	case cmm.LocBoundPointer:
		return fmt.Sprintf("read_ptr(NodeRegister, %d)", bound.fieldOffset(loc.Kind, loc.Index))
	case cmm.LocBoundInt:
		return fmt.Sprintf("read_int(NodeRegister, %d)", bound.fieldOffset(loc.Kind, loc.Index))
	case cmm.LocBoundString:
		return fmt.Sprintf("read_ptr(NodeRegister, %d)", bound.fieldOffset(loc.Kind, loc.Index))
	case cmm.LocGlobal:
		return fmt.Sprintf("Globals[%d]", loc.Index)
	case cmm.LocAllocated:
		return fmt.Sprintf("alloc%d", loc.Index)
	case cmm.LocBuriedPointer:
		return fmt.Sprintf("buried_pointer(%d)", buriedDepth(buried, loc.Kind, loc.Index))
	case cmm.LocBuriedInt:
		return fmt.Sprintf("buried_int(%d)", buriedDepth(buried, loc.Kind, loc.Index))
	case cmm.LocBuriedString:
		return fmt.Sprintf("buried_string(%d)", buriedDepth(buried, loc.Kind, loc.Index))
	case cmm.LocIntRegister:
		return "IntRegister"
	case cmm.LocStringRegister:
		return "StringRegister"
	case cmm.LocBoolConst:
		if loc.Index == 1 {
			return "true_closure"
		}
		return "false_closure"
	}
	panic("cemit: unknown location kind")
}

func (e *emitter) writeInstr(in cmm.Instruction, bound shape, buried [3]int) {
	switch in.Op {
	case cmm.OpStoreInt:
		e.out.writeil(fmt.Sprintf("IntRegister = %d;", in.IntVal))
	case cmm.OpStoreString:
		e.out.writeil(fmt.Sprintf("StringRegister = %s();", e.literalFuncName(in.StringVal)))
	case cmm.OpStoreTag:
		e.out.writeil(fmt.Sprintf("TagRegister = %d; ConstructorArgCountRegister = %d;", in.IntVal, in.ArgCount))
	case cmm.OpEnterCaseContinuation:
		e.out.writeil("return enter_case_continuation();")
	case cmm.OpEnter:
		e.out.writeil(fmt.Sprintf("return enter(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpPrintError:
		e.out.writeil(fmt.Sprintf("print_error(%q); return NULL;", in.StringVal))
	case cmm.OpBuiltin1:
		e.out.writeil(fmt.Sprintf("return %s(%s);", builtinCFunc(in.BuiltinOp), e.locExpr(in.Loc, bound, buried)))
	case cmm.OpBuiltin2:
		e.out.writeil(fmt.Sprintf("return %s(%s, %s);", builtinCFunc(in.BuiltinOp), e.locExpr(in.Loc, bound, buried), e.locExpr(in.Loc2, bound, buried)))
	case cmm.OpExit:
		e.out.writeil("return runtime_exit();")
	case cmm.OpAPush:
		e.out.writeil(fmt.Sprintf("a_push(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpBuryPointer:
		e.out.writeil(fmt.Sprintf("bury_pointer(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpBuryInt:
		e.out.writeil(fmt.Sprintf("bury_int(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpBuryString:
		e.out.writeil(fmt.Sprintf("bury_string(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpAllocTable:
		e.writeAllocTable(in, bound, buried)
	case cmm.OpAllocInt:
		e.out.writeil(fmt.Sprintf("void *alloc%d = heap_cursor();", in.AllocIndex))
		e.out.writeil("heap_write_info_table(&int_value_info_table);")
		e.out.writeil(fmt.Sprintf("heap_write_int(%s);", e.locExpr(in.Loc, bound, buried)))
	case cmm.OpAllocString:
		e.out.writeil(fmt.Sprintf("void *alloc%d = %s();", in.AllocIndex, e.literalFuncName(in.StringVal)))
	case cmm.OpPushContinuation:
		e.out.writeil(fmt.Sprintf("push_continuation(%s);", cname(in.SubFunc)))
	default:
		panic(fmt.Sprintf("cemit: unhandled op %v", in.Op))
	}
}

// writeAllocTable emits a constructor/closure allocation: copy each
// captured field (re-read from its original, stable Location — not from
// the temporary bury/A-push done just above purely to root it across this
// call) into the new closure, then pop exactly as many temporary roots as
// were pushed, restoring the A/B-stack depth lowerCase's own LocBuriedX
// addressing assumes for the rest of this body. See this package's doc
// comment and lang/cmm/lower.go's lowerConstrApp.
func (e *emitter) writeAllocTable(in cmm.Instruction, bound shape, buried [3]int) {
	shapeName := shapeCName(in.SubFunc)
	e.out.writeil(fmt.Sprintf("void *alloc%d = heap_cursor();", in.AllocIndex))
	e.out.writeil(fmt.Sprintf("heap_write_info_table(&%s_info);", shapeName))
	for i, loc := range in.CapturedPointers {
		e.out.writeil(fmt.Sprintf("heap_write_ptr(%s); /* ptr field %d */", e.locExpr(loc, bound, buried), i))
	}
	for i, loc := range in.CapturedInts {
		e.out.writeil(fmt.Sprintf("heap_write_int(%s); /* int field %d */", e.locExpr(loc, bound, buried), i))
	}
	for i, loc := range in.CapturedStrings {
		e.out.writeil(fmt.Sprintf("heap_write_ptr(%s); /* string field %d */", e.locExpr(loc, bound, buried), i))
	}
	if n := len(in.CapturedInts) + len(in.CapturedStrings); n > 0 {
		e.out.writeil(fmt.Sprintf("b_unbury(%d);", n))
	}
	if n := len(in.CapturedPointers); n > 0 {
		e.out.writeil(fmt.Sprintf("a_unpush(%d);", n))
	}
}

func shapeCName(n cmm.FunctionName) string {
	if strings.HasPrefix(n.Name, "$ctor.") {
		return "ctor_" + sanitize(strings.TrimPrefix(n.Name, "$ctor."))
	}
	return cname(n)
}

func (e *emitter) writeMain(prog *cmm.Program) {
	var maxGlobal int
	for _, f := range prog.Functions {
		if f.GlobalIndex != nil && *f.GlobalIndex+1 > maxGlobal {
			maxGlobal = *f.GlobalIndex + 1
		}
	}

	e.out.writeil("int main(void) {")
	e.out.push()
	e.out.writeil(fmt.Sprintf("setup(%d, %d);", e.opts.HeapSize, e.opts.StackSize))
	e.out.writeil(fmt.Sprintf("Globals = calloc(%d, sizeof(void *));", maxGlobal))
	e.out.writeil(fmt.Sprintf("GlobalCount = %d;", maxGlobal))

	sorted := append([]*cmm.Function(nil), prog.Functions...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].GlobalIndex == nil || sorted[j].GlobalIndex == nil {
			return false
		}
		return *sorted[i].GlobalIndex < *sorted[j].GlobalIndex
	})
	for _, f := range sorted {
		if f.GlobalIndex == nil {
			continue
		}
		name := cname(f.Name)
		e.out.writeil(fmt.Sprintf("static const struct { const InfoTable *info; } %s_closure_storage = { &%s_info };", name, name))
		e.out.writeil(fmt.Sprintf("Globals[%d] = (void *)&%s_closure_storage;", *f.GlobalIndex, name))
	}

	e.out.writeil("push_continuation(runtime_exit);")
	e.out.writeil(fmt.Sprintf("Label l = %s;", cname(prog.Entry.Name)))
	e.out.writeil("while (l) { l = (Label)l(); }")
	e.out.writeil("cleanup();")
	e.out.writeil("return 0;")
	e.out.pop()
	e.out.writeil("}")
}

// EmbeddedRuntime returns the runtime.c/runtime.h sources lang/cemit's
// output links against, for a CLI command to write alongside the
// generated translation unit.
func EmbeddedRuntime() (c, h string, err error) {
	cb, err := runtimeSrc.ReadFile("c/runtime.c")
	if err != nil {
		return "", "", err
	}
	hb, err := runtimeSrc.ReadFile("c/runtime.h")
	if err != nil {
		return "", "", err
	}
	return string(cb), string(hb), nil
}
