// Package cmm implements the flat imperative intermediate representation
// that sits between lang/stg and the emitted C translation unit (lang/cemit):
// named functions of straight-line instructions (or a case dispatch) over a
// small fixed instruction set, each carrying the heap allocation its body
// requires.
package cmm

import "fmt"

// FuncNameKind distinguishes the three kinds of Cmm function.
type FuncNameKind int

const (
	FuncGlobal FuncNameKind = iota // a named top-level function
	FuncAlts                       // the "alternatives" sub-function of an enclosing case
	FuncEntry                      // the program entry
)

// FunctionName identifies one Cmm function. Parent/Index are only
// meaningful for FuncAlts: Parent is the enclosing function's own Name,
// Index disambiguates multiple case expressions within the same body.
type FunctionName struct {
	Kind   FuncNameKind
	Name   string
	Parent string
	Index  int
}

func (n FunctionName) String() string {
	switch n.Kind {
	case FuncEntry:
		return "$entry"
	case FuncAlts:
		return fmt.Sprintf("%s.alts%d", n.Parent, n.Index)
	default:
		return n.Name
	}
}

// LocationKind is how a variable is addressed at a use site.
type LocationKind int

const (
	LocArg           LocationKind = iota // nth pointer argument on the A-stack
	LocBoundPointer                      // nth bound pointer within the current closure
	LocBoundInt                          // nth bound int within the current closure
	LocBoundString                       // nth bound string within the current closure
	LocGlobal                            // nth global function
	LocAllocated                         // nth freshly allocated closure in the current body
	LocBuriedPointer                     // nth buried pointer (see Function.Body case dispatch)
	LocBuriedInt                         // nth buried int
	LocBuriedString                      // nth buried string
	LocIntRegister                       // the value most recently stored into IntRegister
	LocStringRegister                    // the value most recently stored into StringRegister
	LocBoolConst                         // the shared static False (Index 0) or True (Index 1) closure
)

// Location addresses one value at a Cmm use site.
type Location struct {
	Kind  LocationKind
	Index int
}

// Op is one of the fixed set of Cmm instructions.
type Op int

const (
	OpStoreInt             Op = iota // store IntVal into IntRegister
	OpStoreString                    // store StringVal (as a string literal closure) into StringRegister
	OpStoreTag                       // store IntVal as TagRegister, ArgCount as ConstructorArgCountRegister
	OpEnterCaseContinuation          // return to the case continuation on the B-stack
	OpEnter                          // enter the closure at Loc
	OpPrintError                     // print StringVal to stderr and halt
	OpBuiltin1                       // apply BuiltinOp to Loc, leaving the result in the appropriate register
	OpBuiltin2                       // apply BuiltinOp to Loc, Loc2
	OpExit                           // halt normally
	OpAPush                          // push the pointer at Loc onto the A-stack
	OpBuryPointer                    // copy the pointer at Loc onto the B-stack
	OpBuryInt                        // copy the int at Loc onto the B-stack
	OpBuryString                     // copy the string pointer at Loc onto the B-stack
	OpAllocTable                     // allocate a closure of SubFunc's shape into AllocIndex, copying Captured* locations into its fields
	OpAllocInt                       // allocate a boxed int closure from Loc into AllocIndex
	OpAllocString                    // allocate a string closure from StringVal into AllocIndex
	OpPushContinuation               // push SubFunc's code label onto the B-stack, to be popped by EnterCaseContinuation
)

// Instruction is one Cmm instruction. Only the fields relevant to Op are
// meaningful; the rest are zero.
type Instruction struct {
	Op         Op
	IntVal     int64
	StringVal  string
	ArgCount   int
	Loc        Location
	Loc2       Location
	BuiltinOp  string
	AllocIndex int
	SubFunc    FunctionName

	// CapturedPointers/Ints/Strings are meaningful only for OpAllocTable:
	// the enclosing function's current Locations for each of SubFunc's
	// declared free variables, in the same pointer/int/string-partitioned
	// order as the callee's BoundPointer/BoundInt/BoundString indices, so
	// the emitter can copy each captured value into the new closure's
	// fields at allocation time.
	CapturedPointers []Location
	CapturedInts     []Location
	CapturedStrings  []Location
}

// Allocation is the heap reservation a function body's prolog must make,
// summed across every allocation the body performs.
type Allocation struct {
	Tables         int // info-table + closure headers (one per AllocTable/AllocInt/AllocString)
	Pointers       int // total pointer fields across all allocated closures
	Ints           int // total int fields across all allocated closures
	Strings        int // total string-pointer fields across all allocated closures
	LiteralStrings int // total bytes of literal string content allocated
}

func (a Allocation) add(o Allocation) Allocation {
	return Allocation{
		Tables:         a.Tables + o.Tables,
		Pointers:       a.Pointers + o.Pointers,
		Ints:           a.Ints + o.Ints,
		Strings:        a.Strings + o.Strings,
		LiteralStrings: a.LiteralStrings + o.LiteralStrings,
	}
}

// Selector is one arm of a case dispatch's Alts sub-function: which
// scrutinee value (by kind-appropriate field) routes to which body.
type Selector struct {
	IsDefault bool
	IntVal    int64
	StringVal string
	Ctor      string
	Tag       int
	Body      *Body
}

// BodyKind distinguishes a function body that is a straight instruction
// list from one that dispatches on a case scrutinee.
type BodyKind int

const (
	BodyNormal BodyKind = iota
	BodyCase
)

// Body is a Function's code: either a normal Instrs/Alloc pair, or (for
// the function that lowers a Case's scrutinee) a list of Selectors to
// route to, after restoring the scrutinee's buried live variables.
type Body struct {
	Kind  BodyKind
	Alloc Allocation

	// BodyNormal
	Instrs []Instruction

	// BodyCase: Selectors are mutually exclusive by Selector.IsDefault/
	// value; exactly one Selector has IsDefault == true.
	BuriedPointers int
	BuriedInts     int
	BuriedStrings  int
	Selectors      []Selector
}

// Function is (name, optional global index, pointer-arg count, bound-arg
// counts by kind, body, sub-functions).
type Function struct {
	Name FunctionName

	// GlobalIndex is non-nil for a top-level binding or the entry point —
	// the stable index lang/stg's Analyze assigned it.
	GlobalIndex *int

	ArgCount                              int // pointer-kinded parameters
	BoundPointers, BoundInts, BoundStrings int // captured free variables, by kind

	Body *Body

	// SubFunctions are the Let-introduced closures and Case Alts functions
	// nested within this one's body.
	SubFunctions []*Function
}

// CtorTable describes one user data constructor's closure shape: the
// info-table the C emitter must generate a static instance of so that
// lang/cmm's own "$ctor.<Name>" pseudo-SubFunc references (emitted by
// materializing a ConstrApp) resolve to something concrete.
type CtorTable struct {
	Ctor     string
	Tag      int
	Pointers int
	Ints     int
	Strings  int
}

// Program is (top-level functions, entry function, constructor tables).
type Program struct {
	Functions []*Function
	Entry     *Function
	Ctors     []CtorTable
}
