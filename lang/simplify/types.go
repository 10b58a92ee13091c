package simplify

import (
	"github.com/mna/thistle/lang/token"
	"github.com/mna/thistle/lang/typecheck"
)

// opName maps a binary operator token to the builtin name lang/stg and
// lang/runtime know it by (spec.md §4.5's two-argument builtins).
func opName(tok token.Token) string {
	switch tok {
	case token.PLUS:
		return "Add"
	case token.MINUS:
		return "Sub"
	case token.STAR:
		return "Mul"
	case token.SLASH:
		return "Div"
	case token.PLUSPLUS:
		return "Concat"
	case token.LT:
		return "Less"
	case token.LE:
		return "LessEqual"
	case token.GT:
		return "Greater"
	case token.GE:
		return "GreaterEqual"
	case token.EQEQ:
		return "EqualTo"
	case token.NEQ:
		return "NotEqualTo"
	default:
		panic("opName: not a binary operator token: " + tok.String())
	}
}

// builtinSig returns a builtin operator's fixed (monomorphic) argument and
// result types.
func builtinSig(name string) (args []typecheck.Type, result typecheck.Type) {
	switch name {
	case "Add", "Sub", "Mul", "Div":
		return []typecheck.Type{typecheck.TInt, typecheck.TInt}, typecheck.TInt
	case "Less", "LessEqual", "Greater", "GreaterEqual", "EqualTo", "NotEqualTo":
		return []typecheck.Type{typecheck.TInt, typecheck.TInt}, typecheck.TBool
	case "Concat":
		return []typecheck.Type{typecheck.TString, typecheck.TString}, typecheck.TString
	case "Negate":
		return []typecheck.Type{typecheck.TInt}, typecheck.TInt
	case "PrintInt":
		return []typecheck.Type{typecheck.TInt}, TUnit
	case "PrintString":
		return []typecheck.Type{typecheck.TString}, TUnit
	default:
		panic("builtinSig: unknown builtin " + name)
	}
}

// TUnit is the nullary result type of the print builtins (spec.md §4.5:
// "return the unit tag (0, 0 args)"). It is not a user-declared data type,
// so it carries no entry in a Program's Ctors map; lang/stg lowers it to
// the fixed zero-arity, zero-tag constructor return directly.
var TUnit typecheck.Type = &typecheck.TData{Name: "Unit"}

// surfaceBuiltinName maps the identifier spelling used in source (the
// grammar's resolver.Builtins table) to the internal builtin name.
func surfaceBuiltinName(ident string) string {
	switch ident {
	case "printInt":
		return "PrintInt"
	case "printString":
		return "PrintString"
	default:
		panic("surfaceBuiltinName: unknown builtin identifier " + ident)
	}
}
