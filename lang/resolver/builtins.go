package resolver

// Builtins maps the names callable as ordinary identifiers to their arity.
// Arithmetic, comparison and concatenation builtins are never looked up by
// name: the parser produces a BinOp/UnOp node for them directly, and
// lang/stg lowers those nodes to the matching Builtin Expr. Only the I/O
// primitives are surfaced as applicable identifiers.
var Builtins = map[string]int{
	"printInt":    1,
	"printString": 1,
}
