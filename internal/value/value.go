// Package value defines the single tagged value type that is threaded from
// the lexer's tokens through the parser's emit phase and into the
// evaluator: a SchemeValue. Every component of schemer — lexer excluded —
// speaks this type.
package value

import (
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindEmptyList Kind = iota
	KindBoolean
	KindNumber
	KindSymbol
	KindCharacter
	KindString
	KindVector
	KindPair
	KindPrimitive
	KindCompound
	KindPromise
	KindUnspecified
)

func (k Kind) String() string {
	switch k {
	case KindEmptyList:
		return "EmptyList"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindSymbol:
		return "Symbol"
	case KindCharacter:
		return "Character"
	case KindString:
		return "String"
	case KindVector:
		return "Vector"
	case KindPair:
		return "Pair"
	case KindPrimitive:
		return "Primitive"
	case KindCompound:
		return "Compound"
	case KindPromise:
		return "Promise"
	case KindUnspecified:
		return "Unspecified"
	default:
		return "Unknown"
	}
}

// PrimitiveFn is the native implementation behind a Primitive value.
type PrimitiveFn func(args []Value) (Value, error)

// Formal is a required or optional parameter name. Optional formals may
// carry a default expression, evaluated lazily by the caller if the
// argument was omitted.
type Formal struct {
	Name       string
	HasDefault bool
	Default    Value // meaningful only when HasDefault
}

// Value is a Scheme datum. Exactly one of the typed fields is meaningful,
// selected by Kind — this mirrors the tagged-union SchemeValue of the
// specification rather than a Go interface-per-variant design, so that
// eq?/eqv? and the printer can switch on Kind directly instead of type
// asserting against an arbitrary set of implementations.
type Value struct {
	Kind Kind

	Boolean   bool
	Number    *big.Int
	Symbol    string
	Character rune
	Str       string
	Vector    []Value

	Car, Cdr *Value // KindPair

	PrimName  string // KindPrimitive
	PrimArity int    // declared arity; -1 means variadic
	PrimFn    PrimitiveFn

	CompoundName string // KindCompound; anonymous lambdas get a generated "lambda-N"
	Required     []string
	Optional     []Formal
	Rest         string // "" if no rest parameter
	HasRest      bool
	Body         []Value

	// CapturedEnv holds the *eval.Env a Compound or Promise closed over. It
	// is typed as any to avoid an import cycle (package eval holds Values
	// and must import package value, not the reverse); eval type-asserts
	// it back.
	CapturedEnv any

	// Promise is populated for KindPromise: Body[0] is delay's unevaluated
	// expression, and PromiseState is the shared, mutable memoization cell
	// — a pointer so that forcing the promise through any alias of this
	// Value updates every alias's view, matching force's memoize-once
	// contract.
	PromiseState *PromiseState
}

// PromiseState is the mutable, shared memoization cell behind a delayed
// expression: force evaluates Body[0] once and caches it here.
type PromiseState struct {
	Forced bool
	Value  Value
}

var (
	// Empty is the canonical empty list, '().
	Empty = Value{Kind: KindEmptyList}
	// True and False are the two Scheme booleans.
	True  = Value{Kind: KindBoolean, Boolean: true}
	False = Value{Kind: KindBoolean, Boolean: false}
	// Unspecified is returned by forms with no useful value, e.g. a
	// one-armed (if #f #f) or (set! ...).
	Unspecified = Value{Kind: KindUnspecified}
)

// Bool converts a Go bool to the corresponding Scheme boolean.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsTruthy implements the specification's truthiness rule: everything
// except Boolean(false) is truthy.
func IsTruthy(v Value) bool {
	return !(v.Kind == KindBoolean && !v.Boolean)
}

// NumberFromInt64 builds a Number value from a native integer.
func NumberFromInt64(n int64) Value {
	return Value{Kind: KindNumber, Number: big.NewInt(n)}
}

// Sym builds a Symbol value.
func Sym(name string) Value {
	return Value{Kind: KindSymbol, Symbol: name}
}

// Str builds a String value.
func Str(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Cons builds a Pair.
func Cons(car, cdr Value) Value {
	c, d := car, cdr
	return Value{Kind: KindPair, Car: &c, Cdr: &d}
}

// List builds a proper list out of the given elements, right-folded into
// nested Pairs terminated by EmptyList.
func List(elems ...Value) Value {
	result := Empty
	for i := len(elems) - 1; i >= 0; i-- {
		result = Cons(elems[i], result)
	}
	return result
}

// DottedList builds a list whose final cdr is tail instead of EmptyList.
func DottedList(tail Value, elems ...Value) Value {
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = Cons(elems[i], result)
	}
	return result
}

// IsList reports whether v is EmptyList or a Pair chain whose every cdr is
// itself a list — the proper-list invariant from §3 of the specification.
func IsList(v Value) bool {
	for v.Kind == KindPair {
		v = *v.Cdr
	}
	return v.Kind == KindEmptyList
}

// ToSlice flattens a proper list into a Go slice. It returns false if v is
// not a proper list (e.g. a dotted pair).
func ToSlice(v Value) ([]Value, bool) {
	var out []Value
	for v.Kind == KindPair {
		out = append(out, *v.Car)
		v = *v.Cdr
	}
	if v.Kind != KindEmptyList {
		return nil, false
	}
	return out, true
}

// Length returns the number of elements in a proper list, matching the
// length primitive's contract: length(list v1 … vn) = n.
func Length(v Value) (int, bool) {
	n := 0
	for v.Kind == KindPair {
		n++
		v = *v.Cdr
	}
	if v.Kind != KindEmptyList {
		return 0, false
	}
	return n, true
}

// quoteAbbreviations maps the four reader-macro head symbols to their
// printed prefix, applied only at the head of a pair per §6.
var quoteAbbreviations = map[string]string{
	"quote":            "'",
	"quasiquote":       "`",
	"unquote":          ",",
	"unquote-splicing": ",@",
}

// Print writes the external representation of v, matching §6's printed
// representation rules exactly: dotted pairs with " . ", quote
// abbreviations only at the head of a two-element list, #t/#f, character
// names for newline/space, #( ) vectors, raw symbol text, unescaped
// double-quoted strings.
func Print(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

// Fprint writes v's external representation to w, the io.Writer-based form
// of the interpreter's print entry point.
func Fprint(w io.Writer, v Value) {
	io.WriteString(w, Print(v))
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.Kind {
	case KindEmptyList:
		sb.WriteString("()")
	case KindBoolean:
		if v.Boolean {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case KindNumber:
		if v.Number == nil {
			sb.WriteString("0")
		} else {
			sb.WriteString(v.Number.String())
		}
	case KindSymbol:
		sb.WriteString(v.Symbol)
	case KindCharacter:
		writeCharacter(sb, v.Character)
	case KindString:
		sb.WriteByte('"')
		sb.WriteString(v.Str)
		sb.WriteByte('"')
	case KindVector:
		sb.WriteString("#(")
		for i, e := range v.Vector {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, e)
		}
		sb.WriteByte(')')
	case KindPair:
		writePair(sb, v)
	case KindPrimitive:
		fmt.Fprintf(sb, "#[primitive %s]", v.PrimName)
	case KindCompound:
		name := v.CompoundName
		if name == "" {
			name = "anonymous"
		}
		fmt.Fprintf(sb, "#[compound-procedure %s]", name)
	case KindPromise:
		sb.WriteString("#[promise]")
	case KindUnspecified:
		// nothing printed; unspecified values are conventionally silent.
	default:
		sb.WriteString("#<unknown>")
	}
}

func writeCharacter(sb *strings.Builder, r rune) {
	switch r {
	case '\n':
		sb.WriteString(`#\newline`)
	case ' ':
		sb.WriteString(`#\space`)
	default:
		sb.WriteString(`#\`)
		sb.WriteRune(r)
	}
}

func writePair(sb *strings.Builder, v Value) {
	// Abbreviation only applies at the head of a two-element list whose
	// car is one of the four reader-macro symbols.
	if v.Car.Kind == KindSymbol {
		if prefix, ok := quoteAbbreviations[v.Car.Symbol]; ok {
			if rest := *v.Cdr; rest.Kind == KindPair && rest.Cdr.Kind == KindEmptyList {
				sb.WriteString(prefix)
				writeValue(sb, *rest.Car)
				return
			}
		}
	}

	sb.WriteByte('(')
	writeValue(sb, *v.Car)
	rest := *v.Cdr
	for rest.Kind == KindPair {
		sb.WriteByte(' ')
		writeValue(sb, *rest.Car)
		rest = *rest.Cdr
	}
	if rest.Kind != KindEmptyList {
		sb.WriteString(" . ")
		writeValue(sb, rest)
	}
	sb.WriteByte(')')
}

// Eqv implements eqv?: identical for booleans, symbols, characters and
// numbers compared by value; strings compared by content;
// pairs/vectors/procedures compared by identity (same underlying pointer;
// primitives by name), matching the specification's pair
// ownership model where structural sharing is explicit, not implicit.
func Eqv(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindEmptyList, KindUnspecified:
		return true
	case KindBoolean:
		return a.Boolean == b.Boolean
	case KindNumber:
		if a.Number == nil || b.Number == nil {
			return a.Number == b.Number
		}
		return a.Number.Cmp(b.Number) == 0
	case KindSymbol:
		return a.Symbol == b.Symbol
	case KindCharacter:
		return a.Character == b.Character
	case KindString:
		// Go strings carry no separate identity from their content, so
		// eqv? and equal? coincide for strings here.
		return a.Str == b.Str
	case KindPair:
		return a.Car == b.Car && a.Cdr == b.Cdr
	case KindVector:
		return len(a.Vector) == len(b.Vector) && (len(a.Vector) == 0 || &a.Vector[0] == &b.Vector[0])
	case KindPrimitive:
		return a.PrimName == b.PrimName
	case KindCompound:
		return a.CompoundName == b.CompoundName && sameBody(a, b)
	case KindPromise:
		return a.PromiseState == b.PromiseState
	default:
		return false
	}
}

func sameBody(a, b Value) bool {
	if len(a.Body) != len(b.Body) || len(a.Body) == 0 {
		return len(a.Body) == len(b.Body)
	}
	return &a.Body[0] == &b.Body[0]
}

// Equal implements equal?: recursive structural equality over pairs,
// vectors and strings; falls back to Eqv for atoms.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString:
		return a.Str == b.Str
	case KindPair:
		return Equal(*a.Car, *b.Car) && Equal(*a.Cdr, *b.Cdr)
	case KindVector:
		if len(a.Vector) != len(b.Vector) {
			return false
		}
		for i := range a.Vector {
			if !Equal(a.Vector[i], b.Vector[i]) {
				return false
			}
		}
		return true
	default:
		return Eqv(a, b)
	}
}
