package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintAtoms(t *testing.T) {
	assert.Equal(t, "#t", Print(True))
	assert.Equal(t, "#f", Print(False))
	assert.Equal(t, "()", Print(Empty))
	assert.Equal(t, "42", Print(NumberFromInt64(42)))
	assert.Equal(t, "foo", Print(Sym("foo")))
	assert.Equal(t, `"hi"`, Print(Str("hi")))
	assert.Equal(t, `#\newline`, Print(Value{Kind: KindCharacter, Character: '\n'}))
	assert.Equal(t, `#\space`, Print(Value{Kind: KindCharacter, Character: ' '}))
	assert.Equal(t, `#\a`, Print(Value{Kind: KindCharacter, Character: 'a'}))
}

func TestPrintLists(t *testing.T) {
	assert.Equal(t, "(1 2 3)", Print(List(NumberFromInt64(1), NumberFromInt64(2), NumberFromInt64(3))))
	assert.Equal(t, "(a b . c)", Print(DottedList(Sym("c"), Sym("a"), Sym("b"))))
	assert.Equal(t, "#(1 2)", Print(Value{Kind: KindVector, Vector: []Value{NumberFromInt64(1), NumberFromInt64(2)}}))
}

func TestPrintQuoteAbbreviations(t *testing.T) {
	quoted := List(Sym("quote"), Sym("a"))
	assert.Equal(t, "'a", Print(quoted))

	quasi := List(Sym("quasiquote"), List(Sym("a"), List(Sym("unquote"), Sym("b"))))
	assert.Equal(t, "`(a ,b)", Print(quasi))

	splice := List(Sym("unquote-splicing"), Sym("xs"))
	assert.Equal(t, ",@xs", Print(splice))
}

func TestIsListAndToSlice(t *testing.T) {
	proper := List(NumberFromInt64(1), NumberFromInt64(2))
	assert.True(t, IsList(proper))
	elems, ok := ToSlice(proper)
	assert.True(t, ok)
	assert.Len(t, elems, 2)

	dotted := DottedList(Sym("tail"), Sym("a"))
	assert.False(t, IsList(dotted))
	_, ok = ToSlice(dotted)
	assert.False(t, ok)
}

func TestLength(t *testing.T) {
	n, ok := Length(List(Sym("a"), Sym("b"), Sym("c")))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Length(DottedList(Sym("x"), Sym("a")))
	assert.False(t, ok)
}

func TestEqvAtomsByValue(t *testing.T) {
	assert.True(t, Eqv(NumberFromInt64(3), NumberFromInt64(3)))
	assert.True(t, Eqv(Sym("a"), Sym("a")))
	assert.False(t, Eqv(Sym("a"), Sym("b")))
	assert.True(t, Eqv(Value{Kind: KindCharacter, Character: 'x'}, Value{Kind: KindCharacter, Character: 'x'}))
	assert.True(t, Eqv(True, True))
	assert.False(t, Eqv(True, False))
}

func TestEqvPairsByIdentity(t *testing.T) {
	p1 := Cons(NumberFromInt64(1), Empty)
	p2 := Cons(NumberFromInt64(1), Empty)
	assert.False(t, Eqv(p1, p2), "structurally equal but distinct pairs are not eqv?")
	assert.True(t, Eqv(p1, p1))
}

func TestEqualStructural(t *testing.T) {
	a := List(NumberFromInt64(1), List(NumberFromInt64(2), NumberFromInt64(3)))
	b := List(NumberFromInt64(1), List(NumberFromInt64(2), NumberFromInt64(3)))
	assert.True(t, Equal(a, b))
	assert.False(t, Eqv(a, b))
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, IsTruthy(True))
	assert.True(t, IsTruthy(NumberFromInt64(0)))
	assert.True(t, IsTruthy(Empty))
	assert.False(t, IsTruthy(False))
}
