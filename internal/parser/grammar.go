package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/reproducible-bioinformatics/schemer/internal/lexer"
	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

// BuildSchemeGrammar registers the combinators from §4.3 into a fresh Env
// and returns it. The root label is "FORM": a single Scheme datum, which is
// what a top-level read/eval loop parses one at a time (program text is
// data; the evaluator, not the parser, is what distinguishes a LAMBDA form
// from an IF form from a plain application — see package eval).
//
// DATUM ← BOOLEAN | NUMBER | CHARACTER | STRING | SYMBOL | LIST | VECTOR
// LIST ← SIMPLE_LIST | DOTTED_LIST | ABBREVIATION_LIST
func BuildSchemeGrammar() *Env {
	env := NewEnv()

	unspecified := func(lexer.Token) (value.Value, error) { return value.Unspecified, nil }

	env.Register(Atomic("BOOLEAN", lexer.BOOLEAN, func(tok lexer.Token) (value.Value, error) {
		return value.Bool(tok.Lexeme == "#t"), nil
	}))
	env.Register(Atomic("NUMBER", lexer.NUMBER, func(tok lexer.Token) (value.Value, error) {
		n, ok := new(big.Int).SetString(tok.Lexeme, 10)
		if !ok {
			return value.Unspecified, fmt.Errorf("parser: %q is not a valid number", tok.Lexeme)
		}
		return value.Value{Kind: value.KindNumber, Number: n}, nil
	}))
	env.Register(Atomic("CHARACTER", lexer.CHARACTER, func(tok lexer.Token) (value.Value, error) {
		return value.Value{Kind: value.KindCharacter, Character: characterLexemeToRune(tok.Lexeme)}, nil
	}))
	env.Register(Atomic("STRING", lexer.STRING, func(tok lexer.Token) (value.Value, error) {
		inner := tok.Lexeme[1 : len(tok.Lexeme)-1]
		return value.Str(strings.ReplaceAll(inner, `\"`, `"`)), nil
	}))
	env.Register(Atomic("SYMBOL", lexer.IDENTIFIER, func(tok lexer.Token) (value.Value, error) {
		return value.Sym(tok.Lexeme), nil
	}))

	env.Register(Atomic("OPEN_PAREN", lexer.OPEN_PAREN, unspecified))
	env.Register(Atomic("CLOSE_PAREN", lexer.CLOSE_PAREN, unspecified))
	env.Register(Atomic("OPEN_VEC_PAREN", lexer.OPEN_VEC_PAREN, unspecified))
	env.Register(Atomic("DOT", lexer.DOT, unspecified))
	env.Register(Atomic("SINGLE_QUOTE", lexer.SINGLE_QUOTE, unspecified))
	env.Register(Atomic("QUASI_QUOTE", lexer.QUASI_QUOTE, unspecified))
	env.Register(Atomic("UNQUOTE", lexer.UNQUOTE, unspecified))
	env.Register(Atomic("AT", lexer.AT, unspecified))

	// MANY0_DATUM/MANY1_DATUM collect a run of DATUMs. There is no
	// semantic-value type for "a run of values" distinct from Value
	// itself, so — purely as an internal carrier consumed immediately by
	// the Seq combinator above it — the run is packed into a KindVector
	// Value and unpacked again by the enclosing combine function.
	collectRun := func(children []value.Value) (value.Value, error) {
		return value.Value{Kind: value.KindVector, Vector: children}, nil
	}
	env.Register(Many0("MANY0_DATUM", "DATUM", collectRun))
	env.Register(Many1("MANY1_DATUM", "DATUM", collectRun))

	env.Register(Seq("VECTOR", func(children []value.Value) (value.Value, error) {
		elems := children[1].Vector
		return value.Value{Kind: value.KindVector, Vector: elems}, nil
	}, "OPEN_VEC_PAREN", "MANY0_DATUM", "CLOSE_PAREN"))

	env.Register(Seq("SIMPLE_LIST", func(children []value.Value) (value.Value, error) {
		elems := children[1].Vector
		return value.List(elems...), nil
	}, "OPEN_PAREN", "MANY0_DATUM", "CLOSE_PAREN"))

	env.Register(Seq("DOTTED_LIST", func(children []value.Value) (value.Value, error) {
		elems := children[1].Vector
		tail := children[3]
		return value.DottedList(tail, elems...), nil
	}, "OPEN_PAREN", "MANY1_DATUM", "DOT", "DATUM", "CLOSE_PAREN"))

	registerAbbreviation(env, "QUOTE_ABBREV", "quote", "SINGLE_QUOTE")
	registerAbbreviation(env, "QUASIQUOTE_ABBREV", "quasiquote", "QUASI_QUOTE")

	env.Register(Seq("UNQUOTE_SPLICING_ABBREV", func(children []value.Value) (value.Value, error) {
		return value.List(value.Sym("unquote-splicing"), children[2]), nil
	}, "UNQUOTE", "AT", "DATUM"))
	registerAbbreviation(env, "UNQUOTE_ABBREV", "unquote", "UNQUOTE")

	// DOTTED_LIST is tried before SIMPLE_LIST: both start with OPEN_PAREN
	// and a run of data, but only DOTTED_LIST additionally demands a DOT,
	// so SIMPLE_LIST's bind for a non-dotted list never spuriously
	// succeeds as a (wrong) dotted list — it simply never gets tried once
	// DOTTED_LIST wins, and DOTTED_LIST's own bind fails cleanly (no DOT
	// token where expected) for any non-dotted list, falling through.
	// UNQUOTE_SPLICING_ABBREV is tried before UNQUOTE_ABBREV for the same
	// reason: both start with UNQUOTE, only splicing additionally demands
	// AT.
	env.Register(Any("LIST", "DOTTED_LIST", "SIMPLE_LIST",
		"QUOTE_ABBREV", "QUASIQUOTE_ABBREV", "UNQUOTE_SPLICING_ABBREV", "UNQUOTE_ABBREV"))

	datum := Any("DATUM", "BOOLEAN", "NUMBER", "CHARACTER", "STRING", "SYMBOL", "LIST", "VECTOR")
	env.Register(datum)
	env.Register(&Combinator{Label: "FORM", bind: datum.bind, emit: datum.emit})

	return env
}

func registerAbbreviation(env *Env, label, symbol, markerLabel string) {
	env.Register(Seq(label, func(children []value.Value) (value.Value, error) {
		return value.List(value.Sym(symbol), children[1]), nil
	}, markerLabel, "DATUM"))
}

func characterLexemeToRune(lexeme string) rune {
	switch lexeme {
	case `#\newline`:
		return '\n'
	case `#\space`:
		return ' '
	default:
		runes := []rune(lexeme)
		return runes[len(runes)-1]
	}
}

// ParseForms lexes, filters, and parses every top-level FORM in src,
// exactly the §6 eval_string pipeline up through parsing: "lex → filter
// whitespace/comment → parse each top-level form with root FORM".
func ParseForms(src string) ([]value.Value, error) {
	toks, ok := lexer.New(src).Lex()
	if !ok {
		return nil, fmt.Errorf("parser: lex failed")
	}
	toks = lexer.Filter(toks)

	env := BuildSchemeGrammar()
	var forms []value.Value
	pos := 0
	for pos < len(toks) {
		c, err := env.resolve("FORM")
		if err != nil {
			return nil, err
		}
		b, ok := c.bind(env, toks, pos)
		if !ok {
			return nil, fmt.Errorf("parser: no binding for FORM at token %d", pos)
		}
		v, err := c.emit(env, toks, b)
		if err != nil {
			return nil, err
		}
		forms = append(forms, v)
		pos = b.End
	}
	return forms, nil
}
