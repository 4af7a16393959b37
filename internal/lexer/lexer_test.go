package lexer

import (
	"testing"
)

func collectTokens(l *Lexer) []Token {
	tokens, ok := l.Lex()
	if !ok {
		return nil
	}
	return tokens
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "basic program",
			input: "(foo #t #f 123 -45\n;comment\n)",
			expected: []Token{
				{Category: OPEN_PAREN, Lexeme: "("},
				{Category: IDENTIFIER, Lexeme: "foo"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: BOOLEAN, Lexeme: "#t"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: BOOLEAN, Lexeme: "#f"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: NUMBER, Lexeme: "123"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: NUMBER, Lexeme: "-45"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: COMMENT, Lexeme: ";comment\n"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
			},
		},
		{
			name:  "strings and characters",
			input: `"hi" #\space #\newline #\a`,
			expected: []Token{
				{Category: STRING, Lexeme: `"hi"`},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: CHARACTER, Lexeme: `#\space`},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: CHARACTER, Lexeme: `#\newline`},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: CHARACTER, Lexeme: `#\a`},
			},
		},
		{
			name:  "vector and quote abbreviations",
			input: "#(1 2) '`,x ,@y",
			expected: []Token{
				{Category: OPEN_VEC_PAREN, Lexeme: "#("},
				{Category: NUMBER, Lexeme: "1"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: NUMBER, Lexeme: "2"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: SINGLE_QUOTE, Lexeme: "'"},
				{Category: QUASI_QUOTE, Lexeme: "`"},
				{Category: UNQUOTE, Lexeme: ","},
				{Category: IDENTIFIER, Lexeme: "x"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: UNQUOTE, Lexeme: ","},
				{Category: AT, Lexeme: "@"},
				{Category: IDENTIFIER, Lexeme: "y"},
			},
		},
		{
			name:  "dotted pair",
			input: "(a . b)",
			expected: []Token{
				{Category: OPEN_PAREN, Lexeme: "("},
				{Category: IDENTIFIER, Lexeme: "a"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: DOT, Lexeme: "."},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "b"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
			},
		},
		{
			name:  "identifiers starting with + and -",
			input: "(+ - ... <=? list->vector)",
			expected: []Token{
				{Category: OPEN_PAREN, Lexeme: "("},
				{Category: IDENTIFIER, Lexeme: "+"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "-"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "..."},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "<=?"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "list->vector"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
			},
		},
		{
			name:  "optional and rest formal markers",
			input: "(lambda (x #!optional y #!rest z) x)",
			expected: []Token{
				{Category: OPEN_PAREN, Lexeme: "("},
				{Category: IDENTIFIER, Lexeme: "lambda"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: OPEN_PAREN, Lexeme: "("},
				{Category: IDENTIFIER, Lexeme: "x"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "#!optional"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "y"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "#!rest"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "z"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
				{Category: WHITESPACE, Lexeme: ""},
				{Category: IDENTIFIER, Lexeme: "x"},
				{Category: CLOSE_PAREN, Lexeme: ")"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := collectTokens(New(tt.input))
			if len(result) != len(tt.expected) {
				t.Fatalf("wrong number of tokens: expected %d, got %d (%v)", len(tt.expected), len(result), result)
			}
			for i, want := range tt.expected {
				if want.Category == WHITESPACE {
					if result[i].Category != WHITESPACE {
						t.Errorf("token %d: expected WHITESPACE, got %v", i, result[i])
					}
					continue
				}
				if result[i].Category != want.Category || result[i].Lexeme != want.Lexeme {
					t.Errorf("unexpected token at %d: expected %+v, got %+v", i, want, result[i])
				}
			}
		})
	}
}

func TestLexerFailsOnIllegalInput(t *testing.T) {
	_, ok := New("(foo # bar)").Lex()
	if ok {
		t.Fatalf("expected lex to fail on a bare '#' not followed by t/f/(/\\")
	}
}

func TestFilterRemovesWhitespaceAndComments(t *testing.T) {
	tokens, ok := New("(a ; comment\n b)").Lex()
	if !ok {
		t.Fatalf("lex failed unexpectedly")
	}
	filtered := Filter(tokens)
	for _, tok := range filtered {
		if tok.Category == WHITESPACE || tok.Category == COMMENT {
			t.Fatalf("Filter left a %v token in the stream", tok.Category)
		}
	}
	if len(filtered) != 4 {
		t.Fatalf("expected 4 non-trivial tokens, got %d: %v", len(filtered), filtered)
	}
}

func TestTokenStreamingMatchesLex(t *testing.T) {
	input := "(foo (bar 1 2) \"s\")"
	full, ok := New(input).Lex()
	if !ok {
		t.Fatalf("lex failed")
	}
	var streamed []Token
	for tok := range New(input).Token() {
		streamed = append(streamed, tok)
	}
	if len(streamed) != len(full) {
		t.Fatalf("streaming produced %d tokens, Lex produced %d", len(streamed), len(full))
	}
	for i := range full {
		if streamed[i] != full[i] {
			t.Errorf("token %d differs: streamed=%v lex=%v", i, streamed[i], full[i])
		}
	}
}
