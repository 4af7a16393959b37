// Package parser implements the two-phase parser-combinator engine from
// §4.2 of the specification: a registry of named combinators, each
// supplying a bind phase (consume tokens, produce a binding tree) and an
// emit phase (walk that tree into a semantic value). Combinators refer to
// each other by label, not by pointer, so that the grammar built on top of
// this engine (package parser's Scheme grammar, see grammar.go) can define
// mutually and self recursive productions.
package parser

import (
	"fmt"

	"github.com/reproducible-bioinformatics/schemer/internal/lexer"
	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

// Binding is the n-ary binding tree a combinator's bind phase produces.
// Per §9's redesign note, this is the tagged-union shape recommended in
// place of the original's uniform cell-with-sibling-pointer representation:
// Children holds the ordered sub-bindings for seq/many0/many1, AnyChild and
// AnyIndex hold the single selected alternative for any, and a combinator
// with neither populated is a leaf spanning [Start, End) of the token
// stream.
type Binding struct {
	Start, End int
	Children   []Binding
	AnyIndex   int
	AnyChild   *Binding
}

// CombineFn assembles the emitted values of a seq/many0/many1 combinator's
// children into the semantic value for that node. Literal tokens (parens,
// keywords, dots) conventionally emit value.Unspecified; the combiners in
// grammar.go skip them by picking out the meaningful children by position.
type CombineFn func(children []value.Value) (value.Value, error)

// EmitFn walks a single token's lexeme into a semantic value. The default
// atomic emit, used when a nil EmitFn is supplied, returns the token's
// lexeme as a Symbol; grammar.go overrides this per category.
type EmitFn func(tok lexer.Token) (value.Value, error)

// bindFn and emitTreeFn are the internal, resolved-combinator shape of the
// two-phase contract; Combinator exposes the higher-level constructors
// below instead of requiring callers to write these by hand.
type bindFn func(env *Env, tokens []lexer.Token, start int) (Binding, bool)
type emitTreeFn func(env *Env, tokens []lexer.Token, b Binding) (value.Value, error)

// Combinator is one registered grammar rule.
type Combinator struct {
	Label string
	bind  bindFn
	emit  emitTreeFn
}

// Env is the parser's combinator registry. Combinators are looked up by
// label at bind time, which is what permits forward and mutually recursive
// references between grammar rules (§4.2).
type Env struct {
	combinators map[string]*Combinator
}

// NewEnv builds an empty combinator registry.
func NewEnv() *Env {
	return &Env{combinators: make(map[string]*Combinator)}
}

// Register adds c to the registry under c.Label, overwriting any previous
// combinator with the same label — this is how forward references are
// resolved: a placeholder registered early can be replaced once its real
// definition is known, or (more commonly here) all combinators are defined
// up front and simply refer to each other's labels before every one of
// them has been constructed.
func (e *Env) Register(c *Combinator) {
	e.combinators[c.Label] = c
}

func (e *Env) resolve(label string) (*Combinator, error) {
	c, ok := e.combinators[label]
	if !ok {
		return nil, fmt.Errorf("parser: unresolved combinator label %q", label)
	}
	return c, nil
}

// Atomic matches exactly one token of the given category.
func Atomic(label string, category lexer.Category, fn EmitFn) *Combinator {
	if fn == nil {
		fn = func(tok lexer.Token) (value.Value, error) { return value.Sym(tok.Lexeme), nil }
	}
	return &Combinator{
		Label: label,
		bind: func(_ *Env, tokens []lexer.Token, start int) (Binding, bool) {
			if start >= len(tokens) || tokens[start].Category != category {
				return Binding{}, false
			}
			return Binding{Start: start, End: start + 1}, true
		},
		emit: func(_ *Env, tokens []lexer.Token, b Binding) (value.Value, error) {
			return fn(tokens[b.Start])
		},
	}
}

// Keyword matches exactly one IDENTIFIER token whose lexeme equals text.
func Keyword(label, text string, fn EmitFn) *Combinator {
	if fn == nil {
		fn = func(tok lexer.Token) (value.Value, error) { return value.Unspecified, nil }
	}
	return &Combinator{
		Label: label,
		bind: func(_ *Env, tokens []lexer.Token, start int) (Binding, bool) {
			if start >= len(tokens) || tokens[start].Category != lexer.IDENTIFIER || tokens[start].Lexeme != text {
				return Binding{}, false
			}
			return Binding{Start: start, End: start + 1}, true
		},
		emit: func(_ *Env, tokens []lexer.Token, b Binding) (value.Value, error) {
			return fn(tokens[b.Start])
		},
	}
}

// Seq matches each labelled sub-combinator in order, failing (and
// releasing all partial bindings, which Go's GC does for us the moment the
// Binding value is discarded) if any child fails.
func Seq(label string, combine CombineFn, childLabels ...string) *Combinator {
	refs := make([]string, len(childLabels))
	copy(refs, childLabels)
	return &Combinator{
		Label: label,
		bind: func(env *Env, tokens []lexer.Token, start int) (Binding, bool) {
			pos := start
			children := make([]Binding, 0, len(refs))
			for _, childLabel := range refs {
				child, err := env.resolve(childLabel)
				if err != nil {
					panic(err)
				}
				b, ok := child.bind(env, tokens, pos)
				if !ok {
					return Binding{}, false
				}
				children = append(children, b)
				pos = b.End
			}
			return Binding{Start: start, End: pos, Children: children}, true
		},
		emit: func(env *Env, tokens []lexer.Token, b Binding) (value.Value, error) {
			vals := make([]value.Value, len(refs))
			for i, childLabel := range refs {
				child, err := env.resolve(childLabel)
				if err != nil {
					return value.Unspecified, err
				}
				v, err := child.emit(env, tokens, b.Children[i])
				if err != nil {
					return value.Unspecified, err
				}
				vals[i] = v
			}
			return combine(vals)
		},
	}
}

// Any tries each labelled sub-combinator in order and commits to the first
// that succeeds, recording which one in Binding.AnyIndex.
func Any(label string, childLabels ...string) *Combinator {
	refs := make([]string, len(childLabels))
	copy(refs, childLabels)
	return &Combinator{
		Label: label,
		bind: func(env *Env, tokens []lexer.Token, start int) (Binding, bool) {
			for i, childLabel := range refs {
				child, err := env.resolve(childLabel)
				if err != nil {
					panic(err)
				}
				if b, ok := child.bind(env, tokens, start); ok {
					bb := b
					return Binding{Start: b.Start, End: b.End, AnyIndex: i, AnyChild: &bb}, true
				}
			}
			return Binding{}, false
		},
		emit: func(env *Env, tokens []lexer.Token, b Binding) (value.Value, error) {
			child, err := env.resolve(refs[b.AnyIndex])
			if err != nil {
				return value.Unspecified, err
			}
			return child.emit(env, tokens, *b.AnyChild)
		},
	}
}

// Many0 applies the labelled sub-combinator until it fails; it always
// succeeds, possibly consuming nothing.
func Many0(label, childLabel string, combine CombineFn) *Combinator {
	return manyCombinator(label, childLabel, combine, 0)
}

// Many1 is Many0 but requires at least one match.
func Many1(label, childLabel string, combine CombineFn) *Combinator {
	return manyCombinator(label, childLabel, combine, 1)
}

func manyCombinator(label, childLabel string, combine CombineFn, minCount int) *Combinator {
	return &Combinator{
		Label: label,
		bind: func(env *Env, tokens []lexer.Token, start int) (Binding, bool) {
			child, err := env.resolve(childLabel)
			if err != nil {
				panic(err)
			}
			pos := start
			var children []Binding
			for {
				b, ok := child.bind(env, tokens, pos)
				if !ok || b.End == pos {
					break
				}
				children = append(children, b)
				pos = b.End
			}
			if len(children) < minCount {
				return Binding{}, false
			}
			return Binding{Start: start, End: pos, Children: children}, true
		},
		emit: func(env *Env, tokens []lexer.Token, b Binding) (value.Value, error) {
			child, err := env.resolve(childLabel)
			if err != nil {
				return value.Unspecified, err
			}
			vals := make([]value.Value, len(b.Children))
			for i, cb := range b.Children {
				v, err := child.emit(env, tokens, cb)
				if err != nil {
					return value.Unspecified, err
				}
				vals[i] = v
			}
			return combine(vals)
		},
	}
}

// Parse runs the top-level algorithm from §4.2: resolve root, bind at
// offset 0, require the whole token stream be consumed when strict is
// true, then emit.
func Parse(env *Env, root string, tokens []lexer.Token, strict bool) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser: %v", r)
		}
	}()

	c, rerr := env.resolve(root)
	if rerr != nil {
		return value.Unspecified, rerr
	}
	b, ok := c.bind(env, tokens, 0)
	if !ok {
		return value.Unspecified, fmt.Errorf("parser: no binding for %q at offset 0", root)
	}
	if strict && b.End != len(tokens) {
		return value.Unspecified, fmt.Errorf("parser: unconsumed tokens after %q: %d of %d consumed", root, b.End, len(tokens))
	}
	return c.emit(env, tokens, b)
}
