// Package interp wires the lexer, parser and evaluator together behind the
// single entry point described in §6: read a source string, parse it into
// top-level forms, and evaluate each one in turn against a persistent
// global environment.
package interp

import (
	"fmt"

	"github.com/reproducible-bioinformatics/schemer/internal/eval"
	"github.com/reproducible-bioinformatics/schemer/internal/parser"
	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

// Interp is a session: one evaluator instance whose global environment
// persists across calls to EvalString, matching a REPL's behavior where
// later input sees earlier definitions.
type Interp struct {
	evaluator *eval.Interpreter
}

// New builds a session with a fresh global environment seeded with every
// primitive and special form.
func New() *Interp {
	return &Interp{evaluator: eval.New()}
}

// EvalString parses src into top-level forms and evaluates each one in
// order against the session's global environment, returning every form's
// result. Evaluation stops at the first error, returning the results
// gathered so far alongside it.
func (s *Interp) EvalString(src string) ([]value.Value, error) {
	forms, err := parser.ParseForms(src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	results := make([]value.Value, 0, len(forms))
	for _, form := range forms {
		v, err := s.evaluator.Eval(form, s.evaluator.Global)
		if err != nil {
			return results, err
		}
		results = append(results, v)
	}
	return results, nil
}

// EvalOne parses src as exactly one top-level form and evaluates it. It is
// the building block the REPL uses to report one result per input line.
func (s *Interp) EvalOne(src string) (value.Value, error) {
	forms, err := parser.ParseForms(src)
	if err != nil {
		return value.Unspecified, fmt.Errorf("parse error: %w", err)
	}
	if len(forms) != 1 {
		return value.Unspecified, fmt.Errorf("expected exactly one form, got %d", len(forms))
	}
	return s.evaluator.Eval(forms[0], s.evaluator.Global)
}
