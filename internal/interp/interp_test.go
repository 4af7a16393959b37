package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

func TestEvalStringPersistsGlobalEnv(t *testing.T) {
	s := New()
	results, err := s.EvalString("(define x 10) (define y 20) (+ x y)")
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "30", value.Print(results[2]))

	// A later call sees bindings made by an earlier one.
	results, err = s.EvalString("(+ x y)")
	require.NoError(t, err)
	require.Equal(t, "30", value.Print(results[0]))
}

func TestEvalStringStopsAtFirstError(t *testing.T) {
	s := New()
	results, err := s.EvalString("(define x 1) (undefined-fn x) (define y 2)")
	require.Error(t, err)
	require.Len(t, results, 1)
}

func TestEvalOneRejectsMultipleForms(t *testing.T) {
	s := New()
	_, err := s.EvalOne("1 2")
	require.Error(t, err)
}

func TestEvalOneEchoesSingleForm(t *testing.T) {
	s := New()
	v, err := s.EvalOne("(* 6 7)")
	require.NoError(t, err)
	require.Equal(t, "42", value.Print(v))
}

func TestEndToEndScenariosThroughSession(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"(+ 1 2)", "3"},
		{"(define x 42) x", "42"},
		{"((lambda (x y) (+ x y)) 3 4)", "7"},
		{"(let ((x 2) (y 3)) (* x y))", "6"},
		{"'(a b . c)", "(a b . c)"},
		{"(cond ((= 1 2) 'no) ((= 1 1) 'yes) (else 'never))", "yes"},
	}
	for _, c := range cases {
		s := New()
		results, err := s.EvalString(c.src)
		require.NoError(t, err, c.src)
		require.Equal(t, c.want, value.Print(results[len(results)-1]), c.src)
	}
}
