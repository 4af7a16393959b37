package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

func TestArithmeticPrimitives(t *testing.T) {
	require.Equal(t, "10", value.Print(evalSrc(t, "(+ 1 2 3 4)")))
	require.Equal(t, "-4", value.Print(evalSrc(t, "(- 1 2 3)")))
	require.Equal(t, "-1", value.Print(evalSrc(t, "(- 1)")))
	require.Equal(t, "24", value.Print(evalSrc(t, "(* 1 2 3 4)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(= 2 2 2)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(< 1 2 3)")))
	require.Equal(t, "#f", value.Print(evalSrc(t, "(< 1 3 2)")))
}

func TestPairPrimitives(t *testing.T) {
	require.Equal(t, "1", value.Print(evalSrc(t, "(car (cons 1 2))")))
	require.Equal(t, "2", value.Print(evalSrc(t, "(cdr (cons 1 2))")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(null? '())")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(pair? (cons 1 2))")))
	require.Equal(t, "3", value.Print(evalSrc(t, "(cadr '(1 3 2))")))
	require.Equal(t, "2", value.Print(evalSrc(t, "(caddr '(1 3 2))")))
}

func TestPredicates(t *testing.T) {
	require.Equal(t, "#t", value.Print(evalSrc(t, "(symbol? 'a)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, `(string? "a")`)))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(number? 1)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(list? '(1 2))")))
	require.Equal(t, "#f", value.Print(evalSrc(t, "(list? '(1 . 2))")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(procedure? car)")))
}

func TestListPrimitives(t *testing.T) {
	require.Equal(t, "(1 2 3)", value.Print(evalSrc(t, "(list 1 2 3)")))
	require.Equal(t, "(1 2 3 4)", value.Print(evalSrc(t, "(append '(1 2) '(3 4))")))
	require.Equal(t, "(3 2 1)", value.Print(evalSrc(t, "(reverse '(1 2 3))")))
	require.Equal(t, "3", value.Print(evalSrc(t, "(length '(1 2 3))")))
}

func TestVectorPrimitives(t *testing.T) {
	require.Equal(t, "2", value.Print(evalSrc(t, "(vector-ref #(1 2 3) 1)")))
	require.Equal(t, "3", value.Print(evalSrc(t, "(vector-length #(1 2 3))")))
	require.Equal(t, "#(0 0 0)", value.Print(evalSrc(t, "(make-vector 3 0)")))
}

func TestEqPredicates(t *testing.T) {
	require.Equal(t, "#t", value.Print(evalSrc(t, "(eq? 'a 'a)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(equal? '(1 2) '(1 2))")))
	require.Equal(t, "#f", value.Print(evalSrc(t, "(eqv? (cons 1 2) (cons 1 2))")))
}

func TestNumericPredicatesAndDivision(t *testing.T) {
	require.Equal(t, "#t", value.Print(evalSrc(t, "(zero? 0)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(positive? 5)")))
	require.Equal(t, "#t", value.Print(evalSrc(t, "(negative? -5)")))
	require.Equal(t, "5", value.Print(evalSrc(t, "(abs -5)")))
	require.Equal(t, "3", value.Print(evalSrc(t, "(quotient 10 3)")))
	require.Equal(t, "1", value.Print(evalSrc(t, "(remainder 10 3)")))
	require.Equal(t, "1", value.Print(evalSrc(t, "(modulo 10 3)")))
	require.Equal(t, "2", value.Print(evalSrc(t, "(min 5 2 8)")))
	require.Equal(t, "8", value.Print(evalSrc(t, "(max 5 2 8)")))
	require.Equal(t, "6", value.Print(evalSrc(t, "(gcd 12 18)")))
}

func TestModuloTakesSignOfDivisor(t *testing.T) {
	require.Equal(t, "1", value.Print(evalSrc(t, "(modulo 13 4)")))
	require.Equal(t, "-3", value.Print(evalSrc(t, "(modulo 13 -4)")))
	require.Equal(t, "3", value.Print(evalSrc(t, "(modulo -13 4)")))
	require.Equal(t, "-1", value.Print(evalSrc(t, "(modulo -13 -4)")))
}

func TestStringAndCharPrimitives(t *testing.T) {
	require.Equal(t, "5", value.Print(evalSrc(t, `(string-length "hello")`)))
	require.Equal(t, `"helloworld"`, value.Print(evalSrc(t, `(string-append "hello" "world")`)))
	require.Equal(t, "foo", value.Print(evalSrc(t, `(string->symbol "foo")`)))
	require.Equal(t, `"foo"`, value.Print(evalSrc(t, "(symbol->string 'foo)")))
	require.Equal(t, "97", value.Print(evalSrc(t, `(char->integer #\a)`)))
}

func TestApplyMapForEach(t *testing.T) {
	require.Equal(t, "10", value.Print(evalSrc(t, "(apply + '(1 2 3 4))")))
	require.Equal(t, "(2 4 6)", value.Print(evalSrc(t, "(map (lambda (x) (* x 2)) '(1 2 3))")))
	require.Equal(t, "(1 2)", value.Print(evalSrc(t, "(map + '(1 2) '(0 0))")))
}

func TestSetCarSetCdr(t *testing.T) {
	require.Equal(t, "(9 . 2)", value.Print(evalSrc(t, "(define p (cons 1 2)) (set-car! p 9) p")))
	require.Equal(t, "(1 . 9)", value.Print(evalSrc(t, "(define p (cons 1 2)) (set-cdr! p 9) p")))
}
