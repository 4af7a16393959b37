package eval

import (
	"fmt"
	"math/big"

	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

// variadic is the PrimArity sentinel for a primitive that accepts any
// number of arguments (e.g. +, list).
const variadic = -1

func registerPrimitives(global *Env) {
	def := func(name string, arity int, fn value.PrimitiveFn) {
		global.Define(name, value.Value{Kind: value.KindPrimitive, PrimName: name, PrimArity: arity, PrimFn: fn})
	}

	def("not", 1, primNot)
	def("length", 1, primLength)

	def("+", variadic, primAdd)
	def("-", variadic, primSub)
	def("*", variadic, primMul)
	def("=", variadic, numCompare(func(c int) bool { return c == 0 }))
	def("<", variadic, numCompare(func(c int) bool { return c < 0 }))
	def(">", variadic, numCompare(func(c int) bool { return c > 0 }))
	def("<=", variadic, numCompare(func(c int) bool { return c <= 0 }))
	def(">=", variadic, numCompare(func(c int) bool { return c >= 0 }))

	def("car", 1, primCar)
	def("cdr", 1, primCdr)
	def("cons", 2, primCons)
	def("cadr", 1, compose(primCar, primCdr))
	def("cddr", 1, compose(primCdr, primCdr))
	def("caddr", 1, compose(primCar, primCdr, primCdr))
	def("set-car!", 2, primSetCar)
	def("set-cdr!", 2, primSetCdr)

	def("null?", 1, kindPredicate(value.KindEmptyList))
	def("pair?", 1, kindPredicate(value.KindPair))
	def("symbol?", 1, kindPredicate(value.KindSymbol))
	def("string?", 1, kindPredicate(value.KindString))
	def("number?", 1, kindPredicate(value.KindNumber))
	def("boolean?", 1, kindPredicate(value.KindBoolean))
	def("char?", 1, kindPredicate(value.KindCharacter))
	def("vector?", 1, kindPredicate(value.KindVector))
	def("list?", 1, primListP)
	def("procedure?", 1, primProcedureP)

	def("list", variadic, primList)
	def("append", variadic, primAppend)
	def("reverse", 1, primReverse)

	def("vector-ref", 2, primVectorRef)
	def("vector-set!", 3, primVectorSet)
	def("vector-length", 1, primVectorLength)
	def("make-vector", variadic, primMakeVector)

	def("eq?", 2, func(args []value.Value) (value.Value, error) { return value.Bool(value.Eqv(args[0], args[1])), nil })
	def("eqv?", 2, func(args []value.Value) (value.Value, error) { return value.Bool(value.Eqv(args[0], args[1])), nil })
	def("equal?", 2, func(args []value.Value) (value.Value, error) { return value.Bool(value.Equal(args[0], args[1])), nil })

	def("display", 1, primDisplay)
	def("print", 1, primDisplay)
	def("newline", 0, func([]value.Value) (value.Value, error) { fmt.Println(); return value.Unspecified, nil })

	def("char->integer", 1, primCharToInteger)
	def("integer->char", 1, primIntegerToChar)
	def("string-length", 1, primStringLength)
	def("string-ref", 2, primStringRef)
	def("string-append", variadic, primStringAppend)
	def("string->symbol", 1, primStringToSymbol)
	def("symbol->string", 1, primSymbolToString)

	def("zero?", 1, numPredicate(func(n *big.Int) bool { return n.Sign() == 0 }))
	def("positive?", 1, numPredicate(func(n *big.Int) bool { return n.Sign() > 0 }))
	def("negative?", 1, numPredicate(func(n *big.Int) bool { return n.Sign() < 0 }))
	def("abs", 1, primAbs)
	def("quotient", 2, primQuotient)
	def("remainder", 2, primRemainder)
	def("modulo", 2, primModulo)
	def("min", variadic, extremum(func(c int) bool { return c < 0 }))
	def("max", variadic, extremum(func(c int) bool { return c > 0 }))
	def("gcd", variadic, primGCD)
}

// registerInterpreterPrimitives wires apply/map/for-each/force, which need
// access to the live *Interpreter (to call back into Eval/Apply), not just
// the global frame — it is called from eval.go's New.
func registerInterpreterPrimitives(i *Interpreter) {
	def := func(name string, arity int, fn value.PrimitiveFn) {
		i.Global.Define(name, value.Value{Kind: value.KindPrimitive, PrimName: name, PrimArity: arity, PrimFn: fn})
	}

	def("apply", variadic, func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Unspecified, errorf("arity error: apply expects at least 1 argument")
		}
		fn := args[0]
		var callArgs []value.Value
		if len(args) > 1 {
			callArgs = append(callArgs, args[1:len(args)-1]...)
			tail, ok := value.ToSlice(args[len(args)-1])
			if !ok {
				return value.Unspecified, errorf("type error: apply: last argument must be a proper list")
			}
			callArgs = append(callArgs, tail...)
		}
		return i.Apply(fn, callArgs)
	})

	def("map", variadic, func(args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Unspecified, errorf("arity error: map expects a procedure and at least one list")
		}
		fn := args[0]
		lists := make([][]value.Value, len(args)-1)
		minLen := -1
		for idx, lv := range args[1:] {
			elems, ok := value.ToSlice(lv)
			if !ok {
				return value.Unspecified, errorf("type error: map: argument %d is not a proper list", idx+2)
			}
			lists[idx] = elems
			if minLen == -1 || len(elems) < minLen {
				minLen = len(elems)
			}
		}
		out := make([]value.Value, minLen)
		for n := 0; n < minLen; n++ {
			callArgs := make([]value.Value, len(lists))
			for l := range lists {
				callArgs[l] = lists[l][n]
			}
			v, err := i.Apply(fn, callArgs)
			if err != nil {
				return value.Unspecified, err
			}
			out[n] = v
		}
		return value.List(out...), nil
	})

	def("for-each", variadic, func(args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Unspecified, errorf("arity error: for-each expects a procedure and at least one list")
		}
		fn := args[0]
		lists := make([][]value.Value, len(args)-1)
		minLen := -1
		for idx, lv := range args[1:] {
			elems, ok := value.ToSlice(lv)
			if !ok {
				return value.Unspecified, errorf("type error: for-each: argument %d is not a proper list", idx+2)
			}
			lists[idx] = elems
			if minLen == -1 || len(elems) < minLen {
				minLen = len(elems)
			}
		}
		for n := 0; n < minLen; n++ {
			callArgs := make([]value.Value, len(lists))
			for l := range lists {
				callArgs[l] = lists[l][n]
			}
			if _, err := i.Apply(fn, callArgs); err != nil {
				return value.Unspecified, err
			}
		}
		return value.Unspecified, nil
	})

	def("force", 1, func(args []value.Value) (value.Value, error) {
		return Force(i, args[0])
	})
}

func primNot(args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Kind == value.KindBoolean && !args[0].Boolean), nil
}

func primLength(args []value.Value) (value.Value, error) {
	n, ok := value.Length(args[0])
	if !ok {
		return value.Unspecified, errorf("type error: length: not a proper list: %s", value.Print(args[0]))
	}
	return value.NumberFromInt64(int64(n)), nil
}

func requireNumbers(args []value.Value, who string) ([]*big.Int, error) {
	nums := make([]*big.Int, len(args))
	for idx, a := range args {
		if a.Kind != value.KindNumber {
			return nil, errorf("type error: %s: argument %d is not a number: %s", who, idx+1, value.Print(a))
		}
		nums[idx] = a.Number
	}
	return nums, nil
}

func primAdd(args []value.Value) (value.Value, error) {
	nums, err := requireNumbers(args, "+")
	if err != nil {
		return value.Unspecified, err
	}
	sum := big.NewInt(0)
	for _, n := range nums {
		sum.Add(sum, n)
	}
	return value.Value{Kind: value.KindNumber, Number: sum}, nil
}

func primSub(args []value.Value) (value.Value, error) {
	nums, err := requireNumbers(args, "-")
	if err != nil {
		return value.Unspecified, err
	}
	if len(nums) == 0 {
		return value.Unspecified, errorf("arity error: - expects at least 1 argument")
	}
	if len(nums) == 1 {
		return value.Value{Kind: value.KindNumber, Number: new(big.Int).Neg(nums[0])}, nil
	}
	result := new(big.Int).Set(nums[0])
	for _, n := range nums[1:] {
		result.Sub(result, n)
	}
	return value.Value{Kind: value.KindNumber, Number: result}, nil
}

func primMul(args []value.Value) (value.Value, error) {
	nums, err := requireNumbers(args, "*")
	if err != nil {
		return value.Unspecified, err
	}
	product := big.NewInt(1)
	for _, n := range nums {
		product.Mul(product, n)
	}
	return value.Value{Kind: value.KindNumber, Number: product}, nil
}

func numCompare(ok func(cmp int) bool) value.PrimitiveFn {
	return func(args []value.Value) (value.Value, error) {
		nums, err := requireNumbers(args, "comparison")
		if err != nil {
			return value.Unspecified, err
		}
		for idx := 1; idx < len(nums); idx++ {
			if !ok(nums[idx-1].Cmp(nums[idx])) {
				return value.False, nil
			}
		}
		return value.True, nil
	}
}

func primCar(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindPair {
		return value.Unspecified, errorf("type error: car: not a pair: %s", value.Print(args[0]))
	}
	return *args[0].Car, nil
}

func primCdr(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindPair {
		return value.Unspecified, errorf("type error: cdr: not a pair: %s", value.Print(args[0]))
	}
	return *args[0].Cdr, nil
}

func primCons(args []value.Value) (value.Value, error) {
	return value.Cons(args[0], args[1]), nil
}

func primSetCar(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindPair {
		return value.Unspecified, errorf("type error: set-car!: not a pair")
	}
	*args[0].Car = args[1]
	return value.Unspecified, nil
}

func primSetCdr(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindPair {
		return value.Unspecified, errorf("type error: set-cdr!: not a pair")
	}
	*args[0].Cdr = args[1]
	return value.Unspecified, nil
}

func compose(fns ...value.PrimitiveFn) value.PrimitiveFn {
	return func(args []value.Value) (value.Value, error) {
		v := args[0]
		for i := len(fns) - 1; i >= 0; i-- {
			out, err := fns[i]([]value.Value{v})
			if err != nil {
				return value.Unspecified, err
			}
			v = out
		}
		return v, nil
	}
}

func kindPredicate(k value.Kind) value.PrimitiveFn {
	return func(args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Kind == k), nil
	}
}

func primListP(args []value.Value) (value.Value, error) {
	return value.Bool(value.IsList(args[0])), nil
}

func primProcedureP(args []value.Value) (value.Value, error) {
	k := args[0].Kind
	return value.Bool(k == value.KindPrimitive || k == value.KindCompound), nil
}

func primList(args []value.Value) (value.Value, error) {
	return value.List(args...), nil
}

func primAppend(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Empty, nil
	}
	var all []value.Value
	for idx, a := range args[:len(args)-1] {
		elems, ok := value.ToSlice(a)
		if !ok {
			return value.Unspecified, errorf("type error: append: argument %d is not a proper list", idx+1)
		}
		all = append(all, elems...)
	}
	last := args[len(args)-1]
	return value.DottedList(last, all...), nil
}

func primReverse(args []value.Value) (value.Value, error) {
	elems, ok := value.ToSlice(args[0])
	if !ok {
		return value.Unspecified, errorf("type error: reverse: not a proper list")
	}
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[len(elems)-1-i] = e
	}
	return value.List(out...), nil
}

func primVectorRef(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindVector || args[1].Kind != value.KindNumber {
		return value.Unspecified, errorf("type error: vector-ref: bad arguments")
	}
	idx := int(args[1].Number.Int64())
	if idx < 0 || idx >= len(args[0].Vector) {
		return value.Unspecified, errorf("type error: vector-ref: index %d out of range", idx)
	}
	return args[0].Vector[idx], nil
}

func primVectorSet(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindVector || args[1].Kind != value.KindNumber {
		return value.Unspecified, errorf("type error: vector-set!: bad arguments")
	}
	idx := int(args[1].Number.Int64())
	if idx < 0 || idx >= len(args[0].Vector) {
		return value.Unspecified, errorf("type error: vector-set!: index %d out of range", idx)
	}
	args[0].Vector[idx] = args[2]
	return value.Unspecified, nil
}

func primVectorLength(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindVector {
		return value.Unspecified, errorf("type error: vector-length: not a vector")
	}
	return value.NumberFromInt64(int64(len(args[0].Vector))), nil
}

func primMakeVector(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 || args[0].Kind != value.KindNumber {
		return value.Unspecified, errorf("arity error: make-vector expects 1 or 2 arguments")
	}
	n := int(args[0].Number.Int64())
	fill := value.Unspecified
	if len(args) == 2 {
		fill = args[1]
	}
	vec := make([]value.Value, n)
	for i := range vec {
		vec[i] = fill
	}
	return value.Value{Kind: value.KindVector, Vector: vec}, nil
}

func primDisplay(args []value.Value) (value.Value, error) {
	if args[0].Kind == value.KindString {
		fmt.Print(args[0].Str)
	} else {
		fmt.Print(value.Print(args[0]))
	}
	return value.Unspecified, nil
}

func primCharToInteger(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindCharacter {
		return value.Unspecified, errorf("type error: char->integer: not a character")
	}
	return value.NumberFromInt64(int64(args[0].Character)), nil
}

func primIntegerToChar(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindNumber {
		return value.Unspecified, errorf("type error: integer->char: not a number")
	}
	return value.Value{Kind: value.KindCharacter, Character: rune(args[0].Number.Int64())}, nil
}

func primStringLength(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindString {
		return value.Unspecified, errorf("type error: string-length: not a string")
	}
	return value.NumberFromInt64(int64(len([]rune(args[0].Str)))), nil
}

func primStringRef(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindString || args[1].Kind != value.KindNumber {
		return value.Unspecified, errorf("type error: string-ref: bad arguments")
	}
	runes := []rune(args[0].Str)
	idx := int(args[1].Number.Int64())
	if idx < 0 || idx >= len(runes) {
		return value.Unspecified, errorf("type error: string-ref: index %d out of range", idx)
	}
	return value.Value{Kind: value.KindCharacter, Character: runes[idx]}, nil
}

func primStringAppend(args []value.Value) (value.Value, error) {
	var sb []rune
	for idx, a := range args {
		if a.Kind != value.KindString {
			return value.Unspecified, errorf("type error: string-append: argument %d is not a string", idx+1)
		}
		sb = append(sb, []rune(a.Str)...)
	}
	return value.Str(string(sb)), nil
}

func primStringToSymbol(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindString {
		return value.Unspecified, errorf("type error: string->symbol: not a string")
	}
	return value.Sym(args[0].Str), nil
}

func primSymbolToString(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindSymbol {
		return value.Unspecified, errorf("type error: symbol->string: not a symbol")
	}
	return value.Str(args[0].Symbol), nil
}

func numPredicate(pred func(*big.Int) bool) value.PrimitiveFn {
	return func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindNumber {
			return value.Unspecified, errorf("type error: not a number: %s", value.Print(args[0]))
		}
		return value.Bool(pred(args[0].Number)), nil
	}
}

func primAbs(args []value.Value) (value.Value, error) {
	if args[0].Kind != value.KindNumber {
		return value.Unspecified, errorf("type error: abs: not a number")
	}
	return value.Value{Kind: value.KindNumber, Number: new(big.Int).Abs(args[0].Number)}, nil
}

func divOp(args []value.Value, who string, op func(a, b *big.Int) *big.Int) (value.Value, error) {
	nums, err := requireNumbers(args, who)
	if err != nil {
		return value.Unspecified, err
	}
	if len(nums) != 2 {
		return value.Unspecified, errorf("arity error: %s expects exactly 2 arguments", who)
	}
	if nums[1].Sign() == 0 {
		return value.Unspecified, errorf("type error: %s: division by zero", who)
	}
	return value.Value{Kind: value.KindNumber, Number: op(nums[0], nums[1])}, nil
}

func primQuotient(args []value.Value) (value.Value, error) {
	return divOp(args, "quotient", func(a, b *big.Int) *big.Int { return new(big.Int).Quo(a, b) })
}

func primRemainder(args []value.Value) (value.Value, error) {
	return divOp(args, "remainder", func(a, b *big.Int) *big.Int { return new(big.Int).Rem(a, b) })
}

// modulo takes the sign of the divisor (floored division), unlike
// big.Int.Mod's Euclidean result: (modulo 13 -4) is -3, not 1.
func primModulo(args []value.Value) (value.Value, error) {
	return divOp(args, "modulo", func(a, b *big.Int) *big.Int {
		r := new(big.Int).Rem(a, b)
		if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
			r.Add(r, b)
		}
		return r
	})
}

func extremum(better func(cmp int) bool) value.PrimitiveFn {
	return func(args []value.Value) (value.Value, error) {
		nums, err := requireNumbers(args, "min/max")
		if err != nil {
			return value.Unspecified, err
		}
		if len(nums) == 0 {
			return value.Unspecified, errorf("arity error: min/max expects at least 1 argument")
		}
		best := nums[0]
		for _, n := range nums[1:] {
			if better(n.Cmp(best)) {
				best = n
			}
		}
		return value.Value{Kind: value.KindNumber, Number: best}, nil
	}
}

func primGCD(args []value.Value) (value.Value, error) {
	nums, err := requireNumbers(args, "gcd")
	if err != nil {
		return value.Unspecified, err
	}
	result := big.NewInt(0)
	for _, n := range nums {
		result.GCD(nil, nil, result, new(big.Int).Abs(n))
		if result.Sign() == 0 {
			result = new(big.Int).Abs(n)
		}
	}
	return result2Value(result), nil
}

func result2Value(n *big.Int) value.Value {
	return value.Value{Kind: value.KindNumber, Number: n}
}
