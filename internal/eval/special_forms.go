package eval

import (
	"github.com/reproducible-bioinformatics/schemer/internal/value"
)

func registerSpecialForms(i *Interpreter) {
	i.specialForms["quote"] = sfQuote
	i.specialForms["if"] = sfIf
	i.specialForms["and"] = sfAnd
	i.specialForms["or"] = sfOr
	i.specialForms["cond"] = sfCond
	i.specialForms["define"] = sfDefine
	i.specialForms["lambda"] = sfLambda
	i.specialForms["set!"] = sfSet
	i.specialForms["begin"] = sfBegin
	i.specialForms["let"] = sfLet
	i.specialForms["let*"] = sfLetStar
	i.specialForms["letrec"] = sfLetrec
	i.specialForms["case"] = sfCase
	i.specialForms["do"] = sfDo
	i.specialForms["delay"] = sfDelay
	i.specialForms["quasiquote"] = sfQuasiquote
}

// quote: return the arg list as-is (unevaluated).
func sfQuote(_ *Interpreter, _ *Env, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Unspecified, errorf("special-form misuse: quote expects exactly 1 argument, got %d", len(args))
	}
	return args[0], nil
}

// if: (if c t) evaluates t iff c is truthy, else unspecified;
// (if c t e) chooses between them.
func sfIf(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return value.Unspecified, errorf("special-form misuse: if expects 2 or 3 arguments, got %d", len(args))
	}
	cond, err := i.Eval(args[0], env)
	if err != nil {
		return value.Unspecified, err
	}
	if value.IsTruthy(cond) {
		return i.Eval(args[1], env)
	}
	if len(args) == 3 {
		return i.Eval(args[2], env)
	}
	return value.Unspecified, nil
}

// and: left-to-right; empty → #t; returns the first falsy value or the
// last value, short-circuiting so a never-reached tail is never evaluated.
func sfAnd(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.True, nil
	}
	var result value.Value
	for _, form := range args {
		v, err := i.Eval(form, env)
		if err != nil {
			return value.Unspecified, err
		}
		result = v
		if !value.IsTruthy(v) {
			return v, nil
		}
	}
	return result, nil
}

// or: left-to-right; empty → #f; returns the first truthy value or the
// last value.
func sfOr(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.False, nil
	}
	var result value.Value
	for _, form := range args {
		v, err := i.Eval(form, env)
		if err != nil {
			return value.Unspecified, err
		}
		result = v
		if value.IsTruthy(v) {
			return v, nil
		}
	}
	return result, nil
}

// cond: evaluate each clause's test in order; on the first truthy test,
// evaluate its body and return the last value. A clause headed by `else`
// is allowed only as the last clause.
func sfCond(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	for idx, clauseForm := range args {
		clause, ok := value.ToSlice(clauseForm)
		if !ok || len(clause) == 0 {
			return value.Unspecified, errorf("special-form misuse: cond: malformed clause")
		}
		test := clause[0]
		isElse := test.Kind == value.KindSymbol && test.Symbol == "else"
		if isElse && idx != len(args)-1 {
			return value.Unspecified, errorf("special-form misuse: cond: else must be the last clause")
		}

		var testVal value.Value
		if isElse {
			testVal = value.True
		} else {
			v, err := i.Eval(test, env)
			if err != nil {
				return value.Unspecified, err
			}
			testVal = v
			if !value.IsTruthy(v) {
				continue
			}
		}

		if len(clause) == 1 {
			return testVal, nil
		}
		result := value.Unspecified
		for _, body := range clause[1:] {
			v, err := i.Eval(body, env)
			if err != nil {
				return value.Unspecified, err
			}
			result = v
		}
		return result, nil
	}
	return value.Unspecified, nil
}

// define: (define sym expr) stores expr's value in the global env.
// (define (sym formals...) body...) and (define (sym formals... . rest)
// body...) are sugar for defining sym to a lambda built from the same
// formals/body.
func sfDefine(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: define: missing target")
	}

	switch args[0].Kind {
	case value.KindSymbol:
		if len(args) > 2 {
			return value.Unspecified, errorf("special-form misuse: define: too many expressions for %s", args[0].Symbol)
		}
		val := value.Unspecified
		if len(args) == 2 {
			v, err := i.Eval(args[1], env)
			if err != nil {
				return value.Unspecified, err
			}
			val = v
		}
		if val.Kind == value.KindCompound && val.CompoundName == "" {
			val.CompoundName = args[0].Symbol
		}
		i.Global.Define(args[0].Symbol, val)
		return value.Unspecified, nil

	case value.KindPair:
		name := *args[0].Car
		if name.Kind != value.KindSymbol {
			return value.Unspecified, errorf("special-form misuse: define: invalid procedure name")
		}
		lambdaArgs := append([]value.Value{*args[0].Cdr}, args[1:]...)
		proc, err := buildLambda(i, env, lambdaArgs)
		if err != nil {
			return value.Unspecified, err
		}
		proc.CompoundName = name.Symbol
		i.Global.Define(name.Symbol, proc)
		return value.Unspecified, nil

	default:
		return value.Unspecified, errorf("special-form misuse: define: invalid target")
	}
}

// lambda: build a Compound from its formals and body.
func sfLambda(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	return buildLambda(i, env, args)
}

func buildLambda(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: lambda: missing formals")
	}
	required, optional, rest, hasRest, err := parseFormals(args[0])
	if err != nil {
		return value.Unspecified, err
	}
	return value.Value{
		Kind:         value.KindCompound,
		CompoundName: i.nextLambdaName(),
		Required:     required,
		Optional:     optional,
		Rest:         rest,
		HasRest:      hasRest,
		Body:         append([]value.Value{}, args[1:]...),
		CapturedEnv:  env,
	}, nil
}

// parseFormals recognizes a bare symbol (all-rest), a proper list of
// symbols, a dotted list, and the #!optional / #!rest markers that
// partition a list into required, optional and rest segments.
func parseFormals(formals value.Value) (required []string, optional []value.Formal, rest string, hasRest bool, err error) {
	if formals.Kind == value.KindSymbol {
		return nil, nil, formals.Symbol, true, nil
	}
	if formals.Kind == value.KindEmptyList {
		return nil, nil, "", false, nil
	}
	if formals.Kind != value.KindPair {
		return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed formals")
	}

	section := "required"
	cur := formals
	for cur.Kind == value.KindPair {
		head := *cur.Car
		if head.Kind == value.KindSymbol && head.Symbol == "#!optional" {
			section = "optional"
			cur = *cur.Cdr
			continue
		}
		if head.Kind == value.KindSymbol && head.Symbol == "#!rest" {
			section = "rest"
			cur = *cur.Cdr
			continue
		}
		switch section {
		case "required":
			if head.Kind != value.KindSymbol {
				return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed formals")
			}
			required = append(required, head.Symbol)
		case "optional":
			switch head.Kind {
			case value.KindSymbol:
				optional = append(optional, value.Formal{Name: head.Symbol})
			case value.KindPair:
				// (sym default) permits a default expression.
				nameV := *head.Car
				if nameV.Kind != value.KindSymbol || head.Cdr.Kind != value.KindPair {
					return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed optional formal")
				}
				optional = append(optional, value.Formal{Name: nameV.Symbol, HasDefault: true, Default: *head.Cdr.Car})
			default:
				return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed optional formal")
			}
		case "rest":
			if head.Kind != value.KindSymbol {
				return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed rest formal")
			}
			rest = head.Symbol
			hasRest = true
		}
		cur = *cur.Cdr
	}
	if cur.Kind == value.KindSymbol {
		// dotted formals: (a b . rest)
		if hasRest {
			return nil, nil, "", false, errorf("special-form misuse: lambda: duplicate rest formal")
		}
		rest = cur.Symbol
		hasRest = true
	} else if cur.Kind != value.KindEmptyList {
		return nil, nil, "", false, errorf("special-form misuse: lambda: ill-formed formals")
	}
	return required, optional, rest, hasRest, nil
}

// set!: mutate an existing binding; errors if sym is unbound anywhere in
// the lexical stack or the global env.
func sfSet(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) != 2 || args[0].Kind != value.KindSymbol {
		return value.Unspecified, errorf("special-form misuse: set!: expects (set! symbol expr)")
	}
	val, err := i.Eval(args[1], env)
	if err != nil {
		return value.Unspecified, err
	}
	if !env.Set(args[0].Symbol, val) {
		return value.Unspecified, errorf("unresolved symbol: set!: %s is unbound", args[0].Symbol)
	}
	return value.Unspecified, nil
}

// begin: evaluate forms in order, return the last value.
func sfBegin(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	result := value.Unspecified
	for _, form := range args {
		v, err := i.Eval(form, env)
		if err != nil {
			return value.Unspecified, err
		}
		result = v
	}
	return result, nil
}

type binding struct {
	name string
	init value.Value
}

func parseBindings(form value.Value) ([]binding, error) {
	specs, ok := value.ToSlice(form)
	if !ok {
		return nil, errorf("special-form misuse: malformed binding list")
	}
	out := make([]binding, 0, len(specs))
	for _, spec := range specs {
		parts, ok := value.ToSlice(spec)
		if !ok || len(parts) != 2 || parts[0].Kind != value.KindSymbol {
			return nil, errorf("special-form misuse: malformed binding %s", value.Print(spec))
		}
		out = append(out, binding{name: parts[0].Symbol, init: parts[1]})
	}
	return out, nil
}

// let: evaluate every init in the outer env, then bind simultaneously in a
// fresh frame. Also supports named let: (let name ((v init)...) body...),
// which builds a self-referential procedure and calls it once.
func sfLet(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) >= 1 && args[0].Kind == value.KindSymbol {
		return namedLet(i, env, args[0].Symbol, args[1:])
	}
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: let: missing bindings")
	}
	bindings, err := parseBindings(args[0])
	if err != nil {
		return value.Unspecified, err
	}
	inits := make([]value.Value, len(bindings))
	for idx, b := range bindings {
		v, err := i.Eval(b.init, env)
		if err != nil {
			return value.Unspecified, err
		}
		inits[idx] = v
	}
	frame := NewEnv(env)
	for idx, b := range bindings {
		frame.Define(b.name, inits[idx])
	}
	return sfBegin(i, frame, args[1:])
}

func namedLet(i *Interpreter, env *Env, name string, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: let: missing bindings")
	}
	bindings, err := parseBindings(args[0])
	if err != nil {
		return value.Unspecified, err
	}
	loopEnv := NewEnv(env)
	params := make([]string, len(bindings))
	inits := make([]value.Value, len(bindings))
	for idx, b := range bindings {
		params[idx] = b.name
		v, err := i.Eval(b.init, env)
		if err != nil {
			return value.Unspecified, err
		}
		inits[idx] = v
	}
	proc := value.Value{
		Kind:         value.KindCompound,
		CompoundName: name,
		Required:     params,
		Body:         append([]value.Value{}, args[1:]...),
		CapturedEnv:  loopEnv,
	}
	loopEnv.Define(name, proc)
	return i.Apply(proc, inits)
}

// let*: sequential binding; each init sees the bindings before it.
func sfLetStar(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: let*: missing bindings")
	}
	bindings, err := parseBindings(args[0])
	if err != nil {
		return value.Unspecified, err
	}
	frame := env
	for _, b := range bindings {
		v, err := i.Eval(b.init, frame)
		if err != nil {
			return value.Unspecified, err
		}
		frame = NewEnv(frame)
		frame.Define(b.name, v)
	}
	if len(bindings) == 0 {
		frame = NewEnv(env)
	}
	return sfBegin(i, frame, args[1:])
}

// letrec: bind all names to an as-yet-unspecified placeholder first, so
// inits (typically lambdas) can capture the frame and refer to each other,
// then evaluate every init and fill the bindings in.
func sfLetrec(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: letrec: missing bindings")
	}
	bindings, err := parseBindings(args[0])
	if err != nil {
		return value.Unspecified, err
	}
	frame := NewEnv(env)
	for _, b := range bindings {
		frame.Define(b.name, value.Unspecified)
	}
	for _, b := range bindings {
		v, err := i.Eval(b.init, frame)
		if err != nil {
			return value.Unspecified, err
		}
		frame.Define(b.name, v)
	}
	return sfBegin(i, frame, args[1:])
}

// case: (case key clause...) where clause is (datums... body...) or
// (else body...).
func sfCase(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Unspecified, errorf("special-form misuse: case: missing key")
	}
	key, err := i.Eval(args[0], env)
	if err != nil {
		return value.Unspecified, err
	}
	for idx, clauseForm := range args[1:] {
		clause, ok := value.ToSlice(clauseForm)
		if !ok || len(clause) == 0 {
			return value.Unspecified, errorf("special-form misuse: case: malformed clause")
		}
		head := clause[0]
		isElse := head.Kind == value.KindSymbol && head.Symbol == "else"
		if isElse && idx != len(args)-2 {
			return value.Unspecified, errorf("special-form misuse: case: else must be the last clause")
		}
		matched := isElse
		if !isElse {
			datums, ok := value.ToSlice(head)
			if !ok {
				return value.Unspecified, errorf("special-form misuse: case: malformed datum list")
			}
			for _, d := range datums {
				if value.Eqv(key, d) {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}
		result := value.Unspecified
		for _, body := range clause[1:] {
			v, err := i.Eval(body, env)
			if err != nil {
				return value.Unspecified, err
			}
			result = v
		}
		return result, nil
	}
	return value.Unspecified, nil
}

// do: (do ((var init step)...) (test expr...) command...). §9 fixes the
// source's mistyped iteration-step label by simply implementing the
// iteration correctly: evaluate all steps against the current frame before
// building the next one, so simultaneous update semantics hold.
func sfDo(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Unspecified, errorf("special-form misuse: do: missing bindings or test")
	}
	specs, ok := value.ToSlice(args[0])
	if !ok {
		return value.Unspecified, errorf("special-form misuse: do: malformed bindings")
	}
	type doVar struct {
		name string
		step value.Value
		hasStep bool
	}
	vars := make([]doVar, 0, len(specs))
	frame := NewEnv(env)
	for _, spec := range specs {
		parts, ok := value.ToSlice(spec)
		if !ok || (len(parts) != 2 && len(parts) != 3) || parts[0].Kind != value.KindSymbol {
			return value.Unspecified, errorf("special-form misuse: do: malformed binding %s", value.Print(spec))
		}
		initVal, err := i.Eval(parts[1], env)
		if err != nil {
			return value.Unspecified, err
		}
		frame.Define(parts[0].Symbol, initVal)
		dv := doVar{name: parts[0].Symbol}
		if len(parts) == 3 {
			dv.step = parts[2]
			dv.hasStep = true
		}
		vars = append(vars, dv)
	}

	testClause, ok := value.ToSlice(args[1])
	if !ok || len(testClause) == 0 {
		return value.Unspecified, errorf("special-form misuse: do: malformed test clause")
	}
	test, resultForms := testClause[0], testClause[1:]
	commands := args[2:]

	for {
		testVal, err := i.Eval(test, frame)
		if err != nil {
			return value.Unspecified, err
		}
		if value.IsTruthy(testVal) {
			result := value.Unspecified
			for _, form := range resultForms {
				v, err := i.Eval(form, frame)
				if err != nil {
					return value.Unspecified, err
				}
				result = v
			}
			return result, nil
		}
		for _, cmd := range commands {
			if _, err := i.Eval(cmd, frame); err != nil {
				return value.Unspecified, err
			}
		}
		next := NewEnv(env)
		for _, v := range vars {
			cur, _ := frame.Lookup(v.name)
			if !v.hasStep {
				next.Define(v.name, cur)
				continue
			}
			stepVal, err := i.Eval(v.step, frame)
			if err != nil {
				return value.Unspecified, err
			}
			next.Define(v.name, stepVal)
		}
		frame = next
	}
}

// delay: (delay expr) builds a memoizing promise. The companion `force`
// primitive (primitives.go) is what drives it; delay without force would
// be unobservable.
func sfDelay(_ *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Unspecified, errorf("special-form misuse: delay expects exactly 1 argument")
	}
	return value.Value{
		Kind:         value.KindPromise,
		Body:         []value.Value{args[0]},
		CapturedEnv:  env,
		PromiseState: &value.PromiseState{},
	}, nil
}

// quasiquote: like quote, but `,expr` substitutes expr's value and
// `,@expr` splices expr's (list-valued) value into the enclosing list.
// Nested quasiquotes increase depth so that inner unquotes belong to the
// inner quasiquote, not this one.
func sfQuasiquote(i *Interpreter, env *Env, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Unspecified, errorf("special-form misuse: quasiquote expects exactly 1 argument, got %d", len(args))
	}
	return quasiquoteWalk(i, env, args[0], 1)
}

func quasiquoteWalk(i *Interpreter, env *Env, form value.Value, depth int) (value.Value, error) {
	if form.Kind != value.KindPair {
		if form.Kind == value.KindVector {
			out := make([]value.Value, 0, len(form.Vector))
			for _, elem := range form.Vector {
				spliced, isSplice, err := quasiquoteMaybeSplice(i, env, elem, depth)
				if err != nil {
					return value.Unspecified, err
				}
				if isSplice {
					out = append(out, spliced...)
					continue
				}
				v, err := quasiquoteWalk(i, env, elem, depth)
				if err != nil {
					return value.Unspecified, err
				}
				out = append(out, v)
			}
			return value.Value{Kind: value.KindVector, Vector: out}, nil
		}
		return form, nil
	}

	head := *form.Car
	if head.Kind == value.KindSymbol {
		switch head.Symbol {
		case "unquote":
			rest, ok := value.ToSlice(*form.Cdr)
			if !ok || len(rest) != 1 {
				return value.Unspecified, errorf("special-form misuse: unquote expects exactly 1 argument")
			}
			if depth == 1 {
				return i.Eval(rest[0], env)
			}
			inner, err := quasiquoteWalk(i, env, rest[0], depth-1)
			if err != nil {
				return value.Unspecified, err
			}
			return value.List(value.Sym("unquote"), inner), nil

		case "quasiquote":
			rest, ok := value.ToSlice(*form.Cdr)
			if !ok || len(rest) != 1 {
				return value.Unspecified, errorf("special-form misuse: quasiquote expects exactly 1 argument")
			}
			inner, err := quasiquoteWalk(i, env, rest[0], depth+1)
			if err != nil {
				return value.Unspecified, err
			}
			return value.List(value.Sym("quasiquote"), inner), nil
		}
	}

	// Walk the list spine, splicing in unquote-splicing elements.
	var elems []value.Value
	cur := form
	for cur.Kind == value.KindPair {
		elem := *cur.Car
		spliced, isSplice, err := quasiquoteMaybeSplice(i, env, elem, depth)
		if err != nil {
			return value.Unspecified, err
		}
		if isSplice {
			elems = append(elems, spliced...)
		} else {
			v, err := quasiquoteWalk(i, env, elem, depth)
			if err != nil {
				return value.Unspecified, err
			}
			elems = append(elems, v)
		}
		cur = *cur.Cdr
	}
	tail, err := quasiquoteWalk(i, env, cur, depth)
	if err != nil {
		return value.Unspecified, err
	}
	if tail.Kind == value.KindEmptyList {
		return value.List(elems...), nil
	}
	return value.DottedList(tail, elems...), nil
}

// quasiquoteMaybeSplice reports whether elem is an `,@expr` form at this
// depth; if so it evaluates expr and returns its elements to be spliced in
// place, rather than a single value.
func quasiquoteMaybeSplice(i *Interpreter, env *Env, elem value.Value, depth int) ([]value.Value, bool, error) {
	if elem.Kind != value.KindPair || elem.Car.Kind != value.KindSymbol || elem.Car.Symbol != "unquote-splicing" {
		return nil, false, nil
	}
	rest, ok := value.ToSlice(*elem.Cdr)
	if !ok || len(rest) != 1 {
		return nil, false, errorf("special-form misuse: unquote-splicing expects exactly 1 argument")
	}
	if depth != 1 {
		inner, err := quasiquoteWalk(i, env, rest[0], depth-1)
		if err != nil {
			return nil, false, err
		}
		return []value.Value{value.List(value.Sym("unquote-splicing"), inner)}, true, nil
	}
	v, err := i.Eval(rest[0], env)
	if err != nil {
		return nil, false, err
	}
	elems, ok := value.ToSlice(v)
	if !ok {
		return nil, false, errorf("type error: unquote-splicing: value is not a proper list: %s", value.Print(v))
	}
	return elems, true, nil
}

// Force evaluates a promise's body the first time it is forced and caches
// the result for every subsequent force, including through aliases of the
// same Value (PromiseState is shared by pointer). Forcing a non-promise
// returns it unchanged, matching common R5RS implementations' leniency.
func Force(i *Interpreter, v value.Value) (value.Value, error) {
	if v.Kind != value.KindPromise {
		return v, nil
	}
	if v.PromiseState.Forced {
		return v.PromiseState.Value, nil
	}
	env, _ := v.CapturedEnv.(*Env)
	result, err := i.Eval(v.Body[0], env)
	if err != nil {
		return value.Unspecified, err
	}
	v.PromiseState.Forced = true
	v.PromiseState.Value = result
	return result, nil
}
