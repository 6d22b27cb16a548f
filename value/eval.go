package value

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pouyapd/scanmc/errs"
)

// TypeOf infers the type of an expression without evaluating it. VarRef
// nodes carry their own type, so no external type environment is needed.
func TypeOf[V comparable](e Expr[V]) (Type, error) {
	switch n := e.(type) {
	case Const[V]:
		return n.Value.Type, nil
	case VarRef[V]:
		return n.VarType, nil
	case Tuple[V]:
		elems := make([]Type, len(n.Elems))
		for i, sub := range n.Elems {
			t, err := TypeOf[V](sub)
			if err != nil {
				return Type{}, err
			}
			elems[i] = t
		}
		return Product(elems...), nil
	case Component[V]:
		t, err := TypeOf[V](n.Of)
		if err != nil {
			return Type{}, err
		}
		if t.Kind != KindProduct || n.Index < 0 || n.Index >= len(t.Elem) {
			return Type{}, fmt.Errorf("%w: component index %d out of range for %s", errs.ErrMalformed, n.Index, t)
		}
		return t.Elem[n.Index], nil
	case And[V], Or[V]:
		return Bool(), nil
	case Not[V]:
		return Bool(), nil
	case Implies[V]:
		return Bool(), nil
	case Opposite[V]:
		return TypeOf[V](n.Operand)
	case Sum[V]:
		return sumType(n.Operands)
	case Mult[V]:
		return sumType(n.Operands)
	case Mod[V]:
		return Int(), nil
	case Equal[V], Less[V], LessEq[V], Greater[V], GreaterEq[V]:
		return Bool(), nil
	case Append[V]:
		return TypeOf[V](n.List)
	case Truncate[V]:
		return TypeOf[V](n.List)
	case Len[V]:
		return Int(), nil
	case Sample[V]:
		return n.Dist.resultType(), nil
	default:
		return Type{}, fmt.Errorf("%w: unknown expression node", errs.ErrMalformed)
	}
}

func sumType[V comparable](operands []Expr[V]) (Type, error) {
	if len(operands) == 0 {
		return Type{}, fmt.Errorf("%w: empty operand list", errs.ErrMalformed)
	}
	return TypeOf[V](operands[0])
}

// Eval evaluates e against lookup. rng is used only by Sample nodes; pass
// nil for guard/invariant evaluation, which must never sample — reaching
// a Sample node in that mode is reported as an error, not a panic.
func Eval[V comparable](e Expr[V], lookup Lookup[V], rng *rand.Rand) (Val, error) {
	switch n := e.(type) {
	case Const[V]:
		return n.Value, nil

	case VarRef[V]:
		return lookup(n.Handle)

	case Tuple[V]:
		elems := make([]Val, len(n.Elems))
		for i, sub := range n.Elems {
			v, err := Eval(sub, lookup, rng)
			if err != nil {
				return Val{}, err
			}
			elems[i] = v
		}
		return ProductVal(elems...), nil

	case Component[V]:
		v, err := Eval(n.Of, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		comps, err := v.Components()
		if err != nil {
			return Val{}, err
		}
		if n.Index < 0 || n.Index >= len(comps) {
			return Val{}, fmt.Errorf("%w: component index %d out of range", errs.ErrMalformed, n.Index)
		}
		return comps[n.Index], nil

	case And[V]:
		for _, sub := range n.Operands {
			v, err := Eval(sub, lookup, rng)
			if err != nil {
				return Val{}, err
			}
			b, err := v.Bool()
			if err != nil {
				return Val{}, err
			}
			if !b {
				return BoolVal(false), nil
			}
		}
		return BoolVal(true), nil

	case Or[V]:
		for _, sub := range n.Operands {
			v, err := Eval(sub, lookup, rng)
			if err != nil {
				return Val{}, err
			}
			b, err := v.Bool()
			if err != nil {
				return Val{}, err
			}
			if b {
				return BoolVal(true), nil
			}
		}
		return BoolVal(false), nil

	case Not[V]:
		v, err := evalBool(n.Operand, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		return BoolVal(!v), nil

	case Implies[V]:
		a, err := evalBool(n.Antecedent, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		if !a {
			return BoolVal(true), nil
		}
		c, err := evalBool(n.Consequent, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		return BoolVal(c), nil

	case Opposite[V]:
		v, err := Eval(n.Operand, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		return negate(v)

	case Sum[V]:
		return foldArith(n.Operands, lookup, rng, func(acc, x Val) (Val, error) { return addVals(acc, x) })

	case Mult[V]:
		return foldArith(n.Operands, lookup, rng, func(acc, x Val) (Val, error) { return mulVals(acc, x) })

	case Mod[V]:
		l, r, err := evalArithPair(n.Left, n.Right, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		li, err := l.Int()
		if err != nil {
			return Val{}, err
		}
		ri, err := r.Int()
		if err != nil {
			return Val{}, err
		}
		if ri == 0 {
			return Val{}, fmt.Errorf("%w: modulo by zero", errs.ErrArithmetic)
		}
		return IntVal(li % ri), nil

	case Equal[V]:
		l, r, err := evalPair(n.Left, n.Right, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		return BoolVal(l.Equal(r)), nil

	case Less[V]:
		return compareNum(n.Left, n.Right, lookup, rng, func(c int) bool { return c < 0 })
	case LessEq[V]:
		return compareNum(n.Left, n.Right, lookup, rng, func(c int) bool { return c <= 0 })
	case Greater[V]:
		return compareNum(n.Left, n.Right, lookup, rng, func(c int) bool { return c > 0 })
	case GreaterEq[V]:
		return compareNum(n.Left, n.Right, lookup, rng, func(c int) bool { return c >= 0 })

	case Append[V]:
		lv, err := Eval(n.List, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		items, err := lv.Items()
		if err != nil {
			return Val{}, err
		}
		item, err := Eval(n.Item, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		next := make([]Val, len(items)+1)
		copy(next, items)
		next[len(items)] = item
		return ListVal(lv.Type.Elem[0], next...), nil

	case Truncate[V]:
		lv, err := Eval(n.List, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		items, err := lv.Items()
		if err != nil {
			return Val{}, err
		}
		if len(items) == 0 {
			return Val{}, fmt.Errorf("%w: truncate of empty list", errs.ErrArithmetic)
		}
		return ListVal(lv.Type.Elem[0], items[:len(items)-1]...), nil

	case Len[V]:
		lv, err := Eval(n.List, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		items, err := lv.Items()
		if err != nil {
			return Val{}, err
		}
		return IntVal(int32(len(items))), nil

	case Sample[V]:
		if rng == nil {
			return Val{}, fmt.Errorf("%w: Sample is not permitted in a non-sampling evaluation context (guards/invariants)", errs.ErrMalformed)
		}
		return sampleDist(n.Dist, rng)

	default:
		return Val{}, fmt.Errorf("%w: unknown expression node", errs.ErrMalformed)
	}
}

func evalBool[V comparable](e Expr[V], lookup Lookup[V], rng *rand.Rand) (bool, error) {
	v, err := Eval(e, lookup, rng)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func evalPair[V comparable](l, r Expr[V], lookup Lookup[V], rng *rand.Rand) (Val, Val, error) {
	lv, err := Eval(l, lookup, rng)
	if err != nil {
		return Val{}, Val{}, err
	}
	rv, err := Eval(r, lookup, rng)
	if err != nil {
		return Val{}, Val{}, err
	}
	return lv, rv, nil
}

func evalArithPair[V comparable](l, r Expr[V], lookup Lookup[V], rng *rand.Rand) (Val, Val, error) {
	lv, rv, err := evalPair(l, r, lookup, rng)
	if err != nil {
		return Val{}, Val{}, err
	}
	if !lv.Type.Equal(rv.Type) {
		return Val{}, Val{}, fmt.Errorf("%w: mismatched operand types %s vs %s", errs.ErrTypeMismatch, lv.Type, rv.Type)
	}
	return lv, rv, nil
}

func foldArith[V comparable](operands []Expr[V], lookup Lookup[V], rng *rand.Rand, op func(acc, x Val) (Val, error)) (Val, error) {
	if len(operands) == 0 {
		return Val{}, fmt.Errorf("%w: empty operand list", errs.ErrMalformed)
	}
	acc, err := Eval(operands[0], lookup, rng)
	if err != nil {
		return Val{}, err
	}
	for _, sub := range operands[1:] {
		v, err := Eval(sub, lookup, rng)
		if err != nil {
			return Val{}, err
		}
		var opErr error
		acc, opErr = op(acc, v)
		if opErr != nil {
			// op (addVals/mulVals) already saturated acc on overflow; return
			// it alongside the error rather than discarding it, so a caller
			// can still observe the clamped magnitude per spec.
			return acc, opErr
		}
	}
	return acc, nil
}

// saturate clamps a widened sum/product to the int32 range, reporting
// whether clamping was necessary.
func saturate(wide int64) (int32, bool) {
	switch {
	case wide > math.MaxInt32:
		return math.MaxInt32, true
	case wide < math.MinInt32:
		return math.MinInt32, true
	default:
		return int32(wide), false
	}
}

func addVals(a, b Val) (Val, error) {
	if !a.Type.Equal(b.Type) {
		return Val{}, fmt.Errorf("%w: mismatched operand types %s vs %s", errs.ErrTypeMismatch, a.Type, b.Type)
	}
	switch a.Type.Kind {
	case KindInt:
		sum, overflowed := saturate(int64(a.i) + int64(b.i))
		if overflowed {
			return IntVal(sum), fmt.Errorf("%w: Sum overflowed int32, saturated to %d", errs.ErrArithmetic, sum)
		}
		return IntVal(sum), nil
	case KindFloat:
		return FloatVal(a.f + b.f), nil
	default:
		return Val{}, fmt.Errorf("%w: Sum requires int or float operands, got %s", errs.ErrTypeMismatch, a.Type)
	}
}

func mulVals(a, b Val) (Val, error) {
	if !a.Type.Equal(b.Type) {
		return Val{}, fmt.Errorf("%w: mismatched operand types %s vs %s", errs.ErrTypeMismatch, a.Type, b.Type)
	}
	switch a.Type.Kind {
	case KindInt:
		prod, overflowed := saturate(int64(a.i) * int64(b.i))
		if overflowed {
			return IntVal(prod), fmt.Errorf("%w: Mult overflowed int32, saturated to %d", errs.ErrArithmetic, prod)
		}
		return IntVal(prod), nil
	case KindFloat:
		return FloatVal(a.f * b.f), nil
	default:
		return Val{}, fmt.Errorf("%w: Mult requires int or float operands, got %s", errs.ErrTypeMismatch, a.Type)
	}
}

func negate(v Val) (Val, error) {
	switch v.Type.Kind {
	case KindInt:
		neg, overflowed := saturate(-int64(v.i))
		if overflowed {
			return IntVal(neg), fmt.Errorf("%w: Opposite overflowed int32, saturated to %d", errs.ErrArithmetic, neg)
		}
		return IntVal(neg), nil
	case KindFloat:
		return FloatVal(-v.f), nil
	default:
		return Val{}, fmt.Errorf("%w: Opposite requires int or float, got %s", errs.ErrTypeMismatch, v.Type)
	}
}

func compareNum[V comparable](l, r Expr[V], lookup Lookup[V], rng *rand.Rand, accept func(int) bool) (Val, error) {
	lv, rv, err := evalArithPair(l, r, lookup, rng)
	if err != nil {
		return Val{}, err
	}
	var c int
	switch lv.Type.Kind {
	case KindInt:
		switch {
		case lv.i < rv.i:
			c = -1
		case lv.i > rv.i:
			c = 1
		}
	case KindFloat:
		switch {
		case lv.f < rv.f:
			c = -1
		case lv.f > rv.f:
			c = 1
		}
	default:
		return Val{}, fmt.Errorf("%w: ordering requires int or float, got %s", errs.ErrTypeMismatch, lv.Type)
	}
	return BoolVal(accept(c)), nil
}

func sampleDist(d Dist, rng *rand.Rand) (Val, error) {
	switch dist := d.(type) {
	case UniformInt:
		if dist.Hi < dist.Lo {
			return Val{}, fmt.Errorf("%w: UniformInt hi < lo", errs.ErrArithmetic)
		}
		span := int64(dist.Hi) - int64(dist.Lo) + 1
		return IntVal(dist.Lo + int32(rng.Int63n(span))), nil
	case Bernoulli:
		return BoolVal(rng.Float64() < dist.P), nil
	default:
		return Val{}, fmt.Errorf("%w: unknown distribution", errs.ErrMalformed)
	}
}
