// Package value implements the typed value and expression algebra that
// underlies program-graph guards, effects, and channel payloads: a small
// closed set of scalar/compound types, a tagged-sum expression tree
// generic over the variable-handle type, and deterministic plus
// PRNG-sampling evaluation.
package value

import (
	"fmt"

	"github.com/pouyapd/scanmc/errs"
)

// Kind identifies the shape of a Type.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindProduct
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindProduct:
		return "product"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Type describes the type of a Val or Expr. Product carries one Elem per
// component; List carries exactly one Elem, the element type.
type Type struct {
	Kind Kind
	Elem []Type
}

func Bool() Type  { return Type{Kind: KindBool} }
func Int() Type   { return Type{Kind: KindInt} }
func Float() Type { return Type{Kind: KindFloat} }

func Product(elems ...Type) Type {
	return Type{Kind: KindProduct, Elem: elems}
}

func List(elem Type) Type {
	return Type{Kind: KindList, Elem: []Type{elem}}
}

func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if len(t.Elem) != len(o.Elem) {
		return false
	}
	for i := range t.Elem {
		if !t.Elem[i].Equal(o.Elem[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindProduct:
		return fmt.Sprintf("(%v)", t.Elem)
	case KindList:
		return fmt.Sprintf("[]%v", t.Elem[0])
	default:
		return t.Kind.String()
	}
}

// Val is a dynamically-typed value belonging to one of the Kinds above.
// Its Type field is authoritative; the payload fields are read only after
// checking Kind.
type Val struct {
	Type  Type
	b     bool
	i     int32
	f     float64
	elems []Val // Product components, or List items
}

func BoolVal(b bool) Val   { return Val{Type: Bool(), b: b} }
func IntVal(i int32) Val   { return Val{Type: Int(), i: i} }
func FloatVal(f float64) Val { return Val{Type: Float(), f: f} }

func ProductVal(elems ...Val) Val {
	types := make([]Type, len(elems))
	for i, e := range elems {
		types[i] = e.Type
	}
	return Val{Type: Product(types...), elems: elems}
}

func ListVal(elem Type, items ...Val) Val {
	return Val{Type: List(elem), elems: items}
}

func (v Val) Bool() (bool, error) {
	if v.Type.Kind != KindBool {
		return false, fmt.Errorf("%w: expected bool, got %s", errs.ErrTypeMismatch, v.Type)
	}
	return v.b, nil
}

func (v Val) Int() (int32, error) {
	if v.Type.Kind != KindInt {
		return 0, fmt.Errorf("%w: expected int, got %s", errs.ErrTypeMismatch, v.Type)
	}
	return v.i, nil
}

func (v Val) Float() (float64, error) {
	if v.Type.Kind != KindFloat {
		return 0, fmt.Errorf("%w: expected float, got %s", errs.ErrTypeMismatch, v.Type)
	}
	return v.f, nil
}

func (v Val) Components() ([]Val, error) {
	if v.Type.Kind != KindProduct {
		return nil, fmt.Errorf("%w: expected product, got %s", errs.ErrTypeMismatch, v.Type)
	}
	return v.elems, nil
}

func (v Val) Items() ([]Val, error) {
	if v.Type.Kind != KindList {
		return nil, fmt.Errorf("%w: expected list, got %s", errs.ErrTypeMismatch, v.Type)
	}
	return v.elems, nil
}

// Equal reports structural equality, including type.
func (v Val) Equal(o Val) bool {
	if !v.Type.Equal(o.Type) {
		return false
	}
	switch v.Type.Kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindProduct, KindList:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Val) String() string {
	switch v.Type.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	default:
		return fmt.Sprintf("%v", v.elems)
	}
}
