package value

// Expr is an algebraic expression tree over a variable-handle type V (a
// pg.Var in practice). The interface plus concrete node structs
// realize the tagged sum that would be an enum in a language with sum
// types; switch on concrete type (TypeOf/Eval) rather than on a Kind
// field, so adding a node is a compile-time-checked exhaustiveness
// exercise at the two or three places that matter.
type Expr[V comparable] interface {
	exprNode()
}

type Const[V comparable] struct{ Value Val }

type VarRef[V comparable] struct {
	Handle V
	VarType Type
}

type Tuple[V comparable] struct{ Elems []Expr[V] }

// Component projects element Index out of a product-typed expression.
type Component[V comparable] struct {
	Of    Expr[V]
	Index int
}

type And[V comparable] struct{ Operands []Expr[V] }
type Or[V comparable] struct{ Operands []Expr[V] }
type Not[V comparable] struct{ Operand Expr[V] }
type Implies[V comparable] struct{ Antecedent, Consequent Expr[V] }

// Opposite is arithmetic negation (-x), distinct from logical Not.
type Opposite[V comparable] struct{ Operand Expr[V] }

type Sum[V comparable] struct{ Operands []Expr[V] }
type Mult[V comparable] struct{ Operands []Expr[V] }
type Mod[V comparable] struct{ Left, Right Expr[V] }

type Equal[V comparable] struct{ Left, Right Expr[V] }
type Less[V comparable] struct{ Left, Right Expr[V] }
type LessEq[V comparable] struct{ Left, Right Expr[V] }
type Greater[V comparable] struct{ Left, Right Expr[V] }
type GreaterEq[V comparable] struct{ Left, Right Expr[V] }

// Append(List, Item) appends Item to a list-typed expression, yielding a
// new list.
type Append[V comparable] struct{ List, Item Expr[V] }

// Truncate drops the last element of a list-typed expression.
type Truncate[V comparable] struct{ List Expr[V] }

// Len yields the Int length of a list-typed expression.
type Len[V comparable] struct{ List Expr[V] }

// Sample draws from Dist. [EXPANDED], see dist.go.
type Sample[V comparable] struct{ Dist Dist }

func (Const[V]) exprNode()     {}
func (VarRef[V]) exprNode()    {}
func (Tuple[V]) exprNode()     {}
func (Component[V]) exprNode() {}
func (And[V]) exprNode()       {}
func (Or[V]) exprNode()        {}
func (Not[V]) exprNode()       {}
func (Implies[V]) exprNode()   {}
func (Opposite[V]) exprNode()  {}
func (Sum[V]) exprNode()       {}
func (Mult[V]) exprNode()      {}
func (Mod[V]) exprNode()       {}
func (Equal[V]) exprNode()     {}
func (Less[V]) exprNode()      {}
func (LessEq[V]) exprNode()    {}
func (Greater[V]) exprNode()   {}
func (GreaterEq[V]) exprNode() {}
func (Append[V]) exprNode()    {}
func (Truncate[V]) exprNode()  {}
func (Len[V]) exprNode()       {}
func (Sample[V]) exprNode()    {}

// Lookup resolves a variable handle to its current value.
type Lookup[V comparable] func(V) (Val, error)
