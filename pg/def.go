package pg

import "github.com/pouyapd/scanmc/value"

type effectKind int

const (
	effectNone effectKind = iota
	effectAssign
	effectSend
	effectReceive
	effectProbe
)

// Assignment is `Var := Expr`, applied in declaration order when an action
// fires, after which clock resets apply.
type Assignment struct {
	Var  Var
	Expr value.Expr[Var]
}

// ActionDef holds the single effect kind a non-epsilon action carries:
// none, local assignments (+ clock resets), a send expression, a receive
// target variable, or a queue-probe marker. A communication action
// (Send/Receive/probe) carries no assignment effects — enforced at build
// time.
type ActionDef struct {
	kind       effectKind
	assigns    []Assignment
	resets     []Clock
	sendExpr   value.Expr[Var]
	receiveVar Var
}

// Transition is an edge in the program graph: firing Action from Pre
// requires Guard (nil means true) and every Constraint to hold against the
// current clock valuation, and leads to Post.
type Transition struct {
	Pre         Location
	Action      Action
	Post        Location
	Guard       value.Expr[Var]
	Constraints []TimeConstraint
}

// Definition is the immutable, built program graph: shared read-only
// across every Instance and across goroutines.
type Definition struct {
	varTypes    []value.Type
	varInit     []value.Expr[Var]
	numClocks   int
	actions     []ActionDef
	invariants  [][]TimeConstraint
	transitions [][]Transition // indexed by Location; sorted by (Action, Post)
	initial     Location
}

func (d *Definition) NumLocations() int { return len(d.invariants) }
func (d *Definition) NumVars() int      { return len(d.varTypes) }
func (d *Definition) NumClocks() int    { return d.numClocks }
func (d *Definition) Initial() Location { return d.initial }

func (d *Definition) VarType(v Var) value.Type { return d.varTypes[v.index()] }
