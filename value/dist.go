package value

// Dist names a primitive sampling distribution usable by a Sample leaf.
// [EXPANDED] spec.md's expression grammar names no sampling node even
// though component A's PRNG-parameterised sampling is called out directly;
// Dist/Sample close that gap without touching any node spec.md does name.
type Dist interface {
	distNode()
	resultType() Type
}

// UniformInt samples an Int uniformly from [Lo, Hi] inclusive.
type UniformInt struct {
	Lo, Hi int32
}

func (UniformInt) distNode()        {}
func (UniformInt) resultType() Type { return Int() }

// Bernoulli samples a Bool, true with probability P.
type Bernoulli struct {
	P float64
}

func (Bernoulli) distNode()        {}
func (Bernoulli) resultType() Type { return Bool() }
