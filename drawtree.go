package routeprobe

// NodeKind identifies what a DrawTree node represents.
type NodeKind int

const (
	// NodeLeaf is a primitive decision: an integer magnitude, a choice
	// index, or a length. Leaves carry no children.
	NodeLeaf NodeKind = iota
	// NodeOptional is the presence/absence decision for Optional(T).
	// Children: zero (None) or one (Some wrapping the inner draw).
	NodeOptional
	// NodeSeq is a Seq(T) or Map(K,V) draw. Children are element draws
	// in order.
	NodeSeq
	// NodeRecord is a Record draw. Children are field draws in
	// declaration order; FieldNames gives their names.
	NodeRecord
	// NodeSum is a OneOf draw. VariantIndex selects which single child
	// was taken.
	NodeSum
)

// DrawTree is the reified trace of every decision a generator made while
// producing one value. It is the unit the Shrinker operates on: shrinking
// never touches values directly, only trees, which are then replayed
// through the generator that produced them.
//
// A DrawTree is a plain, restartable data structure — no generator or RNG
// state is embedded in it, so trees can be stored, compared, and mutated
// freely.
type DrawTree struct {
	Kind Kind

	// Leaf is populated when NodeType == NodeLeaf: the primitive decision's
	// value, in the generator's own units (e.g. an int64 magnitude, a
	// byte for a character choice, a length).
	Leaf int64

	// LeafFloat backs Float draws, which need more range than Leaf's
	// integer encoding.
	LeafFloat float64
	IsFloat   bool

	// LeafBytes backs Str/Bytes draws directly, since their "shrink
	// toward empty/least" moves operate on the raw bytes rather than a
	// single magnitude.
	LeafBytes []byte

	NodeType NodeKind

	// Children holds sub-draws for composite nodes (NodeOptional,
	// NodeSeq, NodeRecord, NodeSum).
	Children []*DrawTree

	// FieldNames names Children for NodeRecord, in declaration order.
	FieldNames []string

	// VariantIndex selects the chosen arm for NodeSum.
	VariantIndex int

	// Present is false for an Optional draw that chose None. When false,
	// Children is empty.
	Present bool
}

// Kind is an alias of NodeKind. The built-in generators leave
// DrawTree.Kind unset and tag nodes through NodeType.
type Kind = NodeKind

func leafInt(v int64) *DrawTree {
	return &DrawTree{NodeType: NodeLeaf, Leaf: v}
}

func leafFloat(v float64) *DrawTree {
	return &DrawTree{NodeType: NodeLeaf, LeafFloat: v, IsFloat: true}
}

func leafBytes(b []byte) *DrawTree {
	return &DrawTree{NodeType: NodeLeaf, LeafBytes: b}
}

// size returns a lexicographic-metric-friendly node count, used by the
// shrinker to assert strict decrease (testable property 4).
func (t *DrawTree) size() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.size()
	}
	return n
}

// magnitude sums the absolute primitive magnitudes under t, the
// secondary term of the shrink-monotonicity metric.
func (t *DrawTree) magnitude() int64 {
	if t == nil {
		return 0
	}
	var m int64
	if t.NodeType == NodeLeaf {
		if t.IsFloat {
			f := t.LeafFloat
			if f < 0 {
				f = -f
			}
			m += int64(f)
		} else {
			v := t.Leaf
			if v < 0 {
				v = -v
			}
			m += v
		}
		m += int64(len(t.LeafBytes))
		for _, c := range t.LeafBytes {
			m += int64(c)
		}
	}
	for _, c := range t.Children {
		m += c.magnitude()
	}
	return m
}

// clone makes a deep copy so shrink candidates can be mutated without
// aliasing the tree they were derived from.
func (t *DrawTree) clone() *DrawTree {
	if t == nil {
		return nil
	}
	c := *t
	if t.LeafBytes != nil {
		c.LeafBytes = append([]byte(nil), t.LeafBytes...)
	}
	if t.FieldNames != nil {
		c.FieldNames = append([]string(nil), t.FieldNames...)
	}
	c.Children = make([]*DrawTree, len(t.Children))
	for i, ch := range t.Children {
		c.Children[i] = ch.clone()
	}
	return &c
}
