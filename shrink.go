package routeprobe

// ShrinkResult is the outcome of shrinking one failing draw: the
// smallest tree found (Tree), the value it rebuilds to, and how many
// candidates were tried.
type ShrinkResult struct {
	Tree       *DrawTree
	Value      any
	Attempts   int
	Iterations int
}

// metric is the lexicographic shrink-monotonicity metric from
// drawtree.go's size()/magnitude(): a candidate is only adopted if it
// strictly decreases (size, magnitude) in that priority order.
type metric struct {
	size      int
	magnitude int64
}

func metricOf(t *DrawTree) metric {
	return metric{size: t.size(), magnitude: t.magnitude()}
}

func (m metric) less(other metric) bool {
	if m.size != other.size {
		return m.size < other.size
	}
	return m.magnitude < other.magnitude
}

// Shrinker drives a Generator's Shrink candidates down to a local
// minimum still reproducing a failure. isFailing replays a candidate's
// value through the same check TrialRunner ran (send request, run
// Validators) and reports whether the failure still reproduces.
type Shrinker struct {
	Gen        Generator
	IsFailing  func(value any) bool
	MaxRounds  int
	MaxIterPer int
}

// NewShrinker builds a Shrinker with default bounds: shrinking runs at
// most MaxRounds full passes over the candidate list, each round trying
// at most MaxIterPer candidates.
func NewShrinker(gen Generator, isFailing func(value any) bool) *Shrinker {
	return &Shrinker{Gen: gen, IsFailing: isFailing, MaxRounds: 50, MaxIterPer: 500}
}

// Run shrinks starting from tree/value (already known to fail),
// returning the smallest reproducing tree found. Within each round,
// candidates are tried in the order the generator's Shrink returns
// them: an Optional proposes absence before shrinking its inner value,
// a Seq/Map proposes shorter lengths before shrinking its elements, and
// a OneOf proposes in-place shrinks of its arm before collapsing to its
// first variant. Run's job is only to keep re-trying the generator's
// proposals until none improve the metric.
func (s *Shrinker) Run(tree *DrawTree, value any) ShrinkResult {
	best := tree
	bestValue := value
	bestMetric := metricOf(best)
	attempts := 0
	iterations := 0

	for round := 0; round < s.MaxRounds; round++ {
		improved := false
		candidates := s.Gen.Shrink(best)
		for i, cand := range candidates {
			if i >= s.MaxIterPer {
				break
			}
			attempts++
			m := metricOf(cand)
			if !m.less(bestMetric) {
				continue
			}
			rebuilder, ok := s.Gen.(Rebuilder)
			var v any
			var err error
			if ok {
				v, err = rebuilder.Rebuild(cand)
				if err != nil {
					continue
				}
			} else {
				v = treeToValue(cand)
			}
			iterations++
			if s.IsFailing(v) {
				best = cand
				bestValue = v
				bestMetric = m
				improved = true
				break
			}
		}
		if !improved {
			break
		}
	}

	return ShrinkResult{Tree: best, Value: bestValue, Attempts: attempts, Iterations: iterations}
}

// treeToValue is the fallback value recovery used when a Generator
// doesn't implement Rebuilder: it re-derives a Go value purely from the
// tree's own leaves, sufficient for the built-in primitive/composite
// generators in primitives.go and combinators.go, all of which encode
// their full value in the tree (no hidden RNG-only state).
func treeToValue(t *DrawTree) any {
	switch t.NodeType {
	case NodeLeaf:
		if t.LeafBytes != nil {
			return string(t.LeafBytes)
		}
		if t.IsFloat {
			return t.LeafFloat
		}
		return t.Leaf
	case NodeOptional:
		if !t.Present {
			return nil
		}
		return treeToValue(t.Children[0])
	case NodeSeq:
		out := make([]any, len(t.Children))
		for i, c := range t.Children {
			out[i] = treeToValue(c)
		}
		return out
	case NodeRecord:
		out := make(map[string]any, len(t.Children))
		for i, c := range t.Children {
			name := ""
			if i < len(t.FieldNames) {
				name = t.FieldNames[i]
			}
			out[name] = treeToValue(c)
		}
		return out
	case NodeSum:
		if len(t.Children) == 0 {
			return nil
		}
		return treeToValue(t.Children[0])
	default:
		return nil
	}
}
