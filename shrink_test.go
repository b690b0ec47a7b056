package routeprobe

import "testing"

func TestShrinkerFindsMinimalFailingInt(t *testing.T) {
	gen := IntGen(-1000, 1000)
	isFailing := func(v any) bool {
		n, ok := v.(int64)
		return ok && n > 100
	}
	shrinker := NewShrinker(gen, isFailing)

	tree := leafInt(777)
	result := shrinker.Run(tree, int64(777))

	got := result.Value.(int64)
	if got <= 100 {
		t.Fatalf("expected shrunk value to still fail (>100), got %d", got)
	}
	if got >= 777 {
		t.Fatalf("expected shrinking to make progress from 777, got %d", got)
	}
}

func TestShrinkerNeverAdoptsNonImprovingCandidate(t *testing.T) {
	gen := BoolGen()
	isFailing := func(v any) bool { return true } // always fails; nothing to shrink toward
	shrinker := NewShrinker(gen, isFailing)

	tree := leafInt(0)
	result := shrinker.Run(tree, false)

	if result.Tree.Leaf != 0 {
		t.Fatalf("expected already-minimal tree to stay minimal")
	}
}

func TestMetricLessIsLexicographic(t *testing.T) {
	small := metric{size: 1, magnitude: 1000}
	large := metric{size: 2, magnitude: 1}
	if !small.less(large) {
		t.Fatalf("expected size to dominate magnitude in the ordering")
	}
}

func TestTreeToValueRoundTripsComposite(t *testing.T) {
	tree := &DrawTree{
		NodeType:   NodeRecord,
		FieldNames: []string{"a", "b"},
		Children:   []*DrawTree{leafInt(1), leafInt(2)},
	}
	v := treeToValue(tree).(map[string]any)
	if v["a"] != int64(1) || v["b"] != int64(2) {
		t.Fatalf("unexpected round-trip result: %v", v)
	}
}
