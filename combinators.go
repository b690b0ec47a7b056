package routeprobe

import (
	"errors"
	"fmt"
)

// maxRefDepth bounds how many times a single Ref name may be unfolded
// along one recursion path before buildGenerator stops expanding it and
// instead degenerates the surrounding Optional/OneOf to a terminal
// case, so recursive schemas (trees, linked lists) terminate instead of
// building an infinite generator.
const maxRefDepth = 4

// errRefDepthExceeded signals that a Ref hit maxRefDepth. KindOptional
// and KindOneOf catch it and degenerate gracefully; a TypeRef with no
// Optional/OneOf anywhere in its recursive cycle has no way to
// terminate, so buildGenerator returns the error, and
// TypeRegistry.Resolve wraps it in an *UnsupportedTypeError.
var errRefDepthExceeded = errors.New("routeprobe: ref depth guard reached")

// maxUnboundedSeq caps Seq/Map draws whose TypeRef declares Max < 0, so
// "unbounded" never means "unbounded RAM", mirroring the Python
// original's implicit Hypothesis list-size caps.
const maxUnboundedSeq = 25

// seqBounds normalizes a TypeRef's (Min,Max) into a concrete range.
func seqBounds(min, max int) (int, int) {
	if max < 0 {
		max = min + maxUnboundedSeq
	}
	if max < min {
		max = min
	}
	return min, max
}

// absentGen is the terminal case a recursive Optional(Ref(...)) schema
// degenerates to once the depth guard trips: it always draws "not
// present" and has nothing left to shrink.
func absentGen() Generator {
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			return nil, &DrawTree{NodeType: NodeOptional, Present: false}
		},
		func(tree *DrawTree) []*DrawTree { return nil },
	)
}

// OptionalGen builds an Optional(inner) generator: a presence coin flip
// weighted toward present, followed by the inner draw when present.
func OptionalGen(inner Generator) Generator {
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			present := rng.Float01() < 0.9
			if !present {
				return nil, &DrawTree{NodeType: NodeOptional, Present: false}
			}
			v, sub := inner.Draw(rng.Split(1), size)
			return v, &DrawTree{NodeType: NodeOptional, Present: true, Children: []*DrawTree{sub}}
		},
		func(tree *DrawTree) []*DrawTree {
			var out []*DrawTree
			if tree.Present {
				out = append(out, &DrawTree{NodeType: NodeOptional, Present: false})
				for _, c := range inner.Shrink(tree.Children[0]) {
					out = append(out, &DrawTree{NodeType: NodeOptional, Present: true, Children: []*DrawTree{c}})
				}
			}
			return out
		},
	)
}

// SeqGen builds a Seq(elem, min, max) generator: a uniform length draw
// followed by that many independent element draws, each on its own
// split substream so element N's bytes never shift when element N-1's
// length changes (testable property 3's reproducibility guarantee).
func SeqGen(elem Generator, min, max int) Generator {
	lo, hi := seqBounds(min, max)
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			n := int(rng.IntRange(int64(lo), int64(hi)))
			vals := make([]any, n)
			children := make([]*DrawTree, n)
			for i := 0; i < n; i++ {
				v, sub := elem.Draw(rng.Split(int64(i)), size-1)
				vals[i] = v
				children[i] = sub
			}
			return vals, &DrawTree{NodeType: NodeSeq, Children: children}
		},
		func(tree *DrawTree) []*DrawTree {
			return shrinkSeqChildren(tree, elem, lo)
		},
	)
}

// shrinkSeqChildren proposes: drop to the minimum length (keeping a
// prefix), drop the last element, truncate to half the excess length,
// then shrink each element in place.
func shrinkSeqChildren(tree *DrawTree, elem Generator, minLen int) []*DrawTree {
	children := tree.Children
	var out []*DrawTree
	if len(children) > minLen {
		out = append(out, &DrawTree{NodeType: tree.NodeType, Children: append([]*DrawTree(nil), children[:minLen]...)})
		out = append(out, &DrawTree{NodeType: tree.NodeType, Children: append([]*DrawTree(nil), children[:len(children)-1]...)})
		half := minLen + (len(children)-minLen)/2
		if half < len(children) {
			out = append(out, &DrawTree{NodeType: tree.NodeType, Children: append([]*DrawTree(nil), children[:half]...)})
		}
	}
	for i, c := range children {
		for _, sc := range elem.Shrink(c) {
			cand := make([]*DrawTree, len(children))
			copy(cand, children)
			cand[i] = sc
			out = append(out, &DrawTree{NodeType: tree.NodeType, Children: cand})
		}
	}
	return out
}

// pairGenerator is an internal Generator producing a (key,value) pair,
// used to compose MapGen out of SeqGen without duplicating the length
// and shrink machinery.
type pairGenerator struct {
	key, val Generator
}

type kvPair struct {
	Key any
	Val any
}

func (p pairGenerator) Draw(rng *SplitRNG, size int) (any, *DrawTree) {
	k, kt := p.key.Draw(rng.Split(0), size)
	v, vt := p.val.Draw(rng.Split(1), size)
	return kvPair{Key: k, Val: v}, &DrawTree{NodeType: NodeRecord, Children: []*DrawTree{kt, vt}, FieldNames: []string{"key", "value"}}
}

func (p pairGenerator) Shrink(tree *DrawTree) []*DrawTree {
	var out []*DrawTree
	for _, c := range p.key.Shrink(tree.Children[0]) {
		out = append(out, &DrawTree{NodeType: NodeRecord, FieldNames: tree.FieldNames, Children: []*DrawTree{c, tree.Children[1]}})
	}
	for _, c := range p.val.Shrink(tree.Children[1]) {
		out = append(out, &DrawTree{NodeType: NodeRecord, FieldNames: tree.FieldNames, Children: []*DrawTree{tree.Children[0], c}})
	}
	return out
}

// MapGen builds a Map(key,value,min,max) generator as a deduplicated
// Seq of key/value pairs. Dedup happens post-draw since RNG determinism
// must not depend on how many duplicate keys were rejected.
func MapGen(key, value Generator, min, max int) Generator {
	lo, hi := seqBounds(min, max)
	seq := SeqGen(pairGenerator{key: key, val: value}, lo, hi)
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			raw, tree := seq.Draw(rng, size)
			pairs := raw.([]any)
			m := make(map[any]any, len(pairs))
			for _, p := range pairs {
				kv := p.(kvPair)
				m[kv.Key] = kv.Val
			}
			return m, tree
		},
		func(tree *DrawTree) []*DrawTree { return seq.Shrink(tree) },
	)
}

// RecordGen builds a Record(fields...) generator: each field drawn on
// its own split substream, assembled into a map[string]any keyed by
// field name. Optional (non-Required) fields are wrapped with
// OptionalGen by the caller before reaching here; RecordGen itself
// treats every field as always-drawn.
func RecordGen(fields []Field, fieldGens []Generator) Generator {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			out := make(map[string]any, len(fields))
			children := make([]*DrawTree, len(fields))
			for i, g := range fieldGens {
				v, sub := g.Draw(rng.Split(int64(i)), size-1)
				out[names[i]] = v
				children[i] = sub
			}
			return out, &DrawTree{NodeType: NodeRecord, Children: children, FieldNames: names}
		},
		func(tree *DrawTree) []*DrawTree {
			var out []*DrawTree
			for i, g := range fieldGens {
				for _, sc := range g.Shrink(tree.Children[i]) {
					cand := make([]*DrawTree, len(tree.Children))
					copy(cand, tree.Children)
					cand[i] = sc
					out = append(out, &DrawTree{NodeType: NodeRecord, FieldNames: names, Children: cand})
				}
			}
			return out
		},
	)
}

// OneOfGen builds a OneOf(variants...) generator: a uniform arm choice
// followed by that arm's draw. Shrink first proposes in-place shrinks
// of the chosen arm; then, for any arm index greater than 0, it proposes
// collapsing to arm 0 (re-drawn fresh, since a different variant's tree
// shape is incomparable).
func OneOfGen(variantGens []Generator) Generator {
	n := len(variantGens)
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			idx := int(rng.IntRange(0, int64(n-1)))
			v, sub := variantGens[idx].Draw(rng.Split(int64(idx)), size-1)
			return v, &DrawTree{NodeType: NodeSum, VariantIndex: idx, Children: []*DrawTree{sub}}
		},
		func(tree *DrawTree) []*DrawTree {
			var out []*DrawTree
			idx := tree.VariantIndex
			for _, sc := range variantGens[idx].Shrink(tree.Children[0]) {
				out = append(out, &DrawTree{NodeType: NodeSum, VariantIndex: idx, Children: []*DrawTree{sc}})
			}
			if idx != 0 {
				zeroVal, zeroTree := variantGens[0].Draw(NewSplitRNG(0), 1)
				_ = zeroVal
				out = append(out, &DrawTree{NodeType: NodeSum, VariantIndex: 0, Children: []*DrawTree{zeroTree}})
			}
			return out
		},
	)
}

// buildGenerator compiles a TypeRef into a Generator by dispatching on
// its Kind and recursing into Elem/Key/Fields/Variants, resolving Ref
// nodes against table. This is the fallback synthesis path the Python
// original calls "strategy_for_type" for dataclasses/Optional/List —
// ported here as TypeRegistry's default resolver for any TypeRef that
// has no explicitly registered override.
//
// seen tracks how many times each Ref name has been unfolded along the
// current recursion path. KindRef escalates seen past maxRefDepth into
// errRefDepthExceeded rather than recursing forever; KindOptional and
// KindOneOf are the only two Kinds with a terminal case to fall back to,
// so they are the only ones that catch it.
func buildGenerator(t TypeRef, table SchemaTable, seen map[string]int) (Generator, error) {
	switch t.Kind {
	case KindPrimitive:
		switch t.Primitive {
		case PStr:
			return StrGen(0, 0), nil
		case PInt:
			return IntGen(0, 0), nil
		case PFloat:
			return FloatGen(0, 0), nil
		case PBool:
			return BoolGen(), nil
		case PBytes:
			return BytesGen(0, 0), nil
		case PUuid:
			return UuidGen(), nil
		case PDateTime:
			return DateTimeGen(), nil
		case PDate:
			return DateGen(), nil
		default:
			return nil, &UnsupportedTypeError{Detail: fmt.Sprintf("unknown primitive kind %d", t.Primitive)}
		}
	case KindOptional:
		inner, err := buildGenerator(*t.Elem, table, seen)
		if errors.Is(err, errRefDepthExceeded) {
			return absentGen(), nil
		}
		if err != nil {
			return nil, err
		}
		return OptionalGen(inner), nil
	case KindSeq:
		inner, err := buildGenerator(*t.Elem, table, seen)
		if err != nil {
			return nil, err
		}
		return SeqGen(inner, t.Min, t.Max), nil
	case KindMap:
		key, err := buildGenerator(*t.Key, table, seen)
		if err != nil {
			return nil, err
		}
		val, err := buildGenerator(*t.Elem, table, seen)
		if err != nil {
			return nil, err
		}
		return MapGen(key, val, t.Min, t.Max), nil
	case KindEnum:
		if len(t.EnumValues) == 0 {
			return nil, &UnsupportedTypeError{Detail: "enum with no values"}
		}
		values := t.EnumValues
		return GeneratorFunc(
			func(rng *SplitRNG, size int) (any, *DrawTree) {
				idx := rng.IntRange(0, int64(len(values)-1))
				return values[idx], leafInt(idx)
			},
			func(tree *DrawTree) []*DrawTree {
				if tree.Leaf == 0 {
					return nil
				}
				return []*DrawTree{leafInt(0)}
			},
		), nil
	case KindRecord:
		gens := make([]Generator, len(t.Fields))
		for i, f := range t.Fields {
			ft := f.Type
			if !f.Required {
				ft = Optional(ft)
			}
			g, err := buildGenerator(ft, table, seen)
			if err != nil {
				return nil, err
			}
			gens[i] = g
		}
		return RecordGen(t.Fields, gens), nil
	case KindOneOf:
		if len(t.Variants) == 0 {
			return nil, &UnsupportedTypeError{Detail: "oneOf with no variants"}
		}
		// Variants that hit the depth guard are dropped rather than
		// failing the whole sum: at maximum depth, the most-default
		// variant is whichever earliest-listed variant still has a
		// terminal case (e.g. an Optional(Ref) arm degenerates to
		// absentGen while a Ref(self) arm drops out entirely).
		var gens []Generator
		for _, v := range t.Variants {
			g, err := buildGenerator(v, table, seen)
			if errors.Is(err, errRefDepthExceeded) {
				continue
			}
			if err != nil {
				return nil, err
			}
			gens = append(gens, g)
		}
		if len(gens) == 0 {
			return nil, errRefDepthExceeded
		}
		return OneOfGen(gens), nil
	case KindRef:
		if seen[t.RefName] >= maxRefDepth {
			return nil, errRefDepthExceeded
		}
		resolved, ok := table.Resolve(t.RefName)
		if !ok {
			return nil, &UnsupportedTypeError{Detail: fmt.Sprintf("unresolved schema reference %q", t.RefName)}
		}
		nextSeen := make(map[string]int, len(seen)+1)
		for k, v := range seen {
			nextSeen[k] = v
		}
		nextSeen[t.RefName]++
		return buildGenerator(resolved, table, nextSeen)
	default:
		return nil, &UnsupportedTypeError{Detail: fmt.Sprintf("unknown TypeRef kind %d", t.Kind)}
	}
}
