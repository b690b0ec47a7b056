package routeprobe

import "fmt"

// Generator is the type-erased production of a single TypeRef shape: it
// draws a value and the DrawTree that produced it, and it proposes
// smaller candidate trees for the Shrinker to try replaying.
//
// TypeRef is a runtime tagged union, not a compile-time Go type
// parameter, so TypeRegistry must dispatch on it dynamically: Generator
// is one non-generic interface every built-in and user-registered
// producer implements.
type Generator interface {
	// Draw produces one value and the tree of decisions that produced
	// it. size is a budget hint that combinators thread into child
	// draws to bound sequence lengths and recursion depth.
	Draw(rng *SplitRNG, size int) (any, *DrawTree)

	// Shrink proposes smaller trees derived from tree, most-aggressive
	// first. It does not need to validate that each candidate actually
	// decreases the shrink metric; Shrinker enforces that.
	Shrink(tree *DrawTree) []*DrawTree
}

// Rebuilder is implemented by a Generator that can replay a tree to
// recover the value it encodes, without consuming any RNG. Shrinker
// uses Rebuild when the Generator provides it and otherwise falls back
// to treeToValue. The per-route input generator implements it; the
// built-in primitive and combinator generators do not.
type Rebuilder interface {
	Rebuild(tree *DrawTree) (any, error)
}

// TypedGenerator is a convenience wrapper for call sites that know the
// concrete Go type a Generator produces, wrapping a type-erased dispatch
// path with a generic call-site API. The registry itself never holds a
// TypedGenerator; it holds the plain Generator underneath.
type TypedGenerator[T any] struct {
	Generator
}

// Draw narrows the underlying Generator's result to T. It panics on a
// type mismatch, since a mismatch means a Generator was registered
// under the wrong TypeRef — a programming error, not a runtime
// condition callers should need to handle.
func (g TypedGenerator[T]) Draw(rng *SplitRNG, size int) (T, *DrawTree) {
	v, tree := g.Generator.Draw(rng, size)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("routeprobe: TypedGenerator: generator produced %T, not the requested type", v))
	}
	return typed, tree
}

// funcGenerator adapts plain draw/shrink closures into a Generator.
type funcGenerator struct {
	draw   func(rng *SplitRNG, size int) (any, *DrawTree)
	shrink func(tree *DrawTree) []*DrawTree
}

func (f funcGenerator) Draw(rng *SplitRNG, size int) (any, *DrawTree) { return f.draw(rng, size) }
func (f funcGenerator) Shrink(tree *DrawTree) []*DrawTree {
	if f.shrink == nil {
		return nil
	}
	return f.shrink(tree)
}

// GeneratorFunc builds a Generator from a draw function and an optional
// shrink function (nil means "no shrink candidates", i.e. this
// generator's values are already minimal).
func GeneratorFunc(draw func(rng *SplitRNG, size int) (any, *DrawTree), shrink func(tree *DrawTree) []*DrawTree) Generator {
	return funcGenerator{draw: draw, shrink: shrink}
}
