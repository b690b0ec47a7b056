package routeprobe

import (
	"time"

	"github.com/google/uuid"
)

// Default ranges for built-in primitives.
const (
	defaultStrMin   = 1
	defaultStrMax   = 100
	defaultIntMin   = -1000
	defaultIntMax   = 1000
	defaultBytesMin = 1
	defaultBytesMax = 100
)

// asciiPrintable is the character set Str draws from; shrinking favors
// the lexicographically-least character in this set, shrinking toward
// the empty string first and then toward the least character.
const asciiPrintable = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// StrGen returns the built-in Str generator, length uniform in
// [min,max], each character uniform over asciiPrintable.
func StrGen(min, max int) Generator {
	if max <= 0 {
		min, max = defaultStrMin, defaultStrMax
	}
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			n := int(rng.IntRange(int64(min), int64(max)))
			b := make([]byte, n)
			for i := range b {
				b[i] = asciiPrintable[rng.IntRange(0, int64(len(asciiPrintable)-1))]
			}
			return string(b), leafBytes(b)
		},
		func(tree *DrawTree) []*DrawTree {
			return shrinkBytesLeaf(tree, min, asciiPrintable[0])
		},
	)
}

// shrinkBytesLeaf proposes: the empty/min-length string, then each
// prefix-truncation by half, then each byte lowered one step toward the
// alphabet's first character (floor) without changing length.
func shrinkBytesLeaf(tree *DrawTree, minLen int, floor byte) []*DrawTree {
	b := tree.LeafBytes
	var out []*DrawTree
	if len(b) > minLen {
		out = append(out, leafBytes(append([]byte(nil), b[:minLen]...)))
		half := minLen + (len(b)-minLen)/2
		if half < len(b) {
			out = append(out, leafBytes(append([]byte(nil), b[:half]...)))
		}
	}
	for i, c := range b {
		if c > floor {
			cand := append([]byte(nil), b...)
			cand[i] = c - 1
			out = append(out, leafBytes(cand))
		}
	}
	return out
}

// BytesGen returns the built-in Bytes generator: uniform length,
// uniform byte values, shrinking toward empty then toward zero bytes.
func BytesGen(min, max int) Generator {
	if max <= 0 {
		min, max = defaultBytesMin, defaultBytesMax
	}
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			n := int(rng.IntRange(int64(min), int64(max)))
			b := rng.Bytes(n)
			return b, leafBytes(b)
		},
		func(tree *DrawTree) []*DrawTree {
			return shrinkBytesLeaf(tree, min, 0)
		},
	)
}

// IntGen returns the built-in Int generator, uniform in [min,max],
// shrinking toward zero (or the bound closest to zero, if zero is out
// of range).
func IntGen(min, max int64) Generator {
	if max == 0 && min == 0 {
		min, max = defaultIntMin, defaultIntMax
	}
	target := int64(0)
	if target < min {
		target = min
	}
	if target > max {
		target = max
	}
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			v := rng.IntRange(min, max)
			return v, leafInt(v)
		},
		func(tree *DrawTree) []*DrawTree {
			v := tree.Leaf
			if v == target {
				return nil
			}
			var out []*DrawTree
			mid := v - (v-target)/2
			if mid != v {
				out = append(out, leafInt(mid))
			}
			out = append(out, leafInt(target))
			step := v - sign(v-target)
			if step != v && step != target {
				out = append(out, leafInt(step))
			}
			return out
		},
	)
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// FloatGen returns the built-in Float generator, finite-only, uniform
// in [min,max], shrinking toward 0.0.
func FloatGen(min, max float64) Generator {
	if min == 0 && max == 0 {
		min, max = -1e6, 1e6
	}
	target := 0.0
	if target < min {
		target = min
	}
	if target > max {
		target = max
	}
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			v := min + rng.Float01()*(max-min)
			return v, leafFloat(v)
		},
		func(tree *DrawTree) []*DrawTree {
			v := tree.LeafFloat
			if v == target {
				return nil
			}
			mid := v - (v-target)/2
			return []*DrawTree{leafFloat(mid), leafFloat(target)}
		},
	)
}

// BoolGen returns the built-in Bool generator. Bool has exactly two
// values, so shrinking offers the single candidate false whenever the
// draw was true, and nothing otherwise — there is no smaller value to
// shrink false toward.
func BoolGen() Generator {
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			v := rng.Bool()
			n := int64(0)
			if v {
				n = 1
			}
			return v, leafInt(n)
		},
		func(tree *DrawTree) []*DrawTree {
			if tree.Leaf == 0 {
				return nil
			}
			return []*DrawTree{leafInt(0)}
		},
	)
}

// UuidGen returns the built-in Uuid generator, producing RFC 4122
// version-4 UUIDs via google/uuid, shrinking toward the all-zero UUID.
func UuidGen() Generator {
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			var b [16]byte
			copy(b[:], rng.Bytes(16))
			b[6] = (b[6] & 0x0f) | 0x40
			b[8] = (b[8] & 0x3f) | 0x80
			id, _ := uuid.FromBytes(b[:])
			return id, leafBytes(b[:])
		},
		func(tree *DrawTree) []*DrawTree {
			allZero := true
			for _, c := range tree.LeafBytes {
				if c != 0 {
					allZero = false
					break
				}
			}
			if allZero {
				return nil
			}
			return []*DrawTree{leafBytes(make([]byte, len(tree.LeafBytes)))}
		},
	)
}

const dateTimeEpoch = int64(0) // Unix epoch, shrink target for DateTime/Date

// DateTimeGen returns the built-in DateTime generator, drawing a Unix
// timestamp uniformly over a generous window and shrinking toward the
// Unix epoch.
func DateTimeGen() Generator {
	const windowSeconds = int64(60 * 60 * 24 * 365 * 80) // +/- ~80 years
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			sec := rng.IntRange(-windowSeconds, windowSeconds)
			return time.Unix(sec, 0).UTC(), leafInt(sec)
		},
		func(tree *DrawTree) []*DrawTree {
			return intShrinkTowards(tree, dateTimeEpoch)
		},
	)
}

// DateGen returns the built-in Date generator, the same distribution as
// DateTime truncated to whole days, shrinking toward the Unix epoch
// date.
func DateGen() Generator {
	const windowDays = int64(365 * 80)
	return GeneratorFunc(
		func(rng *SplitRNG, size int) (any, *DrawTree) {
			days := rng.IntRange(-windowDays, windowDays)
			return time.Unix(days*86400, 0).UTC(), leafInt(days)
		},
		func(tree *DrawTree) []*DrawTree {
			return intShrinkTowards(tree, dateTimeEpoch)
		},
	)
}

func intShrinkTowards(tree *DrawTree, target int64) []*DrawTree {
	v := tree.Leaf
	if v == target {
		return nil
	}
	mid := v - (v-target)/2
	out := []*DrawTree{leafInt(target)}
	if mid != v && mid != target {
		out = append([]*DrawTree{leafInt(mid)}, out...)
	}
	return out
}
