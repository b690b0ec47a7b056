package routeprobe

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// SplitRNG is a deterministic, splittable random source. Every draw and
// every route/trial/sequence gets its own child stream derived from a
// path of integers rooted at the run seed, so that two runs with the
// same seed produce byte-identical draw trees (testable property 3)
// without any stream sharing locks between concurrent route tasks
// (§5's "no locking needed" requirement).
//
// Drawing from one SplitRNG is not safe for concurrent use. Split only
// reads the fixed salt the value was built with, so concurrent Split
// calls on a shared parent are safe and do not disturb its stream.
type SplitRNG struct {
	src  *rand.ChaCha8
	r    *rand.Rand
	salt uint64
}

// NewSplitRNG creates the root RNG for a run from a user-supplied seed.
func NewSplitRNG(seed uint64) *SplitRNG {
	return newFromPath(seed, nil)
}

// Split derives a child stream for the given path segment, e.g. a route
// index, then a trial index, then a sub-draw path. Calling Split with
// the same path on RNGs built from the same seed always yields the same
// child stream; this is the whole of the determinism guarantee.
func (s *SplitRNG) Split(path ...int64) *SplitRNG {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.fingerprint())
	h.Write(buf[:])
	for _, p := range path {
		binary.LittleEndian.PutUint64(buf[:], uint64(p))
		h.Write(buf[:])
	}
	return newFromPath(h.Sum64(), nil)
}

// fingerprint returns the stable 64-bit value identifying this stream,
// fixed at construction and used only as salt for further splits.
func (s *SplitRNG) fingerprint() uint64 {
	return s.salt
}

func newFromPath(seed uint64, path []int64) *SplitRNG {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])
	for _, p := range path {
		binary.LittleEndian.PutUint64(buf[:], uint64(p))
		h.Write(buf[:])
	}
	sum := h.Sum64()
	var seedBytes [32]byte
	binary.LittleEndian.PutUint64(seedBytes[0:8], sum)
	binary.LittleEndian.PutUint64(seedBytes[8:16], sum^0x9E3779B97F4A7C15)
	binary.LittleEndian.PutUint64(seedBytes[16:24], sum*0xBF58476D1CE4E5B9)
	binary.LittleEndian.PutUint64(seedBytes[24:32], sum^0xff51afd7ed558ccd)
	src := rand.NewChaCha8(seedBytes)
	return &SplitRNG{src: src, r: rand.New(src), salt: sum}
}

// IntRange returns a uniform int64 in [lo, hi] inclusive.
func (s *SplitRNG) IntRange(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := uint64(hi-lo) + 1
	return lo + int64(s.r.Uint64N(span))
}

// Float01 returns a uniform float64 in [0, 1).
func (s *SplitRNG) Float01() float64 {
	return s.r.Float64()
}

// Bool returns a uniform boolean.
func (s *SplitRNG) Bool() bool {
	return s.r.IntN(2) == 1
}

// Bytes fills and returns n uniform random bytes.
func (s *SplitRNG) Bytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(s.r.IntN(256))
	}
	return b
}
