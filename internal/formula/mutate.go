package formula

import (
	"math"

	"github.com/kolibri/core/internal/rng"
)

// crossover builds a child gene from a's first half and b's second half
// (midpoint crossover), grounded in the pack's mutation-engine reference's
// deterministic per-offspring construction.
func crossover(a, b *Formula, r *rng.RNG) Formula {
	var child Gene
	mid := GeneLength / 2
	copy(child[:mid], a.Gene[:mid])
	copy(child[mid:], b.Gene[mid:])
	_ = r // reserved: midpoint crossover is deterministic given parents, no randomness needed here
	return Formula{Gene: child}
}

// mutate applies round(temperature*2) point mutations, clamped to
// [1, GeneLength], each replacing one random digit position with a fresh
// random digit in [0,9].
func mutate(f *Formula, temperature float64, r *rng.RNG) {
	count := int(math.Round(temperature * 2))
	if count < 1 {
		count = 1
	}
	if count > GeneLength {
		count = GeneLength
	}
	for i := 0; i < count; i++ {
		pos := r.Intn(GeneLength)
		f.Gene[pos] = byte(r.Intn(10))
	}
}
