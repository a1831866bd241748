package dataset

import (
	"math/rand/v2"
	"slices"
)

// shuffled returns a seeded permutation of items. The same seed and input
// always produce the same order.
func shuffled(items []string, seed uint64) []string {
	out := slices.Clone(items)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// RandomSeed picks a seed for callers that did not ask for one. Report it so
// the run can be reproduced.
func RandomSeed() uint64 {
	return rand.Uint64()
}
