package formula

import "hash/fnv"

const int32Max = 1<<31 - 1

// fnv1aMasked hashes s with FNV-1a and masks the result to a 31-bit
// non-negative value (& 0x7FFFFFFF), matching the association hash
// invariant in §3.
func fnv1aMasked(s string) int32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int32(h.Sum32() & uint32(int32Max))
}

// fnv1aGene hashes the raw gene digit bytes for the phase calculation.
func fnv1aGene(g Gene) uint32 {
	h := fnv.New32a()
	h.Write(g[:])
	return h.Sum32()
}
