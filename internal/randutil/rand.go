// Package randutil centralises how random sources are built so that every
// shuffle and bot decision can be replayed from a single seed.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns a fresh seed drawn from the operating system's entropy source.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("randutil: entropy source failed: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// NewFromEntropy returns a *rand.Rand seeded from the operating system and the
// seed that was used, so callers can log it for replay.
func NewFromEntropy() (*rand.Rand, int64) {
	seed := Seed()
	return New(seed), seed
}

// Derive returns an independent generator for stream n of a parent seed. The
// simulator uses it to give each parallel game its own reproducible source.
func Derive(seed int64, n int) *rand.Rand {
	return New(int64(mix(uint64(seed) + uint64(n)*goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
