package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every controller and every match derives its randomness through here so a
// tournament replays identically under the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent generator for child i of seed. Matches use it
// to hand each controller its own stream.
func Derive(seed int64, i int) *rand.Rand {
	return New(int64(mix(uint64(seed) + uint64(i+1)*goldenRatio64)))
}

// SeedOrNow returns seed unless it is zero, in which case a time-based seed
// is returned.
func SeedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
