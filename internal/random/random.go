package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness used by team formation and bracket pairing.
// *rand.Rand from math/rand/v2 satisfies it directly.
type Source interface {
	Shuffle(n int, swap func(i, j int))
	IntN(n int) int
}

// NewSeeded returns a deterministic source. Two sources built from the same
// seed produce the same sequence.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Locked guards a Source with a mutex so a single instance can be shared
// between request handlers.
type Locked struct {
	mu  sync.Mutex
	src Source
}

// NewLocked wraps src. A nil src gets a randomly seeded PCG.
func NewLocked(src Source) *Locked {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Locked{src: src}
}

func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.src.Shuffle(n, swap)
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Strings returns a shuffled copy of s; s is left untouched.
func Strings(src Source, s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	src.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
