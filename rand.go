package bv

import "math/rand"

// Rand is the random source used by Valuation's sampling operations: a
// single-method trait with no global RNG, so the caller injects
// determinism for tests.
type Rand interface {
	NextWord() Word
}

// MathRand adapts the standard library's *rand.Rand to Rand, the
// default PRNG for anything that needs a random source rather than a
// deterministic stub.
type MathRand struct {
	r *rand.Rand
}

// NewMathRand returns a MathRand seeded deterministically.
func NewMathRand(seed int64) *MathRand {
	return &MathRand{r: rand.New(rand.NewSource(seed))}
}

// NextWord returns the next pseudo-random word.
func (m *MathRand) NextWord() Word {
	return Word(m.r.Uint32())
}

// FuncRand adapts a plain function to Rand, for deterministic test stubs
// that don't need a full PRNG (e.g. a fixed sequence of words).
type FuncRand func() Word

// NextWord implements Rand.
func (f FuncRand) NextWord() Word { return f() }
