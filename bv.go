// Package bv implements the bit-vector valuation core for a stochastic
// local search (SLS) engine: a multiword unsigned-integer container
// (BitVec) and a per-variable feasible-domain tracker (Valuation) that
// combines a fixed-bit mask with a circular interval.
//
// The package has no protocol, file, or network surface. Everything runs
// single-threaded and synchronously; the only external inputs are candidate
// values, interval/fixed-bit facts, and a random source, all supplied by an
// external SLS driver that is out of scope for this package.
package bv

import "fmt"

// Word is the machine word used by BitVec's backing array.
type Word = uint32

// WordBits is the number of bits in one Word.
const WordBits = 32

// debugChecks gates the package's debug assertions. Flipping it to true
// enables contract checks (overflow bits set, bad indices, width
// mismatches); release builds keep word-level arithmetic branch-free.
const debugChecks = false

// assert panics if cond is false. Used only for contract violations: an
// overflow bit set on an input, a bit index out of range, mismatched
// widths, or calling AddRange after fixed bits have been pinned. These are
// programmer errors, never a reachable runtime condition in a correct
// caller.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("bv: "+format, args...))
	}
}

func debugAssert(cond bool, format string, args ...interface{}) {
	if debugChecks {
		assert(cond, format, args...)
	}
}
