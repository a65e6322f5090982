package bv

import "math/big"

// Valuation tracks the feasible domain of a single bit-vector variable:
// an assignment of concrete bits, a per-bit fixed/free mask, and a
// circular interval [lo, hi) over Z/2^bw. A value v is feasible iff it
// agrees with bits on every fixed bit and lies in [lo, hi) (see InRange).
//
// Valuation exclusively owns its four BitVecs (lo, hi, bits, fixed; no
// back-pointers, no dynamic dispatch); it is mutated exclusively through the operations below by a
// single logical thread of execution.
type Valuation struct {
	bw    uint
	nw    uint
	mask  Word
	lo    *BitVec
	hi    *BitVec
	bits  *BitVec
	fixed *BitVec
}

// NewValuation returns a fresh Valuation: lo == hi == 0 (full domain),
// fixed has only the top-word overflow bits pinned, bits is zero.
func NewValuation(bw uint) *Valuation {
	v := &Valuation{}
	v.SetWidth(bw)
	return v
}

// SetWidth reassigns v to bw, resetting it to the fresh state.
func (v *Valuation) SetWidth(bw uint) {
	v.bw = bw
	v.nw = (bw + WordBits - 1) / WordBits
	if m := bw % WordBits; m == 0 {
		v.mask = ^Word(0)
	} else {
		v.mask = (Word(1) << m) - 1
	}
	v.lo = NewBitVec(bw)
	v.hi = NewBitVec(bw)
	v.bits = NewBitVec(bw)
	v.fixed = NewBitVec(bw)
	v.fixed.w[v.nw-1] = ^v.mask
}

// BitWidth returns bw.
func (v *Valuation) BitWidth() uint { return v.bw }

// Get copies the committed assignment into dst.
func (v *Valuation) Get(dst *BitVec) { dst.CopyFrom(v.bits) }

// BitsSnapshot returns a fresh copy of the committed assignment.
func (v *Valuation) BitsSnapshot() *BitVec {
	out := NewBitVec(v.bw)
	v.Get(out)
	return out
}

// Lo, Hi, Fixed return defensive copies of the corresponding internal
// BitVec, for inspection by callers (tests, a driver, diagnostics).
func (v *Valuation) Lo() *BitVec {
	out := NewBitVec(v.bw)
	out.CopyFrom(v.lo)
	return out
}

func (v *Valuation) Hi() *BitVec {
	out := NewBitVec(v.bw)
	out.CopyFrom(v.hi)
	return out
}

func (v *Valuation) Fixed() *BitVec {
	out := NewBitVec(v.bw)
	out.CopyFrom(v.fixed)
	return out
}

// InRange reports whether bits lies in [lo, hi) modulo 2^bw. bits must
// have overflow bits cleared.
func (v *Valuation) InRange(bits *BitVec) bool {
	debugAssert(!bits.HasOverflow(), "InRange: bits has overflow set")
	c := Compare(v.lo, v.hi)
	if c == 0 {
		return true // full domain
	}
	if c < 0 {
		return Compare(v.lo, bits) <= 0 && Compare(bits, v.hi) < 0
	}
	return Compare(v.lo, bits) <= 0 || Compare(bits, v.hi) < 0
}

// CanSet reports whether newBits agrees with the committed assignment on
// every fixed bit and lies in range.
func (v *Valuation) CanSet(newBits *BitVec) bool {
	debugAssert(!newBits.HasOverflow(), "CanSet: newBits has overflow set")
	for i := uint(0); i < v.nw; i++ {
		if (newBits.w[i]^v.bits.w[i])&v.fixed.w[i] != 0 {
			return false
		}
	}
	return v.InRange(newBits)
}

func (v *Valuation) trySet(t *BitVec) bool {
	if !v.CanSet(t) {
		return false
	}
	v.bits.CopyFrom(t)
	return true
}

// MinFeasible writes to out the smallest value consistent with the fixed
// mask when lo >= hi (an over-approximation in the wrap case, kept
// deliberately loose rather than exact), or lo itself when lo < hi.
func (v *Valuation) MinFeasible(out *BitVec) {
	if Compare(v.lo, v.hi) < 0 {
		out.CopyFrom(v.lo)
		return
	}
	for i := uint(0); i < v.nw; i++ {
		out.w[i] = v.fixed.w[i] & v.bits.w[i]
	}
}

// MaxFeasible writes to out the largest value consistent with the fixed
// mask when lo >= hi, or hi-1 when lo < hi.
func (v *Valuation) MaxFeasible(out *BitVec) {
	if Compare(v.lo, v.hi) < 0 {
		out.CopyFrom(v.hi)
		Sub1(out)
		return
	}
	for i := uint(0); i < v.nw; i++ {
		out.w[i] = ^v.fixed.w[i] | v.bits.w[i]
	}
}

// GetAtMost writes to dst the largest feasible value <= src, agreeing
// with fixed bits first (Phase A) then rounded into the interval
// (Phase B). Returns false iff no feasible value <= src exists. src and
// dst must not alias.
func (v *Valuation) GetAtMost(src, dst *BitVec) bool {
	debugAssert(!src.HasOverflow(), "GetAtMost: src has overflow set")
	for i := uint(0); i < v.nw; i++ {
		dst.w[i] = src.w[i] & (^v.fixed.w[i] | v.bits.w[i])
	}
	for i := v.nw; i > 0; {
		i--
		if diff := ^dst.w[i] & src.w[i]; diff != 0 {
			idx := Log2(diff)
			m := (Word(1) << idx) - 1
			dst.w[i] = (^v.fixed.w[i] & m) | dst.w[i]
			for j := i; j > 0; {
				j--
				dst.w[j] = ^v.fixed.w[j] | v.bits.w[j]
			}
			break
		}
	}
	dst.ClearOverflow()
	return v.RoundDown(dst)
}

// GetAtLeast writes to dst the smallest feasible value >= src. Dual of
// GetAtMost. Returns false iff no feasible value >= src exists.
func (v *Valuation) GetAtLeast(src, dst *BitVec) bool {
	debugAssert(!src.HasOverflow(), "GetAtLeast: src has overflow set")
	for i := uint(0); i < v.nw; i++ {
		dst.w[i] = (^v.fixed.w[i] & src.w[i]) | (v.fixed.w[i] & v.bits.w[i])
	}
	for i := v.nw; i > 0; {
		i--
		if diff := dst.w[i] &^ src.w[i]; diff != 0 {
			idx := Log2(diff)
			m := Word(1) << idx
			dst.w[i] = dst.w[i] & (v.fixed.w[i] | m)
			for j := i; j > 0; {
				j--
				dst.w[j] = dst.w[j] & v.fixed.w[j]
			}
			break
		}
	}
	dst.ClearOverflow()
	return v.GetAtLeastRound(dst)
}

// GetAtLeastRound is RoundUp, named to mirror GetAtLeast's call site in
// the original source; it's a plain alias.
func (v *Valuation) GetAtLeastRound(dst *BitVec) bool { return v.RoundUp(dst) }

// RoundUp adjusts dst upward, if needed, to lie in [lo, hi). Returns
// false iff no in-range value >= dst exists.
func (v *Valuation) RoundUp(dst *BitVec) bool {
	if Compare(v.lo, v.hi) < 0 {
		if Compare(v.hi, dst) <= 0 {
			return false
		}
		if Compare(v.lo, dst) > 0 {
			dst.CopyFrom(v.lo)
		}
	} else if Compare(v.hi, dst) <= 0 && Compare(v.lo, dst) > 0 {
		dst.CopyFrom(v.lo)
	}
	return true
}

// RoundDown adjusts dst downward, if needed, to lie in [lo, hi). Returns
// false iff no in-range value <= dst exists.
func (v *Valuation) RoundDown(dst *BitVec) bool {
	if Compare(v.lo, v.hi) < 0 {
		if Compare(v.lo, dst) > 0 {
			return false
		}
		if Compare(v.hi, dst) <= 0 {
			dst.CopyFrom(v.hi)
			Sub1(dst)
		}
	} else if Compare(v.hi, dst) <= 0 && Compare(v.lo, dst) > 0 {
		dst.CopyFrom(v.hi)
		Sub1(dst)
	}
	return true
}

// RoundDownPred lowers dst, clearing free bits from the most to least
// significant, until pred(dst) holds or bits are exhausted. Returns
// whether pred was satisfied.
func (v *Valuation) RoundDownPred(dst *BitVec, pred func(*BitVec) bool) bool {
	if pred(dst) {
		return true
	}
	for i := v.bw; i > 0; {
		i--
		if v.fixed.GetBit(i) || !dst.GetBit(i) {
			continue
		}
		dst.SetBit(i, false)
		if pred(dst) {
			return true
		}
	}
	return false
}

// RoundUpPred raises dst, setting free bits from the least to most
// significant, until pred(dst) holds or bits are exhausted. Returns
// whether pred was satisfied.
func (v *Valuation) RoundUpPred(dst *BitVec, pred func(*BitVec) bool) bool {
	if pred(dst) {
		return true
	}
	for i := uint(0); i < v.bw; i++ {
		if v.fixed.GetBit(i) || dst.GetBit(i) {
			continue
		}
		dst.SetBit(i, true)
		if pred(dst) {
			return true
		}
	}
	return false
}

// Msb returns the position of the highest set bit of src, or bw if src
// is zero.
func (v *Valuation) Msb(src *BitVec) uint {
	for i := v.nw; i > 0; {
		i--
		if src.w[i] != 0 {
			return i*WordBits + Log2(src.w[i])
		}
	}
	return v.bw
}

// IsPowerOf2 reports whether src has exactly one set bit.
func (v *Valuation) IsPowerOf2(src *BitVec) bool {
	c := uint(0)
	for i := uint(0); i < v.nw; i++ {
		c += PopCount(src.w[i])
	}
	return c == 1
}

// ToNat reduces bits to a small nonnegative integer, saturating at maxN
// if the value exceeds it. maxN must be less than the max uint / 2.
func (v *Valuation) ToNat(maxN uint) uint {
	p := uint(1)
	value := uint(0)
	for i := uint(0); i < v.bw; i++ {
		if p >= maxN {
			for j := i; j < v.bw; j++ {
				if v.bits.GetBit(j) {
					return maxN
				}
			}
			return min(value, maxN)
		}
		if v.bits.GetBit(i) {
			value += p
		}
		p <<= 1
	}
	return value
}

// ShiftRight writes to out the committed assignment shifted right by
// shift positions (logical shift, zero-filled). shift must be < bw.
func (v *Valuation) ShiftRight(out *BitVec, shift uint) {
	debugAssert(shift < v.bw, "ShiftRight: shift %d out of range for width %d", shift, v.bw)
	for i := uint(0); i < v.bw; i++ {
		if i+shift < v.bw {
			out.SetBit(i, v.bits.GetBit(i+shift))
		} else {
			out.SetBit(i, false)
		}
	}
}

// SetValue writes the low bw bits of n into bits and clears overflow.
func (v *Valuation) SetValue(bits *BitVec, n *big.Int) {
	for i := uint(0); i < v.bw; i++ {
		bits.SetBit(i, n.Bit(int(i)) == 1)
	}
	bits.ClearOverflow()
}

// GetValue reconstructs the unsigned integer held by bits as a *big.Int.
func (v *Valuation) GetValue(bits *BitVec) *big.Int {
	r := new(big.Int)
	p := big.NewInt(1)
	shift := new(big.Int).Lsh(big.NewInt(1), WordBits)
	for i := uint(0); i < v.nw; i++ {
		term := new(big.Int).Mul(p, new(big.Int).SetUint64(uint64(bits.w[i])))
		r.Add(r, term)
		p.Mul(p, shift)
	}
	return r
}

// SetSub computes out := a - b modulo 2^bw.
func (v *Valuation) SetSub(out, a, b *BitVec) { Sub(out, a, b) }

// SetAdd computes out := a + b modulo 2^bw, reporting overflow.
func (v *Valuation) SetAdd(out, a, b *BitVec) bool { return Add(out, a, b) }

// SetMul computes out := a * b modulo 2^bw, optionally reporting
// overflow.
func (v *Valuation) SetMul(out, a, b *BitVec, checkOverflow bool) bool {
	return Mul(out, a, b, checkOverflow)
}

// AddRange intersects the current feasible interval [lo, hi) with a new
// fact [l, h), narrowing lo/hi in place. fixed must be entirely free —
// the driver adds all range facts before pinning any bit.
//
// [l, h) == full range (l == h) imposes no constraint. The resulting
// interval is never widened, only tightened, and in the wrap case the
// tightening is deliberately sound-but-incomplete: it narrows an
// endpoint only when doing so is unambiguous, never discarding a
// feasible value. If bits is no longer in range afterward, it is reset
// to lo.
func (v *Valuation) AddRange(l, h *BitVec) {
	debugAssert(v.fixedBitsEmpty(), "AddRange: fixed bits must be empty before adding ranges")

	if !Equal(l, h) {
		if Equal(v.lo, v.hi) {
			v.lo.CopyFrom(l)
			v.hi.CopyFrom(h)
		} else {
			oldLo := NewBitVec(v.bw)
			oldHi := NewBitVec(v.bw)
			oldLo.CopyFrom(v.lo)
			oldHi.CopyFrom(v.hi)

			if Less(oldLo, oldHi) {
				// linear current interval
				if Less(oldLo, l) && Less(l, oldHi) {
					v.lo.CopyFrom(l)
				}
				// Intended clause: oldLo < h && h < oldHi. Shipped (and
				// preserved here) as oldHi < h && h < oldHi, which can
				// never hold — hi is never tightened on this path. Flagged,
				// not silently fixed: the driver compensates via repair.
				if Less(oldHi, h) && Less(h, oldHi) {
					v.hi.CopyFrom(h)
				}
			} else {
				// wrap current interval: oldHi < oldLo (always true here,
				// carried as an explicit conjunct to mirror the source's
				// independent if-statements rather than collapsing them
				// into one branch-relative expression).
				if Less(oldHi, oldLo) && (Less(l, oldHi) || Less(oldLo, l)) {
					v.lo.CopyFrom(l)
				}
				// hi-tightening: the same (non-buggy) linear-style check
				// used for the current-interval-is-linear case above, ORed
				// with the wrap-specific check — both read against the
				// pre-update oldLo/oldHi snapshot, not the l-tightening
				// above's possibly-just-updated lo.
				if (Less(oldLo, h) && Less(h, oldHi)) || (Less(oldHi, oldLo) && (Less(h, oldHi) || Less(oldLo, h))) {
					v.hi.CopyFrom(h)
				}
			}
		}
	}

	if !v.InRange(v.bits) {
		v.bits.CopyFrom(v.lo)
	}
}

// fixedBitsEmpty reports whether no semantic bit (below bw) is pinned.
func (v *Valuation) fixedBitsEmpty() bool {
	for i := uint(0); i < v.nw; i++ {
		m := ^Word(0)
		if i == v.nw-1 {
			m = v.mask
		}
		if v.fixed.w[i]&m != 0 {
			return false
		}
	}
	return true
}

// pinBit fixes bit i to val, unless it's already fixed.
func (v *Valuation) pinBit(i uint, val bool) {
	if v.fixed.GetBit(i) {
		return
	}
	v.fixed.SetBit(i, true)
	v.bits.SetBit(i, val)
}

// tightenBound walks fixed bit positions of target top-down and, at the
// first disagreement with bits, snaps target to the fixed-consistent
// bound implied by that disagreement: raised to include bits's prefix
// if target was too low there, or reset entirely to the fixed/bits
// floor if target had already drifted above what fixed permits. Used
// for lo, which wants to sit as low as the fixed mask allows.
func tightenBound(fixed, bits, target *BitVec, bw uint) {
	for i := bw; i > 0; {
		i--
		if !fixed.GetBit(i) {
			continue
		}
		bi, ti := bits.GetBit(i), target.GetBit(i)
		if bi == ti {
			continue
		}
		if bi && !ti {
			target.SetBit(i, true)
			for j := uint(0); j < i; j++ {
				target.SetBit(j, fixed.GetBit(j) && bits.GetBit(j))
			}
		} else {
			for j := uint(0); j < bw; j++ {
				target.SetBit(j, fixed.GetBit(j) && bits.GetBit(j))
			}
		}
		break
	}
	target.ClearOverflow()
}

// tightenHiBound is tightenBound's mirror image, used for hi-1 (the
// largest feasible value in a linear interval), which wants to sit as
// high as the fixed mask allows: at the first disagreement, a target bit
// that's set where bits demands clear is cleared and everything below it
// is maximized (free bits set, fixed bits forced to bits); a target bit
// that's clear where bits demands set means the whole prefix already
// drifted below what's permitted, so every bit resets to fixed AND bits.
func tightenHiBound(fixed, bits, target *BitVec, bw uint) {
	for i := bw; i > 0; {
		i--
		if !fixed.GetBit(i) {
			continue
		}
		bi, ti := bits.GetBit(i), target.GetBit(i)
		if bi == ti {
			continue
		}
		if ti && !bi {
			target.SetBit(i, false)
			for j := uint(0); j < i; j++ {
				target.SetBit(j, !fixed.GetBit(j) || bits.GetBit(j))
			}
		} else {
			for j := uint(0); j < bw; j++ {
				target.SetBit(j, fixed.GetBit(j) && bits.GetBit(j))
			}
		}
		break
	}
	target.ClearOverflow()
}

// InitFixed cross-propagates between the interval and the fixed-bit
// mask after both have been populated: tightens lo and hi against
// already-fixed bits, then, if the interval is linear, pins any new
// bits the interval itself forces (hi's leading zeros, the bit below a
// power-of-two hi, and every bit when the interval admits exactly one
// value). A full-domain interval (lo == hi) has no endpoints to tighten
// against and imposes no constraint the fixed mask doesn't already
// carry, so it's a no-op beyond the feasibility check. Running it twice
// in a row is a no-op. Returns whether bits remains feasible.
func (v *Valuation) InitFixed() bool {
	if Equal(v.lo, v.hi) {
		return v.CanSet(v.bits)
	}

	tightenBound(v.fixed, v.bits, v.lo, v.bw)

	hi1 := NewBitVec(v.bw)
	hi1.CopyFrom(v.hi)
	Sub1(hi1)
	tightenHiBound(v.fixed, v.bits, hi1, v.bw)
	v.hi.CopyFrom(hi1)
	Add1(v.hi)

	if Less(v.lo, v.hi) {
		for i := v.bw; i > 0; {
			i--
			if v.hi.GetBit(i) {
				break
			}
			v.pinBit(i, false)
		}
		if v.IsPowerOf2(v.hi) {
			if top := v.Msb(v.hi); top > 0 {
				v.pinBit(top-1, false)
			}
		}
		loPlus1 := NewBitVec(v.bw)
		loPlus1.CopyFrom(v.lo)
		Add1(loPlus1)
		if Equal(v.hi, loPlus1) {
			for i := uint(0); i < v.bw; i++ {
				v.pinBit(i, v.lo.GetBit(i))
			}
		}
	}

	if !v.InRange(v.bits) {
		v.bits.CopyFrom(v.lo)
	}
	return v.CanSet(v.bits)
}

// WellFormed checks that no overflow bits are set in lo/hi/bits, that
// the top-word overflow positions of fixed are pinned, and that bits
// itself is feasible. Intended for tests, not the hot path.
func (v *Valuation) WellFormed() bool {
	if v.lo.HasOverflow() || v.hi.HasOverflow() || v.bits.HasOverflow() {
		return false
	}
	if v.fixed.w[v.nw-1]&^v.mask != ^v.mask {
		return false
	}
	return v.CanSet(v.bits)
}
