package bv

// RandomBits draws a full word of random bits from r.
func RandomBits(r Rand) Word { return r.NextWord() }

// GetVariant writes a uniformly random value of v's bit width into dst,
// ignoring fixed bits and range (the caller is expected to follow up
// with SetRepair or another rounding call before committing).
func (v *Valuation) GetVariant(dst *BitVec, r Rand) {
	for i := uint(0); i < v.nw; i++ {
		dst.w[i] = r.NextWord()
	}
	dst.ClearOverflow()
}

// randomizeBelow implements the "produce a random value below tmp" step
// shared by SetRandomAtMost: it picks one uniformly-random free set bit of
// dst, clears it, then randomizes every free bit below that position.
func (v *Valuation) randomizeBelow(dst *BitVec, r Rand) {
	var freeSet []uint
	for i := uint(0); i < v.bw; i++ {
		if !v.fixed.GetBit(i) && dst.GetBit(i) {
			freeSet = append(freeSet, i)
		}
	}
	if len(freeSet) == 0 {
		return
	}
	pick := freeSet[r.NextWord()%Word(len(freeSet))]
	dst.SetBit(pick, false)
	for i := uint(0); i < pick; i++ {
		if !v.fixed.GetBit(i) {
			dst.SetBit(i, r.NextWord()&1 == 1)
		}
	}
}

// randomizeAbove is the dual of randomizeBelow, used by SetRandomAtLeast:
// picks one uniformly-random free clear bit of dst, sets it, then
// randomizes every free bit below that position.
func (v *Valuation) randomizeAbove(dst *BitVec, r Rand) {
	var freeClear []uint
	for i := uint(0); i < v.bw; i++ {
		if !v.fixed.GetBit(i) && !dst.GetBit(i) {
			freeClear = append(freeClear, i)
		}
	}
	if len(freeClear) == 0 {
		return
	}
	pick := freeClear[r.NextWord()%Word(len(freeClear))]
	dst.SetBit(pick, true)
	for i := uint(0); i < pick; i++ {
		if !v.fixed.GetBit(i) {
			dst.SetBit(i, r.NextWord()&1 == 1)
		}
	}
}

// SetRandomAtMost draws a random feasible value <= src and commits it:
// snap src down to the nearest feasible value with GetAtMost, then half
// the time (or when that value is already zero) keep it as is; otherwise
// push it further down via randomizeBelow and keep the result only if it
// still respects the lower bound of the interval (no bound, a zero lower
// bound, or the value still clears it) — falling back to the plain
// snapped value on a miss. Either way the chosen value is committed into
// v.bits via trySet, matching the original's try_set(tmp). dst holds the
// committed value on success. Returns false if no feasible value <= src
// exists at all.
func (v *Valuation) SetRandomAtMost(src *BitVec, r Rand, dst *BitVec) bool {
	if !v.GetAtMost(src, dst) {
		return false
	}
	if !dst.IsZero() && r.NextWord()&1 != 0 {
		saved := NewBitVec(v.bw)
		saved.CopyFrom(dst)
		v.randomizeBelow(dst, r)
		if !(Equal(v.lo, v.hi) || v.lo.IsZero() || Compare(v.lo, dst) <= 0) {
			dst.CopyFrom(saved)
		}
	}
	return v.trySet(dst)
}

// SetRandomAtLeast is the dual of SetRandomAtMost: snap src up with
// GetAtLeast, then randomize further upward with randomizeAbove, keeping
// the result only if it still respects the upper bound of the interval,
// and commits the chosen value into v.bits via trySet. Returns false if
// no feasible value >= src exists at all.
func (v *Valuation) SetRandomAtLeast(src *BitVec, r Rand, dst *BitVec) bool {
	if !v.GetAtLeast(src, dst) {
		return false
	}
	if !dst.IsOnes() && r.NextWord()&1 != 0 {
		saved := NewBitVec(v.bw)
		saved.CopyFrom(dst)
		v.randomizeAbove(dst, r)
		if !(Equal(v.lo, v.hi) || v.hi.IsOnes() || Less(dst, v.hi)) {
			dst.CopyFrom(saved)
		}
	}
	return v.trySet(dst)
}

// SetRandomInRange draws a random feasible value into dst that also
// satisfies the caller's query bounds [loQ, hiQ]: it chooses a random
// candidate that agrees with the fixed bits, then moves it with
// RoundDownPred or RoundUpPred under a predicate that checks v's own
// interval and both query bounds, a coin flip deciding which direction
// is tried first. If neither direction reaches such a value, it falls
// back to the snapped value GetAtLeast(loQ). Returns false if that
// snap fails or lands above hiQ.
func (v *Valuation) SetRandomInRange(loQ, hiQ *BitVec, r Rand, dst *BitVec) bool {
	v.GetVariant(dst, r)
	for i := uint(0); i < v.nw; i++ {
		dst.w[i] = (dst.w[i] & ^v.fixed.w[i]) | (v.fixed.w[i] & v.bits.w[i])
	}
	dst.ClearOverflow()

	inQuery := func(t *BitVec) bool {
		return Compare(loQ, t) <= 0 && Compare(t, hiQ) <= 0 && v.InRange(t)
	}

	if r.NextWord()&1 == 0 {
		if v.RoundDownPred(dst, inQuery) || v.RoundUpPred(dst, inQuery) {
			return true
		}
	} else if v.RoundUpPred(dst, inQuery) || v.RoundDownPred(dst, inQuery) {
		return true
	}
	return v.GetAtLeast(loQ, dst) && Compare(dst, hiQ) <= 0
}

// SetRepair projects dst onto a feasible value and commits it: first it
// forces agreement with every fixed bit, then it snaps into the interval
// (RoundDown if tryDown else RoundUp), falling back to the other
// direction if the first fails — which happens for a linear interval
// when dst lies below lo (RoundDown) or at or above hi (RoundUp); the
// other direction then succeeds. dst is updated in place to the
// committed value. Returns false if neither direction succeeds, or if
// the projected value is already what's committed — no repair was
// actually needed.
func (v *Valuation) SetRepair(tryDown bool, dst *BitVec) bool {
	for i := uint(0); i < v.nw; i++ {
		dst.w[i] = (^v.fixed.w[i] & dst.w[i]) | (v.fixed.w[i] & v.bits.w[i])
	}
	dst.ClearOverflow()

	var ok bool
	if tryDown {
		ok = v.RoundDown(dst)
		if !ok {
			ok = v.RoundUp(dst)
		}
	} else {
		ok = v.RoundUp(dst)
		if !ok {
			ok = v.RoundDown(dst)
		}
	}
	if !ok {
		return false
	}
	if Equal(dst, v.bits) {
		return false
	}
	v.bits.CopyFrom(dst)
	return true
}
