package bv

import "math/bits"

// BitVec is a mutable unsigned integer modulo 2^bw, stored as nw words of
// WordBits bits each, most-significant word last (index nw-1).
//
// The backing array always has at least nw+1 words reserved: the extra
// word is scratch used by Add to surface the high carry. Mul needs up to
// 2*nw words and grows the destination's backing array itself the first
// time it's called with a wider product than previously reserved.
type BitVec struct {
	bw   uint
	nw   uint
	mask Word
	w    []Word
}

// NewBitVec returns a zeroed BitVec of the given bit width.
func NewBitVec(bw uint) *BitVec {
	v := &BitVec{}
	v.SetWidth(bw)
	return v
}

// SetWidth reassigns v to a new bit width, recomputing nw and mask and
// zeroing the backing array. Bits previously stored above the new width
// are not preserved.
func (v *BitVec) SetWidth(bw uint) {
	assert(bw >= 1, "SetWidth: bit width must be >= 1, got %d", bw)
	v.bw = bw
	v.nw = (bw + WordBits - 1) / WordBits
	if m := bw % WordBits; m == 0 {
		v.mask = ^Word(0)
	} else {
		v.mask = (Word(1) << m) - 1
	}
	v.reserve(v.nw + 1)
	for i := range v.w {
		v.w[i] = 0
	}
}

// BitWidth returns bw.
func (v *BitVec) BitWidth() uint { return v.bw }

// WordCount returns nw.
func (v *BitVec) WordCount() uint { return v.nw }

// Mask returns the mask applied to the top word.
func (v *BitVec) Mask() Word { return v.mask }

func (v *BitVec) reserve(n uint) {
	if uint(len(v.w)) >= n {
		return
	}
	nw := make([]Word, n)
	copy(nw, v.w)
	v.w = nw
}

// Word returns word i, 0 <= i < nw.
func (v *BitVec) Word(i uint) Word { return v.w[i] }

// SetWord assigns word i, 0 <= i < nw.
func (v *BitVec) SetWord(i uint, w Word) { v.w[i] = w }

// Words returns a defensive copy of the first nw words, least-significant
// first. Intended for tests and diagnostics; not used on any hot path.
func (v *BitVec) Words() []Word {
	out := make([]Word, v.nw)
	copy(out, v.w[:v.nw])
	return out
}

// GetBit returns bit i, 0 <= i < bw.
func (v *BitVec) GetBit(i uint) bool {
	return v.w[i/WordBits]&(Word(1)<<(i%WordBits)) != 0
}

// SetBit assigns bit i, 0 <= i < bw.
func (v *BitVec) SetBit(i uint, b bool) {
	m := Word(1) << (i % WordBits)
	if b {
		v.w[i/WordBits] |= m
	} else {
		v.w[i/WordBits] &^= m
	}
}

// CopyFrom replaces v's words with src's. src must have the same bit
// width as v.
func (v *BitVec) CopyFrom(src *BitVec) {
	debugAssert(v.bw == src.bw, "CopyFrom: width mismatch %d != %d", v.bw, src.bw)
	v.reserve(src.nw)
	copy(v.w, src.w[:src.nw])
}

// ClearOverflow zeros the bits of the top word above position bw.
func (v *BitVec) ClearOverflow() {
	v.w[v.nw-1] &= v.mask
}

// HasOverflow reports whether the top word has any bit set above bw.
func (v *BitVec) HasOverflow() bool {
	return v.w[v.nw-1]&^v.mask != 0
}

// IsZero reports whether every word is zero.
func (v *BitVec) IsZero() bool {
	for i := uint(0); i < v.nw; i++ {
		if v.w[i] != 0 {
			return false
		}
	}
	return true
}

// IsOnes reports whether v holds the maximal value for its width
// (all bw bits set).
func (v *BitVec) IsOnes() bool {
	for i := uint(0); i+1 < v.nw; i++ {
		if v.w[i] != ^Word(0) {
			return false
		}
	}
	return v.w[v.nw-1] == v.mask
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b, comparing the first nw words as an unsigned big-endian integer.
// Callers are responsible for having cleared overflow bits in both
// operands.
func Compare(a, b *BitVec) int {
	for i := a.nw; i > 0; {
		i--
		if a.w[i] != b.w[i] {
			if a.w[i] < b.w[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b hold the same value.
func Equal(a, b *BitVec) bool { return Compare(a, b) == 0 }

// Less reports whether a < b.
func Less(a, b *BitVec) bool { return Compare(a, b) < 0 }

// Log2 returns the index of the highest set bit of w. Undefined for w == 0.
func Log2(w Word) uint {
	return uint(bits.Len32(uint32(w)) - 1)
}

// PopCount returns the number of set bits in w.
func PopCount(w Word) uint {
	return uint(bits.OnesCount32(uint32(w)))
}

// Add1 increments v modulo 2^bw.
func Add1(v *BitVec) {
	for i := uint(0); i < v.nw; i++ {
		v.w[i]++
		if v.w[i] != 0 {
			break
		}
	}
	v.ClearOverflow()
}

// Sub1 decrements v modulo 2^bw.
func Sub1(v *BitVec) {
	for i := uint(0); i < v.nw; i++ {
		if v.w[i] != 0 {
			v.w[i]--
			break
		}
		v.w[i] = ^Word(0)
	}
	v.ClearOverflow()
}

// Add computes out := a + b modulo 2^(WordBits*(nw+1)), writing nw+1 words
// into out so the high carry is visible at out.Word(nw), then clears
// overflow. Returns true if the result overflowed: either the carry word
// is nonzero or bits above bw were set before clearing.
func Add(out, a, b *BitVec) bool {
	nw := a.nw
	out.reserve(nw + 1)
	var carry uint64
	for i := uint(0); i < nw; i++ {
		s := uint64(a.w[i]) + uint64(b.w[i]) + carry
		out.w[i] = Word(s)
		carry = s >> WordBits
	}
	out.w[nw] = Word(carry)
	overflow := out.w[nw] != 0 || out.w[nw-1]&^out.mask != 0
	out.ClearOverflow()
	return overflow
}

// Sub computes out := a - b modulo 2^bw.
func Sub(out, a, b *BitVec) {
	nw := a.nw
	var borrow uint64
	for i := uint(0); i < nw; i++ {
		ai, bi := uint64(a.w[i]), uint64(b.w[i])
		d := ai - bi - borrow
		out.w[i] = Word(d)
		if ai < bi+borrow {
			borrow = 1
		} else {
			borrow = 0
		}
	}
	out.ClearOverflow()
}

// addWordAt adds p into w starting at word index idx, rippling the carry
// upward until it's absorbed.
func addWordAt(w []Word, idx uint, p uint64) {
	for p != 0 {
		s := uint64(w[idx]) + p
		w[idx] = Word(s)
		p = s >> WordBits
		idx++
	}
}

// Mul computes out := a * b, writing 2*nw words (schoolbook multiply),
// then clears overflow. If checkOverflow is set, returns true when the
// product doesn't fit in bw bits: any word at index >= nw is nonzero, or
// bits above bw in word nw-1 are set.
func Mul(out, a, b *BitVec, checkOverflow bool) bool {
	nw := a.nw
	out.reserve(2*nw + 1)
	for i := uint(0); i < 2*nw; i++ {
		out.w[i] = 0
	}
	for i := uint(0); i < nw; i++ {
		if a.w[i] == 0 {
			continue
		}
		for j := uint(0); j < nw; j++ {
			if b.w[j] == 0 {
				continue
			}
			addWordAt(out.w, i+j, uint64(a.w[i])*uint64(b.w[j]))
		}
	}
	overflow := false
	if checkOverflow {
		overflow = out.w[nw-1]&^out.mask != 0
		for i := nw; i < 2*nw; i++ {
			if out.w[i] != 0 {
				overflow = true
			}
		}
	}
	out.ClearOverflow()
	return overflow
}

// String renders v as hexadecimal, most-significant word first, leading
// zeros elided, "0" for the zero value.
func (v *BitVec) String() string {
	return FormatHex(v)
}
