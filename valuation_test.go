package bv

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setWord(v *BitVec, w Word) *BitVec {
	v.SetWord(0, w)
	return v
}

func TestValuationFullDomain(t *testing.T) {
	v := NewValuation(8)
	if !v.WellFormed() {
		t.Fatal("fresh Valuation should be well formed")
	}
	cand := setWord(NewBitVec(8), 0x42)
	if !v.InRange(cand) {
		t.Fatal("full domain should accept any value")
	}
	if !v.CanSet(cand) {
		t.Fatal("full domain with no fixed bits should accept any value")
	}
}

func TestValuationLinearInterval(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	inside := setWord(NewBitVec(8), 0x18)
	below := setWord(NewBitVec(8), 0x0f)
	atHi := setWord(NewBitVec(8), 0x20)
	if !v.InRange(inside) {
		t.Fatal("0x18 should be in [0x10,0x20)")
	}
	if v.InRange(below) {
		t.Fatal("0x0f should not be in [0x10,0x20)")
	}
	if v.InRange(atHi) {
		t.Fatal("0x20 should not be in [0x10,0x20), interval is half-open")
	}
}

func TestValuationWrapInterval(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0xf0)
	hi := setWord(NewBitVec(8), 0x10)
	v.AddRange(lo, hi)
	wrapped := setWord(NewBitVec(8), 0x05)
	highEnd := setWord(NewBitVec(8), 0xf5)
	midGap := setWord(NewBitVec(8), 0x80)
	if !v.InRange(wrapped) {
		t.Fatal("0x05 should be in wrapping [0xf0,0x10)")
	}
	if !v.InRange(highEnd) {
		t.Fatal("0xf5 should be in wrapping [0xf0,0x10)")
	}
	if v.InRange(midGap) {
		t.Fatal("0x80 should not be in wrapping [0xf0,0x10)")
	}
}

func TestValuationFixedLowNibble(t *testing.T) {
	v := NewValuation(8)
	v.bits.SetWord(0, 0x05)
	for i := uint(0); i < 4; i++ {
		v.fixed.SetBit(i, true)
	}
	candOK := setWord(NewBitVec(8), 0xa5)
	candBad := setWord(NewBitVec(8), 0xa6)
	if !v.CanSet(candOK) {
		t.Fatal("0xa5 agrees with fixed low nibble 0x5")
	}
	if v.CanSet(candBad) {
		t.Fatal("0xa6 disagrees with fixed low nibble 0x5")
	}
}

func TestValuationForcedSingleValue(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x30)
	hi := setWord(NewBitVec(8), 0x31)
	v.AddRange(lo, hi)
	for i := uint(0); i < 8; i++ {
		v.fixed.SetBit(i, true)
	}
	v.bits.SetWord(0, 0x30)
	if !v.InitFixed() {
		t.Fatal("InitFixed should find the single feasible value 0x30")
	}
	if got, want := v.bits.Words(), []Word{0x30}; !cmp.Equal(got, want) {
		t.Fatalf("bits = %v, want %v", got, want)
	}
}

func TestValuationInitFixedFullDomainGuard(t *testing.T) {
	v := NewValuation(8)
	v.fixed.SetBit(1, true) // externally pin bit 1 to 0, bits left at 0

	if !v.InitFixed() {
		t.Fatal("InitFixed should still find bits=0 feasible")
	}
	if !Equal(v.lo, v.hi) {
		t.Fatalf("full-domain interval should be untouched by InitFixed, got lo=%s hi=%s", v.lo, v.hi)
	}
	cand := setWord(NewBitVec(8), 0x04) // bit 1 clear, should remain feasible
	if !v.CanSet(cand) {
		t.Fatal("0x04 (bit1=0) should still satisfy the pinned bit under a full-domain interval")
	}
}

func TestValuationAddRangeWrapTightensHi(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0xf0)
	hi := setWord(NewBitVec(8), 0x10)
	v.AddRange(lo, hi) // establishes the wrap interval [0xf0, 0x10)

	lo2 := setWord(NewBitVec(8), 0xf0) // l == old lo, no-op on lo
	hi2 := setWord(NewBitVec(8), 0x08)
	v.AddRange(lo2, hi2)

	if got, want := v.Hi().Words(), []Word{0x08}; !cmp.Equal(got, want) {
		t.Fatalf("hi = %v, want %v (hi should tighten to 0x08)", got, want)
	}
	if got, want := v.Lo().Words(), []Word{0xf0}; !cmp.Equal(got, want) {
		t.Fatalf("lo = %v, want %v (lo should stay at 0xf0)", got, want)
	}
}

func TestValuationWidth33CrossesWordBoundary(t *testing.T) {
	v := NewValuation(33)
	if v.nw != 2 {
		t.Fatalf("nw = %d, want 2", v.nw)
	}
	n := new(big.Int).Lsh(big.NewInt(1), 32)
	v.SetValue(v.bits, n)
	got := v.GetValue(v.bits)
	if got.Cmp(n) != 0 {
		t.Fatalf("GetValue() = %s, want %s", got, n)
	}
	if !v.WellFormed() {
		t.Fatal("expected well-formed valuation after SetValue at the word boundary")
	}
}

func TestValuationGetAtMostAndAtLeast(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	dst := NewBitVec(8)
	src := setWord(NewBitVec(8), 0x25)
	if !v.GetAtMost(src, dst) {
		t.Fatal("expected a feasible value <= 0x25")
	}
	if !v.InRange(dst) {
		t.Fatalf("GetAtMost result %s not in range", dst)
	}
	src2 := setWord(NewBitVec(8), 0x05)
	if !v.GetAtLeast(src2, dst) {
		t.Fatal("expected a feasible value >= 0x05")
	}
	if !v.InRange(dst) {
		t.Fatalf("GetAtLeast result %s not in range", dst)
	}
}

func TestValuationSetRepairDeterministic(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi) // bits auto-resets to lo (0x10) since 0 is out of range
	outOfRange := setWord(NewBitVec(8), 0x25)
	if !v.SetRepair(true, outOfRange) {
		t.Fatal("SetRepair should find a feasible value")
	}
	if !v.InRange(v.bits) {
		t.Fatalf("committed bits %s not in range after SetRepair", v.bits)
	}
	if got, want := v.bits.Words(), []Word{0x1f}; !cmp.Equal(got, want) {
		t.Fatalf("bits = %v, want %v", got, want)
	}
}

func TestValuationSetRepairNoOpReturnsFalse(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	v.bits.SetWord(0, 0x18)

	already := setWord(NewBitVec(8), 0x18)
	if v.SetRepair(false, already) {
		t.Fatal("SetRepair should return false when the projected value already matches the committed bits")
	}
	if got, want := v.bits.Words(), []Word{0x18}; !cmp.Equal(got, want) {
		t.Fatalf("bits = %v, want %v (unchanged)", got, want)
	}
}

func TestValuationInitFixedMirroredHiTightening(t *testing.T) {
	v := NewValuation(4)
	lo := setWord(NewBitVec(4), 0x0)
	hi := setWord(NewBitVec(4), 0x7)
	v.AddRange(lo, hi)
	v.fixed.SetBit(2, true) // externally pin bit 2 to 0

	if !v.InitFixed() {
		t.Fatal("InitFixed should find a feasible value")
	}
	// hi-1 tightens to the largest value <= the old hi-1 (6) with bit2
	// cleared, which is 3, so hi becomes 4.
	if got, want := v.Hi().Words(), []Word{0x4}; !cmp.Equal(got, want) {
		t.Fatalf("hi = %v, want %v", got, want)
	}
	if !v.WellFormed() {
		t.Fatal("expected well-formed valuation after InitFixed")
	}
	outOfRange := setWord(NewBitVec(4), 0x4)
	if v.InRange(outOfRange) {
		t.Fatal("0x4 should not be in range: hi is exclusive")
	}
}

func TestValuationAddRangeWrapDoesNotWiden(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0xf0)
	hi := setWord(NewBitVec(8), 0x10)
	v.AddRange(lo, hi) // wrap interval {0xf0..0xff, 0x00..0x0f}

	l2 := setWord(NewBitVec(8), 0x05)
	h2 := setWord(NewBitVec(8), 0xd0)
	v.AddRange(l2, h2)

	if got, want := v.Lo().Words(), []Word{0x05}; !cmp.Equal(got, want) {
		t.Fatalf("lo = %v, want %v", got, want)
	}
	if got, want := v.Hi().Words(), []Word{0x10}; !cmp.Equal(got, want) {
		t.Fatalf("hi = %v, want %v (must not widen to 0xd0)", got, want)
	}
	stillInfeasible := setWord(NewBitVec(8), 0x50)
	if v.InRange(stillInfeasible) {
		t.Fatal("0x50 must remain infeasible: intersecting with [0x05,0xd0) must not widen the wrap interval")
	}
}

func TestValuationMsbAndIsPowerOf2(t *testing.T) {
	v := NewValuation(16)
	src := setWord(NewBitVec(16), 0x0040)
	if got, want := v.Msb(src), uint(6); got != want {
		t.Fatalf("Msb() = %d, want %d", got, want)
	}
	if !v.IsPowerOf2(src) {
		t.Fatal("0x0040 should be a power of two")
	}
	notPow2 := setWord(NewBitVec(16), 0x0041)
	if v.IsPowerOf2(notPow2) {
		t.Fatal("0x0041 should not be a power of two")
	}
}

func TestValuationShiftRightAndToNat(t *testing.T) {
	v := NewValuation(8)
	v.bits.SetWord(0, 0b00110100)
	out := NewBitVec(8)
	v.ShiftRight(out, 2)
	if got, want := out.Words(), []Word{0b00001101}; !cmp.Equal(got, want) {
		t.Fatalf("ShiftRight result = %v, want %v", got, want)
	}
	if got, want := v.ToNat(1000), uint(0b00110100); got != want {
		t.Fatalf("ToNat() = %d, want %d", got, want)
	}
	if got, want := v.ToNat(10), uint(10); got != want {
		t.Fatalf("ToNat(10) = %d, want 10 (saturated)", got)
	}
}

func TestValuationArithmeticWrappers(t *testing.T) {
	v := NewValuation(8)
	a := setWord(NewBitVec(8), 0x0a)
	b := setWord(NewBitVec(8), 0x05)
	out := NewBitVec(8)
	v.SetAdd(out, a, b)
	if got, want := out.Words(), []Word{0x0f}; !cmp.Equal(got, want) {
		t.Fatalf("SetAdd result = %v, want %v", got, want)
	}
	v.SetSub(out, a, b)
	if got, want := out.Words(), []Word{0x05}; !cmp.Equal(got, want) {
		t.Fatalf("SetSub result = %v, want %v", got, want)
	}
	v.SetMul(out, a, b, false)
	if got, want := out.Words(), []Word{0x32}; !cmp.Equal(got, want) {
		t.Fatalf("SetMul result = %v, want %v", got, want)
	}
}

func TestValuationSetRandomInRange(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	loQ := setWord(NewBitVec(8), 0x12)
	hiQ := setWord(NewBitVec(8), 0x1e)
	r := NewMathRand(1)
	dst := NewBitVec(8)
	for i := 0; i < 20; i++ {
		if !v.SetRandomInRange(loQ, hiQ, r, dst) {
			t.Fatal("expected a feasible value to exist")
		}
		if !v.InRange(dst) {
			t.Fatalf("SetRandomInRange result %s not in range", dst)
		}
		if Compare(loQ, dst) > 0 || Compare(dst, hiQ) > 0 {
			t.Fatalf("SetRandomInRange result %s outside query bound [%s,%s]", dst, loQ, hiQ)
		}
	}
}

func TestValuationSetRandomAtMostCommits(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	r := NewMathRand(2)
	dst := NewBitVec(8)
	src := setWord(NewBitVec(8), 0x18)
	for i := 0; i < 20; i++ {
		if !v.SetRandomAtMost(src, r, dst) {
			t.Fatal("expected a feasible value <= src to exist")
		}
		if !cmp.Equal(v.BitsSnapshot().Words(), dst.Words()) {
			t.Fatalf("SetRandomAtMost must commit its result into v.bits: bits=%s dst=%s", v.BitsSnapshot(), dst)
		}
		if Compare(dst, src) > 0 {
			t.Fatalf("committed value %s exceeds src %s", dst, src)
		}
	}
}

func TestValuationSetRandomAtLeastCommits(t *testing.T) {
	v := NewValuation(8)
	lo := setWord(NewBitVec(8), 0x10)
	hi := setWord(NewBitVec(8), 0x20)
	v.AddRange(lo, hi)
	r := NewMathRand(3)
	dst := NewBitVec(8)
	src := setWord(NewBitVec(8), 0x18)
	for i := 0; i < 20; i++ {
		if !v.SetRandomAtLeast(src, r, dst) {
			t.Fatal("expected a feasible value >= src to exist")
		}
		if !cmp.Equal(v.BitsSnapshot().Words(), dst.Words()) {
			t.Fatalf("SetRandomAtLeast must commit its result into v.bits: bits=%s dst=%s", v.BitsSnapshot(), dst)
		}
		if Compare(dst, src) < 0 {
			t.Fatalf("committed value %s below src %s", dst, src)
		}
	}
}
