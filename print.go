package bv

import (
	"bytes"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// PrintHex writes bv to w as hexadecimal, most-significant word first,
// leading zeros elided, and "0" printed for the zero value.
func PrintHex(w io.Writer, bv *BitVec) error {
	nz := false
	for i := bv.nw; i > 0; {
		i--
		word := bv.w[i]
		if i+1 == bv.nw {
			word &= bv.mask
		}
		var err error
		switch {
		case nz:
			_, err = fmt.Fprintf(w, "%08x", word)
		case word != 0:
			_, err = fmt.Fprintf(w, "%x", word)
			nz = true
		}
		if err != nil {
			return err
		}
	}
	if !nz {
		_, err := io.WriteString(w, "0")
		return err
	}
	return nil
}

// FormatHex returns the hexadecimal rendering of bv (see PrintHex).
func FormatHex(bv *BitVec) string {
	var buf bytes.Buffer
	_ = PrintHex(&buf, bv)
	return buf.String()
}

// Dump returns a deep, field-level rendering of v's lo/hi/bits/fixed
// words, for debugging an SLS driver's view of a variable's feasible
// domain. This is strictly more verbose than String/PrintHex and is not
// meant for production logging.
func (v *Valuation) Dump() string {
	return spew.Sdump(struct {
		BitWidth    uint
		Lo, Hi      []Word
		Bits, Fixed []Word
	}{
		BitWidth: v.bw,
		Lo:       v.lo.Words(),
		Hi:       v.hi.Words(),
		Bits:     v.bits.Words(),
		Fixed:    v.fixed.Words(),
	})
}
