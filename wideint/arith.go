package wideint

import (
	"math/big"
	"math/bits"

	"github.com/latticego/fv/errs"
)

// Not returns the owned bitwise complement of w within its declared width.
func (w *WideUint) Not() *WideUint {
	r := New(w.bitCount)
	for i := range r.limbs {
		r.limbs[i] = ^w.limbs[i]
	}
	r.maskHighBits()
	return r
}

// And returns the owned bitwise AND of w and other, zero-extending the
// shorter operand.
func (w *WideUint) And(other *WideUint) *WideUint { return w.bitwise(other, func(a, b uint64) uint64 { return a & b }) }

// Or returns the owned bitwise OR of w and other, zero-extending the
// shorter operand.
func (w *WideUint) Or(other *WideUint) *WideUint { return w.bitwise(other, func(a, b uint64) uint64 { return a | b }) }

// Xor returns the owned bitwise XOR of w and other, zero-extending the
// shorter operand.
func (w *WideUint) Xor(other *WideUint) *WideUint { return w.bitwise(other, func(a, b uint64) uint64 { return a ^ b }) }

func (w *WideUint) bitwise(other *WideUint, op func(a, b uint64) uint64) *WideUint {
	bc := w.bitCount
	if other.bitCount > bc {
		bc = other.bitCount
	}
	r := New(bc)
	for i := range r.limbs {
		r.limbs[i] = op(limbAt(w.limbs, i), limbAt(other.limbs, i))
	}
	r.maskHighBits()
	return r
}

// ShiftLeft returns w << n as an owned, caller-sized (unbounded) result:
// the result's bit-width grows to fit the shifted value.
func (w *WideUint) ShiftLeft(n int) *WideUint {
	if n <= 0 {
		c := w.Clone()
		if n < 0 {
			return c.ShiftRight(-n)
		}
		return c
	}
	r := New(w.bitCount + n)
	limbShift := n / bitsPerLimb
	bitShift := uint(n % bitsPerLimb)
	for i := len(w.limbs) - 1; i >= 0; i-- {
		dst := i + limbShift
		if dst < len(r.limbs) {
			r.limbs[dst] |= w.limbs[i] << bitShift
		}
		if bitShift != 0 && dst+1 < len(r.limbs) {
			r.limbs[dst+1] |= w.limbs[i] >> (bitsPerLimb - bitShift)
		}
	}
	r.maskHighBits()
	return r
}

// ShiftRight returns w >> n, same declared width as w. Shifting by at
// least BitCount() yields zero.
func (w *WideUint) ShiftRight(n int) *WideUint {
	r := New(w.bitCount)
	if n < 0 {
		return w.ShiftLeft(-n)
	}
	if n >= w.bitCount {
		return r
	}
	limbShift := n / bitsPerLimb
	bitShift := uint(n % bitsPerLimb)
	for i := 0; i < len(w.limbs); i++ {
		src := i + limbShift
		if src >= len(w.limbs) {
			continue
		}
		r.limbs[i] = w.limbs[src] >> bitShift
		if bitShift != 0 && src+1 < len(w.limbs) {
			r.limbs[i] |= w.limbs[src+1] << (bitsPerLimb - bitShift)
		}
	}
	r.maskHighBits()
	return r
}

// Add returns w + other truncated to width bitCount (upper bits masked to
// zero on write), and the carry-out bit beyond that width.
func (w *WideUint) Add(other *WideUint, bitCount int) (sum *WideUint, carry uint64) {
	r := New(bitCount)
	n := len(r.limbs)
	var c uint64
	for i := 0; i < n; i++ {
		a, b := limbAt(w.limbs, i), limbAt(other.limbs, i)
		s, c1 := bits.Add64(a, b, c)
		r.limbs[i] = s
		c = c1
	}
	r.maskHighBits()
	return r, c
}

// Sub returns w - other truncated to width bitCount (Euclidean: the
// result wraps modulo 2^bitCount), and the borrow-out bit.
func (w *WideUint) Sub(other *WideUint, bitCount int) (diff *WideUint, borrow uint64) {
	r := New(bitCount)
	n := len(r.limbs)
	var brw uint64
	for i := 0; i < n; i++ {
		a, b := limbAt(w.limbs, i), limbAt(other.limbs, i)
		d, b1 := bits.Sub64(a, b, brw)
		r.limbs[i] = d
		brw = b1
	}
	r.maskHighBits()
	return r, brw
}

// Mul returns the full-width product of w and other (width = w.BitCount()
// + other.BitCount()), via math/big (see package doc).
func (w *WideUint) Mul(other *WideUint) *WideUint {
	r := New(w.bitCount + other.bitCount)
	prod := new(big.Int).Mul(w.ToBig(), other.ToBig())
	r.SetBig(prod)
	return r
}

// DivRem returns the quotient and remainder of Euclidean division of w by
// divisor. It returns errs.ErrDivisionByZero if divisor is zero.
func (w *WideUint) DivRem(divisor *WideUint) (quotient, remainder *WideUint, err error) {
	if divisor.IsZero() {
		return nil, nil, errs.DivisionByZero("wideint: division by zero")
	}
	q, rem := new(big.Int), new(big.Int)
	q.DivMod(w.ToBig(), divisor.ToBig(), rem)
	quotient = New(w.bitCount)
	quotient.SetBig(q)
	remainder = New(divisor.bitCount)
	remainder.SetBig(rem)
	return quotient, remainder, nil
}

