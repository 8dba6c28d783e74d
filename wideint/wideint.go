// Package wideint implements the L0 layer of the FV core: unsigned
// multi-precision arithmetic on arrays of 64-bit limbs, plus a modulus
// descriptor that accelerates reduction.
//
// A [WideUint] is, in the terms of spec.md's design notes, a tagged
// {Owned | Borrowed} variant rather than a runtime alias flag: an owned
// value may be resized, a borrowed one (constructed with [Borrow]) never
// can, and attempting to resize one fails with [errs.ErrAliasMutation].
// Internally, the limb-exact contract required by callers (declared
// bit-width, explicit 64-bit-limb layout, truncating writes) is the public
// surface; the heavy arithmetic (multiply, divide, modular inverse) is
// delegated to math/big, the same choice the teacher makes in its own
// ring.Int type (a thin wrapper around big.Int) rather than re-deriving
// schoolbook algorithms from scratch.
package wideint

import (
	"math/big"
	"math/bits"

	"github.com/latticego/fv/errs"
)

const bitsPerLimb = 64

// LimbsFor returns the number of 64-bit limbs needed to hold bitCount bits.
func LimbsFor(bitCount int) int {
	if bitCount <= 0 {
		return 0
	}
	return (bitCount + bitsPerLimb - 1) / bitsPerLimb
}

// WideUint is an unsigned integer of a declared bit-width, stored as a
// little-endian array of 64-bit limbs (limb 0 is least significant). Bits
// above the declared width are always zero.
type WideUint struct {
	bitCount int
	limbs    []uint64
	owned    bool
}

// New allocates a zero-valued, owned WideUint of the given bit-width.
func New(bitCount int) *WideUint {
	if bitCount < 0 {
		bitCount = 0
	}
	return &WideUint{
		bitCount: bitCount,
		limbs:    make([]uint64, LimbsFor(bitCount)),
		owned:    true,
	}
}

// FromUint64 allocates an owned WideUint of the given bit-width
// initialized to v; bits of v at or above bitCount are masked off.
func FromUint64(bitCount int, v uint64) *WideUint {
	w := New(bitCount)
	if len(w.limbs) > 0 {
		w.limbs[0] = v
		w.maskHighBits()
	}
	return w
}

// Borrow returns a WideUint that aliases the caller-provided limb slice.
// Resize on the result always fails with errs.ErrAliasMutation. limbs must
// have at least LimbsFor(bitCount) entries; bits above bitCount in the
// slice are masked off on construction.
func Borrow(limbs []uint64, bitCount int) (*WideUint, error) {
	need := LimbsFor(bitCount)
	if len(limbs) < need {
		return nil, errs.InvalidArgument("wideint: need %d limbs for %d bits, got %d", need, bitCount, len(limbs))
	}
	w := &WideUint{bitCount: bitCount, limbs: limbs[:need], owned: false}
	w.maskHighBits()
	return w, nil
}

// Clone returns a new owned WideUint with the same bit-width and value.
func (w *WideUint) Clone() *WideUint {
	c := New(w.bitCount)
	copy(c.limbs, w.limbs)
	return c
}

// IsOwned reports whether w owns its backing storage (and may be resized).
func (w *WideUint) IsOwned() bool { return w.owned }

// BitCount returns the declared bit-width.
func (w *WideUint) BitCount() int { return w.bitCount }

// Limbs returns the backing little-endian limb slice. Callers must not
// retain it past a subsequent Resize of an owned value.
func (w *WideUint) Limbs() []uint64 { return w.limbs }

// LimbCount returns len(Limbs()).
func (w *WideUint) LimbCount() int { return len(w.limbs) }

// Resize changes the declared bit-width, truncating or zero-extending the
// limb array. It fails with errs.ErrAliasMutation if w is borrowed.
func (w *WideUint) Resize(bitCount int) error {
	if !w.owned {
		return errs.AliasMutation("wideint: resize of a borrowed value")
	}
	if bitCount < 0 {
		bitCount = 0
	}
	need := LimbsFor(bitCount)
	newLimbs := make([]uint64, need)
	copy(newLimbs, w.limbs)
	w.limbs = newLimbs
	w.bitCount = bitCount
	w.maskHighBits()
	return nil
}

func (w *WideUint) maskHighBits() {
	if w.bitCount == 0 {
		for i := range w.limbs {
			w.limbs[i] = 0
		}
		return
	}
	topLimb := (w.bitCount - 1) / bitsPerLimb
	rem := w.bitCount % bitsPerLimb
	if topLimb < len(w.limbs) {
		if rem != 0 {
			mask := uint64(1)<<uint(rem) - 1
			w.limbs[topLimb] &= mask
		}
		for i := topLimb + 1; i < len(w.limbs); i++ {
			w.limbs[i] = 0
		}
	}
}

// IsZero reports whether every limb is zero.
func (w *WideUint) IsZero() bool {
	for _, l := range w.limbs {
		if l != 0 {
			return false
		}
	}
	return true
}

// SignificantBitCount returns the index (1-based) of the highest set bit,
// or 0 if w is zero.
func (w *WideUint) SignificantBitCount() int {
	for i := len(w.limbs) - 1; i >= 0; i-- {
		if w.limbs[i] != 0 {
			return i*bitsPerLimb + bits.Len64(w.limbs[i])
		}
	}
	return 0
}

// Bit returns the value (0 or 1) of bit i, or 0 if i is out of range.
func (w *WideUint) Bit(i int) int {
	if i < 0 || i >= w.bitCount {
		return 0
	}
	limb, off := i/bitsPerLimb, uint(i%bitsPerLimb)
	return int((w.limbs[limb] >> off) & 1)
}

// SetBit sets bit i to 0 or 1. It is a no-op if i is out of range.
func (w *WideUint) SetBit(i int, v int) {
	if i < 0 || i >= w.bitCount {
		return
	}
	limb, off := i/bitsPerLimb, uint(i%bitsPerLimb)
	if v != 0 {
		w.limbs[limb] |= uint64(1) << off
	} else {
		w.limbs[limb] &^= uint64(1) << off
	}
}

// Compare returns -1, 0, or 1 according to whether w < other, w == other,
// or w > other, treating operands of unequal limb-count as zero-extended.
func (w *WideUint) Compare(other *WideUint) int {
	n := len(w.limbs)
	if len(other.limbs) > n {
		n = len(other.limbs)
	}
	for i := n - 1; i >= 0; i-- {
		a, b := limbAt(w.limbs, i), limbAt(other.limbs, i)
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

func limbAt(limbs []uint64, i int) uint64 {
	if i < 0 || i >= len(limbs) {
		return 0
	}
	return limbs[i]
}

// ToBig returns the value of w as a math/big.Int.
func (w *WideUint) ToBig() *big.Int {
	v := new(big.Int)
	buf := make([]byte, len(w.limbs)*8)
	for i, l := range w.limbs {
		// big-endian byte layout expected by big.Int.SetBytes; limb 0 is
		// least significant, so it belongs at the tail of the buffer.
		off := (len(w.limbs) - 1 - i) * 8
		buf[off+0] = byte(l >> 56)
		buf[off+1] = byte(l >> 48)
		buf[off+2] = byte(l >> 40)
		buf[off+3] = byte(l >> 32)
		buf[off+4] = byte(l >> 24)
		buf[off+5] = byte(l >> 16)
		buf[off+6] = byte(l >> 8)
		buf[off+7] = byte(l)
	}
	v.SetBytes(buf)
	return v
}

// SetBig sets w's value from a non-negative big.Int, truncating to w's
// declared bit-width (upper bits masked to zero). Goes through Bytes()
// rather than Bits() so behavior does not depend on the platform width of
// big.Word.
func (w *WideUint) SetBig(v *big.Int) {
	for i := range w.limbs {
		w.limbs[i] = 0
	}
	b := v.Bytes()
	for i := 0; i < len(b); i++ {
		byteIdx := len(b) - 1 - i
		limb := i / 8
		shift := uint(i%8) * 8
		if limb < len(w.limbs) {
			w.limbs[limb] |= uint64(b[byteIdx]) << shift
		}
	}
	w.maskHighBits()
}
