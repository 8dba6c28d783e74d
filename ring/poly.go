// Package ring implements the L1 polynomial-arithmetic layer of the FV
// core (schoolbook and modular-reduction operations on polynomials over
// Z_q[X]/(X^N+1)), the L2a NTT engine, and the L2b Nussbaumer convolution
// engine, as specified by spec.md §4.2-§4.4.
package ring

import (
	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/wideint"
)

// Polynomial holds N coefficients of identical limb-count, stored as a
// contiguous limb array of shape [N x limbsPerCoeff], matching spec.md
// §3's data model. Like wideint.WideUint, it is either owned (storage
// allocated by the constructor, resizable) or borrowed (aliases
// caller-provided storage, never resizable).
type Polynomial struct {
	n             int
	bitCount      int
	limbsPerCoeff int
	buff          []uint64
	owned         bool
}

// NewPolynomial allocates an owned, zero-valued polynomial of n
// coefficients, each of the given bit-width.
func NewPolynomial(n, bitCount int) *Polynomial {
	lpc := wideint.LimbsFor(bitCount)
	return &Polynomial{
		n:             n,
		bitCount:      bitCount,
		limbsPerCoeff: lpc,
		buff:          make([]uint64, n*lpc),
		owned:         true,
	}
}

// BorrowPolynomial returns a Polynomial aliasing the caller-provided flat
// limb buffer, which must have at least n*LimbsFor(bitCount) entries.
func BorrowPolynomial(buff []uint64, n, bitCount int) (*Polynomial, error) {
	lpc := wideint.LimbsFor(bitCount)
	need := n * lpc
	if len(buff) < need {
		return nil, errs.InvalidArgument("ring: need %d limbs for %d coefficients of %d bits, got %d", need, n, bitCount, len(buff))
	}
	return &Polynomial{n: n, bitCount: bitCount, limbsPerCoeff: lpc, buff: buff[:need], owned: false}, nil
}

// N returns the coefficient count.
func (p *Polynomial) N() int { return p.n }

// BitCount returns the declared per-coefficient bit-width.
func (p *Polynomial) BitCount() int { return p.bitCount }

// IsOwned reports whether p owns its backing storage.
func (p *Polynomial) IsOwned() bool { return p.owned }

// Buff returns p's backing flat limb slice, for callers that borrowed it
// from a pool and need to return it once p is no longer in use.
func (p *Polynomial) Buff() []uint64 { return p.buff }

// Coeff returns a WideUint view (borrowed from p's storage) of the i-th
// coefficient. Mutating it mutates p.
func (p *Polynomial) Coeff(i int) *wideint.WideUint {
	lo := i * p.limbsPerCoeff
	hi := lo + p.limbsPerCoeff
	w, err := wideint.Borrow(p.buff[lo:hi], p.bitCount)
	if err != nil {
		panic(err) // unreachable: buff is always sized correctly
	}
	return w
}

// SetCoeff overwrites the i-th coefficient's value (truncated to the
// polynomial's declared bit-width).
func (p *Polynomial) SetCoeff(i int, v *wideint.WideUint) {
	dst := p.Coeff(i)
	big := v.ToBig()
	dst.SetBig(big)
}

// SetCoeffUint64 overwrites the i-th coefficient from a uint64.
func (p *Polynomial) SetCoeffUint64(i int, v uint64) {
	p.Coeff(i).SetBig(wideint.FromUint64(64, v).ToBig())
}

// Clone returns a new owned polynomial with the same shape and values.
func (p *Polynomial) Clone() *Polynomial {
	c := NewPolynomial(p.n, p.bitCount)
	copy(c.buff, p.buff)
	return c
}

// Zero sets every coefficient to zero.
func (p *Polynomial) Zero() {
	for i := range p.buff {
		p.buff[i] = 0
	}
}

// Resize changes N and/or the coefficient bit-width, zero-padding or
// truncating as needed. Fails with errs.ErrAliasMutation if p is
// borrowed.
func (p *Polynomial) Resize(n, bitCount int) error {
	if !p.owned {
		return errs.AliasMutation("ring: resize of a borrowed polynomial")
	}
	lpc := wideint.LimbsFor(bitCount)
	newBuff := make([]uint64, n*lpc)
	minN := n
	if p.n < minN {
		minN = p.n
	}
	minLpc := lpc
	if p.limbsPerCoeff < minLpc {
		minLpc = p.limbsPerCoeff
	}
	for i := 0; i < minN; i++ {
		copy(newBuff[i*lpc:i*lpc+minLpc], p.buff[i*p.limbsPerCoeff:i*p.limbsPerCoeff+minLpc])
	}
	p.buff = newBuff
	p.n = n
	p.bitCount = bitCount
	p.limbsPerCoeff = lpc
	return nil
}

// Equal reports whether p and other have the same N and coefficient
// values (bit-widths may differ).
func (p *Polynomial) Equal(other *Polynomial) bool {
	if p.n != other.n {
		return false
	}
	for i := 0; i < p.n; i++ {
		if p.Coeff(i).Compare(other.Coeff(i)) != 0 {
			return false
		}
	}
	return true
}

// Array is a sequence of K polynomials of identical shape. Ciphertexts
// are represented this way (spec.md §3).
type Array struct {
	Polys []*Polynomial
}

// NewArray allocates K owned polynomials of n coefficients each of the
// given bit-width.
func NewArray(k, n, bitCount int) *Array {
	a := &Array{Polys: make([]*Polynomial, k)}
	for i := range a.Polys {
		a.Polys[i] = NewPolynomial(n, bitCount)
	}
	return a
}

// Size returns the number of polynomials (K) in the array.
func (a *Array) Size() int { return len(a.Polys) }

// Clone returns a deep, owned copy of a.
func (a *Array) Clone() *Array {
	c := &Array{Polys: make([]*Polynomial, len(a.Polys))}
	for i, p := range a.Polys {
		c.Polys[i] = p.Clone()
	}
	return c
}
