package wideint

import (
	"math/big"

	"github.com/latticego/fv/errs"
)

// Modulus is a precomputed descriptor for a modulus m that accelerates
// reduction of values up to twice its bit-width. Two shapes are
// recognized: m = 2^k - 1 (pseudo-Mersenne, reduced by an add-and-mask),
// and the general case (reduced via a Barrett-style reciprocal). Once
// constructed, a Modulus is immutable.
type Modulus struct {
	value    *WideUint
	bitCount int

	pseudoMersenne  bool
	pseudoMersenneK int

	// reciprocal is floor(4^bitCount / m), i.e. a value of bitCount+1
	// bits, one bit wider than m, used for Barrett reduction of the general
	// case. Computed once via math/big; see package doc for why the
	// heavy-lifting routes through big.Int rather than a hand-rolled
	// long-division.
	reciprocal *big.Int
	big        *big.Int
}

// NewModulus builds a descriptor for m. m must be non-zero.
func NewModulus(m *WideUint) (*Modulus, error) {
	if m.IsZero() {
		return nil, errs.InvalidArgument("wideint: modulus must be non-zero")
	}
	md := &Modulus{
		value:    m.Clone(),
		bitCount: m.SignificantBitCount(),
		big:      m.ToBig(),
	}
	if k, ok := powerOfTwoMinusOne(md.big); ok {
		md.pseudoMersenne = true
		md.pseudoMersenneK = k
	} else {
		shift := uint(2 * md.bitCount)
		num := new(big.Int).Lsh(big.NewInt(1), shift)
		md.reciprocal = new(big.Int).Quo(num, md.big)
	}
	return md, nil
}

func powerOfTwoMinusOne(m *big.Int) (k int, ok bool) {
	plusOne := new(big.Int).Add(m, big.NewInt(1))
	bl := plusOne.BitLen()
	if bl == 0 {
		return 0, false
	}
	// plusOne must be exactly 1<<(bl-1)
	check := new(big.Int).Lsh(big.NewInt(1), uint(bl-1))
	if plusOne.Cmp(check) == 0 {
		return bl - 1, true
	}
	return 0, false
}

// Value returns the modulus as a WideUint.
func (md *Modulus) Value() *WideUint { return md.value }

// BitCount returns the significant bit count of the modulus.
func (md *Modulus) BitCount() int { return md.bitCount }

// IsPseudoMersenne reports whether m = 2^k - 1 was detected.
func (md *Modulus) IsPseudoMersenne() bool { return md.pseudoMersenne }

// Reduce returns x mod m.
func (md *Modulus) Reduce(x *WideUint) *WideUint {
	r := New(md.bitCount)
	if md.pseudoMersenne && HasFastCarryChain() {
		r.SetBig(reducePseudoMersenne(x.ToBig(), md.pseudoMersenneK, md.big))
		return r
	}
	if md.pseudoMersenne {
		// No fast carry-chain: a single mod is cheaper than the
		// fold-until-fits loop in reducePseudoMersenne, which otherwise
		// wins by avoiding a full division.
		xb := new(big.Int).Mod(x.ToBig(), md.big)
		r.SetBig(xb)
		return r
	}
	xb := x.ToBig()
	// Barrett: q' = (x * reciprocal) >> 2*bitCount ; r = x - q'*m, then
	// at most a couple of correcting subtractions.
	shift := uint(2 * md.bitCount)
	qApprox := new(big.Int).Mul(xb, md.reciprocal)
	qApprox.Rsh(qApprox, shift)
	rem := new(big.Int).Mul(qApprox, md.big)
	rem.Sub(xb, rem)
	for rem.Sign() < 0 {
		rem.Add(rem, md.big)
	}
	for rem.Cmp(md.big) >= 0 {
		rem.Sub(rem, md.big)
	}
	r.SetBig(rem)
	return r
}

func reducePseudoMersenne(x *big.Int, k int, m *big.Int) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(k)), big.NewInt(1))
	r := new(big.Int).Set(x)
	for r.BitLen() > k {
		hi := new(big.Int).Rsh(r, uint(k))
		lo := new(big.Int).And(r, mask)
		r = lo.Add(lo, hi)
	}
	for r.Cmp(m) >= 0 {
		r.Sub(r, m)
	}
	return r
}

// ModAdd returns (a+b) mod m.
func (md *Modulus) ModAdd(a, b *WideUint) *WideUint {
	sum, _ := a.Add(b, a.BitCount()+1)
	return md.Reduce(sum)
}

// ModSub returns (a-b) mod m.
func (md *Modulus) ModSub(a, b *WideUint) *WideUint {
	r := New(md.bitCount)
	av, bv := a.ToBig(), b.ToBig()
	d := new(big.Int).Sub(av, bv)
	d.Mod(d, md.big)
	r.SetBig(d)
	return r
}

// ModMul returns (a*b) mod m.
func (md *Modulus) ModMul(a, b *WideUint) *WideUint {
	return md.Reduce(a.Mul(b))
}

// ModInverse returns the modular inverse of a, or ok=false if gcd(a,m)!=1.
func (md *Modulus) ModInverse(a *WideUint) (inv *WideUint, ok bool) {
	av := a.ToBig()
	av.Mod(av, md.big)
	g := new(big.Int)
	x := new(big.Int)
	g.GCD(x, nil, av, md.big)
	if g.Cmp(big.NewInt(1)) != 0 {
		return nil, false
	}
	x.Mod(x, md.big)
	r := New(md.bitCount)
	r.SetBig(x)
	return r, true
}
