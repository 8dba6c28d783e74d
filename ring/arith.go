package ring

import (
	"math/big"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/wideint"
)

// AddMod returns the owned coefficient-wise sum of a and b reduced mod q.
// a and b must have the same N.
func AddMod(a, b *Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if a.N() != b.N() {
		return nil, errs.InvalidArgument("ring: AddMod operands have different N (%d vs %d)", a.N(), b.N())
	}
	r := NewPolynomial(a.N(), q.BitCount())
	for i := 0; i < a.N(); i++ {
		r.SetCoeff(i, q.ModAdd(a.Coeff(i), b.Coeff(i)))
	}
	return r, nil
}

// SubMod returns the owned coefficient-wise difference of a and b reduced
// mod q.
func SubMod(a, b *Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if a.N() != b.N() {
		return nil, errs.InvalidArgument("ring: SubMod operands have different N (%d vs %d)", a.N(), b.N())
	}
	r := NewPolynomial(a.N(), q.BitCount())
	for i := 0; i < a.N(); i++ {
		r.SetCoeff(i, q.ModSub(a.Coeff(i), b.Coeff(i)))
	}
	return r, nil
}

// Add returns the owned coefficient-wise sum of a and b without reducing
// modulo anything (used transiently inside primitives, per spec.md §3's
// "reduced except transiently inside primitives" invariant).
func Add(a, b *Polynomial) (*Polynomial, error) {
	if a.N() != b.N() {
		return nil, errs.InvalidArgument("ring: Add operands have different N (%d vs %d)", a.N(), b.N())
	}
	bw := a.BitCount()
	if b.BitCount() > bw {
		bw = b.BitCount()
	}
	r := NewPolynomial(a.N(), bw+1)
	for i := 0; i < a.N(); i++ {
		s, _ := a.Coeff(i).Add(b.Coeff(i), bw+1)
		r.SetCoeff(i, s)
	}
	return r, nil
}

// Negate returns the owned coefficient-wise negation of a mod q.
func Negate(a *Polynomial, q *wideint.Modulus) *Polynomial {
	r := NewPolynomial(a.N(), q.BitCount())
	zero := wideint.New(q.BitCount())
	for i := 0; i < a.N(); i++ {
		r.SetCoeff(i, q.ModSub(zero, a.Coeff(i)))
	}
	return r
}

// ScalarMulMod returns a scaled coefficient-wise by scalar, reduced mod q.
func ScalarMulMod(a *Polynomial, scalar *wideint.WideUint, q *wideint.Modulus) *Polynomial {
	r := NewPolynomial(a.N(), q.BitCount())
	for i := 0; i < a.N(); i++ {
		r.SetCoeff(i, q.ModMul(a.Coeff(i), scalar))
	}
	return r
}

// DyadicProductMod returns the coefficient-wise (pointwise) product of a
// and b mod q -- the operation used in the NTT evaluation domain.
func DyadicProductMod(a, b *Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if a.N() != b.N() {
		return nil, errs.InvalidArgument("ring: DyadicProductMod operands have different N (%d vs %d)", a.N(), b.N())
	}
	r := NewPolynomial(a.N(), q.BitCount())
	for i := 0; i < a.N(); i++ {
		r.SetCoeff(i, q.ModMul(a.Coeff(i), b.Coeff(i)))
	}
	return r, nil
}

// SchoolbookMul returns the full, unreduced product of a and b (degree
// 2N-2, i.e. 2N-1 coefficients), with coefficients reduced mod q but not
// folded modulo the cyclotomic polynomial.
func SchoolbookMul(a, b *Polynomial, q *wideint.Modulus) *Polynomial {
	n := a.N()
	m := b.N()
	r := NewPolynomial(n+m-1, q.BitCount())
	acc := make([]*big.Int, n+m-1)
	for i := range acc {
		acc[i] = new(big.Int)
	}
	qb := q.Value().ToBig()
	for i := 0; i < n; i++ {
		ai := a.Coeff(i).ToBig()
		if ai.Sign() == 0 {
			continue
		}
		for j := 0; j < m; j++ {
			bj := b.Coeff(j).ToBig()
			if bj.Sign() == 0 {
				continue
			}
			t := new(big.Int).Mul(ai, bj)
			acc[i+j].Add(acc[i+j], t)
		}
	}
	for i := range acc {
		acc[i].Mod(acc[i], qb)
		r.Coeff(i).SetBig(acc[i])
	}
	return r
}

// ReduceCyclotomic reduces a polynomial of degree up to 2N-2 (2N-1
// coefficients) modulo X^N+1 and q: since X^N = -1 in the quotient ring,
// ReduceCyclotomic folds coefficient N+i into coefficient i with a sign
// flip, for every i.
func ReduceCyclotomic(wide *Polynomial, n int, q *wideint.Modulus) *Polynomial {
	r := NewPolynomial(n, q.BitCount())
	for i := 0; i < n; i++ {
		r.SetCoeff(i, wide.Coeff(i))
	}
	for i := n; i < wide.N(); i++ {
		c := wide.Coeff(i)
		if c.IsZero() {
			continue
		}
		fold := i - n
		r.SetCoeff(fold, q.ModSub(r.Coeff(fold), c))
	}
	return r
}

// MulModCyclotomic computes a*b mod (X^N+1, q) via schoolbook
// multiplication followed by cyclotomic reduction -- the generic
// "nonfft" path named in spec.md §4.2, used whenever neither the NTT nor
// Nussbaumer fast path applies (which in practice is never, since
// Nussbaumer is always available for X^N+1 moduli; kept as the
// unconditionally-correct reference path exercised by property tests
// that cross-check the two fast backends against it).
func MulModCyclotomic(a, b *Polynomial, n int, q *wideint.Modulus) *Polynomial {
	wide := SchoolbookMul(a, b, q)
	return ReduceCyclotomic(wide, n, q)
}

// DivRem performs polynomial division with remainder: a = quotient*divisor
// + remainder, with coefficients treated as elements of Z (not reduced
// mod any q); deg(remainder) < deg(divisor). divisor must be monic in
// its top coefficient for the trailing coefficients to divide evenly;
// used on cyclotomic-shaped divisors (X^N+1) where this always holds.
func DivRem(a, divisor *Polynomial) (quotient, remainder *Polynomial, err error) {
	degA := degree(a)
	degD := degree(divisor)
	if degD < 0 {
		return nil, nil, errs.DivisionByZero("ring: polynomial division by the zero polynomial")
	}
	lead := divisor.Coeff(degD).ToBig()
	rem := make([]*big.Int, a.N())
	for i := range rem {
		rem[i] = a.Coeff(i).ToBig()
	}
	qCoeffs := make([]*big.Int, degA+1)
	for i := range qCoeffs {
		qCoeffs[i] = new(big.Int)
	}
	for degree2(rem) >= degD && degD >= 0 {
		d2 := degree2(rem)
		coeff := new(big.Int).Quo(rem[d2], lead)
		shift := d2 - degD
		qCoeffs[shift] = coeff
		for i := 0; i <= degD; i++ {
			t := new(big.Int).Mul(coeff, divisor.Coeff(i).ToBig())
			rem[shift+i].Sub(rem[shift+i], t)
		}
	}
	quotient = NewPolynomial(len(qCoeffs), a.BitCount())
	for i, c := range qCoeffs {
		quotient.Coeff(i).SetBig(c)
	}
	remainder = NewPolynomial(a.N(), a.BitCount())
	for i, c := range rem {
		remainder.Coeff(i).SetBig(c)
	}
	return quotient, remainder, nil
}

func degree(p *Polynomial) int {
	for i := p.N() - 1; i >= 0; i-- {
		if !p.Coeff(i).IsZero() {
			return i
		}
	}
	return -1
}

func degree2(c []*big.Int) int {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Sign() != 0 {
			return i
		}
	}
	return -1
}

// InfinityNormMod returns the infinity norm of p's symmetric
// representatives mod q: for each coefficient, the symmetric
// representative in (-q/2, q/2] is taken, its absolute value computed,
// and the maximum returned as a big.Int.
func InfinityNormMod(p *Polynomial, q *wideint.Modulus) *big.Int {
	qb := q.Value().ToBig()
	half := new(big.Int).Rsh(qb, 1)
	max := new(big.Int)
	for i := 0; i < p.N(); i++ {
		c := p.Coeff(i).ToBig()
		if c.Cmp(half) > 0 {
			c = new(big.Int).Sub(c, qb)
		}
		c.Abs(c)
		if c.Cmp(max) > 0 {
			max = c
		}
	}
	return max
}
