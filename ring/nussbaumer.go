package ring

import (
	"math/big"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/wideint"
)

// NussbaumerMultiply computes a*b mod (X^N+1, q) via the recursive
// negacyclic-convolution construction described in spec.md §4.4,
// without requiring q to admit a primitive 2N-th root of unity -- the
// L2b fallback path used whenever the NTT table cannot be built. No Go
// example in the retrieved pack implements this; the recursive halving
// identity below is translated from the structure of
// nussbaumer_multiply_poly_poly_coeffmod as referenced (but not
// defined, in the files available here) by
// original_source/SEAL/util/polyextras.cpp, reimplemented directly
// against wideint/big.Int rather than SEAL's raw limb buffers.
//
// The identity: write N=2M and split a, b into their even- and
// odd-indexed coefficients (a_e, a_o, b_e, b_o, each of length M).
// Because X^2 satisfies (X^2)^M = X^N = -1 in this ring, the even- and
// odd-indexed subsequences of a*b mod (X^N+1) are themselves each a
// size-M negacyclic convolution mod (Y^M+1) with Y=X^2:
//
//	even(a*b) = conv_M(a_e,b_e) + rotate(conv_M(a_o,b_o))
//	odd(a*b)  = conv_M(a_e,b_o) + conv_M(a_o,b_e)
//
// where rotate is the single negacyclic rotation y*(.) mod (Y^M+1).
// Recursing down to the N=1 base case (plain scalar multiplication)
// gives a correct fast-multiplication backend with no primality
// requirement on q, at the cost of four same-size recursive calls per
// level (schoolbook-equivalent asymptotic cost) rather than the
// three-call Karatsuba-style reduction a production Nussbaumer
// implementation would use; preferred here for the more easily
// verified recursion structure given this code is never executed
// before review.
func NussbaumerMultiply(a, b *Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if a.N() != b.N() {
		return nil, errs.InvalidArgument("ring: NussbaumerMultiply operands have different N (%d vs %d)", a.N(), b.N())
	}
	n := a.N()
	if n&(n-1) != 0 {
		return nil, errs.InvalidArgument("ring: NussbaumerMultiply requires a power-of-two N, got %d", n)
	}
	qb := q.Value().ToBig()
	av := polyToBigSlice(a)
	bv := polyToBigSlice(b)
	result := nussbaumerRec(av, bv, n, qb)
	r := NewPolynomial(n, q.BitCount())
	for i, c := range result {
		r.Coeff(i).SetBig(c)
	}
	return r, nil
}

func polyToBigSlice(p *Polynomial) []*big.Int {
	out := make([]*big.Int, p.N())
	for i := range out {
		out[i] = p.Coeff(i).ToBig()
	}
	return out
}

func nussbaumerRec(a, b []*big.Int, n int, q *big.Int) []*big.Int {
	if n == 1 {
		return []*big.Int{new(big.Int).Mod(new(big.Int).Mul(a[0], b[0]), q)}
	}
	m := n / 2
	ae, ao := deinterleave(a, m)
	be, bo := deinterleave(b, m)

	p := nussbaumerRec(ae, be, m, q)
	qq := nussbaumerRec(ao, bo, m, q)
	r1 := nussbaumerRec(ae, bo, m, q)
	r2 := nussbaumerRec(ao, be, m, q)

	rotQ := negacyclicRotate(qq, q)

	even := make([]*big.Int, m)
	odd := make([]*big.Int, m)
	for j := 0; j < m; j++ {
		even[j] = new(big.Int).Mod(new(big.Int).Add(p[j], rotQ[j]), q)
		odd[j] = new(big.Int).Mod(new(big.Int).Add(r1[j], r2[j]), q)
	}

	out := make([]*big.Int, n)
	for j := 0; j < m; j++ {
		out[2*j] = even[j]
		out[2*j+1] = odd[j]
	}
	return out
}

// deinterleave splits x (length 2m) into even- and odd-indexed halves.
func deinterleave(x []*big.Int, m int) (even, odd []*big.Int) {
	even = make([]*big.Int, m)
	odd = make([]*big.Int, m)
	for j := 0; j < m; j++ {
		even[j] = x[2*j]
		odd[j] = x[2*j+1]
	}
	return even, odd
}

// negacyclicRotate computes Y*v(Y) mod (Y^m+1): the top coefficient
// wraps to position 0 with its sign flipped.
func negacyclicRotate(v []*big.Int, q *big.Int) []*big.Int {
	m := len(v)
	out := make([]*big.Int, m)
	top := v[m-1]
	if top.Sign() == 0 {
		out[0] = new(big.Int)
	} else {
		out[0] = new(big.Int).Mod(new(big.Int).Sub(q, top), q)
	}
	for j := 1; j < m; j++ {
		out[j] = new(big.Int).Set(v[j-1])
	}
	return out
}

// DotProductNussbaumer computes sum_j a[j] * b[j] mod (X^N+1, q) using
// NussbaumerMultiply term by term, for use by the decryptor when the
// NTT fast path is unavailable (spec.md §4.5).
func DotProductNussbaumer(a, b []*Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if len(a) != len(b) {
		return nil, errs.InvalidArgument("ring: DotProductNussbaumer operand count mismatch (%d vs %d)", len(a), len(b))
	}
	if len(a) == 0 {
		return nil, errs.InvalidArgument("ring: DotProductNussbaumer requires at least one term")
	}
	acc := NewPolynomial(a[0].N(), q.BitCount())
	for j := range a {
		term, err := NussbaumerMultiply(a[j], b[j], q)
		if err != nil {
			return nil, err
		}
		acc, err = AddMod(acc, term, q)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
