package ring

import (
	"math/big"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/wideint"
)

// NTTTable holds the precomputed powers of a primitive 2N-th root of
// unity needed to run the negacyclic NTT of spec.md §4.3 over Z_q, in
// bit-reversed order as in the teacher's Ring.nttPsi/nttPsiInv (grounded
// on _examples/tuneinsight-lattigo/ring/ntt.go), generalized from
// uint64-per-limb lazy Harvey butterflies to arbitrary-precision
// wideint.WideUint coefficients fully reduced at every step: the lazy,
// approximate-reduction trick only pays off when Q fits comfortably
// below the machine word, which does not hold for the wide moduli this
// package targets.
type NTTTable struct {
	n        int
	q        *wideint.Modulus
	psiPow   []*wideint.WideUint // bit-reversed powers of psi, psiPow[0] unused
	psiInv   []*wideint.WideUint // bit-reversed powers of psi^-1
	nInv     *wideint.WideUint
	rootUsed *wideint.WideUint
}

// maxPrimitiveRootSearch bounds the number of candidate generators tried
// before NewNTTTable gives up and reports the NTT unavailable for this q.
const maxPrimitiveRootSearch = 4096

// NewNTTTable builds the table for degree n (a power of two) and modulus
// q. It requires q ≡ 1 (mod 2n); if no primitive 2n-th root of unity is
// found within a bounded search, it returns an error and the caller
// should fall back to the Nussbaumer engine, per spec.md §4.1's
// fast-multiplication path selection.
func NewNTTTable(n int, q *wideint.Modulus) (*NTTTable, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, errs.InvalidArgument("ring: NTT degree %d is not a power of two", n)
	}
	qb := q.Value().ToBig()
	twoN := big.NewInt(int64(2 * n))
	mod := new(big.Int).Mod(qb, twoN)
	if mod.Cmp(big.NewInt(1)) != 0 {
		return nil, errs.UnsupportedConfig("ring: q is not congruent to 1 mod 2N, NTT unavailable")
	}
	qMinus1 := new(big.Int).Sub(qb, big.NewInt(1))
	exp := new(big.Int).Quo(qMinus1, twoN)

	var psi *big.Int
	cand := big.NewInt(2)
	for tries := 0; tries < maxPrimitiveRootSearch; tries++ {
		if cand.Cmp(qb) >= 0 {
			return nil, errs.UnsupportedConfig("ring: exhausted candidates searching for a primitive 2N-th root of unity")
		}
		root := new(big.Int).Exp(cand, exp, qb)
		negOne := new(big.Int).Sub(qb, big.NewInt(1))
		check := new(big.Int).Exp(root, big.NewInt(int64(n)), qb)
		if check.Cmp(negOne) == 0 && root.Sign() != 0 {
			psi = root
			break
		}
		cand.Add(cand, big.NewInt(1))
	}
	if psi == nil {
		return nil, errs.UnsupportedConfig("ring: no primitive 2N-th root of unity found for this modulus")
	}

	t := &NTTTable{n: n, q: q}
	t.rootUsed = wideint.New(q.BitCount())
	t.rootUsed.SetBig(psi)

	psiInvBig := new(big.Int).ModInverse(psi, qb)
	if psiInvBig == nil {
		return nil, errs.UnsupportedConfig("ring: primitive root has no inverse mod q")
	}

	t.psiPow = make([]*wideint.WideUint, n)
	t.psiInv = make([]*wideint.WideUint, n)
	powersAsc := make([]*big.Int, n)
	invPowersAsc := make([]*big.Int, n)
	cur := big.NewInt(1)
	curInv := big.NewInt(1)
	for i := 0; i < n; i++ {
		powersAsc[i] = new(big.Int).Set(cur)
		invPowersAsc[i] = new(big.Int).Set(curInv)
		cur = new(big.Int).Mod(new(big.Int).Mul(cur, psi), qb)
		curInv = new(big.Int).Mod(new(big.Int).Mul(curInv, psiInvBig), qb)
	}
	logN := bitLen(n) - 1
	for i := 0; i < n; i++ {
		br := bitReverse(i, logN)
		w := wideint.New(q.BitCount())
		w.SetBig(powersAsc[br])
		t.psiPow[i] = w
		wi := wideint.New(q.BitCount())
		wi.SetBig(invPowersAsc[br])
		t.psiInv[i] = wi
	}

	nBig := big.NewInt(int64(n))
	nInvBig := new(big.Int).ModInverse(nBig, qb)
	if nInvBig == nil {
		return nil, errs.UnsupportedConfig("ring: N has no inverse mod q")
	}
	t.nInv = wideint.New(q.BitCount())
	t.nInv.SetBig(nInvBig)

	return t, nil
}

func bitLen(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l + 1
}

func bitReverse(i, logN int) int {
	r := 0
	for b := 0; b < logN; b++ {
		if i&(1<<uint(b)) != 0 {
			r |= 1 << uint(logN-1-b)
		}
	}
	return r
}

// Forward transforms p in place from coefficient representation to
// NTT/evaluation representation, using the Cooley-Tukey decimation-in-time
// butterfly structure of the teacher's NTT, generalized to full modular
// reduction at each butterfly (spec.md §4.3).
func (t *NTTTable) Forward(p *Polynomial) error {
	if p.N() != t.n {
		return errs.InvalidArgument("ring: NTT table is for N=%d, polynomial has N=%d", t.n, p.N())
	}
	q := t.q
	vals := make([]*wideint.WideUint, t.n)
	for i := range vals {
		vals[i] = p.Coeff(i).Clone()
	}
	tLen := t.n
	for m := 1; m < t.n; m <<= 1 {
		tLen >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * tLen
			j2 := j1 + tLen - 1
			psi := t.psiPow[m+i]
			for j := j1; j <= j2; j++ {
				u := vals[j]
				v := q.ModMul(vals[j+tLen], psi)
				vals[j] = q.ModAdd(u, v)
				vals[j+tLen] = q.ModSub(u, v)
			}
		}
	}
	for i := 0; i < t.n; i++ {
		p.SetCoeff(i, vals[i])
	}
	return nil
}

// Inverse transforms p in place from NTT/evaluation representation back
// to coefficient representation.
func (t *NTTTable) Inverse(p *Polynomial) error {
	if p.N() != t.n {
		return errs.InvalidArgument("ring: NTT table is for N=%d, polynomial has N=%d", t.n, p.N())
	}
	q := t.q
	vals := make([]*wideint.WideUint, t.n)
	for i := range vals {
		vals[i] = p.Coeff(i).Clone()
	}
	tLen := 1
	for m := t.n; m > 1; m >>= 1 {
		h := m >> 1
		j1 := 0
		for i := 0; i < h; i++ {
			j2 := j1 + tLen - 1
			psi := t.psiInv[h+i]
			for j := j1; j <= j2; j++ {
				u := vals[j]
				v := vals[j+tLen]
				vals[j] = q.ModAdd(u, v)
				diff := q.ModSub(u, v)
				vals[j+tLen] = q.ModMul(diff, psi)
			}
			j1 += 2 * tLen
		}
		tLen <<= 1
	}
	for i := 0; i < t.n; i++ {
		scaled := q.ModMul(vals[i], t.nInv)
		p.SetCoeff(i, scaled)
	}
	return nil
}

// PointwiseMultiply returns the coefficient-wise (NTT-domain) product of
// a and b mod q; equivalent to a negacyclic convolution once both
// operands are in NTT representation. Alias for DyadicProductMod, named
// to match spec.md §4.3's "pointwise multiplication."
func PointwiseMultiply(a, b *Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	return DyadicProductMod(a, b, q)
}

// DotProductNTT computes sum_j a[j] * b[j] in NTT domain, where a and b
// are arrays of polynomials already in NTT representation. Used by the
// decryptor to evaluate sum_j c_j * s^j (spec.md §4.5) when the NTT
// fast-multiplication path is available.
func DotProductNTT(a, b []*Polynomial, q *wideint.Modulus) (*Polynomial, error) {
	if len(a) != len(b) {
		return nil, errs.InvalidArgument("ring: DotProductNTT operand count mismatch (%d vs %d)", len(a), len(b))
	}
	if len(a) == 0 {
		return nil, errs.InvalidArgument("ring: DotProductNTT requires at least one term")
	}
	acc := NewPolynomial(a[0].N(), q.BitCount())
	for j := range a {
		term, err := DyadicProductMod(a[j], b[j], q)
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
