package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/latticego/fv/wideint"
)

func nttModulus(t *testing.T) *wideint.Modulus {
	// 97 = 12*8 + 1, so 97 ≡ 1 (mod 2N) for N=4.
	return smallModulus(t, 97)
}

func TestNTTRoundTrip(t *testing.T) {
	q := nttModulus(t)
	n := 4
	tbl, err := NewNTTTable(n, q)
	require.NoError(t, err)

	p := NewPolynomial(n, 64)
	p.SetCoeffUint64(0, 3)
	p.SetCoeffUint64(1, 7)
	p.SetCoeffUint64(2, 1)
	p.SetCoeffUint64(3, 55)

	orig := p.Clone()
	require.NoError(t, tbl.Forward(p))
	require.NoError(t, tbl.Inverse(p))

	require.True(t, p.Equal(orig))
}

func TestNTTRejectsWrongDegree(t *testing.T) {
	q := nttModulus(t)
	tbl, err := NewNTTTable(4, q)
	require.NoError(t, err)
	p := NewPolynomial(8, 64)
	require.Error(t, tbl.Forward(p))
}

func TestNTTUnavailableForIncompatibleModulus(t *testing.T) {
	// 10 is not ≡ 1 mod 8.
	q := smallModulus(t, 10)
	_, err := NewNTTTable(4, q)
	require.Error(t, err)
}

func TestNTTPointwiseMatchesCyclotomicMultiply(t *testing.T) {
	q := nttModulus(t)
	n := 4
	tbl, err := NewNTTTable(n, q)
	require.NoError(t, err)

	a := NewPolynomial(n, 64)
	b := NewPolynomial(n, 64)
	a.SetCoeffUint64(0, 3)
	a.SetCoeffUint64(1, 2)
	b.SetCoeffUint64(0, 5)
	b.SetCoeffUint64(2, 1)

	want := MulModCyclotomic(a, b, n, q)

	aNTT := a.Clone()
	bNTT := b.Clone()
	require.NoError(t, tbl.Forward(aNTT))
	require.NoError(t, tbl.Forward(bNTT))
	prodNTT, err := PointwiseMultiply(aNTT, bNTT, q)
	require.NoError(t, err)
	require.NoError(t, tbl.Inverse(prodNTT))

	require.True(t, want.Equal(prodNTT))
}

func TestDotProductNTT(t *testing.T) {
	q := nttModulus(t)
	n := 4
	tbl, err := NewNTTTable(n, q)
	require.NoError(t, err)

	a0 := NewPolynomial(n, 64)
	a1 := NewPolynomial(n, 64)
	b0 := NewPolynomial(n, 64)
	b1 := NewPolynomial(n, 64)
	a0.SetCoeffUint64(0, 2)
	a1.SetCoeffUint64(0, 3)
	b0.SetCoeffUint64(0, 4)
	b1.SetCoeffUint64(0, 5)

	for _, p := range []*Polynomial{a0, a1, b0, b1} {
		require.NoError(t, tbl.Forward(p))
	}
	dot, err := DotProductNTT([]*Polynomial{a0, a1}, []*Polynomial{b0, b1}, q)
	require.NoError(t, err)
	require.NoError(t, tbl.Inverse(dot))
	// (2*4 + 3*5) = 23 at the constant coefficient.
	require.Equal(t, uint64(23), dot.Coeff(0).Limbs()[0])
}
