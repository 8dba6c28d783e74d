package ring

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/latticego/fv/wideint"
)

func smallModulus(t *testing.T, v uint64) *wideint.Modulus {
	md, err := wideint.NewModulus(wideint.FromUint64(64, v))
	require.NoError(t, err)
	return md
}

func TestAddModSubMod(t *testing.T) {
	q := smallModulus(t, 17)
	a := NewPolynomial(4, 64)
	b := NewPolynomial(4, 64)
	a.SetCoeffUint64(0, 10)
	b.SetCoeffUint64(0, 12)

	sum, err := AddMod(a, b, q)
	require.NoError(t, err)
	require.Equal(t, uint64(5), sum.Coeff(0).Limbs()[0])

	diff, err := SubMod(a, b, q)
	require.NoError(t, err)
	require.Equal(t, uint64(15), diff.Coeff(0).Limbs()[0])
}

func TestAddModRejectsMismatchedN(t *testing.T) {
	q := smallModulus(t, 17)
	a := NewPolynomial(4, 64)
	b := NewPolynomial(8, 64)
	_, err := AddMod(a, b, q)
	require.Error(t, err)
}

func TestNegate(t *testing.T) {
	q := smallModulus(t, 17)
	a := NewPolynomial(4, 64)
	a.SetCoeffUint64(0, 5)
	n := Negate(a, q)
	require.Equal(t, uint64(12), n.Coeff(0).Limbs()[0])
}

func TestScalarMulMod(t *testing.T) {
	q := smallModulus(t, 17)
	a := NewPolynomial(4, 64)
	a.SetCoeffUint64(0, 5)
	s := wideint.FromUint64(64, 4)
	r := ScalarMulMod(a, s, q)
	require.Equal(t, uint64(3), r.Coeff(0).Limbs()[0]) // 20 mod 17
}

func TestMulModCyclotomicWraps(t *testing.T) {
	q := smallModulus(t, 97)
	n := 4
	a := NewPolynomial(n, 64)
	b := NewPolynomial(n, 64)
	// a = x^3, b = x^2 -> a*b = x^5 = -x^1 mod (x^4+1)
	a.SetCoeffUint64(3, 1)
	b.SetCoeffUint64(2, 1)
	r := MulModCyclotomic(a, b, n, q)
	for i := 0; i < n; i++ {
		if i == 1 {
			require.Equal(t, uint64(96), r.Coeff(i).Limbs()[0])
		} else {
			require.True(t, r.Coeff(i).IsZero())
		}
	}
}

func TestMulModCyclotomicMatchesSchoolbookOnSmallDegree(t *testing.T) {
	q := smallModulus(t, 97)
	n := 4
	a := NewPolynomial(n, 64)
	b := NewPolynomial(n, 64)
	a.SetCoeffUint64(0, 3)
	a.SetCoeffUint64(1, 2)
	b.SetCoeffUint64(0, 5)
	b.SetCoeffUint64(2, 1)
	r := MulModCyclotomic(a, b, n, q)
	// (3 + 2x)(5 + x^2) = 15 + 10x + 3x^2 + 2x^3, degree < 4, no folding needed.
	require.Equal(t, uint64(15), r.Coeff(0).Limbs()[0])
	require.Equal(t, uint64(10), r.Coeff(1).Limbs()[0])
	require.Equal(t, uint64(3), r.Coeff(2).Limbs()[0])
	require.Equal(t, uint64(2), r.Coeff(3).Limbs()[0])
}

func TestDivRemRecoversDividend(t *testing.T) {
	a := NewPolynomial(4, 64)
	divisor := NewPolynomial(3, 64)
	a.SetCoeffUint64(0, 6)
	a.SetCoeffUint64(1, 11)
	a.SetCoeffUint64(2, 6)
	a.SetCoeffUint64(3, 1) // x^3+6x^2+11x+6 = (x+1)(x+2)(x+3)
	divisor.SetCoeffUint64(0, 2)
	divisor.SetCoeffUint64(1, 1) // x+2

	quotient, remainder, err := DivRem(a, divisor)
	require.NoError(t, err)
	require.True(t, remainder.Coeff(0).IsZero())
	for i := 1; i < remainder.N(); i++ {
		require.True(t, remainder.Coeff(i).IsZero())
	}
	// quotient = x^2+4x+3
	require.Equal(t, uint64(3), quotient.Coeff(0).Limbs()[0])
	require.Equal(t, uint64(4), quotient.Coeff(1).Limbs()[0])
	require.Equal(t, uint64(1), quotient.Coeff(2).Limbs()[0])
}

func TestDivRemByZeroPolynomial(t *testing.T) {
	a := NewPolynomial(4, 64)
	zero := NewPolynomial(4, 64)
	_, _, err := DivRem(a, zero)
	require.Error(t, err)
}

func TestInfinityNormMod(t *testing.T) {
	q := smallModulus(t, 17)
	p := NewPolynomial(4, 64)
	p.SetCoeffUint64(0, 16) // symmetric rep: 16-17 = -1
	p.SetCoeffUint64(1, 3)
	n := InfinityNormMod(p, q)
	require.Equal(t, 0, n.Cmp(big.NewInt(3)))
}
