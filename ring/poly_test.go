package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPolynomialIsZero(t *testing.T) {
	p := NewPolynomial(8, 32)
	require.Equal(t, 8, p.N())
	for i := 0; i < 8; i++ {
		require.True(t, p.Coeff(i).IsZero())
	}
}

func TestBorrowPolynomialValidatesLength(t *testing.T) {
	_, err := BorrowPolynomial(make([]uint64, 1), 8, 64)
	require.Error(t, err)

	buff := make([]uint64, 8)
	p, err := BorrowPolynomial(buff, 8, 64)
	require.NoError(t, err)
	require.False(t, p.IsOwned())
}

func TestSetCoeffUint64(t *testing.T) {
	p := NewPolynomial(4, 64)
	p.SetCoeffUint64(2, 99)
	require.Equal(t, uint64(99), p.Coeff(2).Limbs()[0])
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPolynomial(4, 64)
	p.SetCoeffUint64(0, 1)
	c := p.Clone()
	c.SetCoeffUint64(0, 2)
	require.Equal(t, uint64(1), p.Coeff(0).Limbs()[0])
	require.Equal(t, uint64(2), c.Coeff(0).Limbs()[0])
}

func TestResizeFailsOnBorrowed(t *testing.T) {
	buff := make([]uint64, 8)
	p, err := BorrowPolynomial(buff, 8, 64)
	require.NoError(t, err)
	require.Error(t, p.Resize(16, 64))
}

func TestResizeGrowsAndPreserves(t *testing.T) {
	p := NewPolynomial(4, 64)
	p.SetCoeffUint64(0, 7)
	p.SetCoeffUint64(3, 9)
	require.NoError(t, p.Resize(8, 64))
	require.Equal(t, 8, p.N())
	require.Equal(t, uint64(7), p.Coeff(0).Limbs()[0])
	require.Equal(t, uint64(9), p.Coeff(3).Limbs()[0])
	require.True(t, p.Coeff(7).IsZero())
}

func TestEqual(t *testing.T) {
	a := NewPolynomial(4, 64)
	b := NewPolynomial(4, 64)
	a.SetCoeffUint64(1, 5)
	b.SetCoeffUint64(1, 5)
	require.True(t, a.Equal(b))
	b.SetCoeffUint64(1, 6)
	require.False(t, a.Equal(b))
}

func TestArray(t *testing.T) {
	a := NewArray(2, 4, 64)
	require.Equal(t, 2, a.Size())
	a.Polys[0].SetCoeffUint64(0, 3)
	c := a.Clone()
	c.Polys[0].SetCoeffUint64(0, 4)
	require.Equal(t, uint64(3), a.Polys[0].Coeff(0).Limbs()[0])
}
