package wideint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModulusDetectsPseudoMersenne(t *testing.T) {
	m := FromUint64(64, (1<<31)-1) // 2^31 - 1
	md, err := NewModulus(m)
	require.NoError(t, err)
	require.True(t, md.IsPseudoMersenne())
}

func TestNewModulusGeneralCase(t *testing.T) {
	m := FromUint64(64, 1000000007)
	md, err := NewModulus(m)
	require.NoError(t, err)
	require.False(t, md.IsPseudoMersenne())
}

func TestNewModulusRejectsZero(t *testing.T) {
	_, err := NewModulus(New(64))
	require.Error(t, err)
}

func TestReduceMatchesBigMod(t *testing.T) {
	m := FromUint64(64, 1000000007)
	md, err := NewModulus(m)
	require.NoError(t, err)

	x := FromUint64(128, 123456789123456789)
	r := md.Reduce(x)
	want := new(big.Int).Mod(x.ToBig(), m.ToBig())
	require.Equal(t, 0, want.Cmp(r.ToBig()))
}

func TestReducePseudoMersenne(t *testing.T) {
	m := FromUint64(64, (1<<13)-1) // 8191
	md, err := NewModulus(m)
	require.NoError(t, err)

	x := FromUint64(64, 123456789)
	r := md.Reduce(x)
	want := new(big.Int).Mod(big.NewInt(123456789), big.NewInt(8191))
	require.Equal(t, 0, want.Cmp(r.ToBig()))
}

func TestModAddSubMul(t *testing.T) {
	m := FromUint64(64, 17)
	md, err := NewModulus(m)
	require.NoError(t, err)

	a := FromUint64(64, 10)
	b := FromUint64(64, 12)

	require.Equal(t, uint64(5), md.ModAdd(a, b).Limbs()[0]) // 22 mod 17
	require.Equal(t, uint64(15), md.ModSub(a, b).Limbs()[0]) // -2 mod 17
	require.Equal(t, uint64(1), md.ModMul(a, b).Limbs()[0]) // 120 mod 17
}

func TestModInverse(t *testing.T) {
	m := FromUint64(64, 17)
	md, err := NewModulus(m)
	require.NoError(t, err)

	a := FromUint64(64, 5)
	inv, ok := md.ModInverse(a)
	require.True(t, ok)
	require.Equal(t, uint64(1), md.ModMul(a, inv).Limbs()[0])
}

func TestModInverseNotInvertible(t *testing.T) {
	m := FromUint64(64, 10)
	md, err := NewModulus(m)
	require.NoError(t, err)

	a := FromUint64(64, 4) // gcd(4,10)=2
	_, ok := md.ModInverse(a)
	require.False(t, ok)
}
