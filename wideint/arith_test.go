package wideint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddWithCarry(t *testing.T) {
	a := FromUint64(64, ^uint64(0))
	b := FromUint64(64, 1)
	sum, carry := a.Add(b, 64)
	require.Equal(t, uint64(1), carry)
	require.True(t, sum.IsZero())
}

func TestAddTruncatesToBitCount(t *testing.T) {
	a := FromUint64(8, 200)
	b := FromUint64(8, 100)
	sum, _ := a.Add(b, 8)
	require.Equal(t, uint64(300%256), sum.Limbs()[0])
}

func TestSubWithBorrow(t *testing.T) {
	a := FromUint64(64, 0)
	b := FromUint64(64, 1)
	diff, borrow := a.Sub(b, 64)
	require.Equal(t, uint64(1), borrow)
	require.Equal(t, ^uint64(0), diff.Limbs()[0])
}

func TestMulMatchesBigInt(t *testing.T) {
	a := FromUint64(64, 123456789)
	b := FromUint64(64, 987654321)
	prod := a.Mul(b)
	want := new(big.Int).Mul(big.NewInt(123456789), big.NewInt(987654321))
	require.Equal(t, 0, want.Cmp(prod.ToBig()))
}

func TestDivRem(t *testing.T) {
	a := FromUint64(64, 100)
	b := FromUint64(64, 7)
	q, r, err := a.DivRem(b)
	require.NoError(t, err)
	require.Equal(t, uint64(14), q.Limbs()[0])
	require.Equal(t, uint64(2), r.Limbs()[0])
}

func TestDivRemByZero(t *testing.T) {
	a := FromUint64(64, 100)
	zero := New(64)
	_, _, err := a.DivRem(zero)
	require.Error(t, err)
}

func TestShiftLeftAndRight(t *testing.T) {
	a := FromUint64(8, 1)
	left := a.ShiftLeft(3)
	require.Equal(t, uint64(8), left.Limbs()[0])

	b := FromUint64(8, 0x80)
	right := b.ShiftRight(4)
	require.Equal(t, uint64(8), right.Limbs()[0])
	require.Equal(t, 8, right.BitCount())
}

func TestShiftRightBeyondWidthIsZero(t *testing.T) {
	a := FromUint64(8, 0xff)
	r := a.ShiftRight(16)
	require.True(t, r.IsZero())
}

func TestBitwiseOps(t *testing.T) {
	a := FromUint64(8, 0b1010)
	b := FromUint64(8, 0b0110)

	require.Equal(t, uint64(0b0010), a.And(b).Limbs()[0])
	require.Equal(t, uint64(0b1110), a.Or(b).Limbs()[0])
	require.Equal(t, uint64(0b1100), a.Xor(b).Limbs()[0])
}

func TestNot(t *testing.T) {
	a := FromUint64(4, 0b0011)
	require.Equal(t, uint64(0b1100), a.Not().Limbs()[0])
}
