package crt

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"github.com/latticego/fv/params"
)

// inRange reports whether every value of a generically-typed slot
// vector lies in [0, bound), mirroring the teacher's generic test
// helpers built over golang.org/x/exp/constraints (see
// _examples/tuneinsight-lattigo/utils/structs/structs_test.go).
func inRange[T constraints.Integer](vals []T, bound T) bool {
	for _, v := range vals {
		if v < 0 || v >= bound {
			return false
		}
	}
	return true
}

// batchingLiteral returns a parameter set whose plain_modulus (257) is
// prime and satisfies 2N | t-1 for N=16 (32 | 256), so EnableBatching
// is set.
func batchingLiteral() params.Literal {
	return params.Literal{
		PolyModulus:            "1x^16 + 1",
		CoeffModulus:           "d0000001",
		PlainModulus:           "101", // 257 decimal
		DecompositionBitCount:  8,
		NoiseStandardDeviation: 1.0,
		NoiseMaxDeviation:      6.0,
	}
}

func TestNewBuilderRejectsNonBatchingModulus(t *testing.T) {
	lit := batchingLiteral()
	lit.PlainModulus = "5" // 5 decimal, does not satisfy 2N | t-1 for N=16
	p, err := params.NewParameters(lit)
	require.NoError(t, err)
	require.False(t, p.Qualifiers().EnableBatching)
	_, err = NewBuilder(p)
	require.Error(t, err)
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	p, err := params.NewParameters(batchingLiteral())
	require.NoError(t, err)
	require.True(t, p.Qualifiers().EnableBatching)

	b, err := NewBuilder(p)
	require.NoError(t, err)

	values := make([]int64, p.N())
	for i := range values {
		values[i] = int64(i % 7)
	}

	poly, err := b.Compose(values)
	require.NoError(t, err)

	out, err := b.Decompose(poly)
	require.NoError(t, err)
	require.Equal(t, values, out)
}

func TestDecomposeSlotsStayWithinPlainModulus(t *testing.T) {
	p, err := params.NewParameters(batchingLiteral())
	require.NoError(t, err)
	b, err := NewBuilder(p)
	require.NoError(t, err)

	values := make([]int64, p.N())
	for i := range values {
		values[i] = int64(i % 7)
	}
	poly, err := b.Compose(values)
	require.NoError(t, err)

	out, err := b.Decompose(poly)
	require.NoError(t, err)
	require.True(t, inRange(out, p.PlainModulus().Value().ToBig().Int64()))
}

func TestComposeRejectsWrongLength(t *testing.T) {
	p, err := params.NewParameters(batchingLiteral())
	require.NoError(t, err)
	b, err := NewBuilder(p)
	require.NoError(t, err)

	_, err = b.Compose(make([]int64, p.N()-1))
	require.Error(t, err)
}
