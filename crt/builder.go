// Package crt implements CRT ("PolyCRTBuilder") plaintext batching over
// Z_t[X]/(X^N+1), as specified by spec.md §4.6: when t is prime and
// 2N | t-1, this ring splits into N independent copies of Z_t, letting a
// caller pack N scalar values into one plaintext polynomial and operate
// on all of them at once under homomorphic addition and multiplication.
// Grounded on the teacher's NTT-table plumbing
// (_examples/tuneinsight-lattigo/ring/ntt.go) and on
// original_source/SEAL/batchencoder.cpp for the bit-reversal slot
// permutation and compose/decompose shape.
package crt

import (
	"math/big"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
)

// Builder composes/decomposes between a slot vector of N values in
// [0, t) and a single plaintext polynomial, per spec.md §4.6. Requires
// params.Qualifiers().EnableBatching.
type Builder struct {
	p   *params.Parameters
	tbl *ring.NTTTable
	n   int
}

// NewBuilder returns a Builder for p. Fails with errs.UnsupportedConfig
// unless p's EnableBatching qualifier is set and p carries a
// plain_modulus NTT table (2N | plain_modulus-1 with a primitive 2N-th
// root found); plain_modulus is not tested for primality.
func NewBuilder(p *params.Parameters) (*Builder, error) {
	if !p.Qualifiers().EnableBatching {
		return nil, errs.UnsupportedConfig("crt: plain_modulus does not support batching (need 2N | t-1)")
	}
	tbl := p.BatchingNTTTable()
	if tbl == nil {
		return nil, errs.UnsupportedConfig("crt: no batching NTT table available for this parameter set")
	}
	return &Builder{p: p, tbl: tbl, n: p.N()}, nil
}

// Compose packs values (len must equal N) into a plaintext polynomial:
// values are written into bit-reversal-permuted slot positions, then the
// inverse negacyclic NTT (over plain_modulus) recovers the coefficient
// representation.
func (b *Builder) Compose(values []int64) (*ring.Polynomial, error) {
	if len(values) != b.n {
		return nil, errs.InvalidArgument("crt: compose expects %d values, got %d", b.n, len(values))
	}
	t := b.p.PlainModulus()
	logN := bitLen(b.n) - 1
	slots := ring.NewPolynomial(b.n, t.BitCount())
	for i, v := range values {
		perm := bitReverse(i, logN)
		slots.Coeff(perm).SetBig(normalizeMod(v, t.Value().ToBig()))
	}
	if err := b.tbl.Inverse(slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Decompose reads back the N slot values from a plaintext polynomial
// produced by Compose: the forward negacyclic NTT recovers the
// evaluation-domain slots, read out in bit-reversed order.
func (b *Builder) Decompose(pt *ring.Polynomial) ([]int64, error) {
	if pt.N() != b.n {
		return nil, errs.InvalidArgument("crt: decompose expects a degree-%d polynomial, got %d", b.n, pt.N())
	}
	evalDomain := pt.Clone()
	if err := b.tbl.Forward(evalDomain); err != nil {
		return nil, err
	}
	logN := bitLen(b.n) - 1
	values := make([]int64, b.n)
	for i := 0; i < b.n; i++ {
		perm := bitReverse(i, logN)
		values[i] = evalDomain.Coeff(perm).ToBig().Int64()
	}
	return values, nil
}

func normalizeMod(v int64, m *big.Int) *big.Int {
	r := new(big.Int).Mod(big.NewInt(v), m)
	return r
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
	for k := 0; k < logN; k++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}
