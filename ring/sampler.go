package ring

import (
	"encoding/binary"
	"math"
	"math/big"
	"math/rand"

	"github.com/latticego/fv/wideint"
)

// seedFrom draws a 64-bit seed from prng to drive a math/rand source. The
// cryptographic PRNG supplies the entropy; math/rand supplies the
// well-tested float/int sampling routines (NormFloat64's Ziggurat
// algorithm) built on top of it, rather than a hand-rolled Box-Muller
// transform over raw bytes.
func seedFrom(prng PRNG) int64 {
	var buf [8]byte
	if _, err := prng.Read(buf[:]); err != nil {
		panic(err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// UniformSampler draws polynomials with coefficients uniform in [0, q).
type UniformSampler struct {
	prng PRNG
	q    *wideint.Modulus
}

// NewUniformSampler returns a sampler for the given modulus, drawing
// randomness from prng.
func NewUniformSampler(prng PRNG, q *wideint.Modulus) *UniformSampler {
	return &UniformSampler{prng: prng, q: q}
}

// Sample returns a new polynomial of n coefficients uniform in [0, q).
func (s *UniformSampler) Sample(n int) *Polynomial {
	p := NewPolynomial(n, s.q.BitCount())
	qBig := s.q.Value().ToBig()
	byteLen := (s.q.BitCount() + 7) / 8
	buf := make([]byte, byteLen)
	for i := 0; i < n; i++ {
		for {
			if _, err := s.prng.Read(buf); err != nil {
				panic(err)
			}
			maskTopByte(buf, s.q.BitCount())
			v := new(big.Int).SetBytes(buf)
			if v.Cmp(qBig) < 0 {
				p.Coeff(i).SetBig(v)
				break
			}
		}
	}
	return p
}

func maskTopByte(buf []byte, bitCount int) {
	usedBits := bitCount % 8
	if usedBits == 0 {
		return
	}
	mask := byte(1<<uint(usedBits)) - 1
	buf[0] &= mask
}

// TernarySampler draws polynomials with coefficients i.i.d. uniform in
// {-1, 0, +1} (represented mod q).
type TernarySampler struct {
	prng PRNG
	q    *wideint.Modulus
}

// NewTernarySampler returns a ternary sampler for the given modulus.
func NewTernarySampler(prng PRNG, q *wideint.Modulus) *TernarySampler {
	return &TernarySampler{prng: prng, q: q}
}

// Sample returns a new polynomial of n ternary coefficients mod q. Each
// coefficient is drawn by rejection sampling 2 bits at a time so that
// -1, 0, and +1 remain equiprobable (the 4th 2-bit outcome is discarded
// and redrawn).
func (s *TernarySampler) Sample(n int) *Polynomial {
	p := NewPolynomial(n, s.q.BitCount())
	qBig := s.q.Value().ToBig()
	qMinus1 := new(big.Int).Sub(qBig, big.NewInt(1))
	var buf [1]byte
	for i := 0; i < n; i++ {
		for {
			if _, err := s.prng.Read(buf[:]); err != nil {
				panic(err)
			}
			bits := buf[0] & 0x3
			switch bits {
			case 0:
				p.Coeff(i).SetBig(big.NewInt(0))
			case 1:
				p.Coeff(i).SetBig(big.NewInt(1))
			case 2:
				p.Coeff(i).SetBig(qMinus1)
			default:
				continue
			}
			break
		}
	}
	return p
}

// GaussianSampler draws polynomials with coefficients i.i.d. from a
// clipped discrete Gaussian of standard deviation sigma, rejecting
// samples whose magnitude exceeds bound (spec.md's noise_max_deviation).
type GaussianSampler struct {
	prng  PRNG
	q     *wideint.Modulus
	sigma float64
	bound float64
}

// NewGaussianSampler returns a Gaussian sampler for the given modulus,
// standard deviation, and clipping bound.
func NewGaussianSampler(prng PRNG, q *wideint.Modulus, sigma, bound float64) *GaussianSampler {
	return &GaussianSampler{prng: prng, q: q, sigma: sigma, bound: bound}
}

// Sample returns a new polynomial of n Gaussian-noise coefficients mod q.
func (s *GaussianSampler) Sample(n int) *Polynomial {
	p := NewPolynomial(n, s.q.BitCount())
	qBig := s.q.Value().ToBig()
	r := rand.New(rand.NewSource(seedFrom(s.prng)))
	for i := 0; i < n; i++ {
		var x float64
		for {
			x = r.NormFloat64() * s.sigma
			if math.Abs(x) <= s.bound {
				break
			}
		}
		v := int64(math.Round(x))
		if v >= 0 {
			p.Coeff(i).SetBig(big.NewInt(v))
		} else {
			neg := new(big.Int).Add(qBig, big.NewInt(v))
			p.Coeff(i).SetBig(neg)
		}
	}
	return p
}
