package fv

import (
	"math/big"

	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/rlwe"
	"github.com/latticego/fv/wideint"
)

// Encryptor encrypts plaintexts under a fixed public key, per spec.md
// §4.5: u ← ternary sample; e1, e2 ← Gaussian;
// c0 = p0*u + t*e1 + Δ*m; c1 = p1*u + t*e2.
type Encryptor struct {
	p  *params.Parameters
	pk *rlwe.PublicKey
}

// NewEncryptor returns an Encryptor for p using pk.
func NewEncryptor(p *params.Parameters, pk *rlwe.PublicKey) *Encryptor {
	return &Encryptor{p: p, pk: pk}
}

// Encrypt returns a fresh size-2 ciphertext encrypting pt.
func (enc *Encryptor) Encrypt(pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	p := enc.p
	q := p.CoeffModulus()
	prng, err := p.NewPRNG()
	if err != nil {
		return nil, err
	}
	u := ring.NewTernarySampler(prng, q).Sample(p.N())
	e1 := ring.NewGaussianSampler(prng, q, p.NoiseStandardDeviation(), p.NoiseMaxDeviation()).Sample(p.N())
	e2 := ring.NewGaussianSampler(prng, q, p.NoiseStandardDeviation(), p.NoiseMaxDeviation()).Sample(p.N())

	scaled, err := scalePlaintext(p, pt.Value)
	if err != nil {
		return nil, err
	}

	p0u, err := multiply(p, enc.pk.Value.Polys[0], u)
	if err != nil {
		return nil, err
	}
	p1u, err := multiply(p, enc.pk.Value.Polys[1], u)
	if err != nil {
		return nil, err
	}

	tWide := wideint.New(q.BitCount())
	tWide.SetBig(p.PlainModulus().Value().ToBig())
	tE1 := ring.ScalarMulMod(e1, tWide, q)
	tE2 := ring.ScalarMulMod(e2, tWide, q)

	c0, err := ring.AddMod(p0u, tE1, q)
	if err != nil {
		return nil, err
	}
	c0, err = ring.AddMod(c0, scaled, q)
	if err != nil {
		return nil, err
	}
	c1, err := ring.AddMod(p1u, tE2, q)
	if err != nil {
		return nil, err
	}

	return &rlwe.Ciphertext{Value: &ring.Array{Polys: []*ring.Polynomial{c0, c1}}}, nil
}

// scalePlaintext lifts pt by "upper-half folding" (spec.md §4.5: any
// coefficient ≥ ⌈t/2⌉ is re-expressed as coeff + (q − t·Δ) so it lands
// in the upper half of q) and scales by Δ.
func scalePlaintext(p *params.Parameters, pt *ring.Polynomial) (*ring.Polynomial, error) {
	q := p.CoeffModulus()
	tBig := p.PlainModulus().Value().ToBig()
	tHalf := new(big.Int).Rsh(new(big.Int).Add(tBig, big.NewInt(1)), 1)
	delta := p.Delta()
	upperHalfIncrement := p.UpperHalfIncrement()

	out := ring.NewPolynomial(pt.N(), q.BitCount())
	for i := 0; i < pt.N(); i++ {
		c := pt.Coeff(i).ToBig()
		scaled := new(big.Int).Mul(c, delta)
		if c.Cmp(tHalf) >= 0 {
			scaled.Add(scaled, upperHalfIncrement)
		}
		out.Coeff(i).SetBig(scaled)
	}
	return out, nil
}
