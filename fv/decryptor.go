package fv

import (
	"math/big"

	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/rlwe"
	"github.com/latticego/fv/wideint"
)

// Decryptor decrypts ciphertexts under a fixed secret key. It maintains
// a cache of ascending powers of the secret key (s, s^2, s^3, ...),
// computed lazily and grown as needed, exactly as
// original_source/SEAL/decryptor.cpp's compute_secret_key_array: in
// NTT-domain representation when the NTT fast path is available (so
// growing the cache is a single pointwise multiply), or directly in
// coefficient representation via Nussbaumer otherwise.
type Decryptor struct {
	p  *params.Parameters
	sk *rlwe.SecretKey

	// powers[i] holds s^(i+1); powersNTT mirrors whether each entry is
	// stored in NTT representation.
	powers    []*ring.Polynomial
	powersNTT bool
}

// NewDecryptor returns a Decryptor for p using sk.
func NewDecryptor(p *params.Parameters, sk *rlwe.SecretKey) *Decryptor {
	return &Decryptor{p: p, sk: sk}
}

func (d *Decryptor) ensurePowers(count int) error {
	if len(d.powers) >= count {
		return nil
	}
	q := d.p.CoeffModulus()
	tbl := d.p.NTTTable()

	if len(d.powers) == 0 {
		first := d.sk.Value.Clone()
		if tbl != nil {
			if err := tbl.Forward(first); err != nil {
				return err
			}
			d.powersNTT = true
		}
		d.powers = append(d.powers, first)
	}

	for len(d.powers) < count {
		prev := d.powers[len(d.powers)-1]
		var next *ring.Polynomial
		var err error
		if d.powersNTT {
			next, err = ring.PointwiseMultiply(prev, d.powers[0], q)
		} else {
			next, err = ring.NussbaumerMultiply(prev, d.sk.Value, q)
		}
		if err != nil {
			return err
		}
		d.powers = append(d.powers, next)
	}
	return nil
}

// Decrypt returns the plaintext encrypted by c.
func (d *Decryptor) Decrypt(c *rlwe.Ciphertext) (*rlwe.Plaintext, error) {
	x, err := d.dotProductPlusC0(c)
	if err != nil {
		return nil, err
	}
	return d.fold(x)
}

// dotProductPlusC0 computes c0 + sum_{j=1}^{size-1} c_j * s^j mod q.
func (d *Decryptor) dotProductPlusC0(c *rlwe.Ciphertext) (*ring.Polynomial, error) {
	q := d.p.CoeffModulus()
	terms := c.Size() - 1
	if err := d.ensurePowers(terms); err != nil {
		return nil, err
	}

	tail := c.Value.Polys[1:]
	var dot *ring.Polynomial
	var err error
	if d.powersNTT {
		tailNTT := make([]*ring.Polynomial, terms)
		tbl := d.p.NTTTable()
		for i, poly := range tail {
			clone := poly.Clone()
			if err := tbl.Forward(clone); err != nil {
				return nil, err
			}
			tailNTT[i] = clone
		}
		dot, err = ring.DotProductNTT(tailNTT, d.powers[:terms], q)
		if err != nil {
			return nil, err
		}
		if err := tbl.Inverse(dot); err != nil {
			return nil, err
		}
	} else {
		dot, err = ring.DotProductNussbaumer(tail, d.powers[:terms], q)
		if err != nil {
			return nil, err
		}
	}

	return ring.AddMod(dot, c.Value.Polys[0], q)
}

// fold applies spec.md §4.5's decryption rounding: add Δ/2, fold back
// from the upper half if needed, then integer-divide by Δ.
func (d *Decryptor) fold(x *ring.Polynomial) (*rlwe.Plaintext, error) {
	q := d.p.CoeffModulus()
	qBig := q.Value().ToBig()
	delta := d.p.Delta()
	deltaHalf := d.p.DeltaHalf()
	upperHalfThreshold := d.p.UpperHalfThreshold()
	upperHalfIncrement := d.p.UpperHalfIncrement()

	pt := rlwe.NewPlaintext(x.N(), d.p.PlainModulus().BitCount())
	for i := 0; i < x.N(); i++ {
		v := new(big.Int).Add(x.Coeff(i).ToBig(), deltaHalf)
		v.Mod(v, qBig)
		if v.Cmp(upperHalfThreshold) >= 0 {
			v.Sub(v, upperHalfIncrement)
		}
		v.Quo(v, delta)
		pt.Value.Coeff(i).SetBig(v)
	}
	return pt, nil
}

// InherentNoise returns the ∞-norm mod q of the noise polynomial
// carried by c: recompute x = c0 + sum c_j*s^j as in Decrypt, then
// subtract Δ*m (spec.md §4.5).
func (d *Decryptor) InherentNoise(c *rlwe.Ciphertext, m *rlwe.Plaintext) (*big.Int, error) {
	q := d.p.CoeffModulus()
	x, err := d.dotProductPlusC0(c)
	if err != nil {
		return nil, err
	}
	scaled, err := scalePlaintext(d.p, m.Value)
	if err != nil {
		return nil, err
	}
	noise, err := ring.SubMod(x, scaled, q)
	if err != nil {
		return nil, err
	}
	return ring.InfinityNormMod(noise, q), nil
}

// invariantNoiseNorm computes x*t mod q's ∞-norm, the quantity both
// InvariantNoiseBudget and FractionalInvariantNoiseBudget reduce to
// bits of.
func (d *Decryptor) invariantNoiseNorm(c *rlwe.Ciphertext) (*big.Int, error) {
	q := d.p.CoeffModulus()
	x, err := d.dotProductPlusC0(c)
	if err != nil {
		return nil, err
	}

	tWide := wideint.New(q.BitCount())
	tWide.SetBig(d.p.PlainModulus().Value().ToBig())
	scaled := ring.ScalarMulMod(x, tWide, q)

	return ring.InfinityNormMod(scaled, q), nil
}

// InvariantNoiseBudget reports the remaining noise budget of c alone,
// with no plaintext required (spec.md §4.5): recompute x as in Decrypt,
// multiply by t, reduce mod q, take the ∞-norm, and return
// max(0, bits(q) - bits(norm) - 1). Matches
// original_source/SEAL/decryptor.cpp's invariant_noise_budget(), which
// likewise takes only the ciphertext.
func (d *Decryptor) InvariantNoiseBudget(c *rlwe.Ciphertext) (int, error) {
	norm, err := d.invariantNoiseNorm(c)
	if err != nil {
		return 0, err
	}
	q := d.p.CoeffModulus()
	qBits := q.Value().ToBig().BitLen()
	normBits := norm.BitLen()

	budget := qBits - normBits - 1
	if budget < 0 {
		budget = 0
	}
	return budget, nil
}
