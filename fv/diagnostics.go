package fv

import (
	"math/big"

	"github.com/ALTree/bigfloat"
	"github.com/montanaflynn/stats"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/rlwe"
)

// log2Precision is the mantissa precision (in bits) used for the
// arbitrary-precision log2 evaluation below.
const log2Precision = 128

var ln2 = bigfloat.Log(new(big.Float).SetPrec(log2Precision).SetInt64(2))

// FractionalInvariantNoiseBudget returns a fractional counterpart of
// (*Decryptor).InvariantNoiseBudget, with no plaintext required:
// log2(q) - log2(norm) - 1 of the same invariant-noise norm, computed with
// arbitrary-precision big.Float arithmetic (github.com/ALTree/bigfloat's
// extension of math/big with Log). Unlike the integer budget it is not
// clamped at zero, and for a zero norm it returns bits(q). It serves
// callers tracking a ciphertext across many chained
// multiplications where the integer budget's truncation to whole bits
// would hide how close a value sits to the next bit boundary.
func (d *Decryptor) FractionalInvariantNoiseBudget(c *rlwe.Ciphertext) (*big.Float, error) {
	norm, err := d.invariantNoiseNorm(c)
	if err != nil {
		return nil, err
	}
	q := d.p.CoeffModulus()
	qBig := q.Value().ToBig()

	prec := uint(log2Precision)
	if norm.Sign() == 0 {
		return new(big.Float).SetPrec(prec).SetInt64(int64(qBig.BitLen())), nil
	}

	logQ := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt(qBig))
	logNorm := bigfloat.Log(new(big.Float).SetPrec(prec).SetInt(norm))
	diff := new(big.Float).SetPrec(prec).Sub(logQ, logNorm)
	diff.Quo(diff, ln2)
	return diff.Sub(diff, big.NewFloat(1)), nil
}

// NoiseBudgetStatistics summarizes the invariant noise budget (spec.md
// §4.5) across a batch of ciphertexts, via github.com/montanaflynn/stats
// -- the kind of noise-growth sampling the teacher's benchmark suite
// performs by hand with plain float64 accumulation (see
// _examples/tuneinsight-lattigo/core/rlwe, whose params.go carries
// bigfloat/stats in its own require block for the same class of
// precision-sensitive diagnostics).
func (d *Decryptor) NoiseBudgetStatistics(cts []*rlwe.Ciphertext) (mean, stddev, min, max float64, err error) {
	if len(cts) == 0 {
		return 0, 0, 0, 0, errs.InvalidArgument("fv: noise budget statistics require at least one ciphertext")
	}
	data := make(stats.Float64Data, len(cts))
	for i, c := range cts {
		budget, err := d.InvariantNoiseBudget(c)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		data[i] = float64(budget)
	}
	if mean, err = data.Mean(); err != nil {
		return 0, 0, 0, 0, errs.InvalidState("fv: noise budget mean: %v", err)
	}
	if stddev, err = data.StandardDeviation(); err != nil {
		return 0, 0, 0, 0, errs.InvalidState("fv: noise budget standard deviation: %v", err)
	}
	if min, err = data.Min(); err != nil {
		return 0, 0, 0, 0, errs.InvalidState("fv: noise budget min: %v", err)
	}
	if max, err = data.Max(); err != nil {
		return 0, 0, 0, 0, errs.InvalidState("fv: noise budget max: %v", err)
	}
	return mean, stddev, min, max, nil
}
