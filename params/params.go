package params

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/wideint"
)

// Parameters is an immutable, validated parameter set: the only way to
// obtain one is NewParameters, which returns either a Parameters with
// ParametersSet()==true and its full Qualifiers, or an error. There is
// no exported representation of "constructed but not yet validated" or
// "validated but invalid" -- see the package doc and DESIGN.md.
type Parameters struct {
	literal Literal

	n            int
	coeffModulus *wideint.Modulus
	plainModulus *wideint.Modulus

	decompositionBitCount int
	noiseStandardDeviation float64
	noiseMaxDeviation      float64

	prngFactory func() (ring.PRNG, error)

	qualifiers Qualifiers

	nttQ *ring.NTTTable // nil unless qualifiers.EnableNTT
	nttT *ring.NTTTable // nil unless qualifiers.EnableBatching

	delta               *big.Int
	upperHalfThreshold  *big.Int
	upperHalfIncrement  *big.Int
	deltaHalf           *big.Int
}

// N returns the cyclotomic degree.
func (p *Parameters) N() int { return p.n }

// CoeffModulus returns the ciphertext-space modulus descriptor.
func (p *Parameters) CoeffModulus() *wideint.Modulus { return p.coeffModulus }

// PlainModulus returns the plaintext-space modulus descriptor.
func (p *Parameters) PlainModulus() *wideint.Modulus { return p.plainModulus }

// DecompositionBitCount returns the base-2^w relinearization gadget
// width (0 disables relinearization).
func (p *Parameters) DecompositionBitCount() int { return p.decompositionBitCount }

// NoiseStandardDeviation returns the Gaussian sampler's sigma.
func (p *Parameters) NoiseStandardDeviation() float64 { return p.noiseStandardDeviation }

// NoiseMaxDeviation returns the Gaussian sampler's clipping bound B.
func (p *Parameters) NoiseMaxDeviation() float64 { return p.noiseMaxDeviation }

// Qualifiers returns the fast-path qualifiers derived during
// validation.
func (p *Parameters) Qualifiers() Qualifiers { return p.qualifiers }

// Literal returns the unvalidated configuration record p was built
// from, letting a caller persist and later reconstruct this parameter
// set (spec.md §6's persisted encryption-parameters format).
func (p *Parameters) Literal() Literal { return p.literal }

// Equal reports whether p and other describe the same validated
// parameter set, comparing every field that participates in the
// parameter-hash binding of spec.md §6. Grounded on the teacher's own
// Parameters.Equal (core/rlwe/params.go), which likewise leans on
// cmp.Equal for its field-by-field comparison instead of reflect.DeepEqual.
func (p *Parameters) Equal(other *Parameters) bool {
	if other == nil {
		return false
	}
	return cmp.Equal(p.literal, other.literal) &&
		p.n == other.n &&
		p.coeffModulus.Value().ToBig().Cmp(other.coeffModulus.Value().ToBig()) == 0 &&
		p.plainModulus.Value().ToBig().Cmp(other.plainModulus.Value().ToBig()) == 0
}

// NewPRNG constructs a fresh random-generator-factory instance per
// spec.md §6's "Environment" paragraph.
func (p *Parameters) NewPRNG() (ring.PRNG, error) { return p.prngFactory() }

// NTTTable returns the coeff_modulus NTT table, or nil if
// Qualifiers().EnableNTT is false.
func (p *Parameters) NTTTable() *ring.NTTTable { return p.nttQ }

// BatchingNTTTable returns the plain_modulus NTT table used by
// PolyCRTBuilder, or nil if Qualifiers().EnableBatching is false.
func (p *Parameters) BatchingNTTTable() *ring.NTTTable { return p.nttT }

// Delta returns ⌊q/t⌋, the plaintext-scaling factor.
func (p *Parameters) Delta() *big.Int { return new(big.Int).Set(p.delta) }

// UpperHalfThreshold returns ⌈q/2⌉.
func (p *Parameters) UpperHalfThreshold() *big.Int { return new(big.Int).Set(p.upperHalfThreshold) }

// UpperHalfIncrement returns q − t·Δ.
func (p *Parameters) UpperHalfIncrement() *big.Int { return new(big.Int).Set(p.upperHalfIncrement) }

// DeltaHalf returns the decryption rounding offset Δ/2 (floor).
func (p *Parameters) DeltaHalf() *big.Int { return new(big.Int).Set(p.deltaHalf) }

// NewParameters parses and validates lit, stopping at the first failure
// in this order: non-empty moduli and non-negative decomposition/noise
// parameters, then the poly_modulus shape check (must be X^N+1 for N a
// power of two, always true for every poly_modulus this library accepts,
// hence EnableNussbaumer is unconditionally true once the basic checks
// pass), then parsing of the hex moduli and plain_modulus <
// coeff_modulus, then the independent EnableRelinearization/EnableNTT/EnableBatching
// checks. Any basic-shape failure returns an error with
// Qualifiers.ParametersSet left false in that error's context; callers
// that want a non-fatal "is this valid" check should inspect the
// returned error, not probe further, per the stricter
// {Unvalidated -> Invalid | Valid} state machine adopted for this
// reimplementation.
func NewParameters(lit Literal) (*Parameters, error) {
	if strings.TrimSpace(lit.PolyModulus) == "" {
		return nil, errs.InvalidArgument("params: poly_modulus is required")
	}
	if strings.TrimSpace(lit.CoeffModulus) == "" {
		return nil, errs.InvalidArgument("params: coeff_modulus is required")
	}
	if strings.TrimSpace(lit.PlainModulus) == "" {
		return nil, errs.InvalidArgument("params: plain_modulus is required")
	}
	if lit.DecompositionBitCount < 0 {
		return nil, errs.InvalidArgument("params: decomposition_bit_count must be non-negative")
	}
	if lit.NoiseStandardDeviation < 0 || lit.NoiseMaxDeviation < 0 {
		return nil, errs.InvalidArgument("params: noise parameters must be non-negative")
	}

	n, err := parseCyclotomicDegree(lit.PolyModulus)
	if err != nil {
		return nil, err
	}

	coeffBig, ok := new(big.Int).SetString(lit.CoeffModulus, 16)
	if !ok {
		return nil, errs.Parse("params: malformed coeff_modulus hex %q", lit.CoeffModulus)
	}
	plainBig, ok := new(big.Int).SetString(lit.PlainModulus, 16)
	if !ok {
		return nil, errs.Parse("params: malformed plain_modulus hex %q", lit.PlainModulus)
	}
	if plainBig.Cmp(coeffBig) >= 0 {
		return nil, errs.InvalidArgument("params: plain_modulus must be strictly less than coeff_modulus")
	}

	coeffW := wideint.New(coeffBig.BitLen())
	coeffW.SetBig(coeffBig)
	coeffModulus, err := wideint.NewModulus(coeffW)
	if err != nil {
		return nil, err
	}
	plainW := wideint.New(plainBig.BitLen())
	plainW.SetBig(plainBig)
	plainModulus, err := wideint.NewModulus(plainW)
	if err != nil {
		return nil, err
	}

	q := Qualifiers{ParametersSet: true, EnableNussbaumer: true}
	if lit.DecompositionBitCount > 0 {
		q.EnableRelinearization = true
	}

	var nttQ, nttT *ring.NTTTable
	if tbl, err := ring.NewNTTTable(n, coeffModulus); err == nil {
		q.EnableNTT = true
		nttQ = tbl
	}
	if tbl, err := ring.NewNTTTable(n, plainModulus); err == nil {
		q.EnableBatching = true
		nttT = tbl
	}

	delta := new(big.Int).Quo(coeffBig, plainBig)
	upperHalfThreshold := new(big.Int).Add(coeffBig, big.NewInt(1))
	upperHalfThreshold.Rsh(upperHalfThreshold, 1)
	upperHalfIncrement := new(big.Int).Sub(coeffBig, new(big.Int).Mul(plainBig, delta))
	deltaHalf := new(big.Int).Rsh(delta, 1)

	prngFactory, err := buildPRNGFactory(lit)
	if err != nil {
		return nil, err
	}

	return &Parameters{
		literal:                lit,
		n:                      n,
		coeffModulus:           coeffModulus,
		plainModulus:           plainModulus,
		decompositionBitCount:  lit.DecompositionBitCount,
		noiseStandardDeviation: lit.NoiseStandardDeviation,
		noiseMaxDeviation:      lit.NoiseMaxDeviation,
		prngFactory:            prngFactory,
		qualifiers:             q,
		nttQ:                   nttQ,
		nttT:                   nttT,
		delta:                  delta,
		upperHalfThreshold:     upperHalfThreshold,
		upperHalfIncrement:     upperHalfIncrement,
		deltaHalf:              deltaHalf,
	}, nil
}

func buildPRNGFactory(lit Literal) (func() (ring.PRNG, error), error) {
	switch lit.RandomGenerator {
	case "", "csprng":
		return func() (ring.PRNG, error) { return ring.NewPRNG(), nil }, nil
	case "keyed":
		key, ok := new(big.Int).SetString(lit.RandomGeneratorKey, 16)
		if !ok {
			return nil, errs.Parse("params: malformed random_generator_key hex %q", lit.RandomGeneratorKey)
		}
		keyBytes := key.Bytes()
		return func() (ring.PRNG, error) { return ring.NewKeyedPRNG(keyBytes) }, nil
	default:
		return nil, errs.UnsupportedConfig("params: unknown random_generator %q", lit.RandomGenerator)
	}
}

// parseCyclotomicDegree requires s to be exactly the textual form
// "1x^N + 1" (spec.md §6's format specialized to X^N+1), and requires N
// to be a power of two, per the original's "poly_mod.is_fft_modulus()"
// check -- the only cyclotomic shape this library supports (spec.md
// Non-goals: "no non-power-of-two cyclotomics").
func parseCyclotomicDegree(s string) (int, error) {
	parts := strings.Split(s, " + ")
	if len(parts) != 2 || parts[1] != "1" {
		return 0, errs.Parse("params: poly_modulus %q is not of the form 1x^N + 1", s)
	}
	lead := parts[0]
	idx := strings.Index(lead, "x^")
	if idx != 1 || lead[:1] != "1" {
		return 0, errs.Parse("params: poly_modulus %q is not of the form 1x^N + 1", s)
	}
	n, err := strconv.Atoi(lead[idx+2:])
	if err != nil {
		return 0, errs.Parse("params: poly_modulus %q has a malformed degree: %v", s, err)
	}
	if n <= 0 || n&(n-1) != 0 {
		return 0, errs.UnsupportedConfig("params: poly_modulus degree %d is not a power of two", n)
	}
	return n, nil
}

// InherentNoiseMax returns the maximum inherent noise a fresh
// ciphertext can carry before decryption fails, per
// original_source/SEAL/encryptionparams.cpp's inherent_noise_max:
// floor((floor(q/t) - (q mod t)) / 2), or zero if that subtraction
// would go negative (possible for extreme parameter choices where
// q mod t exceeds floor(q/t)).
func (p *Parameters) InherentNoiseMax() *big.Int {
	qBig := p.coeffModulus.Value().ToBig()
	tBig := p.plainModulus.Value().ToBig()
	coeffDivPlain := new(big.Int).Quo(qBig, tBig)
	remainder := new(big.Int).Rem(qBig, tBig)
	if coeffDivPlain.Cmp(remainder) < 0 {
		return new(big.Int)
	}
	diff := new(big.Int).Sub(coeffDivPlain, remainder)
	return diff.Rsh(diff, 1)
}
