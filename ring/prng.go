package ring

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/latticego/fv/errs"
)

// PRNG is the random-generator factory interface named in spec.md §3's
// EncryptionParameters ("random-generator factory") and §6 ("Environment:
// ... Randomness source is taken from the random-generator factory"). It
// is just an io.Reader: samplers consume raw bytes from it.
type PRNG interface {
	io.Reader
}

// csprng is the default PRNG: an unkeyed, non-reproducible source backed
// by crypto/rand.
type csprng struct{}

func (csprng) Read(p []byte) (int, error) { return rand.Read(p) }

// NewPRNG returns the default CSPRNG-backed PRNG.
func NewPRNG() PRNG { return csprng{} }

// keyedPRNG is a deterministic, reproducible PRNG driven by a blake2b XOF
// seeded with a caller-supplied key, grounded on the teacher's
// utils.PRNG/CRPGenerator (also blake2b-keyed). Useful for reproducible
// tests and for any "common reference string" style use of the
// random-generator factory extension point.
type keyedPRNG struct {
	xof blake2b.XOF
}

// NewKeyedPRNG returns a deterministic PRNG seeded from key. Two
// keyedPRNGs constructed with the same key produce identical streams.
func NewKeyedPRNG(key []byte) (PRNG, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, errs.InvalidArgument("ring: keyed PRNG: %v", err)
	}
	return &keyedPRNG{xof: xof}, nil
}

func (k *keyedPRNG) Read(p []byte) (int, error) { return k.xof.Read(p) }
