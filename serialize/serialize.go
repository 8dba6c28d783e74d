// Package serialize implements the little-endian, self-describing-by-shape
// binary formats of spec.md §6: wide integers, polynomials, polynomial
// arrays, encryption parameters, evaluation keys, and ciphertexts. Grounded
// on the teacher's buffer/structs serialization helpers
// (_examples/tuneinsight-lattigo/utils/buffer, utils/structs) for the
// read/write-primitive shape, generalized from their io.Reader/io.Writer
// pattern to this module's wideint/ring/params/rlwe types. Load always
// resizes a target up to fit incoming data, never down (spec.md §6's
// "Load policy on size mismatch").
package serialize

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/rlwe"
	"github.com/latticego/fv/wideint"
)

func writeInt32(w io.Writer, v int32) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return errs.IO("serialize: write int32: %v", err)
	}
	return nil
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, errs.IO("serialize: truncated stream reading int32: %v", err)
	}
	return v, nil
}

func writeString(w io.Writer, s string) error {
	if err := writeInt32(w, int32(len(s))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return errs.IO("serialize: write string: %v", err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errs.IO("serialize: truncated stream reading string: %v", err)
	}
	return string(buf), nil
}

// SaveWideUint writes v as: int32 bit_count, then ceil(bit_count/64)
// little-endian 64-bit limbs.
func SaveWideUint(w io.Writer, v *wideint.WideUint) error {
	if err := writeInt32(w, int32(v.BitCount())); err != nil {
		return err
	}
	need := wideint.LimbsFor(v.BitCount())
	limbs := v.Limbs()
	for i := 0; i < need; i++ {
		var limb uint64
		if i < len(limbs) {
			limb = limbs[i]
		}
		if err := binary.Write(w, binary.LittleEndian, limb); err != nil {
			return errs.IO("serialize: write wide-integer limb: %v", err)
		}
	}
	return nil
}

// LoadWideUint reads a wide integer into target, resizing target up (but
// never down) to fit the stored bit_count.
func LoadWideUint(r io.Reader, target *wideint.WideUint) error {
	bitCount, err := readInt32(r)
	if err != nil {
		return err
	}
	need := wideint.LimbsFor(int(bitCount))
	limbs := make([]uint64, need)
	for i := range limbs {
		if err := binary.Read(r, binary.LittleEndian, &limbs[i]); err != nil {
			return errs.IO("serialize: truncated wide-integer stream: %v", err)
		}
	}
	if int(bitCount) > target.BitCount() {
		if err := target.Resize(int(bitCount)); err != nil {
			return err
		}
	}
	tmp, err := wideint.Borrow(limbs, int(bitCount))
	if err != nil {
		return errs.IO("serialize: malformed wide-integer stream: %v", err)
	}
	target.SetBig(tmp.ToBig())
	return nil
}

// SavePolynomial writes p as: int32 coeff_count, int32 coeff_bit_count,
// then each coefficient in order in SaveWideUint's format, i.e. with its
// own int32 bit_count ahead of its limbs; the coefficient limbs are not
// written as one contiguous limb array.
func SavePolynomial(w io.Writer, p *ring.Polynomial) error {
	if err := writeInt32(w, int32(p.N())); err != nil {
		return err
	}
	if err := writeInt32(w, int32(p.BitCount())); err != nil {
		return err
	}
	for i := 0; i < p.N(); i++ {
		if err := SaveWideUint(w, p.Coeff(i)); err != nil {
			return err
		}
	}
	return nil
}

// LoadPolynomial reads a polynomial into target, resizing target up (but
// never down) in both coefficient count and bit-width; coefficients
// beyond the stored count are left zero-padded.
func LoadPolynomial(r io.Reader, target *ring.Polynomial) error {
	n, err := readInt32(r)
	if err != nil {
		return err
	}
	bitCount, err := readInt32(r)
	if err != nil {
		return err
	}
	newN := target.N()
	if int(n) > newN {
		newN = int(n)
	}
	newBitCount := target.BitCount()
	if int(bitCount) > newBitCount {
		newBitCount = int(bitCount)
	}
	if newN != target.N() || newBitCount != target.BitCount() {
		if err := target.Resize(newN, newBitCount); err != nil {
			return err
		}
	}
	for i := 0; i < int(n); i++ {
		if err := LoadWideUint(r, target.Coeff(i)); err != nil {
			return err
		}
	}
	return nil
}

// SaveArray writes a as: int32 size, then size polynomials.
func SaveArray(w io.Writer, a *ring.Array) error {
	if err := writeInt32(w, int32(a.Size())); err != nil {
		return err
	}
	for _, p := range a.Polys {
		if err := SavePolynomial(w, p); err != nil {
			return err
		}
	}
	return nil
}

// LoadArray reads a polynomial array, growing target's slice up to the
// stored size (never shrinking it) and loading each polynomial in place.
func LoadArray(r io.Reader, target *ring.Array, n, bitCount int) error {
	size, err := readInt32(r)
	if err != nil {
		return err
	}
	for len(target.Polys) < int(size) {
		target.Polys = append(target.Polys, ring.NewPolynomial(n, bitCount))
	}
	for i := 0; i < int(size); i++ {
		if err := LoadPolynomial(r, target.Polys[i]); err != nil {
			return err
		}
	}
	return nil
}

// SaveParameters writes lit as: poly_modulus, coeff_modulus,
// aux_coeff_modulus (reserved; currently always empty), plain_modulus as
// length-prefixed strings, then noise_standard_deviation,
// noise_max_deviation as float64, decomposition_bit_count as int32.
func SaveParameters(w io.Writer, lit params.Literal) error {
	for _, s := range []string{lit.PolyModulus, lit.CoeffModulus, "", lit.PlainModulus} {
		if err := writeString(w, s); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, lit.NoiseStandardDeviation); err != nil {
		return errs.IO("serialize: write noise_standard_deviation: %v", err)
	}
	if err := binary.Write(w, binary.LittleEndian, lit.NoiseMaxDeviation); err != nil {
		return errs.IO("serialize: write noise_max_deviation: %v", err)
	}
	if err := writeInt32(w, int32(lit.DecompositionBitCount)); err != nil {
		return err
	}
	return nil
}

// LoadParameters reads a Literal written by SaveParameters. The reserved
// aux_coeff_modulus field is read and discarded.
func LoadParameters(r io.Reader) (params.Literal, error) {
	var lit params.Literal
	var err error
	if lit.PolyModulus, err = readString(r); err != nil {
		return params.Literal{}, err
	}
	if lit.CoeffModulus, err = readString(r); err != nil {
		return params.Literal{}, err
	}
	if _, err = readString(r); err != nil { // aux_coeff_modulus, reserved
		return params.Literal{}, err
	}
	if lit.PlainModulus, err = readString(r); err != nil {
		return params.Literal{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &lit.NoiseStandardDeviation); err != nil {
		return params.Literal{}, errs.IO("serialize: truncated stream reading noise_standard_deviation: %v", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &lit.NoiseMaxDeviation); err != nil {
		return params.Literal{}, errs.IO("serialize: truncated stream reading noise_max_deviation: %v", err)
	}
	bitCount, err := readInt32(r)
	if err != nil {
		return params.Literal{}, err
	}
	lit.DecompositionBitCount = int(bitCount)
	return lit, nil
}

// SaveEvaluationKeys writes ek as: int32 count, then count
// polynomial-array pairs.
func SaveEvaluationKeys(w io.Writer, ek *rlwe.EvaluationKeys) error {
	if err := writeInt32(w, int32(ek.Count())); err != nil {
		return err
	}
	for _, pair := range ek.Keys {
		if err := SaveArray(w, pair); err != nil {
			return err
		}
	}
	return nil
}

// LoadEvaluationKeys reads evaluation keys produced by SaveEvaluationKeys.
func LoadEvaluationKeys(r io.Reader, n, bitCount int) (*rlwe.EvaluationKeys, error) {
	count, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	keys := make([]*ring.Array, count)
	for i := range keys {
		pair := ring.NewArray(2, n, bitCount)
		if err := LoadArray(r, pair, n, bitCount); err != nil {
			return nil, err
		}
		keys[i] = pair
	}
	return &rlwe.EvaluationKeys{Keys: keys}, nil
}

// ParameterHash returns a short binding tag for p, derived from its
// literal configuration via blake2b (already wired for the keyed PRNG),
// suitable as the optional ciphertext-binding prefix named in spec.md
// §6.
func ParameterHash(p *params.Parameters) ([]byte, error) {
	lit := p.Literal()
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, errs.IO("serialize: blake2b init: %v", err)
	}
	if err := SaveParameters(h, lit); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// SaveCiphertext writes c as: int32 hash length (0 when hash is empty)
// followed by the hash bytes, binding the ciphertext to a specific
// parameter set; then int32 size, int32 coeff_count, int32
// coeff_mod_count (always 1 -- this library has a single coefficient
// modulus, unlike the teacher's RNS representation), then the
// coefficient array as written by SaveArray (which repeats size).
func SaveCiphertext(w io.Writer, c *rlwe.Ciphertext, hash []byte) error {
	if err := writeInt32(w, int32(len(hash))); err != nil {
		return err
	}
	if len(hash) > 0 {
		if _, err := w.Write(hash); err != nil {
			return errs.IO("serialize: write parameter-hash prefix: %v", err)
		}
	}
	if err := writeInt32(w, int32(c.Size())); err != nil {
		return err
	}
	if err := writeInt32(w, int32(c.Value.Polys[0].N())); err != nil {
		return err
	}
	if err := writeInt32(w, 1); err != nil {
		return err
	}
	return SaveArray(w, c.Value)
}

// LoadCiphertext reads a ciphertext produced by SaveCiphertext. If
// expectedHash is non-nil, the stored hash prefix (if any) must match it
// exactly or the load fails with errs.InvalidArgument.
func LoadCiphertext(r io.Reader, n, bitCount int, expectedHash []byte) (*rlwe.Ciphertext, error) {
	hashLen, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	var storedHash []byte
	if hashLen > 0 {
		storedHash = make([]byte, hashLen)
		if _, err := io.ReadFull(r, storedHash); err != nil {
			return nil, errs.IO("serialize: truncated parameter-hash prefix: %v", err)
		}
	}
	if expectedHash != nil {
		if len(storedHash) == 0 || !bytesEqual(storedHash, expectedHash) {
			return nil, errs.InvalidArgument("serialize: ciphertext parameter-hash prefix does not match the supplied parameters")
		}
	}

	size, err := readInt32(r)
	if err != nil {
		return nil, err
	}
	if _, err := readInt32(r); err != nil { // coeff_count, recovered via LoadArray below
		return nil, err
	}
	if _, err := readInt32(r); err != nil { // coeff_mod_count, always 1
		return nil, err
	}

	c := rlwe.NewCiphertext(int(size), n, bitCount)
	if err := LoadArray(r, c.Value, n, bitCount); err != nil {
		return nil, err
	}
	return c, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
