package rlwe

import (
	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/ring"
)

// Ciphertext is a size-K array of polynomials, per spec.md §3's
// ciphertext data model (fresh ciphertexts have size 2; homomorphic
// multiply grows the size; relinearize shrinks it back down).
type Ciphertext struct {
	Value *ring.Array

	// IsNTT records whether Value's polynomials are currently held in
	// NTT/evaluation representation (spec.md §4.3's
	// transform_to_ntt/transform_from_ntt operations).
	IsNTT bool
}

// NewCiphertext allocates a zero-valued ciphertext of the given size
// (number of polynomials), each with n coefficients of coeffBitCount
// bits.
func NewCiphertext(size, n, coeffBitCount int) *Ciphertext {
	return &Ciphertext{Value: ring.NewArray(size, n, coeffBitCount)}
}

// Size returns the number of polynomials (K) in the ciphertext.
func (c *Ciphertext) Size() int { return c.Value.Size() }

// Clone returns a deep, owned copy of c.
func (c *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{Value: c.Value.Clone(), IsNTT: c.IsNTT}
}

// Plaintext is a single polynomial in plaintext space (coefficients in
// [0, t)), per spec.md §3.
type Plaintext struct {
	Value *ring.Polynomial
}

// NewPlaintext allocates a zero-valued plaintext of n coefficients of
// plainBitCount bits.
func NewPlaintext(n, plainBitCount int) *Plaintext {
	return &Plaintext{Value: ring.NewPolynomial(n, plainBitCount)}
}

// RequireSize returns an error unless c has exactly the given size --
// used by evaluator operations that only accept fresh (size-2)
// ciphertexts, such as add_plain/sub_plain/multiply_plain.
func RequireSize(c *Ciphertext, size int) error {
	if c.Size() != size {
		return errs.InvalidArgument("rlwe: expected ciphertext of size %d, got %d", size, c.Size())
	}
	return nil
}
