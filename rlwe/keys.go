package rlwe

import "github.com/latticego/fv/ring"

// SecretKey holds the ternary secret polynomial s (spec.md §4.5).
type SecretKey struct {
	Value *ring.Polynomial
}

// PublicKey holds the two-polynomial public key (p0, p1) = (-(a*s+t*e), a)
// for a uniform a, small error e and plain modulus t (spec.md §4.5).
type PublicKey struct {
	Value *ring.Array
}

// EvaluationKeys holds the ordered sequence of key-pairs used to
// relinearize a size-3 ciphertext back to size 2, one pair per base-2^w
// gadget decomposition digit of the relinearization target s^2 (spec.md
// §4.5's "relinearization via base-2^w gadget decomposition").
type EvaluationKeys struct {
	// Keys[i] = (evk0_i, evk1_i), each an encryption of s^2 * 2^(w*i)
	// under the secret key, following the same (p0,p1) shape as
	// PublicKey.
	Keys []*ring.Array
}

// Count returns the number of gadget-decomposition digits (L).
func (e *EvaluationKeys) Count() int { return len(e.Keys) }
