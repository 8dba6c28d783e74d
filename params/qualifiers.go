// Package params implements the L0.5 parameter layer of spec.md §4.1:
// the unchecked Literal configuration record, the validated Parameters
// record, and the derived Qualifiers describing which fast paths a
// validated parameter set supports. Grounded on
// original_source/SEAL/encryptionparams.cpp's validate()/
// EncryptionParameterQualifiers, reimplemented against this module's
// wideint/ring types and adopting the stricter
// {Unvalidated -> Invalid | Valid(qualifiers)} state machine recorded
// as an Open Question resolution in DESIGN.md, rather than the
// original's mutable validated_/qualifiers_ pair.
package params

// Qualifiers records which optional fast paths a validated parameter
// set supports. A caller only ever observes a Qualifiers value attached
// to a successfully validated Parameters (see NewParameters); there is
// no exported "invalid but constructed" state.
type Qualifiers struct {
	// ParametersSet is true for every Qualifiers returned by
	// NewParameters, and is kept for parity with spec.md's vocabulary
	// and for round-tripping through serialize.
	ParametersSet bool

	// EnableNussbaumer is true iff poly_modulus is X^N+1 for N a power
	// of two, which is required for this library's single cyclotomic
	// shape and is therefore always true once ParametersSet is true.
	EnableNussbaumer bool

	// EnableRelinearization is true iff decomposition_bit_count > 0.
	EnableRelinearization bool

	// EnableNTT is true iff coeff_modulus admits a primitive 2N-th
	// root of unity (coeff_modulus ≡ 1 mod 2N).
	EnableNTT bool

	// EnableBatching is true iff plain_modulus admits a primitive
	// 2N-th root of unity (plain_modulus ≡ 1 mod 2N), required for
	// PolyCRTBuilder.
	EnableBatching bool
}
