package params

// Literal is the unvalidated, human-editable configuration record for a
// parameter set, grounded on spec.md §6.3's yaml-backed configuration
// surface and on the teacher's ParametersLiteral pattern (see
// _examples/tuneinsight-lattigo/bfv/params.go), but using yaml tags
// (gopkg.in/yaml.v3, already in the corpus dependency surface) rather
// than json, and strings rather than raw limb slices so a Literal can
// round-trip through a text config file by hand.
//
// PolyModulus must be the textual cyclotomic shape "1x^N + 1" (spec.md
// §6's textual polynomial format, specialized to this library's single
// supported cyclotomic family) for N a power of two. CoeffModulus and
// PlainModulus are lower-case hex strings (no "0x" prefix), matching
// the hex-digit convention of the same textual format.
type Literal struct {
	PolyModulus            string  `yaml:"poly_modulus"`
	CoeffModulus           string  `yaml:"coeff_modulus"`
	PlainModulus           string  `yaml:"plain_modulus"`
	DecompositionBitCount  int     `yaml:"decomposition_bit_count"`
	NoiseStandardDeviation float64 `yaml:"noise_standard_deviation"`
	NoiseMaxDeviation      float64 `yaml:"noise_max_deviation"`

	// RandomGenerator selects the random-generator factory (spec.md
	// §6's "Environment" paragraph): "" or "csprng" for the default
	// CSPRNG, "keyed" for a deterministic blake2b-keyed PRNG seeded by
	// RandomGeneratorKey (hex).
	RandomGenerator    string `yaml:"random_generator,omitempty"`
	RandomGeneratorKey string `yaml:"random_generator_key,omitempty"`
}
