package fv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/rlwe"
)

// testLiteral returns a parameter set with q much larger than t^2 so the
// t-scaled noise terms spec.md §4.5 prescribes stay well under Δ/2 for a
// handful of homomorphic operations. N=16, q≡1 mod 32 so the NTT fast
// path is exercised.
func testLiteral() params.Literal {
	return params.Literal{
		PolyModulus:            "1x^16 + 1",
		CoeffModulus:           "d0000001", // 3489660929, ≡1 mod 32
		PlainModulus:           "5",        // 5
		DecompositionBitCount:  8,
		NoiseStandardDeviation: 1.0,
		NoiseMaxDeviation:      6.0,
	}
}

func setup(t *testing.T) (*params.Parameters, *KeyGenerator) {
	p, err := params.NewParameters(testLiteral())
	require.NoError(t, err)
	return p, NewKeyGenerator(p)
}

func plaintextFromInts(n, bitCount int, vals []int64) *ring.Polynomial {
	pt := ring.NewPolynomial(n, bitCount)
	for i, v := range vals {
		pt.Coeff(i).SetBig(big.NewInt(v))
	}
	return pt
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)

	vals := make([]int64, p.N())
	for i := range vals {
		vals[i] = int64(i % 5)
	}
	ptIn := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), vals)

	ct, err := enc.Encrypt(&rlwe.Plaintext{Value: ptIn})
	require.NoError(t, err)

	out, err := dec.Decrypt(ct)
	require.NoError(t, err)
	for i, v := range vals {
		require.Equal(t, big.NewInt(v).Int64(), out.Value.Coeff(i).ToBig().Int64(), "coefficient %d mismatch", i)
	}
}

func TestHomomorphicAddMatchesPlaintextAddition(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, nil)

	a := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), []int64{1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1})
	b := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), []int64{4, 3, 2, 1, 0, 4, 3, 2, 1, 0, 4, 3, 2, 1, 0, 4})

	ctA, err := enc.Encrypt(&rlwe.Plaintext{Value: a})
	require.NoError(t, err)
	ctB, err := enc.Encrypt(&rlwe.Plaintext{Value: b})
	require.NoError(t, err)

	sum, err := ev.Add(ctA, ctB)
	require.NoError(t, err)

	out, err := dec.Decrypt(sum)
	require.NoError(t, err)

	t64 := p.PlainModulus().Value().ToBig().Int64()
	for i := 0; i < p.N(); i++ {
		want := (a.Coeff(i).ToBig().Int64() + b.Coeff(i).ToBig().Int64()) % t64
		require.Equal(t, want, out.Value.Coeff(i).ToBig().Int64(), "coefficient %d mismatch", i)
	}
}

func TestHomomorphicMultiplyAndRelinearize(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)
	evk, err := kg.GenEvaluationKeys(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, evk)

	a := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	b := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), []int64{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	ctA, err := enc.Encrypt(&rlwe.Plaintext{Value: a})
	require.NoError(t, err)
	ctB, err := enc.Encrypt(&rlwe.Plaintext{Value: b})
	require.NoError(t, err)

	prod, err := ev.Multiply(ctA, ctB)
	require.NoError(t, err)
	require.Equal(t, 3, prod.Size())

	relin, err := ev.Relinearize(prod)
	require.NoError(t, err)
	require.Equal(t, 2, relin.Size())

	out, err := dec.Decrypt(relin)
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Value.Coeff(0).ToBig().Int64())
	for i := 1; i < p.N(); i++ {
		require.Equal(t, int64(2), out.Value.Coeff(i).ToBig().Int64(), "coefficient %d mismatch", i)
	}
}

func TestNegateRoundTrips(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, nil)

	vals := make([]int64, p.N())
	vals[0] = 3
	pt := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), vals)
	ct, err := enc.Encrypt(&rlwe.Plaintext{Value: pt})
	require.NoError(t, err)

	neg := ev.Negate(ct)
	out, err := dec.Decrypt(neg)
	require.NoError(t, err)

	tVal := p.PlainModulus().Value().ToBig().Int64()
	require.Equal(t, (tVal-3)%tVal, out.Value.Coeff(0).ToBig().Int64())
}

func TestInherentNoiseMaxNonNegative(t *testing.T) {
	p, _ := setup(t)
	require.True(t, p.InherentNoiseMax().Sign() >= 0)
}

// TestInvariantNoiseBudgetRequiresNoPlaintext covers spec.md §4.5's
// invariant_noise_budget formula: computed from the ciphertext alone,
// positive for a fresh encryption, and shrinking once noise is driven
// up by a homomorphic multiply.
func TestInvariantNoiseBudgetRequiresNoPlaintext(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)
	evk, err := kg.GenEvaluationKeys(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, evk)

	vals := make([]int64, p.N())
	vals[0] = 2
	pt := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), vals)
	ct, err := enc.Encrypt(&rlwe.Plaintext{Value: pt})
	require.NoError(t, err)

	fresh, err := dec.InvariantNoiseBudget(ct)
	require.NoError(t, err)
	require.Greater(t, fresh, 0)

	prod, err := ev.Multiply(ct, ct)
	require.NoError(t, err)
	relin, err := ev.Relinearize(prod)
	require.NoError(t, err)

	afterMul, err := dec.InvariantNoiseBudget(relin)
	require.NoError(t, err)
	require.Less(t, afterMul, fresh)
}

// exponentiateLiteral uses a larger plain_modulus (1009, prime) than
// testLiteral so 5^3=125 doesn't wrap mod t, and a wider coeff_modulus
// so the two chained, relinearized multiplications exponentiation
// performs stay comfortably under the noise budget.
func exponentiateLiteral() params.Literal {
	return params.Literal{
		PolyModulus:            "1x^16 + 1",
		CoeffModulus:           "4000000e1", // 17179869409, ≡1 mod 32
		PlainModulus:           "3f1",       // 1009
		DecompositionBitCount:  8,
		NoiseStandardDeviation: 1.0,
		NoiseMaxDeviation:      6.0,
	}
}

// TestExponentiateMatchesRepeatedMultiply covers spec.md §8's S3
// scenario: encrypt(5), exponentiate to the 3rd power with evaluation
// keys, decrypt, expect 125.
func TestExponentiateMatchesRepeatedMultiply(t *testing.T) {
	p, err := params.NewParameters(exponentiateLiteral())
	require.NoError(t, err)
	kg := NewKeyGenerator(p)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)
	evk, err := kg.GenEvaluationKeys(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, evk)

	vals := make([]int64, p.N())
	vals[0] = 5
	pt := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), vals)
	ct, err := enc.Encrypt(&rlwe.Plaintext{Value: pt})
	require.NoError(t, err)

	cubed, err := ev.Exponentiate(ct, 3)
	require.NoError(t, err)
	require.Equal(t, 2, cubed.Size())

	out, err := dec.Decrypt(cubed)
	require.NoError(t, err)
	require.Equal(t, int64(125), out.Value.Coeff(0).ToBig().Int64())
	for i := 1; i < p.N(); i++ {
		require.Equal(t, int64(0), out.Value.Coeff(i).ToBig().Int64(), "coefficient %d mismatch", i)
	}
}

// TestNTTDomainMultiplyPlainMatchesCoefficientDomain covers spec.md
// §8's S5 scenario: encrypt(m), transform_to_ntt, multiply_plain_ntt by
// k, transform_from_ntt, decrypt, expect k*m mod t.
func TestNTTDomainMultiplyPlainMatchesCoefficientDomain(t *testing.T) {
	p, kg := setup(t)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	pk, err := kg.GenPublicKey(sk)
	require.NoError(t, err)

	enc := NewEncryptor(p, pk)
	dec := NewDecryptor(p, sk)
	ev := NewEvaluator(p, nil)

	m := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), []int64{1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1, 2, 3, 4, 0, 1})
	kVals := []int64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	k := plaintextFromInts(p.N(), p.PlainModulus().BitCount(), kVals)

	ct, err := enc.Encrypt(&rlwe.Plaintext{Value: m})
	require.NoError(t, err)

	require.NoError(t, ev.TransformToNTT(ct))
	prod, err := ev.MultiplyPlainNTT(ct, &rlwe.Plaintext{Value: k})
	require.NoError(t, err)
	require.NoError(t, ev.TransformFromNTT(prod))

	out, err := dec.Decrypt(prod)
	require.NoError(t, err)

	// Expected value: the negacyclic product m*k in Z_t[X]/(X^N+1).
	t64 := p.PlainModulus().Value().ToBig().Int64()
	n := p.N()
	for i := 0; i < n; i++ {
		var want int64
		for j := 0; j < n; j++ {
			mj := m.Coeff(j).ToBig().Int64()
			if i-j >= 0 {
				want += mj * kVals[i-j]
			} else {
				want -= mj * kVals[i-j+n]
			}
		}
		want = ((want % t64) + t64) % t64
		require.Equal(t, want, out.Value.Coeff(i).ToBig().Int64(), "coefficient %d mismatch", i)
	}
}
