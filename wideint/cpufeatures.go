package wideint

import "github.com/klauspost/cpuid/v2"

// fastCarryChain is set once at package init. Both Add and Sub already
// use math/bits.Add64/Sub64, which the Go compiler already intrinsics on
// ADX/BMI2-capable hardware; this flag exists as the dispatch point named
// in spec.md's "Fast-multiplication path selection" design note, extended
// one level below the NTT/Nussbaumer choice down to the limb layer: for
// moduli of the form 2^k-1, Reduce uses the add-and-mask folding loop
// when it is set and a single big.Int Mod when it is not. Other moduli
// always take the Barrett path.
var fastCarryChain = cpuid.CPU.Supports(cpuid.ADX, cpuid.BMI2)

// HasFastCarryChain reports whether the running CPU supports the
// instruction extensions that make repeated carry-propagating reduction
// loops (as used by the pseudo-Mersenne fast path) cheap relative to a
// single wide multiply. Modulus.Reduce consults it to pick the
// pseudo-Mersenne reduction route.
func HasFastCarryChain() bool { return fastCarryChain }
