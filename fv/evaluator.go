package fv

import (
	"math/big"

	"github.com/latticego/fv/errs"
	"github.com/latticego/fv/params"
	"github.com/latticego/fv/ring"
	"github.com/latticego/fv/rlwe"
	"github.com/latticego/fv/wideint"
)

// Evaluator performs homomorphic operations on ciphertexts under a fixed
// parameter set, grounded on original_source/SEAL/evaluator.cpp.
// Relinearize/multiply_many/exponentiate require evk (may be nil
// otherwise -- negate/add/sub/multiply/plaintext ops do not need it).
type Evaluator struct {
	p   *params.Parameters
	evk *rlwe.EvaluationKeys

	// pool supplies the gadget-decomposition digit polynomials
	// RelinearizeTo allocates and discards on every call (spec.md §5's
	// memory pool resource model).
	pool *rlwe.Pool
}

// NewEvaluator returns an Evaluator for p. evk may be nil if the caller
// never intends to relinearize, multiply_many, or exponentiate.
func NewEvaluator(p *params.Parameters, evk *rlwe.EvaluationKeys) *Evaluator {
	return &Evaluator{p: p, evk: evk, pool: rlwe.NewPool()}
}

// Negate returns the coefficient-wise negation mod q of every ciphertext
// polynomial. Size is preserved.
func (ev *Evaluator) Negate(c *rlwe.Ciphertext) *rlwe.Ciphertext {
	q := ev.p.CoeffModulus()
	out := rlwe.NewCiphertext(c.Size(), ev.p.N(), q.BitCount())
	for i, poly := range c.Value.Polys {
		out.Value.Polys[i] = ring.Negate(poly, q)
	}
	return out
}

// Add returns a+b, padding the shorter ciphertext with zero polynomials.
// Result size is the max of the two input sizes.
func (ev *Evaluator) Add(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return ev.addSub(a, b, true)
}

// Sub returns a-b, padding the shorter ciphertext with zero polynomials.
func (ev *Evaluator) Sub(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return ev.addSub(a, b, false)
}

func (ev *Evaluator) addSub(a, b *rlwe.Ciphertext, add bool) (*rlwe.Ciphertext, error) {
	q := ev.p.CoeffModulus()
	n := ev.p.N()
	size := a.Size()
	if b.Size() > size {
		size = b.Size()
	}
	out := rlwe.NewCiphertext(size, n, q.BitCount())
	for i := 0; i < size; i++ {
		ai := componentOrZero(a, i, n, q.BitCount())
		bi := componentOrZero(b, i, n, q.BitCount())
		var r *ring.Polynomial
		var err error
		if add {
			r, err = ring.AddMod(ai, bi, q)
		} else {
			r, err = ring.SubMod(ai, bi, q)
		}
		if err != nil {
			return nil, err
		}
		out.Value.Polys[i] = r
	}
	return out, nil
}

func componentOrZero(c *rlwe.Ciphertext, i, n, bitCount int) *ring.Polynomial {
	if i < c.Size() {
		return c.Value.Polys[i]
	}
	return ring.NewPolynomial(n, bitCount)
}

// Multiply computes the tensor product of a (size M) and b (size N),
// producing a size M+N-1 ciphertext, per spec.md §4.5's "lift, multiply,
// scale by t/q with rounding, reduce" sequence: each output component is
// the convolution of the input components' exact (unreduced) integer
// polynomial products, divided by Δ with rounding, then reduced mod q.
func (ev *Evaluator) Multiply(a, b *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	p := ev.p
	q := p.CoeffModulus()
	n := p.N()
	m, k := a.Size(), b.Size()
	outSize := m + k - 1
	delta := p.Delta()
	qBig := q.Value().ToBig()

	raw := make([][]*big.Int, outSize)
	for i := range raw {
		raw[i] = make([]*big.Int, n)
		for j := range raw[i] {
			raw[i][j] = new(big.Int)
		}
	}

	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			prod := exactCyclotomicMul(a.Value.Polys[i], b.Value.Polys[j], n)
			dst := raw[i+j]
			for idx := 0; idx < n; idx++ {
				dst[idx].Add(dst[idx], prod[idx])
			}
		}
	}

	out := rlwe.NewCiphertext(outSize, n, q.BitCount())
	for i := 0; i < outSize; i++ {
		for idx := 0; idx < n; idx++ {
			v := roundedDiv(raw[i][idx], delta)
			v.Mod(v, qBig)
			out.Value.Polys[i].Coeff(idx).SetBig(v)
		}
	}
	return out, nil
}

// Square is an alias for Multiply(c, c), named separately because
// SEAL-derived evaluators expose it as a distinct, optimizable entry
// point even though this implementation shares the general path.
func (ev *Evaluator) Square(c *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return ev.Multiply(c, c)
}

// exactCyclotomicMul returns a*b reduced modulo X^n+1 using exact
// (unbounded, un-reduced-mod-q) integer arithmetic -- the "lift into a
// wider modulus space" step that must happen before any division by Δ.
func exactCyclotomicMul(a, b *ring.Polynomial, n int) []*big.Int {
	acc := make([]*big.Int, 2*n-1)
	for i := range acc {
		acc[i] = new(big.Int)
	}
	for i := 0; i < n; i++ {
		ai := a.Coeff(i).ToBig()
		if ai.Sign() == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			bj := b.Coeff(j).ToBig()
			if bj.Sign() == 0 {
				continue
			}
			t := new(big.Int).Mul(ai, bj)
			acc[i+j].Add(acc[i+j], t)
		}
	}
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Int).Set(acc[i])
	}
	for i := n; i < 2*n-1; i++ {
		fold := i - n
		out[fold].Sub(out[fold], acc[i])
	}
	return out
}

// roundedDiv returns num/den rounded to the nearest integer, ties away
// from zero, matching the Δ/2-then-floor rounding style used throughout
// spec.md's decryption and multiplication sequences. den must be
// positive.
func roundedDiv(num, den *big.Int) *big.Int {
	quo := new(big.Int)
	rem := new(big.Int)
	quo.QuoRem(num, den, rem)
	twice := new(big.Int).Abs(rem)
	twice.Lsh(twice, 1)
	if twice.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return quo
}

// Relinearize reduces c to the default target size of 2.
func (ev *Evaluator) Relinearize(c *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return ev.RelinearizeTo(c, 2)
}

// RelinearizeTo collapses c from size K to size K-1 via base-2^w gadget
// decomposition against the evaluation keys, per spec.md §4.5. It only
// supports a single collapse level: GenEvaluationKeys encodes s^2 alone,
// which only relinearizes a size-3 ciphertext down to size 2, so target
// must equal c.Size()-1 (every current call site only ever invokes this
// on freshly-multiplied size-3 ciphertexts with target 2).
func (ev *Evaluator) RelinearizeTo(c *rlwe.Ciphertext, target int) (*rlwe.Ciphertext, error) {
	if ev.evk == nil {
		return nil, errs.InvalidState("fv: relinearize requires evaluation keys")
	}
	if target < 2 {
		return nil, errs.InvalidArgument("fv: relinearize target size must be >= 2, got %d", target)
	}
	if target != c.Size()-1 {
		return nil, errs.InvalidArgument("fv: relinearize only supports a single collapse level (size %d to %d), got target %d", c.Size(), c.Size()-1, target)
	}
	q := ev.p.CoeffModulus()
	n := ev.p.N()
	w := ev.p.DecompositionBitCount()
	if w <= 0 {
		return nil, errs.InvalidState("fv: relinearize requires a positive decomposition_bit_count")
	}

	cur := c.Clone()
	for cur.Size() > target {
		top := cur.Value.Polys[cur.Size()-1]
		chunks, err := decomposeBaseW(ev.pool, top, w, ev.evk.Count(), q)
		if err != nil {
			return nil, err
		}

		acc0 := ring.NewPolynomial(n, q.BitCount())
		acc1 := ring.NewPolynomial(n, q.BitCount())
		for i, chunk := range chunks {
			key := ev.evk.Keys[i]
			t0, err := multiply(ev.p, chunk, key.Polys[0])
			if err != nil {
				return nil, err
			}
			t1, err := multiply(ev.p, chunk, key.Polys[1])
			if err != nil {
				return nil, err
			}
			acc0, err = ring.AddMod(acc0, t0, q)
			if err != nil {
				return nil, err
			}
			acc1, err = ring.AddMod(acc1, t1, q)
			if err != nil {
				return nil, err
			}
		}
		for _, chunk := range chunks {
			ev.pool.Put(chunk.Buff())
		}

		newSize := cur.Size() - 1
		next := rlwe.NewCiphertext(newSize, n, q.BitCount())
		c0New, err := ring.AddMod(cur.Value.Polys[0], acc0, q)
		if err != nil {
			return nil, err
		}
		next.Value.Polys[0] = c0New
		for i := 1; i < newSize-1; i++ {
			next.Value.Polys[i] = cur.Value.Polys[i].Clone()
		}
		lastNew, err := ring.AddMod(cur.Value.Polys[newSize-1], acc1, q)
		if err != nil {
			return nil, err
		}
		next.Value.Polys[newSize-1] = lastNew
		cur = next
	}
	return cur, nil
}

// decomposeBaseW splits poly's coefficients into count base-2^w digit
// polynomials, chunk[k]'s i-th coefficient holding the k-th digit of
// poly's i-th coefficient. The digit polynomials' backing storage is
// drawn from pool rather than freshly allocated, since RelinearizeTo
// produces and discards one set of them per collapse (spec.md §5's
// memory pool resource model); callers must return each chunk's buffer
// to pool once done.
func decomposeBaseW(pool *rlwe.Pool, poly *ring.Polynomial, w, count int, q *wideint.Modulus) ([]*ring.Polynomial, error) {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(w)), big.NewInt(1))
	lpc := wideint.LimbsFor(q.BitCount())
	chunks := make([]*ring.Polynomial, count)
	for k := range chunks {
		buf := pool.Get(poly.N() * lpc)
		chunk, err := ring.BorrowPolynomial(buf, poly.N(), q.BitCount())
		if err != nil {
			return nil, err
		}
		chunks[k] = chunk
	}
	for i := 0; i < poly.N(); i++ {
		v := poly.Coeff(i).ToBig()
		for k := 0; k < count; k++ {
			d := new(big.Int).Rsh(v, uint(k*w))
			d.And(d, mask)
			chunks[k].Coeff(i).SetBig(d)
		}
	}
	return chunks, nil
}

// AddPlain returns c with pt (scaled by Δ with upper-half folding) added
// into its first component.
func (ev *Evaluator) AddPlain(c *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return ev.plainAddSub(c, pt, true)
}

// SubPlain returns c with pt (scaled by Δ with upper-half folding)
// subtracted from its first component.
func (ev *Evaluator) SubPlain(c *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return ev.plainAddSub(c, pt, false)
}

func (ev *Evaluator) plainAddSub(c *rlwe.Ciphertext, pt *rlwe.Plaintext, add bool) (*rlwe.Ciphertext, error) {
	if err := rlwe.RequireSize(c, 2); err != nil {
		return nil, err
	}
	q := ev.p.CoeffModulus()
	scaled, err := scalePlaintext(ev.p, pt.Value)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	var c0 *ring.Polynomial
	if add {
		c0, err = ring.AddMod(out.Value.Polys[0], scaled, q)
	} else {
		c0, err = ring.SubMod(out.Value.Polys[0], scaled, q)
	}
	if err != nil {
		return nil, err
	}
	out.Value.Polys[0] = c0
	return out, nil
}

// MultiplyPlain multiplies every ciphertext component by pt, treated as
// a bare (unscaled) coefficient polynomial. Forbidden when pt is
// identically zero (spec.md §7: "fresh encryption of 0 is the caller's
// job").
func (ev *Evaluator) MultiplyPlain(c *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := rlwe.RequireSize(c, 2); err != nil {
		return nil, err
	}
	if isZeroPolynomial(pt.Value) {
		return nil, errs.InvalidArgument("fv: multiply_plain by the zero plaintext is forbidden")
	}
	q := ev.p.CoeffModulus()
	lifted := liftToQ(pt.Value, q)
	out := rlwe.NewCiphertext(c.Size(), ev.p.N(), q.BitCount())
	for i, poly := range c.Value.Polys {
		prod, err := multiply(ev.p, poly, lifted)
		if err != nil {
			return nil, err
		}
		out.Value.Polys[i] = prod
	}
	return out, nil
}

func isZeroPolynomial(p *ring.Polynomial) bool {
	for i := 0; i < p.N(); i++ {
		if !p.Coeff(i).IsZero() {
			return false
		}
	}
	return true
}

func liftToQ(pt *ring.Polynomial, q *wideint.Modulus) *ring.Polynomial {
	out := ring.NewPolynomial(pt.N(), q.BitCount())
	for i := 0; i < pt.N(); i++ {
		out.Coeff(i).SetBig(pt.Coeff(i).ToBig())
	}
	return out
}

// AddMany folds Add across cts, left to right.
func (ev *Evaluator) AddMany(cts []*rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if len(cts) == 0 {
		return nil, errs.InvalidArgument("fv: add_many requires at least one ciphertext")
	}
	acc := cts[0].Clone()
	for _, c := range cts[1:] {
		var err error
		acc, err = ev.Add(acc, c)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// MultiplyMany multiplies cts using a balanced tree schedule,
// relinearizing back to size 2 after every multiplication, per spec.md
// §4.5.
func (ev *Evaluator) MultiplyMany(cts []*rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if len(cts) == 0 {
		return nil, errs.InvalidArgument("fv: multiply_many requires at least one ciphertext")
	}
	level := make([]*rlwe.Ciphertext, len(cts))
	copy(level, cts)
	for len(level) > 1 {
		next := make([]*rlwe.Ciphertext, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			prod, err := ev.Multiply(level[i], level[i+1])
			if err != nil {
				return nil, err
			}
			relin, err := ev.Relinearize(prod)
			if err != nil {
				return nil, err
			}
			next = append(next, relin)
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0], nil
}

// Exponentiate returns c^e via square-and-multiply, relinearizing back
// to size 2 after every multiplication so the ciphertext size stays
// bounded across the ladder.
func (ev *Evaluator) Exponentiate(c *rlwe.Ciphertext, e int) (*rlwe.Ciphertext, error) {
	if e <= 0 {
		return nil, errs.InvalidArgument("fv: exponentiate requires a positive exponent, got %d", e)
	}
	result := c.Clone()
	base := c.Clone()
	e--
	for e > 0 {
		if e&1 == 1 {
			prod, err := ev.Multiply(result, base)
			if err != nil {
				return nil, err
			}
			result, err = ev.Relinearize(prod)
			if err != nil {
				return nil, err
			}
		}
		e >>= 1
		if e > 0 {
			sq, err := ev.Square(base)
			if err != nil {
				return nil, err
			}
			base, err = ev.Relinearize(sq)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// TransformToNTT moves every component of c into NTT/evaluation
// representation in place. Requires the NTT qualifier.
func (ev *Evaluator) TransformToNTT(c *rlwe.Ciphertext) error {
	tbl := ev.p.NTTTable()
	if tbl == nil {
		return errs.UnsupportedConfig("fv: coeff_modulus does not support NTT")
	}
	if c.IsNTT {
		return errs.InvalidState("fv: ciphertext is already in NTT domain")
	}
	for _, poly := range c.Value.Polys {
		if err := tbl.Forward(poly); err != nil {
			return err
		}
	}
	c.IsNTT = true
	return nil
}

// TransformFromNTT moves every component of c out of NTT representation
// in place.
func (ev *Evaluator) TransformFromNTT(c *rlwe.Ciphertext) error {
	tbl := ev.p.NTTTable()
	if tbl == nil {
		return errs.UnsupportedConfig("fv: coeff_modulus does not support NTT")
	}
	if !c.IsNTT {
		return errs.InvalidState("fv: ciphertext is not in NTT domain")
	}
	for _, poly := range c.Value.Polys {
		if err := tbl.Inverse(poly); err != nil {
			return err
		}
	}
	c.IsNTT = false
	return nil
}

// MultiplyPlainNTT multiplies an NTT-domain ciphertext by pt (also
// transformed to NTT), returning a ciphertext in NTT representation.
func (ev *Evaluator) MultiplyPlainNTT(c *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := rlwe.RequireSize(c, 2); err != nil {
		return nil, err
	}
	if !c.IsNTT {
		return nil, errs.InvalidState("fv: multiply_plain_ntt requires an NTT-domain ciphertext")
	}
	tbl := ev.p.NTTTable()
	if tbl == nil {
		return nil, errs.UnsupportedConfig("fv: coeff_modulus does not support NTT")
	}
	q := ev.p.CoeffModulus()
	lifted := liftToQ(pt.Value, q)
	if err := tbl.Forward(lifted); err != nil {
		return nil, err
	}
	out := rlwe.NewCiphertext(c.Size(), ev.p.N(), q.BitCount())
	for i, poly := range c.Value.Polys {
		prod, err := ring.PointwiseMultiply(poly, lifted, q)
		if err != nil {
			return nil, err
		}
		out.Value.Polys[i] = prod
	}
	out.IsNTT = true
	return out, nil
}
