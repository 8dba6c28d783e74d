// Package rlwe implements spec.md §4.5's ciphertext/plaintext/key
// container types and the memory-pool infrastructure they share,
// grounded on _examples/tuneinsight-lattigo/core/rlwe/pool.go's
// Pool/GetBuffCt pattern but simplified from ringqp's level-indexed RNS
// pool down to a flat per-size-class free list, since this library has
// a single coefficient modulus rather than an RNS chain of them.
package rlwe

import "sync"

// Pool hands out reusable limb buffers keyed by their length, backed by
// one sync.Pool per distinct size observed so far (spec.md §5's
// "per-size-class free lists" design note). Safe for concurrent use.
type Pool struct {
	mu      sync.RWMutex
	classes map[int]*sync.Pool
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{classes: make(map[int]*sync.Pool)}
}

// Get returns a zeroed []uint64 of length n, reused from the pool when
// possible.
func (p *Pool) Get(n int) []uint64 {
	class := p.classFor(n)
	if buf, ok := class.Get().(*[]uint64); ok {
		b := *buf
		for i := range b {
			b[i] = 0
		}
		return b
	}
	return make([]uint64, n)
}

// Put returns buf to the pool for reuse by a future Get of the same
// length. buf must not be used by the caller afterward.
func (p *Pool) Put(buf []uint64) {
	if len(buf) == 0 {
		return
	}
	class := p.classFor(len(buf))
	class.Put(&buf)
}

func (p *Pool) classFor(n int) *sync.Pool {
	p.mu.RLock()
	class, ok := p.classes[n]
	p.mu.RUnlock()
	if ok {
		return class
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if class, ok = p.classes[n]; ok {
		return class
	}
	class = &sync.Pool{New: func() any {
		buf := make([]uint64, n)
		return &buf
	}}
	p.classes[n] = class
	return class
}
