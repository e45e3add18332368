// Package history provides bounded per-symbol price buffers for indicator
// computation. Buffers are created lazily on the first observed tick and keep
// the capacity they were created with, even if strategy parameters change
// afterwards.
package history

import "sync"

// ring is a fixed-capacity circular price buffer. Oldest entries are evicted
// once the buffer is full.
type ring struct {
	buf   []float64
	start int // index of the oldest sample
	n     int // number of valid samples, n <= len(buf)
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]float64, capacity)}
}

func (r *ring) append(price float64) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = price
		r.n++
		return
	}
	// Full: overwrite the oldest slot and advance.
	r.buf[r.start] = price
	r.start = (r.start + 1) % len(r.buf)
}

// snapshot returns the samples oldest-first as a fresh slice.
func (r *ring) snapshot() []float64 {
	out := make([]float64, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Store holds one price ring per symbol.
type Store struct {
	mu    sync.RWMutex
	rings map[string]*ring
}

// NewStore creates an empty price history store.
func NewStore() *Store {
	return &Store{rings: make(map[string]*ring)}
}

// Append records a price tick for symbol. The buffer is created on first use
// with the given capacity; later capacity values are ignored for symbols that
// already have a buffer.
func (s *Store) Append(symbol string, price float64, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rings[symbol]
	if !ok {
		r = newRing(capacity)
		s.rings[symbol] = r
	}
	r.append(price)
}

// Snapshot returns a copy of the symbol's prices, oldest first.
// Returns an empty slice for an unseen symbol.
func (s *Store) Snapshot(symbol string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rings[symbol]
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Len returns the number of stored samples for symbol.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rings[symbol]; ok {
		return r.n
	}
	return 0
}

// Cap returns the buffer capacity for symbol, 0 if unseen.
func (s *Store) Cap(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.rings[symbol]; ok {
		return len(r.buf)
	}
	return 0
}

// Reset drops all buffers.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rings = make(map[string]*ring)
}
