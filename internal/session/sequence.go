package session

import "sync"

// sequencer numbers requests per category. When disabled every response is
// applied in arrival order (last write wins). When enabled a response is
// dropped if a newer request of the same category has already been applied.
type sequencer struct {
	enabled bool

	mu      sync.Mutex
	issued  [numCategories]uint64
	applied [numCategories]uint64
}

func newSequencer(enabled bool) *sequencer {
	return &sequencer{enabled: enabled}
}

// next returns the sequence number for a new request in c.
func (s *sequencer) next(c Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[c]++
	return s.issued[c]
}

// accept reports whether the response to request seq may be applied and,
// if so, records it as the applied one.
func (s *sequencer) accept(c Category, seq uint64) bool {
	if !s.enabled {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied[c] {
		return false
	}
	s.applied[c] = seq
	return true
}
