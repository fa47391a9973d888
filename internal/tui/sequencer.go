package tui

import "sync"

// Sequencer numbers outgoing requests and admits a response only when it is
// newer than every response applied before it. Responses to superseded
// requests that arrive late are dropped instead of overwriting fresher data.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Next returns the number for a new request.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept reports whether the response to request seq should be applied and,
// if so, records it as the newest applied response.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied || seq > s.issued {
		return false
	}
	s.applied = seq
	return true
}

// Pending reports whether the newest request is still unanswered.
func (s *Sequencer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied < s.issued
}
