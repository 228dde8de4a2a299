// Package flowstack implements the resolver's Presenter as a LIFO stack of
// active flow presentations.
//
// Concurrent presentations are deliberately not coalesced: opening a flow
// while another is active stacks the new one on top. The stack is the only
// thing keeping overlapping presentations orderly.
package flowstack

import (
	"context"
	"sync"

	"github.com/learningeconomy/consentflow/internal/resolver"
)

// Stack is a thread-safe LIFO of active presentations.
type Stack struct {
	mu     sync.Mutex
	active []resolver.Presentation
}

// New constructs an empty flow stack.
func New() *Stack {
	return &Stack{}
}

// Present pushes the presentation onto the stack.
func (s *Stack) Present(_ context.Context, p resolver.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append(s.active, p)
	return nil
}

// Close pops the top presentation. Closing an empty stack is a no-op.
func (s *Stack) Close() (resolver.Presentation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) == 0 {
		return resolver.Presentation{}, false
	}
	top := s.active[len(s.active)-1]
	s.active = s.active[:len(s.active)-1]
	return top, true
}

// CloseAll clears the stack and returns how many presentations were dropped.
func (s *Stack) CloseAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.active)
	s.active = nil
	return n
}

// Top returns the currently visible presentation, if any.
func (s *Stack) Top() (resolver.Presentation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) == 0 {
		return resolver.Presentation{}, false
	}
	return s.active[len(s.active)-1], true
}

// Depth returns the number of stacked presentations.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

var _ resolver.Presenter = (*Stack)(nil)
