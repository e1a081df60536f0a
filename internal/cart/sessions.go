package cart

import (
	"strings"
	"sync"
	"time"
)

type session struct {
	cart     Cart
	lastUsed time.Time
}

// Sessions keeps one in-memory cart per wallet address. Carts are never
// persisted and vanish with the process.
type Sessions struct {
	now func() time.Time

	mu    sync.Mutex
	carts map[string]session
}

// NewSessions creates an empty session registry
func NewSessions() *Sessions {
	return &Sessions{now: time.Now, carts: make(map[string]session)}
}

// Get returns the cart for address, empty if none exists
func (s *Sessions) Get(address string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[sessionKey(address)].cart
}

// Update applies fn to the cart for address and stores the result
func (s *Sessions) Update(address string, fn func(Cart) Cart) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(address)
	next := fn(s.carts[key].cart)
	if next.Len() == 0 {
		delete(s.carts, key)
	} else {
		s.carts[key] = session{cart: next, lastUsed: s.now()}
	}
	return next
}

// Len returns the number of non-empty carts
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Prune drops carts not updated for maxIdle and returns how many went
func (s *Sessions) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for key, sess := range s.carts {
		if sess.lastUsed.Before(cutoff) {
			delete(s.carts, key)
			pruned++
		}
	}
	return pruned
}

func sessionKey(address string) string {
	return strings.ToLower(address)
}
