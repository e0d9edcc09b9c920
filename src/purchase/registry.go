package purchase

import (
	"sync"
	"time"

	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/types"
	"github.com/google/uuid"
)

// Registry keeps live checkout sessions in memory.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open creates and stores a session for ev under a fresh id.
func (r *Registry) Open(ev *models.Event, verifier ParticipantVerifier, gateway OrderGateway, cfg SessionConfig) *Session {
	s := NewSession(uuid.NewString(), ev, verifier, gateway, cfg)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	return s, ok
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl. Sessions with a running
// create or capture call are kept until the call returns.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if !s.LastSeen().Before(cutoff) {
			continue
		}
		if st := s.State(); st == types.CHECKOUT_CREATING || st == types.CHECKOUT_CAPTURING {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}
