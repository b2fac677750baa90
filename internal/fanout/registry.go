package fanout

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

type connEntry struct {
	principal   Principal
	connectedAt time.Time
}

// Registry tracks which transport connections are currently live for
// each principal. Liveness only: topic membership lives in Index and is
// never touched here.
type Registry struct {
	mu          sync.RWMutex
	byID        map[string]connEntry
	byPrincipal map[Principal]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byID:        make(map[string]connEntry),
		byPrincipal: make(map[Principal]map[string]struct{}),
	}
}

// Register adds a live connection under a principal. Connection ids are
// minted fresh per handshake, so a collision means a caller bug.
func (r *Registry) Register(connID string, p Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[connID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateConnection, connID)
	}

	r.byID[connID] = connEntry{principal: p, connectedAt: time.Now()}
	conns, ok := r.byPrincipal[p]
	if !ok {
		conns = make(map[string]struct{})
		r.byPrincipal[p] = conns
	}
	conns[connID] = struct{}{}
	return nil
}

// Unregister is idempotent: disconnect handlers may fire more than once
// for the same connection (transport error followed by explicit close).
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byID[connID]
	if !ok {
		return
	}
	delete(r.byID, connID)

	if conns, ok := r.byPrincipal[entry.principal]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byPrincipal, entry.principal)
		}
	}
}

// ConnectionsFor returns the ids of every live connection owned by the
// principal. Empty for an unknown principal, never an error.
func (r *Registry) ConnectionsFor(p Principal) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.byPrincipal[p])
}

func (r *Registry) PrincipalOf(connID string) (Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[connID]
	return entry.principal, ok
}
