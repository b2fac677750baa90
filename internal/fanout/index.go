package fanout

import (
	"sync"

	"github.com/samber/lo"
)

// Index is the bidirectional room-membership mapping. Membership is
// principal-scoped and survives disconnects; only room topics are
// stored here — user channels are structural and resolved by the
// Gateway without a membership row.
type Index struct {
	mu          sync.RWMutex
	byTopic     map[Topic]map[Principal]struct{}
	byPrincipal map[Principal]map[Topic]struct{}
}

func NewIndex() *Index {
	return &Index{
		byTopic:     make(map[Topic]map[Principal]struct{}),
		byPrincipal: make(map[Principal]map[Topic]struct{}),
	}
}

// Join is idempotent; joining a topic twice is a no-op.
func (i *Index) Join(t Topic, p Principal) {
	i.mu.Lock()
	defer i.mu.Unlock()

	members, ok := i.byTopic[t]
	if !ok {
		members = make(map[Principal]struct{})
		i.byTopic[t] = members
	}
	members[p] = struct{}{}

	topics, ok := i.byPrincipal[p]
	if !ok {
		topics = make(map[Topic]struct{})
		i.byPrincipal[p] = topics
	}
	topics[t] = struct{}{}
}

// Leave is idempotent. A topic with no members left is simply absent
// from the index.
func (i *Index) Leave(t Topic, p Principal) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if members, ok := i.byTopic[t]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(i.byTopic, t)
		}
	}
	if topics, ok := i.byPrincipal[p]; ok {
		delete(topics, t)
		if len(topics) == 0 {
			delete(i.byPrincipal, p)
		}
	}
}

// MembersOf returns the principals explicitly joined to a room topic.
// User-channel resolution is the Gateway's job, not a stored fact.
func (i *Index) MembersOf(t Topic) []Principal {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return lo.Keys(i.byTopic[t])
}

// TopicsOf returns the explicit-join topics of a principal. The
// implicit user channel is derivable from the principal itself and is
// not enumerated.
func (i *Index) TopicsOf(p Principal) []Topic {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return lo.Keys(i.byPrincipal[p])
}
