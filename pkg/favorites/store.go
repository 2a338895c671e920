// Package favorites implements the session-scoped favorites membership
// store and the optimistic toggle on top of the catalog's add/remove
// endpoints. Membership is warmed once per session from the full
// favorites list; every later check is a point query against the store,
// shared by all listing screens.
package favorites

import (
	"context"
	"sync"

	"github.com/avtoline/catalog-client/pkg/catalog"
)

// Membership is the favorites membership set for one user session.
// Implementations must be safe for concurrent use.
type Membership interface {
	// Contains reports whether the ad is currently a favorite.
	Contains(ctx context.Context, ref catalog.AdRef) (bool, error)

	// SetMember adds or removes the ad from the set.
	SetMember(ctx context.Context, ref catalog.AdRef, member bool) error

	// Replace swaps the whole set, used to warm the store from the
	// backend's favorites list.
	Replace(ctx context.Context, refs []catalog.AdRef) error
}

// MemoryStore is an in-process Membership for a single session.
type MemoryStore struct {
	mu      sync.RWMutex
	members map[catalog.AdRef]struct{}
}

// NewMemoryStore creates an empty in-process membership store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members: make(map[catalog.AdRef]struct{}),
	}
}

// Contains reports membership. Never returns an error.
func (s *MemoryStore) Contains(_ context.Context, ref catalog.AdRef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[ref]
	return ok, nil
}

// SetMember adds or removes one entry.
func (s *MemoryStore) SetMember(_ context.Context, ref catalog.AdRef, member bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if member {
		s.members[ref] = struct{}{}
	} else {
		delete(s.members, ref)
	}
	return nil
}

// Replace swaps the whole set.
func (s *MemoryStore) Replace(_ context.Context, refs []catalog.AdRef) error {
	members := make(map[catalog.AdRef]struct{}, len(refs))
	for _, ref := range refs {
		members[ref] = struct{}{}
	}

	s.mu.Lock()
	s.members = members
	s.mu.Unlock()
	return nil
}

// Len returns the current membership count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
