package memory

import (
	"context"
	"sort"
	"sync"

	id "ishemalink/pkg/domain"
	audit "ishemalink/pkg/platform/audit"
)

// InMemoryStore keeps entries in insertion order. Entries are copied in and
// out so callers cannot mutate stored history.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, detach(event))
	return nil
}

func detach(e audit.Event) audit.Event {
	if e.ActorID != nil {
		actor := *e.ActorID
		e.ActorID = &actor
	}
	return e
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.ActorID != nil && *e.ActorID == actor {
			out = append(out, detach(e))
		}
	}
	return out, nil
}

// ListRecent returns the most recent N events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		out = append(out, detach(s.events[i]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
