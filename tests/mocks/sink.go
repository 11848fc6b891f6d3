package mocks

import (
	"context"
	"sync"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

// RecordingSink captures published events for assertions.
type RecordingSink struct {
	mu     sync.Mutex
	Events []domain.Event
}

func (s *RecordingSink) Publish(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}

// Types returns the event types in publish order.
func (s *RecordingSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		types = append(types, e.Type)
	}
	return types
}

// MemoryPhotoStore stores nothing and hands back deterministic refs.
type MemoryPhotoStore struct {
	mu    sync.Mutex
	Saved int
}

func (s *MemoryPhotoStore) Save(_ context.Context, data []byte, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved++
	return "photo-ref", nil
}
