package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure AssistantStore implements the interface.
var _ driven.AssistantStore = (*AssistantStore)(nil)

// AssistantStore is an in-memory implementation of driven.AssistantStore.
type AssistantStore struct {
	mu         sync.RWMutex
	assistants map[int64]domain.Assistant
	nextID     int64
}

// NewAssistantStore creates a new in-memory assistant store.
func NewAssistantStore() *AssistantStore {
	return &AssistantStore{
		assistants: make(map[int64]domain.Assistant),
		nextID:     1,
	}
}

// Create inserts a new assistant and sets its ID and CreatedAt.
func (s *AssistantStore) Create(_ context.Context, a *domain.Assistant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.assistants[a.ID] = *a
	return nil
}

// Get returns the assistant with id.
func (s *AssistantStore) Get(_ context.Context, id int64) (*domain.Assistant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assistants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// GetOwned returns the assistant with id if ownerID owns it.
func (s *AssistantStore) GetOwned(ctx context.Context, id, ownerID int64) (*domain.Assistant, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// ListByOwner returns the owner's assistants, oldest first.
func (s *AssistantStore) ListByOwner(_ context.Context, ownerID int64) ([]domain.Assistant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Assistant{}
	for _, a := range s.assistants {
		if a.OwnerID == ownerID {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CountByOwner returns how many assistants the owner has.
func (s *AssistantStore) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	list, err := s.ListByOwner(ctx, ownerID)
	return len(list), err
}

// IncrementQueryCount records one answered query.
func (s *AssistantStore) IncrementQueryCount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assistants[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.QueryCount++
	s.assistants[id] = a
	return nil
}

// Delete removes the assistant with id.
func (s *AssistantStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assistants[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.assistants, id)
	return nil
}
