package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beachpoint/portal/models"
)

var ErrFlowNotFound = errors.New("registration flow not found")

// FlowRepository holds transient registration flows. Flows live only for the
// duration of one registration session and are discarded on submit or abandon.
type FlowRepository interface {
	Save(ctx context.Context, flow *models.Flow) error
	Get(ctx context.Context, id string) (*models.Flow, error)
	Delete(ctx context.Context, id string) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) int
}

type memoryFlowRepository struct {
	mu    sync.RWMutex
	flows map[string]*models.Flow
}

// NewMemoryFlowRepository creates the in-memory flow store. Flows have a
// single writer (the active session), the lock only guards map access and
// the TTL sweeper.
func NewMemoryFlowRepository() FlowRepository {
	return &memoryFlowRepository{
		flows: make(map[string]*models.Flow),
	}
}

func (m *memoryFlowRepository) Save(_ context.Context, flow *models.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	flow.UpdatedAt = time.Now()
	// Deep copy to avoid external mutation
	m.flows[flow.ID] = flow.Clone()
	return nil
}

func (m *memoryFlowRepository) Get(_ context.Context, id string) (*models.Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flow, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return flow.Clone(), nil
}

func (m *memoryFlowRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[id]; !ok {
		return ErrFlowNotFound
	}
	delete(m.flows, id)
	return nil
}

// DeleteIdleSince removes flows untouched since the cutoff and reports how
// many were swept.
func (m *memoryFlowRepository) DeleteIdleSince(_ context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	swept := 0
	for id, flow := range m.flows {
		if flow.UpdatedAt.Before(cutoff) {
			delete(m.flows, id)
			swept++
		}
	}
	return swept
}
