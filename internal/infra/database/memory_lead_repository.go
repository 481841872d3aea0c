package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/xavierca1/lead-caller/internal/entity"
)

// MemoryLeadRepository keeps leads for the lifetime of the process. It has
// no capacity bound and no expiry: every lead ever created stays in memory.
type MemoryLeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
	order []string
}

func NewMemoryLeadRepository() *MemoryLeadRepository {
	return &MemoryLeadRepository{
		leads: make(map[string]*entity.Lead),
	}
}

func (r *MemoryLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leads[lead.ID]; exists {
		return fmt.Errorf("database: lead %s already exists", lead.ID)
	}
	r.leads[lead.ID] = lead.Clone()
	r.order = append(r.order, lead.ID)
	return nil
}

func (r *MemoryLeadRepository) Get(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return lead.Clone(), nil
}

// FindByCallID scans every lead.
func (r *MemoryLeadRepository) FindByCallID(ctx context.Context, callID string) (*entity.Lead, error) {
	if callID == "" {
		return nil, entity.ErrLeadNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if lead := r.leads[id]; lead.VapiCallID == callID {
			return lead.Clone(), nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (r *MemoryLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Lead, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.leads[id].Clone())
	}
	return out, nil
}

func (r *MemoryLeadRepository) Update(ctx context.Context, id string, mutate func(*entity.Lead)) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	next := lead.Clone()
	mutate(next)
	next.ID = id
	r.leads[id] = next
	return next.Clone(), nil
}

func (r *MemoryLeadRepository) Ping(ctx context.Context) error {
	return nil
}
