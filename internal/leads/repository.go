package leads

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var leadsTracer = otel.Tracer("contactform.internal.leads")

// Repository persists leads. Save is a full-record upsert keyed by LeadID,
// so calling it twice for the same lead overwrites the first write.
type Repository interface {
	Save(ctx context.Context, lead *Lead) error
}

// InMemoryRepository keeps leads in process memory for local runs and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	saves int
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Save stores a copy of the lead.
func (r *InMemoryRepository) Save(ctx context.Context, lead *Lead) error {
	_, span := leadsTracer.Start(ctx, "leads.save")
	defer span.End()

	if lead == nil {
		return &StorageError{Op: "save", Err: ErrNilLead}
	}
	if lead.LeadID == "" {
		return &StorageError{Op: "save", Err: ErrMissingLeadID}
	}
	span.SetAttributes(attribute.String("lead.id", lead.LeadID), attribute.String("leads.store", "memory"))

	r.mu.Lock()
	r.leads[lead.LeadID] = lead.Clone()
	r.saves++
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the stored lead.
func (r *InMemoryRepository) Get(id string) (*Lead, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, false
	}
	return lead.Clone(), true
}

// Len is the number of distinct leads stored.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads)
}

// Saves counts every successful Save call, including overwrites.
func (r *InMemoryRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

var _ Repository = (*InMemoryRepository)(nil)
