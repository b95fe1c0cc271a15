package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-templatefn/internal/identity"
)

// MemoryRepository stores function records in-memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryRepository constructs an in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the record stored under name or ErrRecordNotFound.
func (r *MemoryRepository) Get(_ context.Context, name string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[normalizeName(name)]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

// List returns every record in name order.
func (r *MemoryRepository) List(context.Context) ([]Record, error) {
	r.mu.RLock()
	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Upsert creates or replaces the record for name.
func (r *MemoryRepository) Upsert(_ context.Context, name, source string) (Record, error) {
	key := normalizeName(name)
	if key == "" || strings.TrimSpace(source) == "" {
		return Record{}, ErrRecordInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record, exists := r.records[key]
	if !exists {
		record = Record{
			ID:        identity.FunctionUUID(key),
			Name:      key,
			CreatedAt: now,
		}
	}
	record.Source = source
	record.UpdatedAt = now
	r.records[key] = record
	return record, nil
}

// Delete removes the record for name.
func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeName(name)
	if _, ok := r.records[key]; !ok {
		return ErrRecordNotFound
	}
	delete(r.records, key)
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var _ Repository = (*MemoryRepository)(nil)
