package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound indicates no stored function matches the requested name.
var ErrRecordNotFound = errors.New("storage: function record not found")

// ErrRecordInvalid indicates a record without a name or source.
var ErrRecordInvalid = errors.New("storage: function record requires name and source")

// Record is a persisted template-defined function. Source holds the full
// manifest: YAML front matter followed by the template body.
type Record struct {
	ID        uuid.UUID
	Name      string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository persists template-defined function sources.
type Repository interface {
	Get(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Upsert(ctx context.Context, name, source string) (Record, error)
	Delete(ctx context.Context, name string) error
}
