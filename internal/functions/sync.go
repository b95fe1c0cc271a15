package functions

import (
	"context"
	"fmt"

	"github.com/goliatone/go-templatefn/internal/storage"
)

// SyncFromRepository loads every stored manifest and registers it, replacing
// definitions with the same name. It stops at the first record that fails to
// parse or validate.
func SyncFromRepository(ctx context.Context, repo storage.Repository, registry *Registry) (int, error) {
	if repo == nil || registry == nil {
		return 0, fmt.Errorf("functions: repository and registry are required")
	}
	records, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("functions: list stored functions: %w", err)
	}
	for idx, record := range records {
		def, err := LoadDefinition([]byte(record.Source))
		if err != nil {
			return idx, fmt.Errorf("functions: stored function %q: %w", record.Name, err)
		}
		if NormalizeName(def.Name) != record.Name {
			return idx, fmt.Errorf("%w: stored function %q declares name %q", ErrInvalidDefinition, record.Name, def.Name)
		}
		if err := registry.Replace(def); err != nil {
			return idx, fmt.Errorf("functions: stored function %q: %w", record.Name, err)
		}
	}
	return len(records), nil
}
