package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-templatefn/internal/identity"
)

var errNoDatabase = errors.New("storage: bun repository requires a database")

// NewBunDB wraps sqldb with the bun dialect matching driver ("sqlite3", "sqlite",
// "postgres", "pg").
func NewBunDB(sqldb *sql.DB, driver string) (*bun.DB, error) {
	if sqldb == nil {
		return nil, errNoDatabase
	}
	var dialect schema.Dialect
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite3", "sqlite":
		dialect = sqlitedialect.New()
	case "postgres", "postgresql", "pg", "pgx":
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}
	return bun.NewDB(sqldb, dialect), nil
}

// CreateSchema creates the function table when it does not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errNoDatabase
	}
	_, err := db.NewCreateTable().Model((*functionModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// BunRepository persists function records using a Bun-backed database.
type BunRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the record stored under name.
func (r *BunRepository) Get(ctx context.Context, name string) (Record, error) {
	if r.db == nil {
		return Record{}, errNoDatabase
	}
	var model functionModel
	err := r.db.NewSelect().Model(&model).Where("name = ?", normalizeName(name)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return model.record(), nil
}

// List returns every record in name order.
func (r *BunRepository) List(ctx context.Context) ([]Record, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var models []functionModel
	if err := r.db.NewSelect().Model(&models).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Record, len(models))
	for i := range models {
		out[i] = models[i].record()
	}
	return out, nil
}

// Upsert creates or replaces the record for name.
func (r *BunRepository) Upsert(ctx context.Context, name, source string) (Record, error) {
	if r.db == nil {
		return Record{}, errNoDatabase
	}
	key := normalizeName(name)
	if key == "" || strings.TrimSpace(source) == "" {
		return Record{}, ErrRecordInvalid
	}

	now := r.now()
	model := functionModel{
		ID:        identity.FunctionUUID(key),
		Name:      key,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// created_at keeps its first value on conflict.
	if _, err := r.db.NewInsert().
		Model(&model).
		On("CONFLICT (name) DO UPDATE").
		Set("source = EXCLUDED.source").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return Record{}, err
	}
	return r.Get(ctx, key)
}

// Delete removes the record for name.
func (r *BunRepository) Delete(ctx context.Context, name string) error {
	if r.db == nil {
		return errNoDatabase
	}
	res, err := r.db.NewDelete().
		Model((*functionModel)(nil)).
		Where("name = ?", normalizeName(name)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

type functionModel struct {
	bun.BaseModel `bun:"table:template_functions"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Name      string    `bun:"name,notnull,unique"`
	Source    string    `bun:"source,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m functionModel) record() Record {
	return Record{
		ID:        m.ID,
		Name:      m.Name,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

var _ Repository = (*BunRepository)(nil)
