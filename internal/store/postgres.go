package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aura-webinar/keygate/internal/models"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps records in the registrants table. Row is the primary key.
type PostgresStore struct {
	pool Querier
}

// NewPostgresStore creates a registrants store.
func NewPostgresStore(pool Querier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// postgresColumns maps logical fields to the fixed table columns.
var postgresColumns = map[string]string{
	FieldStatus:     "status",
	FieldData:       "data",
	FieldExternalID: "external_id",
}

// FindByKey returns the id of the row whose registrant_key equals key.
func (s *PostgresStore) FindByKey(ctx context.Context, key string) (int, error) {
	const q = `SELECT id FROM registrants WHERE registrant_key = $1`
	var id int
	if err := s.pool.QueryRow(ctx, q, key).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("find key: %w", err)
	}
	return id, nil
}

// Read loads one registrant row.
func (s *PostgresStore) Read(ctx context.Context, row int) (*models.RegistrantRecord, error) {
	const q = `SELECT id, registrant_key, name, status, data, external_id, time_id FROM registrants WHERE id = $1`
	var (
		rec    models.RegistrantRecord
		status string
	)
	err := s.pool.QueryRow(ctx, q, row).Scan(&rec.Row, &rec.Key, &rec.Name, &status, &rec.Data, &rec.ExternalID, &rec.ExpectedTimeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("row %d: %w", row, ErrNotFound)
		}
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	rec.Status = models.RegistrantStatus(status)
	return &rec, nil
}

// Write issues one UPDATE per field present in u.
func (s *PostgresStore) Write(ctx context.Context, row int, u models.RecordUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	for _, f := range updateFields(u) {
		col, ok := postgresColumns[f.name]
		if !ok {
			return fmt.Errorf("unknown field %s", f.name)
		}
		q := `UPDATE registrants SET ` + col + ` = $1, updated_at = NOW() WHERE id = $2`
		tag, err := s.pool.Exec(ctx, q, f.value, row)
		if err != nil {
			return fmt.Errorf("write %s at row %d: %w", f.name, row, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("row %d: %w", row, ErrNotFound)
		}
	}
	return nil
}
