package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/aura-webinar/keygate/internal/models"
)

// MemoryStore is an in-process table with a header row, laid out like the
// spreadsheet backend. Rows are 1-based and row 1 is the header.
type MemoryStore struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
	cols   Columns
}

// NewMemoryStore builds a table from a header and data rows.
func NewMemoryStore(header []string, rows [][]string, names ColumnNames) (*MemoryStore, error) {
	cols, err := BindColumns(header, names)
	if err != nil {
		return nil, err
	}
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	return &MemoryStore{header: append([]string(nil), header...), rows: copied, cols: cols}, nil
}

// LoadMemoryStore reads a CSV file whose first line is the header row.
func LoadMemoryStore(path string, names ColumnNames) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("records file %s: %w", path, ErrColumnMissing)
	}
	return NewMemoryStore(all[0], all[1:], names)
}

// FindByKey returns the first row whose key cell equals key exactly.
func (s *MemoryStore) FindByKey(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if s.cols.Key < len(r) && r[s.cols.Key] == key {
			return i + 2, nil
		}
	}
	return 0, ErrNotFound
}

// Read returns the record at row.
func (s *MemoryStore) Read(_ context.Context, row int) (*models.RegistrantRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells, err := s.row(row)
	if err != nil {
		return nil, err
	}
	return s.cols.Record(row, cells), nil
}

// Write sets the fields present in u on the row.
func (s *MemoryStore) Write(_ context.Context, row int, u models.RecordUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cells, err := s.row(row)
	if err != nil {
		return err
	}
	for _, f := range updateFields(u) {
		col, ok := s.cols.column(f.name)
		if !ok {
			return fmt.Errorf("unknown field %s", f.name)
		}
		for len(cells) <= col {
			cells = append(cells, "")
		}
		cells[col] = f.value
	}
	s.rows[row-2] = cells
	return nil
}

// Rows returns a copy of the data rows.
func (s *MemoryStore) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func (s *MemoryStore) row(row int) ([]string, error) {
	i := row - 2
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	return s.rows[i], nil
}
