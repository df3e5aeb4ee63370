// Package store reads and writes registrant key records. Records live in a
// row-oriented backing store and are only ever located by their key.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aura-webinar/keygate/internal/models"
)

var (
	// ErrNotFound is returned when no record matches a key or row.
	ErrNotFound = errors.New("record not found")
	// ErrColumnMissing is returned when a configured header is absent from the header row.
	ErrColumnMissing = errors.New("column missing from header row")
)

// Store is the record store used by the approval pipeline. There is no
// locking; concurrent writers to the same row race and the last write wins.
type Store interface {
	// FindByKey returns the row whose key column equals key exactly.
	FindByKey(ctx context.Context, key string) (int, error)
	// Read materializes the record at row.
	Read(ctx context.Context, row int) (*models.RegistrantRecord, error)
	// Write updates the fields set in u. Each field is written by a separate request.
	Write(ctx context.Context, row int, u models.RecordUpdate) error
}

// ColumnNames are the header labels of the logical record columns.
type ColumnNames struct {
	Key        string
	Name       string
	Status     string
	Data       string
	ExternalID string
	TimeID     string
}

// Columns are zero-based positions of the logical columns, bound once at startup.
type Columns struct {
	Key        int
	Name       int
	Status     int
	Data       int
	ExternalID int
	TimeID     int
}

// BindColumns resolves names against a header row. Name is optional and
// falls back to the first column.
func BindColumns(header []string, names ColumnNames) (Columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	lookup := func(logical, label string) (int, error) {
		label = strings.TrimSpace(label)
		if label == "" {
			return 0, fmt.Errorf("%w: no header configured for %s", ErrColumnMissing, logical)
		}
		i, ok := index[label]
		if !ok {
			return 0, fmt.Errorf("%w: %q (%s)", ErrColumnMissing, label, logical)
		}
		return i, nil
	}

	var (
		cols Columns
		err  error
	)
	if cols.Key, err = lookup("key", names.Key); err != nil {
		return Columns{}, err
	}
	if cols.Status, err = lookup("status", names.Status); err != nil {
		return Columns{}, err
	}
	if cols.Data, err = lookup("data", names.Data); err != nil {
		return Columns{}, err
	}
	if cols.ExternalID, err = lookup("external_id", names.ExternalID); err != nil {
		return Columns{}, err
	}
	if cols.TimeID, err = lookup("time_id", names.TimeID); err != nil {
		return Columns{}, err
	}
	if strings.TrimSpace(names.Name) != "" {
		if cols.Name, err = lookup("name", names.Name); err != nil {
			return Columns{}, err
		}
	}
	return cols, nil
}

// Record builds a record from the cells of one row. Short rows read as empty cells.
func (c Columns) Record(row int, cells []string) *models.RegistrantRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	return &models.RegistrantRecord{
		Row:            row,
		Key:            cell(c.Key),
		Name:           cell(c.Name),
		Status:         models.RegistrantStatus(strings.TrimSpace(cell(c.Status))),
		Data:           cell(c.Data),
		ExternalID:     cell(c.ExternalID),
		ExpectedTimeID: cell(c.TimeID),
	}
}

// Logical names of the writable fields.
const (
	FieldStatus     = "status"
	FieldData       = "data"
	FieldExternalID = "external_id"
)

// field is one named value derived from a RecordUpdate.
type field struct {
	name  string
	value string
}

// updateFields expands u in write order: external id, data, then status, so a
// record never reads as decided before its data is in place.
func updateFields(u models.RecordUpdate) []field {
	var out []field
	if u.ExternalID != nil {
		out = append(out, field{name: FieldExternalID, value: *u.ExternalID})
	}
	if u.Data != nil {
		out = append(out, field{name: FieldData, value: *u.Data})
	}
	if u.Status != nil {
		out = append(out, field{name: FieldStatus, value: string(*u.Status)})
	}
	return out
}

// column returns the bound position of a writable field.
func (c Columns) column(name string) (int, bool) {
	switch name {
	case FieldStatus:
		return c.Status, true
	case FieldData:
		return c.Data, true
	case FieldExternalID:
		return c.ExternalID, true
	}
	return 0, false
}
