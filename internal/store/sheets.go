package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/aura-webinar/keygate/internal/models"
)

// SheetsConfig locates the worksheet that holds the key records.
type SheetsConfig struct {
	CredentialsFile string
	SheetKey        string
	Worksheet       string
}

// SheetsStore keeps records in a Google Sheets worksheet. Row 1 is the header;
// rows are addressed by their 1-based sheet row number.
type SheetsStore struct {
	values    *sheets.SpreadsheetsValuesService
	sheetKey  string
	worksheet string
	cols      Columns
	logger    *zap.Logger
}

// NewSheetsStore connects to the spreadsheet and binds columns from its header row.
func NewSheetsStore(ctx context.Context, cfg SheetsConfig, names ColumnNames, logger *zap.Logger, opts ...option.ClientOption) (*SheetsStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SheetKey == "" || cfg.Worksheet == "" {
		return nil, fmt.Errorf("sheets store: sheet key and worksheet name are required")
	}
	if cfg.CredentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, opts...)
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	s := &SheetsStore{
		values:    srv.Spreadsheets.Values,
		sheetKey:  cfg.SheetKey,
		worksheet: cfg.Worksheet,
		logger:    logger,
	}

	header, err := s.get(ctx, s.a1("1:1"))
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	var first []string
	if len(header) > 0 {
		first = header[0]
	}
	s.cols, err = BindColumns(first, names)
	if err != nil {
		return nil, err
	}
	logger.Info("sheets store bound",
		zap.String("worksheet", cfg.Worksheet),
		zap.String("key_column", columnLetter(s.cols.Key)),
		zap.String("status_column", columnLetter(s.cols.Status)),
		zap.String("data_column", columnLetter(s.cols.Data)),
		zap.String("external_id_column", columnLetter(s.cols.ExternalID)),
		zap.String("time_id_column", columnLetter(s.cols.TimeID)),
	)
	return s, nil
}

// FindByKey scans the key column below the header for an exact match.
func (s *SheetsStore) FindByKey(ctx context.Context, key string) (int, error) {
	col := columnLetter(s.cols.Key)
	rows, err := s.get(ctx, s.a1(col+":"+col))
	if err != nil {
		return 0, fmt.Errorf("read key column: %w", err)
	}
	for i, r := range rows {
		if i == 0 || len(r) == 0 {
			continue
		}
		if r[0] == key {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

// Read fetches one sheet row.
func (s *SheetsStore) Read(ctx context.Context, row int) (*models.RegistrantRecord, error) {
	r := strconv.Itoa(row)
	rows, err := s.get(ctx, s.a1(r+":"+r))
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	return s.cols.Record(row, rows[0]), nil
}

// Write updates one cell per field present in u.
func (s *SheetsStore) Write(ctx context.Context, row int, u models.RecordUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	for _, f := range updateFields(u) {
		col, ok := s.cols.column(f.name)
		if !ok {
			return fmt.Errorf("unknown field %s", f.name)
		}
		cell := s.a1(columnLetter(col) + strconv.Itoa(row))
		vr := &sheets.ValueRange{Values: [][]interface{}{{f.value}}}
		if _, err := s.values.Update(s.sheetKey, cell, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write %s at row %d: %w", f.name, row, err)
		}
	}
	return nil
}

func (s *SheetsStore) get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := s.values.Get(s.sheetKey, rng).MajorDimension("ROWS").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = fmt.Sprint(v)
		}
		out[i] = cells
	}
	return out, nil
}

// a1 prefixes a range with the quoted worksheet name.
func (s *SheetsStore) a1(rng string) string {
	return "'" + strings.ReplaceAll(s.worksheet, "'", "''") + "'!" + rng
}

// columnLetter converts a zero-based column index to its A1 letters.
func columnLetter(i int) string {
	var b []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
