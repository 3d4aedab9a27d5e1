// Package csvio reads transaction records from CSV and writes account
// snapshots as CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"payments_engine/internal/domain"
)

const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyInput    = errors.New("empty input")
)

// Record is one structurally valid input row. Type is the raw value; it is
// interpreted by the validator.
type Record struct {
	Line   int
	Type   string
	Client domain.AccountID
	Tx     domain.TransactionID
	Amount *domain.Amount
}

// ParseError is a row that could not be decoded. Reading can continue after
// it.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader decodes records from a CSV stream whose header names the columns
// type, client, tx and optionally amount, in any order. Values are trimmed and
// rows may omit trailing fields.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	for _, required := range []string{ColumnType, ColumnClient, ColumnTx} {
		if _, exists := columns[required]; !exists {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Next returns the next record, io.EOF at the end of input, or a *ParseError
// for a malformed row.
func (r *Reader) Next() (Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return Record{}, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}
		return Record{}, fmt.Errorf("failed to read record: %w", err)
	}

	line, _ := r.csv.FieldPos(0)
	record := Record{Line: line, Type: r.field(fields, ColumnType)}

	client, err := strconv.ParseUint(r.field(fields, ColumnClient), 10, 16)
	if err != nil {
		return Record{}, &ParseError{Line: line, Err: fmt.Errorf("invalid client: %w", err)}
	}
	record.Client = domain.AccountID(client)

	tx, err := strconv.ParseUint(r.field(fields, ColumnTx), 10, 32)
	if err != nil {
		return Record{}, &ParseError{Line: line, Err: fmt.Errorf("invalid tx: %w", err)}
	}
	record.Tx = domain.TransactionID(tx)

	if raw := r.field(fields, ColumnAmount); raw != "" {
		amount, err := domain.ParseAmount(raw)
		if err != nil {
			return Record{}, &ParseError{Line: line, Err: err}
		}
		record.Amount = &amount
	}

	return record, nil
}

func (r *Reader) field(fields []string, column string) string {
	i, exists := r.columns[column]
	if !exists || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
