// Package ingest reads delimited text and spreadsheet sales exports into raw tables.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// Default input ceilings.
const (
	DefaultMaxBytes int64 = 50 << 20
	DefaultMaxRows        = 1_000_000
)

// ErrTooLarge is returned when an input exceeds Options.MaxBytes or Options.MaxRows.
var ErrTooLarge = eris.New("input exceeds size limit")

// ErrEmpty is returned for an input with no header row.
var ErrEmpty = eris.New("file is empty")

// ParseError reports an input that could not be read as a table.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Format is the parser chosen for an input.
type Format string

const (
	FormatDelimited   Format = "delimited"
	FormatSpreadsheet Format = "spreadsheet"
)

// FormatOf sniffs the format from the file extension. Anything that is not a
// known delimited text extension is treated as a spreadsheet.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return FormatDelimited
	default:
		return FormatSpreadsheet
	}
}

// Options configures reading.
type Options struct {
	MaxBytes   int64  // 0 uses DefaultMaxBytes
	MaxRows    int    // data rows; 0 uses DefaultMaxRows
	Delimiter  rune   // 0 auto-detects
	Encoding   string // WHATWG label such as "windows-1252"; "" is UTF-8
	SheetIndex int
	SheetName  string // overrides SheetIndex
}

func (o Options) withDefaults() Options {
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	return o
}

// ReadFile reads the file at path. Files larger than MaxBytes are rejected
// before they are opened.
func ReadFile(ctx context.Context, path string, opts Options) (model.RawTable, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(path)
	if err != nil {
		return model.RawTable{}, &ParseError{Source: path, Err: eris.Wrap(err, "stat file")}
	}
	if info.IsDir() {
		return model.RawTable{}, &ParseError{Source: path, Err: eris.New("is a directory")}
	}
	if info.Size() > opts.MaxBytes {
		return model.RawTable{}, eris.Wrapf(ErrTooLarge, "ingest: %s is %d bytes (limit %d)", path, info.Size(), opts.MaxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.RawTable{}, &ParseError{Source: path, Err: eris.Wrap(err, "open file")}
	}
	defer f.Close() //nolint:errcheck

	return Read(ctx, path, f, opts)
}

// Read parses r as the format implied by name's extension. At most MaxBytes
// are consumed.
func Read(ctx context.Context, name string, r io.Reader, opts Options) (model.RawTable, error) {
	opts = opts.withDefaults()

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxBytes+1))
	if err != nil {
		return model.RawTable{}, eris.Wrap(err, "ingest: read input")
	}
	if int64(len(data)) > opts.MaxBytes {
		return model.RawTable{}, eris.Wrapf(ErrTooLarge, "ingest: %s exceeds %d bytes", name, opts.MaxBytes)
	}

	format := FormatOf(name)
	zap.L().Debug("ingest: reading table",
		zap.String("source", name),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	switch format {
	case FormatDelimited:
		return readDelimited(ctx, name, bytes.NewReader(data), opts)
	default:
		return readSpreadsheet(ctx, name, data, opts)
	}
}

// toTable splits rows into header and data rows.
func toTable(source string, rows [][]string) (model.RawTable, error) {
	if len(rows) == 0 {
		return model.RawTable{}, &ParseError{Source: source, Err: ErrEmpty}
	}
	return model.RawTable{Source: source, Header: rows[0], Rows: rows[1:]}, nil
}

func tooManyRows(source string, limit int) error {
	return eris.Wrapf(ErrTooLarge, "ingest: %s has more than %d rows", source, limit)
}
