package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sales-analyzer/internal/model"
)

func readSpreadsheet(ctx context.Context, source string, data []byte, opts Options) (model.RawTable, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return model.RawTable{}, &ParseError{Source: source, Err: eris.Wrap(err, "xlsx: open workbook")}
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return model.RawTable{}, &ParseError{Source: source, Err: err}
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		if ctx.Err() != nil {
			return model.RawTable{}, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		if row == nil {
			continue
		}
		cells := rowToStrings(row)
		if isBlank(cells) {
			continue
		}
		rows = append(rows, cells)
		if len(rows) > opts.MaxRows+1 {
			return model.RawTable{}, tooManyRows(source, opts.MaxRows)
		}
	}

	return toTable(source, rows)
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// rowToStrings returns raw cell values. Dates stay as Excel serial numbers so
// the normalizer sees the same value regardless of cell formatting.
func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cell.Value
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
