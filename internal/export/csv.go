package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteCSV writes one table as CSV with a header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrapf(err, "export: write %s header", t.Name)
	}
	rec := make([]string, 0, len(t.Header))
	for _, row := range t.Rows {
		rec = rec[:0]
		for _, v := range row {
			rec = append(rec, formatCell(v))
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "export: write %s row", t.Name)
		}
	}
	cw.Flush()
	return eris.Wrapf(cw.Error(), "export: flush %s", t.Name)
}

// WriteCSVDir writes each table to <dir>/<name>.csv, creating dir if needed.
// It returns the paths written in table order.
func WriteCSVDir(dir string, tables []Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeCSVFile(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
