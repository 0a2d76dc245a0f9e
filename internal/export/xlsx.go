package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Workbook builds an XLSX workbook with one sheet per table. Numbers are
// written as numeric cells.
func Workbook(tables []Table) (*xlsx.File, error) {
	f := xlsx.NewFile()
	for _, t := range tables {
		name := t.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		sheet, err := f.AddSheet(name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", name)
		}

		header := sheet.AddRow()
		for _, h := range t.Header {
			header.AddCell().SetString(h)
		}
		for _, row := range t.Rows {
			r := sheet.AddRow()
			for _, v := range row {
				setCell(r.AddCell(), v)
			}
		}
	}
	return f, nil
}

// WriteWorkbook writes the tables as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, tables []Table) error {
	f, err := Workbook(tables)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// SaveWorkbook writes the tables as an XLSX workbook at path.
func SaveWorkbook(path string, tables []Table) error {
	f, err := Workbook(tables)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case int:
		c.SetInt(x)
	case int64:
		c.SetInt64(x)
	case decimal.Decimal:
		c.SetFloat(x.InexactFloat64())
	default:
		c.SetString(formatCell(v))
	}
}
