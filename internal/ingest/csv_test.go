package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestStreamCSV_Basic(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a,b,c\n1,2,3\n4,5\n"), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"4", "5"}, rows[2])
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{name: "comma", data: "date,product,qty\n", want: ','},
		{name: "semicolon", data: "date;product;qty\n2024-01-01;A;1\n", want: ';'},
		{name: "tab", data: "date\tproduct\tqty\n", want: '\t'},
		{name: "pipe", data: "date|product|qty\n", want: '|'},
		{name: "quoted commas ignored", data: "\"a,b,c\";\"d,e\";f\n", want: ';'},
		{name: "leading blank lines", data: "\n\n  \ndate;product\n", want: ';'},
		{name: "single column", data: "date\n", want: ','},
		{name: "empty", data: "", want: ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.data)))
		})
	}
}

func TestReadFile_CSV(t *testing.T) {
	path := writeTestFile(t, "sales.csv", []byte("Date,Product Name,Qty\n2024-01-15,Widget,2\n2024-01-16,Gadget,1\n"))

	table, err := ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, table.Source)
	assert.Equal(t, []string{"Date", "Product Name", "Qty"}, table.Header)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"2024-01-16", "Gadget", "1"}, table.Rows[1])
}

func TestReadFile_SemicolonAutoDetected(t *testing.T) {
	path := writeTestFile(t, "sales.csv", []byte("date;product;price\n2024-01-15;Widget;\"10,50\"\n"))

	table, err := ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "product", "price"}, table.Header)
	assert.Equal(t, []string{"2024-01-15", "Widget", "10,50"}, table.Rows[0])
}

func TestReadFile_ExplicitDelimiter(t *testing.T) {
	path := writeTestFile(t, "sales.txt", []byte("date|product,name\n2024-01-15|Widget,Blue\n"))

	table, err := ReadFile(context.Background(), path, Options{Delimiter: '|'})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "product,name"}, table.Header)
}

func TestReadFile_TSV(t *testing.T) {
	path := writeTestFile(t, "sales.tsv", []byte("date\tproduct\n2024-01-15\tWidget, large\n"))

	table, err := ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-15", "Widget, large"}, table.Rows[0])
}

func TestReadFile_StripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("date,product\n2024-01-15,Widget\n")...)
	path := writeTestFile(t, "bom.csv", data)

	table, err := ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "date", table.Header[0])
}

func TestReadFile_Windows1252(t *testing.T) {
	path := writeTestFile(t, "latin.csv", []byte("date,product\n2024-01-15,Caf\xe9 Cr\xe8me\n"))

	table, err := ReadFile(context.Background(), path, Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "Café Crème", table.Rows[0][1])
}

func TestReadFile_UnknownEncoding(t *testing.T) {
	path := writeTestFile(t, "x.csv", []byte("date,product\n"))

	_, err := ReadFile(context.Background(), path, Options{Encoding: "klingon"})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "klingon")
}

func TestReadFile_HeaderOnly(t *testing.T) {
	path := writeTestFile(t, "empty.csv", []byte("date,product\n"))

	table, err := ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestReadFile_Empty(t *testing.T) {
	path := writeTestFile(t, "empty.csv", nil)

	_, err := ReadFile(context.Background(), path, Options{})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Contains(t, err.Error(), "empty.csv")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestReadFile_TooManyBytes(t *testing.T) {
	path := writeTestFile(t, "big.csv", []byte("date,product\n2024-01-15,Widget\n"))

	_, err := ReadFile(context.Background(), path, Options{MaxBytes: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestReadFile_TooManyRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("date,product\n")
	for range 20 {
		sb.WriteString("2024-01-15,Widget\n")
	}
	path := writeTestFile(t, "rows.csv", []byte(sb.String()))

	_, err := ReadFile(context.Background(), path, Options{MaxRows: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)

	table, err := ReadFile(context.Background(), path, Options{MaxRows: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, table.Len())
}

func TestRead_LimitsReader(t *testing.T) {
	_, err := Read(context.Background(), "upload.csv", strings.NewReader(strings.Repeat("x", 100)), Options{MaxBytes: 50})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"sales.csv":       FormatDelimited,
		"SALES.CSV":       FormatDelimited,
		"sales.tsv":       FormatDelimited,
		"sales.txt":       FormatDelimited,
		"sales.xlsx":      FormatSpreadsheet,
		"sales.xls":       FormatSpreadsheet,
		"sales":           FormatSpreadsheet,
		"/tmp/a.b/c.xlsm": FormatSpreadsheet,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, FormatOf(name))
		})
	}
}
