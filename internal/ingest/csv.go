package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// delimiterCandidates are tried in order by DetectDelimiter; earlier wins ties.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// StreamCSV reads delimited rows and sends them to a channel. The caller must
// consume the row channel. Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// DetectDelimiter picks the candidate delimiter that occurs most often,
// outside quotes, in the first non-empty line of data. It falls back to ','.
func DetectDelimiter(data []byte) rune {
	line := firstLine(data)

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, c := range line {
		if c == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[c]++
		}
	}

	best, bestCount := ',', 0
	for _, d := range delimiterCandidates {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

func firstLine(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// decode converts input in the named encoding to UTF-8 and strips a UTF-8
// byte order mark.
func decode(r io.Reader, encoding string) ([]byte, error) {
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") && !strings.EqualFold(encoding, "utf8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: unsupported encoding %q", encoding)
		}
		r = enc.NewDecoder().Reader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "csv: decode input")
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

func readDelimited(ctx context.Context, source string, r io.Reader, opts Options) (model.RawTable, error) {
	data, err := decode(r, opts.Encoding)
	if err != nil {
		return model.RawTable{}, &ParseError{Source: source, Err: err}
	}

	delim := opts.Delimiter
	if delim == 0 {
		if strings.EqualFold(filepath.Ext(source), ".tsv") {
			delim = '\t'
		} else {
			delim = DetectDelimiter(data)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := StreamCSV(ctx, bytes.NewReader(data), CSVOptions{Delimiter: delim, LazyQuotes: true})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
		// header plus MaxRows data rows
		if len(rows) > opts.MaxRows+1 {
			cancel()
			for range rowCh {
			}
			return model.RawTable{}, tooManyRows(source, opts.MaxRows)
		}
	}
	if err := <-errCh; err != nil {
		return model.RawTable{}, &ParseError{Source: source, Err: err}
	}

	return toTable(source, rows)
}
