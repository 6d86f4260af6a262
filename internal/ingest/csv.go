package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datadash/internal/table"
)

type csvDecoder struct{}

func (csvDecoder) CanDecode(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".tsv")
}

// Decode reads a header row followed by data rows. Cells stay strings; short
// rows leave trailing keys missing and extra fields are dropped.
func (csvDecoder) Decode(name string, data []byte, opt Options) (*table.Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, data)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table.New(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := dedupeHeader(header)
	t := table.New(columns)
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		row := make(table.Record, len(columns))
		for i, v := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = table.String(v)
		}
		t.Records = append(t.Records, row)
	}
	return t, nil
}

// dedupeHeader keeps the first position of every column name. A repeated
// name maps to the same key, so the later cell wins for that row.
func dedupeHeader(header []string) []string {
	seen := make(map[string]struct{}, len(header))
	cols := make([]string, 0, len(header))
	for _, h := range header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, h)
	}
	return cols
}

// sniffDelimiter picks tab for .tsv files. Otherwise the first line decides
// between comma, semicolon, tab and pipe, defaulting to comma.
func sniffDelimiter(name string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
