// Package ingest loads tabular files into a table.Table.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"

	"github.com/KaramelBytes/datadash/internal/table"
	"github.com/KaramelBytes/datadash/internal/utils"
)

// ErrUnsupported indicates a file format no decoder handles.
var ErrUnsupported = errors.New("unsupported file format")

// ErrSheetNotFound indicates a requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Options controls decoding.
type Options struct {
	// Delimiter overrides CSV delimiter sniffing when non-zero.
	Delimiter rune
	// SheetName selects an XLSX worksheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX worksheet by 1-based index when SheetName is empty.
	SheetIndex int
	// MaxRows keeps only the first MaxRows records when > 0.
	MaxRows int
}

// Decoder turns raw file content into a table.
type Decoder interface {
	CanDecode(name string) bool
	Decode(name string, data []byte, opt Options) (*table.Table, error)
}

var registry []Decoder

// Register adds a decoder implementation to the registry.
func Register(d Decoder) {
	registry = append(registry, d)
}

func init() {
	Register(csvDecoder{})
	Register(xlsxDecoder{})
}

// Dataset is a decoded file plus what is known about its source.
type Dataset struct {
	Name        string
	URL         string
	Fingerprint string
	Size        int
	// TotalRows counts the data records in the file; Table may hold fewer
	// when MaxRows truncated it.
	TotalRows int
	Table     *table.Table
}

// Truncated reports whether MaxRows dropped records.
func (d *Dataset) Truncated() bool { return d.Table.Len() < d.TotalRows }

// Load fetches url (a local path or any scheme afs understands) and decodes
// it with the first registered decoder that accepts its name.
func Load(ctx context.Context, url string, opt Options) (*Dataset, error) {
	name := path.Base(strings.TrimRight(url, "/"))
	dec := lookup(name)
	if dec == nil {
		return nil, &utils.AppError{Op: "ingest", Msg: name, Err: ErrUnsupported}
	}
	data, err := afs.New().DownloadWithURL(ctx, url)
	if err != nil {
		return nil, utils.Wrap("ingest", "read "+name, err)
	}
	ds, err := Decode(name, data, dec, opt)
	if err != nil {
		return nil, err
	}
	ds.URL = url
	return ds, nil
}

// Decode runs dec over data. A nil dec selects one by name.
func Decode(name string, data []byte, dec Decoder, opt Options) (*Dataset, error) {
	if dec == nil {
		if dec = lookup(name); dec == nil {
			return nil, &utils.AppError{Op: "ingest", Msg: name, Err: ErrUnsupported}
		}
	}
	t, err := dec.Decode(name, data, opt)
	if err != nil {
		return nil, utils.Wrap("ingest", "decode "+name, err)
	}
	fp, err := utils.Fingerprint(data)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	ds := &Dataset{Name: name, URL: name, Fingerprint: fp, Size: len(data), TotalRows: t.Len(), Table: t}
	if opt.MaxRows > 0 && t.Len() > opt.MaxRows {
		t.Records = t.Records[:opt.MaxRows]
	}
	return ds, nil
}

func lookup(name string) Decoder {
	for _, d := range registry {
		if d.CanDecode(name) {
			return d
		}
	}
	return nil
}

// Supported reports whether some decoder accepts name.
func Supported(name string) bool { return lookup(name) != nil }
