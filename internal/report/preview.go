package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datadash/internal/table"
)

const (
	// PreviewRows is the page size of a preview.
	PreviewRows = 20
	// PreviewColumns caps the columns a preview shows.
	PreviewColumns = 20
)

// Page is one window of a table preview.
type Page struct {
	Name       string     `json:"name" yaml:"name"`
	Page       int        `json:"page" yaml:"page"` // 1-based
	TotalPages int        `json:"totalPages" yaml:"totalPages"`
	FirstRow   int        `json:"firstRow" yaml:"firstRow"` // 1-based, 0 when empty
	LastRow    int        `json:"lastRow" yaml:"lastRow"`
	TotalRows  int        `json:"totalRows" yaml:"totalRows"`
	Columns    []string   `json:"columns" yaml:"columns"`
	Rows       [][]string `json:"rows" yaml:"rows"`
}

// Preview returns page (1-based) of t with perPage rows and at most
// PreviewColumns columns. Out of range pages are clamped. Missing cells read
// "undefined", as they would when stringified.
func Preview(name string, t *table.Table, page, perPage int) *Page {
	if perPage <= 0 {
		perPage = PreviewRows
	}
	p := &Page{Name: name, TotalRows: t.Len()}
	if t.Len() == 0 {
		return p
	}
	p.TotalPages = (t.Len() + perPage - 1) / perPage
	p.Page = min(max(page, 1), p.TotalPages)
	start := (p.Page - 1) * perPage
	end := min(start+perPage, t.Len())
	p.FirstRow, p.LastRow = start+1, end

	p.Columns = t.Columns
	if len(p.Columns) > PreviewColumns {
		p.Columns = p.Columns[:PreviewColumns]
	}
	for i := start; i < end; i++ {
		row := make([]string, len(p.Columns))
		for j, c := range p.Columns {
			row[j] = t.Get(i, c).String()
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// Footer is the "Showing rows a-b of n" line.
func (p *Page) Footer() string {
	if p.TotalRows == 0 {
		return "No file data available to preview"
	}
	return fmt.Sprintf("Showing rows %d-%d of %d · Page %d of %d", p.FirstRow, p.LastRow, p.TotalRows, p.Page, p.TotalPages)
}

// Markdown renders the page as a table plus footer.
func (p *Page) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[FILE PREVIEW: %s]\n", p.Name))
	if len(p.Rows) > 0 {
		writeTable(&b, p.Columns, p.Rows)
	}
	b.WriteString(p.Footer())
	b.WriteString("\n")
	return b.String()
}

// Render encodes the page in the given format.
func (p *Page) Render(f Format) ([]byte, error) {
	if f == FormatMarkdown {
		return []byte(p.Markdown()), nil
	}
	return Encode(p, f)
}
