package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/table"
)

type xlsxDecoder struct{}

func (xlsxDecoder) CanDecode(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}

// Decode extracts the selected sheet. The first row is the header; numeric
// cells become numbers, everything else strings, and empty cells are left
// out of the record.
func (xlsxDecoder) Decode(name string, data []byte, opt Options) (*table.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	workbookXML := readZipFile(zr, "xl/workbook.xml")
	relsXML := readZipFile(zr, "xl/_rels/workbook.xml.rels")
	sharedXML := readZipFile(zr, "xl/sharedStrings.xml")
	sheets := parseWorkbook(workbookXML)
	rels := parseRelationships(relsXML)

	target, err := resolveSheet(name, sheets, rels, opt)
	if err != nil {
		return nil, err
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("worksheet %s missing from %s", target, name)
	}
	rr := newSheetRowReader(sheetXML, parseSharedStrings(sharedXML))
	header, ok := rr.Next()
	for ok && blankRow(header) {
		header, ok = rr.Next()
	}
	if !ok {
		if err := rr.Err(); err != nil {
			return nil, err
		}
		return table.New(nil), nil
	}
	columns := headerNames(header)
	t := table.New(columns)
	for {
		row, ok := rr.Next()
		if !ok {
			if err := rr.Err(); err != nil {
				return nil, fmt.Errorf("row %d: %w", len(t.Records)+2, err)
			}
			break
		}
		if blankRow(row) {
			continue
		}
		rec := make(table.Record, len(columns))
		for i, v := range row {
			if i >= len(columns) || v.IsMissing() {
				continue
			}
			rec[columns[i]] = v
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// resolveSheet maps the requested sheet to its ZIP path. sheetIndex is
// 1-based (Sheet1 == 1); with neither name nor index the first sheet is used.
func resolveSheet(name string, sheets []wbSheet, rels map[string]string, opt Options) (string, error) {
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
				break
			}
		}
		available := make([]string, len(sheets))
		for i, s := range sheets {
			available[i] = s.Name
		}
		return "", fmt.Errorf("%w: '%s' in workbook '%s' (available sheets: %s)",
			ErrSheetNotFound, opt.SheetName, name, strings.Join(available, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		if len(sheets) > 0 {
			if rel, ok := rels[sheets[0].RID]; ok {
				return normalizeRelPath(rel), nil
			}
		}
		idx = 1
	}
	// find sheet with sheetId == idx, otherwise guess by worksheets/sheetN.xml
	for _, s := range sheets {
		if s.SheetID == idx {
			if rel, ok := rels[s.RID]; ok {
				return normalizeRelPath(rel), nil
			}
			break
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx)), nil
}

// headerNames stringifies the header row. Empty headers become __EMPTY,
// __EMPTY_1, ...; repeated names get a _1, _2 suffix.
func headerNames(row []table.Value) []string {
	used := map[string]bool{}
	next := map[string]int{}
	out := make([]string, len(row))
	for i, v := range row {
		base := strings.TrimSpace(v.String())
		if v.IsMissing() || base == "" {
			base = "__EMPTY"
		}
		h := base
		for used[h] {
			next[base]++
			h = fmt.Sprintf("%s_%d", base, next[base])
		}
		used[h] = true
		out[i] = h
	}
	return out
}

func blankRow(row []table.Value) bool {
	for _, v := range row {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
			var s wbSheet
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "name":
					s.Name = a.Value
				case "sheetId":
					s.SheetID, _ = strconv.Atoi(a.Value)
				case "id":
					s.RID = a.Value // in r: namespace
				}
			}
			sheets = append(sheets, s)
		}
	}
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var id, target string
			for _, a := range se.Attr {
				switch a.Name.Local {
				case "Id":
					id = a.Value
				case "Target":
					target = a.Value
				}
			}
			if id != "" && target != "" {
				out[id] = target
			}
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

// parseSharedStrings concatenates the <t> runs of every <si> entry.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "si" {
				buf.Reset()
			}
			if se.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			if se.Name.Local == "t" {
				inT = false
			}
			if se.Name.Local == "si" {
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// sheetRowReader streams typed rows out of a worksheet part.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	inRow  bool
	curRow []table.Value
	err    error
}

// maxColumns is the worksheet column limit (XFD).
const maxColumns = 16384

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Err reports why Next stopped early, nil at a clean end of sheet.
func (r *sheetRowReader) Err() error { return r.err }

func (r *sheetRowReader) Next() ([]table.Value, bool) {
	if r.err != nil {
		return nil, false
	}
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.curRow = nil
			}
			if r.inRow && se.Name.Local == "c" {
				// cell: attributes r (A1), t (type)
				var rAttr, tAttr string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						rAttr = a.Value
					case "t":
						tAttr = a.Value
					}
				}
				colIdx := len(r.curRow)
				if rAttr != "" {
					colIdx = colIndexFromRef(rAttr)
				}
				if colIdx >= maxColumns {
					r.err = fmt.Errorf("cell %q is beyond the last worksheet column XFD", rAttr)
					return nil, false
				}
				val := r.readCellValue(tAttr)
				if colIdx < 0 {
					continue
				}
				if len(r.curRow) <= colIdx {
					tmp := make([]table.Value, colIdx+1)
					copy(tmp, r.curRow)
					r.curRow = tmp
				}
				r.curRow[colIdx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				r.inRow = false
				return r.curRow, true
			}
		}
	}
}

// readCellValue consumes a <c> element and types its content by the t
// attribute: shared/inline/formula strings, booleans, errors and numbers.
func (r *sheetRowReader) readCellValue(tAttr string) table.Value {
	var raw string
	var hasVal bool
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return table.Missing()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, er := r.dec.Token()
					if er != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				if se.Name.Local == "t" && tAttr == "inlineStr" {
					raw += sb.String()
				} else {
					raw = sb.String()
				}
				hasVal = true
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if !hasVal {
					return table.Missing()
				}
				return typedCell(tAttr, raw, r.shared)
			}
		}
	}
}

func typedCell(tAttr, raw string, shared []string) table.Value {
	switch tAttr {
	case "s": // shared string
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(shared) {
			return table.Missing()
		}
		return table.String(shared[idx])
	case "b":
		return table.Bool(strings.TrimSpace(raw) == "1")
	case "str", "inlineStr", "e", "d":
		return table.String(raw)
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return table.String(raw)
		}
		return table.Number(f)
	}
}

// colIndexFromRef turns refs like "C12" into 2 (0-based index). References
// past XFD return maxColumns.
func colIndexFromRef(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	s := strings.ToUpper(ref[:i])
	idx := 0
	for j := 0; j < len(s); j++ {
		idx = idx*26 + int(s[j]-'A'+1)
		if idx > maxColumns {
			return maxColumns
		}
	}
	return idx - 1
}

// normalizeRelPath converts relationship Target paths to ZIP-compatible paths.
// Relationships may have leading slashes (e.g., "/xl/worksheets/sheet1.xml")
// but ZIP entries don't include the leading slash.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
