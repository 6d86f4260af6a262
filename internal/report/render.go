package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/utils"
)

// Format names a report rendering.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts md/markdown, json and yaml/yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want md, json or yaml)", s)
}

// Render encodes the report in the given format.
func (r *Report) Render(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return r.JSON()
	case FormatYAML:
		return r.YAML()
	default:
		return []byte(r.Markdown()), nil
	}
}

// JSON encodes the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	return utils.PrettyJSON(r)
}

// YAML encodes the report as YAML.
func (r *Report) YAML() ([]byte, error) {
	return encodeYAML(r)
}

// Encode writes v as JSON or YAML. Markdown has no generic form.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return utils.PrettyJSON(v)
	case FormatYAML:
		return encodeYAML(v)
	}
	return nil, fmt.Errorf("format %q is not a structured format", f)
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	res := r.Result
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Processed > 0 && r.Processed < r.Rows {
		b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(res.Columns)))
	if r.Fingerprint != "" {
		b.WriteString(fmt.Sprintf("Fingerprint: %s\n", r.Fingerprint))
	}
	b.WriteString("\n")

	if len(res.Columns) > 0 {
		b.WriteString("[SUMMARY STATISTICS]\n")
		b.WriteString("| Column | Type | Min | Max | Mean | Unique Values | Most Common |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
		for _, row := range SummaryRows(res) {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				safeName(row.Column), row.Type, row.Min, row.Max, row.Mean, row.Unique, safeVal(row.MostCommon)))
		}

		b.WriteString("\n[SCHEMA]\n")
		for _, c := range res.Columns {
			s := res.Summaries[c]
			b.WriteString(fmt.Sprintf("- %s: %s", safeName(c), s.Type))
			switch {
			case s.Numeric != nil:
				n := s.Numeric
				b.WriteString(fmt.Sprintf(" (n=%d) min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", n.Count, n.Min, n.Max, n.Mean, n.Median, n.Std))
				if o := n.Outliers; o != nil {
					b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", o.Count, o.Threshold))
					if o.MaxAbsZ > 0 {
						b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", o.MaxAbsZ))
					}
				}
			case s.Categorical != nil:
				cs := s.Categorical
				if len(cs.TopValues) > 0 {
					b.WriteString(" top: ")
					for i, kv := range cs.TopValues {
						if i > 0 {
							b.WriteString(", ")
						}
						b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
					}
				}
				b.WriteString(fmt.Sprintf("; unique=%d", cs.UniqueValueCount))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		numeric := res.NumericColumns()
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", g.Key, g.Size))
			shown := 0
			for _, c := range numeric {
				m, ok := g.Metrics[c]
				if !ok {
					continue
				}
				// print up to 6 metrics
				if shown == 6 {
					break
				}
				shown++
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", c, m.Mean, m.Min, m.Max))
			}
		}
		hasGCorr := false
		for _, g := range r.Groups {
			if len(g.CorrPairs) > 0 {
				hasGCorr = true
				break
			}
		}
		if hasGCorr {
			b.WriteString("\n[PER-GROUP CORRELATIONS]\n")
			for _, g := range r.Groups {
				if len(g.CorrPairs) == 0 {
					continue
				}
				b.WriteString(fmt.Sprintf("- %s:\n", g.Key))
				for i, p := range g.CorrPairs {
					if i == 8 {
						break
					}
					b.WriteString(fmt.Sprintf("  • %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
				}
			}
		}
	}

	numeric := res.NumericColumns()
	if len(numeric) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		pairs := res.Correlations.TopPairs(numeric, 10)
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
		if undefined := undefinedPairs(res.Correlations, numeric); undefined > 0 {
			b.WriteString(fmt.Sprintf("- %d pair(s) undefined (zero variance)\n", undefined))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		writeTable(&b, res.Columns, r.Samples)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func undefinedPairs(m analysis.CorrelationMatrix, cols []string) int {
	n := 0
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			if r, ok := m.Get(cols[i], cols[j]); ok && math.IsNaN(r) {
				n++
			}
		}
	}
	return n
}

// writeTable writes a Markdown table; cells longer than 80 bytes are cut.
func writeTable(b *strings.Builder, cols []string, rows [][]string) {
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
