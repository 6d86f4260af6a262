package report

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/datadash/internal/analysis"
)

// Placeholder stands in for absent or empty summary fields.
const Placeholder = "-"

// BlankValue shows an empty string that is itself a summary value.
const BlankValue = `""`

// SummaryRow is one line of the column summary table.
type SummaryRow struct {
	Column     string `json:"column" yaml:"column"`
	Type       string `json:"type" yaml:"type"`
	Min        string `json:"min" yaml:"min"`
	Max        string `json:"max" yaml:"max"`
	Mean       string `json:"mean" yaml:"mean"`
	Unique     string `json:"unique" yaml:"unique"`
	MostCommon string `json:"mostCommon" yaml:"mostCommon"`
}

// SummaryRows lays the result out as the column summary table, in column
// order. Numbers carry two decimals.
func SummaryRows(res *analysis.Result) []SummaryRow {
	if res == nil {
		return nil
	}
	rows := make([]SummaryRow, 0, len(res.Columns))
	for _, c := range res.Columns {
		s, ok := res.Summaries[c]
		if !ok {
			continue
		}
		row := SummaryRow{
			Column: c, Type: string(s.Type),
			Min: Placeholder, Max: Placeholder, Mean: Placeholder,
			Unique: Placeholder, MostCommon: Placeholder,
		}
		if n := s.Numeric; n != nil {
			row.Min = Fixed2(n.Min)
			row.Max = Fixed2(n.Max)
			row.Mean = Fixed2(n.Mean)
		}
		if cs := s.Categorical; cs != nil {
			if cs.UniqueValueCount > 0 {
				row.Unique = strconv.Itoa(cs.UniqueValueCount)
			}
			switch {
			case cs.UniqueValueCount == 0:
			case cs.MostCommonValue == "":
				row.MostCommon = BlankValue
			default:
				row.MostCommon = cs.MostCommonValue
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Fixed2 formats f with exactly two decimals, rounding half away from zero.
// Non-finite values render as the placeholder.
func Fixed2(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Placeholder
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}
