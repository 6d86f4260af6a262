package analysis

import (
	"encoding/json"
	"math"
)

// ColumnType is the inferred kind of a column.
type ColumnType string

const (
	Numeric     ColumnType = "numeric"
	Categorical ColumnType = "categorical"
)

// ZeroVariancePolicy decides what a correlation involving a constant column
// evaluates to.
type ZeroVariancePolicy string

const (
	// ZeroVarianceZero reports 0 when either column has zero variance.
	ZeroVarianceZero ZeroVariancePolicy = "zero"
	// ZeroVarianceNaN propagates the undefined result as NaN.
	ZeroVarianceNaN ZeroVariancePolicy = "nan"
)

// Options controls the analysis pass.
type Options struct {
	// Numeric parsing locale. When DecimalSeparator is 0, values are coerced
	// strictly (plain decimal and 0x/0o/0b literals only).
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0 with a DecimalSeparator set, common separators are stripped
	// ZeroVariance selects the correlation result for constant columns.
	ZeroVariance ZeroVariancePolicy
	// Outlier detection via robust Z-score (MAD). Counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// TopValues caps CategoricalSummary.TopValues; 0 means 8.
	TopValues int
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		ZeroVariance:     ZeroVarianceZero,
		Outliers:         true,
		OutlierThreshold: 3.5,
		TopValues:        8,
	}
}

// Result is the outcome of one analysis pass over one table. It holds no
// reference to the table it was computed from.
type Result struct {
	Columns      []string                 `json:"columns" yaml:"columns"`
	ColumnTypes  map[string]ColumnType    `json:"columnTypes" yaml:"columnTypes"`
	Summaries    map[string]ColumnSummary `json:"summary" yaml:"summary"`
	Correlations CorrelationMatrix        `json:"correlations" yaml:"correlations"`
}

// NumericColumns lists the numeric columns in column order.
func (r *Result) NumericColumns() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, c := range r.Columns {
		if r.ColumnTypes[c] == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// ColumnSummary carries exactly one of Numeric or Categorical, matching Type.
type ColumnSummary struct {
	Type        ColumnType          `json:"type" yaml:"type"`
	Numeric     *NumericSummary     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical *CategoricalSummary `json:"categorical,omitempty" yaml:"categorical,omitempty"`
}

// NumericSummary holds statistics over a numeric column's coerced values.
type NumericSummary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Std    float64 `json:"std" yaml:"std"` // population
	// Robust outliers (MAD); nil when detection is off or there are fewer than 8 values.
	Outliers *OutlierStats `json:"outliers,omitempty" yaml:"outliers,omitempty"`
}

type OutlierStats struct {
	Count     int     `json:"count" yaml:"count"`
	MaxAbsZ   float64 `json:"maxAbsZ" yaml:"maxAbsZ"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// CategoricalSummary holds value frequencies of a categorical column.
type CategoricalSummary struct {
	UniqueValueCount int             `json:"uniqueValues" yaml:"uniqueValues"`
	MostCommonValue  string          `json:"mostCommon" yaml:"mostCommon"`
	MostCommonCount  int             `json:"mostCommonCount" yaml:"mostCommonCount"`
	TopValues        []CategoryCount `json:"topValues,omitempty" yaml:"topValues,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CorrelationMatrix maps a numeric column to its Pearson correlation with
// every other numeric column. Self pairs are never stored.
type CorrelationMatrix map[string]map[string]float64

// Get returns corr(a, b) if both are numeric and distinct.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	row, ok := m[a]
	if !ok {
		return 0, false
	}
	r, ok := row[b]
	return r, ok
}

// MarshalJSON encodes NaN coefficients as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*float64, len(m))
	for a, row := range m {
		enc := make(map[string]*float64, len(row))
		for b, r := range row {
			if math.IsNaN(r) {
				enc[b] = nil
				continue
			}
			v := r
			enc[b] = &v
		}
		out[a] = enc
	}
	return json.Marshal(out)
}
