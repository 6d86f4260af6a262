package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/datadash/internal/table"
)

// Analyze infers a type for every column of t, summarises each column and
// correlates the numeric ones. It never fails: an empty table yields empty
// maps.
func Analyze(t *table.Table, opt Options) *Result {
	res := &Result{
		ColumnTypes:  map[string]ColumnType{},
		Summaries:    map[string]ColumnSummary{},
		Correlations: CorrelationMatrix{},
	}
	if t.Len() == 0 {
		return res
	}
	res.Columns = append([]string(nil), t.Columns...)

	var numCols []string
	numVals := map[string][]float64{}
	for _, col := range t.Columns {
		if _, seen := res.ColumnTypes[col]; seen {
			continue
		}
		vals := t.Column(col)
		if nums, ok := numericValues(vals, opt); ok {
			res.ColumnTypes[col] = Numeric
			res.Summaries[col] = ColumnSummary{Type: Numeric, Numeric: summarizeNumeric(nums, opt)}
			numCols = append(numCols, col)
			numVals[col] = nums
			continue
		}
		res.ColumnTypes[col] = Categorical
		res.Summaries[col] = ColumnSummary{Type: Categorical, Categorical: summarizeCategorical(vals, opt)}
	}
	res.Correlations = correlateColumns(numCols, numVals, opt.ZeroVariance)
	return res
}

// numericValues returns the coerced column when every cell coerces to a
// finite number. A single failure makes the whole column categorical.
func numericValues(vals []table.Value, opt Options) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, ok := coerce(v, opt)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, len(out) > 0
}

func summarizeNumeric(vals []float64, opt Options) *NumericSummary {
	s := &NumericSummary{Count: len(vals), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, x := range vals {
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	// keep rounding drift inside the observed range
	s.Mean = math.Min(math.Max(Mean(vals), s.Min), s.Max)
	s.Std = stdDev(vals, s.Mean)
	s.Median = Quantile(vals, 0.5)
	if opt.Outliers && len(vals) >= 8 {
		s.Outliers = outlierStats(vals, opt.OutlierThreshold)
	}
	return s
}

// summarizeCategorical counts distinct stringified values. The most common
// value is the first, by first occurrence, to reach the highest count.
func summarizeCategorical(vals []table.Value, opt Options) *CategoricalSummary {
	counts := make(map[string]int)
	var order []string
	for _, v := range vals {
		key := v.String()
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}
	s := &CategoricalSummary{UniqueValueCount: len(order)}
	for _, k := range order {
		if counts[k] > s.MostCommonCount {
			s.MostCommonValue = k
			s.MostCommonCount = counts[k]
		}
	}
	limit := opt.TopValues
	if limit <= 0 {
		limit = 8
	}
	tops := make([]CategoryCount, len(order))
	for i, k := range order {
		tops[i] = CategoryCount{Value: k, Count: counts[k]}
	}
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Count > tops[j].Count })
	if len(tops) > limit {
		tops = tops[:limit]
	}
	s.TopValues = tops
	return s
}
