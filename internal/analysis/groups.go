package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/datadash/internal/table"
)

const (
	maxGroups        = 20
	maxGroupCorrPair = 10
)

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key       string                `json:"key" yaml:"key"`
	Size      int                   `json:"size" yaml:"size"`
	Metrics   map[string]NumSummary `json:"metrics" yaml:"metrics"`                         // by column name
	CorrPairs []PairCorr            `json:"corrPairs,omitempty" yaml:"corrPairs,omitempty"` // top pairs by |r|
}

type NumSummary struct {
	Count int     `json:"count" yaml:"count"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
}

// GroupBy splits t by the values of the key columns (matched
// case-insensitively) and summarises every numeric column of res per group.
// Unknown key columns are ignored; with no usable key nil is returned.
func GroupBy(t *table.Table, res *Result, keys []string, opt Options) []GroupResult {
	if t.Len() == 0 || len(keys) == 0 {
		return nil
	}
	index := map[string]string{}
	for _, c := range t.Columns {
		lc := strings.ToLower(strings.TrimSpace(c))
		if _, ok := index[lc]; !ok {
			index[lc] = c
		}
	}
	var keyCols []string
	for _, k := range keys {
		if c, ok := index[strings.ToLower(strings.TrimSpace(k))]; ok {
			keyCols = append(keyCols, c)
		}
	}
	if len(keyCols) == 0 {
		return nil
	}
	numeric := res.NumericColumns()

	type gAcc struct {
		size int
		rows []int
	}
	groups := map[string]*gAcc{}
	for i := range t.Records {
		parts := make([]string, len(keyCols))
		for j, c := range keyCols {
			parts[j] = fmt.Sprintf("%s=%s", c, safeKey(t.Get(i, c).String()))
		}
		gkey := strings.Join(parts, " | ")
		ga := groups[gkey]
		if ga == nil {
			ga = &gAcc{}
			groups[gkey] = ga
		}
		ga.size++
		ga.rows = append(ga.rows, i)
	}

	out := make([]GroupResult, 0, len(groups))
	for k, ga := range groups {
		gr := GroupResult{Key: k, Size: ga.size, Metrics: map[string]NumSummary{}}
		cols := make(map[string][]float64, len(numeric))
		for _, name := range numeric {
			vals := make([]float64, len(ga.rows))
			present := make([]float64, 0, len(ga.rows))
			ns := NumSummary{Min: math.Inf(1), Max: math.Inf(-1)}
			for j, row := range ga.rows {
				f, ok := coerce(t.Get(row, name), opt)
				if !ok {
					vals[j] = math.NaN()
					continue
				}
				vals[j] = f
				present = append(present, f)
				ns.Min = math.Min(ns.Min, f)
				ns.Max = math.Max(ns.Max, f)
			}
			cols[name] = vals
			ns.Count = len(present)
			if ns.Count == 0 {
				continue
			}
			ns.Mean = math.Min(math.Max(Mean(present), ns.Min), ns.Max)
			gr.Metrics[name] = ns
		}
		if ga.size >= 2 {
			gr.CorrPairs = topPairs(numeric, cols)
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > maxGroups {
		out = out[:maxGroups]
	}
	return out
}

// topPairs returns the strongest defined correlations of a group.
func topPairs(numeric []string, cols map[string][]float64) []PairCorr {
	var pairs []PairCorr
	for a := 0; a < len(numeric); a++ {
		for b := a + 1; b < len(numeric); b++ {
			r := Pearson(cols[numeric[a]], cols[numeric[b]], ZeroVarianceNaN)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: numeric[a], B: numeric[b], R: r})
		}
	}
	sortPairs(pairs)
	if len(pairs) > maxGroupCorrPair {
		pairs = pairs[:maxGroupCorrPair]
	}
	return pairs
}

// TopPairs lists the distinct pairs of m ordered by |r|, strongest first.
// NaN coefficients are skipped.
func (m CorrelationMatrix) TopPairs(columns []string, limit int) []PairCorr {
	var pairs []PairCorr
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			r, ok := m.Get(columns[i], columns[j])
			if !ok || math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: columns[i], B: columns[j], R: r})
		}
	}
	sortPairs(pairs)
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func sortPairs(pairs []PairCorr) {
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
}

func safeKey(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "\n", " "), "|", "/")
}
