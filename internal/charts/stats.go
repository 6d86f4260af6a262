package charts

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/table"
)

// Matrix is a square grid of values over Labels, row-major.
type Matrix struct {
	Labels []string    `json:"labels" yaml:"labels"`
	Values [][]float64 `json:"values" yaml:"values"`
}

// MarshalJSON writes undefined (NaN) coefficients as null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	type cell = *float64
	rows := make([][]cell, len(m.Values))
	for i, row := range m.Values {
		rows[i] = make([]cell, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				rows[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Labels []string `json:"labels"`
		Values [][]cell `json:"values"`
	}{m.Labels, rows})
}

// Bin is a histogram bucket; the last bucket includes its upper bound.
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// FiveNum is the box plot summary.
type FiveNum struct {
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
}

// Slice is one pie wedge.
type Slice struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Axis is one spoke of a radar chart.
type Axis struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// heatmap is the correlation matrix of the numeric columns with a unit
// diagonal. Undefined coefficients follow opt.ZeroVariance.
func heatmap(t *table.Table, numeric []string, opt analysis.Options) Chart {
	corr := analysis.Correlate(numeric, t, opt)
	m := &Matrix{Labels: numeric, Values: make([][]float64, len(numeric))}
	for i, a := range numeric {
		m.Values[i] = make([]float64, len(numeric))
		for j, b := range numeric {
			if i == j {
				m.Values[i][j] = 1
				continue
			}
			if r, ok := corr.Get(a, b); ok {
				m.Values[i][j] = r
			}
		}
	}
	return Chart{Kind: Heatmap, Title: "Correlation Heatmap", Matrix: m}
}

// sturges returns ceil(log2 n) + 1.
func sturges(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

func histograms(t *table.Table, numeric []string) []Chart {
	out := make([]Chart, 0, len(numeric))
	for i, col := range numeric {
		out = append(out, Chart{
			Kind:   Histogram,
			Title:  fmt.Sprintf("Histogram of %s", col),
			XLabel: col,
			Color:  color(i, len(numeric)),
			Bins:   bins(t.Floats(col)),
		})
	}
	return out
}

func bins(vals []float64) []Bin {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	k := sturges(len(vals))
	kf := float64(k)
	// bin width as hi/k - lo/k, finite where hi - lo would overflow
	width := hi/kf - lo/kf
	if lo == hi || width <= 0 || math.IsInf(width, 0) {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vals)}}
	}
	out := make([]Bin, k)
	for i := range out {
		out[i].Lo = edge(lo, hi, float64(i)/kf)
		out[i].Hi = edge(lo, hi, float64(i+1)/kf)
	}
	out[0].Lo, out[k-1].Hi = lo, hi
	for _, v := range vals {
		pos := (v/kf - lo/kf) / width * kf
		idx := k - 1
		if !math.IsNaN(pos) && pos < kf {
			idx = max(int(pos), 0)
		}
		out[min(idx, k-1)].Count++
	}
	return out
}

// edge interpolates between lo and hi without forming hi - lo.
func edge(lo, hi, frac float64) float64 {
	return lo*(1-frac) + hi*frac
}

func boxes(t *table.Table, numeric []string) []Chart {
	out := make([]Chart, 0, len(numeric))
	for i, col := range numeric {
		c := Chart{Kind: Box, Title: fmt.Sprintf("Box Plot of %s", col), YLabel: col, Color: color(i, len(numeric))}
		if vals := t.Floats(col); len(vals) > 0 {
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			c.Box = &FiveNum{
				Min:    sorted[0],
				Q1:     analysis.Quantile(sorted, 0.25),
				Median: analysis.Quantile(sorted, 0.5),
				Q3:     analysis.Quantile(sorted, 0.75),
				Max:    sorted[len(sorted)-1],
			}
		}
		out = append(out, c)
	}
	return out
}

// pies count each distinct cell value in first-occurrence order. Cells are
// compared by kind and content, so 1 and "1" are separate wedges.
func pies(t *table.Table, numeric []string) []Chart {
	out := make([]Chart, 0, len(numeric))
	for _, col := range numeric {
		idx := map[table.Value]int{}
		var slices []Slice
		for _, v := range t.Column(col) {
			i, ok := idx[v]
			if !ok {
				i = len(slices)
				idx[v] = i
				slices = append(slices, Slice{Label: v.String()})
			}
			slices[i].Count++
		}
		out = append(out, Chart{Kind: Pie, Title: fmt.Sprintf("Pie Chart of %s", col), Slices: slices})
	}
	return out
}

// radar plots the mean of every numeric column.
func radar(t *table.Table, numeric []string) Chart {
	c := Chart{Kind: Radar, Title: "Radar Chart"}
	for _, col := range numeric {
		c.Axes = append(c.Axes, Axis{Label: col, Value: analysis.Mean(t.Floats(col))})
	}
	return c
}
