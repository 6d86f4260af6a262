package charts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/table"
)

var defaults = analysis.DefaultOptions()

func sample() *table.Table {
	return table.FromRecords(
		table.Record{"a": table.Number(1), "b": table.Number(2), "c": table.Number(9)},
		table.Record{"a": table.Number(2), "b": table.Number(4), "c": table.Number(7)},
		table.Record{"a": table.Number(3), "b": table.Number(6), "c": table.Number(7)},
		table.Record{"a": table.Number(4), "b": table.Number(8), "c": table.Number(1)},
	)
}

func TestBuildNeedsTwoNumericColumns(t *testing.T) {
	_, err := Build(Line, sample(), []string{"a"}, defaults)
	assert.ErrorIs(t, err, ErrTooFewColumns)
	_, err = BuildAll(sample(), nil, defaults)
	assert.ErrorIs(t, err, ErrTooFewColumns)
}

func TestXYCharts(t *testing.T) {
	for _, k := range []Kind{Line, Bar, Scatter} {
		cs, err := Build(k, sample(), []string{"a", "b", "c"}, defaults)
		require.NoError(t, err)
		require.Len(t, cs, 2)
		assert.Equal(t, "a", cs[0].XLabel)
		assert.Equal(t, "b", cs[0].YLabel)
		assert.Equal(t, Point{X: 1, Y: 2}, cs[0].Points[0])
		assert.Len(t, cs[1].Points, 4)
		assert.Equal(t, "hsl(0, 70%, 50%)", cs[0].Color)
		assert.Equal(t, "hsl(120, 70%, 50%)", cs[1].Color)
	}
	cs, _ := Build(Scatter, sample(), []string{"a", "b"}, defaults)
	assert.Equal(t, "a vs b", cs[0].Title)
}

func TestHeatmap(t *testing.T) {
	cs, err := Build(Heatmap, sample(), []string{"a", "b", "c"}, defaults)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	m := cs[0].Matrix
	require.NotNil(t, m)
	assert.Equal(t, []string{"a", "b", "c"}, m.Labels)
	for i := range m.Labels {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Labels {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
		}
	}
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	assert.Less(t, m.Values[0][2], 0.0)
}

func TestHeatmapZeroVariance(t *testing.T) {
	tbl := table.FromRecords(
		table.Record{"x": table.Number(1), "k": table.Number(3)},
		table.Record{"x": table.Number(2), "k": table.Number(3)},
	)
	cs, err := Build(Heatmap, tbl, []string{"x", "k"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, cs[0].Matrix.Values)
}

func TestHeatmapNaNPolicy(t *testing.T) {
	tbl := table.FromRecords(
		table.Record{"x": table.Number(1), "k": table.Number(3)},
		table.Record{"x": table.Number(2), "k": table.Number(3)},
	)
	opt := analysis.DefaultOptions()
	opt.ZeroVariance = analysis.ZeroVarianceNaN
	cs, err := Build(Heatmap, tbl, []string{"x", "k"}, opt)
	require.NoError(t, err)
	m := cs[0].Matrix
	assert.Equal(t, 1.0, m.Values[0][0])
	assert.True(t, math.IsNaN(m.Values[0][1]))
	assert.True(t, math.IsNaN(m.Values[1][0]))

	b, err := json.Marshal(cs[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"values":[[1,null],[null,1]]`)
}

func TestHistogramBins(t *testing.T) {
	assert.Equal(t, 1, sturges(1))
	assert.Equal(t, 3, sturges(4))
	assert.Equal(t, 5, sturges(10))

	b := bins([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10})
	require.Len(t, b, 5)
	total := 0
	for _, x := range b {
		total += x.Count
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 0.0, b[0].Lo)
	assert.Equal(t, 10.0, b[4].Hi)
	assert.Equal(t, 2, b[4].Count)

	flat := bins([]float64{3, 3, 3})
	assert.Equal(t, []Bin{{Lo: 3, Hi: 3, Count: 3}}, flat)
	assert.Nil(t, bins(nil))
}

func TestBoxPlot(t *testing.T) {
	cs, err := Build(Box, sample(), []string{"a", "c"}, defaults)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, &FiveNum{Min: 1, Q1: 1.75, Median: 2.5, Q3: 3.25, Max: 4}, cs[0].Box)
	assert.Equal(t, 7.0, cs[1].Box.Median)
}

func TestPieFirstOccurrenceOrder(t *testing.T) {
	tbl := table.FromRecords(
		table.Record{"v": table.Number(2), "w": table.Number(1)},
		table.Record{"v": table.Number(1), "w": table.String("1")},
		table.Record{"v": table.Number(2), "w": table.Number(1)},
	)
	cs, err := Build(Pie, tbl, []string{"v", "w"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []Slice{{Label: "2", Count: 2}, {Label: "1", Count: 1}}, cs[0].Slices)
	assert.Equal(t, []Slice{{Label: "1", Count: 2}, {Label: "1", Count: 1}}, cs[1].Slices)
}

func TestRadar(t *testing.T) {
	cs, err := Build(Radar, sample(), []string{"a", "b"}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []Axis{{Label: "a", Value: 2.5}, {Label: "b", Value: 5}}, cs[0].Axes)
}

func TestBuildAllAndParseKind(t *testing.T) {
	all, err := BuildAll(sample(), []string{"a", "b"}, defaults)
	require.NoError(t, err)
	assert.Len(t, all, len(Kinds))

	k, err := ParseKind(" Heatmap ")
	require.NoError(t, err)
	assert.Equal(t, Heatmap, k)
	_, err = ParseKind("donut")
	assert.Error(t, err)
	_, err = Build(Kind("donut"), sample(), []string{"a", "b"}, defaults)
	assert.Error(t, err)
}

func extremeTable(col string, vals ...float64) *table.Table {
	recs := make([]table.Record, len(vals))
	for i, v := range vals {
		recs[i] = table.Record{col: table.Number(v), "i": table.Number(float64(i))}
	}
	return table.FromRecords(recs...)
}

func TestChartsNearFloatLimits(t *testing.T) {
	cases := []struct {
		name string
		vals []float64
	}{
		{"symmetric", []float64{-1.5e308, 1.5e308}},
		{"with zero", []float64{-1.5e308, 1.5e308, 0}},
		{"max float", []float64{-math.MaxFloat64, math.MaxFloat64, 1, -1}},
		{"one sided", []float64{math.MaxFloat64, math.MaxFloat64 / 2, 0, 1e300, -1e300, 3, 4, 5, 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := extremeTable("v", tc.vals...)
			var all map[Kind][]Chart
			require.NotPanics(t, func() {
				var err error
				all, err = BuildAll(tbl, []string{"v", "i"}, defaults)
				require.NoError(t, err)
			})

			h := all[Histogram][0]
			total := 0
			for _, b := range h.Bins {
				assert.False(t, math.IsNaN(b.Lo) || math.IsInf(b.Lo, 0), "lo %v", b.Lo)
				assert.False(t, math.IsNaN(b.Hi) || math.IsInf(b.Hi, 0), "hi %v", b.Hi)
				assert.LessOrEqual(t, b.Lo, b.Hi)
				total += b.Count
			}
			assert.Equal(t, len(tc.vals), total)

			for _, a := range all[Radar][0].Axes {
				assert.False(t, math.IsNaN(a.Value) || math.IsInf(a.Value, 0), "%s mean %v", a.Label, a.Value)
			}
			for _, row := range all[Heatmap][0].Matrix.Values {
				for _, r := range row {
					assert.GreaterOrEqual(t, r, -1.0)
					assert.LessOrEqual(t, r, 1.0)
				}
			}
			box := all[Box][0].Box
			require.NotNil(t, box)
			assert.LessOrEqual(t, box.Min, box.Median)
			assert.LessOrEqual(t, box.Median, box.Max)
		})
	}
}

func TestHistogramSplitsExtremes(t *testing.T) {
	b := bins([]float64{-1.5e308, 1.5e308})
	require.Len(t, b, 2)
	assert.Equal(t, -1.5e308, b[0].Lo)
	assert.Equal(t, 0.0, b[0].Hi)
	assert.Equal(t, 1.5e308, b[1].Hi)
	assert.Equal(t, 1, b[0].Count)
	assert.Equal(t, 1, b[1].Count)
}
