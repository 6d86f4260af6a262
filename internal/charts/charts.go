// Package charts turns a table and its numeric columns into chart-ready
// data series. It does no drawing.
package charts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/table"
)

// Kind names a chart type.
type Kind string

const (
	Line      Kind = "line"
	Bar       Kind = "bar"
	Scatter   Kind = "scatter"
	Heatmap   Kind = "heatmap"
	Histogram Kind = "histogram"
	Box       Kind = "box"
	Pie       Kind = "pie"
	Radar     Kind = "radar"
)

// Kinds lists every chart type in dashboard order.
var Kinds = []Kind{Line, Bar, Scatter, Heatmap, Histogram, Box, Pie, Radar}

// MinNumericColumns is how many numeric columns a dashboard needs before any
// chart is offered.
const MinNumericColumns = 2

// ErrTooFewColumns is returned when charts are requested for a table with
// fewer than MinNumericColumns numeric columns.
var ErrTooFewColumns = errors.New("charts need at least two numeric columns")

// ParseKind accepts a chart name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Chart is one renderable figure. Only the fields of its Kind are set.
type Chart struct {
	Kind   Kind     `json:"kind" yaml:"kind"`
	Title  string   `json:"title" yaml:"title"`
	XLabel string   `json:"xLabel,omitempty" yaml:"xLabel,omitempty"`
	YLabel string   `json:"yLabel,omitempty" yaml:"yLabel,omitempty"`
	Color  string   `json:"color,omitempty" yaml:"color,omitempty"`
	Points []Point  `json:"points,omitempty" yaml:"points,omitempty"`
	Matrix *Matrix  `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Bins   []Bin    `json:"bins,omitempty" yaml:"bins,omitempty"`
	Box    *FiveNum `json:"box,omitempty" yaml:"box,omitempty"`
	Slices []Slice  `json:"slices,omitempty" yaml:"slices,omitempty"`
	Axes   []Axis   `json:"axes,omitempty" yaml:"axes,omitempty"`
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Build produces the charts of one kind for the numeric columns of t. opt
// drives the heatmap's correlations so they match the analysis of t.
func Build(kind Kind, t *table.Table, numeric []string, opt analysis.Options) ([]Chart, error) {
	if len(numeric) < MinNumericColumns {
		return nil, ErrTooFewColumns
	}
	switch kind {
	case Line, Bar, Scatter:
		return xy(kind, t, numeric), nil
	case Heatmap:
		return []Chart{heatmap(t, numeric, opt)}, nil
	case Histogram:
		return histograms(t, numeric), nil
	case Box:
		return boxes(t, numeric), nil
	case Pie:
		return pies(t, numeric), nil
	case Radar:
		return []Chart{radar(t, numeric)}, nil
	}
	return nil, fmt.Errorf("unknown chart type %q", kind)
}

// BuildAll produces every kind, keyed by kind.
func BuildAll(t *table.Table, numeric []string, opt analysis.Options) (map[Kind][]Chart, error) {
	out := make(map[Kind][]Chart, len(Kinds))
	for _, k := range Kinds {
		c, err := Build(k, t, numeric, opt)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

// xy plots every column after the first against the first.
func xy(kind Kind, t *table.Table, numeric []string) []Chart {
	x := numeric[0]
	out := make([]Chart, 0, len(numeric)-1)
	for i, col := range numeric[1:] {
		c := Chart{Kind: kind, XLabel: x, YLabel: col, Color: color(i, len(numeric))}
		switch kind {
		case Scatter:
			c.Title = fmt.Sprintf("%s vs %s", x, col)
		default:
			c.Title = col
		}
		for r := 0; r < t.Len(); r++ {
			xv, okx := t.Get(r, x).Float()
			yv, oky := t.Get(r, col).Float()
			if okx && oky {
				c.Points = append(c.Points, Point{X: xv, Y: yv})
			}
		}
		out = append(out, c)
	}
	return out
}

// color spreads hues evenly over the column count.
func color(i, n int) string {
	hue := float64(i) * 360 / float64(n)
	return "hsl(" + strconv.FormatFloat(hue, 'f', -1, 64) + ", 70%, 50%)"
}
