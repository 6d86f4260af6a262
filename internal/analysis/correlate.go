package analysis

import (
	"math"

	"github.com/KaramelBytes/datadash/internal/table"
)

// Correlate computes the Pearson correlation of every ordered pair of
// distinct columns in numeric. Cells that do not coerce are dropped pairwise,
// so callers normally pass only columns Analyze typed as numeric.
func Correlate(numeric []string, t *table.Table, opt Options) CorrelationMatrix {
	vals := make(map[string][]float64, len(numeric))
	var cols []string
	for _, c := range numeric {
		if _, ok := vals[c]; ok {
			continue
		}
		col := make([]float64, t.Len())
		for i := range col {
			f, ok := coerce(t.Get(i, c), opt)
			if !ok {
				f = math.NaN()
			}
			col[i] = f
		}
		vals[c] = col
		cols = append(cols, c)
	}
	return correlateColumns(cols, vals, opt.ZeroVariance)
}

// correlateColumns fills the matrix; each unordered pair is computed once and
// stored under both orders.
func correlateColumns(cols []string, vals map[string][]float64, zv ZeroVariancePolicy) CorrelationMatrix {
	m := make(CorrelationMatrix, len(cols))
	for _, c := range cols {
		m[c] = make(map[string]float64, len(cols)-1)
	}
	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			r := Pearson(vals[cols[a]], vals[cols[b]], zv)
			m[cols[a]][cols[b]] = r
			m[cols[b]][cols[a]] = r
		}
	}
	return m
}

// Pearson returns the population Pearson correlation of x and y:
//
//	mean((x-x̄)(y-ȳ)) / sqrt(mean((x-x̄)²)·mean((y-ȳ)²))
//
// Rows where either side is NaN or infinite are skipped. Each side is divided
// by its largest magnitude first; r does not change under scaling and the
// sums stay finite for any float64 input. When a side has zero variance (or
// no rows remain) the result follows zv. Results are clamped to [-1, 1].
func Pearson(x, y []float64, zv ZeroVariancePolicy) float64 {
	n := min(len(x), len(y))
	usable := func(i int) bool {
		return !math.IsNaN(x[i]) && !math.IsNaN(y[i]) && !math.IsInf(x[i], 0) && !math.IsInf(y[i], 0)
	}
	var cnt, ax, ay float64
	for i := 0; i < n; i++ {
		if !usable(i) {
			continue
		}
		cnt++
		ax = math.Max(ax, math.Abs(x[i]))
		ay = math.Max(ay, math.Abs(y[i]))
	}
	if cnt == 0 || ax == 0 || ay == 0 {
		return undefinedCorrelation(zv)
	}
	var sx, sy float64
	for i := 0; i < n; i++ {
		if usable(i) {
			sx += x[i] / ax
			sy += y[i] / ay
		}
	}
	mx, my := sx/cnt, sy/cnt
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		if !usable(i) {
			continue
		}
		dx := x[i]/ax - mx
		dy := y[i]/ay - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	denom := math.Sqrt(vx/cnt) * math.Sqrt(vy/cnt)
	if denom == 0 || math.IsNaN(denom) {
		return undefinedCorrelation(zv)
	}
	r := (cov / cnt) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func undefinedCorrelation(zv ZeroVariancePolicy) float64 {
	if zv == ZeroVarianceNaN {
		return math.NaN()
	}
	return 0
}
