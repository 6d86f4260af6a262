package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datadash/internal/table"
)

// coerce converts a cell to a finite number under opt's parsing rules.
func coerce(v table.Value, opt Options) (float64, bool) {
	if opt.DecimalSeparator == 0 {
		return v.Float()
	}
	raw, ok := v.Raw()
	if !ok {
		return v.Float()
	}
	return parseNumeric(raw, opt)
}

// parseNumeric parses locale-formatted numbers such as "1.000,5" or "12,5%".
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	// Remove thousands separators (common: ',', '.', space) if they differ from decimal
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c < '0' || c > '9') && c != '.' && c != '+' && c != '-' && c != 'e' && c != 'E' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Mean returns the arithmetic mean of vals, 0 when empty. The running update
// falls back to x/n - mean/n when x - mean leaves the float64 range, so
// finite input always gives a finite mean.
func Mean(vals []float64) float64 {
	var mean float64
	for i, x := range vals {
		n := float64(i + 1)
		if delta := x - mean; !math.IsInf(delta, 0) {
			mean += delta / n
		} else {
			mean += x/n - mean/n
		}
	}
	return mean
}

// maxAbs is the largest |v| over vals.
func maxAbs(vals []float64) float64 {
	var m float64
	for _, v := range vals {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// stdDev is the population standard deviation around mean. Deviations are
// taken on values divided by max|v| so their squares cannot overflow.
func stdDev(vals []float64, mean float64) float64 {
	scale := maxAbs(vals)
	if len(vals) == 0 || scale == 0 {
		return 0
	}
	m := mean / scale
	var ss float64
	for _, v := range vals {
		d := v/scale - m
		ss += d * d
	}
	std := scale * math.Sqrt(ss/float64(len(vals)))
	if math.IsInf(std, 0) {
		return math.MaxFloat64
	}
	return std
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Quantile returns the q-quantile of vals without modifying them.
func Quantile(vals []float64, q float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return quantile(cp, q)
}

// outlierStats counts values whose robust z-score exceeds threshold.
func outlierStats(vals []float64, threshold float64) *OutlierStats {
	if threshold <= 0 {
		threshold = 3.5
	}
	st := &OutlierStats{Threshold: threshold}
	// robust z is scale free; normalising keeps |v - median| finite
	scale := maxAbs(vals)
	if scale == 0 {
		return st
	}
	scaled := make([]float64, len(vals))
	for i, v := range vals {
		scaled[i] = v / scale
	}
	vals = scaled
	median, mad := medianMAD(vals)
	if mad == 0 {
		return st
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > threshold {
			st.Count++
		}
		if az > st.MaxAbsZ {
			st.MaxAbsZ = az
		}
	}
	return st
}
