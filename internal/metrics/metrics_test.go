package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveAnalysis(t *testing.T) {
	okBefore := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess))
	errBefore := testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeError))
	rowsBefore := testutil.ToFloat64(rowsAnalyzedTotal)
	numBefore := testutil.ToFloat64(columnsAnalyzedTotal.WithLabelValues("numeric"))

	ObserveAnalysis(20*time.Millisecond, "whatever", 10, 3, 2)
	ObserveAnalysis(-time.Second, OutcomeError, 99, 99, 99)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(analysesTotal.WithLabelValues(OutcomeError)))
	assert.Equal(t, rowsBefore+10, testutil.ToFloat64(rowsAnalyzedTotal))
	assert.Equal(t, numBefore+3, testutil.ToFloat64(columnsAnalyzedTotal.WithLabelValues("numeric")))
}

func TestWriteTextfile(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	ObserveAnalysis(time.Millisecond, OutcomeSuccess, 1, 1, 0)

	path := filepath.Join(t.TempDir(), "nested", "datadash.prom")
	require.NoError(t, WriteTextfile(path, reg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(b)
	assert.True(t, strings.Contains(body, "datadash_analyses_total"), body)
	assert.True(t, strings.Contains(body, "datadash_analysis_seconds_bucket"), body)
	assert.True(t, strings.Contains(body, "datadash_rows_analyzed_total"), body)
}
