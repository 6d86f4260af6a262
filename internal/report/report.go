// Package report renders analysis results for people and for machines.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/ingest"
)

// Options controls what Build collects next to the analysis result.
type Options struct {
	SampleRows int
	GroupBy    []string
	Analysis   analysis.Options
}

// Report is one analysed dataset ready for rendering.
type Report struct {
	RunID       string                 `json:"runId" yaml:"runId"`
	Name        string                 `json:"name" yaml:"name"`
	Source      string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Fingerprint string                 `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	GeneratedAt time.Time              `json:"generatedAt" yaml:"generatedAt"`
	Rows        int                    `json:"rows" yaml:"rows"`
	Processed   int                    `json:"processed" yaml:"processed"`
	Result      *analysis.Result       `json:"analysis" yaml:"analysis"`
	Groups      []analysis.GroupResult `json:"groups,omitempty" yaml:"groups,omitempty"`
	Samples     [][]string             `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings    []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Build analyses ds and gathers samples, groups and warnings around the result.
func Build(ds *ingest.Dataset, opt Options) *Report {
	t := ds.Table
	res := analysis.Analyze(t, opt.Analysis)
	rep := &Report{
		RunID:       uuid.NewString(),
		Name:        ds.Name,
		Source:      ds.URL,
		Fingerprint: ds.Fingerprint,
		GeneratedAt: time.Now().UTC(),
		Rows:        ds.TotalRows,
		Processed:   t.Len(),
		Result:      res,
	}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 5
	}
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		row := make([]string, len(res.Columns))
		for j, c := range res.Columns {
			if v := t.Get(i, c); !v.IsMissing() {
				row[j] = v.String()
			}
		}
		rep.Samples = append(rep.Samples, row)
	}
	if len(opt.GroupBy) > 0 {
		rep.Groups = analysis.GroupBy(t, res, opt.GroupBy, opt.Analysis)
		if rep.Groups == nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by columns %v not found", opt.GroupBy))
		}
	}
	if ds.Truncated() {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	if n := t.SchemaIssues(); n > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d of %d records do not match the header columns", n, t.Len()))
	}
	return rep
}

// HasCharts reports whether the dataset has enough numeric columns to chart.
func (r *Report) HasCharts() bool {
	return len(r.Result.NumericColumns()) >= 2
}
