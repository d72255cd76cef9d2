package pipeline

import (
	"fmt"
	"strings"
)

const maxGateSamples = 10

// SkipRateError is the source-fatal error raised when a source's skip
// rate exceeds the threshold. It carries the counts and a sample of
// rejected candidates so the failure is diagnosable from logs alone.
type SkipRateError struct {
	Source    string
	Found     int
	Accepted  int
	Threshold float64
	Samples   []map[string]interface{}
}

// Rate returns the skip rate as a fraction
func (e *SkipRateError) Rate() float64 {
	if e.Found == 0 {
		return 0
	}
	return float64(e.Found-e.Accepted) / float64(e.Found)
}

func (e *SkipRateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "skip rate exceeded threshold for %s: found %d, accepted %d, skipped %d, rate %.2f%% (threshold %.2f%%)",
		e.Source, e.Found, e.Accepted, e.Found-e.Accepted, e.Rate()*100, e.Threshold*100)

	if len(e.Samples) > 0 {
		fmt.Fprintf(&b, "; sample of rejected items (first %d):", len(e.Samples))
		for i, sample := range e.Samples {
			fmt.Fprintf(&b, " [%d] %v", i+1, sample)
		}
	}

	b.WriteString("; extraction is broken, fix the extraction logic before continuing")
	return b.String()
}

// QualityGate aggregates found/accepted counts for one source scrape
// and trips when the skip rate crosses the threshold. Counts accumulate
// across all pages or year buckets of the source; the check runs once
// after the full scan.
type QualityGate struct {
	source    string
	threshold float64
	found     int
	accepted  int
	samples   []map[string]interface{}
}

// NewQualityGate creates a gate for one source scrape
func NewQualityGate(source string, threshold float64) *QualityGate {
	return &QualityGate{
		source:    source,
		threshold: threshold,
	}
}

// RecordFound adds discovered containers to the running count
func (g *QualityGate) RecordFound(n int) {
	g.found += n
}

// RecordAccepted adds accepted records to the running count
func (g *QualityGate) RecordAccepted(n int) {
	g.accepted += n
}

// AddSamples retains rejected candidates for the diagnostic payload,
// capped so a broken scrape does not hoard memory.
func (g *QualityGate) AddSamples(rejected []map[string]interface{}) {
	for _, r := range rejected {
		if len(g.samples) >= maxGateSamples {
			return
		}
		g.samples = append(g.samples, r)
	}
}

// Found returns the running found count
func (g *QualityGate) Found() int {
	return g.found
}

// Accepted returns the running accepted count
func (g *QualityGate) Accepted() int {
	return g.accepted
}

// Check evaluates the gate. With zero found items the rate is undefined
// and the gate never trips.
func (g *QualityGate) Check() error {
	if g.found == 0 {
		return nil
	}

	rate := float64(g.found-g.accepted) / float64(g.found)
	if rate <= g.threshold {
		return nil
	}

	return &SkipRateError{
		Source:    g.source,
		Found:     g.found,
		Accepted:  g.accepted,
		Threshold: g.threshold,
		Samples:   g.samples,
	}
}
