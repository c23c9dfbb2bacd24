package analyzer

import (
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

// AnalysisOptions configures the quality gate
type AnalysisOptions struct {
	Thresholds validation.QualityThresholds

	// Concurrent computes the independent signals in parallel.
	// Results are identical either way.
	Concurrent bool
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Thresholds: validation.DefaultQualityThresholds(),
		Concurrent: true,
	}
}

// SequentialOptions returns options computing every signal on the calling goroutine
func SequentialOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.Concurrent = false
	return opts
}

// WithThresholds replaces the quality thresholds
func (opts AnalysisOptions) WithThresholds(thresholds validation.QualityThresholds) AnalysisOptions {
	opts.Thresholds = thresholds
	return opts
}

// WithBlurCutoff sets the blur score below which a capture counts as blurred
func (opts AnalysisOptions) WithBlurCutoff(cutoff float64) AnalysisOptions {
	opts.Thresholds.BlurCutoff = cutoff
	return opts
}

// WithReceiptShape overrides the receipt outline heuristics
func (opts AnalysisOptions) WithReceiptShape(minEdgeCount int, minAspectRatio, maxAspectRatio float64) AnalysisOptions {
	opts.Thresholds.MinEdgeCount = minEdgeCount
	opts.Thresholds.MinAspectRatio = minAspectRatio
	opts.Thresholds.MaxAspectRatio = maxAspectRatio
	return opts
}

// WithSequential disables parallel signal computation
func (opts AnalysisOptions) WithSequential() AnalysisOptions {
	opts.Concurrent = false
	return opts
}
