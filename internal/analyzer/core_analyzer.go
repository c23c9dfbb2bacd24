package analyzer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tomomini0815/ainance-v2-sub004/internal/logger"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
)

// coreAnalyzer implements QualityAnalyzer and orchestrates all components
type coreAnalyzer struct {
	options     AnalysisOptions
	decoder     ImageDecoder
	convolution *ConvolutionEngine
	histogram   *HistogramAnalyzer
	boundary    *ReceiptBoundaryDetector
	scorer      *QualityScorer
}

// NewQualityAnalyzer creates a quality analyzer with all components
func NewQualityAnalyzer(options AnalysisOptions) (QualityAnalyzer, error) {
	return NewQualityAnalyzerWithDecoder(options, NewPixelDecoder())
}

// NewQualityAnalyzerWithDecoder creates a quality analyzer with a custom decoder
func NewQualityAnalyzerWithDecoder(options AnalysisOptions, decoder ImageDecoder) (QualityAnalyzer, error) {
	if err := options.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quality thresholds: %w", err)
	}
	if decoder == nil {
		return nil, fmt.Errorf("image decoder is required")
	}

	t := options.Thresholds
	return &coreAnalyzer{
		options:     options,
		decoder:     decoder,
		convolution: NewConvolutionEngine(t.EdgeThreshold),
		histogram:   NewHistogramAnalyzer(),
		boundary:    NewReceiptBoundaryDetector(t.MinEdgeCount, t.MinAspectRatio, t.MaxAspectRatio),
		scorer:      NewQualityScorer(t),
	}, nil
}

// CheckQuality performs the full check on encoded image bytes
func (ca *coreAnalyzer) CheckQuality(ctx context.Context, data []byte) (QualityReport, error) {
	pixels, err := ca.decoder.Decode(data)
	if err != nil {
		return ca.undetermined(ctx, err, len(data))
	}
	return ca.AnalyzeBuffer(ctx, pixels)
}

// CheckQualityBase64 performs the full check on a base64 payload or data URI
func (ca *coreAnalyzer) CheckQualityBase64(ctx context.Context, encoded string) (QualityReport, error) {
	pixels, err := ca.decoder.DecodeBase64(encoded)
	if err != nil {
		return ca.undetermined(ctx, err, len(encoded))
	}
	return ca.AnalyzeBuffer(ctx, pixels)
}

// AnalyzeBuffer computes every signal over the decoded pixels and scores them
func (ca *coreAnalyzer) AnalyzeBuffer(ctx context.Context, pixels *PixelBuffer) (QualityReport, error) {
	if err := ctx.Err(); err != nil {
		return QualityReport{}, err
	}
	if pixels == nil || pixels.Width < minDimension || pixels.Height < minDimension {
		return ca.undetermined(ctx, ErrDegenerateImage, 0)
	}

	gray := ToGrayscale(pixels)
	signals, err := ca.measure(ctx, gray)
	if err != nil {
		return QualityReport{}, err
	}

	report := ca.scorer.Score(signals)
	logger.WithFields(logrus.Fields{
		"width":           gray.Width,
		"height":          gray.Height,
		"blur_score":      report.BlurScore,
		"brightness":      report.Brightness,
		"contrast":        report.Contrast,
		"edge_count":      signals.Boundary.EdgeCount,
		"has_receipt":     report.HasReceipt,
		"overall_score":   report.OverallScore,
		"is_good_quality": report.IsGoodQuality,
	}).Debug("Quality check completed")
	return report, nil
}

// QuickCheck scores a preview frame from blur and brightness only
func (ca *coreAnalyzer) QuickCheck(ctx context.Context, data []byte) (models.QuickCheckResult, error) {
	pixels, err := ca.decoder.Decode(data)
	if err != nil {
		return ca.undeterminedQuick(ctx, err)
	}
	return ca.quick(ctx, pixels)
}

// QuickCheckBase64 scores a base64 encoded preview frame
func (ca *coreAnalyzer) QuickCheckBase64(ctx context.Context, encoded string) (models.QuickCheckResult, error) {
	pixels, err := ca.decoder.DecodeBase64(encoded)
	if err != nil {
		return ca.undeterminedQuick(ctx, err)
	}
	return ca.quick(ctx, pixels)
}

func (ca *coreAnalyzer) quick(ctx context.Context, pixels *PixelBuffer) (models.QuickCheckResult, error) {
	if err := ctx.Err(); err != nil {
		return models.QuickCheckResult{}, err
	}

	gray := ToGrayscale(pixels)
	var (
		blurScore  float64
		blurKnown  bool
		brightness float64
	)
	err := ca.run(ctx,
		func() { blurScore, blurKnown = ca.convolution.BlurScore(gray) },
		func() { brightness = ca.histogram.Brightness(gray) },
	)
	if err != nil {
		return models.QuickCheckResult{}, err
	}
	return ca.scorer.Quick(blurScore, blurKnown, brightness), nil
}

// measure computes the four independent signals over the shared read-only buffer
func (ca *coreAnalyzer) measure(ctx context.Context, gray *GrayscaleBuffer) (Signals, error) {
	var signals Signals
	err := ca.run(ctx,
		func() { signals.BlurScore, signals.BlurKnown = ca.convolution.BlurScore(gray) },
		func() { signals.Brightness = ca.histogram.Brightness(gray) },
		func() { signals.Contrast = ca.histogram.Contrast(gray) },
		func() { signals.Boundary = ca.boundary.Detect(ca.convolution.EdgeMap(gray)) },
	)
	return signals, err
}

// run executes the tasks concurrently or in order depending on the options.
// Each task writes only its own result, so no synchronisation is needed
// beyond the join.
func (ca *coreAnalyzer) run(ctx context.Context, tasks ...func()) error {
	if !ca.options.Concurrent {
		for _, task := range tasks {
			if err := ctx.Err(); err != nil {
				return err
			}
			task()
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			task()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// undetermined logs the decode failure and returns the neutral report
func (ca *coreAnalyzer) undetermined(ctx context.Context, cause error, inputSize int) (QualityReport, error) {
	if err := ctx.Err(); err != nil {
		return QualityReport{}, err
	}
	logger.WithError(cause).WithField("input_size", inputSize).Warn("Quality could not be determined, returning neutral report")
	return ca.scorer.Neutral(), nil
}

func (ca *coreAnalyzer) undeterminedQuick(ctx context.Context, cause error) (models.QuickCheckResult, error) {
	if err := ctx.Err(); err != nil {
		return models.QuickCheckResult{}, err
	}
	logger.WithError(cause).Warn("Quick check could not decode frame")
	return ca.scorer.NeutralQuick(), nil
}
