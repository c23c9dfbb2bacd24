package analyzer

import (
	"math"

	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

// neutralScore stands in for a metric that could not be measured
const neutralScore = 50

// QualityScorer combines the measured signals into a QualityReport
type QualityScorer struct {
	validator *validation.QualityValidator
}

// NewQualityScorer creates a scorer using the given thresholds
func NewQualityScorer(thresholds validation.QualityThresholds) *QualityScorer {
	return &QualityScorer{
		validator: validation.NewQualityValidatorWithThresholds(thresholds),
	}
}

// Score builds the full report. Metrics are rounded before any verdict so
// that the reported numbers always agree with the flags and warnings.
func (qs *QualityScorer) Score(signals Signals) QualityReport {
	t := qs.validator.Thresholds()

	blurScore := neutralScore
	if signals.BlurKnown {
		blurScore = roundScore(signals.BlurScore)
	}
	brightness := roundScore(signals.Brightness)
	contrast := roundScore(signals.Contrast)
	hasReceipt := signals.Boundary.Found && signals.Boundary.Bounds != nil

	receiptComponent := 0.0
	if hasReceipt {
		receiptComponent = 100
	}
	overall := roundScore(float64(blurScore)*t.Weights.Blur +
		qs.brightnessComponent(float64(brightness))*t.Weights.Brightness +
		float64(contrast)*t.Weights.Contrast +
		receiptComponent*t.Weights.Receipt)

	issues := qs.validator.ValidateCapture(validation.CaptureSignals{
		BlurScore:  float64(blurScore),
		Brightness: float64(brightness),
		Contrast:   float64(contrast),
		HasReceipt: hasReceipt,
	})

	isBlurred := float64(blurScore) < t.BlurCutoff
	report := QualityReport{
		IsBlurred:     isBlurred,
		BlurScore:     blurScore,
		Brightness:    brightness,
		Contrast:      contrast,
		HasReceipt:    hasReceipt,
		OverallScore:  overall,
		Warnings:      qs.validator.ConvertIssuesToMessages(issues),
		IsGoodQuality: float64(overall) >= t.MinOverallScore && !isBlurred && hasReceipt,
	}
	if hasReceipt {
		bounds := *signals.Boundary.Bounds
		report.ReceiptBounds = &bounds
	}
	return report
}

// Neutral is the report for a capture whose quality could not be determined
func (qs *QualityScorer) Neutral() QualityReport {
	report := qs.Score(Signals{
		BlurScore:  neutralScore,
		BlurKnown:  true,
		Brightness: neutralScore,
		Contrast:   neutralScore,
	})
	report.Warnings = []string{validation.MessageQualityUnknown}
	return report
}

// Quick scores a preview frame from blur and brightness only
func (qs *QualityScorer) Quick(blurScore float64, blurKnown bool, brightness float64) models.QuickCheckResult {
	t := qs.validator.Thresholds()

	blur := neutralScore
	if blurKnown {
		blur = roundScore(blurScore)
	}
	brightnessCredit := t.QuickWeights.OffBandBrightness
	if t.BrightnessInBand(float64(roundScore(brightness))) {
		brightnessCredit = 100
	}

	score := roundScore(float64(blur)*t.QuickWeights.Blur + brightnessCredit*t.QuickWeights.Brightness)
	return models.QuickCheckResult{
		Score:      score,
		CanCapture: float64(score) >= t.MinQuickScore,
	}
}

// NeutralQuick is the quick result for an undecodable frame
func (qs *QualityScorer) NeutralQuick() models.QuickCheckResult {
	return models.QuickCheckResult{Score: neutralScore, CanCapture: false}
}

// brightnessComponent is 100 inside the band and a linear penalty outside
func (qs *QualityScorer) brightnessComponent(brightness float64) float64 {
	t := qs.validator.Thresholds()
	switch {
	case brightness > t.MaxBrightness:
		return clampScore(100 - (brightness - t.MaxBrightness))
	case brightness < t.MinBrightness:
		return clampScore(brightness)
	default:
		return 100
	}
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func roundScore(v float64) int {
	return int(math.Round(clampScore(v)))
}
