package validation

import (
	"fmt"
	"math"
)

// Warning messages shown to the user by the capture UI
const (
	MessageBlurred        = "画像がぼやけています。カメラを固定して撮影してください。"
	MessageTooDark        = "画像が暗すぎます。明るい場所で撮影してください。"
	MessageTooBright      = "画像が明るすぎます。反射や強い光を避けて撮影してください。"
	MessageLowContrast    = "コントラストが低すぎます。背景とレシートの色に差をつけてください。"
	MessageNoReceipt      = "レシートが検出されませんでした。レシート全体が写るように撮影してください。"
	MessageQualityUnknown = "画像の品質を判定できませんでした。"
)

// ScoreWeights are the contributions of each signal to the overall score
type ScoreWeights struct {
	Blur       float64
	Brightness float64
	Contrast   float64
	Receipt    float64
}

// QuickScoreWeights are the contributions used by the preview-frame check
type QuickScoreWeights struct {
	Blur       float64
	Brightness float64
	// OffBandBrightness is the brightness credit given outside the good band
	OffBandBrightness float64
}

// QualityThresholds defines configurable thresholds for the capture gate.
// The defaults are empirically tuned for phone-camera receipt photos.
type QualityThresholds struct {
	// Sharpness
	BlurCutoff float64

	// Edge detection and receipt shape
	EdgeThreshold  float64
	MinEdgeCount   int
	MinAspectRatio float64
	MaxAspectRatio float64

	// Exposure
	MinBrightness float64
	MaxBrightness float64
	MinContrast   float64

	// Verdicts
	MinOverallScore float64
	MinQuickScore   float64

	Weights      ScoreWeights
	QuickWeights QuickScoreWeights
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		BlurCutoff:      50,
		EdgeThreshold:   50,
		MinEdgeCount:    1000,
		MinAspectRatio:  1.0,
		MaxAspectRatio:  5.0,
		MinBrightness:   30,
		MaxBrightness:   80,
		MinContrast:     30,
		MinOverallScore: 70,
		MinQuickScore:   60,
		Weights: ScoreWeights{
			Blur:       0.35,
			Brightness: 0.25,
			Contrast:   0.25,
			Receipt:    0.15,
		},
		QuickWeights: QuickScoreWeights{
			Blur:              0.6,
			Brightness:        0.4,
			OffBandBrightness: 50,
		},
	}
}

// Validate checks that the thresholds describe a usable gate
func (t QualityThresholds) Validate() error {
	if t.MinBrightness > t.MaxBrightness {
		return fmt.Errorf("brightness band is inverted (min=%g, max=%g)", t.MinBrightness, t.MaxBrightness)
	}
	if t.MinAspectRatio <= 0 || t.MinAspectRatio >= t.MaxAspectRatio {
		return fmt.Errorf("aspect ratio band must satisfy 0 < min < max (min=%g, max=%g)", t.MinAspectRatio, t.MaxAspectRatio)
	}
	if t.MinEdgeCount < 0 || t.EdgeThreshold < 0 {
		return fmt.Errorf("edge thresholds must be >= 0 (count=%d, magnitude=%g)", t.MinEdgeCount, t.EdgeThreshold)
	}
	w := t.Weights
	if sum := w.Blur + w.Brightness + w.Contrast + w.Receipt; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1 (got %g)", sum)
	}
	q := t.QuickWeights
	if sum := q.Blur + q.Brightness; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("quick score weights must sum to 1 (got %g)", sum)
	}
	return nil
}

// BrightnessInBand reports whether brightness lies within the good band
func (t QualityThresholds) BrightnessInBand(brightness float64) bool {
	return brightness >= t.MinBrightness && brightness <= t.MaxBrightness
}

// QualityValidator turns measured signals into user-facing issues
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// Thresholds returns the thresholds the validator applies
func (qv *QualityValidator) Thresholds() QualityThresholds {
	return qv.thresholds
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// CaptureSignals are the measured inputs of a capture validation
type CaptureSignals struct {
	BlurScore  float64
	Brightness float64
	Contrast   float64
	HasReceipt bool
}

// ValidateCapture reports every failing signal. Issues are independent and
// ordered blur, brightness (low then high), contrast, receipt.
func (qv *QualityValidator) ValidateCapture(signals CaptureSignals) []QualityIssue {
	var issues []QualityIssue

	// 1. Blurriness
	if signals.BlurScore < qv.thresholds.BlurCutoff {
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     MessageBlurred,
			Severity:    "error",
			ActualValue: signals.BlurScore,
			Threshold:   qv.thresholds.BlurCutoff,
		})
	}

	// 2. Brightness band
	if signals.Brightness < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     MessageTooDark,
			Severity:    "warning",
			ActualValue: signals.Brightness,
			Threshold:   qv.thresholds.MinBrightness,
		})
	}
	if signals.Brightness > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_bright",
			Message:     MessageTooBright,
			Severity:    "warning",
			ActualValue: signals.Brightness,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	// 3. Contrast
	if signals.Contrast < qv.thresholds.MinContrast {
		issues = append(issues, QualityIssue{
			Type:        "low_contrast",
			Message:     MessageLowContrast,
			Severity:    "warning",
			ActualValue: signals.Contrast,
			Threshold:   qv.thresholds.MinContrast,
		})
	}

	// 4. Receipt outline
	if !signals.HasReceipt {
		issues = append(issues, QualityIssue{
			Type:     "no_receipt",
			Message:  MessageNoReceipt,
			Severity: "error",
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to plain warning messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
