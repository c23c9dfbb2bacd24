package analyzer

import (
	"context"

	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
)

// QualityAnalyzer is the capture quality gate.
// Undecodable input never fails a call; it yields a neutral report instead.
// The only error returned is the context's when a call is abandoned.
type QualityAnalyzer interface {
	// Full check over encoded bytes or a (data URI) base64 string
	CheckQuality(ctx context.Context, data []byte) (QualityReport, error)
	CheckQualityBase64(ctx context.Context, encoded string) (QualityReport, error)

	// Preview-frame check: blur and brightness only
	QuickCheck(ctx context.Context, data []byte) (models.QuickCheckResult, error)
	QuickCheckBase64(ctx context.Context, encoded string) (models.QuickCheckResult, error)

	// AnalyzeBuffer runs the full check on already decoded pixels
	AnalyzeBuffer(ctx context.Context, pixels *PixelBuffer) (QualityReport, error)
}

// ImageDecoder turns encoded captures into pixel buffers
type ImageDecoder interface {
	Decode(data []byte) (*PixelBuffer, error)
	DecodeBase64(encoded string) (*PixelBuffer, error)
}
