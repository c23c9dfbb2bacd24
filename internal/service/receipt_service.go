package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/analyzer"
	apperrors "github.com/tomomini0815/ainance-v2-sub004/internal/errors"
	"github.com/tomomini0815/ainance-v2-sub004/internal/matcher"
	"github.com/tomomini0815/ainance-v2-sub004/internal/observer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/recognizer"
	"github.com/tomomini0815/ainance-v2-sub004/internal/repository"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"

	"github.com/codycollier/wer"
)

// inlineSource labels events for captures uploaded in the request body
const inlineSource = "inline"

// ReceiptService exposes the capture gate and store resolution to transports
type ReceiptService interface {
	CheckQuality(ctx context.Context, req models.ImageRequest) (*models.QualityResponse, error)
	QuickCheck(ctx context.Context, req models.ImageRequest) (models.QuickCheckResult, error)
	MatchStore(ctx context.Context, req models.StoreMatchRequest) (*models.StoreMatchResponse, error)

	// RecognizeReceipt gates the capture, runs OCR and resolves the store.
	// Captures that fail the gate are refused unless Force is set.
	RecognizeReceipt(ctx context.Context, req models.RecognizeRequest) (*models.RecognizeResponse, error)
}

// StoreResolver resolves a store identity from OCR text
type StoreResolver interface {
	Resolve(text string, knownStores []string) models.MatchResult
}

// receiptService implements ReceiptService
type receiptService struct {
	captures        repository.CaptureRepository
	analyzer        analyzer.QualityAnalyzer
	resolver        StoreResolver
	recognizer      recognizer.TextRecognizer
	events          observer.Subject
	analysisTimeout time.Duration
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	captures repository.CaptureRepository,
	qualityAnalyzer analyzer.QualityAnalyzer,
	resolver StoreResolver,
	textRecognizer recognizer.TextRecognizer,
	events observer.Subject,
	analysisTimeout time.Duration,
) ReceiptService {
	return &receiptService{
		captures:        captures,
		analyzer:        qualityAnalyzer,
		resolver:        resolver,
		recognizer:      textRecognizer,
		events:          events,
		analysisTimeout: analysisTimeout,
	}
}

// CheckQuality runs the full quality check. Inline payloads that cannot be
// decoded still get the neutral report rather than an error.
func (s *receiptService) CheckQuality(ctx context.Context, req models.ImageRequest) (*models.QualityResponse, error) {
	start := time.Now()
	req, err := normalizeImageRequest(req)
	if err != nil {
		return nil, err
	}

	var data []byte
	if req.URL != "" {
		fetched, err := s.fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		data = fetched
	}

	ctx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	var report models.QualityReport
	if req.URL != "" {
		report, err = s.analyzer.CheckQuality(ctx, data)
	} else {
		report, err = s.analyzer.CheckQualityBase64(ctx, req.Image)
	}
	if err != nil {
		return nil, analysisError(err)
	}

	elapsed := time.Since(start)
	s.publish(ctx, observer.ReceiptEvent{
		EventType:      observer.QualityChecked,
		Source:         sourceLabel(req),
		ProcessingTime: elapsed,
		Success:        true,
		Metadata: map[string]interface{}{
			"overall_score":   report.OverallScore,
			"is_good_quality": report.IsGoodQuality,
			"warnings":        len(report.Warnings),
		},
	})

	return &models.QualityResponse{
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
		Report:            report,
	}, nil
}

func (s *receiptService) QuickCheck(ctx context.Context, req models.ImageRequest) (models.QuickCheckResult, error) {
	start := time.Now()
	req, err := normalizeImageRequest(req)
	if err != nil {
		return models.QuickCheckResult{}, err
	}

	var data []byte
	if req.URL != "" {
		fetched, err := s.fetch(ctx, req.URL)
		if err != nil {
			return models.QuickCheckResult{}, err
		}
		data = fetched
	}

	ctx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	var result models.QuickCheckResult
	if req.URL != "" {
		result, err = s.analyzer.QuickCheck(ctx, data)
	} else {
		result, err = s.analyzer.QuickCheckBase64(ctx, req.Image)
	}
	if err != nil {
		return models.QuickCheckResult{}, analysisError(err)
	}

	s.publish(ctx, observer.ReceiptEvent{
		EventType:      observer.QuickChecked,
		Source:         sourceLabel(req),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"score": result.Score, "can_capture": result.CanCapture},
	})
	return result, nil
}

// MatchStore resolves the store from text that was recognized elsewhere
func (s *receiptService) MatchStore(ctx context.Context, req models.StoreMatchRequest) (*models.StoreMatchResponse, error) {
	start := time.Now()
	response := s.resolve(req.Text, req.KnownStores)

	s.publish(ctx, observer.ReceiptEvent{
		EventType:      observer.StoreMatched,
		Source:         inlineSource,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"match_type": string(response.Match.MatchType),
			"confidence": response.Match.Confidence,
		},
	})
	return &response, nil
}

func (s *receiptService) RecognizeReceipt(ctx context.Context, req models.RecognizeRequest) (*models.RecognizeResponse, error) {
	start := time.Now()
	response, err := s.recognize(ctx, req)
	if err != nil {
		s.publish(ctx, observer.ReceiptEvent{
			EventType:      observer.RecognitionFailed,
			Source:         sourceLabel(req.ImageRequest),
			ProcessingTime: time.Since(start),
			Success:        false,
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	elapsed := time.Since(start)
	response.Timestamp = time.Now().UTC().Format(time.RFC3339)
	response.ProcessingTimeSec = elapsed.Seconds()

	s.publish(ctx, observer.ReceiptEvent{
		EventType:      observer.RecognitionCompleted,
		Source:         sourceLabel(req.ImageRequest),
		ProcessingTime: elapsed,
		Success:        true,
		Metadata: map[string]interface{}{
			"overall_score": response.Quality.OverallScore,
			"forced":        req.Force && !response.Quality.IsGoodQuality,
			"match_type":    string(response.Store.Match.MatchType),
		},
	})
	return response, nil
}

func (s *receiptService) recognize(ctx context.Context, req models.RecognizeRequest) (*models.RecognizeResponse, error) {
	imageReq, err := normalizeImageRequest(req.ImageRequest)
	if err != nil {
		return nil, err
	}

	var data []byte
	if imageReq.URL != "" {
		data, err = s.fetch(ctx, imageReq.URL)
	} else {
		data, err = analyzer.DecodePayload(imageReq.Image)
		if err != nil {
			err = apperrors.NewDecodeError("image payload is not valid base64", err)
		}
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	report, err := s.analyzer.CheckQuality(ctx, data)
	if err != nil {
		return nil, analysisError(err)
	}
	if !report.IsGoodQuality && !req.Force {
		return nil, apperrors.NewProcessingError("capture failed quality gate", nil).
			WithDetails(strings.Join(report.Warnings, "; "))
	}

	text, err := s.recognizer.Recognize(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, analysisError(ctxErr)
		}
		return nil, apperrors.NewProcessingError("text recognition failed", err)
	}

	return &models.RecognizeResponse{
		Quality:       report,
		ExtractedText: text,
		Store:         s.resolve(text, req.KnownStores),
	}, nil
}

func (s *receiptService) resolve(text string, knownStores []string) models.StoreMatchResponse {
	match := s.resolver.Resolve(text, knownStores)
	response := models.StoreMatchResponse{Match: match}
	if rate, ok := charErrorRate(match.StoreName, match.Candidate); ok {
		response.CharErrorRate = &rate
	}
	return response
}

func (s *receiptService) fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	start := time.Now()
	data, err := s.captures.FetchCapture(ctx, sourceURL)

	event := observer.ReceiptEvent{
		EventType:      observer.ImageFetched,
		Source:         sourceURL,
		ProcessingTime: time.Since(start),
		Success:        err == nil,
	}
	if err != nil {
		event.EventType = observer.ImageFetchFailed
		event.ErrorMessage = err.Error()
	} else {
		event.Metadata = map[string]interface{}{"bytes": len(data)}
	}
	s.publish(ctx, event)

	return data, err
}

func (s *receiptService) publish(ctx context.Context, event observer.ReceiptEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}

// charErrorRate compares the normalized matched line with the normalized
// canonical name, character by character. It is undefined for no match.
func charErrorRate(storeName, candidate string) (float64, bool) {
	reference := characters(matcher.Normalize(storeName))
	if len(reference) == 0 || candidate == "" {
		return 0, false
	}
	rate, _ := wer.WER(reference, characters(matcher.Normalize(candidate)))
	return math.Round(rate*10000) / 10000, true
}

func characters(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}

// normalizeImageRequest trims the request and checks that it names exactly one source
func normalizeImageRequest(req models.ImageRequest) (models.ImageRequest, error) {
	req.Image = strings.TrimSpace(req.Image)
	req.URL = strings.TrimSpace(req.URL)
	if (req.Image == "") == (req.URL == "") {
		return req, apperrors.NewValidationError("exactly one of image or url is required", nil)
	}
	return req, nil
}

func sourceLabel(req models.ImageRequest) string {
	if req.URL != "" {
		return req.URL
	}
	return inlineSource
}

func analysisError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("capture analysis timeout", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.NewInternalError("capture analysis failed", err)
}
