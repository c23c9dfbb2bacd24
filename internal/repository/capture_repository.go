package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/tomomini0815/ainance-v2-sub004/internal/errors"
	"github.com/tomomini0815/ainance-v2-sub004/internal/storage"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

// CaptureRepository gives the service access to captures stored by URL
type CaptureRepository interface {
	// FetchCapture validates the URL and returns the encoded capture bytes
	FetchCapture(ctx context.Context, sourceURL string) ([]byte, error)

	// ValidateCaptureURL checks the URL without fetching anything
	ValidateCaptureURL(sourceURL string) error
}

// sourceCaptureRepository implements CaptureRepository over an image source
type sourceCaptureRepository struct {
	source       storage.ImageSource
	validator    *validation.URLValidator
	fetchTimeout time.Duration
}

// NewCaptureRepository creates a repository that fetches through source
func NewCaptureRepository(source storage.ImageSource, validator *validation.URLValidator, fetchTimeout time.Duration) CaptureRepository {
	return &sourceCaptureRepository{
		source:       source,
		validator:    validator,
		fetchTimeout: fetchTimeout,
	}
}

// FetchCapture maps source failures onto the application error taxonomy
func (r *sourceCaptureRepository) FetchCapture(ctx context.Context, sourceURL string) ([]byte, error) {
	if err := r.ValidateCaptureURL(sourceURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	data, err := r.source.FetchImage(ctx, sourceURL)
	if err == nil {
		return data, nil
	}

	switch {
	case errors.Is(err, storage.ErrImageNotFound):
		return nil, apperrors.NewNotFoundError("capture not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return nil, apperrors.NewValidationError("capture is too large", err)
	case errors.Is(err, storage.ErrInvalidSourceURL):
		return nil, apperrors.NewValidationError("invalid capture URL", err)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.NewTimeoutError("capture fetch timeout", err)
	default:
		return nil, apperrors.NewNetworkError("failed to fetch capture", err)
	}
}

func (r *sourceCaptureRepository) ValidateCaptureURL(sourceURL string) error {
	return r.validator.ValidateSourceURL(sourceURL)
}
