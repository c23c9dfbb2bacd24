package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/tomomini0815/ainance-v2-sub004/internal/errors"
	"github.com/tomomini0815/ainance-v2-sub004/internal/storage"
	"github.com/tomomini0815/ainance-v2-sub004/pkg/validation"
)

type stubSource struct {
	data  []byte
	err   error
	calls int
}

func (s *stubSource) FetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type slowSource struct{}

func (slowSource) FetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchCapture(t *testing.T) {
	testCases := []struct {
		name         string
		sourceErr    error
		expectedType apperrors.ErrorType
	}{
		{"Not Found", fmt.Errorf("wrapped: %w", storage.ErrImageNotFound), apperrors.ErrorTypeNotFound},
		{"Too Large", storage.ErrImageTooLarge, apperrors.ErrorTypeValidation},
		{"Invalid URL", storage.ErrInvalidSourceURL, apperrors.ErrorTypeValidation},
		{"Timeout", context.DeadlineExceeded, apperrors.ErrorTypeTimeout},
		{"Network", errors.New("connection reset"), apperrors.ErrorTypeNetwork},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewCaptureRepository(&stubSource{err: tc.sourceErr}, validation.NewURLValidator(), time.Second)

			_, err := repo.FetchCapture(context.Background(), "https://example.com/receipt.jpg")
			if !apperrors.IsType(err, tc.expectedType) {
				t.Errorf("Expected %s error, got %v", tc.expectedType, err)
			}
			if !errors.Is(err, tc.sourceErr) {
				t.Errorf("Expected source error to stay in the chain, got %v", err)
			}
		})
	}
}

func TestFetchCapture_Success(t *testing.T) {
	source := &stubSource{data: []byte{1, 2, 3}}
	repo := NewCaptureRepository(source, validation.NewURLValidator(), time.Second)

	data, err := repo.FetchCapture(context.Background(), "https://example.com/receipt.jpg")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("Expected 3 bytes, got %d", len(data))
	}
}

func TestFetchCapture_RejectedURLIsNeverFetched(t *testing.T) {
	source := &stubSource{data: []byte{1}}
	validator := validation.NewURLValidatorWithOptions([]string{"https"}, []string{".blob.core.windows.net"})
	repo := NewCaptureRepository(source, validator, time.Second)

	for _, u := range []string{"", "ftp://example.com/r.jpg", "https://evil.example.com/r.jpg"} {
		_, err := repo.FetchCapture(context.Background(), u)
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("Expected validation error for %q, got %v", u, err)
		}
	}
	if source.calls != 0 {
		t.Errorf("Expected no fetches for rejected URLs, got %d", source.calls)
	}
}

func TestFetchCapture_Timeout(t *testing.T) {
	repo := NewCaptureRepository(slowSource{}, validation.NewURLValidator(), 20*time.Millisecond)

	_, err := repo.FetchCapture(context.Background(), "https://example.com/receipt.jpg")
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}
