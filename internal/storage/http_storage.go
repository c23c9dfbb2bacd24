package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomomini0815/ainance-v2-sub004/internal/logger"

	"github.com/sirupsen/logrus"
)

const maxFetchAttempts = 3

// HTTPImageSource implements ImageSource for plain http(s) URLs
type HTTPImageSource struct {
	client   *http.Client
	maxBytes int64
	// retryDelay is multiplied by the attempt number between retries
	retryDelay time.Duration
}

// NewHTTPImageSource creates an HTTP image source.
// maxBytes caps the body size; receipts are phone photos, not archives.
func NewHTTPImageSource(timeout time.Duration, maxBytes int64) *HTTPImageSource {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageSource{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes:   maxBytes,
		retryDelay: time.Second,
	}
}

// FetchImage downloads a capture. Network errors and 5xx responses are
// retried; 4xx responses are not.
func (h *HTTPImageSource) FetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSourceURL, err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/heic, image/webp, */*")
	req.Header.Set("User-Agent", "receipt-capture-gate/1.0")

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		resp, err := h.client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			return readLimited(resp.Body, h.maxBytes)
		}

		retryable := true
		if err != nil {
			lastErr = err
		} else {
			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusNotFound:
				lastErr = fmt.Errorf("%w: client error: status code %d", ErrImageNotFound, resp.StatusCode)
				retryable = false
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				lastErr = fmt.Errorf("client error: status code %d", resp.StatusCode)
				retryable = false
			default:
				lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			}
		}

		if !retryable || ctx.Err() != nil {
			break
		}

		if attempt < maxFetchAttempts-1 {
			logger.WithError(lastErr).WithFields(logrus.Fields{
				"url":     sourceURL,
				"attempt": attempt + 1,
			}).Debug("Retrying image fetch")

			select {
			case <-time.After(time.Duration(attempt+1) * h.retryDelay):
			case <-ctx.Done():
				return nil, fmt.Errorf("image fetch abandoned: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxFetchAttempts, lastErr)
}
