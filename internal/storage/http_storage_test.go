package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// pngData is a valid 1x1 transparent PNG
var pngData = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, // bit depth, color type, etc.
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41, // IDAT chunk start
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00, // compressed data
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, // compressed data end
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE, // IEND chunk
	0x42, 0x60, 0x82,
}

func newTestSource(maxBytes int64) *HTTPImageSource {
	source := NewHTTPImageSource(5*time.Second, maxBytes)
	source.retryDelay = time.Millisecond
	return source
}

func TestHTTPImageSource_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{403},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 403",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 400},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 400",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if requestCount >= len(tt.responses) {
					w.WriteHeader(500)
					w.Write([]byte("Unexpected request"))
					return
				}
				statusCode := tt.responses[requestCount]
				requestCount++

				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/png")
					w.Write(pngData)
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			data, err := newTestSource(1024).FetchImage(context.Background(), server.URL)

			if requestCount != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, requestCount)
			}

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %s", err.Error())
			}
			if !bytes.Equal(data, pngData) {
				t.Errorf("Expected body bytes to be returned unchanged, got %d bytes", len(data))
			}
		})
	}
}

func TestHTTPImageSource_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newTestSource(1024).FetchImage(context.Background(), server.URL)
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}
}

func TestHTTPImageSource_NetworkError_Retry(t *testing.T) {
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			// Simulate network error by closing connection
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	source := NewHTTPImageSource(5*time.Second, 1024)
	source.retryDelay = 50 * time.Millisecond

	start := time.Now()
	_, err := source.FetchImage(context.Background(), server.URL)
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}
	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}
	// Linear backoff: 1x then 2x the retry delay
	if duration < 150*time.Millisecond {
		t.Errorf("Expected at least 150ms due to backoff, took %v", duration)
	}
}

func TestHTTPImageSource_SizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngData)
	}))
	defer server.Close()

	_, err := newTestSource(int64(len(pngData)-1)).FetchImage(context.Background(), server.URL)
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("Expected ErrImageTooLarge, got %v", err)
	}

	data, err := newTestSource(int64(len(pngData))).FetchImage(context.Background(), server.URL)
	if err != nil || len(data) != len(pngData) {
		t.Errorf("Expected body at exactly the limit to be accepted, got %d bytes, err %v", len(data), err)
	}
}

func TestHTTPImageSource_ContextCancelledDuringBackoff(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewHTTPImageSource(5*time.Second, 1024)
	source.retryDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := source.FetchImage(ctx, server.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if requestCount != 1 {
		t.Errorf("Expected no retry after cancellation, got %d requests", requestCount)
	}
}

func TestHTTPImageSource_InvalidURL(t *testing.T) {
	_, err := newTestSource(1024).FetchImage(context.Background(), "://missing-scheme")
	if !errors.Is(err, ErrInvalidSourceURL) {
		t.Errorf("Expected ErrInvalidSourceURL, got %v", err)
	}
}
