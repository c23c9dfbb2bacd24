package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrImageNotFound indicates the capture does not exist at the source
	ErrImageNotFound = errors.New("image not found")

	// ErrImageTooLarge indicates the capture exceeds the configured size limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrInvalidSourceURL indicates the URL cannot address a capture at this source
	ErrInvalidSourceURL = errors.New("invalid source URL")
)

// ImageSource fetches the encoded bytes of a capture stored elsewhere.
// Decoding is left to the analyzer so undecodable files still get a report.
type ImageSource interface {
	FetchImage(ctx context.Context, sourceURL string) ([]byte, error)
}

// readLimited reads at most maxBytes from r
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxBytes)
	}
	return data, nil
}
