package recognizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TextRecognizer turns an accepted capture into raw OCR text
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// tesseractRecognizer runs a local Tesseract engine.
// A gosseract client is not safe for concurrent use, so each call owns one.
type tesseractRecognizer struct {
	languages []string
}

// NewTesseractRecognizer creates a recognizer for the given traineddata languages, e.g. jpn, eng
func NewTesseractRecognizer(languages []string) (TextRecognizer, error) {
	if len(languages) == 0 {
		return nil, errors.New("at least one OCR language is required")
	}
	return &tesseractRecognizer{languages: append([]string(nil), languages...)}, nil
}

type recognition struct {
	text string
	err  error
}

// Recognize runs OCR. Tesseract cannot be interrupted, so on cancellation the
// engine finishes in the background and its result is discarded.
func (r *tesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan recognition, 1)
	go func() {
		text, err := r.run(image)
		done <- recognition{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *tesseractRecognizer) run(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}
