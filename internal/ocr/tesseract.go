//go:build cgo
// +build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs OCR through libtesseract. It requires CGO and the
// tesseract shared library. The underlying client is not safe for concurrent
// use, so calls are serialized.
type TesseractEngine struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseractEngine creates a Tesseract OCR engine for the given languages
// (e.g. "eng"). Empty languages means tesseract's default.
func NewTesseractEngine(languages []string) (*TesseractEngine, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set OCR languages: %w", err)
		}
	}
	return &TesseractEngine{client: client}, nil
}

// Recognize runs OCR over the image bytes and returns the recognized text
// stripped of surrounding whitespace.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the tesseract client.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}
