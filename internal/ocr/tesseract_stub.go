//go:build !cgo
// +build !cgo

package ocr

import (
	"context"
	"errors"
)

// TesseractEngine stub type when built without CGO (see tesseract.go for the real implementation).
type TesseractEngine struct{}

// NewTesseractEngine returns an error when built without CGO (tesseract not available).
func NewTesseractEngine(_ []string) (*TesseractEngine, error) {
	return nil, errors.New("tesseract OCR requires CGO; build with CGO_ENABLED=1 and libtesseract")
}

// Recognize is unreachable on the stub; NewTesseractEngine never succeeds.
func (e *TesseractEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", errors.New("tesseract OCR not available")
}

// Close is a no-op on the stub.
func (e *TesseractEngine) Close() error { return nil }
