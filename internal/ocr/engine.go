// Package ocr provides optical character recognition over uploaded image bytes.
package ocr

import "context"

// Engine recognizes text in an image. Implementations may fail; callers treat
// failure as "no text" rather than a hard error.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}
