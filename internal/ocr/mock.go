package ocr

import "context"

// MockEngine is a deterministic OCR engine for tests. It returns Text for any
// image, or Err when set.
type MockEngine struct {
	Text string
	Err  error
}

// Recognize returns the configured text or error.
func (m *MockEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Close is a no-op for MockEngine.
func (m *MockEngine) Close() error { return nil }
