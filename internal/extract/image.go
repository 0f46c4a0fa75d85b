package extract

import (
	"context"
	"errors"
	"fmt"
)

func (e *Extractor) extractImage(ctx context.Context, content []byte) Result {
	if e.ocr == nil {
		return Result{Outcome: OutcomeFailed, Err: errors.New("no OCR engine configured")}
	}
	text, err := e.ocr.Recognize(ctx, content)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Err: fmt.Errorf("OCR: %w", err)}
	}
	return textResult(text)
}
