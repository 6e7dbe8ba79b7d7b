package textextract

import (
	"context"
	"time"
)

// TextExtractor is stage 1: document bytes -> plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text"
	Duration time.Duration
	Warnings []string
}
