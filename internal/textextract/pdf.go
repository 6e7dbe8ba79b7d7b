package textextract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

const pageBreak = "\n\n"

// PDFExtractor pulls the embedded text layer out of PDF bytes. Scanned PDFs yield
// little or no text; callers decide what length is usable.
type PDFExtractor struct {
	log *slog.Logger
}

func NewPDFExtractor(log *slog.Logger) *PDFExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &PDFExtractor{log: log}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (res Result, err error) {
	start := time.Now()
	res.Method = "pdf-text"

	if len(data) == 0 {
		return res, common.NewExtractionError("empty input", nil)
	}

	// the decoder panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("textextract.pdf.panic", "panic", r)
			err = common.NewExtractionError("corrupt pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.log.Error("textextract.pdf.open_error", "error", err, "bytes", len(data))
		return res, common.NewExtractionError("cannot open pdf", err)
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: empty", i))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(pageBreak)
		}
		b.WriteString(text)
	}

	res.Text = b.String()
	res.Pages = numPages
	res.Duration = time.Since(start)

	e.log.Info("textextract.pdf.ok",
		"pages", numPages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
