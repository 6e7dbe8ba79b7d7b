package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/reconcile"
	"github.com/joseph-ayodele/procurement-tracker/internal/slug"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// DocumentInput is one already-authorized upload.
type DocumentInput struct {
	Filename string
	Kind     constants.DocumentKind
	Data     []byte
}

// DocumentResult is the outcome of ProcessDocument. On a validation failure Partial holds
// the recovered record; Logs always holds every entry of the run.
type DocumentResult struct {
	DocumentID uuid.UUID                 `json:"documentId"`
	Status     constants.DocumentStatus  `json:"status"`
	Document   *entity.Document          `json:"document,omitempty"`
	Partial    *entity.ExtractedDocument `json:"partial,omitempty"`
	Items      []entity.ItemRecord       `json:"items,omitempty"`
	Provenance reconcile.Provenance      `json:"provenance,omitempty"`
	Logs       []entity.ProcessLogEntry  `json:"logs"`
}

// ProcessDocument runs pending -> extracting -> extracted|failed for one upload.
// The document row and its items are only handed to the store once the merged record has
// a valid identifier. Returned errors are *common.ExtractionError,
// *common.ConfigurationError, *common.ValidationError, a cancellation, or a store failure.
func (o *Orchestrator) ProcessDocument(ctx context.Context, in DocumentInput, sink EventSink) (*DocumentResult, error) {
	start := time.Now()
	docID := uuid.New()
	if in.Kind == "" {
		in.Kind = constants.KindPriceRegistration
	}
	log := common.LoggerFromContext(ctx, o.log).With("document_id", docID, "filename", in.Filename)
	rl := newRunLog(o.store, docID, o.now, log)
	p := newProgress(sink)
	res := &DocumentResult{DocumentID: docID, Status: constants.DocumentPending}

	failed := func(ps constants.ProgressStage, err error) (*DocumentResult, error) {
		res.Status = constants.DocumentFailed
		res.Logs = rl.entries
		p.fail(ps, err)
		log.Error("pipeline.document.failed", "stage", ps, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return res, err
	}

	log.Info("pipeline.document.start", "bytes", len(in.Data), "kind", in.Kind)
	if len(in.Data) == 0 {
		err := common.NewExtractionError("empty upload", nil)
		rl.add(ctx, nil, constants.StageUpload, constants.LogError, err.Error(), 0, nil)
		return failed(constants.ProgressReceived, err)
	}
	rl.add(ctx, nil, constants.StageUpload, constants.LogSuccess, "document received", 0,
		map[string]any{"bytes": len(in.Data), "filename": in.Filename, "kind": string(in.Kind)})
	p.emit(constants.ProgressReceived, fmt.Sprintf("received %d bytes", len(in.Data)), 5, constants.EventSuccess, nil)

	// text
	if err := ctx.Err(); err != nil {
		return failed(constants.ProgressTextExtraction, err)
	}
	res.Status = constants.DocumentExtracting
	p.emit(constants.ProgressTextExtraction, "extracting text", 10, constants.EventRunning, nil)
	t0 := time.Now()
	text, err := o.extractText(ctx, in.Data)
	if err != nil {
		rl.add(ctx, nil, constants.StageTextExtraction, constants.LogError, err.Error(), time.Since(t0), nil)
		return failed(constants.ProgressTextExtraction, err)
	}
	rl.add(ctx, nil, constants.StageTextExtraction, constants.LogSuccess, "text extracted", time.Since(t0),
		map[string]any{"chars": utf8.RuneCountInString(text)})
	p.emit(constants.ProgressTextExtraction, "text extracted", 25, constants.EventSuccess, nil)

	// header fields
	t0 = time.Now()
	regexDoc := o.header.Extract(text)
	regexDoc.Kind = in.Kind
	rl.add(ctx, nil, constants.StageHeaderExtraction, constants.LogSuccess, "header fields extracted", time.Since(t0),
		map[string]any{"identifier": regexDoc.Identifier, "fields": headerFieldCount(regexDoc)})
	p.emit(constants.ProgressHeaderExtraction, "header fields extracted", 30, constants.EventSuccess, nil)

	// model
	if err := ctx.Err(); err != nil {
		return failed(constants.ProgressModelExtraction, err)
	}
	p.emit(constants.ProgressModelExtraction, "calling language model", 35, constants.EventRunning, nil)
	t0 = time.Now()
	modelDoc, err := o.model.ExtractDocument(ctx, text, in.Kind)
	switch {
	case err == nil:
		rl.add(ctx, nil, constants.StageModelExtraction, constants.LogSuccess, "model extraction ok", time.Since(t0),
			map[string]any{"lots": len(modelDoc.Lots), "items": modelDoc.ItemCount()})
		p.emit(constants.ProgressModelExtraction, fmt.Sprintf("model found %d items", modelDoc.ItemCount()), 55, constants.EventSuccess, nil)
	case errors.Is(err, common.ErrConfiguration), ctx.Err() != nil:
		rl.add(ctx, nil, constants.StageModelExtraction, constants.LogError, err.Error(), time.Since(t0), nil)
		return failed(constants.ProgressModelExtraction, err)
	default:
		// every provider failed: continue with the header fields alone
		rl.add(ctx, nil, constants.StageModelExtraction, constants.LogError, err.Error(), time.Since(t0), nil)
		log.Warn("pipeline.document.model_unavailable", "error", err)
		p.emit(constants.ProgressModelExtraction, "model unavailable, continuing with header fields", 55, constants.EventWarning, nil)
		modelDoc = nil
	}

	// validation
	p.emit(constants.ProgressValidation, "validating", 60, constants.EventRunning, nil)
	merged, prov, err := o.reconciler.Reconcile(regexDoc, modelDoc, text)
	res.Provenance = prov
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			res.Partial = verr.Partial
		}
		rl.add(ctx, nil, constants.StageModelExtraction, constants.LogError, err.Error(), 0,
			map[string]any{"provenance": prov})
		return failed(constants.ProgressValidation, err)
	}
	p.emit(constants.ProgressValidation, "identifier "+merged.Identifier, 65, constants.EventSuccess, nil)

	// slug
	base := slug.Derive(merged.Identifier, utils.StrOrEmpty(merged.ManagingAuthoritySigla))
	docSlug, err := slug.Unique(ctx, base, o.store.SlugExists, o.now())
	if err != nil {
		return failed(constants.ProgressSlug, err)
	}
	p.emit(constants.ProgressSlug, docSlug, 70, constants.EventSuccess, nil)

	// persistence
	now := o.now().UTC()
	doc := &entity.Document{
		ID:         docID,
		Slug:       docSlug,
		Kind:       in.Kind,
		Filename:   in.Filename,
		Status:     constants.DocumentExtracting,
		Identifier: merged.Identifier,
		Extracted:  merged,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := o.store.CreateDocument(ctx, doc); err != nil {
		return failed(constants.ProgressPersistence, fmt.Errorf("create document: %w", err))
	}
	rl.attach(ctx)
	res.Document = doc
	p.emit(constants.ProgressPersistence, "document stored", 75, constants.EventSuccess, map[string]any{"documentId": docID, "slug": docSlug})

	// lots and items
	batches := buildItems(docID, merged.Lots)
	var items []entity.ItemRecord
	for i, lot := range merged.Lots {
		if err := ctx.Err(); err != nil {
			_ = o.store.UpdateDocumentStatus(context.WithoutCancel(ctx), docID, constants.DocumentFailed)
			return failed(constants.ProgressItems, err)
		}
		batch := batches[i]
		if len(batch) > 0 {
			if err := o.store.CreateItems(ctx, batch); err != nil {
				_ = o.store.UpdateDocumentStatus(ctx, docID, constants.DocumentFailed)
				return failed(constants.ProgressItems, fmt.Errorf("create items of lot %s: %w", lot.Number, err))
			}
		}
		items = append(items, batch...)
		p.emit(constants.ProgressItems, fmt.Sprintf("lot %s: %d items", lot.Number, len(batch)),
			span(75, 95, i+1, len(merged.Lots)), constants.EventRunning, nil)
	}

	if err := o.store.UpdateDocumentStatus(ctx, docID, constants.DocumentExtracted); err != nil {
		return failed(constants.ProgressComplete, fmt.Errorf("finish document: %w", err))
	}
	doc.Status = constants.DocumentExtracted
	res.Status = constants.DocumentExtracted
	res.Items = items
	res.Logs = rl.entries

	p.emit(constants.ProgressComplete, "done", 100, constants.EventSuccess, map[string]any{
		"documentId": docID,
		"slug":       docSlug,
		"identifier": merged.Identifier,
		"items":      len(items),
	})
	log.Info("pipeline.document.ok",
		"identifier", merged.Identifier,
		"slug", docSlug,
		"lots", len(merged.Lots),
		"items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// extractText enforces the minimum usable length; scanned PDFs pass decoding but
// carry no text layer.
func (o *Orchestrator) extractText(ctx context.Context, data []byte) (string, error) {
	out, err := o.text.Extract(ctx, data)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, common.ErrExtraction) {
			return "", err
		}
		return "", common.NewExtractionError("text extraction", err)
	}
	text := strings.TrimSpace(out.Text)
	if n := utf8.RuneCountInString(text); n < o.minTextChars {
		return "", common.NewExtractionError(fmt.Sprintf("text too short (%d chars), probably a scanned document", n), nil)
	}
	return text, nil
}

// buildItems converts lots into stored items, one batch per lot. Position is the
// document-wide order.
func buildItems(docID uuid.UUID, lots []entity.Lot) [][]entity.ItemRecord {
	out := make([][]entity.ItemRecord, len(lots))
	pos := 0
	for i, lot := range lots {
		group := lotContext(lot)
		for _, it := range lot.Items {
			out[i] = append(out[i], entity.ItemRecord{
				ID:            uuid.New(),
				DocumentID:    docID,
				Position:      pos,
				LotNumber:     lot.Number,
				GroupContext:  group,
				ItemNumber:    it.ItemNumber,
				Description:   it.Description,
				UnitOfMeasure: it.UnitOfMeasure,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
				Status:        constants.ItemPending,
			})
			pos++
		}
	}
	return out
}

func lotContext(lot entity.Lot) *string {
	if d := utils.StrOrEmpty(lot.Description); strings.TrimSpace(d) != "" {
		s := "Lote " + lot.Number + " - " + strings.TrimSpace(d)
		return &s
	}
	if lot.Number == "" {
		return nil
	}
	s := "Lote " + lot.Number
	return &s
}

func headerFieldCount(d *entity.ExtractedDocument) int {
	n := 0
	if d.Identifier != "" {
		n++
	}
	for _, p := range []*string{d.ManagingAuthority, d.ManagingAuthoritySigla, d.ProcessNumber, d.SupplierName, d.SupplierTaxID, d.SubjectMatter} {
		if p != nil {
			n++
		}
	}
	if d.ValidityMonths != nil {
		n++
	}
	if len(d.LegalBasis) > 0 {
		n++
	}
	return n
}
