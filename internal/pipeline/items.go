package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// BatchResult summarizes one item-backlog run. Partial success is a success: Status is
// error only when every attempted item failed.
type BatchResult struct {
	DocumentID uuid.UUID                `json:"documentId"`
	Status     constants.DocumentStatus `json:"status"`
	Total      int                      `json:"total"`
	Succeeded  int                      `json:"succeeded"`
	Failed     int                      `json:"failed"`
	Errors     []error                  `json:"-"`
}

// ProcessItems normalizes and matches the document's stored items, one at a time in
// document order, pacing calls with the limiter. itemIDs restricts the run; nil means
// every item. A failing item is logged, marked error and skipped. Cancellation is
// checked between items and stops the run with the items seen so far.
func (o *Orchestrator) ProcessItems(ctx context.Context, documentID uuid.UUID, itemIDs []uuid.UUID, sink EventSink) (*BatchResult, error) {
	start := time.Now()
	log := common.LoggerFromContext(ctx, o.log).With("document_id", documentID)

	if _, err := o.store.GetDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	items, err := o.store.ListItems(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items = selectItems(items, itemIDs)

	if err := o.store.UpdateDocumentStatus(ctx, documentID, constants.DocumentProcessing); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	rl := newRunLog(o.store, documentID, o.now, log)
	rl.attach(ctx)
	p := newProgress(sink)
	res := &BatchResult{DocumentID: documentID, Total: len(items)}
	log.Info("pipeline.items.start", "items", len(items))
	p.emit(constants.ProgressItems, fmt.Sprintf("%d items queued", len(items)), 0, constants.EventRunning, nil)

	var runErr error
	for i, item := range items {
		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		err := o.processItem(ctx, rl, item, log)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err)
			p.emit(constants.ProgressItems, err.Error(), span(0, 99, i+1, len(items)), constants.EventWarning,
				map[string]any{"itemId": item.ID})
			continue
		}
		res.Succeeded++
		p.emit(constants.ProgressItems, fmt.Sprintf("item %s suggested", item.ItemNumber), span(0, 99, i+1, len(items)),
			constants.EventRunning, map[string]any{"itemId": item.ID})
	}

	res.Status = constants.DocumentProcessed
	if res.Failed > 0 && res.Succeeded == 0 {
		res.Status = constants.DocumentError
	}
	// the final status write must land even when the run was cancelled
	if err := o.store.UpdateDocumentStatus(context.WithoutCancel(ctx), documentID, res.Status); err != nil {
		return res, fmt.Errorf("mark %s: %w", res.Status, err)
	}

	attrs := []any{
		"status", res.Status,
		"total", res.Total,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		p.fail(constants.ProgressItems, runErr)
		log.Warn("pipeline.items.interrupted", append(attrs, "error", runErr)...)
		return res, runErr
	}
	p.emit(constants.ProgressComplete, fmt.Sprintf("%d of %d items suggested", res.Succeeded, res.Total), 100,
		constants.EventSuccess, res)
	log.Info("pipeline.items.done", attrs...)
	return res, nil
}

// processItem runs normalization then matching for one item. Any failure is converted
// into an *common.ItemProcessingError after the item is marked error.
func (o *Orchestrator) processItem(ctx context.Context, rl *runLog, item entity.ItemRecord, log *slog.Logger) error {
	itemID := item.ID
	fail := func(stage constants.Stage, t0 time.Time, cause error) error {
		ierr := &common.ItemProcessingError{ItemID: itemID, Stage: stage, Cause: cause}
		msg := cause.Error()
		if err := o.store.UpdateItemStatus(context.WithoutCancel(ctx), itemID, constants.ItemError, &msg); err != nil {
			log.Warn("pipeline.item.status_failed", "item_id", itemID, "error", err)
		}
		rl.add(ctx, &itemID, stage, constants.LogError, msg, time.Since(t0), map[string]any{"itemNumber": item.ItemNumber})
		log.Warn("pipeline.item.failed", "item_id", itemID, "stage", stage, "error", cause)
		return ierr
	}

	t0 := time.Now()
	if err := o.store.UpdateItemStatus(ctx, itemID, constants.ItemNormalizing, nil); err != nil {
		return fail(constants.StageNormalization, t0, err)
	}
	spec, err := o.normalizer.Normalize(ctx, item.Description, utils.StrOrEmpty(item.GroupContext))
	if err != nil {
		return fail(constants.StageNormalization, t0, err)
	}
	spec.ItemID = itemID
	if err := o.store.UpsertSpec(ctx, spec); err != nil {
		return fail(constants.StageNormalization, t0, fmt.Errorf("store spec: %w", err))
	}
	if err := o.store.UpdateItemStatus(ctx, itemID, constants.ItemNormalized, nil); err != nil {
		return fail(constants.StageNormalization, t0, err)
	}
	rl.add(ctx, &itemID, constants.StageNormalization, constants.LogSuccess, "normalized as "+spec.Category, time.Since(t0),
		map[string]any{"category": spec.Category, "confidence": spec.Confidence})

	t0 = time.Now()
	if err := o.store.UpdateItemStatus(ctx, itemID, constants.ItemMatching, nil); err != nil {
		return fail(constants.StageMatching, t0, err)
	}
	suggestions, err := o.matcher.Match(ctx, itemID, spec, item.Description)
	if err != nil {
		return fail(constants.StageMatching, t0, err)
	}
	if err := o.store.ReplaceSuggestions(ctx, itemID, suggestions); err != nil {
		return fail(constants.StageMatching, t0, fmt.Errorf("store suggestions: %w", err))
	}
	if err := o.store.UpdateItemStatus(ctx, itemID, constants.ItemSuggested, nil); err != nil {
		return fail(constants.StageMatching, t0, err)
	}
	details := map[string]any{"suggestions": len(suggestions)}
	if len(suggestions) > 0 {
		details["primaryEquipmentId"] = suggestions[0].EquipmentID.String()
		details["adherence"] = suggestions[0].AdherencePercentage
	}
	rl.add(ctx, &itemID, constants.StageMatching, constants.LogSuccess, fmt.Sprintf("%d suggestions", len(suggestions)), time.Since(t0), details)
	return nil
}

func selectItems(items []entity.ItemRecord, ids []uuid.UUID) []entity.ItemRecord {
	if ids == nil {
		return items
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]entity.ItemRecord, 0, len(ids))
	for _, it := range items {
		if _, ok := want[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// IsItemError reports whether err isolates to a single item.
func IsItemError(err error) bool {
	return errors.Is(err, common.ErrItemProcessing)
}
