package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/async"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/ingest"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
)

type documentProcessor interface {
	ProcessDocument(ctx context.Context, in pipeline.DocumentInput, sink pipeline.EventSink) (*pipeline.DocumentResult, error)
}

// watchInbox runs the document flow for every PDF dropped into the inbox and queues the
// item backlog of each stored document. It returns when ctx is done.
func watchInbox(ctx context.Context, cfg common.IngestConfig, proc documentProcessor, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.InboxDir},
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.Debounce,
	}, logger)
	if err != nil {
		return err
	}
	kind := constants.ParseDocumentKind(cfg.Kind)
	logger.Info("inbox.watch.start", "dir", cfg.InboxDir, "kind", kind)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("inbox.watch.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			ingestFile(ctx, path, kind, proc, queue, logger)
		}
	}
}

func ingestFile(ctx context.Context, path string, kind constants.DocumentKind, proc documentProcessor, queue async.Queue, logger *slog.Logger) {
	log := logger.With("path", path)
	data, err := ingest.Load(path)
	if err != nil {
		log.Error("inbox.read.failed", "error", err)
		return
	}
	res, err := proc.ProcessDocument(ctx, pipeline.DocumentInput{
		Filename: filepath.Base(path),
		Kind:     kind,
		Data:     data,
	}, nil)
	if err != nil {
		log.Error("inbox.document.failed", "error", err)
		return
	}
	err = queue.Enqueue(ctx, async.Job{DocumentID: res.DocumentID, SubmittedAt: time.Now().UTC()})
	if err != nil {
		log.Warn("inbox.enqueue.failed", "document_id", res.DocumentID, "error", err)
		return
	}
	log.Info("inbox.document.queued", "document_id", res.DocumentID)
}
