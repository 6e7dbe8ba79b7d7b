package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/app"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/ingest"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
	"github.com/joseph-ayodele/procurement-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type counters struct {
	documents, failed, items, itemErrors atomic.Int64
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory to process PDFs from (required)")
		out       = flag.String("out", "", "output XLSX file path (defaults to the parent of -dir)")
		inmem     = flag.Bool("inmem", false, "use a throwaway SQLite database")
		kindStr   = flag.String("kind", string(constants.KindPriceRegistration), "document kind: priceRegistration or referenceTerms")
		docsOnly  = flag.Bool("documents-only", false, "skip normalization and matching")
		configDir = flag.String("config", "", "directory holding config.yaml")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "procurement-suggestions.xlsx")
	}

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	if *inmem {
		tmp, err := os.MkdirTemp("", "procurement-batch-*")
		if err != nil {
			printError("Error: temp dir: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(tmp)
		// set before LoadConfig so validation sees sqlite
		_ = os.Setenv("PROCUREMENT_DATABASE_DRIVER", repository.DriverSQLite)
		_ = os.Setenv("PROCUREMENT_DATABASE_DSN", "file:"+filepath.Join(tmp, "batch.db"))
	}
	cfg, err := common.LoadConfig(paths...)
	if err != nil {
		printError("Error: config: %v\n", err)
		os.Exit(2)
	}
	logger := common.InitLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	files, stats, err := ingest.Scan(ctx, *dir, ingest.ScanOptions{SkipHidden: true})
	if err != nil {
		logger.Error("scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("batch.scan.ok",
		"dir", *dir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)

	kind := constants.ParseDocumentKind(*kindStr)
	ids := make([]uuid.UUID, len(files))
	var c counters

	// documents in parallel, each document's items sequentially
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Pipeline.BatchParallelism))
	for i, f := range files {
		g.Go(func() error {
			id, err := processFile(gctx, rt.Orchestrator, f, kind, !*docsOnly, &c, logger)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				return nil
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("batch aborted", "error", err)
	}

	var stored []uuid.UUID
	for _, id := range ids {
		if id != uuid.Nil {
			stored = append(stored, id)
		}
	}
	if len(stored) == 0 {
		logger.Warn("no documents stored; nothing to export", "failed", c.failed.Load())
		os.Exit(1)
	}

	xlsx, err := rt.Exporter.ExportSuggestionsXLSX(context.WithoutCancel(ctx), stored...)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("write output failed", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("batch.done",
		"documents", c.documents.Load(),
		"failed", c.failed.Load(),
		"items", c.items.Load(),
		"item_errors", c.itemErrors.Load(),
		"out", *out,
	)
}

func processFile(ctx context.Context, orch *pipeline.Orchestrator, f ingest.File, kind constants.DocumentKind, items bool, c *counters, logger *slog.Logger) (uuid.UUID, error) {
	log := logger.With("path", f.Path, "sha256", f.SHA256)
	data, err := ingest.Load(f.Path)
	if err != nil {
		c.failed.Add(1)
		log.Error("batch.read.failed", "error", err)
		return uuid.Nil, err
	}
	res, err := orch.ProcessDocument(ctx, pipeline.DocumentInput{
		Filename: filepath.Base(f.Path),
		Kind:     kind,
		Data:     data,
	}, nil)
	if err != nil {
		c.failed.Add(1)
		log.Error("batch.document.failed", "error", err)
		return uuid.Nil, err
	}
	c.documents.Add(1)
	if !items {
		return res.DocumentID, nil
	}

	br, err := orch.ProcessItems(ctx, res.DocumentID, nil, nil)
	if br != nil {
		c.items.Add(int64(br.Succeeded))
		c.itemErrors.Add(int64(br.Failed))
	}
	if err != nil {
		log.Warn("batch.items.interrupted", "document_id", res.DocumentID, "error", err)
	}
	// the document is stored either way; export whatever was matched
	return res.DocumentID, nil
}
