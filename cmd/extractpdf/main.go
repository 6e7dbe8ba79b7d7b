package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/app"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/header"
	"github.com/joseph-ayodele/procurement-tracker/internal/ingest"
	"github.com/joseph-ayodele/procurement-tracker/internal/reconcile"
	"github.com/joseph-ayodele/procurement-tracker/internal/textextract"
)

type output struct {
	File       string                    `json:"file"`
	Pages      int                       `json:"pages"`
	Document   *entity.ExtractedDocument `json:"document,omitempty"`
	Header     *entity.ExtractedDocument `json:"header"`
	Provenance reconcile.Provenance      `json:"provenance,omitempty"`
	ModelError string                    `json:"modelError,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

func main() {
	var (
		kindStr   = flag.String("kind", string(constants.KindPriceRegistration), "document kind")
		noModel   = flag.Bool("no-model", false, "header fields only, no provider calls")
		configDir = flag.String("config", "", "directory holding config.yaml")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extractpdf [-kind K] [-no-model] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := common.LoadConfig(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	// JSON goes to stdout; keep logs on stderr
	cfg.Log.Format = "text"
	logger := common.InitLoggerTo(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	data, err := ingest.Load(path)
	if err != nil {
		logger.Error("read failed", "path", path, "error", err)
		os.Exit(1)
	}
	text, err := textextract.NewPDFExtractor(logger).Extract(ctx, data)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	kind := constants.ParseDocumentKind(*kindStr)
	out := output{File: path, Pages: text.Pages}
	out.Header = header.NewExtractor(app.HeaderConfig(cfg.Header)).Extract(text.Text)
	out.Header.Kind = kind

	var model *entity.ExtractedDocument
	if !*noModel {
		model, err = app.NewExtractor(cfg.LLM, logger).ExtractDocument(ctx, text.Text, kind)
		if err != nil {
			out.ModelError = err.Error()
			model = nil
		}
	}

	merged, prov, err := reconcile.New(cfg.Header.DefaultSupplier, logger).Reconcile(out.Header, model, text.Text)
	out.Provenance = prov
	if err != nil {
		out.Error = err.Error()
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			merged = verr.Partial
		}
	}
	out.Document = merged

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode failed", "error", err)
		os.Exit(1)
	}
	if out.Error != "" {
		os.Exit(1)
	}
}
