package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/async"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/export"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
)

const (
	defaultMaxUploadBytes = 64 << 20
	defaultListLimit      = 50
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Processor runs the document flow and records suggestion confirmations.
type Processor interface {
	ProcessDocument(ctx context.Context, in pipeline.DocumentInput, sink pipeline.EventSink) (*pipeline.DocumentResult, error)
	ConfirmSuggestion(ctx context.Context, itemID, equipmentID uuid.UUID) error
}

// Reader is the read side of the store.
type Reader interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]entity.Document, error)
	ListItems(ctx context.Context, documentID uuid.UUID) ([]entity.ItemRecord, error)
	ListLogs(ctx context.Context, documentID uuid.UUID) ([]entity.ProcessLogEntry, error)
}

type Exporter interface {
	ExportSuggestionsXLSX(ctx context.Context, documentIDs ...uuid.UUID) ([]byte, error)
}

type CatalogWriter interface {
	UpsertEquipment(ctx context.Context, items []entity.Equipment) error
}

// CatalogCache is the matcher's equipment snapshot.
type CatalogCache interface {
	Invalidate()
}

// Deps wires the handler. Health may be nil.
type Deps struct {
	Processor      Processor
	Reader         Reader
	Queue          async.Queue
	Exporter       Exporter
	Catalog        CatalogWriter
	Cache          CatalogCache
	Health         func(ctx context.Context) error
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Handler struct {
	proc      Processor
	reader    Reader
	queue     async.Queue
	exporter  Exporter
	catalog   CatalogWriter
	cache     CatalogCache
	health    func(ctx context.Context) error
	maxUpload int64
	log       *slog.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		proc:      d.Processor,
		reader:    d.Reader,
		queue:     d.Queue,
		exporter:  d.Exporter,
		catalog:   d.Catalog,
		cache:     d.Cache,
		health:    d.Health,
		maxUpload: d.MaxUploadBytes,
		log:       d.Logger,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUploadBytes
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	return h
}

func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "procurement-tracker"})
}

// UploadDocument runs the document flow on a multipart upload and streams progress as
// server-sent events. The last event is "result" or "error".
func (h *Handler) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		h.abort(c, common.InvalidArgumentErrorf("file is required: %v", err))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		h.abort(c, common.InvalidArgumentErrorf("read upload: %v", err))
		return
	}
	in := pipeline.DocumentInput{
		Filename: fh.Filename,
		Kind:     constants.ParseDocumentKind(c.PostForm("kind")),
		Data:     data,
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	sink := func(e pipeline.Event) {
		c.SSEvent("progress", e)
		c.Writer.Flush()
	}

	res, err := h.proc.ProcessDocument(c.Request.Context(), in, sink)
	if err != nil {
		body := gin.H{"error": err.Error(), "status": httpStatus(err), "result": res}
		c.SSEvent("error", body)
	} else {
		c.SSEvent("result", res)
	}
	c.Writer.Flush()
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	limit := defaultListLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.abort(c, common.InvalidArgumentError("limit must be a positive integer"))
			return
		}
		limit = n
	}
	docs, err := h.reader.ListDocuments(c.Request.Context(), limit)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := h.param(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	doc, err := h.reader.GetDocument(ctx, id)
	if err != nil {
		h.abort(c, err)
		return
	}
	items, err := h.reader.ListItems(ctx, id)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc, "items": items})
}

func (h *Handler) ListLogs(c *gin.Context) {
	id, ok := h.param(c, "id")
	if !ok {
		return
	}
	logs, err := h.reader.ListLogs(c.Request.Context(), id)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *Handler) ExportDocument(c *gin.Context) {
	id, ok := h.param(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	doc, err := h.reader.GetDocument(ctx, id)
	if err != nil {
		h.abort(c, err)
		return
	}
	data, err := h.exporter.ExportSuggestionsXLSX(ctx, id)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, doc.Slug))
	c.Data(http.StatusOK, xlsxContentType, data)
}

type processRequest struct {
	ItemIDs []uuid.UUID `json:"itemIds"`
}

// ProcessItems queues the item backlog of a stored document.
func (h *Handler) ProcessItems(c *gin.Context) {
	id, ok := h.param(c, "id")
	if !ok {
		return
	}
	var req processRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.abort(c, common.InvalidArgumentErrorf("invalid body: %v", err))
			return
		}
	}
	ctx := c.Request.Context()
	if _, err := h.reader.GetDocument(ctx, id); err != nil {
		h.abort(c, err)
		return
	}
	job := async.Job{
		DocumentID:  id,
		ItemIDs:     req.ItemIDs,
		SubmittedAt: time.Now().UTC(),
		RequestID:   common.RequestIDFromContext(ctx),
	}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"documentId": id, "status": "queued"})
}

func (h *Handler) ConfirmSuggestion(c *gin.Context) {
	itemID, ok := h.param(c, "id")
	if !ok {
		return
	}
	equipmentID, ok := h.param(c, "equipmentId")
	if !ok {
		return
	}
	if err := h.proc.ConfirmSuggestion(c.Request.Context(), itemID, equipmentID); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportCatalog upserts equipment from an uploaded workbook and drops the matcher's snapshot.
func (h *Handler) ImportCatalog(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		h.abort(c, common.InvalidArgumentErrorf("file is required: %v", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.abort(c, common.InvalidArgumentErrorf("read upload: %v", err))
		return
	}
	defer f.Close()

	equipment, err := export.ImportCatalogXLSX(f)
	if err != nil {
		h.abort(c, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	if err := h.catalog.UpsertEquipment(c.Request.Context(), equipment); err != nil {
		h.abort(c, err)
		return
	}
	h.cache.Invalidate()
	common.LoggerFromContext(c.Request.Context(), h.log).Info("catalog.import.ok", "equipment", len(equipment))
	c.JSON(http.StatusOK, gin.H{"imported": len(equipment)})
}

func (h *Handler) InvalidateCatalog(c *gin.Context) {
	h.cache.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *Handler) param(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.abort(c, common.InvalidArgumentErrorf("%s must be a UUID", name))
		return uuid.Nil, false
	}
	return id, true
}
