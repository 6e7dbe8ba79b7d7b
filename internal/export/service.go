package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

const (
	suggestionsSheet = "Suggestions"
	documentsSheet   = "Documents"
)

// Source reads what a suggestions workbook needs.
type Source interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	ListItems(ctx context.Context, documentID uuid.UUID) ([]entity.ItemRecord, error)
	ListSpecs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]entity.NormalizedItemSpec, error)
	ListDocumentSuggestions(ctx context.Context, documentID uuid.UUID) ([]entity.MatchSuggestion, error)
	ListEquipment(ctx context.Context) ([]entity.Equipment, error)
}

// Service produces XLSX bytes for exports.
type Service struct {
	src    Source
	logger *slog.Logger
}

func NewService(src Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, logger: logger}
}

var suggestionHeaders = []any{
	"Document",
	"Lot",
	"Item",
	"Description",
	"Unit",
	"Quantity",
	"Unit Price",
	"Status",
	"Category",
	"Technology",
	"Format",
	"Spec Confidence",
	"Primary Equipment",
	"Manufacturer",
	"Model",
	"Adherence %",
	"Confirmed",
	"Comment",
	"Alternatives",
}

var documentHeaders = []any{
	"Document",
	"Slug",
	"Status",
	"Managing Authority",
	"Process Number",
	"Supplier",
	"Supplier Tax ID",
	"Validity (months)",
	"Subject",
	"Items",
}

// ExportSuggestionsXLSX writes one row per item of each document, in document order, with
// the primary suggestion and the ranked alternatives.
func (s *Service) ExportSuggestionsXLSX(ctx context.Context, documentIDs ...uuid.UUID) ([]byte, error) {
	start := time.Now()
	if len(documentIDs) == 0 {
		return nil, fmt.Errorf("no documents to export")
	}

	catalog, err := s.src.ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	equipment := make(map[uuid.UUID]entity.Equipment, len(catalog))
	for _, e := range catalog {
		equipment[e.ID] = e
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", suggestionsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(documentsSheet); err != nil {
		return nil, err
	}
	if err := writeHeader(f, suggestionsSheet, suggestionHeaders); err != nil {
		return nil, err
	}
	if err := writeHeader(f, documentsSheet, documentHeaders); err != nil {
		return nil, err
	}

	row, docRow := 2, 2
	for _, id := range documentIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.src.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("query document %s: %w", id, err)
		}
		items, err := s.src.ListItems(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("query items: %w", err)
		}
		specs, err := s.src.ListSpecs(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("query specs: %w", err)
		}
		suggestions, err := s.src.ListDocumentSuggestions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("query suggestions: %w", err)
		}
		byItem := make(map[uuid.UUID][]entity.MatchSuggestion, len(items))
		for _, sg := range suggestions {
			byItem[sg.ItemID] = append(byItem[sg.ItemID], sg)
		}

		if err := setRow(f, documentsSheet, docRow, documentValues(doc, len(items))); err != nil {
			return nil, err
		}
		docRow++

		for _, it := range items {
			spec, hasSpec := specs[it.ID]
			values := []any{
				doc.Identifier,
				it.LotNumber,
				it.ItemNumber,
				it.Description,
				it.UnitOfMeasure,
				it.Quantity,
				it.UnitPrice,
				string(it.Status),
			}
			if hasSpec {
				values = append(values, spec.Category, spec.Technology, spec.Format, spec.Confidence)
			} else {
				values = append(values, "", "", "", "")
			}
			values = append(values, suggestionValues(byItem[it.ID], equipment)...)
			if err := setRow(f, suggestionsSheet, row, values); err != nil {
				return nil, err
			}
			row++
		}
	}

	widths := map[string]float64{"A": 18, "B": 6, "C": 6, "D": 60, "M": 36, "R": 60, "S": 40}
	for col, w := range widths {
		_ = f.SetColWidth(suggestionsSheet, col, col, w)
	}
	_ = f.SetColWidth(documentsSheet, "A", "I", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(documentIDs),
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func documentValues(doc *entity.Document, items int) []any {
	values := []any{doc.Identifier, doc.Slug, string(doc.Status)}
	ex := doc.Extracted
	if ex == nil {
		ex = &entity.ExtractedDocument{}
	}
	authority := utils.StrOrEmpty(ex.ManagingAuthority)
	if sigla := utils.StrOrEmpty(ex.ManagingAuthoritySigla); sigla != "" {
		authority = strings.TrimSpace(authority + " (" + sigla + ")")
	}
	validity := ""
	if ex.ValidityMonths != nil {
		validity = fmt.Sprint(*ex.ValidityMonths)
	}
	return append(values,
		authority,
		utils.StrOrEmpty(ex.ProcessNumber),
		utils.StrOrEmpty(ex.SupplierName),
		utils.StrOrEmpty(ex.SupplierTaxID),
		validity,
		truncate(utils.StrOrEmpty(ex.SubjectMatter), 200),
		items,
	)
}

// suggestionValues fills the primary, confirmed and alternatives columns. Suggestions
// arrive ranked.
func suggestionValues(list []entity.MatchSuggestion, equipment map[uuid.UUID]entity.Equipment) []any {
	var primary *entity.MatchSuggestion
	for i := range list {
		if list[i].IsPrimary {
			primary = &list[i]
			break
		}
	}
	if primary == nil {
		return []any{"", "", "", "", "", "", ""}
	}
	eq := equipment[primary.EquipmentID]
	var alts []string
	for _, sg := range list {
		if sg.EquipmentID == primary.EquipmentID {
			continue
		}
		if e, ok := equipment[sg.EquipmentID]; ok {
			alts = append(alts, fmt.Sprintf("%s (%.0f%%)", e.Name, sg.AdherencePercentage*100))
		}
	}
	confirmed := "no"
	if primary.ConfirmedByUser {
		confirmed = "yes"
	}
	return []any{
		eq.Name,
		eq.Manufacturer,
		eq.Model,
		utils.RoundCents(primary.AdherencePercentage * 100),
		confirmed,
		truncate(primary.Comment, 300),
		strings.Join(alts, "; "),
	}
}

func writeHeader(f *excelize.File, sheet string, headers []any) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func truncate(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
