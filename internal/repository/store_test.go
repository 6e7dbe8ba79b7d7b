package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{Driver: DriverSQLite, DSN: "file:" + filepath.Join(t.TempDir(), "procurement.db")}
	require.NoError(t, Migrate(cfg, nil))
	// a second run is a no-op
	require.NoError(t, Migrate(cfg, nil))

	db, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, HealthCheck(context.Background(), db, time.Second, discardLogger()))
	return NewStore(db, discardLogger())
}

func seedDocument(t *testing.T, s *Store) *entity.Document {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &entity.Document{
		ID:         uuid.New(),
		Slug:       "264-2025-i-seplag-mg",
		Kind:       constants.KindPriceRegistration,
		Filename:   "ata.pdf",
		Status:     constants.DocumentExtracting,
		Identifier: "264/2025 - I",
		Extracted: &entity.ExtractedDocument{
			Identifier:    "264/2025 - I",
			SupplierTaxID: utils.Ptr("12.345.678/0001-90"),
			Lots:          []entity.Lot{{Number: "1", Items: []entity.ExtractedItem{{ItemNumber: "1", Description: "Câmera"}}}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateDocument(context.Background(), doc))
	return doc
}

func seedItems(t *testing.T, s *Store, docID uuid.UUID, n int) []entity.ItemRecord {
	t.Helper()
	items := make([]entity.ItemRecord, n)
	for i := range items {
		items[i] = entity.ItemRecord{
			ID:            uuid.New(),
			DocumentID:    docID,
			Position:      i,
			LotNumber:     "1",
			GroupContext:  utils.Ptr("Lote 1"),
			ItemNumber:    string(rune('1' + i)),
			Description:   "Câmera IP",
			UnitOfMeasure: "UN",
			Quantity:      int64(10 * (i + 1)),
			UnitPrice:     1500.5,
			Status:        constants.ItemPending,
		}
	}
	require.NoError(t, s.CreateItems(context.Background(), items))
	return items
}

func seedEquipment(t *testing.T, s *Store, models ...string) []entity.Equipment {
	t.Helper()
	in := make([]entity.Equipment, len(models))
	for i, m := range models {
		in[i] = entity.Equipment{Name: "Câmera " + m, Manufacturer: "Acme", Model: m, Category: "camera", Technology: "ip", Format: "bullet"}
	}
	require.NoError(t, s.UpsertEquipment(context.Background(), in))
	out, err := s.ListEquipment(context.Background())
	require.NoError(t, err)
	return out
}

func TestDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := seedDocument(t, s)

	exists, err := s.SlugExists(ctx, doc.Slug)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.SlugExists(ctx, "other")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Identifier, got.Identifier)
	assert.Equal(t, constants.KindPriceRegistration, got.Kind)
	require.NotNil(t, got.Extracted)
	assert.Equal(t, "12.345.678/0001-90", *got.Extracted.SupplierTaxID)
	require.Len(t, got.Extracted.Lots, 1)

	require.NoError(t, s.UpdateDocumentStatus(ctx, doc.ID, constants.DocumentExtracted))
	got, err = s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentExtracted, got.Status)

	list, err := s.ListDocuments(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.GetDocument(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, s.UpdateDocumentStatus(ctx, uuid.New(), constants.DocumentFailed), common.ErrNotFound)

	// slug is unique
	dup := *doc
	dup.ID = uuid.New()
	assert.Error(t, s.CreateDocument(ctx, &dup))

	empty := *doc
	empty.ID, empty.Slug, empty.Identifier = uuid.New(), "x", ""
	assert.ErrorIs(t, s.CreateDocument(ctx, &empty), common.ErrValidation)
}

func TestItemsAndSpecs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := seedDocument(t, s)
	items := seedItems(t, s, doc.ID, 3)

	got, err := s.ListItems(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, it := range got {
		assert.Equal(t, items[i].ID, it.ID)
		assert.Equal(t, i, it.Position)
	}
	assert.InDelta(t, 1500.5, got[0].UnitPrice, 0.001)
	require.NotNil(t, got[0].GroupContext)
	assert.Nil(t, got[0].ErrorMessage)

	msg := "model timeout"
	require.NoError(t, s.UpdateItemStatus(ctx, items[1].ID, constants.ItemError, &msg))
	got, err = s.ListItems(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ItemError, got[1].Status)
	require.NotNil(t, got[1].ErrorMessage)
	assert.Equal(t, msg, *got[1].ErrorMessage)

	spec := &entity.NormalizedItemSpec{ItemID: items[0].ID, Category: "camera", Technology: "ip", Format: "bullet", Confidence: 0.7}
	spec.MinResolutionMP = utils.Ptr(4.0)
	spec.PoE = utils.Ptr(true)
	require.NoError(t, s.UpsertSpec(ctx, spec))

	spec.Format = "dome"
	spec.PoE = nil
	require.NoError(t, s.UpsertSpec(ctx, spec))

	stored, err := s.GetSpec(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "dome", stored.Format)
	assert.Nil(t, stored.PoE)
	require.NotNil(t, stored.MinResolutionMP)
	assert.InDelta(t, 4.0, *stored.MinResolutionMP, 1e-9)

	specs, err := s.ListSpecs(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, specs, 1)

	_, err = s.GetSpec(ctx, items[2].ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestItemsRequireDocument(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateItems(context.Background(), []entity.ItemRecord{{
		ID: uuid.New(), DocumentID: uuid.New(), ItemNumber: "1", Status: constants.ItemPending,
	}})
	assert.Error(t, err)
}

func TestSuggestions_SinglePrimary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := seedDocument(t, s)
	item := seedItems(t, s, doc.ID, 1)[0]
	eq := seedEquipment(t, s, "A1", "B2", "C3")

	rank := func(ids ...uuid.UUID) []entity.MatchSuggestion {
		out := make([]entity.MatchSuggestion, len(ids))
		for i, id := range ids {
			out[i] = entity.MatchSuggestion{EquipmentID: id, IsPrimary: i == 0, AdherencePercentage: 1 - float64(i)/10, Rank: i, Comment: "c"}
		}
		return out
	}
	primaries := func() []uuid.UUID {
		list, err := s.ListSuggestions(ctx, item.ID)
		require.NoError(t, err)
		var out []uuid.UUID
		for _, sg := range list {
			if sg.IsPrimary {
				out = append(out, sg.EquipmentID)
			}
		}
		return out
	}

	require.NoError(t, s.ReplaceSuggestions(ctx, item.ID, rank(eq[0].ID, eq[1].ID)))
	assert.Equal(t, []uuid.UUID{eq[0].ID}, primaries())

	require.NoError(t, s.ConfirmSuggestion(ctx, item.ID, eq[1].ID))
	assert.Equal(t, []uuid.UUID{eq[1].ID}, primaries())

	// re-matching keeps the confirmed row but moves the primary to the new best
	require.NoError(t, s.ReplaceSuggestions(ctx, item.ID, rank(eq[2].ID)))
	list, err := s.ListSuggestions(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []uuid.UUID{eq[2].ID}, primaries())
	for _, sg := range list {
		if sg.EquipmentID == eq[1].ID {
			assert.True(t, sg.ConfirmedByUser)
		}
	}

	all, err := s.ListDocumentSuggestions(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.ConfirmSuggestion(ctx, item.ID, uuid.New()), common.ErrNotFound)
	// the failed confirm rolled back its demotion
	assert.Equal(t, []uuid.UUID{eq[2].ID}, primaries())
}

func TestEquipment_UpsertKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first := seedEquipment(t, s, "A1", "B2")
	require.Len(t, first, 2)
	assert.Less(t, first[0].Seq, first[1].Seq)

	update := []entity.Equipment{
		{Name: "Renamed", Manufacturer: "Acme", Model: "A1", Category: "camera", Technology: "ip", Format: "dome"},
		{Name: "New", Manufacturer: "Acme", Model: "Z9", Category: "nvr", Technology: "ip", Format: "rack"},
	}
	require.NoError(t, s.UpsertEquipment(ctx, update))

	all, err := s.ListEquipment(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Renamed", all[0].Name)
	assert.Equal(t, first[0].ID, all[0].ID)
	assert.Equal(t, first[0].Seq, all[0].Seq)
	assert.Equal(t, "Z9", all[2].Model)
}

func TestLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	doc := seedDocument(t, s)
	item := seedItems(t, s, doc.ID, 1)[0]

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendLog(ctx, &entity.ProcessLogEntry{
		DocumentID: doc.ID, Stage: constants.StageUpload, Status: constants.LogSuccess, Message: "received", CreatedAt: at,
	}))
	require.NoError(t, s.AppendLog(ctx, &entity.ProcessLogEntry{
		DocumentID: doc.ID, ItemID: &item.ID, Stage: constants.StageNormalization, Status: constants.LogError,
		Message: "model timeout", DurationMs: 1200, Details: map[string]any{"itemNumber": "1"}, CreatedAt: at.Add(time.Second),
	}))

	logs, err := s.ListLogs(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Nil(t, logs[0].ItemID)
	assert.Equal(t, constants.StageUpload, logs[0].Stage)
	require.NotNil(t, logs[1].ItemID)
	assert.Equal(t, item.ID, *logs[1].ItemID)
	assert.Equal(t, int64(1200), logs[1].DurationMs)
	assert.Equal(t, "1", logs[1].Details["itemNumber"])

	err = s.AppendLog(ctx, &entity.ProcessLogEntry{DocumentID: uuid.New(), Stage: constants.StageUpload, Status: constants.LogError})
	assert.Error(t, err, "logs require an existing document")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.ErrorIs(t, Migrate(Config{Driver: "oracle"}, nil), common.ErrInvalidInput)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:procurement.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN(""))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x.db?mode=rwc"))
	assert.Equal(t, "file:x.db?_pragma=journal_mode(WAL)", sqliteDSN("file:x.db?_pragma=journal_mode(WAL)"))
}
