package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/textextract"
)

var errNotFound = errors.New("not found")

type memStore struct {
	mu          sync.Mutex
	docs        map[uuid.UUID]*entity.Document
	items       map[uuid.UUID]*entity.ItemRecord
	specs       map[uuid.UUID]*entity.NormalizedItemSpec
	suggestions map[uuid.UUID][]entity.MatchSuggestion
	logs        []entity.ProcessLogEntry
	slugs       map[string]bool
	statuses    []constants.DocumentStatus
}

func newMemStore() *memStore {
	return &memStore{
		docs:        map[uuid.UUID]*entity.Document{},
		items:       map[uuid.UUID]*entity.ItemRecord{},
		specs:       map[uuid.UUID]*entity.NormalizedItemSpec{},
		suggestions: map[uuid.UUID][]entity.MatchSuggestion{},
		slugs:       map[string]bool{},
	}
}

func (m *memStore) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugs[slug], nil
}

func (m *memStore) CreateDocument(_ context.Context, doc *entity.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	m.slugs[doc.Slug] = true
	return nil
}

func (m *memStore) GetDocument(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) UpdateDocumentStatus(_ context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return errNotFound
	}
	d.Status = status
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memStore) CreateItems(_ context.Context, items []entity.ItemRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range items {
		if _, ok := m.docs[items[i].DocumentID]; !ok {
			return fmt.Errorf("item %s: %w", items[i].ItemNumber, errNotFound)
		}
		cp := items[i]
		m.items[cp.ID] = &cp
	}
	return nil
}

func (m *memStore) ListItems(_ context.Context, documentID uuid.UUID) ([]entity.ItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ItemRecord
	for _, it := range m.items {
		if it.DocumentID == documentID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) UpdateItemStatus(_ context.Context, itemID uuid.UUID, status constants.ItemStatus, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return errNotFound
	}
	it.Status = status
	it.ErrorMessage = errMsg
	return nil
}

func (m *memStore) UpsertSpec(_ context.Context, spec *entity.NormalizedItemSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *spec
	m.specs[spec.ItemID] = &cp
	return nil
}

func (m *memStore) ReplaceSuggestions(_ context.Context, itemID uuid.UUID, suggestions []entity.MatchSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions[itemID] = append([]entity.MatchSuggestion(nil), suggestions...)
	return nil
}

func (m *memStore) ConfirmSuggestion(_ context.Context, itemID, equipmentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.suggestions[itemID]
	found := false
	for i := range list {
		list[i].IsPrimary = list[i].EquipmentID == equipmentID
		if list[i].IsPrimary {
			list[i].ConfirmedByUser = true
			found = true
		}
	}
	if !found {
		return errNotFound
	}
	return nil
}

func (m *memStore) AppendLog(_ context.Context, entry *entity.ProcessLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[entry.DocumentID]; !ok {
		return errNotFound
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memStore) itemLogs(status constants.LogStatus) []entity.ProcessLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ProcessLogEntry
	for _, l := range m.logs {
		if l.ItemID != nil && l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

type fakeText struct {
	text string
	err  error
}

func (f fakeText) Extract(context.Context, []byte) (textextract.Result, error) {
	return textextract.Result{Text: f.text, Pages: 1, Method: "pdf-text"}, f.err
}

type fakeModel struct {
	doc   *entity.ExtractedDocument
	err   error
	calls int
}

func (f *fakeModel) ExtractDocument(context.Context, string, constants.DocumentKind) (*entity.ExtractedDocument, error) {
	f.calls++
	return f.doc, f.err
}

// fakeNormalizer fails on the descriptions listed in failOn.
type fakeNormalizer struct {
	failOn map[string]bool
	seen   []string
}

func (f *fakeNormalizer) Normalize(_ context.Context, description, _ string) (*entity.NormalizedItemSpec, error) {
	f.seen = append(f.seen, description)
	if f.failOn[description] {
		return nil, &common.ProviderError{Provider: "all", Cause: errors.New("model timeout")}
	}
	return &entity.NormalizedItemSpec{Category: string(constants.Camera), Confidence: 0.9}, nil
}

type fakeMatcher struct {
	equipmentID uuid.UUID
}

func (f fakeMatcher) Match(_ context.Context, itemID uuid.UUID, _ *entity.NormalizedItemSpec, _ string) ([]entity.MatchSuggestion, error) {
	return []entity.MatchSuggestion{{
		ID:                  uuid.New(),
		ItemID:              itemID,
		EquipmentID:         f.equipmentID,
		IsPrimary:           true,
		AdherencePercentage: 1,
		Comment:             "category camera",
	}}, nil
}

// cancelAfter cancels its context once Wait has been called n times.
type cancelAfter struct {
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) Wait(ctx context.Context) error {
	c.n--
	if c.n <= 0 {
		c.cancel()
	}
	return ctx.Err()
}
