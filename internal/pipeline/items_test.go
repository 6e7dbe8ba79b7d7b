package pipeline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

func seedDocument(t *testing.T, f *fixture) *DocumentResult {
	t.Helper()
	res, err := f.orch.ProcessDocument(context.Background(), DocumentInput{Filename: "ata.pdf", Data: []byte("%PDF")}, nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	return res
}

func TestProcessItems_PartialFailure(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})
	doc := seedDocument(t, f)
	f.normalizer.failOn["Câmera PTZ 30x"] = true
	var events []Event

	res, err := f.orch.ProcessItems(context.Background(), doc.DocumentID, nil, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, constants.DocumentProcessed, res.Status)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	var ierr *common.ItemProcessingError
	require.ErrorAs(t, res.Errors[0], &ierr)
	assert.Equal(t, constants.StageNormalization, ierr.Stage)
	assert.True(t, IsItemError(res.Errors[0]))
	assert.ErrorIs(t, res.Errors[0], common.ErrProvider)

	failedID := doc.Items[2].ID
	assert.Equal(t, failedID, ierr.ItemID)
	for _, it := range doc.Items {
		stored := f.store.items[it.ID]
		if it.ID == failedID {
			assert.Equal(t, constants.ItemError, stored.Status)
			require.NotNil(t, stored.ErrorMessage)
			assert.Contains(t, *stored.ErrorMessage, "model timeout")
			assert.Empty(t, f.store.suggestions[it.ID])
			continue
		}
		assert.Equal(t, constants.ItemSuggested, stored.Status, it.ItemNumber)
		require.Len(t, f.store.suggestions[it.ID], 1)
		require.NotNil(t, f.store.specs[it.ID])
	}

	errLogs := f.store.itemLogs(constants.LogError)
	require.Len(t, errLogs, 1)
	assert.Equal(t, failedID, *errLogs[0].ItemID)
	assert.Equal(t, constants.StageNormalization, errLogs[0].Stage)

	// document order is preserved
	assert.Equal(t, []string{
		"Câmera bullet IP 4MP", "Câmera dome IP 2MP", "Câmera PTZ 30x", "NVR 32 canais", "Switch PoE 24 portas",
	}, f.normalizer.seen)

	stored, err := f.store.GetDocument(context.Background(), doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentProcessed, stored.Status)

	final := events[len(events)-1]
	assert.Equal(t, constants.ProgressComplete, final.Stage)
	assert.Equal(t, 100, final.Percentage)
}

func TestProcessItems_AllFail(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})
	doc := seedDocument(t, f)
	for _, it := range doc.Items {
		f.normalizer.failOn[it.Description] = true
	}

	res, err := f.orch.ProcessItems(context.Background(), doc.DocumentID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentError, res.Status)
	assert.Equal(t, 5, res.Failed)
	assert.Len(t, f.store.itemLogs(constants.LogError), 5)
}

func TestProcessItems_Subset(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})
	doc := seedDocument(t, f)

	res, err := f.orch.ProcessItems(context.Background(), doc.DocumentID, []uuid.UUID{doc.Items[4].ID, doc.Items[1].ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"Câmera dome IP 2MP", "Switch PoE 24 portas"}, f.normalizer.seen)
	assert.Equal(t, constants.ItemPending, f.store.items[doc.Items[0].ID].Status)
}

func TestProcessItems_UnknownDocument(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})

	_, err := f.orch.ProcessItems(context.Background(), uuid.New(), nil, nil)
	require.ErrorIs(t, err, errNotFound)
}

func TestProcessItems_CancelledBetweenItems(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})
	doc := seedDocument(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.orch.limiter = &cancelAfter{n: 2, cancel: cancel}

	res, err := f.orch.ProcessItems(ctx, doc.DocumentID, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, constants.DocumentProcessed, res.Status)
	assert.Equal(t, constants.ItemPending, f.store.items[doc.Items[2].ID].Status)
}

func TestConfirmSuggestion(t *testing.T) {
	f := newFixture(t, ataText, &fakeModel{doc: fiveItemDoc()})
	doc := seedDocument(t, f)
	_, err := f.orch.ProcessItems(context.Background(), doc.DocumentID, nil, nil)
	require.NoError(t, err)

	itemID := doc.Items[0].ID
	eqID := f.store.suggestions[itemID][0].EquipmentID
	require.NoError(t, f.orch.ConfirmSuggestion(context.Background(), itemID, eqID))
	assert.True(t, f.store.suggestions[itemID][0].ConfirmedByUser)

	require.Error(t, f.orch.ConfirmSuggestion(context.Background(), itemID, uuid.New()))
}

func TestFixedDelayLimiter(t *testing.T) {
	assert.IsType(t, NoDelay{}, NewFixedDelay(0))
	l := NewFixedDelay(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NoDelay{}.Wait(ctx))
}

func TestSpan(t *testing.T) {
	assert.Equal(t, 75, span(75, 95, 0, 4))
	assert.Equal(t, 85, span(75, 95, 2, 4))
	assert.Equal(t, 95, span(75, 95, 4, 4))
	assert.Equal(t, 95, span(75, 95, 0, 0))
}
