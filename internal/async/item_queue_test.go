package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
)

type fakeRunner struct {
	mu      sync.Mutex
	ran     []uuid.UUID
	release chan struct{}
}

func (f *fakeRunner) ProcessItems(ctx context.Context, documentID uuid.UUID, _ []uuid.UUID, _ pipeline.EventSink) (*pipeline.BatchResult, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.ran = append(f.ran, documentID)
	f.mu.Unlock()
	return &pipeline.BatchResult{DocumentID: documentID, Status: constants.DocumentProcessed}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ran)
}

func TestItemQueue_RunsAndDrains(t *testing.T) {
	r := &fakeRunner{}
	q := NewItemQueue(r, nil, WithWorkers(2), WithQueueSize(8))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 5, r.count())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}), ErrQueueClosed)
}

func TestItemQueue_OneJobPerDocument(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	q := NewItemQueue(r, nil, WithWorkers(1), WithQueueSize(4))
	doc := uuid.New()

	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: doc}))
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{DocumentID: doc}), ErrAlreadyQueued)

	close(r.release)
	q.Shutdown(context.Background())
	assert.Equal(t, 1, r.count())

	// released after the run
	q.mu.Lock()
	assert.Empty(t, q.inflight)
	q.mu.Unlock()
}

func TestItemQueue_Full(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	q := NewItemQueue(r, nil, WithWorkers(1), WithQueueSize(1))

	// one job may be picked up by the worker, so fill until the buffer rejects
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	}
	assert.ErrorIs(t, err, ErrQueueFull)

	close(r.release)
	q.Shutdown(context.Background())
}

func TestItemQueue_ShutdownTimeoutCancelsJobs(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	q := NewItemQueue(r, nil, WithWorkers(1), WithQueueSize(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	q.Shutdown(ctx)
	assert.Zero(t, r.count(), "the blocked job saw cancellation instead of completing")
}
