package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueueClosed   = errors.New("queue is shutting down")
	ErrQueueFull     = errors.New("queue is full")
	ErrAlreadyQueued = errors.New("document already queued or running")
)

// Job asks for one document's item backlog to be normalized and matched.
type Job struct {
	DocumentID  uuid.UUID
	ItemIDs     []uuid.UUID // nil means every item
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
