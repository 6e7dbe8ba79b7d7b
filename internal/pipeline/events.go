package pipeline

import (
	"github.com/joseph-ayodele/procurement-tracker/constants"
)

// Event is one progress update of a streamed run.
type Event struct {
	Stage      constants.ProgressStage `json:"stage"`
	Message    string                  `json:"message"`
	Percentage int                     `json:"percentage"`
	Status     constants.EventStatus   `json:"status"`
	Data       any                     `json:"data,omitempty"`
}

// EventSink receives events in order. A nil sink discards them.
type EventSink func(Event)

// progress keeps percentages monotonically non-decreasing within [0,100].
type progress struct {
	sink EventSink
	last int
}

func newProgress(sink EventSink) *progress {
	return &progress{sink: sink}
}

func (p *progress) emit(stage constants.ProgressStage, msg string, pct int, status constants.EventStatus, data any) {
	if pct < p.last {
		pct = p.last
	}
	if pct > 100 {
		pct = 100
	}
	p.last = pct
	if p.sink != nil {
		p.sink(Event{Stage: stage, Message: msg, Percentage: pct, Status: status, Data: data})
	}
}

// fail emits a terminal error event at the current percentage.
func (p *progress) fail(stage constants.ProgressStage, err error) {
	p.emit(stage, err.Error(), p.last, constants.EventError, nil)
}

// span maps step i of n onto the percentage range [from,to].
func span(from, to, i, n int) int {
	if n <= 0 {
		return to
	}
	return from + (to-from)*i/n
}
