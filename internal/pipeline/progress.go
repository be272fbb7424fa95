package pipeline

import (
	"sync"

	"go-card-grader/pkg/models"
)

// ProgressSink receives stage updates in execution order. A nil sink is
// valid and must not change pipeline behavior.
type ProgressSink func(step, detail string)

// Pipeline stage names, in execution order.
const (
	StepTextExtraction  = "Text Extraction"
	StepImageProcessing = "Image Processing"
	StepCentering       = "Centering"
	StepCorners         = "Corners"
	StepEdges           = "Edges"
	StepSurface         = "Surface"
	StepMarketResearch  = "Market Research"
)

// stageTracker is the single source of truth for step state. Steps are
// keyed by name and ordered by first emission; emitting an existing step
// updates it in place, so each step reaches at most one terminal
// completed state.
type stageTracker struct {
	mu    sync.Mutex
	order []string
	state map[string]*models.ProgressEvent
	sink  ProgressSink
}

func newStageTracker(sink ProgressSink) *stageTracker {
	return &stageTracker{
		state: make(map[string]*models.ProgressEvent),
		sink:  sink,
	}
}

// Update records the latest detail for a step and notifies the sink.
func (t *stageTracker) Update(step, detail string) {
	t.set(step, detail, false)
}

// Complete marks a step terminal with its final detail.
func (t *stageTracker) Complete(step, detail string) {
	t.set(step, detail, true)
}

func (t *stageTracker) set(step, detail string, completed bool) {
	t.mu.Lock()
	event, ok := t.state[step]
	if !ok {
		event = &models.ProgressEvent{Step: step}
		t.state[step] = event
		t.order = append(t.order, step)
	}
	event.Detail = detail
	if completed {
		event.Completed = true
	}
	sink := t.sink
	t.mu.Unlock()

	if sink != nil {
		sink(step, detail)
	}
}

// Events returns the step states in first-emission order.
func (t *stageTracker) Events() []models.ProgressEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	events := make([]models.ProgressEvent, 0, len(t.order))
	for _, step := range t.order {
		events = append(events, *t.state[step])
	}
	return events
}
