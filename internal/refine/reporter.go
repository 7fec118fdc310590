package refine

import (
	"context"
	"math"
)

// Reporter observes a run. Both methods are called synchronously on the
// run's goroutine after every completion call; they must not block for long
// and cannot influence the loop.
type Reporter interface {
	// OnProgress receives the completed share of the budget, 0..100.
	OnProgress(percent int)
	// OnHistoryUpdated receives a private copy of all drafts so far.
	OnHistoryUpdated(history []string)
}

// ReporterFuncs adapts plain functions to Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	Progress func(percent int)
	History  func(history []string)
}

func (f ReporterFuncs) OnProgress(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

func (f ReporterFuncs) OnHistoryUpdated(history []string) {
	if f.History != nil {
		f.History(history)
	}
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) OnProgress(int) {}

func (NopReporter) OnHistoryUpdated([]string) {}

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventHistory  EventKind = "history"
)

// Event is one notification delivered by ChannelReporter.
type Event struct {
	Kind    EventKind `json:"kind"`
	Percent int       `json:"percent,omitempty"`
	History []string  `json:"history,omitempty"`
}

// ChannelReporter forwards events to a channel. A send gives up once ctx is
// done, so a consumer that went away cannot wedge the run.
type ChannelReporter struct {
	ctx context.Context
	ch  chan<- Event
}

func NewChannelReporter(ctx context.Context, ch chan<- Event) *ChannelReporter {
	return &ChannelReporter{ctx: ctx, ch: ch}
}

func (r *ChannelReporter) OnProgress(percent int) {
	r.send(Event{Kind: EventProgress, Percent: percent})
}

func (r *ChannelReporter) OnHistoryUpdated(history []string) {
	r.send(Event{Kind: EventHistory, History: history})
}

func (r *ChannelReporter) send(ev Event) {
	select {
	case r.ch <- ev:
	case <-r.ctx.Done():
	}
}

// Progress returns step/maxIter as a rounded percentage clamped to 0..100.
func Progress(step, maxIter int) int {
	if maxIter < 1 {
		return 0
	}
	p := int(math.Round(float64(step) / float64(maxIter) * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Snapshot copies history so a receiver never observes later appends.
func Snapshot(history []string) []string {
	out := make([]string, len(history))
	copy(out, history)
	return out
}
