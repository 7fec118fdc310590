package refine

import (
	"context"
	"fmt"
)

// Task is a run executing on its own goroutine. Events are delivered in order
// on Events; the channel is closed when the run ends, after which Wait
// returns immediately.
//
// The caller must drain Events or cancel ctx, otherwise the run blocks on
// its next notification.
type Task struct {
	events chan Event
	done   chan struct{}
	result *Result
	err    error
}

// Start launches Run in the background and returns its handle.
func (e *Engine) Start(ctx context.Context, req Request) *Task {
	t := &Task{
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer close(t.events)
		defer func() {
			if r := recover(); r != nil {
				t.result, t.err = nil, fmt.Errorf("refinement run panicked: %v", r)
			}
		}()
		t.result, t.err = e.Run(ctx, req, NewChannelReporter(ctx, t.events))
	}()

	return t
}

func (t *Task) Events() <-chan Event {
	return t.events
}

// Wait blocks until the run has finished and returns its outcome.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.err
}

// Done is closed when the run has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
