package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valpere/frank/internal/logger"
)

const (
	// historyPrealloc caps the initial history capacity. The budget comes
	// from the caller and has no upper bound.
	historyPrealloc = 16
	// previewLen bounds draft previews in debug records.
	previewLen = 80
)

// Run executes one refinement run.
//
// MaxIterations is the total number of completion calls, the seed included,
// so the history never grows beyond it. A value below 1 is replaced by
// DefaultIterations. The loop ends early when a response equals the draft it
// was asked to improve, ignoring surrounding whitespace.
//
// A failed completion call aborts the run: the error is returned (wrapping the
// backend's *chat.ServiceError) together with a nil Result, and the reporter
// receives no further events. When ctx is cancelled after the seed draft
// exists, Run stops and returns the drafts produced so far with StopCancelled
// and a nil error; cancelled before that, it returns ctx.Err().
func (e *Engine) Run(ctx context.Context, req Request, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}

	maxIter := req.MaxIterations
	if maxIter < 1 {
		maxIter = DefaultIterations
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	log := e.logger.With("model", model, "max_iterations", maxIter)
	history := make([]string, 0, min(maxIter, historyPrealloc))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	draft, err := e.client.Complete(ctx, model, req.Prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("initial draft: %w", err)
	}
	history = append(history, draft)
	emit(reporter, 1, maxIter, history)
	log.DebugContext(ctx, "seed draft ready", "step", 1, "chars", len(draft),
		"preview", logger.Truncate(draft, previewLen), "duration_ms", time.Since(start).Milliseconds())

	stop := StopBudgetExhausted
	for i := 1; i < maxIter; i++ {
		if ctx.Err() != nil {
			stop = StopCancelled
			break
		}

		start = time.Now()
		response, err := e.client.Complete(ctx, model, BuildInstruction(req.Prompt, draft))
		if err != nil {
			if ctx.Err() != nil {
				stop = StopCancelled
				break
			}
			return nil, fmt.Errorf("refinement step %d: %w", i+1, err)
		}
		history = append(history, response)
		emit(reporter, i+1, maxIter, history)
		log.DebugContext(ctx, "refined draft ready", "step", i+1, "chars", len(response),
			"preview", logger.Truncate(response, previewLen), "duration_ms", time.Since(start).Milliseconds())

		if Converged(draft, response) {
			stop = StopConverged
			break
		}
		draft = response
	}

	log.InfoContext(ctx, "refinement finished",
		slog.Int("iterations_used", len(history)),
		slog.String("stop_reason", string(stop)))

	return &Result{
		Final:          history[len(history)-1],
		History:        history,
		IterationsUsed: len(history),
		StopReason:     stop,
	}, nil
}

// Converged reports whether next is the same answer as prev, ignoring
// leading and trailing whitespace.
func Converged(prev, next string) bool {
	return strings.TrimSpace(prev) == strings.TrimSpace(next)
}

func emit(r Reporter, step, maxIter int, history []string) {
	r.OnProgress(Progress(step, maxIter))
	r.OnHistoryUpdated(Snapshot(history))
}
