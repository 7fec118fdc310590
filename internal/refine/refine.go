// Package refine implements iterative self-refinement: a model drafts an
// answer, then repeatedly critiques and improves its own previous draft until
// the text stops changing or the iteration budget runs out.
package refine

import (
	"context"
	"log/slog"

	"github.com/valpere/frank/internal/chat"
)

const (
	// DefaultIterations replaces a missing or malformed iteration count.
	DefaultIterations = 3
	// DefaultModel is used when a request names no model.
	DefaultModel = "llama3.1"
)

// Request is one refinement run's input. It is not modified by Run.
type Request struct {
	Prompt        string `json:"prompt"`
	MaxIterations int    `json:"max_iterations"`
	Model         string `json:"model"`
}

// StopReason tells why the loop ended.
type StopReason string

const (
	StopConverged       StopReason = "converged"
	StopBudgetExhausted StopReason = "budget_exhausted"
	StopCancelled       StopReason = "cancelled"
)

// Result is the outcome of a run. History holds every draft in the order it
// was produced, the seed first; Final is always its last element.
type Result struct {
	Final          string     `json:"final"`
	History        []string   `json:"history"`
	IterationsUsed int        `json:"iterations_used"`
	StopReason     StopReason `json:"stop_reason"`
}

// Engine drives the refinement loop over a chat.Client. An Engine holds no
// per-run state and may serve concurrent runs.
type Engine struct {
	client chat.Client
	logger *slog.Logger
}

type Option func(*Engine)

// WithLogger sets the logger used for per-step debug records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(client chat.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refine is a convenience wrapper around Run with a reporter built from two
// optional callbacks.
func (e *Engine) Refine(ctx context.Context, req Request, onProgress func(int), onHistory func([]string)) (*Result, error) {
	return e.Run(ctx, req, ReporterFuncs{Progress: onProgress, History: onHistory})
}
