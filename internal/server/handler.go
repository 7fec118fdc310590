package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/valpere/frank/internal/chat"
	"github.com/valpere/frank/internal/logger"
	"github.com/valpere/frank/internal/refine"
)

// Defaults fill in request fields the caller left out.
type Defaults struct {
	Model string
	Steps string
}

// Handler serves the refinement API.
type Handler struct {
	engine   *refine.Engine
	lister   chat.ModelLister
	checker  chat.Checker
	defaults Defaults
	logger   *slog.Logger
}

// healthTimeout bounds the backend check behind /healthz.
const healthTimeout = 5 * time.Second

// NewHandler builds a Handler. Model listing is enabled when client also
// implements chat.ModelLister, and /healthz checks the backend when it
// implements chat.Checker.
func NewHandler(engine *refine.Engine, client chat.Client, defaults Defaults, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if defaults.Model == "" {
		defaults.Model = refine.DefaultModel
	}
	h := &Handler{
		engine:   engine,
		defaults: defaults,
		logger:   l,
	}
	if ml, ok := client.(chat.ModelLister); ok {
		h.lister = ml
	}
	if ck, ok := client.(chat.Checker); ok {
		h.checker = ck
	}
	return h
}

// Health reports 200 while the backend answers, 503 otherwise.
func (h *Handler) Health(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.checker.IsAvailable(ctx); err != nil {
		h.logger.WarnContext(ctx, "backend unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Steps accepts an iteration count sent either as a JSON string or number.
type Steps string

func (s *Steps) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = Steps(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("steps must be a string or a number")
	}
	*s = Steps(n.String())
	return nil
}

type RefineRequest struct {
	Prompt string `json:"prompt"`
	Steps  *Steps `json:"steps"`
	Model  string `json:"model"`
}

type RefineResponse struct {
	ID string `json:"id"`
	*refine.Result
}

type ErrorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type progressPayload struct {
	Percent int `json:"percent"`
}

type historyPayload struct {
	Steps []string `json:"steps"`
}

func (h *Handler) Models(c *gin.Context) {
	if h.lister == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "provider does not support listing models"})
		return
	}

	models, err := h.lister.ListModels(c.Request.Context())
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "model listing failed", "error", err)
		c.JSON(statusFor(err), errorResponse("", err))
		return
	}
	if models == nil {
		models = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// Refine runs one refinement. The response is a single JSON document unless
// the caller asks for an event stream.
func (h *Handler) Refine(c *gin.Context) {
	var body RefineRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	prompt := refine.NormalizePrompt(body.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "prompt is required"})
		return
	}

	steps := h.defaults.Steps
	if body.Steps != nil {
		steps = string(*body.Steps)
	}
	model := strings.TrimSpace(body.Model)
	if model == "" {
		model = h.defaults.Model
	}

	ctx := c.Request.Context()
	id := logger.RunID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = logger.WithRunID(ctx, id)
	}
	ctx = logger.WithFields(ctx, logger.Fields{Model: model})

	req := refine.Request{
		Prompt:        prompt,
		MaxIterations: refine.ParseIterations(steps),
		Model:         model,
	}

	if wantsStream(c) {
		h.stream(ctx, c, id, req)
		return
	}

	res, err := h.engine.Run(ctx, req, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "refinement failed", "error", err)
		c.JSON(statusFor(err), errorResponse(id, err))
		return
	}
	c.JSON(http.StatusOK, RefineResponse{ID: id, Result: res})
}

func (h *Handler) stream(ctx context.Context, c *gin.Context, id string, req refine.Request) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{ID: id, Error: "streaming not supported"})
		return
	}

	// A run can outlast server.write_timeout; the stream itself has no deadline.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.DebugContext(ctx, "cannot clear write deadline", "error", err)
	}

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)

	sseWrite(c.Writer, "start", gin.H{"id": id})
	flusher.Flush()

	task := h.engine.Start(ctx, req)
	for ev := range task.Events() {
		switch ev.Kind {
		case refine.EventProgress:
			sseWrite(c.Writer, "progress", progressPayload{Percent: ev.Percent})
		case refine.EventHistory:
			sseWrite(c.Writer, "history", historyPayload{Steps: ev.History})
		}
		flusher.Flush()
	}

	res, err := task.Wait()
	if err != nil {
		h.logger.WarnContext(ctx, "refinement failed", "error", err)
		sseWrite(c.Writer, "error", errorResponse(id, err))
	} else {
		sseWrite(c.Writer, "result", RefineResponse{ID: id, Result: res})
	}
	flusher.Flush()
}

func wantsStream(c *gin.Context) bool {
	if c.Query("stream") == "true" || c.Query("stream") == "1" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, chat.ErrUnavailable), errors.Is(err, chat.ErrBadResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorResponse(id string, err error) ErrorResponse {
	resp := ErrorResponse{ID: id, Error: err.Error()}
	var se *chat.ServiceError
	if errors.As(err, &se) {
		resp.Kind = se.Kind.String()
	}
	return resp
}
