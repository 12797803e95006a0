// Package http is the web GUI surface: two operation triggers, a health
// probe, the websocket console stream and the embedded console page.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"aolcli/internal/config"
	aolerrors "aolcli/internal/errors"
	"aolcli/internal/websocket"
)

// OperationRunner is the pipeline boundary the GUI invokes.
type OperationRunner interface {
	RunConsolidation(ctx context.Context) bool
	RunReportingFor(ctx context.Context, programs []string) bool
}

// Handler exposes the operation endpoints.
type Handler struct {
	runner   OperationRunner
	hub      *websocket.Hub
	wsConfig config.WebSocketConfig
	logger   *slog.Logger
	validate *validator.Validate

	// busy enforces the single-writer assumption: one operation at a time.
	busy atomic.Bool
}

// NewHandler builds the handler.
func NewHandler(runner OperationRunner, hub *websocket.Hub, wsConfig config.WebSocketConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner:   runner,
		hub:      hub,
		wsConfig: wsConfig,
		logger:   logger.With(slog.String("handler", "operations")),
		validate: validator.New(),
	}
}

// Router assembles the chi route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/", h.handleIndex)
	r.Get("/ws", h.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/operations/consolidate", h.handleConsolidate)
		r.Post("/operations/report", h.handleReport)
	})
	return r
}

// OperationResponse acknowledges an accepted operation.
type OperationResponse struct {
	RunID     string `json:"run_id"`
	Operation string `json:"operation"`
	Status    string `json:"status"`
}

// ReportRequest optionally narrows a reporting run.
type ReportRequest struct {
	Programs []string `json:"programs" validate:"omitempty,min=1,dive,required"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	h.startOperation(w, r, "consolidation", func(ctx context.Context) bool {
		return h.runner.RunConsolidation(ctx)
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		render.Render(w, r, aolerrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		render.Render(w, r, aolerrors.ValidationFailed(err))
		return
	}
	h.startOperation(w, r, "reporting", func(ctx context.Context) bool {
		return h.runner.RunReportingFor(ctx, req.Programs)
	})
}

// startOperation offloads the pipeline call to a background goroutine so the
// interactive surface stays responsive, mirroring progress over the hub.
func (h *Handler) startOperation(w http.ResponseWriter, r *http.Request, name string, run func(ctx context.Context) bool) {
	if !h.busy.CompareAndSwap(false, true) {
		render.Render(w, r, aolerrors.ErrOperationBusy)
		return
	}

	runID := uuid.New().String()
	h.logger.Info("operation accepted",
		slog.String("operation", name),
		slog.String("run_id", runID))

	go func() {
		defer h.busy.Store(false)

		h.hub.BroadcastEvent(websocket.Event{
			Type:      websocket.TypeOperation,
			Operation: name,
			RunID:     runID,
			Message:   "started",
		})

		// Detached from the request context: closing the browser tab must
		// not cancel a running pipeline.
		success := run(context.Background())

		status := "failed"
		if success {
			status = "succeeded"
		}
		h.hub.BroadcastEvent(websocket.Event{
			Type:      websocket.TypeOperation,
			Operation: name,
			RunID:     runID,
			Message:   status,
		})
		h.logger.Info("operation finished",
			slog.String("operation", name),
			slog.String("run_id", runID),
			slog.Bool("success", success))
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, OperationResponse{RunID: runID, Operation: name, Status: "started"})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := websocket.ServeWS(h.hub, h.wsConfig, w, r); err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
	}
}
