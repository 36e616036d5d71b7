package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/summarizer-api/internal/api/shared"
	"github.com/phrazzld/summarizer-api/internal/summary"
	"github.com/phrazzld/summarizer-api/internal/task"
)

// SummaryService is the part of summary.Service the handlers need.
type SummaryService interface {
	Summarize(ctx context.Context, req summary.Request) (*summary.Outcome, error)
	SummarizeBatch(ctx context.Context, batch summary.BatchRequest) ([]summary.BatchItem, error)
	TaskStatus(id string) summary.StatusView
}

// BatchResponse is returned by the batch endpoint.
type BatchResponse struct {
	Items     []summary.BatchItem `json:"items"`
	Submitted int                 `json:"submitted"`
	Failed    int                 `json:"failed"`
}

// SummaryHandler handles summarization HTTP requests
type SummaryHandler struct {
	service SummaryService
	logger  *slog.Logger
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(service SummaryService, logger *slog.Logger) *SummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryHandler{
		service: service,
		logger:  logger.With("component", "summary_handler"),
	}
}

// StatusPath returns the polling path for a task.
func StatusPath(taskID string) string {
	return "/api/summarize/status/" + taskID
}

// Summarize handles POST /api/summarize. It answers 200 with the summary
// when it was produced synchronously, or 202 with a task handle to poll.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summary.Request
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	outcome, err := h.service.Summarize(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if outcome.Handle != nil {
		w.Header().Set("Location", StatusPath(outcome.Handle.TaskID))
		shared.RespondWithJSON(w, r, http.StatusAccepted, outcome.Handle)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcome.Result)
}

// Status handles GET /api/summarize/status/{id}.
func (h *SummaryHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %q", ErrInvalidTaskID, id), "Invalid task id")
		return
	}

	view := h.service.TaskStatus(id)
	if view.Status == string(task.StateUnknown) {
		shared.RespondWithJSON(w, r, http.StatusNotFound, view)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Batch handles POST /api/summarize/batch. Items are queued independently;
// per-item failures are reported in the body of a 202 response.
func (h *SummaryHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req summary.BatchRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.service.SummarizeBatch(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := BatchResponse{Items: items}
	for _, item := range items {
		if item.Handle != nil {
			resp.Submitted++
		} else {
			resp.Failed++
		}
	}

	h.logger.InfoContext(r.Context(), "batch request handled",
		"submitted", resp.Submitted,
		"failed", resp.Failed,
		"trace_id", shared.GetTraceID(r.Context()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, resp)
}
