package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/store"
	"github.com/boxofficehq/boxoffice-api/internal/task"
)

// exportJobPayload mirrors the payload shape the export task expects.
type exportJobPayload struct {
	Event    string `json:"event"`
	ListName string `json:"list_name,omitempty"`
}

// ExportHandler handles check-in list export requests. Exports always
// run in the background since rendering scales with order volume.
type ExportHandler struct {
	jobs    store.JobStore
	exports service.ExportService
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(
	jobs store.JobStore,
	exports service.ExportService,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *ExportHandler {
	if jobs == nil {
		panic("jobs store cannot be nil")
	}
	if exports == nil {
		panic("export service cannot be nil")
	}
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &ExportHandler{
		jobs:    jobs,
		exports: exports,
		emitter: emitter,
		logger:  logger.With("component", "export_handler"),
	}
}

// CreateExport handles POST /api/events/{event}/checkinlists/export
// requests. The body is optional; an empty body exports the default
// check-in list.
func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")
	if event == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown event")
		return
	}

	var req ExportRequest
	if shared.IsFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		req.ListName = r.PostForm.Get("list_name")
	} else if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	job, err := domain.NewJob(task.TaskTypeCheckinExport, exportJobPayload{
		Event:    event,
		ListName: req.ListName,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to queue export", err)
		return
	}

	if err := h.jobs.SaveJob(r.Context(), job); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to queue export", err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), events.NewJobRequestEvent(job.ID, job.Type)); err != nil {
		h.logger.Error("failed to emit job request event",
			"job_id", job.ID,
			"error", err)
	}

	h.logger.Info("export queued",
		"event", event,
		"list_name", req.ListName,
		"job_id", job.ID)

	url := checkURL(job.ID)
	if shared.WantsAsync(r) {
		shared.RespondWithJSON(w, r, http.StatusAccepted, AsyncAcceptedResponse{
			AsyncID:  job.ID,
			CheckURL: url,
		})
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Download handles GET /download/{id} requests for generated exports.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Export not found")
		return
	}

	export, err := h.exports.GetExport(r.Context(), id)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	if _, err := w.Write(export.Data); err != nil {
		h.logger.Error("failed to write export body", "export_id", id, "error", err)
	}
}
