package api

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// DefaultTaskErrorMessage is shown when a failed job carries no message
// of its own.
const DefaultTaskErrorMessage = "We were unable to process your request. Please try again later."

// StatusHandler answers task status polls.
type StatusHandler struct {
	jobs   store.JobStore
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(jobs store.JobStore, logger *slog.Logger) *StatusHandler {
	if jobs == nil {
		panic("jobs store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &StatusHandler{
		jobs:   jobs,
		logger: logger.With("component", "status_handler"),
	}
}

// GetStatus handles GET /api/tasks/{id}/status requests.
//
// Running jobs answer {"ready": false}, completed jobs answer
// {"ready": true, "redirect": ...}. Failed jobs answer 400; when the
// client accepts HTML the body is an error fragment the shop front end
// can splice into the page, otherwise a JSON error.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown task")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Unknown task")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load task", err)
		return
	}

	switch job.Status {
	case domain.JobStatusCompleted:
		shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
			Ready:    true,
			Redirect: job.RedirectURL,
		})

	case domain.JobStatusFailed:
		message := job.ErrorMessage
		if message == "" {
			message = DefaultTaskErrorMessage
		}

		h.logger.Debug("reporting failed task", "job_id", job.ID)

		if shared.PrefersHTML(r) {
			writeErrorFragment(w, message)
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, message)

	default:
		shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Ready: false})
	}
}

// writeErrorFragment writes the HTML error fragment asynchronous shop
// pages extract by element ID and splice into the current page.
func writeErrorFragment(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w,
		`<div id="error-container"><div class="alert alert-danger">%s</div></div>`,
		html.EscapeString(message))
}
