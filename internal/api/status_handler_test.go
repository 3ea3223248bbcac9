package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// statusRouter mounts the status handler so chi URL params resolve.
func statusRouter(jobs store.JobStore) http.Handler {
	h := NewStatusHandler(jobs, testLogger())
	r := chi.NewRouter()
	r.Get("/api/tasks/{id}/status", h.GetStatus)
	return r
}

// saveJob persists a job in the given status for test setup.
func saveJob(
	t *testing.T,
	jobs store.JobStore,
	status domain.JobStatus,
	redirect, errMsg string,
) *domain.Job {
	t.Helper()

	job, err := domain.NewJob("order_placement", map[string]string{"k": "v"})
	require.NoError(t, err)
	job.Status = status
	job.RedirectURL = redirect
	job.ErrorMessage = errMsg
	require.NoError(t, jobs.SaveJob(context.Background(), job))
	return job
}

func TestGetStatusPending(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusPending, "", "")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
	assert.Empty(t, resp.Redirect)
}

func TestGetStatusProcessing(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusProcessing, "", "")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
}

func TestGetStatusCompleted(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusCompleted, "/demo/order/ABCDE/", "")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, "/demo/order/ABCDE/", resp.Redirect)
}

func TestGetStatusFailedJSON(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusFailed, "", "The event is sold out")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The event is sold out", resp.Error)
}

func TestGetStatusFailedHTMLFragment(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusFailed, "", "The event is sold out")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, `id="error-container"`)
	assert.Contains(t, body, "The event is sold out")
}

func TestGetStatusFailedFragmentWithCompositeAccept(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusFailed, "", "The event is sold out")

	// Polling clients accept both JSON and HTML; the fragment wins.
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	req.Header.Set("Accept", "application/json, text/html")
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `id="error-container"`)
	assert.Contains(t, rec.Body.String(), "The event is sold out")
}

func TestGetStatusFailedDefaultMessage(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusFailed, "", "")

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultTaskErrorMessage)
}

func TestGetStatusFailedEscapesMessage(t *testing.T) {
	jobs := store.NewMemoryJobStore()
	job := saveJob(t, jobs, domain.JobStatusFailed, "", `<script>alert(1)</script>`)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+job.ID.String()+"/status", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestGetStatusUnknownTask(t *testing.T) {
	jobs := store.NewMemoryJobStore()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString()+"/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatusInvalidID(t *testing.T) {
	jobs := store.NewMemoryJobStore()

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid/status", nil)
	rec := httptest.NewRecorder()
	statusRouter(jobs).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
