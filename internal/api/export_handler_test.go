package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

type exportHandlerFixture struct {
	jobs    *store.MemoryJobStore
	exports service.ExportService
	router  http.Handler
}

func newExportFixture(t *testing.T) *exportHandlerFixture {
	t.Helper()

	logger := testLogger()
	jobs := store.NewMemoryJobStore()
	orders := store.NewMemoryOrderStore()
	exports := service.NewExportService(orders, logger)
	emitter := events.NewInMemoryEventEmitter(logger)

	h := NewExportHandler(jobs, exports, emitter, logger)
	r := chi.NewRouter()
	r.Post("/api/events/{event}/checkinlists/export", h.CreateExport)
	r.Get("/download/{id}", h.Download)

	return &exportHandlerFixture{jobs: jobs, exports: exports, router: r}
}

func TestCreateExportQueued(t *testing.T) {
	f := newExportFixture(t)

	body := bytes.NewBufferString(`{"list_name":"vip"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/checkinlists/export?ajax=1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/api/tasks/"+resp.AsyncID.String()+"/status", resp.CheckURL)

	job, err := f.jobs.GetJob(context.Background(), resp.AsyncID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, "checkin_export", job.Type)

	var payload exportJobPayload
	require.NoError(t, job.UnmarshalPayload(&payload))
	assert.Equal(t, "demo", payload.Event)
	assert.Equal(t, "vip", payload.ListName)
}

func TestCreateExportEmptyBody(t *testing.T) {
	f := newExportFixture(t)

	req := httptest.NewRequest(http.MethodPost,
		"/api/events/demo/checkinlists/export?ajax=1", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job, err := f.jobs.GetJob(context.Background(), resp.AsyncID)
	require.NoError(t, err)

	var payload exportJobPayload
	require.NoError(t, job.UnmarshalPayload(&payload))
	assert.Empty(t, payload.ListName)
}

func TestCreateExportFormEncoded(t *testing.T) {
	f := newExportFixture(t)

	form := url.Values{}
	form.Set("list_name", "vip")
	form.Set("ajax", "1")

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/checkinlists/export",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job, err := f.jobs.GetJob(context.Background(), resp.AsyncID)
	require.NoError(t, err)

	var payload exportJobPayload
	require.NoError(t, job.UnmarshalPayload(&payload))
	assert.Equal(t, "vip", payload.ListName)
}

func TestCreateExportNonAsyncRedirects(t *testing.T) {
	f := newExportFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/checkinlists/export", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/status")
}

func TestDownloadExport(t *testing.T) {
	f := newExportFixture(t)

	url, err := f.exports.GenerateCheckinList(context.Background(), "demo", "checkin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "demo-checkin.csv")
	assert.Contains(t, rec.Body.String(), "order_code,email,item,price")
}

func TestDownloadUnknownExport(t *testing.T) {
	f := newExportFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/download/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
