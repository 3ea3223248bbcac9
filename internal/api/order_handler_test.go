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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

type orderHandlerFixture struct {
	jobs    *store.MemoryJobStore
	orders  *store.MemoryOrderStore
	emitter *events.InMemoryEventEmitter
	router  http.Handler
}

func newOrderFixture(t *testing.T, capacities map[string]int) *orderHandlerFixture {
	t.Helper()

	logger := testLogger()
	jobs := store.NewMemoryJobStore()
	orders := store.NewMemoryOrderStore()
	emitter := events.NewInMemoryEventEmitter(logger)
	svc := service.NewOrderService(orders, capacities, logger)

	h := NewOrderHandler(jobs, svc, emitter, logger)
	r := chi.NewRouter()
	r.Post("/api/events/{event}/orders", h.PlaceOrder)

	return &orderHandlerFixture{
		jobs:    jobs,
		orders:  orders,
		emitter: emitter,
		router:  r,
	}
}

func orderBody(t *testing.T, email string, positions ...OrderPositionRequest) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(OrderRequest{Email: email, Positions: positions})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestPlaceOrderFreeInlineAsync(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Free Pass", Price: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders?ajax=1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RedirectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Redirect, "/demo/order/")

	// Free orders never touch the job store.
	pending, err := f.jobs.GetPendingJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	n, err := f.orders.CountByEvent(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPlaceOrderFreeInlineRedirect(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Free Pass", Price: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/demo/order/")
}

func TestPlaceOrderPaidQueued(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Ticket", Price: 2500})
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders?ajax=1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/api/tasks/"+resp.AsyncID.String()+"/status", resp.CheckURL)

	job, err := f.jobs.GetJob(context.Background(), resp.AsyncID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, "order_placement", job.Type)

	var order domain.Order
	require.NoError(t, job.UnmarshalPayload(&order))
	assert.Equal(t, "demo", order.Event)
	assert.Equal(t, int64(2500), order.Total())
}

func TestPlaceOrderPaidNonAsyncRedirectsToStatus(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Ticket", Price: 2500})
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/status")
}

func TestPlaceOrderFormEncoded(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	form := url.Values{}
	form.Set("email", "buyer@example.com")
	form.Add("item", "Standard Ticket")
	form.Add("price", "2500")
	form.Add("item", "Backstage Upgrade")
	form.Add("price", "7500")
	form.Set("ajax", "1")

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job, err := f.jobs.GetJob(context.Background(), resp.AsyncID)
	require.NoError(t, err)

	var order domain.Order
	require.NoError(t, job.UnmarshalPayload(&order))
	assert.Equal(t, "buyer@example.com", order.Email)
	require.Len(t, order.Positions, 2)
	assert.Equal(t, int64(10000), order.Total())
}

func TestPlaceOrderFormEncodedBadPrice(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	form := url.Values{}
	form.Set("email", "buyer@example.com")
	form.Add("item", "Ticket")
	form.Add("price", "not-a-number")

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders?ajax=1",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderXMLHttpRequestHeader(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Ticket", Price: 100})
	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CheckURL)
}

func TestPlaceOrderFreeUnknownEvent(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	body := orderBody(t, "buyer@example.com", OrderPositionRequest{Item: "Free Pass", Price: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/events/nope/orders?ajax=1", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Unknown event", resp.Error)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders?ajax=1",
		bytes.NewBufferString(`{"email":"not-an-email","positions":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderMalformedBody(t *testing.T) {
	f := newOrderFixture(t, map[string]int{"demo": 10})

	req := httptest.NewRequest(http.MethodPost, "/api/events/demo/orders?ajax=1",
		bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
