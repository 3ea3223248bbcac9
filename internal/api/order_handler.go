package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/domain"
	"github.com/boxofficehq/boxoffice-api/internal/events"
	"github.com/boxofficehq/boxoffice-api/internal/service"
	"github.com/boxofficehq/boxoffice-api/internal/store"
	"github.com/boxofficehq/boxoffice-api/internal/task"
)

// checkURL returns the status poll URL for a queued job.
func checkURL(jobID uuid.UUID) string {
	return fmt.Sprintf("/api/tasks/%s/status", jobID)
}

// OrderHandler handles order placement requests. Free orders are
// confirmed synchronously; paid orders are persisted as pending jobs
// and handed to the task runner through the event emitter.
type OrderHandler struct {
	jobs    store.JobStore
	orders  service.OrderService
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(
	jobs store.JobStore,
	orders service.OrderService,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *OrderHandler {
	if jobs == nil {
		panic("jobs store cannot be nil")
	}
	if orders == nil {
		panic("order service cannot be nil")
	}
	if emitter == nil {
		panic("event emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &OrderHandler{
		jobs:    jobs,
		orders:  orders,
		emitter: emitter,
		logger:  logger.With("component", "order_handler"),
	}
}

// PlaceOrder handles POST /api/events/{event}/orders requests.
//
// Asynchronous clients (ajax marker or XMLHttpRequest header) receive
// JSON: either a redirect for orders that completed inline, or a task
// handle to poll. Plain clients receive a 303 redirect instead.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")
	if event == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown event")
		return
	}

	req, err := decodeOrderRequest(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, ValidationErrorMessage(err))
		return
	}

	positions := make([]domain.OrderPosition, len(req.Positions))
	for i, pos := range req.Positions {
		positions[i] = domain.OrderPosition{Item: pos.Item, Price: pos.Price}
	}

	order, err := domain.NewOrder(event, req.Email, positions)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid order data")
		return
	}

	// Free orders need no payment step, confirm them inline and answer
	// with the final redirect.
	if order.Total() == 0 {
		if err := h.orders.ConfirmOrder(r.Context(), order); err != nil {
			status := MapErrorToStatusCode(err)
			shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
			return
		}

		h.logger.Info("free order confirmed inline",
			"event", event,
			"order_code", order.Code)

		h.respondRedirect(w, r, order.URL())
		return
	}

	job, err := domain.NewJob(task.TaskTypeOrderPlacement, order)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to queue order", err)
		return
	}

	if err := h.jobs.SaveJob(r.Context(), job); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to queue order", err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), events.NewJobRequestEvent(job.ID, job.Type)); err != nil {
		// The job is persisted; recovery will pick it up even if the
		// in-process hand-off failed.
		h.logger.Error("failed to emit job request event",
			"job_id", job.ID,
			"error", err)
	}

	h.logger.Info("order queued",
		"event", event,
		"job_id", job.ID,
		"total", order.Total())

	h.respondQueued(w, r, job.ID)
}

// decodeOrderRequest reads an order from either a JSON body or a
// submitted form. Forms carry "email" plus paired repeated "item" and
// "price" fields, prices in minor currency units.
func decodeOrderRequest(r *http.Request) (*OrderRequest, error) {
	if shared.IsFormEncoded(r) {
		return parseOrderForm(r)
	}

	var req OrderRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func parseOrderForm(r *http.Request) (*OrderRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	items := r.PostForm["item"]
	prices := r.PostForm["price"]
	if len(items) != len(prices) {
		return nil, errors.New("item and price fields must pair up")
	}

	req := &OrderRequest{Email: r.PostForm.Get("email")}
	for i, item := range items {
		price, err := strconv.ParseInt(prices[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", prices[i], err)
		}
		req.Positions = append(req.Positions, OrderPositionRequest{Item: item, Price: price})
	}
	return req, nil
}

// respondRedirect answers a completed submission: JSON for async
// clients, 303 See Other for everyone else.
func (h *OrderHandler) respondRedirect(w http.ResponseWriter, r *http.Request, target string) {
	if shared.WantsAsync(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, RedirectResponse{Redirect: target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// respondQueued answers a queued submission with the task handle, or
// redirects plain clients to the status page.
func (h *OrderHandler) respondQueued(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	url := checkURL(jobID)
	if shared.WantsAsync(r) {
		shared.RespondWithJSON(w, r, http.StatusOK, AsyncAcceptedResponse{
			AsyncID:  jobID,
			CheckURL: url,
		})
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
