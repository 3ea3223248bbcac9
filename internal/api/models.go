package api

import (
	"github.com/google/uuid"
)

// Common request/response structures

// DeviceLoginRequest defines the payload for the device login endpoint.
type DeviceLoginRequest struct {
	DeviceID  string `json:"device_id"  validate:"required,uuid"`
	DeviceKey string `json:"device_key" validate:"required,min=8"`
}

// DeviceLoginResponse defines the successful response for the device
// login endpoint.
type DeviceLoginResponse struct {
	DeviceID uuid.UUID `json:"device_id"`
	Token    string    `json:"token"`
}

// OrderPositionRequest is a single purchased item in an order request.
type OrderPositionRequest struct {
	Item  string `json:"item"  validate:"required"`
	Price int64  `json:"price" validate:"min=0"`
}

// OrderRequest defines the payload for the order placement endpoint.
type OrderRequest struct {
	Email     string                 `json:"email"     validate:"required,email"`
	Positions []OrderPositionRequest `json:"positions" validate:"required,min=1,dive"`
}

// ExportRequest defines the payload for the check-in list export
// endpoint. ListName is optional and defaults to the standard list.
type ExportRequest struct {
	ListName string `json:"list_name"`
}

// AsyncAcceptedResponse is the task handle returned when a request was
// queued for background processing. Clients poll CheckURL until the
// task reports ready.
type AsyncAcceptedResponse struct {
	AsyncID  uuid.UUID `json:"async_id"`
	CheckURL string    `json:"check_url"`
}

// RedirectResponse tells an asynchronous client where to navigate after
// an operation completed without queueing.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

// StatusResponse is the poll answer for a running or completed task.
// Redirect is only present once Ready is true.
type StatusResponse struct {
	Ready    bool   `json:"ready"`
	Redirect string `json:"redirect,omitempty"`
}
