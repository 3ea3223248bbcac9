package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/boxofficehq/boxoffice-api/internal/api/shared"
	"github.com/boxofficehq/boxoffice-api/internal/redact"
	"github.com/boxofficehq/boxoffice-api/internal/service/auth"
	"github.com/boxofficehq/boxoffice-api/internal/store"
)

// AuthHandler handles device authentication requests.
type AuthHandler struct {
	devices     store.DeviceStore
	jwtService  auth.JWTService
	keyVerifier auth.KeyVerifier
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
// Panics if any dependency is nil, since that is a programming error.
func NewAuthHandler(
	devices store.DeviceStore,
	jwtService auth.JWTService,
	keyVerifier auth.KeyVerifier,
	logger *slog.Logger,
) *AuthHandler {
	if devices == nil {
		panic("devices store cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if keyVerifier == nil {
		panic("keyVerifier cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &AuthHandler{
		devices:     devices,
		jwtService:  jwtService,
		keyVerifier: keyVerifier,
		logger:      logger.With("component", "auth_handler"),
	}
}

// DeviceLogin handles POST /api/auth/device/login requests. A device
// presents its ID and key and receives a bearer token for the task and
// export endpoints.
func (h *AuthHandler) DeviceLogin(w http.ResponseWriter, r *http.Request) {
	var req DeviceLoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, ValidationErrorMessage(err))
		return
	}

	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid device ID")
		return
	}

	device, err := h.devices.GetDevice(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, store.ErrDeviceNotFound) {
			// Same answer as a wrong key so device IDs cannot be probed.
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid device credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate device", err)
		return
	}

	if err := h.keyVerifier.Compare(device.KeyHash, req.DeviceKey); err != nil {
		h.logger.Warn("device login rejected",
			"device_id", deviceID,
			"error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid device credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), device.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate token", err)
		return
	}

	h.logger.Info("device logged in", "device_id", device.ID, "device_name", device.Name)

	shared.RespondWithJSON(w, r, http.StatusOK, DeviceLoginResponse{
		DeviceID: device.ID,
		Token:    token,
	})
}
