package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/boxofficehq/boxoffice-api/internal/api"
	apiMiddleware "github.com/boxofficehq/boxoffice-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.deviceStore, app.jwtService, app.keyVerifier, app.logger)
	orderHandler := api.NewOrderHandler(app.jobStore, app.orderService, app.emitter, app.logger)
	exportHandler := api.NewExportHandler(app.jobStore, app.exportService, app.emitter, app.logger)
	statusHandler := api.NewStatusHandler(app.jobStore, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints used by the shop front end.
		r.Post("/auth/device/login", authHandler.DeviceLogin)
		r.Post("/events/{event}/orders", orderHandler.PlaceOrder)
		r.Get("/tasks/{id}/status", statusHandler.GetStatus)

		// Export endpoints require a logged-in device.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/events/{event}/checkinlists/export", exportHandler.CreateExport)
		})
	})

	r.Get("/download/{id}", exportHandler.Download)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
