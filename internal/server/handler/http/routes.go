package http

import (
	"net/http"

	"github.com/mirteney/accountbot/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// account API. It applies JSON content-type enforcement and request
// logging, and mounts the status, generation, listing, and registration
// endpoints under /api.
//
// Routes:
//
//	GET  /api/status             → accountHandler.Status
//	POST /api/accounts/generate  → accountHandler.Generate
//	GET  /api/accounts           → accountHandler.List
//	POST /api/register           → registerHandler.Register
func NewRouter(
	accountHandler *AccountHandler,
	registerHandler *RegisterHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", accountHandler.Status)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/generate", accountHandler.Generate)
			r.Get("/", accountHandler.List)
		})

		r.Post("/register", registerHandler.Register)
	})

	return r
}
