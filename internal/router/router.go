// Package router sets up the HTTP routes and middleware chains for the
// catalog server. Read-only JSON and page routes are public; every mutating
// form route runs behind the login gate.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"curio/internal/handlers"
	"curio/internal/middleware"
	"curio/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. uploadsDir may be empty when uploads are
// served from object storage instead of the local disk.
func New(sessionStore *session.Store, public *handlers.Public, catalog *handlers.Catalog, auth *handlers.Auth, uploadsDir string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check.
	r.Get("/health", healthHandler)

	// Federated login endpoints.
	r.Post("/gconnect", auth.GConnect)
	r.Get("/gdisconnect", auth.GDisconnect)

	// Public pages and JSON projections.
	r.Get("/", public.Root)
	r.Get("/catalog", public.CatalogPage)
	r.Get("/catalog/JSON", public.CatalogJSON)
	r.Get("/catalog/{categorySlug}/items", public.CategoryPage)
	r.Get("/catalog/{categorySlug}/items/JSON", public.CategoryItemsJSON)
	r.Get("/catalog/{categorySlug}/items/{itemSlug}", public.ItemPage)
	r.Get("/catalog/{categorySlug}/items/{itemSlug}/JSON", public.ItemJSON)

	// Uploaded item images.
	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/",
			http.FileServer(http.Dir(uploadsDir))))
	}

	// Mutating routes — require a logged-in session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)

		r.Post("/catalog/category/new", catalog.CategoryCreate)
		r.Post("/catalog/{categorySlug}/edit", catalog.CategoryEdit)
		r.Post("/catalog/{categorySlug}/delete", catalog.CategoryDelete)

		r.Post("/catalog/item/new", catalog.ItemCreate)
		r.Post("/catalog/{categorySlug}/items/{itemSlug}/edit", catalog.ItemEdit)
		r.Post("/catalog/{categorySlug}/items/{itemSlug}/delete", catalog.ItemDelete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
