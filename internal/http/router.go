package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/cashbook/internal/http/account"
	"github.com/MrJamesThe3rd/cashbook/internal/http/auth"
	"github.com/MrJamesThe3rd/cashbook/internal/http/category"
	"github.com/MrJamesThe3rd/cashbook/internal/http/entry"
	"github.com/MrJamesThe3rd/cashbook/internal/http/export"
	"github.com/MrJamesThe3rd/cashbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cashbook/internal/http/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/http/maintenance"
)

type Handlers struct {
	Entries     *entry.Handler
	Accounts    *account.Handler
	Categories  *category.Handler
	Maintenance *maintenance.Handler
	Import      *importcsv.Handler
	Learning    *learning.Handler
	Export      *export.Handler
}

type Options struct {
	AllowedOrigins []string
	// JWTSecret enables bearer-token auth on the API when non-empty.
	JWTSecret string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Entries.Routes(r)
		})

		r.Route("/accounts", h.Accounts.Routes)
		r.Route("/groups", h.Accounts.GroupRoutes)
		r.Route("/categories", h.Categories.Routes)
		r.Route("/maintenance", h.Maintenance.Routes)

		r.Route("/import", h.Import.Routes)

		r.Route("/learning", func(r chi.Router) {
			h.Learning.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
