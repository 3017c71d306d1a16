package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// NewRouter assembles the HTTP surface over the in-process core.
func NewRouter(app *handlers.App, logger zerolog.Logger, rateLimitPerMin int) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(logger))
	if rateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(rateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/features/{feature}", func(r chi.Router) {
		r.Route("/batch", func(r chi.Router) {
			r.Get("/entries", app.BatchEntries)
			r.Post("/assets", app.BatchUpload)
			r.Post("/move", app.BatchMove)
			r.Post("/duplicate", app.BatchDuplicate)
			r.Delete("/entries/{id}", app.BatchRemoveEntry)
			r.Put("/entries/{id}/prompt", app.BatchSetPrompt)
			r.Post("/entries/{id}/rewrite", app.BatchRewritePrompt)
			r.Put("/bulk-text", app.BatchSetBulkText)
			r.Delete("/", app.BatchClear)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", app.JobsList)
			r.Post("/", app.JobsSubmit)
			r.Post("/{id}/regenerate", app.JobRegenerate)
			r.Put("/{id}/merge-selected", app.JobSetMergeSelected)
			r.Delete("/{id}", app.JobDelete)
		})

		r.Post("/merge", app.MergeRun)

		r.Route("/scripts", func(r chi.Router) {
			r.Get("/", app.ScriptsList)
			r.Post("/{id}/import", app.ScriptImport)
		})
	})

	r.Get("/v1/outputs/*", app.OutputDownload)

	return r
}
