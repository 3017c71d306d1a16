package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"studio/internal/compose"
	"studio/internal/domain"
	"studio/internal/merge"
	"studio/internal/safety"
	"studio/internal/schedule"
	"studio/internal/script"
	"studio/internal/storage"
)

// Feature bundles the per-feature-area components. Each feature owns its own
// composer, gate, and scheduler; only the render permit is shared between
// them.
type Feature struct {
	ID        string
	Composer  *compose.Composer
	Gate      *safety.Gate
	Scheduler *schedule.Scheduler
	Importer  *script.Importer
}

// App is the handler container.
type App struct {
	Logger     zerolog.Logger
	Features   map[string]*Feature
	Store      *storage.FileStore
	Fetcher    merge.Fetcher
	NewEncoder func() merge.Encoder
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, key, message string) {
	a.json(w, code, map[string]string{"error": key, "message": message})
}

// domainError maps the core error taxonomy onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptySubmission):
		a.error(w, http.StatusBadRequest, "empty_submission", err.Error())
	case errors.Is(err, domain.ErrMissingPairs):
		a.error(w, http.StatusBadRequest, "missing_pairs", err.Error())
	case errors.Is(err, domain.ErrQuotaDenied):
		a.error(w, http.StatusForbidden, "quota_denied", err.Error())
	case errors.Is(err, domain.ErrCheckInProgress):
		a.error(w, http.StatusConflict, "check_in_progress", err.Error())
	case errors.Is(err, domain.ErrImportEmpty):
		a.error(w, http.StatusUnprocessableEntity, "import_empty", err.Error())
	case errors.Is(err, domain.ErrImportParse):
		a.error(w, http.StatusUnprocessableEntity, "import_parse", err.Error())
	case errors.Is(err, domain.ErrTooFewClips):
		a.error(w, http.StatusBadRequest, "too_few_clips", err.Error())
	case errors.Is(err, domain.ErrMergeFailed):
		a.error(w, http.StatusBadGateway, "merge_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (a *App) feature(w http.ResponseWriter, r *http.Request) *Feature {
	id := chi.URLParam(r, "feature")
	f, ok := a.Features[id]
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown feature area")
		return nil
	}
	return f
}
