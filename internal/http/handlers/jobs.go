package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/domain"
	"studio/internal/schedule"
)

type submitRequest struct {
	Kind        string `json:"kind"`
	AspectRatio string `json:"aspect_ratio"`
	Resolution  string `json:"resolution"`
}

// JobsSubmit converts the feature's staged batch (or its bulk text, for
// text-driven jobs) into queued jobs. Validation happens inside the
// scheduler; nothing is queued on failure.
func (a *App) JobsSubmit(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind := domain.JobKind(req.Kind)
	switch kind {
	case domain.JobKindText, domain.JobKindImage, domain.JobKindTransition, domain.JobKindCharSync:
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported kind")
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}
	if req.Resolution == "" {
		req.Resolution = "720p"
	}
	settings := schedule.Settings{Kind: kind, AspectRatio: req.AspectRatio, Resolution: req.Resolution}

	var ids []string
	var err error
	if kind == domain.JobKindText {
		ids, err = f.Scheduler.SubmitBulkText(r.Context(), f.Composer.BulkText(), settings)
	} else {
		ids, err = f.Scheduler.SubmitEntries(r.Context(), f.Composer.Entries(), settings)
	}
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{"job_ids": ids, "queued": len(ids)})
}

func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	a.json(w, http.StatusOK, map[string]any{"jobs": f.Scheduler.Jobs()})
}

func (a *App) JobRegenerate(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	if err := f.Scheduler.Regenerate(chi.URLParam(r, "id"), req.Prompt); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (a *App) JobDelete(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	if err := f.Scheduler.Remove(chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (a *App) JobSetMergeSelected(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Selected bool `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := f.Scheduler.SetMergeSelected(chi.URLParam(r, "id"), req.Selected); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
