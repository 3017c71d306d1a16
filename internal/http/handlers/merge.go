package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/merge"
)

// MergeRun concatenates the feature's completed, merge-selected jobs into
// one output artifact and returns its storage key.
func (a *App) MergeRun(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}

	var clips []merge.Clip
	for _, job := range f.Scheduler.Jobs() {
		if job.Status != domain.JobStatusCompleted || !job.SelectedForMerge {
			continue
		}
		clip := merge.Clip{JobID: job.ID, Handle: job.ResultHandle, AspectRatio: job.AspectRatio}
		if result, ok := f.Scheduler.Result(job.ID); ok && len(result.Data) > 0 {
			clip.Data = result.Data
		}
		clips = append(clips, clip)
	}

	engine := merge.NewEngine(a.NewEncoder(), a.Fetcher, a.Logger)
	out, err := engine.Merge(r.Context(), clips)
	if err != nil {
		a.domainError(w, err)
		return
	}

	key := fmt.Sprintf("outputs/%s/merged-%s.mp4", f.ID, uuid.New().String())
	savedKey, err := a.Store.Write(r.Context(), key, out)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist merge output")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"output_key": savedKey, "bytes": len(out), "clips": len(clips)})
}

// OutputDownload streams a stored artifact back to the caller.
func (a *App) OutputDownload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := a.Store.Read(r.Context(), "outputs/"+key)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown output")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", "attachment")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
