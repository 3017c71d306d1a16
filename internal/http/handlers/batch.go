package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/compose"
	"studio/internal/safety"
)

const maxUploadBytes = 32 << 20

type entryResponse struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	SourceName string `json:"source_name"`
	HasPrimary bool   `json:"has_primary"`
	HasEnd     bool   `json:"has_end_frame"`
}

// BatchUpload admits multipart image uploads through the safety gate and
// appends the survivors to the feature's composer.
func (a *App) BatchUpload(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	files := r.MultipartForm.File["assets"]
	if len(files) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no assets provided")
		return
	}

	uploads := make([]safety.Upload, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable asset "+fh.Filename)
			return
		}
		payload, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
		src.Close()
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable asset "+fh.Filename)
			return
		}
		uploads = append(uploads, safety.Upload{Name: fh.Filename, Payload: payload})
	}

	entries, rejected, err := f.Gate.Admit(r.Context(), uploads)
	if err != nil {
		a.domainError(w, err)
		return
	}
	f.Composer.Append(entries)

	a.json(w, http.StatusOK, map[string]any{
		"added":    len(entries),
		"rejected": rejected,
	})
}

func (a *App) BatchEntries(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	entries := f.Composer.Entries()
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = entryResponse{
			ID:         e.ID,
			Prompt:     e.Prompt,
			SourceName: e.SourceName,
			HasPrimary: len(e.PrimaryAsset) > 0,
			HasEnd:     len(e.SecondaryAsset) > 0,
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"mode":    f.Composer.Mode(),
		"entries": out,
	})
}

func (a *App) BatchMove(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Index     int    `json:"index"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	dir := compose.DirectionDown
	if req.Direction == "up" {
		dir = compose.DirectionUp
	}
	f.Composer.Move(req.Index, dir)
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchDuplicate(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := f.Composer.Duplicate(req.Index); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchRemoveEntry(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	if err := f.Composer.Remove(chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchSetPrompt(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := f.Composer.SetPrompt(chi.URLParam(r, "id"), req.Text); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchRewritePrompt(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if err := f.Composer.RewritePrompt(r.Context(), id); err != nil {
		a.domainError(w, err)
		return
	}
	for _, e := range f.Composer.Entries() {
		if e.ID == id {
			a.json(w, http.StatusOK, map[string]string{"prompt": e.Prompt})
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchSetBulkText(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	f.Composer.SetBulkText(req.Text)
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) BatchClear(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	f.Composer.Clear()
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
