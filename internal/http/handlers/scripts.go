package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *App) ScriptsList(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	items, err := f.Importer.List(r.Context())
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list scripts")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"scripts": items})
}

func (a *App) ScriptImport(w http.ResponseWriter, r *http.Request) {
	f := a.feature(w, r)
	if f == nil {
		return
	}
	count, err := f.Importer.Import(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"imported": count, "mode": f.Composer.Mode()})
}
