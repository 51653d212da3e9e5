package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-api/models"
	"library-api/service"
	"library-api/store"
)

type AuthorsHandler struct {
	Authors *service.AuthorService
}

func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.AuthorFilter{
		Search:      r.URL.Query().Get("search"),
		Nationality: r.URL.Query().Get("nationality"),
	}
	authors, err := h.Authors.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authors)
}

func (h *AuthorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid author id"}`, http.StatusBadRequest)
		return
	}
	author, err := h.Authors.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *AuthorsHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	author, err := h.Authors.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var author models.Author
	if err := json.NewDecoder(r.Body).Decode(&author); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	created, err := h.Authors.Create(r.Context(), &author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AuthorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid author id"}`, http.StatusBadRequest)
		return
	}
	var author models.Author
	if err := json.NewDecoder(r.Body).Decode(&author); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	updated, err := h.Authors.Update(r.Context(), id, &author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AuthorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid author id"}`, http.StatusBadRequest)
		return
	}
	if err := h.Authors.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
