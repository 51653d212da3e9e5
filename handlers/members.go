package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-api/models"
	"library-api/service"
	"library-api/store"
)

type MembersHandler struct {
	Members *service.MemberService
}

func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.MemberFilter{
		Search: r.URL.Query().Get("search"),
		Status: models.MembershipStatus(r.URL.Query().Get("status")),
	}
	members, err := h.Members.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	member, err := h.Members.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	member, err := h.Members.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	created, err := h.Members.Create(r.Context(), &member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	updated, err := h.Members.Update(r.Context(), id, &member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	if err := h.Members.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MembersHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.Members.Suspend)
}

func (h *MembersHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.Members.Activate)
}

func (h *MembersHandler) setStatus(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*models.Member, error)) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	member, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MembersHandler) CanBorrow(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	eligible, err := h.Members.CanBorrow(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"canBorrow": eligible})
}

func (h *MembersHandler) BorrowCount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	count, err := h.Members.CountActiveBorrows(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"activeBorrows": count})
}
