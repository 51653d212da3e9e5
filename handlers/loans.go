package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"library-api/models"
	"library-api/service"
	"library-api/store"
)

type LoansHandler struct {
	Loans *service.LoanService
}

func (h *LoansHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.LoanFilter{
		Status: models.LoanStatus(q.Get("status")),
	}
	if v := q.Get("memberId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid memberId"}`, http.StatusBadRequest)
			return
		}
		filter.MemberID = id
	}
	if v := q.Get("bookId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"invalid bookId"}`, http.StatusBadRequest)
			return
		}
		filter.BookID = id
	}
	if v := q.Get("from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			http.Error(w, `{"error":"invalid from date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		filter.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			http.Error(w, `{"error":"invalid to date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		filter.To = d
	}
	loans, err := h.Loans.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid loan id"}`, http.StatusBadRequest)
		return
	}
	loan, err := h.Loans.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoansHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req service.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	loan, err := h.Loans.Borrow(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid loan id"}`, http.StatusBadRequest)
		return
	}
	var body struct {
		ReturnDate *models.Date `json:"returnDate"`
	}
	// an empty body means "return today"; chunked requests carry no
	// Content-Length, so decode and treat EOF as absence
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	loan, err := h.Loans.Return(r.Context(), id, body.ReturnDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoansHandler) MarkLost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid loan id"}`, http.StatusBadRequest)
		return
	}
	loan, err := h.Loans.MarkLost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// MarkOverdue sweeps due loans and reports how many were transitioned.
func (h *LoansHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	marked, err := h.Loans.MarkOverdue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func (h *LoansHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid loan id"}`, http.StatusBadRequest)
		return
	}
	var req service.UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	loan, err := h.Loans.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, `{"error":"invalid loan id"}`, http.StatusBadRequest)
		return
	}
	if err := h.Loans.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LoansHandler) ByMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "memberId")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	loans, err := h.Loans.ByMember(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) ActiveByMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "memberId")
	if !ok {
		http.Error(w, `{"error":"invalid member id"}`, http.StatusBadRequest)
		return
	}
	loans, err := h.Loans.ActiveByMember(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) ByBook(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "bookId")
	if !ok {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	loans, err := h.Loans.ByBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Loans.Overdue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) DueOn(w http.ResponseWriter, r *http.Request) {
	date, err := models.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, `{"error":"invalid date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	loans, err := h.Loans.DueOn(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *LoansHandler) CurrentBorrows(w http.ResponseWriter, r *http.Request) {
	count, err := h.Loans.CountBorrowed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"currentBorrows": count})
}

func (h *LoansHandler) OverdueCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Loans.CountOverdue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"overdueCount": count})
}
