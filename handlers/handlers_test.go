package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/handlers"
	"library-api/service"
	"library-api/store/memory"
)

func newTestRouter() chi.Router {
	st := memory.NewStore()
	booksHandler := &handlers.BooksHandler{Books: service.NewBookService(st, st, st)}
	authorsHandler := &handlers.AuthorsHandler{Authors: service.NewAuthorService(st)}
	membersHandler := &handlers.MembersHandler{Members: service.NewMemberService(st, st)}
	loansHandler := &handlers.LoansHandler{Loans: service.NewLoanService(st, st, st, st)}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", booksHandler.List)
			r.Get("/categories", booksHandler.Categories)
			r.Get("/isbn/{isbn}", booksHandler.GetByISBN)
			r.Get("/{id}", booksHandler.Get)
			r.Get("/{id}/availability", booksHandler.Availability)
			r.Post("/", booksHandler.Create)
			r.Put("/{id}", booksHandler.Update)
			r.Delete("/{id}", booksHandler.Delete)
		})
		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorsHandler.List)
			r.Get("/{id}", authorsHandler.Get)
			r.Post("/", authorsHandler.Create)
			r.Delete("/{id}", authorsHandler.Delete)
		})
		r.Route("/members", func(r chi.Router) {
			r.Get("/{id}", membersHandler.Get)
			r.Get("/{id}/can-borrow", membersHandler.CanBorrow)
			r.Post("/", membersHandler.Create)
			r.Patch("/{id}/suspend", membersHandler.Suspend)
		})
		r.Route("/borrowed-books", func(r chi.Router) {
			r.Get("/", loansHandler.List)
			r.Get("/overdue", loansHandler.Overdue)
			r.Get("/statistics/current-borrows", loansHandler.CurrentBorrows)
			r.Get("/{id}", loansHandler.Get)
			r.Post("/borrow", loansHandler.Borrow)
			r.Post("/mark-overdue", loansHandler.MarkOverdue)
			r.Patch("/{id}/return", loansHandler.Return)
		})
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

func TestBorrowFlowOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/authors/", map[string]any{"name": "George Orwell"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &author)

	w = doJSON(t, r, http.MethodPost, "/api/books/", map[string]any{
		"title":          "1984",
		"isbn":           "978-0-452-28423-4",
		"category":       "Fiction",
		"publishingYear": 1949,
		"authorId":       author.ID,
		"totalCopies":    1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book struct {
		ID              int64 `json:"id"`
		AvailableCopies int   `json:"availableCopies"`
	}
	decode(t, w, &book)
	assert.Equal(t, 1, book.AvailableCopies)

	w = doJSON(t, r, http.MethodPost, "/api/members/", map[string]any{
		"name":  "Anna Kim",
		"email": "anna@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var member struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &member)

	w = doJSON(t, r, http.MethodPost, "/api/borrowed-books/borrow", map[string]any{
		"memberId": member.ID,
		"bookId":   book.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var loan struct {
		ID         int64   `json:"id"`
		Status     string  `json:"status"`
		BorrowDate string  `json:"borrowDate"`
		ReturnDate *string `json:"returnDate"`
	}
	decode(t, w, &loan)
	assert.Equal(t, "BORROWED", loan.Status)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, loan.BorrowDate)
	assert.Nil(t, loan.ReturnDate)

	// no copy left
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/books/%d/availability", book.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	// second borrow conflicts
	w = doJSON(t, r, http.MethodPost, "/api/borrowed-books/borrow", map[string]any{
		"memberId": member.ID,
		"bookId":   book.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/borrowed-books/%d/return", loan.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var returned struct {
		Status     string  `json:"status"`
		ReturnDate *string `json:"returnDate"`
	}
	decode(t, w, &returned)
	assert.Equal(t, "RETURNED", returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, *returned.ReturnDate)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/books/%d/availability", book.ID), nil)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter()

	// not found
	w := doJSON(t, r, http.MethodGet, "/api/books/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Contains(t, body["error"], "not found")

	// validation
	w = doJSON(t, r, http.MethodPost, "/api/members/", map[string]any{"name": "x", "email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed id
	w = doJSON(t, r, http.MethodGet, "/api/books/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// malformed json
	req := httptest.NewRequest(http.MethodPost, "/api/authors/", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuspendedMemberCannotBorrowOverHTTP(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/authors/", map[string]any{"name": "Harper Lee"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &author)

	w = doJSON(t, r, http.MethodPost, "/api/books/", map[string]any{
		"title": "To Kill a Mockingbird", "category": "Fiction", "publishingYear": 1960, "authorId": author.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &book)

	w = doJSON(t, r, http.MethodPost, "/api/members/", map[string]any{"name": "Ben", "email": "ben@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var member struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &member)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/members/%d/suspend", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/members/%d/can-borrow", member.ID), nil)
	assert.JSONEq(t, `{"canBorrow":false}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/borrowed-books/borrow", map[string]any{
		"memberId": member.ID, "bookId": book.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReturnReadsChunkedBody(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/authors/", map[string]any{"name": "Jane Austen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &author)

	w = doJSON(t, r, http.MethodPost, "/api/books/", map[string]any{
		"title": "Persuasion", "category": "Romance", "publishingYear": 1817, "authorId": author.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &book)

	w = doJSON(t, r, http.MethodPost, "/api/members/", map[string]any{"name": "Cara", "email": "cara@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var member struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &member)

	w = doJSON(t, r, http.MethodPost, "/api/borrowed-books/borrow", map[string]any{
		"memberId": member.ID, "bookId": book.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var loan struct {
		ID         int64  `json:"id"`
		BorrowDate string `json:"borrowDate"`
	}
	decode(t, w, &loan)

	// a chunked request has no Content-Length; the explicit return date must
	// still be honored
	payload := fmt.Sprintf(`{"returnDate":%q}`, loan.BorrowDate)
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/api/borrowed-books/%d/return", loan.ID),
		struct{ io.Reader }{strings.NewReader(payload)})
	require.Equal(t, int64(-1), req.ContentLength)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var returned struct {
		Status     string  `json:"status"`
		ReturnDate *string `json:"returnDate"`
	}
	decode(t, rec, &returned)
	assert.Equal(t, "RETURNED", returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, loan.BorrowDate, *returned.ReturnDate)
}

func TestMarkOverdueEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/borrowed-books/mark-overdue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"marked":0}`, w.Body.String())
}
