package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"library-api/config"
	"library-api/handlers"
	"library-api/middleware"
	"library-api/service"
	"library-api/store"
	"library-api/store/memory"
)

// storage is everything the services need from a backend: transactions plus
// the four record stores. Both the Postgres store and the in-memory store
// satisfy it.
type storage interface {
	service.TxRunner
	service.BookStore
	service.AuthorStore
	service.MemberStore
	service.LoanStore
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()

	var st storage
	if cfg.DatabaseURL != "" {
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres:", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("migrate:", err)
		}
		st = db
	} else {
		log.Println("warning: DATABASE_URL not set; using in-memory store, data will not survive restarts")
		st = memory.NewStore()
	}

	booksHandler := &handlers.BooksHandler{Books: service.NewBookService(st, st, st)}
	authorsHandler := &handlers.AuthorsHandler{Authors: service.NewAuthorService(st)}
	membersHandler := &handlers.MembersHandler{Members: service.NewMemberService(st, st)}
	loansHandler := &handlers.LoansHandler{Loans: service.NewLoanService(st, st, st, st)}

	auth := &middleware.APIKeyAuth{Header: cfg.APIKeyHeader, Keys: cfg.APIKeys}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AllowAll())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"library api"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(auth.Authenticate)
		}

		r.Route("/books", func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(middleware.RequireRole(middleware.RoleBooks))
			}
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
			if cfg.AuthEnabled {
				r.Use(middleware.RequireRole(middleware.RoleAuthors))
			}
			r.Get("/", authorsHandler.List)
			r.Get("/name/{name}", authorsHandler.GetByName)
			r.Get("/{id}", authorsHandler.Get)
			r.Post("/", authorsHandler.Create)
			r.Put("/{id}", authorsHandler.Update)
			r.Delete("/{id}", authorsHandler.Delete)
		})

		r.Route("/members", func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(middleware.RequireRole(middleware.RoleMembers))
			}
			r.Get("/", membersHandler.List)
			r.Get("/email/{email}", membersHandler.GetByEmail)
			r.Get("/{id}", membersHandler.Get)
			r.Get("/{id}/can-borrow", membersHandler.CanBorrow)
			r.Get("/{id}/borrow-count", membersHandler.BorrowCount)
			r.Post("/", membersHandler.Create)
			r.Put("/{id}", membersHandler.Update)
			r.Patch("/{id}/suspend", membersHandler.Suspend)
			r.Patch("/{id}/activate", membersHandler.Activate)
			r.Delete("/{id}", membersHandler.Delete)
		})

		r.Route("/borrowed-books", func(r chi.Router) {
			if cfg.AuthEnabled {
				r.Use(middleware.RequireRole(middleware.RoleBorrowedBooks))
			}
			r.Get("/", loansHandler.List)
			r.Get("/overdue", loansHandler.Overdue)
			r.Get("/due-on/{date}", loansHandler.DueOn)
			r.Get("/member/{memberId}", loansHandler.ByMember)
			r.Get("/member/{memberId}/active", loansHandler.ActiveByMember)
			r.Get("/book/{bookId}", loansHandler.ByBook)
			r.Get("/statistics/current-borrows", loansHandler.CurrentBorrows)
			r.Get("/statistics/overdue-count", loansHandler.OverdueCount)
			r.Get("/{id}", loansHandler.Get)
			r.Post("/borrow", loansHandler.Borrow)
			r.Post("/mark-overdue", loansHandler.MarkOverdue)
			r.Patch("/{id}/return", loansHandler.Return)
			r.Patch("/{id}/mark-lost", loansHandler.MarkLost)
			r.Put("/{id}", loansHandler.Update)
			r.Delete("/{id}", loansHandler.Delete)
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
