// Command seed loads a small sample dataset into the database. It is a no-op
// when authors already exist, so it is safe to run on every deploy.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"library-api/config"
	"library-api/models"
	"library-api/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres:", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("migrate:", err)
	}

	existing, err := db.Authors(ctx, store.AuthorFilter{})
	if err != nil {
		log.Fatal("authors:", err)
	}
	if len(existing) > 0 {
		log.Println("data already present, skipping seed")
		return
	}

	if err := seed(ctx, db); err != nil {
		log.Fatal("seed:", err)
	}
	log.Println("sample data initialized")
}

func seed(ctx context.Context, db *store.DB) error {
	return db.RunInTx(ctx, func(ctx context.Context) error {
		authors := []*models.Author{
			{Name: "F. Scott Fitzgerald", Biography: "American novelist and short story writer", Nationality: "American", BirthYear: 1896},
			{Name: "George Orwell", Biography: "English novelist, essayist, journalist and critic", Nationality: "British", BirthYear: 1903},
			{Name: "Harper Lee", Biography: "American novelist", Nationality: "American", BirthYear: 1926},
			{Name: "J.R.R. Tolkien", Biography: "English writer and philologist", Nationality: "British", BirthYear: 1892},
			{Name: "Jane Austen", Biography: "English novelist", Nationality: "British", BirthYear: 1775},
		}
		for _, a := range authors {
			id, err := db.InsertAuthor(ctx, a)
			if err != nil {
				return err
			}
			a.ID = id
		}
		scott, orwell, harper, tolkien, jane := authors[0], authors[1], authors[2], authors[3], authors[4]

		books := []*models.Book{
			{Title: "The Great Gatsby", ISBN: "978-0-7432-7356-5", Category: "Fiction", PublishingYear: 2020, Description: "A classic American novel about the Jazz Age", AuthorID: scott.ID, TotalCopies: 3, AvailableCopies: 2},
			{Title: "1984", ISBN: "978-0-452-28423-4", Category: "Fiction", PublishingYear: 1949, Description: "A dystopian social science fiction novel", AuthorID: orwell.ID, TotalCopies: 2, AvailableCopies: 1},
			{Title: "To Kill a Mockingbird", ISBN: "978-0-06-112008-4", Category: "Fiction", PublishingYear: 1960, Description: "A novel about racial injustice and childhood", AuthorID: harper.ID, TotalCopies: 2, AvailableCopies: 2},
			{Title: "The Hobbit", ISBN: "978-0-547-92822-7", Category: "Fantasy", PublishingYear: 1937, Description: "A fantasy adventure novel", AuthorID: tolkien.ID, TotalCopies: 1, AvailableCopies: 0},
			{Title: "Pride and Prejudice", ISBN: "978-0-14-143951-8", Category: "Romance", PublishingYear: 1813, Description: "A romantic novel of manners", AuthorID: jane.ID, TotalCopies: 2, AvailableCopies: 2},
			{Title: "Animal Farm", ISBN: "978-0-452-28424-1", Category: "Fiction", PublishingYear: 1945, Description: "An allegorical novella", AuthorID: orwell.ID, TotalCopies: 1, AvailableCopies: 1},
		}
		for _, b := range books {
			id, err := db.InsertBook(ctx, b)
			if err != nil {
				return err
			}
			b.ID = id
		}
		gatsby, nineteen, hobbit, pride := books[0], books[1], books[3], books[4]

		members := []*models.Member{
			{Name: "Jack Smith", Email: "jack@email.com", Phone: "+1-555-0123", Address: "123 Main St, City, State"},
			{Name: "Emily Johnson", Email: "emily@email.com", Phone: "+1-555-0124", Address: "456 Oak Ave, City, State"},
			{Name: "Michael Brown", Email: "michael@email.com", Phone: "+1-555-0125", Address: "789 Pine Rd, City, State"},
			{Name: "Sarah Davis", Email: "sarah@email.com", Phone: "+1-555-0126", Address: "321 Elm St, City, State"},
			{Name: "David Wilson", Email: "david@email.com", Phone: "+1-555-0127", Address: "654 Maple Dr, City, State"},
		}
		today := models.Today()
		for _, m := range members {
			m.MembershipDate = today.Time
			m.Status = models.MemberActive
			id, err := db.InsertMember(ctx, m)
			if err != nil {
				return err
			}
			m.ID = id
		}
		jack, emily, sarah, david := members[0], members[1], members[3], members[4]

		returned := today.AddDays(-12)
		loans := []*models.Loan{
			{MemberID: jack.ID, BookID: gatsby.ID, BorrowDate: today.AddDays(-10), DueDate: today.AddDays(4), Status: models.LoanBorrowed, Notes: "First borrow"},
			{MemberID: emily.ID, BookID: nineteen.ID, BorrowDate: today.AddDays(-5), DueDate: today.AddDays(9), Status: models.LoanBorrowed},
			{MemberID: david.ID, BookID: hobbit.ID, BorrowDate: today.AddDays(-20), DueDate: today.AddDays(-6), Status: models.LoanOverdue, Notes: "Overdue - need to follow up"},
			{MemberID: sarah.ID, BookID: pride.ID, BorrowDate: today.AddDays(-25), DueDate: today.AddDays(-11), ReturnDate: &returned, Status: models.LoanReturned},
		}
		for _, l := range loans {
			if _, err := db.InsertLoan(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}
