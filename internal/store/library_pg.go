package store

// Store implementation (Postgres)

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"librarysvc/internal/library"
)

type LibraryPG struct {
	db *pgxpool.Pool
}

func NewLibraryPG(db *pgxpool.Pool) *LibraryPG {
	return &LibraryPG{db: db}
}

const bookColumns = `id, title, author, isbn, total_copies, available_copies, created_at, updated_at`

func scanBook(row pgx.Row) (library.Book, error) {
	var b library.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return library.Book{}, library.ErrBookNotFound
	}
	if err != nil {
		return library.Book{}, err
	}
	return b, nil
}

func (r *LibraryPG) GetBookByID(ctx context.Context, id int64) (library.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRow(ctx, query, id))
}

func (r *LibraryPG) GetBookByISBN(ctx context.Context, isbn string) (library.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	return scanBook(r.db.QueryRow(ctx, query, isbn))
}

func (r *LibraryPG) ListBooks(ctx context.Context) ([]library.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []library.Book
	for rows.Next() {
		var b library.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *LibraryPG) InsertBook(ctx context.Context, b *library.Book) error {
	query := `
	INSERT INTO books (title, author, isbn, total_copies, available_copies)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, b.Title, b.Author, b.ISBN, b.TotalCopies, b.AvailableCopies).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// UpdateBookAvailability adjusts available_copies by delta. The WHERE clause
// keeps the count within [0, total_copies]; an out-of-range adjustment
// matches no row and is reported as an error.
func (r *LibraryPG) UpdateBookAvailability(ctx context.Context, id int64, delta int) error {
	query := `
	UPDATE books
	SET available_copies = available_copies + $2, updated_at = now()
	WHERE id = $1
	  AND available_copies + $2 >= 0
	  AND available_copies + $2 <= total_copies
	`
	ct, err := r.db.Exec(ctx, query, id, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("availability adjustment of %+d rejected for book %d", delta, id)
	}
	return nil
}

func (r *LibraryPG) InsertBorrowRecord(ctx context.Context, rec *library.BorrowRecord) error {
	query := `
	INSERT INTO borrow_records (patron_id, book_id, borrow_date)
	VALUES ($1, $2, $3)
	RETURNING id
	`
	return r.db.QueryRow(ctx, query, rec.PatronID, rec.BookID, rec.BorrowDate).Scan(&rec.ID)
}

func (r *LibraryPG) SettleBorrowRecord(ctx context.Context, patronID string, bookID int64, returnedAt time.Time) error {
	query := `
	UPDATE borrow_records
	SET return_date = $3
	WHERE patron_id = $1 AND book_id = $2 AND return_date IS NULL
	`
	ct, err := r.db.Exec(ctx, query, patronID, bookID, returnedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return library.ErrBookNotBorrowed
	}
	return nil
}

func (r *LibraryPG) CountActiveBorrows(ctx context.Context, patronID string) (int, error) {
	query := `SELECT count(*) FROM borrow_records WHERE patron_id = $1 AND return_date IS NULL`
	var n int
	if err := r.db.QueryRow(ctx, query, patronID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *LibraryPG) ListActiveBorrows(ctx context.Context, patronID string) ([]library.BorrowRecord, error) {
	query := `
	SELECT id, patron_id, book_id, borrow_date, return_date
	FROM borrow_records
	WHERE patron_id = $1 AND return_date IS NULL
	ORDER BY borrow_date
	`
	return r.queryRecords(ctx, query, patronID)
}

func (r *LibraryPG) ListBorrowHistory(ctx context.Context, patronID string) ([]library.BorrowRecord, error) {
	query := `
	SELECT id, patron_id, book_id, borrow_date, return_date
	FROM borrow_records
	WHERE patron_id = $1
	ORDER BY borrow_date
	`
	return r.queryRecords(ctx, query, patronID)
}

func (r *LibraryPG) queryRecords(ctx context.Context, query string, patronID string) ([]library.BorrowRecord, error) {
	rows, err := r.db.Query(ctx, query, patronID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []library.BorrowRecord
	for rows.Next() {
		var rec library.BorrowRecord
		if err := rows.Scan(&rec.ID, &rec.PatronID, &rec.BookID, &rec.BorrowDate, &rec.ReturnDate); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
