package library

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	patronIDPattern = regexp.MustCompile(`^\d{6}$`)
	isbnPattern     = regexp.MustCompile(`^\d{13}$`)
)

// Service implements the lending business rules on top of a Store, a
// PaymentGateway and a Clock. All dependencies are constructor-injected.
type Service struct {
	store   Store
	gateway PaymentGateway
	clock   Clock
}

func NewService(store Store, gateway PaymentGateway, clock Clock) *Service {
	return &Service{store: store, gateway: gateway, clock: clock}
}

// AddBook validates and inserts a new catalog entry. On success the returned
// message names the book; every validation failure is one of the sentinel
// errors, first failure wins.
func (s *Service) AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (string, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	switch {
	case title == "":
		return "", ErrTitleRequired
	case len(title) >= 200:
		return "", ErrTitleTooLong
	case author == "":
		return "", ErrAuthorRequired
	case len(author) >= 100:
		return "", ErrAuthorTooLong
	case !isbnPattern.MatchString(isbn):
		return "", ErrInvalidISBN
	case totalCopies <= 0:
		return "", ErrInvalidCopies
	}

	_, err := s.store.GetBookByISBN(ctx, isbn)
	switch {
	case err == nil:
		return "", ErrDuplicateISBN
	case !errors.Is(err, ErrBookNotFound):
		return "", fmt.Errorf("checking catalog for isbn %s: %w", isbn, err)
	}

	book := &Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	if err := s.store.InsertBook(ctx, book); err != nil {
		return "", fmt.Errorf("inserting book: %w", err)
	}
	return fmt.Sprintf("'%s' successfully added to catalog.", title), nil
}

// BorrowBook lends a book to a patron, decrementing availability and
// opening a borrow record.
func (s *Service) BorrowBook(ctx context.Context, patronID string, bookID int64) (string, error) {
	if !patronIDPattern.MatchString(patronID) {
		return "", ErrInvalidPatronID
	}

	book, err := s.store.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return "", ErrBookNotFound
		}
		return "", fmt.Errorf("looking up book %d: %w", bookID, err)
	}
	if book.AvailableCopies <= 0 {
		return "", ErrBookUnavailable
	}

	active, err := s.store.CountActiveBorrows(ctx, patronID)
	if err != nil {
		return "", fmt.Errorf("counting active loans for patron %s: %w", patronID, err)
	}
	if active >= MaxActiveLoans {
		return "", ErrLoanLimitReached
	}

	if err := s.store.UpdateBookAvailability(ctx, bookID, -1); err != nil {
		return "", fmt.Errorf("updating availability for book %d: %w", bookID, err)
	}
	rec := &BorrowRecord{
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: s.clock.Now(),
	}
	if err := s.store.InsertBorrowRecord(ctx, rec); err != nil {
		// Undo the decrement so the two mutations stay consistent.
		if undoErr := s.store.UpdateBookAvailability(ctx, bookID, +1); undoErr != nil {
			return "", fmt.Errorf("inserting borrow record: %v (availability not restored: %w)", err, undoErr)
		}
		return "", fmt.Errorf("inserting borrow record: %w", err)
	}
	return fmt.Sprintf("Successfully borrowed '%s'.", book.Title), nil
}

// ReturnBook settles a patron's active loan, restores availability and
// reports any late fee owed. The fee is quoted before the record is settled.
func (s *Service) ReturnBook(ctx context.Context, patronID string, bookID int64) (string, error) {
	if !patronIDPattern.MatchString(patronID) {
		return "", ErrInvalidPatronID
	}

	if _, err := s.store.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return "", ErrBookNotFound
		}
		return "", fmt.Errorf("looking up book %d: %w", bookID, err)
	}

	fee, err := s.LateFee(ctx, patronID, bookID)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateBookAvailability(ctx, bookID, +1); err != nil {
		return "", fmt.Errorf("updating availability for book %d: %w", bookID, err)
	}
	if err := s.store.SettleBorrowRecord(ctx, patronID, bookID, s.clock.Now()); err != nil {
		if undoErr := s.store.UpdateBookAvailability(ctx, bookID, -1); undoErr != nil {
			return "", fmt.Errorf("settling borrow record: %v (availability not restored: %w)", err, undoErr)
		}
		return "", fmt.Errorf("settling borrow record: %w", err)
	}

	if fee.FeeAmount > 0 {
		return fmt.Sprintf("Book returned successfully. Your late fee is %.1f dollars.", fee.FeeAmount), nil
	}
	return "Book returned successfully.", nil
}

// LateFee quotes the late fee for one of the patron's active loans. The fee
// accrues at FeePerDay past the grace period and is capped at MaxLateFee.
func (s *Service) LateFee(ctx context.Context, patronID string, bookID int64) (LateFeeResult, error) {
	if !patronIDPattern.MatchString(patronID) {
		return LateFeeResult{}, ErrInvalidPatronID
	}

	if _, err := s.store.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return LateFeeResult{}, ErrBookNotFound
		}
		return LateFeeResult{}, fmt.Errorf("looking up book %d: %w", bookID, err)
	}

	active, err := s.store.ListActiveBorrows(ctx, patronID)
	if err != nil {
		return LateFeeResult{}, fmt.Errorf("listing active loans for patron %s: %w", patronID, err)
	}
	for _, rec := range active {
		if rec.BookID == bookID {
			return s.feeForRecord(rec), nil
		}
	}
	return LateFeeResult{}, ErrBookNotBorrowed
}

func (s *Service) feeForRecord(rec BorrowRecord) LateFeeResult {
	elapsedDays := int(s.clock.Now().Sub(rec.BorrowDate).Hours() / 24)
	daysOverdue := elapsedDays - GracePeriodDays
	if daysOverdue <= 0 {
		return LateFeeResult{FeeAmount: 0, DaysOverdue: 0, Status: StatusNotOverdue}
	}
	fee := math.Min(float64(daysOverdue)*FeePerDay, MaxLateFee)
	return LateFeeResult{
		FeeAmount:   round2(fee),
		DaysOverdue: daysOverdue,
		Status:      StatusOverdue,
	}
}

// ListCatalog returns every book in the catalog.
func (s *Service) ListCatalog(ctx context.Context) ([]Book, error) {
	return s.store.ListBooks(ctx)
}

// SearchBooks matches the catalog against query. Title and author searches
// are case-insensitive substring matches, isbn is exact. A valid search with
// no hits returns an empty slice, never nil-as-signal.
func (s *Service) SearchBooks(ctx context.Context, query, field string) ([]Book, error) {
	switch field {
	case "title", "author", "isbn":
	default:
		return nil, ErrUnknownSearchField
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	matches := make([]Book, 0)
	needle := strings.ToLower(query)
	for _, b := range books {
		switch field {
		case "title":
			if strings.Contains(strings.ToLower(b.Title), needle) {
				matches = append(matches, b)
			}
		case "author":
			if strings.Contains(strings.ToLower(b.Author), needle) {
				matches = append(matches, b)
			}
		case "isbn":
			if b.ISBN == query {
				matches = append(matches, b)
			}
		}
	}
	return matches, nil
}

// PatronStatusReport sums up a patron's current loans, total owed late fees
// and borrow history.
func (s *Service) PatronStatusReport(ctx context.Context, patronID string) (PatronStatusReport, error) {
	if !patronIDPattern.MatchString(patronID) {
		return PatronStatusReport{}, ErrInvalidPatronID
	}

	count, err := s.store.CountActiveBorrows(ctx, patronID)
	if err != nil {
		return PatronStatusReport{}, fmt.Errorf("counting active loans for patron %s: %w", patronID, err)
	}
	active, err := s.store.ListActiveBorrows(ctx, patronID)
	if err != nil {
		return PatronStatusReport{}, fmt.Errorf("listing active loans for patron %s: %w", patronID, err)
	}
	history, err := s.store.ListBorrowHistory(ctx, patronID)
	if err != nil {
		return PatronStatusReport{}, fmt.Errorf("listing history for patron %s: %w", patronID, err)
	}

	var total float64
	for _, rec := range active {
		total += s.feeForRecord(rec).FeeAmount
	}

	return PatronStatusReport{
		PatronID:          patronID,
		BooksBorrowed:     count,
		TotalLateFees:     round2(total),
		CurrentlyBorrowed: active,
		History:           history,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
