package testutil

import (
	"time"

	"librarysvc/internal/library"
)

// FixedClock is a library.Clock that always reports the same instant, so
// fee calculations in tests are deterministic.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Now is the reference instant used across test fixtures.
var Now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// DaysAgo returns the instant n days before Now.
func DaysAgo(n int) time.Time {
	return Now.AddDate(0, 0, -n)
}

// TestBook is a mock catalog entry for testing.
var TestBook = library.Book{
	ID:              1,
	Title:           "The Great Gatsby",
	Author:          "F. Scott Fitzgerald",
	ISBN:            "9780743273565",
	TotalCopies:     3,
	AvailableCopies: 3,
	CreatedAt:       Now,
	UpdatedAt:       Now,
}

// ActiveLoan builds an unreturned borrow record.
func ActiveLoan(patronID string, bookID int64, borrowedDaysAgo int) library.BorrowRecord {
	return library.BorrowRecord{
		ID:         100,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: DaysAgo(borrowedDaysAgo),
	}
}
