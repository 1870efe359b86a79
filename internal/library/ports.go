package library

import (
	"context"
	"time"
)

// Store defines the contract for catalog and loan persistence.
type Store interface {
	GetBookByID(ctx context.Context, id int64) (Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	InsertBook(ctx context.Context, b *Book) error
	// UpdateBookAvailability adjusts available_copies by delta, keeping it
	// within [0, total_copies].
	UpdateBookAvailability(ctx context.Context, id int64, delta int) error
	InsertBorrowRecord(ctx context.Context, rec *BorrowRecord) error
	// SettleBorrowRecord stamps the active loan's return date.
	SettleBorrowRecord(ctx context.Context, patronID string, bookID int64, returnedAt time.Time) error
	CountActiveBorrows(ctx context.Context, patronID string) (int, error)
	ListActiveBorrows(ctx context.Context, patronID string) ([]BorrowRecord, error)
	ListBorrowHistory(ctx context.Context, patronID string) ([]BorrowRecord, error)
}

// PaymentResult is the gateway's answer to a charge attempt. Approved=false
// with a nil error is a decline; a non-nil error from the gateway call is a
// transport failure.
type PaymentResult struct {
	Approved      bool
	TransactionID string
	Message       string
}

// RefundResult is the gateway's answer to a refund attempt.
type RefundResult struct {
	Approved bool
	RefundID string
	Message  string
}

// PaymentGateway defines the external payment-processing capability.
type PaymentGateway interface {
	ProcessPayment(ctx context.Context, patronID string, amount float64, description string) (PaymentResult, error)
	RefundPayment(ctx context.Context, transactionID string, amount float64) (RefundResult, error)
}

// Clock supplies "now" so fee calculations are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
