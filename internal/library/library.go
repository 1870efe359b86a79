package library

import (
	"errors"
	"time"
)

// Lending rules. The fee accrues per day past the grace period and is
// capped; a patron may hold at most MaxActiveLoans books at once.
const (
	GracePeriodDays = 14
	FeePerDay       = 0.50
	MaxLateFee      = 15.00
	MaxActiveLoans  = 5
)

// Late-fee statuses reported in LateFeeResult.
const (
	StatusOverdue    = "Overdue"
	StatusNotOverdue = "Not Overdue"
)

// Sentinel errors. Their Error() strings are user-facing: the route layer
// and CLI surface them verbatim, so the wording is part of the contract.
var (
	ErrTitleRequired      = errors.New("Title is required.")
	ErrTitleTooLong       = errors.New("Title must be less than 200 characters.")
	ErrAuthorRequired     = errors.New("Author is required.")
	ErrAuthorTooLong      = errors.New("Author must be less than 100 characters.")
	ErrInvalidISBN        = errors.New("ISBN must be exactly 13 digits.")
	ErrInvalidCopies      = errors.New("Total copies must be a positive integer.")
	ErrDuplicateISBN      = errors.New("Book with this ISBN already exists.")
	ErrInvalidPatronID    = errors.New("Invalid patron ID. Must be exactly 6 digits.")
	ErrBookNotFound       = errors.New("Book not found.")
	ErrBookUnavailable    = errors.New("Book is not available for borrowing.")
	ErrLoanLimitReached   = errors.New("Patron has reached the maximum borrowing limit of 5 books.")
	ErrBookNotBorrowed    = errors.New("Patron does not currently own this book.")
	ErrFeeUnavailable     = errors.New("Unable to calculate late fees.")
	ErrNoLateFeesOwed     = errors.New("No late fees owed.")
	ErrPaymentFailed      = errors.New("Payment processing error.")
	ErrInvalidTransaction = errors.New("Invalid transaction ID.")
	ErrRefundNotPositive  = errors.New("Refund amount must be greater than 0.")
	ErrRefundExceedsMax   = errors.New("Refund amount exceeds maximum late fee.")
	ErrUnknownSearchField = errors.New("Unrecognized search field.")
)

// Book represents a catalog entry and its copy counts.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BorrowRecord is one loan of one book to one patron. ReturnDate is nil
// while the loan is active; settled records stay in the patron's history.
type BorrowRecord struct {
	ID         int64      `json:"id"`
	PatronID   string     `json:"patron_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// LateFeeResult is a derived fee quote for one active loan.
type LateFeeResult struct {
	FeeAmount   float64 `json:"fee_amount"`
	DaysOverdue int     `json:"days_overdue"`
	Status      string  `json:"status"`
}

// PatronStatusReport aggregates a patron's current loans, owed fees and
// full borrow history.
type PatronStatusReport struct {
	PatronID          string         `json:"patron_id"`
	BooksBorrowed     int            `json:"books_borrowed"`
	TotalLateFees     float64        `json:"total_late_fees"`
	CurrentlyBorrowed []BorrowRecord `json:"currently_borrowed"`
	History           []BorrowRecord `json:"history"`
}

// PaymentReceipt is returned by PayLateFees on a successful charge.
type PaymentReceipt struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Message       string  `json:"message"`
}

// PaymentDeclinedError carries a decline reason produced by the payment
// gateway itself, as opposed to a transport failure.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string { return e.Reason }
