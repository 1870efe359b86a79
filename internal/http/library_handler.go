package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"librarysvc/internal/library"
)

type LibraryHandler struct {
	svc *library.Service
}

func NewLibraryHandler(svc *library.Service) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

type addBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn" validate:"required,isbn13"`
	TotalCopies int    `json:"total_copies"`
}

// AddBook handles POST /books.
func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors[0].Message, validationErrors)
		return
	}

	msg, err := h.svc.AddBook(r.Context(), req.Title, req.Author, req.ISBN, req.TotalCopies)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccessCreated(w, msg, nil)
}

// ListBooks handles GET /books.
func (h *LibraryHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListCatalog(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, "", books)
}

// SearchBooks handles GET /books/search?q=<query>&field=<title|author|isbn>.
func (h *LibraryHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	field := r.URL.Query().Get("field")

	books, err := h.svc.SearchBooks(r.Context(), query, field)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, "", books)
}

type loanRequest struct {
	PatronID string `json:"patron_id" validate:"required,patron_id"`
	BookID   int64  `json:"book_id" validate:"required"`
}

// BorrowBook handles POST /loans.
func (h *LibraryHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors[0].Message, validationErrors)
		return
	}

	msg, err := h.svc.BorrowBook(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, msg, nil)
}

// ReturnBook handles POST /loans/return.
func (h *LibraryHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors[0].Message, validationErrors)
		return
	}

	msg, err := h.svc.ReturnBook(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, msg, nil)
}

// LateFee handles GET /loans/fee?patron_id=<id>&book_id=<id>.
func (h *LibraryHandler) LateFee(w http.ResponseWriter, r *http.Request) {
	patronID := r.URL.Query().Get("patron_id")
	bookID, err := strconv.ParseInt(r.URL.Query().Get("book_id"), 10, 64)
	if err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "book_id must be an integer", nil)
		return
	}

	fee, err := h.svc.LateFee(r.Context(), patronID, bookID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, "", fee)
}

// PayLateFees handles POST /payments.
func (h *LibraryHandler) PayLateFees(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors[0].Message, validationErrors)
		return
	}

	receipt, err := h.svc.PayLateFees(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, receipt.Message, receipt)
}

type refundRequest struct {
	TransactionID string  `json:"transaction_id" validate:"required"`
	Amount        float64 `json:"amount"`
}

// RefundPayment handles POST /payments/refund.
func (h *LibraryHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := ValidateStruct(req); len(validationErrors) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErrors[0].Message, validationErrors)
		return
	}

	msg, err := h.svc.RefundLateFeePayment(r.Context(), req.TransactionID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, msg, nil)
}

// PatronReport handles GET /patrons/{id}/report.
func (h *LibraryHandler) PatronReport(w http.ResponseWriter, r *http.Request) {
	// crude path param extraction with net/http's ServeMux
	// /patrons/{id}/report
	const prefix = "/patrons/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	patronID, ok := strings.CutSuffix(rest, "/report")
	if !ok || patronID == "" || strings.Contains(patronID, "/") {
		http.NotFound(w, r)
		return
	}

	report, err := h.svc.PatronStatusReport(r.Context(), patronID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSONSuccess(w, "", report)
}

// writeServiceError maps service errors onto the response envelope. The
// error strings themselves are the user-facing messages.
func writeServiceError(w http.ResponseWriter, err error) {
	var declined *library.PaymentDeclinedError

	switch {
	case errors.Is(err, library.ErrTitleRequired),
		errors.Is(err, library.ErrTitleTooLong),
		errors.Is(err, library.ErrAuthorRequired),
		errors.Is(err, library.ErrAuthorTooLong),
		errors.Is(err, library.ErrInvalidISBN),
		errors.Is(err, library.ErrInvalidCopies),
		errors.Is(err, library.ErrInvalidPatronID),
		errors.Is(err, library.ErrInvalidTransaction),
		errors.Is(err, library.ErrRefundNotPositive),
		errors.Is(err, library.ErrRefundExceedsMax),
		errors.Is(err, library.ErrUnknownSearchField):
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, library.ErrBookNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, library.ErrDuplicateISBN),
		errors.Is(err, library.ErrBookUnavailable),
		errors.Is(err, library.ErrLoanLimitReached),
		errors.Is(err, library.ErrBookNotBorrowed),
		errors.Is(err, library.ErrNoLateFeesOwed):
		JSONError(w, http.StatusConflict, "STATE_CONFLICT", err.Error(), nil)
	case errors.Is(err, library.ErrFeeUnavailable):
		JSONError(w, http.StatusUnprocessableEntity, "FEE_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, library.ErrPaymentFailed):
		JSONError(w, http.StatusBadGateway, "GATEWAY_ERROR", err.Error(), nil)
	case errors.As(err, &declined):
		JSONError(w, http.StatusPaymentRequired, "PAYMENT_DECLINED", err.Error(), nil)
	default:
		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
