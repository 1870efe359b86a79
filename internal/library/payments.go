package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const transactionIDPrefix = "txn_"

// PayLateFees charges a patron's outstanding late fee for one book through
// the payment gateway. All validation happens before the gateway is touched;
// the gateway is called at most once.
func (s *Service) PayLateFees(ctx context.Context, patronID string, bookID int64) (PaymentReceipt, error) {
	if !patronIDPattern.MatchString(patronID) {
		return PaymentReceipt{}, ErrInvalidPatronID
	}

	book, err := s.store.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return PaymentReceipt{}, ErrBookNotFound
		}
		return PaymentReceipt{}, fmt.Errorf("looking up book %d: %w", bookID, err)
	}

	fee, err := s.LateFee(ctx, patronID, bookID)
	if err != nil {
		return PaymentReceipt{}, ErrFeeUnavailable
	}
	if fee.FeeAmount <= 0 {
		return PaymentReceipt{}, ErrNoLateFeesOwed
	}

	description := fmt.Sprintf("Late fees for '%s'", book.Title)
	res, err := s.gateway.ProcessPayment(ctx, patronID, fee.FeeAmount, description)
	if err != nil {
		return PaymentReceipt{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if !res.Approved {
		return PaymentReceipt{}, &PaymentDeclinedError{Reason: res.Message}
	}

	return PaymentReceipt{
		TransactionID: res.TransactionID,
		Amount:        fee.FeeAmount,
		Message:       fmt.Sprintf("Payment successful. Transaction ID: %s.", res.TransactionID),
	}, nil
}

// RefundLateFeePayment refunds a previously charged late fee. The amount must
// be positive and cannot exceed the fee cap, and the transaction id must
// carry the gateway's txn_ prefix; nothing reaches the gateway otherwise.
func (s *Service) RefundLateFeePayment(ctx context.Context, transactionID string, amount float64) (string, error) {
	if !strings.HasPrefix(transactionID, transactionIDPrefix) || len(transactionID) == len(transactionIDPrefix) {
		return "", ErrInvalidTransaction
	}
	if amount <= 0 {
		return "", ErrRefundNotPositive
	}
	if amount > MaxLateFee {
		return "", ErrRefundExceedsMax
	}

	res, err := s.gateway.RefundPayment(ctx, transactionID, amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if !res.Approved {
		return "", &PaymentDeclinedError{Reason: res.Message}
	}
	return res.Message, nil
}
