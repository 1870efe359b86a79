package library_test

import (
	"context"
	"errors"
	"testing"

	"librarysvc/internal/library"
	"librarysvc/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestService_PayLateFees(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, store, gateway := newTestService(t)
		loan := testutil.ActiveLoan("123456", 1, 24) // 10 days overdue, 5.00
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(testutil.TestBook, nil).Times(2)
		store.EXPECT().ListActiveBorrows(ctx, "123456").Return([]library.BorrowRecord{loan}, nil)
		gateway.EXPECT().
			ProcessPayment(ctx, "123456", 5.0, "Late fees for 'The Great Gatsby'").
			Return(library.PaymentResult{Approved: true, TransactionID: "txn_123", Message: "Success"}, nil)

		receipt, err := svc.PayLateFees(ctx, "123456", 1)
		assert.NoError(t, err)
		assert.Equal(t, "txn_123", receipt.TransactionID)
		assert.Equal(t, 5.0, receipt.Amount)
		assert.Contains(t, receipt.Message, "Payment successful")
	})

	t.Run("invalid patron id skips gateway", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.PayLateFees(ctx, "12345", 1)
		assert.ErrorIs(t, err, library.ErrInvalidPatronID)
	})

	t.Run("book not found skips gateway", func(t *testing.T) {
		svc, store, _ := newTestService(t)
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(library.Book{}, library.ErrBookNotFound)

		_, err := svc.PayLateFees(ctx, "123456", 1)
		assert.ErrorIs(t, err, library.ErrBookNotFound)
	})

	t.Run("fee not computable skips gateway", func(t *testing.T) {
		svc, store, _ := newTestService(t)
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(testutil.TestBook, nil).Times(2)
		store.EXPECT().ListActiveBorrows(ctx, "123456").Return(nil, errors.New("query failed"))

		_, err := svc.PayLateFees(ctx, "123456", 1)
		assert.ErrorIs(t, err, library.ErrFeeUnavailable)
		assert.Contains(t, err.Error(), "Unable to calculate late fees.")
	})

	t.Run("zero fee skips gateway", func(t *testing.T) {
		svc, store, _ := newTestService(t)
		loan := testutil.ActiveLoan("123456", 1, 5) // well inside the grace period
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(testutil.TestBook, nil).Times(2)
		store.EXPECT().ListActiveBorrows(ctx, "123456").Return([]library.BorrowRecord{loan}, nil)

		_, err := svc.PayLateFees(ctx, "123456", 1)
		assert.ErrorIs(t, err, library.ErrNoLateFeesOwed)
		assert.Contains(t, err.Error(), "No late fees")
	})

	t.Run("gateway transport failure", func(t *testing.T) {
		svc, store, gateway := newTestService(t)
		loan := testutil.ActiveLoan("123456", 1, 24)
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(testutil.TestBook, nil).Times(2)
		store.EXPECT().ListActiveBorrows(ctx, "123456").Return([]library.BorrowRecord{loan}, nil)
		gateway.EXPECT().
			ProcessPayment(ctx, "123456", 5.0, gomock.Any()).
			Return(library.PaymentResult{}, errors.New("connection refused"))

		_, err := svc.PayLateFees(ctx, "123456", 1)
		assert.ErrorIs(t, err, library.ErrPaymentFailed)
		assert.Contains(t, err.Error(), "Payment processing error")
	})

	t.Run("gateway decline propagates its message", func(t *testing.T) {
		svc, store, gateway := newTestService(t)
		loan := testutil.ActiveLoan("123456", 1, 24)
		store.EXPECT().GetBookByID(ctx, int64(1)).Return(testutil.TestBook, nil).Times(2)
		store.EXPECT().ListActiveBorrows(ctx, "123456").Return([]library.BorrowRecord{loan}, nil)
		gateway.EXPECT().
			ProcessPayment(ctx, "123456", 5.0, gomock.Any()).
			Return(library.PaymentResult{Approved: false, Message: "Card declined"}, nil)

		_, err := svc.PayLateFees(ctx, "123456", 1)
		var declined *library.PaymentDeclinedError
		assert.ErrorAs(t, err, &declined)
		assert.Equal(t, "Card declined", declined.Reason)
	})
}

func TestService_RefundLateFeePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _, gateway := newTestService(t)
		gateway.EXPECT().
			RefundPayment(ctx, "txn_123", 1.0).
			Return(library.RefundResult{
				Approved: true,
				RefundID: "refund_txn_123_1748779200",
				Message:  "Refund of $1.00 processed successfully. Refund ID: refund_txn_123_1748779200",
			}, nil)

		msg, err := svc.RefundLateFeePayment(ctx, "txn_123", 1.0)
		assert.NoError(t, err)
		assert.Contains(t, msg, "Refund of")
	})

	t.Run("invalid transaction id skips gateway", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		for _, id := range []string{"blah", "", "txn_", "TXN_123"} {
			_, err := svc.RefundLateFeePayment(ctx, id, 1.0)
			assert.ErrorIs(t, err, library.ErrInvalidTransaction)
			assert.Contains(t, err.Error(), "Invalid transaction")
		}
	})

	t.Run("non-positive amount skips gateway", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		for _, amount := range []float64{0, -1.0} {
			_, err := svc.RefundLateFeePayment(ctx, "txn_123", amount)
			assert.ErrorIs(t, err, library.ErrRefundNotPositive)
		}
	})

	t.Run("amount above fee cap skips gateway", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.RefundLateFeePayment(ctx, "txn_123", 20.0)
		assert.ErrorIs(t, err, library.ErrRefundExceedsMax)
		assert.Contains(t, err.Error(), "exceeds maximum late fee")
	})

	t.Run("gateway transport failure", func(t *testing.T) {
		svc, _, gateway := newTestService(t)
		gateway.EXPECT().
			RefundPayment(ctx, "txn_123", 2.0).
			Return(library.RefundResult{}, errors.New("timeout"))

		_, err := svc.RefundLateFeePayment(ctx, "txn_123", 2.0)
		assert.ErrorIs(t, err, library.ErrPaymentFailed)
	})

	t.Run("gateway decline propagates its message", func(t *testing.T) {
		svc, _, gateway := newTestService(t)
		gateway.EXPECT().
			RefundPayment(ctx, "txn_999", 2.0).
			Return(library.RefundResult{Approved: false, Message: "Transaction not found: txn_999"}, nil)

		_, err := svc.RefundLateFeePayment(ctx, "txn_999", 2.0)
		var declined *library.PaymentDeclinedError
		assert.ErrorAs(t, err, &declined)
		assert.Contains(t, declined.Reason, "Transaction not found")
	})
}
