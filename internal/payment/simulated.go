package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"librarysvc/internal/library"
)

// Simulated is an in-process payment gateway for local development and
// testing. Charges are held in memory so refunds can be validated against
// the original payment.
type Simulated struct {
	mu      sync.Mutex
	clock   library.Clock
	charged map[string]float64
}

func NewSimulated(clock library.Clock) *Simulated {
	return &Simulated{
		clock:   clock,
		charged: make(map[string]float64),
	}
}

func (g *Simulated) ProcessPayment(_ context.Context, patronID string, amount float64, description string) (library.PaymentResult, error) {
	if amount <= 0 {
		return library.PaymentResult{
			Approved: false,
			Message:  "Invalid amount: must be greater than 0",
		}, nil
	}

	txnID := fmt.Sprintf("txn_%s_%s", patronID, uuid.New().String()[:8])

	g.mu.Lock()
	g.charged[txnID] = amount
	g.mu.Unlock()

	return library.PaymentResult{
		Approved:      true,
		TransactionID: txnID,
		Message:       fmt.Sprintf("Payment of $%.2f processed successfully (%s)", amount, description),
	}, nil
}

func (g *Simulated) RefundPayment(_ context.Context, transactionID string, amount float64) (library.RefundResult, error) {
	if amount <= 0 {
		return library.RefundResult{
			Approved: false,
			Message:  "Invalid refund amount: must be greater than 0",
		}, nil
	}

	g.mu.Lock()
	original, ok := g.charged[transactionID]
	g.mu.Unlock()

	if !ok {
		return library.RefundResult{
			Approved: false,
			Message:  fmt.Sprintf("Transaction not found: %s", transactionID),
		}, nil
	}
	if amount > original {
		return library.RefundResult{
			Approved: false,
			Message:  fmt.Sprintf("Refund amount $%.2f exceeds original payment of $%.2f", amount, original),
		}, nil
	}

	refundID := fmt.Sprintf("refund_%s_%d", transactionID, g.clock.Now().Unix())
	return library.RefundResult{
		Approved: true,
		RefundID: refundID,
		Message:  fmt.Sprintf("Refund of $%.2f processed successfully. Refund ID: %s", amount, refundID),
	}, nil
}
