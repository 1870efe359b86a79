package payment

import (
	"context"
	"fmt"
	"math"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"librarysvc/internal/library"
)

// Midtrans charges and refunds late fees through the Midtrans Core API.
// Amounts are converted to the gateway's smallest currency unit. The order
// id we mint doubles as the transaction id handed back to the service, so
// refunds can reference it directly.
type Midtrans struct {
	client coreapi.Client
	clock  library.Clock
}

func NewMidtrans(serverKey string, production bool, clock library.Clock) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client coreapi.Client
	client.New(serverKey, env)
	return &Midtrans{client: client, clock: clock}
}

func (g *Midtrans) ProcessPayment(_ context.Context, patronID string, amount float64, description string) (library.PaymentResult, error) {
	if amount <= 0 {
		return library.PaymentResult{
			Approved: false,
			Message:  "Invalid amount: must be greater than 0",
		}, nil
	}

	orderID := fmt.Sprintf("txn_%s_%d", patronID, g.clock.Now().UnixNano())
	gross := toSmallestUnit(amount)

	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeBankTransfer,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		BankTransfer: &coreapi.BankTransferDetails{
			Bank: midtrans.BankBca,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    orderID,
				Price: gross,
				Qty:   1,
				Name:  truncate(description, 50),
			},
		},
	}

	resp, chargeErr := g.client.ChargeTransaction(req)
	if chargeErr != nil {
		return library.PaymentResult{}, chargeErr
	}

	switch resp.TransactionStatus {
	case "capture", "settlement", "pending":
		return library.PaymentResult{
			Approved:      true,
			TransactionID: orderID,
			Message:       resp.StatusMessage,
		}, nil
	default:
		return library.PaymentResult{
			Approved: false,
			Message:  fmt.Sprintf("Payment declined: %s", resp.StatusMessage),
		}, nil
	}
}

func (g *Midtrans) RefundPayment(_ context.Context, transactionID string, amount float64) (library.RefundResult, error) {
	req := &coreapi.RefundReq{
		Amount: toSmallestUnit(amount),
		Reason: "Late fee refund",
	}

	resp, refundErr := g.client.RefundTransaction(transactionID, req)
	if refundErr != nil {
		return library.RefundResult{}, refundErr
	}

	if resp.StatusCode != "200" {
		return library.RefundResult{
			Approved: false,
			Message:  fmt.Sprintf("Refund declined: %s", resp.StatusMessage),
		}, nil
	}
	return library.RefundResult{
		Approved: true,
		RefundID: resp.RefundKey,
		Message:  fmt.Sprintf("Refund of $%.2f processed successfully. Refund ID: %s", amount, resp.RefundKey),
	}, nil
}

func toSmallestUnit(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
