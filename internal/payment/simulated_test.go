package payment

import (
	"context"
	"strings"
	"testing"

	"librarysvc/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated_ProcessPayment(t *testing.T) {
	ctx := context.Background()
	g := NewSimulated(testutil.FixedClock{T: testutil.Now})

	t.Run("charges and mints a txn id", func(t *testing.T) {
		res, err := g.ProcessPayment(ctx, "123456", 5.0, "Late fees for 'The Great Gatsby'")
		require.NoError(t, err)
		assert.True(t, res.Approved)
		assert.True(t, strings.HasPrefix(res.TransactionID, "txn_123456_"))
		assert.Contains(t, res.Message, "processed successfully")
	})

	t.Run("declines non-positive amount", func(t *testing.T) {
		for _, amount := range []float64{0, -3.0} {
			res, err := g.ProcessPayment(ctx, "123456", amount, "x")
			require.NoError(t, err)
			assert.False(t, res.Approved)
			assert.Contains(t, res.Message, "Invalid amount")
		}
	})
}

func TestSimulated_RefundPayment(t *testing.T) {
	ctx := context.Background()
	g := NewSimulated(testutil.FixedClock{T: testutil.Now})

	charged, err := g.ProcessPayment(ctx, "123456", 5.0, "fees")
	require.NoError(t, err)

	t.Run("refunds a known transaction", func(t *testing.T) {
		res, err := g.RefundPayment(ctx, charged.TransactionID, 5.0)
		require.NoError(t, err)
		assert.True(t, res.Approved)
		assert.True(t, strings.HasPrefix(res.RefundID, "refund_"+charged.TransactionID))
		assert.Contains(t, res.Message, "Refund of $5.00")
	})

	t.Run("declines unknown transaction", func(t *testing.T) {
		res, err := g.RefundPayment(ctx, "txn_unknown", 1.0)
		require.NoError(t, err)
		assert.False(t, res.Approved)
		assert.Contains(t, res.Message, "Transaction not found")
	})

	t.Run("declines refund above the original charge", func(t *testing.T) {
		res, err := g.RefundPayment(ctx, charged.TransactionID, 9.0)
		require.NoError(t, err)
		assert.False(t, res.Approved)
		assert.Contains(t, res.Message, "exceeds original payment")
	})

	t.Run("declines non-positive amount", func(t *testing.T) {
		res, err := g.RefundPayment(ctx, charged.TransactionID, 0)
		require.NoError(t, err)
		assert.False(t, res.Approved)
	})
}
