package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	g := NewGenerator("City Library", "INR")

	var buf bytes.Buffer
	err := g.Render(&buf, Receipt{
		PaymentID:     "7f1c2d9e-0000-4000-8000-000000000001",
		OrderID:       "BK-20260101-ABCDEFGH",
		IssuedAt:      time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC),
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		Description:   "Monthly plan, seat A-12",
		Period:        "2026-01-05 to 2026-02-03",
		Method:        "wallet",
		Status:        "completed",
		Subtotal:      1000,
		Discount:      100,
		GST:           162,
		Total:         1062,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestRender_WalletRecharge(t *testing.T) {
	g := NewGenerator("City Library", "INR")

	var buf bytes.Buffer
	err := g.Render(&buf, Receipt{
		PaymentID:   "7f1c2d9e-0000-4000-8000-000000000002",
		IssuedAt:    time.Now(),
		Description: "Wallet recharge",
		Method:      "online",
		Status:      "completed",
		Subtotal:    500,
		Total:       500,
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
