package entity

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusApproved RefundStatus = "approved"
	RefundStatusRejected RefundStatus = "rejected"
)

type RefundDestination string

const (
	RefundToWallet RefundDestination = "wallet"
	RefundToSource RefundDestination = "source"
)

type RefundRequest struct {
	Base
	BookingID      uuid.UUID          `db:"booking_id"`
	UserID         uuid.UUID          `db:"user_id"`
	Reason         string             `db:"reason"`
	RefundPercent  int                `db:"refund_percent"`
	ExpectedAmount float64            `db:"expected_amount"`
	RefundedAmount *float64           `db:"refunded_amount"`
	RefundTo       *RefundDestination `db:"refund_to"`
	Status         RefundStatus       `db:"status"`
	AdminNote      *string            `db:"admin_note"`
	ProcessedBy    *uuid.UUID         `db:"processed_by"`
	ProcessedAt    *time.Time         `db:"processed_at"`
}
