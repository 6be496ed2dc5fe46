package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCash   PaymentMethod = "cash"
)

type Payment struct {
	Base
	BookingID     *uuid.UUID    `db:"booking_id"`
	UserID        uuid.UUID     `db:"user_id"`
	Method        PaymentMethod `db:"method"`
	Amount        float64       `db:"amount"`
	Status        PaymentStatus `db:"status"`
	TransactionID *string       `db:"transaction_id"`
}

// GatewaySetting holds processor credentials. They are stored for the
// front-end checkout widget only, the service never calls a processor.
type GatewaySetting struct {
	Provider  string    `db:"provider"`
	KeyID     string    `db:"key_id"`
	KeySecret string    `db:"key_secret"`
	Mode      string    `db:"mode"`
	IsActive  bool      `db:"is_active"`
	UpdatedAt time.Time `db:"updated_at"`
}
