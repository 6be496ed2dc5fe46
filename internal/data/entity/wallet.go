package entity

import (
	"time"

	"github.com/google/uuid"
)

type WalletTxnType string

const (
	WalletTxnCredit WalletTxnType = "credit"
	WalletTxnDebit  WalletTxnType = "debit"
)

type Wallet struct {
	UserID    uuid.UUID `db:"user_id"`
	Balance   float64   `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

// WalletTransaction is one ledger row; BalanceAfter is the wallet balance
// right after the change was applied.
type WalletTransaction struct {
	BaseSimple
	UserID       uuid.UUID     `db:"user_id"`
	Type         WalletTxnType `db:"type"`
	Amount       float64       `db:"amount"`
	BalanceAfter float64       `db:"balance_after"`
	Reference    *string       `db:"reference"`
	Description  string        `db:"description"`
}
