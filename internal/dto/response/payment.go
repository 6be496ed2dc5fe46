package response

import (
	"strings"
	"time"

	"library-booking/internal/data/entity"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     *string              `json:"booking_id,omitempty"`
	UserID        string               `json:"user_id"`
	Method        entity.PaymentMethod `json:"method"`
	Amount        float64              `json:"amount"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type GatewaySettingResponse struct {
	Provider  string    `json:"provider"`
	KeyID     string    `json:"key_id"`
	KeySecret string    `json:"key_secret"`
	Mode      string    `json:"mode"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WalletResponse struct {
	Balance      float64                     `json:"balance"`
	Currency     string                      `json:"currency"`
	Transactions []WalletTransactionResponse `json:"transactions"`
}

type WalletTransactionResponse struct {
	ID           string               `json:"id"`
	Type         entity.WalletTxnType `json:"type"`
	Amount       float64              `json:"amount"`
	BalanceAfter float64              `json:"balance_after"`
	Reference    *string              `json:"reference,omitempty"`
	Description  string               `json:"description"`
	CreatedAt    time.Time            `json:"created_at"`
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            payment.ID.String(),
		UserID:        payment.UserID.String(),
		Method:        payment.Method,
		Amount:        payment.Amount,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
	}

	if payment.BookingID != nil {
		id := payment.BookingID.String()
		resp.BookingID = &id
	}

	return resp
}

// GatewaySettingToResponse never exposes the stored secret
func GatewaySettingToResponse(setting *entity.GatewaySetting) GatewaySettingResponse {
	return GatewaySettingResponse{
		Provider:  setting.Provider,
		KeyID:     setting.KeyID,
		KeySecret: MaskSecret(setting.KeySecret),
		Mode:      setting.Mode,
		IsActive:  setting.IsActive,
		UpdatedAt: setting.UpdatedAt,
	}
}

// MaskSecret keeps the last four characters visible
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func WalletTransactionToResponse(txn *entity.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:           txn.ID.String(),
		Type:         txn.Type,
		Amount:       txn.Amount,
		BalanceAfter: txn.BalanceAfter,
		Reference:    txn.Reference,
		Description:  txn.Description,
		CreatedAt:    txn.CreatedAt,
	}
}
