package request

type RechargeWalletRequest struct {
	Amount        float64 `json:"amount" validate:"gt=0,max=100000"`
	TransactionID string  `json:"transaction_id" validate:"required,max=100"`
}

// AdjustWalletRequest carries a signed amount: positive credits, negative debits
type AdjustWalletRequest struct {
	Amount      float64 `json:"amount" validate:"required,min=-100000,max=100000"`
	Description string  `json:"description" validate:"required,max=255"`
}

type UpdatePaymentStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=completed failed"`
	TransactionID *string `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
}

type PaymentFilterRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Method string `json:"method" validate:"omitempty,oneof=wallet online cash"`
}

// GatewaySettingRequest leaves the stored secret untouched when KeySecret is empty
type GatewaySettingRequest struct {
	KeyID     string `json:"key_id" validate:"required,max=255"`
	KeySecret string `json:"key_secret" validate:"max=255"`
	Mode      string `json:"mode" validate:"required,oneof=test live"`
	IsActive  bool   `json:"is_active"`
}
