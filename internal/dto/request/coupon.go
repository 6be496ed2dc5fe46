package request

type CouponRequest struct {
	Code          string   `json:"code" validate:"required,min=3,max=50"`
	Description   *string  `json:"description,omitempty"`
	DiscountType  string   `json:"discount_type" validate:"required,oneof=percentage flat"`
	DiscountValue float64  `json:"discount_value" validate:"gt=0"`
	MinAmount     float64  `json:"min_amount" validate:"gte=0"`
	MaxDiscount   *float64 `json:"max_discount,omitempty" validate:"omitempty,gt=0"`
	UsageLimit    *int     `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	ValidFrom     string   `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidUntil    string   `json:"valid_until" validate:"required,datetime=2006-01-02"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

type ValidateCouponRequest struct {
	Code   string  `json:"code" validate:"required,max=50"`
	Amount float64 `json:"amount" validate:"gt=0"`
}
