package request

type CreateRefundRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"required,min=5,max=1000"`
}

type ProcessRefundRequest struct {
	RefundRequestID string  `json:"refund_request_id" validate:"required,uuid"`
	Action          string  `json:"action" validate:"required,oneof=approve reject"`
	AdminNote       *string `json:"admin_note,omitempty" validate:"omitempty,max=1000"`
	RefundTo        string  `json:"refund_to,omitempty" validate:"omitempty,oneof=wallet source"`
}
