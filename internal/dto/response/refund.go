package response

import (
	"time"

	"library-booking/internal/data/entity"
)

type RefundResponse struct {
	ID             string                    `json:"id"`
	BookingID      string                    `json:"booking_id"`
	OrderID        string                    `json:"order_id,omitempty"`
	UserID         string                    `json:"user_id"`
	Reason         string                    `json:"reason"`
	RefundPercent  int                       `json:"refund_percent"`
	ExpectedAmount float64                   `json:"expected_amount"`
	RefundedAmount *float64                  `json:"refunded_amount,omitempty"`
	RefundTo       *entity.RefundDestination `json:"refund_to,omitempty"`
	Status         entity.RefundStatus       `json:"status"`
	AdminNote      *string                   `json:"admin_note,omitempty"`
	ProcessedAt    *time.Time                `json:"processed_at,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

func RefundToResponse(refund *entity.RefundRequest) RefundResponse {
	return RefundResponse{
		ID:             refund.ID.String(),
		BookingID:      refund.BookingID.String(),
		UserID:         refund.UserID.String(),
		Reason:         refund.Reason,
		RefundPercent:  refund.RefundPercent,
		ExpectedAmount: refund.ExpectedAmount,
		RefundedAmount: refund.RefundedAmount,
		RefundTo:       refund.RefundTo,
		Status:         refund.Status,
		AdminNote:      refund.AdminNote,
		ProcessedAt:    refund.ProcessedAt,
		CreatedAt:      refund.CreatedAt,
	}
}
