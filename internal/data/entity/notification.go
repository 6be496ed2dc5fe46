package entity

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationGeneral NotificationType = "general"
	NotificationBooking NotificationType = "booking"
	NotificationRefund  NotificationType = "refund"
	NotificationPayment NotificationType = "payment"
	NotificationSupport NotificationType = "support"
)

type Notification struct {
	BaseSimple
	UserID  uuid.UUID        `db:"user_id"`
	Title   string           `db:"title"`
	Message string           `db:"message"`
	Type    NotificationType `db:"type"`
	IsRead  bool             `db:"is_read"`
}
