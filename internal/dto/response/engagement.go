package response

import (
	"encoding/json"
	"time"

	"library-booking/internal/data/entity"
)

type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      entity.NotificationType `json:"type"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}

type TicketResponse struct {
	ID        string                `json:"id"`
	Reference string                `json:"reference"`
	UserID    string                `json:"user_id"`
	Subject   string                `json:"subject"`
	Category  string                `json:"category"`
	Priority  entity.TicketPriority `json:"priority"`
	Status    entity.TicketStatus   `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type TicketMessageResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	IsStaff   bool      `json:"is_staff"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketDetailResponse struct {
	TicketResponse
	Messages []TicketMessageResponse `json:"messages"`
}

type AuditLogResponse struct {
	ID         string          `json:"id"`
	ActorID    *string         `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type DashboardResponse struct {
	TotalMembers   int64                  `json:"total_members"`
	TotalSeats     int64                  `json:"total_seats"`
	OccupiedSeats  int64                  `json:"occupied_seats"`
	ActiveBookings int64                  `json:"active_bookings"`
	PendingRefunds int64                  `json:"pending_refunds"`
	OpenTickets    int64                  `json:"open_tickets"`
	TotalRevenue   float64                `json:"total_revenue"`
	RevenueToday   float64                `json:"revenue_today"`
	Revenue        []DailyRevenueResponse `json:"revenue"`
}

type DailyRevenueResponse struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Payments int64   `json:"payments"`
}

func NotificationToResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func TicketToResponse(t *entity.SupportTicket) TicketResponse {
	return TicketResponse{
		ID:        t.ID.String(),
		Reference: t.Reference,
		UserID:    t.UserID.String(),
		Subject:   t.Subject,
		Category:  t.Category,
		Priority:  t.Priority,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func TicketMessageToResponse(m *entity.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		ID:        m.ID.String(),
		SenderID:  m.SenderID.String(),
		IsStaff:   m.IsStaff,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func AuditLogToResponse(a *entity.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         a.ID.String(),
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Details:    a.Details,
		IPAddress:  a.IPAddress,
		CreatedAt:  a.CreatedAt,
	}

	if a.ActorID != nil {
		id := a.ActorID.String()
		resp.ActorID = &id
	}

	return resp
}
