package request

// SendNotificationRequest targets one member, or every active member when UserID is nil
type SendNotificationRequest struct {
	UserID  *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Title   string  `json:"title" validate:"required,max=150"`
	Message string  `json:"message" validate:"required,max=2000"`
	Type    string  `json:"type,omitempty" validate:"omitempty,oneof=general booking refund payment support"`
}

type CreateTicketRequest struct {
	Subject  string `json:"subject" validate:"required,max=200"`
	Category string `json:"category" validate:"max=50"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Message  string `json:"message" validate:"required,max=5000"`
}

type TicketMessageRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type AuditFilterRequest struct {
	PaginatedRequest
	EntityType string `json:"entity_type" validate:"max=50"`
	Action     string `json:"action" validate:"max=50"`
	ActorID    string `json:"actor_id" validate:"omitempty,uuid"`
	From       string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}
