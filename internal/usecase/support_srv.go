package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SupportService interface {
	// Member
	CreateTicket(ctx context.Context, userID uuid.UUID, req *request.CreateTicketRequest) (*response.TicketDetailResponse, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	GetUserTicket(ctx context.Context, userID uuid.UUID, ticketID string) (*response.TicketDetailResponse, error)
	AddUserMessage(ctx context.Context, userID uuid.UUID, ticketID string, req *request.TicketMessageRequest) (*response.TicketMessageResponse, error)

	// Admin
	GetTickets(ctx context.Context, status string, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	GetTicket(ctx context.Context, ticketID string) (*response.TicketDetailResponse, error)
	UpdateTicketStatus(ctx context.Context, ticketID string, req *request.UpdateTicketStatusRequest) (*response.TicketResponse, error)
	AddStaffMessage(ctx context.Context, staffID uuid.UUID, ticketID string, req *request.TicketMessageRequest) (*response.TicketMessageResponse, error)
}

type supportService struct {
	repo         *repository.Repository
	notification NotificationService
	audit        AuditService
	log          *zap.Logger
}

func NewSupportService(repo *repository.Repository, notification NotificationService, audit AuditService, log *zap.Logger) SupportService {
	return &supportService{
		repo:         repo,
		notification: notification,
		audit:        audit,
		log:          log.With(zap.String("service", "support")),
	}
}

func (s *supportService) CreateTicket(ctx context.Context, userID uuid.UUID, req *request.CreateTicketRequest) (*response.TicketDetailResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	priority := entity.TicketPriorityMedium
	if req.Priority != "" {
		priority = entity.TicketPriority(req.Priority)
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = "general"
	}

	now := time.Now()
	ticket := &entity.SupportTicket{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference: utils.GenerateTicketReference(),
		UserID:    userID,
		Subject:   strings.TrimSpace(req.Subject),
		Category:  category,
		Priority:  priority,
		Status:    entity.TicketStatusOpen,
	}
	first := newTicketMessage(ticket.ID, userID, false, req.Message)

	if err := s.repo.Support.CreateTicket(ctx, ticket, first); err != nil {
		s.log.Error("Failed to create ticket", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.log.Info("Support ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("reference", ticket.Reference),
		zap.String("priority", string(priority)),
	)
	s.notification.NotifyAdmins(ctx, entity.NotificationSupport, "New support ticket",
		fmt.Sprintf("%s: %s", ticket.Reference, ticket.Subject))

	return &response.TicketDetailResponse{
		TicketResponse: response.TicketToResponse(ticket),
		Messages:       []response.TicketMessageResponse{response.TicketMessageToResponse(first)},
	}, nil
}

func (s *supportService) GetUserTickets(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	return s.list(ctx, repository.TicketFilter{UserID: &userID}, req)
}

func (s *supportService) GetUserTicket(ctx context.Context, userID uuid.UUID, ticketID string) (*response.TicketDetailResponse, error) {
	ticket, err := s.findOwned(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

func (s *supportService) AddUserMessage(ctx context.Context, userID uuid.UUID, ticketID string, req *request.TicketMessageRequest) (*response.TicketMessageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ticket, err := s.findOwned(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}

	msg, err := s.addMessage(ctx, ticket, userID, false, req.Body)
	if err != nil {
		return nil, err
	}

	// a member reply reopens a resolved ticket
	if ticket.Status == entity.TicketStatusResolved {
		if err := s.repo.Support.UpdateTicketStatus(ctx, ticket.ID, entity.TicketStatusOpen); err != nil {
			s.log.Warn("Failed to reopen ticket", zap.Error(err), zap.String("ticket_id", ticketID))
		}
	}

	s.notification.NotifyAdmins(ctx, entity.NotificationSupport, "Ticket reply",
		fmt.Sprintf("New reply on %s: %s", ticket.Reference, ticket.Subject))
	return msg, nil
}

// ==================== ADMIN METHODS ====================

func (s *supportService) GetTickets(ctx context.Context, status string, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	var filter repository.TicketFilter
	if status != "" {
		st, err := parseTicketStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	return s.list(ctx, filter, req)
}

func (s *supportService) GetTicket(ctx context.Context, ticketID string) (*response.TicketDetailResponse, error) {
	ticket, err := s.find(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, ticket)
}

func (s *supportService) UpdateTicketStatus(ctx context.Context, ticketID string, req *request.UpdateTicketStatusRequest) (*response.TicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ticket, err := s.find(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	status := entity.TicketStatus(req.Status)
	if status == ticket.Status {
		return nil, fmt.Errorf("ticket is already %s", status)
	}

	if err := s.repo.Support.UpdateTicketStatus(ctx, ticket.ID, status); err != nil {
		s.log.Error("Failed to update ticket status", zap.Error(err), zap.String("ticket_id", ticketID))
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	previous := ticket.Status
	ticket.Status = status
	ticket.UpdatedAt = time.Now()

	s.audit.Record(ctx, "ticket.status", "support_ticket", ticketID, map[string]any{
		"reference": ticket.Reference,
		"from":      previous,
		"to":        status,
	})
	s.notification.Notify(ctx, ticket.UserID, entity.NotificationSupport, "Ticket updated",
		fmt.Sprintf("Ticket %s is now %s.", ticket.Reference, strings.ReplaceAll(string(status), "_", " ")))

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *supportService) AddStaffMessage(ctx context.Context, staffID uuid.UUID, ticketID string, req *request.TicketMessageRequest) (*response.TicketMessageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ticket, err := s.find(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	msg, err := s.addMessage(ctx, ticket, staffID, true, req.Body)
	if err != nil {
		return nil, err
	}

	if ticket.Status == entity.TicketStatusOpen {
		if err := s.repo.Support.UpdateTicketStatus(ctx, ticket.ID, entity.TicketStatusInProgress); err != nil {
			s.log.Warn("Failed to move ticket in progress", zap.Error(err), zap.String("ticket_id", ticketID))
		}
	}

	s.audit.Record(ctx, "ticket.reply", "support_ticket", ticketID, map[string]any{"reference": ticket.Reference})
	s.notification.Notify(ctx, ticket.UserID, entity.NotificationSupport, "Support replied",
		fmt.Sprintf("There is a new reply on ticket %s.", ticket.Reference))
	return msg, nil
}

// ==================== HELPER METHODS ====================

func newTicketMessage(ticketID, senderID uuid.UUID, staff bool, body string) *entity.TicketMessage {
	return &entity.TicketMessage{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		TicketID: ticketID,
		SenderID: senderID,
		IsStaff:  staff,
		Body:     strings.TrimSpace(body),
	}
}

func parseTicketStatus(status string) (entity.TicketStatus, error) {
	st := entity.TicketStatus(status)
	switch st {
	case entity.TicketStatusOpen, entity.TicketStatusInProgress, entity.TicketStatusResolved, entity.TicketStatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("invalid ticket status %s", status)
}

func (s *supportService) addMessage(ctx context.Context, ticket *entity.SupportTicket, senderID uuid.UUID, staff bool, body string) (*response.TicketMessageResponse, error) {
	if ticket.Status == entity.TicketStatusClosed {
		return nil, fmt.Errorf("ticket %s is closed, cannot add messages", ticket.Reference)
	}

	msg := newTicketMessage(ticket.ID, senderID, staff, body)
	if err := s.repo.Support.AddMessage(ctx, msg); err != nil {
		s.log.Error("Failed to add ticket message", zap.Error(err), zap.String("ticket_id", ticket.ID.String()))
		return nil, fmt.Errorf("add ticket message: %w", err)
	}

	resp := response.TicketMessageToResponse(msg)
	return &resp, nil
}

func (s *supportService) list(ctx context.Context, filter repository.TicketFilter, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	tickets, err := s.repo.Support.FindTickets(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get tickets", zap.Error(err))
		return nil, fmt.Errorf("get tickets: %w", err)
	}

	total, err := s.repo.Support.CountTickets(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count tickets", zap.Error(err))
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(tickets, response.TicketToResponse),
		req.Page, req.Limit(), total,
	), nil
}

func (s *supportService) detail(ctx context.Context, ticket *entity.SupportTicket) (*response.TicketDetailResponse, error) {
	messages, err := s.repo.Support.FindMessages(ctx, ticket.ID)
	if err != nil {
		s.log.Error("Failed to get ticket messages", zap.Error(err), zap.String("ticket_id", ticket.ID.String()))
		return nil, fmt.Errorf("get ticket messages: %w", err)
	}

	return &response.TicketDetailResponse{
		TicketResponse: response.TicketToResponse(ticket),
		Messages:       response.MapSlice(messages, response.TicketMessageToResponse),
	}, nil
}

func (s *supportService) find(ctx context.Context, ticketID string) (*entity.SupportTicket, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket ID format %s", ticketID)
	}

	ticket, err := s.repo.Support.FindTicketByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find ticket", zap.Error(err), zap.String("ticket_id", ticketID))
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s not found", ticketID)
	}
	return ticket, nil
}

func (s *supportService) findOwned(ctx context.Context, userID uuid.UUID, ticketID string) (*entity.SupportTicket, error) {
	ticket, err := s.find(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, fmt.Errorf("ticket %s not found", ticketID)
	}
	return ticket, nil
}
