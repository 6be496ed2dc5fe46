package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/pricing"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RefundService interface {
	CreateRefundRequest(ctx context.Context, userID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error)
	GetUserRefunds(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error)

	// Admin
	GetRefunds(ctx context.Context, status string, req request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error)
	ProcessRefund(ctx context.Context, adminID uuid.UUID, req *request.ProcessRefundRequest) (*response.RefundResponse, error)
}

type refundService struct {
	repo         *repository.Repository
	notification NotificationService
	audit        AuditService
	log          *zap.Logger
	now          func() time.Time
}

func NewRefundService(repo *repository.Repository, notification NotificationService, audit AuditService, log *zap.Logger) RefundService {
	return &refundService{
		repo:         repo,
		notification: notification,
		audit:        audit,
		log:          log.With(zap.String("service", "refund")),
		now:          utils.Now,
	}
}

func (s *refundService) CreateRefundRequest(ctx context.Context, userID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s", req.BookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil || booking.UserID != userID {
		return nil, fmt.Errorf("booking %s not found", req.BookingID)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking status is %s, cannot request a refund", booking.Status)
	}

	now := s.now()
	quote := pricing.CalculateRefund(booking.TotalAmount, booking.StartDate, now)
	if quote.DaysToStart <= 0 {
		return nil, fmt.Errorf("booking has already started, cannot request a refund")
	}

	open, err := s.repo.Refund.FindOpenByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to check open refund requests", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("check refund requests: %w", err)
	}
	if open != nil {
		return nil, fmt.Errorf("a refund request for booking %s already exists", booking.OrderID)
	}

	refund := &entity.RefundRequest{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:      booking.ID,
		UserID:         userID,
		Reason:         strings.TrimSpace(req.Reason),
		RefundPercent:  quote.Percent,
		ExpectedAmount: quote.Amount,
		Status:         entity.RefundStatusPending,
	}

	if err := s.repo.Refund.Create(ctx, refund); err != nil {
		s.log.Error("Failed to create refund request", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("create refund request: %w", err)
	}

	s.log.Info("Refund requested",
		zap.String("refund_id", refund.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int("percent", quote.Percent),
		zap.Float64("expected", quote.Amount),
	)

	s.notification.NotifyAdmins(ctx, entity.NotificationRefund, "New refund request",
		fmt.Sprintf("Order %s: %d%% refund (%.2f) requested.", booking.OrderID, quote.Percent, quote.Amount))

	resp := response.RefundToResponse(refund)
	resp.OrderID = booking.OrderID
	return &resp, nil
}

func (s *refundService) GetUserRefunds(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	refunds, err := s.repo.Refund.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user refunds", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get refund requests: %w", err)
	}

	total, err := s.repo.Refund.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user refunds", zap.Error(err))
		return nil, fmt.Errorf("count refund requests: %w", err)
	}

	return response.NewPaginatedResponse(s.describe(ctx, refunds), req.Page, req.Limit(), total), nil
}

// ==================== ADMIN METHODS ====================

func (s *refundService) GetRefunds(ctx context.Context, status string, req request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	var filter *entity.RefundStatus
	if status != "" {
		st := entity.RefundStatus(status)
		switch st {
		case entity.RefundStatusPending, entity.RefundStatusApproved, entity.RefundStatusRejected:
		default:
			return nil, fmt.Errorf("invalid refund status %s", status)
		}
		filter = &st
	}

	refunds, err := s.repo.Refund.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get refunds", zap.Error(err))
		return nil, fmt.Errorf("get refund requests: %w", err)
	}

	total, err := s.repo.Refund.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count refunds", zap.Error(err))
		return nil, fmt.Errorf("count refund requests: %w", err)
	}

	return response.NewPaginatedResponse(s.describe(ctx, refunds), req.Page, req.Limit(), total), nil
}

// ProcessRefund applies an admin decision. The request is claimed first with a
// conditional update, so a second attempt fails before any money moves.
func (s *refundService) ProcessRefund(ctx context.Context, adminID uuid.UUID, req *request.ProcessRefundRequest) (*response.RefundResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	refundID, err := uuid.Parse(req.RefundRequestID)
	if err != nil {
		return nil, fmt.Errorf("invalid refund request ID format %s", req.RefundRequestID)
	}

	existing, err := s.repo.Refund.FindByID(ctx, refundID)
	if err != nil {
		s.log.Error("Failed to find refund request", zap.Error(err), zap.String("refund_id", req.RefundRequestID))
		return nil, fmt.Errorf("find refund request: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("refund request %s not found", req.RefundRequestID)
	}
	if existing.Status != entity.RefundStatusPending {
		return nil, fmt.Errorf("refund request is already %s, cannot process again", existing.Status)
	}

	booking, err := s.repo.Booking.FindByID(ctx, existing.BookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", existing.BookingID.String()))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", existing.BookingID)
	}

	resolution := repository.RefundResolution{
		Status:      entity.RefundStatusRejected,
		AdminNote:   utils.StringPtr(strings.TrimSpace(utils.Deref(req.AdminNote))),
		ProcessedBy: adminID,
	}
	var payment *entity.Payment
	if req.Action == "approve" {
		// a booking the library cancelled can still be refunded while its payment stands
		if booking.Status != entity.BookingStatusConfirmed && booking.Status != entity.BookingStatusCancelled {
			return nil, fmt.Errorf("booking status is %s, cannot approve refund", booking.Status)
		}
		payment, err = s.repo.Payment.FindByBookingID(ctx, booking.ID)
		if err != nil {
			s.log.Error("Failed to find payment", zap.Error(err), zap.String("booking_id", booking.ID.String()))
			return nil, fmt.Errorf("find payment: %w", err)
		}
		if payment == nil {
			return nil, fmt.Errorf("payment for booking %s not found", booking.OrderID)
		}
		if payment.Status != entity.PaymentStatusCompleted {
			return nil, fmt.Errorf("payment status is %s, cannot approve refund", payment.Status)
		}
		dest := entity.RefundToWallet
		if req.RefundTo != "" {
			dest = entity.RefundDestination(req.RefundTo)
		}
		amount := existing.ExpectedAmount
		resolution.Status = entity.RefundStatusApproved
		resolution.RefundedAmount = &amount
		resolution.RefundTo = &dest
	}

	refund, err := s.repo.Refund.Resolve(ctx, refundID, resolution)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return nil, fmt.Errorf("refund request %s already processed, cannot process again", req.RefundRequestID)
		}
		s.log.Error("Failed to resolve refund request", zap.Error(err), zap.String("refund_id", req.RefundRequestID))
		return nil, fmt.Errorf("resolve refund request: %w", err)
	}

	if refund.Status == entity.RefundStatusApproved {
		if err := s.settle(ctx, refund, booking, payment); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, "refund."+req.Action, "refund_request", refund.ID.String(), map[string]any{
		"booking_id": booking.ID.String(),
		"order_id":   booking.OrderID,
		"amount":     refund.RefundedAmount,
		"refund_to":  refund.RefundTo,
		"admin_note": refund.AdminNote,
	})

	if refund.Status == entity.RefundStatusApproved {
		s.notification.Notify(ctx, refund.UserID, entity.NotificationRefund, "Refund approved",
			fmt.Sprintf("%.2f for order %s will be returned to your %s.", *refund.RefundedAmount, booking.OrderID, *refund.RefundTo))
	} else {
		s.notification.Notify(ctx, refund.UserID, entity.NotificationRefund, "Refund rejected",
			fmt.Sprintf("Your refund request for order %s was rejected.", booking.OrderID))
	}

	s.log.Info("Refund processed",
		zap.String("refund_id", refund.ID.String()),
		zap.String("status", string(refund.Status)),
		zap.String("admin_id", adminID.String()),
	)

	resp := response.RefundToResponse(refund)
	resp.OrderID = booking.OrderID
	return &resp, nil
}

// settle moves the money for an approved refund. The payment is claimed
// before the wallet is credited, and any failure puts the request back to
// pending so it can be retried.
func (s *refundService) settle(ctx context.Context, refund *entity.RefundRequest, booking *entity.Booking, payment *entity.Payment) error {
	amount := *refund.RefundedAmount

	reopen := func() {
		if err := s.repo.Refund.Reopen(context.WithoutCancel(ctx), refund.ID); err != nil {
			s.log.Error("Failed to reopen refund request", zap.Error(err), zap.String("refund_id", refund.ID.String()))
		}
	}

	err := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, nil)
	if err != nil {
		reopen()
		if errors.Is(err, repository.ErrStatusChanged) {
			return fmt.Errorf("payment for order %s was already refunded, cannot refund again", booking.OrderID)
		}
		s.log.Error("Failed to mark payment refunded", zap.Error(err), zap.String("payment_id", payment.ID.String()))
		return fmt.Errorf("refund payment: %w", err)
	}

	if *refund.RefundTo == entity.RefundToWallet && amount > 0 {
		if _, err := s.repo.Wallet.Credit(ctx, refund.UserID, amount, &booking.OrderID, "Refund "+booking.OrderID); err != nil {
			s.log.Error("Failed to credit refund, reopening request",
				zap.Error(err),
				zap.String("refund_id", refund.ID.String()),
				zap.Float64("amount", amount),
			)
			if uerr := s.repo.Payment.UpdateStatus(context.WithoutCancel(ctx), payment.ID,
				entity.PaymentStatusRefunded, entity.PaymentStatusCompleted, nil); uerr != nil {
				s.log.Error("Failed to restore payment after refund failure", zap.Error(uerr), zap.String("payment_id", payment.ID.String()))
			}
			reopen()
			return fmt.Errorf("credit refund: %w", err)
		}
	}

	if booking.Status == entity.BookingStatusConfirmed {
		err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusConfirmed, entity.BookingStatusCancelled)
		if err != nil && !errors.Is(err, repository.ErrStatusChanged) {
			s.log.Error("Failed to cancel refunded booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		}
	}
	return nil
}

func (s *refundService) describe(ctx context.Context, refunds []*entity.RefundRequest) []response.RefundResponse {
	out := make([]response.RefundResponse, len(refunds))
	for i, refund := range refunds {
		out[i] = response.RefundToResponse(refund)
		if booking, _ := s.repo.Booking.FindByID(ctx, refund.BookingID); booking != nil {
			out[i].OrderID = booking.OrderID
		}
	}
	return out
}
