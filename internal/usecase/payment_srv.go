package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/receipt"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var providerRegex = regexp.MustCompile(`^[a-z0-9_-]{2,50}$`)

type PaymentService interface {
	GetUserPayments(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	// Receipt renders a PDF for the payment owner, or for any admin
	Receipt(ctx context.Context, userID uuid.UUID, isAdmin bool, paymentID string) ([]byte, error)

	// Admin
	GetPayments(ctx context.Context, req *request.PaymentFilterRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, req *request.UpdatePaymentStatusRequest) (*response.PaymentResponse, error)
	GetGateways(ctx context.Context) ([]response.GatewaySettingResponse, error)
	UpdateGateway(ctx context.Context, provider string, req *request.GatewaySettingRequest) (*response.GatewaySettingResponse, error)
}

type paymentService struct {
	repo         *repository.Repository
	receipts     *receipt.Generator
	notification NotificationService
	audit        AuditService
	log          *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	receipts *receipt.Generator,
	notification NotificationService,
	audit AuditService,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:         repo,
		receipts:     receipts,
		notification: notification,
		audit:        audit,
		log:          log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) GetUserPayments(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	payments, err := s.repo.Payment.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user payments", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get payments: %w", err)
	}

	total, err := s.repo.Payment.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user payments", zap.Error(err))
		return nil, fmt.Errorf("count payments: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(payments, response.PaymentToResponse),
		req.Page, req.Limit(), total,
	), nil
}

func (s *paymentService) Receipt(ctx context.Context, userID uuid.UUID, isAdmin bool, paymentID string) ([]byte, error) {
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}

	data := receipt.Receipt{
		PaymentID:     payment.ID.String(),
		IssuedAt:      payment.CreatedAt,
		Description:   "Wallet recharge",
		Method:        string(payment.Method),
		Status:        string(payment.Status),
		TransactionID: utils.Deref(payment.TransactionID),
		Subtotal:      payment.Amount,
		Total:         payment.Amount,
	}

	if user, err := s.repo.User.FindByID(ctx, payment.UserID); err == nil && user != nil {
		data.CustomerName = user.Name
		data.CustomerEmail = user.Email
	}

	if payment.BookingID != nil {
		booking, err := s.repo.Booking.FindByID(ctx, *payment.BookingID)
		if err != nil {
			s.log.Error("Failed to load booking for receipt", zap.Error(err), zap.String("payment_id", paymentID))
			return nil, fmt.Errorf("find booking: %w", err)
		}
		if booking != nil {
			data.OrderID = booking.OrderID
			data.Period = booking.StartDate.Format(utils.DateLayout) + " to " + booking.EndDate.Format(utils.DateLayout)
			data.Subtotal = booking.Subtotal
			data.Discount = booking.Discount
			data.GST = booking.GST
			data.Total = booking.TotalAmount
			data.Description = "Seat booking"

			plan, _ := s.repo.Plan.FindByID(ctx, booking.PlanID)
			seat, _ := s.repo.Seat.FindByID(ctx, booking.SeatID)
			if plan != nil && seat != nil {
				data.Description = fmt.Sprintf("%s, seat %s", plan.Name, seat.SeatNumber)
			}
		}
	}

	var buf bytes.Buffer
	if err := s.receipts.Render(&buf, data); err != nil {
		s.log.Error("Failed to render receipt", zap.Error(err), zap.String("payment_id", paymentID))
		return nil, err
	}
	return buf.Bytes(), nil
}

// ==================== ADMIN METHODS ====================

func (s *paymentService) GetPayments(ctx context.Context, req *request.PaymentFilterRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var filter repository.PaymentFilter
	if req.Status != "" {
		status := entity.PaymentStatus(req.Status)
		filter.Status = &status
	}
	if req.Method != "" {
		method := entity.PaymentMethod(req.Method)
		filter.Method = &method
	}

	payments, err := s.repo.Payment.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get payments", zap.Error(err))
		return nil, fmt.Errorf("get payments: %w", err)
	}

	total, err := s.repo.Payment.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count payments", zap.Error(err))
		return nil, fmt.Errorf("count payments: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(payments, response.PaymentToResponse),
		req.Page, req.Limit(), total,
	), nil
}

// UpdatePaymentStatus settles a pending booking payment, usually cash taken
// at the desk. Completing it confirms the booking, failing it cancels it.
func (s *paymentService) UpdatePaymentStatus(ctx context.Context, paymentID string, req *request.UpdatePaymentStatusRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != entity.PaymentStatusPending {
		return nil, fmt.Errorf("payment status is %s, cannot update", payment.Status)
	}
	if payment.BookingID == nil {
		return nil, fmt.Errorf("cannot update a wallet recharge payment")
	}

	booking, err := s.repo.Booking.FindByID(ctx, *payment.BookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("payment_id", paymentID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", payment.BookingID)
	}
	if booking.Status != entity.BookingStatusPending {
		return nil, fmt.Errorf("booking status is %s, cannot settle its payment", booking.Status)
	}

	status := entity.PaymentStatus(req.Status)
	bookingStatus := entity.BookingStatusConfirmed
	if status == entity.PaymentStatusFailed {
		bookingStatus = entity.BookingStatusCancelled
	}

	// the booking is claimed first so the expiry job cannot release it in between
	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusPending, bookingStatus); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, err
		}
		s.log.Error("Failed to update booking for payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(bookingStatus)),
		)
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if err := s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusPending, status, req.TransactionID); err != nil {
		s.log.Error("Failed to update payment status", zap.Error(err), zap.String("payment_id", paymentID))
		if rerr := s.repo.Booking.UpdateStatus(context.WithoutCancel(ctx), booking.ID, bookingStatus, entity.BookingStatusPending); rerr != nil {
			s.log.Error("Failed to restore booking after payment update failure", zap.Error(rerr), zap.String("booking_id", booking.ID.String()))
		}
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, err
		}
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	payment.Status = status
	if req.TransactionID != nil {
		payment.TransactionID = req.TransactionID
	}

	if bookingStatus == entity.BookingStatusCancelled && booking.CouponID != nil {
		if err := s.repo.Coupon.DecrementUsage(ctx, *booking.CouponID); err != nil {
			s.log.Warn("Failed to release coupon use", zap.Error(err), zap.String("coupon_id", booking.CouponID.String()))
		}
	}

	s.audit.Record(ctx, "payment.status", "payment", paymentID, map[string]any{
		"status":         status,
		"booking_id":     booking.ID.String(),
		"booking_status": bookingStatus,
	})

	if bookingStatus == entity.BookingStatusConfirmed {
		s.notification.Notify(ctx, payment.UserID, entity.NotificationPayment, "Payment received",
			fmt.Sprintf("Payment of %.2f received. Order %s is confirmed.", payment.Amount, booking.OrderID))
	} else {
		s.notification.Notify(ctx, payment.UserID, entity.NotificationPayment, "Payment failed",
			fmt.Sprintf("Payment for order %s failed and the booking was cancelled.", booking.OrderID))
	}

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetGateways(ctx context.Context) ([]response.GatewaySettingResponse, error) {
	settings, err := s.repo.Gateway.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get gateway settings", zap.Error(err))
		return nil, fmt.Errorf("get gateway settings: %w", err)
	}
	return response.MapSlice(settings, response.GatewaySettingToResponse), nil
}

func (s *paymentService) UpdateGateway(ctx context.Context, provider string, req *request.GatewaySettingRequest) (*response.GatewaySettingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	provider = strings.ToLower(strings.TrimSpace(provider))
	if !providerRegex.MatchString(provider) {
		return nil, fmt.Errorf("invalid gateway provider %s", provider)
	}

	existing, err := s.repo.Gateway.FindByProvider(ctx, provider)
	if err != nil {
		s.log.Error("Failed to find gateway setting", zap.Error(err), zap.String("provider", provider))
		return nil, fmt.Errorf("find gateway setting: %w", err)
	}

	secret := strings.TrimSpace(req.KeySecret)
	if secret == "" {
		if existing == nil {
			return nil, fmt.Errorf("validation failed: KeySecret: This field is required")
		}
		secret = existing.KeySecret
	}

	setting := &entity.GatewaySetting{
		Provider:  provider,
		KeyID:     strings.TrimSpace(req.KeyID),
		KeySecret: secret,
		Mode:      req.Mode,
		IsActive:  req.IsActive,
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Gateway.Upsert(ctx, setting); err != nil {
		s.log.Error("Failed to save gateway setting", zap.Error(err), zap.String("provider", provider))
		return nil, fmt.Errorf("save gateway setting: %w", err)
	}

	s.audit.Record(ctx, "gateway.update", "gateway_setting", provider, map[string]any{
		"key_id":         setting.KeyID,
		"mode":           setting.Mode,
		"is_active":      setting.IsActive,
		"secret_changed": req.KeySecret != "",
	})

	resp := response.GatewaySettingToResponse(setting)
	return &resp, nil
}

func (s *paymentService) find(ctx context.Context, paymentID string) (*entity.Payment, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment ID format %s", paymentID)
	}

	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find payment", zap.Error(err), zap.String("payment_id", paymentID))
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", paymentID)
	}
	return payment, nil
}
