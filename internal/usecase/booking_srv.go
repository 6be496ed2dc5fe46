package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/cache"
	"library-booking/pkg/pricing"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const seatLockTTL = 30 * time.Second

type BookingService interface {
	// Checkout
	Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error)
	CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// Member
	GetUserBookings(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetUserBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	GetRefundEstimate(ctx context.Context, userID uuid.UUID, bookingID string) (*response.RefundEstimateResponse, error)

	// Admin
	GetBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetAdvanceBookings(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CreateAdvanceBooking(ctx context.Context, req *request.AdminBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, adminID uuid.UUID, bookingID string) error
}

type bookingService struct {
	repo         *repository.Repository
	cache        *cache.Cache
	coupon       CouponService
	notification NotificationService
	audit        AuditService
	billing      utils.BillingConfig
	log          *zap.Logger
	now          func() time.Time
}

func NewBookingService(
	repo *repository.Repository,
	cache *cache.Cache,
	coupon CouponService,
	notification NotificationService,
	audit AuditService,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:         repo,
		cache:        cache,
		coupon:       coupon,
		notification: notification,
		audit:        audit,
		billing:      config.Billing,
		log:          log.With(zap.String("service", "booking")),
		now:          utils.Now,
	}
}

func (s *bookingService) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	plan, err := s.findBookablePlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	breakdown, coupon, err := s.price(ctx, plan, req.CouponCode)
	if err != nil {
		return nil, err
	}

	code := ""
	if coupon != nil {
		code = coupon.Code
	}

	resp := response.QuoteToResponse(plan, code, breakdown, s.billing.Currency)
	return &resp, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	method := entity.PaymentMethod(req.PaymentMethod)
	if method == entity.PaymentMethodOnline && (req.TransactionID == nil || *req.TransactionID == "") {
		return nil, fmt.Errorf("invalid payment: transaction_id is required for online payments")
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %s", req.StartDate)
	}
	if startDate.Before(utils.TruncateDate(s.now())) {
		return nil, fmt.Errorf("cannot book a start date in the past")
	}

	plan, err := s.findBookablePlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	seat, err := s.findBookableSeat(ctx, req.SeatID)
	if err != nil {
		return nil, err
	}

	breakdown, coupon, err := s.price(ctx, plan, req.CouponCode)
	if err != nil {
		return nil, err
	}

	if method == entity.PaymentMethodWallet {
		if err := s.ensureBalance(ctx, userID, breakdown.Total); err != nil {
			return nil, err
		}
	}

	// one checkout per seat at a time
	lockKey := cache.SeatLockKey(seat.ID.String())
	lockToken, err := s.cache.AcquireLock(ctx, lockKey, seatLockTTL)
	if err != nil {
		s.log.Error("Failed to lock seat", zap.Error(err), zap.String("seat_id", seat.ID.String()))
		return nil, fmt.Errorf("lock seat: %w", err)
	}
	if lockToken == "" {
		return nil, fmt.Errorf("seat %s is already booked by another checkout in progress", seat.SeatNumber)
	}
	defer func() {
		if err := s.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockToken); err != nil {
			s.log.Warn("Failed to release seat lock", zap.Error(err), zap.String("seat_id", seat.ID.String()))
		}
	}()

	start, end := bookingRange(startDate, plan.DurationDays)

	taken, err := s.repo.Booking.HasOverlap(ctx, seat.ID, start, end)
	if err != nil {
		s.log.Error("Failed to check seat overlap", zap.Error(err), zap.String("seat_id", seat.ID.String()))
		return nil, fmt.Errorf("check seat availability: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("seat %s is already booked for %s to %s",
			seat.SeatNumber, start.Format(utils.DateLayout), end.Format(utils.DateLayout))
	}

	now := s.now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:     utils.GenerateOrderID(),
		UserID:      userID,
		PlanID:      plan.ID,
		SeatID:      seat.ID,
		StartDate:   start,
		EndDate:     end,
		Subtotal:    breakdown.Subtotal,
		Discount:    breakdown.Discount,
		GST:         breakdown.GST,
		TotalAmount: breakdown.Total,
		Status:      entity.BookingStatusPending,
	}
	if coupon != nil {
		booking.CouponID = &coupon.ID
	}

	// steps that succeeded are undone in reverse when a later one fails
	var undo []func(context.Context)
	rollback := func() {
		undoCtx := context.WithoutCancel(ctx)
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i](undoCtx)
		}
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("seat_id", seat.ID.String()),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}
	undo = append(undo, func(ctx context.Context) {
		if err := s.repo.Booking.Delete(ctx, booking.ID); err != nil {
			s.log.Error("Rollback: failed to delete booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		}
	})

	if coupon != nil {
		if err := s.repo.Coupon.IncrementUsage(ctx, coupon.ID); err != nil {
			rollback()
			return nil, fmt.Errorf("invalid coupon: %w", err)
		}
		undo = append(undo, func(ctx context.Context) {
			if err := s.repo.Coupon.DecrementUsage(ctx, coupon.ID); err != nil {
				s.log.Error("Rollback: failed to release coupon", zap.Error(err), zap.String("coupon_id", coupon.ID.String()))
			}
		})
	}

	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     &booking.ID,
		UserID:        userID,
		Method:        method,
		Amount:        booking.TotalAmount,
		Status:        entity.PaymentStatusCompleted,
		TransactionID: req.TransactionID,
	}

	switch method {
	case entity.PaymentMethodWallet:
		txn, err := s.repo.Wallet.Debit(ctx, userID, booking.TotalAmount, &booking.OrderID, "Seat booking "+booking.OrderID)
		if err != nil {
			rollback()
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return nil, err
			}
			s.log.Error("Failed to debit wallet", zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("debit wallet: %w", err)
		}
		txnID := txn.ID.String()
		payment.TransactionID = &txnID
		undo = append(undo, func(ctx context.Context) {
			if _, err := s.repo.Wallet.Credit(ctx, userID, booking.TotalAmount, &booking.OrderID, "Reversal "+booking.OrderID); err != nil {
				s.log.Error("Rollback: failed to refund wallet",
					zap.Error(err),
					zap.String("user_id", userID.String()),
					zap.Float64("amount", booking.TotalAmount),
				)
			}
		})
	case entity.PaymentMethodCash:
		payment.Status = entity.PaymentStatusPending
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		rollback()
		s.log.Error("Failed to record payment", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, fmt.Errorf("create payment: %w", err)
	}
	undo = append(undo, func(ctx context.Context) {
		if err := s.repo.Payment.Delete(ctx, payment.ID); err != nil {
			s.log.Error("Rollback: failed to delete payment", zap.Error(err), zap.String("payment_id", payment.ID.String()))
		}
	})

	if payment.Status == entity.PaymentStatusCompleted {
		if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusPending, entity.BookingStatusConfirmed); err != nil {
			rollback()
			s.log.Error("Failed to confirm booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
			return nil, fmt.Errorf("confirm booking: %w", err)
		}
		booking.Status = entity.BookingStatusConfirmed
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID.String()),
		zap.String("seat", seat.SeatNumber),
		zap.String("method", string(method)),
		zap.Float64("total", booking.TotalAmount),
		zap.String("status", string(booking.Status)),
	)

	if booking.Status == entity.BookingStatusConfirmed {
		s.notification.Notify(ctx, userID, entity.NotificationBooking, "Booking confirmed",
			fmt.Sprintf("Seat %s is yours from %s to %s (order %s).",
				seat.SeatNumber, booking.StartDate.Format(utils.DateLayout), booking.EndDate.Format(utils.DateLayout), booking.OrderID))
	} else {
		s.notification.Notify(ctx, userID, entity.NotificationBooking, "Booking awaiting payment",
			fmt.Sprintf("Pay %.2f %s at the desk to confirm order %s.", booking.TotalAmount, s.billing.Currency, booking.OrderID))
	}

	resp := response.BookingToResponse(booking)
	resp.PlanName = plan.Name
	resp.SeatNumber = seat.SeatNumber
	paymentResp := response.PaymentToResponse(payment)
	resp.Payment = &paymentResp
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("page", req.Page),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.describe(ctx, bookings, false), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetUserBooking(ctx context.Context, userID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return &s.describe(ctx, []*entity.Booking{booking}, true)[0], nil
}

func (s *bookingService) GetRefundEstimate(ctx context.Context, userID uuid.UUID, bookingID string) (*response.RefundEstimateResponse, error) {
	booking, err := s.findOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("booking status is %s, cannot estimate refund", booking.Status)
	}

	quote := pricing.CalculateRefund(booking.TotalAmount, booking.StartDate, s.now())
	resp := response.RefundEstimateToResponse(booking, quote)
	return &resp, nil
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) GetBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	var filter repository.BookingFilter
	if req.Status != "" {
		status := entity.BookingStatus(req.Status)
		filter.Status = &status
	}

	return s.list(ctx, filter, req.PaginatedRequest)
}

func (s *bookingService) GetAdvanceBookings(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	today := utils.TruncateDate(s.now())
	return s.list(ctx, repository.BookingFilter{StartAfter: &today}, req)
}

func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("get bookings: %w", err)
	}

	total, err := s.repo.Booking.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.describe(ctx, bookings, false), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &s.describe(ctx, []*entity.Booking{booking}, true)[0], nil
}

// CreateAdvanceBooking books a seat on behalf of an active member
func (s *bookingService) CreateAdvanceBooking(ctx context.Context, req *request.AdminBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s", req.UserID)
	}

	member, err := s.repo.User.FindByID(ctx, memberID)
	if err != nil {
		s.log.Error("Failed to find member", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, fmt.Errorf("find member: %w", err)
	}
	if member == nil || !member.IsActive {
		return nil, fmt.Errorf("member %s not found", req.UserID)
	}

	booking, err := s.CreateBooking(ctx, memberID, &req.CreateBookingRequest)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "booking.create_advance", "booking", booking.ID, map[string]any{
		"order_id":       booking.OrderID,
		"user_id":        req.UserID,
		"seat":           booking.SeatNumber,
		"start_date":     booking.StartDate,
		"payment_method": req.PaymentMethod,
		"total":          booking.TotalAmount,
	})
	return booking, nil
}

// CancelBooking releases the seat. A paid booking is refunded in full to the
// member's wallet and the refund is kept as an approved refund request.
// Cancelling again retries a refund whose wallet credit failed.
func (s *bookingService) CancelBooking(ctx context.Context, adminID uuid.UUID, bookingID string) error {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.Status == entity.BookingStatusCancelled {
		refunded, err := s.refundCancelled(ctx, adminID, booking)
		if err != nil {
			return err
		}
		if refunded == nil {
			return fmt.Errorf("booking status is %s, cannot cancel", booking.Status)
		}
		s.log.Info("Refund of cancelled booking retried", zap.String("booking_id", bookingID), zap.Float64("amount", *refunded))
		return nil
	}

	if !booking.HoldsSeat() {
		return fmt.Errorf("booking status is %s, cannot cancel", booking.Status)
	}

	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, booking.Status, entity.BookingStatusCancelled); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return err
		}
		s.log.Error("Failed to cancel booking", zap.Error(err), zap.String("booking_id", bookingID))
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	var refunded *float64
	if booking.Status == entity.BookingStatusPending {
		releasePending(ctx, s.repo, booking, s.log)
	} else {
		refunded, err = s.refundCancelled(ctx, adminID, booking)
	}

	s.audit.Record(ctx, "booking.cancel", "booking", bookingID, map[string]any{
		"order_id":        booking.OrderID,
		"previous_status": booking.Status,
		"refunded":        refunded,
	})

	message := fmt.Sprintf("Order %s was cancelled by the library.", booking.OrderID)
	if refunded != nil {
		message = fmt.Sprintf("Order %s was cancelled by the library. %.2f %s was returned to your wallet.",
			booking.OrderID, *refunded, s.billing.Currency)
	}
	s.notification.Notify(ctx, booking.UserID, entity.NotificationBooking, "Booking cancelled", message)

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("order_id", booking.OrderID),
	)
	return err
}

// refundCancelled returns the full payment of a cancelled booking to the
// member's wallet. It returns nil when nothing was left to refund.
func (s *bookingService) refundCancelled(ctx context.Context, adminID uuid.UUID, booking *entity.Booking) (*float64, error) {
	payment, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to load payment of cancelled booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil || payment.Status != entity.PaymentStatusCompleted {
		return nil, nil
	}

	// claiming the payment first keeps a concurrent refund from paying twice
	err = s.repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, nil)
	if errors.Is(err, repository.ErrStatusChanged) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Failed to mark payment refunded", zap.Error(err), zap.String("payment_id", payment.ID.String()))
		return nil, fmt.Errorf("refund payment: %w", err)
	}

	amount := payment.Amount
	if amount > 0 {
		if _, err := s.repo.Wallet.Credit(ctx, booking.UserID, amount, &booking.OrderID, "Refund "+booking.OrderID); err != nil {
			s.log.Error("Failed to credit cancellation refund",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.Float64("amount", amount),
			)
			if uerr := s.repo.Payment.UpdateStatus(context.WithoutCancel(ctx), payment.ID,
				entity.PaymentStatusRefunded, entity.PaymentStatusCompleted, nil); uerr != nil {
				s.log.Error("Failed to restore payment after refund failure", zap.Error(uerr), zap.String("payment_id", payment.ID.String()))
			}
			return nil, fmt.Errorf("credit refund: %w", err)
		}
	}

	s.recordCancellationRefund(ctx, adminID, booking, amount)
	return &amount, nil
}

// recordCancellationRefund approves the member's open request, or files an
// approved one, so the payout shows up with the other refunds
func (s *bookingService) recordCancellationRefund(ctx context.Context, adminID uuid.UUID, booking *entity.Booking, amount float64) {
	ctx = context.WithoutCancel(ctx)
	dest := entity.RefundToWallet
	resolution := repository.RefundResolution{
		Status:         entity.RefundStatusApproved,
		RefundedAmount: &amount,
		RefundTo:       &dest,
		AdminNote:      utils.StringPtr("Booking cancelled by the library"),
		ProcessedBy:    adminID,
	}

	open, err := s.repo.Refund.FindOpenByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("Failed to check open refund requests", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return
	}

	if open == nil || open.Status != entity.RefundStatusPending {
		now := s.now()
		open = &entity.RefundRequest{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			BookingID:      booking.ID,
			UserID:         booking.UserID,
			Reason:         "Cancelled by the library",
			RefundPercent:  100,
			ExpectedAmount: amount,
			Status:         entity.RefundStatusPending,
		}
		if err := s.repo.Refund.Create(ctx, open); err != nil {
			s.log.Warn("Failed to file cancellation refund", zap.Error(err), zap.String("booking_id", booking.ID.String()))
			return
		}
	}

	if _, err := s.repo.Refund.Resolve(ctx, open.ID, resolution); err != nil {
		s.log.Warn("Failed to approve cancellation refund", zap.Error(err), zap.String("refund_id", open.ID.String()))
	}
}

// ==================== HELPER METHODS ====================

// releasePending fails the unpaid payment of a pending booking and gives its
// coupon use back
func releasePending(ctx context.Context, repo *repository.Repository, booking *entity.Booking, log *zap.Logger) {
	payment, err := repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		log.Warn("Failed to load payment of pending booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
	} else if payment != nil && payment.Status == entity.PaymentStatusPending {
		err := repo.Payment.UpdateStatus(ctx, payment.ID, entity.PaymentStatusPending, entity.PaymentStatusFailed, nil)
		if err != nil && !errors.Is(err, repository.ErrStatusChanged) {
			log.Warn("Failed to fail pending payment", zap.Error(err), zap.String("payment_id", payment.ID.String()))
		}
	}

	if booking.CouponID != nil {
		if err := repo.Coupon.DecrementUsage(ctx, *booking.CouponID); err != nil {
			log.Warn("Failed to release coupon use", zap.Error(err), zap.String("coupon_id", booking.CouponID.String()))
		}
	}
}

func (s *bookingService) price(ctx context.Context, plan *entity.Plan, couponCode string) (pricing.Breakdown, *entity.Coupon, error) {
	var (
		coupon   *entity.Coupon
		discount float64
		err      error
	)

	if couponCode != "" {
		coupon, discount, err = s.coupon.Resolve(ctx, couponCode, plan.Price)
		if err != nil {
			return pricing.Breakdown{}, nil, err
		}
	}

	return pricing.Checkout(plan.Price, discount, s.billing.GSTPercent), coupon, nil
}

func (s *bookingService) ensureBalance(ctx context.Context, userID uuid.UUID, total float64) error {
	wallet, err := s.repo.Wallet.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("load wallet: %w", err)
	}

	balance := 0.0
	if wallet != nil {
		balance = wallet.Balance
	}
	if balance < total {
		s.log.Info("Wallet balance too low for booking",
			zap.String("user_id", userID.String()),
			zap.Float64("balance", balance),
			zap.Float64("required", total),
		)
		return fmt.Errorf("%w: balance %.2f, required %.2f", repository.ErrInsufficientBalance, balance, total)
	}
	return nil
}

func (s *bookingService) findBookablePlan(ctx context.Context, planID string) (*entity.Plan, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID format %s", planID)
	}

	plan, err := s.repo.Plan.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find plan", zap.Error(err), zap.String("plan_id", planID))
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("plan %s is inactive, cannot book", plan.Name)
	}
	return plan, nil
}

func (s *bookingService) findBookableSeat(ctx context.Context, seatID string) (*entity.Seat, error) {
	id, err := uuid.Parse(seatID)
	if err != nil {
		return nil, fmt.Errorf("invalid seat ID format %s", seatID)
	}

	seat, err := s.repo.Seat.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find seat", zap.Error(err), zap.String("seat_id", seatID))
		return nil, fmt.Errorf("find seat: %w", err)
	}
	if seat == nil {
		return nil, fmt.Errorf("seat %s not found", seatID)
	}
	if !seat.IsActive {
		return nil, fmt.Errorf("seat %s is inactive, cannot book", seat.SeatNumber)
	}
	return seat, nil
}

func (s *bookingService) find(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	return booking, nil
}

// findOwned hides other members' bookings behind "not found"
func (s *bookingService) findOwned(ctx context.Context, userID uuid.UUID, bookingID string) (*entity.Booking, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	return booking, nil
}

// describe adds plan names, seat numbers and optionally the payment
func (s *bookingService) describe(ctx context.Context, bookings []*entity.Booking, withPayment bool) []response.BookingResponse {
	plans := make(map[uuid.UUID]string)
	seats := make(map[uuid.UUID]string)

	out := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp := response.BookingToResponse(booking)

		name, ok := plans[booking.PlanID]
		if !ok {
			if plan, _ := s.repo.Plan.FindByID(ctx, booking.PlanID); plan != nil {
				name = plan.Name
			}
			plans[booking.PlanID] = name
		}
		resp.PlanName = name

		number, ok := seats[booking.SeatID]
		if !ok {
			if seat, _ := s.repo.Seat.FindByID(ctx, booking.SeatID); seat != nil {
				number = seat.SeatNumber
			}
			seats[booking.SeatID] = number
		}
		resp.SeatNumber = number

		if withPayment {
			if payment, _ := s.repo.Payment.FindByBookingID(ctx, booking.ID); payment != nil {
				paymentResp := response.PaymentToResponse(payment)
				resp.Payment = &paymentResp
			}
		}

		out[i] = resp
	}
	return out
}
