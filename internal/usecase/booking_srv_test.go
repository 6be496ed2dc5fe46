package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/pkg/cache"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startIn(days int) string {
	return utils.Today().AddDate(0, 0, days).Format(utils.DateLayout)
}

func checkoutRequest(f *fixture, method string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		PlanID:        f.plan.ID.String(),
		SeatID:        f.seat.ID.String(),
		StartDate:     startIn(5),
		PaymentMethod: method,
	}
}

func TestCreateBooking_WalletConfirmsAndDebits(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 2000
	svc := f.bookingService()

	resp, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "wallet"))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, 1000.0, resp.Subtotal)
	assert.Equal(t, 180.0, resp.GST)
	assert.Equal(t, 1180.0, resp.TotalAmount)
	assert.Equal(t, "Monthly", resp.PlanName)
	assert.Equal(t, "A1", resp.SeatNumber)
	assert.Equal(t, startIn(5), resp.StartDate)
	assert.Equal(t, startIn(34), resp.EndDate)

	require.NotNil(t, resp.Payment)
	assert.Equal(t, entity.PaymentStatusCompleted, resp.Payment.Status)
	assert.NotNil(t, resp.Payment.TransactionID)

	assert.Equal(t, 820.0, f.wallets.balance(f.member.ID))
	assert.Contains(t, f.notifications.titlesFor(f.member.ID), "Booking confirmed")
}

func TestCreateBooking_InsufficientBalanceBlocksPayment(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 100
	svc := f.bookingService()

	_, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "wallet"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrInsufficientBalance))
	assert.Equal(t, 0, f.bookings.count())
	assert.Empty(t, f.payments.payments)
	assert.Equal(t, 100.0, f.wallets.balance(f.member.ID))
}

func TestCreateBooking_RejectsOverlappingSeat(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 5000
	f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 20), 1180)
	svc := f.bookingService()

	_, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "wallet"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already booked")
	assert.Equal(t, 5000.0, f.wallets.balance(f.member.ID))
	assert.Equal(t, 1, f.bookings.count())
}

func TestCreateBooking_CancelledBookingFreesSeat(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 5000
	f.addBooking(entity.BookingStatusCancelled, utils.Today().AddDate(0, 0, 5), 1180)
	svc := f.bookingService()

	resp, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "wallet"))

	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
}

func TestCreateBooking_CashStaysPending(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	resp, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "cash"))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, entity.PaymentStatusPending, resp.Payment.Status)
	assert.Equal(t, entity.PaymentMethodCash, resp.Payment.Method)
}

func TestCreateBooking_OnlineNeedsTransactionID(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	_, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "online"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction_id")

	req := checkoutRequest(f, "online")
	req.TransactionID = utils.StringPtr("pay_9x8y7z")
	resp, err := svc.CreateBooking(context.Background(), f.member.ID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, "pay_9x8y7z", *resp.Payment.TransactionID)
}

func TestCreateBooking_AppliesCoupon(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 2000
	limit := 5
	coupon := f.addCoupon(&entity.Coupon{
		Code:          "WELCOME10",
		DiscountType:  entity.DiscountPercentage,
		DiscountValue: 10,
		UsageLimit:    &limit,
		ValidFrom:     utils.Today().AddDate(0, 0, -1),
		ValidUntil:    utils.Today().AddDate(0, 0, 30),
		IsActive:      true,
	})
	svc := f.bookingService()

	req := checkoutRequest(f, "wallet")
	req.CouponCode = "welcome10"
	resp, err := svc.CreateBooking(context.Background(), f.member.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.Discount)
	assert.Equal(t, 162.0, resp.GST)
	assert.Equal(t, 1062.0, resp.TotalAmount)
	assert.Equal(t, 1, f.coupons.used(coupon.ID))
	assert.Equal(t, 938.0, f.wallets.balance(f.member.ID))
}

func TestCreateBooking_RollsBackWhenPaymentFails(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 2000
	coupon := f.addCoupon(&entity.Coupon{
		Code:          "FLAT50",
		DiscountType:  entity.DiscountFlat,
		DiscountValue: 50,
		ValidFrom:     utils.Today(),
		ValidUntil:    utils.Today(),
		IsActive:      true,
	})
	f.payments.failCreate = errors.New("connection reset")
	svc := f.bookingService()

	req := checkoutRequest(f, "wallet")
	req.CouponCode = "FLAT50"
	_, err := svc.CreateBooking(context.Background(), f.member.ID, req)

	require.Error(t, err)
	assert.Equal(t, 0, f.bookings.count())
	assert.Equal(t, 0, f.coupons.used(coupon.ID))
	assert.Equal(t, 2000.0, f.wallets.balance(f.member.ID))
}

func TestCreateBooking_RejectsPastStartAndInactivePlan(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	req := checkoutRequest(f, "cash")
	req.StartDate = startIn(-1)
	_, err := svc.CreateBooking(context.Background(), f.member.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot book a start date in the past")

	f.plan.IsActive = false
	_, err = svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "cash"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestCreateBooking_SeatLockedByAnotherCheckout(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	key := cache.SeatLockKey(f.seat.ID.String())
	token, err := f.cache.AcquireLock(context.Background(), key, seatLockTTL)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "cash"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already booked")
	assert.Equal(t, 0, f.bookings.count())

	require.NoError(t, f.cache.ReleaseLock(context.Background(), key, token))

	_, err = svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "cash"))
	require.NoError(t, err)
}

func TestQuote(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	quote, err := svc.Quote(context.Background(), &request.QuoteRequest{PlanID: f.plan.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, quote.Subtotal)
	assert.Equal(t, 18.0, quote.GSTPercent)
	assert.Equal(t, 1180.0, quote.Total)
	assert.Equal(t, "INR", quote.Currency)
}

func TestGetUserBooking_HidesOtherMembers(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 3), 1180)
	svc := f.bookingService()

	_, err := svc.GetUserBooking(context.Background(), uuid.New(), b.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	resp, err := svc.GetUserBooking(context.Background(), f.member.ID, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, b.OrderID, resp.OrderID)
}

func TestGetRefundEstimate(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	tests := []struct {
		days    int
		percent int
		amount  float64
	}{
		{days: 10, percent: 100, amount: 1180},
		{days: 4, percent: 50, amount: 590},
		{days: 1, percent: 0, amount: 0},
	}

	for _, tt := range tests {
		b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, tt.days), 1180)

		est, err := svc.GetRefundEstimate(context.Background(), f.member.ID, b.ID.String())
		require.NoError(t, err)
		assert.Equal(t, tt.days, est.DaysToStart)
		assert.Equal(t, tt.percent, est.RefundPercent)
		assert.Equal(t, tt.amount, est.RefundAmount)
	}
}

func TestCancelBooking_ReleasesPendingPayment(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 3), 1180)
	p := f.addPayment(b, entity.PaymentMethodCash, entity.PaymentStatusPending)
	svc := f.bookingService()

	require.NoError(t, svc.CancelBooking(context.Background(), f.admin.ID, b.ID.String()))

	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(b.ID))
	assert.Equal(t, entity.PaymentStatusFailed, f.payments.payments[p.ID].Status)
	assert.Contains(t, f.audit.actions(), "booking.cancel")

	err := svc.CancelBooking(context.Background(), f.admin.ID, b.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cancel")
}

func TestCancelBooking_RefundsPaidBookingToWallet(t *testing.T) {
	f := newFixture()
	f.wallets.balances[f.member.ID] = 2000
	svc := f.bookingService()

	resp, err := svc.CreateBooking(context.Background(), f.member.ID, checkoutRequest(f, "wallet"))
	require.NoError(t, err)
	require.Equal(t, 820.0, f.wallets.balance(f.member.ID))
	id := uuid.MustParse(resp.ID)

	require.NoError(t, svc.CancelBooking(context.Background(), f.admin.ID, resp.ID))

	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(id))
	assert.Equal(t, 2000.0, f.wallets.balance(f.member.ID))
	assert.Equal(t, entity.PaymentStatusRefunded, f.payments.byBooking(id).Status)
	assert.Contains(t, f.audit.actions(), "booking.cancel")
	assert.Contains(t, f.notifications.titlesFor(f.member.ID), "Booking cancelled")

	require.Len(t, f.refunds.refunds, 1)
	for _, r := range f.refunds.refunds {
		assert.Equal(t, id, r.BookingID)
		assert.Equal(t, entity.RefundStatusApproved, r.Status)
		require.NotNil(t, r.RefundedAmount)
		assert.Equal(t, 1180.0, *r.RefundedAmount)
		require.NotNil(t, r.RefundTo)
		assert.Equal(t, entity.RefundToWallet, *r.RefundTo)
		require.NotNil(t, r.ProcessedBy)
		assert.Equal(t, f.admin.ID, *r.ProcessedBy)
	}

	err = svc.CancelBooking(context.Background(), f.admin.ID, resp.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cancel")
	assert.Equal(t, 2000.0, f.wallets.balance(f.member.ID))
}

func TestCancelBooking_ApprovesOpenMemberRequestInFull(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 4), 1180)
	f.addPayment(b, entity.PaymentMethodOnline, entity.PaymentStatusCompleted)
	open := &entity.RefundRequest{
		Base:           entity.Base{ID: uuid.New()},
		BookingID:      b.ID,
		UserID:         f.member.ID,
		Reason:         "moving away",
		RefundPercent:  50,
		ExpectedAmount: 590,
		Status:         entity.RefundStatusPending,
	}
	f.refunds.refunds[open.ID] = open
	svc := f.bookingService()

	require.NoError(t, svc.CancelBooking(context.Background(), f.admin.ID, b.ID.String()))

	require.Len(t, f.refunds.refunds, 1)
	r := f.refunds.refunds[open.ID]
	assert.Equal(t, entity.RefundStatusApproved, r.Status)
	require.NotNil(t, r.RefundedAmount)
	assert.Equal(t, 1180.0, *r.RefundedAmount)
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
}

func TestCancelBooking_RetriesRefundAfterCreditFailure(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	p := f.addPayment(b, entity.PaymentMethodOnline, entity.PaymentStatusCompleted)
	f.wallets.failNext = errors.New("connection reset")
	svc := f.bookingService()

	err := svc.CancelBooking(context.Background(), f.admin.ID, b.ID.String())
	require.Error(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(b.ID))
	assert.Equal(t, entity.PaymentStatusCompleted, f.payments.payments[p.ID].Status)
	assert.Equal(t, 0.0, f.wallets.balance(f.member.ID))
	assert.Empty(t, f.refunds.refunds)

	require.NoError(t, svc.CancelBooking(context.Background(), f.admin.ID, b.ID.String()))
	assert.Equal(t, entity.PaymentStatusRefunded, f.payments.payments[p.ID].Status)
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
	assert.Len(t, f.refunds.refunds, 1)
}

func TestCreateAdvanceBooking(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	req := &request.AdminBookingRequest{UserID: uuid.NewString(), CreateBookingRequest: *checkoutRequest(f, "cash")}
	_, err := svc.CreateAdvanceBooking(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, 0, f.bookings.count())

	f.member.IsActive = false
	req.UserID = f.member.ID.String()
	_, err = svc.CreateAdvanceBooking(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	f.member.IsActive = true
	resp, err := svc.CreateAdvanceBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID.String(), resp.UserID)
	assert.Contains(t, f.audit.actions(), "booking.create_advance")
}

func TestCreateBooking_PastDateFollowsLibraryZone(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()
	ist := time.FixedZone("IST", 5*3600+1800)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 1, 0, 0, 0, ist) }

	req := checkoutRequest(f, "cash")
	req.StartDate = "2026-10-17"
	_, err := svc.CreateBooking(context.Background(), f.member.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot book a start date in the past")

	req.StartDate = "2026-10-18"
	resp, err := svc.CreateBooking(context.Background(), f.member.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", resp.StartDate)
}
