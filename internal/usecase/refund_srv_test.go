package usecase

import (
	"context"
	"errors"
	"testing"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefundService(f *fixture) RefundService {
	return NewRefundService(f.repo, f.notificationService(), f.auditService(), f.log)
}

func TestCreateRefundRequest_StoresExpectedAmount(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 4), 1180)
	svc := newRefundService(f)

	resp, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(),
		Reason:    "Moving to another city",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusPending, resp.Status)
	assert.Equal(t, 50, resp.RefundPercent)
	assert.Equal(t, 590.0, resp.ExpectedAmount)
	assert.Equal(t, b.OrderID, resp.OrderID)
	assert.Contains(t, f.notifications.titlesFor(f.admin.ID), "New refund request")

	_, err = svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(),
		Reason:    "Asking a second time",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateRefundRequest_Rejections(t *testing.T) {
	f := newFixture()
	svc := newRefundService(f)

	pending := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 10), 1180)
	_, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: pending.ID.String(), Reason: "Changed my mind",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot request a refund")

	started := f.addBooking(entity.BookingStatusConfirmed, utils.Today(), 1180)
	_, err = svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: started.ID.String(), Reason: "Changed my mind",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	other := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	_, err = svc.CreateRefundRequest(context.Background(), f.admin.ID, &request.CreateRefundRequest{
		BookingID: other.ID.String(), Reason: "Not my booking",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestProcessRefund_ApproveToWallet(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	p := f.addPayment(b, entity.PaymentMethodWallet, entity.PaymentStatusCompleted)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	resp, err := svc.ProcessRefund(context.Background(), f.admin.ID, &request.ProcessRefundRequest{
		RefundRequestID: created.ID,
		Action:          "approve",
		RefundTo:        "wallet",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusApproved, resp.Status)
	require.NotNil(t, resp.RefundedAmount)
	assert.Equal(t, 1180.0, *resp.RefundedAmount)
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(b.ID))
	assert.Equal(t, entity.PaymentStatusRefunded, f.payments.payments[p.ID].Status)
	assert.Contains(t, f.notifications.titlesFor(f.member.ID), "Refund approved")
	assert.Contains(t, f.audit.actions(), "refund.approve")
}

func TestProcessRefund_OnlyFromPending(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	f.addPayment(b, entity.PaymentMethodWallet, entity.PaymentStatusCompleted)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	req := &request.ProcessRefundRequest{RefundRequestID: created.ID, Action: "approve", RefundTo: "wallet"}
	_, err = svc.ProcessRefund(context.Background(), f.admin.ID, req)
	require.NoError(t, err)

	_, err = svc.ProcessRefund(context.Background(), f.admin.ID, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot process again")

	// money moved exactly once
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
}

func TestProcessRefund_Reject(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	resp, err := svc.ProcessRefund(context.Background(), f.admin.ID, &request.ProcessRefundRequest{
		RefundRequestID: created.ID,
		Action:          "reject",
		AdminNote:       utils.StringPtr("Outside policy"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusRejected, resp.Status)
	assert.Nil(t, resp.RefundedAmount)
	assert.Equal(t, 0.0, f.wallets.balance(f.member.ID))
	assert.Equal(t, entity.BookingStatusConfirmed, f.bookings.status(b.ID))
	assert.Contains(t, f.notifications.titlesFor(f.member.ID), "Refund rejected")
}

func TestProcessRefund_ReopensWhenCreditFails(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	p := f.addPayment(b, entity.PaymentMethodOnline, entity.PaymentStatusCompleted)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	f.wallets.failNext = errors.New("deadlock detected")
	req := &request.ProcessRefundRequest{RefundRequestID: created.ID, Action: "approve"}
	_, err = svc.ProcessRefund(context.Background(), f.admin.ID, req)
	require.Error(t, err)

	for _, r := range f.refunds.refunds {
		assert.Equal(t, entity.RefundStatusPending, r.Status)
	}
	assert.Equal(t, entity.BookingStatusConfirmed, f.bookings.status(b.ID))
	assert.Equal(t, entity.PaymentStatusCompleted, f.payments.payments[p.ID].Status)

	// retry succeeds once the wallet is healthy again
	resp, err := svc.ProcessRefund(context.Background(), f.admin.ID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, resp.Status)
	assert.Equal(t, entity.RefundToWallet, *resp.RefundTo)
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
}

func TestProcessRefund_ApprovesOnLibraryCancelledBooking(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	p := f.addPayment(b, entity.PaymentMethodOnline, entity.PaymentStatusCompleted)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	// cancelled while the payment still stands
	f.bookings.bookings[b.ID].Status = entity.BookingStatusCancelled

	resp, err := svc.ProcessRefund(context.Background(), f.admin.ID, &request.ProcessRefundRequest{
		RefundRequestID: created.ID,
		Action:          "approve",
		RefundTo:        "wallet",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RefundStatusApproved, resp.Status)
	assert.Equal(t, 1180.0, f.wallets.balance(f.member.ID))
	assert.Equal(t, entity.PaymentStatusRefunded, f.payments.payments[p.ID].Status)
	assert.Equal(t, entity.BookingStatusCancelled, f.bookings.status(b.ID))
}

func TestProcessRefund_RefusesRefundedPayment(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	p := f.addPayment(b, entity.PaymentMethodWallet, entity.PaymentStatusCompleted)
	svc := newRefundService(f)

	created, err := svc.CreateRefundRequest(context.Background(), f.member.ID, &request.CreateRefundRequest{
		BookingID: b.ID.String(), Reason: "Exams cancelled",
	})
	require.NoError(t, err)

	f.payments.payments[p.ID].Status = entity.PaymentStatusRefunded

	_, err = svc.ProcessRefund(context.Background(), f.admin.ID, &request.ProcessRefundRequest{
		RefundRequestID: created.ID,
		Action:          "approve",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot approve refund")
	assert.Equal(t, 0.0, f.wallets.balance(f.member.ID))
	for _, r := range f.refunds.refunds {
		assert.Equal(t, entity.RefundStatusPending, r.Status)
	}
}
