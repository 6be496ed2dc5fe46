package usecase

import (
	"context"
	"testing"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAvailability_OverlapWindow(t *testing.T) {
	f := newFixture()
	other := &entity.Seat{Base: entity.Base{ID: uuid.New()}, SeatNumber: "B2", IsActive: true}
	f.seats.seats[other.ID] = other
	closed := &entity.Seat{Base: entity.Base{ID: uuid.New()}, SeatNumber: "C3", IsActive: false}
	f.seats.seats[closed.ID] = closed

	// A1 is held from day 10 through day 39
	f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 10), 1180)
	cancelled := f.addBooking(entity.BookingStatusCancelled, utils.Today().AddDate(0, 0, 10), 1180)
	cancelled.SeatID = other.ID

	svc := NewSeatService(f.repo, f.auditService(), f.log)

	tests := []struct {
		name   string
		start  string
		planID string
		a1Free bool
	}{
		{name: "single day before the booking", start: startIn(9), a1Free: true},
		{name: "first booked day", start: startIn(10), a1Free: false},
		{name: "last booked day", start: startIn(39), a1Free: false},
		{name: "day after the booking", start: startIn(40), a1Free: true},
		{name: "plan reaching into the booking", start: startIn(-15), planID: f.plan.ID.String(), a1Free: false},
		{name: "plan ending the day before", start: startIn(-20), planID: f.plan.ID.String(), a1Free: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetAvailability(context.Background(), tt.start, tt.planID)
			require.NoError(t, err)
			assert.Equal(t, tt.start, resp.StartDate)

			require.Len(t, resp.Seats, 2)
			assert.Equal(t, "A1", resp.Seats[0].SeatNumber)
			assert.Equal(t, tt.a1Free, resp.Seats[0].IsAvailable)
			assert.Equal(t, "B2", resp.Seats[1].SeatNumber)
			assert.True(t, resp.Seats[1].IsAvailable)
		})
	}
}

func TestGetAvailability_RangeFollowsPlan(t *testing.T) {
	f := newFixture()
	svc := NewSeatService(f.repo, f.auditService(), f.log)

	resp, err := svc.GetAvailability(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, startIn(0), resp.StartDate)
	assert.Equal(t, startIn(0), resp.EndDate)

	resp, err = svc.GetAvailability(context.Background(), startIn(2), f.plan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, startIn(31), resp.EndDate)

	_, err = svc.GetAvailability(context.Background(), "02/03/2026", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")

	_, err = svc.GetAvailability(context.Background(), "", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteSeat_RefusedWhileBooked(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 20), 1180)
	f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, -60), 1180)
	svc := NewSeatService(f.repo, f.auditService(), f.log)

	err := svc.DeleteSeat(context.Background(), f.seat.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete seat A1 with 1 active bookings")
	assert.Contains(t, f.seats.seats, f.seat.ID)
	assert.Empty(t, f.audit.actions())

	require.NoError(t, f.bookings.UpdateStatus(context.Background(), b.ID, entity.BookingStatusPending, entity.BookingStatusExpired))

	require.NoError(t, svc.DeleteSeat(context.Background(), f.seat.ID.String()))
	assert.NotContains(t, f.seats.seats, f.seat.ID)
	assert.Equal(t, []string{"seat.delete"}, f.audit.actions())
}

func TestCreateSeat_NormalizesAndRejectsDuplicate(t *testing.T) {
	f := newFixture()
	svc := NewSeatService(f.repo, f.auditService(), f.log)

	resp, err := svc.CreateSeat(context.Background(), &request.SeatRequest{SeatNumber: " b7 ", Section: "Reading Hall"})
	require.NoError(t, err)
	assert.Equal(t, "B7", resp.SeatNumber)
	assert.True(t, resp.IsActive)

	_, err = svc.CreateSeat(context.Background(), &request.SeatRequest{SeatNumber: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.Equal(t, []string{"seat.create"}, f.audit.actions())
}
