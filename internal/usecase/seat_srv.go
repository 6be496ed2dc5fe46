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

type SeatService interface {
	// GetAvailability marks each active seat free or taken for the range a
	// plan bought on startDate would cover. Empty inputs mean today and one day.
	GetAvailability(ctx context.Context, startDate, planID string) (*response.SeatAvailabilityResponse, error)

	GetSeats(ctx context.Context) ([]response.SeatResponse, error)
	CreateSeat(ctx context.Context, req *request.SeatRequest) (*response.SeatResponse, error)
	UpdateSeat(ctx context.Context, seatID string, req *request.SeatRequest) (*response.SeatResponse, error)
	DeleteSeat(ctx context.Context, seatID string) error
}

type seatService struct {
	repo  *repository.Repository
	audit AuditService
	log   *zap.Logger
}

func NewSeatService(repo *repository.Repository, audit AuditService, log *zap.Logger) SeatService {
	return &seatService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "seat")),
	}
}

// bookingRange returns the inclusive calendar range covered by a plan
func bookingRange(start time.Time, durationDays int) (time.Time, time.Time) {
	start = utils.TruncateDate(start)
	if durationDays < 1 {
		durationDays = 1
	}
	return start, start.AddDate(0, 0, durationDays-1)
}

func (s *seatService) GetAvailability(ctx context.Context, startDate, planID string) (*response.SeatAvailabilityResponse, error) {
	start := utils.Today()
	if startDate != "" {
		parsed, err := utils.ParseDate(startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %s, use YYYY-MM-DD", startDate)
		}
		start = parsed
	}

	duration := 1
	if planID != "" {
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
		duration = plan.DurationDays
	}

	start, end := bookingRange(start, duration)

	seats, err := s.repo.Seat.FindAll(ctx, true)
	if err != nil {
		s.log.Error("Failed to get seats", zap.Error(err))
		return nil, fmt.Errorf("get seats: %w", err)
	}

	bookedIDs, err := s.repo.Booking.FindBookedSeatIDs(ctx, start, end)
	if err != nil {
		s.log.Error("Failed to get booked seats", zap.Error(err))
		return nil, fmt.Errorf("check seat availability: %w", err)
	}

	booked := make(map[uuid.UUID]struct{}, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = struct{}{}
	}

	result := &response.SeatAvailabilityResponse{
		StartDate: start.Format(utils.DateLayout),
		EndDate:   end.Format(utils.DateLayout),
		Seats:     make([]response.SeatAvailability, len(seats)),
	}
	for i, seat := range seats {
		_, taken := booked[seat.ID]
		result.Seats[i] = response.SeatAvailability{
			SeatResponse: response.SeatToResponse(seat),
			IsAvailable:  !taken,
		}
	}

	return result, nil
}

func (s *seatService) GetSeats(ctx context.Context) ([]response.SeatResponse, error) {
	seats, err := s.repo.Seat.FindAll(ctx, false)
	if err != nil {
		s.log.Error("Failed to get seats", zap.Error(err))
		return nil, fmt.Errorf("get seats: %w", err)
	}
	return response.MapSlice(seats, response.SeatToResponse), nil
}

func (s *seatService) CreateSeat(ctx context.Context, req *request.SeatRequest) (*response.SeatResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	number := strings.ToUpper(strings.TrimSpace(req.SeatNumber))
	if err := s.ensureNumberFree(ctx, number, uuid.Nil); err != nil {
		return nil, err
	}

	now := time.Now()
	seat := &entity.Seat{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SeatNumber: number,
		Section:    strings.TrimSpace(req.Section),
		IsActive:   true,
	}
	if req.IsActive != nil {
		seat.IsActive = *req.IsActive
	}

	if err := s.repo.Seat.Create(ctx, seat); err != nil {
		s.log.Error("Failed to create seat", zap.Error(err), zap.String("seat_number", number))
		return nil, fmt.Errorf("create seat: %w", err)
	}

	s.audit.Record(ctx, "seat.create", "seat", seat.ID.String(), req)

	resp := response.SeatToResponse(seat)
	return &resp, nil
}

func (s *seatService) UpdateSeat(ctx context.Context, seatID string, req *request.SeatRequest) (*response.SeatResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	seat, err := s.find(ctx, seatID)
	if err != nil {
		return nil, err
	}

	number := strings.ToUpper(strings.TrimSpace(req.SeatNumber))
	if err := s.ensureNumberFree(ctx, number, seat.ID); err != nil {
		return nil, err
	}

	seat.SeatNumber = number
	seat.Section = strings.TrimSpace(req.Section)
	if req.IsActive != nil {
		seat.IsActive = *req.IsActive
	}
	seat.UpdatedAt = time.Now()

	if err := s.repo.Seat.Update(ctx, seat); err != nil {
		s.log.Error("Failed to update seat", zap.Error(err), zap.String("seat_id", seatID))
		return nil, fmt.Errorf("update seat: %w", err)
	}

	s.audit.Record(ctx, "seat.update", "seat", seatID, req)

	resp := response.SeatToResponse(seat)
	return &resp, nil
}

func (s *seatService) DeleteSeat(ctx context.Context, seatID string) error {
	seat, err := s.find(ctx, seatID)
	if err != nil {
		return err
	}

	active, err := s.repo.Booking.CountActiveForSeat(ctx, seat.ID, utils.Today())
	if err != nil {
		s.log.Error("Failed to check seat bookings", zap.Error(err), zap.String("seat_id", seatID))
		return fmt.Errorf("check seat bookings: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("cannot delete seat %s with %d active bookings", seat.SeatNumber, active)
	}

	if err := s.repo.Seat.Delete(ctx, seat.ID); err != nil {
		s.log.Error("Failed to delete seat", zap.Error(err), zap.String("seat_id", seatID))
		return fmt.Errorf("delete seat: %w", err)
	}

	s.audit.Record(ctx, "seat.delete", "seat", seatID, map[string]any{"seat_number": seat.SeatNumber})
	return nil
}

func (s *seatService) find(ctx context.Context, seatID string) (*entity.Seat, error) {
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
	return seat, nil
}

func (s *seatService) ensureNumberFree(ctx context.Context, number string, owner uuid.UUID) error {
	existing, err := s.repo.Seat.FindByNumber(ctx, number)
	if err != nil {
		s.log.Error("Failed to check seat number", zap.Error(err), zap.String("seat_number", number))
		return fmt.Errorf("check seat number: %w", err)
	}
	if existing != nil && existing.ID != owner {
		return fmt.Errorf("seat number %s already exists", number)
	}
	return nil
}
