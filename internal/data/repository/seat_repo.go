package repository

import (
	"context"
	"errors"
	"fmt"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	Create(ctx context.Context, seat *entity.Seat) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error)
	FindByNumber(ctx context.Context, seatNumber string) (*entity.Seat, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*entity.Seat, error)
	Update(ctx context.Context, seat *entity.Seat) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

const seatColumns = `id, seat_number, section, is_active, created_at, updated_at, deleted_at`

func scanSeat(row scanner) (*entity.Seat, error) {
	var s entity.Seat
	if err := row.Scan(
		&s.ID,
		&s.SeatNumber,
		&s.Section,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *seatRepository) Create(ctx context.Context, seat *entity.Seat) error {
	query := `
		INSERT INTO seats (id, seat_number, section, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		seat.ID,
		seat.SeatNumber,
		seat.Section,
		seat.IsActive,
		seat.CreatedAt,
		seat.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create seat", zap.Error(err), zap.String("seat_number", seat.SeatNumber))
		return fmt.Errorf("create seat %s: %w", seat.SeatNumber, err)
	}

	return nil
}

func (r *seatRepository) findOne(ctx context.Context, where string, arg any) (*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE ` + where + ` AND deleted_at IS NULL`

	seat, err := scanSeat(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return seat, err
}

func (r *seatRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error) {
	seat, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		r.log.Error("Failed to find seat by ID", zap.Error(err), zap.String("seat_id", id.String()))
		return nil, fmt.Errorf("find seat by ID %s: %w", id.String(), err)
	}
	return seat, nil
}

func (r *seatRepository) FindByNumber(ctx context.Context, seatNumber string) (*entity.Seat, error) {
	seat, err := r.findOne(ctx, "seat_number = $1", seatNumber)
	if err != nil {
		r.log.Error("Failed to find seat by number", zap.Error(err), zap.String("seat_number", seatNumber))
		return nil, fmt.Errorf("find seat %s: %w", seatNumber, err)
	}
	return seat, nil
}

func (r *seatRepository) FindAll(ctx context.Context, activeOnly bool) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE deleted_at IS NULL AND ($1 = FALSE OR is_active = TRUE)
		ORDER BY section, seat_number
	`

	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		r.log.Error("Failed to list seats", zap.Error(err))
		return nil, fmt.Errorf("find all seats: %w", err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *seatRepository) Update(ctx context.Context, seat *entity.Seat) error {
	query := `
		UPDATE seats
		SET seat_number = $2, section = $3, is_active = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, seat.ID, seat.SeatNumber, seat.Section, seat.IsActive, seat.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update seat", zap.Error(err), zap.String("seat_id", seat.ID.String()))
		return fmt.Errorf("update seat %s: %w", seat.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("seat %s not found", seat.ID.String())
	}

	return nil
}

func (r *seatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE seats SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete seat", zap.Error(err), zap.String("seat_id", id.String()))
		return fmt.Errorf("delete seat %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("seat %s not found", id.String())
	}

	return nil
}
