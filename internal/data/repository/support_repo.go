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

// TicketFilter scopes ticket lists; a nil UserID means every member
type TicketFilter struct {
	UserID *uuid.UUID
	Status *entity.TicketStatus
}

type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *entity.SupportTicket, first *entity.TicketMessage) error
	FindTicketByID(ctx context.Context, id uuid.UUID) (*entity.SupportTicket, error)
	FindTickets(ctx context.Context, filter TicketFilter, limit, offset int) ([]*entity.SupportTicket, error)
	CountTickets(ctx context.Context, filter TicketFilter) (int64, error)
	UpdateTicketStatus(ctx context.Context, id uuid.UUID, status entity.TicketStatus) error

	AddMessage(ctx context.Context, message *entity.TicketMessage) error
	FindMessages(ctx context.Context, ticketID uuid.UUID) ([]*entity.TicketMessage, error)
}

type supportRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSupportRepository(db database.PgxIface, log *zap.Logger) SupportRepository {
	return &supportRepository{
		db:  db,
		log: log.With(zap.String("repository", "support")),
	}
}

const ticketColumns = `id, reference, user_id, subject, category, priority, status, created_at, updated_at`

func scanTicket(row scanner) (*entity.SupportTicket, error) {
	var t entity.SupportTicket
	if err := row.Scan(
		&t.ID,
		&t.Reference,
		&t.UserID,
		&t.Subject,
		&t.Category,
		&t.Priority,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

const insertTicketMessage = `
	INSERT INTO ticket_messages (id, ticket_id, sender_id, is_staff, body, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// CreateTicket stores the ticket together with its opening message
func (r *supportRepository) CreateTicket(ctx context.Context, ticket *entity.SupportTicket, first *entity.TicketMessage) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO support_tickets (id, reference, user_id, subject, category, priority, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := tx.Exec(ctx, query,
			ticket.ID,
			ticket.Reference,
			ticket.UserID,
			ticket.Subject,
			ticket.Category,
			ticket.Priority,
			ticket.Status,
			ticket.CreatedAt,
			ticket.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to create ticket", zap.Error(err), zap.String("reference", ticket.Reference))
			return fmt.Errorf("create ticket %s: %w", ticket.Reference, err)
		}

		if first == nil {
			return nil
		}

		_, err = tx.Exec(ctx, insertTicketMessage,
			first.ID, first.TicketID, first.SenderID, first.IsStaff, first.Body, first.CreatedAt)
		if err != nil {
			return fmt.Errorf("create opening message of ticket %s: %w", ticket.Reference, err)
		}
		return nil
	})
}

func (r *supportRepository) FindTicketByID(ctx context.Context, id uuid.UUID) (*entity.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket", zap.Error(err), zap.String("ticket_id", id.String()))
		return nil, fmt.Errorf("find ticket %s: %w", id.String(), err)
	}

	return ticket, nil
}

func (r *supportRepository) FindTickets(ctx context.Context, filter TicketFilter, limit, offset int) ([]*entity.SupportTicket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM support_tickets
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, filter.UserID, statusArg(filter.Status), limit, offset)
	if err != nil {
		r.log.Error("Failed to list tickets", zap.Error(err))
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.SupportTicket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

func (r *supportRepository) CountTickets(ctx context.Context, filter TicketFilter) (int64, error) {
	query := `
		SELECT COUNT(*) FROM support_tickets
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR status = $2)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, filter.UserID, statusArg(filter.Status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

func (r *supportRepository) UpdateTicketStatus(ctx context.Context, id uuid.UUID, status entity.TicketStatus) error {
	result, err := r.db.Exec(ctx, `UPDATE support_tickets SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		r.log.Error("Failed to update ticket status", zap.Error(err), zap.String("ticket_id", id.String()))
		return fmt.Errorf("update ticket %s status: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %s not found", id.String())
	}

	return nil
}

// AddMessage appends a reply and touches the ticket so it sorts first
func (r *supportRepository) AddMessage(ctx context.Context, message *entity.TicketMessage) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertTicketMessage,
			message.ID, message.TicketID, message.SenderID, message.IsStaff, message.Body, message.CreatedAt)
		if err != nil {
			r.log.Error("Failed to add ticket message", zap.Error(err), zap.String("ticket_id", message.TicketID.String()))
			return fmt.Errorf("add message to ticket %s: %w", message.TicketID.String(), err)
		}

		if _, err := tx.Exec(ctx, `UPDATE support_tickets SET updated_at = NOW() WHERE id = $1`, message.TicketID); err != nil {
			return fmt.Errorf("touch ticket %s: %w", message.TicketID.String(), err)
		}
		return nil
	})
}

func (r *supportRepository) FindMessages(ctx context.Context, ticketID uuid.UUID) ([]*entity.TicketMessage, error) {
	query := `
		SELECT id, ticket_id, sender_id, is_staff, body, created_at
		FROM ticket_messages
		WHERE ticket_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		r.log.Error("Failed to find ticket messages", zap.Error(err), zap.String("ticket_id", ticketID.String()))
		return nil, fmt.Errorf("find messages of ticket %s: %w", ticketID.String(), err)
	}
	defer rows.Close()

	var messages []*entity.TicketMessage
	for rows.Next() {
		var m entity.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.IsStaff, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}
