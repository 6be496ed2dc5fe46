package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WalletRepository interface {
	Create(ctx context.Context, userID uuid.UUID) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)

	// Ledger operations: balance change and transaction row commit together
	Credit(ctx context.Context, userID uuid.UUID, amount float64, reference *string, description string) (*entity.WalletTransaction, error)
	Debit(ctx context.Context, userID uuid.UUID, amount float64, reference *string, description string) (*entity.WalletTransaction, error)

	FindTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)
	CountTransactions(ctx context.Context, userID uuid.UUID) (int64, error)
}

type walletRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWalletRepository(db database.PgxIface, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

func (r *walletRepository) Create(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.log.Error("Failed to create wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("create wallet for %s: %w", userID.String(), err)
	}
	return nil
}

func (r *walletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	query := `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = $1`

	var wallet entity.Wallet
	err := r.db.QueryRow(ctx, query, userID).Scan(&wallet.UserID, &wallet.Balance, &wallet.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find wallet", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find wallet of %s: %w", userID.String(), err)
	}

	return &wallet, nil
}

func (r *walletRepository) Credit(ctx context.Context, userID uuid.UUID, amount float64, reference *string, description string) (*entity.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid credit amount %.2f", amount)
	}

	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	return r.apply(ctx, userID, entity.WalletTxnCredit, amount, reference, description, query)
}

func (r *walletRepository) Debit(ctx context.Context, userID uuid.UUID, amount float64, reference *string, description string) (*entity.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("invalid debit amount %.2f", amount)
	}

	// the balance guard makes the check-and-debit a single statement
	query := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`

	return r.apply(ctx, userID, entity.WalletTxnDebit, amount, reference, description, query)
}

func (r *walletRepository) apply(
	ctx context.Context,
	userID uuid.UUID,
	txnType entity.WalletTxnType,
	amount float64,
	reference *string,
	description string,
	balanceQuery string,
) (*entity.WalletTransaction, error) {
	txn := &entity.WalletTransaction{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:      userID,
		Type:        txnType,
		Amount:      amount,
		Reference:   reference,
		Description: description,
	}

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, balanceQuery, userID, amount).Scan(&txn.BalanceAfter)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientBalance
		}
		if err != nil {
			return fmt.Errorf("update wallet balance: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO wallet_transactions (id, user_id, type, amount, balance_after, reference, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			txn.ID,
			txn.UserID,
			txn.Type,
			txn.Amount,
			txn.BalanceAfter,
			txn.Reference,
			txn.Description,
			txn.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert wallet transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientBalance) {
			r.log.Error("Failed to apply wallet transaction",
				zap.Error(err),
				zap.String("user_id", userID.String()),
				zap.String("type", string(txnType)),
				zap.Float64("amount", amount),
			)
		}
		return nil, err
	}

	return txn, nil
}

func (r *walletRepository) FindTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	query := `
		SELECT id, user_id, type, amount, balance_after, reference, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list wallet transactions", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find wallet transactions of %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var txns []*entity.WalletTransaction
	for rows.Next() {
		var txn entity.WalletTransaction
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.Reference,
			&txn.Description,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	return txns, rows.Err()
}

func (r *walletRepository) CountTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count wallet transactions of %s: %w", userID.String(), err)
	}
	return count, nil
}
