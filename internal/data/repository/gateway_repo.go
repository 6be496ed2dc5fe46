package repository

import (
	"context"
	"errors"
	"fmt"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type GatewayRepository interface {
	FindAll(ctx context.Context) ([]*entity.GatewaySetting, error)
	FindByProvider(ctx context.Context, provider string) (*entity.GatewaySetting, error)
	Upsert(ctx context.Context, setting *entity.GatewaySetting) error
}

type gatewayRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGatewayRepository(db database.PgxIface, log *zap.Logger) GatewayRepository {
	return &gatewayRepository{
		db:  db,
		log: log.With(zap.String("repository", "gateway")),
	}
}

func scanGateway(row scanner) (*entity.GatewaySetting, error) {
	var g entity.GatewaySetting
	if err := row.Scan(&g.Provider, &g.KeyID, &g.KeySecret, &g.Mode, &g.IsActive, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gatewayRepository) FindAll(ctx context.Context) ([]*entity.GatewaySetting, error) {
	query := `SELECT provider, key_id, key_secret, mode, is_active, updated_at FROM gateway_settings ORDER BY provider`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list gateway settings", zap.Error(err))
		return nil, fmt.Errorf("find all gateway settings: %w", err)
	}
	defer rows.Close()

	var settings []*entity.GatewaySetting
	for rows.Next() {
		setting, err := scanGateway(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gateway setting: %w", err)
		}
		settings = append(settings, setting)
	}

	return settings, rows.Err()
}

func (r *gatewayRepository) FindByProvider(ctx context.Context, provider string) (*entity.GatewaySetting, error) {
	query := `SELECT provider, key_id, key_secret, mode, is_active, updated_at FROM gateway_settings WHERE provider = $1`

	setting, err := scanGateway(r.db.QueryRow(ctx, query, provider))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find gateway setting", zap.Error(err), zap.String("provider", provider))
		return nil, fmt.Errorf("find gateway setting %s: %w", provider, err)
	}

	return setting, nil
}

// Upsert stores the setting; activating a provider deactivates the others
func (r *gatewayRepository) Upsert(ctx context.Context, setting *entity.GatewaySetting) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if setting.IsActive {
			if _, err := tx.Exec(ctx, `UPDATE gateway_settings SET is_active = FALSE WHERE provider <> $1`, setting.Provider); err != nil {
				return fmt.Errorf("deactivate other gateways: %w", err)
			}
		}

		query := `
			INSERT INTO gateway_settings (provider, key_id, key_secret, mode, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (provider) DO UPDATE
			SET key_id = EXCLUDED.key_id,
			    key_secret = EXCLUDED.key_secret,
			    mode = EXCLUDED.mode,
			    is_active = EXCLUDED.is_active,
			    updated_at = EXCLUDED.updated_at
		`

		_, err := tx.Exec(ctx, query,
			setting.Provider,
			setting.KeyID,
			setting.KeySecret,
			setting.Mode,
			setting.IsActive,
			setting.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to upsert gateway setting", zap.Error(err), zap.String("provider", setting.Provider))
			return fmt.Errorf("upsert gateway setting %s: %w", setting.Provider, err)
		}
		return nil
	})
}
