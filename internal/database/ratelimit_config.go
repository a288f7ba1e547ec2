package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rwalling/tasklog/internal/models"
)

// RatelimitConfigRepository handles rate limit configuration storage
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get returns the stored rate limit configuration, or nil when none exists
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*models.RatelimitConfig, error) {
	config := &models.RatelimitConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT rate, created_at, updated_at
		FROM ratelimit_config
		WHERE config_key = 'default'
	`).Scan(&config.Rate, &config.CreatedAt, &config.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ratelimit config: %w", err)
	}
	return config, nil
}

// Set inserts or replaces the rate limit configuration
func (r *RatelimitConfigRepository) Set(ctx context.Context, config *models.RatelimitConfig) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ('default', $1, $2, $2)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, config.Rate, now)
	if err != nil {
		return fmt.Errorf("failed to set ratelimit config: %w", err)
	}
	return nil
}
