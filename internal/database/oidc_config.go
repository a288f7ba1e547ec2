package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rwalling/tasklog/internal/models"
)

// OIDCConfigRepository handles OIDC configuration database operations
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

// Upsert inserts or replaces the configuration for a provider
func (r *OIDCConfigRepository) Upsert(ctx context.Context, config *models.OIDCConfig) error {
	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}
	now := time.Now()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO oidc_config (id, provider, issuer, audience, client_id, redirect_uri, jwks_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (provider) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			audience = EXCLUDED.audience,
			client_id = EXCLUDED.client_id,
			redirect_uri = EXCLUDED.redirect_uri,
			jwks_url = EXCLUDED.jwks_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`,
		config.ID,
		config.Provider,
		config.Issuer,
		config.Audience,
		config.ClientID,
		config.RedirectURI,
		config.JWKSUrl,
		now,
	).Scan(&config.ID, &config.CreatedAt, &config.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert OIDC config: %w", err)
	}

	return nil
}

// GetByProvider retrieves the OIDC configuration for a provider name
func (r *OIDCConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	config := &models.OIDCConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, provider, issuer, audience, client_id, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config
		WHERE provider = $1
	`, provider).Scan(
		&config.ID,
		&config.Provider,
		&config.Issuer,
		&config.Audience,
		&config.ClientID,
		&config.RedirectURI,
		&config.JWKSUrl,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("OIDC config not found for provider %s: %w", provider, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}

	return config, nil
}

// GetAll retrieves all OIDC configurations ordered by provider name
func (r *OIDCConfigRepository) GetAll(ctx context.Context) ([]*models.OIDCConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, issuer, audience, client_id, redirect_uri, jwks_url, created_at, updated_at
		FROM oidc_config
		ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query OIDC configs: %w", err)
	}
	defer closeRows(rows)

	configs := []*models.OIDCConfig{}
	for rows.Next() {
		config := &models.OIDCConfig{}
		if err := rows.Scan(
			&config.ID,
			&config.Provider,
			&config.Issuer,
			&config.Audience,
			&config.ClientID,
			&config.RedirectURI,
			&config.JWKSUrl,
			&config.CreatedAt,
			&config.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan OIDC config: %w", err)
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating OIDC configs: %w", err)
	}

	return configs, nil
}
