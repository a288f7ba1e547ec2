package models

import (
	"time"

	"github.com/google/uuid"
)

// OIDCConfig represents the identity provider the auth gate verifies bearer
// tokens against. Stored in the database and managed with the configure CLI.
type OIDCConfig struct {
	ID          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	Issuer      string    `json:"issuer"`
	Audience    string    `json:"audience"`
	ClientID    string    `json:"client_id"`
	RedirectURI string    `json:"redirect_uri"`
	JWKSUrl     *string   `json:"jwks_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
