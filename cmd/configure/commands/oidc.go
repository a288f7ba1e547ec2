package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rwalling/tasklog/internal/database"
	"github.com/rwalling/tasklog/internal/models"
)

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	var issuer, audience, clientID, redirectURI, jwksURL string

	cmd := &cobra.Command{
		Use:   "oidc <provider-name>",
		Short: "Configure an OIDC provider",
		Long:  "Store or update the OIDC provider used for token verification. Provider name can be any identifier (e.g. 'firebase', 'cognito', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if issuer == "" || clientID == "" || redirectURI == "" {
				return fmt.Errorf("required flags: --issuer, --client-id, --redirect-uri")
			}

			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			cfg := &models.OIDCConfig{
				ID:          uuid.New(),
				Provider:    provider,
				Issuer:      issuer,
				Audience:    audience,
				ClientID:    clientID,
				RedirectURI: redirectURI,
			}
			if jwksURL == "" {
				jwksURL = issuer + "/.well-known/jwks.json"
			}
			cfg.JWKSUrl = &jwksURL

			repo := database.NewOIDCConfigRepository(db)
			if err := repo.Upsert(context.Background(), cfg); err != nil {
				return fmt.Errorf("store OIDC config: %w", err)
			}
			fmt.Printf("Stored OIDC configuration for provider: %s\n", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&audience, "audience", "", "Expected token audience (optional; skipped when empty)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (optional; derived from issuer when empty)")

	return cmd
}
