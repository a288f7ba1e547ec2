package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/request"
	"github.com/rwalling/tasklog/internal/services/oidc"
)

// Auth creates the authentication gate: it verifies the bearer token against
// the configured identity provider and attaches the verified claims to the
// request context. The API does not partition data per caller; claims only
// establish that the request is authorized.
func Auth(oidcProvider *oidc.Provider, jwksManager *oidc.JWKSManager, providerName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAuthError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondAuthError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}
			tokenString := parts[1]

			ctx := r.Context()
			oidcConfig, err := oidcProvider.GetConfig(ctx, providerName)
			if err != nil {
				logger.Error("failed_to_get_oidc_config",
					zap.String("provider", providerName),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondAuthError(w, http.StatusInternalServerError, "Failed to get OIDC configuration")
				return
			}
			if oidcConfig.JWKSUrl == nil || *oidcConfig.JWKSUrl == "" {
				respondAuthError(w, http.StatusInternalServerError, "JWKS URL not configured")
				return
			}

			verifier := oidc.NewVerifier(jwksManager, oidcConfig.Issuer, oidcConfig.Audience)
			claims, err := verifier.Verify(ctx, tokenString, *oidcConfig.JWKSUrl)
			if err != nil {
				logger.Warn("token_verification_failed",
					zap.String("issuer", oidcConfig.Issuer),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithClaims(ctx, claims)))
		})
	}
}

func respondAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		_ = err
	}
}
