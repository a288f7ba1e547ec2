package handlers

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/request"
	"github.com/rwalling/tasklog/internal/services/oidc"
)

// AuthHandler serves the OIDC login configuration and the current identity
type AuthHandler struct {
	oidcProvider *oidc.Provider
	providerName string
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oidcProvider *oidc.Provider, providerName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oidcProvider: oidcProvider,
		providerName: providerName,
		logger:       logger,
	}
}

// GetOIDCLogin returns the browser-side login configuration for the active
// provider. This endpoint is public; the SPA needs it before it has a token.
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.oidcProvider.GetLoginConfig(r.Context(), h.providerName)
	if err != nil {
		h.logger.Error("failed_to_load_login_config",
			zap.String("provider", h.providerName),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Login configuration is not available")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// GetMe returns the verified claims for the calling token
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing authentication")
		return
	}
	respondJSON(w, http.StatusOK, claims)
}
