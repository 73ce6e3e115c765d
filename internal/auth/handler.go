// Package auth issues admin access tokens against the fixed operator
// credentials from configuration.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"intake/internal/platform/middleware"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
)

// TokenIssuer mints a signed access token for an authenticated username.
type TokenIssuer interface {
	GenerateToken(username string, expiresIn time.Duration) (string, error)
}

// Handler handles the token endpoint.
type Handler struct {
	logger   *slog.Logger
	issuer   TokenIssuer
	username string
	password string
	tokenTTL time.Duration
}

// New creates a new auth Handler.
func New(issuer TokenIssuer, username, password string, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		issuer:   issuer,
		username: username,
		password: password,
		tokenTTL: tokenTTL,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/token", h.handleToken)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid token request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.WarnContext(ctx, "token request with bad credentials",
			"request_id", requestID,
			"username", req.Username,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid username or password"))
		return
	}

	token, err := h.issuer.GenerateToken(req.Username, h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{
		Success:   true,
		Token:     token,
		TokenType: "Bearer",
	})
}
