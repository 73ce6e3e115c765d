// Package handler exposes the registration HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"intake/internal/influencer"
	"intake/internal/platform/metrics"
	"intake/internal/platform/middleware"
	"intake/internal/registration/models"
	"intake/internal/registration/service"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service defines the registration operations the handler depends on.
type Service interface {
	Register(ctx context.Context, sub models.Submission, referralCode string) (string, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q service.ListQuery) (*models.Page, error)
}

// CodeChecker answers whether a referral code is known.
type CodeChecker interface {
	IsValidCode(code string) bool
}

// EmailSender delivers the confirmation message after a successful
// registration.
type EmailSender interface {
	SendConfirmation(ctx context.Context, to string) error
}

// Handler handles registration endpoints.
type Handler struct {
	logger       *slog.Logger
	service      Service
	codes        CodeChecker
	email        EmailSender
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new registration Handler. email may be nil when confirmation
// mail is not configured.
func New(
	svc Service,
	codes CodeChecker,
	email EmailSender,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		service:      svc,
		codes:        codes,
		email:        email,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the registration routes with the chi router. The intake
// endpoint is public; listing, reads, and deletion require an admin token.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.LatencyMiddleware(h.metrics))

	router.Post("/", h.handleCreate)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		admin.Get("/", h.handleList)
		admin.Get("/{id}", h.handleGetByID)
		admin.Delete("/{id}", h.handleDelete)
	})

	r.Mount("/api/registrations", router)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	// The referral code arrives as a query parameter so shared links keep the
	// form body stable. Reject unknown codes before touching the body.
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref != "" && !h.codes.IsValidCode(influencer.Normalize(ref)) {
		h.logger.WarnContext(ctx, "registration with unknown referral code",
			"request_id", requestID,
			"ref", ref,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("The referral code '%s' is not valid", ref)))
		return
	}

	var sub models.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.WarnContext(ctx, "invalid registration request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := sub.Validate(); err != nil {
		h.logger.WarnContext(ctx, "registration failed validation",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	id, err := h.service.Register(ctx, sub, ref)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeValidation) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to save registration",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration"))
		return
	}

	h.sendConfirmation(ctx, sub.EmailAddress, requestID)

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration saved successfully",
		"id":      id,
	})
}

// sendConfirmation delivers the confirmation email. Delivery failure never
// fails the registration.
func (h *Handler) sendConfirmation(ctx context.Context, to, requestID string) {
	if h.email == nil {
		return
	}
	if err := h.email.SendConfirmation(ctx, to); err != nil {
		h.logger.WarnContext(ctx, "confirmation email failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		if h.metrics != nil {
			h.metrics.IncrementEmailFailures()
		}
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementEmailsSent()
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	q := service.ListQuery{
		Page:       intParam(r, "page", 0),
		Size:       intParam(r, "size", defaultPageSize),
		Name:       r.URL.Query().Get("name"),
		Influencer: r.URL.Query().Get("influencer"),
	}
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size < 1 {
		q.Size = defaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}

	page, err := h.service.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list registrations",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    page.Data,
		"pagination": map[string]any{
			"page":          page.Page,
			"size":          page.Size,
			"totalElements": page.TotalElements,
			"totalPages":    page.TotalPages,
			"hasNext":       page.HasNext,
			"hasPrevious":   page.HasPrevious,
		},
	})
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	record, err := h.service.Get(ctx, id)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to fetch registration",
				"request_id", middleware.GetRequestID(ctx),
				"id", id,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    record,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, id); err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to delete registration",
				"request_id", middleware.GetRequestID(ctx),
				"id", id,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registration deleted successfully",
	})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
