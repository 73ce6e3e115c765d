// Package service implements the registration write path, the in-memory
// filter/paginate query engine, and record mapping over the document store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"intake/internal/audit"
	"intake/internal/influencer"
	"intake/internal/platform/metrics"
	"intake/internal/registration/models"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"

	"intake/internal/docstore"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks intake/internal/docstore Store

// Collection is the store collection holding registration documents.
const Collection = "registrations"

// Registry answers referral-code questions for the write path.
type Registry interface {
	IsValidCode(code string) bool
	ResolveName(ctx context.Context, code string) (string, bool)
}

// Service orchestrates registration writes, reads, and deletion.
type Service struct {
	store    docstore.Store
	registry Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
	now      func() time.Time
	tracer   trace.Tracer
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithMetrics attaches the Prometheus metrics set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches an audit event publisher.
func WithAudit(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a registration Service over the given store and referral
// registry.
func New(store docstore.Store, registry Registry, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: registry,
		logger:   logger,
		now:      time.Now,
		tracer:   otel.Tracer("intake/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the submission's conditional invariants, resolves
// referral attribution, and writes exactly one document. The referral code,
// when supplied, must already have passed IsValidCode at the caller boundary;
// it is re-checked here so an invalid code can never reach the store.
func (s *Service) Register(ctx context.Context, sub models.Submission, referralCode string) (string, error) {
	if err := sub.ValidateConditionals(); err != nil {
		return "", err
	}

	fields := map[string]any{
		"firstName":            strings.TrimSpace(sub.FirstName),
		"lastName":             strings.TrimSpace(sub.LastName),
		"age":                  strings.TrimSpace(sub.Age),
		"mobileNumber":         strings.TrimSpace(sub.MobileNumber),
		"emailAddress":         strings.TrimSpace(sub.EmailAddress),
		"profession":           sub.Profession,
		"currentInvestments":   sub.CurrentInvestments,
		"mostInterestedIn":     sub.MostInterestedIn,
		"investmentBackground": sub.InvestmentBackground,
	}
	// Optional free-text fields are stored only when non-blank so documents
	// do not accumulate empty-string noise.
	if v := strings.TrimSpace(sub.MiddleName); v != "" {
		fields["middleName"] = v
	}
	if v := strings.TrimSpace(sub.ProfessionOther); v != "" {
		fields["professionOther"] = v
	}
	if v := strings.TrimSpace(sub.CurrentInvestmentsOther); v != "" {
		fields["currentInvestmentsOther"] = v
	}

	now := s.now().UnixMilli()
	fields["createdAt"] = now
	fields["updatedAt"] = now

	if code := strings.TrimSpace(referralCode); code != "" {
		normalized := influencer.Normalize(code)
		name, ok := s.registry.ResolveName(ctx, normalized)
		if !s.registry.IsValidCode(normalized) || !ok {
			return "", dErrors.New(dErrors.CodeValidation, "Invalid referral code")
		}
		fields["influencerId"] = normalized
		fields["referredBy"] = name
	} else {
		// No referral: attribute to the default promoter and omit
		// influencerId entirely. Its absence marks default attribution for
		// the influencer filter.
		fields["referredBy"] = influencer.DefaultName
	}

	id, err := s.store.Set(ctx, Collection, "", fields)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistrationsCreated()
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionRegistrationCreated,
		Subject: id,
		Detail:  fields["referredBy"].(string),
	})

	return id, nil
}

// Get fetches a single registration by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Record, error) {
	doc, err := s.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch registration")
	}

	record, err := mapRecord(doc)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to map registration")
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "Registration not found")
	}
	return record, nil
}

// Delete removes a registration, surfacing a missing id as not-found rather
// than an error class.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, Collection, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Registration not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch registration")
	}

	if err := s.store.Delete(ctx, Collection, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Registration not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete registration")
	}

	if s.metrics != nil {
		s.metrics.IncrementRegistrationsDeleted()
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionRegistrationDeleted,
		Subject: id,
	})
	return nil
}

// emit publishes an audit event; failures are logged and never fail the
// caller's operation.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}
