package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"intake/internal/audit"
	"intake/internal/docstore"
	"intake/internal/influencer"
	"intake/internal/registration/models"
	"intake/internal/registration/service/mocks"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
)

type stubRegistry struct {
	names map[string]string
}

func (r *stubRegistry) IsValidCode(code string) bool {
	_, ok := r.names[code]
	return ok
}

func (r *stubRegistry) ResolveName(_ context.Context, code string) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

type recordingPublisher struct {
	events []audit.Event
	err    error
}

func (p *recordingPublisher) Emit(_ context.Context, event audit.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func testRegistry() *stubRegistry {
	return &stubRegistry{names: map[string]string{
		"SH7X9K2M4PLQ": "Sherine hamdy",
		"PS4W6M9N1YRV": "POSH",
	}}
}

func validSubmission() models.Submission {
	return models.Submission{
		FirstName:            "Nour",
		LastName:             "Hassan",
		Age:                  "29",
		MobileNumber:         "+201001234567",
		EmailAddress:         "nour@example.com",
		Profession:           "Engineer",
		CurrentInvestments:   []string{"Stocks"},
		MostInterestedIn:     "Gold",
		InvestmentBackground: "Beginner",
	}
}

func newTestService(t *testing.T, store docstore.Store, opts ...Option) *Service {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	return New(store, testRegistry(), logger, opts...)
}

func TestRegisterDefaultAttribution(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	publisher := &recordingPublisher{}
	svc := newTestService(t, store,
		WithClock(func() time.Time { return at }),
		WithAudit(publisher),
	)

	var saved map[string]any
	store.EXPECT().
		Set(gomock.Any(), Collection, "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields map[string]any) (string, error) {
			saved = fields
			return "reg-1", nil
		})

	id, err := svc.Register(context.Background(), validSubmission(), "")
	require.NoError(t, err)
	require.Equal(t, "reg-1", id)

	require.Equal(t, influencer.DefaultName, saved["referredBy"])
	require.NotContains(t, saved, "influencerId")
	require.Equal(t, at.UnixMilli(), saved["createdAt"])
	require.Equal(t, at.UnixMilli(), saved["updatedAt"])
	require.NotContains(t, saved, "middleName")

	require.Len(t, publisher.events, 1)
	require.Equal(t, audit.ActionRegistrationCreated, publisher.events[0].Action)
	require.Equal(t, "reg-1", publisher.events[0].Subject)
	require.Equal(t, at, publisher.events[0].Timestamp)
}

func TestRegisterWithReferralCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	var saved map[string]any
	store.EXPECT().
		Set(gomock.Any(), Collection, "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields map[string]any) (string, error) {
			saved = fields
			return "reg-2", nil
		})

	// Lowercase code with surrounding whitespace is normalized before it
	// reaches the stored document.
	_, err := svc.Register(context.Background(), validSubmission(), "  sh7x9k2m4plq ")
	require.NoError(t, err)

	require.Equal(t, "SH7X9K2M4PLQ", saved["influencerId"])
	require.Equal(t, "Sherine hamdy", saved["referredBy"])
}

func TestRegisterInvalidReferralCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), validSubmission(), "NOPE123")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRegisterConditionalViolation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	sub := validSubmission()
	sub.Profession = "Other"
	sub.ProfessionOther = ""

	_, err := svc.Register(context.Background(), sub, "")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRegisterStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	store.EXPECT().
		Set(gomock.Any(), Collection, "", gomock.Any()).
		Return("", errors.New("backend down"))

	_, err := svc.Register(context.Background(), validSubmission(), "")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestRegisterOptionalFieldsStoredWhenPresent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	var saved map[string]any
	store.EXPECT().
		Set(gomock.Any(), Collection, "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, fields map[string]any) (string, error) {
			saved = fields
			return "reg-3", nil
		})

	sub := validSubmission()
	sub.MiddleName = "  Ali "
	sub.Profession = "Other"
	sub.ProfessionOther = "Sculptor"

	_, err := svc.Register(context.Background(), sub, "")
	require.NoError(t, err)
	require.Equal(t, "Ali", saved["middleName"])
	require.Equal(t, "Sculptor", saved["professionOther"])
}

func TestGetNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	store.EXPECT().
		Get(gomock.Any(), Collection, "missing").
		Return(nil, sentinel.ErrNotFound)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGetMapsDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	store.EXPECT().
		Get(gomock.Any(), Collection, "reg-4").
		Return(&docstore.Document{
			ID: "reg-4",
			Fields: map[string]any{
				"firstName":    "Nour",
				"lastName":     "Hassan",
				"age":          int64(29),
				"referredBy":   "POSH",
				"influencerId": "PS4W6M9N1YRV",
				"createdAt":    int64(1700000000000),
			},
		}, nil)

	record, err := svc.Get(context.Background(), "reg-4")
	require.NoError(t, err)
	require.Equal(t, "reg-4", record.ID)
	require.Equal(t, "29", record.Age)
	require.Equal(t, "POSH", record.ReferredBy)
}

func TestDeleteNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := newTestService(t, store)

	store.EXPECT().
		Get(gomock.Any(), Collection, "missing").
		Return(nil, sentinel.ErrNotFound)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDeleteEmitsAudit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	publisher := &recordingPublisher{}
	svc := newTestService(t, store, WithAudit(publisher))

	store.EXPECT().
		Get(gomock.Any(), Collection, "reg-5").
		Return(&docstore.Document{ID: "reg-5", Fields: map[string]any{"firstName": "Nour"}}, nil)
	store.EXPECT().
		Delete(gomock.Any(), Collection, "reg-5").
		Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "reg-5"))
	require.Len(t, publisher.events, 1)
	require.Equal(t, audit.ActionRegistrationDeleted, publisher.events[0].Action)
	require.Equal(t, "reg-5", publisher.events[0].Subject)
}

func TestAuditFailureDoesNotFailRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	publisher := &recordingPublisher{err: errors.New("broker unreachable")}
	svc := newTestService(t, store, WithAudit(publisher))

	store.EXPECT().
		Set(gomock.Any(), Collection, "", gomock.Any()).
		Return("reg-6", nil)

	id, err := svc.Register(context.Background(), validSubmission(), "")
	require.NoError(t, err)
	require.Equal(t, "reg-6", id)
}
