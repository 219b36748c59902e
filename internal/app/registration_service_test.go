package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/store"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

type registrationRepoStub struct {
	user       *domain.User
	exchange   string
	routingKey string
	err        error
}

func (s *registrationRepoStub) CreateUserAndEnqueueEvent(_ context.Context, user *domain.User, exchange, routingKey string) (string, error) {
	s.user, s.exchange, s.routingKey = user, exchange, routingKey
	if s.err != nil {
		return "", s.err
	}
	return "user-1", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registrationDraft() domain.RegistrationDraft {
	return domain.RegistrationDraft{
		FirstName:             " Jan ",
		LastName:              "de Vries",
		Email:                 "Jan@Example.com ",
		Password:              "Strong1!",
		ConfirmPassword:       "Strong1!",
		SelectedPlanID:        "professional",
		AgreeToTerms:          true,
		SubscribeToNewsletter: true,
	}
}

func TestRegistrationService_StoresHashedUserAndEvent(t *testing.T) {
	repo := &registrationRepoStub{}
	svc := NewRegistrationService(repo, catalog.Default(), "user_events", "user.registered", bcrypt.MinCost, discardLogger())
	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	receipt, err := svc.Register(context.Background(), registrationDraft())
	require.NoError(t, err)
	assert.Equal(t, "user-1", receipt.UserID)

	require.NotNil(t, repo.user)
	assert.Equal(t, "user_events", repo.exchange)
	assert.Equal(t, "user.registered", repo.routingKey)
	assert.Equal(t, "jan@example.com", repo.user.Email)
	assert.Equal(t, "Jan", repo.user.FirstName)
	assert.Equal(t, "professional", repo.user.PlanID)
	assert.True(t, repo.user.SubscribeToNewsletter)
	assert.Equal(t, fixed, repo.user.TermsAcceptedAt)
	assert.NotEqual(t, "Strong1!", repo.user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.user.PasswordHash), []byte("Strong1!")))
}

func TestRegistrationService_DuplicateEmailIsRejection(t *testing.T) {
	repo := &registrationRepoStub{err: store.ErrDuplicateEmail}
	svc := NewRegistrationService(repo, catalog.Default(), "user_events", "user.registered", bcrypt.MinCost, discardLogger())

	_, err := svc.Register(context.Background(), registrationDraft())

	var rej *wizard.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, MsgEmailTaken, rej.Reason)
	assert.True(t, errors.Is(err, store.ErrDuplicateEmail))
}

func TestRegistrationService_UnknownPlanIsRejectedBeforeStorage(t *testing.T) {
	repo := &registrationRepoStub{}
	svc := NewRegistrationService(repo, catalog.Default(), "user_events", "user.registered", bcrypt.MinCost, discardLogger())

	draft := registrationDraft()
	draft.SelectedPlanID = "gold"
	_, err := svc.Register(context.Background(), draft)

	var rej *wizard.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, MsgPlanNotFound, rej.Reason)
	assert.Nil(t, repo.user)
}

func TestRegistrationService_OverlongPasswordIsRejection(t *testing.T) {
	repo := &registrationRepoStub{}
	svc := NewRegistrationService(repo, catalog.Default(), "user_events", "user.registered", bcrypt.MinCost, discardLogger())

	draft := registrationDraft()
	draft.Password = "Aa1!" + strings.Repeat("x", 69)
	draft.ConfirmPassword = draft.Password
	_, err := svc.Register(context.Background(), draft)

	var rej *wizard.RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "Password must be at most 72 bytes long", rej.Reason)
	assert.True(t, errors.Is(err, bcrypt.ErrPasswordTooLong))
	assert.Nil(t, repo.user)
}

func TestRegistrationService_StorageErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &registrationRepoStub{err: boom}
	svc := NewRegistrationService(repo, catalog.Default(), "user_events", "user.registered", bcrypt.MinCost, discardLogger())

	_, err := svc.Register(context.Background(), registrationDraft())
	assert.True(t, errors.Is(err, boom))

	var rej *wizard.RejectionError
	assert.False(t, errors.As(err, &rej), "infrastructure errors are not user-actionable")
}
