/**
 * @description
 * RegistrationService is the persistent registration backend behind the wizard.
 * It re-checks the selected plan, hashes the password, and stores the user together
 * with a user.registered outbox event.
 *
 * @dependencies
 * - golang.org/x/crypto/bcrypt: Password hashing.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/store"
	"github.com/sohamda/fantasy-football/internal/validation"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

const (
	MsgEmailTaken   = "An account with this email already exists"
	MsgPlanNotFound = "The selected plan is no longer available"
)

// RegistrationService implements wizard.Registrar on top of a RegistrationRepository.
type RegistrationService struct {
	repo       store.RegistrationRepository
	catalog    *catalog.Catalog
	exchange   string
	routingKey string
	bcryptCost int
	logger     *slog.Logger
	now        func() time.Time
}

var _ wizard.Registrar = (*RegistrationService)(nil)

// NewRegistrationService builds the service. A bcryptCost of zero uses bcrypt.DefaultCost.
func NewRegistrationService(
	repo store.RegistrationRepository,
	cat *catalog.Catalog,
	exchange, routingKey string,
	bcryptCost int,
	logger *slog.Logger,
) *RegistrationService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		repo:       repo,
		catalog:    cat,
		exchange:   exchange,
		routingKey: routingKey,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Register stores the draft as a new user.
func (s *RegistrationService) Register(ctx context.Context, draft domain.RegistrationDraft) (wizard.Receipt, error) {
	if !s.catalog.Contains(draft.SelectedPlanID) {
		return wizard.Receipt{}, &wizard.RejectionError{Reason: MsgPlanNotFound}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return wizard.Receipt{}, &wizard.RejectionError{
			Reason: fmt.Sprintf(validation.MsgPasswordTooLong, validation.MaxPasswordBytes),
			Err:    err,
		}
	}
	if err != nil {
		return wizard.Receipt{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:                 strings.ToLower(strings.TrimSpace(draft.Email)),
		FirstName:             strings.TrimSpace(draft.FirstName),
		LastName:              strings.TrimSpace(draft.LastName),
		PasswordHash:          string(hash),
		PlanID:                draft.SelectedPlanID,
		SubscribeToNewsletter: draft.SubscribeToNewsletter,
		TermsAcceptedAt:       s.now().UTC(),
	}

	userID, err := s.repo.CreateUserAndEnqueueEvent(ctx, user, s.exchange, s.routingKey)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.logger.Warn("registration rejected: duplicate email", "email", user.Email)
			return wizard.Receipt{}, &wizard.RejectionError{Reason: MsgEmailTaken, Err: err}
		}
		return wizard.Receipt{}, fmt.Errorf("failed to store registration: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "plan_id", user.PlanID)
	return wizard.Receipt{UserID: userID}, nil
}
