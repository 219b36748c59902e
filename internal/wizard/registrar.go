package wizard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sohamda/fantasy-football/internal/domain"
)

// Registrar hands a completed draft to the registration backend.
type Registrar interface {
	Register(ctx context.Context, draft domain.RegistrationDraft) (Receipt, error)
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(ctx context.Context, draft domain.RegistrationDraft) (Receipt, error)

func (f RegistrarFunc) Register(ctx context.Context, draft domain.RegistrationDraft) (Receipt, error) {
	return f(ctx, draft)
}

// Receipt identifies a stored registration.
type Receipt struct {
	UserID string `json:"user_id,omitempty"`
}

// RejectionError is a registration refused by the backend for a reason the user can act on.
// Its Reason is shown verbatim.
type RejectionError struct {
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Err != nil {
		return "registration rejected: " + e.Reason + ": " + e.Err.Error()
	}
	return "registration rejected: " + e.Reason
}

func (e *RejectionError) Unwrap() error { return e.Err }

// userMessage picks the text of the failure toast.
func userMessage(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) && rej.Reason != "" {
		return rej.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgSubmissionTimeout
	}
	return MsgSubmissionFailed
}

// SimulatedRegistrar stands in for a backend: it waits Delay and always succeeds.
type SimulatedRegistrar struct {
	Delay  time.Duration
	Logger *slog.Logger
}

// Register implements Registrar.
func (s SimulatedRegistrar) Register(ctx context.Context, draft domain.RegistrationDraft) (Receipt, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("simulating registration", "email", draft.Email, "plan_id", draft.SelectedPlanID)

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-t.C:
	}
	return Receipt{}, nil
}
