package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/validation"
)

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []domain.Toast
}

func (n *recordingNotifier) Post(message string, severity domain.Severity) (domain.Toast, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t := domain.Toast{ID: uint64(len(n.toasts) + 1), Message: message, Severity: severity}
	n.toasts = append(n.toasts, t)
	return t, nil
}

func (n *recordingNotifier) all() []domain.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Toast(nil), n.toasts...)
}

func newTestController(t *testing.T, reg Registrar) (*Controller, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	c := NewController(catalog.Default(), reg, n,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSubmitTimeout(time.Second),
	)
	return c, n
}

func succeed() Registrar {
	return RegistrarFunc(func(context.Context, domain.RegistrationDraft) (Receipt, error) {
		return Receipt{UserID: "u-1"}, nil
	})
}

func fillPersonalInfo(t *testing.T, c *Controller) {
	t.Helper()
	values := map[domain.Field]any{
		domain.FieldFirstName:       "Jan",
		domain.FieldLastName:        "de Vries",
		domain.FieldEmail:           "jan@example.com",
		domain.FieldPassword:        "Strong1!",
		domain.FieldConfirmPassword: "Strong1!",
		domain.FieldAgreeToTerms:    true,
	}
	for f, v := range values {
		require.NoError(t, c.UpdateField(f, v))
	}
}

func reachConfirmation(t *testing.T, c *Controller, planID string) {
	t.Helper()
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, planID))
	require.NoError(t, c.GoToNextStep())
}

func waitFor(t *testing.T, sub *Submission) {
	t.Helper()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish")
	}
}

func TestGoToNextStep_EmptyNamesAndEmailStayOnStepOne(t *testing.T) {
	c, _ := newTestController(t, succeed())
	fillPersonalInfo(t, c)
	require.NoError(t, c.UpdateField(domain.FieldFirstName, ""))
	require.NoError(t, c.UpdateField(domain.FieldLastName, ""))
	require.NoError(t, c.UpdateField(domain.FieldEmail, ""))

	err := c.GoToNextStep()
	assert.True(t, errors.Is(err, ErrValidationFailed))

	state := c.Snapshot()
	assert.Equal(t, domain.StepPersonalInfo, state.Step)
	assert.Equal(t, domain.FieldErrors{
		domain.FieldFirstName: validation.MsgFirstNameRequired,
		domain.FieldLastName:  validation.MsgLastNameRequired,
		domain.FieldEmail:     validation.MsgEmailRequired,
	}, state.Errors)
}

func TestUpdateField_ClearsOnlyThatFieldsError(t *testing.T) {
	c, _ := newTestController(t, succeed())
	require.Error(t, c.GoToNextStep())
	require.True(t, c.Snapshot().Errors.Has(domain.FieldEmail))

	require.NoError(t, c.UpdateField(domain.FieldEmail, "not-an-email"))

	errs := c.Snapshot().Errors
	assert.False(t, errs.Has(domain.FieldEmail), "edit clears the error even if the value is still invalid")
	assert.True(t, errs.Has(domain.FieldFirstName))
}

func TestUpdateField_RejectsUnknownField(t *testing.T) {
	c, _ := newTestController(t, succeed())
	err := c.UpdateField(domain.Field("nickname"), "jv")
	assert.True(t, errors.Is(err, domain.ErrUnknownField))
}

func TestUpdateFields_AllOrNothing(t *testing.T) {
	c, _ := newTestController(t, succeed())
	require.Error(t, c.GoToNextStep())

	err := c.UpdateFields(map[domain.Field]any{
		domain.FieldEmail:        "x@y.z",
		domain.FieldAgreeToTerms: "maybe",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidFieldValue))

	state := c.Snapshot()
	assert.Empty(t, state.Draft.Email)
	assert.False(t, state.Draft.AgreeToTerms)
	assert.Equal(t, validation.MsgEmailRequired, state.Errors[domain.FieldEmail])

	require.NoError(t, c.UpdateFields(map[domain.Field]any{
		domain.FieldEmail:        "x@y.z",
		domain.FieldAgreeToTerms: "on",
	}))
	state = c.Snapshot()
	assert.Equal(t, "x@y.z", state.Draft.Email)
	assert.True(t, state.Draft.AgreeToTerms)
	assert.NotContains(t, state.Errors, domain.FieldEmail)
	assert.NotContains(t, state.Errors, domain.FieldAgreeToTerms)
	assert.Equal(t, validation.MsgFirstNameRequired, state.Errors[domain.FieldFirstName])
}

func TestStepBounds(t *testing.T) {
	c, _ := newTestController(t, succeed())

	c.GoToPreviousStep()
	assert.Equal(t, domain.StepPersonalInfo, c.Snapshot().Step, "previous is floored at step one")

	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "starter"))
	require.NoError(t, c.GoToNextStep())
	require.Equal(t, domain.StepConfirmation, c.Snapshot().Step)

	require.NoError(t, c.GoToNextStep())
	assert.Equal(t, domain.StepConfirmation, c.Snapshot().Step, "next is capped at the last step")

	c.GoToPreviousStep()
	c.GoToPreviousStep()
	c.GoToPreviousStep()
	assert.Equal(t, domain.StepPersonalInfo, c.Snapshot().Step)
}

func TestGoToPreviousStep_NeverValidates(t *testing.T) {
	c, _ := newTestController(t, succeed())
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())

	require.NoError(t, c.UpdateField(domain.FieldEmail, ""))
	c.GoToPreviousStep()

	state := c.Snapshot()
	assert.Equal(t, domain.StepPersonalInfo, state.Step)
	assert.Empty(t, state.Errors)
}

func TestPlanSelectionGate(t *testing.T) {
	c, _ := newTestController(t, succeed())
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())

	assert.False(t, c.CanAdvance())
	err := c.GoToNextStep()
	assert.True(t, errors.Is(err, ErrPlanNotSelected))
	state := c.Snapshot()
	assert.Equal(t, domain.StepPlanSelection, state.Step)
	assert.Empty(t, state.Errors, "the plan gate is not a field error")

	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "premium-gold"))
	assert.False(t, c.CanAdvance(), "unknown plan ids do not enable next")

	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "professional"))
	assert.True(t, c.CanAdvance())
	require.NoError(t, c.GoToNextStep())
	assert.Equal(t, domain.StepConfirmation, c.Snapshot().Step)
}

func TestCanAdvance_TrueOutsidePlanSelection(t *testing.T) {
	c, _ := newTestController(t, succeed())
	assert.True(t, c.CanAdvance(), "step one is gated by validation only")
}

func TestSubmit_SuccessPostsToastAndCompletes(t *testing.T) {
	var got domain.RegistrationDraft
	reg := RegistrarFunc(func(_ context.Context, d domain.RegistrationDraft) (Receipt, error) {
		got = d
		return Receipt{UserID: "u-42"}, nil
	})
	c, n := newTestController(t, reg)
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "professional"))
	require.NoError(t, c.GoToNextStep())

	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	waitFor(t, sub)

	require.NoError(t, sub.Err())
	assert.Equal(t, "u-42", sub.Receipt().UserID)
	assert.Equal(t, "Jan", got.FirstName)
	assert.Equal(t, "professional", got.SelectedPlanID)

	toasts := n.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, MsgRegistrationSucceeded, toasts[0].Message)
	assert.Equal(t, domain.SeveritySuccess, toasts[0].Severity)

	state := c.Snapshot()
	assert.True(t, state.Completed)
	assert.False(t, state.Submitting)

	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrAlreadyRegistered))
}

func TestSubmit_FailureKeepsDraftAndAllowsRetry(t *testing.T) {
	calls := 0
	reg := RegistrarFunc(func(context.Context, domain.RegistrationDraft) (Receipt, error) {
		calls++
		if calls == 1 {
			return Receipt{}, &RejectionError{Reason: "An account with this email already exists"}
		}
		return Receipt{}, nil
	})
	c, n := newTestController(t, reg)
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "starter"))
	require.NoError(t, c.GoToNextStep())

	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	waitFor(t, sub)
	require.Error(t, sub.Err())

	state := c.Snapshot()
	assert.False(t, state.Completed)
	assert.Equal(t, domain.StepConfirmation, state.Step)
	assert.Equal(t, "jan@example.com", state.Draft.Email)

	toasts := n.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, "An account with this email already exists", toasts[0].Message)
	assert.Equal(t, domain.SeverityError, toasts[0].Severity)

	sub, err = c.Submit(context.Background())
	require.NoError(t, err)
	waitFor(t, sub)
	assert.NoError(t, sub.Err())
	assert.True(t, c.Snapshot().Completed)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	reg := RegistrarFunc(func(context.Context, domain.RegistrationDraft) (Receipt, error) {
		<-release
		return Receipt{}, nil
	})
	c, _ := newTestController(t, reg)
	reachConfirmation(t, c, "starter")

	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Snapshot().Submitting)

	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrSubmissionInFlight))

	close(release)
	waitFor(t, sub)
}

func TestSubmit_SurvivesCancelledRequestContext(t *testing.T) {
	c, n := newTestController(t, SimulatedRegistrar{
		Delay:  10 * time.Millisecond,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	reachConfirmation(t, c, "starter")

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := c.Submit(ctx)
	require.NoError(t, err)
	cancel()

	waitFor(t, sub)
	assert.NoError(t, sub.Err())
	require.Len(t, n.all(), 1)
	assert.Equal(t, domain.SeveritySuccess, n.all()[0].Severity)
}

func TestSubmit_TimeoutUsesTimeoutMessage(t *testing.T) {
	reg := RegistrarFunc(func(ctx context.Context, _ domain.RegistrationDraft) (Receipt, error) {
		<-ctx.Done()
		return Receipt{}, ctx.Err()
	})
	n := &recordingNotifier{}
	c := NewController(catalog.Default(), reg, n,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSubmitTimeout(10*time.Millisecond),
	)
	reachConfirmation(t, c, "starter")

	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	waitFor(t, sub)

	assert.True(t, errors.Is(sub.Err(), context.DeadlineExceeded))
	require.Len(t, n.all(), 1)
	assert.Equal(t, MsgSubmissionTimeout, n.all()[0].Message)
}

func TestSubmit_ConfirmationRechecksEditedDraft(t *testing.T) {
	called := false
	reg := RegistrarFunc(func(context.Context, domain.RegistrationDraft) (Receipt, error) {
		called = true
		return Receipt{}, nil
	})
	c, n := newTestController(t, reg)
	reachConfirmation(t, c, "expert")

	require.NoError(t, c.UpdateField(domain.FieldEmail, "broken"))
	_, err := c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Equal(t, validation.MsgEmailInvalid, c.Snapshot().Errors[domain.FieldEmail])

	toasts := n.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, MsgReviewDetails, toasts[0].Message)
	assert.Equal(t, domain.SeverityError, toasts[0].Severity)

	require.NoError(t, c.UpdateField(domain.FieldEmail, "jan@example.com"))
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, ""))
	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrPlanNotSelected))
	assert.False(t, called)
}

func TestSubmit_RefusedBeforeConfirmation(t *testing.T) {
	var calls int
	reg := RegistrarFunc(func(context.Context, domain.RegistrationDraft) (Receipt, error) {
		calls++
		return Receipt{}, nil
	})
	c, n := newTestController(t, reg)

	_, err := c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrNotAtConfirmation))

	fillPersonalInfo(t, c)
	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrNotAtConfirmation))

	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "starter"))
	_, err = c.Submit(context.Background())
	assert.True(t, errors.Is(err, ErrNotAtConfirmation))

	state := c.Snapshot()
	assert.Equal(t, domain.StepPlanSelection, state.Step)
	assert.False(t, state.Submitting)
	assert.Zero(t, calls)
	assert.Empty(t, n.all())
}

type countingObserver struct {
	mu          sync.Mutex
	transitions []string
	submissions []string
}

func (o *countingObserver) StepTransition(_, _ domain.WizardStep, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, outcome)
}

func (o *countingObserver) SubmissionFinished(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.submissions = append(o.submissions, outcome)
}

func TestObserver_SeesOutcomes(t *testing.T) {
	obs := &countingObserver{}
	c := NewController(catalog.Default(), succeed(), nil,
		WithObserver(obs),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	_ = c.GoToNextStep()
	fillPersonalInfo(t, c)
	require.NoError(t, c.GoToNextStep())
	_ = c.GoToNextStep()
	c.GoToPreviousStep()
	require.NoError(t, c.GoToNextStep())
	require.NoError(t, c.UpdateField(domain.FieldSelectedPlan, "starter"))
	require.NoError(t, c.GoToNextStep())

	sub, err := c.Submit(context.Background())
	require.NoError(t, err)
	waitFor(t, sub)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"invalid", "advanced", "blocked", "back", "advanced", "advanced"}, obs.transitions)
	assert.Equal(t, []string{"success"}, obs.submissions)
}
