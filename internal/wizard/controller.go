/**
 * @description
 * The Controller is the form state of a single registration wizard: it owns the
 * draft, the current step and the field errors, gates step transitions through the
 * validation rules and hands the finished draft to a Registrar.
 */
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/validation"
)

const (
	MsgRegistrationSucceeded = "Registration successful! Welcome to Poly Fantasy Football!"
	MsgSubmissionFailed      = "Registration failed. Please try again."
	MsgSubmissionTimeout     = "Registration is taking too long. Please try again."
	MsgPlanRequired          = "Please select a subscription plan to continue"
	MsgReviewDetails         = "Some of your details need attention. Go back to Personal Information to fix them."

	defaultSubmitTimeout = 30 * time.Second
)

var (
	ErrValidationFailed   = errors.New("step validation failed")
	ErrPlanNotSelected    = errors.New("no subscription plan selected")
	ErrSubmissionInFlight = errors.New("registration already being submitted")
	ErrAlreadyRegistered  = errors.New("registration already completed")
	ErrNotAtConfirmation  = errors.New("registration can only be submitted from the confirmation step")
)

// Notifier receives the toasts produced by a submission.
type Notifier interface {
	Post(message string, severity domain.Severity) (domain.Toast, error)
}

// Observer is told about transitions and submissions. Outcome values are short
// labels such as "advanced", "invalid", "blocked", "success", "failure".
type Observer interface {
	StepTransition(from, to domain.WizardStep, outcome string)
	SubmissionFinished(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) StepTransition(domain.WizardStep, domain.WizardStep, string) {}
func (nopObserver) SubmissionFinished(string, time.Duration)                    {}

// State is a point-in-time copy of the controller.
type State struct {
	Step       domain.WizardStep        `json:"step"`
	Draft      domain.RegistrationDraft `json:"-"`
	Errors     domain.FieldErrors       `json:"errors"`
	CanAdvance bool                     `json:"can_advance"`
	Submitting bool                     `json:"submitting"`
	Completed  bool                     `json:"completed"`
}

// Controller holds one wizard session's form state. It is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	draft      domain.RegistrationDraft
	step       domain.WizardStep
	errors     domain.FieldErrors
	submitting bool
	completed  bool

	catalog       *catalog.Catalog
	rules         validation.Rules
	registrar     Registrar
	notifier      Notifier
	observer      Observer
	logger        *slog.Logger
	submitTimeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

func WithRules(r validation.Rules) Option { return func(c *Controller) { c.rules = r } }

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.submitTimeout = d
		}
	}
}

// NewController starts a wizard at step one with an empty draft.
func NewController(cat *catalog.Catalog, registrar Registrar, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		step:          domain.FirstStep,
		errors:        domain.FieldErrors{},
		catalog:       cat,
		rules:         validation.DefaultRules(),
		registrar:     registrar,
		notifier:      notifier,
		observer:      nopObserver{},
		logger:        slog.Default(),
		submitTimeout: defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Step:       c.step,
		Draft:      c.draft,
		Errors:     c.errors.Clone(),
		CanAdvance: c.canAdvanceLocked(),
		Submitting: c.submitting,
		Completed:  c.completed,
	}
}

// Catalog returns the plan catalog the controller resolves plan ids against.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// UpdateField overwrites a draft field and clears that field's error, if any.
func (c *Controller) UpdateField(field domain.Field, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.draft.Set(field, value); err != nil {
		return err
	}
	delete(c.errors, field)
	return nil
}

// UpdateFields applies several values at once. If any value is rejected the draft
// is left untouched.
func (c *Controller) UpdateFields(values map[domain.Field]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft := c.draft
	for field, value := range values {
		if err := draft.Set(field, value); err != nil {
			return err
		}
	}
	c.draft = draft
	for field := range values {
		delete(c.errors, field)
	}
	return nil
}

// CanAdvance reports whether the "next" affordance is enabled. Only plan selection
// is gated: it needs a selected plan that exists in the catalog.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked()
}

func (c *Controller) canAdvanceLocked() bool {
	if c.step != domain.StepPlanSelection {
		return true
	}
	return c.draft.HasPlan() && c.catalog.Contains(c.draft.SelectedPlanID)
}

// GoToNextStep validates the current step and advances by one, capped at the last
// step. On failure the step is unchanged and the errors describe why.
func (c *Controller) GoToNextStep() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.step
	// The plan requirement is a disabled button, not a field error.
	if !c.canAdvanceLocked() {
		c.observer.StepTransition(from, from, "blocked")
		return ErrPlanNotSelected
	}

	c.errors = c.rules.ValidateStep(c.step, c.draft)
	if len(c.errors) > 0 {
		c.observer.StepTransition(from, from, "invalid")
		return ErrValidationFailed
	}

	if c.step < domain.LastStep {
		c.step++
	}
	c.observer.StepTransition(from, c.step, "advanced")
	return nil
}

// GoToPreviousStep moves back by one, floored at the first step. It never validates.
func (c *Controller) GoToPreviousStep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.step
	if c.step > domain.FirstStep {
		c.step--
	}
	c.observer.StepTransition(from, c.step, "back")
}

// Submission tracks one asynchronous hand-off to the Registrar.
type Submission struct {
	done    chan struct{}
	receipt Receipt
	err     error
}

// Done is closed once the registrar has answered.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Err is the registrar's error; valid after Done is closed.
func (s *Submission) Err() error { return s.err }

// Receipt is the registrar's answer; valid after Done is closed.
func (s *Submission) Receipt() Receipt { return s.receipt }

// Submit is only accepted at the confirmation step. It re-validates the whole draft and,
// when it passes, registers it in the background. The outcome is reported as a toast. The draft survives a failure.
func (c *Controller) Submit(ctx context.Context) (*Submission, error) {
	c.mu.Lock()
	switch {
	case c.completed:
		c.mu.Unlock()
		return nil, ErrAlreadyRegistered
	case c.submitting:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	if c.step != domain.StepConfirmation {
		c.mu.Unlock()
		return nil, ErrNotAtConfirmation
	}

	// The draft stays editable at confirmation, so re-check what the earlier steps guaranteed.
	c.errors = c.rules.ValidateStep(c.step, c.draft)
	for f, msg := range c.rules.ValidatePersonalInfo(c.draft) {
		c.errors[f] = msg
	}
	if len(c.errors) > 0 {
		c.mu.Unlock()
		c.notify(MsgReviewDetails, domain.SeverityError)
		return nil, ErrValidationFailed
	}
	if !c.catalog.Contains(c.draft.SelectedPlanID) {
		c.mu.Unlock()
		c.notify(MsgPlanRequired, domain.SeverityWarning)
		return nil, ErrPlanNotSelected
	}

	c.submitting = true
	draft := c.draft
	c.mu.Unlock()

	c.logger.Info("submitting registration",
		"email", draft.Email,
		"first_name", draft.FirstName,
		"last_name", draft.LastName,
		"plan_id", draft.SelectedPlanID,
		"newsletter", draft.SubscribeToNewsletter,
	)

	sub := &Submission{done: make(chan struct{})}
	// The request that triggered the submission may end before the backend answers.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.submitTimeout)
	go func() {
		defer cancel()
		c.runSubmission(runCtx, draft, sub)
	}()
	return sub, nil
}

func (c *Controller) runSubmission(ctx context.Context, draft domain.RegistrationDraft, sub *Submission) {
	defer close(sub.done)
	start := time.Now()

	receipt, err := c.registrar.Register(ctx, draft)
	sub.receipt, sub.err = receipt, err

	c.mu.Lock()
	c.submitting = false
	if err == nil {
		c.completed = true
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("registration failed", "email", draft.Email, "error", err)
		c.observer.SubmissionFinished("failure", time.Since(start))
		c.notify(userMessage(err), domain.SeverityError)
		return
	}

	c.logger.Info("registration completed", "email", draft.Email, "user_id", receipt.UserID)
	c.observer.SubmissionFinished("success", time.Since(start))
	c.notify(MsgRegistrationSucceeded, domain.SeveritySuccess)
}

func (c *Controller) notify(message string, severity domain.Severity) {
	if c.notifier == nil {
		return
	}
	if _, err := c.notifier.Post(message, severity); err != nil {
		// The session may have been torn down while the registrar was working.
		c.logger.Warn("could not post toast", "error", fmt.Errorf("post %s toast: %w", severity, err))
	}
}
