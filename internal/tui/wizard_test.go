package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/notify"
	"github.com/sohamda/fantasy-football/internal/render"
	"github.com/sohamda/fantasy-football/internal/validation"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

// scriptedPrompter answers each prompt from a queue and records what it was shown.
type scriptedPrompter struct {
	personal  []func(*PersonalInfoAnswers)
	plans     []func(*string)
	confirms  []bool
	summaries []string
	labels    []string
}

var errScriptExhausted = errors.New("script exhausted")

func (p *scriptedPrompter) PersonalInfo(_ context.Context, view *render.PersonalInfoView, answers *PersonalInfoAnswers) error {
	if len(p.personal) == 0 {
		return errScriptExhausted
	}
	for _, in := range view.Inputs {
		p.labels = append(p.labels, in.Label)
	}
	next := p.personal[0]
	p.personal = p.personal[1:]
	next(answers)
	return nil
}

func (p *scriptedPrompter) ChoosePlan(_ context.Context, _ *render.PlanSelectionView, _ []PlanOption, choice *string) error {
	if len(p.plans) == 0 {
		return errScriptExhausted
	}
	next := p.plans[0]
	p.plans = p.plans[1:]
	next(choice)
	return nil
}

func (p *scriptedPrompter) Confirm(_ context.Context, summary string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, errScriptExhausted
	}
	p.summaries = append(p.summaries, summary)
	next := p.confirms[0]
	p.confirms = p.confirms[1:]
	return next, nil
}

func keep[T any](*T) {}

func fillIn(a *PersonalInfoAnswers) {
	a.FirstName = "Jan"
	a.LastName = "de Vries"
	a.Email = "jan@example.com"
	a.Password = "Strong1!"
	a.ConfirmPassword = "Strong1!"
	a.AgreeToTerms = true
}

func choose(id string) func(*string) {
	return func(choice *string) { *choice = id }
}

func newTestRunner(t *testing.T, prompter Prompter, reg wizard.Registrar) (*Runner, *wizard.Controller, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	toasts := notify.NewChannel(notify.WithLogger(logger), notify.WithDismissAfter(time.Minute))
	t.Cleanup(toasts.Close)
	ctrl := wizard.NewController(catalog.Default(), reg, toasts,
		wizard.WithLogger(logger),
		wizard.WithSubmitTimeout(time.Second),
	)
	var out bytes.Buffer
	return NewRunner(ctrl, toasts, prompter, &out), ctrl, &out
}

func TestRunner_CompletesRegistration(t *testing.T) {
	prompter := &scriptedPrompter{
		personal: []func(*PersonalInfoAnswers){
			keep[PersonalInfoAnswers],
			fillIn,
			keep[PersonalInfoAnswers],
		},
		plans: []func(*string){
			choose(backChoice),
			choose("professional"),
			keep[string],
		},
		confirms: []bool{false, true},
	}
	runner, ctrl, out := newTestRunner(t, prompter, wizard.SimulatedRegistrar{})

	require.NoError(t, runner.Run(context.Background()))

	state := ctrl.Snapshot()
	assert.True(t, state.Completed)
	assert.Equal(t, "professional", state.Draft.SelectedPlanID)

	output := out.String()
	assert.Contains(t, output, validation.MsgFirstNameRequired)
	assert.Contains(t, output, validation.MsgTermsRequired)
	assert.Contains(t, output, wizard.MsgRegistrationSucceeded)
	assert.Contains(t, output, "Choose Your Plan")

	assert.Contains(t, prompter.labels, "First Name")
	require.Len(t, prompter.summaries, 2)
	assert.Contains(t, prompter.summaries[1], "Jan de Vries")
	assert.Contains(t, prompter.summaries[1], "€19.99/month")
	assert.Contains(t, prompter.summaries[1], "Weekly Generations: 3 teams")
}

func TestRunner_MissingPlanKeepsStep(t *testing.T) {
	prompter := &scriptedPrompter{
		personal: []func(*PersonalInfoAnswers){fillIn},
		plans:    []func(*string){choose("gold")},
	}
	runner, ctrl, out := newTestRunner(t, prompter, wizard.SimulatedRegistrar{})

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, errScriptExhausted)

	assert.Equal(t, domain.StepPlanSelection, ctrl.Snapshot().Step)
	assert.Contains(t, out.String(), render.PlanRequiredWarning)
}

func TestRunner_FailedSubmissionStaysOnConfirmation(t *testing.T) {
	failing := wizard.RegistrarFunc(func(context.Context, domain.RegistrationDraft) (wizard.Receipt, error) {
		return wizard.Receipt{}, errors.New("backend down")
	})
	prompter := &scriptedPrompter{
		personal: []func(*PersonalInfoAnswers){fillIn},
		plans:    []func(*string){choose("starter")},
		confirms: []bool{true},
	}
	runner, ctrl, out := newTestRunner(t, prompter, failing)

	err := runner.Run(context.Background())
	require.ErrorIs(t, err, errScriptExhausted)

	state := ctrl.Snapshot()
	assert.False(t, state.Completed)
	assert.Equal(t, domain.StepConfirmation, state.Step)
	assert.Equal(t, "jan@example.com", state.Draft.Email)
	assert.Contains(t, out.String(), wizard.MsgSubmissionFailed)
}

func TestPlanOptions(t *testing.T) {
	view := render.Render(domain.StepPlanSelection, domain.RegistrationDraft{}, nil, catalog.Default())

	opts := PlanOptions(view.Plans)
	require.Len(t, opts, 5)
	assert.Equal(t, "starter", opts[0].Value)
	assert.Contains(t, opts[1].Label, "(Most Popular)")
	assert.Equal(t, backChoice, opts[4].Value)

	assert.Empty(t, PlanOptions(nil))
}

func TestFormatErrors_FormOrder(t *testing.T) {
	got := FormatErrors(domain.FieldErrors{
		domain.FieldAgreeToTerms: validation.MsgTermsRequired,
		domain.FieldFirstName:    validation.MsgFirstNameRequired,
	})

	first := bytes.Index([]byte(got), []byte(validation.MsgFirstNameRequired))
	terms := bytes.Index([]byte(got), []byte(validation.MsgTermsRequired))
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, terms, 0)
	assert.Less(t, first, terms)

	assert.Empty(t, FormatErrors(nil))
}

func TestToastLine(t *testing.T) {
	tests := []struct {
		severity domain.Severity
		mark     string
	}{
		{domain.SeveritySuccess, checkMark},
		{domain.SeverityError, crossMark},
		{domain.SeverityWarning, warnMark},
		{domain.SeverityInfo, infoMark},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			line := ToastLine(domain.Toast{Message: "hello", Severity: tt.severity})
			assert.Contains(t, line, tt.mark)
			assert.Contains(t, line, "hello")
		})
	}
}

func TestPlanTable(t *testing.T) {
	table := PlanTable(catalog.Default())
	for _, name := range []string{"Starter", "Professional", "Expert", "Enterprise"} {
		assert.Contains(t, table, name)
	}
	assert.Contains(t, table, "Unlimited")
	assert.Contains(t, table, "€59.99/month")
}
