// Package tui drives the registration wizard from a terminal.
//
// The Runner walks a wizard.Controller step by step. Input is collected through a
// Prompter (huh forms in production), field errors and toasts are printed with
// lipgloss styles, and the confirmation summary is built from the render view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/notify"
	"github.com/sohamda/fantasy-football/internal/render"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

// backChoice is the plan prompt value that returns to the previous step.
const backChoice = ""

// Runner runs one registration from the first step to completion.
type Runner struct {
	ctrl     *wizard.Controller
	toasts   *notify.Channel
	prompter Prompter
	out      io.Writer
}

// NewRunner creates a Runner. toasts must be the notifier the controller posts to.
func NewRunner(ctrl *wizard.Controller, toasts *notify.Channel, prompter Prompter, out io.Writer) *Runner {
	return &Runner{ctrl: ctrl, toasts: toasts, prompter: prompter, out: out}
}

// Run loops over the steps until the registration completes, the context is
// cancelled, or a prompt fails.
func (r *Runner) Run(ctx context.Context) error {
	for {
		state := r.ctrl.Snapshot()
		if state.Completed {
			return nil
		}
		view := render.Render(state.Step, state.Draft, state.Errors, r.ctrl.Catalog())
		r.printHeader(view)

		var err error
		switch state.Step {
		case domain.StepPersonalInfo:
			err = r.personalInfo(ctx, view, state.Draft)
		case domain.StepPlanSelection:
			err = r.planSelection(ctx, view, state.Draft)
		case domain.StepConfirmation:
			err = r.confirmation(ctx, view)
		}
		if err != nil {
			return err
		}
	}
}

func (r *Runner) personalInfo(ctx context.Context, view render.View, draft domain.RegistrationDraft) error {
	answers := answersFromDraft(draft)
	if err := r.prompter.PersonalInfo(ctx, view.Personal, &answers); err != nil {
		return err
	}
	for field, value := range answers.values() {
		if err := r.ctrl.UpdateField(field, value); err != nil {
			return err
		}
	}

	if err := r.ctrl.GoToNextStep(); err != nil {
		if errors.Is(err, wizard.ErrValidationFailed) {
			fmt.Fprint(r.out, FormatErrors(r.ctrl.Snapshot().Errors))
			return nil
		}
		return err
	}
	return nil
}

func (r *Runner) planSelection(ctx context.Context, view render.View, draft domain.RegistrationDraft) error {
	choice := draft.SelectedPlanID
	if err := r.prompter.ChoosePlan(ctx, view.Plans, PlanOptions(view.Plans), &choice); err != nil {
		return err
	}
	if choice == backChoice {
		r.ctrl.GoToPreviousStep()
		return nil
	}
	if err := r.ctrl.UpdateField(domain.FieldSelectedPlan, choice); err != nil {
		return err
	}

	if err := r.ctrl.GoToNextStep(); err != nil {
		if errors.Is(err, wizard.ErrPlanNotSelected) {
			fmt.Fprintln(r.out, warningStyle.Render(warnMark+" "+render.PlanRequiredWarning))
			return nil
		}
		return err
	}
	return nil
}

func (r *Runner) confirmation(ctx context.Context, view render.View) error {
	submit, err := r.prompter.Confirm(ctx, Summary(view.Summary))
	if err != nil {
		return err
	}
	if !submit {
		r.ctrl.GoToPreviousStep()
		return nil
	}

	sub, err := r.ctrl.Submit(ctx)
	switch {
	case errors.Is(err, wizard.ErrValidationFailed):
		// The personal details went stale since step one; send the user back there.
		r.flushToasts()
		fmt.Fprint(r.out, FormatErrors(r.ctrl.Snapshot().Errors))
		r.ctrl.GoToPreviousStep()
		r.ctrl.GoToPreviousStep()
		return nil
	case errors.Is(err, wizard.ErrPlanNotSelected):
		r.flushToasts()
		r.ctrl.GoToPreviousStep()
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(r.out, dimStyle.Render(infoMark+" Submitting registration..."))
	select {
	case <-sub.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.flushToasts()
	return nil
}

// flushToasts prints the visible toasts once and dismisses them.
func (r *Runner) flushToasts() {
	for _, t := range r.toasts.Visible() {
		fmt.Fprintln(r.out, ToastLine(t))
		r.toasts.Dismiss(t.ID)
	}
}

func (r *Runner) printHeader(view render.View) {
	var markers []string
	for _, m := range view.Progress {
		mark := pending
		style := dimStyle
		switch m.State {
		case render.StateCompleted:
			mark, style = checkMark, successStyle
		case render.StateCurrent:
			mark, style = fmt.Sprintf("[%d]", m.Step), activeStyle
		}
		markers = append(markers, style.Render(mark+" "+m.Title))
	}
	fmt.Fprintln(r.out, sectionStyle.Render(strings.Join(markers, "  ")))
	fmt.Fprintln(r.out, titleStyle.Render(view.Heading))
	fmt.Fprintln(r.out, subtitleStyle.Render(view.Subheading))
}

// PlanOptions lists the plan cards as prompt choices, followed by a way back.
func PlanOptions(view *render.PlanSelectionView) []PlanOption {
	var opts []PlanOption
	if view == nil {
		return opts
	}
	for _, c := range view.Cards {
		label := fmt.Sprintf("%s  %s%s", c.Name, c.Price, c.Period)
		if c.Popular {
			label += "  (Most Popular)"
		}
		opts = append(opts, PlanOption{Label: label, Value: c.ID})
	}
	return append(opts, PlanOption{Label: "Back to personal information", Value: backChoice})
}

// PlanDetails describes every plan card as plain text.
func PlanDetails(view *render.PlanSelectionView) string {
	if view == nil {
		return ""
	}
	var b strings.Builder
	for i, c := range view.Cards {
		if i > 0 {
			b.WriteString("\n")
		}
		name := c.Name
		if c.Popular {
			name += " " + badgeStyle.Render("Most Popular")
		}
		fmt.Fprintf(&b, "%s  %s%s\n", name, c.Price, c.Period)
		fmt.Fprintf(&b, "  %s\n", c.Description)
		fmt.Fprintf(&b, "  Team Generation: %s weekly, %s monthly\n", c.Weekly, c.Monthly)
		for _, line := range c.Capabilities {
			fmt.Fprintf(&b, "  %s: %s\n", line.Label, line.Value)
		}
	}
	return b.String()
}

// Summary renders the confirmation view as plain text.
func Summary(view *render.ConfirmationView) string {
	if view == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Personal Information\n")
	fmt.Fprintf(&b, "  Name:  %s\n", view.FullName)
	fmt.Fprintf(&b, "  Email: %s\n", view.Email)
	if view.Newsletter {
		b.WriteString("  Subscribed to the newsletter\n")
	}

	if p := view.Plan; p != nil {
		b.WriteString("\nSelected Plan\n")
		fmt.Fprintf(&b, "  %s  %s%s\n", p.Name, p.Price, p.Period)
		fmt.Fprintf(&b, "  %s\n", p.Description)
		fmt.Fprintf(&b, "  Weekly Generations: %s\n", p.Weekly)
		fmt.Fprintf(&b, "  Historical Stats:   %s\n", p.HistoricalStats)
		fmt.Fprintf(&b, "  Manager Insights:   %s\n", p.ManagerInsights)
		fmt.Fprintf(&b, "  Eredivisie News:    %s\n", p.NewsAccess)
	}
	return b.String()
}

// FormatErrors lists the field errors in form order, one per line.
func FormatErrors(errs domain.FieldErrors) string {
	var b strings.Builder
	for _, field := range domain.Fields {
		if msg, ok := errs[field]; ok {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s: %s", crossMark, field, msg)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ToastLine formats a toast with a severity marker.
func ToastLine(t domain.Toast) string {
	switch t.Severity {
	case domain.SeveritySuccess:
		return successStyle.Render(checkMark + " " + t.Message)
	case domain.SeverityError:
		return errorStyle.Render(crossMark + " " + t.Message)
	case domain.SeverityWarning:
		return warningStyle.Render(warnMark + " " + t.Message)
	}
	return dimStyle.Render(infoMark + " " + t.Message)
}

// PlanTable prints the catalog for the plans command.
func PlanTable(cat *catalog.Catalog) string {
	view := render.Render(domain.StepPlanSelection, domain.RegistrationDraft{}, nil, cat)
	return titleStyle.Render("Poly subscription plans") + "\n\n" + PlanDetails(view.Plans)
}
