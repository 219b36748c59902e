package tui

import (
	"context"

	"github.com/charmbracelet/huh"

	"github.com/sohamda/fantasy-football/internal/domain"
	"github.com/sohamda/fantasy-football/internal/render"
)

// PersonalInfoAnswers holds the step-one values while a form is being filled in.
type PersonalInfoAnswers struct {
	FirstName             string
	LastName              string
	Email                 string
	Password              string
	ConfirmPassword       string
	AgreeToTerms          bool
	SubscribeToNewsletter bool
}

func answersFromDraft(d domain.RegistrationDraft) PersonalInfoAnswers {
	return PersonalInfoAnswers{
		FirstName:             d.FirstName,
		LastName:              d.LastName,
		Email:                 d.Email,
		Password:              d.Password,
		ConfirmPassword:       d.ConfirmPassword,
		AgreeToTerms:          d.AgreeToTerms,
		SubscribeToNewsletter: d.SubscribeToNewsletter,
	}
}

// text returns the string slot bound to a text field, or nil for checkboxes.
func (a *PersonalInfoAnswers) text(field domain.Field) *string {
	switch field {
	case domain.FieldFirstName:
		return &a.FirstName
	case domain.FieldLastName:
		return &a.LastName
	case domain.FieldEmail:
		return &a.Email
	case domain.FieldPassword:
		return &a.Password
	case domain.FieldConfirmPassword:
		return &a.ConfirmPassword
	}
	return nil
}

func (a PersonalInfoAnswers) values() map[domain.Field]any {
	return map[domain.Field]any{
		domain.FieldFirstName:             a.FirstName,
		domain.FieldLastName:              a.LastName,
		domain.FieldEmail:                 a.Email,
		domain.FieldPassword:              a.Password,
		domain.FieldConfirmPassword:       a.ConfirmPassword,
		domain.FieldAgreeToTerms:          a.AgreeToTerms,
		domain.FieldSubscribeToNewsletter: a.SubscribeToNewsletter,
	}
}

// PlanOption is one choice on the plan selection prompt.
type PlanOption struct {
	Label string
	Value string
}

// Prompter asks the user for input. HuhPrompter is the interactive implementation.
type Prompter interface {
	PersonalInfo(ctx context.Context, view *render.PersonalInfoView, answers *PersonalInfoAnswers) error
	ChoosePlan(ctx context.Context, view *render.PlanSelectionView, options []PlanOption, choice *string) error
	Confirm(ctx context.Context, summary string) (bool, error)
}

// HuhPrompter renders each step as a huh form.
type HuhPrompter struct {
	Accessible bool
}

func (p HuhPrompter) PersonalInfo(ctx context.Context, view *render.PersonalInfoView, answers *PersonalInfoAnswers) error {
	var fields []huh.Field
	for _, in := range view.Inputs {
		slot := answers.text(in.Field)
		if slot == nil {
			continue
		}
		input := huh.NewInput().
			Title(in.Label).
			Placeholder(in.Placeholder).
			Value(slot)
		if in.Type == "password" {
			input = input.EchoMode(huh.EchoModePassword)
		}
		fields = append(fields, input)
	}
	fields = append(fields,
		huh.NewConfirm().
			Title(view.Terms.Label).
			Affirmative("Yes").
			Negative("No").
			Value(&answers.AgreeToTerms),
		huh.NewConfirm().
			Title(view.Newsletter.Label).
			Affirmative("Yes").
			Negative("No").
			Value(&answers.SubscribeToNewsletter),
	)

	return huh.NewForm(
		huh.NewGroup(fields...).Title(domain.StepPersonalInfo.Title()),
	).WithAccessible(p.Accessible).RunWithContext(ctx)
}

func (p HuhPrompter) ChoosePlan(ctx context.Context, view *render.PlanSelectionView, options []PlanOption, choice *string) error {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Subscription Plan").
				Description(PlanDetails(view)).
				Options(opts...).
				Value(choice),
		).Title(domain.StepPlanSelection.Title()),
	).WithAccessible(p.Accessible).RunWithContext(ctx)
}

func (p HuhPrompter) Confirm(ctx context.Context, summary string) (bool, error) {
	submit := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(domain.StepConfirmation.Title()).
				Description(summary),
			huh.NewConfirm().
				Title("Complete your registration?").
				Affirmative("Complete Registration").
				Negative("Previous").
				Value(&submit),
		),
	).WithAccessible(p.Accessible).RunWithContext(ctx)
	return submit, err
}
