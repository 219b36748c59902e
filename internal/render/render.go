/**
 * @description
 * This package turns wizard state into a view model. Render is pure: the same
 * step, draft, errors and catalog always produce the same View, and no value in
 * the View aliases the inputs. The HTML page and the JSON API both consume it.
 */
package render

import (
	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/domain"
)

// Progress marker states.
const (
	StateCompleted = "completed"
	StateCurrent   = "current"
	StateUpcoming  = "upcoming"
)

// Navigation actions.
const (
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionSubmit   = "submit"
)

// PlanRequiredWarning is shown on plan selection while no plan is chosen.
const PlanRequiredWarning = "Please select a subscription plan to continue"

// View is everything needed to draw one wizard step.
type View struct {
	Step       domain.WizardStep  `json:"step"`
	Heading    string             `json:"heading"`
	Subheading string             `json:"subheading"`
	Progress   []ProgressMarker   `json:"progress"`
	Navigation Navigation         `json:"navigation"`
	Personal   *PersonalInfoView  `json:"personal_info,omitempty"`
	Plans      *PlanSelectionView `json:"plan_selection,omitempty"`
	Summary    *ConfirmationView  `json:"confirmation,omitempty"`
}

type ProgressMarker struct {
	Step        domain.WizardStep `json:"step"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	State       string            `json:"state"`
}

type Navigation struct {
	PreviousDisabled bool   `json:"previous_disabled"`
	PrimaryLabel     string `json:"primary_label"`
	PrimaryAction    string `json:"primary_action"`
	PrimaryDisabled  bool   `json:"primary_disabled"`
}

type Input struct {
	Field       domain.Field `json:"field"`
	Label       string       `json:"label"`
	Type        string       `json:"type"`
	Placeholder string       `json:"placeholder"`
	Value       string       `json:"value"`
	Error       string       `json:"error,omitempty"`
}

type Checkbox struct {
	Field   domain.Field `json:"field"`
	Label   string       `json:"label"`
	Checked bool         `json:"checked"`
	Error   string       `json:"error,omitempty"`
}

type PersonalInfoView struct {
	Inputs     []Input  `json:"inputs"`
	Terms      Checkbox `json:"terms"`
	Newsletter Checkbox `json:"newsletter"`
}

type CapabilityLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
	On    bool   `json:"included"`
}

type PlanCard struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Initial      string           `json:"initial"`
	Description  string           `json:"description"`
	Price        string           `json:"price"`
	Period       string           `json:"period"`
	Features     []string         `json:"features"`
	Weekly       string           `json:"weekly"`
	Monthly      string           `json:"monthly"`
	Capabilities []CapabilityLine `json:"capabilities"`
	Popular      bool             `json:"popular"`
	Selected     bool             `json:"selected"`
	ButtonLabel  string           `json:"button_label"`
	Color        string           `json:"color"`
}

type PlanSelectionView struct {
	Cards   []PlanCard `json:"cards"`
	Warning string     `json:"warning,omitempty"`
}

// PlanSummary is the selected plan as shown on the confirmation step.
type PlanSummary struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	Period          string `json:"period"`
	Weekly          string `json:"weekly_generations"`
	HistoricalStats string `json:"historical_stats"`
	ManagerInsights string `json:"manager_insights"`
	NewsAccess      string `json:"news_access"`
}

type ConfirmationView struct {
	FullName   string       `json:"full_name"`
	Email      string       `json:"email"`
	Newsletter bool         `json:"newsletter"`
	Plan       *PlanSummary `json:"plan,omitempty"`
}

var stepHeadings = map[domain.WizardStep][2]string{
	domain.StepPersonalInfo:  {"Personal Information", "Let's get to know you better"},
	domain.StepPlanSelection: {"Choose Your Plan", "Select the subscription that best fits your fantasy football needs"},
	domain.StepConfirmation:  {"Confirm Registration", "Review your information before completing"},
}

// Render builds the view for a step. An out-of-range step is clamped into the wizard bounds.
func Render(step domain.WizardStep, draft domain.RegistrationDraft, errs domain.FieldErrors, cat *catalog.Catalog) View {
	step = clamp(step)
	v := View{
		Step:       step,
		Heading:    stepHeadings[step][0],
		Subheading: stepHeadings[step][1],
		Progress:   progress(step),
		Navigation: navigation(step, draft, cat),
	}

	switch step {
	case domain.StepPersonalInfo:
		v.Personal = personalInfo(draft, errs)
	case domain.StepPlanSelection:
		v.Plans = planSelection(draft, cat)
	case domain.StepConfirmation:
		v.Summary = confirmation(draft, cat)
	}
	return v
}

func clamp(step domain.WizardStep) domain.WizardStep {
	if step < domain.FirstStep {
		return domain.FirstStep
	}
	if step > domain.LastStep {
		return domain.LastStep
	}
	return step
}

func progress(current domain.WizardStep) []ProgressMarker {
	out := make([]ProgressMarker, 0, len(domain.Steps))
	for _, s := range domain.Steps {
		state := StateUpcoming
		switch {
		case s < current:
			state = StateCompleted
		case s == current:
			state = StateCurrent
		}
		out = append(out, ProgressMarker{
			Step:        s,
			Title:       s.Title(),
			Description: s.Description(),
			State:       state,
		})
	}
	return out
}

func navigation(step domain.WizardStep, draft domain.RegistrationDraft, cat *catalog.Catalog) Navigation {
	nav := Navigation{
		PreviousDisabled: step == domain.FirstStep,
		PrimaryLabel:     "Next",
		PrimaryAction:    ActionNext,
	}
	switch step {
	case domain.StepPlanSelection:
		nav.PrimaryDisabled = !draft.HasPlan() || !cat.Contains(draft.SelectedPlanID)
	case domain.StepConfirmation:
		nav.PrimaryLabel = "Complete Registration"
		nav.PrimaryAction = ActionSubmit
	}
	return nav
}

func personalInfo(d domain.RegistrationDraft, errs domain.FieldErrors) *PersonalInfoView {
	// Password values are never sent back to the client.
	return &PersonalInfoView{
		Inputs: []Input{
			{Field: domain.FieldFirstName, Label: "First Name", Type: "text", Placeholder: "Enter your first name", Value: d.FirstName, Error: errs[domain.FieldFirstName]},
			{Field: domain.FieldLastName, Label: "Last Name", Type: "text", Placeholder: "Enter your last name", Value: d.LastName, Error: errs[domain.FieldLastName]},
			{Field: domain.FieldEmail, Label: "Email Address", Type: "email", Placeholder: "Enter your email address", Value: d.Email, Error: errs[domain.FieldEmail]},
			{Field: domain.FieldPassword, Label: "Password", Type: "password", Placeholder: "Create a password", Error: errs[domain.FieldPassword]},
			{Field: domain.FieldConfirmPassword, Label: "Confirm Password", Type: "password", Placeholder: "Confirm your password", Error: errs[domain.FieldConfirmPassword]},
		},
		Terms: Checkbox{
			Field:   domain.FieldAgreeToTerms,
			Label:   "I agree to the Terms of Service and Privacy Policy",
			Checked: d.AgreeToTerms,
			Error:   errs[domain.FieldAgreeToTerms],
		},
		Newsletter: Checkbox{
			Field:   domain.FieldSubscribeToNewsletter,
			Label:   "Subscribe to our newsletter for fantasy football tips and updates",
			Checked: d.SubscribeToNewsletter,
		},
	}
}

func planSelection(d domain.RegistrationDraft, cat *catalog.Catalog) *PlanSelectionView {
	plans := cat.ListPlans()
	v := &PlanSelectionView{Cards: make([]PlanCard, 0, len(plans))}
	for _, p := range plans {
		v.Cards = append(v.Cards, planCard(p, p.ID == d.SelectedPlanID))
	}
	if !cat.Contains(d.SelectedPlanID) {
		v.Warning = PlanRequiredWarning
	}
	return v
}

func planCard(p domain.SubscriptionPlan, selected bool) PlanCard {
	card := PlanCard{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatPrice(p.Price),
		Period:      pricePeriod,
		Features:    p.Features,
		Weekly:      FormatQuota(p.TeamGenerations.Weekly),
		Monthly:     FormatQuota(p.TeamGenerations.Monthly),
		Capabilities: []CapabilityLine{
			{Label: "Historical Stats", Value: FormatCapability(p.HistoricalStats), On: p.HistoricalStats},
			{Label: "Manager Insights", Value: FormatCapability(p.ManagerInsights), On: p.ManagerInsights},
			{Label: "Eredivisie News", Value: FormatCapability(p.NewsAccess), On: p.NewsAccess},
		},
		Popular:     p.Popular,
		Selected:    selected,
		ButtonLabel: "Select Plan",
		Color:       p.Color,
	}
	if r := []rune(p.Name); len(r) > 0 {
		card.Initial = string(r[0])
	}
	if selected {
		card.ButtonLabel = "Selected Plan"
	}
	return card
}

func confirmation(d domain.RegistrationDraft, cat *catalog.Catalog) *ConfirmationView {
	v := &ConfirmationView{
		FullName:   d.FullName(),
		Email:      d.Email,
		Newsletter: d.SubscribeToNewsletter,
	}
	// An unknown or missing plan leaves the plan section out.
	if p, ok := cat.FindPlan(d.SelectedPlanID); ok {
		v.Plan = &PlanSummary{
			Name:            p.Name,
			Description:     p.Description,
			Price:           FormatPrice(p.Price),
			Period:          pricePeriod,
			Weekly:          FormatQuota(p.TeamGenerations.Weekly),
			HistoricalStats: FormatCapability(p.HistoricalStats),
			ManagerInsights: FormatCapability(p.ManagerInsights),
			NewsAccess:      FormatCapability(p.NewsAccess),
		}
	}
	return v
}
