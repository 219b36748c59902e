package domain

import "fmt"

// WizardStep is the position of the wizard, totally ordered and bounded to [1,3].
type WizardStep int

const (
	StepPersonalInfo  WizardStep = 1
	StepPlanSelection WizardStep = 2
	StepConfirmation  WizardStep = 3

	FirstStep = StepPersonalInfo
	LastStep  = StepConfirmation
)

// Steps lists the wizard steps in order.
var Steps = []WizardStep{StepPersonalInfo, StepPlanSelection, StepConfirmation}

var stepText = map[WizardStep][2]string{
	StepPersonalInfo:  {"Personal Information", "Tell us about yourself"},
	StepPlanSelection: {"Choose Your Plan", "Select the perfect subscription"},
	StepConfirmation:  {"Confirmation", "Review and complete"},
}

// Valid reports whether the step lies within the wizard bounds.
func (s WizardStep) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Title is the short label used by the progress indicator.
func (s WizardStep) Title() string {
	return stepText[s][0]
}

// Description is the subtitle used by the progress indicator.
func (s WizardStep) Description() string {
	return stepText[s][1]
}

func (s WizardStep) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return s.Title()
}
