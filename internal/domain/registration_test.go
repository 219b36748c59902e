package domain

import (
	"errors"
	"testing"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		input   string
		want    Field
		wantErr bool
	}{
		{input: "email", want: FieldEmail},
		{input: " selectedPlanId ", want: FieldSelectedPlan},
		{input: "agreeToTerms", want: FieldAgreeToTerms},
		{input: "Email", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseField(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownField) {
					t.Fatalf("expected ErrUnknownField, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRegistrationDraftSet(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value any
		check func(RegistrationDraft) bool
	}{
		{
			name:  "text field",
			field: FieldFirstName,
			value: "Jan",
			check: func(d RegistrationDraft) bool { return d.FirstName == "Jan" },
		},
		{
			name:  "plan id is trimmed",
			field: FieldSelectedPlan,
			value: " professional ",
			check: func(d RegistrationDraft) bool { return d.SelectedPlanID == "professional" },
		},
		{
			name:  "checkbox from bool",
			field: FieldAgreeToTerms,
			value: true,
			check: func(d RegistrationDraft) bool { return d.AgreeToTerms },
		},
		{
			name:  "checkbox from html form value",
			field: FieldSubscribeToNewsletter,
			value: "on",
			check: func(d RegistrationDraft) bool { return d.SubscribeToNewsletter },
		},
		{
			name:  "checkbox from string false",
			field: FieldAgreeToTerms,
			value: "false",
			check: func(d RegistrationDraft) bool { return !d.AgreeToTerms },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d RegistrationDraft
			if err := d.Set(tt.field, tt.value); err != nil {
				t.Fatalf("Set(%s) error = %v", tt.field, err)
			}
			if !tt.check(d) {
				t.Fatalf("Set(%s, %v) did not update the draft: %+v", tt.field, tt.value, d)
			}
		})
	}
}

func TestRegistrationDraftSet_RejectsUncoercibleCheckbox(t *testing.T) {
	var d RegistrationDraft
	err := d.Set(FieldAgreeToTerms, "maybe")
	if !errors.Is(err, ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue, got %v", err)
	}
}

func TestRegistrationDraftFullName(t *testing.T) {
	d := RegistrationDraft{FirstName: "Jan", LastName: "de Vries"}
	if got := d.FullName(); got != "Jan de Vries" {
		t.Fatalf("expected %q, got %q", "Jan de Vries", got)
	}
}

func TestWizardStepBounds(t *testing.T) {
	if WizardStep(0).Valid() || WizardStep(4).Valid() {
		t.Fatal("steps outside [1,3] must be invalid")
	}
	if StepPlanSelection.Title() != "Choose Your Plan" {
		t.Fatalf("unexpected title %q", StepPlanSelection.Title())
	}
}
