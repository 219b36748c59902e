// Package validation holds the pure rules applied before the wizard advances.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sohamda/fantasy-football/internal/domain"
)

// User-facing messages. Each failure maps to exactly one of these.
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Please enter a valid email address"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgTermsRequired     = "You must agree to the terms and conditions"

	MsgPasswordTooShort  = "Password must be at least %d characters long"
	MsgPasswordTooLong   = "Password must be at most %d bytes long"
	MsgPasswordNoUpper   = "Password must contain at least one uppercase letter"
	MsgPasswordNoLower   = "Password must contain at least one lowercase letter"
	MsgPasswordNoDigit   = "Password must contain at least one number"
	MsgPasswordNoSpecial = "Password must contain at least one special character"
)

// emailPattern is local-part@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the structural email check. It does not trim.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CheckEmail returns the message for an invalid email, or "" when it is acceptable.
func CheckEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return MsgEmailRequired
	}
	if !IsValidEmail(email) {
		return MsgEmailInvalid
	}
	return ""
}

// Rules bundles the policies used for step validation.
type Rules struct {
	Password PasswordPolicy
}

// DefaultRules uses DefaultPasswordPolicy.
func DefaultRules() Rules {
	return Rules{Password: DefaultPasswordPolicy()}
}

// ValidateStep returns the complete error set for a step. An empty result means the
// step may be left. Plan selection and confirmation carry no field rules; the plan
// requirement is an advance guard owned by the wizard.
func (r Rules) ValidateStep(step domain.WizardStep, draft domain.RegistrationDraft) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if step == domain.StepPersonalInfo {
		r.personalInfo(draft, errs)
	}
	return errs
}

// ValidatePersonalInfo runs the step-one rules regardless of the current step.
func (r Rules) ValidatePersonalInfo(draft domain.RegistrationDraft) domain.FieldErrors {
	errs := domain.FieldErrors{}
	r.personalInfo(draft, errs)
	return errs
}

func (r Rules) personalInfo(d domain.RegistrationDraft, errs domain.FieldErrors) {
	if strings.TrimSpace(d.FirstName) == "" {
		errs[domain.FieldFirstName] = MsgFirstNameRequired
	}
	if strings.TrimSpace(d.LastName) == "" {
		errs[domain.FieldLastName] = MsgLastNameRequired
	}
	if msg := CheckEmail(d.Email); msg != "" {
		errs[domain.FieldEmail] = msg
	}
	if d.Password == "" {
		errs[domain.FieldPassword] = MsgPasswordRequired
	} else if res := r.Password.Check(d.Password); !res.Valid {
		errs[domain.FieldPassword] = res.Violations[0]
	}
	// Reported on the confirmation field whatever the strength result.
	if d.Password != d.ConfirmPassword {
		errs[domain.FieldConfirmPassword] = MsgPasswordMismatch
	}
	if !d.AgreeToTerms {
		errs[domain.FieldAgreeToTerms] = MsgTermsRequired
	}
}

func hasRune(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
