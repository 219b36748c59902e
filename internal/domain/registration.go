/**
 * @description
 * This file defines the registration draft collected by the wizard, the field
 * names used to address it, and the per-field error set shown to the user.
 */
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Field names a single input of the registration draft.
type Field string

const (
	FieldEmail                 Field = "email"
	FieldFirstName             Field = "firstName"
	FieldLastName              Field = "lastName"
	FieldPassword              Field = "password"
	FieldConfirmPassword       Field = "confirmPassword"
	FieldSelectedPlan          Field = "selectedPlanId"
	FieldAgreeToTerms          Field = "agreeToTerms"
	FieldSubscribeToNewsletter Field = "subscribeToNewsletter"
)

var (
	// ErrUnknownField is returned when a field name does not belong to the draft.
	ErrUnknownField = errors.New("unknown registration field")
	// ErrInvalidFieldValue is returned when a value cannot be coerced to the field's type.
	ErrInvalidFieldValue = errors.New("invalid value for registration field")
)

// Fields lists every draft field in form order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldConfirmPassword,
	FieldAgreeToTerms,
	FieldSubscribeToNewsletter,
	FieldSelectedPlan,
}

// ParseField resolves a field name as sent by a client.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsBool reports whether the field holds a checkbox value.
func (f Field) IsBool() bool {
	return f == FieldAgreeToTerms || f == FieldSubscribeToNewsletter
}

// RegistrationDraft is the in-progress registration record.
type RegistrationDraft struct {
	Email                 string `json:"email"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Password              string `json:"password"`
	ConfirmPassword       string `json:"confirmPassword"`
	SelectedPlanID        string `json:"selectedPlanId,omitempty"` // empty until step 2
	AgreeToTerms          bool   `json:"agreeToTerms"`
	SubscribeToNewsletter bool   `json:"subscribeToNewsletter"`
}

// HasPlan reports whether a plan identifier has been chosen.
func (d RegistrationDraft) HasPlan() bool {
	return d.SelectedPlanID != ""
}

// FullName joins first and last name the way the confirmation step shows it.
func (d RegistrationDraft) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Set overwrites a single field. Text fields accept anything cast can turn into a
// string; checkbox fields accept booleans and the usual string spellings ("on", "true", "1").
func (d *RegistrationDraft) Set(field Field, value any) error {
	if field.IsBool() {
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("%w %s: %v", ErrInvalidFieldValue, field, err)
		}
		switch field {
		case FieldAgreeToTerms:
			d.AgreeToTerms = b
		case FieldSubscribeToNewsletter:
			d.SubscribeToNewsletter = b
		}
		return nil
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidFieldValue, field, err)
	}
	switch field {
	case FieldEmail:
		d.Email = s
	case FieldFirstName:
		d.FirstName = s
	case FieldLastName:
		d.LastName = s
	case FieldPassword:
		d.Password = s
	case FieldConfirmPassword:
		d.ConfirmPassword = s
	case FieldSelectedPlan:
		d.SelectedPlanID = strings.TrimSpace(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func toBool(value any) (bool, error) {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes":
			return true, nil
		case "", "off", "no":
			return false, nil
		}
	}
	return cast.ToBoolE(value)
}

// FieldErrors maps a field to the message displayed next to it.
type FieldErrors map[Field]string

// Has reports whether the field currently carries an error.
func (e FieldErrors) Has(field Field) bool {
	_, ok := e[field]
	return ok
}

// Clone returns an independent copy, never nil.
func (e FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
