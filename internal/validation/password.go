package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// PasswordPolicy describes the strength rules for a new password.
type PasswordPolicy struct {
	MinLength      int
	MaxBytes       int // 0 means no maximum
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// PasswordResult is the outcome of a policy check. Violations are ordered; callers
// surface only the first one.
type PasswordResult struct {
	Valid      bool
	Violations []string
}

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// DefaultPasswordPolicy: at least 8 characters with upper, lower, digit and special,
// and no more than MaxPasswordBytes bytes.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:      8,
		MaxBytes:       MaxPasswordBytes,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Check evaluates a non-empty password. Emptiness is reported separately by the
// step rules as "Password is required".
func (p PasswordPolicy) Check(password string) PasswordResult {
	var violations []string
	if utf8.RuneCountInString(password) < p.MinLength {
		violations = append(violations, fmt.Sprintf(MsgPasswordTooShort, p.MinLength))
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		violations = append(violations, fmt.Sprintf(MsgPasswordTooLong, p.MaxBytes))
	}
	if p.RequireUpper && !hasRune(password, unicode.IsUpper) {
		violations = append(violations, MsgPasswordNoUpper)
	}
	if p.RequireLower && !hasRune(password, unicode.IsLower) {
		violations = append(violations, MsgPasswordNoLower)
	}
	if p.RequireDigit && !hasRune(password, unicode.IsDigit) {
		violations = append(violations, MsgPasswordNoDigit)
	}
	if p.RequireSpecial && !hasRune(password, isSpecial) {
		violations = append(violations, MsgPasswordNoSpecial)
	}
	return PasswordResult{Valid: len(violations) == 0, Violations: violations}
}
