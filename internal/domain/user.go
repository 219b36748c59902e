package domain

import "time"

// User is a completed registration as stored by the registration backend.
type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	PasswordHash          string    `json:"-"`
	PlanID                string    `json:"plan_id"`
	SubscribeToNewsletter bool      `json:"subscribe_to_newsletter"`
	TermsAcceptedAt       time.Time `json:"terms_accepted_at"`
	CreatedAt             time.Time `json:"created_at"`
}
