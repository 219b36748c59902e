package domain

import "time"

// UserRegisteredEvent is the payload published after a registration is stored.
type UserRegisteredEvent struct {
	UserID                string    `json:"user_id"`
	Email                 string    `json:"email"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	PlanID                string    `json:"plan_id"`
	SubscribeToNewsletter bool      `json:"subscribe_to_newsletter"`
	RegisteredAt          time.Time `json:"registered_at"`
}
