package entity

import "time"

// Session is the authenticated identity persisted across process restarts.
type Session struct {
	UserId      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}
