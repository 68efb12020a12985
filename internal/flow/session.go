package flow

import "time"

// Session is what the front-end gets back from the callback and
// session endpoints.
type Session struct {
	Address   string    `json:"address"`
	Provider  string    `json:"provider"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}
