package flow

import "errors"

const (
	// StateCookieName holds the one-time transaction key between the
	// authorization redirect and the callback. Doubles as CSRF state.
	StateCookieName = "zklogin-state"

	// SessionCookieName holds the signed session token.
	SessionCookieName = "zklogin-session"
)

// KV is the storage shape the flow operates against. The server hands
// it a cookie-backed implementation: Get reads a cookie, Set writes
// one with fixed attributes, Delete expires it.
type KV interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Delete(name string)
}

var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidHash        = errors.New("invalid callback hash")
	ErrStateMismatch      = errors.New("state mismatch")
	ErrTransactionExpired = errors.New("login transaction expired")
)
