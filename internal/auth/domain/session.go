package domain

import "time"

// Session is the server-side state keyed by the opaque id in the session
// cookie. An anonymous session has Authenticated=false and no UserID.
type Session struct {
	ID            string
	UserID        string
	Authenticated bool
	ExpiresAt     time.Time
}

// Identity returns the user id the session vouches for, if any.
func (s Session) Identity() (string, bool) {
	if !s.Authenticated || s.UserID == "" {
		return "", false
	}
	return s.UserID, true
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
