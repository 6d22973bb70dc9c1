package domain

import "time"

// IssuedToken is a signed identity token together with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// AuthResult is what register and login hand back to the transport.
type AuthResult struct {
	User  PublicUser
	Token IssuedToken
}
