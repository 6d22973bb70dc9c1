package domain

import "time"

// User is the full credential record. It never leaves the service layer;
// anything outward facing gets a PublicUser.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // bcrypt encoded
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the view of a user that is safe to return to clients.
type PublicUser struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
