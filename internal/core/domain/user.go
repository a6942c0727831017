package domain

import (
	"strings"
	"time"
)

// Account models a registered user of the task tracker.
type Account struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request by the auth gate.
// It never carries credential material.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity strips the account down to what downstream handlers may see.
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Name: a.Name, Email: a.Email}
}

// Session is the result of a successful register or login.
type Session struct {
	Identity
	Token string `json:"token"`
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
