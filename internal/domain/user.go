package domain

import (
	"strings"
	"time"
)

// User is an authenticated account. ID is the stable external identity.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	IsAdmin      bool
	Organization *string
	PasswordHash string
	TicketIDs    []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form used for every email comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail compares two addresses case-insensitively.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
