package domain

import "time"

// Identity is the verified subject of a bearer token, before it is mapped
// onto a stored User.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
