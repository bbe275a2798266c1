package domain

import "time"

// NewsPost is an admin-authored announcement.
type NewsPost struct {
	ID         string
	Title      string
	Content    string
	Images     []string
	CreatedBy  string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
