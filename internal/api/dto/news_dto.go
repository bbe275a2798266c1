package dto

import "time"

// CreateNewsRequest payload.
type CreateNewsRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// UpdateNewsRequest payload. A present images list replaces the old one.
type UpdateNewsRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Images  *[]string `json:"images"`
}

// NewsResponse is a news post.
type NewsResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Images     []string   `json:"images"`
	CreatedBy  string     `json:"created_by"`
	AuthorName string     `json:"author_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
