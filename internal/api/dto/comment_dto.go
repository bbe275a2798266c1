package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parent_id"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a thread message. Replies is only set when the
// thread is requested as a tree.
type CommentResponse struct {
	ID         string            `json:"id"`
	TicketID   string            `json:"ticket_id"`
	Content    string            `json:"content"`
	CreatedBy  string            `json:"created_by"`
	AuthorName string            `json:"author_name"`
	ParentID   *string           `json:"parent_id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  *time.Time        `json:"updated_at"`
	Replies    []CommentResponse `json:"replies,omitempty"`
}

// DeleteCommentResponse lists every removed comment id.
type DeleteCommentResponse struct {
	Removed []string `json:"removed"`
}
