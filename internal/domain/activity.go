package domain

import "time"

// ActivityType tags an activity log entry by action.
type ActivityType string

const (
	ActivityTicketCreated       ActivityType = "ticket_created"
	ActivityTicketUpdated       ActivityType = "ticket_updated"
	ActivityTicketStatusChanged ActivityType = "ticket_status_changed"
	ActivityTicketShared        ActivityType = "ticket_shared"
	ActivityTicketUnshared      ActivityType = "ticket_unshared"
	ActivityTicketAssigned      ActivityType = "ticket_assigned"
	ActivityTicketDeleted       ActivityType = "ticket_deleted"
	ActivityCommentAdded        ActivityType = "comment_added"
	ActivityCommentEdited       ActivityType = "comment_edited"
	ActivityCommentDeleted      ActivityType = "comment_deleted"
	ActivityNewsPublished       ActivityType = "news_published"
	ActivityNewsUpdated         ActivityType = "news_updated"
	ActivityNewsDeleted         ActivityType = "news_deleted"
	ActivityUserRoleChanged     ActivityType = "user_role_changed"
)

// Activity is an append-only audit entry scoped to a user.
type Activity struct {
	ID        string
	Type      ActivityType
	Message   string
	UserID    string
	TicketID  *string
	CreatedAt time.Time
}
