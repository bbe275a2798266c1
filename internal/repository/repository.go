package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (id, email) is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// TxManager runs fn atomically. Repositories called with the ctx handed to fn
// take part in the same transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserFilter captures admin user search parameters.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

// TicketFilter captures ticket list and search parameters. Nil pointers do not
// constrain the result.
type TicketFilter struct {
	CreatedBy  *string
	AssignedTo *string
	SharedWith *string
	Search     string
	Limit      int
	Offset     int
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDForUpdate reads the user and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	AddTicket(ctx context.Context, userID, ticketID string) error
	RemoveTicket(ctx context.Context, userID, ticketID string) error
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate reads the ticket and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByTicket(ctx context.Context, ticketID string) error
}

// ActivityRepository stores the append-only activity log.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Activity, error)
}

// NewsRepository stores news posts.
type NewsRepository interface {
	Create(ctx context.Context, post *domain.NewsPost) error
	Update(ctx context.Context, post *domain.NewsPost) error
	GetByID(ctx context.Context, id string) (*domain.NewsPost, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.NewsPost, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]domain.NewsPost, error)
}

// ImageReferenceRepository answers whether a stored image is still referenced
// by a ticket or a news post.
type ImageReferenceRepository interface {
	ImageInUse(ctx context.Context, ref string) (bool, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Users      UserRepository
	Tickets    TicketRepository
	Comments   CommentRepository
	Activities ActivityRepository
	News       NewsRepository
	ImageRefs  ImageReferenceRepository
	Tx         TxManager
}

// NormalizePage applies the default page size and clamps negative offsets.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
