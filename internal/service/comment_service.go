package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/access"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const maxCommentLength = 5000

// CommentService manages ticket comment threads.
type CommentService struct {
	comments repository.CommentRepository
	tickets  repository.TicketRepository
	tx       repository.TxManager
	after    aftermath
}

// CommentDependencies bundles collaborators for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Tx          repository.TxManager
	Activity    ActivityRecorder
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewCommentService creates the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments: deps.CommentRepo,
		tickets:  deps.TicketRepo,
		tx:       deps.Tx,
		after:    newAftermath(deps.Activity, deps.Dispatcher, nil, nil, deps.Metrics, deps.Logger),
	}
}

// Add posts a comment, optionally as a reply to parentID on the same ticket.
func (s *CommentService) Add(ctx context.Context, actor *domain.User, ticketID, content string, parentID *string) (*domain.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}

	var (
		ticket  *domain.Ticket
		comment *domain.Comment
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, err = s.lockTicket(ctx, actor, ticketID, access.CapabilityComment); err != nil {
			return err
		}
		var parent *string
		if parentID != nil {
			found, err := s.comments.GetByID(ctx, *parentID)
			if err != nil {
				return storeError(err, "parent comment", *parentID)
			}
			if found.TicketID != ticket.ID {
				return apperrors.NewValidationError("parent comment belongs to another ticket", map[string]any{
					"parent_id": found.ID,
				})
			}
			parent = &found.ID
		}
		comment = &domain.Comment{
			ID:         uuid.NewString(),
			TicketID:   ticket.ID,
			Content:    content,
			CreatedBy:  actor.ID,
			AuthorName: authorName(actor),
			ParentID:   parent,
			CreatedAt:  s.after.timestamp(),
		}
		return storeError(s.comments.Create(ctx, comment), "comment", comment.ID)
	})
	if err != nil {
		return nil, err
	}

	s.after.record(ctx, domain.ActivityCommentAdded, fmt.Sprintf("Commented on %q", ticket.Title), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventCommentCreated, actor, comment, nil)
	return comment, nil
}

// Edit replaces a comment's content. Only the author may edit, and only while
// they can still comment on the ticket.
func (s *CommentService) Edit(ctx context.Context, actor *domain.User, commentID, content string) (*domain.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.CreatedBy != actor.ID {
		return nil, apperrors.NewForbidden("only the author can edit a comment")
	}
	if _, err := s.authorizedTicket(ctx, actor, comment.TicketID, access.CapabilityComment); err != nil {
		return nil, err
	}

	now := s.after.timestamp()
	comment.Content = content
	comment.UpdatedAt = &now
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err, "comment", comment.ID)
	}

	s.after.record(ctx, domain.ActivityCommentEdited, "Edited a comment", actor.ID, &comment.TicketID)
	s.publish(ctx, events.EventCommentUpdated, actor, comment, nil)
	return comment, nil
}

// Delete removes a comment and every reply below it. Allowed for the author
// and for admins.
func (s *CommentService) Delete(ctx context.Context, actor *domain.User, commentID string) ([]string, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.CreatedBy != actor.ID && !actor.IsAdmin {
		return nil, apperrors.NewForbidden("only the author or an admin can delete a comment")
	}

	var removed []string
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.tickets.GetByIDForUpdate(ctx, comment.TicketID); err != nil {
			return storeError(err, "ticket", comment.TicketID)
		}
		thread, err := s.comments.ListByTicket(ctx, comment.TicketID)
		if err != nil {
			return storeError(err, "comment", comment.TicketID)
		}
		removed = append([]string{comment.ID}, domain.DescendantIDs(thread, comment.ID)...)
		return storeError(s.comments.DeleteByIDs(ctx, removed), "comment", comment.ID)
	})
	if err != nil {
		return nil, err
	}

	message := "Deleted a comment"
	if len(removed) > 1 {
		message = fmt.Sprintf("Deleted a comment and %d replies", len(removed)-1)
	}
	s.after.record(ctx, domain.ActivityCommentDeleted, message, actor.ID, &comment.TicketID)
	s.publish(ctx, events.EventCommentDeleted, actor, comment, removed)
	return removed, nil
}

// ListByTicket returns the flat thread in creation order.
func (s *CommentService) ListByTicket(ctx context.Context, actor *domain.User, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.authorizedTicket(ctx, actor, ticketID, access.CapabilityView)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, storeError(err, "comment", ticket.ID)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// Thread returns the ticket's comments arranged as reply trees.
func (s *CommentService) Thread(ctx context.Context, actor *domain.User, ticketID string) ([]*domain.CommentNode, error) {
	comments, err := s.ListByTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCommentTree(comments), nil
}

func (s *CommentService) load(ctx context.Context, commentID string) (*domain.Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, apperrors.NewValidationError("comment id required", nil)
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "comment", commentID)
	}
	return comment, nil
}

func (s *CommentService) authorizedTicket(ctx context.Context, actor *domain.User, ticketID string, capability access.Capability) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	if err := access.Authorize(actor, ticket, capability); err != nil {
		return nil, err
	}
	return ticket, nil
}

// lockTicket authorizes actor against the ticket row locked for update, so
// ticket deletion and comment cascades wait for the caller's transaction.
func (s *CommentService) lockTicket(ctx context.Context, actor *domain.User, ticketID string, capability access.Capability) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByIDForUpdate(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	if err := access.Authorize(actor, ticket, capability); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *CommentService) publish(ctx context.Context, eventType events.EventType, actor *domain.User, comment *domain.Comment, removed []string) {
	s.after.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: comment.TicketID,
		ActorID:  actor.ID,
		Payload: events.CommentPayload{
			ID:        comment.ID,
			TicketID:  comment.TicketID,
			ParentID:  comment.ParentID,
			CreatedBy: comment.CreatedBy,
			Preview:   preview(comment.Content, 120),
			Removed:   removed,
		},
	})
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.NewValidationError("content required", map[string]any{"content": "required"})
	}
	if len([]rune(content)) > maxCommentLength {
		return "", apperrors.NewValidationError("content too long", map[string]any{"content": fmt.Sprintf("at most %d characters", maxCommentLength)})
	}
	return content, nil
}

func authorName(user *domain.User) string {
	if name := strings.TrimSpace(user.DisplayName); name != "" {
		return name
	}
	return user.Email
}
