package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/access"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const maxTitleLength = 200

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	tx       repository.TxManager
	after    aftermath
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	CommentRepo repository.CommentRepository
	Tx          repository.TxManager
	Images      ImageStore
	ImageRefs   repository.ImageReferenceRepository
	Activity    ActivityRecorder
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title    string
	Content  string
	Priority domain.TicketPriority
	Image    *string
}

// TicketUpdateInput lists the fields to change. Nil fields are left alone;
// ClearImage drops the image reference.
type TicketUpdateInput struct {
	Title      *string
	Content    *string
	Priority   *domain.TicketPriority
	Image      *string
	ClearImage bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:  deps.TicketRepo,
		users:    deps.UserRepo,
		comments: deps.CommentRepo,
		tx:       deps.Tx,
		after:    newAftermath(deps.Activity, deps.Dispatcher, deps.Images, deps.ImageRefs, deps.Metrics, deps.Logger),
	}
}

// Create opens a ticket owned by actor and links it to the owner's ticket list.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	title, content := strings.TrimSpace(input.Title), strings.TrimSpace(input.Content)
	if err := validateTicketText(title, content); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	image, err := s.imageRef(input.Image)
	if err != nil {
		return nil, err
	}

	now := s.after.timestamp()
	ticket := &domain.Ticket{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		Image:      image,
		Priority:   priority,
		Status:     domain.TicketStatusOpen,
		CreatedBy:  actor.ID,
		SharedWith: []domain.ShareEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return storeError(err, "ticket", ticket.ID)
		}
		return storeError(s.users.AddTicket(ctx, actor.ID, ticket.ID), "user", actor.ID)
	})
	if err != nil {
		return nil, err
	}

	s.after.record(ctx, domain.ActivityTicketCreated, fmt.Sprintf("Created ticket %q", ticket.Title), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketCreated, actor, ticket, events.NewTicketPayload(ticket))
	return ticket, nil
}

// Get returns a ticket the actor may view.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	return s.authorized(ctx, actor, ticketID, access.CapabilityView)
}

// UpdateFields patches title, content, priority or image. Resolved tickets
// are immutable.
func (s *TicketService) UpdateFields(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.Title == nil && input.Content == nil && input.Priority == nil && input.Image == nil && !input.ClearImage {
		return nil, apperrors.NewValidationError("no fields to update", nil)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	image, err := s.imageRef(input.Image)
	if err != nil {
		return nil, err
	}

	var replaced string
	ticket, _, err := s.modify(ctx, ticketID, func(ctx context.Context, ticket *domain.Ticket) (bool, error) {
		if err := access.Authorize(actor, ticket, access.CapabilityEdit); err != nil {
			return false, err
		}
		title, content := ticket.Title, ticket.Content
		if input.Title != nil {
			title = strings.TrimSpace(*input.Title)
		}
		if input.Content != nil {
			content = strings.TrimSpace(*input.Content)
		}
		if err := validateTicketText(title, content); err != nil {
			return false, err
		}

		oldImage := ticket.Image
		switch {
		case input.ClearImage:
			ticket.Image = nil
		case input.Image != nil:
			ticket.Image = image
		}
		if oldImage != nil && (ticket.Image == nil || *ticket.Image != *oldImage) {
			replaced = *oldImage
		}
		ticket.Title, ticket.Content = title, content
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.after.removeImages(ctx, replaced)
	s.after.record(ctx, domain.ActivityTicketUpdated, fmt.Sprintf("Updated ticket %q", ticket.Title), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketUpdated, actor, ticket, events.NewTicketPayload(ticket))
	return ticket, nil
}

// TransitionStatus moves a ticket forward through its lifecycle. Setting the
// current status again is a no-op; moving backwards is a conflict.
func (s *TicketService) TransitionStatus(ctx context.Context, actor *domain.User, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var old domain.TicketStatus
	ticket, changed, err := s.modify(ctx, ticketID, func(ctx context.Context, ticket *domain.Ticket) (bool, error) {
		if err := access.Authorize(actor, ticket, access.CapabilityEdit); err != nil {
			return false, err
		}
		if ticket.Status == status {
			return false, nil
		}
		if !ticket.Status.CanTransitionTo(status) {
			return false, apperrors.NewConflict("status cannot move backwards", map[string]any{
				"from": ticket.Status,
				"to":   status,
			})
		}
		old, ticket.Status = ticket.Status, status
		return true, nil
	})
	if err != nil || !changed {
		return ticket, err
	}

	s.after.record(ctx, domain.ActivityTicketStatusChanged,
		fmt.Sprintf("Changed status of %q from %s to %s", ticket.Title, old, status), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketStatus, actor, ticket, events.TicketStatusPayload{OldStatus: old, NewStatus: status})
	return ticket, nil
}

// Share grants email the given role. Sharing the same address again replaces
// the role; the list never holds two entries for one address.
func (s *TicketService) Share(ctx context.Context, actor *domain.User, ticketID, email string, role domain.ShareRole) (*domain.Ticket, error) {
	email = domain.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}
	if role == "" {
		role = domain.ShareRoleView
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid share role", map[string]any{"role": role})
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	ticket, changed, err := s.modify(ctx, ticketID, func(ctx context.Context, ticket *domain.Ticket) (bool, error) {
		if err := access.Authorize(actor, ticket, access.CapabilityEdit); err != nil {
			return false, err
		}
		owner, err := s.users.GetByID(ctx, ticket.CreatedBy)
		switch {
		case err == nil:
			if domain.SameEmail(owner.Email, email) {
				return false, apperrors.NewValidationError("cannot share a ticket with its owner", map[string]any{"email": email})
			}
		case !errors.Is(err, repository.ErrNotFound):
			return false, storeError(err, "user", ticket.CreatedBy)
		}
		return ticket.UpsertShare(email, role), nil
	})
	if err != nil || !changed {
		return ticket, err
	}

	s.after.record(ctx, domain.ActivityTicketShared,
		fmt.Sprintf("Shared %q with %s (%s)", ticket.Title, email, role), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketShared, actor, ticket, events.TicketSharePayload{Email: email, Role: role})
	return ticket, nil
}

// Unshare revokes access for email. Unknown addresses are a no-op.
func (s *TicketService) Unshare(ctx context.Context, actor *domain.User, ticketID, email string) (*domain.Ticket, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	ticket, changed, err := s.modify(ctx, ticketID, func(ctx context.Context, ticket *domain.Ticket) (bool, error) {
		if err := access.Authorize(actor, ticket, access.CapabilityEdit); err != nil {
			return false, err
		}
		return ticket.RemoveShare(email), nil
	})
	if err != nil || !changed {
		return ticket, err
	}

	s.after.record(ctx, domain.ActivityTicketUnshared,
		fmt.Sprintf("Stopped sharing %q with %s", ticket.Title, email), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketUnshared, actor, ticket, events.TicketSharePayload{Email: email})
	return ticket, nil
}

// Assign sets or clears the assignee. Admin only.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var message string
	ticket, _, err := s.modify(ctx, ticketID, func(ctx context.Context, ticket *domain.Ticket) (bool, error) {
		if assigneeID == nil || *assigneeID == "" {
			ticket.AssignedTo = nil
			message = fmt.Sprintf("Unassigned %q", ticket.Title)
			return true, nil
		}
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return false, storeError(err, "user", *assigneeID)
		}
		ticket.AssignedTo = &assignee.ID
		message = fmt.Sprintf("Assigned %q to %s", ticket.Title, assignee.Email)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.after.record(ctx, domain.ActivityTicketAssigned, message, actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketAssigned, actor, ticket, events.NewTicketPayload(ticket))
	return ticket, nil
}

// Delete removes the ticket, its comments and the owner's reference in one
// transaction. The image is removed after commit unless something else still
// references it, and a failure there only gets logged.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	var ticket *domain.Ticket
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, err = s.load(ctx, ticketID, true); err != nil {
			return err
		}
		if err := access.Authorize(actor, ticket, access.CapabilityDelete); err != nil {
			return err
		}
		if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
			return storeError(err, "ticket", ticket.ID)
		}
		if err := s.comments.DeleteByTicket(ctx, ticket.ID); err != nil {
			return storeError(err, "comment", ticket.ID)
		}
		err = s.users.RemoveTicket(ctx, ticket.CreatedBy, ticket.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeError(err, "user", ticket.CreatedBy)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if ticket.Image != nil {
		s.after.removeImages(ctx, *ticket.Image)
	}
	s.after.record(ctx, domain.ActivityTicketDeleted, fmt.Sprintf("Deleted ticket %q", ticket.Title), actor.ID, &ticket.ID)
	s.publish(ctx, events.EventTicketDeleted, actor, ticket, events.NewTicketPayload(ticket))
	return nil
}

// ListOwned returns tickets created by actor, newest first.
func (s *TicketService) ListOwned(ctx context.Context, actor *domain.User, search string, page PageRequest) (Page[domain.Ticket], error) {
	if err := requireActor(actor); err != nil {
		return Page[domain.Ticket]{}, err
	}
	return s.list(ctx, repository.TicketFilter{CreatedBy: &actor.ID, Search: search}, page)
}

// ListAssigned returns tickets assigned to actor.
func (s *TicketService) ListAssigned(ctx context.Context, actor *domain.User, search string, page PageRequest) (Page[domain.Ticket], error) {
	if err := requireActor(actor); err != nil {
		return Page[domain.Ticket]{}, err
	}
	return s.list(ctx, repository.TicketFilter{AssignedTo: &actor.ID, Search: search}, page)
}

// ListShared returns tickets shared with actor's email.
func (s *TicketService) ListShared(ctx context.Context, actor *domain.User, search string, page PageRequest) (Page[domain.Ticket], error) {
	if err := requireActor(actor); err != nil {
		return Page[domain.Ticket]{}, err
	}
	email := domain.NormalizeEmail(actor.Email)
	if email == "" {
		return Page[domain.Ticket]{Items: []domain.Ticket{}, Limit: page.normalize().Limit, Offset: page.normalize().Offset}, nil
	}
	return s.list(ctx, repository.TicketFilter{SharedWith: &email, Search: search}, page)
}

// Search lists every ticket matching search. Admin only.
func (s *TicketService) Search(ctx context.Context, actor *domain.User, search string, page PageRequest) (Page[domain.Ticket], error) {
	if err := requireAdmin(actor); err != nil {
		return Page[domain.Ticket]{}, err
	}
	return s.list(ctx, repository.TicketFilter{Search: search}, page)
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter, page PageRequest) (Page[domain.Ticket], error) {
	return fetchPage(page, func(limit, offset int) ([]domain.Ticket, error) {
		filter.Limit, filter.Offset = limit, offset
		items, err := s.tickets.List(ctx, filter)
		if err != nil {
			return nil, storeError(err, "ticket", "list")
		}
		return items, nil
	})
}

// load fetches the ticket; forUpdate locks the row until the surrounding
// transaction ends.
func (s *TicketService) load(ctx context.Context, ticketID string, forUpdate bool) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	get := s.tickets.GetByID
	if forUpdate {
		get = s.tickets.GetByIDForUpdate
	}
	ticket, err := get(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", ticketID)
	}
	return ticket, nil
}

// authorized loads the ticket and checks capability. Authentication is
// checked first so anonymous callers learn nothing about ticket ids.
func (s *TicketService) authorized(ctx context.Context, actor *domain.User, ticketID string, capability access.Capability) (*domain.Ticket, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, ticketID, false)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, ticket, capability); err != nil {
		return nil, err
	}
	return ticket, nil
}

// modify runs change against the ticket locked for update inside a
// transaction and writes it back when change reports a difference. Effects
// belong after modify returns so they only see committed state.
func (s *TicketService) modify(ctx context.Context, ticketID string, change func(ctx context.Context, ticket *domain.Ticket) (bool, error)) (*domain.Ticket, bool, error) {
	var (
		ticket  *domain.Ticket
		changed bool
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, err = s.load(ctx, ticketID, true); err != nil {
			return err
		}
		if changed, err = change(ctx, ticket); err != nil || !changed {
			return err
		}
		ticket.UpdatedAt = s.after.timestamp()
		return storeError(s.tickets.Update(ctx, ticket), "ticket", ticket.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return ticket, changed, nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, actor *domain.User, ticket *domain.Ticket, payload any) {
	s.after.publishEvent(ctx, events.Event{
		Type:     eventType,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  payload,
	})
}

func validateTicketText(title, content string) error {
	details := map[string]any{}
	if title == "" {
		details["title"] = "required"
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		details["title"] = fmt.Sprintf("at most %d characters", maxTitleLength)
	}
	if content == "" {
		details["content"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	return nil
}

// imageRef resolves an optional image reference to its stored key. Blank
// references mean no image.
func (s *TicketService) imageRef(ref *string) (*string, error) {
	if ref == nil {
		return nil, nil
	}
	key, err := s.after.imageKey(*ref)
	if err != nil || key == "" {
		return nil, err
	}
	return &key, nil
}
