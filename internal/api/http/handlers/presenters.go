package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func parsePage(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Limit:  parseInt(c.Query("limit"), 0),
		Offset: parseInt(c.Query("offset"), 0),
	}
}

func pageResponse[T, R any](c *fiber.Ctx, page service.Page[T], present func(*T) R) error {
	items := make([]R, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, present(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{Offset: page.Offset, Limit: page.Limit, HasMore: page.HasMore},
	})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	shares := make([]dto.ShareResponse, 0, len(ticket.SharedWith))
	for _, entry := range ticket.SharedWith {
		shares = append(shares, dto.ShareResponse{Email: entry.Email, Role: entry.Role})
	}
	return dto.TicketResponse{
		ID:         ticket.ID,
		Title:      ticket.Title,
		Content:    ticket.Content,
		Image:      ticket.Image,
		Priority:   ticket.Priority,
		Status:     ticket.Status,
		CreatedBy:  ticket.CreatedBy,
		AssignedTo: ticket.AssignedTo,
		SharedWith: shares,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		Content:    comment.Content,
		CreatedBy:  comment.CreatedBy,
		AuthorName: comment.AuthorName,
		ParentID:   comment.ParentID,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

func commentTree(nodes []*domain.CommentNode) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(nodes))
	for _, node := range nodes {
		resp := commentResponse(&node.Comment)
		resp.Replies = commentTree(node.Replies)
		out = append(out, resp)
	}
	return out
}

func userResponse(user *domain.User) dto.UserResponse {
	ids := user.TicketIDs
	if ids == nil {
		ids = []string{}
	}
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		IsAdmin:      user.IsAdmin,
		Organization: user.Organization,
		TicketIDs:    ids,
		CreatedAt:    user.CreatedAt,
	}
}

func newsResponse(post *domain.NewsPost) dto.NewsResponse {
	images := post.Images
	if images == nil {
		images = []string{}
	}
	return dto.NewsResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Images:     images,
		CreatedBy:  post.CreatedBy,
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}

func activityResponse(activity *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:        activity.ID,
		Type:      activity.Type,
		Message:   activity.Message,
		TicketID:  activity.TicketID,
		CreatedAt: activity.CreatedAt,
	}
}
