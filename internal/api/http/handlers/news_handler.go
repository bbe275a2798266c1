package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// NewsHandler serves the news feed. Writes are mounted under /admin.
type NewsHandler struct {
	service *service.NewsService
}

// NewNewsHandler constructs handler.
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{service: newsService}
}

// ListNews GET /news.
func (h *NewsHandler) ListNews(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), user, parsePage(c))
	if err != nil {
		return err
	}
	return pageResponse(c, page, newsResponse)
}

// GetNews GET /news/:id.
func (h *NewsHandler) GetNews(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	post, err := h.service.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": newsResponse(post)})
}

// CreateNews POST /admin/news.
func (h *NewsHandler) CreateNews(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateNewsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	post, err := h.service.Create(c.UserContext(), user, service.NewsInput{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": newsResponse(post)})
}

// UpdateNews PATCH /admin/news/:id.
func (h *NewsHandler) UpdateNews(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateNewsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	post, err := h.service.Update(c.UserContext(), user, c.Params("id"), service.NewsUpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": newsResponse(post)})
}

// DeleteNews DELETE /admin/news/:id.
func (h *NewsHandler) DeleteNews(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
