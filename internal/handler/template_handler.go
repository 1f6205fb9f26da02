package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/utils"
)

// TemplateHandler previews the skill template for a goal title.
type TemplateHandler struct{}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// Register wires template routes.
func (h *TemplateHandler) Register(router fiber.Router) {
	router.Get("/", h.preview)
}

func (h *TemplateHandler) preview(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.Query("title"))
	return utils.SendSuccess(c, "template retrieved", dto.TemplateResponse{
		Title:    title,
		Template: roadmap.TemplateFor(title),
		Skills:   roadmap.ExpandGoalTemplate(title),
	})
}
