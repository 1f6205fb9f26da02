package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

// ContentHandler exposes the content blocks of a skill.
type ContentHandler struct {
	workspace *store.Workspace
	logger    zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(workspace *store.Workspace, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		workspace: workspace,
		logger:    logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register wires content routes below /skills/:skillId/content.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Put("/order", h.reorder)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *ContentHandler) list(c *fiber.Ctx) error {
	blocks := h.store(c)
	items := blocks.Items()
	return utils.SendSuccess(c, "content retrieved", dto.ListResponse[models.SkillContent]{
		Items:   items,
		Total:   len(items),
		Loading: blocks.Loading(),
		Error:   errorText(blocks.Err()),
	})
}

func (h *ContentHandler) create(c *fiber.Ctx) error {
	var payload dto.ContentCreateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	block, err := h.store(c).Create(c.UserContext(), store.ContentDraft{
		Type:    models.ContentType(payload.Type),
		Title:   payload.Title,
		Content: payload.Content,
	})
	if err != nil {
		return writeStoreError(c, h.logger, err, "create content")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "content created", block)
}

func (h *ContentHandler) update(c *fiber.Ctx) error {
	var payload dto.ContentUpdateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	block, err := h.store(c).Update(c.UserContext(), c.Params("id"), payload.Patch())
	if err != nil {
		return writeStoreError(c, h.logger, err, "update content")
	}
	return utils.SendSuccess(c, "content updated", block)
}

func (h *ContentHandler) delete(c *fiber.Ctx) error {
	if err := h.store(c).Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeStoreError(c, h.logger, err, "delete content")
	}
	return utils.SendSuccess(c, "content deleted", nil)
}

func (h *ContentHandler) reorder(c *fiber.Ctx) error {
	var payload dto.ReorderRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	blocks := h.store(c)
	if err := blocks.Reorder(c.UserContext(), payload.IDs); err != nil {
		return writeStoreError(c, h.logger, err, "reorder content")
	}
	return utils.SendSuccess(c, "content reordered", blocks.Items())
}

func (h *ContentHandler) store(c *fiber.Ctx) *store.ContentStore {
	s := h.workspace.Content(c.Params("skillId"))
	ensureLoaded(c, s)
	return s
}
