package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

// TopicHandler exposes the topics of a skill.
type TopicHandler struct {
	workspace *store.Workspace
	logger    zerolog.Logger
}

// NewTopicHandler constructs the handler.
func NewTopicHandler(workspace *store.Workspace, logger zerolog.Logger) *TopicHandler {
	return &TopicHandler{
		workspace: workspace,
		logger:    logger.With().Str("component", "topic_handler").Logger(),
	}
}

// Register wires topic routes below /skills/:skillId/topics.
func (h *TopicHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Put("/order", h.reorder)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *TopicHandler) list(c *fiber.Ctx) error {
	topics := h.store(c)
	items := topics.Items()
	return utils.SendSuccess(c, "topics retrieved", dto.ListResponse[models.Topic]{
		Items:   items,
		Total:   len(items),
		Loading: topics.Loading(),
		Error:   errorText(topics.Err()),
	})
}

func (h *TopicHandler) create(c *fiber.Ctx) error {
	var payload dto.TopicCreateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	topic, err := h.store(c).Create(c.UserContext(), store.TopicDraft{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		return writeStoreError(c, h.logger, err, "create topic")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic created", topic)
}

func (h *TopicHandler) update(c *fiber.Ctx) error {
	var payload dto.TopicUpdateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}
	patch, err := payload.Patch()
	if err != nil {
		return writeStoreError(c, h.logger, err, "update topic")
	}

	topic, err := h.store(c).Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeStoreError(c, h.logger, err, "update topic")
	}
	return utils.SendSuccess(c, "topic updated", topic)
}

func (h *TopicHandler) delete(c *fiber.Ctx) error {
	h.store(c)
	if err := h.workspace.DeleteTopic(c.UserContext(), c.Params("skillId"), c.Params("id")); err != nil {
		return writeStoreError(c, h.logger, err, "delete topic")
	}
	return utils.SendSuccess(c, "topic deleted", nil)
}

func (h *TopicHandler) reorder(c *fiber.Ctx) error {
	var payload dto.ReorderRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	topics := h.store(c)
	if err := topics.Reorder(c.UserContext(), payload.IDs); err != nil {
		return writeStoreError(c, h.logger, err, "reorder topics")
	}
	return utils.SendSuccess(c, "topics reordered", topics.Items())
}

func (h *TopicHandler) store(c *fiber.Ctx) *store.TopicStore {
	s := h.workspace.Topics(c.Params("skillId"))
	ensureLoaded(c, s)
	return s
}
