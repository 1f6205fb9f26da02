package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

// NoteHandler exposes the notes of a topic.
type NoteHandler struct {
	workspace *store.Workspace
	logger    zerolog.Logger
}

// NewNoteHandler constructs the handler.
func NewNoteHandler(workspace *store.Workspace, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		workspace: workspace,
		logger:    logger.With().Str("component", "note_handler").Logger(),
	}
}

// Register wires note routes below /topics/:topicId/notes.
func (h *NoteHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *NoteHandler) list(c *fiber.Ctx) error {
	notes := h.store(c)
	items := notes.Items()
	return utils.SendSuccess(c, "notes retrieved", dto.ListResponse[models.Note]{
		Items:   items,
		Total:   len(items),
		Loading: notes.Loading(),
		Error:   errorText(notes.Err()),
	})
}

func (h *NoteHandler) create(c *fiber.Ctx) error {
	var payload dto.NoteRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	note, err := h.store(c).Create(c.UserContext(), store.NoteDraft{Content: payload.Content})
	if err != nil {
		return writeStoreError(c, h.logger, err, "create note")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "note created", note)
}

func (h *NoteHandler) update(c *fiber.Ctx) error {
	var payload dto.NoteRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}

	note, err := h.store(c).Update(c.UserContext(), c.Params("id"), store.NotePatch{Content: &payload.Content})
	if err != nil {
		return writeStoreError(c, h.logger, err, "update note")
	}
	return utils.SendSuccess(c, "note updated", note)
}

func (h *NoteHandler) delete(c *fiber.Ctx) error {
	if err := h.store(c).Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeStoreError(c, h.logger, err, "delete note")
	}
	return utils.SendSuccess(c, "note deleted", nil)
}

func (h *NoteHandler) store(c *fiber.Ctx) *store.NoteStore {
	s := h.workspace.Notes(c.Params("topicId"))
	ensureLoaded(c, s)
	return s
}
