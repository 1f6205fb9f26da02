package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

// SkillHandler exposes the skill store.
type SkillHandler struct {
	workspace *store.Workspace
	logger    zerolog.Logger
}

// NewSkillHandler constructs the handler.
func NewSkillHandler(workspace *store.Workspace, logger zerolog.Logger) *SkillHandler {
	return &SkillHandler{
		workspace: workspace,
		logger:    logger.With().Str("component", "skill_handler").Logger(),
	}
}

// Register wires skill routes.
func (h *SkillHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Get("/:id/progress", h.progress)
}

func (h *SkillHandler) list(c *fiber.Ctx) error {
	skills := h.workspace.Skills()
	if wantsRefresh(c) {
		_ = skills.Fetch(c.UserContext())
	}

	filter := roadmap.SkillFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		GoalID: c.Query("goal_id"),
	}
	items := roadmap.FilterSkills(skills.Items(), filter)
	return utils.OK(c, dto.SkillListResponse{
		Items:   items,
		Total:   len(items),
		Loading: skills.Loading(),
		Error:   errorText(skills.Err()),
	}, "skills retrieved", filter)
}

func (h *SkillHandler) create(c *fiber.Ctx) error {
	var payload dto.SkillCreateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}
	draft, err := payload.Draft()
	if err != nil {
		return writeStoreError(c, h.logger, err, "create skill")
	}

	skill, err := h.workspace.Skills().Create(c.UserContext(), draft)
	if err != nil {
		return writeStoreError(c, h.logger, err, "create skill")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "skill created", skill)
}

func (h *SkillHandler) update(c *fiber.Ctx) error {
	var payload dto.SkillUpdateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}
	patch, err := payload.Patch()
	if err != nil {
		return writeStoreError(c, h.logger, err, "update skill")
	}

	skill, err := h.workspace.Skills().Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeStoreError(c, h.logger, err, "update skill")
	}
	return utils.SendSuccess(c, "skill updated", skill)
}

func (h *SkillHandler) delete(c *fiber.Ctx) error {
	if err := h.workspace.DeleteSkill(c.UserContext(), c.Params("id")); err != nil {
		return writeStoreError(c, h.logger, err, "delete skill")
	}
	return utils.SendSuccess(c, "skill deleted", nil)
}

func (h *SkillHandler) progress(c *fiber.Ctx) error {
	skill, ok := h.workspace.Skills().Get(c.Params("id"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "skill not found")
	}

	progress, err := roadmap.ProgressOf(skill.Status)
	if err != nil {
		return writeStoreError(c, h.logger, err, "compute progress")
	}
	return utils.SendSuccess(c, "skill progress", dto.SkillProgressResponse{
		SkillID:  skill.ID,
		Status:   skill.Status,
		Label:    roadmap.StatusLabel(skill.Status),
		Progress: progress,
	})
}
