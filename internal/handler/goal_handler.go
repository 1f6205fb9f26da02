package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/dto"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/service"
	"github.com/noah-isme/skillpath/internal/store"
	"github.com/noah-isme/skillpath/internal/utils"
)

// GoalHandler exposes goals and their roadmap overview.
type GoalHandler struct {
	workspace *store.Workspace
	planner   service.PlannerService
	logger    zerolog.Logger
}

// NewGoalHandler constructs the handler.
func NewGoalHandler(workspace *store.Workspace, planner service.PlannerService, logger zerolog.Logger) *GoalHandler {
	return &GoalHandler{
		workspace: workspace,
		planner:   planner,
		logger:    logger.With().Str("component", "goal_handler").Logger(),
	}
}

// Register wires goal routes.
func (h *GoalHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/:id", h.overview)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/achieve", h.achieve)
}

func (h *GoalHandler) list(c *fiber.Ctx) error {
	if wantsRefresh(c) {
		// Fetch errors surface through the store's Err below.
		_ = h.workspace.Goals().Fetch(c.UserContext())
		_ = h.workspace.Skills().Fetch(c.UserContext())
	}

	filter := roadmap.GoalFilter(strings.ToLower(strings.TrimSpace(c.Query("filter", string(roadmap.GoalsAll)))))
	goals := h.workspace.Goals()
	err := goals.Err()
	if err == nil {
		err = h.workspace.Skills().Err()
	}

	return utils.SendSuccess(c, "goals retrieved", dto.GoalListResponse{
		Items:   roadmap.FilterGoals(h.workspace.GoalsWithStats(), filter),
		Filter:  string(filter),
		Loading: goals.Loading(),
		Error:   errorText(err),
	})
}

func (h *GoalHandler) create(c *fiber.Ctx) error {
	var payload dto.GoalCreateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}
	draft, err := payload.Draft()
	if err != nil {
		return writeStoreError(c, h.logger, err, "create goal")
	}

	if !payload.WantsTemplate() {
		goal, err := h.workspace.Goals().Create(c.UserContext(), draft)
		if err != nil {
			return writeStoreError(c, h.logger, err, "create goal")
		}
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "goal created", goal)
	}

	plan, err := h.planner.CreateGoal(c.UserContext(), draft)
	if err != nil {
		return writeStoreError(c, h.logger, err, "create goal")
	}

	message := "goal created"
	if len(plan.SkillErrors) > 0 {
		message = "goal created, some template skills failed"
		requestLogger(h.logger, c).Warn().
			Err(errors.Join(plan.SkillErrors...)).
			Str("goal_id", plan.Goal.ID).
			Msg("template expansion incomplete")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, message, plan)
}

func (h *GoalHandler) overview(c *fiber.Ctx) error {
	overview, err := h.planner.Overview(c.Params("id"))
	if err != nil {
		return writeStoreError(c, h.logger, err, "load goal")
	}
	return utils.SendSuccess(c, "goal retrieved", overview)
}

func (h *GoalHandler) update(c *fiber.Ctx) error {
	var payload dto.GoalUpdateRequest
	if ok, err := bindAndValidate(c, &payload); !ok {
		return err
	}
	patch, err := payload.Patch()
	if err != nil {
		return writeStoreError(c, h.logger, err, "update goal")
	}

	goal, err := h.workspace.Goals().Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeStoreError(c, h.logger, err, "update goal")
	}
	return utils.SendSuccess(c, "goal updated", roadmap.WithGoalStats(goal, h.workspace.Skills().Items()))
}

func (h *GoalHandler) delete(c *fiber.Ctx) error {
	if err := h.workspace.DeleteGoal(c.UserContext(), c.Params("id")); err != nil {
		return writeStoreError(c, h.logger, err, "delete goal")
	}
	return utils.SendSuccess(c, "goal deleted", nil)
}

func (h *GoalHandler) achieve(c *fiber.Ctx) error {
	var payload dto.AchieveRequest
	if len(c.Body()) > 0 {
		if ok, err := bindAndValidate(c, &payload); !ok {
			return err
		}
	}

	stats, err := h.planner.MarkAchieved(c.UserContext(), c.Params("id"), payload.Notes)
	if err != nil {
		return writeStoreError(c, h.logger, err, "mark goal achieved")
	}
	return utils.SendSuccess(c, "goal achieved", stats)
}
