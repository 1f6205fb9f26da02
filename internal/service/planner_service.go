package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/store"
)

// DefaultAchievementNotes is recorded when a goal is marked achieved without notes.
const DefaultAchievementNotes = "Goal marked as achieved!"

// ErrGoalNotFound indicates the goal is not part of the current snapshot.
var ErrGoalNotFound = errors.New("goal not found")

// GoalPlan is the outcome of creating a goal from a template. Skill failures do not roll
// the goal back; they are reported alongside it.
type GoalPlan struct {
	Goal        models.Goal    `json:"goal"`
	Template    string         `json:"template"`
	Skills      []models.Skill `json:"skills"`
	SkillErrors []error        `json:"-"`
}

// SkillProgress is a skill with its mapped progress value.
type SkillProgress struct {
	models.Skill
	Progress    int    `json:"progress"`
	StatusLabel string `json:"status_label"`
}

// GoalOverview is the detail view of a goal.
type GoalOverview struct {
	Goal            roadmap.GoalStats `json:"goal"`
	Skills          []SkillProgress   `json:"skills"`
	OverallProgress int               `json:"overall_progress"`
	IsOverdue       bool              `json:"is_overdue"`
}

// PlannerService orchestrates goals and their roadmap skills.
type PlannerService interface {
	CreateGoal(ctx context.Context, draft store.GoalDraft) (GoalPlan, error)
	MarkAchieved(ctx context.Context, goalID, notes string) (roadmap.GoalStats, error)
	Overview(goalID string) (GoalOverview, error)
}

type plannerService struct {
	workspace *store.Workspace
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewPlannerService constructs the planner on top of a workspace.
func NewPlannerService(workspace *store.Workspace, logger zerolog.Logger) PlannerService {
	return &plannerService{
		workspace: workspace,
		logger:    logger.With().Str("component", "planner_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/skillpath/internal/service/planner"),
		now:       time.Now,
	}
}

func (s *plannerService) CreateGoal(ctx context.Context, draft store.GoalDraft) (GoalPlan, error) {
	ctx, span := s.tracer.Start(ctx, "planner.create_goal")
	defer span.End()

	goal, err := s.workspace.Goals().Create(ctx, draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "goal creation failed")
		return GoalPlan{}, err
	}

	templateName := roadmap.TemplateFor(goal.Title)
	templates := roadmap.ExpandGoalTemplate(goal.Title)
	span.SetAttributes(attribute.String("planner.template", templateName), attribute.Int("planner.skills", len(templates)))

	plan := GoalPlan{Goal: goal, Template: templateName, Skills: make([]models.Skill, 0, len(templates))}
	for _, tpl := range templates {
		days := tpl.EstimatedDurationDays
		skill, err := s.workspace.Skills().Create(ctx, store.SkillDraft{
			GoalID:                &goal.ID,
			Title:                 tpl.Title,
			Description:           tpl.Description,
			EstimatedDurationDays: &days,
		})
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("goal_id", goal.ID).
				Str("skill", tpl.Title).
				Msg("failed to create template skill")
			plan.SkillErrors = append(plan.SkillErrors, fmt.Errorf("%s: %w", tpl.Title, err))
			continue
		}
		plan.Skills = append(plan.Skills, skill)
	}

	if len(plan.SkillErrors) > 0 {
		span.SetStatus(codes.Error, "some template skills failed")
	} else {
		span.SetStatus(codes.Ok, "planned")
	}

	s.logger.Info().
		Str("goal_id", goal.ID).
		Str("template", templateName).
		Int("skills", len(plan.Skills)).
		Int("failed", len(plan.SkillErrors)).
		Msg("goal planned")
	return plan, nil
}

func (s *plannerService) MarkAchieved(ctx context.Context, goalID, notes string) (roadmap.GoalStats, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = DefaultAchievementNotes
	}

	achieved := true
	goal, err := s.workspace.Goals().Update(ctx, goalID, store.GoalPatch{
		IsAchieved:       &achieved,
		AchievementNotes: &notes,
	})
	if err != nil {
		return roadmap.GoalStats{}, err
	}
	return roadmap.WithGoalStats(goal, s.workspace.Skills().Items()), nil
}

func (s *plannerService) Overview(goalID string) (GoalOverview, error) {
	stats, ok := s.workspace.GoalWithStats(goalID)
	if !ok {
		return GoalOverview{}, fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}

	skills := roadmap.SkillsForGoal(goalID, s.workspace.Skills().Items())
	items := make([]SkillProgress, 0, len(skills))
	for _, skill := range skills {
		progress, err := roadmap.ProgressOf(skill.Status)
		if err != nil {
			s.logger.Warn().Err(err).Str("skill_id", skill.ID).Msg("skill has an unmapped status")
		}
		items = append(items, SkillProgress{
			Skill:       skill,
			Progress:    progress,
			StatusLabel: roadmap.StatusLabel(skill.Status),
		})
	}

	return GoalOverview{
		Goal:            stats,
		Skills:          items,
		OverallProgress: roadmap.OverallProgress(stats),
		IsOverdue:       roadmap.IsOverdue(stats.Goal, s.now()),
	}, nil
}
