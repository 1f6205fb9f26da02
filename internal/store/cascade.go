package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
)

// Repositories bundles the owned-row repositories of every entity. The zero value is
// valid in demo mode, where no remote call is ever made.
type Repositories struct {
	Goals   repository.OwnedRepository[models.Goal]
	Skills  repository.OwnedRepository[models.Skill]
	Topics  repository.OwnedRepository[models.Topic]
	Notes   repository.OwnedRepository[models.Note]
	Content repository.OwnedRepository[models.SkillContent]
}

// NewRepositories builds gorm-backed repositories on a shared connection.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Goals:   repository.NewOwnedRepository[models.Goal](db),
		Skills:  repository.NewOwnedRepository[models.Skill](db),
		Topics:  repository.NewOwnedRepository[models.Topic](db),
		Notes:   repository.NewOwnedRepository[models.Note](db),
		Content: repository.NewOwnedRepository[models.SkillContent](db),
	}
}

// cascader deletes children explicitly, deepest first, for remote stores without
// foreign key cascades.
type cascader struct {
	repos Repositories
}

func (c cascader) goal(ctx context.Context, ownerID, goalID string) error {
	skillIDs, err := c.repos.Skills.IDsWhere(ctx, ownerID, "goal_id", []string{goalID})
	if err != nil {
		return err
	}
	if err := c.skillChildren(ctx, ownerID, skillIDs); err != nil {
		return err
	}
	_, err = c.repos.Skills.DeleteWhere(ctx, ownerID, "goal_id", []string{goalID})
	return err
}

func (c cascader) skill(ctx context.Context, ownerID, skillID string) error {
	return c.skillChildren(ctx, ownerID, []string{skillID})
}

func (c cascader) skillChildren(ctx context.Context, ownerID string, skillIDs []string) error {
	if len(skillIDs) == 0 {
		return nil
	}
	topicIDs, err := c.repos.Topics.IDsWhere(ctx, ownerID, "skill_id", skillIDs)
	if err != nil {
		return err
	}
	if _, err := c.repos.Notes.DeleteWhere(ctx, ownerID, "topic_id", topicIDs); err != nil {
		return err
	}
	if _, err := c.repos.Topics.DeleteWhere(ctx, ownerID, "skill_id", skillIDs); err != nil {
		return err
	}
	_, err = c.repos.Content.DeleteWhere(ctx, ownerID, "skill_id", skillIDs)
	return err
}

func (c cascader) topic(ctx context.Context, ownerID, topicID string) error {
	_, err := c.repos.Notes.DeleteWhere(ctx, ownerID, "topic_id", []string{topicID})
	return err
}
