package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/skillpath/internal/models"
)

func TestOwnedRepositoryListScopesByOwnerAndOrders(t *testing.T) {
	db := setupOwnedTestDB(t)
	repo := NewOwnedRepository[models.Topic](db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &models.Topic{OwnerID: "alice", SkillID: "s1", Title: "Second", OrderIndex: 1}))
	require.NoError(t, repo.Insert(ctx, &models.Topic{OwnerID: "alice", SkillID: "s1", Title: "First", OrderIndex: 0}))
	require.NoError(t, repo.Insert(ctx, &models.Topic{OwnerID: "alice", SkillID: "s2", Title: "Other skill"}))
	require.NoError(t, repo.Insert(ctx, &models.Topic{OwnerID: "bob", SkillID: "s1", Title: "Bob's"}))

	topics, err := repo.List(ctx, OwnedQuery{
		OwnerID: "alice",
		Filters: []Filter{{Column: "skill_id", Value: "s1"}},
		Order:   "order_index ASC",
	})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, "First", topics[0].Title)
	require.Equal(t, "Second", topics[1].Title)
	for _, topic := range topics {
		require.Equal(t, "alice", topic.OwnerID)
		require.Equal(t, models.TopicNotStarted, topic.Status)
	}
}

func TestOwnedRepositoryMaxPosition(t *testing.T) {
	db := setupOwnedTestDB(t)
	repo := NewOwnedRepository[models.Skill](db)
	ctx := context.Background()
	goalID := "goal-1"

	query := OwnedQuery{OwnerID: "alice", Filters: []Filter{{Column: "goal_id", Value: goalID}}}
	max, err := repo.MaxPosition(ctx, query, "order_in_roadmap")
	require.NoError(t, err)
	require.Equal(t, -1, max)

	require.NoError(t, repo.Insert(ctx, &models.Skill{OwnerID: "alice", GoalID: &goalID, Title: "A", OrderInRoadmap: 0}))
	require.NoError(t, repo.Insert(ctx, &models.Skill{OwnerID: "alice", GoalID: &goalID, Title: "B", OrderInRoadmap: 3}))
	require.NoError(t, repo.Insert(ctx, &models.Skill{OwnerID: "alice", Title: "Loose", OrderInRoadmap: 7}))
	require.NoError(t, repo.Insert(ctx, &models.Skill{OwnerID: "bob", GoalID: &goalID, Title: "C", OrderInRoadmap: 9}))

	max, err = repo.MaxPosition(ctx, query, "order_in_roadmap")
	require.NoError(t, err)
	require.Equal(t, 3, max)

	unattached := OwnedQuery{OwnerID: "alice", Filters: []Filter{{Column: "goal_id", Value: nil}}}
	max, err = repo.MaxPosition(ctx, unattached, "order_in_roadmap")
	require.NoError(t, err)
	require.Equal(t, 7, max)
}

func TestOwnedRepositoryUpdateIsOwnerScoped(t *testing.T) {
	db := setupOwnedTestDB(t)
	repo := NewOwnedRepository[models.Note](db)
	ctx := context.Background()

	note := models.Note{OwnerID: "alice", TopicID: "t1", Content: "draft"}
	require.NoError(t, repo.Insert(ctx, &note))
	require.NotEmpty(t, note.ID)

	_, err := repo.Update(ctx, "bob", note.ID, map[string]interface{}{"content": "hijacked"})
	require.ErrorIs(t, err, ErrRowNotFound)

	later := time.Now().Add(time.Minute).UTC()
	updated, err := repo.Update(ctx, "alice", note.ID, map[string]interface{}{"content": "final", "updated_at": later})
	require.NoError(t, err)
	require.Equal(t, "final", updated.Content)
	require.WithinDuration(t, later, updated.UpdatedAt, time.Second)
}

func TestOwnedRepositoryDeleteIsOwnerScoped(t *testing.T) {
	db := setupOwnedTestDB(t)
	repo := NewOwnedRepository[models.Goal](db)
	ctx := context.Background()

	goal := models.Goal{OwnerID: "alice", Title: "Learn Go"}
	require.NoError(t, repo.Insert(ctx, &goal))

	require.ErrorIs(t, repo.Delete(ctx, "bob", goal.ID), ErrRowNotFound)
	require.NoError(t, repo.Delete(ctx, "alice", goal.ID))
	require.ErrorIs(t, repo.Delete(ctx, "alice", goal.ID), ErrRowNotFound)
}

func TestOwnedRepositoryChildHelpers(t *testing.T) {
	db := setupOwnedTestDB(t)
	notes := NewOwnedRepository[models.Note](db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, notes.Insert(ctx, &models.Note{OwnerID: "alice", TopicID: "t1", Content: "n"}))
	}
	require.NoError(t, notes.Insert(ctx, &models.Note{OwnerID: "alice", TopicID: "t2", Content: "n"}))
	require.NoError(t, notes.Insert(ctx, &models.Note{OwnerID: "bob", TopicID: "t1", Content: "n"}))

	counts, err := notes.CountBy(ctx, "alice", "topic_id", []string{"t1", "t2", "t3"})
	require.NoError(t, err)
	require.Equal(t, 3, counts["t1"])
	require.Equal(t, 1, counts["t2"])
	require.Zero(t, counts["t3"])

	ids, err := notes.IDsWhere(ctx, "alice", "topic_id", []string{"t1"})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	deleted, err := notes.DeleteWhere(ctx, "alice", "topic_id", []string{"t1", "t2"})
	require.NoError(t, err)
	require.Equal(t, int64(4), deleted)

	remaining, err := notes.List(ctx, OwnedQuery{OwnerID: "bob"})
	require.NoError(t, err)
	require.Len(t, remaining, 1, "other owners' rows are untouched")

	deleted, err = notes.DeleteWhere(ctx, "alice", "topic_id", nil)
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func setupOwnedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}
