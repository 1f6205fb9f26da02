package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/roadmap"
	"github.com/noah-isme/skillpath/internal/session"
)

// IdentitySource notifies listeners when the signed-in identity changes.
type IdentitySource interface {
	Subscribe(listener session.Listener) func()
}

// Workspace owns every store of the current session. Scoped stores are created on first
// use and kept until the parent is deleted.
type Workspace struct {
	repos  Repositories
	opts   Options
	logger zerolog.Logger

	goals  *GoalStore
	skills *SkillStore

	mu          sync.Mutex
	topics      map[string]*TopicStore
	notes       map[string]*NoteStore
	content     map[string]*ContentStore
	unsubscribe func()
}

// NewWorkspace constructs the goal and skill stores. Call Bind to follow identity changes.
func NewWorkspace(repos Repositories, opts Options) *Workspace {
	opts = opts.normalized()
	return &Workspace{
		repos:   repos,
		opts:    opts,
		logger:  opts.Logger.With().Str("component", "workspace").Logger(),
		goals:   NewGoalStore(repos, opts),
		skills:  NewSkillStore(repos, opts),
		topics:  make(map[string]*TopicStore),
		notes:   make(map[string]*NoteStore),
		content: make(map[string]*ContentStore),
	}
}

// Bind resets and refetches every store whenever the identity changes.
func (w *Workspace) Bind(source IdentitySource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	w.unsubscribe = source.Subscribe(func(ctx context.Context, previous, current session.State) {
		w.logger.Info().
			Str("previous_user", previous.UserID).
			Str("current_user", current.UserID).
			Msg("identity changed, refreshing stores")
		if err := w.Refresh(ctx); err != nil {
			w.logger.Warn().Err(err).Msg("refresh after identity change failed")
		}
	})
}

// Close stops following identity changes.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unsubscribe != nil {
		w.unsubscribe()
		w.unsubscribe = nil
	}
}

// Goals returns the goal store.
func (w *Workspace) Goals() *GoalStore { return w.goals }

// Skills returns the skill store.
func (w *Workspace) Skills() *SkillStore { return w.skills }

// Topics returns the topic store of a skill.
func (w *Workspace) Topics(skillID string) *TopicStore {
	w.mu.Lock()
	defer w.mu.Unlock()
	store, ok := w.topics[skillID]
	if !ok {
		store = NewTopicStore(skillID, w.repos, w.opts)
		w.topics[skillID] = store
	}
	return store
}

// Notes returns the note store of a topic.
func (w *Workspace) Notes(topicID string) *NoteStore {
	w.mu.Lock()
	defer w.mu.Unlock()
	store, ok := w.notes[topicID]
	if !ok {
		store = NewNoteStore(topicID, w.repos, w.opts)
		w.notes[topicID] = store
	}
	return store
}

// Content returns the content store of a skill.
func (w *Workspace) Content(skillID string) *ContentStore {
	w.mu.Lock()
	defer w.mu.Unlock()
	store, ok := w.content[skillID]
	if !ok {
		store = NewContentStore(skillID, w.repos, w.opts)
		w.content[skillID] = store
	}
	return store
}

type fetcher interface {
	Reset()
	Fetch(ctx context.Context) error
}

// Refresh resets every store and fetches them again, goals and skills first.
func (w *Workspace) Refresh(ctx context.Context) error {
	stores := []fetcher{w.goals, w.skills}
	w.mu.Lock()
	for _, store := range w.topics {
		stores = append(stores, store)
	}
	for _, store := range w.content {
		stores = append(stores, store)
	}
	for _, store := range w.notes {
		stores = append(stores, store)
	}
	w.mu.Unlock()

	var errs []error
	for _, store := range stores {
		store.Reset()
		if err := store.Fetch(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GoalsWithStats decorates the goal snapshot with counts from the skill snapshot.
func (w *Workspace) GoalsWithStats() []roadmap.GoalStats {
	return roadmap.GoalsWithStats(w.goals.Items(), w.skills.Items())
}

// GoalWithStats returns one decorated goal from the snapshot.
func (w *Workspace) GoalWithStats(id string) (roadmap.GoalStats, bool) {
	goal, ok := w.goals.Get(id)
	if !ok {
		return roadmap.GoalStats{}, false
	}
	return roadmap.WithGoalStats(goal, w.skills.Items()), true
}

// DeleteGoal deletes the goal and drops its skills and their scoped stores from the
// local snapshots.
func (w *Workspace) DeleteGoal(ctx context.Context, id string) error {
	if err := w.goals.Delete(ctx, id); err != nil {
		return err
	}

	var skillIDs []string
	for _, skill := range w.skills.Items() {
		if skill.BelongsTo(id) {
			skillIDs = append(skillIDs, skill.ID)
		}
	}
	w.skills.Forget(func(skill models.Skill) bool { return skill.BelongsTo(id) })
	for _, skillID := range skillIDs {
		w.dropSkill(skillID)
	}
	return nil
}

// DeleteSkill deletes the skill and drops its scoped stores.
func (w *Workspace) DeleteSkill(ctx context.Context, id string) error {
	if err := w.skills.Delete(ctx, id); err != nil {
		return err
	}
	w.dropSkill(id)
	return nil
}

// DeleteTopic deletes a topic of the skill and drops its note store.
func (w *Workspace) DeleteTopic(ctx context.Context, skillID, id string) error {
	if err := w.Topics(skillID).Delete(ctx, id); err != nil {
		return err
	}
	w.mu.Lock()
	delete(w.notes, id)
	w.mu.Unlock()
	return nil
}

func (w *Workspace) dropSkill(skillID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if topics, ok := w.topics[skillID]; ok {
		for _, topic := range topics.Items() {
			delete(w.notes, topic.ID)
		}
		delete(w.topics, skillID)
	}
	delete(w.content, skillID)
}
