package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/skillpath/internal/events"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/repository"
	"github.com/noah-isme/skillpath/internal/session"
)

var errInjected = errors.New("injected failure")

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:store_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// tickingClock returns strictly increasing timestamps so created_at ordering is stable.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func signedIn(userID string) session.Gate {
	return session.Static{IsConfigured: true, IsAuthenticated: true, UserID: userID}
}

func demoGate() session.Gate {
	return session.Static{}
}

func signedOut() session.Gate {
	return session.Static{IsConfigured: true}
}

func testOptions(gate session.Gate) Options {
	return Options{
		Gate:          gate,
		Logger:        zerolog.Nop(),
		Now:           tickingClock(),
		RemoteCascade: true,
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.Change
}

func (r *recordingPublisher) Publish(_ context.Context, change events.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *recordingPublisher) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, change := range r.changes {
		out = append(out, change.Entity+":"+string(change.Action))
	}
	return out
}

// failingUpdates lets the first allowed updates through and fails the rest.
type failingUpdates[T any] struct {
	repository.OwnedRepository[T]
	allowed int
	calls   int
}

func (f *failingUpdates[T]) Update(ctx context.Context, ownerID, id string, changes map[string]interface{}) (T, error) {
	f.calls++
	if f.calls > f.allowed {
		var zero T
		return zero, errInjected
	}
	return f.OwnedRepository.Update(ctx, ownerID, id, changes)
}

// failingList breaks every read.
type failingList[T any] struct {
	repository.OwnedRepository[T]
}

func (failingList[T]) List(context.Context, repository.OwnedQuery) ([]T, error) {
	return nil, errInjected
}

// failingInsert breaks every insert.
type failingInsert[T any] struct {
	repository.OwnedRepository[T]
}

func (failingInsert[T]) Insert(context.Context, *T) error {
	return errInjected
}

// failingDelete breaks every delete.
type failingDelete[T any] struct {
	repository.OwnedRepository[T]
}

func (failingDelete[T]) Delete(context.Context, string, string) error {
	return errInjected
}

// hookedRepo runs hook once, inside the first List or Insert call after the wrapped
// repository answered. The hook may call back into the repository.
type hookedRepo[T any] struct {
	repository.OwnedRepository[T]
	fired atomic.Bool
	hook  func()
}

func (h *hookedRepo[T]) List(ctx context.Context, query repository.OwnedQuery) ([]T, error) {
	rows, err := h.OwnedRepository.List(ctx, query)
	h.fire()
	return rows, err
}

func (h *hookedRepo[T]) Insert(ctx context.Context, row *T) error {
	err := h.OwnedRepository.Insert(ctx, row)
	h.fire()
	return err
}

func (h *hookedRepo[T]) fire() {
	if h.hook != nil && h.fired.CompareAndSwap(false, true) {
		h.hook()
	}
}

func strPtr(v string) *string { return &v }

func newConfiguredSession() *session.Context {
	return session.New(session.Options{Mode: session.ModeConfigured, Logger: zerolog.Nop()})
}
