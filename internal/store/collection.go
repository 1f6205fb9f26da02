package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/skillpath/internal/events"
	"github.com/noah-isme/skillpath/internal/models"
	"github.com/noah-isme/skillpath/internal/observability"
	"github.com/noah-isme/skillpath/internal/repository"
	"github.com/noah-isme/skillpath/internal/session"
)

const (
	modeDemo   = "demo"
	modeRemote = "remote"

	outcomeOK     = "ok"
	outcomeError  = "error"
	outcomeDenied = "denied"
)

// Options carries the dependencies shared by every store.
type Options struct {
	Gate      session.Gate
	Publisher events.Publisher
	Logger    zerolog.Logger
	Now       func() time.Time
	// RemoteCascade relies on the remote store's foreign keys to remove children. When
	// false, stores delete children explicitly before the parent.
	RemoteCascade bool
}

func (o Options) normalized() Options {
	if o.Gate == nil {
		o.Gate = session.Static{}
	}
	if o.Publisher == nil {
		o.Publisher = events.Nop{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// sequence describes the per-parent position column of an ordered entity.
type sequence[T any] struct {
	column string
	scope  func(row *T) repository.Filter
}

type descriptor[T any] struct {
	entity string
	order  string
	scope  []repository.Filter
	seq    *sequence[T]
	// prepend puts created items at the front of the snapshot, matching a newest-first order.
	prepend bool
	// touch lists the columns stamped with the current time on every update.
	touch   []string
	seed    func() []T
	enrich  func(ctx context.Context, ownerID string, rows []T)
	carry   func(fresh *T, previous T)
	cascade func(ctx context.Context, ownerID, id string) error
}

// Collection is the mode-aware item list behind every typed store. Readers get copies of
// the snapshot; mutations go through the session gate first.
type Collection[T any, PT interface {
	*T
	models.Record
}] struct {
	desc      descriptor[T]
	repo      repository.OwnedRepository[T]
	gate      session.Gate
	publisher events.Publisher
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu       sync.RWMutex
	items    []T
	inflight int
	loaded   bool
	err      error
	// generation is bumped by Reset; results of calls started under an older
	// generation are not written into the snapshot.
	generation uint64
}

func newCollection[T any, PT interface {
	*T
	models.Record
}](desc descriptor[T], repo repository.OwnedRepository[T], opts Options) *Collection[T, PT] {
	opts = opts.normalized()
	return &Collection[T, PT]{
		desc:      desc,
		repo:      repo,
		gate:      opts.Gate,
		publisher: opts.Publisher,
		logger:    opts.Logger.With().Str("component", desc.entity+"_store").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/skillpath/internal/store"),
		now:       opts.Now,
	}
}

// Items returns a copy of the current ordered snapshot.
func (c *Collection[T, PT]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Get returns the item with the given id from the snapshot.
func (c *Collection[T, PT]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// Loading reports whether a remote call is in flight.
func (c *Collection[T, PT]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

// Err returns the error of the last fetch, if it failed.
func (c *Collection[T, PT]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Loaded reports whether Fetch ran since construction or the last Reset.
func (c *Collection[T, PT]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Reset drops every item and the last error.
func (c *Collection[T, PT]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.err = nil
	c.loaded = false
	c.generation++
	c.mu.Unlock()
}

// Fetch reloads the snapshot. Without a backend it loads the demo seed; signed out it is
// empty; signed in it reads the owner's rows. A failed read leaves the snapshot empty.
func (c *Collection[T, PT]) Fetch(ctx context.Context) error {
	state, gen := c.begin()
	switch {
	case !state.IsConfigured:
		var seeded []T
		if c.desc.seed != nil {
			seeded = c.desc.seed()
		}
		c.replace(gen, state, seeded, nil)
		c.count("fetch", modeDemo, outcomeOK)
		return nil
	case !state.IsAuthenticated:
		c.replace(gen, state, nil, nil)
		return nil
	}

	var rows []T
	err := c.remote(ctx, "fetch", func(ctx context.Context) error {
		var err error
		rows, err = c.repo.List(ctx, repository.OwnedQuery{
			OwnerID: state.UserID,
			Filters: c.desc.scope,
			Order:   c.desc.order,
		})
		if err != nil {
			return err
		}
		if c.desc.enrich != nil {
			c.desc.enrich(ctx, state.UserID, rows)
		}
		return nil
	})
	if err != nil {
		remoteErr := &RemoteError{Entity: c.desc.entity, Op: "fetch", Err: err}
		c.replace(gen, state, nil, remoteErr)
		return remoteErr
	}

	c.replace(gen, state, rows, nil)
	return nil
}

func (c *Collection[T, PT]) create(ctx context.Context, row T) (T, error) {
	var zero T
	state, gen := c.begin()
	now := c.now().UTC()
	record := PT(&row)

	if !state.IsConfigured {
		record.EnsureID()
		record.Stamp(models.DemoOwnerID, now)

		c.mu.Lock()
		if c.desc.seq != nil {
			setPosition(&row, c.localMaxLocked(&row)+1)
		}
		c.addLocked(row)
		c.mu.Unlock()

		c.count("create", modeDemo, outcomeOK)
		c.publish(ctx, events.ActionCreated, record.GetID(), models.DemoOwnerID, true)
		return row, nil
	}
	if !state.IsAuthenticated {
		c.count("create", modeRemote, outcomeDenied)
		return zero, ErrAuthRequired
	}

	record.Stamp(state.UserID, now)
	err := c.remote(ctx, "create", func(ctx context.Context) error {
		if c.desc.seq != nil {
			query := repository.OwnedQuery{
				OwnerID: state.UserID,
				Filters: []repository.Filter{c.desc.seq.scope(&row)},
			}
			highest, err := c.repo.MaxPosition(ctx, query, c.desc.seq.column)
			if err != nil {
				return err
			}
			setPosition(&row, highest+1)
		}
		record.EnsureID()
		return c.repo.Insert(ctx, &row)
	})
	if err != nil {
		return zero, &RemoteError{Entity: c.desc.entity, Op: "create", Err: err}
	}

	c.mu.Lock()
	if !c.staleLocked(gen, state) {
		c.addLocked(row)
	}
	c.mu.Unlock()

	c.publish(ctx, events.ActionCreated, record.GetID(), state.UserID, false)
	return row, nil
}

func (c *Collection[T, PT]) update(ctx context.Context, id string, changes map[string]interface{}, apply func(*T)) (T, error) {
	var zero T
	state, gen := c.begin()
	now := c.now().UTC()

	if !state.IsConfigured {
		c.mu.Lock()
		idx := c.indexLocked(id)
		if idx < 0 {
			c.mu.Unlock()
			return zero, c.notFound(id)
		}
		item := c.items[idx]
		apply(&item)
		PT(&item).Touch(now)
		c.items[idx] = item
		c.mu.Unlock()

		c.count("update", modeDemo, outcomeOK)
		c.publish(ctx, events.ActionUpdated, id, models.DemoOwnerID, true)
		return item, nil
	}
	if !state.IsAuthenticated {
		c.count("update", modeRemote, outcomeDenied)
		return zero, ErrAuthRequired
	}

	payload := make(map[string]interface{}, len(changes)+len(c.desc.touch))
	for column, value := range changes {
		payload[column] = value
	}
	for _, column := range c.desc.touch {
		payload[column] = now
	}

	var fresh T
	err := c.remote(ctx, "update", func(ctx context.Context) error {
		var err error
		fresh, err = c.repo.Update(ctx, state.UserID, id, payload)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrRowNotFound) {
			return zero, c.notFound(id)
		}
		return zero, &RemoteError{Entity: c.desc.entity, Op: "update", Err: err}
	}

	c.mu.Lock()
	if idx := c.indexLocked(id); idx >= 0 && !c.staleLocked(gen, state) {
		if c.desc.carry != nil {
			c.desc.carry(&fresh, c.items[idx])
		}
		c.items[idx] = fresh
	}
	c.mu.Unlock()

	c.publish(ctx, events.ActionUpdated, id, state.UserID, false)
	return fresh, nil
}

// Delete removes the item. Signed in, the owned row is deleted first and the snapshot is
// only changed once that succeeded.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	state, gen := c.begin()

	if !state.IsConfigured {
		c.mu.Lock()
		idx := c.indexLocked(id)
		if idx < 0 {
			c.mu.Unlock()
			return c.notFound(id)
		}
		c.items = slices.Delete(c.items, idx, idx+1)
		c.mu.Unlock()

		c.count("delete", modeDemo, outcomeOK)
		c.publish(ctx, events.ActionDeleted, id, models.DemoOwnerID, true)
		return nil
	}
	if !state.IsAuthenticated {
		c.count("delete", modeRemote, outcomeDenied)
		return ErrAuthRequired
	}

	err := c.remote(ctx, "delete", func(ctx context.Context) error {
		if c.desc.cascade != nil {
			if err := c.desc.cascade(ctx, state.UserID, id); err != nil {
				return fmt.Errorf("delete children: %w", err)
			}
		}
		return c.repo.Delete(ctx, state.UserID, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrRowNotFound) {
			return c.notFound(id)
		}
		return &RemoteError{Entity: c.desc.entity, Op: "delete", Err: err}
	}

	c.mu.Lock()
	if !c.staleLocked(gen, state) {
		if idx := c.indexLocked(id); idx >= 0 {
			c.items = slices.Delete(c.items, idx, idx+1)
		}
	}
	c.mu.Unlock()
	c.publish(ctx, events.ActionDeleted, id, state.UserID, false)
	return nil
}

// Forget drops matching items from the snapshot without touching the remote store.
func (c *Collection[T, PT]) Forget(match func(T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, match)
	return before - len(c.items)
}

func (c *Collection[T, PT]) reorder(ctx context.Context, ids []string) error {
	if c.desc.seq == nil {
		return fmt.Errorf("%s is not ordered", c.desc.entity)
	}
	state, gen := c.begin()

	if !state.IsConfigured {
		c.mu.Lock()
		for _, id := range ids {
			if c.indexLocked(id) < 0 {
				c.mu.Unlock()
				return c.notFound(id)
			}
		}
		c.applyOrderLocked(ids)
		c.mu.Unlock()

		c.count("reorder", modeDemo, outcomeOK)
		c.publish(ctx, events.ActionReordered, "", models.DemoOwnerID, true)
		return nil
	}
	if !state.IsAuthenticated {
		c.count("reorder", modeRemote, outcomeDenied)
		return ErrAuthRequired
	}

	now := c.now().UTC()
	applied := 0
	err := c.remote(ctx, "reorder", func(ctx context.Context) error {
		for position, id := range ids {
			changes := map[string]interface{}{c.desc.seq.column: position, "updated_at": now}
			if _, err := c.repo.Update(ctx, state.UserID, id, changes); err != nil {
				return fmt.Errorf("%s %s: %w", c.desc.entity, id, err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		observability.StoreReorderPartial().WithLabelValues(c.desc.entity).Inc()
		c.logger.Warn().
			Int("applied", applied).
			Int("total", len(ids)).
			Msg("reorder stopped part way; local order kept until next fetch")
		return &PartialReorderError{Entity: c.desc.entity, Applied: applied, Total: len(ids), Err: err}
	}

	c.mu.Lock()
	if !c.staleLocked(gen, state) {
		c.applyOrderLocked(ids)
	}
	c.mu.Unlock()

	c.publish(ctx, events.ActionReordered, "", state.UserID, false)
	return nil
}

// nextPosition returns the first free position at the end of the sequence row belongs to.
func (c *Collection[T, PT]) nextPosition(ctx context.Context, row *T) (int, error) {
	state := c.gate.State()
	switch {
	case !state.IsConfigured:
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.localMaxLocked(row) + 1, nil
	case !state.IsAuthenticated:
		return 0, ErrAuthRequired
	}

	var highest int
	err := c.remote(ctx, "position", func(ctx context.Context) error {
		query := repository.OwnedQuery{
			OwnerID: state.UserID,
			Filters: []repository.Filter{c.desc.seq.scope(row)},
		}
		var err error
		highest, err = c.repo.MaxPosition(ctx, query, c.desc.seq.column)
		return err
	})
	if err != nil {
		return 0, &RemoteError{Entity: c.desc.entity, Op: "position", Err: err}
	}
	return highest + 1, nil
}

// positionHolder returns the id of the item other than exceptID that holds position in
// the sequence row belongs to, or "" when the position is free.
func (c *Collection[T, PT]) positionHolder(ctx context.Context, row *T, position int, exceptID string) (string, error) {
	state := c.gate.State()
	switch {
	case !state.IsConfigured:
		key := c.desc.seq.scope(row).Value
		c.mu.RLock()
		defer c.mu.RUnlock()
		for i := range c.items {
			item := &c.items[i]
			id := PT(item).GetID()
			if id != exceptID && positionOf(item) == position && c.desc.seq.scope(item).Value == key {
				return id, nil
			}
		}
		return "", nil
	case !state.IsAuthenticated:
		return "", ErrAuthRequired
	}

	var rows []T
	err := c.remote(ctx, "position", func(ctx context.Context) error {
		query := repository.OwnedQuery{
			OwnerID: state.UserID,
			Filters: []repository.Filter{
				c.desc.seq.scope(row),
				{Column: c.desc.seq.column, Value: position},
			},
		}
		var err error
		rows, err = c.repo.List(ctx, query)
		return err
	})
	if err != nil {
		return "", &RemoteError{Entity: c.desc.entity, Op: "position", Err: err}
	}
	for i := range rows {
		if id := PT(&rows[i]).GetID(); id != exceptID {
			return id, nil
		}
	}
	return "", nil
}

func (c *Collection[T, PT]) addLocked(row T) {
	if c.desc.prepend {
		c.items = slices.Insert(c.items, 0, row)
		return
	}
	c.items = append(c.items, row)
}

func (c *Collection[T, PT]) applyOrderLocked(ids []string) {
	for position, id := range ids {
		if idx := c.indexLocked(id); idx >= 0 {
			setPosition(&c.items[idx], position)
		}
	}
	slices.SortStableFunc(c.items, func(a, b T) int {
		return positionOf(&a) - positionOf(&b)
	})
}

func (c *Collection[T, PT]) localMaxLocked(row *T) int {
	key := c.desc.seq.scope(row).Value
	highest := -1
	for i := range c.items {
		item := &c.items[i]
		if c.desc.seq.scope(item).Value != key {
			continue
		}
		if position := positionOf(item); position > highest {
			highest = position
		}
	}
	return highest
}

func (c *Collection[T, PT]) indexLocked(id string) int {
	for i := range c.items {
		if PT(&c.items[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// begin captures the identity and snapshot generation an operation starts from.
func (c *Collection[T, PT]) begin() (session.State, uint64) {
	state := c.gate.State()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return state, c.generation
}

// staleLocked reports whether the snapshot moved on since begin: it was reset, or the
// identity changed while the call was in flight.
func (c *Collection[T, PT]) staleLocked(gen uint64, state session.State) bool {
	return c.generation != gen || c.gate.State() != state
}

func (c *Collection[T, PT]) replace(gen uint64, state session.State, items []T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staleLocked(gen, state) {
		c.logger.Debug().Str("user_id", state.UserID).Msg("dropping result of a superseded call")
		return
	}
	c.items = items
	c.err = err
	c.loaded = true
}

func (c *Collection[T, PT]) remote(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, "store."+c.desc.entity+"."+op)
	defer span.End()
	span.SetAttributes(attribute.String("store.entity", c.desc.entity), attribute.String("store.op", op))
	logger := c.logger
	if correlation := observability.CorrelationID(ctx); correlation != "" {
		span.SetAttributes(attribute.String("correlation_id", correlation))
		logger = logger.With().Str("correlation_id", correlation).Logger()
	}

	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
	}()

	start := time.Now()
	err := fn(ctx)
	observability.StoreLatency().WithLabelValues(c.desc.entity, op).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		c.count(op, modeRemote, outcomeError)
		if errors.Is(err, repository.ErrRowNotFound) {
			logger.Warn().Str("op", op).Msg("no owned row matched")
		} else {
			logger.Error().Err(err).Str("op", op).Msg("remote store call failed")
		}
		return err
	}

	span.SetStatus(codes.Ok, op)
	c.count(op, modeRemote, outcomeOK)
	return nil
}

func (c *Collection[T, PT]) count(op, mode, outcome string) {
	observability.StoreOperations().WithLabelValues(c.desc.entity, op, mode, outcome).Inc()
}

func (c *Collection[T, PT]) publish(ctx context.Context, action events.Action, id, ownerID string, demo bool) {
	change := events.Change{
		Entity:  c.desc.entity,
		Action:  action,
		ID:      id,
		OwnerID: ownerID,
		Demo:    demo,
		At:      c.now().UTC(),

		CorrelationID: observability.CorrelationID(ctx),
	}
	if err := c.publisher.Publish(ctx, change); err != nil {
		c.logger.Warn().Err(err).Str("action", string(action)).Msg("failed to publish store change")
	}
}

func (c *Collection[T, PT]) notFound(id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, c.desc.entity, id)
}

func setPosition[T any](row *T, position int) {
	if seq, ok := any(row).(models.Sequenced); ok {
		seq.SetPosition(position)
	}
}

func positionOf[T any](row *T) int {
	if seq, ok := any(row).(models.Sequenced); ok {
		return seq.Position()
	}
	return 0
}
