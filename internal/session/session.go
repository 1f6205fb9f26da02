package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrNotConfigured indicates no remote backend is configured, so there is nobody to
	// sign in against.
	ErrNotConfigured = errors.New("backend is not configured")
	// ErrInvalidToken indicates the access token could not be verified.
	ErrInvalidToken = errors.New("invalid access token")
)

// Mode is the persistence capability fixed at construction time.
type Mode int

const (
	// ModeDemo keeps everything in memory; there is no backend.
	ModeDemo Mode = iota
	// ModeConfigured round-trips signed-in mutations through the remote store.
	ModeConfigured
)

func (m Mode) String() string {
	if m == ModeConfigured {
		return "configured"
	}
	return "demo"
}

// State is the snapshot consumed by stores and UI.
type State struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	IsConfigured    bool   `json:"is_configured"`
	UserID          string `json:"user_id,omitempty"`
}

// Gate is the capability handed to every store.
type Gate interface {
	State() State
}

// Listener is notified after the identity changed.
type Listener func(ctx context.Context, previous, current State)

// Options configures a Context.
type Options struct {
	Mode     Mode
	Verifier TokenVerifier
	Store    IdentityStore
	Logger   zerolog.Logger
}

// Context tracks the current identity.
type Context struct {
	mode     Mode
	verifier TokenVerifier
	store    IdentityStore
	logger   zerolog.Logger

	mu        sync.RWMutex
	userID    string
	listeners map[int]Listener
	nextID    int
}

// New constructs a session context.
func New(opts Options) *Context {
	return &Context{
		mode:      opts.Mode,
		verifier:  opts.Verifier,
		store:     opts.Store,
		logger:    opts.Logger.With().Str("component", "session").Logger(),
		listeners: make(map[int]Listener),
	}
}

// Mode returns the persistence mode.
func (c *Context) Mode() Mode {
	return c.mode
}

// State returns the current session state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Context) stateLocked() State {
	configured := c.mode == ModeConfigured
	return State{
		IsConfigured:    configured,
		IsAuthenticated: configured && c.userID != "",
		UserID:          c.userID,
	}
}

// SignIn verifies an access token issued by the session provider and adopts its subject.
func (c *Context) SignIn(ctx context.Context, accessToken string) (State, error) {
	if c.mode != ModeConfigured {
		return c.State(), ErrNotConfigured
	}
	if c.verifier == nil {
		return c.State(), ErrInvalidToken
	}

	userID, err := c.verifier.Verify(accessToken)
	if err != nil {
		return c.State(), err
	}
	return c.Adopt(ctx, userID)
}

// Adopt switches to an identity the session provider already verified.
func (c *Context) Adopt(ctx context.Context, userID string) (State, error) {
	if c.mode != ModeConfigured {
		return c.State(), ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return c.State(), ErrInvalidToken
	}

	if c.store != nil {
		if err := c.store.Save(ctx, userID); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist session identity")
		}
	}

	return c.setIdentity(ctx, userID), nil
}

// SignOut clears the identity. It is a no-op in demo mode.
func (c *Context) SignOut(ctx context.Context) error {
	if c.mode != ModeConfigured {
		return nil
	}

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear persisted session identity")
		}
	}

	c.setIdentity(ctx, "")
	return nil
}

// Restore re-establishes a previously persisted identity, if any.
func (c *Context) Restore(ctx context.Context) (State, error) {
	if c.mode != ModeConfigured || c.store == nil {
		return c.State(), nil
	}

	userID, err := c.store.Load(ctx)
	if err != nil {
		return c.State(), err
	}
	if userID == "" {
		return c.State(), nil
	}

	c.logger.Info().Str("user_id", userID).Msg("session restored")
	return c.setIdentity(ctx, userID), nil
}

// Subscribe registers a listener for identity changes and returns its cancel function.
func (c *Context) Subscribe(listener Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Context) setIdentity(ctx context.Context, userID string) State {
	c.mu.Lock()
	previous := c.stateLocked()
	c.userID = userID
	current := c.stateLocked()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, listener := range c.listeners {
		listeners = append(listeners, listener)
	}
	c.mu.Unlock()

	if previous == current {
		return current
	}

	c.logger.Info().
		Bool("authenticated", current.IsAuthenticated).
		Str("user_id", current.UserID).
		Msg("session identity changed")

	// Listeners run outside the lock so they may read State.
	for _, listener := range listeners {
		listener(ctx, previous, current)
	}
	return current
}

// Static is a fixed Gate, handy for wiring stores without a live session.
type Static State

// State implements Gate.
func (s Static) State() State {
	return State(s)
}
