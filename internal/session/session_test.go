package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestDemoModeIsNeverAuthenticated(t *testing.T) {
	ctx := context.Background()
	sess := New(Options{Mode: ModeDemo, Verifier: NewHMACVerifier(testSecret), Logger: zerolog.Nop()})

	state := sess.State()
	require.False(t, state.IsConfigured)
	require.False(t, state.IsAuthenticated)

	_, err := sess.SignIn(ctx, signToken(t, "user-1", time.Hour))
	require.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, sess.SignOut(ctx), "sign out is a no-op in demo mode")
	require.Equal(t, "demo", sess.Mode().String())
}

func TestSignInAdoptsSubjectAndNotifies(t *testing.T) {
	ctx := context.Background()
	sess := New(Options{Mode: ModeConfigured, Verifier: NewHMACVerifier(testSecret), Logger: zerolog.Nop()})

	var changes []State
	cancel := sess.Subscribe(func(_ context.Context, _, current State) {
		changes = append(changes, current)
	})
	defer cancel()

	state, err := sess.SignIn(ctx, "Bearer "+signToken(t, "user-1", time.Hour))
	require.NoError(t, err)
	require.True(t, state.IsAuthenticated)
	require.Equal(t, "user-1", state.UserID)

	_, err = sess.Adopt(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, changes, 1, "re-adopting the same identity is not a change")

	require.NoError(t, sess.SignOut(ctx))
	require.Len(t, changes, 2)
	require.False(t, changes[1].IsAuthenticated)
	require.Empty(t, changes[1].UserID)
}

func TestSignInRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	sess := New(Options{Mode: ModeConfigured, Verifier: NewHMACVerifier(testSecret), Logger: zerolog.Nop()})

	_, err := sess.SignIn(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = sess.SignIn(ctx, signToken(t, "user-1", -time.Minute))
	require.ErrorIs(t, err, ErrInvalidToken, "expired token")

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = sess.SignIn(ctx, signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.False(t, sess.State().IsAuthenticated)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	ctx := context.Background()
	sess := New(Options{Mode: ModeConfigured, Logger: zerolog.Nop()})

	calls := 0
	cancel := sess.Subscribe(func(context.Context, State, State) { calls++ })
	_, err := sess.Adopt(ctx, "user-1")
	require.NoError(t, err)
	cancel()
	_, err = sess.Adopt(ctx, "user-2")
	require.NoError(t, err)

	require.Equal(t, 1, calls)
}

func TestRedisIdentityStoreRestoresSession(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisIdentityStore(client, "skillpath-test", time.Hour)

	first := New(Options{Mode: ModeConfigured, Store: store, Logger: zerolog.Nop()})
	_, err = first.Adopt(ctx, "user-42")
	require.NoError(t, err)
	require.True(t, mr.Exists("skillpath-test:session"))

	second := New(Options{Mode: ModeConfigured, Store: store, Logger: zerolog.Nop()})
	state, err := second.Restore(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-42", state.UserID)

	require.NoError(t, second.SignOut(ctx))
	require.False(t, mr.Exists("skillpath-test:session"))

	third := New(Options{Mode: ModeConfigured, Store: store, Logger: zerolog.Nop()})
	state, err = third.Restore(ctx)
	require.NoError(t, err)
	require.False(t, state.IsAuthenticated)
}

func TestStaticGate(t *testing.T) {
	gate := Static{IsConfigured: true, IsAuthenticated: true, UserID: "u"}
	require.Equal(t, "u", gate.State().UserID)
}

func signToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}
