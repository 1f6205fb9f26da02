package events

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Change) error { return errors.New("broker down") }

type recordingPublisher struct {
	changes []Change
}

func (r *recordingPublisher) Publish(_ context.Context, change Change) error {
	r.changes = append(r.changes, change)
	return nil
}

func TestRedisPublisherDeliversChange(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	publisher := NewRedisPublisher(client, "skillpath")
	require.Equal(t, "skillpath:changes", publisher.Channel())

	sub := client.Subscribe(ctx, publisher.Channel())
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, Change{Entity: "goal", Action: ActionCreated, ID: "g1", OwnerID: "u1"}))

	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	require.NoError(t, err)

	change, err := Decode([]byte(msg.Payload))
	require.NoError(t, err)
	require.Equal(t, "goal", change.Entity)
	require.Equal(t, ActionCreated, change.Action)
	require.Equal(t, NodeID, change.Source)
	require.False(t, change.At.IsZero())
}

func TestMultiJoinsErrorsAndKeepsPublishing(t *testing.T) {
	recorder := &recordingPublisher{}
	multi := Multi{failingPublisher{}, nil, recorder}

	err := multi.Publish(context.Background(), Change{Entity: "note", Action: ActionDeleted})
	require.Error(t, err)
	require.Len(t, recorder.changes, 1)
}

func TestNATSSubjectFromChannelBase(t *testing.T) {
	publisher := NewNATSPublisher(nil, "skillpath:prod")
	require.Equal(t, "skillpath.prod.changes", publisher.Subject())
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, Nop{}.Publish(context.Background(), Change{}))
}
