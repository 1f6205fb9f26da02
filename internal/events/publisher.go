package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Action names a store mutation.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionReordered Action = "reordered"
)

// Change describes a confirmed store mutation.
type Change struct {
	Source  string    `json:"source"`
	Entity  string    `json:"entity"`
	Action  Action    `json:"action"`
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	Demo    bool      `json:"demo"`
	At      time.Time `json:"at"`

	// CorrelationID names the request that caused the change, when there was one.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Publisher forwards changes to interested parties outside the process.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Nop drops every change.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }

// NodeID identifies this process as the source of published changes.
var NodeID = uuid.NewString()

func encode(change Change) ([]byte, error) {
	if change.Source == "" {
		change.Source = NodeID
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	return json.Marshal(change)
}

// NATSPublisher publishes changes on a subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher derives the subject from the channel base, e.g. "skillpath" →
// "skillpath.changes".
func NewNATSPublisher(conn *nats.Conn, channelBase string) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		subject: strings.ReplaceAll(channelBase, ":", ".") + ".changes",
	}
}

// Subject returns the NATS subject changes are published to.
func (p *NATSPublisher) Subject() string { return p.subject }

func (p *NATSPublisher) Publish(_ context.Context, change Change) error {
	payload, err := encode(change)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}

// RedisPublisher publishes changes on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher derives the channel from the channel base, e.g. "skillpath" →
// "skillpath:changes".
func NewRedisPublisher(client *redis.Client, channelBase string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channelBase + ":changes"}
}

// Channel returns the Redis channel changes are published to.
func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Publish(ctx context.Context, change Change) error {
	payload, err := encode(change)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}

// Multi fans a change out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, change Change) error {
	var errs []error
	for _, publisher := range m {
		if publisher == nil {
			continue
		}
		if err := publisher.Publish(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Decode parses a published change payload.
func Decode(payload []byte) (Change, error) {
	var change Change
	err := json.Unmarshal(payload, &change)
	return change, err
}
