// Package activity publishes domain activity (sign-ups, event changes and
// registrations) to a Redis stream for external consumers.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/eventhub/eventhub/internal/metrics"
)

const (
	// StreamKey is the Redis stream activity is appended to.
	StreamKey = "stream:eventhub:activity"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Kind names what happened.
type Kind string

const (
	KindUserRegistered      Kind = "user.registered"
	KindEventCreated        Kind = "event.created"
	KindEventUpdated        Kind = "event.updated"
	KindEventDeleted        Kind = "event.deleted"
	KindRegistrationCreated Kind = "registration.created"
)

// Message is one activity entry. Zero ids are omitted.
type Message struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	UserID     int64  `json:"user_id,omitempty"`
	EventID    int64  `json:"event_id,omitempty"`
	OccurredAt int64  `json:"t"` // Unix milliseconds
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(kind Kind, userID, eventID int64) Message {
	return Message{
		ID:         ulid.Make().String(),
		Kind:       kind,
		UserID:     userID,
		EventID:    eventID,
		OccurredAt: time.Now().UnixMilli(),
	}
}

// Publisher accepts activity messages without blocking the caller.
type Publisher interface {
	PublishAsync(msg Message)
}

// NoopPublisher discards every message.
type NoopPublisher struct{}

// NewNoop returns a Publisher that drops messages.
func NewNoop() Publisher {
	return NoopPublisher{}
}

func (NoopPublisher) PublishAsync(Message) {}

// StreamPublisher appends messages to a Redis stream.
type StreamPublisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder

	wg sync.WaitGroup
}

// NewStreamPublisher creates a publisher writing to StreamKey.
func NewStreamPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *StreamPublisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &StreamPublisher{
		redis:   client,
		logger:  logger.With("component", "activity.publisher"),
		metrics: recorder,
	}
}

// Publish appends msg to the stream and returns the stream entry id.
func (p *StreamPublisher) Publish(ctx context.Context, msg Message) (string, error) {
	if err := Validate(msg); err != nil {
		return "", err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"kind":    string(msg.Kind),
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishAsync publishes in a goroutine. Failures are logged and counted,
// never returned.
func (p *StreamPublisher) PublishAsync(msg Message) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, msg)
		if err != nil {
			p.logger.Warn("failed to publish activity",
				"kind", msg.Kind,
				"error", err,
			)
			p.metrics.IncActivityPublished("dropped")
			return
		}

		p.logger.Debug("activity published",
			"kind", msg.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncActivityPublished("success")
	}()
}

// Wait blocks until in-flight publishes finish or ctx is done.
func (p *StreamPublisher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
