// internal/cache/redis.go
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list match events are pushed to.
const DefaultQueueName = "lobbyd_matches"

// publishTimeout bounds one asynchronous push.
const publishTimeout = 2 * time.Second

// Match event types.
const (
	EventLobbyCreated = "lobby_created"
	EventLobbyClosed  = "lobby_closed"
	EventGameStarted  = "game_started"
	EventGameEnded    = "game_ended"
)

// MatchEvent is one record on the match feed, consumed by an external
// service. Nothing in this process reads it back.
type MatchEvent struct {
	Type       string   `json:"type"`
	LobbyCode  string   `json:"lobby_code"`
	Mode       string   `json:"mode,omitempty"`
	SessionIDs []string `json:"session_ids,omitempty"`
	Winners    []string `json:"winners,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// Feed pushes match events onto a Redis list. A nil *Feed is valid and drops
// everything, which is how the server runs without Redis.
type Feed struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
	wg     sync.WaitGroup
}

// NewFeed wraps an existing client.
func NewFeed(rdb *redis.Client, queue string, logger *logrus.Logger) *Feed {
	if queue == "" {
		queue = DefaultQueueName
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Feed{rdb: rdb, queue: queue, logger: logger}
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr string, db int, queue string, logger *logrus.Logger) (*Feed, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrapf(err, "failed to connect to Redis at %s", addr)
	}
	return NewFeed(rdb, queue, logger), nil
}

// Publish serializes ev and RPUSHes it to the queue.
func (f *Feed) Publish(ctx context.Context, ev MatchEvent) error {
	if f == nil {
		return nil
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return eris.Wrap(err, "failed to marshal MatchEvent")
	}
	if err := f.rdb.RPush(ctx, f.queue, data).Err(); err != nil {
		return eris.Wrapf(err, "failed to RPush to Redis list '%s'", f.queue)
	}
	return nil
}

// PublishAsync publishes in the background so callers holding the dispatch
// lock never wait on Redis. Failures are only logged.
func (f *Feed) PublishAsync(ev MatchEvent) {
	if f == nil {
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := f.Publish(ctx, ev); err != nil {
			f.logger.WithError(err).WithFields(logrus.Fields{
				"event": ev.Type,
				"lobby": ev.LobbyCode,
			}).Error("Error publishing match event")
		}
	}()
}

// Close waits for in-flight publishes and closes the client.
func (f *Feed) Close() error {
	if f == nil {
		return nil
	}
	f.wg.Wait()
	return f.rdb.Close()
}
