package cache

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(t *testing.T) (*Feed, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewFeed(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_matches", logger), mr
}

func TestPublishPushesDecodableRecord(t *testing.T) {
	feed, mr := newTestFeed(t)

	err := feed.Publish(context.Background(), MatchEvent{
		Type:       EventGameEnded,
		LobbyCode:  "ABCDE",
		Mode:       "attrition",
		SessionIDs: []string{"a", "b"},
		Winners:    []string{"a"},
	})
	require.NoError(t, err)

	items, err := mr.List("test_matches")
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got MatchEvent
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, EventGameEnded, got.Type)
	assert.Equal(t, "ABCDE", got.LobbyCode)
	assert.Equal(t, []string{"a"}, got.Winners)
	assert.NotZero(t, got.Timestamp)
}

func TestPublishAsyncAndClose(t *testing.T) {
	feed, mr := newTestFeed(t)

	feed.PublishAsync(MatchEvent{Type: EventLobbyCreated, LobbyCode: "AAAAA"})
	feed.PublishAsync(MatchEvent{Type: EventLobbyClosed, LobbyCode: "AAAAA"})
	require.NoError(t, feed.Close())

	items, err := mr.List("test_matches")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNilFeedIsNoop(t *testing.T) {
	var feed *Feed
	assert.NoError(t, feed.Publish(context.Background(), MatchEvent{Type: EventGameStarted}))
	feed.PublishAsync(MatchEvent{Type: EventGameStarted})
	assert.NoError(t, feed.Close())
}

func TestConnectFailsWithoutServer(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", 0, "", nil)
	assert.Error(t, err)
}
