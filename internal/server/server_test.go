package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyd/internal/handlers"
	"github.com/jason-s-yu/lobbyd/internal/heartbeat"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/session/sessiontest"
)

func startServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	logger := sessiontest.Logger()
	d := handlers.NewDispatcher(lobby.NewRegistry(logger), nil, logger)
	srv := New(opts, d, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		srv.Shutdown()
	})
	return srv, ln.Addr().String()
}

type client struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *client) write(s string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(s))
	require.NoError(c.t, err)
}

func (c *client) read() map[string]any {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := c.r.ReadBytes('\n')
	require.NoError(c.t, err)
	var f map[string]any
	require.NoError(c.t, json.Unmarshal(line, &f))
	return f
}

func (c *client) expect(actions ...string) []map[string]any {
	c.t.Helper()
	frames := make([]map[string]any, len(actions))
	for i, want := range actions {
		frames[i] = c.read()
		require.Equal(c.t, want, frames[i]["action"])
	}
	return frames
}

func TestTCPHandshakeAndSplitFrames(t *testing.T) {
	_, addr := startServer(t, Options{})
	c := dial(t, addr)
	c.expect("connected", "version")

	// one frame split across writes, then two frames in one write
	c.write(`{"action":"createLobby","ruleset":"stan`)
	time.Sleep(20 * time.Millisecond)
	c.write("dard\",\"gameMode\":\"attrition\"}\r\n{\"action\":\"keepAlive\"}\n\n")

	frames := c.expect("joinedLobby", "lobbyOptions", "keepAliveAck")
	assert.Regexp(t, "^[A-Z]{5}$", frames[0]["code"])
}

func TestTCPMalformedFrameKeepsConnection(t *testing.T) {
	_, addr := startServer(t, Options{})
	c := dial(t, addr)
	c.expect("connected", "version")

	c.write("not json\n{\"action\":\"keepAlive\"}\n")
	frames := c.expect("error", "keepAliveAck")
	assert.Equal(t, handlers.MsgParseFailure, frames[0]["message"])
}

func TestTCPDisconnectLeavesLobby(t *testing.T) {
	srv, addr := startServer(t, Options{})
	a, b := dial(t, addr), dial(t, addr)
	a.expect("connected", "version")
	b.expect("connected", "version")

	a.write(`{"action":"createLobby","ruleset":"standard","gameMode":"attrition"}` + "\n")
	code := a.expect("joinedLobby", "lobbyOptions")[0]["code"].(string)

	b.write(`{"action":"joinLobby","code":"` + code + `"}` + "\n")
	b.expect("joinedLobby", "lobbyInfo", "lobbyOptions")

	require.NoError(t, a.conn.Close())
	b.expect("stopGame", "lobbyInfo")

	l, ok := srv.dispatcher.Registry().Get(code)
	require.True(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestHeartbeatClosesSilentPeer(t *testing.T) {
	_, addr := startServer(t, Options{Heartbeat: heartbeat.Config{
		Initial:    30 * time.Millisecond,
		Retry:      15 * time.Millisecond,
		MaxRetries: 2,
	}})
	c := dial(t, addr)
	c.expect("connected", "version")

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	keepAlives := 0
	for {
		line, err := c.r.ReadBytes('\n')
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
		if strings.Contains(string(line), `"keepAlive"`) {
			keepAlives++
		}
	}
	// the last keepAlive may race the close
	assert.GreaterOrEqual(t, keepAlives, 1)
}

func TestHTTPRoutesAndWebSocketGateway(t *testing.T) {
	srv, _ := startServer(t, Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ".", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.Close(websocket.StatusNormalClosure, "")

	readAction := func() map[string]any {
		typ, data, err := ws.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, websocket.MessageText, typ)
		var f map[string]any
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	}
	assert.Equal(t, "connected", readAction()["action"])
	assert.Equal(t, "version", readAction()["action"])

	require.NoError(t, ws.Write(ctx, websocket.MessageText,
		[]byte(`{"action":"createLobby","ruleset":"standard","gameMode":"coopSurvival"}`+"\n")))
	joined := readAction()
	require.Equal(t, "joinedLobby", joined["action"])

	resp, err = http.Get(ts.URL + "/lobbies")
	require.NoError(t, err)
	defer resp.Body.Close()
	var listing []lobby.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing, 1)
	assert.Equal(t, joined["code"], listing[0].Code)
	assert.Equal(t, 8, listing[0].MaxPlayers)
}

func TestConnectionsAfterShutdownAreRefused(t *testing.T) {
	logger := sessiontest.Logger()
	srv := New(Options{}, handlers.NewDispatcher(lobby.NewRegistry(logger), nil, logger), logger)
	srv.Shutdown()

	server, peer := net.Pipe()
	t.Cleanup(func() { _ = peer.Close() })
	srv.ServeConn(server, "tcp", "pipe")
	_, err := peer.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()
	_, _, err = ws.Read(ctx)
	assert.Error(t, err)

	srv.Shutdown()
}
