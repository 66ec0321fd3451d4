package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

// testServer upgrades /ws connections and hands each one to serve.
func testServer(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(conn)
	}))
	t.Cleanup(ts.Close)
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

func testOptions() Options {
	return Options{
		HandshakeTimeout:     2 * time.Second,
		ReconnectDelay:       20 * time.Millisecond,
		MaxReconnectAttempts: 3,
	}
}

func waitConnected(t *testing.T, ch *Channel) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, ch.WaitState(ctx, StateConnected))
}

func TestConnectAndDispatch(t *testing.T) {
	got := make(chan domain.AgentUpdate, 1)
	url := testServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		env, err := NewEnvelope(domain.EventAgentUpdate, domain.AgentUpdate{
			AgentID: "a1",
			Status:  domain.AgentBusy,
		})
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(env))
		// Hold the connection open until the client is done.
		conn.ReadMessage()
	})

	ch := New(url, testOptions(), logging.New(nil, "silent"))
	ch.Subscribe(domain.EventAgentUpdate, func(env Envelope) {
		var u domain.AgentUpdate
		if err := env.Decode(&u); err == nil {
			got <- u
		}
	})

	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()
	waitConnected(t, ch)

	select {
	case u := <-got:
		assert.Equal(t, "a1", u.AgentID)
		assert.Equal(t, domain.AgentBusy, u.Status)
	case <-time.After(3 * time.Second):
		t.Fatal("agent update never dispatched")
	}

	last, ok := ch.Last()
	require.True(t, ok)
	assert.Equal(t, domain.EventAgentUpdate, last.Type)
}

func TestUnsubscribeStopsCallbacks(t *testing.T) {
	send := make(chan Envelope)
	url := testServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for env := range send {
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		}
	})

	var mu sync.Mutex
	var calls int
	seen := make(chan struct{}, 4)

	ch := New(url, testOptions(), logging.New(nil, "silent"))
	unsub := ch.Subscribe(domain.EventSystemHealth, func(Envelope) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	ch.Subscribe(EventAny, func(Envelope) { seen <- struct{}{} })

	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()
	defer close(send)
	waitConnected(t, ch)

	env, err := NewEnvelope(domain.EventSystemHealth, domain.SystemHealth{Status: "healthy"})
	require.NoError(t, err)
	send <- env
	<-seen

	unsub()
	send <- env
	<-seen

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "no callbacks after unsubscribe")
}

func TestEmitRoundTrip(t *testing.T) {
	received := make(chan Envelope, 1)
	url := testServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var env Envelope
		if err := conn.ReadJSON(&env); err == nil {
			received <- env
		}
	})

	ch := New(url, testOptions(), logging.New(nil, "silent"))
	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()
	waitConnected(t, ch)

	require.NoError(t, ch.Emit("subscribe", map[string]string{"topic": "agents"}))

	select {
	case env := <-received:
		assert.Equal(t, "subscribe", env.Type)
		assert.NotEmpty(t, env.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the emit")
	}
}

func TestEmitWhileDisconnected(t *testing.T) {
	ch := New("ws://127.0.0.1:1/ws", testOptions(), logging.New(nil, "silent"))
	err := ch.Emit("subscribe", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReconnectAfterServerDrop(t *testing.T) {
	var mu sync.Mutex
	conns := 0
	url := testServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()
		if first {
			conn.Close()
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	})

	ch := New(url, testOptions(), logging.New(nil, "silent"))
	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()

	// First connection is dropped immediately; the loop must come back.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return conns >= 2 && ch.State() == StateConnected
	}, 5*time.Second, 10*time.Millisecond)
}

func TestReconnectAttemptsExhausted(t *testing.T) {
	opts := testOptions()
	opts.MaxReconnectAttempts = 2
	ch := New("ws://127.0.0.1:1/ws", opts, logging.New(nil, "silent"))

	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, ch.WaitState(ctx, StateError))
	assert.NotEmpty(t, ch.LastError())
}

func TestWaitStateUnblocksWhenChannelDies(t *testing.T) {
	opts := testOptions()
	opts.MaxReconnectAttempts = 2
	ch := New("ws://127.0.0.1:1/ws", opts, logging.New(nil, "silent"))

	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()

	// Waiting for connected must not outlive the channel itself: once the
	// attempts run out, the wait reports the death instead of blocking
	// until the context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := ch.WaitState(ctx, StateConnected)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChannelDead)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), ch.LastError())
}

func TestStreamErrorCaptured(t *testing.T) {
	url := testServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		env, _ := NewEnvelope(domain.EventError, domain.StreamError{Code: "bus", Message: "message bus unavailable"})
		conn.WriteJSON(env)
		conn.ReadMessage()
	})

	seen := make(chan struct{})
	ch := New(url, testOptions(), logging.New(nil, "silent"))
	ch.Subscribe(domain.EventError, func(Envelope) { close(seen) })

	require.NoError(t, ch.Start(context.Background()))
	defer ch.Close()
	waitConnected(t, ch)

	select {
	case <-seen:
	case <-time.After(3 * time.Second):
		t.Fatal("error event never dispatched")
	}
	assert.Equal(t, "message bus unavailable", ch.LastError())
}

func TestCloseIsIdempotent(t *testing.T) {
	url := testServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		conn.ReadMessage()
	})

	ch := New(url, testOptions(), logging.New(nil, "silent"))
	require.NoError(t, ch.Start(context.Background()))
	waitConnected(t, ch)

	ch.Close()
	ch.Close()
	assert.Equal(t, StateDisconnected, ch.State())

	// A closed channel must not be restartable in place.
	assert.ErrorIs(t, ch.Start(context.Background()), ErrAlreadyActive)
}
