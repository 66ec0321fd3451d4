// Package channel implements the real-time client connection to the EMAS
// backend: one WebSocket per Start/Close lifetime, automatic reconnection
// with a fixed delay and a capped attempt count, and named event
// subscriptions with unsubscribe closures.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

// State is the channel connection state.
type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error" // terminal: reconnect attempts exhausted
)

// EventAny subscribes to every inbound event regardless of type.
const EventAny = "*"

var (
	ErrNotConnected  = errors.New("channel: not connected")
	ErrAlreadyActive = errors.New("channel: already started")
	ErrChannelDead   = errors.New("channel: reconnect attempts exhausted")
)

// Options tune the connection and reconnection behavior.
type Options struct {
	HandshakeTimeout     time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int // consecutive failed dials before giving up; 0 means unlimited
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout:     10 * time.Second,
		ReconnectDelay:       3 * time.Second,
		MaxReconnectAttempts: 10,
	}
}

type subscriber struct {
	id string
	fn func(Envelope)
}

// Channel is a reconnecting WebSocket client.
type Channel struct {
	url    string
	opts   Options
	dialer *websocket.Dialer
	log    *logging.Logger

	mu          sync.RWMutex
	conn        *websocket.Conn
	state       State
	stateNotify chan struct{}
	lastErr     string
	last        *Envelope
	subs        map[string][]subscriber
	started     bool

	writeMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a channel client for the given WebSocket URL.
func New(url string, opts Options, log *logging.Logger) *Channel {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultOptions().HandshakeTimeout
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultOptions().ReconnectDelay
	}
	return &Channel{
		url:  url,
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		log:         log.Sub("channel"),
		state:       StateDisconnected,
		stateNotify: make(chan struct{}),
		subs:        make(map[string][]subscriber),
	}
}

// Start launches the connect/read/reconnect loop. It returns immediately;
// use WaitState to block until connected. Starting an active channel is an
// error. The loop stops when ctx is cancelled or Close is called.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.started = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	// Unblock a pending read when the context ends.
	go func() {
		<-runCtx.Done()
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	}()

	go c.run(runCtx)
	return nil
}

// Close stops the loop and closes the connection. Safe to call more than
// once and before Start.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LastError returns the most recent connection or stream error message.
func (c *Channel) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Last returns the most recent inbound envelope, or false if none arrived.
func (c *Channel) Last() (Envelope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Envelope{}, false
	}
	return *c.last, true
}

// WaitState blocks until the channel reaches the wanted state or ctx ends.
// Reaching the terminal error state while waiting for anything else reports
// ErrChannelDead, wrapping the last connection error.
func (c *Channel) WaitState(ctx context.Context, want State) error {
	for {
		c.mu.RLock()
		cur, notify := c.state, c.stateNotify
		c.mu.RUnlock()
		if cur == want {
			return nil
		}
		if cur == StateError {
			if msg := c.LastError(); msg != "" {
				return fmt.Errorf("%w: %s", ErrChannelDead, msg)
			}
			return ErrChannelDead
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-notify:
		}
	}
}

// Subscribe registers fn for the named event (EventAny for all events) and
// returns an unsubscribe closure. After the closure runs, fn receives no
// callbacks for messages arriving later.
func (c *Channel) Subscribe(event string, fn func(Envelope)) func() {
	id := uuid.New().String()

	c.mu.Lock()
	c.subs[event] = append(c.subs[event], subscriber{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.subs[event]
		for i, s := range subs {
			if s.id == id {
				c.subs[event] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit sends a named event to the backend. When the channel is not
// connected this is a no-op that logs a warning and reports
// ErrNotConnected.
func (c *Channel) Emit(event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	c.mu.RLock()
	conn, state := c.conn, c.state
	c.mu.RUnlock()

	if state != StateConnected || conn == nil {
		c.log.Warn().Str("event", event).Msg("emit while disconnected dropped")
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(env)
}

// run is the connect/read/reconnect loop.
func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	attempts := 0
	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				c.setState(StateDisconnected)
				return
			}
			attempts++
			c.setError(err.Error())
			c.log.Warn().Err(err).Int("attempt", attempts).Msg("dial failed")

			if c.opts.MaxReconnectAttempts > 0 && attempts >= c.opts.MaxReconnectAttempts {
				c.setState(StateError)
				c.log.Error().Int("attempts", attempts).Msg("reconnect attempts exhausted")
				return
			}
			select {
			case <-ctx.Done():
				c.setState(StateDisconnected)
				return
			case <-time.After(c.opts.ReconnectDelay):
			}
			continue
		}

		attempts = 0
		c.mu.Lock()
		c.conn = conn
		c.lastErr = ""
		c.mu.Unlock()
		c.setState(StateConnected)
		c.log.Info().Str("url", c.url).Msg("channel connected")

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}
		c.log.Info().Dur("delay", c.opts.ReconnectDelay).Msg("channel lost, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

// readLoop reads envelopes until the connection dies.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Msg("server closed connection")
			} else {
				c.setError(err.Error())
			}
			conn.Close()
			return
		}
		c.dispatch(env)
	}
}

// dispatch records the envelope and invokes matching subscribers.
func (c *Channel) dispatch(env Envelope) {
	c.mu.Lock()
	c.last = &env
	if env.Type == domain.EventError {
		var se domain.StreamError
		if err := env.Decode(&se); err == nil && se.Message != "" {
			c.lastErr = se.Message
		}
	}
	targets := make([]subscriber, 0, len(c.subs[env.Type])+len(c.subs[EventAny]))
	targets = append(targets, c.subs[env.Type]...)
	targets = append(targets, c.subs[EventAny]...)
	c.mu.Unlock()

	for _, s := range targets {
		s.fn(env)
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == s {
		return
	}
	c.state = s
	close(c.stateNotify)
	c.stateNotify = make(chan struct{})
}

func (c *Channel) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}
