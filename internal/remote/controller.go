package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// DefaultTimeout bounds every request/reply round trip.
	DefaultTimeout = 5 * time.Second
)

var (
	// ErrTimeout is returned when the bot does not answer in time.
	ErrTimeout = errors.New("remote controller timed out")

	// ErrClosed is returned once the connection has gone away.
	ErrClosed = errors.New("remote controller connection closed")
)

// Controller proxies match.Controller calls to a bot over a websocket.
type Controller struct {
	name    string
	conn    *websocket.Conn
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger

	writeMu sync.Mutex
	callMu  sync.Mutex
	nextID  uint64

	replies   chan Message
	closing   chan struct{}
	done      chan struct{}
	readErr   error
	closeOnce sync.Once
}

// Option configures a remote Controller.
type Option func(*Controller)

// WithTimeout sets the round trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock sets the clock used for timeouts.
func WithClock(clock quartz.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dial connects to the bot at url and returns a controller named name.
func Dial(ctx context.Context, url, name string, opts ...Option) (*Controller, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newController(conn, name, opts...), nil
}

func newController(conn *websocket.Conn, name string, opts ...Option) *Controller {
	c := &Controller{
		name:    name,
		conn:    conn,
		timeout: DefaultTimeout,
		clock:   quartz.NewReal(),
		logger:  log.New(io.Discard),
		replies: make(chan Message, 1),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("remote").With("controller", name)

	go c.readLoop()
	return c
}

func (c *Controller) readLoop() {
	defer close(c.done)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.readErr = err
			return
		}
		select {
		case c.replies <- msg:
		case <-c.closing:
			c.readErr = ErrClosed
			return
		}
	}
}

// Name implements match.Controller.
func (c *Controller) Name() string {
	return c.name
}

// Reset implements match.Controller.
func (c *Controller) Reset() error {
	reply, err := c.call(MessageReset)
	if err != nil {
		return err
	}
	if reply.Type != MessageAck {
		return fmt.Errorf("reset: unexpected reply %q", reply.Type)
	}
	return nil
}

// Decide implements match.Controller.
func (c *Controller) Decide() (int, error) {
	reply, err := c.call(MessageDecide)
	if err != nil {
		return 0, err
	}
	if reply.Type != MessageAction {
		return 0, fmt.Errorf("decide: unexpected reply %q", reply.Type)
	}
	c.logger.Debug("Received decision", "value", reply.Value)
	return reply.Value, nil
}

// Die implements match.DeathReactor.
func (c *Controller) Die() {
	c.notify(MessageDie)
}

// Win implements match.WinReactor.
func (c *Controller) Win() {
	c.notify(MessageWin)
}

// Close closes the connection and waits for the reader to stop.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
		<-c.done
	})
	return err
}

func (c *Controller) notify(t MessageType) {
	c.callMu.Lock()
	defer c.callMu.Unlock()
	c.nextID++
	if err := c.send(Message{Type: t, ID: c.nextID}); err != nil {
		c.logger.Warn("Failed to notify remote controller", "type", t, "error", err)
	}
}

// call sends a request and waits for the reply carrying the same ID. Replies
// to earlier, timed out requests are discarded.
func (c *Controller) call(t MessageType) (Message, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	c.nextID++
	id := c.nextID
	if err := c.send(Message{Type: t, ID: id}); err != nil {
		return Message{}, err
	}

	timeoutFired := make(chan struct{})
	timer := c.clock.AfterFunc(c.timeout, func() {
		close(timeoutFired)
	})
	defer timer.Stop()

	for {
		select {
		case reply := <-c.replies:
			if reply.ID != id {
				c.logger.Debug("Discarding stale reply", "type", reply.Type, "id", reply.ID, "want", id)
				continue
			}
			if err := reply.err(); err != nil {
				return Message{}, err
			}
			return reply, nil
		case <-c.done:
			return Message{}, fmt.Errorf("%w: %v", ErrClosed, c.readErr)
		case <-timeoutFired:
			c.logger.Warn("Request timed out", "type", t, "timeout", c.timeout)
			return Message{}, fmt.Errorf("%s after %v: %w", t, c.timeout, ErrTimeout)
		}
	}
}

func (c *Controller) send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}
