package realtime

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio/api/models"
)

// ErrClosed is returned by Send once the connection has left the Open state.
var ErrClosed = errors.New("realtime: connection closed")

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transport writes messages to one client.
type Transport interface {
	Kind() string
	Send(msg models.RealtimeMessage) error
	Close() error
}

// Conn is one client connection: Connecting -> Open -> Closed.
// Sends are serialized by writeMu; mu guards only the state, so Close never
// waits behind an in-flight write. Close is idempotent and safe from any goroutine.
type Conn struct {
	ID        string
	transport Transport
	now       func() time.Time

	writeMu sync.Mutex

	mu    sync.Mutex
	state State
	done  chan struct{}
}

func NewConn(id string, transport Transport) *Conn {
	return &Conn{
		ID:        id,
		transport: transport,
		now:       time.Now,
		state:     StateConnecting,
		done:      make(chan struct{}),
	}
}

func (c *Conn) Kind() string { return c.transport.Kind() }

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed when the connection enters Closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Open moves the connection to Open and sends the greeting.
func (c *Conn) Open(greeting string) error {
	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		return fmt.Errorf("open %s connection: %w", c.state, ErrClosed)
	}
	c.state = StateOpen
	c.mu.Unlock()

	return c.Send(ConnectionMessage(greeting, c.now()))
}

// Send writes msg while Open. Any other state yields ErrClosed without
// touching the transport. A failed write closes the connection.
func (c *Conn) Send(msg models.RealtimeMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.State() != StateOpen {
		return ErrClosed
	}
	if err := c.transport.Send(msg); err != nil {
		if c.State() == StateClosed {
			return ErrClosed
		}
		c.Close()
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	close(c.done)
	c.mu.Unlock()

	return c.transport.Close()
}
