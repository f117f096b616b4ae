package network

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/amalg/go-battlecity/internal/game"
)

const dialTimeout = 5 * time.Second

// Client is a remote seat in a hosted game.
type Client struct {
	conn    net.Conn
	welcome WelcomeMsg
	stateCh chan game.Snapshot
	errCh   chan string
	closing sync.Once
	writeMu sync.Mutex
}

// NewClient dials addr and joins as name.
func NewClient(addr, name string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	welcome, err := handshake(conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}

	c := &Client{
		conn:    conn,
		welcome: welcome,
		stateCh: make(chan game.Snapshot, 10),
		errCh:   make(chan string, 4),
	}
	go c.receiveLoop()
	return c, nil
}

// handshake sends the join request and waits for the seat assignment.
func handshake(conn net.Conn, name string) (WelcomeMsg, error) {
	if err := WriteFrame(conn, MsgJoin, JoinMsg{Name: name}); err != nil {
		return WelcomeMsg{}, fmt.Errorf("send join: %w", err)
	}
	env, err := ReadFrame(conn)
	if err != nil {
		return WelcomeMsg{}, fmt.Errorf("read welcome: %w", err)
	}
	switch env.Type {
	case MsgWelcome:
		return Payload[WelcomeMsg](env)
	case MsgError:
		refusal, _ := Payload[ErrorMsg](env)
		return WelcomeMsg{}, fmt.Errorf("join refused: %s", refusal.Message)
	}
	return WelcomeMsg{}, fmt.Errorf("expected welcome, got %s", env.Type)
}

// PlayerID returns the ID the server assigned.
func (c *Client) PlayerID() string { return c.welcome.PlayerID }

// Owner returns the seat the server assigned.
func (c *Client) Owner() game.Owner { return c.welcome.Owner }

// Config returns the host's game configuration.
func (c *Client) Config() game.Config { return c.welcome.Config }

// StateChan yields snapshots, newest last. It is closed when the connection
// drops.
func (c *Client) StateChan() <-chan game.Snapshot {
	return c.stateCh
}

// Errors yields messages the server rejected a request with.
func (c *Client) Errors() <-chan string {
	return c.errCh
}

// SendIntent sends one input event.
func (c *Client) SendIntent(actionType game.ActionType, dir game.Direction) error {
	return c.send(MsgIntent, IntentMsg{ActionType: actionType, Direction: dir})
}

// SendStart asks the host to start the game.
func (c *Client) SendStart() error {
	return c.send(MsgStart, struct{}{})
}

func (c *Client) send(t MsgType, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.conn, t, payload)
}

// Close disconnects. The state channel closes once the receive loop sees
// the connection go.
func (c *Client) Close() {
	c.closing.Do(func() { c.conn.Close() })
}

func (c *Client) receiveLoop() {
	defer close(c.stateCh)

	for {
		env, err := ReadFrame(c.conn)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				pushLatest(c.errCh, "connection lost: "+err.Error())
			}
			return
		}

		switch env.Type {
		case MsgState:
			if msg, err := Payload[StateMsg](env); err == nil {
				pushLatest(c.stateCh, msg.State)
			}
		case MsgError:
			if msg, err := Payload[ErrorMsg](env); err == nil {
				pushLatest(c.errCh, msg.Message)
			}
		}
	}
}

// pushLatest sends v without blocking, dropping the oldest queued value when
// the consumer is slow. The latest state matters most.
func pushLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
