package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/utils/logger"
)

var errClientClosed = errors.New("client closed")

type inboundMessage struct {
	Action string `json:"action"`
	UserID string `json:"userId,omitempty"`
	Code   string `json:"code,omitempty"`
	Choice string `json:"choice,omitempty"`
}

// Client wraps one WebSocket connection. It stays anonymous until its
// identify event resolves against the user directory.
type Client struct {
	hub   *Hub
	mm    *game.Matchmaker
	users game.UserDirectory
	conn  *websocket.Conn
	send  chan []byte

	once   sync.Once
	closed atomic.Bool

	mu     sync.Mutex
	userID string
	handle string
}

func newClient(hub *Hub, mm *game.Matchmaker, users game.UserDirectory, conn *websocket.Conn) *Client {
	return &Client{
		hub:   hub,
		mm:    mm,
		users: users,
		conn:  conn,
		send:  make(chan []byte, 32),
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.send)
		c.conn.Close()
	})
}

func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Send implements game.Conn. A full buffer drops the message rather than
// blocking the engine; a closed client reports the failure so callers can
// stop bothering.
func (c *Client) Send(ev game.Event) (err error) {
	if c.closed.Load() {
		return errClientClosed
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = errClientClosed
		}
	}()
	select {
	case c.send <- b:
		return nil
	default:
		logger.Warnf("[Client %s] dropping %s: send buffer full", c.UserID(), ev.Type)
		return nil
	}
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.Close()
		if userID, ok := c.hub.Unregister(c); ok {
			c.mm.Disconnect(userID)
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("[Client %s] disconnected normally", c.UserID())
			} else {
				logger.Debugf("[Client %s] read error: %v", c.UserID(), err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[Client %s] write error: %v", c.UserID(), err)
			return
		}
	}
}

func (c *Client) handleMessage(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Client %s] recovered from panic: %v", c.UserID(), r)
		}
	}()

	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Debugf("[Client %s] invalid message: %v", c.UserID(), err)
		return
	}

	if msg.Action == "identify" {
		c.identify(msg.UserID)
		return
	}

	player := c.player()
	if player == nil {
		c.reportError(game.ErrInvalidAction)
		return
	}

	switch msg.Action {
	case "join_random":
		c.reportError(c.mm.JoinRandom(player))
	case "create_custom":
		_, err := c.mm.CreateCustom(player)
		c.reportError(err)
	case "join_custom":
		c.reportError(c.mm.JoinCustom(player, msg.Code))
	case "submit_choice":
		c.reportError(c.mm.SubmitChoice(context.Background(), player.ID, game.Choice(msg.Choice)))
	case "leave":
		c.mm.Leave(player.ID)
	default:
		logger.Debugf("[Client %s] unknown action: %q", c.UserID(), msg.Action)
	}
}

func (c *Client) identify(userID string) {
	if userID == "" {
		c.reportError(game.ErrInvalidAction)
		return
	}

	info, err := c.users.FindUser(context.Background(), userID)
	if err != nil {
		if !errors.Is(err, game.ErrNotFound) {
			logger.Errorf("[Client] identify lookup failed for %s: %v", userID, err)
		}
		c.reportError(game.ErrNotFound)
		return
	}

	// Re-identifying as someone else ends the previous identity's session
	// the same way a disconnect would.
	prev := c.UserID()
	if prev != "" && prev != info.ID {
		if dropped, ok := c.hub.Unregister(c); ok {
			c.mm.Disconnect(dropped)
		}
	}

	c.mu.Lock()
	c.userID = info.ID
	c.handle = info.Handle
	c.mu.Unlock()

	// A re-identify from a new connection is a fresh flow: the displaced
	// session's match is torn down as if that connection had dropped. Its
	// readPump exit later finds the registry already pointing elsewhere and
	// does nothing.
	if displaced := c.hub.Register(info.ID, c); displaced != nil && displaced != c {
		c.mm.Disconnect(info.ID)
	}
	logger.Infof("[Client %s] identified (%s)", info.ID, info.Handle)
}

// player builds the transient participant for the identified user, with this
// client as its outbound connection.
func (c *Client) player() *game.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		return nil
	}
	return game.NewPlayer(c.userID, c.handle, c)
}

func (c *Client) reportError(err error) {
	if err == nil {
		return
	}
	message := "internal error"
	switch {
	case errors.Is(err, game.ErrNotFound):
		message = "not found"
	case errors.Is(err, game.ErrInvalidAction):
		message = "invalid action"
	case errors.Is(err, game.ErrAlreadyInMatch):
		message = "already in a match"
	}
	_ = c.Send(game.Event{Type: game.EventError, Data: game.ErrorData{Message: message}})
}
