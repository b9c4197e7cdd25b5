package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 256
)

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	manager *Manager
	// guarded by manager.mu
	rooms map[string]bool
}

func newClient(m *Manager, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		manager: m,
		rooms:   make(map[string]bool),
	}
}

// inbound is a client frame. A room is named directly or derived from a
// post scope.
type inbound struct {
	Type       string `json:"type"`
	Room       string `json:"room"`
	LevelType  string `json:"levelType"`
	LevelValue string `json:"levelValue"`
}

func (in inbound) room() string {
	if in.Room != "" {
		return in.Room
	}
	if in.LevelType != "" {
		return RoomName(in.LevelType, in.LevelValue)
	}
	return ""
}

func (c *Client) readPump() {
	defer func() {
		c.manager.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.WithError(err).WithField("client_id", c.id).Warn("[ws] read error")
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.reply(Envelope{Event: EventError, Data: quote("invalid frame")})
			continue
		}
		c.handle(in)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(in inbound) {
	switch in.Type {
	case "join":
		room := in.room()
		if room == "" {
			c.reply(Envelope{Event: EventError, Data: quote("room required")})
			return
		}
		c.manager.Join(c, room)
		c.reply(Envelope{Event: EventJoined, Room: room})

	case "leave":
		room := in.room()
		if room == "" {
			c.reply(Envelope{Event: EventError, Data: quote("room required")})
			return
		}
		c.manager.Leave(c, room)
		c.reply(Envelope{Event: EventLeft, Room: room})

	case "ping":
		c.reply(Envelope{Event: EventPong})

	default:
		c.reply(Envelope{Event: EventError, Data: quote("unknown type")})
	}
}

// reply queues a frame for this client only. Dropped if the buffer is full.
func (c *Client) reply(env Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.manager.mu.RLock()
	defer c.manager.mu.RUnlock()
	if !c.manager.clients[c] {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
