package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Server-originated event names besides the post lifecycle events.
const (
	EventJoined = "joined"
	EventLeft   = "left"
	EventPong   = "pong"
	EventError  = "error"
)

// Envelope is the frame written to subscribers and carried over the relay.
type Envelope struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomName derives the room a post with this scope publishes to.
func RoomName(levelType, levelValue string) string {
	if levelValue == "" {
		levelValue = "all"
	}
	return "level-" + levelType + "-" + levelValue
}

// Relay forwards envelopes between processes. Every process hands what it
// receives to Manager.Deliver.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	Run(ctx context.Context, deliver func(Envelope)) error
}

// outboxSize bounds the envelopes waiting for the relay.
const outboxSize = 256

type Manager struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	closed  bool
	mu      sync.RWMutex
	relay   Relay
	outbox  chan Envelope
	log     *logrus.Logger
}

// NewManager builds a hub. relay may be nil for single-process deployments.
func NewManager(log *logrus.Logger, relay Relay) *Manager {
	m := &Manager{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		relay:   relay,
		log:     log,
	}
	if relay != nil {
		m.outbox = make(chan Envelope, outboxSize)
	}
	return m
}

// Start runs the relay subscriber, the relay publisher and periodic stats
// logging until ctx is cancelled, then closes every client.
func (m *Manager) Start(ctx context.Context) {
	if m.relay != nil {
		go func() {
			if err := m.relay.Run(ctx, m.Deliver); err != nil {
				m.log.WithError(err).Error("[ws] relay stopped")
			}
		}()
		go m.drainOutbox(ctx)
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := m.Stats()
			m.log.WithFields(logrus.Fields{"clients": stats.Clients, "rooms": len(stats.Rooms)}).Debug("[ws] hub stats")

		case <-ctx.Done():
			m.mu.Lock()
			m.closed = true
			for client := range m.clients {
				m.drop(client)
			}
			m.mu.Unlock()
			return
		}
	}
}

// drop removes a client from every room and closes its send channel.
// Caller holds m.mu.
func (m *Manager) drop(client *Client) {
	if _, ok := m.clients[client]; !ok {
		return
	}
	delete(m.clients, client)
	for room := range client.rooms {
		if members, ok := m.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(m.rooms, room)
			}
		}
	}
	client.rooms = map[string]bool{}
	close(client.send)
}

func (m *Manager) add(client *Client) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.clients[client] = true
	total := len(m.clients)
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"client_id": client.id, "clients": total}).Info("[ws] client registered")
	return true
}

func (m *Manager) remove(client *Client) {
	m.mu.Lock()
	m.drop(client)
	total := len(m.clients)
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"client_id": client.id, "clients": total}).Info("[ws] client unregistered")
}

// Join subscribes a registered client to room.
func (m *Manager) Join(client *Client, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.clients[client] {
		return
	}
	if m.rooms[room] == nil {
		m.rooms[room] = make(map[*Client]bool)
	}
	m.rooms[room][client] = true
	client.rooms[room] = true
}

func (m *Manager) Leave(client *Client, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// Publish sends event to the single room derived from the post scope. It
// never blocks on subscribers or the relay and never reports delivery
// failures. A full relay outbox falls back to local delivery.
func (m *Manager) Publish(levelType, levelValue, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.log.WithError(err).WithField("event", event).Error("[ws] marshal payload")
		return
	}
	env := Envelope{Event: event, Room: RoomName(levelType, levelValue), Data: data}

	if m.outbox != nil {
		select {
		case m.outbox <- env:
			return
		default:
			m.log.WithField("room", env.Room).Warn("[ws] relay outbox full, delivering locally")
		}
	}
	m.Deliver(env)
}

// drainOutbox hands queued envelopes to the relay, one at a time.
func (m *Manager) drainOutbox(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-m.outbox:
			pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := m.relay.Publish(pubCtx, env)
			cancel()
			if err != nil {
				m.log.WithError(err).WithField("room", env.Room).Warn("[ws] relay publish failed, delivering locally")
				m.Deliver(env)
			}
		}
	}
}

// Deliver writes env to local subscribers of env.Room. Clients with a full
// buffer miss the frame.
func (m *Manager) Deliver(env Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		m.log.WithError(err).Error("[ws] marshal envelope")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.rooms[env.Room] {
		select {
		case client.send <- frame:
		default:
			m.log.WithField("client_id", client.id).Warn("[ws] send buffer full, skipping")
		}
	}
}

type Stats struct {
	Clients int            `json:"clients"`
	Rooms   map[string]int `json:"rooms"`
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make(map[string]int, len(m.rooms))
	for room, members := range m.rooms {
		rooms[room] = len(members)
	}
	return Stats{Clients: len(m.clients), Rooms: rooms}
}
