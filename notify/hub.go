package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// ErrEmptyWorker is returned when a join carries no usable name.
var ErrEmptyWorker = errors.New("worker name is required")

// Subscriber is one connected client. Deliver must not block; it
// reports false when the message was dropped.
type Subscriber interface {
	ID() string
	Deliver(msg []byte) bool
}

// Hub tracks connected subscribers and their room membership. Membership
// lives only as long as the connection.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	rooms       map[string]map[string]Subscriber
	memberOf    map[string][]string
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]Subscriber),
		rooms:       make(map[string]map[string]Subscriber),
		memberOf:    make(map[string][]string),
	}
}

// Register adds s to the broadcast audience.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s.ID()] = s
}

// Unregister removes s from the hub and every room it joined. After it
// returns no Deliver call on s is in flight.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := s.ID()
	delete(h.subscribers, id)
	for _, key := range h.memberOf[id] {
		members := h.rooms[key]
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, key)
		}
	}
	delete(h.memberOf, id)
}

// Join puts s in the room for worker and returns the room key.
func (h *Hub) Join(s Subscriber, worker string) (string, error) {
	if strings.TrimSpace(worker) == "" {
		return "", ErrEmptyWorker
	}
	key := ChannelKey(worker)

	h.mu.Lock()
	defer h.mu.Unlock()

	id := s.ID()
	if _, ok := h.subscribers[id]; !ok {
		h.subscribers[id] = s
	}
	members, ok := h.rooms[key]
	if !ok {
		members = make(map[string]Subscriber)
		h.rooms[key] = members
	}
	if _, already := members[id]; !already {
		members[id] = s
		h.memberOf[id] = append(h.memberOf[id], key)
	}
	return key, nil
}

func (h *Hub) Broadcast(event string, payload any) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subscribers {
		h.deliver(s, event, msg)
	}
}

func (h *Hub) Direct(worker, event string, payload any) {
	key := ChannelKey(worker)
	msg, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[key]
	if len(members) == 0 {
		slog.Debug("no subscriber in room", "room", key, "event", event)
		return
	}
	for _, s := range members {
		h.deliver(s, event, msg)
	}
}

func (h *Hub) deliver(s Subscriber, event string, msg []byte) {
	if !s.Deliver(msg) {
		slog.Warn("dropped event for slow subscriber", "subscriber", s.ID(), "event", event)
	}
}

// Connected returns the number of registered subscribers.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// RoomSize returns how many subscribers joined the room key.
func (h *Hub) RoomSize(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[key])
}

func encode(event string, payload any) ([]byte, bool) {
	msg, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return nil, false
	}
	return msg, true
}
