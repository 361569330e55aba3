// Package live fans committed incident changes out to connected dashboard
// sessions over WebSocket.
package live

import (
	"context"
	"sync"

	"sentra/backend/internal/models"

	"go.uber.org/zap"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client

	registerCh   chan Client
	unregisterCh chan Client
	eventsCh     chan models.IncidentEvent
	done         chan struct{}

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]Client),
		registerCh:   make(chan Client),
		unregisterCh: make(chan Client),
		eventsCh:     make(chan models.IncidentEvent, 64),
		done:         make(chan struct{}),
		log:          log,
	}
}

// Broadcast queues ev for delivery. It blocks while the queue is full and
// reports false when ctx is done or the hub has stopped.
func (h *Hub) Broadcast(ctx context.Context, ev models.IncidentEvent) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	if ctx.Err() != nil {
		return false
	}
	select {
	case h.eventsCh <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-h.done:
		return false
	}
}

// Register adds c to the hub. Returns false when the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c Client) {
	select {
	case h.unregisterCh <- c:
	case <-h.done:
	}
}

// Count is the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run is the hub's event loop. On ctx cancellation every client is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				delete(h.clients, id)
				c.Close()
			}
			h.mu.Unlock()
			return

		case c := <-h.registerCh:
			h.mu.Lock()
			h.clients[c.GetID()] = c
			h.mu.Unlock()
			h.log.Debug("live client registered",
				zap.String("client_id", c.GetID()),
				zap.String("user_id", c.GetIdentity().UserID),
				zap.Int("clients", h.Count()))

		case c := <-h.unregisterCh:
			h.remove(c.GetID())
			h.log.Debug("live client unregistered",
				zap.String("client_id", c.GetID()),
				zap.Int("clients", h.Count()))

		case ev := <-h.eventsCh:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev models.IncidentEvent) {
	snapshot := ev.Snapshot()

	h.mu.RLock()
	var slow []string
	for id, c := range h.clients {
		if !c.GetScope().Matches(snapshot) {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		h.log.Warn("dropping slow live client", zap.String("client_id", id))
		h.remove(id)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}
