package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"neuraconnect-be/internal/pkg/logger"
	"neuraconnect-be/internal/realtime"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InboundHandler receives frames the browser sends over the call socket
// (microphone audio, typed messages). The session service implements it.
type InboundHandler interface {
	HandleClientFrame(userId uuid.UUID, data []byte)
}

// Hub tracks every open call socket per user (multi-device) and fans events
// out to them. With Redis configured, events also cross instances over the
// cluster_events channel.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	inboundMu sync.RWMutex
	inbound   InboundHandler

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// SetInboundHandler wires browser frames into the call layer. Called once
// during container assembly, before any socket connects.
func (h *Hub) SetInboundHandler(handler InboundHandler) {
	h.inboundMu.Lock()
	h.inbound = handler
	h.inboundMu.Unlock()
}

func (h *Hub) handleInbound(userId uuid.UUID, data []byte) {
	h.inboundMu.RLock()
	handler := h.inbound
	h.inboundMu.RUnlock()
	if handler != nil {
		handler.HandleClientFrame(userId, data)
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("hub", "client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("hub", "last client unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers an event to every socket a user has open, locally and (via
// Redis) on other instances. Satisfies the realtime Sink contract.
func (h *Hub) Send(userID uuid.UUID, event realtime.OutboundEvent) {
	data, _ := json.Marshal(event)

	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Run's unregister branch is the only place Send channels close.
			h.logger.Warn("hub", "client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Broadcast sends an event to every connected client on every instance.
func (h *Hub) Broadcast(event realtime.OutboundEvent) {
	data, _ := json.Marshal(event)

	h.mu.RLock()
	var all []*Client
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	h.mu.RUnlock()

	for _, client := range all {
		select {
		case client.Send <- data:
		default:
			h.unregister <- client
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": "*",
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// subscribeToRedis relays events published by other instances to any sockets
// this instance holds for the target user.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("hub", "dropping malformed cluster event", map[string]interface{}{"error": err.Error()})
			continue
		}

		if payload.TargetUserID == "*" {
			h.mu.RLock()
			var all []*Client
			for _, clients := range h.clients {
				all = append(all, clients...)
			}
			h.mu.RUnlock()

			for _, client := range all {
				select {
				case client.Send <- payload.Message:
				default:
					h.unregister <- client
				}
			}
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients := append([]*Client(nil), h.clients[uid]...)
		h.mu.RUnlock()

		for _, client := range clients {
			select {
			case client.Send <- payload.Message:
			default:
				h.unregister <- client
			}
		}
	}
}
