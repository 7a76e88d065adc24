// Package notifications tracks which users hold a live websocket connection
// and pushes frames to them.
package notifications

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"buzzsway/internal/middleware"
	"buzzsway/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Registry maps each online user to their single active websocket client.
// When a user connects twice, the newest connection becomes the addressable
// one; the older connection is not closed and keeps receiving broadcasts
// until its own disconnect.
type Registry struct {
	mu      sync.RWMutex
	byUser  map[uint]*Client
	clients map[*Client]struct{}
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser:  make(map[uint]*Client),
		clients: make(map[*Client]struct{}),
	}
}

// Register makes client the addressable connection for its user and
// announces the updated online list to every live client.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	_, wasOnline := r.byUser[client.UserID]
	r.byUser[client.UserID] = client
	r.clients[client] = struct{}{}
	r.mu.Unlock()

	if !wasOnline {
		observability.PresenceOnline.Inc()
	}
	r.BroadcastOnlineUsers()
}

// Unregister removes the client from the broadcast set. The user mapping is
// dropped only when this client is still the registered handle, so a stale
// connection disconnecting cannot knock its replacement offline. Safe to
// call more than once.
func (r *Registry) Unregister(client *Client) {
	r.mu.Lock()
	_, known := r.clients[client]
	delete(r.clients, client)

	wentOffline := false
	if current, ok := r.byUser[client.UserID]; ok && current == client {
		delete(r.byUser, client.UserID)
		wentOffline = true
	}
	r.mu.Unlock()

	if !known {
		return
	}
	if wentOffline {
		observability.PresenceOnline.Dec()
	}
	r.BroadcastOnlineUsers()
}

// Lookup returns the addressable client for a user, if one is registered.
func (r *Registry) Lookup(userID uint) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// OnlineUsernames returns the usernames of all currently online users, sorted.
func (r *Registry) OnlineUsernames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byUser))
	for _, c := range r.byUser {
		names = append(names, c.Username)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// BroadcastOnlineUsers pushes the current online-username list to every
// connected client, replaced connections included.
func (r *Registry) BroadcastOnlineUsers() {
	frame, err := json.Marshal(map[string]any{
		"type":  "online-users",
		"users": r.OnlineUsernames(),
	})
	if err != nil {
		middleware.Logger.Error("failed to encode online-users frame", "error", err)
		return
	}

	r.mu.RLock()
	targets := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.TrySend(frame)
	}
}

// Shutdown closes every live connection with a going-away frame and clears
// all presence state.
func (r *Registry) Shutdown(_ context.Context) error {
	r.mu.Lock()
	clients := r.clients
	online := len(r.byUser)
	r.clients = make(map[*Client]struct{})
	r.byUser = make(map[uint]*Client)
	r.mu.Unlock()

	for client := range clients {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			middleware.Logger.Warn("failed to write close frame", "user_id", client.UserID, "error", err)
		}
		if err := client.Conn.Close(); err != nil {
			middleware.Logger.Warn("failed to close websocket", "user_id", client.UserID, "error", err)
		}
	}

	observability.PresenceOnline.Sub(float64(online))
	return nil
}
