package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"buzzsway/internal/middleware"
	"buzzsway/internal/notifications"
	"buzzsway/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketChatHandler handles the live chat socket. The protocol is frame
// based: the client announces itself with add-user, sends direct messages
// with send-private-msg, and receives online-users and receive-private-msg
// frames. Delivery failures have no error channel; the persisted history is
// the source of truth.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()

		// Set by WebSocketAuthRequired during the upgrade request
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			log.Printf("WebSocket: Failed to get user %d: %v", userID, err)
			_ = conn.Close()
			return
		}
		username := user.Username

		log.Printf("WebSocket: User %d (%s) connected", userID, username)

		// Registration waits for the add-user frame; until then the
		// connection receives nothing.
		client := notifications.NewClient(s.registry, conn, userID, username)

		client.IncomingHandler = func(c *notifications.Client, message []byte) {
			var frame struct {
				Type     string `json:"type"`
				Receiver string `json:"receiver"`
				Content  string `json:"content"`
			}
			if err := json.Unmarshal(message, &frame); err != nil {
				log.Printf("WebSocket: Invalid frame from user %d", userID)
				return
			}

			switch frame.Type {
			case "add-user":
				// Re-announcing is harmless; the registry replaces the
				// entry and rebroadcasts the online list.
				s.registry.Register(c)

			case "send-private-msg":
				receiver, err := s.userService.GetUserByUsername(ctx, frame.Receiver)
				if err != nil {
					log.Printf("WebSocket: Unknown receiver %q from user %d", frame.Receiver, userID)
					return
				}

				id := fmt.Sprintf("user:%d", userID)
				allowed, rlErr := middleware.CheckRateLimit(ctx, s.redis, "send_message", id, 30, time.Minute)
				if rlErr != nil {
					allowed = true // fail open, same as the HTTP limiter
				}
				if !allowed {
					return // Silently drop; sender will see the gap in history
				}

				if _, err := s.messageService.Send(ctx, service.SendMessageInput{
					SenderID:   userID,
					ReceiverID: receiver.ID,
					Content:    frame.Content,
					Origin:     c,
				}); err != nil {
					log.Printf("WebSocket: Failed to send message from user %d: %v", userID, err)
				}
			}
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}
