package server

import (
	"buzzsway/internal/models"
	"buzzsway/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages. HTTP sends persist the message and
// push it to the receiver if online; there is no originating socket to echo to.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Receiver string `json:"receiver"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	receiver, err := s.userService.GetUserByUsername(c.Context(), req.Receiver)
	if err != nil {
		return respondServiceError(c, err)
	}

	message, err := s.messageService.Send(c.Context(), service.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: receiver.ID,
		Content:    req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation handles GET /api/messages/:user1/:user2. Either participant
// may be named first; the history is identical both ways. Only a participant
// may read it. The default page is the most recent 50 messages; offset walks
// back toward the start of the conversation.
func (s *Server) GetConversation(c *fiber.Ctx) error {
	user1, err := s.parseID(c, "user1")
	if err != nil {
		return nil
	}
	user2, err := s.parseID(c, "user2")
	if err != nil {
		return nil
	}

	caller := currentUserID(c)
	if caller != user1 && caller != user2 {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not a participant in this conversation"))
	}

	p := parsePagination(c, 50)
	messages, err := s.messageService.History(c.Context(), user1, user2, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}
