package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicbridge/complaint-service/internal/api/dto"
	"github.com/civicbridge/complaint-service/internal/domain"
	"github.com/civicbridge/complaint-service/internal/service"
	apperrors "github.com/civicbridge/complaint-service/pkg/util/errorutil"
)

// MessagesHandler serves complaint conversations.
type MessagesHandler struct {
	service *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{service: messageService}
}

// Post POST /messages.
func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.Post(c.UserContext(), req.ComplaintID, req.Name, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse(msg))
}

// List GET /messages/:complaintId.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	msgs, err := h.service.ListForComplaint(c.UserContext(), c.Params("complaintId"))
	if err != nil {
		return err
	}
	items := make([]dto.ConversationMessage, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(items)
}

func messageResponse(msg *domain.Message) dto.ConversationMessage {
	return dto.ConversationMessage{
		ID:          msg.ID,
		ComplaintID: msg.ComplaintID,
		Name:        msg.Name,
		Message:     msg.Body,
		CreatedAt:   msg.CreatedAt,
	}
}
