package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dailyskills/marketplace/internal/api/metrics"
	"github.com/dailyskills/marketplace/internal/core/domain"
	"github.com/dailyskills/marketplace/internal/core/ports"
)

// MessageHandler handles HTTP requests for conversations and chat messages.
type MessageHandler struct {
	service ports.MessagingService
}

func NewMessageHandler(service ports.MessagingService) *MessageHandler {
	return &MessageHandler{service: service}
}

// ListConversations handles GET /v1/conversations.
//
// @Summary      List my conversations
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  conversationsResponse
// @Router       /v1/conversations [get]
func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	convs, err := h.service.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversationsResponse{Conversations: convs})
}

// StartConversation handles POST /v1/conversations.
//
// @Summary      Start a conversation
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startConversationRequest  true  "Other participant"
// @Success      201   {object}  domain.Conversation
// @Failure      400   {object}  errorResponse
// @Router       /v1/conversations [post]
func (h *MessageHandler) StartConversation(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req startConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	conv, err := h.service.StartConversation(c.Request().Context(), userID, req.ParticipantID, req.JobID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, conv)
}

// ListMessages handles GET /v1/conversations/:id/messages.
//
// @Summary      List messages in a conversation
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  messagesResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/conversations/{id}/messages [get]
func (h *MessageHandler) ListMessages(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	msgs, err := h.service.ListMessages(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messagesResponse{Messages: msgs})
}

// Send handles POST /v1/conversations/:id/messages.
//
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Conversation ID"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/conversations/{id}/messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.service.SendMessage(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return err
	}
	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusCreated, msg)
}

// Stream handles GET /v1/conversations/:id/stream. The full message list is
// sent as a server-sent event once on connect and again after every change.
//
// @Summary      Stream a conversation
// @Tags         messages
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Conversation ID"
// @Success      200
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/conversations/{id}/stream [get]
func (h *MessageHandler) Stream(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	res := c.Response()
	started := false
	var writeErr error
	err = h.service.Watch(c.Request().Context(), userID, c.Param("id"), func(msgs []*domain.Message) {
		if writeErr != nil {
			return
		}
		if !started {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set(echo.HeaderCacheControl, "no-cache")
			res.Header().Set(echo.HeaderConnection, "keep-alive")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		writeErr = writeEvent(res, "messages", messagesResponse{Messages: msgs})
	})
	if err != nil && !started {
		return err
	}
	return nil
}

func writeEvent(res *echo.Response, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
