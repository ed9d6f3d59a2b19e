package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnioa/StudyMate-sub010/internal/service"
	"github.com/vnioa/StudyMate-sub010/internal/telemetry"
	"github.com/vnioa/StudyMate-sub010/internal/ws"
)

// MessageHandler manages message endpoints.
type MessageHandler struct {
	messages *service.MessageService
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *service.MessageService, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, hub: hub, audit: audit}
}

// PostMessage handles POST /rooms/:room_id/messages.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content"`
		Type    string `json:"type" binding:"required"`
		ReplyTo *int   `json:"reply_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), roomID, userID, req.Content, req.Type, req.ReplyTo)
	if err != nil {
		h.emitAudit(c, "ERROR", "message send rejected")
		respondError(c, err, "could not store message")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastMessage(roomID, msg)
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "messageId": msg.ID})
}

// GetMessages handles GET /rooms/:room_id/messages.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	msgs, err := h.messages.List(c.Request.Context(), roomID, userID, page, limit)
	if err != nil {
		respondError(c, err, "failed to load messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

// MarkRead handles PUT /rooms/:room_id/messages/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.messages.MarkRead(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err, "could not mark messages read")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastRead(roomID, userID)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteMessage handles DELETE /messages/:message_id. Author only.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	msg, err := h.messages.Delete(c.Request.Context(), messageID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "message delete rejected")
		respondError(c, err, "could not delete message")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastDeletion(msg.RoomID, messageID)
	}
	h.emitAudit(c, "INFO", "message deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateStatus handles PUT /messages/:message_id/status.
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.messages.UpdateStatus(c.Request.Context(), messageID, userID, req.Status); err != nil {
		respondError(c, err, "could not update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseMessageID(c *gin.Context) (int, bool) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid message id"})
		return 0, false
	}
	return messageID, true
}
