package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnioa/StudyMate-sub010/internal/models"
	"github.com/vnioa/StudyMate-sub010/internal/service"
	"github.com/vnioa/StudyMate-sub010/internal/telemetry"
)

// RoomHandler manages room endpoints.
type RoomHandler struct {
	rooms *service.RoomService
	audit *telemetry.AuditEmitter
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *service.RoomService, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{rooms: rooms, audit: audit}
}

// CreateRoom handles POST /rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Name         string `json:"name"`
		Kind         string `json:"type" binding:"required"`
		Participants []int  `json:"participants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), req.Name, req.Kind, userID, req.Participants)
	if err != nil {
		h.emitAudit(c, "ERROR", "room create failed")
		respondError(c, err, "could not create room")
		return
	}

	h.emitAudit(c, "INFO", "room created")
	c.JSON(http.StatusCreated, gin.H{"success": true, "roomId": room.ID})
}

// ListRooms handles GET /rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := c.GetInt("userID")
	search := c.Query("search")

	rooms, err := h.rooms.List(c.Request.Context(), userID, search)
	if err != nil {
		respondError(c, err, "failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
}

// UpdateSettings handles PUT /rooms/:room_id/settings. Admin only.
func (h *RoomHandler) UpdateSettings(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var patch models.RoomSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.rooms.UpdateSettings(c.Request.Context(), roomID, userID, patch); err != nil {
		h.emitAudit(c, "ERROR", "settings update rejected")
		respondError(c, err, "could not update settings")
		return
	}

	h.emitAudit(c, "INFO", "room settings updated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ArchiveRoom handles POST /rooms/:room_id/archive. Admin only.
func (h *RoomHandler) ArchiveRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.rooms.Archive(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err, "could not archive room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LeaveRoom handles DELETE /rooms/:room_id/leave.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.rooms.Leave(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err, "could not leave room")
		return
	}

	h.emitAudit(c, "INFO", "room left")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListParticipants handles GET /rooms/:room_id/participants.
func (h *RoomHandler) ListParticipants(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	participants, err := h.rooms.Participants(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err, "failed to load participants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "participants": participants})
}

func (h *RoomHandler) emitAudit(c *gin.Context, level, text string) {
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseRoomID(c *gin.Context) (int, bool) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid room id"})
		return 0, false
	}
	return roomID, true
}
