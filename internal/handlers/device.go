package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnioa/StudyMate-sub010/internal/repositories"
)

// DeviceHandler manages push token registration.
type DeviceHandler struct {
	devices repositories.DeviceTokenRepository
}

// NewDeviceHandler constructs a DeviceHandler.
func NewDeviceHandler(devices repositories.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// RegisterToken handles POST /devices.
func (h *DeviceHandler) RegisterToken(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Token  string `json:"token" binding:"required"`
		Device string `json:"device"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.devices.Upsert(c.Request.Context(), userID, req.Token, req.Device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not register token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// RemoveToken handles DELETE /devices/:token.
func (h *DeviceHandler) RemoveToken(c *gin.Context) {
	userID := c.GetInt("userID")
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing token"})
		return
	}

	if err := h.devices.Remove(c.Request.Context(), userID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not remove token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
