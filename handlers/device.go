package handlers

import (
	"net/http"

	"wellbook/middleware"
	"wellbook/services/notification"
	"wellbook/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	Service notification.NotificationService
}

func NewDeviceHandler(svc notification.NotificationService) *DeviceHandler {
	return &DeviceHandler{Service: svc}
}

// UpdateFCMTokenHandler registers the caller's push token, replacing any
// previous one.
func (h *DeviceHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var body struct {
		FCMToken string `json:"fcm_token" binding:"required"`
		Platform string `json:"platform" binding:"omitempty,oneof=ios android"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	if err := h.Service.RegisterDevice(c.Request.Context(), actor.ID, actor.Role, body.FCMToken, body.Platform); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update FCM token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
