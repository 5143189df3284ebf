package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	notificationPort "postpilot/internal/ports/notification"
)

type NotificationController struct {
	feed notificationPort.NotificationFeed
}

func NewNotificationController(feed notificationPort.NotificationFeed) *NotificationController {
	return &NotificationController{feed: feed}
}

func (ctl *NotificationController) Recent(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found in context"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := ctl.feed.Recent(c.Request.Context(), userID.(string), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": entries})
}
