package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	scheduleEntity "postpilot/internal/core/schedule"
	queuePort "postpilot/internal/ports/queue"
)

type PublishController struct {
	pc         PublishUseCase
	queueToken string
}

func NewPublishController(pc PublishUseCase, queueToken string) *PublishController {
	return &PublishController{pc: pc, queueToken: queueToken}
}

// HandleCallback receives deferred-queue deliveries. Business failures are
// absorbed by the service (recorded on the schedule record), so anything but
// 2xx here tells the queue to retry.
func (ctl *PublishController) HandleCallback(c *gin.Context) {
	token := c.GetHeader("X-Queue-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(ctl.queueToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid queue token"})
		return
	}

	var job queuePort.Job
	if err := c.ShouldBindJSON(&job); err != nil || job.ScheduleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := ctl.pc.HandleDelivery(c.Request.Context(), job); err != nil {
		if errors.Is(err, scheduleEntity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown schedule record"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delivery processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
