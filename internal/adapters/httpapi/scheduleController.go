package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	postEntity "postpilot/internal/core/post"
	scheduleEntity "postpilot/internal/core/schedule"
	schedulePort "postpilot/internal/ports/schedule"
)

type ScheduleController struct{ sc ScheduleUseCase }

func NewScheduleController(sc ScheduleUseCase) *ScheduleController {
	return &ScheduleController{sc: sc}
}

func (ctl *ScheduleController) ScheduleBatch(c *gin.Context) {
	var req struct {
		PostIDs   []string               `json:"post_ids" binding:"required"`
		Rule      schedulePort.RuleInput `json:"rule" binding:"required"`
		Platforms []string               `json:"platforms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found in context"})
		return
	}

	res, err := ctl.sc.ScheduleBatch(c.Request.Context(), userID.(string), req.PostIDs, req.Rule, req.Platforms)
	if err != nil {
		switch {
		case errors.Is(err, scheduleEntity.ErrValidation),
			errors.Is(err, scheduleEntity.ErrInvalidRule),
			errors.Is(err, scheduleEntity.ErrInsufficientWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, postEntity.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not schedule posts"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}
