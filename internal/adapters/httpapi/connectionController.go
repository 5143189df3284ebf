package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	connectionEntity "postpilot/internal/core/connection"
)

type ConnectionController struct {
	cc ConnectionUseCase
	// appOrigin is the fallback redirect target when a callback's state is
	// unreadable and the real caller origin is unrecoverable.
	appOrigin string
}

func NewConnectionController(cc ConnectionUseCase, appOrigin string) *ConnectionController {
	return &ConnectionController{cc: cc, appOrigin: appOrigin}
}

func (ctl *ConnectionController) Init(c *gin.Context) {
	var req struct {
		Platform string `json:"platform" binding:"required"`
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
	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = ctl.appOrigin
	}

	authURL, err := ctl.cc.Init(c.Request.Context(), userID.(string), req.Platform, origin)
	if err != nil {
		if errors.Is(err, connectionEntity.ErrUnsupportedPlatform) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start connection"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": authURL})
}

// Callback is a browser redirect, not a JSON API: whatever happens, the user
// ends up back on the app with a connected or error query parameter.
func (ctl *ConnectionController) Callback(c *gin.Context) {
	platform := c.Param("platform")
	code := c.Query("code")
	state := c.Query("state")

	if provErr := c.Query("error"); provErr != "" {
		// Provider denied the request (user hit cancel, bad scopes).
		origin, _ := ctl.cc.Callback(c.Request.Context(), platform, "", state)
		ctl.redirect(c, origin, "error", provErr)
		return
	}

	origin, err := ctl.cc.Callback(c.Request.Context(), platform, code, state)
	if err != nil {
		ctl.redirect(c, origin, "error", "connection_failed")
		return
	}
	ctl.redirect(c, origin, "connected", platform)
}

func (ctl *ConnectionController) redirect(c *gin.Context, origin, key, value string) {
	if origin == "" {
		origin = ctl.appOrigin
	}
	c.Redirect(http.StatusFound, origin+"?"+key+"="+url.QueryEscape(value))
}

func (ctl *ConnectionController) List(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found in context"})
		return
	}
	conns, err := ctl.cc.ListConnections(c.Request.Context(), userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list connections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}
