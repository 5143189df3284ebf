package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	postEntity "postpilot/internal/core/post"
)

type PostController struct{ pc PostUseCase }

func NewPostController(pc PostUseCase) *PostController { return &PostController{pc: pc} }

func (ctl *PostController) CreatePost(c *gin.Context) {
	var req struct {
		Content   string   `json:"content" binding:"required"`
		Platforms []string `json:"platforms"`
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
	res, err := ctl.pc.CreatePost(c.Request.Context(), userID.(string), req.Content, req.Platforms)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *PostController) GetPost(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found in context"})
		return
	}
	res, err := ctl.pc.GetPost(c.Request.Context(), userID.(string), c.Param("id"))
	if err != nil {
		if errors.Is(err, postEntity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch post"})
		return
	}
	c.JSON(http.StatusOK, res)
}
