package handlers

import (
	"net/http"

	"andromeda/internal/middleware"
	"andromeda/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowerHandler struct {
	service service.FollowerService
}

func NewFollowerHandler(service service.FollowerService) *FollowerHandler {
	return &FollowerHandler{service: service}
}

func (h *FollowerHandler) Follow(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	follower, err := h.service.Follow(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, follower)
}

func (h *FollowerHandler) Unfollow(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}
