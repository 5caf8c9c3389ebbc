package handlers

import (
	"net/http"

	"andromeda/internal/middleware"
	"andromeda/internal/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

type commentBody struct {
	Comment string `json:"comment"`
}

// List godoc
// @Summary Комментарии запроса данных в порядке времени
// @Tags Comments
// @Produce json
// @Router /datarequests/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	desc := c.DefaultQuery("sort", "asc") == "desc"

	comments, err := h.service.List(c.Request.Context(), id, desc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *CommentHandler) Create(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.service.Create(c.Request.Context(), middleware.CurrentIdentity(c), id, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := parseID(c, c.Param("comment_id"))
	if !ok {
		return
	}

	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.service.Update(c.Request.Context(), middleware.CurrentIdentity(c), commentID, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseID(c, c.Param("comment_id"))
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentIdentity(c), commentID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment has been deleted"})
}
