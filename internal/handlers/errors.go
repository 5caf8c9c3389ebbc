package handlers

import (
	"errors"
	"log"
	"net/http"

	"andromeda/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError переводит ошибки сервисного слоя в HTTP-ответы.
// Ошибки валидации уходят картой поле -> сообщения, остальные - статусом.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Printf("Validation failed for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
	case errors.Is(err, service.ErrNotFound):
		log.Printf("Not found: %s %s", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNotAuthorized):
		log.Printf("Not authorized: %s %s", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
	case errors.Is(err, service.ErrAlreadyClosed):
		log.Printf("State conflict: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
