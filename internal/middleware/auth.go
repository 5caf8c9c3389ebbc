package middleware

import (
	"net/http"

	"andromeda/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity вынимает принципала из заголовков шлюза. Аутентификацию
// выполняет шлюз, сервис доверяет уже проверенным заголовкам.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := models.Identity{
			UserID: c.GetHeader("X-User-Id"),
			Role:   c.GetHeader("X-User-Role"),
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

// RequireUser закрывает мутирующие маршруты от анонимов
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAuthenticated() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) models.Identity {
	if value, exists := c.Get(identityKey); exists {
		if ident, ok := value.(models.Identity); ok {
			return ident
		}
	}
	return models.Identity{}
}
