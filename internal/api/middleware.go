package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"torgplus/server/internal/models"
	"torgplus/server/internal/services"
)

// Ключ контекста gin с идентичностью вызывающего
const callerContextKey = "caller"

// CallerMiddleware извлекает идентичность вызывающего из заголовков
// X-Actor и X-Business-Unit, которые проставляет вышестоящий auth-шлюз
// Аутентификация как таковая живет в шлюзе, ядро ей доверяет
func CallerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-Actor")
		unit := models.BusinessUnit(c.GetHeader("X-Business-Unit"))

		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Заголовок X-Actor обязателен",
			})
			return
		}
		if !unit.IsValid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Заголовок X-Business-Unit обязателен (RTL или WHS)",
			})
			return
		}

		c.Set(callerContextKey, services.Caller{
			Actor:  actor,
			Unit:   unit,
			Origin: c.ClientIP(),
		})
		c.Next()
	}
}

// CallerFrom достает идентичность вызывающего из контекста запроса
func CallerFrom(c *gin.Context) services.Caller {
	value, _ := c.Get(callerContextKey)
	caller, _ := value.(services.Caller)
	return caller
}
