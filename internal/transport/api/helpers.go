package api

import (
	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// getUserIDFromContext возвращает id текущего юзера, положенный в контекст
// мидлварью AuthRequired. На роутах без авторизации вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userID, _ := c.Get(middlewares.CurrentUserIDKey)
	id, _ := userID.(int64)
	return id
}
