package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSmokeRoutes mounts the two smoke-test routes: a liveness banner
// on the root path and a JSON echo on /data.
func RegisterSmokeRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Сервер работает!")
	})

	router.POST("/data", func(c *gin.Context) {
		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "успешно",
			"received": payload,
		})
	})
}
