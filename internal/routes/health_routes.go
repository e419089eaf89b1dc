package routes

import (
	"pwa_mapview/internal/controllers"

	"github.com/gin-gonic/gin"
)

func HealthRoutes(r *gin.Engine) {
	r.GET("/test-connection", controllers.TestConnection)
	r.GET("/test-db", controllers.TestDB)
}
