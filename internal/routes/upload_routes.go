package routes

import (
	"pwa_mapview/internal/controllers"

	"github.com/gin-gonic/gin"
)

func UploadRoutes(r *gin.Engine) {
	r.POST("/upload-routes", controllers.UploadRoutes)
}
