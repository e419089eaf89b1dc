package routes

import (
	"pwa_mapview/internal/controllers"

	"github.com/gin-gonic/gin"
)

func BranchRoutes(r *gin.Engine) {
	r.GET("/branches", controllers.ListBranches)
	r.GET("/routes", controllers.ListRoutes)
}
