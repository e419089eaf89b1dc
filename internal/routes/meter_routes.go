package routes

import (
	"pwa_mapview/internal/controllers"

	"github.com/gin-gonic/gin"
)

func MeterRoutes(r *gin.Engine) {
	r.GET("/meter-data", controllers.GetMeterData)
	r.GET("/meter-visits", controllers.GetMeterVisits)
	r.GET("/route-path", controllers.GetRoutePath)
	r.POST("/update-meter-status", controllers.UpdateMeterStatus)
}
