package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Recovery + request logging before any route registration
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	BranchRoutes(r)
	MeterRoutes(r)
	UploadRoutes(r)
	HealthRoutes(r)

	return r
}
