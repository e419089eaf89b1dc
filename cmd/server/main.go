package main

import (
	"log"
	"net/http"

	"pwa_mapview/internal/config"
	"pwa_mapview/internal/logger"
	"pwa_mapview/internal/middleware"
	"pwa_mapview/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router (recovery + request logging applied inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := config.ServerAddr()
	log.Println("🚀 Server running at " + addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
