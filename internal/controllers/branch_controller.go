package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pwa_mapview/internal/config"
	"pwa_mapview/internal/query"
)

// ListBranches returns the branch catalog with derived route and record
// counts so the UI can grey out branches with nothing to walk.
func ListBranches(c *gin.Context) {
	branches, err := query.ListBranches(config.DB)
	if err != nil {
		respondError(c, err, "Error fetching branches")
		return
	}
	c.JSON(http.StatusOK, branches)
}

// ListRoutes returns a branch's distinct route codes with per-route row
// counts for the route picker.
func ListRoutes(c *gin.Context) {
	routes, err := query.ListRoutes(config.DB, atoi(c.Query("branchId")))
	if err != nil {
		respondError(c, err, "Failed to fetch routes")
		return
	}
	c.JSON(http.StatusOK, routes)
}
