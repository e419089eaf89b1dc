package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"pwa_mapview/internal/config"
	"pwa_mapview/internal/geo"
	"pwa_mapview/internal/query"
	"pwa_mapview/internal/visits"
)

func listParams(c *gin.Context) query.Params {
	return query.Params{
		BranchID: atoi(c.Query("branchId")),
		Route:    c.Query("route"),
		Status:   c.Query("status"),
		SortBy:   c.Query("sortBy"),
		SortDir:  c.Query("sortDir"),
	}
}

// GetMeterData returns the flat, filtered and sorted record list for one
// branch and route. One row per photo; grouping happens in /meter-visits.
func GetMeterData(c *gin.Context) {
	records, err := query.ListRecords(config.DB, listParams(c))
	if err != nil {
		respondError(c, err, "Failed to fetch meter data")
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetMeterVisits returns the grouped worklist: one entry per meter with
// its combined image list, optionally narrowed by a search term.
func GetMeterVisits(c *gin.Context) {
	records, err := query.ListRecords(config.DB, listParams(c))
	if err != nil {
		respondError(c, err, "Failed to fetch meter visits")
		return
	}

	grouped := visits.Filter(visits.Group(records), c.Query("search"))
	c.JSON(http.StatusOK, gin.H{
		"visits":     grouped,
		"meterCount": len(grouped),
		"imageCount": visits.ImageTotal(grouped),
	})
}

// GetRoutePath returns the route's walkable path as a GeoJSON LineString
// for the map hand-off, ordered by visit sequence.
func GetRoutePath(c *gin.Context) {
	records, err := query.ListRecords(config.DB, listParams(c))
	if err != nil {
		respondError(c, err, "Failed to fetch route path")
		return
	}

	path, err := geo.RoutePath(records)
	if err != nil {
		respondError(c, err, "Failed to build route path")
		return
	}
	if path == "" {
		c.JSON(http.StatusOK, gin.H{"path": nil, "meterCount": len(records)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": json.RawMessage(path), "meterCount": len(records)})
}
