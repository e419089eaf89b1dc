package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pwa_mapview/internal/config"
	"pwa_mapview/internal/visitation"
)

// UpdateMeterStatus marks a single route record completed. The status
// field is optional and defaults to the completion marker; there is no
// way to move a record back to pending.
func UpdateMeterStatus(c *gin.Context) {
	var input struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	rows, err := visitation.MarkCompleted(config.DB, input.ID, input.Status)
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Status updated successfully",
		"rowsAffected": rows,
	})
}
