package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pwa_mapview/internal/apperrors"
)

// respondError maps a service error onto the HTTP response. Validation
// and not-found messages are safe to echo; anything store-level gets the
// caller-supplied fallback so driver details and the DSN never leak.
func respondError(c *gin.Context, err error, fallback string) {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": clientMessage(err)})
	case apperrors.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": clientMessage(err)})
	default:
		logrus.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func clientMessage(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
