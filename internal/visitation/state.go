package visitation

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
)

// MarkCompleted moves one route record from pending to completed and
// returns the affected row count. The transition is terminal: there is
// no operation anywhere that reverses it, so a status value other than
// the completion marker is rejected rather than written.
//
// Re-invoking on an already-completed record is harmless; the predicate
// matches on id alone, so callers still see rowsAffected >= 1 meaning
// "the row is now completed" and nothing more.
func MarkCompleted(db *gorm.DB, id int, status string) (int64, error) {
	if id <= 0 {
		return 0, apperrors.Validation("record id is required")
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = models.StatusCompletedMarker
	}
	if status != models.StatusCompletedMarker {
		return 0, apperrors.Validation("status can only be set to the completion marker")
	}

	res := db.Model(&models.RouteRecord{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return 0, apperrors.Store("update visitation status", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either never existed or swept away by a later ingestion run.
		return 0, apperrors.NotFound("record not found")
	}

	logrus.WithFields(logrus.Fields{"id": id, "rows": res.RowsAffected}).Debug("visitation: record completed")
	return res.RowsAffected, nil
}
