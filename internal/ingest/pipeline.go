package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
	"pwa_mapview/internal/tabular"
)

// RowError records a single row that failed to insert. The batch keeps
// going; one malformed row must not sacrifice the rest.
type RowError struct {
	Row   tabular.Row `json:"row"`
	Error string      `json:"error"`
}

// Report reconciles an ingestion batch. Inserted+Skipped+len(Errors)
// always equals Total.
type Report struct {
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Deleted  int        `json:"deleted"`
	Errors   []RowError `json:"errors,omitempty"`
}

// MaxReportedErrors bounds how many row errors callers should surface in
// a response. Counts in the report stay exact regardless.
const MaxReportedErrors = 5

// Run replaces all route records of one branch with the given rows.
// Delete and inserts share one transaction; a savepoint per row keeps
// individual insert failures from aborting the batch. This is the only
// operation in the system that deletes route records.
func Run(db *gorm.DB, branchID int, rows []tabular.Row) (Report, error) {
	var report Report
	if branchID <= 0 {
		return report, apperrors.Validation("branch id is required")
	}
	if len(rows) == 0 {
		return report, apperrors.Validation("no rows to ingest")
	}
	report.Total = len(rows)

	tx := db.Begin()
	if tx.Error != nil {
		return report, apperrors.Store("begin ingestion transaction", tx.Error)
	}

	res := tx.Where("branch_id = ?", branchID).Delete(&models.RouteRecord{})
	if res.Error != nil {
		tx.Rollback()
		return report, apperrors.Store("delete existing branch records", res.Error)
	}
	report.Deleted = int(res.RowsAffected)

	for i, row := range rows {
		routeCode := strings.TrimSpace(row["mtrrdroute"])
		if routeCode == "" {
			report.Skipped++
			continue
		}

		rec := buildRecord(uint(branchID), routeCode, row)
		sp := fmt.Sprintf("ingest_row_%d", i)
		tx.SavePoint(sp)
		if err := tx.Create(&rec).Error; err != nil {
			tx.RollbackTo(sp)
			logrus.WithError(err).WithField("row", i).Warn("ingest: row insert failed")
			report.Errors = append(report.Errors, RowError{Row: row, Error: describeInsertError(err)})
			continue
		}
		report.Inserted++
	}

	if err := tx.Commit().Error; err != nil {
		return report, apperrors.Store("commit ingestion transaction", err)
	}

	logrus.WithFields(logrus.Fields{
		"branch_id": branchID,
		"deleted":   report.Deleted,
		"inserted":  report.Inserted,
		"skipped":   report.Skipped,
		"errors":    len(report.Errors),
	}).Info("ingest: batch replaced")
	return report, nil
}

func buildRecord(branchID uint, routeCode string, row tabular.Row) models.RouteRecord {
	return models.RouteRecord{
		BranchID:  branchID,
		RouteCode: routeCode,
		CustCode:  strField(row, "custcode"),
		CusName:   strField(row, "custname", "cusname"),
		CusAddr:   strField(row, "custaddr", "cusaddr"),
		MeterNo:   strField(row, "meterno"),
		Mtrseq:    intField(row, "mtrseq"),
		Latitude:  floatField(row, "latitude"),
		// The reading app's CSV export misspells the header; accept both.
		Longitude:  floatField(row, "longitude", "lontitude"),
		ImageURL:   strField(row, "image_url"),
		RecordDate: strField(row, "recorddate"),
		Status:     strField(row, "status"),
	}
}

func strField(row tabular.Row, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}
	return ""
}

// floatField coerces the first non-empty key to a float with JS
// parseFloat semantics: the longest parsable prefix wins, so a
// unit-suffixed export value like "16.04 N" still yields 16.04. Absent
// or fully unparsable text becomes nil, never zero and never an error.
func floatField(row tabular.Row, keys ...string) *float64 {
	for _, k := range keys {
		v := strings.TrimSpace(row[k])
		if v == "" {
			continue
		}
		return parseFloatPrefix(v)
	}
	return nil
}

func parseFloatPrefix(s string) *float64 {
	for i := len(s); i > 0; i-- {
		f, err := strconv.ParseFloat(s[:i], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}

func intField(row tabular.Row, keys ...string) *int {
	for _, k := range keys {
		v := strings.TrimSpace(row[k])
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

// describeInsertError keeps row errors readable without dumping driver
// internals. Postgres constraint failures get their code name attached.
func describeInsertError(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Constraint != "" {
			return fmt.Sprintf("%s (%s, constraint %s)", pqErr.Message, pqErr.Code.Name(), pqErr.Constraint)
		}
		return fmt.Sprintf("%s (%s)", pqErr.Message, pqErr.Code.Name())
	}
	return err.Error()
}
