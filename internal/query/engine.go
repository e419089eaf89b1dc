package query

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
)

// Whitelisted parameter values. Anything else falls back to the default;
// caller strings never reach a SQL clause.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"

	SortBySequence  = "sequence"
	SortByTimestamp = "timestamp"

	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Params selects and orders the worklist for one branch and route.
type Params struct {
	BranchID int
	Route    string
	Status   string
	SortBy   string
	SortDir  string
}

// ListRecords returns the eligible records of one (branch, route) pair,
// filtered by visitation status and deterministically ordered. The
// pending and completed filters partition the eligible set exactly.
func ListRecords(db *gorm.DB, p Params) ([]models.RouteRecord, error) {
	if p.BranchID <= 0 {
		return nil, apperrors.Validation("branch id is required")
	}
	if strings.TrimSpace(p.Route) == "" {
		return nil, apperrors.Validation("route is required")
	}

	q := db.
		Where("branch_id = ? AND mtrrdroute = ?", p.BranchID, p.Route).
		Where("custcode IS NOT NULL AND custcode <> ''")

	if normalizeStatus(p.Status) == StatusCompleted {
		q = q.Where("status = ?", models.StatusCompletedMarker)
	} else {
		q = q.Where("status IS NULL OR status <> ?", models.StatusCompletedMarker)
	}

	var records []models.RouteRecord
	// id order pins the store order so sort ties stay deterministic.
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, apperrors.Store("list route records", err)
	}

	sortRecords(records, normalizeSortBy(p.SortBy), normalizeSortDir(p.SortDir))
	return records, nil
}

func normalizeStatus(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == StatusCompleted {
		return StatusCompleted
	}
	return StatusPending
}

func normalizeSortBy(s string) string {
	if strings.ToLower(strings.TrimSpace(s)) == SortByTimestamp {
		return SortByTimestamp
	}
	return SortBySequence
}

func normalizeSortDir(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SortDescending, "desc":
		return SortDescending
	}
	return SortAscending
}

// sortRecords orders in place. Sequence sort puts nil sequences last and
// keeps store order on ties. Timestamp sort puts blank or unparsable
// record dates last regardless of direction, with sequence ascending as
// the secondary key.
func sortRecords(records []models.RouteRecord, sortBy, sortDir string) {
	desc := sortDir == SortDescending

	switch sortBy {
	case SortByTimestamp:
		sort.SliceStable(records, func(i, j int) bool {
			ti, iok := parseRecordDate(records[i].RecordDate)
			tj, jok := parseRecordDate(records[j].RecordDate)
			if iok != jok {
				return iok
			}
			if iok && !ti.Equal(tj) {
				if desc {
					return tj.Before(ti)
				}
				return ti.Before(tj)
			}
			return seqLess(records[i], records[j])
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			si, sj := records[i].Mtrseq, records[j].Mtrseq
			if si == nil || sj == nil {
				return sj == nil && si != nil
			}
			if *si == *sj {
				return false
			}
			if desc {
				return *sj < *si
			}
			return *si < *sj
		})
	}
}

// seqLess is the fixed secondary ordering: sequence ascending, nils last.
func seqLess(a, b models.RouteRecord) bool {
	if a.Mtrseq == nil || b.Mtrseq == nil {
		return b.Mtrseq == nil && a.Mtrseq != nil
	}
	return *a.Mtrseq < *b.Mtrseq
}

var recordDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

func parseRecordDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
