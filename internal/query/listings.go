package query

import (
	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
)

// BranchSummary is a branch plus its derived worklist statistics. The
// counts are recomputed by aggregation on every read, never stored, so
// they cannot drift when a batch is replaced.
type BranchSummary struct {
	ID           uint   `json:"id"`
	BranchCode   string `json:"branch_code"`
	BranchName   string `json:"branch_name"`
	HasRoutes    bool   `json:"has_routes"`
	RouteCount   int    `json:"route_count"`
	TotalRecords int    `json:"total_records"`
}

// RouteSummary is one distinct route code of a branch with its row count.
type RouteSummary struct {
	Route string `gorm:"column:mtrrdroute" json:"mtrrdroute"`
	Count int    `gorm:"column:count" json:"count"`
}

// ListBranches returns the branch catalog ordered by branch code, each
// with aggregates over its eligible (route-coded) records.
func ListBranches(db *gorm.DB) ([]BranchSummary, error) {
	var branches []models.Branch
	if err := db.Order("branch_code").Find(&branches).Error; err != nil {
		return nil, apperrors.Store("list branches", err)
	}

	type branchAgg struct {
		BranchID     uint `gorm:"column:branch_id"`
		RouteCount   int  `gorm:"column:route_count"`
		TotalRecords int  `gorm:"column:total_records"`
	}
	var aggs []branchAgg
	err := db.Model(&models.RouteRecord{}).
		Select("branch_id, COUNT(DISTINCT mtrrdroute) AS route_count, COUNT(*) AS total_records").
		Where("mtrrdroute IS NOT NULL AND mtrrdroute <> ''").
		Group("branch_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, apperrors.Store("aggregate branch records", err)
	}

	byBranch := make(map[uint]branchAgg, len(aggs))
	for _, a := range aggs {
		byBranch[a.BranchID] = a
	}

	summaries := make([]BranchSummary, 0, len(branches))
	for _, b := range branches {
		a := byBranch[b.ID]
		summaries = append(summaries, BranchSummary{
			ID:           b.ID,
			BranchCode:   b.BranchCode,
			BranchName:   b.BranchName,
			HasRoutes:    a.RouteCount > 0,
			RouteCount:   a.RouteCount,
			TotalRecords: a.TotalRecords,
		})
	}
	return summaries, nil
}

// ListRoutes returns the distinct route codes of a branch with per-route
// row counts, ordered by route code. Records without a route code are
// excluded; they are ingestible but invisible to the worklist.
func ListRoutes(db *gorm.DB, branchID int) ([]RouteSummary, error) {
	if branchID <= 0 {
		return nil, apperrors.Validation("branch id is required")
	}

	var routes []RouteSummary
	err := db.Model(&models.RouteRecord{}).
		Select("mtrrdroute, COUNT(*) AS count").
		Where("branch_id = ?", branchID).
		Where("mtrrdroute IS NOT NULL AND mtrrdroute <> ''").
		Group("mtrrdroute").
		Order("mtrrdroute").
		Scan(&routes).Error
	if err != nil {
		return nil, apperrors.Store("list branch routes", err)
	}
	return routes, nil
}
