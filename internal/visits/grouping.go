package visits

import (
	"strconv"
	"strings"

	"pwa_mapview/internal/models"
)

// MeterVisit is the derived, never-persisted grouping of all route
// records that share one meter serial number: one card on the
// technician's worklist. Scalar fields come from the first record seen
// for the meter; the image list concatenates every record's references.
type MeterVisit struct {
	MeterNo    string             `json:"meterno"`
	CustCode   string             `json:"custcode"`
	CusName    string             `json:"cusname"`
	CusAddr    string             `json:"cusaddr"`
	Mtrseq     *int               `json:"mtrseq"`
	Latitude   *float64           `json:"latitude"`
	Longitude  *float64           `json:"longitude"`
	RecordDate string             `json:"recorddate"`
	Status     models.VisitStatus `json:"status"`
	Images     []string           `json:"images"`
	ImageCount int                `json:"imageCount"`
	// Hand-off link for the external map app; empty without coordinates.
	NavigationURL string `json:"navigation_url,omitempty"`
}

// Group folds records into meter visits, keyed by meter serial number in
// first-seen order. Pure and deterministic for a given input order; the
// records are expected to come from a single branch/route query.
//
// Image references arrive either one per row or comma-joined inside one
// field, sometimes both at once, so every value gets re-split. Repeated
// identical URLs across rows are kept: each row is one photo expectation.
func Group(records []models.RouteRecord) []MeterVisit {
	index := make(map[string]int, len(records))
	visits := make([]MeterVisit, 0, len(records))

	for _, rec := range records {
		i, seen := index[rec.MeterNo]
		if !seen {
			i = len(visits)
			index[rec.MeterNo] = i
			visits = append(visits, MeterVisit{
				MeterNo:       rec.MeterNo,
				CustCode:      rec.CustCode,
				CusName:       rec.CusName,
				CusAddr:       rec.CusAddr,
				Mtrseq:        rec.Mtrseq,
				Latitude:      rec.Latitude,
				Longitude:     rec.Longitude,
				RecordDate:    rec.RecordDate,
				Status:        models.StatusOf(rec.Status),
				Images:        []string{},
				NavigationURL: navigationURL(rec.Latitude, rec.Longitude),
			})
		}
		if raw := strings.TrimSpace(rec.ImageURL); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					visits[i].Images = append(visits[i].Images, part)
				}
			}
		}
	}

	// Recomputed once at the end, never tracked incrementally.
	for i := range visits {
		visits[i].ImageCount = len(visits[i].Images)
	}
	return visits
}

// Filter narrows visits by a search term: case-insensitive substring on
// meter serial, customer name and address, substring on customer code,
// and the sequence number when one is present. Empty term returns the
// input unchanged. Composable after Group; never part of it.
func Filter(visits []MeterVisit, term string) []MeterVisit {
	term = strings.TrimSpace(term)
	if term == "" {
		return visits
	}
	lower := strings.ToLower(term)

	matched := make([]MeterVisit, 0, len(visits))
	for _, v := range visits {
		switch {
		case strings.Contains(strings.ToLower(v.MeterNo), lower),
			strings.Contains(strings.ToLower(v.CusName), lower),
			strings.Contains(strings.ToLower(v.CusAddr), lower),
			strings.Contains(v.CustCode, term),
			v.Mtrseq != nil && strings.Contains(strconv.Itoa(*v.Mtrseq), term):
			matched = append(matched, v)
		}
	}
	return matched
}

// ImageTotal sums the image counts of a visit list, for worklist headers.
func ImageTotal(visits []MeterVisit) int {
	total := 0
	for _, v := range visits {
		total += v.ImageCount
	}
	return total
}

func navigationURL(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return "https://www.google.com/maps/dir/?api=1&destination=" +
		strconv.FormatFloat(*lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(*lng, 'f', -1, 64)
}
