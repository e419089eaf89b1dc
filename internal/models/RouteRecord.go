package models

// RouteRecord is one ingested meter reading row: one customer/meter/photo
// combination. Multiple photos of the same meter arrive as separate rows.
// The table keeps its legacy name "routes" even though each row is a
// record, not a route; routes exist only as the mtrrdroute grouping key.
type RouteRecord struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	BranchID  uint     `gorm:"column:branch_id;not null;index" json:"branch_id"`
	RouteCode string   `gorm:"column:mtrrdroute;index" json:"mtrrdroute"`
	CustCode  string   `gorm:"column:custcode" json:"custcode"`
	CusName   string   `gorm:"column:cusname" json:"cusname"`
	CusAddr   string   `gorm:"column:cusaddr" json:"cusaddr"`
	MeterNo   string   `gorm:"column:meterno" json:"meterno"`
	Mtrseq    *int     `gorm:"column:mtrseq" json:"mtrseq"`
	Latitude  *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude"`
	ImageURL  string   `gorm:"column:image_url" json:"image_url"`
	// Free text straight from the reading device export; "41:51.0" and
	// similar Excel-mangled values occur, so no time.Time here.
	RecordDate string `gorm:"column:recorddate" json:"recorddate"`
	Status     string `gorm:"column:status" json:"status"`
}

func (RouteRecord) TableName() string {
	return "routes"
}

// StatusCompletedMarker is the literal the reading app writes when a
// technician checks off a meter. Anything else, including NULL and empty
// string, means the visit is still pending.
const StatusCompletedMarker = "Y"

// Completed reports whether the raw status equals the completion marker.
func (r RouteRecord) Completed() bool {
	return r.Status == StatusCompletedMarker
}

// Eligible reports whether the record can appear in route listings and
// visit grouping. Rows without a route code or customer code are kept in
// the store but stay invisible to the worklist.
func (r RouteRecord) Eligible() bool {
	return r.RouteCode != "" && r.CustCode != ""
}
