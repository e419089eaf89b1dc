package models

// Branch is an administrative unit owning a set of meter reading routes.
// Rows are seeded by operations staff; this service never creates or
// deletes branches, only reads them and aggregates over their records.
type Branch struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BranchCode string `gorm:"column:branch_code" json:"branch_code"`
	BranchName string `gorm:"column:branch_name" json:"branch_name"`
}

func (Branch) TableName() string {
	return "branches"
}
