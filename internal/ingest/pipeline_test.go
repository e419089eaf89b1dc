package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
	"pwa_mapview/internal/tabular"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Shared-cache memory DB so every pooled connection sees one store;
	// named per test to keep tests isolated.
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Branch{}, &models.RouteRecord{}))
	return db
}

func TestRunRequiresBranchAndRows(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, 0, []tabular.Row{{"mtrrdroute": "R1"}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = Run(db, 1, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRunSkipsRowsWithoutRouteCode(t *testing.T) {
	db := newTestDB(t)

	report, err := Run(db, 1, []tabular.Row{
		{"mtrrdroute": "R1", "meterno": "M1", "custcode": "C1"},
		{"mtrrdroute": "", "meterno": "M2", "custcode": "C2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Errors)

	var count int64
	require.NoError(t, db.Model(&models.RouteRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunReplacesPreviousBatch(t *testing.T) {
	db := newTestDB(t)

	first, err := Run(db, 7, []tabular.Row{
		{"mtrrdroute": "R1", "meterno": "A"},
		{"mtrrdroute": "R1", "meterno": "B"},
		{"mtrrdroute": "R2", "meterno": "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, 0, first.Deleted)

	second, err := Run(db, 7, []tabular.Row{
		{"mtrrdroute": "R9", "meterno": "Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, second.Deleted)
	assert.Equal(t, 1, second.Inserted)

	var records []models.RouteRecord
	require.NoError(t, db.Where("branch_id = ?", 7).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "R9", records[0].RouteCode)
}

func TestRunDoesNotTouchOtherBranches(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, 1, []tabular.Row{{"mtrrdroute": "R1", "meterno": "A"}})
	require.NoError(t, err)

	report, err := Run(db, 2, []tabular.Row{{"mtrrdroute": "R1", "meterno": "B"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Deleted)

	var count int64
	require.NoError(t, db.Model(&models.RouteRecord{}).Where("branch_id = ?", 1).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunCoercesNumericFields(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, 1, []tabular.Row{
		{
			"mtrrdroute": "R1",
			"meterno":    "M1",
			"custcode":   " C1 ",
			"custname":   "  somchai  ",
			"latitude":   "16.04314982",
			"lontitude":  "105.2214765", // legacy misspelled header
			"mtrseq":     "12",
		},
		{
			"mtrrdroute": "R1",
			"meterno":    "M2",
			"latitude":   "not-a-number",
			"longitude":  "",
			"mtrseq":     "abc",
		},
	})
	require.NoError(t, err)

	var records []models.RouteRecord
	require.NoError(t, db.Order("id").Find(&records).Error)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].Latitude)
	assert.InDelta(t, 16.04314982, *records[0].Latitude, 1e-9)
	require.NotNil(t, records[0].Longitude)
	assert.InDelta(t, 105.2214765, *records[0].Longitude, 1e-9)
	require.NotNil(t, records[0].Mtrseq)
	assert.Equal(t, 12, *records[0].Mtrseq)
	assert.Equal(t, "C1", records[0].CustCode)
	assert.Equal(t, "somchai", records[0].CusName)

	assert.Nil(t, records[1].Latitude)
	assert.Nil(t, records[1].Longitude)
	assert.Nil(t, records[1].Mtrseq)
	assert.Equal(t, "", records[1].CustCode)
}

func TestRunIsolatesRowFailures(t *testing.T) {
	db := newTestDB(t)
	// Provoke a per-row insert failure with a uniqueness constraint.
	require.NoError(t, db.Exec("CREATE UNIQUE INDEX idx_routes_meterno ON routes(meterno)").Error)

	report, err := Run(db, 1, []tabular.Row{
		{"mtrrdroute": "R1", "meterno": "M1", "custcode": "C1"},
		{"mtrrdroute": "R1", "meterno": "M1", "custcode": "C2"}, // duplicate serial
		{"mtrrdroute": "R1", "meterno": "M2", "custcode": "C3"},
	})
	require.NoError(t, err)

	// One bad row never sacrifices the rest of the batch.
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "C2", report.Errors[0].Row["custcode"])
	assert.NotEmpty(t, report.Errors[0].Error)

	// The surviving rows committed.
	var records []models.RouteRecord
	require.NoError(t, db.Order("id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, "M1", records[0].MeterNo)
	assert.Equal(t, "M2", records[1].MeterNo)
}

func TestRunParseFloatPrefixSemantics(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, 1, []tabular.Row{
		{"mtrrdroute": "R1", "meterno": "M1", "latitude": "16.04 N", "longitude": "105.22E"},
	})
	require.NoError(t, err)

	var rec models.RouteRecord
	require.NoError(t, db.First(&rec).Error)
	require.NotNil(t, rec.Latitude)
	assert.InDelta(t, 16.04, *rec.Latitude, 1e-9)
	require.NotNil(t, rec.Longitude)
	assert.InDelta(t, 105.22, *rec.Longitude, 1e-9)
}

func TestRunRowWithoutCustomerCodeIsStoredButIneligible(t *testing.T) {
	db := newTestDB(t)

	report, err := Run(db, 1, []tabular.Row{
		{"mtrrdroute": "R1", "meterno": "M1", "custcode": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	var rec models.RouteRecord
	require.NoError(t, db.First(&rec).Error)
	assert.False(t, rec.Eligible())
}
