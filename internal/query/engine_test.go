package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pwa_mapview/internal/apperrors"
	"pwa_mapview/internal/models"
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

func intp(n int) *int { return &n }

func seed(t *testing.T, db *gorm.DB, recs ...models.RouteRecord) {
	t.Helper()
	for i := range recs {
		require.NoError(t, db.Create(&recs[i]).Error)
	}
}

func TestListRecordsRequiresBranchAndRoute(t *testing.T) {
	db := newTestDB(t)

	_, err := ListRecords(db, Params{Route: "R1"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = ListRecords(db, Params{BranchID: 1, Route: "  "})
	assert.True(t, apperrors.IsValidation(err))
}

func TestListRecordsEligibility(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C1", MeterNo: "M1"},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "", MeterNo: "M2"},
		models.RouteRecord{BranchID: 1, RouteCode: "R2", CustCode: "C3", MeterNo: "M3"},
		models.RouteRecord{BranchID: 2, RouteCode: "R1", CustCode: "C4", MeterNo: "M4"},
	)

	records, err := ListRecords(db, Params{BranchID: 1, Route: "R1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M1", records[0].MeterNo)
}

func TestListRecordsStatusPartition(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C1", MeterNo: "M1", Status: ""},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C2", MeterNo: "M2", Status: "Y"},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C3", MeterNo: "M3", Status: "something-else"},
	)

	pending, err := ListRecords(db, Params{BranchID: 1, Route: "R1", Status: "pending"})
	require.NoError(t, err)
	completed, err := ListRecords(db, Params{BranchID: 1, Route: "R1", Status: "completed"})
	require.NoError(t, err)

	// No gap, no overlap.
	assert.Len(t, pending, 2)
	assert.Len(t, completed, 1)
	seen := map[uint]bool{}
	for _, r := range append(pending, completed...) {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
	assert.Equal(t, "M2", completed[0].MeterNo)
}

func TestListRecordsDefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C1", MeterNo: "M1", Status: "Y"},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C2", MeterNo: "M2"},
	)

	records, err := ListRecords(db, Params{BranchID: 1, Route: "R1", Status: "not-a-status"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "M2", records[0].MeterNo)
}

func TestListRecordsSortBySequence(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "M3", Mtrseq: intp(3)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "M1", Mtrseq: intp(1)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "Mx", Mtrseq: nil},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "M2", Mtrseq: intp(2)},
	)

	asc, err := ListRecords(db, Params{BranchID: 1, Route: "R1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2", "M3", "Mx"}, meterNos(asc))

	desc, err := ListRecords(db, Params{BranchID: 1, Route: "R1", SortDir: "descending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"M3", "M2", "M1", "Mx"}, meterNos(desc))
}

func TestListRecordsSortByTimestamp(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "old", RecordDate: "2024-01-01 08:00:00", Mtrseq: intp(9)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "junk2", RecordDate: "41:51.0", Mtrseq: intp(2)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "new", RecordDate: "2024-06-01 08:00:00", Mtrseq: intp(1)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "junk1", RecordDate: "", Mtrseq: intp(1)},
	)

	desc, err := ListRecords(db, Params{BranchID: 1, Route: "R1", SortBy: "timestamp", SortDir: "descending"})
	require.NoError(t, err)
	// Unparsable dates always last, ordered by sequence ascending.
	assert.Equal(t, []string{"new", "old", "junk1", "junk2"}, meterNos(desc))

	asc, err := ListRecords(db, Params{BranchID: 1, Route: "R1", SortBy: "timestamp", SortDir: "ascending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new", "junk1", "junk2"}, meterNos(asc))
}

func TestListRecordsWhitelistsSortInputs(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "M2", Mtrseq: intp(2)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "M1", Mtrseq: intp(1)},
	)

	// Hostile sort inputs fall back to sequence ascending, untouched by SQL.
	records, err := ListRecords(db, Params{
		BranchID: 1,
		Route:    "R1",
		SortBy:   "id; DROP TABLE routes--",
		SortDir:  "sideways",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2"}, meterNos(records))
}

func TestListRecordsSequenceTiesKeepStoreOrder(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "first", Mtrseq: intp(5)},
		models.RouteRecord{BranchID: 1, RouteCode: "R1", CustCode: "C", MeterNo: "second", Mtrseq: intp(5)},
	)

	records, err := ListRecords(db, Params{BranchID: 1, Route: "R1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, meterNos(records))
}

func meterNos(recs []models.RouteRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.MeterNo
	}
	return out
}
