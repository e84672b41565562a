package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockFinancialReportRepository creates a GormFinancialReportRepository with a mocked SQL connection
func newMockFinancialReportRepository(t *testing.T) (*GormFinancialReportRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormFinancialReportRepository(gormDB), mock, mockDB
}

func TestGormFinancialReportRepository_StatusTotalsForWindow(t *testing.T) {
	repo, mock, mockDB := newMockFinancialReportRepository(t)
	defer mockDB.Close()

	supplierID := uuid.New()
	filter := report.FinancialReportFilter{
		SupplierID: supplierID,
		Start:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
	}

	rows := sqlmock.NewRows([]string{"status", "count", "total", "profit", "delivery_fee"}).
		AddRow("livre", int64(3), decimal.NewFromInt(7200), decimal.NewFromInt(1800), decimal.NewFromInt(1200)).
		AddRow("retourne", int64(1), decimal.NewFromInt(2400), decimal.NewFromInt(600), decimal.NewFromInt(400))

	mock.ExpectQuery(`(?s)SELECT so\.status AS status,.*FROM sub_orders so LEFT JOIN`).
		WillReturnRows(rows)

	totals, err := repo.StatusTotalsForWindow(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, fulfillment.StatusDelivered, totals[0].Status)
	assert.Equal(t, int64(3), totals[0].Count)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(7200)))
	assert.True(t, totals[0].Profit.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, fulfillment.StatusReturned, totals[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFinancialReportRepository_BucketedStatusTotals(t *testing.T) {
	repo, mock, mockDB := newMockFinancialReportRepository(t)
	defer mockDB.Close()

	filter := report.FinancialReportFilter{
		SupplierID: uuid.New(),
		Start:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
		Timezone:   "Africa/Algiers",
	}

	rows := sqlmock.NewRows([]string{"bucket", "status", "count", "total", "profit", "delivery_fee"}).
		AddRow("2026-08-10", "livre", int64(2), decimal.NewFromInt(4800), decimal.NewFromInt(1200), decimal.NewFromInt(800)).
		AddRow("2026-08-11", "en_cours", int64(1), decimal.NewFromInt(2400), decimal.NewFromInt(600), decimal.NewFromInt(400))

	// buckets are cut in the supplier's local zone, passed as the first bind
	mock.ExpectQuery(`(?s)SELECT to_char\(so\.created_at AT TIME ZONE \$1, \$2\) AS bucket,.*FROM sub_orders so LEFT JOIN`).
		WithArgs("Africa/Algiers", "YYYY-MM-DD", filter.SupplierID, filter.Start, filter.End).
		WillReturnRows(rows)

	buckets, err := repo.BucketedStatusTotals(context.Background(), filter, report.GranularityDaily)

	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-08-10", buckets[0].Bucket)
	assert.Equal(t, fulfillment.StatusDelivered, buckets[0].Status)
	assert.Equal(t, "2026-08-11", buckets[1].Bucket)
	assert.Equal(t, fulfillment.StatusInProgress, buckets[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFinancialReportRepository_BucketedStatusTotalsDefaultsToUTC(t *testing.T) {
	repo, mock, mockDB := newMockFinancialReportRepository(t)
	defer mockDB.Close()

	filter := report.FinancialReportFilter{
		SupplierID: uuid.New(),
		Start:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
	}

	mock.ExpectQuery(`(?s)SELECT to_char\(so\.created_at AT TIME ZONE \$1, \$2\) AS bucket,`).
		WithArgs("UTC", "YYYY-MM", filter.SupplierID, filter.Start, filter.End).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "status", "count", "total", "profit", "delivery_fee"}))

	buckets, err := repo.BucketedStatusTotals(context.Background(), filter, report.GranularityMonthly)

	require.NoError(t, err)
	assert.Empty(t, buckets)
	assert.NoError(t, mock.ExpectationsWereMet())
}
