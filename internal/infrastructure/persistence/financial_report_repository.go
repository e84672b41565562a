package persistence

import (
	"context"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFinancialReportRepository implements FinancialReportRepository using
// GORM. All queries are read-only aggregations over sub_orders and their
// lines; no locks are taken.
type GormFinancialReportRepository struct {
	db *gorm.DB
}

// NewGormFinancialReportRepository creates a new GormFinancialReportRepository
func NewGormFinancialReportRepository(db *gorm.DB) *GormFinancialReportRepository {
	return &GormFinancialReportRepository{db: db}
}

// statusTotalsRow is the scan target of the aggregation queries
type statusTotalsRow struct {
	Bucket      string
	Status      string
	Count       int64
	Total       decimal.Decimal
	Profit      decimal.Decimal
	DeliveryFee decimal.Decimal
}

// lineProfitJoin aggregates per-line profit so the outer query can sum it
// alongside the sub-order columns without fanning out rows.
const lineProfitJoin = `LEFT JOIN (
	SELECT sub_order_id, SUM((unit_sale_price - unit_wholesale) * quantity) AS line_profit
	FROM sub_order_lines
	GROUP BY sub_order_id
) lp ON lp.sub_order_id = so.id`

// StatusTotalsForWindow returns one row per status present in the window
func (r *GormFinancialReportRepository) StatusTotalsForWindow(ctx context.Context, filter report.FinancialReportFilter) ([]report.StatusTotals, error) {
	var rows []statusTotalsRow
	if err := r.db.WithContext(ctx).
		Table("sub_orders so").
		Select(`so.status AS status,
			COUNT(*) AS count,
			COALESCE(SUM(so.total), 0) AS total,
			COALESCE(SUM(lp.line_profit), 0) AS profit,
			COALESCE(SUM(so.delivery_fee), 0) AS delivery_fee`).
		Joins(lineProfitJoin).
		Where("so.supplier_id = ?", filter.SupplierID).
		Where("so.created_at BETWEEN ? AND ?", filter.Start, filter.End).
		Group("so.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]report.StatusTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, row.toStatusTotals())
	}
	return totals, nil
}

// BucketedStatusTotals returns per-status rows grouped into daily or
// monthly buckets over the window
func (r *GormFinancialReportRepository) BucketedStatusTotals(ctx context.Context, filter report.FinancialReportFilter, granularity report.SeriesGranularity) ([]report.BucketStatusTotals, error) {
	bucketFormat := "YYYY-MM-DD"
	if granularity == report.GranularityMonthly {
		bucketFormat = "YYYY-MM"
	}
	timezone := filter.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	var rows []statusTotalsRow
	if err := r.db.WithContext(ctx).
		Table("sub_orders so").
		Select(`to_char(so.created_at AT TIME ZONE ?, ?) AS bucket,
			so.status AS status,
			COUNT(*) AS count,
			COALESCE(SUM(so.total), 0) AS total,
			COALESCE(SUM(lp.line_profit), 0) AS profit,
			COALESCE(SUM(so.delivery_fee), 0) AS delivery_fee`, timezone, bucketFormat).
		Joins(lineProfitJoin).
		Where("so.supplier_id = ?", filter.SupplierID).
		Where("so.created_at BETWEEN ? AND ?", filter.Start, filter.End).
		Group("bucket, so.status").
		Order("bucket ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]report.BucketStatusTotals, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, report.BucketStatusTotals{
			Bucket:       row.Bucket,
			StatusTotals: row.toStatusTotals(),
		})
	}
	return buckets, nil
}

func (row statusTotalsRow) toStatusTotals() report.StatusTotals {
	return report.StatusTotals{
		Status:      fulfillment.SubOrderStatus(row.Status),
		Count:       row.Count,
		Total:       row.Total,
		Profit:      row.Profit,
		DeliveryFee: row.DeliveryFee,
	}
}

// Ensure GormFinancialReportRepository implements FinancialReportRepository
var _ report.FinancialReportRepository = (*GormFinancialReportRepository)(nil)
