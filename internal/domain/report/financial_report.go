package report

import (
	"context"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusTotals is the raw per-status aggregation over a date window: one
// row per status carrying the sub-order count and the summed amounts. Every
// derived financial figure is computed from these rows, so repeated queries
// over an unchanged history are deterministic.
type StatusTotals struct {
	Status      fulfillment.SubOrderStatus `json:"status"`
	Count       int64                      `json:"count"`
	Total       decimal.Decimal            `json:"total"`
	Profit      decimal.Decimal            `json:"profit"`
	DeliveryFee decimal.Decimal            `json:"delivery_fee"`
}

// BucketStatusTotals is StatusTotals attributed to one time bucket
// (a day or a month, formatted by the query).
type BucketStatusTotals struct {
	Bucket string `json:"bucket"`
	StatusTotals
}

// FinancialCounts are the supporting counters of a financial summary
type FinancialCounts struct {
	TotalOrders     int64 `json:"total_orders"` // excludes cancelled
	Delivered       int64 `json:"delivered"`
	InProgress      int64 `json:"in_progress"`
	Unconfirmed     int64 `json:"unconfirmed"`
	Cancelled       int64 `json:"cancelled"`
	Returned        int64 `json:"returned"`
	DeliveredPaid   int64 `json:"delivered_paid"`
	DeliveredUnpaid int64 `json:"delivered_unpaid"`
	Pickups         int64 `json:"pickups"`
}

// FinancialSummary is the windowed, per-supplier financial read model.
// French labels follow the platform vocabulary: CA réel / en cours /
// potentiel, pénalités de retour, taux de retour.
type FinancialSummary struct {
	SupplierID       uuid.UUID       `json:"supplier_id"`
	WindowStart      time.Time       `json:"window_start"`
	WindowEnd        time.Time       `json:"window_end"`
	RealizedRevenue  decimal.Decimal `json:"ca_reel"`
	PipelineRevenue  decimal.Decimal `json:"ca_en_cours"`
	PotentialRevenue decimal.Decimal `json:"ca_potentiel"`
	Profit           decimal.Decimal `json:"profit"`
	ReturnPenalties  decimal.Decimal `json:"penalites_retour"`
	ReturnRate       decimal.Decimal `json:"taux_retour"` // percentage
	Counts           FinancialCounts `json:"counts"`
	Daily            []SeriesPoint   `json:"daily"`
	Monthly          []SeriesPoint   `json:"monthly"`
}

// SeriesPoint is one bucket of a daily or monthly time-series breakdown,
// computed with the same partitioning as the summary restricted to the
// sub-window.
type SeriesPoint struct {
	Period           string          `json:"period"` // 2006-01-02 for daily, 2006-01 for monthly
	RealizedRevenue  decimal.Decimal `json:"ca_reel"`
	PipelineRevenue  decimal.Decimal `json:"ca_en_cours"`
	PotentialRevenue decimal.Decimal `json:"ca_potentiel"`
	Profit           decimal.Decimal `json:"profit"`
	Delivered        int64           `json:"delivered"`
	Returned         int64           `json:"returned"`
}

// SeriesGranularity selects the bucket size of a breakdown query
type SeriesGranularity string

const (
	GranularityDaily   SeriesGranularity = "daily"
	GranularityMonthly SeriesGranularity = "monthly"
)

// FinancialReportFilter scopes a financial query to one supplier and an
// inclusive date window. Timezone is the IANA zone day and month buckets
// are cut in, so a sub-order created at 23:30 local time lands on the
// local day rather than the UTC one.
type FinancialReportFilter struct {
	SupplierID uuid.UUID
	Start      time.Time
	End        time.Time
	Timezone   string
}

// FinancialReportRepository is the read-only query interface behind the
// aggregator. Implementations must not take locks and must tolerate
// reading a committed-but-slightly-stale snapshot.
type FinancialReportRepository interface {
	// StatusTotalsForWindow returns one row per status present in the window
	StatusTotalsForWindow(ctx context.Context, filter FinancialReportFilter) ([]StatusTotals, error)

	// BucketedStatusTotals returns per-status rows grouped into daily or
	// monthly buckets over the window
	BucketedStatusTotals(ctx context.Context, filter FinancialReportFilter, granularity SeriesGranularity) ([]BucketStatusTotals, error)
}
