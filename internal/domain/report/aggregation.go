package report

import (
	"sort"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// PenaltyMode selects the business rule for return penalties
type PenaltyMode string

const (
	// PenaltyDeliveryFee charges the supplier the delivery fee of each
	// returned sub-order (the cost of the failed round trip)
	PenaltyDeliveryFee PenaltyMode = "delivery_fee"
	// PenaltyFixed charges a flat configured amount per returned sub-order
	PenaltyFixed PenaltyMode = "fixed"
)

// PenaltyPolicy configures how return penalties are derived
type PenaltyPolicy struct {
	Mode        PenaltyMode
	FixedAmount decimal.Decimal
}

// DefaultPenaltyPolicy charges the delivery fee of returned sub-orders
func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{Mode: PenaltyDeliveryFee}
}

// hundred is the percentage factor for the return rate
var hundred = decimal.NewFromInt(100)

// ComputeReturnRate returns returned/(delivered+returned) x 100 rounded to
// the given precision, and zero when the denominator is zero.
func ComputeReturnRate(delivered, returned int64, precision int32) decimal.Decimal {
	denominator := delivered + returned
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(returned).
		Div(decimal.NewFromInt(denominator)).
		Mul(hundred).
		Round(precision)
}

// Summarize folds per-status totals into the financial summary figures.
// It is a pure function: the same rows always produce the same summary.
// Series and pickup counts are filled in by the caller.
func Summarize(filter FinancialReportFilter, totals []StatusTotals, penalty PenaltyPolicy, returnRatePrecision int32) FinancialSummary {
	summary := FinancialSummary{
		SupplierID:       filter.SupplierID,
		WindowStart:      filter.Start,
		WindowEnd:        filter.End,
		RealizedRevenue:  decimal.Zero,
		PipelineRevenue:  decimal.Zero,
		PotentialRevenue: decimal.Zero,
		Profit:           decimal.Zero,
		ReturnPenalties:  decimal.Zero,
		ReturnRate:       decimal.Zero,
		Daily:            []SeriesPoint{},
		Monthly:          []SeriesPoint{},
	}

	for _, row := range totals {
		switch {
		case row.Status.IsDelivered():
			summary.RealizedRevenue = summary.RealizedRevenue.Add(row.Total)
			summary.Profit = summary.Profit.Add(row.Profit)
			summary.Counts.Delivered += row.Count
			if row.Status == fulfillment.StatusDeliveredPaid {
				summary.Counts.DeliveredPaid += row.Count
			}
			if row.Status == fulfillment.StatusDeliveredUnpaid {
				summary.Counts.DeliveredUnpaid += row.Count
			}
		case row.Status.IsPipeline():
			summary.PipelineRevenue = summary.PipelineRevenue.Add(row.Total)
			summary.Counts.InProgress += row.Count
		case row.Status == fulfillment.StatusUnconfirmed:
			summary.PotentialRevenue = summary.PotentialRevenue.Add(row.Total)
			summary.Counts.Unconfirmed += row.Count
		case row.Status == fulfillment.StatusReturned:
			summary.Counts.Returned += row.Count
			switch penalty.Mode {
			case PenaltyFixed:
				summary.ReturnPenalties = summary.ReturnPenalties.Add(
					penalty.FixedAmount.Mul(decimal.NewFromInt(row.Count)))
			default:
				summary.ReturnPenalties = summary.ReturnPenalties.Add(row.DeliveryFee)
			}
		case row.Status == fulfillment.StatusCancelled:
			summary.Counts.Cancelled += row.Count
		}

		if row.Status != fulfillment.StatusCancelled {
			summary.Counts.TotalOrders += row.Count
		}
	}

	summary.ReturnRate = ComputeReturnRate(summary.Counts.Delivered, summary.Counts.Returned, returnRatePrecision)

	return summary
}

// SeriesFromBuckets folds bucketed per-status rows into ordered series
// points using the same partitioning as Summarize.
func SeriesFromBuckets(buckets []BucketStatusTotals) []SeriesPoint {
	byPeriod := make(map[string]*SeriesPoint)
	for _, row := range buckets {
		point, ok := byPeriod[row.Bucket]
		if !ok {
			point = &SeriesPoint{
				Period:           row.Bucket,
				RealizedRevenue:  decimal.Zero,
				PipelineRevenue:  decimal.Zero,
				PotentialRevenue: decimal.Zero,
				Profit:           decimal.Zero,
			}
			byPeriod[row.Bucket] = point
		}

		switch {
		case row.Status.IsDelivered():
			point.RealizedRevenue = point.RealizedRevenue.Add(row.Total)
			point.Profit = point.Profit.Add(row.Profit)
			point.Delivered += row.Count
		case row.Status.IsPipeline():
			point.PipelineRevenue = point.PipelineRevenue.Add(row.Total)
		case row.Status == fulfillment.StatusUnconfirmed:
			point.PotentialRevenue = point.PotentialRevenue.Add(row.Total)
		case row.Status == fulfillment.StatusReturned:
			point.Returned += row.Count
		}
	}

	points := make([]SeriesPoint, 0, len(byPeriod))
	for _, point := range byPeriod {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })

	return points
}
