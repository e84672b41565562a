package report

import (
	"context"
	"time"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/report"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config tunes the financial aggregation
type Config struct {
	// PenaltyPolicy derives return penalties from the returned sub-orders
	PenaltyPolicy report.PenaltyPolicy
	// ReturnRatePrecision is the rounding precision of the return rate
	ReturnRatePrecision int32
	// Timezone resolves the "today" default window
	Timezone *time.Location
	// DailyWindowDays and MonthlyWindowMonths size the breakdown series
	DailyWindowDays     int
	MonthlyWindowMonths int
}

// DefaultConfig returns the default aggregation settings
func DefaultConfig() Config {
	return Config{
		PenaltyPolicy:       report.DefaultPenaltyPolicy(),
		ReturnRatePrecision: 2,
		Timezone:            time.UTC,
		DailyWindowDays:     30,
		MonthlyWindowMonths: 12,
	}
}

// FinancialService computes the windowed financial summary of a supplier.
// Queries are pure reads over committed rows: no locks, and identical
// history always yields identical figures.
type FinancialService struct {
	reports report.FinancialReportRepository
	pickups fulfillment.PickupRepository
	cfg     Config
	logger  *zap.Logger
}

// NewFinancialService creates a financial service
func NewFinancialService(
	reports report.FinancialReportRepository,
	pickups fulfillment.PickupRepository,
	cfg Config,
	logger *zap.Logger,
) *FinancialService {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.ReturnRatePrecision <= 0 {
		cfg.ReturnRatePrecision = DefaultConfig().ReturnRatePrecision
	}
	if cfg.DailyWindowDays <= 0 {
		cfg.DailyWindowDays = DefaultConfig().DailyWindowDays
	}
	if cfg.MonthlyWindowMonths <= 0 {
		cfg.MonthlyWindowMonths = DefaultConfig().MonthlyWindowMonths
	}
	return &FinancialService{
		reports: reports,
		pickups: pickups,
		cfg:     cfg,
		logger:  logger,
	}
}

// GetFinancials aggregates the supplier's window. A zero start and end
// defaults to today in the configured timezone; the window is inclusive on
// both ends.
func (s *FinancialService) GetFinancials(ctx context.Context, supplierID uuid.UUID, start, end time.Time) (*report.FinancialSummary, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}

	filter, err := s.resolveWindow(supplierID, start, end)
	if err != nil {
		return nil, err
	}

	totals, err := s.reports.StatusTotalsForWindow(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := report.Summarize(filter, totals, s.cfg.PenaltyPolicy, s.cfg.ReturnRatePrecision)

	pickupCount, err := s.pickups.CountBySupplierBetween(ctx, supplierID, filter.Start, filter.End)
	if err != nil {
		return nil, err
	}
	summary.Counts.Pickups = pickupCount

	if summary.Daily, err = s.series(ctx, supplierID, filter.End, report.GranularityDaily); err != nil {
		return nil, err
	}
	if summary.Monthly, err = s.series(ctx, supplierID, filter.End, report.GranularityMonthly); err != nil {
		return nil, err
	}

	s.logger.Debug("financial summary computed",
		zap.String("supplier_id", supplierID.String()),
		zap.Time("start", filter.Start),
		zap.Time("end", filter.End),
		zap.Int64("orders", summary.Counts.TotalOrders))

	return &summary, nil
}

// resolveWindow validates the requested window and applies the today
// default. The window is normalized to full days in the configured
// timezone.
func (s *FinancialService) resolveWindow(supplierID uuid.UUID, start, end time.Time) (report.FinancialReportFilter, error) {
	if start.IsZero() != end.IsZero() {
		return report.FinancialReportFilter{}, shared.NewDomainError("INVALID_INPUT",
			"Window start and end must be provided together")
	}
	if start.IsZero() {
		today := time.Now().In(s.cfg.Timezone)
		start = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.cfg.Timezone)
		end = start
	}
	if start.After(end) {
		return report.FinancialReportFilter{}, shared.NewDomainError("INVALID_INPUT",
			"Window start must not be after window end")
	}

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.cfg.Timezone)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, s.cfg.Timezone)

	return report.FinancialReportFilter{
		SupplierID: supplierID,
		Start:      start,
		End:        end,
		Timezone:   s.cfg.Timezone.String(),
	}, nil
}

// series computes the trailing daily or monthly breakdown ending at the
// window end.
func (s *FinancialService) series(ctx context.Context, supplierID uuid.UUID, end time.Time, granularity report.SeriesGranularity) ([]report.SeriesPoint, error) {
	var start time.Time
	switch granularity {
	case report.GranularityMonthly:
		firstOfMonth := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, s.cfg.Timezone)
		start = firstOfMonth.AddDate(0, -(s.cfg.MonthlyWindowMonths - 1), 0)
	default:
		day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, s.cfg.Timezone)
		start = day.AddDate(0, 0, -(s.cfg.DailyWindowDays - 1))
	}

	buckets, err := s.reports.BucketedStatusTotals(ctx, report.FinancialReportFilter{
		SupplierID: supplierID,
		Start:      start,
		End:        end,
		Timezone:   s.cfg.Timezone.String(),
	}, granularity)
	if err != nil {
		return nil, err
	}
	return report.SeriesFromBuckets(buckets), nil
}
