// Package portfolio rolls occupancy, revenue and payout metrics up across
// properties and months. Snapshots are always recomputed from reservation
// data, never cached or mutated.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/apex/log"

	"reservations-service/fanout"
	"reservations-service/models"
	"reservations-service/reconcile"
	"reservations-service/repository"
	"reservations-service/statement"
)

const monthLayout = "2006-01"

type Aggregator struct {
	reconciler *reconcile.Reconciler
	calc       *statement.Calculator
	properties repository.Store[models.PropertyConfig]
}

func NewAggregator(reconciler *reconcile.Reconciler, calc *statement.Calculator, properties repository.Store[models.PropertyConfig]) *Aggregator {
	return &Aggregator{
		reconciler: reconciler,
		calc:       calc,
		properties: properties,
	}
}

// Overview computes one month's snapshot per property in parallel. A failed
// property contributes a zeroed row tagged "error"; totals sum every row,
// averages only the healthy ones.
func (a *Aggregator) Overview(ctx context.Context, propertyIDs []string, month string) (*models.PortfolioOverview, error) {
	monthStart, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	startDate := monthStart.Format("2006-01-02")
	endDate := monthStart.AddDate(0, 1, -1).Format("2006-01-02")

	outcomes := fanout.Settle(ctx, propertyIDs, func(ctx context.Context, propertyID string) (models.PortfolioSnapshot, error) {
		return a.snapshot(ctx, propertyID, month, startDate, endDate, daysInMonth)
	})

	overview := &models.PortfolioOverview{
		Month:      month,
		Properties: make([]models.PortfolioSnapshot, 0, len(outcomes)),
	}

	healthy := 0
	var occupancySum, adrSum float64
	for _, outcome := range outcomes {
		snapshot := outcome.Value
		if outcome.Err != nil {
			log.Errorf("Portfolio snapshot for property %s: %v", outcome.Key, outcome.Err)
			snapshot = models.PortfolioSnapshot{PropertyID: outcome.Key, Month: month, Status: "error"}
		}
		overview.Properties = append(overview.Properties, snapshot)

		overview.Totals.GrossRevenue += snapshot.GrossRevenue
		overview.Totals.Commission += snapshot.Commission
		overview.Totals.CleaningFees += snapshot.CleaningFees
		overview.Totals.NetPayout += snapshot.NetPayout
		overview.Totals.TouristTax += snapshot.TouristTax
		overview.Totals.BookingCount += snapshot.BookingCount
		overview.Totals.TotalNights += snapshot.TotalNights

		if snapshot.Status == "ok" {
			healthy++
			occupancySum += snapshot.OccupancyRate
			adrSum += snapshot.ADR
		}
	}
	if healthy > 0 {
		overview.Averages.OccupancyRate = round1(occupancySum / float64(healthy))
		overview.Averages.ADR = round2(adrSum / float64(healthy))
	}
	return overview, nil
}

func (a *Aggregator) snapshot(ctx context.Context, propertyID, month, startDate, endDate string, daysInMonth int) (models.PortfolioSnapshot, error) {
	set := a.reconciler.Reconcile(ctx, propertyID, startDate, endDate)
	if set.Status != "ok" {
		return models.PortfolioSnapshot{}, fmt.Errorf("reservation data unavailable for property %s", propertyID)
	}

	cfg := a.propertyConfig(ctx, propertyID)
	stmt := a.calc.Compute(statement.FromReservations(set.Reservations), cfg.CommissionRate, cfg.IsAdminOwned)

	snapshot := models.PortfolioSnapshot{
		PropertyID:   propertyID,
		Month:        month,
		Status:       "ok",
		GrossRevenue: set.Summary.TotalRevenue,
		Commission:   stmt.TotalCommission,
		CleaningFees: set.Summary.TotalCleaningFees,
		NetPayout:    stmt.TotalToPay,
		TouristTax:   set.Summary.TotalTouristTax,
		BookingCount: set.Summary.BookingCount,
		TotalNights:  set.Summary.TotalNights,
	}
	if daysInMonth > 0 {
		snapshot.OccupancyRate = round1(float64(set.Summary.TotalNights) / float64(daysInMonth) * 100)
	}
	if set.Summary.TotalNights > 0 {
		snapshot.ADR = round2(set.Summary.TotalRevenue / float64(set.Summary.TotalNights))
	}
	return snapshot, nil
}

func (a *Aggregator) propertyConfig(ctx context.Context, propertyID string) models.PropertyConfig {
	cfg, ok, err := a.properties.Get(ctx, propertyID)
	if err != nil || !ok {
		if err != nil {
			log.Warnf("Property config lookup for %s: %v", propertyID, err)
		}
		return models.PropertyConfig{PropertyID: propertyID}
	}
	return cfg
}

// Trends runs Overview per month and reports revenue and occupancy growth
// between the first and last month. Growth is omitted when the first month
// has no revenue (or occupancy) to grow from.
func (a *Aggregator) Trends(ctx context.Context, propertyIDs []string, months []string) (*models.Trends, error) {
	trends := &models.Trends{Months: make([]models.PortfolioOverview, 0, len(months))}
	for _, month := range months {
		overview, err := a.Overview(ctx, propertyIDs, month)
		if err != nil {
			return nil, err
		}
		trends.Months = append(trends.Months, *overview)
	}
	if len(trends.Months) < 2 {
		return trends, nil
	}

	first := trends.Months[0]
	last := trends.Months[len(trends.Months)-1]
	if first.Totals.GrossRevenue > 0 {
		growth := round1((last.Totals.GrossRevenue - first.Totals.GrossRevenue) / first.Totals.GrossRevenue * 100)
		trends.RevenueGrowth = &growth
	}
	if first.Averages.OccupancyRate > 0 {
		growth := round1((last.Averages.OccupancyRate - first.Averages.OccupancyRate) / first.Averages.OccupancyRate * 100)
		trends.OccupancyGrowth = &growth
	}
	return trends, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
