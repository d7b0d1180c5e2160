package compliance

import (
	"context"
	"sort"
	"time"

	"github.com/apex/log"

	"reservations-service/fanout"
	"reservations-service/models"
)

// Priority order for dashboard rows. Lower sorts first.
var statusPriority = map[models.ComplianceStatus]int{
	models.ComplianceOverdue:   0,
	models.ComplianceDueSoon:   1,
	models.ComplianceCompliant: 2,
	models.ComplianceUnknown:   3,
}

// Dashboard combines each property's compliance status with its recent
// submission workload. Properties are processed in parallel with per-item
// failure boundaries: one dead upstream yields one error row, never an
// empty dashboard.
func (e *Engine) Dashboard(ctx context.Context, propertyIDs []string) []models.DashboardRow {
	outcomes := fanout.Settle(ctx, propertyIDs, func(ctx context.Context, propertyID string) (models.DashboardRow, error) {
		return e.dashboardRow(ctx, propertyID), nil
	})

	rows := make([]models.DashboardRow, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			log.Errorf("Dashboard row for property %s: %v", outcome.Key, outcome.Err)
			rows = append(rows, models.DashboardRow{
				ComplianceRecord: models.ComplianceRecord{
					PropertyID: outcome.Key,
					Status:     models.ComplianceUnknown,
					Source:     models.SourceUnavailable,
				},
				ComplianceRate: 100,
				Error:          outcome.Err.Error(),
			})
			continue
		}
		rows = append(rows, outcome.Value)
	}

	// Most urgent first; ties keep the caller's property order.
	sort.SliceStable(rows, func(i, j int) bool {
		return statusPriority[rows[i].Status] < statusPriority[rows[j].Status]
	})
	return rows
}

func (e *Engine) dashboardRow(ctx context.Context, propertyID string) models.DashboardRow {
	row := models.DashboardRow{
		ComplianceRecord: e.Status(ctx, propertyID),
	}

	today := e.today()
	windowStart := today.AddDate(0, 0, -e.cfg.MetricsWindowDays)
	set := e.reconciler.Reconcile(ctx, propertyID, windowStart.Format(dateLayout), today.Format(dateLayout))
	if set.Status != "ok" {
		row.Status = models.ComplianceUnknown
		row.Source = models.SourceUnavailable
		row.ComplianceRate = 100
		row.Error = "reservation data unavailable"
		return row
	}

	pending, overdue := e.submissionWorkload(set.Reservations, today)
	row.PendingSubmissions = pending
	row.OverdueSubmissions = overdue
	if pending > 0 {
		row.ComplianceRate = float64(pending-overdue) / float64(pending) * 100
	} else {
		row.ComplianceRate = 100
	}
	return row
}

// submissionWorkload counts reservations with a checkout inside the metrics
// window (pending) and the subset whose checkout is already more than the
// grace window in the past (overdue).
func (e *Engine) submissionWorkload(reservations []models.Reservation, today time.Time) (pending, overdue int) {
	graceCutoff := today.AddDate(0, 0, -e.cfg.GraceDays)
	for _, r := range reservations {
		checkout, err := time.Parse(dateLayout, r.Departure)
		if err != nil {
			continue
		}
		if checkout.After(today) {
			continue
		}
		pending++
		if checkout.Before(graceCutoff) {
			overdue++
		}
	}
	return pending, overdue
}
