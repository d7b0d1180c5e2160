// Package reconcile merges and filters raw upstream reservations into the
// canonical reservation model.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"

	"reservations-service/models"
	"reservations-service/normalize"
	"reservations-service/provider"
)

const dateLayout = "2006-01-02"

// The sentinel full-range query means "no filtering".
const (
	FullRangeStart = "2020-01-01"
	FullRangeEnd   = "2030-12-31"
)

type Reconciler struct {
	providers []provider.Client
	now       func() time.Time
}

func New(providers ...provider.Client) *Reconciler {
	return &Reconciler{
		providers: providers,
		now:       time.Now,
	}
}

// WithClock overrides the reconciler's notion of "today". Tests only.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile fetches raw reservations for the property from every configured
// provider, merges them (first provider wins on id collisions), and applies
// client-side overlap filtering: a reservation is kept when its arrival or
// its departure falls inside [startDate, endDate] inclusive. A reservation
// fully spanning the window without either endpoint inside it is not
// matched; callers depend on this behavior.
//
// Upstream failure never propagates: if every provider fails the result is
// empty with Status "error", a partial failure degrades to the providers
// that answered.
func (r *Reconciler) Reconcile(ctx context.Context, propertyID, startDate, endDate string) *models.ReservationSet {
	set := &models.ReservationSet{
		PropertyID:   propertyID,
		Status:       "ok",
		Reservations: []models.Reservation{},
	}

	raw, warnings, failures := r.fetchAll(ctx, propertyID, startDate, endDate)
	set.Warnings = warnings
	if failures == len(r.providers) && len(r.providers) > 0 {
		log.Errorf("All providers failed for property %s, returning empty set", propertyID)
		set.Status = "error"
		return set
	}

	filterStart, filterEnd, filtering := parseWindow(startDate, endDate)

	for _, rr := range raw {
		reservation, err := Enrich(rr, propertyID)
		if err != nil {
			log.Warnf("Skipping malformed reservation %s for property %s: %v", rr.ID, propertyID, err)
			set.Warnings = append(set.Warnings, fmt.Sprintf("skipped reservation %s: %v", rr.ID, err))
			continue
		}
		if filtering && !overlaps(reservation, filterStart, filterEnd) {
			continue
		}
		set.Reservations = append(set.Reservations, reservation)
	}

	// Most recent arrivals first.
	sort.SliceStable(set.Reservations, func(i, j int) bool {
		return set.Reservations[i].Arrival > set.Reservations[j].Arrival
	})

	set.Summary = summarize(set.Reservations)
	set.Quality = r.assessQuality(set.Reservations)

	return set
}

func (r *Reconciler) fetchAll(ctx context.Context, propertyID, startDate, endDate string) ([]provider.RawReservation, []string, int) {
	var merged []provider.RawReservation
	var warnings []string
	seen := map[string]bool{}
	failures := 0

	for _, p := range r.providers {
		raw, err := p.GetReservations(ctx, propertyID, startDate, endDate)
		if err != nil {
			log.Errorf("Provider %s failed for property %s: %v", p.Name(), propertyID, err)
			warnings = append(warnings, fmt.Sprintf("provider %s unavailable", p.Name()))
			failures++
			continue
		}
		for _, rr := range raw {
			if rr.ID != "" && seen[rr.ID] {
				continue
			}
			seen[rr.ID] = true
			merged = append(merged, rr)
		}
	}
	return merged, warnings, failures
}

// ResolveGuestEmail applies the ordered field-resolution chain for the guest
// email: guestEmail, email, contactEmail, guestContactEmail, then the
// "not provided" sentinel. Whitespace-only values count as absent.
func ResolveGuestEmail(raw provider.RawReservation) string {
	for _, candidate := range []string{raw.GuestEmail, raw.Email, raw.ContactEmail, raw.GuestContactEmail} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return models.EmailNotProvided
}

// Enrich converts one raw upstream record into the canonical model.
func Enrich(raw provider.RawReservation, propertyID string) (models.Reservation, error) {
	arrival, err := time.Parse(dateLayout, raw.Arrival)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("bad arrival date %q: %w", raw.Arrival, err)
	}
	departure, err := time.Parse(dateLayout, raw.Departure)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("bad departure date %q: %w", raw.Departure, err)
	}
	if !departure.After(arrival) {
		return models.Reservation{}, fmt.Errorf("departure %s not after arrival %s", raw.Departure, raw.Arrival)
	}

	nights := raw.Nights
	if nights <= 0 {
		nights = int(math.Ceil(departure.Sub(arrival).Hours() / 24))
	}

	adults := raw.Adults
	if adults <= 0 {
		adults = 1
	}
	children := raw.Children
	if children < 0 {
		children = 0
	}

	booking := normalize.BookingStatus(raw.Status)
	payment := normalize.PaymentStatus(raw.PaymentStatus, booking)

	reservation := models.Reservation{
		ID:             raw.ID,
		PropertyID:     propertyID,
		GuestName:      strings.TrimSpace(raw.GuestName),
		GuestEmail:     ResolveGuestEmail(raw),
		GuestPhone:     strings.TrimSpace(raw.Phone),
		Arrival:        raw.Arrival,
		Departure:      raw.Departure,
		Nights:         nights,
		Adults:         adults,
		Children:       children,
		TotalPrice:     math.Max(0, raw.TotalPrice),
		CleaningFee:    math.Max(0, raw.CleaningFee),
		TouristTax:     math.Max(0, raw.TouristTax),
		HostCommission: math.Max(0, raw.HostCommission),
		BookingStatus:  booking,
		PaymentStatus:  payment,
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
	}
	if raw.CheckInHour != nil {
		reservation.CheckInTime = fmt.Sprintf("%02d:00", *raw.CheckInHour)
	}
	if raw.CheckOutHour != nil {
		reservation.CheckOutTime = fmt.Sprintf("%02d:00", *raw.CheckOutHour)
	}

	return reservation, nil
}

func parseWindow(startDate, endDate string) (time.Time, time.Time, bool) {
	if startDate == FullRangeStart && endDate == FullRangeEnd {
		return time.Time{}, time.Time{}, false
	}
	start, errStart := time.Parse(dateLayout, startDate)
	end, errEnd := time.Parse(dateLayout, endDate)
	if errStart != nil || errEnd != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func overlaps(reservation models.Reservation, start, end time.Time) bool {
	arrival, errA := time.Parse(dateLayout, reservation.Arrival)
	departure, errD := time.Parse(dateLayout, reservation.Departure)
	if errA != nil || errD != nil {
		return false
	}
	return within(arrival, start, end) || within(departure, start, end)
}

func within(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

func summarize(reservations []models.Reservation) models.SummaryStats {
	summary := models.SummaryStats{BookingCount: len(reservations)}

	var rateSum float64
	rated := 0
	for _, r := range reservations {
		summary.TotalRevenue += r.TotalPrice
		summary.TotalCleaningFees += r.CleaningFee
		summary.TotalTouristTax += r.TouristTax
		summary.TotalNights += r.Nights
		if r.Nights > 0 {
			rateSum += r.TotalPrice / float64(r.Nights)
			rated++
		}
	}
	if rated > 0 {
		summary.AverageNightlyRate = rateSum / float64(rated)
	}
	return summary
}

func (r *Reconciler) assessQuality(reservations []models.Reservation) models.DataQualityReport {
	report := models.DataQualityReport{}

	// Arrivals more than one year past the current year-end are a
	// data-quality signal, not an error.
	horizon := time.Date(r.now().Year()+1, 12, 31, 0, 0, 0, 0, time.UTC)

	for _, res := range reservations {
		if res.GuestEmail == models.EmailNotProvided {
			report.MissingEmail = append(report.MissingEmail, res.ID)
		}
		if res.PaymentStatus == "Unknown" {
			report.UnknownPayment = append(report.UnknownPayment, res.ID)
		}
		if arrival, err := time.Parse(dateLayout, res.Arrival); err == nil && arrival.After(horizon) {
			report.FarFutureArrivals = append(report.FarFutureArrivals, res.ID)
		}
	}
	return report
}
