package compliance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"

	"reservations-service/models"
)

// SubmissionData is the typed form of a caller-supplied compliance
// submission. Callers send loosely-spelled JSON; ResolveSubmissionFields
// converts it at the boundary and nothing downstream touches raw maps.
type SubmissionData struct {
	GuestName       string
	CheckIn         string
	CheckOut        string
	Adults          int
	Children        int
	ReservationCode string
	GuestEmail      string
}

// Ordered field-resolution chains, first non-empty spelling wins.
var fieldChains = map[string][]string{
	"guestName":       {"guestName", "guest_name", "name"},
	"checkIn":         {"checkIn", "checkin", "check_in", "checkInDate", "arrival"},
	"checkOut":        {"checkOut", "checkout", "check_out", "checkOutDate", "departure"},
	"adults":          {"adults", "adultCount", "adult_count", "guests"},
	"children":        {"children", "childCount", "child_count"},
	"reservationCode": {"reservationCode", "reservation_code", "code", "bookingCode"},
	"guestEmail":      {"guestEmail", "email"},
}

// ResolveSubmissionFields normalizes field names across the spellings the
// dashboard and its integrations are known to send.
func ResolveSubmissionFields(raw map[string]interface{}) SubmissionData {
	return SubmissionData{
		GuestName:       resolveString(raw, fieldChains["guestName"]),
		CheckIn:         resolveString(raw, fieldChains["checkIn"]),
		CheckOut:        resolveString(raw, fieldChains["checkOut"]),
		Adults:          resolveInt(raw, fieldChains["adults"]),
		Children:        resolveInt(raw, fieldChains["children"]),
		ReservationCode: resolveString(raw, fieldChains["reservationCode"]),
		GuestEmail:      resolveString(raw, fieldChains["guestEmail"]),
	}
}

func resolveString(raw map[string]interface{}, chain []string) string {
	for _, key := range chain {
		if value, ok := raw[key]; ok {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func resolveInt(raw map[string]interface{}, chain []string) int {
	for _, key := range chain {
		value, ok := raw[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64: // JSON numbers decode as float64
			return int(v)
		case int:
			return v
		case string:
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err == nil {
				return n
			}
		}
	}
	return 0
}

// Validate checks a caller-supplied submission. Structural failures abort
// with an error list. A missing reservation code is recovered by fuzzy
// matching against the property's recent reservation history; a failed
// lookup downgrades to a warning, never an error.
func (e *Engine) Validate(ctx context.Context, propertyID string, raw map[string]interface{}) models.ValidationResult {
	data := ResolveSubmissionFields(raw)
	result := models.ValidationResult{}

	if data.GuestName == "" {
		result.Errors = append(result.Errors, "guest name is required")
	}
	if data.CheckIn == "" {
		result.Errors = append(result.Errors, "check-in date is required")
	}
	if data.CheckOut == "" {
		result.Errors = append(result.Errors, "check-out date is required")
	}
	if data.Adults <= 0 {
		result.Errors = append(result.Errors, "at least one adult is required")
	}

	if data.CheckIn != "" && data.CheckOut != "" {
		checkIn, errIn := time.Parse(dateLayout, data.CheckIn)
		checkOut, errOut := time.Parse(dateLayout, data.CheckOut)
		switch {
		case errIn != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("invalid check-in date %q", data.CheckIn))
		case errOut != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("invalid check-out date %q", data.CheckOut))
		case !checkOut.After(checkIn):
			result.Errors = append(result.Errors, "check-out must be after check-in")
		}
	}

	if len(result.Errors) > 0 {
		return result
	}
	result.Valid = true

	if data.ReservationCode != "" {
		result.ReservationCode = data.ReservationCode
	} else {
		code, warning := e.locateReservation(ctx, propertyID, data)
		result.ReservationCode = code
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	if result.ReservationCode != "" {
		if warning := e.checkUpstream(ctx, propertyID, result.ReservationCode); warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}
	return result
}

// checkUpstream confirms the reservation code with the regulatory system.
// An unreachable or unhappy upstream is a warning; the submission can still
// fall back to local recording.
func (e *Engine) checkUpstream(ctx context.Context, propertyID, reservationCode string) string {
	check, err := e.primary.ValidateComplianceSubmission(ctx, propertyID, reservationCode)
	if err != nil {
		log.Warnf("Upstream compliance validation unavailable for property %s: %v", propertyID, err)
		return "upstream validation unavailable"
	}
	if check == nil {
		return ""
	}
	if check.Status != "" && check.Status != "ok" && check.Status != "valid" {
		return fmt.Sprintf("upstream validation reported status %q", check.Status)
	}
	return ""
}

// locateReservation fuzzy-matches the submission against recent reservation
// history: case-insensitive guest-name substring, exact check-in and
// check-out. The window is strictly backward-looking; an in-progress stay
// still matches through its arrival date. When several reservations match,
// the earliest arrival wins so the result is deterministic.
func (e *Engine) locateReservation(ctx context.Context, propertyID string, data SubmissionData) (string, string) {
	today := e.today()
	start := today.AddDate(0, 0, -e.cfg.LookbackDays).Format(dateLayout)
	end := today.Format(dateLayout)

	set := e.reconciler.Reconcile(ctx, propertyID, start, end)
	if set.Status != "ok" {
		log.Warnf("Reservation lookup unavailable for property %s", propertyID)
		return "", "reservation history unavailable; manual processing will be required"
	}

	var matches []models.Reservation
	needle := strings.ToLower(data.GuestName)
	for _, r := range set.Reservations {
		if r.Arrival != data.CheckIn || r.Departure != data.CheckOut {
			continue
		}
		if !strings.Contains(strings.ToLower(r.GuestName), needle) &&
			!strings.Contains(needle, strings.ToLower(r.GuestName)) {
			continue
		}
		matches = append(matches, r)
	}
	if len(matches) == 0 {
		return "", "no matching reservation found; manual processing will be required"
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Arrival < matches[j].Arrival
	})
	return matches[0].ID, ""
}
