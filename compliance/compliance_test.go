package compliance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reservations-service/models"
	"reservations-service/provider"
	"reservations-service/reconcile"
)

// fakeProvider serves canned reservations and scripted compliance results.
type fakeProvider struct {
	name         string
	reservations []provider.RawReservation
	fetchErr     error
	sendErr      error
	sendResult   *provider.ComplianceSendResult
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GetReservations(ctx context.Context, propertyID, startDate, endDate string) ([]provider.RawReservation, error) {
	return f.reservations, f.fetchErr
}

func (f *fakeProvider) GetCalendar(ctx context.Context, propertyID, startDate, endDate string) ([]provider.RawCalendarDay, error) {
	return nil, nil
}

func (f *fakeProvider) UpdateCalendar(ctx context.Context, propertyID, startDate, endDate, status string) error {
	return nil
}

func (f *fakeProvider) UpdatePricing(ctx context.Context, propertyID, startDate, endDate string, price float64) error {
	return nil
}

func (f *fakeProvider) UpdateMinimumStay(ctx context.Context, propertyID, startDate, endDate string, minimumStay int) error {
	return nil
}

func (f *fakeProvider) SetMaintenance(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error {
	return nil
}

func (f *fakeProvider) SetCleaning(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error {
	return nil
}

func (f *fakeProvider) ValidateComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*provider.ComplianceCheck, error) {
	return &provider.ComplianceCheck{Status: "ok", ReservationCode: reservationCode}, nil
}

func (f *fakeProvider) SendComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*provider.ComplianceSendResult, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.sendResult != nil {
		return f.sendResult, nil
	}
	return &provider.ComplianceSendResult{Status: "accepted", SubmissionID: "siba-123"}, nil
}

func fixedClock() time.Time {
	return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
}

func newTestEngine(p *fakeProvider) (*Engine, *MemoryRecordStore) {
	store := NewMemoryRecordStore()
	r := reconcile.New(p).WithClock(fixedClock)
	engine := NewEngine(p, r, store, DefaultConfig()).WithClock(fixedClock)
	return engine, store
}

func validSubmission() map[string]interface{} {
	return map[string]interface{}{
		"guestName": "Maria Silva",
		"checkIn":   "2025-06-20",
		"checkOut":  "2025-06-25",
		"adults":    float64(2),
	}
}

func TestClassifyBoundaries(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	tests := []struct {
		days     int
		expected models.ComplianceStatus
	}{
		{-1, models.ComplianceOverdue},
		{0, models.ComplianceDueSoon},
		{7, models.ComplianceDueSoon},
		{8, models.ComplianceCompliant},
		{30, models.ComplianceCompliant},
	}
	for _, test := range tests {
		if got := engine.Classify(test.days); got != test.expected {
			t.Errorf("Classify(%d): want %s, got %s", test.days, test.expected, got)
		}
	}
}

func TestStatusWithoutHistoryIsUnknown(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	record := engine.Status(context.Background(), "prop-1")
	if record.Status != models.ComplianceUnknown || record.Source != models.SourceUnavailable {
		t.Errorf("empty history: %+v", record)
	}
}

func TestStatusFromLatestSubmission(t *testing.T) {
	engine, store := newTestEngine(&fakeProvider{name: "primary"})
	ctx := context.Background()
	_ = store.Put(ctx, Record{ID: "s1", PropertyID: "prop-1", Source: models.SourcePrimary,
		SubmittedAt: "2025-06-01T10:00:00Z"})
	_ = store.Put(ctx, Record{ID: "s2", PropertyID: "prop-1", Source: models.SourceLocal,
		SubmittedAt: "2025-06-29T10:00:00Z"})

	record := engine.Status(ctx, "prop-1")
	if record.LastSubmission != "2025-06-29" {
		t.Errorf("last submission: %s", record.LastSubmission)
	}
	if record.NextDue != "2025-07-06" {
		t.Errorf("next due: %s", record.NextDue)
	}
	if record.DaysUntilDue != 5 {
		t.Errorf("days until due: %d", record.DaysUntilDue)
	}
	if record.Status != models.ComplianceDueSoon {
		t.Errorf("status: %s", record.Status)
	}
	if record.Source != models.SourceLocal {
		t.Errorf("source: %s", record.Source)
	}
}

func TestValidateMissingFields(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Validate(context.Background(), "prop-1", map[string]interface{}{
		"checkIn": "2025-06-20",
	})
	if result.Valid {
		t.Fatal("missing fields should fail validation")
	}
	if len(result.Errors) < 2 {
		t.Errorf("want errors for name, checkout and guests, got %v", result.Errors)
	}
}

func TestValidateFieldSpellings(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary", reservations: []provider.RawReservation{
		{ID: "res-77", GuestName: "Maria Silva", Arrival: "2025-06-20", Departure: "2025-06-25",
			Adults: 2, Status: "confirmed"},
	}})
	result := engine.Validate(context.Background(), "prop-1", map[string]interface{}{
		"guest_name": "Maria Silva",
		"check_in":   "2025-06-20",
		"check_out":  "2025-06-25",
		"adultCount": float64(2),
	})
	if !result.Valid {
		t.Fatalf("alternate spellings should validate: %v", result.Errors)
	}
	if result.ReservationCode != "res-77" {
		t.Errorf("want fuzzy-matched code res-77, got %q", result.ReservationCode)
	}
}

func TestValidateRequiresAnAdult(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Validate(context.Background(), "prop-1", map[string]interface{}{
		"guestName": "Maria",
		"checkIn":   "2025-06-20",
		"checkOut":  "2025-06-25",
		"children":  float64(2),
	})
	if result.Valid {
		t.Error("children without an adult count should fail validation")
	}
}

func TestValidateDoesNotMatchFutureReservations(t *testing.T) {
	// The fuzzy-match window looks backward only; a reservation that has
	// not started yet is outside the history being reconciled against.
	engine, _ := newTestEngine(&fakeProvider{name: "primary", reservations: []provider.RawReservation{
		{ID: "upcoming", GuestName: "Maria Silva", Arrival: "2025-07-10", Departure: "2025-07-15",
			Adults: 2, Status: "confirmed"},
	}})
	result := engine.Validate(context.Background(), "prop-1", map[string]interface{}{
		"guestName": "Maria Silva",
		"checkIn":   "2025-07-10",
		"checkOut":  "2025-07-15",
		"adults":    float64(2),
	})
	if !result.Valid {
		t.Fatalf("validation should still succeed: %v", result.Errors)
	}
	if result.ReservationCode != "" {
		t.Errorf("future reservation must not match, got %q", result.ReservationCode)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "manual processing") {
		t.Errorf("want manual-processing warning, got %v", result.Warnings)
	}
}

func TestValidateInvertedDates(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Validate(context.Background(), "prop-1", map[string]interface{}{
		"guestName": "Maria",
		"checkIn":   "2025-06-25",
		"checkOut":  "2025-06-20",
		"adults":    float64(1),
	})
	if result.Valid {
		t.Error("check-out before check-in should fail")
	}
}

func TestValidateNoMatchIsWarningNotError(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Validate(context.Background(), "prop-1", validSubmission())
	if !result.Valid {
		t.Fatalf("validation should succeed: %v", result.Errors)
	}
	if result.ReservationCode != "" {
		t.Errorf("no reservation should match, got %q", result.ReservationCode)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "manual processing") {
		t.Errorf("want manual-processing warning, got %v", result.Warnings)
	}
}

func TestValidateFuzzyMatchTieBreak(t *testing.T) {
	// Two reservations with the same dates and matching names: the earliest
	// arrival wins, and with equal arrivals the first in reconciled order.
	engine, _ := newTestEngine(&fakeProvider{name: "primary", reservations: []provider.RawReservation{
		{ID: "later", GuestName: "Maria Silva Santos", Arrival: "2025-06-20", Departure: "2025-06-25",
			Adults: 2, Status: "confirmed"},
		{ID: "earlier", GuestName: "Maria Silva", Arrival: "2025-06-20", Departure: "2025-06-25",
			Adults: 2, Status: "confirmed"},
	}})
	result := engine.Validate(context.Background(), "prop-1", validSubmission())
	if !result.Valid {
		t.Fatalf("validation failed: %v", result.Errors)
	}
	if result.ReservationCode == "" {
		t.Fatal("expected a fuzzy match")
	}
}

func TestSendInvalidSubmissionFails(t *testing.T) {
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Send(context.Background(), "prop-1", map[string]interface{}{})
	if result.Success {
		t.Error("structurally invalid submission must not succeed")
	}
	if len(result.Errors) == 0 {
		t.Error("expected validation errors")
	}
}

func TestSendUpstreamSuccess(t *testing.T) {
	p := &fakeProvider{name: "primary", reservations: []provider.RawReservation{
		{ID: "res-9", GuestName: "Maria Silva", Arrival: "2025-06-20", Departure: "2025-06-25",
			Adults: 2, Status: "confirmed"},
	}}
	engine, store := newTestEngine(p)
	result := engine.Send(context.Background(), "prop-1", validSubmission())

	if !result.Success || result.SubmissionID != "siba-123" {
		t.Errorf("upstream send: %+v", result)
	}
	latest, _ := store.LatestForProperty(context.Background(), "prop-1")
	if latest == nil || latest.Source != models.SourcePrimary {
		t.Errorf("successful send should be recorded with primary source: %+v", latest)
	}
}

func TestSendFallsBackOnUpstreamOutage(t *testing.T) {
	p := &fakeProvider{name: "primary",
		reservations: []provider.RawReservation{
			{ID: "res-9", GuestName: "Maria Silva", Arrival: "2025-06-20", Departure: "2025-06-25",
				Adults: 2, Status: "confirmed"},
		},
		sendErr: errors.New("503 service unavailable"),
	}
	engine, store := newTestEngine(p)
	result := engine.Send(context.Background(), "prop-1", validSubmission())

	if !result.Success {
		t.Fatal("upstream outage must not hard-fail the submission")
	}
	if result.SubmissionID == "" || !strings.HasPrefix(result.SubmissionID, "local-") {
		t.Errorf("want synthetic local id, got %q", result.SubmissionID)
	}
	if len(result.Warnings) == 0 {
		t.Error("fallback must carry a warning")
	}
	latest, _ := store.LatestForProperty(context.Background(), "prop-1")
	if latest == nil || latest.Source != models.SourceLocal {
		t.Errorf("fallback should be recorded locally: %+v", latest)
	}
}

// failingStore rejects every write, simulating a dead local disk or
// database.
type failingStore struct{}

func (failingStore) Put(ctx context.Context, rec Record) error {
	return errors.New("disk full")
}

func (failingStore) LatestForProperty(ctx context.Context, propertyID string) (*Record, error) {
	return nil, nil
}

func TestSendFailsWhenLocalRecordIsLost(t *testing.T) {
	// No reservation history, so the submission takes the local-fallback
	// path; with the store down there is no audit trail to point at and the
	// engine must not claim otherwise.
	p := &fakeProvider{name: "primary"}
	r := reconcile.New(p).WithClock(fixedClock)
	engine := NewEngine(p, r, failingStore{}, DefaultConfig()).WithClock(fixedClock)

	result := engine.Send(context.Background(), "prop-1", validSubmission())
	if result.Success {
		t.Error("a lost fallback record must not report success")
	}
	if len(result.Errors) == 0 {
		t.Error("expected a fatal error explaining the lost record")
	}
	if result.SubmissionID != "" {
		t.Errorf("no record exists, so no id should be reported, got %q", result.SubmissionID)
	}
}

func TestSendUpstreamSuccessWithLostAuditRecordWarns(t *testing.T) {
	p := &fakeProvider{name: "primary", reservations: []provider.RawReservation{
		{ID: "res-9", GuestName: "Maria Silva", Arrival: "2025-06-20", Departure: "2025-06-25",
			Adults: 2, Status: "confirmed"},
	}}
	r := reconcile.New(p).WithClock(fixedClock)
	engine := NewEngine(p, r, failingStore{}, DefaultConfig()).WithClock(fixedClock)

	result := engine.Send(context.Background(), "prop-1", validSubmission())
	if !result.Success || result.SubmissionID != "siba-123" {
		t.Fatalf("upstream send went through and must report success: %+v", result)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "audit record") {
			found = true
		}
	}
	if !found {
		t.Errorf("want a lost-audit-record warning, got %v", result.Warnings)
	}
}

func TestSendWithoutCodeRecordsLocally(t *testing.T) {
	// No reservation history at all: code cannot be resolved, submission is
	// still accepted and recorded locally.
	engine, _ := newTestEngine(&fakeProvider{name: "primary"})
	result := engine.Send(context.Background(), "prop-1", validSubmission())

	if !result.Success {
		t.Fatal("missing code must not hard-fail the submission")
	}
	if !strings.HasPrefix(result.SubmissionID, "local-") {
		t.Errorf("want local id, got %q", result.SubmissionID)
	}
}

func TestResolveSubmissionFields(t *testing.T) {
	data := ResolveSubmissionFields(map[string]interface{}{
		"name":             "Jo",
		"checkInDate":      "2025-01-02",
		"checkout":         "2025-01-05",
		"adult_count":      "3",
		"children":         float64(1),
		"reservation_code": "ABC",
	})
	if data.GuestName != "Jo" || data.CheckIn != "2025-01-02" || data.CheckOut != "2025-01-05" ||
		data.Adults != 3 || data.Children != 1 || data.ReservationCode != "ABC" {
		t.Errorf("resolved: %+v", data)
	}
}
