// Package compliance derives per-property regulatory submission state and
// runs the validate/send workflow with a local fallback. A submission that
// cannot reach the regulator is recorded locally and reported as a success
// with a warning; compliance reporting must never be silently lost.
package compliance

import (
	"context"
	"time"

	"github.com/apex/log"

	"reservations-service/models"
	"reservations-service/provider"
	"reservations-service/reconcile"
	"reservations-service/repository"
)

const dateLayout = "2006-01-02"

// Record is one compliance submission held in the record store, whether it
// reached the regulator or only the local fallback.
type Record struct {
	ID              string `json:"id"`
	PropertyID      string `json:"property_id"`
	ReservationCode string `json:"reservation_code,omitempty"`
	GuestName       string `json:"guest_name"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Source          string `json:"source"` // primary or local
	SubmittedAt     string `json:"submitted_at"`
}

// RecordStore is the persistence boundary for submissions. Durable storage
// is an external collaborator; the engine only depends on this interface.
type RecordStore interface {
	Put(ctx context.Context, rec Record) error
	LatestForProperty(ctx context.Context, propertyID string) (*Record, error)
}

// MemoryRecordStore keeps submissions in process, backed by the generic
// keyed store.
type MemoryRecordStore struct {
	store *repository.Memory[Record]
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{store: repository.NewMemory[Record]()}
}

func (m *MemoryRecordStore) Put(ctx context.Context, rec Record) error {
	return m.store.Put(ctx, rec.ID, rec)
}

func (m *MemoryRecordStore) LatestForProperty(ctx context.Context, propertyID string) (*Record, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	var latest *Record
	for i := range records {
		if records[i].PropertyID != propertyID {
			continue
		}
		if latest == nil || records[i].SubmittedAt > latest.SubmittedAt {
			latest = &records[i]
		}
	}
	return latest, nil
}

type Config struct {
	GraceDays         int // submission window after checkout
	DueSoonDays       int // amber threshold on days-until-due
	LookbackDays      int // fuzzy-match history window
	MetricsWindowDays int // dashboard reservation metrics window
}

func DefaultConfig() Config {
	return Config{GraceDays: 7, DueSoonDays: 7, LookbackDays: 90, MetricsWindowDays: 30}
}

type Engine struct {
	primary    provider.Client
	reconciler *reconcile.Reconciler
	store      RecordStore
	cfg        Config
	now        func() time.Time
}

func NewEngine(primary provider.Client, reconciler *reconcile.Reconciler, store RecordStore, cfg Config) *Engine {
	if cfg.GraceDays <= 0 {
		cfg.GraceDays = 7
	}
	if cfg.DueSoonDays <= 0 {
		cfg.DueSoonDays = 7
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 90
	}
	if cfg.MetricsWindowDays <= 0 {
		cfg.MetricsWindowDays = 30
	}
	return &Engine{
		primary:    primary,
		reconciler: reconciler,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithClock overrides "today". Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Classify maps a signed days-until-due count onto the status ladder.
// Exactly zero days left is due_soon, not overdue.
func (e *Engine) Classify(daysUntilDue int) models.ComplianceStatus {
	switch {
	case daysUntilDue < 0:
		return models.ComplianceOverdue
	case daysUntilDue <= e.cfg.DueSoonDays:
		return models.ComplianceDueSoon
	default:
		return models.ComplianceCompliant
	}
}

// Status recomputes the property's compliance record from the latest stored
// submission. Nothing is cached; callers always see current state.
func (e *Engine) Status(ctx context.Context, propertyID string) models.ComplianceRecord {
	record := models.ComplianceRecord{
		PropertyID: propertyID,
		Status:     models.ComplianceUnknown,
		Source:     models.SourceUnavailable,
	}

	latest, err := e.store.LatestForProperty(ctx, propertyID)
	if err != nil {
		log.Errorf("Reading submission history for property %s: %v", propertyID, err)
		return record
	}
	if latest == nil {
		return record
	}

	if len(latest.SubmittedAt) < len(dateLayout) {
		log.Warnf("Unparseable submission date %q for property %s", latest.SubmittedAt, propertyID)
		return record
	}
	submitted, err := time.Parse(dateLayout, latest.SubmittedAt[:len(dateLayout)])
	if err != nil {
		log.Warnf("Unparseable submission date %q for property %s", latest.SubmittedAt, propertyID)
		return record
	}

	today := e.today()
	nextDue := submitted.AddDate(0, 0, e.cfg.GraceDays)
	daysUntilDue := int(nextDue.Sub(today).Hours() / 24)

	record.LastSubmission = submitted.Format(dateLayout)
	record.NextDue = nextDue.Format(dateLayout)
	record.DaysUntilDue = daysUntilDue
	record.Status = e.Classify(daysUntilDue)
	record.Source = latest.Source
	return record
}

func (e *Engine) today() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
