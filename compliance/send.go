package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"reservations-service/models"
)

// Send validates and submits one compliance report. Upstream
// unavailability, or a submission with no resolvable reservation code, falls
// back to a local record and still reports success: the record is the audit
// trail a human can replay later. Hard failure is reserved for structural
// validation errors and for the one case the fallback cannot cover — the
// local record itself could not be stored.
func (e *Engine) Send(ctx context.Context, propertyID string, raw map[string]interface{}) models.SubmissionResult {
	validation := e.Validate(ctx, propertyID, raw)
	if !validation.Valid {
		return models.SubmissionResult{
			Success: false,
			Errors:  validation.Errors,
		}
	}

	data := ResolveSubmissionFields(raw)
	result := models.SubmissionResult{
		Success:         true,
		ReservationCode: validation.ReservationCode,
		Warnings:        validation.Warnings,
	}

	if validation.ReservationCode != "" {
		sent, err := e.primary.SendComplianceSubmission(ctx, propertyID, validation.ReservationCode)
		if err == nil {
			result.SubmissionID = sent.SubmissionID
			// The upstream submission went through; a failed audit write
			// does not undo it, so this stays a warning.
			if recErr := e.record(ctx, propertyID, validation.ReservationCode, data, models.SourcePrimary, sent.SubmissionID); recErr != nil {
				log.Errorf("%v", recErr)
				result.Warnings = append(result.Warnings, "submission accepted upstream but the audit record could not be stored")
			}
			return result
		}
		log.Errorf("Compliance send failed for property %s (code %s): %v", propertyID, validation.ReservationCode, err)
		result.Warnings = append(result.Warnings, "regulatory system unreachable; submission recorded locally")
	} else {
		result.Warnings = append(result.Warnings, "no reservation code resolved; submission recorded locally")
	}

	localID := e.localSubmissionID()
	if err := e.record(ctx, propertyID, validation.ReservationCode, data, models.SourceLocal, localID); err != nil {
		log.Errorf("%v", err)
		return models.SubmissionResult{
			Success:         false,
			ReservationCode: validation.ReservationCode,
			Errors:          []string{"submission could not be stored; even the local fallback record was lost"},
		}
	}
	result.SubmissionID = localID
	return result
}

func (e *Engine) record(ctx context.Context, propertyID, code string, data SubmissionData, source, submissionID string) error {
	rec := Record{
		ID:              submissionID,
		PropertyID:      propertyID,
		ReservationCode: code,
		GuestName:       data.GuestName,
		CheckIn:         data.CheckIn,
		CheckOut:        data.CheckOut,
		Source:          source,
		SubmittedAt:     e.now().UTC().Format(time.RFC3339),
	}
	if err := e.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("recording submission %s for property %s: %w", submissionID, propertyID, err)
	}
	return nil
}

func (e *Engine) localSubmissionID() string {
	return fmt.Sprintf("local-%s-%s", e.now().UTC().Format("20060102150405"), uuid.NewString()[:8])
}
