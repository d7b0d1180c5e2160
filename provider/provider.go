// Package provider defines the boundary to the upstream reservation systems.
// Raw DTOs mirror what the providers actually send; they are converted into
// the canonical model immediately after crossing this boundary and never
// travel further into the engine.
package provider

import "context"

// RawReservation is the upstream wire shape. Providers disagree on where the
// guest email lives, so all observed spellings are carried and resolved
// downstream.
type RawReservation struct {
	ID                string  `json:"id"`
	PropertyID        string  `json:"propertyId"`
	GuestName         string  `json:"guestName"`
	GuestEmail        string  `json:"guestEmail"`
	Email             string  `json:"email"`
	ContactEmail      string  `json:"contactEmail"`
	GuestContactEmail string  `json:"guestContactEmail"`
	Phone             string  `json:"phone"`
	Arrival           string  `json:"arrivalDate"`   // YYYY-MM-DD
	Departure         string  `json:"departureDate"` // YYYY-MM-DD
	CheckInHour       *int    `json:"checkInHour"`
	CheckOutHour      *int    `json:"checkOutHour"`
	Nights            int     `json:"nights"`
	Adults            int     `json:"adults"`
	Children          int     `json:"children"`
	TotalPrice        float64 `json:"totalPrice"`
	CleaningFee       float64 `json:"cleaningFee"`
	TouristTax        float64 `json:"touristTax"`
	HostCommission    float64 `json:"hostCommission"`
	Status            string  `json:"status"`
	PaymentStatus     string  `json:"paymentStatus"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

type RawCalendarDay struct {
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	MinimumStay int     `json:"minimumStay"`
}

type ComplianceCheck struct {
	Status          string `json:"status"`
	ReservationCode string `json:"reservationCode"`
	Details         string `json:"details,omitempty"`
}

type ComplianceSendResult struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submissionId"`
}

// Client is the contract both upstream reservation systems expose. Calls are
// network requests and may fail; the engine always degrades rather than
// propagating these failures.
type Client interface {
	Name() string

	GetReservations(ctx context.Context, propertyID, startDate, endDate string) ([]RawReservation, error)
	GetCalendar(ctx context.Context, propertyID, startDate, endDate string) ([]RawCalendarDay, error)

	UpdateCalendar(ctx context.Context, propertyID, startDate, endDate, status string) error
	UpdatePricing(ctx context.Context, propertyID, startDate, endDate string, price float64) error
	UpdateMinimumStay(ctx context.Context, propertyID, startDate, endDate string, minimumStay int) error
	SetMaintenance(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error
	SetCleaning(ctx context.Context, propertyID, startDate, endDate string, blocked bool) error

	ValidateComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*ComplianceCheck, error)
	SendComplianceSubmission(ctx context.Context, propertyID, reservationCode string) (*ComplianceSendResult, error)
}
