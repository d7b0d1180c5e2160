package models

// BookingStatus is the engine's canonical booking vocabulary. Unrecognized
// upstream values pass through verbatim, so the constants below are the
// known set, not an exhaustive one.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingEnquiry   BookingStatus = "In Enquiry"
	BookingNoShow    BookingStatus = "No Show"
	BookingModified  BookingStatus = "Modified"
	BookingExpired   BookingStatus = "Expired"
	BookingPending   BookingStatus = "Pending"
)

// PaymentStatus is the canonical payment vocabulary. "Unknown" is never a
// terminal value; unresolved cases settle to Pending.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "Paid"
	PaymentPartial  PaymentStatus = "Partial"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
	PaymentPending  PaymentStatus = "Pending"
	PaymentNA       PaymentStatus = "N/A"
)

// EmailNotProvided marks guests whose booking channel withheld the email
// address. The engine never stores an empty string as a valid address.
const EmailNotProvided = "not provided"

type Reservation struct {
	ID             string        `json:"id"`
	PropertyID     string        `json:"property_id"`
	GuestName      string        `json:"guest_name"`
	GuestEmail     string        `json:"guest_email"`
	GuestPhone     string        `json:"guest_phone,omitempty"`
	Arrival        string        `json:"arrival"`   // YYYY-MM-DD
	Departure      string        `json:"departure"` // YYYY-MM-DD
	CheckInTime    string        `json:"check_in_time,omitempty"`  // "HH:00" when the hour is known
	CheckOutTime   string        `json:"check_out_time,omitempty"` // "HH:00" when the hour is known
	Nights         int           `json:"nights"`
	Adults         int           `json:"adults"`
	Children       int           `json:"children"`
	TotalPrice     float64       `json:"total_price"`
	CleaningFee    float64       `json:"cleaning_fee"`
	TouristTax     float64       `json:"tourist_tax"`
	HostCommission float64       `json:"host_commission"`
	BookingStatus  BookingStatus `json:"booking_status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CreatedAt      string        `json:"created_at,omitempty"`
	UpdatedAt      string        `json:"updated_at,omitempty"`
}

type SummaryStats struct {
	BookingCount       int     `json:"booking_count"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalCleaningFees  float64 `json:"total_cleaning_fees"`
	TotalTouristTax    float64 `json:"total_tourist_tax"`
	TotalNights        int     `json:"total_nights"`
	AverageNightlyRate float64 `json:"average_nightly_rate"`
}

// DataQualityReport flags reservations worth a human look. None of these are
// errors; the reconciled set is still usable.
type DataQualityReport struct {
	MissingEmail      []string `json:"missing_email,omitempty"`
	UnknownPayment    []string `json:"unknown_payment,omitempty"`
	FarFutureArrivals []string `json:"far_future_arrivals,omitempty"`
}

type ReservationSet struct {
	PropertyID   string            `json:"property_id"`
	Status       string            `json:"status"` // "ok" or "error"
	Reservations []Reservation     `json:"reservations"`
	Summary      SummaryStats      `json:"summary"`
	Quality      DataQualityReport `json:"quality"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// ComplianceStatus classifies how close a property is to its next required
// regulatory submission.
type ComplianceStatus string

const (
	ComplianceCompliant ComplianceStatus = "compliant"
	ComplianceDueSoon   ComplianceStatus = "due_soon"
	ComplianceOverdue   ComplianceStatus = "overdue"
	ComplianceUnknown   ComplianceStatus = "unknown"
)

// Submission data-source tags.
const (
	SourcePrimary     = "primary"
	SourceLocal       = "local"
	SourceUnavailable = "unavailable"
)

type ComplianceRecord struct {
	PropertyID     string           `json:"property_id"`
	LastSubmission string           `json:"last_submission,omitempty"`
	NextDue        string           `json:"next_due,omitempty"`
	Status         ComplianceStatus `json:"status"`
	DaysUntilDue   int              `json:"days_until_due"` // negative means overdue
	Source         string           `json:"source"`
}

type ValidationResult struct {
	Valid           bool     `json:"valid"`
	ReservationCode string   `json:"reservation_code,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

type SubmissionResult struct {
	Success         bool     `json:"success"`
	SubmissionID    string   `json:"submission_id,omitempty"`
	ReservationCode string   `json:"reservation_code,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}

type DashboardRow struct {
	ComplianceRecord
	PendingSubmissions int     `json:"pending_submissions"`
	OverdueSubmissions int     `json:"overdue_submissions"`
	ComplianceRate     float64 `json:"compliance_rate"`
	Error              string  `json:"error,omitempty"`
}

type StatementLine struct {
	ReservationID        string  `json:"reservation_id"`
	ReceivedAmount       float64 `json:"received_amount"`
	HostCommission       float64 `json:"host_commission"`
	CleaningFee          float64 `json:"cleaning_fee"`
	CommissionableAmount float64 `json:"commissionable_amount"`
	ManagementCommission float64 `json:"management_commission"`
}

type Statement struct {
	CommissionRate       float64         `json:"commission_rate"`
	IsAdminOwned         bool            `json:"is_admin_owned"`
	Lines                []StatementLine `json:"lines"`
	TotalReceived        float64         `json:"total_received"`
	TotalCommission      float64         `json:"total_commission"`
	TotalCleaningFees    float64         `json:"total_cleaning_fees"`
	CleaningFeesInvoiced float64         `json:"cleaning_fees_invoiced"`
	TotalToInvoice       float64         `json:"total_to_invoice"`
	TotalToPay           float64         `json:"total_to_pay"`
}

type PortfolioSnapshot struct {
	PropertyID    string  `json:"property_id"`
	Month         string  `json:"month"` // YYYY-MM
	Status        string  `json:"status"`
	GrossRevenue  float64 `json:"gross_revenue"`
	Commission    float64 `json:"commission"`
	CleaningFees  float64 `json:"cleaning_fees"`
	NetPayout     float64 `json:"net_payout"`
	TouristTax    float64 `json:"tourist_tax"`
	BookingCount  int     `json:"booking_count"`
	TotalNights   int     `json:"total_nights"`
	OccupancyRate float64 `json:"occupancy_rate"`
	ADR           float64 `json:"adr"`
}

type PortfolioTotals struct {
	GrossRevenue float64 `json:"gross_revenue"`
	Commission   float64 `json:"commission"`
	CleaningFees float64 `json:"cleaning_fees"`
	NetPayout    float64 `json:"net_payout"`
	TouristTax   float64 `json:"tourist_tax"`
	BookingCount int     `json:"booking_count"`
	TotalNights  int     `json:"total_nights"`
}

type PortfolioAverages struct {
	OccupancyRate float64 `json:"occupancy_rate"`
	ADR           float64 `json:"adr"`
}

type PortfolioOverview struct {
	Month      string              `json:"month"`
	Properties []PortfolioSnapshot `json:"properties"`
	Totals     PortfolioTotals     `json:"totals"`
	Averages   PortfolioAverages   `json:"averages"`
}

type Trends struct {
	Months           []PortfolioOverview `json:"months"`
	RevenueGrowth    *float64            `json:"revenue_growth,omitempty"`
	OccupancyGrowth  *float64            `json:"occupancy_growth,omitempty"`
}

// PropertyConfig carries the per-property billing settings used by statements
// and portfolio rollups.
type PropertyConfig struct {
	PropertyID     string  `json:"property_id"`
	CommissionRate float64 `json:"commission_rate"`
	IsAdminOwned   bool    `json:"is_admin_owned"`
}
