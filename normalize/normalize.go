package normalize

import (
	"strings"

	"reservations-service/models"
)

// Booking-status synonym table. Keys are lower-cased, trimmed raw values.
var bookingSynonyms = map[string]models.BookingStatus{
	"confirmed": models.BookingConfirmed,
	"active":    models.BookingConfirmed,
	"booked":    models.BookingConfirmed,
	"reserved":  models.BookingConfirmed,
	"accepted":  models.BookingConfirmed,

	"cancelled":        models.BookingCancelled,
	"canceled":         models.BookingCancelled,
	"cancelledbyguest": models.BookingCancelled,
	"cancelledbyhost":  models.BookingCancelled,
	"cancelledbyadmin": models.BookingCancelled,
	"declined":         models.BookingCancelled,

	"inquiry": models.BookingEnquiry,
	"enquiry": models.BookingEnquiry,
	"request": models.BookingEnquiry,

	"noshow":  models.BookingNoShow,
	"no-show": models.BookingNoShow,
	"no_show": models.BookingNoShow,

	"modified": models.BookingModified,
	"changed":  models.BookingModified,
	"altered":  models.BookingModified,

	"expired":  models.BookingExpired,
	"timedout": models.BookingExpired,

	"pending":   models.BookingPending,
	"tentative": models.BookingPending,
	"awaiting":  models.BookingPending,
}

var paymentSynonyms = map[string]models.PaymentStatus{
	"paid":      models.PaymentPaid,
	"completed": models.PaymentPaid,
	"success":   models.PaymentPaid,
	"settled":   models.PaymentPaid,

	"partial":        models.PaymentPartial,
	"partially_paid": models.PaymentPartial,
	"partiallypaid":  models.PaymentPartial,

	"failed":   models.PaymentFailed,
	"declined": models.PaymentFailed,
	"error":    models.PaymentFailed,

	"refunded":   models.PaymentRefunded,
	"cancelled":  models.PaymentRefunded,
	"canceled":   models.PaymentRefunded,
	"chargeback": models.PaymentRefunded,
}

// BookingStatus maps a raw upstream booking status to the canonical
// vocabulary. It is total: an unrecognized value is returned trimmed but
// otherwise verbatim, so new upstream statuses flow through untouched.
func BookingStatus(raw string) models.BookingStatus {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := bookingSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return models.BookingStatus(trimmed)
}

// PaymentStatus derives the canonical payment status from the raw upstream
// payment value and the already-normalized booking status. The rules apply
// in order:
//
//  1. Cancelled or Expired bookings have no payment state (N/A).
//  2. Enquiry and Pending bookings are Pending.
//  3. An absent raw value is derived from the booking status.
//  4. A raw "unknown" is treated as absent.
//  5. Everything else maps through the synonym table, passing through
//     verbatim when unrecognized.
//
// The function never returns "Unknown".
func PaymentStatus(raw string, booking models.BookingStatus) models.PaymentStatus {
	switch booking {
	case models.BookingCancelled, models.BookingExpired:
		return models.PaymentNA
	case models.BookingEnquiry, models.BookingPending:
		return models.PaymentPending
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "unknown") {
		return deriveFromBooking(booking)
	}

	if canonical, ok := paymentSynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return models.PaymentStatus(trimmed)
}

func deriveFromBooking(booking models.BookingStatus) models.PaymentStatus {
	switch booking {
	case models.BookingConfirmed, models.BookingModified:
		return models.PaymentPaid
	}
	return models.PaymentPending
}
