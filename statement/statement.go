// Package statement computes owner financial statements. All money math
// runs through decimals and is rounded half-up to the cent, so the statement
// totals always reconcile exactly.
package statement

import (
	"github.com/shopspring/decimal"

	"reservations-service/models"
)

// Entry is one reservation's raw financial inputs.
type Entry struct {
	ReservationID  string  `json:"reservation_id"`
	ReceivedAmount float64 `json:"received_amount"`
	HostCommission float64 `json:"host_commission"`
	CleaningFee    float64 `json:"cleaning_fee"`
}

type Calculator struct {
	cleaningVATRate decimal.Decimal
}

// NewCalculator builds a calculator with the given cleaning-fee VAT rate
// (0.23 in the operating jurisdiction).
func NewCalculator(cleaningVATRate float64) *Calculator {
	return &Calculator{
		cleaningVATRate: decimal.NewFromFloat(cleaningVATRate),
	}
}

// FromReservations maps canonical reservations onto statement entries. The
// reservation total is already net of all deductions, so it is the received
// amount as-is.
func FromReservations(reservations []models.Reservation) []Entry {
	entries := make([]Entry, 0, len(reservations))
	for _, r := range reservations {
		entries = append(entries, Entry{
			ReservationID:  r.ID,
			ReceivedAmount: r.TotalPrice,
			HostCommission: r.HostCommission,
			CleaningFee:    r.CleaningFee,
		})
	}
	return entries
}

// Compute builds the owner statement. Per line:
//
//	commissionable = max(0, received + hostCommission - cleaningFee)
//	managementCommission = isAdminOwned ? 0 : round(rate * commissionable, 2)
//
// The management commission already embeds VAT for non-admin properties;
// cleaning fees get the separate VAT surcharge only when the property is not
// admin-owned. totalToPay + totalToInvoice always equals totalReceived.
func (c *Calculator) Compute(entries []Entry, commissionRate float64, isAdminOwned bool) models.Statement {
	rate := decimal.NewFromFloat(commissionRate)
	statement := models.Statement{
		CommissionRate: commissionRate,
		IsAdminOwned:   isAdminOwned,
		Lines:          make([]models.StatementLine, 0, len(entries)),
	}

	totalReceived := decimal.Zero
	totalCommission := decimal.Zero
	totalCleaning := decimal.Zero
	cleaningInvoiced := decimal.Zero

	for _, entry := range entries {
		received := decimal.NewFromFloat(entry.ReceivedAmount)
		hostCommission := decimal.NewFromFloat(entry.HostCommission)
		cleaningFee := decimal.NewFromFloat(entry.CleaningFee)

		commissionable := received.Add(hostCommission).Sub(cleaningFee)
		if commissionable.IsNegative() {
			commissionable = decimal.Zero
		}

		commission := decimal.Zero
		if !isAdminOwned {
			commission = rate.Mul(commissionable).Round(2)
		}

		invoicedCleaning := cleaningFee
		if !isAdminOwned {
			invoicedCleaning = cleaningFee.Add(cleaningFee.Mul(c.cleaningVATRate)).Round(2)
		}

		totalReceived = totalReceived.Add(received)
		totalCommission = totalCommission.Add(commission)
		totalCleaning = totalCleaning.Add(cleaningFee)
		cleaningInvoiced = cleaningInvoiced.Add(invoicedCleaning)

		statement.Lines = append(statement.Lines, models.StatementLine{
			ReservationID:        entry.ReservationID,
			ReceivedAmount:       entry.ReceivedAmount,
			HostCommission:       entry.HostCommission,
			CleaningFee:          entry.CleaningFee,
			CommissionableAmount: toFloat(commissionable),
			ManagementCommission: toFloat(commission),
		})
	}

	totalToInvoice := totalCommission.Add(cleaningInvoiced).Round(2)
	totalToPay := totalReceived.Sub(totalToInvoice).Round(2)

	statement.TotalReceived = toFloat(totalReceived)
	statement.TotalCommission = toFloat(totalCommission)
	statement.TotalCleaningFees = toFloat(totalCleaning)
	statement.CleaningFeesInvoiced = toFloat(cleaningInvoiced)
	statement.TotalToInvoice = toFloat(totalToInvoice)
	statement.TotalToPay = toFloat(totalToPay)
	return statement
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
