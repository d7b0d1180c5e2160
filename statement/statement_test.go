package statement

import (
	"math"
	"testing"

	"github.com/jknair0/beforeeach"

	"reservations-service/models"
)

var calc *Calculator

func setUp() {
	calc = NewCalculator(0.23)
}

func tearDown() {
	calc = nil
}

var it = beforeeach.Create(setUp, tearDown)

func TestComputeNonAdminStatement(t *testing.T) {
	it(func() {
		statement := calc.Compute([]Entry{
			{ReservationID: "r1", ReceivedAmount: 1000, HostCommission: 100, CleaningFee: 80},
		}, 0.25, false)

		line := statement.Lines[0]
		if line.CommissionableAmount != 1020 {
			t.Errorf("commissionable: want 1020, got %f", line.CommissionableAmount)
		}
		if line.ManagementCommission != 255.00 {
			t.Errorf("commission: want 255.00, got %f", line.ManagementCommission)
		}
		if statement.CleaningFeesInvoiced != 98.40 {
			t.Errorf("cleaning with VAT: want 98.40, got %f", statement.CleaningFeesInvoiced)
		}
		if statement.TotalToInvoice != 353.40 {
			t.Errorf("total to invoice: want 353.40, got %f", statement.TotalToInvoice)
		}
		if statement.TotalToPay != 646.60 {
			t.Errorf("total to pay: want 646.60, got %f", statement.TotalToPay)
		}
	})
}

func TestComputeAdminOwnedSkipsCommissionAndVAT(t *testing.T) {
	it(func() {
		statement := calc.Compute([]Entry{
			{ReservationID: "r1", ReceivedAmount: 1000, HostCommission: 100, CleaningFee: 80},
		}, 0.25, true)

		if statement.Lines[0].ManagementCommission != 0 {
			t.Errorf("admin-owned commission: want 0, got %f", statement.Lines[0].ManagementCommission)
		}
		if statement.CleaningFeesInvoiced != 80 {
			t.Errorf("admin-owned cleaning should carry no VAT: got %f", statement.CleaningFeesInvoiced)
		}
		if statement.TotalToInvoice != 80 {
			t.Errorf("total to invoice: want 80, got %f", statement.TotalToInvoice)
		}
		if statement.TotalToPay != 920 {
			t.Errorf("total to pay: want 920, got %f", statement.TotalToPay)
		}
	})
}

func TestCommissionableFlooredAtZero(t *testing.T) {
	it(func() {
		statement := calc.Compute([]Entry{
			{ReservationID: "r1", ReceivedAmount: 50, HostCommission: 0, CleaningFee: 80},
		}, 0.25, false)

		line := statement.Lines[0]
		if line.CommissionableAmount != 0 {
			t.Errorf("commissionable should floor at zero, got %f", line.CommissionableAmount)
		}
		if line.ManagementCommission != 0 {
			t.Errorf("commission on floored amount: got %f", line.ManagementCommission)
		}
	})
}

func TestStatementReconciles(t *testing.T) {
	it(func() {
		entriesSets := [][]Entry{
			{
				{ReservationID: "a", ReceivedAmount: 1234.56, HostCommission: 78.90, CleaningFee: 45.67},
				{ReservationID: "b", ReceivedAmount: 999.99, HostCommission: 0.01, CleaningFee: 33.33},
				{ReservationID: "c", ReceivedAmount: 10, HostCommission: 0, CleaningFee: 100},
			},
			{},
			{
				{ReservationID: "d", ReceivedAmount: 0.01, HostCommission: 0.01, CleaningFee: 0.01},
			},
		}
		for _, entries := range entriesSets {
			for _, admin := range []bool{true, false} {
				statement := calc.Compute(entries, 0.2, admin)
				sum := statement.TotalToPay + statement.TotalToInvoice
				if math.Abs(sum-statement.TotalReceived) > 0.01 {
					t.Errorf("statement does not reconcile (admin=%v): pay %f + invoice %f != received %f",
						admin, statement.TotalToPay, statement.TotalToInvoice, statement.TotalReceived)
				}
			}
		}
	})
}

func TestFromReservations(t *testing.T) {
	it(func() {
		entries := FromReservations([]models.Reservation{
			{ID: "r1", TotalPrice: 500, HostCommission: 25, CleaningFee: 60},
		})
		if len(entries) != 1 {
			t.Fatalf("want 1 entry, got %d", len(entries))
		}
		e := entries[0]
		if e.ReservationID != "r1" || e.ReceivedAmount != 500 || e.HostCommission != 25 || e.CleaningFee != 60 {
			t.Errorf("entry: %+v", e)
		}
	})
}
