/*
reporter.go - Read-only projections over the store

PURPOSE:
  Shapes reservation and transaction listings for reporting clients. Pure
  functions over snapshots; nothing here mutates the store.

  Transaction rows decode the kind/amount pairing: RESERVATION rows report
  the snapshot's down payment, CANCELLATION rows report the refund recorded
  at cancellation time.
*/
package booking

import (
	"github.com/shopspring/decimal"

	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// REPORT ROWS
// =============================================================================

// ReservationRow is one line of the reservations report.
type ReservationRow struct {
	ReservationID int             `json:"reservation_id"`
	CustomerID    string          `json:"customer_id"`
	Resource      string          `json:"resource"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	DownPayment   decimal.Decimal `json:"down_payment"`
}

// TransactionRow is one line of the financial report.
type TransactionRow struct {
	TransactionID   int             `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
	ReservationID   int             `json:"reservation_id"`
	CustomerID      string          `json:"customer_id"`
	Resource        string          `json:"resource"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Amount          decimal.Decimal `json:"transaction_amount"`
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// ReservationsReport filters reservations to those starting within
// [start, end], optionally restricted to one customer. Empty customerID
// matches everyone.
func ReservationsReport(snapshot []Reservation, start, end calendar.Date, customerID string) []ReservationRow {
	rows := []ReservationRow{}
	for _, r := range snapshot {
		if customerID != "" && r.CustomerID != customerID {
			continue
		}
		if !r.StartDate.Between(start, end) {
			continue
		}
		rows = append(rows, ReservationRow{
			ReservationID: r.ID,
			CustomerID:    r.CustomerID,
			Resource:      string(r.Resource),
			StartDate:     r.StartDate.String(),
			EndDate:       r.EndDate.String(),
			StartTime:     r.StartTime.String(),
			EndTime:       r.EndTime.String(),
			TotalCost:     r.TotalCost,
			DownPayment:   r.DownPayment,
		})
	}
	return rows
}

// TransactionsReport filters transactions to those dated within [start, end].
func TransactionsReport(transactions []Transaction, start, end calendar.Date) []TransactionRow {
	rows := []TransactionRow{}
	for _, t := range transactions {
		if !t.Date.Between(start, end) {
			continue
		}
		amount := t.Snapshot.DownPayment
		if t.Kind == KindCancellation {
			amount = t.Amount
		}
		rows = append(rows, TransactionRow{
			TransactionID:   t.ID,
			TransactionType: string(t.Kind),
			TransactionDate: t.Date.String(),
			ReservationID:   t.Snapshot.ID,
			CustomerID:      t.Snapshot.CustomerID,
			Resource:        string(t.Snapshot.Resource),
			TotalCost:       t.Snapshot.TotalCost,
			Amount:          amount,
		})
	}
	return rows
}
