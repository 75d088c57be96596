/*
Package booking is the reservation admission and pricing engine for the
MPCS facility.

PURPOSE:
  Customers reserve the shared workshop or one of five special machines.
  This package decides whether a proposed reservation is legal (business
  hours, capacity, cooldowns, interference, quotas, advance windows),
  prices admitted reservations, computes refunds on cancellation, and
  records every admission and cancellation as an immutable transaction.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource:    the six bookable resource classes with their capacities
  - Reservation: one confirmed booking, possibly recurring over days
  - Transaction: an audit record of a reservation or a cancellation
  - Request:     an unpriced candidate reservation entering admission

DESIGN PRINCIPLES:
  1. Immutability: transactions are appended, never modified
  2. Precision: money is decimal.Decimal, never float
  3. Purity: admission rules and reports are pure over store snapshots

SEE ALSO:
  - policy.go:  the twelve admission rules
  - pricing.go: cost, discount, down payment, refund formulae
  - engine.go:  orchestration and store mutation
*/
package booking

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// RESOURCE - The six bookable resource classes
// =============================================================================

type Resource string

const (
	Workshop   Resource = "workshop"
	Microvac   Resource = "microvac"
	Irradiator Resource = "irradiator"
	Extruder   Resource = "extruder"
	HVC        Resource = "hvc"
	Harvester  Resource = "harvester"
)

// capacity is the number of instances of each resource that may be in use
// during any single half-hour slot.
var capacity = map[Resource]int{
	Workshop:   15,
	Microvac:   2,
	Irradiator: 2,
	Extruder:   3,
	HVC:        1,
	Harvester:  1,
}

// Known reports whether r is a resource the facility owns.
func (r Resource) Known() bool {
	_, ok := capacity[r]
	return ok
}

// Special reports whether r is a machine rather than the shared workshop.
func (r Resource) Special() bool { return r != Workshop }

// Capacity returns the per-half-hour instance limit for r, 0 if unknown.
func (r Resource) Capacity() int { return capacity[r] }

// =============================================================================
// RESERVATION - One confirmed booking
// =============================================================================

// Reservation is one confirmed booking of one resource across one or more
// contiguous days, at the same time-of-day window each day.
type Reservation struct {
	ID         int
	CustomerID string
	Resource   Resource

	StartDate calendar.Date
	EndDate   calendar.Date
	StartTime calendar.Clock
	EndTime   calendar.Clock

	// BookedOn is the date the reservation was made.
	BookedOn calendar.Date

	TotalCost   decimal.Decimal
	DownPayment decimal.Decimal
}

// ActiveAt reports whether the reservation occupies half-hour slot t on day d.
func (r Reservation) ActiveAt(d calendar.Date, t calendar.HalfHour) bool {
	if !d.Between(r.StartDate, r.EndDate) {
		return false
	}
	return t >= r.StartTime.Index() && t < r.EndTime.Index()
}

// ActiveOn reports whether the reservation occupies any slot on day d.
func (r Reservation) ActiveOn(d calendar.Date) bool {
	return d.Between(r.StartDate, r.EndDate)
}

// Days expands the reservation's inclusive date range.
func (r Reservation) Days() []calendar.Date {
	return calendar.DaysInRange(r.StartDate, r.EndDate)
}

// =============================================================================
// TRANSACTION - Immutable audit record
// =============================================================================

type TransactionKind string

const (
	KindReservation  TransactionKind = "RESERVATION"
	KindCancellation TransactionKind = "CANCELLATION"
)

// Transaction records either a reservation creation or a cancellation.
// Transactions are append-only: a cancellation keeps the full snapshot of
// the reservation it refers to even after that reservation is deleted.
type Transaction struct {
	ID   int
	Kind TransactionKind

	// Amount is the down payment for RESERVATION transactions and the
	// refund (possibly zero) for CANCELLATION transactions.
	Amount decimal.Decimal

	Date     calendar.Date
	Snapshot Reservation

	// Timestamp is wall-clock unix seconds at the moment of recording.
	Timestamp int64
	StaffID   string
}

// WireKind is the on-disk encoding of kind and amount: "RESERVATION" or
// "CANCELLATION$<amount>".
func (t Transaction) WireKind() string {
	if t.Kind == KindCancellation {
		return fmt.Sprintf("%s$%s", KindCancellation, t.Amount)
	}
	return string(t.Kind)
}

// ParseWireKind decodes the on-disk kind string. For RESERVATION records the
// amount is not encoded in the kind; the caller takes it from the snapshot's
// down payment.
func ParseWireKind(s string) (TransactionKind, decimal.Decimal, error) {
	kind, amount, split := strings.Cut(s, "$")
	switch TransactionKind(kind) {
	case KindReservation:
		return KindReservation, decimal.Zero, nil
	case KindCancellation:
		if !split {
			return KindCancellation, decimal.Zero, nil
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return "", decimal.Zero, fmt.Errorf("invalid transaction amount %q: %w", amount, err)
		}
		return KindCancellation, amt, nil
	default:
		return "", decimal.Zero, fmt.Errorf("invalid transaction kind %q", s)
	}
}

// =============================================================================
// REQUEST AND RESULTS - Engine surface records
// =============================================================================

// Request is a fully parsed candidate reservation entering admission.
// Pricing fields are computed by the engine, not supplied by the caller.
type Request struct {
	CustomerID string
	Resource   Resource
	StartDate  calendar.Date
	EndDate    calendar.Date
	StartTime  calendar.Clock
	EndTime    calendar.Clock
	BookedOn   calendar.Date
}

// Days expands the candidate's inclusive date range.
func (q Request) Days() []calendar.Date {
	return calendar.DaysInRange(q.StartDate, q.EndDate)
}

// AdmitResult is the positive outcome of an admission.
type AdmitResult struct {
	ReservationID int
	Discount      int // percent, 0 or 25
	TotalCost     decimal.Decimal
	DownPayment   decimal.Decimal
}

// CancelResult is the positive outcome of a cancellation.
type CancelResult struct {
	PercentReturned int // 75, 50 or 0
	Refund          decimal.Decimal
}
