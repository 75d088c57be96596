/*
pricing.go - Cost, discount, down payment and refund formulae

PURPOSE:
  Pure money arithmetic for admitted reservations and cancellations.

PRICING:
  slots      = window half-hours x number of days (inclusive range)
  total cost = slots x per-slot base price
  discount   = 25% when booked at least 14 days before the start date
  down pay   = 0 for the workshop, 50% of total otherwise

  The high-velocity crusher is billed at $10,000 per half-hour block, twice
  the nominal hourly scale used for every other resource. That rate is a
  long-standing billing decision and is reproduced exactly.

REFUND:
  Measured from cancellation date to the reservation's start date:
    >= 7 days out  -> 75% of the down payment
    >= 2 days out  -> 50%
    closer         -> nothing
*/
package booking

import (
	"github.com/shopspring/decimal"

	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// BASE PRICES - Per half-hour slot
// =============================================================================

var slotPrice = map[Resource]decimal.Decimal{
	Workshop:   decimal.RequireFromString("49.5"),
	Microvac:   decimal.RequireFromString("500"),
	Irradiator: decimal.RequireFromString("1110"),
	Extruder:   decimal.RequireFromString("300"),
	HVC:        decimal.RequireFromString("10000"),
	Harvester:  decimal.RequireFromString("4400"),
}

var (
	discountFactor    = decimal.RequireFromString("0.75")
	downPaymentFactor = decimal.RequireFromString("0.5")
	refund75          = decimal.RequireFromString("0.75")
	refund50          = decimal.RequireFromString("0.5")
)

// discountLeadDays is the minimum advance, in days, for the early-booking
// discount.
const discountLeadDays = 14

// =============================================================================
// QUOTE - Pricing an admitted candidate
// =============================================================================

// Quote prices a candidate reservation. It assumes the candidate has already
// passed admission (known resource, aligned times, valid range).
func Quote(q Request) (totalCost, downPayment decimal.Decimal, discount int) {
	days := calendar.DaysBetween(q.StartDate, q.EndDate) + 1
	slots := int(q.EndTime.Index()-q.StartTime.Index()) * days

	totalCost = slotPrice[q.Resource].Mul(decimal.NewFromInt(int64(slots)))

	if calendar.DaysBetween(q.BookedOn, q.StartDate) >= discountLeadDays {
		totalCost = totalCost.Mul(discountFactor)
		discount = 25
	}

	downPayment = decimal.Zero
	if q.Resource.Special() {
		downPayment = totalCost.Mul(downPaymentFactor)
	}
	return totalCost, downPayment, discount
}

// =============================================================================
// REFUND - Time-to-start cancellation policy
// =============================================================================

// Refund computes the refund for cancelling r on cancelDate.
func Refund(r Reservation, cancelDate calendar.Date) CancelResult {
	daysOut := calendar.DaysBetween(cancelDate, r.StartDate)
	switch {
	case daysOut >= 7:
		return CancelResult{PercentReturned: 75, Refund: refund75.Mul(r.DownPayment)}
	case daysOut >= 2:
		return CancelResult{PercentReturned: 50, Refund: refund50.Mul(r.DownPayment)}
	default:
		return CancelResult{PercentReturned: 0, Refund: decimal.Zero}
	}
}
