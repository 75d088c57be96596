package booking_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/calendar"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// QUOTE TESTS
// =============================================================================

func TestQuote_WorkshopSingleSlot(t *testing.T) {
	// One half-hour of workshop time, booked three days ahead: base price,
	// no discount, no down payment.
	q := candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:30")

	total, down, discount := booking.Quote(q)

	assertMoney(t, "49.5", total)
	assertMoney(t, "0", down)
	assert.Equal(t, 0, discount)
}

func TestQuote_HVCRecurringTwoDays(t *testing.T) {
	// One half-hour per day over two days at $10,000 per block. Machines
	// require a 50% down payment.
	q := candidate("bob", booking.HVC, "04-28-2022", "04-29-2022", "11:00", "11:30")

	total, down, discount := booking.Quote(q)

	assertMoney(t, "20000", total)
	assertMoney(t, "10000", down)
	assert.Equal(t, 0, discount)
}

func TestQuote_EarlyBookingDiscount(t *testing.T) {
	// Booked on 04-25 for 05-15: twenty days out, past the 14-day threshold.
	q := candidate("alice", booking.Workshop, "05-15-2022", "05-15-2022", "11:00", "11:30")

	total, _, discount := booking.Quote(q)

	assertMoney(t, "37.125", total)
	assert.Equal(t, 25, discount)
}

func TestQuote_DiscountThresholdBoundary(t *testing.T) {
	// Exactly 14 days ahead qualifies; 13 does not.
	q := candidate("alice", booking.Workshop, "05-09-2022", "05-09-2022", "11:00", "11:30")
	_, _, discount := booking.Quote(q)
	assert.Equal(t, 25, discount)

	q = candidate("alice", booking.Workshop, "05-08-2022", "05-08-2022", "11:00", "11:30")
	_, _, discount = booking.Quote(q)
	assert.Equal(t, 0, discount)
}

func TestQuote_MultiSlotWindow(t *testing.T) {
	// Four half-hours of microvac at $500 each, with the machine down payment.
	q := candidate("alice", booking.Microvac, "04-28-2022", "04-28-2022", "10:00", "12:00")

	total, down, _ := booking.Quote(q)

	assertMoney(t, "2000", total)
	assertMoney(t, "1000", down)
}

// =============================================================================
// REFUND TESTS
// =============================================================================

func TestRefund_Tiers(t *testing.T) {
	r := booking.Reservation{
		StartDate:   calendar.MustDate("05-10-2022"),
		DownPayment: money("1000"),
	}

	tests := []struct {
		name       string
		cancelDate string
		percent    int
		refund     string
	}{
		{"eight days out", "05-02-2022", 75, "750"},
		{"exactly seven days out", "05-03-2022", 75, "750"},
		{"five days out", "05-05-2022", 50, "500"},
		{"exactly two days out", "05-08-2022", 50, "500"},
		{"one day out", "05-09-2022", 0, "0"},
		{"same day", "05-10-2022", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := booking.Refund(r, calendar.MustDate(tt.cancelDate))
			assert.Equal(t, tt.percent, result.PercentReturned)
			assertMoney(t, tt.refund, result.Refund)
		})
	}
}
