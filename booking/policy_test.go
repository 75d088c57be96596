package booking_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// bookedOn is the reference "today" for every candidate: Monday 04-25-2022.
var bookedOn = calendar.MustDate("04-25-2022")

func candidate(customer string, res booking.Resource, start, end, from, to string) booking.Request {
	return booking.Request{
		CustomerID: customer,
		Resource:   res,
		StartDate:  calendar.MustDate(start),
		EndDate:    calendar.MustDate(end),
		StartTime:  calendar.MustClock(from),
		EndTime:    calendar.MustClock(to),
		BookedOn:   bookedOn,
	}
}

func existing(id int, customer string, res booking.Resource, start, end, from, to string) booking.Reservation {
	return booking.Reservation{
		ID:         id,
		CustomerID: customer,
		Resource:   res,
		StartDate:  calendar.MustDate(start),
		EndDate:    calendar.MustDate(end),
		StartTime:  calendar.MustClock(from),
		EndTime:    calendar.MustClock(to),
		BookedOn:   bookedOn,
		TotalCost:  decimal.Zero,
	}
}

func assertRejected(t *testing.T, snapshot []booking.Reservation, q booking.Request, message string) {
	t.Helper()
	rej := booking.Evaluate(snapshot, q)
	require.NotNil(t, rej, "expected rejection %q", message)
	assert.Equal(t, message, rej.Message)
	assert.Equal(t, booking.CategoryReservation, rej.Category)
}

func assertAdmitted(t *testing.T, snapshot []booking.Reservation, q booking.Request) {
	t.Helper()
	rej := booking.Evaluate(snapshot, q)
	if rej != nil {
		t.Fatalf("expected admission, got rejection: %s", rej.Message)
	}
}

// =============================================================================
// RULES 0-5: SHAPE OF THE CANDIDATE
// =============================================================================

func TestRule_OrderedRange(t *testing.T) {
	const msg = "Cannot reserve a time interval that ends before it starts"

	// End date before start date: every per-day loop would be vacuous.
	q := candidate("alice", booking.Workshop, "04-29-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, nil, q, msg)

	// End time at or before start time: a negative or zero slot count would
	// price at zero or below.
	q = candidate("alice", booking.Microvac, "04-28-2022", "04-28-2022", "11:30", "11:00")
	assertRejected(t, nil, q, msg)

	q = candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:00")
	assertRejected(t, nil, q, msg)
}

func TestRule_UnknownResource(t *testing.T) {
	q := candidate("alice", "timemachine", "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Unsupported resource: timemachine")
}

func TestRule_PastStartDate(t *testing.T) {
	q := candidate("alice", booking.Workshop, "04-22-2022", "04-22-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Cannot reserve time already passed.")

	// Same-day booking is fine.
	q = candidate("alice", booking.Workshop, "04-25-2022", "04-25-2022", "11:00", "11:30")
	assertAdmitted(t, nil, q)
}

func TestRule_ThirtyDayWindow(t *testing.T) {
	// 05-25-2022 is exactly 30 days out: allowed.
	q := candidate("alice", booking.Workshop, "05-25-2022", "05-25-2022", "11:00", "11:30")
	assertAdmitted(t, nil, q)

	// One more day and the end date falls outside the window.
	q = candidate("alice", booking.Workshop, "05-26-2022", "05-26-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Cannot reserve time more than 30 days away.")

	// The window binds on the end date of a recurring reservation too.
	q = candidate("alice", booking.Workshop, "05-24-2022", "05-26-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Cannot reserve time more than 30 days away.")
}

func TestRule_HalfHourAlignment(t *testing.T) {
	const msg = "Reservations for all resources are made in 30 minute blocks and always start on the hour or half hour"

	q := candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:15", "11:45")
	assertRejected(t, nil, q, msg)

	q = candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:45")
	assertRejected(t, nil, q, msg)
}

func TestRule_BusinessHours(t *testing.T) {
	// 05-01-2022 is a Sunday: closed all day. Day renders as ISO in the reason.
	q := candidate("alice", booking.Workshop, "05-01-2022", "05-01-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Cannot reserve time interval from 11:00 to 11:30 on 2022-05-01")

	// 04-30-2022 is a Saturday: opens at 10:00, not 09:00.
	q = candidate("alice", booking.Workshop, "04-30-2022", "04-30-2022", "09:00", "09:30")
	assertRejected(t, nil, q, "Cannot reserve time interval from 09:00 to 09:30 on 2022-04-30")

	q = candidate("alice", booking.Workshop, "04-30-2022", "04-30-2022", "10:00", "10:30")
	assertAdmitted(t, nil, q)

	// A recurring range is rejected on the first closed day it touches.
	q = candidate("alice", booking.Workshop, "04-29-2022", "05-01-2022", "11:00", "11:30")
	assertRejected(t, nil, q, "Cannot reserve time interval from 11:00 to 11:30 on 2022-05-01")
}

// =============================================================================
// RULE 6: ONE SPECIAL MACHINE AT A TIME PER CUSTOMER
// =============================================================================

func TestRule_OneSpecialPerCustomer(t *testing.T) {
	const msg = "A client can only reserve one special machine at a time"
	snapshot := []booking.Reservation{
		existing(1, "carol", booking.Microvac, "04-28-2022", "04-28-2022", "11:00", "12:00"),
	}

	// Overlapping window, same customer.
	q := candidate("carol", booking.Extruder, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertRejected(t, snapshot, q, msg)

	// The rule keys on the existing reservation being a machine, so even a
	// workshop visit cannot overlap the customer's own machine time.
	q = candidate("carol", booking.Workshop, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertRejected(t, snapshot, q, msg)

	// Adjacent window is fine: intervals are half-open.
	q = candidate("carol", booking.Extruder, "04-28-2022", "04-28-2022", "12:00", "12:30")
	assertAdmitted(t, snapshot, q)

	// A different customer is unaffected.
	q = candidate("dave", booking.Extruder, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertAdmitted(t, snapshot, q)

	// An existing workshop reservation does not block machine time.
	workshopOnly := []booking.Reservation{
		existing(2, "carol", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "12:00"),
	}
	q = candidate("carol", booking.Extruder, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertAdmitted(t, workshopOnly, q)
}

// =============================================================================
// RULES 7-9: PER-HALF-HOUR OCCUPANCY
// =============================================================================

func TestRule_Capacity(t *testing.T) {
	snapshot := make([]booking.Reservation, 0, 15)
	for i := 0; i < 15; i++ {
		snapshot = append(snapshot,
			existing(i+1, "crowd", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:30"))
	}

	q := candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, snapshot, q, "Not enough available workshop, 15 already reserved")

	// The next slot over is empty.
	q = candidate("alice", booking.Workshop, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertAdmitted(t, snapshot, q)
}

func TestRule_Capacity_SingleInstanceResources(t *testing.T) {
	snapshot := []booking.Reservation{
		existing(1, "bob", booking.HVC, "04-28-2022", "04-28-2022", "11:00", "11:30"),
	}
	q := candidate("alice", booking.HVC, "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, snapshot, q, "Not enough available hvc, 1 already reserved")
}

func TestRule_SingleIrradiator(t *testing.T) {
	// Two irradiator units exist, but only one may run at a time.
	snapshot := []booking.Reservation{
		existing(1, "bob", booking.Irradiator, "04-28-2022", "04-28-2022", "11:00", "11:30"),
	}
	q := candidate("alice", booking.Irradiator, "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, snapshot, q, "Only 1 irradiator can be used at a time")
}

func TestRule_HarvesterCompanions(t *testing.T) {
	const msg = "Only 3 other machines can run while the 1.21 gigawatt lightning harvester is operating"

	// Harvester plus three machines already running.
	snapshot := []booking.Reservation{
		existing(1, "a", booking.Harvester, "04-28-2022", "04-28-2022", "11:00", "12:00"),
		existing(2, "b", booking.Microvac, "04-28-2022", "04-28-2022", "11:00", "12:00"),
		existing(3, "c", booking.Microvac, "04-28-2022", "04-28-2022", "11:00", "12:00"),
		existing(4, "d", booking.Extruder, "04-28-2022", "04-28-2022", "11:00", "12:00"),
	}

	// A fourth companion machine is one too many.
	q := candidate("eve", booking.Extruder, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertRejected(t, snapshot, q, msg)

	// The workshop does not count against the harvester.
	q = candidate("eve", booking.Workshop, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertAdmitted(t, snapshot, q)

	// The candidate can be the harvester itself: three running machines is
	// the most it tolerates.
	three := snapshot[1:]
	q = candidate("eve", booking.Harvester, "04-28-2022", "04-28-2022", "11:30", "12:00")
	assertAdmitted(t, three, q)

	four := append(append([]booking.Reservation{}, three...),
		existing(5, "f", booking.Extruder, "04-28-2022", "04-28-2022", "11:00", "12:00"))
	assertRejected(t, four, q, msg)
}

// =============================================================================
// RULES 10-11: COOLDOWN WINDOWS
// =============================================================================

func TestRule_HVCCooldown(t *testing.T) {
	snapshot := []booking.Reservation{
		existing(1, "bob", booking.HVC, "04-28-2022", "04-28-2022", "11:30", "12:00"),
	}

	// 14:30 is within six hours of the 12:00 finish.
	q := candidate("alice", booking.HVC, "04-28-2022", "04-28-2022", "14:30", "15:00")
	assertRejected(t, snapshot, q,
		"High velocity crusher needs to cool down for 6 hours between uses, hvc currently reserved for 11:30-12:00.")

	// The next day the crusher is cold again.
	q = candidate("alice", booking.HVC, "04-29-2022", "04-29-2022", "14:30", "15:00")
	assertAdmitted(t, snapshot, q)
}

func TestRule_IrradiatorCooldown(t *testing.T) {
	// One prior irradiator inside the padded hour is the second unit and is
	// tolerated; two mean neither unit gets its cooldown.
	one := []booking.Reservation{
		existing(1, "a", booking.Irradiator, "04-28-2022", "04-28-2022", "09:00", "09:30"),
	}
	q := candidate("carol", booking.Irradiator, "04-28-2022", "04-28-2022", "10:00", "10:30")
	assertAdmitted(t, one, q)

	two := append(append([]booking.Reservation{}, one...),
		existing(2, "b", booking.Irradiator, "04-28-2022", "04-28-2022", "11:00", "11:30"))
	assertRejected(t, two, q, "Irradiators need to cool down for 1 hour between uses")
}

// =============================================================================
// RULE 12: PER-CUSTOMER WEEKLY QUOTA
// =============================================================================

func TestRule_WeeklyQuota(t *testing.T) {
	const msg = "A client can only make reservations for 3 different days in a given week"

	// Carol already holds Monday through Wednesday of the same ISO week.
	snapshot := []booking.Reservation{
		existing(1, "carol", booking.Workshop, "04-25-2022", "04-25-2022", "11:00", "11:30"),
		existing(2, "carol", booking.Workshop, "04-26-2022", "04-26-2022", "11:00", "11:30"),
		existing(3, "carol", booking.Workshop, "04-27-2022", "04-27-2022", "11:00", "11:30"),
	}

	q := candidate("carol", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, snapshot, q, msg)

	// The following ISO week is a fresh bucket.
	q = candidate("carol", booking.Workshop, "05-02-2022", "05-02-2022", "11:00", "11:30")
	assertAdmitted(t, snapshot, q)

	// Another customer is unaffected.
	q = candidate("dave", booking.Workshop, "04-28-2022", "04-28-2022", "11:00", "11:30")
	assertAdmitted(t, snapshot, q)
}

func TestRule_WeeklyQuota_CountsRecurringDays(t *testing.T) {
	// A two-day reservation occupies two of the week's three days.
	snapshot := []booking.Reservation{
		existing(1, "carol", booking.Workshop, "04-25-2022", "04-26-2022", "11:00", "11:30"),
	}

	q := candidate("carol", booking.Workshop, "04-27-2022", "04-28-2022", "11:00", "11:30")
	assertRejected(t, snapshot, q,
		"A client can only make reservations for 3 different days in a given week")

	q = candidate("carol", booking.Workshop, "04-27-2022", "04-27-2022", "11:00", "11:30")
	assertAdmitted(t, snapshot, q)
}
