/*
policy.go - The twelve admission rules

PURPOSE:
  Pure predicates deciding whether a candidate reservation is legal given
  the current reservation list. Each rule is independent and testable on
  its own; Evaluate composes them in a fixed order and the first violation
  is the answer.

RULE ORDER:
   0. Ordered range (shape guard: end after start, on both axes)
   1. Known resource
   2. Not in the past
   3. Within the 30-day advance window
   4. Half-hour alignment
   5. Business hours on every day of the range
   6. One special machine at a time per customer
   7. Per-half-hour capacity
   8. At most one irradiator in use
   9. Harvester co-operation limit (3 other machines)
  10. HVC 6-hour cooldown
  11. Irradiator 1-hour cooldown
  12. Per-customer weekly quota (3 days per ISO week)

  Rejection messages are part of the engine contract and must not drift;
  staff-facing clients and the test suite match on them verbatim.
*/
package booking

import (
	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// RULE - Independent admission predicate
// =============================================================================

// A Rule inspects the candidate against a snapshot of existing reservations
// and returns nil (admit) or a rejection. Rules never mutate anything.
type Rule func(snapshot []Reservation, q Request) *RejectionError

// AdmissionRules returns the rule chain in evaluation order.
func AdmissionRules() []Rule {
	return []Rule{
		ruleOrderedRange,
		ruleKnownResource,
		ruleNotInPast,
		ruleWithinWindow,
		ruleHalfHourAligned,
		ruleBusinessHours,
		ruleOneSpecialPerCustomer,
		ruleCapacity,
		ruleSingleIrradiator,
		ruleHarvesterCompanions,
		ruleHVCCooldown,
		ruleIrradiatorCooldown,
		ruleWeeklyQuota,
	}
}

// Evaluate runs the candidate through the full rule chain.
func Evaluate(snapshot []Reservation, q Request) *RejectionError {
	for _, rule := range AdmissionRules() {
		if rej := rule(snapshot, q); rej != nil {
			return rej
		}
	}
	return nil
}

// =============================================================================
// RULES 0-5: SHAPE OF THE CANDIDATE
// =============================================================================

// ruleOrderedRange rejects degenerate candidates before anything else looks at
// them. A reversed date or time range makes every per-day and per-slot loop
// vacuous, so without this guard such a candidate would sail through the whole
// chain and price at zero or below.
func ruleOrderedRange(_ []Reservation, q Request) *RejectionError {
	if q.EndDate.Before(q.StartDate) || q.EndTime.Index() <= q.StartTime.Index() {
		return reject(CategoryReservation,
			"Cannot reserve a time interval that ends before it starts")
	}
	return nil
}

func ruleKnownResource(_ []Reservation, q Request) *RejectionError {
	if !q.Resource.Known() {
		return reject(CategoryReservation, "Unsupported resource: %s", q.Resource)
	}
	return nil
}

func ruleNotInPast(_ []Reservation, q Request) *RejectionError {
	if calendar.DaysBetween(q.StartDate, q.BookedOn) > 0 {
		return reject(CategoryReservation, "Cannot reserve time already passed.")
	}
	return nil
}

func ruleWithinWindow(_ []Reservation, q Request) *RejectionError {
	if calendar.DaysBetween(q.BookedOn, q.EndDate) > 30 {
		return reject(CategoryReservation, "Cannot reserve time more than 30 days away.")
	}
	return nil
}

func ruleHalfHourAligned(_ []Reservation, q Request) *RejectionError {
	if !q.StartTime.Aligned() || !q.EndTime.Aligned() {
		return reject(CategoryReservation,
			"Reservations for all resources are made in 30 minute blocks and always start on the hour or half hour")
	}
	return nil
}

func ruleBusinessHours(_ []Reservation, q Request) *RejectionError {
	start, end := q.StartTime.Index(), q.EndTime.Index()
	for _, day := range q.Days() {
		if !calendar.OpenFor(start, end, day) {
			return reject(CategoryReservation,
				"Cannot reserve time interval from %s to %s on %s",
				q.StartTime, q.EndTime, day.ISO())
		}
	}
	return nil
}

// =============================================================================
// RULE 6: ONE SPECIAL MACHINE AT A TIME PER CUSTOMER
// =============================================================================

func ruleOneSpecialPerCustomer(snapshot []Reservation, q Request) *RejectionError {
	start, end := q.StartTime.Index(), q.EndTime.Index()
	for _, day := range q.Days() {
		for _, r := range snapshot {
			if r.CustomerID != q.CustomerID || !r.Resource.Special() {
				continue
			}
			if !r.ActiveOn(day) {
				continue
			}
			if calendar.Overlaps(start, end, r.StartTime.Index(), r.EndTime.Index()) {
				return reject(CategoryReservation,
					"A client can only reserve one special machine at a time")
			}
		}
	}
	return nil
}

// =============================================================================
// RULES 7-9: PER-HALF-HOUR OCCUPANCY
// =============================================================================

// ruleCapacity checks that adding the candidate keeps the count of active
// reservations of its resource within the per-instance limit at every
// half-hour of every day.
func ruleCapacity(snapshot []Reservation, q Request) *RejectionError {
	for _, day := range q.Days() {
		for t := q.StartTime.Index(); t < q.EndTime.Index(); t++ {
			count := countActive(snapshot, day, t, q.Resource)
			if count+1 > q.Resource.Capacity() {
				return reject(CategoryReservation,
					"Not enough available %s, %d already reserved", q.Resource, count)
			}
		}
	}
	return nil
}

// ruleSingleIrradiator forbids a second irradiator running concurrently even
// though two units exist; the spare stays cold unless the active one is down.
func ruleSingleIrradiator(snapshot []Reservation, q Request) *RejectionError {
	if q.Resource != Irradiator {
		return nil
	}
	for _, day := range q.Days() {
		for t := q.StartTime.Index(); t < q.EndTime.Index(); t++ {
			if countActive(snapshot, day, t, Irradiator) >= 1 {
				return reject(CategoryReservation, "Only 1 irradiator can be used at a time")
			}
		}
	}
	return nil
}

// ruleHarvesterCompanions caps total special-machine usage while the
// lightning harvester operates: the harvester plus at most three others.
func ruleHarvesterCompanions(snapshot []Reservation, q Request) *RejectionError {
	for _, day := range q.Days() {
		for t := q.StartTime.Index(); t < q.EndTime.Index(); t++ {
			harvesterRunning := q.Resource == Harvester
			specials := 0
			for _, r := range snapshot {
				if !r.ActiveAt(day, t) {
					continue
				}
				if r.Resource == Harvester {
					harvesterRunning = true
				}
				if r.Resource.Special() {
					specials++
				}
			}
			if q.Resource.Special() {
				specials++
			}
			if harvesterRunning && specials > 4 {
				return reject(CategoryReservation,
					"Only 3 other machines can run while the 1.21 gigawatt lightning harvester is operating")
			}
		}
	}
	return nil
}

// =============================================================================
// RULES 10-11: COOLDOWN WINDOWS
// =============================================================================

const (
	hvcCooldown        = 6 * calendar.SlotsPerHour
	irradiatorCooldown = 1 * calendar.SlotsPerHour
)

// ruleHVCCooldown pads the candidate window by six hours on both sides and
// rejects when any existing crusher reservation on the same day falls inside.
func ruleHVCCooldown(snapshot []Reservation, q Request) *RejectionError {
	if q.Resource != HVC {
		return nil
	}
	padStart := q.StartTime.Index() - hvcCooldown
	padEnd := q.EndTime.Index() + hvcCooldown
	for _, day := range q.Days() {
		for _, r := range snapshot {
			if r.Resource != HVC || !r.ActiveOn(day) {
				continue
			}
			if calendar.Overlaps(padStart, padEnd, r.StartTime.Index(), r.EndTime.Index()) {
				return reject(CategoryReservation,
					"High velocity crusher needs to cool down for 6 hours between uses, hvc currently reserved for %s-%s.",
					r.StartTime, r.EndTime)
			}
		}
	}
	return nil
}

// ruleIrradiatorCooldown pads the candidate window by one hour. One existing
// irradiator inside the padded window is tolerated (the second unit); two
// means neither unit would get its cooldown.
func ruleIrradiatorCooldown(snapshot []Reservation, q Request) *RejectionError {
	if q.Resource != Irradiator {
		return nil
	}
	padStart := q.StartTime.Index() - irradiatorCooldown
	padEnd := q.EndTime.Index() + irradiatorCooldown
	for _, day := range q.Days() {
		inWindow := 0
		for _, r := range snapshot {
			if r.Resource != Irradiator || !r.ActiveOn(day) {
				continue
			}
			if calendar.Overlaps(padStart, padEnd, r.StartTime.Index(), r.EndTime.Index()) {
				inWindow++
			}
		}
		if inWindow >= 2 {
			return reject(CategoryReservation,
				"Irradiators need to cool down for 1 hour between uses")
		}
	}
	return nil
}

// =============================================================================
// RULE 12: PER-CUSTOMER WEEKLY QUOTA
// =============================================================================

// ruleWeeklyQuota projects every day the customer already occupies, plus the
// candidate's days, onto ISO week buckets. No bucket may exceed three days.
func ruleWeeklyQuota(snapshot []Reservation, q Request) *RejectionError {
	weeks := make(map[calendar.WeekBucket]int)
	for _, r := range snapshot {
		if r.CustomerID != q.CustomerID {
			continue
		}
		for _, day := range r.Days() {
			weeks[day.WeekBucket()]++
		}
	}
	for _, day := range q.Days() {
		weeks[day.WeekBucket()]++
	}
	for _, n := range weeks {
		if n > 3 {
			return reject(CategoryReservation,
				"A client can only make reservations for 3 different days in a given week")
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func countActive(snapshot []Reservation, day calendar.Date, t calendar.HalfHour, res Resource) int {
	count := 0
	for _, r := range snapshot {
		if r.Resource == res && r.ActiveAt(day, t) {
			count++
		}
	}
	return count
}
