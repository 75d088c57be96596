/*
engine.go - Admission and cancellation orchestration

PURPOSE:
  The Engine is the single writer over a Store. Per request it snapshots the
  reservation list, runs the admission rules, and on success appends the
  reservation together with its RESERVATION transaction and persists.
  Cancellation is symmetric: remove the reservation, compute the refund,
  append a CANCELLATION transaction carrying it, persist.

CONCURRENCY:
  One mutex serializes every request end to end. There is no partial
  admission and no queueing: a request either commits wholly or changes
  nothing. Read-only listings take the same lock; the listing work is a pure
  projection over the snapshot and cheap at this scale.
*/
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpcs/reservation-engine/calendar"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	mu    sync.Mutex
	store Store
	log   zerolog.Logger

	// now is swappable for deterministic transaction timestamps in tests.
	now func() time.Time
}

type Option func(*Engine)

// WithLogger attaches a structured logger to the engine.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the wall clock used for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// ADMIT
// =============================================================================

// Admit runs the candidate through the admission rules and, on success,
// commits the reservation and its paired transaction.
func (e *Engine) Admit(ctx context.Context, q Request, staffID string) (*AdmitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.store.SnapshotReservations()
	if rej := Evaluate(snapshot, q); rej != nil {
		e.log.Info().
			Str("customer", q.CustomerID).
			Str("resource", string(q.Resource)).
			Str("reason", rej.Message).
			Msg("reservation rejected")
		return nil, rej
	}

	totalCost, downPayment, discount := Quote(q)
	r := Reservation{
		ID:          e.store.NextReservationID(),
		CustomerID:  q.CustomerID,
		Resource:    q.Resource,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		StartTime:   q.StartTime,
		EndTime:     q.EndTime,
		BookedOn:    q.BookedOn,
		TotalCost:   totalCost,
		DownPayment: downPayment,
	}
	e.store.AppendReservation(r)

	e.store.AppendTransaction(Transaction{
		ID:        e.store.NextTransactionID(),
		Kind:      KindReservation,
		Amount:    r.DownPayment,
		Date:      r.BookedOn,
		Snapshot:  r,
		Timestamp: e.now().Unix(),
		StaffID:   staffID,
	})

	if err := e.store.Persist(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	e.log.Info().
		Int("reservation_id", r.ID).
		Str("customer", r.CustomerID).
		Str("resource", string(r.Resource)).
		Str("total_cost", r.TotalCost.String()).
		Str("down_payment", r.DownPayment.String()).
		Msg("reservation admitted")

	return &AdmitResult{
		ReservationID: r.ID,
		Discount:      discount,
		TotalCost:     totalCost,
		DownPayment:   downPayment,
	}, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel removes the reservation, computes the refund under the time-to-start
// policy, and records a CANCELLATION transaction carrying the refund and the
// full reservation snapshot.
func (e *Engine) Cancel(ctx context.Context, reservationID int, cancelDate calendar.Date, staffID string) (*CancelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.FindReservation(reservationID)
	if !ok {
		return nil, reject(CategoryCancellation, "Invalid reservation id: %d", reservationID)
	}

	result := Refund(r, cancelDate)
	e.store.RemoveReservation(reservationID)

	e.store.AppendTransaction(Transaction{
		ID:        e.store.NextTransactionID(),
		Kind:      KindCancellation,
		Amount:    result.Refund,
		Date:      cancelDate,
		Snapshot:  r,
		Timestamp: e.now().Unix(),
		StaffID:   staffID,
	})

	if err := e.store.Persist(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	e.log.Info().
		Int("reservation_id", reservationID).
		Int("percent_returned", result.PercentReturned).
		Str("refund", result.Refund.String()).
		Msg("reservation cancelled")

	return &result, nil
}

// =============================================================================
// LISTINGS - Read-only projections
// =============================================================================

// ListReservations returns report rows for reservations whose start date lies
// in [start, end], optionally filtered to one customer.
func (e *Engine) ListReservations(_ context.Context, start, end calendar.Date, customerID string) []ReservationRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ReservationsReport(e.store.SnapshotReservations(), start, end, customerID)
}

// ListTransactions returns report rows for transactions dated in [start, end].
func (e *Engine) ListTransactions(_ context.Context, start, end calendar.Date) []TransactionRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TransactionsReport(e.store.SnapshotTransactions(), start, end)
}
