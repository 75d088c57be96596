/*
store.go - Persistence contract for reservations and transactions

PURPOSE:
  The Store owns the reservation list and the transaction log. The engine is
  its only mutator, holding it for the duration of a single request. In-memory
  state is authoritative between Persist calls; Persist makes it durable.

IDENTIFIER CONTRACT:
  - Reservation ids are monotone and never recycled: cancelling the newest
    reservation does not free its id for reuse. Implementations must track
    the maximum id ever held, including ids that survive only inside
    transaction snapshots.
  - Transaction ids equal the count of transactions ever appended plus one;
    transactions are never removed, so the count never regresses.

IMPLEMENTATIONS:
  - store/memory:   volatile, for tests
  - store/flatfile: canonical flat text file, two sections split by '#'
  - store/sqlite:   embedded relational backend
*/
package booking

import "context"

// Store is the durable repository behind the engine.
type Store interface {
	// SnapshotReservations returns the reservation list in insertion order.
	// The returned slice is the caller's to keep.
	SnapshotReservations() []Reservation

	// SnapshotTransactions returns the transaction log in append order.
	SnapshotTransactions() []Transaction

	// NextReservationID returns one greater than the maximum reservation id
	// ever held.
	NextReservationID() int

	// NextTransactionID returns the count of transactions ever appended,
	// plus one.
	NextTransactionID() int

	AppendReservation(r Reservation)
	AppendTransaction(t Transaction)

	// FindReservation looks a live reservation up by id.
	FindReservation(id int) (Reservation, bool)

	// RemoveReservation deletes by id; no-op when absent. The id is not
	// recycled.
	RemoveReservation(id int)

	// Persist writes current state durably. On failure the previous durable
	// state must remain intact.
	Persist(ctx context.Context) error
}
