// Package memory provides the volatile booking.Store implementation.
//
// It is the authoritative in-memory state shared by the durable backends:
// store/flatfile and store/sqlite both embed *memory.Store and override
// Persist. On its own it is used in tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/mpcs/reservation-engine/booking"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu           sync.RWMutex
	reservations []booking.Reservation
	transactions []booking.Transaction

	// maxReservationID is the highest id ever held, live or cancelled.
	// Removing a reservation never lowers it, so ids are never recycled.
	maxReservationID int
}

func New() *Store {
	return &Store{}
}

// Restore replaces the whole state, recomputing the id high-water mark.
// Cancelled reservations survive only inside transaction snapshots, so those
// snapshots count toward the mark too.
func (s *Store) Restore(reservations []booking.Reservation, transactions []booking.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reservations = append([]booking.Reservation(nil), reservations...)
	s.transactions = append([]booking.Transaction(nil), transactions...)

	s.maxReservationID = 0
	for _, r := range s.reservations {
		if r.ID > s.maxReservationID {
			s.maxReservationID = r.ID
		}
	}
	for _, t := range s.transactions {
		if t.Snapshot.ID > s.maxReservationID {
			s.maxReservationID = t.Snapshot.ID
		}
	}
}

// State returns copies of both lists, for persistence backends.
func (s *Store) State() ([]booking.Reservation, []booking.Transaction) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]booking.Reservation(nil), s.reservations...),
		append([]booking.Transaction(nil), s.transactions...)
}

// =============================================================================
// booking.Store IMPLEMENTATION
// =============================================================================

func (s *Store) SnapshotReservations() []booking.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]booking.Reservation(nil), s.reservations...)
}

func (s *Store) SnapshotTransactions() []booking.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]booking.Transaction(nil), s.transactions...)
}

func (s *Store) NextReservationID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxReservationID + 1
}

// NextTransactionID is the count of transactions ever appended plus one.
// Transactions are never removed, so the count is the high-water mark.
func (s *Store) NextTransactionID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions) + 1
}

func (s *Store) AppendReservation(r booking.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, r)
	if r.ID > s.maxReservationID {
		s.maxReservationID = r.ID
	}
}

func (s *Store) AppendTransaction(t booking.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	if t.Snapshot.ID > s.maxReservationID {
		s.maxReservationID = t.Snapshot.ID
	}
}

func (s *Store) FindReservation(id int) (booking.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if r.ID == id {
			return r, true
		}
	}
	return booking.Reservation{}, false
}

func (s *Store) RemoveReservation(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reservations {
		if r.ID == id {
			s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
			return
		}
	}
}

// Persist is a no-op: memory is the whole story.
func (s *Store) Persist(context.Context) error { return nil }
