/*
Package sqlite provides a SQLite-backed booking.Store.

PURPOSE:
  An embedded relational alternative to the flat text file. State is loaded
  into memory at open and rewritten inside a single database transaction on
  Persist, so the durable copy always reflects a whole request boundary.

KEY TABLES:
  reservations: live reservations, one row each, ordered by seq
  transactions: append-only audit log with the full reservation snapshot

WAL MODE:
  The database is opened with WAL journaling for crash recovery; there is
  only ever one writer (the engine serializes requests).
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/calendar"
	"github.com/mpcs/reservation-engine/store/memory"
)

// =============================================================================
// STORE
// =============================================================================

type Store struct {
	*memory.Store
	db *sql.DB
}

// Open opens (creating if needed) the database at path and loads its state.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{Store: memory.New(), db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reservations (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		reservation_id  INTEGER NOT NULL UNIQUE,
		customer_id     TEXT NOT NULL,
		resource        TEXT NOT NULL,
		start_date      TEXT NOT NULL,
		end_date        TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		booked_on       TEXT NOT NULL,
		total_cost      TEXT NOT NULL,
		down_payment    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id  INTEGER PRIMARY KEY,
		kind            TEXT NOT NULL,
		amount          TEXT NOT NULL,
		tx_date         TEXT NOT NULL,
		reservation_id  INTEGER NOT NULL,
		customer_id     TEXT NOT NULL,
		resource        TEXT NOT NULL,
		start_date      TEXT NOT NULL,
		end_date        TEXT NOT NULL,
		start_time      TEXT NOT NULL,
		end_time        TEXT NOT NULL,
		booked_on       TEXT NOT NULL,
		total_cost      TEXT NOT NULL,
		down_payment    TEXT NOT NULL,
		recorded_at     INTEGER NOT NULL,
		staff_id        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_customer
		ON reservations(customer_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(tx_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD - Database to memory, once at open
// =============================================================================

func (s *Store) load() error {
	reservations, err := s.loadReservations()
	if err != nil {
		return err
	}
	transactions, err := s.loadTransactions()
	if err != nil {
		return err
	}
	s.Restore(reservations, transactions)
	return nil
}

func (s *Store) loadReservations() ([]booking.Reservation, error) {
	rows, err := s.db.Query(`
		SELECT reservation_id, customer_id, resource, start_date, end_date,
		       start_time, end_time, booked_on, total_cost, down_payment
		FROM reservations ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []booking.Reservation
	for rows.Next() {
		var fields [10]string
		if err := rows.Scan(&fields[0], &fields[1], &fields[2], &fields[3],
			&fields[4], &fields[5], &fields[6], &fields[7], &fields[8],
			&fields[9]); err != nil {
			return nil, err
		}
		r, err := decodeReservation(fields)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (s *Store) loadTransactions() ([]booking.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT transaction_id, kind, amount, tx_date,
		       reservation_id, customer_id, resource, start_date, end_date,
		       start_time, end_time, booked_on, total_cost, down_payment,
		       recorded_at, staff_id
		FROM transactions ORDER BY transaction_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []booking.Transaction
	for rows.Next() {
		var (
			t                  booking.Transaction
			kind, amount, date string
			snap               [10]string
		)
		if err := rows.Scan(&t.ID, &kind, &amount, &date,
			&snap[0], &snap[1], &snap[2], &snap[3], &snap[4], &snap[5],
			&snap[6], &snap[7], &snap[8], &snap[9],
			&t.Timestamp, &t.StaffID); err != nil {
			return nil, err
		}
		t.Kind = booking.TransactionKind(kind)
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if t.Date, err = calendar.ParseDate(date); err != nil {
			return nil, err
		}
		if t.Snapshot, err = decodeReservation(snap); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// decodeReservation rebuilds a reservation from its ten column values, in
// the same field order the flat file uses.
func decodeReservation(fields [10]string) (booking.Reservation, error) {
	var (
		r   booking.Reservation
		err error
	)
	if _, err = fmt.Sscanf(fields[0], "%d", &r.ID); err != nil {
		return r, fmt.Errorf("reservation id %q: %w", fields[0], err)
	}
	r.CustomerID = fields[1]
	r.Resource = booking.Resource(fields[2])
	if r.StartDate, err = calendar.ParseDate(fields[3]); err != nil {
		return r, err
	}
	if r.EndDate, err = calendar.ParseDate(fields[4]); err != nil {
		return r, err
	}
	if r.StartTime, err = calendar.ParseClock(fields[5]); err != nil {
		return r, err
	}
	if r.EndTime, err = calendar.ParseClock(fields[6]); err != nil {
		return r, err
	}
	if r.BookedOn, err = calendar.ParseDate(fields[7]); err != nil {
		return r, err
	}
	if r.TotalCost, err = decimal.NewFromString(fields[8]); err != nil {
		return r, fmt.Errorf("total cost %q: %w", fields[8], err)
	}
	if r.DownPayment, err = decimal.NewFromString(fields[9]); err != nil {
		return r, fmt.Errorf("down payment %q: %w", fields[9], err)
	}
	return r, nil
}

// =============================================================================
// PERSIST - Memory to database, one transaction per request
// =============================================================================

func (s *Store) Persist(ctx context.Context) error {
	reservations, transactions := s.State()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("clear reservations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	for _, r := range reservations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (reservation_id, customer_id, resource,
				start_date, end_date, start_time, end_time, booked_on,
				total_cost, down_payment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.CustomerID, string(r.Resource),
			r.StartDate.String(), r.EndDate.String(),
			r.StartTime.String(), r.EndTime.String(), r.BookedOn.String(),
			r.TotalCost.String(), r.DownPayment.String()); err != nil {
			return fmt.Errorf("insert reservation %d: %w", r.ID, err)
		}
	}

	for _, t := range transactions {
		snap := t.Snapshot
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (transaction_id, kind, amount, tx_date,
				reservation_id, customer_id, resource, start_date, end_date,
				start_time, end_time, booked_on, total_cost, down_payment,
				recorded_at, staff_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Kind), t.Amount.String(), t.Date.String(),
			snap.ID, snap.CustomerID, string(snap.Resource),
			snap.StartDate.String(), snap.EndDate.String(),
			snap.StartTime.String(), snap.EndTime.String(), snap.BookedOn.String(),
			snap.TotalCost.String(), snap.DownPayment.String(),
			t.Timestamp, t.StaffID); err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist: %w", err)
	}
	return nil
}
