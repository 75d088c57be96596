/*
Package flatfile persists the booking store to a single flat text file.

FORMAT:
  Two sections separated by a line containing only '#'. One record per
  whitespace-separated line, appended in creation order.

  Reservation record (10 fields):
    reservation_id customer_id resource start_date end_date
    start_time end_time date_of_reservation total_cost down_payment

  Transaction record (15 fields):
    transaction_id kind transaction_date <10 reservation snapshot fields>
    timestamp staff_id

  Dates are MM-DD-YYYY, times HH:MM. The kind field doubles as the amount
  carrier for cancellations: "CANCELLATION$<amount>".

DURABILITY:
  Persist writes the whole state to a temp file in the same directory and
  renames it over the target, so a crash mid-write leaves the previous
  state intact.
*/
package flatfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/calendar"
	"github.com/mpcs/reservation-engine/store/memory"
)

const sectionSeparator = "#"

// =============================================================================
// STORE
// =============================================================================

// Store is a booking.Store backed by one text file. In-memory state is
// authoritative between Persist calls.
type Store struct {
	*memory.Store
	path string
}

// Open loads the data file into memory. A missing file starts an empty store;
// any other read or parse failure is fatal.
func Open(path string) (*Store, error) {
	s := &Store{Store: memory.New(), path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var (
		reservations []booking.Reservation
		transactions []booking.Transaction
		inTxSection  bool
		lineNo       int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == sectionSeparator {
			inTxSection = true
			continue
		}
		if inTxSection {
			t, err := parseTransaction(line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			transactions = append(transactions, t)
		} else {
			r, err := parseReservation(strings.Fields(line))
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			reservations = append(reservations, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	s.Restore(reservations, transactions)
	return s, nil
}

// Path returns the configured data file location.
func (s *Store) Path() string { return s.path }

// Persist writes the current state atomically.
func (s *Store) Persist(context.Context) error {
	reservations, transactions := s.State()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp data file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, r := range reservations {
		fmt.Fprintln(w, encodeReservation(r))
	}
	fmt.Fprintln(w, sectionSeparator)
	for _, t := range transactions {
		fmt.Fprintln(w, encodeTransaction(t))
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// =============================================================================
// CODEC
// =============================================================================

func encodeReservation(r booking.Reservation) string {
	return strings.Join([]string{
		strconv.Itoa(r.ID),
		r.CustomerID,
		string(r.Resource),
		r.StartDate.String(),
		r.EndDate.String(),
		r.StartTime.String(),
		r.EndTime.String(),
		r.BookedOn.String(),
		r.TotalCost.String(),
		r.DownPayment.String(),
	}, " ")
}

func parseReservation(fields []string) (booking.Reservation, error) {
	if len(fields) != 10 {
		return booking.Reservation{}, fmt.Errorf("reservation record has %d fields, want 10", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("reservation id: %w", err)
	}
	startDate, err := calendar.ParseDate(fields[3])
	if err != nil {
		return booking.Reservation{}, err
	}
	endDate, err := calendar.ParseDate(fields[4])
	if err != nil {
		return booking.Reservation{}, err
	}
	startTime, err := calendar.ParseClock(fields[5])
	if err != nil {
		return booking.Reservation{}, err
	}
	endTime, err := calendar.ParseClock(fields[6])
	if err != nil {
		return booking.Reservation{}, err
	}
	bookedOn, err := calendar.ParseDate(fields[7])
	if err != nil {
		return booking.Reservation{}, err
	}
	totalCost, err := decimal.NewFromString(fields[8])
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("total cost: %w", err)
	}
	downPayment, err := decimal.NewFromString(fields[9])
	if err != nil {
		return booking.Reservation{}, fmt.Errorf("down payment: %w", err)
	}
	return booking.Reservation{
		ID:          id,
		CustomerID:  fields[1],
		Resource:    booking.Resource(fields[2]),
		StartDate:   startDate,
		EndDate:     endDate,
		StartTime:   startTime,
		EndTime:     endTime,
		BookedOn:    bookedOn,
		TotalCost:   totalCost,
		DownPayment: downPayment,
	}, nil
}

func encodeTransaction(t booking.Transaction) string {
	return strings.Join([]string{
		strconv.Itoa(t.ID),
		t.WireKind(),
		t.Date.String(),
		encodeReservation(t.Snapshot),
		strconv.FormatInt(t.Timestamp, 10),
		t.StaffID,
	}, " ")
}

func parseTransaction(line string) (booking.Transaction, error) {
	fields := strings.Fields(line)
	if len(fields) != 15 {
		return booking.Transaction{}, fmt.Errorf("transaction record has %d fields, want 15", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return booking.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	kind, amount, err := booking.ParseWireKind(fields[1])
	if err != nil {
		return booking.Transaction{}, err
	}
	date, err := calendar.ParseDate(fields[2])
	if err != nil {
		return booking.Transaction{}, err
	}
	snapshot, err := parseReservation(fields[3:13])
	if err != nil {
		return booking.Transaction{}, err
	}
	if kind == booking.KindReservation {
		amount = snapshot.DownPayment
	}
	timestamp, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		return booking.Transaction{}, fmt.Errorf("transaction timestamp: %w", err)
	}
	return booking.Transaction{
		ID:        id,
		Kind:      kind,
		Amount:    amount,
		Date:      date,
		Snapshot:  snapshot,
		Timestamp: timestamp,
		StaffID:   fields[14],
	}, nil
}
