/*
dto.go - Request and response shapes for the HTTP surface

PURPOSE:
  JSON structures exchanged with the text-mode staff client. Successful
  responses wrap the engine's positive result under {status_code, detail};
  failures carry a single detail string of the form
  "<operation> failed: <reason>".
*/
package api

import "github.com/mpcs/reservation-engine/booking"

// =============================================================================
// REQUESTS
// =============================================================================

// ReservationRequest creates a (possibly recurring) reservation. End date
// defaults to the start date and end time to start time + 30 minutes.
type ReservationRequest struct {
	CustomerID string `json:"customer_id"`
	Resource   string `json:"resource"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time,omitempty"`
	StaffID    string `json:"staff_id"`
}

type CancellationRequest struct {
	ReservationID string `json:"reservation_id"`
	StaffID       string `json:"staff_id"`
}

type CreateStaffRequest struct {
	NewStaffID string `json:"new_staff_id"`
	StaffRole  string `json:"staff_role,omitempty"` // REGULAR when omitted
	StaffID    string `json:"staff_id"`
}

type UpdateStaffRequest struct {
	StaffToUpdateID string `json:"staff_to_update_id"`
	StaffRole       string `json:"staff_role"`
	StaffID         string `json:"staff_id"`
}

type DeleteStaffRequest struct {
	StaffToDeleteID string `json:"staff_to_delete_id"`
	StaffID         string `json:"staff_id"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type SuccessResponse struct {
	StatusCode int `json:"status_code"`
	Detail     any `json:"detail"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ReservationDetail mirrors the engine's admission result; values are
// rendered as strings for the reporting client.
type ReservationDetail struct {
	ReservationID string `json:"reservation_id"`
	Discount      string `json:"discount"`
	TotalCost     string `json:"total_cost"`
	DownPayment   string `json:"down_payment"`
}

type CancellationDetail struct {
	PercentReturned string `json:"percent_returned"`
	Refund          string `json:"refund"`
}

type ReservationsReportDetail struct {
	Reservations []booking.ReservationRow `json:"reservations"`
}

type TransactionsReportDetail struct {
	Transactions []booking.TransactionRow `json:"transactions"`
}
