/*
handlers.go - HTTP handlers for the reservation service

PURPOSE:
  Converts HTTP requests into engine and staff-directory calls. This layer
  owns input-format validation (date/time syntax, defaults); everything
  semantic lives in the booking engine.

ENDPOINTS:
  POST   /reservations  Create a reservation (201)
  DELETE /reservations  Cancel a reservation
  GET    /reservations  Range-filtered reservation report
  GET    /transactions  Range-filtered financial report
  GET    /login         Staff existence check
  POST   /staffs        Create staff (admin only)
  PUT    /staffs        Update staff role (admin only)
  DELETE /staffs        Delete staff (admin only)

ERROR HANDLING:
  Engine rejections surface verbatim as 400 with
  detail "<operation> failed: <reason>". Staff directory refusals carry
  their own status (403/404/409). Store I/O failures are 500.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/calendar"
	"github.com/mpcs/reservation-engine/staff"
)

// =============================================================================
// HANDLER
// =============================================================================

type Handler struct {
	engine *booking.Engine
	staff  *staff.Directory
	log    zerolog.Logger

	// today is swappable for deterministic tests.
	today func() calendar.Date
}

func NewHandler(engine *booking.Engine, directory *staff.Directory, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		staff:  directory,
		log:    log,
		today:  calendar.Today,
	}
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid request body")
		return
	}

	if req.CustomerID == "" {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Empty customer_id")
		return
	}
	if hasSpace(req.CustomerID) {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid customer_id: "+req.CustomerID)
		return
	}
	if hasSpace(req.StaffID) {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid staff_id: "+req.StaffID)
		return
	}

	startTime, err := calendar.ParseClock(req.StartTime)
	if err != nil {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid time format: "+req.StartTime)
		return
	}
	endTime := addHalfHour(startTime)
	if req.EndTime != "" {
		if endTime, err = calendar.ParseClock(req.EndTime); err != nil {
			writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid time format: "+req.EndTime)
			return
		}
	}

	startDate, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid date format: "+req.StartDate)
		return
	}
	endDate := startDate
	if req.EndDate != "" {
		if endDate, err = calendar.ParseDate(req.EndDate); err != nil {
			writeOperationError(w, http.StatusBadRequest, "Reservation", "Invalid date format: "+req.EndDate)
			return
		}
	}

	result, err := h.engine.Admit(r.Context(), booking.Request{
		CustomerID: req.CustomerID,
		Resource:   booking.Resource(req.Resource),
		StartDate:  startDate,
		EndDate:    endDate,
		StartTime:  startTime,
		EndTime:    endTime,
		BookedOn:   h.today(),
	}, req.StaffID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SuccessResponse{
		StatusCode: http.StatusCreated,
		Detail: ReservationDetail{
			ReservationID: strconv.Itoa(result.ReservationID),
			Discount:      strconv.Itoa(result.Discount),
			TotalCost:     result.TotalCost.String(),
			DownPayment:   result.DownPayment.String(),
		},
	})
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req CancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOperationError(w, http.StatusBadRequest, "Cancellation", "Invalid request body")
		return
	}

	id, err := strconv.Atoi(req.ReservationID)
	if err != nil {
		writeOperationError(w, http.StatusBadRequest, "Cancellation", "Invalid reservation id: "+req.ReservationID)
		return
	}
	if hasSpace(req.StaffID) {
		writeOperationError(w, http.StatusBadRequest, "Cancellation", "Invalid staff_id: "+req.StaffID)
		return
	}

	result, err := h.engine.Cancel(r.Context(), id, h.today(), req.StaffID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		StatusCode: http.StatusOK,
		Detail: CancellationDetail{
			PercentReturned: strconv.Itoa(result.PercentReturned),
			Refund:          result.Refund.String(),
		},
	})
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.reportRange(w, r, "Get Reservations")
	if !ok {
		return
	}
	customerID := r.URL.Query().Get("customer_id")

	rows := h.engine.ListReservations(r.Context(), start, end, customerID)
	writeJSON(w, http.StatusOK, SuccessResponse{
		StatusCode: http.StatusOK,
		Detail:     ReservationsReportDetail{Reservations: rows},
	})
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.reportRange(w, r, "Get Transactions")
	if !ok {
		return
	}

	rows := h.engine.ListTransactions(r.Context(), start, end)
	writeJSON(w, http.StatusOK, SuccessResponse{
		StatusCode: http.StatusOK,
		Detail:     TransactionsReportDetail{Transactions: rows},
	})
}

// reportRange resolves the report window: both dates default to
// today..today+7, and the end date alone defaults to start+7.
func (h *Handler) reportRange(w http.ResponseWriter, r *http.Request, operation string) (start, end calendar.Date, ok bool) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start_date"), q.Get("end_date")

	if startStr == "" {
		start = h.today()
		return start, start.AddDays(7), true
	}

	start, err := calendar.ParseDate(startStr)
	if err != nil {
		writeOperationError(w, http.StatusBadRequest, operation, "date format incorrect")
		return start, end, false
	}
	if endStr == "" {
		return start, start.AddDays(7), true
	}
	end, err = calendar.ParseDate(endStr)
	if err != nil {
		writeOperationError(w, http.StatusBadRequest, operation, "date format incorrect")
		return start, end, false
	}
	return start, end, true
}

// =============================================================================
// STAFF MANAGEMENT
// =============================================================================

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	staffID := r.URL.Query().Get("staff_id")
	if err := h.staff.Login(r.Context(), staffID); err != nil {
		h.writeStaffError(w, "LOGIN", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{StatusCode: http.StatusOK, Detail: ""})
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOperationError(w, http.StatusBadRequest, "CREATE STAFF", "Invalid request body")
		return
	}
	role := staff.Role(req.StaffRole)
	if req.StaffRole == "" {
		role = staff.RoleRegular
	}
	detail, err := h.staff.Create(r.Context(), req.StaffID, req.NewStaffID, role)
	if err != nil {
		h.writeStaffError(w, "CREATE STAFF", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{StatusCode: http.StatusCreated, Detail: detail})
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var req UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOperationError(w, http.StatusBadRequest, "UPDATE_STAFF", "Invalid request body")
		return
	}
	detail, err := h.staff.Update(r.Context(), req.StaffID, req.StaffToUpdateID, staff.Role(req.StaffRole))
	if err != nil {
		h.writeStaffError(w, "UPDATE_STAFF", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{StatusCode: http.StatusOK, Detail: detail})
}

func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	var req DeleteStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOperationError(w, http.StatusBadRequest, "DELETE_STAFF", "Invalid request body")
		return
	}
	detail, err := h.staff.Delete(r.Context(), req.StaffID, req.StaffToDeleteID)
	if err != nil {
		h.writeStaffError(w, "DELETE_STAFF", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{StatusCode: http.StatusOK, Detail: detail})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	if rej, ok := booking.AsRejection(err); ok {
		writeOperationError(w, http.StatusBadRequest, string(rej.Category), rej.Message)
		return
	}
	h.log.Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
}

func (h *Handler) writeStaffError(w http.ResponseWriter, operation string, err error) {
	var se *staff.Error
	if errors.As(err, &se) {
		writeOperationError(w, se.Status, operation, se.Detail)
		return
	}
	h.log.Error().Err(err).Str("operation", operation).Msg("staff request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
}

func writeOperationError(w http.ResponseWriter, status int, operation, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: operation + " failed: " + detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// hasSpace reports whether an identifier contains whitespace. Identifiers are
// written into space-separated data file records, so one with internal
// whitespace would shift every following field and poison the next load.
func hasSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}

// addHalfHour is the default end time when the client omits one.
func addHalfHour(c calendar.Clock) calendar.Clock {
	minute := c.Minute + 30
	hour := c.Hour
	if minute >= 60 {
		minute -= 60
		hour = (hour + 1) % 24
	}
	return calendar.Clock{Hour: hour, Minute: minute}
}
