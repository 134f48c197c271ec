package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carebridge/telemed-scheduling/internal/booking"
	"github.com/carebridge/telemed-scheduling/internal/identity"
	"github.com/carebridge/telemed-scheduling/internal/schedule"
)

func getAvailabilityHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		date, err := schedule.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		avail, err := svc.ResolveAvailability(r.Context(), providerID, date)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		slots := make([]string, 0, len(avail.Slots))
		for _, s := range avail.Slots {
			slots = append(slots, s.String())
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			ProviderID: providerID.String(),
			Date:       date.String(),
			Available:  avail.Available,
			Slots:      slots,
			Timezone:   avail.Timezone,
		})
	}
}

func slotCheckHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_at", "at must be RFC3339")
			return
		}

		available, err := coord.IsSlotAvailable(r.Context(), providerID, at)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, SlotCheckResponse{
			ProviderID: providerID.String(),
			At:         at,
			Available:  available,
		})
	}
}

func bookSlotHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a valid UUID")
			return
		}

		appt, err := coord.Book(r.Context(), booking.BookRequest{
			PatientID:       patientID,
			ProviderID:      providerID,
			ScheduledAt:     req.ScheduledAt,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt))
	}
}

func getAppointmentHandler(coord *booking.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := coord.GetAppointment(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

// transitionHandler covers cancel, complete and no-show, which differ only
// in the target status.
func transitionHandler(transition func(context.Context, uuid.UUID) (*booking.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := transition(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func listAppointmentsHandler(list func(context.Context, uuid.UUID, int, int) ([]booking.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "id must be a valid UUID")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := list(r.Context(), id, limit, offset)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		out := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			out = append(out, appointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Appointments: out,
			Limit:        limit,
			Offset:       offset,
		})
	}
}

func createRuleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		var req CreateRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		anchor, err := schedule.ParseDate(req.Anchor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_anchor", "anchor must be YYYY-MM-DD")
			return
		}
		start, err := schedule.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be HH:MM")
			return
		}
		end, err := schedule.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "end_time must be HH:MM")
			return
		}

		var recurrenceEnd *schedule.Date
		if req.RecurrenceEnd != "" {
			d, err := schedule.ParseDate(req.RecurrenceEnd)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_recurrence_end", "recurrence_end must be YYYY-MM-DD")
				return
			}
			recurrenceEnd = &d
		}

		rule, err := svc.CreateAvailabilityRule(r.Context(), providerID, anchor, start, end,
			schedule.RecurrenceType(req.Recurrence), recurrenceEnd)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ruleResponse(rule))
	}
}

func deleteRuleHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_rule_id", "id must be a valid UUID")
			return
		}

		mode := schedule.DeleteMode(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = schedule.DeleteAll
		}
		if !mode.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be all, this_only or this_and_following")
			return
		}

		var fromDate *schedule.Date
		if from := r.URL.Query().Get("from"); from != "" {
			d, err := schedule.ParseDate(from)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
				return
			}
			fromDate = &d
		}

		if err := svc.DeleteAvailabilityRule(r.Context(), ruleID, mode, fromDate); err != nil {
			handleScheduleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func setWeeklyTemplateHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		var req SetWeeklyTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Weekday < 0 || req.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "invalid_weekday", "weekday must be 0 (Sunday) through 6 (Saturday)")
			return
		}

		start, err := schedule.ParseClock(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be HH:MM")
			return
		}
		end, err := schedule.ParseClock(req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end_time", "end_time must be HH:MM")
			return
		}

		err = svc.SetWeeklyTemplate(r.Context(), schedule.WeeklyTemplate{
			ProviderID: providerID,
			Weekday:    time.Weekday(req.Weekday),
			Start:      start,
			End:        end,
		})
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func addBlackoutHandler(svc *schedule.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "id must be a valid UUID")
			return
		}

		var req AddBlackoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		day, err := schedule.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		if _, err := svc.AddBlackout(r.Context(), providerID, day, req.Reason); err != nil {
			handleScheduleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func appointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		PatientID:        a.PatientID,
		ProviderID:       a.ProviderID,
		ScheduledAt:      a.ScheduledAt,
		DurationMinutes:  a.DurationMinutes,
		Status:           string(a.Status),
		FeeCents:         a.FeeCents,
		PatientTimezone:  a.PatientTimezone,
		ProviderTimezone: a.ProviderTimezone,
	}
}

func ruleResponse(r *schedule.AvailabilityRule) RuleResponse {
	resp := RuleResponse{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		Anchor:     r.Anchor.String(),
		StartTime:  r.Start.String(),
		EndTime:    r.End.String(),
		Recurrence: string(r.Recurrence),
		Active:     r.Active,
	}
	if r.RecurrenceEnd != nil {
		s := r.RecurrenceEnd.String()
		resp.RecurrenceEnd = &s
	}
	return resp
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, identity.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, booking.ErrPatientProfileIncomplete):
		writeError(w, http.StatusForbidden, "patient_profile_incomplete", err.Error())
	case errors.Is(err, booking.ErrProviderNotApproved):
		writeError(w, http.StatusForbidden, "provider_not_approved", err.Error())
	case errors.Is(err, booking.ErrScheduledInPast),
		errors.Is(err, booking.ErrBeyondHorizon),
		errors.Is(err, booking.ErrDurationTooShort):
		writeError(w, http.StatusBadRequest, "invalid_booking", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrBlackoutDay):
		writeError(w, http.StatusConflict, "slot_not_available", err.Error())
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider_not_found", err.Error())
	case errors.Is(err, schedule.ErrRuleNotFound):
		writeError(w, http.StatusNotFound, "rule_not_found", err.Error())
	case errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrInvalidRecurrence),
		errors.Is(err, schedule.ErrEndBeforeAnchor),
		errors.Is(err, schedule.ErrMissingFromDate),
		errors.Is(err, schedule.ErrNotRecurring),
		errors.Is(err, schedule.ErrNoOccurrence),
		errors.Is(err, schedule.ErrInactiveRule):
		writeError(w, http.StatusBadRequest, "invalid_rule_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
