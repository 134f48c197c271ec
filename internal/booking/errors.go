package booking

import "errors"

// Validation failures; surfaced before any lock is requested.
var (
	ErrScheduledInPast  = errors.New("scheduled time must be in the future")
	ErrBeyondHorizon    = errors.New("scheduled time exceeds the booking horizon")
	ErrDurationTooShort = errors.New("duration must be at least 15 minutes")
)

// Forbidden failures; also pre-lock.
var (
	ErrPatientProfileIncomplete = errors.New("patient profile is not complete")
	ErrProviderNotApproved      = errors.New("provider is not approved for booking")
)

// Conflict failures. ErrSlotBeingBooked comes from lock acquisition;
// the rest are discovered during the recheck, after the lock is held.
var (
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	ErrSlotTaken       = errors.New("slot already has an appointment")
	ErrSlotUnavailable = errors.New("slot no longer available")
	ErrBlackoutDay     = errors.New("provider is unavailable on that date")
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
