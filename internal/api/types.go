package api

import (
	"time"

	"github.com/google/uuid"
)

type BookSlotRequest struct {
	PatientID       string    `json:"patient_id"`
	ProviderID      string    `json:"provider_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}

type AppointmentResponse struct {
	ID               uuid.UUID `json:"id"`
	PatientID        uuid.UUID `json:"patient_id"`
	ProviderID       uuid.UUID `json:"provider_id"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	DurationMinutes  int       `json:"duration_minutes"`
	Status           string    `json:"status"`
	FeeCents         int64     `json:"fee_cents"`
	PatientTimezone  string    `json:"patient_timezone"`
	ProviderTimezone string    `json:"provider_timezone"`
}

type AvailabilityResponse struct {
	ProviderID string   `json:"provider_id"`
	Date       string   `json:"date"`
	Available  bool     `json:"available"`
	Slots      []string `json:"slots"`
	Timezone   string   `json:"timezone"`
}

type SlotCheckResponse struct {
	ProviderID string    `json:"provider_id"`
	At         time.Time `json:"at"`
	Available  bool      `json:"available"`
}

type CreateRuleRequest struct {
	Anchor        string `json:"anchor"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Recurrence    string `json:"recurrence"`
	RecurrenceEnd string `json:"recurrence_end,omitempty"`
}

type RuleResponse struct {
	ID            uuid.UUID `json:"id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Anchor        string    `json:"anchor"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Recurrence    string    `json:"recurrence"`
	RecurrenceEnd *string   `json:"recurrence_end,omitempty"`
	Active        bool      `json:"is_active"`
}

type SetWeeklyTemplateRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AddBlackoutRequest struct {
	Date   string  `json:"date"`
	Reason *string `json:"reason,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
