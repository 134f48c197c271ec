package booking

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment is created once at commit and mutated later only by status
// transitions. Fee and both parties' timezones are snapshots taken at
// booking time; later profile edits never alter them.
type Appointment struct {
	ID               uuid.UUID
	PatientID        uuid.UUID
	ProviderID       uuid.UUID
	ScheduledAt      time.Time
	DurationMinutes  int
	Status           AppointmentStatus
	FeeCents         int64
	PatientTimezone  string
	ProviderTimezone string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
