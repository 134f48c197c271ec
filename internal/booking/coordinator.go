package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carebridge/telemed-scheduling/internal/identity"
	"github.com/carebridge/telemed-scheduling/internal/schedule"
	"github.com/carebridge/telemed-scheduling/internal/slotlock"
)

const (
	// DefaultDurationMinutes applies when the caller omits a duration.
	DefaultDurationMinutes = 30
	// MinDurationMinutes is the shortest bookable consultation.
	MinDurationMinutes = 15
	// BookingHorizon caps how far ahead a slot can be booked.
	BookingHorizon = 90 * 24 * time.Hour
)

// WindowSource is the slice of the schedule service the recheck needs.
type WindowSource interface {
	DayWindows(ctx context.Context, providerID uuid.UUID, date schedule.Date) ([]schedule.Window, error)
	IsBlackout(ctx context.Context, providerID uuid.UUID, date schedule.Date) (bool, error)
}

// Coordinator serializes booking attempts per (provider, instant) through
// the slot locker: validate, acquire, recheck, commit, release. Release
// runs on every exit path once the lock is held.
type Coordinator struct {
	repo     Repository
	identity identity.Repository
	windows  WindowSource
	locker   slotlock.Locker
	logger   *zap.Logger
	now      func() time.Time
}

func NewCoordinator(repo Repository, identityRepo identity.Repository, windows WindowSource, locker slotlock.Locker, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		repo:     repo,
		identity: identityRepo,
		windows:  windows,
		locker:   locker,
		logger:   logger,
		now:      time.Now,
	}
}

type BookRequest struct {
	PatientID   uuid.UUID
	ProviderID  uuid.UUID
	ScheduledAt time.Time
	// DurationMinutes defaults to DefaultDurationMinutes when zero.
	DurationMinutes int
}

// Book runs the full state machine and returns the committed appointment
// or the first failure. Validation and identity failures never touch the
// lock; conflicts discovered after acquisition surface only after the lock
// has been released.
func (c *Coordinator) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	patient, provider, scheduledAt, duration, err := c.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	slotEnd := scheduledAt.Add(time.Duration(duration) * time.Minute)
	acquired, err := c.locker.Acquire(ctx, req.ProviderID, scheduledAt, slotEnd, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("acquire slot lock: %w", err)
	}
	if !acquired {
		return nil, ErrSlotBeingBooked
	}
	defer c.locker.Release(ctx, req.ProviderID, scheduledAt, req.PatientID)

	// The lock does not prove the slot was free before it existed, nor
	// that the schedule is unchanged since the caller saw the slot list.
	if err := c.recheck(ctx, req.ProviderID, scheduledAt); err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID:        req.PatientID,
		ProviderID:       req.ProviderID,
		ScheduledAt:      scheduledAt,
		DurationMinutes:  duration,
		Status:           StatusConfirmed,
		FeeCents:         provider.FeeCents,
		PatientTimezone:  patient.Timezone,
		ProviderTimezone: provider.Timezone,
	}
	if err := c.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	c.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("provider_id", req.ProviderID.String()),
		zap.Time("scheduled_at", scheduledAt),
	)
	return appt, nil
}

func (c *Coordinator) validate(ctx context.Context, req BookRequest) (*identity.Patient, *identity.Provider, time.Time, int, error) {
	patient, err := c.identity.GetPatientByID(ctx, req.PatientID)
	if err != nil {
		return nil, nil, time.Time{}, 0, err
	}
	if !patient.ProfileComplete {
		return nil, nil, time.Time{}, 0, ErrPatientProfileIncomplete
	}

	provider, err := c.identity.GetProviderByID(ctx, req.ProviderID)
	if err != nil {
		return nil, nil, time.Time{}, 0, err
	}
	if !provider.Bookable() {
		return nil, nil, time.Time{}, 0, ErrProviderNotApproved
	}

	scheduledAt := req.ScheduledAt.UTC().Truncate(time.Minute)
	now := c.now()
	if !scheduledAt.After(now) {
		return nil, nil, time.Time{}, 0, ErrScheduledInPast
	}
	if scheduledAt.After(now.Add(BookingHorizon)) {
		return nil, nil, time.Time{}, 0, ErrBeyondHorizon
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}
	if duration < MinDurationMinutes {
		return nil, nil, time.Time{}, 0, ErrDurationTooShort
	}

	return patient, provider, scheduledAt, duration, nil
}

// recheck runs under the lock during booking and bare during availability
// previews: existing appointment, blackout, half-open window containment.
func (c *Coordinator) recheck(ctx context.Context, providerID uuid.UUID, scheduledAt time.Time) error {
	existing, err := c.repo.GetActiveAppointmentAt(ctx, providerID, scheduledAt)
	if err != nil {
		return fmt.Errorf("check existing appointment: %w", err)
	}
	if existing != nil {
		return ErrSlotTaken
	}

	day := schedule.DateOf(scheduledAt)
	blackout, err := c.windows.IsBlackout(ctx, providerID, day)
	if err != nil {
		return err
	}
	if blackout {
		return ErrBlackoutDay
	}

	windows, err := c.windows.DayWindows(ctx, providerID, day)
	if err != nil {
		return err
	}
	if !schedule.WindowsContain(windows, schedule.ClockOf(scheduledAt)) {
		return ErrSlotUnavailable
	}

	return nil
}

// IsSlotAvailable is a best-effort, lock-free preview of the recheck used
// by reschedule flows. It is not a booking guarantee.
func (c *Coordinator) IsSlotAvailable(ctx context.Context, providerID uuid.UUID, scheduledAt time.Time) (bool, error) {
	err := c.recheck(ctx, providerID, scheduledAt.UTC().Truncate(time.Minute))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrBlackoutDay), errors.Is(err, ErrSlotUnavailable):
		return false, nil
	default:
		return false, err
	}
}

func (c *Coordinator) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return c.repo.GetAppointmentByID(ctx, id)
}

// ListByPatient returns a page of the patient's appointments.
func (c *Coordinator) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := c.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

// ListByProvider returns a page of the provider's appointments.
func (c *Coordinator) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	appts, err := c.repo.ListAppointmentsByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by provider: %w", err)
	}
	return appts, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Cancel, Complete and NoShow are out-of-band lifecycle transitions; they
// never revisit locking.

func (c *Coordinator) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return c.transition(ctx, id, StatusConfirmed, StatusCancelled)
}

func (c *Coordinator) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return c.transition(ctx, id, StatusConfirmed, StatusCompleted)
}

func (c *Coordinator) NoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return c.transition(ctx, id, StatusConfirmed, StatusNoShow)
}

func (c *Coordinator) transition(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	updated, err := c.repo.UpdateAppointmentStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Distinguish a missing row from a wrong-state row.
			if _, getErr := c.repo.GetAppointmentByID(ctx, id); getErr == nil {
				return nil, ErrInvalidStatusTransition
			}
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return updated, nil
}
