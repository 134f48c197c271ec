package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrProviderNotFound = errors.New("provider not found")
)

type ApprovalStatus string

const (
	StatusPending   ApprovalStatus = "pending"
	StatusApproved  ApprovalStatus = "approved"
	StatusRejected  ApprovalStatus = "rejected"
	StatusSuspended ApprovalStatus = "suspended"
)

type Patient struct {
	ID              uuid.UUID
	Name            string
	Email           *string
	Timezone        string
	ProfileComplete bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Provider is the bookable party. Only approved providers accept bookings.
type Provider struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	Status    ApprovalStatus
	Timezone  string
	// FeeCents is the consultation fee snapshotted onto appointments.
	FeeCents  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Provider) Bookable() bool {
	return p.Status == StatusApproved
}
