// Package slotlock provides short-lived mutual exclusion over one
// (provider, slot start) pair during a booking attempt. Exclusivity is
// enforced by the backing store, never by process memory: handler
// instances may run in separate processes sharing one store.
package slotlock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TTL bounds how long an unreleased lock can block a slot. A holder that
// dies without releasing is unblocked by expiry; this is the sole liveness
// safety net.
const TTL = 30 * time.Second

// Locker is the narrow lock interface the booking coordinator depends on.
//
// Acquire purges expired locks for the key, then attempts an atomic
// conditional insert. It returns false when a live lock already holds the
// key. Release is idempotent and never returns an error: a cleanup failure
// must not mask the booking outcome, so backends log and move on.
type Locker interface {
	Acquire(ctx context.Context, providerID uuid.UUID, slotStart, slotEnd time.Time, requesterID uuid.UUID) (bool, error)
	Release(ctx context.Context, providerID uuid.UUID, slotStart time.Time, requesterID uuid.UUID)
	IsLocked(ctx context.Context, providerID uuid.UUID, slotStart time.Time) (bool, error)
}
