package slotlock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgLocker stores locks as rows keyed by (provider_id, slot_start). The
// primary key makes the insert an atomic check-and-set; expired rows are
// purged before each attempt so a crashed holder blocks for at most TTL.
type PgLocker struct {
	pool   *pgxpool.Pool
	ttl    time.Duration
	logger *zap.Logger
}

func NewPgLocker(pool *pgxpool.Pool, ttl time.Duration, logger *zap.Logger) *PgLocker {
	if ttl <= 0 {
		ttl = TTL
	}
	return &PgLocker{pool: pool, ttl: ttl, logger: logger}
}

func (l *PgLocker) Acquire(ctx context.Context, providerID uuid.UUID, slotStart, slotEnd time.Time, requesterID uuid.UUID) (bool, error) {
	// Opportunistic purge keeps dead locks from blocking past their TTL.
	_, err := l.pool.Exec(ctx, `
		DELETE FROM slot_locks
		WHERE expires_at < now()
	`)
	if err != nil {
		return false, err
	}

	tag, err := l.pool.Exec(ctx, `
		INSERT INTO slot_locks (provider_id, slot_start, slot_end, locked_by, expires_at)
		VALUES ($1, $2, $3, $4, now() + $5)
		ON CONFLICT (provider_id, slot_start) DO NOTHING
	`, providerID, slotStart, slotEnd, requesterID, l.ttl)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (l *PgLocker) Release(ctx context.Context, providerID uuid.UUID, slotStart time.Time, requesterID uuid.UUID) {
	_, err := l.pool.Exec(ctx, `
		DELETE FROM slot_locks
		WHERE provider_id = $1 AND slot_start = $2
	`, providerID, slotStart)
	if err != nil {
		l.logger.Error("slot lock release failed",
			zap.String("provider_id", providerID.String()),
			zap.Time("slot_start", slotStart),
			zap.String("locked_by", requesterID.String()),
			zap.Error(err),
		)
	}
}

func (l *PgLocker) IsLocked(ctx context.Context, providerID uuid.UUID, slotStart time.Time) (bool, error) {
	var locked bool
	err := l.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM slot_locks
			WHERE provider_id = $1 AND slot_start = $2 AND expires_at >= now()
		)
	`, providerID, slotStart).Scan(&locked)
	if err != nil {
		return false, err
	}
	return locked, nil
}

// PurgeExpired removes all expired lock rows; the sweeper worker calls
// this on an interval to keep the table small between acquisitions.
func (l *PgLocker) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := l.pool.Exec(ctx, `
		DELETE FROM slot_locks
		WHERE expires_at < now()
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
