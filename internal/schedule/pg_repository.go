package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanTemplate(row pgx.Row) (*WeeklyTemplate, error) {
	var t WeeklyTemplate
	var weekday int
	var start, end int

	err := row.Scan(
		&t.ID,
		&t.ProviderID,
		&weekday,
		&start,
		&end,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Weekday = time.Weekday(weekday)
	t.Start = ClockMinute(start)
	t.End = ClockMinute(end)
	return &t, nil
}

func scanRule(row pgx.Row) (*AvailabilityRule, error) {
	var r AvailabilityRule
	var anchor time.Time
	var recurrenceEnd *time.Time
	var start, end int

	err := row.Scan(
		&r.ID,
		&r.ProviderID,
		&anchor,
		&start,
		&end,
		&r.Recurrence,
		&recurrenceEnd,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	r.Anchor = DateOf(anchor)
	r.Start = ClockMinute(start)
	r.End = ClockMinute(end)
	if recurrenceEnd != nil {
		d := DateOf(*recurrenceEnd)
		r.RecurrenceEnd = &d
	}
	return &r, nil
}

func scanBlackout(row pgx.Row) (*BlackoutDate, error) {
	var b BlackoutDate
	var day time.Time
	var reason *string

	err := row.Scan(
		&b.ID,
		&b.ProviderID,
		&day,
		&reason,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Day = DateOf(day)
	b.Reason = reason
	return &b, nil
}

func ruleEndParam(r AvailabilityRule) *time.Time {
	if r.RecurrenceEnd == nil {
		return nil
	}
	t := r.RecurrenceEnd.Time()
	return &t
}

// Interface methods

func (p *PgRepository) ListTemplatesForWeekday(ctx context.Context, providerID uuid.UUID, weekday int) ([]WeeklyTemplate, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, provider_id, weekday, start_minute, end_minute, created_at
		FROM weekly_templates
		WHERE provider_id = $1 AND weekday = $2
	`, providerID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WeeklyTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// ReplaceTemplateForWeekday keeps the legacy at-most-one-row-per-weekday
// shape by deleting before inserting; there is no storage constraint.
func (p *PgRepository) ReplaceTemplateForWeekday(ctx context.Context, t WeeklyTemplate) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM weekly_templates
		WHERE provider_id = $1 AND weekday = $2
	`, t.ProviderID, int(t.Weekday))
	if err != nil {
		return fmt.Errorf("delete weekly template: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO weekly_templates (provider_id, weekday, start_minute, end_minute, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, t.ProviderID, int(t.Weekday), int(t.Start), int(t.End))
	if err != nil {
		return fmt.Errorf("insert weekly template: %w", err)
	}

	return tx.Commit(ctx)
}

func (p *PgRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*AvailabilityRule, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, provider_id, anchor, start_minute, end_minute, recurrence, recurrence_end, is_active, created_at, updated_at
		FROM availability_rules
		WHERE id = $1
	`, id)
	return scanRule(row)
}

func (p *PgRepository) ListActiveRules(ctx context.Context, providerID uuid.UUID) ([]AvailabilityRule, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, provider_id, anchor, start_minute, end_minute, recurrence, recurrence_end, is_active, created_at, updated_at
		FROM availability_rules
		WHERE provider_id = $1 AND is_active = true
		ORDER BY anchor, start_minute
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilityRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

func (p *PgRepository) InsertRule(ctx context.Context, r *AvailabilityRule) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO availability_rules (id, provider_id, anchor, start_minute, end_minute, recurrence, recurrence_end, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, now(), now())
		RETURNING created_at, updated_at
	`, r.ID, r.ProviderID, r.Anchor.Time(), int(r.Start), int(r.End), r.Recurrence, ruleEndParam(*r))

	if err := row.Scan(&r.CreatedAt, &r.UpdatedAt); err != nil {
		return fmt.Errorf("insert availability rule: %w", err)
	}
	r.Active = true
	return nil
}

func (p *PgRepository) UpdateRule(ctx context.Context, r AvailabilityRule) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE availability_rules
		SET anchor = $2,
		    start_minute = $3,
		    end_minute = $4,
		    recurrence = $5,
		    recurrence_end = $6,
		    updated_at = now()
		WHERE id = $1
	`, r.ID, r.Anchor.Time(), int(r.Start), int(r.End), r.Recurrence, ruleEndParam(r))
	if err != nil {
		return fmt.Errorf("update availability rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (p *PgRepository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE availability_rules
		SET is_active = false,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate availability rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (p *PgRepository) GetBlackout(ctx context.Context, providerID uuid.UUID, day Date) (*BlackoutDate, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, provider_id, day, reason, created_at
		FROM blackout_dates
		WHERE provider_id = $1 AND day = $2
	`, providerID, day.Time())

	b, err := scanBlackout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (p *PgRepository) ListBlackouts(ctx context.Context, providerID uuid.UUID) ([]BlackoutDate, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, provider_id, day, reason, created_at
		FROM blackout_dates
		WHERE provider_id = $1
		ORDER BY day
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BlackoutDate
	for rows.Next() {
		b, err := scanBlackout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (p *PgRepository) InsertBlackout(ctx context.Context, b *BlackoutDate) error {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO blackout_dates (provider_id, day, reason, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (provider_id, day) DO UPDATE SET reason = EXCLUDED.reason
		RETURNING id, created_at
	`, b.ProviderID, b.Day.Time(), b.Reason)

	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("insert blackout date: %w", err)
	}
	return nil
}
