package schedule

import (
	"context"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the schedule service
// and the booking recheck.
type Repository interface {
	ListTemplatesForWeekday(ctx context.Context, providerID uuid.UUID, weekday int) ([]WeeklyTemplate, error)
	ReplaceTemplateForWeekday(ctx context.Context, t WeeklyTemplate) error

	GetRuleByID(ctx context.Context, id uuid.UUID) (*AvailabilityRule, error)
	ListActiveRules(ctx context.Context, providerID uuid.UUID) ([]AvailabilityRule, error)
	InsertRule(ctx context.Context, r *AvailabilityRule) error
	UpdateRule(ctx context.Context, r AvailabilityRule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error

	GetBlackout(ctx context.Context, providerID uuid.UUID, day Date) (*BlackoutDate, error)
	ListBlackouts(ctx context.Context, providerID uuid.UUID) ([]BlackoutDate, error)
	InsertBlackout(ctx context.Context, b *BlackoutDate) error
}
