package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carebridge/telemed-scheduling/internal/identity"
)

var (
	ErrInvalidWindow     = errors.New("start time must be before end time")
	ErrInvalidRecurrence = errors.New("unknown recurrence type")
	ErrEndBeforeAnchor   = errors.New("recurrence end must not precede the anchor date")
	ErrMissingFromDate   = errors.New("from date is required for this delete mode")
)

// Availability is the caller-facing resolution result, with the provider's
// timezone attached so slot times can be rendered locally.
type Availability struct {
	Available bool
	Slots     []ClockMinute
	Timezone  string
}

type Service struct {
	repo     Repository
	identity identity.Repository
	logger   *zap.Logger
}

func NewService(repo Repository, identityRepo identity.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		identity: identityRepo,
		logger:   logger,
	}
}

// ResolveAvailability merges both availability systems into the concrete
// slot list for one provider-date. Read-only; no locking.
func (s *Service) ResolveAvailability(ctx context.Context, providerID uuid.UUID, date Date) (*Availability, error) {
	provider, err := s.identity.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	templates, rules, blackouts, err := s.loadSources(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	day := ResolveDay(templates, rules, blackouts, date)
	return &Availability{
		Available: day.Available,
		Slots:     day.Slots,
		Timezone:  provider.Timezone,
	}, nil
}

// DayWindows loads rule sets and returns the open windows for the date.
// The booking recheck uses this for half-open containment tests.
func (s *Service) DayWindows(ctx context.Context, providerID uuid.UUID, date Date) ([]Window, error) {
	templates, rules, blackouts, err := s.loadSources(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	return DayWindows(templates, rules, blackouts, date), nil
}

func (s *Service) IsBlackout(ctx context.Context, providerID uuid.UUID, date Date) (bool, error) {
	b, err := s.repo.GetBlackout(ctx, providerID, date)
	if err != nil {
		return false, fmt.Errorf("load blackout: %w", err)
	}
	return b != nil, nil
}

func (s *Service) loadSources(ctx context.Context, providerID uuid.UUID, date Date) ([]WeeklyTemplate, []AvailabilityRule, []BlackoutDate, error) {
	templates, err := s.repo.ListTemplatesForWeekday(ctx, providerID, int(date.Weekday()))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load weekly templates: %w", err)
	}

	rules, err := s.repo.ListActiveRules(ctx, providerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load availability rules: %w", err)
	}

	blackouts, err := s.repo.ListBlackouts(ctx, providerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load blackout dates: %w", err)
	}

	return templates, rules, blackouts, nil
}

// CreateAvailabilityRule validates and persists a new date-anchored rule.
func (s *Service) CreateAvailabilityRule(ctx context.Context, providerID uuid.UUID, anchor Date, start, end ClockMinute, recurrence RecurrenceType, recurrenceEnd *Date) (*AvailabilityRule, error) {
	if _, err := s.identity.GetProviderByID(ctx, providerID); err != nil {
		return nil, err
	}
	if !start.Valid() || !end.Valid() || start >= end {
		return nil, ErrInvalidWindow
	}
	if !recurrence.Valid() {
		return nil, ErrInvalidRecurrence
	}
	if recurrenceEnd != nil && recurrenceEnd.Before(anchor) {
		return nil, ErrEndBeforeAnchor
	}

	rule := &AvailabilityRule{
		ProviderID:    providerID,
		Anchor:        anchor,
		Start:         start,
		End:           end,
		Recurrence:    recurrence,
		RecurrenceEnd: recurrenceEnd,
	}
	if err := s.repo.InsertRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("availability rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("recurrence", string(recurrence)),
	)
	return rule, nil
}

// DeleteAvailabilityRule removes occurrences from a rule. DeleteAll works
// on any rule; the other modes require a recurring rule and a fromDate the
// rule produces. Splits persist as truncate-original plus insert-tail.
func (s *Service) DeleteAvailabilityRule(ctx context.Context, ruleID uuid.UUID, mode DeleteMode, fromDate *Date) error {
	rule, err := s.repo.GetRuleByID(ctx, ruleID)
	if err != nil {
		return err
	}

	if mode == DeleteAll || rule.Recurrence == RecurNone {
		if err := s.repo.DeactivateRule(ctx, ruleID); err != nil {
			return err
		}
		s.logger.Info("availability rule deactivated", zap.String("rule_id", ruleID.String()))
		return nil
	}

	if fromDate == nil {
		return ErrMissingFromDate
	}

	plan, err := RemoveOccurrence(*rule, *fromDate, mode)
	if err != nil {
		return err
	}

	if plan.Deactivate {
		if err := s.repo.DeactivateRule(ctx, ruleID); err != nil {
			return err
		}
	}
	if plan.Update != nil {
		if err := s.repo.UpdateRule(ctx, *plan.Update); err != nil {
			return err
		}
	}
	if plan.Create != nil {
		if err := s.repo.InsertRule(ctx, plan.Create); err != nil {
			return err
		}
		s.logger.Info("availability rule split",
			zap.String("rule_id", ruleID.String()),
			zap.String("tail_rule_id", plan.Create.ID.String()),
			zap.String("removed", fromDate.String()),
		)
	}
	return nil
}

// SetWeeklyTemplate replaces the legacy per-weekday window.
func (s *Service) SetWeeklyTemplate(ctx context.Context, t WeeklyTemplate) error {
	if _, err := s.identity.GetProviderByID(ctx, t.ProviderID); err != nil {
		return err
	}
	if !t.Start.Valid() || !t.End.Valid() || t.Start >= t.End {
		return ErrInvalidWindow
	}
	return s.repo.ReplaceTemplateForWeekday(ctx, t)
}

// AddBlackout voids all availability on a date.
func (s *Service) AddBlackout(ctx context.Context, providerID uuid.UUID, day Date, reason *string) (*BlackoutDate, error) {
	if _, err := s.identity.GetProviderByID(ctx, providerID); err != nil {
		return nil, err
	}
	b := &BlackoutDate{ProviderID: providerID, Day: day, Reason: reason}
	if err := s.repo.InsertBlackout(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
