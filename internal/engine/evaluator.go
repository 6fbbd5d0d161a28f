package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// ActivitySource is the slice of the store the completion gate needs.
// store.SQLiteRepo implements it.
type ActivitySource interface {
	FindActivitiesInRange(ctx context.Context, userID, activityTypeID int64, from, to time.Time) ([]domain.ActivityRecord, error)
}

// TriggerLog is the engine's view of the append-only firing log.
type TriggerLog interface {
	FindRecentTriggers(ctx context.Context, userID, activityTypeID int64, since time.Time) ([]domain.TriggerLogEntry, error)
	AppendTrigger(ctx context.Context, userID, activityTypeID int64, triggeredAt time.Time) error
}

// Evaluator decides, for one rule at one instant, whether a reminder should
// fire. It holds no state between calls: every gate re-derives its answer
// from the stores, so overlapping or restarted ticks converge.
type Evaluator struct {
	activities ActivitySource
	triggers   TriggerLog
	tun        Tunables
	log        *zap.Logger
}

// NewEvaluator wires an evaluator from its collaborators.
func NewEvaluator(activities ActivitySource, triggers TriggerLog, tun Tunables, log *zap.Logger) *Evaluator {
	return &Evaluator{activities: activities, triggers: triggers, tun: tun, log: log}
}

// Evaluate runs the gate chain for a rule. Gates are ordered cheapest and
// most decisive first; the first gate that suppresses wins.
func (e *Evaluator) Evaluate(ctx context.Context, rule *domain.Rule, now time.Time) domain.Verdict {
	v := domain.Verdict{RuleID: rule.ID, EvaluatedAt: now}

	if !rule.Enabled {
		v.Outcome = domain.OutcomeSuppressedDisabled
		return v
	}
	if err := rule.Validate(); err != nil {
		e.log.Warn("skipping malformed rule", zap.String("rule", rule.ID), zap.Error(err))
		v.Outcome = domain.OutcomeSkippedInvalid
		return v
	}

	nowM := domain.MinuteOfDay(now.Hour(), now.Minute())
	if !domain.InWindow(nowM, rule.WindowStartM, rule.WindowEndM) {
		v.Outcome = domain.OutcomeSuppressedByWindow
		return v
	}

	if !domain.DayEligible(rule.CreatedAt, now, rule.IntervalDays) ||
		!domain.MinuteEligible(nowM, rule.WindowStartM, rule.WindowEndM, rule.IntervalMinutes, e.tun.ToleranceMinutes) {
		v.Outcome = domain.OutcomeSuppressedByCadence
		return v
	}

	if e.hasRecentlyCompleted(ctx, rule, now) {
		v.Outcome = domain.OutcomeSuppressedByCompletion
		return v
	}

	if e.hasRecentTrigger(ctx, rule, now) {
		v.Outcome = domain.OutcomeSuppressedByDuplicate
		return v
	}

	v.Outcome = domain.OutcomeFire
	return v
}

// hasRecentlyCompleted checks whether the user already performed the matching
// activity within the trailing interval. On store failure the gate defaults
// to fail-open: the reminder fires anyway.
func (e *Evaluator) hasRecentlyCompleted(ctx context.Context, rule *domain.Rule, now time.Time) bool {
	from := now.Add(-rule.Interval())
	records, err := e.activities.FindActivitiesInRange(ctx, rule.UserID, rule.ActivityTypeID, from, now)
	if err != nil {
		e.log.Warn("activity lookup failed",
			zap.String("rule", rule.ID),
			zap.Bool("fail_open", e.tun.CompletionFailOpen),
			zap.Error(err))
		return !e.tun.CompletionFailOpen
	}
	return len(records) > 0
}

// hasRecentTrigger checks the trigger log for a firing inside the cooldown
// window. This gate bounds the duplication risk the cadence tolerance band
// introduces.
func (e *Evaluator) hasRecentTrigger(ctx context.Context, rule *domain.Rule, now time.Time) bool {
	since := now.Add(-e.tun.Cooldown(rule.IntervalMinutes))
	entries, err := e.triggers.FindRecentTriggers(ctx, rule.UserID, rule.ActivityTypeID, since)
	if err != nil {
		e.log.Warn("trigger log lookup failed",
			zap.String("rule", rule.ID),
			zap.Bool("fail_open", e.tun.DuplicateFailOpen),
			zap.Error(err))
		return !e.tun.DuplicateFailOpen
	}
	return len(entries) > 0
}
