package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// RuleSource lists the rules to evaluate; store.SQLiteRepo implements it.
type RuleSource interface {
	ListEnabledRules(ctx context.Context, userID int64) ([]domain.Rule, error)
}

// Catalog resolves an activity type to its display name.
type Catalog interface {
	ActivityName(ctx context.Context, activityTypeID int64) (string, error)
}

// Sink delivers one notification. The notification ID is stable per
// user/activity pair so the platform replaces the previous reminder in the
// same slot instead of stacking a new one.
type Sink interface {
	Send(ctx context.Context, userID int64, notificationID uint32, title, body string) error
}

// Dispatcher is the engine's single entry point. The host scheduler invokes
// RunTick once per tick; everything else follows from persisted state.
type Dispatcher struct {
	rules   RuleSource
	catalog Catalog
	sink    Sink
	eval    *Evaluator
	log     *zap.Logger
}

// NewDispatcher wires a dispatcher from injected collaborators; there are no
// process-wide singletons anywhere in the engine.
func NewDispatcher(rules RuleSource, catalog Catalog, sink Sink, eval *Evaluator, log *zap.Logger) *Dispatcher {
	return &Dispatcher{rules: rules, catalog: catalog, sink: sink, eval: eval, log: log}
}

// RunTick evaluates every enabled rule of one user at the given instant and
// fires notifications for the rules that pass all gates. now must already be
// localized to the user's timezone, since windows and cadences are wall-clock
// concepts.
//
// Failure containment: a failed rule-list load abandons the tick (the host's
// next tick retries for free); any per-rule failure is logged and the loop
// moves on. A trigger-log entry is appended only after a successful send, so
// a failed delivery is retried by a later tick instead of being silently
// recorded as done.
func (d *Dispatcher) RunTick(ctx context.Context, userID int64, now time.Time) []domain.Verdict {
	rules, err := d.rules.ListEnabledRules(ctx, userID)
	if err != nil {
		d.log.Error("rule list load failed, abandoning tick",
			zap.Int64("user", userID), zap.Error(err))
		return nil
	}

	verdicts := make([]domain.Verdict, 0, len(rules))
	for i := range rules {
		rule := &rules[i]
		v := d.eval.Evaluate(ctx, rule, now)
		if v.Fired() {
			if err := d.deliver(ctx, rule, now); err != nil {
				d.log.Error("delivery failed, rule will retry on a later tick",
					zap.String("rule", rule.ID),
					zap.Int64("user", userID),
					zap.Error(err))
			}
		}
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// deliver resolves the activity name, sends the notification and records the
// firing. The log append deliberately comes after the send: a crash between
// the two can cause a one-off duplicate, never a lost reminder.
func (d *Dispatcher) deliver(ctx context.Context, rule *domain.Rule, now time.Time) error {
	name, err := d.catalog.ActivityName(ctx, rule.ActivityTypeID)
	if err != nil {
		return fmt.Errorf("resolve activity name: %w", err)
	}

	id := domain.NotificationID(rule.UserID, rule.ActivityTypeID)
	title := fmt.Sprintf("Time for a %s break", name)
	body := fmt.Sprintf("You planned a %s every %s. A couple of minutes is enough.", name, rule.Interval())

	if err := d.sink.Send(ctx, rule.UserID, id, title, body); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if err := d.eval.triggers.AppendTrigger(ctx, rule.UserID, rule.ActivityTypeID, now); err != nil {
		// Sent but not recorded: the next tick may duplicate this reminder.
		d.log.Warn("trigger log append failed after send",
			zap.String("rule", rule.ID), zap.Error(err))
	}

	d.log.Info("reminder fired",
		zap.String("rule", rule.ID),
		zap.Int64("user", rule.UserID),
		zap.String("activity", name),
		zap.Uint32("notification_id", id))
	return nil
}
