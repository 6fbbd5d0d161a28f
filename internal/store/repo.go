package store

import (
	"context"
	"time"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// Repo defines every storage operation the bot and the engine need. The
// engine itself depends only on narrow per-gate interfaces declared in the
// engine package; *SQLiteRepo satisfies those structurally.
type Repo interface {
	// profiles
	UpsertProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	SetProfileEnabled(ctx context.Context, userID int64, enabled bool) error
	ListActiveProfiles(ctx context.Context) ([]domain.Profile, error)

	// reminder rules (read-only to the engine; soft-deleted, never dropped)
	CreateRule(ctx context.Context, r *domain.Rule) error
	ListRules(ctx context.Context, userID int64) ([]domain.Rule, error)
	ListEnabledRules(ctx context.Context, userID int64) ([]domain.Rule, error)
	GetRule(ctx context.Context, ruleID string) (*domain.Rule, error)
	SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error
	SoftDeleteRule(ctx context.Context, ruleID string) error

	// activity catalog
	ListActivityTypes(ctx context.Context) ([]domain.ActivityType, error)
	ActivityName(ctx context.Context, activityTypeID int64) (string, error)

	// activity records (immutable once written)
	RecordActivity(ctx context.Context, rec *domain.ActivityRecord) error
	FindActivitiesInRange(ctx context.Context, userID, activityTypeID int64, from, to time.Time) ([]domain.ActivityRecord, error)

	// trigger log (append-only)
	AppendTrigger(ctx context.Context, userID, activityTypeID int64, triggeredAt time.Time) error
	FindRecentTriggers(ctx context.Context, userID, activityTypeID int64, since time.Time) ([]domain.TriggerLogEntry, error)

	// web push subscriptions
	SavePushSubscription(ctx context.Context, s *PushSubscription) error
	ListPushSubscriptions(ctx context.Context, userID int64) ([]PushSubscription, error)

	Close() error
}

// PushSubscription is one browser's Web Push endpoint for a user.
type PushSubscription struct {
	UserID    int64
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}
