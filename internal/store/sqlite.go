package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- profiles ---

// UpsertProfile inserts or updates a user's profile row.
func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	created := p.CreatedAt.UTC().Unix()
	if created == 0 {
		created = time.Now().UTC().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, tz, enabled, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tz      = excluded.tz,
			enabled = excluded.enabled`,
		p.UserID, p.TZ, boolToInt(p.Enabled), created,
	)
	return err
}

// GetProfile returns a user's profile or sql.ErrNoRows.
func (r *SQLiteRepo) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, tz, enabled, created_at
		FROM profiles
		WHERE user_id = ?`, userID)

	var (
		p          domain.Profile
		enabledInt int
		createdAt  int64
	)
	if err := row.Scan(&p.UserID, &p.TZ, &enabledInt, &createdAt); err != nil {
		return nil, err
	}
	p.Enabled = enabledInt != 0
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

// SetProfileEnabled flips the user-wide master switch.
func (r *SQLiteRepo) SetProfileEnabled(ctx context.Context, userID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET enabled = ? WHERE user_id = ?`,
		boolToInt(enabled), userID)
	return err
}

// ListActiveProfiles returns every profile whose master switch is on and who
// has at least one enabled rule; these are the users a tick must evaluate.
func (r *SQLiteRepo) ListActiveProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT p.user_id, p.tz, p.enabled, p.created_at
		FROM profiles p
		JOIN reminder_rules rr ON rr.user_id = p.user_id
		WHERE p.enabled = 1
		  AND rr.enabled = 1
		  AND rr.deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Profile
	for rows.Next() {
		var (
			p          domain.Profile
			enabledInt int
			createdAt  int64
		)
		if err := rows.Scan(&p.UserID, &p.TZ, &enabledInt, &createdAt); err != nil {
			return nil, err
		}
		p.Enabled = enabledInt != 0
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, p)
	}
	return res, rows.Err()
}

// --- reminder rules ---

// CreateRule inserts a new rule row.
func (r *SQLiteRepo) CreateRule(ctx context.Context, rule *domain.Rule) error {
	if rule == nil {
		return errors.New("nil rule")
	}
	if err := rule.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_rules (
			id, user_id, activity_type_id, enabled,
			interval_minutes, interval_days, window_start_m, window_end_m,
			created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		rule.ID, rule.UserID, rule.ActivityTypeID, boolToInt(rule.Enabled),
		rule.IntervalMinutes, rule.IntervalDays, rule.WindowStartM, rule.WindowEndM,
		rule.CreatedAt.UTC().Unix(),
	)
	return err
}

const ruleColumns = `id, user_id, activity_type_id, enabled,
	interval_minutes, interval_days, window_start_m, window_end_m,
	created_at, deleted_at`

func scanRule(scan func(dest ...any) error) (domain.Rule, error) {
	var (
		rule       domain.Rule
		enabledInt int
		createdAt  int64
		deletedNS  sql.NullInt64
	)
	err := scan(
		&rule.ID, &rule.UserID, &rule.ActivityTypeID, &enabledInt,
		&rule.IntervalMinutes, &rule.IntervalDays, &rule.WindowStartM, &rule.WindowEndM,
		&createdAt, &deletedNS,
	)
	if err != nil {
		return rule, err
	}
	rule.Enabled = enabledInt != 0
	rule.CreatedAt = time.Unix(createdAt, 0).UTC()
	rule.DeletedAt = fromNullInt64(deletedNS)
	return rule, nil
}

func (r *SQLiteRepo) queryRules(ctx context.Context, query string, args ...any) ([]domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Rule
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, rule)
	}
	return res, rows.Err()
}

// ListRules returns all non-deleted rules of a user, enabled or not.
func (r *SQLiteRepo) ListRules(ctx context.Context, userID int64) ([]domain.Rule, error) {
	return r.queryRules(ctx, `
		SELECT `+ruleColumns+`
		FROM reminder_rules
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at`, userID)
}

// ListEnabledRules returns the rules a tick evaluates for one user.
func (r *SQLiteRepo) ListEnabledRules(ctx context.Context, userID int64) ([]domain.Rule, error) {
	return r.queryRules(ctx, `
		SELECT `+ruleColumns+`
		FROM reminder_rules
		WHERE user_id = ? AND enabled = 1 AND deleted_at IS NULL
		ORDER BY created_at`, userID)
}

// GetRule returns one rule by ID, including soft-deleted ones.
func (r *SQLiteRepo) GetRule(ctx context.Context, ruleID string) (*domain.Rule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM reminder_rules
		WHERE id = ?`, ruleID)
	rule, err := scanRule(row.Scan)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SetRuleEnabled pauses or resumes a single rule.
func (r *SQLiteRepo) SetRuleEnabled(ctx context.Context, ruleID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminder_rules SET enabled = ? WHERE id = ? AND deleted_at IS NULL`,
		boolToInt(enabled), ruleID)
	return err
}

// SoftDeleteRule marks a rule deleted. The row stays because trigger-log
// entries reference its user/activity pair.
func (r *SQLiteRepo) SoftDeleteRule(ctx context.Context, ruleID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reminder_rules SET deleted_at = ?, enabled = 0 WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Unix(), ruleID)
	return err
}

// --- activity catalog ---

// ListActivityTypes returns the seeded break-activity catalog.
func (r *SQLiteRepo) ListActivityTypes(ctx context.Context) ([]domain.ActivityType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, name, emoji FROM activity_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ActivityType
	for rows.Next() {
		var at domain.ActivityType
		if err := rows.Scan(&at.ID, &at.Slug, &at.Name, &at.Emoji); err != nil {
			return nil, err
		}
		res = append(res, at)
	}
	return res, rows.Err()
}

// ActivityName resolves the display name of an activity type.
func (r *SQLiteRepo) ActivityName(ctx context.Context, activityTypeID int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT name FROM activity_types WHERE id = ?`, activityTypeID).Scan(&name)
	if err != nil {
		return "", err
	}
	return name, nil
}

// --- activity records ---

// RecordActivity appends one completed break.
func (r *SQLiteRepo) RecordActivity(ctx context.Context, rec *domain.ActivityRecord) error {
	if rec == nil {
		return errors.New("nil record")
	}
	end := rec.EndTime
	if end.IsZero() {
		end = rec.BeginTime
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_records (user_id, activity_type_id, begin_time, end_time)
		VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.ActivityTypeID, rec.BeginTime.UTC().Unix(), end.UTC().Unix(),
	)
	return err
}

// FindActivitiesInRange returns records whose begin_time lies in [from, to],
// boundaries inclusive.
func (r *SQLiteRepo) FindActivitiesInRange(ctx context.Context, userID, activityTypeID int64, from, to time.Time) ([]domain.ActivityRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type_id, begin_time, end_time
		FROM activity_records
		WHERE user_id = ? AND activity_type_id = ?
		  AND begin_time >= ? AND begin_time <= ?
		ORDER BY begin_time`,
		userID, activityTypeID, from.UTC().Unix(), to.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ActivityRecord
	for rows.Next() {
		var (
			rec        domain.ActivityRecord
			begin, end int64
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ActivityTypeID, &begin, &end); err != nil {
			return nil, err
		}
		rec.BeginTime = time.Unix(begin, 0).UTC()
		rec.EndTime = time.Unix(end, 0).UTC()
		res = append(res, rec)
	}
	return res, rows.Err()
}

// --- trigger log ---

// AppendTrigger records one fired reminder. The log is never updated or
// deleted from this code path.
func (r *SQLiteRepo) AppendTrigger(ctx context.Context, userID, activityTypeID int64, triggeredAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trigger_log (user_id, activity_type_id, triggered_at)
		VALUES (?, ?, ?)`,
		userID, activityTypeID, triggeredAt.UTC().Unix(),
	)
	return err
}

// FindRecentTriggers returns log entries strictly newer than since.
func (r *SQLiteRepo) FindRecentTriggers(ctx context.Context, userID, activityTypeID int64, since time.Time) ([]domain.TriggerLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, activity_type_id, triggered_at
		FROM trigger_log
		WHERE user_id = ? AND activity_type_id = ? AND triggered_at > ?
		ORDER BY triggered_at DESC`,
		userID, activityTypeID, since.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.TriggerLogEntry
	for rows.Next() {
		var (
			e  domain.TriggerLogEntry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActivityTypeID, &at); err != nil {
			return nil, err
		}
		e.TriggeredAt = time.Unix(at, 0).UTC()
		res = append(res, e)
	}
	return res, rows.Err()
}

// --- push subscriptions ---

// SavePushSubscription upserts one browser endpoint for a user.
func (r *SQLiteRepo) SavePushSubscription(ctx context.Context, s *PushSubscription) error {
	if s == nil {
		return errors.New("nil subscription")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, endpoint) DO UPDATE SET
			p256dh = excluded.p256dh,
			auth   = excluded.auth`,
		s.UserID, s.Endpoint, s.P256dh, s.Auth, time.Now().UTC().Unix(),
	)
	return err
}

// ListPushSubscriptions returns all registered endpoints for a user.
func (r *SQLiteRepo) ListPushSubscriptions(ctx context.Context, userID int64) ([]PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, endpoint, p256dh, auth, created_at
		FROM push_subscriptions
		WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []PushSubscription
	for rows.Next() {
		var (
			s  PushSubscription
			at int64
		)
		if err := rows.Scan(&s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &at); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(at, 0).UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}
