package domain

import (
	"errors"
	"fmt"
	"time"
)

// MinutesPerDay is the number of minutes in a calendar day; intervals at or
// above it repeat on a day scale rather than within a day.
const MinutesPerDay = 24 * 60

var (
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidWindow   = errors.New("window bounds out of range")
)

// Rule is a user's configuration for one recurring break reminder.
// Rules are created and edited through the settings surface; the engine
// only ever reads them.
type Rule struct {
	ID              string // ksuid, minted at creation
	UserID          int64
	ActivityTypeID  int64
	Enabled         bool
	IntervalMinutes int // repeat cadence within the day, > 0
	IntervalDays    int // repeat every N days since creation; 0 = every day
	WindowStartM    int // minutes from midnight (0..1439)
	WindowEndM      int // minutes from midnight; < WindowStartM wraps past midnight
	CreatedAt       time.Time
	DeletedAt       *time.Time // soft delete; rows stay referenced by the trigger log
}

// Validate reports whether the rule is well-formed enough to evaluate.
func (r *Rule) Validate() error {
	if r.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: interval_minutes=%d", ErrInvalidInterval, r.IntervalMinutes)
	}
	if r.IntervalDays < 0 {
		return fmt.Errorf("%w: interval_days=%d", ErrInvalidInterval, r.IntervalDays)
	}
	if r.WindowStartM < 0 || r.WindowStartM > 1439 || r.WindowEndM < 0 || r.WindowEndM > 1439 {
		return fmt.Errorf("%w: %d–%d", ErrInvalidWindow, r.WindowStartM, r.WindowEndM)
	}
	return nil
}

// Interval returns the minute-level cadence as a duration.
func (r *Rule) Interval() time.Duration {
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// Profile holds per-user settings shared by all of the user's rules.
// UserID doubles as the Telegram chat ID.
type Profile struct {
	UserID    int64
	TZ        string // IANA location name
	Enabled   bool   // master switch; overrides every rule when false
	CreatedAt time.Time
}
