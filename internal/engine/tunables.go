package engine

import (
	"time"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// Tunables are the empirical knobs of the decision engine. They ship with
// defaults that tolerate an irregular 1–15 minute host tick, but every one
// of them is deployment configuration, not a constant.
type Tunables struct {
	// ToleranceMinutes is the width of the cadence boundary band. The
	// effective tolerance is further capped at half the rule's interval.
	ToleranceMinutes int

	// CooldownRatio is the fraction of a rule's interval during which a
	// second firing is suppressed.
	CooldownRatio float64

	// ShortCooldownRatio replaces CooldownRatio for cadences at or below
	// ShortCadenceMaxMinutes; short cadences need a shorter cooldown or
	// they would never re-fire within their own interval.
	ShortCooldownRatio     float64
	ShortCadenceMaxMinutes int

	// CooldownFloor is the minimum cooldown regardless of interval.
	CooldownFloor time.Duration

	// CompletionFailOpen fires despite a failed activity-store lookup.
	// A missed reminder is considered worse than a redundant one.
	CompletionFailOpen bool

	// DuplicateFailOpen fires despite a failed trigger-log lookup. Riskier
	// than CompletionFailOpen: the failure mode is a duplicate send.
	DuplicateFailOpen bool
}

// DefaultTunables returns the stock engine configuration.
func DefaultTunables() Tunables {
	return Tunables{
		ToleranceMinutes:       domain.DefaultToleranceMinutes,
		CooldownRatio:          0.8,
		ShortCooldownRatio:     0.5,
		ShortCadenceMaxMinutes: 5,
		CooldownFloor:          30 * time.Second,
		CompletionFailOpen:     true,
		DuplicateFailOpen:      true,
	}
}

// Cooldown returns the duplicate-suppression window for a given cadence.
func (t Tunables) Cooldown(intervalMinutes int) time.Duration {
	ratio := t.CooldownRatio
	if intervalMinutes <= t.ShortCadenceMaxMinutes {
		ratio = t.ShortCooldownRatio
	}
	cd := time.Duration(float64(intervalMinutes) * ratio * float64(time.Minute))
	if cd < t.CooldownFloor {
		cd = t.CooldownFloor
	}
	return cd
}
