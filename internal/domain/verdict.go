package domain

import (
	"hash/fnv"
	"strconv"
	"time"
)

// Outcome is the result of evaluating one rule at one instant.
type Outcome string

const (
	OutcomeFire                   Outcome = "fire"
	OutcomeSuppressedDisabled     Outcome = "suppressed_disabled"
	OutcomeSuppressedByWindow     Outcome = "suppressed_by_window"
	OutcomeSuppressedByCadence    Outcome = "suppressed_by_cadence"
	OutcomeSuppressedByCompletion Outcome = "suppressed_by_completion"
	OutcomeSuppressedByDuplicate  Outcome = "suppressed_by_duplicate"
	OutcomeSkippedInvalid         Outcome = "skipped_invalid"
)

// Verdict is the per-rule decision produced by one evaluation. Verdicts are
// ephemeral; they exist for observability and tests, not persistence.
type Verdict struct {
	RuleID      string
	Outcome     Outcome
	EvaluatedAt time.Time
}

// Fired reports whether the verdict resulted in a notification.
func (v Verdict) Fired() bool { return v.Outcome == OutcomeFire }

// NotificationID derives a stable platform notification slot from the
// user/activity pair, so repeated sends for the same logical reminder
// replace one another instead of stacking up.
func NotificationID(userID, activityTypeID int64) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(userID, 10)))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(strconv.FormatInt(activityTypeID, 10)))
	return h.Sum32()
}
