package domain

import "time"

// ActivityType is a catalog entry for one kind of break activity
// (stretch, walk, water...). Seeded by migration, read-only at runtime.
type ActivityType struct {
	ID    int64
	Slug  string
	Name  string
	Emoji string
}

// ActivityRecord is one completed break, immutable once written.
// The engine reads records only to decide whether a reminder is redundant.
type ActivityRecord struct {
	ID             int64
	UserID         int64
	ActivityTypeID int64
	BeginTime      time.Time
	EndTime        time.Time
}

// TriggerLogEntry records one fired reminder. The log is append-only and is
// the engine's sole durable state: duplicate suppression re-derives
// everything from it, so a killed process loses nothing.
type TriggerLogEntry struct {
	ID             int64
	UserID         int64
	ActivityTypeID int64
	TriggeredAt    time.Time
}
