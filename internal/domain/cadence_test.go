package domain

import (
	"testing"
	"time"
)

func TestMinuteEligible_ToleranceBand(t *testing.T) {
	start := MinuteOfDay(8, 0)
	end := MinuteOfDay(18, 0)

	// interval 5m → tolerance = min(3, 5/2) = 2
	cases := []struct {
		name string
		nowM int
		want bool
	}{
		{"at window start", MinuteOfDay(8, 0), true},
		{"exact boundary", MinuteOfDay(8, 5), true},
		{"2m past boundary", MinuteOfDay(8, 7), true},
		{"3m past boundary outside band", MinuteOfDay(8, 8), false},
		{"just before next boundary", MinuteOfDay(8, 9), false},
		{"next boundary", MinuteOfDay(8, 10), true},
	}
	for _, c := range cases {
		if got := MinuteEligible(c.nowM, start, end, 5, DefaultToleranceMinutes); got != c.want {
			t.Errorf("%s: MinuteEligible(%d) = %v, want %v", c.name, c.nowM, got, c.want)
		}
	}
}

func TestMinuteEligible_BeforeWindowStart(t *testing.T) {
	start := MinuteOfDay(9, 0)
	end := MinuteOfDay(18, 0)
	if MinuteEligible(MinuteOfDay(8, 59), start, end, 30, DefaultToleranceMinutes) {
		t.Fatal("tick before the window start must not be eligible")
	}
}

func TestMinuteEligible_WideIntervalUsesConfiguredTolerance(t *testing.T) {
	start := MinuteOfDay(9, 0)
	end := MinuteOfDay(18, 0)
	// interval 60m → tolerance stays at 3
	if !MinuteEligible(MinuteOfDay(10, 3), start, end, 60, DefaultToleranceMinutes) {
		t.Fatal("10:03 should land in the tolerance band of the 10:00 boundary")
	}
	if MinuteEligible(MinuteOfDay(10, 4), start, end, 60, DefaultToleranceMinutes) {
		t.Fatal("10:04 is outside the tolerance band")
	}
}

func TestMinuteEligible_WrapWindowCountsAcrossMidnight(t *testing.T) {
	start := MinuteOfDay(22, 0)
	end := MinuteOfDay(6, 0)
	// 01:00 is 180 minutes after yesterday's 22:00 start; 180 mod 90 == 0.
	if !MinuteEligible(MinuteOfDay(1, 0), start, end, 90, DefaultToleranceMinutes) {
		t.Fatal("morning segment of a wrap window should anchor at yesterday's start")
	}
	// 01:30 is 210 minutes in; 210 mod 90 == 30, outside the band.
	if MinuteEligible(MinuteOfDay(1, 30), start, end, 90, DefaultToleranceMinutes) {
		t.Fatal("01:30 should not be eligible for a 90m cadence from 22:00")
	}
}

func TestMinuteEligible_DayScaleIntervalFiresNearWindowStartOnly(t *testing.T) {
	start := MinuteOfDay(9, 0)
	end := MinuteOfDay(21, 0)
	if !MinuteEligible(MinuteOfDay(9, 2), start, end, 2*MinutesPerDay, DefaultToleranceMinutes) {
		t.Fatal("day-scale interval should be eligible right after window start")
	}
	if MinuteEligible(MinuteOfDay(12, 0), start, end, 2*MinutesPerDay, DefaultToleranceMinutes) {
		t.Fatal("day-scale interval must not re-fire mid-day")
	}
}

func TestDayEligible(t *testing.T) {
	created := time.Date(2025, time.March, 1, 14, 30, 0, 0, time.UTC)

	sameDay := time.Date(2025, time.March, 1, 18, 0, 0, 0, time.UTC)
	if !DayEligible(created, sameDay, 2) {
		t.Fatal("creation day is day zero and always matches the cadence")
	}

	nextDay := time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC)
	if DayEligible(created, nextDay, 2) {
		t.Fatal("day 1 of an every-2-days cadence must not be eligible")
	}

	dayAfter := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	if !DayEligible(created, dayAfter, 2) {
		t.Fatal("day 2 of an every-2-days cadence should be eligible")
	}

	if !DayEligible(created, nextDay, 0) {
		t.Fatal("zero cadence means every day")
	}
}

func TestDayEligible_CalendarDaysNotElapsedHours(t *testing.T) {
	// Created 23:50, evaluated 00:10 next day: under 24h elapsed but one
	// calendar day boundary crossed.
	created := time.Date(2025, time.March, 1, 23, 50, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 2, 0, 10, 0, 0, time.UTC)
	if DayEligible(created, now, 2) {
		t.Fatal("00:10 next day is calendar day 1, not day 0")
	}
}

func TestDayEligible_CreatedInFuture(t *testing.T) {
	created := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if DayEligible(created, now, 1) {
		t.Fatal("rules created in the future must not be day-eligible")
	}
}
