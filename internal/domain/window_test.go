package domain

import "testing"

func TestInWindow_SameDay(t *testing.T) {
	start := MinuteOfDay(9, 0)
	end := MinuteOfDay(18, 0)

	cases := []struct {
		name string
		nowM int
		want bool
	}{
		{"before start", MinuteOfDay(8, 59), false},
		{"at start", MinuteOfDay(9, 0), true},
		{"inside", MinuteOfDay(12, 30), true},
		{"at end", MinuteOfDay(18, 0), true},
		{"after end", MinuteOfDay(18, 1), false},
	}
	for _, c := range cases {
		if got := InWindow(c.nowM, start, end); got != c.want {
			t.Errorf("%s: InWindow(%d, %d, %d) = %v, want %v", c.name, c.nowM, start, end, got, c.want)
		}
	}
}

func TestInWindow_WrapsMidnight(t *testing.T) {
	start := MinuteOfDay(22, 0)
	end := MinuteOfDay(6, 0)

	cases := []struct {
		name string
		nowM int
		want bool
	}{
		{"late evening", MinuteOfDay(23, 30), true},
		{"at start", MinuteOfDay(22, 0), true},
		{"midnight", MinuteOfDay(0, 0), true},
		{"early morning", MinuteOfDay(5, 59), true},
		{"at end inclusive", MinuteOfDay(6, 0), true},
		{"just past end", MinuteOfDay(6, 1), false},
		{"midday", MinuteOfDay(12, 0), false},
		{"just before start", MinuteOfDay(21, 59), false},
	}
	for _, c := range cases {
		if got := InWindow(c.nowM, start, end); got != c.want {
			t.Errorf("%s: InWindow(%d, %d, %d) = %v, want %v", c.name, c.nowM, start, end, got, c.want)
		}
	}
}

func TestInWindow_DegenerateSingleMinute(t *testing.T) {
	m := MinuteOfDay(10, 0)
	if !InWindow(m, m, m) {
		t.Fatal("window collapsed to one minute should still contain that minute")
	}
	if InWindow(m+1, m, m) {
		t.Fatal("one-minute window must not contain the next minute")
	}
}
