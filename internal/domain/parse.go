package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrTooSmall        = errors.New("interval too small")
	ErrTooLarge        = errors.New("interval too large")
)

const (
	minInterval   = 5 * time.Minute
	maxInterval   = 72 * time.Hour
	maxDayCadence = 30
)

var (
	hoursRe   = regexp.MustCompile(`(?i)(\d+)\s*h`)
	minutesRe = regexp.MustCompile(`(?i)(\d+)\s*m`)
)

// ParseInterval parses human-friendly cadences like "30m", "1h30m", "90m",
// "2h". A plain number means minutes. Constraints: 5m <= d <= 72h.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, ErrEmptyInput
	}

	var total time.Duration
	if isAllDigits(s) {
		mins, _ := strconv.Atoi(s)
		total = time.Duration(mins) * time.Minute
	} else {
		if mh := hoursRe.FindStringSubmatch(s); len(mh) == 2 {
			h, _ := strconv.Atoi(mh[1])
			total += time.Duration(h) * time.Hour
		}
		if mm := minutesRe.FindStringSubmatch(s); len(mm) == 2 {
			m, _ := strconv.Atoi(mm[1])
			total += time.Duration(m) * time.Minute
		}
		if total == 0 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, s)
		}
	}

	if total < minInterval {
		return 0, fmt.Errorf("%w: min %s", ErrTooSmall, minInterval)
	}
	if total > maxInterval {
		return 0, fmt.Errorf("%w: max %s", ErrTooLarge, maxInterval)
	}
	return total, nil
}

// ParseDayCadence parses "2d" or plain "2" into a day-level cadence.
// Zero is valid and means every day.
func ParseDayCadence(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, ErrEmptyInput
	}
	s = strings.TrimSuffix(s, "d")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, s)
	}
	if n > maxDayCadence {
		return 0, fmt.Errorf("%w: max %dd", ErrTooLarge, maxDayCadence)
	}
	return n, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseWindow parses "HH:MM–HH:MM" or "HH:MM-HH:MM" into minutes since
// midnight. End before start is legal and means the window wraps midnight.
func ParseWindow(s string) (startM, endM int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, ErrEmptyInput
	}
	sep := "–"
	if strings.Contains(s, "-") && !strings.Contains(s, "–") {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, errors.New("expected format HH:MM–HH:MM")
	}
	startM, err = parseHHMM(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	endM, err = parseHHMM(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return startM, endM, nil
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.New("invalid minute")
	}
	return h*60 + m, nil
}

// ValidateTZ checks that tz names a valid IANA location.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// FormatMinutes returns HH:MM for minutes since midnight.
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// LocalizeTime formats t in the given timezone as HH:MM.
func LocalizeTime(t time.Time, tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format("15:04"), nil
}
