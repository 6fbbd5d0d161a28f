package domain

// MinuteOfDay returns minutes since midnight (0..1439) for h:m.
func MinuteOfDay(h, m int) int { return h*60 + m }

// InWindow returns true if local time (minutes since midnight) is inside the
// daily window. Both boundaries are inclusive. Supports wrap-around windows
// like 22:00–06:00 (startM > endM).
func InWindow(nowM, startM, endM int) bool {
	if startM <= endM {
		return nowM >= startM && nowM <= endM
	}
	// wrap: [start..1440) U [0..end]
	return nowM >= startM || nowM <= endM
}
