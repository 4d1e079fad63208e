package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock minute, the only time precision this bot knows.
// Matching compares TimeOfDay values for equality, so both sides must come
// from the same wall clock; no timezone conversion happens here.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM". Upstream sometimes suffixes a timezone hint
// ("05:32 (EET)"); anything after the first field is ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// At truncates a wall-clock instant to its minute.
func At(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// After reports whether t is strictly later in the day than o.
func (t TimeOfDay) After(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour > o.Hour
	}
	return t.Minute > o.Minute
}

// IsMidnight reports whether t is exactly 00:00, the minute that triggers
// both the ledger prune and the daily refresh.
func (t TimeOfDay) IsMidnight() bool {
	return t.Hour == 0 && t.Minute == 0
}
