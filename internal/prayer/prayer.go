// Package prayer holds the domain core: the five daily prayers, the cached
// day schedule, the notified ledger, and the per-minute matching logic.
package prayer

import "time"

// Name identifies one of the five daily prayers.
type Name string

const (
	Fajr    Name = "Fajr"
	Dhuhr   Name = "Dhuhr"
	Asr     Name = "Asr"
	Maghrib Name = "Maghrib"
	Isha    Name = "Isha"
)

// Order is the fixed daily prayer order. Match scans and the next-prayer
// lookup always walk it front to back.
var Order = [5]Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// DisplayNames maps internal prayer keys to the names shown in messages.
var DisplayNames = map[Name]string{
	Fajr:    "Fajr (Dawn)",
	Dhuhr:   "Dhuhr (Noon)",
	Asr:     "Asr (Afternoon)",
	Maghrib: "Maghrib (Sunset)",
	Isha:    "Isha (Night)",
}

// DisplayName returns the user-facing name for p.
func DisplayName(p Name) string {
	if d, ok := DisplayNames[p]; ok {
		return d
	}
	return string(p)
}

// Schedule maps each prayer to its time of day. A populated schedule carries
// all five keys; Valid reports whether that invariant holds.
type Schedule map[Name]TimeOfDay

func (s Schedule) Valid() bool {
	if len(s) != len(Order) {
		return false
	}
	for _, p := range Order {
		if _, ok := s[p]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy so callers can't mutate shared state.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DateString renders t as the ledger's calendar date key.
// The format is fixed (not locale dependent) so keys compare reliably.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
