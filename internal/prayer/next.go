package prayer

// Next returns the first prayer in daily order whose time is strictly after
// now. When every prayer today has passed it falls back to Fajr with
// tomorrow=true — but the returned time is still today's cached Fajr time,
// because tomorrow's schedule has not been fetched. That numeric ambiguity
// is long-standing observed behavior and is kept on purpose.
//
// ok is false when the schedule is empty or incomplete.
func Next(sched Schedule, now TimeOfDay) (p Name, t TimeOfDay, tomorrow bool, ok bool) {
	if !sched.Valid() {
		return "", TimeOfDay{}, false, false
	}
	for _, cand := range Order {
		ct := sched[cand]
		if ct.After(now) {
			return cand, ct, false, true
		}
	}
	return Fajr, sched[Fajr], true, true
}
