package prayer

import "sync"

// LedgerKey records "already notified on this date for this prayer".
type LedgerKey struct {
	Date   string
	Prayer Name
}

// State is the process-wide schedule cache. All mutation goes through
// ReplaceSchedule, MarkNotified and PruneDay so the single-writer shape of
// the notifier stays explicit and testable without a transport.
type State struct {
	mu sync.Mutex

	schedule      Schedule
	lastFetchDate string
	notified      map[LedgerKey]struct{}
}

func NewState() *State {
	return &State{notified: map[LedgerKey]struct{}{}}
}

// ReplaceSchedule installs a fresh day schedule and the upstream date string
// it was fetched for. Only fetches for the default location call this.
func (s *State) ReplaceSchedule(sched Schedule, fetchDate string) {
	s.mu.Lock()
	s.schedule = sched.Clone()
	s.lastFetchDate = fetchDate
	s.mu.Unlock()
}

// Schedule returns a copy of the current schedule, nil when nothing has been
// fetched yet.
func (s *State) Schedule() Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.Clone()
}

// LastFetchDate returns the upstream gregorian date of the most recent
// default-location fetch, ok=false before the first success.
func (s *State) LastFetchDate() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetchDate, s.lastFetchDate != ""
}

// MarkNotified inserts the (date, prayer) ledger key. It returns false when
// the key was already present, which is what makes notifications fire at
// most once per prayer per day no matter how often the matcher ticks.
func (s *State) MarkNotified(date string, p Name) bool {
	k := LedgerKey{Date: date, Prayer: p}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notified[k]; ok {
		return false
	}
	s.notified[k] = struct{}{}
	return true
}

// PruneDay removes every ledger entry recorded for the given date and
// returns how many were removed. Entries for other dates are untouched.
func (s *State) PruneDay(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k := range s.notified {
		if k.Date == date {
			delete(s.notified, k)
			removed++
		}
	}
	return removed
}

// LedgerSize reports the number of live ledger entries.
func (s *State) LedgerSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notified)
}
