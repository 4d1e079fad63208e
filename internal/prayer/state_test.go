package prayer

import "testing"

func testSchedule() Schedule {
	return Schedule{
		Fajr:    {5, 0},
		Dhuhr:   {12, 30},
		Asr:     {15, 45},
		Maghrib: {18, 10},
		Isha:    {19, 30},
	}
}

func TestMarkNotifiedAtMostOnce(t *testing.T) {
	s := NewState()
	if !s.MarkNotified("2024-03-10", Dhuhr) {
		t.Fatalf("first mark must succeed")
	}
	if s.MarkNotified("2024-03-10", Dhuhr) {
		t.Fatalf("second mark for same key must fail")
	}
	// different date, same prayer: independent key
	if !s.MarkNotified("2024-03-11", Dhuhr) {
		t.Fatalf("mark for next day must succeed")
	}
	if s.LedgerSize() != 2 {
		t.Fatalf("ledger size = %d, want 2", s.LedgerSize())
	}
}

func TestPruneDayRemovesOnlyThatDate(t *testing.T) {
	s := NewState()
	s.MarkNotified("2024-03-09", Fajr)
	s.MarkNotified("2024-03-09", Dhuhr)
	s.MarkNotified("2024-03-10", Fajr)

	if removed := s.PruneDay("2024-03-09"); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if s.LedgerSize() != 1 {
		t.Fatalf("ledger size = %d, want 1", s.LedgerSize())
	}
	// today's entry survives: marking again must still be refused
	if s.MarkNotified("2024-03-10", Fajr) {
		t.Fatalf("today's entry must survive pruning yesterday")
	}
}

func TestReplaceScheduleClones(t *testing.T) {
	s := NewState()
	in := testSchedule()
	s.ReplaceSchedule(in, "2024-03-10")

	in[Fajr] = TimeOfDay{9, 9} // caller mutates its copy
	got := s.Schedule()
	if got[Fajr] != (TimeOfDay{5, 0}) {
		t.Fatalf("state must not observe caller mutation, got %v", got[Fajr])
	}

	got[Dhuhr] = TimeOfDay{0, 0} // reader mutates its copy
	if again := s.Schedule(); again[Dhuhr] != (TimeOfDay{12, 30}) {
		t.Fatalf("state must not observe reader mutation, got %v", again[Dhuhr])
	}
}

func TestLastFetchDate(t *testing.T) {
	s := NewState()
	if _, ok := s.LastFetchDate(); ok {
		t.Fatalf("no fetch yet, ok must be false")
	}
	s.ReplaceSchedule(testSchedule(), "10-03-2024")
	d, ok := s.LastFetchDate()
	if !ok || d != "10-03-2024" {
		t.Fatalf("LastFetchDate = %q, %v", d, ok)
	}
}
