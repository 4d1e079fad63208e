package prayer

import "testing"

func TestNextUpcomingToday(t *testing.T) {
	sched := testSchedule()

	name, at, tomorrow, ok := Next(sched, TimeOfDay{4, 0})
	if !ok || name != Fajr || at != (TimeOfDay{5, 0}) || tomorrow {
		t.Fatalf("got %s %v tomorrow=%v ok=%v", name, at, tomorrow, ok)
	}

	// exactly at a prayer minute: that prayer is no longer "next"
	name, at, tomorrow, ok = Next(sched, TimeOfDay{12, 30})
	if !ok || name != Asr || at != (TimeOfDay{15, 45}) || tomorrow {
		t.Fatalf("got %s %v tomorrow=%v ok=%v", name, at, tomorrow, ok)
	}
}

func TestNextFallsBackToFajr(t *testing.T) {
	sched := testSchedule()
	name, at, tomorrow, ok := Next(sched, TimeOfDay{20, 0})
	if !ok || name != Fajr || !tomorrow {
		t.Fatalf("after Isha the next prayer is tomorrow's Fajr, got %s tomorrow=%v ok=%v", name, tomorrow, ok)
	}
	// the reported time is today's cached Fajr time
	if at != (TimeOfDay{5, 0}) {
		t.Fatalf("fallback time = %v, want 05:00", at)
	}
}

func TestNextIncompleteSchedule(t *testing.T) {
	if _, _, _, ok := Next(nil, TimeOfDay{4, 0}); ok {
		t.Fatalf("nil schedule must not produce a next prayer")
	}
	partial := Schedule{Fajr: {5, 0}}
	if _, _, _, ok := Next(partial, TimeOfDay{4, 0}); ok {
		t.Fatalf("partial schedule must not produce a next prayer")
	}
}
