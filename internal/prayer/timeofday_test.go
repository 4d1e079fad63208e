package prayer

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "05:32", want: TimeOfDay{5, 32}},
		{in: "00:00", want: TimeOfDay{0, 0}},
		{in: "23:59", want: TimeOfDay{23, 59}},
		{in: "05:32 (EET)", want: TimeOfDay{5, 32}},
		{in: " 12:30 ", want: TimeOfDay{12, 30}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if s := (TimeOfDay{5, 7}).String(); s != "05:07" {
		t.Fatalf("String() = %q, want 05:07", s)
	}
}

func TestTimeOfDayAfter(t *testing.T) {
	a := TimeOfDay{12, 30}
	if !a.After(TimeOfDay{12, 29}) {
		t.Fatalf("12:30 should be after 12:29")
	}
	if a.After(a) {
		t.Fatalf("After must be strict")
	}
	if a.After(TimeOfDay{13, 0}) {
		t.Fatalf("12:30 must not be after 13:00")
	}
}

func TestAtTruncatesToMinute(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 30, 45, 999, time.UTC)
	if got := At(now); got != (TimeOfDay{12, 30}) {
		t.Fatalf("At() = %v, want 12:30", got)
	}
}

func TestIsMidnight(t *testing.T) {
	if !(TimeOfDay{0, 0}).IsMidnight() {
		t.Fatalf("00:00 is midnight")
	}
	if (TimeOfDay{0, 1}).IsMidnight() {
		t.Fatalf("00:01 is not midnight")
	}
}
