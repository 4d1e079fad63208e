package scheduler

import "testing"

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{in: "00:00", h: 0, m: 0},
		{in: "23:59", h: 23, m: 59},
		{in: " 06:30 ", h: 6, m: 30},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "a:b", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, c := range cases {
		h, m, err := parseHHMM(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("parseHHMM(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseHHMM(%q): %v", c.in, err)
		}
		if h != c.h || m != c.m {
			t.Fatalf("parseHHMM(%q) = %d:%d, want %d:%d", c.in, h, m, c.h, c.m)
		}
	}
}

func TestRemoveUnknownName(t *testing.T) {
	s := New(Config{}, nopLogger())
	if s.Remove("nothing") {
		t.Fatalf("removing an unknown schedule must report false")
	}
	if s.Remove("") {
		t.Fatalf("empty name must report false")
	}
}
