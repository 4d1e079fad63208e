package core

import (
	"reflect"
	"testing"
)

func TestTokenizeCommandLine(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"/prayer times Amman Jordan", []string{"/prayer", "times", "Amman", "Jordan"}},
		{`/prayer times "New York" --country="United States"`, []string{"/prayer", "times", "New York", "--country=United States"}},
		{"'single quoted'", []string{"single quoted"}},
		{`escaped\ space`, []string{"escaped space"}},
		{"a\tb\nc", []string{"a", "b", "c"}},
	}
	for _, c := range cases {
		got := tokenizeCommandLine(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("tokenizeCommandLine(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	pos, flags, bools := parseFlags([]string{"times", "New York", "--country=United States", "--verbose", "-n", "3", "-ab"})

	if !reflect.DeepEqual(pos, []string{"times", "New York"}) {
		t.Fatalf("positionals = %#v", pos)
	}
	if flags["country"] != "United States" {
		t.Fatalf("country flag = %q", flags["country"])
	}
	if flags["n"] != "3" {
		t.Fatalf("short flag value = %q", flags["n"])
	}
	if !bools["verbose"] || !bools["a"] || !bools["b"] {
		t.Fatalf("bool flags = %#v", bools)
	}
}

func TestParseFlagsSeparatedValueStopsAtDash(t *testing.T) {
	pos, flags, bools := parseFlags([]string{"--country", "--verbose"})
	if len(pos) != 0 {
		t.Fatalf("positionals = %#v", pos)
	}
	if _, ok := flags["country"]; ok {
		t.Fatalf("a following flag must not be consumed as a value: %#v", flags)
	}
	if !bools["country"] || !bools["verbose"] {
		t.Fatalf("bool flags = %#v", bools)
	}
}

func TestNewReqIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := newReqID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty request id %q", id)
		}
		seen[id] = true
	}
}
