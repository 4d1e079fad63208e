package prayerplugin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"prayerbot/internal/config"
	"prayerbot/internal/core"
	"prayerbot/internal/kit"
	"prayerbot/internal/prayer"
	"prayerbot/pkg/logx"
)

type fakeScheduler struct {
	crons   map[string]string
	dailies map[string]string
	onces   map[string]func(ctx context.Context) error
	removed []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		crons:   map[string]string{},
		dailies: map[string]string{},
		onces:   map[string]func(ctx context.Context) error{},
	}
}

func (f *fakeScheduler) AddCron(name, spec string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	f.crons[name] = spec
	return name, nil
}

func (f *fakeScheduler) AddInterval(name string, every, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	f.crons[name] = every.String()
	return name, nil
}

func (f *fakeScheduler) AddDaily(name, atHHMM string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	f.dailies[name] = atHHMM
	return name, nil
}

func (f *fakeScheduler) AddOnce(name string, at time.Time, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	f.onces[name] = job
	return name, nil
}

func (f *fakeScheduler) Remove(name string) bool {
	f.removed = append(f.removed, name)
	return true
}

type fakeNotifier struct {
	sent []kit.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n kit.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type flakySource struct {
	fail bool
	res  prayer.FetchResult
}

func (s *flakySource) Fetch(ctx context.Context, city, country, method string) (prayer.FetchResult, error) {
	if s.fail {
		return prayer.FetchResult{}, errors.New("upstream down")
	}
	return s.res, nil
}

func newTestPlugin(t *testing.T, src prayer.Source) (*Plugin, *fakeScheduler, *fakeNotifier) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "tok")

	m := config.NewManager("")
	if _, err := m.Load(); err != nil {
		t.Fatalf("config load: %v", err)
	}

	sched := newFakeScheduler()
	notif := &fakeNotifier{}
	p := New()
	p.src = src
	deps := core.PluginDeps{
		Logger:   logx.Nop(),
		Config:   m,
		Services: &core.Services{Scheduler: sched, Notifier: notif},
	}
	if err := p.Init(context.Background(), deps); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p, sched, notif
}

func TestStartRegistersTimers(t *testing.T) {
	sched := prayer.Schedule{
		prayer.Fajr:    {Hour: 5, Minute: 0},
		prayer.Dhuhr:   {Hour: 12, Minute: 30},
		prayer.Asr:     {Hour: 15, Minute: 45},
		prayer.Maghrib: {Hour: 18, Minute: 10},
		prayer.Isha:    {Hour: 19, Minute: 30},
	}
	src := &flakySource{res: prayer.FetchResult{Times: sched, Date: "10-03-2024"}}
	p, fs, _ := newTestPlugin(t, src)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if fs.crons[taskMatcher] != "* * * * *" {
		t.Fatalf("matcher spec = %q", fs.crons[taskMatcher])
	}
	if fs.dailies[taskRefresh] != "00:00" {
		t.Fatalf("refresh time = %q", fs.dailies[taskRefresh])
	}
	if _, ok := fs.onces[taskRetryFetch]; ok {
		t.Fatalf("no retry must be scheduled after a successful startup fetch")
	}
}

func TestStartupRetryRefetchesAndScans(t *testing.T) {
	// Fajr matches the current minute; Dhuhr the next, in case the clock
	// rolls over while the test runs.
	start := time.Now()
	sched := prayer.Schedule{
		prayer.Fajr:    prayer.At(start),
		prayer.Dhuhr:   prayer.At(start.Add(time.Minute)),
		prayer.Asr:     {Hour: 2, Minute: 2},
		prayer.Maghrib: {Hour: 3, Minute: 3},
		prayer.Isha:    {Hour: 4, Minute: 4},
	}
	src := &flakySource{fail: true, res: prayer.FetchResult{Times: sched, Date: "10-03-2024"}}
	p, fs, notif := newTestPlugin(t, src)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	retry, ok := fs.onces[taskRetryFetch]
	if !ok {
		t.Fatalf("failed startup fetch must schedule the one-shot retry")
	}

	src.fail = false
	if err := retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := p.state.Schedule(); !got.Valid() {
		t.Fatalf("retry must populate the shared schedule")
	}

	found := false
	for _, n := range notif.sent {
		if strings.Contains(n.Text, "Fajr") || strings.Contains(n.Text, "Dhuhr") {
			found = true
		}
	}
	if !found {
		t.Fatalf("scan after the successful retry must fire for the current minute, sent %d", len(notif.sent))
	}
}

func TestStopRemovesTimers(t *testing.T) {
	src := &flakySource{fail: true}
	p, fs, _ := newTestPlugin(t, src)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for _, name := range []string{taskMatcher, taskRefresh, taskRetryFetch} {
		ok := false
		for _, r := range fs.removed {
			if r == name {
				ok = true
			}
		}
		if !ok {
			t.Fatalf("%s not removed on Stop", name)
		}
	}
}
