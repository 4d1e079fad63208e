package prayerplugin

import (
	"context"
	"strings"
	"sync"
	"testing"

	"prayerbot/internal/core"
	"prayerbot/internal/kit"
	"prayerbot/internal/prayer"
	"prayerbot/pkg/logx"
)

type fakeAdapter struct {
	mu    sync.Mutex
	sent  []string
	edits []string
}

func (a *fakeAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (a *fakeAdapter) Stop(ctx context.Context) error                         { return nil }

func (a *fakeAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(a.sent)}, nil
}

func (a *fakeAdapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edits = append(a.edits, text)
	return nil
}

func newLookupRequest(ad *fakeAdapter, args ...string) *core.Request {
	return &core.Request{
		Chat:    kit.ChatTarget{ChatID: 9},
		Args:    args,
		Adapter: ad,
		Logger:  logx.Nop(),
	}
}

func TestLookupFetchErrorEditsPlaceholder(t *testing.T) {
	src := &flakySource{fail: true}
	p, _, _ := newTestPlugin(t, src)
	ad := &fakeAdapter{}

	if err := p.handleTimes(context.Background(), newLookupRequest(ad)); err != nil {
		t.Fatalf("fetch failure must be rendered as the reply, not propagated: %v", err)
	}
	if len(ad.sent) != 1 || !strings.Contains(ad.sent[0], "Fetching") {
		t.Fatalf("placeholder not sent: %v", ad.sent)
	}
	if len(ad.edits) != 1 {
		t.Fatalf("edits = %v, want the error reply", ad.edits)
	}
	if !strings.Contains(ad.edits[0], "❌ Error:") || !strings.Contains(ad.edits[0], "upstream down") {
		t.Fatalf("edited reply must carry the fetch failure message, got %q", ad.edits[0])
	}
}

func TestLookupSuccessEditsPlaceholderWithTimes(t *testing.T) {
	src := &flakySource{res: prayer.FetchResult{
		Times: prayer.Schedule{
			prayer.Fajr:    {Hour: 5, Minute: 0},
			prayer.Dhuhr:   {Hour: 12, Minute: 30},
			prayer.Asr:     {Hour: 15, Minute: 45},
			prayer.Maghrib: {Hour: 18, Minute: 10},
			prayer.Isha:    {Hour: 19, Minute: 30},
		},
		Date: "10-03-2024",
	}}
	p, _, _ := newTestPlugin(t, src)
	ad := &fakeAdapter{}

	if err := p.handleTimes(context.Background(), newLookupRequest(ad, "Cairo", "Egypt")); err != nil {
		t.Fatalf("handleTimes: %v", err)
	}
	if len(ad.edits) != 1 || !strings.Contains(ad.edits[0], "Cairo, Egypt") {
		t.Fatalf("edited reply = %v", ad.edits)
	}
	// ad-hoc lookup: shared schedule stays untouched
	if p.state.Schedule() != nil {
		t.Fatalf("lookup for a non-default city must not write the cache")
	}
}
