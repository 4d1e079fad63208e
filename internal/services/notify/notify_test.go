package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type fakeAdapter struct {
	mu       sync.Mutex
	failRich bool
	sent     []string
}

func (f *fakeAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (f *fakeAdapter) Stop(ctx context.Context) error                         { return nil }

func (f *fakeAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRich && opt != nil {
		return kit.MessageRef{}, errors.New("send failed")
	}
	f.sent = append(f.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

func (f *fakeAdapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	return nil
}

func (f *fakeAdapter) sentCopy() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestNotifyDelivers(t *testing.T) {
	ad := &fakeAdapter{}
	s := New(Config{}, ad, logx.Nop())
	defer s.Stop(context.Background())

	err := s.Notify(context.Background(), kit.Notification{
		Target: kit.ChatTarget{ChatID: 1},
		Text:   "hello",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got := ad.sentCopy(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("sent = %v", got)
	}
}

func TestFailedSendSchedulesFallbackRetry(t *testing.T) {
	ad := &fakeAdapter{failRich: true}
	s := New(Config{RetryAfter: 20 * time.Millisecond}, ad, logx.Nop())
	defer s.Stop(context.Background())

	err := s.Notify(context.Background(), kit.Notification{
		Target:   kit.ChatTarget{ChatID: 1},
		Text:     "<b>rich</b>",
		Options:  &kit.SendOptions{ParseMode: "HTML"},
		Fallback: "plain",
	})
	if err == nil {
		t.Fatalf("expected the rich send to fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := ad.sentCopy()
		if len(got) == 1 && got[0] == "plain" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("fallback retry not delivered, sent = %v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNoFallbackNoRetry(t *testing.T) {
	ad := &fakeAdapter{failRich: true}
	s := New(Config{RetryAfter: 10 * time.Millisecond}, ad, logx.Nop())
	defer s.Stop(context.Background())

	_ = s.Notify(context.Background(), kit.Notification{
		Target:  kit.ChatTarget{ChatID: 1},
		Text:    "rich",
		Options: &kit.SendOptions{ParseMode: "HTML"},
	})
	time.Sleep(50 * time.Millisecond)
	if got := ad.sentCopy(); len(got) != 0 {
		t.Fatalf("no fallback configured, nothing should be retried: %v", got)
	}
}

func TestStopAbandonsPendingRetries(t *testing.T) {
	ad := &fakeAdapter{failRich: true}
	s := New(Config{RetryAfter: 50 * time.Millisecond}, ad, logx.Nop())

	_ = s.Notify(context.Background(), kit.Notification{
		Target:   kit.ChatTarget{ChatID: 1},
		Text:     "rich",
		Options:  &kit.SendOptions{ParseMode: "HTML"},
		Fallback: "plain",
	})
	s.Stop(context.Background())

	time.Sleep(100 * time.Millisecond)
	if got := ad.sentCopy(); len(got) != 0 {
		t.Fatalf("retry must be abandoned after Stop, sent %v", got)
	}
}
