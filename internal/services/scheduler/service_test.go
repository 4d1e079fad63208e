package scheduler

import (
	"context"
	"testing"
	"time"

	"prayerbot/pkg/logx"
)

func nopLogger() logx.Logger { return logx.Nop() }

func TestAddCronBeforeStartIsKept(t *testing.T) {
	s := New(Config{}, nopLogger())
	id, err := s.AddCron("job", "* * * * *", 0, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("AddCron before Start: %v", err)
	}
	if id == "" {
		t.Fatalf("expected an id for a pre-start registration")
	}
	if len(s.defs) != 1 {
		t.Fatalf("definition must be persisted until Start, got %d", len(s.defs))
	}
}

func TestAddCronUpsertsByName(t *testing.T) {
	s := New(Config{}, nopLogger())
	_, _ = s.AddCron("job", "* * * * *", 0, func(ctx context.Context) error { return nil })
	_, _ = s.AddCron("job", "0 0 * * *", 0, func(ctx context.Context) error { return nil })
	if len(s.defs) != 1 {
		t.Fatalf("re-registering the same name must replace, got %d defs", len(s.defs))
	}
	if s.defs[0].spec != "0 0 * * *" {
		t.Fatalf("kept spec = %q, want the newer one", s.defs[0].spec)
	}
}

func TestAddOnceFires(t *testing.T) {
	s := New(Config{Workers: 1}, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	fired := make(chan struct{})
	_, err := s.AddOnce("once", time.Now().Add(10*time.Millisecond), time.Second,
		func(ctx context.Context) error {
			close(fired)
			return nil
		})
	if err != nil {
		t.Fatalf("AddOnce: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("one-shot job did not fire")
	}
}

func TestAddOnceReplacedTimerDoesNotFire(t *testing.T) {
	s := New(Config{Workers: 1}, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	fired := make(chan string, 2)
	_, _ = s.AddOnce("once", time.Now().Add(50*time.Millisecond), time.Second,
		func(ctx context.Context) error { fired <- "old"; return nil })
	_, _ = s.AddOnce("once", time.Now().Add(100*time.Millisecond), time.Second,
		func(ctx context.Context) error { fired <- "new"; return nil })

	select {
	case got := <-fired:
		if got != "new" {
			t.Fatalf("replaced one-shot must not fire, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("replacement one-shot did not fire")
	}
	select {
	case got := <-fired:
		t.Fatalf("unexpected second firing: %q", got)
	case <-time.After(200 * time.Millisecond):
	}
}
