package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type replyAdapter struct {
	mu    sync.Mutex
	sent  []string
	edits []string
}

func (a *replyAdapter) Start(ctx context.Context, out chan<- kit.Update) error { return nil }
func (a *replyAdapter) Stop(ctx context.Context) error                         { return nil }

func (a *replyAdapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, text)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(a.sent)}, nil
}

func (a *replyAdapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edits = append(a.edits, text)
	return nil
}

// dispatchChain mirrors the middleware order used by enqueueCommand.
func dispatchChain(h HandlerFunc) HandlerFunc {
	return Chain(h,
		MWRequestLog(logx.Nop()),
		MWErrorReply(),
		MWPanicRecover(logx.Nop()),
		MWTimeout(0),
	)
}

func TestPanickingHandlerStillReplies(t *testing.T) {
	ad := &replyAdapter{}
	req := &Request{Chat: kit.ChatTarget{ChatID: 1}, Adapter: ad, Logger: logx.Nop()}

	h := dispatchChain(func(ctx context.Context, r *Request) error { panic("boom") })
	if err := h(context.Background(), req); err == nil {
		t.Fatalf("recovered panic must surface as an error")
	}
	if len(ad.sent) != 1 {
		t.Fatalf("user got %d replies, want the generic error reply", len(ad.sent))
	}
}

func TestPanickingHandlerEditsDeferredPlaceholder(t *testing.T) {
	ad := &replyAdapter{}
	req := &Request{
		Chat:     kit.ChatTarget{ChatID: 1},
		Adapter:  ad,
		Logger:   logx.Nop(),
		Deferred: &kit.MessageRef{ChatID: 1, MessageID: 7},
	}

	h := dispatchChain(func(ctx context.Context, r *Request) error { panic("boom") })
	if err := h(context.Background(), req); err == nil {
		t.Fatalf("recovered panic must surface as an error")
	}
	if len(ad.edits) != 1 || len(ad.sent) != 0 {
		t.Fatalf("placeholder must be edited, not re-sent: edits=%d sent=%d", len(ad.edits), len(ad.sent))
	}
}

func TestFailingHandlerGetsGenericReply(t *testing.T) {
	ad := &replyAdapter{}
	req := &Request{Chat: kit.ChatTarget{ChatID: 1}, Adapter: ad, Logger: logx.Nop()}

	h := dispatchChain(func(ctx context.Context, r *Request) error { return errors.New("nope") })
	if err := h(context.Background(), req); err == nil {
		t.Fatalf("handler error must propagate for logging")
	}
	if len(ad.sent) != 1 {
		t.Fatalf("user got %d replies, want 1", len(ad.sent))
	}
}
