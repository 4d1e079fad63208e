// Package notify delivers outbound broadcasts through the chat adapter with
// rate limiting and a one-shot degraded retry for failed sends.
package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type Config struct {
	RatePerSec int
	// RetryAfter is the delay before the single degraded retry of a failed
	// broadcast. The retry uses the notification's plain-text Fallback.
	RetryAfter time.Duration
	// SendTimeout bounds one adapter call.
	SendTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.RatePerSec <= 0 {
		c.RatePerSec = 3
	}
	if c.RetryAfter <= 0 {
		c.RetryAfter = 5 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	return c
}

type Service struct {
	adapter kit.Adapter
	log     logx.Logger
	cfg     Config
	limiter *rate.Limiter

	mu      sync.Mutex
	stopped bool
	timers  []*time.Timer
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		adapter: adapter,
		log:     log,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Notify sends the notification. When the send fails and a Fallback text is
// set, one plain-text retry is scheduled after cfg.RetryAfter; beyond that the
// notification is dropped with a log line. Callers never block on the retry.
func (s *Service) Notify(ctx context.Context, n kit.Notification) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	_, err := s.adapter.SendText(callCtx, n.Target, n.Text, n.Options)
	cancel()
	if err == nil {
		s.log.Debug("notification sent", logx.Int64("chat_id", n.Target.ChatID))
		return nil
	}

	s.log.Warn("notification send failed",
		logx.Int64("chat_id", n.Target.ChatID), logx.Err(err))
	if n.Fallback != "" {
		s.scheduleRetry(n)
	}
	return err
}

func (s *Service) scheduleRetry(n kit.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	t := time.AfterFunc(s.cfg.RetryAfter, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
		defer cancel()
		// Degraded retry: plain text, default options.
		if _, err := s.adapter.SendText(ctx, n.Target, n.Fallback, nil); err != nil {
			s.log.Error("notification retry failed",
				logx.Int64("chat_id", n.Target.ChatID), logx.Err(err))
			return
		}
		s.log.Info("notification retry delivered", logx.Int64("chat_id", n.Target.ChatID))
	})
	s.timers = append(s.timers, t)
}

// Stop abandons pending retries. In-flight adapter calls run to their timeout.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, t := range s.timers {
		_ = t.Stop()
	}
	s.timers = nil
}
