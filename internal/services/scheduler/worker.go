package scheduler

import (
	"context"
	"time"

	"prayerbot/pkg/logx"
)

func (s *Service) enqueue(t task) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("scheduler not running, dropping task", logx.String("task", t.name))
		return
	}
	select {
	case q <- t:
	default:
		s.log.Warn("scheduler queue full, dropping task",
			logx.String("task", t.name),
			logx.Int("queue_len", len(q)),
		)
	}
}

func (s *Service) worker(ctx context.Context, stopCh <-chan struct{}, queue <-chan task) {
	for {
		// A closed stopCh wins over queued work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case t := <-queue:
			s.execOne(ctx, t)
		}
	}
}

func (s *Service) execOne(ctx context.Context, t task) {
	start := time.Now()
	runCtx := ctx
	var cancel context.CancelFunc
	if t.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	err := t.run(runCtx)
	dur := time.Since(start)
	if err != nil {
		s.log.Warn("task failed",
			logx.String("task", t.name), logx.Err(err), logx.Duration("dur", dur))
		return
	}
	// The per-minute matcher runs constantly; keep its completions at debug.
	if dur >= 750*time.Millisecond {
		s.log.Info("task completed", logx.String("task", t.name), logx.Duration("dur", dur))
	} else {
		s.log.Debug("task completed", logx.String("task", t.name), logx.Duration("dur", dur))
	}
}
