// Package scheduler runs cron-style recurring jobs and one-shot timers on a
// small worker pool. The prayer matcher, the midnight refresh and the startup
// retry all go through it so timing behavior lives in one place.
package scheduler

import (
	"context"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"prayerbot/pkg/logx"
)

type Config struct {
	Workers        int
	DefaultTimeout time.Duration
	Timezone       string // IANA TZ, e.g. "Asia/Amman"; empty means time.Local
}

type task struct {
	id      string
	name    string
	timeout time.Duration
	run     func(ctx context.Context) error
}

type scheduleDef struct {
	id      string
	name    string
	spec    string // cron spec or @every
	timeout time.Duration
	job     func(ctx context.Context) error
	entryID cron.EntryID
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	parser cron.Parser
	c      *cron.Cron
	defs   []scheduleDef

	queue  chan task
	stopCh chan struct{}

	// one-shot timers, upserted by name. onceVer guards against stale
	// callbacks from a timer that was replaced before it fired.
	tmu     sync.Mutex
	timers  map[string]*time.Timer
	onceVer map[string]uint64

	runCancel context.CancelFunc
	workerWG  sync.WaitGroup
}

func New(cfg Config, log logx.Logger) *Service {
	return &Service{
		cfg:     cfg,
		log:     log,
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		timers:  map[string]*time.Timer{},
		onceVer: map[string]uint64{},
	}
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})

	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	// Fresh queue per run so a stop/start toggle never replays stale tasks.
	s.queue = make(chan task, 64)

	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))

	// re-register definitions surviving a previous run
	for i := range s.defs {
		_ = s.addCronLocked(&s.defs[i])
	}

	stopCh := s.stopCh
	queue := s.queue

	s.workerWG.Add(workers)
	for i := 0; i < workers; i++ {
		idx := i
		go func() {
			defer s.workerWG.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("panic in scheduler worker",
						logx.Int("worker", idx),
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())),
					)
				}
			}()
			s.worker(runCtx, stopCh, queue)
		}()
	}
	s.c.Start()
	s.log.Info("scheduler started",
		logx.Int("workers", workers),
		logx.String("tz", loc.String()),
		logx.Int("schedules", len(s.defs)),
	)
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	cancel := s.runCancel
	c := s.c
	s.stopCh = nil
	s.runCancel = nil
	s.c = nil
	s.queue = nil
	s.mu.Unlock()

	close(stopCh)
	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}

	// stop one-shot timers; anything not yet fired is abandoned
	s.tmu.Lock()
	for _, t := range s.timers {
		_ = t.Stop()
	}
	s.timers = map[string]*time.Timer{}
	s.tmu.Unlock()

	done := make(chan struct{})
	go func() {
		s.workerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		// workers finish in background
	}
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local",
			logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func (s *Service) resolveTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return s.cfg.DefaultTimeout
}
