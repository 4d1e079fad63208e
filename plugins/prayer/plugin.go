// Package prayerplugin is the bot's prayer-times feature: daily schedule
// fetch, per-minute broadcast matching and the chat command surface.
package prayerplugin

import (
	"context"
	"sync"
	"time"

	"prayerbot/internal/aladhan"
	"prayerbot/internal/config"
	"prayerbot/internal/core"
	"prayerbot/internal/kit"
	"prayerbot/internal/prayer"
	"prayerbot/pkg/logx"
)

const (
	taskMatcher    = "prayer:matcher"
	taskRefresh    = "prayer:refresh"
	taskRetryFetch = "prayer:retry-fetch"

	// one retry after a failed startup fetch
	startupRetryDelay = time.Minute
)

type Plugin struct {
	deps core.PluginDeps
	log  logx.Logger

	state     *prayer.State
	refresher *prayer.Refresher
	notifier  *prayer.Notifier
	src       prayer.Source // defaults to the aladhan client

	mu        sync.Mutex
	channel   kit.ChatTarget
	startedAt time.Time
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return "prayer" }

func (p *Plugin) Init(ctx context.Context, deps core.PluginDeps) error {
	p.deps = deps
	p.log = deps.Logger.With(logx.String("plugin", p.Name()))

	cfg := deps.Config.Get()

	p.state = prayer.NewState()
	if p.src == nil {
		p.src = aladhan.New(p.log.With(logx.String("comp", "aladhan")))
	}
	p.refresher = prayer.NewRefresher(p.src, p.state,
		cfg.Location.City, cfg.Location.Country, cfg.Location.Method, p.log)
	p.notifier = prayer.NewNotifier(p.state, p.broadcast, p.log)

	p.applyChannel(cfg)
	p.startedAt = time.Now()
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	// Startup fetch so the matcher has a schedule before the first midnight
	// refresh. One retry after a minute, then wait for the daily refresh.
	if err := p.refresher.RefreshDefault(ctx); err != nil {
		p.log.Warn("startup fetch failed, retrying once", logx.Err(err))
		_, _ = p.deps.Services.Scheduler.AddOnce(taskRetryFetch,
			time.Now().Add(startupRetryDelay), 30*time.Second,
			func(ctx context.Context) error {
				if err := p.refresher.RefreshDefault(ctx); err != nil {
					return err
				}
				p.notifier.Tick(ctx, time.Now())
				return nil
			})
	}
	// The current minute may already be a prayer time. With nothing fetched
	// the scan is a no-op, so it runs unconditionally.
	p.notifier.Tick(ctx, time.Now())

	if _, err := p.deps.Services.Scheduler.AddCron(taskMatcher, "* * * * *", 30*time.Second,
		func(ctx context.Context) error {
			p.notifier.Tick(ctx, time.Now())
			return nil
		}); err != nil {
		return err
	}

	if _, err := p.deps.Services.Scheduler.AddDaily(taskRefresh, "00:00", time.Minute,
		func(ctx context.Context) error {
			return p.refresher.RefreshDefault(ctx)
		}); err != nil {
		return err
	}

	return nil
}

func (p *Plugin) Stop(ctx context.Context) error {
	p.deps.Services.Scheduler.Remove(taskMatcher)
	p.deps.Services.Scheduler.Remove(taskRefresh)
	p.deps.Services.Scheduler.Remove(taskRetryFetch)
	return nil
}

// OnConfigChange picks up location and channel changes from a hot-reload.
// A location change triggers an immediate refetch so the cache doesn't serve
// the old city until midnight.
func (p *Plugin) OnConfigChange(ctx context.Context, cfg *config.Config) error {
	oldCity, oldCountry, oldMethod := p.refresher.Location()
	p.refresher.SetLocation(cfg.Location.City, cfg.Location.Country, cfg.Location.Method)
	p.applyChannel(cfg)

	if oldCity != cfg.Location.City || oldCountry != cfg.Location.Country || oldMethod != cfg.Location.Method {
		p.log.Info("location changed, refetching",
			logx.String("city", cfg.Location.City),
			logx.String("country", cfg.Location.Country),
			logx.String("method", cfg.Location.Method),
		)
		return p.refresher.RefreshDefault(ctx)
	}
	return nil
}

func (p *Plugin) applyChannel(cfg *config.Config) {
	id, err := config.ParseChatID(cfg.Telegram.Channel)
	if err != nil {
		p.log.Warn("invalid broadcast channel", logx.String("channel", cfg.Telegram.Channel))
		return
	}
	p.mu.Lock()
	p.channel = kit.ChatTarget{ChatID: id}
	p.mu.Unlock()
}

func (p *Plugin) broadcastTarget() kit.ChatTarget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel
}

func (p *Plugin) uptime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// broadcast is the notifier's send hook: one rich message to the configured
// channel. Delivery failures (including the degraded retry) belong to the
// notify service; the matcher's ledger entry stays either way.
func (p *Plugin) broadcast(ctx context.Context, name prayer.Name, t prayer.TimeOfDay) {
	target := p.broadcastTarget()
	if target.ChatID == 0 {
		p.log.Warn("no broadcast channel configured, skipping notification",
			logx.String("prayer", string(name)))
		return
	}
	n := kit.Notification{
		Target:   target,
		Text:     broadcastText(name, t),
		Options:  &kit.SendOptions{ParseMode: "HTML", DisablePreview: true},
		Fallback: fallbackText(name, t),
	}
	_ = p.deps.Services.Notifier.Notify(ctx, n)
}
