package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"prayerbot/internal/adapters/telegram"
	"prayerbot/internal/config"
	"prayerbot/internal/kit"
	"prayerbot/internal/services/notify"
	"prayerbot/internal/services/scheduler"
	"prayerbot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	adapter kit.Adapter

	sched *scheduler.Service
	notif *notify.Service

	cmdm *CommandManager
	pm   *PluginManager

	updates chan kit.Update

	runCancel context.CancelFunc
	wg        sync.WaitGroup
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram"))
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.PollTimeoutOrDefault(10 * time.Second),
	}, bootLog)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Chat: logx.ChatConfig{
			Enabled:    cfg.Logging.Chat.Enabled,
			MinLevel:   cfg.Logging.Chat.MinLevel,
			RatePerSec: cfg.Logging.Chat.RatePerSec,
		},
	}, ad)
	log = log.With(logx.String("comp", "app"))
	applyLogChatTarget(logSvc, cfg)

	schedSvc := scheduler.New(scheduler.Config{
		Workers:        2,
		DefaultTimeout: time.Minute,
		Timezone:       cfg.Timezone,
	}, logSvc.Logger().With(logx.String("comp", "scheduler")))

	notifSvc := notify.New(notify.Config{},
		ad, logSvc.Logger().With(logx.String("comp", "notifier")))

	serv := &Services{
		Scheduler: schedSvc,
		Notifier:  notifSvc,
	}

	cmdm := NewCommandManager(logSvc.Logger().With(logx.String("comp", "commands")),
		ad, cfgm, serv)

	pm := NewPluginManager(logSvc.Logger().With(logx.String("comp", "plugins")),
		cfgm, PluginDeps{
			Logger:   logSvc.Logger(),
			Adapter:  ad,
			Config:   cfgm,
			Services: serv,
		}, cmdm)

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		adapter: ad,
		sched:   schedSvc,
		notif:   notifSvc,
		cmdm:    cmdm,
		pm:      pm,
		updates: make(chan kit.Update, 256),
	}, nil
}

func (a *App) Plugins() *PluginManager { return a.pm }

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.runCancel = cancel

	a.cfgm.SetLogger(a.logs.Logger().With(logx.String("comp", "config")))

	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		cancel()
		return err
	}

	a.sched.Start(runCtx)

	if err := a.pm.StartAll(runCtx); err != nil {
		cancel()
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.cmdm.DispatchLoop(runCtx, a.updates)
	}()

	// hot reload fan-out
	sub := a.cfgm.Subscribe(8)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runCtx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// coalesce bursts: keep only the latest config
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.logs.Apply(logx.Config{
					Level:   newCfg.Logging.Level,
					Console: newCfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: newCfg.Logging.File.Enabled,
						Path:    newCfg.Logging.File.Path,
					},
					Chat: logx.ChatConfig{
						Enabled:    newCfg.Logging.Chat.Enabled,
						MinLevel:   newCfg.Logging.Chat.MinLevel,
						RatePerSec: newCfg.Logging.Chat.RatePerSec,
					},
				})
				applyLogChatTarget(a.logs, newCfg)

				a.pm.OnConfigUpdate(runCtx, newCfg)
				a.syncMenu(runCtx)
				a.log.Info("config reloaded")
			}
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(runCtx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	a.syncMenu(runCtx)

	a.log.Info("app started")
	return nil
}

// syncMenu pushes the flattened command registry to the platform menu.
func (a *App) syncMenu(ctx context.Context) {
	mu, ok := a.adapter.(kit.CommandMenuUpdater)
	if !ok {
		return
	}
	mctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := mu.UpdateMenuCommands(mctx, a.cmdm.MenuCommands()); err != nil {
		a.log.Warn("menu sync failed", logx.Err(err))
	}
}

func (a *App) Stop(ctx context.Context) error {
	if a.runCancel == nil {
		return nil
	}
	a.log.Info("stopping")
	a.runCancel()

	// Each step gets an upper bound so a single component can't stall the
	// whole shutdown.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			if dl, ok := ctx.Deadline(); ok {
				if rem := time.Until(dl); rem > 0 && rem < max {
					max = rem
				}
			}
			stepCtx, cancel = context.WithTimeout(ctx, max)
			defer cancel()
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name), logx.Err(stepCtx.Err()))
		}
	}

	step("plugins", 4*time.Second, func(c context.Context) error { a.pm.StopAll(c); return nil })
	step("scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	step("notifier", 1*time.Second, func(c context.Context) error { a.notif.Stop(c); return nil })
	step("adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })

	waitDone := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
	}

	a.log.Info("stopped")
	_ = a.logs.Close()
	return nil
}

func applyLogChatTarget(logs *logx.Service, cfg *config.Config) {
	lc := strings.TrimSpace(cfg.Telegram.LogChat)
	if lc == "" {
		logs.SetChatTarget(kit.ChatTarget{})
		return
	}
	if chatID, err := config.ParseChatID(lc); err == nil {
		logs.SetChatTarget(kit.ChatTarget{ChatID: chatID})
	}
}
