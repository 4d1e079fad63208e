package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"prayerbot/internal/config"
	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type Plugin interface {
	Name() string
	Init(ctx context.Context, deps PluginDeps) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Commands() []Command
}

// ConfigurablePlugin receives the full config after a validated hot-reload.
type ConfigurablePlugin interface {
	OnConfigChange(ctx context.Context, cfg *config.Config) error
}

type PluginDeps struct {
	Logger   logx.Logger
	Adapter  kit.Adapter
	Config   *config.Manager
	Services *Services
}

type PluginManager struct {
	mu sync.Mutex

	log  logx.Logger
	cfgm *config.Manager
	deps PluginDeps
	reg  map[string]Plugin
	run  map[string]bool

	// long-lived base context for plugin contexts; bound to the app ctx on
	// first StartAll so a call-scoped ctx can't kill plugin loops.
	baseCtx    context.Context
	baseCancel context.CancelFunc
	bound      bool

	pcancel map[string]context.CancelFunc

	cmdm *CommandManager
}

func NewPluginManager(log logx.Logger, cfgm *config.Manager, deps PluginDeps, cmdm *CommandManager) *PluginManager {
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &PluginManager{
		log:        log,
		cfgm:       cfgm,
		deps:       deps,
		reg:        map[string]Plugin{},
		run:        map[string]bool{},
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		pcancel:    map[string]context.CancelFunc{},
		cmdm:       cmdm,
	}
}

func (pm *PluginManager) bindContext(appCtx context.Context) {
	pm.mu.Lock()
	if pm.bound || appCtx == nil {
		pm.mu.Unlock()
		return
	}
	pm.bound = true
	baseCancel := pm.baseCancel
	pm.mu.Unlock()

	go func() {
		<-appCtx.Done()
		baseCancel()
	}()
}

func (pm *PluginManager) Register(p ...Plugin) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, pl := range p {
		pm.reg[pl.Name()] = pl
	}
}

const pluginCallTimeout = 15 * time.Second

func (pm *PluginManager) StartAll(ctx context.Context) error {
	pm.bindContext(ctx)

	pm.mu.Lock()
	names := make([]string, 0, len(pm.reg))
	for name := range pm.reg {
		names = append(names, name)
	}
	pm.mu.Unlock()

	for _, name := range names {
		pm.mu.Lock()
		p := pm.reg[name]
		running := pm.run[name]
		pm.mu.Unlock()
		if p == nil || running {
			continue
		}

		pctx, cancel := context.WithCancel(pm.baseCtx)

		ictx, icancel := context.WithTimeout(pctx, pluginCallTimeout)
		err := pm.safeCall("plugin.init."+name, func() error { return p.Init(ictx, pm.deps) })
		icancel()
		if err != nil {
			pm.log.Error("plugin init failed", logx.String("plugin", name), logx.Err(err))
			cancel()
			continue
		}

		if err := pm.safeCall("plugin.start."+name, func() error { return p.Start(pctx) }); err != nil {
			pm.log.Error("plugin start failed", logx.String("plugin", name), logx.Err(err))
			cancel()
			continue
		}

		pm.mu.Lock()
		pm.run[name] = true
		pm.pcancel[name] = cancel
		pm.mu.Unlock()
		pm.log.Info("plugin started", logx.String("plugin", name))
	}

	pm.refreshRegistry()
	return nil
}

func (pm *PluginManager) StopAll(ctx context.Context) {
	pm.mu.Lock()
	names := make([]string, 0, len(pm.reg))
	for name := range pm.reg {
		names = append(names, name)
	}
	pm.mu.Unlock()

	for _, name := range names {
		pm.stopOne(ctx, name)
	}
	pm.refreshRegistry()
}

func (pm *PluginManager) stopOne(stopCtx context.Context, name string) {
	pm.mu.Lock()
	p := pm.reg[name]
	running := pm.run[name]
	cancel := pm.pcancel[name]
	pm.mu.Unlock()

	if !running || p == nil {
		return
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		_ = pm.safeCall("plugin.stop."+name, func() error { return p.Stop(stopCtx) })
		close(done)
	}()
	select {
	case <-done:
	case <-stopCtx.Done():
		pm.log.Warn("plugin stop timeout (continuing)",
			logx.String("plugin", name), logx.Err(stopCtx.Err()))
	}

	pm.mu.Lock()
	pm.run[name] = false
	delete(pm.pcancel, name)
	pm.mu.Unlock()
	pm.log.Debug("plugin stopped", logx.String("plugin", name))
}

// OnConfigUpdate fans a validated config out to running plugins that care.
func (pm *PluginManager) OnConfigUpdate(ctx context.Context, cfg *config.Config) {
	pm.mu.Lock()
	type target struct {
		name string
		cp   ConfigurablePlugin
	}
	targets := []target{}
	for name, p := range pm.reg {
		if !pm.run[name] {
			continue
		}
		if cp, ok := p.(ConfigurablePlugin); ok {
			targets = append(targets, target{name: name, cp: cp})
		}
	}
	pm.mu.Unlock()

	for _, t := range targets {
		cctx, cancel := context.WithTimeout(ctx, pluginCallTimeout)
		err := pm.safeCall("plugin.config."+t.name, func() error { return t.cp.OnConfigChange(cctx, cfg) })
		cancel()
		if err != nil {
			pm.log.Warn("plugin config apply failed", logx.String("plugin", t.name), logx.Err(err))
		}
	}
}

func (pm *PluginManager) safeCall(label string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pm.log.Error("panic in plugin call",
				logx.String("call", label),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic in %s: %v", label, r)
		}
	}()
	return fn()
}

func (pm *PluginManager) refreshRegistry() {
	pm.mu.Lock()
	cmds := []Command{}
	for name, p := range pm.reg {
		if !pm.run[name] {
			continue
		}
		for _, c := range p.Commands() {
			c.PluginName = name
			cmds = append(cmds, c)
		}
	}
	pm.mu.Unlock()

	pm.cmdm.SetRegistry(cmds)
}
