// Package core wires the chat adapter, command dispatch and plugin lifecycle
// together. Plugins contribute commands; the manager routes incoming messages
// to them through a middleware chain on a bounded worker pool.
package core

import (
	"context"
	"time"

	"prayerbot/internal/config"
	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type Command struct {
	// Route is a space-separated command path, e.g.:
	//   "next"
	//   "prayer times"
	Route       string
	Aliases     []string // root-level aliases, e.g. ["next_prayer"]
	Description string
	Usage       string

	PluginName string
	Timeout    time.Duration // optional per-command override
	Handle     HandlerFunc
}

type Request struct {
	Update  kit.Update
	Chat    kit.ChatTarget
	FromID  int64
	Path    []string // matched command path tokens
	Command string   // canonical route
	Args    []string // positional args after flags were split off

	RawArgs   []string
	Flags     map[string]string
	BoolFlags map[string]bool
	ReqID     string

	// Deferred points at a placeholder message the handler already sent.
	// When set, the error middleware edits it instead of sending fresh.
	Deferred *kit.MessageRef

	Adapter  kit.Adapter
	Config   *config.Config
	Logger   logx.Logger
	Services *Services
}

type Services struct {
	Scheduler SchedulerPort
	Notifier  NotifierPort
}

type SchedulerPort interface {
	AddCron(name, spec string, timeout time.Duration, job func(ctx context.Context) error) (string, error)
	AddInterval(name string, every, timeout time.Duration, job func(ctx context.Context) error) (string, error)
	AddDaily(name, atHHMM string, timeout time.Duration, job func(ctx context.Context) error) (string, error)
	AddOnce(name string, at time.Time, timeout time.Duration, job func(ctx context.Context) error) (string, error)
	Remove(name string) bool
}

type NotifierPort interface {
	Notify(ctx context.Context, n kit.Notification) error
}
