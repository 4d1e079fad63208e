package config

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"prayerbot/pkg/logx"
)

// Manager owns the resolved configuration. The file is optional: when it is
// absent the config is defaults + environment. When present it is watched and
// hot-reloaded; the environment always wins over file values.
type Manager struct {
	path string

	mu  sync.RWMutex
	cfg *Config

	// subsMu guards the subscriber list and ensures we never send on a
	// channel that is concurrently being closed in Unsubscribe().
	subsMu sync.Mutex
	subs   []chan *Config

	log logx.Logger

	// lastHash tracks the last committed config content to skip redundant
	// publishes when the editor fires multiple write events.
	lastHash uint64
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

// Parse builds a full Config: defaults, then the file (if any), then env.
// It does not validate; Load and Watch do.
func (m *Manager) Parse() (*Config, error) {
	cfg := defaults()

	if strings.TrimSpace(m.path) != "" {
		b, err := os.ReadFile(m.path)
		switch {
		case err == nil:
			jb, _, cerr := coerceToJSONBytes(m.path, b)
			if cerr != nil {
				return nil, cerr
			}
			if derr := decodeStrict(jb, cfg); derr != nil {
				return nil, fmt.Errorf("config %s: %w", m.path, derr)
			}
		case os.IsNotExist(err):
			// optional file
		default:
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Load parses and validates the startup configuration and commits it.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m.commit(cfg)
	return cfg, nil
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) commit(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.lastHash = hashConfig(cfg)
	m.mu.Unlock()
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}

func (m *Manager) Subscribe(buffer int) chan *Config {
	ch := make(chan *Config, buffer)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) Unsubscribe(ch chan *Config) {
	if ch == nil {
		return
	}
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, s := range m.subs {
		if s == ch {
			last := len(m.subs) - 1
			m.subs[i] = m.subs[last]
			m.subs[last] = nil
			m.subs = m.subs[:last]
			close(ch)
			return
		}
	}
}

func (m *Manager) publish(cfg *Config) {
	// Hold subsMu while sending to avoid send-on-closed panics.
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		if ch == nil {
			continue
		}
		// Deliver the latest config; if the subscriber lags, drop one
		// stale item and push the newest.
		select {
		case ch <- cfg:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cfg:
			default:
			}
		}
	}
}

// Watch reloads the config file on change. Reloads are debounced (editors
// produce bursts of partial writes), validated before commit, and skipped
// when content is unchanged. No-op when no file path was given.
func (m *Manager) Watch(ctx context.Context) error {
	if strings.TrimSpace(m.path) == "" {
		<-ctx.Done()
		return nil
	}

	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			cfg, err := m.Parse()
			if err != nil {
				m.log.Warn("config parse failed", logx.String("path", m.path), logx.Err(err))
				return
			}

			h := hashConfig(cfg)
			m.mu.RLock()
			unchanged := h != 0 && h == m.lastHash
			m.mu.RUnlock()
			if unchanged {
				m.log.Debug("config unchanged; skipping publish", logx.String("path", m.path))
				return
			}

			// transactional: validate before commit/publish
			if err := cfg.Validate(); err != nil {
				m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
				return
			}

			m.commit(cfg)
			m.publish(cfg)
			m.log.Info("config reloaded", logx.String("path", m.path))
		})
	}

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
	)
	backoff := restartBackoffBase

	for {
		if ctx.Err() != nil {
			return nil
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			err = w.Add(dir)
			if err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			m.log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < restartBackoffMax {
				backoff *= 2
			}
			continue
		}
		backoff = restartBackoffBase
		m.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				// Compare by basename: robust across absolute/relative paths.
				if strings.EqualFold(filepath.Base(ev.Name), file) {
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
						debounce()
					}
				}
			case werr, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if werr == nil {
					continue
				}
				m.log.Warn("config watch error", logx.Err(werr), logx.String("dir", dir))
				if strings.Contains(strings.ToLower(werr.Error()), "closed") {
					broken = true
				}
			}
		}

		_ = w.Close()
		if ctx.Err() != nil {
			return nil
		}
		m.log.Warn("config watcher stopped; restarting", logx.String("dir", dir), logx.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < restartBackoffMax {
			backoff *= 2
		}
	}
}
