// Package telegram adapts the telebot long-poll client to the kit contract.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger

	bot       *tele.Bot
	runCancel context.CancelFunc
	runWG     sync.WaitGroup
	runMu     sync.Mutex
	running   bool

	// droppedUpdates counts updates dropped because the consumer was slower
	// than the poll loop; logged periodically to avoid per-update spam.
	droppedUpdates uint64

	menuMu   sync.Mutex
	menuHash uint64
	http     *http.Client
}

var _ kit.Adapter = (*Adapter)(nil)
var _ kit.CommandMenuUpdater = (*Adapter)(nil)

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b, http: &http.Client{Timeout: 8 * time.Second}}, nil
}

func (a *Adapter) Start(ctx context.Context, out chan<- kit.Update) error {
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return nil
	}
	a.running = true
	rctx, cancel := context.WithCancel(ctx)
	a.runCancel = cancel
	a.runWG.Add(2)
	a.runMu.Unlock()

	go func() {
		defer a.runWG.Done()
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-rctx.Done():
				if n := atomic.SwapUint64(&a.droppedUpdates, 0); n > 0 {
					a.log.Warn("incoming updates dropped (channel full)", logx.Int64("count", int64(n)))
				}
				return
			case <-ticker.C:
				if n := atomic.SwapUint64(&a.droppedUpdates, 0); n > 0 {
					a.log.Warn("incoming updates dropped (channel full)", logx.Int64("count", int64(n)))
				}
			}
		}
	}()

	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		m := c.Message()
		if m == nil {
			return nil
		}
		up := kit.Update{
			Kind: kit.UpdateMessage,
			Message: &kit.Message{
				ID:           m.ID,
				ChatID:       m.Chat.ID,
				ThreadID:     m.ThreadID,
				FromID:       m.Sender.ID,
				FromUsername: m.Sender.Username,
				Text:         m.Text,
			},
		}
		select {
		case out <- up:
		default:
			atomic.AddUint64(&a.droppedUpdates, 1)
		}
		return nil
	})

	go func() {
		defer a.runWG.Done()
		go func() {
			<-rctx.Done()
			a.bot.Stop()
		}()
		a.log.Info("polling started")
		a.bot.Start() // blocks until Stop() called
	}()

	return nil
}

func (a *Adapter) Stop(ctx context.Context) error {
	a.runMu.Lock()
	cancel := a.runCancel
	a.runCancel = nil
	wasRunning := a.running
	a.running = false
	a.runMu.Unlock()

	if !wasRunning {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if a.bot != nil {
		go a.bot.Stop()
	}

	done := make(chan struct{})
	go func() {
		a.runWG.Wait()
		close(done)
	}()

	// Grace window: keep shutdown snappy even if the getUpdates long-poll
	// is still waiting.
	grace := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < grace {
			grace = rem
		}
	}
	t := time.NewTimer(grace)
	defer t.Stop()

	select {
	case <-done:
		a.log.Info("polling stopped")
		return nil
	case <-ctx.Done():
		a.log.Warn("telegram stop cancelled", logx.Err(ctx.Err()))
		return ctx.Err()
	case <-t.C:
		a.log.Warn("telegram stop grace elapsed, continuing shutdown")
		return nil
	}
}

func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	chat := &tele.Chat{ID: to.ChatID}
	sendOpt := &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	}
	msg, err := a.bot.Send(chat, text, sendOpt)
	if err != nil {
		return kit.MessageRef{}, err
	}
	return kit.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: msg.ID}, nil
}

func (a *Adapter) EditText(ctx context.Context, ref kit.MessageRef, text string, opt *kit.SendOptions) error {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	m := &tele.Message{ID: ref.MessageID, Chat: &tele.Chat{ID: ref.ChatID}}
	sendOpt := &tele.SendOptions{ParseMode: opt.ParseMode, DisableWebPagePreview: opt.DisablePreview}
	_, err := a.bot.Edit(m, text, sendOpt)
	return err
}

// UpdateMenuCommands syncs the global command menu (setMyCommands).
// Best-effort: it only performs a network call when the command list changes.
func (a *Adapter) UpdateMenuCommands(ctx context.Context, cmds []kit.BotCommand) error {
	a.menuMu.Lock()
	defer a.menuMu.Unlock()

	h := fnv.New64a()
	for _, c := range cmds {
		h.Write([]byte(c.Command))
		h.Write([]byte{0})
		h.Write([]byte(c.Description))
		h.Write([]byte{0})
	}
	sum := h.Sum64()
	if sum == a.menuHash {
		return nil
	}

	type cmd struct {
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	payload := struct {
		Commands []cmd `json:"commands"`
	}{Commands: make([]cmd, 0, len(cmds))}

	for _, c := range cmds {
		if c.Command == "" {
			continue
		}
		d := c.Description
		if d == "" {
			d = c.Command
		}
		if len(d) > 256 {
			d = d[:256]
		}
		payload.Commands = append(payload.Commands, cmd{Command: c.Command, Description: d})
		if len(payload.Commands) >= 100 {
			break
		}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := "https://api.telegram.org/bot" + strings.TrimSpace(a.cfg.Token) + "/setMyCommands"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		OK          bool   `json:"ok"`
		ErrorCode   int    `json:"error_code"`
		Description string `json:"description"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode/100 != 2 || !out.OK {
		if out.Description != "" {
			return fmt.Errorf("telegram setMyCommands failed: %s (code=%d http=%d)", out.Description, out.ErrorCode, resp.StatusCode)
		}
		return fmt.Errorf("telegram setMyCommands failed: http=%d", resp.StatusCode)
	}

	a.menuHash = sum
	a.log.Info("menu commands updated", logx.Int("count", len(payload.Commands)))
	return nil
}
