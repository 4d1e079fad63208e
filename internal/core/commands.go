package core

import (
	"context"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"prayerbot/internal/config"
	"prayerbot/internal/kit"
	"prayerbot/pkg/logx"
)

type CommandManager struct {
	mu sync.RWMutex

	root  *routeNode
	alias map[string]*routeNode // alias -> leaf node

	log     logx.Logger
	adapter kit.Adapter
	cfgm    *config.Manager
	serv    *Services

	jobs chan func()
}

func NewCommandManager(log logx.Logger, adapter kit.Adapter, cfgm *config.Manager, serv *Services) *CommandManager {
	return &CommandManager{
		root:    newRouteTree(),
		alias:   map[string]*routeNode{},
		log:     log,
		adapter: adapter,
		cfgm:    cfgm,
		serv:    serv,
		jobs:    make(chan func(), 256),
	}
}

func (m *CommandManager) SetRegistry(cmds []Command) {
	// always inject help
	helper := Command{
		Route:       "help",
		Aliases:     []string{"h"},
		Description: "show help",
		Usage:       "/help [cmd] [sub...]",
		Handle: func(ctx context.Context, req *Request) error {
			text := m.helpText(req.Args)
			_, _ = req.Adapter.SendText(ctx, req.Chat, text, &kit.SendOptions{DisablePreview: true})
			return nil
		},
	}
	cmds = append(cmds, helper)

	root := newRouteTree()
	alias := map[string]*routeNode{}

	for _, c := range cmds {
		route := splitRoute(c.Route)
		if len(route) == 0 || c.Handle == nil {
			continue
		}
		cc := c // copy
		root.insert(route, cc)

		leaf := root.lookup(route)
		// auto alias for multi-token routes: "prayer times" -> "prayer_times"
		// so the Telegram menu can link them
		if len(route) > 1 {
			auto := strings.Join(route, "_")
			if _, exists := alias[auto]; !exists {
				alias[auto] = leaf
			}
		}
		for _, a := range c.Aliases {
			a = strings.TrimSpace(a)
			if a == "" || strings.Contains(a, " ") {
				continue
			}
			alias[a] = leaf
		}
	}

	m.mu.Lock()
	m.root = root
	m.alias = alias
	m.mu.Unlock()
}

// MenuCommands flattens the registry into single-word menu entries suitable
// for the platform command menu. Multi-token routes surface via their
// auto-generated underscore alias.
func (m *CommandManager) MenuCommands() []kit.BotCommand {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]bool{}
	out := []kit.BotCommand{}
	add := func(name string, n *routeNode) {
		if n == nil || n.cmd == nil || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, kit.BotCommand{Command: name, Description: n.cmd.Description})
	}

	for _, name := range m.root.sortedChildren() {
		n, _ := m.root.step(name)
		add(name, n)
	}
	aliases := make([]string, 0, len(m.alias))
	for a := range m.alias {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	for _, a := range aliases {
		add(a, m.alias[a])
	}
	return out
}

func (m *CommandManager) DispatchLoop(ctx context.Context, updates <-chan kit.Update) error {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	m.log.Info("command dispatcher started", logx.Int("workers", workers))

	var (
		wg        sync.WaitGroup
		closeOnce sync.Once
	)
	closeJobs := func() {
		closeOnce.Do(func() { close(m.jobs) })
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		idx := i
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("panic in command worker",
						logx.Int("worker", idx),
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())),
					)
				}
			}()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-m.jobs:
					if !ok {
						return
					}
					if job == nil {
						continue
					}
					job()
				}
			}
		}()
	}

	defer func() {
		closeJobs()
		wg.Wait()
		m.log.Info("command dispatcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				m.log.Info("command dispatcher stopped (updates channel closed)")
				return nil
			}
			if up.Kind == kit.UpdateMessage {
				m.routeMessage(ctx, up)
			}
		}
	}
}

func (m *CommandManager) routeMessage(root context.Context, up kit.Update) {
	if up.Message == nil {
		return
	}
	msg := up.Message
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	parts := tokenizeCommandLine(text)
	if len(parts) == 0 {
		return
	}
	word := strings.TrimPrefix(parts[0], "/")
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}
	args := []string{}
	if len(parts) > 1 {
		args = parts[1:]
	}

	m.mu.RLock()
	rootNode := m.root
	aliasMap := m.alias
	m.mu.RUnlock()

	// alias as root-level shortcut
	if leaf, ok := aliasMap[word]; ok && leaf != nil && leaf.cmd != nil {
		cmd := *leaf.cmd
		pos, flags, bools := parseFlags(args)
		m.enqueueCommand(root, up, cmd, splitRoute(cmd.Route), pos, args, flags, bools)
		return
	}

	cur, ok := rootNode.step(word)
	if !ok {
		_, _ = m.adapter.SendText(root, kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID}, "unknown command. try /help", nil)
		return
	}
	path := []string{word}
	for len(args) > 0 {
		nxt := args[0]
		if strings.HasPrefix(nxt, "-") { // flags start, stop subcommand traversal
			break
		}
		child, ok := cur.step(nxt)
		if !ok {
			break
		}
		cur = child
		path = append(path, nxt)
		args = args[1:]
	}

	// container node without handler: show help for that path
	if cur.cmd == nil {
		txt := m.helpText(path)
		_, _ = m.adapter.SendText(root, kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID}, txt, &kit.SendOptions{DisablePreview: true})
		return
	}

	cmd := *cur.cmd
	pos, flags, bools := parseFlags(args)
	m.enqueueCommand(root, up, cmd, path, pos, args, flags, bools)
}

func (m *CommandManager) enqueueCommand(root context.Context, up kit.Update, cmd Command, path []string, args []string, raw []string, flags map[string]string, bools map[string]bool) {
	msg := up.Message
	if msg == nil {
		return
	}

	rid := newReqID()
	reqLog := m.log.With(
		logx.String("rid", rid),
		logx.Int64("chat_id", msg.ChatID),
		logx.Int64("from_id", msg.FromID),
		logx.String("cmd", cmd.Route),
	)

	req := &Request{
		Update:    up,
		Chat:      kit.ChatTarget{ChatID: msg.ChatID, ThreadID: msg.ThreadID},
		FromID:    msg.FromID,
		Path:      path,
		Command:   cmd.Route,
		Args:      args,
		RawArgs:   raw,
		Flags:     flags,
		BoolFlags: bools,
		ReqID:     rid,
		Adapter:   m.adapter,
		Config:    m.cfgm.Get(),
		Logger:    reqLog,
		Services:  m.serv,
	}

	// Panic recovery sits inside the error reply so a recovered panic still
	// reaches the user as a generic message.
	final := Chain(
		cmd.Handle,
		MWRequestLog(m.log),
		MWErrorReply(),
		MWPanicRecover(m.log),
		MWTimeout(cmd.Timeout),
	)

	select {
	case m.jobs <- func() { _ = final(root, req) }:
	default:
		_, _ = m.adapter.SendText(root, req.Chat, "busy, try again", nil)
	}
}
