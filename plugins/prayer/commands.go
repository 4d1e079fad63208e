package prayerplugin

import (
	"context"
	"strings"
	"time"

	"prayerbot/internal/core"
	"prayerbot/internal/kit"
	"prayerbot/internal/prayer"
	"prayerbot/pkg/logx"
)

var htmlOpts = &kit.SendOptions{ParseMode: "HTML", DisablePreview: true}

func (p *Plugin) Commands() []core.Command {
	return []core.Command{
		{
			Route:       "prayer times",
			Aliases:     []string{"times"},
			Description: "prayer times for a city (default: configured location)",
			Usage:       "/prayer times [city] [country...]",
			Timeout:     30 * time.Second,
			Handle:      p.handleTimes,
		},
		{
			Route:       "next",
			Aliases:     []string{"next_prayer"},
			Description: "the next upcoming prayer",
			Usage:       "/next",
			Handle:      p.handleNext,
		},
		{
			Route:       "methods",
			Aliases:     []string{"calculation_methods"},
			Description: "available calculation methods",
			Usage:       "/methods",
			Handle:      p.handleMethods,
		},
		{
			Route:       "info",
			Aliases:     []string{"bot_info", "status"},
			Description: "bot status and configuration",
			Usage:       "/info",
			Handle:      p.handleInfo,
		},
	}
}

// handleTimes fetches on demand. The upstream call can take seconds, so a
// placeholder goes out first and gets edited with the result. Lookups for
// the configured default location refresh the broadcast cache as a side
// effect; any other city never touches it.
func (p *Plugin) handleTimes(ctx context.Context, req *core.Request) error {
	city, country, _ := p.refresher.Location()
	if len(req.Args) > 0 {
		city = req.Args[0]
	}
	if len(req.Args) > 1 {
		country = strings.Join(req.Args[1:], " ")
	}
	if v, ok := req.Flags["country"]; ok {
		country = v
	}

	ref, err := req.Adapter.SendText(ctx, req.Chat, "🕌 Fetching prayer times...", nil)
	if err != nil {
		return err
	}
	req.Deferred = &ref

	res, err := p.refresher.Fetch(ctx, city, country)
	if err != nil {
		// The fetch failure text is the reply; nothing left for the error
		// middleware to render.
		req.Logger.Warn("lookup fetch failed", logx.Err(err))
		return req.Adapter.EditText(ctx, ref, "❌ Error: "+err.Error(), nil)
	}
	return req.Adapter.EditText(ctx, ref, renderTimes(city, country, res), htmlOpts)
}

func (p *Plugin) handleNext(ctx context.Context, req *core.Request) error {
	sched := p.state.Schedule()
	name, t, tomorrow, ok := prayer.Next(sched, prayer.At(time.Now()))
	if !ok {
		_, err := req.Adapter.SendText(ctx, req.Chat,
			"Prayer times have not been fetched yet. Try again in a minute.", nil)
		return err
	}
	_, err := req.Adapter.SendText(ctx, req.Chat, renderNext(name, t, tomorrow), htmlOpts)
	return err
}

func (p *Plugin) handleMethods(ctx context.Context, req *core.Request) error {
	_, err := req.Adapter.SendText(ctx, req.Chat, renderMethods(), htmlOpts)
	return err
}

func (p *Plugin) handleInfo(ctx context.Context, req *core.Request) error {
	city, country, method := p.refresher.Location()
	lastFetch, fetched := p.state.LastFetchDate()
	text := renderInfo(infoData{
		City:      city,
		Country:   country,
		Method:    method,
		Channel:   p.broadcastTarget().ChatID,
		LastFetch: lastFetch,
		Fetched:   fetched,
		Uptime:    p.uptime(),
		Ledger:    p.state.LedgerSize(),
	})
	_, err := req.Adapter.SendText(ctx, req.Chat, text, htmlOpts)
	return err
}
