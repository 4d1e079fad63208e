package prayerplugin

import (
	"fmt"
	"strings"
	"time"

	"prayerbot/internal/prayer"
)

func broadcastText(name prayer.Name, t prayer.TimeOfDay) string {
	return fmt.Sprintf(
		"🕌 <b>%s</b>\nIt is time for <b>%s</b> prayer (%s).",
		prayer.DisplayName(name), name, t)
}

// fallbackText is the degraded plain-text rendering used by the retry path.
func fallbackText(name prayer.Name, t prayer.TimeOfDay) string {
	return fmt.Sprintf("🕌 Prayer time: %s at %s", name, t)
}

func renderTimes(city, country string, res prayer.FetchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕌 <b>Prayer Times — %s, %s</b>\n", city, country)
	if res.Date != "" {
		fmt.Fprintf(&b, "📅 %s\n", res.Date)
	}
	b.WriteString("\n")
	for _, name := range prayer.Order {
		t, ok := res.Times[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "• <b>%s</b> — %s\n", prayer.DisplayName(name), t)
	}
	if res.MethodLabel != "" {
		fmt.Fprintf(&b, "\nMethod: %s", res.MethodLabel)
	}
	return b.String()
}

func renderNext(name prayer.Name, t prayer.TimeOfDay, tomorrow bool) string {
	when := "today"
	if tomorrow {
		when = "tomorrow"
	}
	return fmt.Sprintf("⏰ Next prayer: <b>%s</b> at <b>%s</b> (%s)",
		prayer.DisplayName(name), t, when)
}

func renderMethods() string {
	var b strings.Builder
	b.WriteString("📖 <b>Calculation Methods</b>\n\n")
	for _, id := range prayer.MethodIDs() {
		fmt.Fprintf(&b, "<b>%s</b> — %s\n", id, prayer.MethodLabel(id))
	}
	b.WriteString("\nSet via the CALCULATION_METHOD environment variable or location.method in the config file.")
	return b.String()
}

type infoData struct {
	City      string
	Country   string
	Method    string
	Channel   int64
	LastFetch string
	Fetched   bool
	Uptime    time.Duration
	Ledger    int
}

func renderInfo(d infoData) string {
	lastFetch := "Not fetched yet"
	if d.Fetched {
		lastFetch = d.LastFetch
	}
	channel := "not configured"
	if d.Channel != 0 {
		channel = fmt.Sprintf("%d", d.Channel)
	}
	var b strings.Builder
	b.WriteString("ℹ️ <b>Bot Status</b>\n\n")
	fmt.Fprintf(&b, "📍 Location: %s, %s\n", d.City, d.Country)
	fmt.Fprintf(&b, "📖 Method: %s\n", prayer.MethodLabel(d.Method))
	fmt.Fprintf(&b, "📢 Channel: %s\n", channel)
	fmt.Fprintf(&b, "📅 Last fetch: %s\n", lastFetch)
	fmt.Fprintf(&b, "🔔 Notified today/yesterday: %d\n", d.Ledger)
	fmt.Fprintf(&b, "⏱ Uptime: %s", formatUptime(d.Uptime))
	return b.String()
}

func formatUptime(d time.Duration) string {
	mins := int(d.Minutes())
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
