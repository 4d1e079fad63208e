package prayer

import (
	"context"
	"time"

	"prayerbot/pkg/logx"
)

// SendFunc delivers one prayer notification. Failures are the dispatcher's
// problem (it logs and retries); the matcher never un-marks a ledger entry.
type SendFunc func(ctx context.Context, p Name, t TimeOfDay)

// Notifier runs the per-minute match scan against the shared State.
type Notifier struct {
	state *State
	send  SendFunc
	log   logx.Logger
}

func NewNotifier(state *State, send SendFunc, log logx.Logger) *Notifier {
	return &Notifier{state: state, send: send, log: log}
}

// Tick performs one matcher pass for the given wall-clock instant:
//
//  1. fire a notification for every prayer whose cached time equals the
//     current minute and whose (date, prayer) key is not in the ledger yet;
//  2. at exactly 00:00, prune yesterday's ledger entries.
//
// The scan runs before the prune; stale yesterday keys can't collide with
// today's because the date differs. Tick tolerates drift: it compares
// minute-granularity values, not instants, so it may run at any point within
// the minute.
func (n *Notifier) Tick(ctx context.Context, now time.Time) {
	cur := At(now)
	date := DateString(now)

	sched := n.state.Schedule()
	for _, p := range Order {
		t, ok := sched[p]
		if !ok || t != cur {
			continue
		}
		if !n.state.MarkNotified(date, p) {
			continue
		}
		n.log.Info("prayer time matched",
			logx.String("prayer", string(p)),
			logx.String("time", t.String()),
			logx.String("date", date),
		)
		n.send(ctx, p, t)
	}

	if cur.IsMidnight() {
		yesterday := DateString(now.Add(-24 * time.Hour))
		if removed := n.state.PruneDay(yesterday); removed > 0 {
			n.log.Debug("notified ledger pruned",
				logx.String("date", yesterday),
				logx.Int("removed", removed),
			)
		}
	}
}
