package prayer

import (
	"context"
	"sync"

	"prayerbot/pkg/logx"
)

// FetchResult is what the time source produces for one (city, country).
type FetchResult struct {
	Times       Schedule
	Date        string // upstream gregorian date display string
	MethodLabel string
}

// Source fetches a day's prayer times for a location.
type Source interface {
	Fetch(ctx context.Context, city, country, method string) (FetchResult, error)
}

// Refresher routes fetches and enforces the write asymmetry: only a fetch
// for the configured default location overwrites the shared State. Ad-hoc
// lookups for other cities return a result without touching it — that is
// what lets the lookup command serve arbitrary cities without corrupting the
// notification cache.
type Refresher struct {
	src   Source
	state *State
	log   logx.Logger

	mu      sync.Mutex
	city    string
	country string
	method  string
}

func NewRefresher(src Source, state *State, city, country, method string, log logx.Logger) *Refresher {
	return &Refresher{src: src, state: state, city: city, country: country, method: method, log: log}
}

// SetLocation updates the default location/method (config hot-reload).
func (r *Refresher) SetLocation(city, country, method string) {
	r.mu.Lock()
	r.city, r.country, r.method = city, country, method
	r.mu.Unlock()
}

// Location returns the configured default location and method.
func (r *Refresher) Location() (city, country, method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.city, r.country, r.method
}

// Fetch gets times for an arbitrary location with the configured method.
// Iff (city, country) equals the default location exactly, the shared State
// is updated as a side effect. A failed fetch never clears previously cached
// data; stale-but-present beats empty.
func (r *Refresher) Fetch(ctx context.Context, city, country string) (FetchResult, error) {
	defCity, defCountry, method := r.Location()

	res, err := r.src.Fetch(ctx, city, country, method)
	if err != nil {
		return FetchResult{}, err
	}

	if city == defCity && country == defCountry {
		r.state.ReplaceSchedule(res.Times, res.Date)
		r.log.Info("prayer times updated",
			logx.String("city", city),
			logx.String("country", country),
			logx.String("date", res.Date),
		)
	}
	return res, nil
}

// RefreshDefault fetches the default location, updating the shared State.
func (r *Refresher) RefreshDefault(ctx context.Context) error {
	city, country, _ := r.Location()
	_, err := r.Fetch(ctx, city, country)
	return err
}
