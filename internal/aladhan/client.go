// Package aladhan is the client for the aladhan.com prayer-times API.
package aladhan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prayerbot/internal/prayer"
	"prayerbot/pkg/logx"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// fetchTimeout bounds one upstream call. The per-minute matcher shares the
// process with these fetches; an unbounded call must never stall it.
const fetchTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	log     logx.Logger
}

var _ prayer.Source = (*Client)(nil)

func New(log logx.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: fetchTimeout},
		log:     log,
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(baseURL string, log logx.Logger) *Client {
	c := New(log)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// response mirrors the relevant slice of the upstream contract: a numeric
// application code, per-prayer timing strings and the gregorian date.
type response struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
		Date    struct {
			Gregorian struct {
				Date string `json:"date"`
			} `json:"gregorian"`
		} `json:"date"`
	} `json:"data"`
}

// Fetch calls the timingsByCity endpoint and extracts the five prayer times.
// Network errors, timeouts, non-200 application codes and malformed payloads
// all collapse into one error; callers only decide "fetched or not".
func (c *Client) Fetch(ctx context.Context, city, country, method string) (prayer.FetchResult, error) {
	if strings.TrimSpace(city) == "" || strings.TrimSpace(country) == "" {
		return prayer.FetchResult{}, errors.New("city and country are required")
	}

	q := url.Values{}
	q.Set("city", city)
	q.Set("country", country)
	q.Set("method", method)
	u := c.baseURL + "/timingsByCity?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: %w", err)
	}
	defer resp.Body.Close()

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: decode: %w", err)
	}
	if body.Code != http.StatusOK {
		return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: upstream returned code %d", body.Code)
	}

	times := make(prayer.Schedule, len(prayer.Order))
	for _, p := range prayer.Order {
		raw, ok := body.Data.Timings[string(p)]
		if !ok {
			return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: missing %s timing", p)
		}
		t, err := prayer.ParseTimeOfDay(raw)
		if err != nil {
			return prayer.FetchResult{}, fmt.Errorf("fetch prayer times: %s: %w", p, err)
		}
		times[p] = t
	}

	res := prayer.FetchResult{
		Times:       times,
		Date:        body.Data.Date.Gregorian.Date,
		MethodLabel: prayer.MethodLabel(method),
	}
	c.log.Debug("prayer times fetched",
		logx.String("city", city),
		logx.String("country", country),
		logx.String("date", res.Date),
	)
	return res, nil
}
