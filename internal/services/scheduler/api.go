package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"prayerbot/pkg/logx"
)

// AddCron registers a recurring job under a standard 5-field cron spec.
// Registrations upsert by name so repeated calls across hot-reloads never
// duplicate a schedule.
func (s *Service) AddCron(name, spec string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return "", errors.New("name required")
	}
	_ = s.removeScheduleLocked(name)
	id := fmt.Sprintf("cron:%d", time.Now().UnixNano())
	d := scheduleDef{id: id, name: name, spec: spec, timeout: s.resolveTimeout(timeout), job: job}
	s.defs = append(s.defs, d)
	if s.c == nil {
		// not started yet: keep the definition, Start() registers it
		return id, nil
	}
	if err := s.addCronLocked(&s.defs[len(s.defs)-1]); err != nil {
		s.log.Error("schedule register failed",
			logx.String("name", name), logx.String("spec", spec), logx.Err(err))
		return "", err
	}
	s.log.Debug("schedule registered",
		logx.String("name", name), logx.String("spec", spec))
	return id, nil
}

// AddInterval registers a recurring job running every given duration.
func (s *Service) AddInterval(name string, every, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	return s.AddCron(name, fmt.Sprintf("@every %s", every.String()), timeout, job)
}

// AddDaily registers a job running daily at HH:MM in the scheduler timezone.
func (s *Service) AddDaily(name, atHHMM string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	h, m, err := parseHHMM(atHHMM)
	if err != nil {
		return "", err
	}
	return s.AddCron(name, fmt.Sprintf("%d %d * * *", m, h), timeout, job)
}

// AddOnce schedules a one-shot job at the given instant, upserted by name.
// A past instant fires immediately.
func (s *Service) AddOnce(name string, at time.Time, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("name required")
	}
	if at.IsZero() {
		return "", errors.New("at required")
	}

	s.mu.Lock()
	loc := s.loc
	resolved := s.resolveTimeout(timeout)
	s.mu.Unlock()
	if loc == nil {
		loc = time.Local
	}

	delay := time.Until(at.In(loc))
	if delay < 0 {
		delay = 0
	}

	s.tmu.Lock()
	if t, ok := s.timers[name]; ok {
		_ = t.Stop()
	}
	ver := s.onceVer[name] + 1
	s.onceVer[name] = ver

	localName := name
	localVer := ver
	s.timers[name] = time.AfterFunc(delay, func() {
		s.tmu.Lock()
		if s.onceVer[localName] != localVer {
			// replaced or removed before firing
			s.tmu.Unlock()
			return
		}
		delete(s.timers, localName)
		delete(s.onceVer, localName)
		s.tmu.Unlock()

		s.enqueue(task{
			id:      fmt.Sprintf("once:%d", time.Now().UnixNano()),
			name:    localName,
			timeout: resolved,
			run:     job,
		})
	})
	s.tmu.Unlock()

	return name, nil
}

// Remove unschedules everything registered under name, recurring or one-shot.
// Safe to call before Start.
func (s *Service) Remove(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	removed := s.removeScheduleLocked(name)
	s.mu.Unlock()

	s.tmu.Lock()
	if t, ok := s.timers[name]; ok {
		_ = t.Stop()
		delete(s.timers, name)
		removed = true
	}
	if _, ok := s.onceVer[name]; ok {
		delete(s.onceVer, name)
		removed = true
	}
	s.tmu.Unlock()

	if removed {
		s.log.Debug("schedule removed", logx.String("name", name))
	}
	return removed
}

// removeScheduleLocked removes all defs matching name. Call with s.mu held.
func (s *Service) removeScheduleLocked(name string) bool {
	removed := false
	if s.c != nil {
		for i := range s.defs {
			if s.defs[i].name == name && s.defs[i].entryID != 0 {
				s.c.Remove(s.defs[i].entryID)
				s.defs[i].entryID = 0
				removed = true
			}
		}
	}
	n := 0
	for _, d := range s.defs {
		if d.name == name {
			removed = true
			continue
		}
		s.defs[n] = d
		n++
	}
	s.defs = s.defs[:n]
	return removed
}

func (s *Service) addCronLocked(d *scheduleDef) error {
	eid, err := s.c.AddFunc(d.spec, func() {
		s.enqueue(task{id: d.id, name: d.name, timeout: d.timeout, run: d.job})
	})
	if err == nil {
		d.entryID = eid
	}
	return err
}

func parseHHMM(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
