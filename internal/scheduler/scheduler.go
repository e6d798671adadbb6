// Package scheduler runs the periodic broadcast sweep. Every tick it
// re-derives which operators are due from their stored settings and the
// wall clock in a fixed target zone; due operators get their default
// message fanned out and their last-notified mark advanced in one batched
// registry write.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"relaybot/internal/broadcast"
	"relaybot/internal/config"
	"relaybot/internal/registry"
	"relaybot/pkg/logx"
)

const (
	DefaultTick         = 5 * time.Minute
	defaultUTCOffsetHrs = 5
	minTick             = time.Minute
)

type Scheduler struct {
	reg  *registry.Service
	disp *broadcast.Dispatcher
	log  logx.Logger

	tick time.Duration
	zone *time.Location

	// nowFn is swapped in tests to pin the clock.
	nowFn func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	enabled bool
	stopped chan struct{}
}

func New(reg *registry.Service, disp *broadcast.Dispatcher, log logx.Logger, cfg config.SchedulerConfig) (*Scheduler, error) {
	tick, err := config.ParseDurationOrDefault("scheduler.tick", cfg.Tick, DefaultTick)
	if err != nil {
		return nil, err
	}
	if tick < minTick {
		return nil, fmt.Errorf("scheduler: tick %s below minimum %s", tick, minTick)
	}

	offset := defaultUTCOffsetHrs
	if cfg.UTCOffsetHours != nil {
		offset = *cfg.UTCOffsetHours
	}
	if offset < -12 || offset > 14 {
		return nil, fmt.Errorf("scheduler: utc_offset_hours %d out of range", offset)
	}

	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	return &Scheduler{
		reg:     reg,
		disp:    disp,
		log:     log,
		tick:    tick,
		zone:    time.FixedZone("UTC"+signed(offset), offset*3600),
		nowFn:   time.Now,
		enabled: enabled,
	}, nil
}

func signed(h int) string {
	if h >= 0 {
		return "+" + strconv.Itoa(h)
	}
	return strconv.Itoa(h)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		s.log.Info("scheduler disabled")
		return nil
	}
	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(s.zone))
	_, err := c.AddFunc("@every "+s.tick.String(), func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduler: register tick: %w", err)
	}
	c.Start()
	s.cron = c
	s.log.Info("scheduler started",
		logx.Duration("tick", s.tick),
		logx.String("zone", s.zone.String()))
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	// Wait for an in-flight sweep to finish before returning.
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Sweep evaluates every operator once and broadcasts to those that are due.
// Exposed so a hot config toggle (or a test) can trigger it directly.
func (s *Scheduler) Sweep(ctx context.Context) {
	localNow := s.nowFn().In(s.zone)
	doc := s.reg.Snapshot(ctx)

	marks := make(map[int64]time.Time)
	for key, op := range doc.Users {
		if !due(op.Settings, localNow) {
			continue
		}
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.log.Warn("skipping malformed registry key", logx.String("key", key))
			continue
		}
		msg := op.Settings.DefaultMessage
		if msg == "" && op.Settings.DefaultPhoto == "" {
			msg = registry.PlaceholderMessage
		}
		// The dispatcher reports the outcome (or a "no groups" notice) to the
		// operator; marking even an empty roster keeps the notice down to one
		// per interval.
		rep := s.disp.Broadcast(ctx, chatID, op.Groups, msg, op.Settings.DefaultPhoto)
		s.log.Info("scheduled broadcast",
			logx.String("login", op.Login),
			logx.Int64("chat_id", chatID),
			logx.Int("succeeded", rep.Succeeded),
			logx.Int("total", rep.Total))
		marks[chatID] = localNow
	}

	if len(marks) == 0 {
		return
	}
	if err := s.reg.MarkNotified(ctx, marks); err != nil {
		s.log.Error("recording notified marks failed", logx.Err(err))
	}
}
