package scheduler

import (
	"time"

	"relaybot/internal/registry"
)

const (
	// minuteWindow keeps a slot open for the first few minutes of its hour so
	// one polling tick inside the window always catches it.
	minuteWindow = 5
	// earlyTolerance forgives a send that landed slightly early in the
	// previous slot when checking the full-interval gap.
	earlyTolerance = 5 * time.Minute
	// minGap suppresses duplicate sends from adjacent ticks inside the same
	// slot window, whatever the configured interval.
	minGap = 50 * time.Minute
)

// due decides whether one operator's automatic broadcast fires at localNow,
// already expressed in the target time zone. It is evaluated from scratch on
// every tick; there is no per-operator timer and no catch-up for slots missed
// while the process was down.
func due(s registry.Settings, localNow time.Time) bool {
	if !s.Enabled || s.IntervalHours <= 0 {
		return false
	}
	if s.StartTime < 0 || s.StartTime > 23 {
		return false
	}

	hoursSinceStart := (localNow.Hour() - s.StartTime + 24) % 24
	if hoursSinceStart%s.IntervalHours != 0 {
		return false
	}
	if localNow.Minute() > minuteWindow {
		return false
	}

	if s.LastNotified.IsZero() {
		return true
	}
	elapsed := localNow.Sub(s.LastNotified)
	if elapsed < minGap {
		return false
	}
	interval := time.Duration(s.IntervalHours) * time.Hour
	return elapsed >= interval-earlyTolerance
}
